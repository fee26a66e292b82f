package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"sti-backend/internal/models"
)

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// NewClientWithDB wraps an existing handle; used by tests.
func NewClientWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// DB exposes the underlying handle for collaborators that manage their own
// statements (annotation store).
func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

const transformerColumns = `id, transformer_no, pole_no, region, type, capacity, location_details,
		baseline_image_path, baseline_uploaded_at, uploader_name, starred, created_at`

func scanTransformer(row interface{ Scan(...any) error }, t *models.Transformer) error {
	return row.Scan(
		&t.ID, &t.TransformerNo, &t.PoleNo, &t.Region, &t.Type, &t.Capacity, &t.LocationDetails,
		&t.BaselineImagePath, &t.BaselineUploadedAt, &t.UploaderName, &t.Starred, &t.CreatedAt,
	)
}

func (c *Client) CreateTransformer(t *models.Transformer) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := c.db.QueryRow(`
		INSERT INTO transformers (id, transformer_no, pole_no, region, type, capacity, location_details, starred)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, t.ID, t.TransformerNo, t.PoleNo, t.Region, t.Type, t.Capacity, t.LocationDetails, t.Starred).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transformer: %w", err)
	}
	return nil
}

func (c *Client) GetTransformer(id uuid.UUID) (*models.Transformer, error) {
	var t models.Transformer
	err := scanTransformer(c.db.QueryRow(`
		SELECT `+transformerColumns+`
		FROM transformers
		WHERE id = $1
	`, id), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transformer %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transformer: %w", err)
	}
	return &t, nil
}

func (c *Client) GetTransformerByNo(transformerNo string) (*models.Transformer, error) {
	var t models.Transformer
	err := scanTransformer(c.db.QueryRow(`
		SELECT `+transformerColumns+`
		FROM transformers
		WHERE transformer_no = $1
	`, transformerNo), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transformer %q: %w", transformerNo, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transformer: %w", err)
	}
	return &t, nil
}

func (c *Client) ListTransformers() ([]models.Transformer, error) {
	rows, err := c.db.Query(`
		SELECT ` + transformerColumns + `
		FROM transformers
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transformers: %w", err)
	}
	defer rows.Close()

	var transformers []models.Transformer
	for rows.Next() {
		var t models.Transformer
		if err := scanTransformer(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan transformer: %w", err)
		}
		transformers = append(transformers, t)
	}
	return transformers, rows.Err()
}

func (c *Client) UpdateTransformer(t *models.Transformer) error {
	_, err := c.db.Exec(`
		UPDATE transformers
		SET transformer_no = $1, pole_no = $2, region = $3, type = $4, capacity = $5,
		    location_details = $6, baseline_image_path = $7, baseline_uploaded_at = $8,
		    uploader_name = $9, starred = $10
		WHERE id = $11
	`, t.TransformerNo, t.PoleNo, t.Region, t.Type, t.Capacity,
		t.LocationDetails, t.BaselineImagePath, t.BaselineUploadedAt,
		t.UploaderName, t.Starred, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update transformer: %w", err)
	}
	return nil
}

func (c *Client) DeleteTransformer(id uuid.UUID) error {
	_, err := c.db.Exec(`DELETE FROM transformers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transformer: %w", err)
	}
	return nil
}

const inspectionColumns = `i.id, i.transformer_id, t.transformer_no, i.inspected_at, i.maintenance_at,
		i.status, i.notes, i.starred, i.thermal_uploader_name, i.weather_condition, i.thermal_image_path`

func scanInspection(row interface{ Scan(...any) error }, i *models.Inspection) error {
	return row.Scan(
		&i.ID, &i.TransformerID, &i.TransformerNo, &i.InspectedAt, &i.MaintenanceAt,
		&i.Status, &i.Notes, &i.Starred, &i.ThermalUploaderName, &i.WeatherCondition, &i.ThermalImagePath,
	)
}

func (c *Client) CreateInspection(i *models.Inspection) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.InspectedAt.IsZero() {
		i.InspectedAt = time.Now().UTC()
	}
	if i.Status == "" {
		i.Status = models.StatusInProgress
	}
	_, err := c.db.Exec(`
		INSERT INTO inspections (id, transformer_id, inspected_at, maintenance_at, status, notes, starred,
			thermal_uploader_name, weather_condition, thermal_image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, i.ID, i.TransformerID, i.InspectedAt, i.MaintenanceAt, i.Status, i.Notes, i.Starred,
		i.ThermalUploaderName, i.WeatherCondition, i.ThermalImagePath)
	if err != nil {
		return fmt.Errorf("failed to create inspection: %w", err)
	}
	return nil
}

func (c *Client) GetInspection(id uuid.UUID) (*models.Inspection, error) {
	var i models.Inspection
	err := scanInspection(c.db.QueryRow(`
		SELECT `+inspectionColumns+`
		FROM inspections i
		JOIN transformers t ON t.id = i.transformer_id
		WHERE i.id = $1
	`, id), &i)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inspection %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inspection: %w", err)
	}
	return &i, nil
}

func (c *Client) ListInspectionsByTransformer(transformerID uuid.UUID) ([]models.Inspection, error) {
	return c.queryInspections(`
		SELECT `+inspectionColumns+`
		FROM inspections i
		JOIN transformers t ON t.id = i.transformer_id
		WHERE i.transformer_id = $1
		ORDER BY i.inspected_at DESC
	`, transformerID)
}

func (c *Client) ListAllInspections() ([]models.Inspection, error) {
	return c.queryInspections(`
		SELECT ` + inspectionColumns + `
		FROM inspections i
		JOIN transformers t ON t.id = i.transformer_id
		ORDER BY i.inspected_at DESC
	`)
}

func (c *Client) queryInspections(query string, args ...any) ([]models.Inspection, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	var inspections []models.Inspection
	for rows.Next() {
		var i models.Inspection
		if err := scanInspection(rows, &i); err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		inspections = append(inspections, i)
	}
	return inspections, rows.Err()
}

func (c *Client) UpdateInspection(i *models.Inspection) error {
	_, err := c.db.Exec(`
		UPDATE inspections
		SET inspected_at = $1, maintenance_at = $2, status = $3, notes = $4, starred = $5,
		    thermal_uploader_name = $6, weather_condition = $7, thermal_image_path = $8
		WHERE id = $9
	`, i.InspectedAt, i.MaintenanceAt, i.Status, i.Notes, i.Starred,
		i.ThermalUploaderName, i.WeatherCondition, i.ThermalImagePath, i.ID)
	if err != nil {
		return fmt.Errorf("failed to update inspection: %w", err)
	}
	return nil
}

// SetThermalImage records an uploaded thermal image: path, uploader metadata,
// COMPLETED status and the maintenance stamp, in one statement so a concurrent
// reader never sees a half-applied transition.
func (c *Client) SetThermalImage(id uuid.UUID, path string, uploaderName, weatherCondition sql.NullString, maintenanceAt time.Time) error {
	_, err := c.db.Exec(`
		UPDATE inspections
		SET thermal_image_path = $1,
		    thermal_uploader_name = COALESCE($2, thermal_uploader_name),
		    weather_condition = COALESCE($3, weather_condition),
		    status = $4,
		    maintenance_at = $5
		WHERE id = $6
	`, path, uploaderName, weatherCondition, models.StatusCompleted, maintenanceAt, id)
	if err != nil {
		return fmt.Errorf("failed to set thermal image: %w", err)
	}
	return nil
}

// ClearThermalImage reverts an inspection to IN_PROGRESS and removes its
// annotations in one transaction. Annotations without a source image must not
// survive.
func (c *Client) ClearThermalImage(id uuid.UUID) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE inspections
		SET thermal_image_path = NULL, status = $1, maintenance_at = NULL
		WHERE id = $2
	`, models.StatusInProgress, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear thermal image: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM inspection_annotations WHERE inspection_id = $1`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete annotations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// DeleteInspectionCascade removes the inspection row together with its
// annotations and image-asset rows. File deletion is the caller's concern.
func (c *Client) DeleteInspectionCascade(id uuid.UUID) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM inspection_annotations WHERE inspection_id = $1`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete annotations: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM image_assets WHERE inspection_id = $1`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete image assets: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM inspections WHERE id = $1`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete inspection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (c *Client) CreateImageAsset(a *models.ImageAsset) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CapturedAt.IsZero() {
		a.CapturedAt = time.Now().UTC()
	}
	_, err := c.db.Exec(`
		INSERT INTO image_assets (id, inspection_id, filename, path, captured_at, meta_json)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.InspectionID, a.Filename, a.Path, a.CapturedAt, a.MetaJSON)
	if err != nil {
		return fmt.Errorf("failed to create image asset: %w", err)
	}
	return nil
}

func (c *Client) ListImageAssetsByInspection(inspectionID uuid.UUID) ([]models.ImageAsset, error) {
	rows, err := c.db.Query(`
		SELECT id, inspection_id, filename, path, captured_at, meta_json
		FROM image_assets
		WHERE inspection_id = $1
		ORDER BY captured_at DESC
	`, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list image assets: %w", err)
	}
	defer rows.Close()

	var assets []models.ImageAsset
	for rows.Next() {
		var a models.ImageAsset
		if err := rows.Scan(&a.ID, &a.InspectionID, &a.Filename, &a.Path, &a.CapturedAt, &a.MetaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan image asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
