package annotations

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sti-backend/internal/models"
)

// Store persists inspection annotations. Saving is replace-all: the client
// always sends the complete annotation set for an inspection.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ReplaceAll deletes an inspection's annotations and inserts the given
// payloads in order, inside one transaction. Returns the stored rows.
func (s *Store) ReplaceAll(inspectionID uuid.UUID, payloads []map[string]any) ([]models.Annotation, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow("SELECT EXISTS(SELECT 1 FROM inspections WHERE id = $1)", inspectionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check inspection: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("inspection %s: %w", inspectionID, models.ErrNotFound)
	}

	if _, err := tx.Exec("DELETE FROM inspection_annotations WHERE inspection_id = $1", inspectionID); err != nil {
		return nil, fmt.Errorf("failed to clear annotations: %w", err)
	}

	now := time.Now().UTC()
	saved := make([]models.Annotation, 0, len(payloads))
	for idx, payload := range payloads {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode annotation payload: %w", err)
		}
		d := Derive(payload)

		ann := models.Annotation{
			ID:             uuid.New(),
			InspectionID:   inspectionID,
			Payload:        raw,
			AnnotationType: d.AnnotationType,
			ClassName:      d.ClassName,
			Confidence:     d.Confidence,
			BoundingBox:    d.BoundingBox,
			CreatedBy:      d.CreatedBy,
			Notes:          d.Notes,
			Position:       idx,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		_, err = tx.Exec(`
			INSERT INTO inspection_annotations
				(id, inspection_id, annotation_data, annotation_type, class_name,
				 confidence, bounding_box, created_by, notes, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			ann.ID, ann.InspectionID, ann.Payload, ann.AnnotationType, ann.ClassName,
			ann.Confidence, nullableRaw(ann.BoundingBox), ann.CreatedBy, ann.Notes,
			ann.Position, ann.CreatedAt, ann.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert annotation: %w", err)
		}
		saved = append(saved, ann)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit annotations: %w", err)
	}
	return saved, nil
}

// ListByInspection returns an inspection's annotations newest first. Rows
// written by the same replace share a timestamp; position breaks the tie so
// the most recently inserted row sorts first.
func (s *Store) ListByInspection(inspectionID uuid.UUID) ([]models.Annotation, error) {
	rows, err := s.db.Query(`
		SELECT id, inspection_id, annotation_data, annotation_type, class_name,
		       confidence, bounding_box, created_by, notes, position, created_at, updated_at
		FROM inspection_annotations
		WHERE inspection_id = $1
		ORDER BY created_at DESC, position DESC`,
		inspectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	defer rows.Close()

	var anns []models.Annotation
	for rows.Next() {
		var a models.Annotation
		var bbox []byte
		err := rows.Scan(
			&a.ID, &a.InspectionID, &a.Payload, &a.AnnotationType, &a.ClassName,
			&a.Confidence, &bbox, &a.CreatedBy, &a.Notes, &a.Position, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		a.BoundingBox = bbox
		anns = append(anns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate annotations: %w", err)
	}
	return anns, nil
}

// Statistics counts an inspection's annotations by type.
func (s *Store) Statistics(inspectionID uuid.UUID) (models.AnnotationStatistics, error) {
	rows, err := s.db.Query(`
		SELECT annotation_type, COUNT(*)
		FROM inspection_annotations
		WHERE inspection_id = $1
		GROUP BY annotation_type`,
		inspectionID,
	)
	if err != nil {
		return models.AnnotationStatistics{}, fmt.Errorf("failed to count annotations: %w", err)
	}
	defer rows.Close()

	var stats models.AnnotationStatistics
	for rows.Next() {
		var typ string
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return models.AnnotationStatistics{}, fmt.Errorf("failed to scan annotation count: %w", err)
		}
		switch typ {
		case models.AnnotationTypeDetected:
			stats.AIDetected = count
		case models.AnnotationTypeEdited:
			stats.Edited = count
		case models.AnnotationTypeManual:
			stats.Manual = count
		}
	}
	if err := rows.Err(); err != nil {
		return models.AnnotationStatistics{}, fmt.Errorf("failed to iterate annotation counts: %w", err)
	}
	return stats, nil
}

func nullableRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
