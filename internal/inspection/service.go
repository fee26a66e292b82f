package inspection

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sti-backend/internal/database"
	"sti-backend/internal/media"
	"sti-backend/internal/models"
)

// Service drives the inspection lifecycle: created IN_PROGRESS, COMPLETED
// once a thermal image is attached, back to IN_PROGRESS when it is removed.
type Service struct {
	db       *database.Client
	store    *media.Store
	resolver *media.Resolver
	logger   *zap.Logger
}

func NewService(db *database.Client, store *media.Store, resolver *media.Resolver, logger *zap.Logger) *Service {
	return &Service{db: db, store: store, resolver: resolver, logger: logger}
}

func (s *Service) Create(transformerID uuid.UUID, req models.CreateInspectionRequest) (*models.Inspection, error) {
	transformer, err := s.db.GetTransformer(transformerID)
	if err != nil {
		return nil, err
	}

	insp := models.Inspection{
		TransformerID: transformer.ID,
		TransformerNo: transformer.TransformerNo,
		Starred:       req.Starred,
	}
	if req.InspectedAt != nil {
		insp.InspectedAt = req.InspectedAt.UTC()
	}
	if req.MaintenanceDate != nil {
		insp.MaintenanceAt = sql.NullTime{Time: req.MaintenanceDate.UTC(), Valid: true}
	}
	if status, ok := models.ParseStatus(req.Status); ok {
		insp.Status = status
	}
	if req.Notes != "" {
		insp.Notes = sql.NullString{String: req.Notes, Valid: true}
	}

	if err := s.db.CreateInspection(&insp); err != nil {
		return nil, err
	}
	return &insp, nil
}

// AttachThermal stores an uploaded thermal image and completes the
// inspection. Only jpg, jpeg, png and webp uploads are accepted.
func (s *Service) AttachThermal(id uuid.UUID, filename, contentType string, src io.Reader, uploaderName, weatherCondition string) (*models.Inspection, error) {
	insp, err := s.db.GetInspection(id)
	if err != nil {
		return nil, err
	}

	ext := media.ExtForUpload(filename, contentType, "jpg")
	if !media.AllowedThermalExt(ext) {
		return nil, fmt.Errorf("unsupported image type %q: %w", ext, models.ErrValidation)
	}

	stored, err := s.store.SaveThermal(insp.TransformerNo, insp.ID.String(), ext, src)
	if err != nil {
		return nil, fmt.Errorf("failed to save thermal image: %w", err)
	}

	err = s.db.SetThermalImage(id, stored,
		nullString(uploaderName), nullString(weatherCondition), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return s.db.GetInspection(id)
}

// RemoveThermal deletes an inspection's thermal image, reverts it to
// IN_PROGRESS and drops its annotations. Only COMPLETED inspections carry a
// removable image.
func (s *Service) RemoveThermal(id uuid.UUID) (*models.Inspection, error) {
	insp, err := s.db.GetInspection(id)
	if err != nil {
		return nil, err
	}
	if insp.Status != models.StatusCompleted {
		return nil, fmt.Errorf("inspection %s is not completed: %w", id, models.ErrValidation)
	}

	if abs, ok := s.resolver.ResolveThermal(insp.TransformerNo, insp.ID.String(), insp.ThermalImagePath.String); ok {
		s.removeFiles([]string{abs})
	}

	if err := s.db.ClearThermalImage(id); err != nil {
		return nil, err
	}
	return s.db.GetInspection(id)
}

// Patch applies a partial update. An unparseable status or timestamp leaves
// the field unchanged; an empty maintenanceDate clears it.
func (s *Service) Patch(id uuid.UUID, req models.PatchInspectionRequest) (*models.Inspection, error) {
	insp, err := s.db.GetInspection(id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if status, ok := models.ParseStatus(*req.Status); ok {
			insp.Status = status
		}
	}
	if req.Notes != nil {
		insp.Notes = nullString(*req.Notes)
	}
	if req.Starred != nil {
		insp.Starred = *req.Starred
	}
	if req.InspectedAt != nil {
		if t, ok := parseTimestamp(*req.InspectedAt); ok {
			insp.InspectedAt = t
		}
	}
	if req.MaintenanceDate != nil {
		if *req.MaintenanceDate == "" {
			insp.MaintenanceAt = sql.NullTime{}
		} else if t, ok := parseTimestamp(*req.MaintenanceDate); ok {
			insp.MaintenanceAt = sql.NullTime{Time: t, Valid: true}
		}
	}

	if err := s.db.UpdateInspection(insp); err != nil {
		return nil, err
	}
	return insp, nil
}

// Delete removes an inspection with its annotations and image assets. File
// removal is best-effort; a file that cannot be deleted never blocks the
// database cascade.
func (s *Service) Delete(id uuid.UUID) error {
	insp, err := s.db.GetInspection(id)
	if err != nil {
		return err
	}

	var paths []string
	if abs, ok := s.resolver.ResolveThermal(insp.TransformerNo, insp.ID.String(), insp.ThermalImagePath.String); ok {
		paths = append(paths, abs)
	}
	assets, err := s.db.ListImageAssetsByInspection(id)
	if err != nil {
		return err
	}
	for _, a := range assets {
		paths = append(paths, s.resolver.AbsoluteFromStored(a.Path))
	}
	s.removeFiles(paths)

	return s.db.DeleteInspectionCascade(id)
}

func (s *Service) removeFiles(paths []string) {
	for _, res := range media.RemoveFiles(s.resolver.Root(), paths) {
		if res.Err != nil {
			s.logger.Warn("failed to remove media file",
				zap.String("path", res.Path), zap.Error(res.Err))
		}
	}
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(v string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
