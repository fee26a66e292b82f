package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

type InspectionStatus string

const (
	StatusInProgress  InspectionStatus = "IN_PROGRESS"
	StatusCompleted   InspectionStatus = "COMPLETED"
	StatusNeedsReview InspectionStatus = "NEEDS_REVIEW"
)

// ParseStatus matches case-insensitively against the known statuses.
// Unknown values return ok=false; callers decide whether that is an error.
func ParseStatus(s string) (InspectionStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusInProgress):
		return StatusInProgress, true
	case string(StatusCompleted):
		return StatusCompleted, true
	case string(StatusNeedsReview):
		return StatusNeedsReview, true
	}
	return "", false
}

// Pretty returns the display form used by the inspection table.
func (s InspectionStatus) Pretty() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusNeedsReview:
		return "Needs Review"
	}
	return string(s)
}

type Inspection struct {
	ID                  uuid.UUID
	TransformerID       uuid.UUID
	TransformerNo       string
	InspectedAt         time.Time
	MaintenanceAt       sql.NullTime
	Status              InspectionStatus
	Notes               sql.NullString
	Starred             bool
	ThermalUploaderName sql.NullString
	WeatherCondition    sql.NullString
	ThermalImagePath    sql.NullString
}

// ImageAsset is an auxiliary file attached to an inspection. Asset files are
// removed best-effort when their inspection is deleted.
type ImageAsset struct {
	ID           uuid.UUID
	InspectionID uuid.UUID
	Filename     string
	Path         string
	CapturedAt   time.Time
	MetaJSON     sql.NullString
}
