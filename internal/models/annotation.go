package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AnnotationTypeDetected = "Detected by AI"
	AnnotationTypeEdited   = "Edited"
	AnnotationTypeManual   = "Manual"
)

// BoundingBox is a center point plus full extents, in pixel units.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Annotation holds one detected or user-edited region. Payload is the
// authoritative record; ClassName, Confidence, BoundingBox and AnnotationType
// are indexed projections of it and are never written independently.
type Annotation struct {
	ID             uuid.UUID
	InspectionID   uuid.UUID
	Payload        json.RawMessage
	AnnotationType string
	ClassName      sql.NullString
	Confidence     sql.NullFloat64
	BoundingBox    json.RawMessage
	CreatedBy      string
	Notes          sql.NullString
	Position       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PayloadMap decodes the raw payload for callers that hand it back to the
// frontend verbatim. An undecodable payload yields an empty map.
func (a *Annotation) PayloadMap() map[string]any {
	out := map[string]any{}
	if len(a.Payload) > 0 {
		_ = json.Unmarshal(a.Payload, &out)
	}
	return out
}
