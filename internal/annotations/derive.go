package annotations

import (
	"database/sql"
	"encoding/json"

	"sti-backend/internal/models"
)

// Derived holds the queryable columns projected from a raw annotation payload.
// The payload itself stays authoritative; these exist for filtering and stats.
type Derived struct {
	AnnotationType string
	ClassName      sql.NullString
	Confidence     sql.NullFloat64
	BoundingBox    json.RawMessage
	CreatedBy      string
	Notes          sql.NullString
}

// Derive projects the indexed columns out of an annotation payload.
// Missing or mistyped fields degrade to NULL rather than failing the save.
func Derive(payload map[string]any) Derived {
	d := Derived{
		AnnotationType: models.AnnotationTypeDetected,
		CreatedBy:      "system",
	}

	if v, ok := payload["annotationType"].(string); ok && v != "" {
		d.AnnotationType = v
	}
	if v, ok := payload["class"].(string); ok && v != "" {
		d.ClassName = sql.NullString{String: v, Valid: true}
	}
	if v, ok := payload["confidence"].(float64); ok {
		d.Confidence = sql.NullFloat64{Float64: v, Valid: true}
	}
	if v, ok := payload["bounding_box"]; ok && v != nil {
		if raw, err := json.Marshal(v); err == nil {
			d.BoundingBox = raw
		}
	}
	if v, ok := payload["createdBy"].(string); ok && v != "" {
		d.CreatedBy = v
	}
	if v, ok := payload["note"].(string); ok && v != "" {
		d.Notes = sql.NullString{String: v, Valid: true}
	}

	return d
}
