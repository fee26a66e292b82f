package models

import "time"

type CreateTransformerRequest struct {
	TransformerNo   string `json:"transformerNo" binding:"required"`
	PoleNo          string `json:"poleNo,omitempty"`
	Region          string `json:"region,omitempty"`
	Type            string `json:"type,omitempty"`
	Capacity        string `json:"capacity,omitempty"`
	LocationDetails string `json:"locationDetails,omitempty"`
	Starred         bool   `json:"starred,omitempty"`
}

// UpdateTransformerRequest is a partial update: nil means "leave unchanged".
type UpdateTransformerRequest struct {
	TransformerNo   *string `json:"transformerNo,omitempty"`
	PoleNo          *string `json:"poleNo,omitempty"`
	Region          *string `json:"region,omitempty"`
	Type            *string `json:"type,omitempty"`
	Capacity        *string `json:"capacity,omitempty"`
	LocationDetails *string `json:"locationDetails,omitempty"`
	Starred         *bool   `json:"starred,omitempty"`
}

type CreateInspectionRequest struct {
	InspectedAt     *time.Time `json:"inspectedAt,omitempty"`
	MaintenanceDate *time.Time `json:"maintenanceDate,omitempty"`
	Status          string     `json:"status,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Starred         bool       `json:"starred,omitempty"`
}

// PatchInspectionRequest is a partial update. Timestamps arrive as ISO-8601
// strings; an empty maintenanceDate clears the field. An unrecognized status
// value is ignored rather than rejected (long-standing client behavior).
type PatchInspectionRequest struct {
	Status          *string `json:"status,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Starred         *bool   `json:"starred,omitempty"`
	InspectedAt     *string `json:"inspectedAt,omitempty"`
	MaintenanceDate *string `json:"maintenanceDate,omitempty"`
}

type SaveAnnotationsRequest struct {
	TransformerID string           `json:"transformerId,omitempty"`
	InspectionID  string           `json:"inspectionId" binding:"required"`
	Annotations   []map[string]any `json:"annotations"`
	Timestamp     string           `json:"timestamp,omitempty"`
}
