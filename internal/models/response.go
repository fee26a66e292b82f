package models

import (
	"database/sql"
	"time"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type TransformerResponse struct {
	ID                 string     `json:"id"`
	TransformerNo      string     `json:"transformerNo"`
	PoleNo             string     `json:"poleNo,omitempty"`
	Region             string     `json:"region,omitempty"`
	Type               string     `json:"type,omitempty"`
	Capacity           string     `json:"capacity,omitempty"`
	LocationDetails    string     `json:"locationDetails,omitempty"`
	BaselineImagePath  string     `json:"baselineImagePath,omitempty"`
	BaselineUploadedAt *time.Time `json:"baselineUploadedAt,omitempty"`
	UploaderName       string     `json:"uploaderName,omitempty"`
	Starred            bool       `json:"starred"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func NewTransformerResponse(t *Transformer) TransformerResponse {
	return TransformerResponse{
		ID:                 t.ID.String(),
		TransformerNo:      t.TransformerNo,
		PoleNo:             t.PoleNo.String,
		Region:             t.Region.String,
		Type:               t.Type.String,
		Capacity:           t.Capacity.String,
		LocationDetails:    t.LocationDetails.String,
		BaselineImagePath:  t.BaselineImagePath.String,
		BaselineUploadedAt: nullTimePtr(t.BaselineUploadedAt),
		UploaderName:       t.UploaderName.String,
		Starred:            t.Starred,
		CreatedAt:          t.CreatedAt,
	}
}

type InspectionResponse struct {
	ID                  string     `json:"id"`
	TransformerNo       string     `json:"transformerNo"`
	InspectedAt         time.Time  `json:"inspectedAt"`
	MaintenanceAt       *time.Time `json:"maintenanceAt,omitempty"`
	Status              string     `json:"status"`
	Notes               string     `json:"notes,omitempty"`
	Starred             bool       `json:"starred"`
	ThermalUploaderName string     `json:"thermalUploaderName,omitempty"`
	WeatherCondition    string     `json:"weatherCondition,omitempty"`
	ThermalImagePath    string     `json:"thermalImagePath,omitempty"`
}

func NewInspectionResponse(i *Inspection) InspectionResponse {
	return InspectionResponse{
		ID:                  i.ID.String(),
		TransformerNo:       i.TransformerNo,
		InspectedAt:         i.InspectedAt,
		MaintenanceAt:       nullTimePtr(i.MaintenanceAt),
		Status:              string(i.Status),
		Notes:               i.Notes.String,
		Starred:             i.Starred,
		ThermalUploaderName: i.ThermalUploaderName.String,
		WeatherCondition:    i.WeatherCondition.String,
		ThermalImagePath:    i.ThermalImagePath.String,
	}
}

type UploadThermalResponse struct {
	OK               bool   `json:"ok"`
	CurrentImage     string `json:"currentImage"`
	CurrentTimestamp string `json:"currentTimestamp"`
	UploaderName     string `json:"uploaderName"`
	WeatherCondition string `json:"weatherCondition"`
	ThermalImagePath string `json:"thermalImagePath"`
	Status           string `json:"status"`
	MaintenanceDate  string `json:"maintenanceDate"`
}

type AnnotationStatistics struct {
	AIDetected int64 `json:"aiDetected"`
	Edited     int64 `json:"edited"`
	Manual     int64 `json:"manual"`
}

type AnnotationsResponse struct {
	Success         bool                 `json:"success"`
	Detections      []map[string]any     `json:"detections"`
	AnnotationCount int                  `json:"annotationCount"`
	Statistics      AnnotationStatistics `json:"statistics"`
	InspectionID    string               `json:"inspectionId"`
}

type InspectionTableRow struct {
	TransformerNo   string `json:"transformerNo"`
	InspectionNo    string `json:"inspectionNo"`
	InspectedAtIso  string `json:"inspectedAtIso,omitempty"`
	InspectedDate   string `json:"inspectedDate"`
	MaintenanceIso  string `json:"maintenanceAtIso,omitempty"`
	MaintenanceDate string `json:"maintenanceDate"`
	Status          string `json:"status"`
	Starred         bool   `json:"starred"`
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
