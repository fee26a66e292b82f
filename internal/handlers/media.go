package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sti-backend/internal/database"
	"sti-backend/internal/inspection"
	"sti-backend/internal/media"
	"sti-backend/internal/models"
)

type MediaHandler struct {
	dbClient *database.Client
	service  *inspection.Service
	resolver *media.Resolver
}

func NewMediaHandler(dbClient *database.Client, service *inspection.Service, resolver *media.Resolver) *MediaHandler {
	return &MediaHandler{dbClient: dbClient, service: service, resolver: resolver}
}

// UploadThermal accepts a thermal image for an inspection, identified by the
// transformer_id (the transformer number) and inspection_no query parameters
// the frontend has always sent.
func (h *MediaHandler) UploadThermal(c *gin.Context) {
	transformerNo := c.Query("transformer_id")
	inspectionNo := c.Query("inspection_no")
	if transformerNo == "" || inspectionNo == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing transformer or inspection id"})
		return
	}

	inspectionID, err := uuid.Parse(inspectionNo)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid inspection id"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file is required"})
		return
	}

	uploaderName := c.Query("uploaderName")
	if uploaderName == "" {
		uploaderName = c.PostForm("uploaderName")
	}
	weatherCondition := c.Query("weatherCondition")
	if weatherCondition == "" {
		weatherCondition = c.PostForm("weatherCondition")
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file"})
		return
	}
	defer src.Close()

	insp, err := h.service.AttachThermal(inspectionID, file.Filename, file.Header.Get("Content-Type"), src, uploaderName, weatherCondition)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Unsupported file type",
				"allowed": media.ThermalExts,
			})
			return
		}
		respondDBError(c, err, "upload failed")
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	responseUploader := uploaderName
	if responseUploader == "" {
		responseUploader = "unknown"
	}
	responseWeather := weatherCondition
	if responseWeather == "" {
		responseWeather = "unknown"
	}

	c.JSON(http.StatusOK, models.UploadThermalResponse{
		OK:               true,
		CurrentImage:     publicMediaURL(insp.ThermalImagePath.String),
		CurrentTimestamp: now,
		UploaderName:     responseUploader,
		WeatherCondition: responseWeather,
		ThermalImagePath: insp.ThermalImagePath.String,
		Status:           string(insp.Status),
		MaintenanceDate:  now,
	})
}

// GetInspectionView resolves the baseline and current thermal images for the
// comparison view. Missing files yield null URLs, not errors.
func (h *MediaHandler) GetInspectionView(c *gin.Context) {
	inspectionID := c.Query("inspectionId")
	transformerNo := c.Query("transformerNo")
	if inspectionID == "" || transformerNo == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "inspectionId and transformerNo are required"})
		return
	}

	var storedBaseline, storedThermal string
	if t, err := h.dbClient.GetTransformerByNo(transformerNo); err == nil {
		storedBaseline = t.BaselineImagePath.String
	}
	if id, err := uuid.Parse(inspectionID); err == nil {
		if insp, err := h.dbClient.GetInspection(id); err == nil {
			storedThermal = insp.ThermalImagePath.String
		}
	}

	out := gin.H{
		"baselineImage":     nil,
		"baselineTimestamp": nil,
		"currentImage":      nil,
		"currentTimestamp":  nil,
		"inspectionNo":      inspectionID,
		"status":            "PENDING",
	}

	if abs, ok := h.resolver.ResolveBaseline(transformerNo, storedBaseline); ok {
		out["baselineImage"] = h.resolver.PublicURL(abs)
		out["baselineTimestamp"] = fileModTime(abs)
	}
	if abs, ok := h.resolver.ResolveThermal(transformerNo, inspectionID, storedThermal); ok {
		out["currentImage"] = h.resolver.PublicURL(abs)
		out["currentTimestamp"] = fileModTime(abs)
		out["status"] = "COMPLETED"
	}

	c.JSON(http.StatusOK, out)
}

func fileModTime(path string) any {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return info.ModTime().UTC().Format(time.RFC3339)
}
