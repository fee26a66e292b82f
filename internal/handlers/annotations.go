package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sti-backend/internal/annotations"
	"sti-backend/internal/detector"
	"sti-backend/internal/models"
)

type AnnotationsHandler struct {
	store          *annotations.Store
	detectorClient *detector.Client
	logger         *zap.Logger
}

func NewAnnotationsHandler(store *annotations.Store, detectorClient *detector.Client, logger *zap.Logger) *AnnotationsHandler {
	return &AnnotationsHandler{store: store, detectorClient: detectorClient, logger: logger}
}

// Analyze runs anomaly detection on an uploaded thermal image. Detection is
// all-or-nothing; the results are not persisted until the client saves them.
func (h *AnnotationsHandler) Analyze(c *gin.Context) {
	file, err := c.FormFile("thermalImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":    false,
			"error":      "thermalImage is required",
			"detections": []map[string]any{},
		})
		return
	}
	transformerID := c.PostForm("transformerId")
	inspectionID := c.PostForm("inspectionId")

	tmp := filepath.Join(os.TempDir(), uuid.NewString()+"_"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "failed to stage image: " + err.Error(),
			"detections": []map[string]any{},
		})
		return
	}
	defer os.Remove(tmp)

	detections, err := h.detectorClient.Detect(c.Request.Context(), tmp)
	if err != nil {
		h.logger.Error("detection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "AI analysis failed: " + err.Error(),
			"detections": []map[string]any{},
		})
		return
	}
	if detections == nil {
		detections = []map[string]any{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"detections":        detections,
		"transformerId":     transformerID,
		"inspectionId":      inspectionID,
		"analysisTimestamp": time.Now().UnixMilli(),
		"imageFileName":     file.Filename,
	})
}

// Save replaces an inspection's annotation set with the one posted.
func (h *AnnotationsHandler) Save(c *gin.Context) {
	var req models.SaveAnnotationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "inspectionId is required"})
		return
	}

	inspectionID, err := uuid.Parse(req.InspectionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid inspection ID format"})
		return
	}

	saved, err := h.store.ReplaceAll(inspectionID, req.Annotations)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Inspection not found with ID: " + req.InspectionID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save annotations: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Annotations saved successfully",
		"annotationCount": len(saved),
		"timestamp":       req.Timestamp,
		"inspectionId":    req.InspectionID,
	})
}

// Get returns an inspection's annotation payloads with per-type statistics.
func (h *AnnotationsHandler) Get(c *gin.Context) {
	inspectionID, err := uuid.Parse(c.Param("inspectionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid inspection ID format"})
		return
	}

	anns, err := h.store.ListByInspection(inspectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve annotations: " + err.Error(),
		})
		return
	}

	stats, err := h.store.Statistics(inspectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve annotations: " + err.Error(),
		})
		return
	}

	detections := make([]map[string]any, 0, len(anns))
	for _, a := range anns {
		detections = append(detections, a.PayloadMap())
	}

	c.JSON(http.StatusOK, models.AnnotationsResponse{
		Success:         true,
		Detections:      detections,
		AnnotationCount: len(anns),
		Statistics:      stats,
		InspectionID:    inspectionID.String(),
	})
}
