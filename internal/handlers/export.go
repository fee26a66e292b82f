package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sti-backend/internal/detector"
	"sti-backend/internal/export"
	"sti-backend/internal/models"
)

type ExportHandler struct {
	pipeline       *export.Pipeline
	detectorClient *detector.Client
	logger         *zap.Logger
}

func NewExportHandler(pipeline *export.Pipeline, detectorClient *detector.Client, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{pipeline: pipeline, detectorClient: detectorClient, logger: logger}
}

// ExportDataset rebuilds the training dataset from the current inspections
// and annotations. The call is synchronous; the response reports what was
// written and any per-inspection problems.
func (h *ExportHandler) ExportDataset(c *gin.Context) {
	result, err := h.pipeline.Run()
	if err != nil {
		h.logger.Error("dataset export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "dataset export failed",
			Message: err.Error(),
		})
		return
	}

	h.logger.Info("dataset export completed",
		zap.Int("imagesCopied", result.ImagesCopied),
		zap.Int("labelsWritten", result.LabelsWritten),
		zap.Int("problems", len(result.Items)))

	c.JSON(http.StatusOK, result)
}

// StartRetrain asks the detection service to retrain on the last export.
func (h *ExportHandler) StartRetrain(c *gin.Context) {
	result, err := h.pipeline.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "dataset export failed",
			Message: err.Error(),
		})
		return
	}

	ack, err := h.detectorClient.Retrain(c.Request.Context(), result.ExportRoot)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "retrain request failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"export": result,
		"ack":    ack,
	})
}
