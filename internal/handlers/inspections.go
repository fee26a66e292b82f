package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sti-backend/internal/database"
	"sti-backend/internal/inspection"
	"sti-backend/internal/media"
	"sti-backend/internal/models"
)

type InspectionsHandler struct {
	dbClient *database.Client
	service  *inspection.Service
	store    *media.Store
}

func NewInspectionsHandler(dbClient *database.Client, service *inspection.Service, store *media.Store) *InspectionsHandler {
	return &InspectionsHandler{dbClient: dbClient, service: service, store: store}
}

// Create opens a new inspection for the transformer named in the path.
func (h *InspectionsHandler) Create(c *gin.Context) {
	t, err := h.dbClient.GetTransformerByNo(c.Param("no"))
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}

	var req models.CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	insp, err := h.service.Create(t.ID, req)
	if err != nil {
		respondDBError(c, err, "failed to create inspection")
		return
	}
	c.JSON(http.StatusOK, models.NewInspectionResponse(insp))
}

// ListByTransformer returns a transformer's inspections, newest first.
func (h *InspectionsHandler) ListByTransformer(c *gin.Context) {
	t, err := h.dbClient.GetTransformerByNo(c.Param("no"))
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}

	inspections, err := h.dbClient.ListInspectionsByTransformer(t.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list inspections",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.InspectionResponse, 0, len(inspections))
	for i := range inspections {
		responses = append(responses, models.NewInspectionResponse(&inspections[i]))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *InspectionsHandler) Get(c *gin.Context) {
	id, ok := parseInspectionID(c)
	if !ok {
		return
	}

	insp, err := h.dbClient.GetInspection(id)
	if err != nil {
		respondDBError(c, err, "failed to get inspection")
		return
	}
	c.JSON(http.StatusOK, models.NewInspectionResponse(insp))
}

func (h *InspectionsHandler) Patch(c *gin.Context) {
	id, ok := parseInspectionID(c)
	if !ok {
		return
	}

	var req models.PatchInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	insp, err := h.service.Patch(id, req)
	if err != nil {
		respondDBError(c, err, "failed to update inspection")
		return
	}
	c.JSON(http.StatusOK, models.NewInspectionResponse(insp))
}

func (h *InspectionsHandler) Delete(c *gin.Context) {
	id, ok := parseInspectionID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		respondDBError(c, err, "failed to delete inspection")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteThermalImage removes an inspection's thermal image and reverts the
// record to IN_PROGRESS. Only COMPLETED inspections qualify.
func (h *InspectionsHandler) DeleteThermalImage(c *gin.Context) {
	id, ok := parseInspectionID(c)
	if !ok {
		return
	}

	insp, err := h.service.RemoveThermal(id)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "thermal image can only be deleted from completed inspections",
			})
			return
		}
		respondDBError(c, err, "failed to delete thermal image")
		return
	}
	c.JSON(http.StatusOK, models.NewInspectionResponse(insp))
}

// UploadImage attaches an auxiliary image asset to an inspection.
func (h *InspectionsHandler) UploadImage(c *gin.Context) {
	id, ok := parseInspectionID(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetInspection(id); err != nil {
		respondDBError(c, err, "failed to get inspection")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file"})
		return
	}
	defer src.Close()

	path, err := h.store.SaveAsset(id.String(), file.Filename, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to store image",
			Message: err.Error(),
		})
		return
	}

	asset := models.ImageAsset{
		InspectionID: id,
		Filename:     file.Filename,
		Path:         path,
	}
	if err := h.dbClient.CreateImageAsset(&asset); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to save image asset",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           asset.ID.String(),
		"inspectionId": asset.InspectionID.String(),
		"filename":     asset.Filename,
		"capturedAt":   asset.CapturedAt,
	})
}

// ListImages returns an inspection's image assets, newest first.
func (h *InspectionsHandler) ListImages(c *gin.Context) {
	id, ok := parseInspectionID(c)
	if !ok {
		return
	}

	if _, err := h.dbClient.GetInspection(id); err != nil {
		respondDBError(c, err, "failed to get inspection")
		return
	}

	assets, err := h.dbClient.ListImageAssetsByInspection(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list images",
			Message: err.Error(),
		})
		return
	}

	out := make([]gin.H, 0, len(assets))
	for _, a := range assets {
		out = append(out, gin.H{
			"id":           a.ID.String(),
			"inspectionId": a.InspectionID.String(),
			"filename":     a.Filename,
			"capturedAt":   a.CapturedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func parseInspectionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid inspection id"})
		return uuid.Nil, false
	}
	return id, true
}
