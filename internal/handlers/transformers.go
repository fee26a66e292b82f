package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sti-backend/internal/database"
	"sti-backend/internal/models"
)

type TransformersHandler struct {
	dbClient *database.Client
}

func NewTransformersHandler(dbClient *database.Client) *TransformersHandler {
	return &TransformersHandler{dbClient: dbClient}
}

// Create registers a new transformer. Transformer numbers are unique.
func (h *TransformersHandler) Create(c *gin.Context) {
	var req models.CreateTransformerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "transformerNo is required"})
		return
	}

	if _, err := h.dbClient.GetTransformerByNo(req.TransformerNo); err == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "transformer number already exists"})
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to check transformer",
			Message: err.Error(),
		})
		return
	}

	t := models.Transformer{
		TransformerNo:   req.TransformerNo,
		PoleNo:          nullString(req.PoleNo),
		Region:          nullString(req.Region),
		Type:            nullString(req.Type),
		Capacity:        nullString(req.Capacity),
		LocationDetails: nullString(req.LocationDetails),
		Starred:         req.Starred,
	}
	if err := h.dbClient.CreateTransformer(&t); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create transformer",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.NewTransformerResponse(&t))
}

func (h *TransformersHandler) List(c *gin.Context) {
	transformers, err := h.dbClient.ListTransformers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list transformers",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.TransformerResponse, 0, len(transformers))
	for i := range transformers {
		responses = append(responses, models.NewTransformerResponse(&transformers[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// Get looks a transformer up by its number first, then by UUID, so both the
// display number and the primary key work as the path parameter.
func (h *TransformersHandler) Get(c *gin.Context) {
	t, err := h.findTransformer(c.Param("no"))
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}
	c.JSON(http.StatusOK, models.NewTransformerResponse(t))
}

func (h *TransformersHandler) findTransformer(idOrNo string) (*models.Transformer, error) {
	t, err := h.dbClient.GetTransformerByNo(idOrNo)
	if errors.Is(err, models.ErrNotFound) {
		if id, parseErr := uuid.Parse(idOrNo); parseErr == nil {
			return h.dbClient.GetTransformer(id)
		}
	}
	return t, err
}

// Update applies a partial update to the transformer identified by its
// number. Absent fields are left unchanged.
func (h *TransformersHandler) Update(c *gin.Context) {
	t, err := h.dbClient.GetTransformerByNo(c.Param("no"))
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}

	var req models.UpdateTransformerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.TransformerNo != nil && *req.TransformerNo != "" {
		t.TransformerNo = *req.TransformerNo
	}
	if req.PoleNo != nil {
		t.PoleNo = nullString(*req.PoleNo)
	}
	if req.Region != nil {
		t.Region = nullString(*req.Region)
	}
	if req.Type != nil {
		t.Type = nullString(*req.Type)
	}
	if req.Capacity != nil {
		t.Capacity = nullString(*req.Capacity)
	}
	if req.LocationDetails != nil {
		t.LocationDetails = nullString(*req.LocationDetails)
	}
	if req.Starred != nil {
		t.Starred = *req.Starred
	}

	if err := h.dbClient.UpdateTransformer(t); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update transformer",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.NewTransformerResponse(t))
}

func (h *TransformersHandler) Delete(c *gin.Context) {
	t, err := h.dbClient.GetTransformerByNo(c.Param("no"))
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}

	if err := h.dbClient.DeleteTransformer(t.ID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete transformer",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetData builds the consolidated view used by the transformer detail page:
// the transformer itself plus its inspections, newest first. The id parameter
// accepts a transformer number or a UUID.
func (h *TransformersHandler) GetData(c *gin.Context) {
	idOrNo := c.Query("id")
	if idOrNo == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "id is required"})
		return
	}

	t, err := h.findTransformer(idOrNo)
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

	mapped := make([]gin.H, 0, len(inspections))
	for _, i := range inspections {
		maintenance := "-"
		if i.MaintenanceAt.Valid {
			maintenance = i.MaintenanceAt.Time.UTC().Format(time.RFC3339)
		}
		mapped = append(mapped, gin.H{
			"id":              i.ID.String(),
			"inspectedDate":   i.InspectedAt.UTC().Format(time.RFC3339),
			"maintenanceDate": maintenance,
			"status":          string(i.Status),
			"starred":         i.Starred,
			"notes":           i.Notes.String,
		})
	}

	var baselineURL any
	if t.BaselineImagePath.Valid && t.BaselineImagePath.String != "" {
		baselineURL = "/media/" + t.BaselineImagePath.String
	}
	var lastInspectedAt any
	if len(inspections) > 0 {
		lastInspectedAt = inspections[0].InspectedAt.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"transformer": gin.H{
			"transformerNo":   t.TransformerNo,
			"poleNo":          t.PoleNo.String,
			"region":          t.Region.String,
			"type":            t.Type.String,
			"capacity":        t.Capacity.String,
			"starred":         t.Starred,
			"createdAt":       t.CreatedAt.UTC().Format(time.RFC3339),
			"baselineUrl":     baselineURL,
			"lastInspectedAt": lastInspectedAt,
		},
		"inspections": mapped,
	})
}

func respondDBError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   fallback,
		Message: err.Error(),
	})
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
