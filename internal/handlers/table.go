package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sti-backend/internal/database"
	"sti-backend/internal/models"
	"sti-backend/internal/report"
)

type TableHandler struct {
	dbClient *database.Client
}

func NewTableHandler(dbClient *database.Client) *TableHandler {
	return &TableHandler{dbClient: dbClient}
}

// Get returns every inspection as a display row, newest first. The tz query
// parameter controls how timestamps are rendered.
func (h *TableHandler) Get(c *gin.Context) {
	rows, ok := h.buildRows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Export renders the same table as a downloadable xlsx workbook.
func (h *TableHandler) Export(c *gin.Context) {
	rows, ok := h.buildRows(c)
	if !ok {
		return
	}

	data, err := report.GenerateInspectionTable(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to generate workbook",
			Message: err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inspections.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *TableHandler) buildRows(c *gin.Context) ([]models.InspectionTableRow, bool) {
	tz := c.DefaultQuery("tz", report.DefaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid timezone"})
		return nil, false
	}

	inspections, err := h.dbClient.ListAllInspections()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list inspections",
			Message: err.Error(),
		})
		return nil, false
	}

	return report.BuildTableRows(inspections, loc), true
}
