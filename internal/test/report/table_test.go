package report_test

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sti-backend/internal/models"
	"sti-backend/internal/report"
)

func TestBuildTableRows(t *testing.T) {
	id := uuid.New()
	inspections := []models.Inspection{
		{
			ID:            id,
			TransformerNo: "AZ-1",
			InspectedAt:   time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
			MaintenanceAt: sql.NullTime{Time: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), Valid: true},
			Status:        models.StatusCompleted,
			Starred:       true,
		},
		{
			ID:            uuid.New(),
			TransformerNo: "AZ-2",
			InspectedAt:   time.Date(2025, 6, 3, 9, 15, 0, 0, time.UTC),
			Status:        models.StatusInProgress,
		},
	}

	rows := report.BuildTableRows(inspections, time.UTC)
	require.Len(t, rows, 2)

	assert.Equal(t, "AZ-1", rows[0].TransformerNo)
	assert.Equal(t, id.String(), rows[0].InspectionNo)
	assert.Equal(t, "01 Jun, 2025 12:30", rows[0].InspectedDate)
	assert.Equal(t, "2025-06-01T12:30:00Z", rows[0].InspectedAtIso)
	assert.Equal(t, "02 Jun, 2025 08:00", rows[0].MaintenanceDate)
	assert.Equal(t, "Completed", rows[0].Status)
	assert.True(t, rows[0].Starred)

	assert.Equal(t, "-", rows[1].MaintenanceDate)
	assert.Equal(t, "", rows[1].MaintenanceIso)
	assert.Equal(t, "In Progress", rows[1].Status)
}

func TestGenerateInspectionTable(t *testing.T) {
	rows := []models.InspectionTableRow{
		{
			TransformerNo:   "AZ-1",
			InspectionNo:    uuid.NewString(),
			InspectedDate:   "01 Jun, 2025 12:30",
			MaintenanceDate: "-",
			Status:          "Completed",
			Starred:         true,
		},
	}

	data, err := report.GenerateInspectionTable(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Inspections", "A2")
	require.NoError(t, err)
	assert.Equal(t, "AZ-1", got)

	header, err := f.GetCellValue("Inspections", "E1")
	require.NoError(t, err)
	assert.Equal(t, "Status", header)
}
