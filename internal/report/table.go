package report

import (
	"time"

	"sti-backend/internal/models"
)

// displayTimeLayout is the human-readable form shown in the inspection table.
const displayTimeLayout = "02 Jan, 2006 15:04"

// DefaultTimezone is used when a request does not name one.
const DefaultTimezone = "Asia/Colombo"

// BuildTableRows flattens inspections into display rows. Timestamps are
// rendered in the given location; missing values show as "-".
func BuildTableRows(inspections []models.Inspection, loc *time.Location) []models.InspectionTableRow {
	rows := make([]models.InspectionTableRow, 0, len(inspections))
	for _, insp := range inspections {
		row := models.InspectionTableRow{
			TransformerNo:   insp.TransformerNo,
			InspectionNo:    insp.ID.String(),
			InspectedAtIso:  insp.InspectedAt.UTC().Format(time.RFC3339),
			InspectedDate:   insp.InspectedAt.In(loc).Format(displayTimeLayout),
			MaintenanceDate: "-",
			Status:          insp.Status.Pretty(),
			Starred:         insp.Starred,
		}
		if insp.MaintenanceAt.Valid {
			row.MaintenanceIso = insp.MaintenanceAt.Time.UTC().Format(time.RFC3339)
			row.MaintenanceDate = insp.MaintenanceAt.Time.In(loc).Format(displayTimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}
