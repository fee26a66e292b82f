package inspection_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sti-backend/internal/database"
	"sti-backend/internal/inspection"
	"sti-backend/internal/media"
	"sti-backend/internal/models"
)

var inspectionColumns = []string{
	"id", "transformer_id", "transformer_no", "inspected_at", "maintenance_at",
	"status", "notes", "starred", "thermal_uploader_name", "weather_condition", "thermal_image_path",
}

func newService(t *testing.T) (*inspection.Service, sqlmock.Sqlmock, string) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	client := database.NewClientWithDB(db)
	svc := inspection.NewService(client, media.NewStore(root), media.NewResolver(root), zap.NewNop())
	return svc, mock, root
}

func inspectionRow(id, transformerID uuid.UUID, status string, thermalPath any) *sqlmock.Rows {
	return sqlmock.NewRows(inspectionColumns).AddRow(
		id, transformerID, "AZ-1", time.Now().UTC(), nil,
		status, nil, false, nil, nil, thermalPath,
	)
}

func TestService_AttachThermal_RejectsUnsupportedType(t *testing.T) {
	svc, mock, _ := newService(t)

	id := uuid.New()
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, uuid.New(), "IN_PROGRESS", nil))

	_, err := svc.AttachThermal(id, "scan.gif", "image/gif", strings.NewReader("img"), "", "")

	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AttachThermal_SavesFileAndCompletes(t *testing.T) {
	svc, mock, root := newService(t)

	id := uuid.New()
	transformerID := uuid.New()
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, transformerID, "IN_PROGRESS", nil))
	mock.ExpectExec("UPDATE inspections").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, transformerID, "COMPLETED",
			"media/inspections/AZ-1/"+id.String()+".jpg"))

	insp, err := svc.AttachThermal(id, "scan.jpg", "image/jpeg", strings.NewReader("img"), "tech", "sunny")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, insp.Status)

	_, statErr := os.Stat(filepath.Join(root, "inspections", "AZ-1", id.String()+".jpg"))
	assert.NoError(t, statErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RemoveThermal_RequiresCompleted(t *testing.T) {
	svc, mock, _ := newService(t)

	id := uuid.New()
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, uuid.New(), "IN_PROGRESS", nil))

	_, err := svc.RemoveThermal(id)

	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RemoveThermal_DeletesFileAndReverts(t *testing.T) {
	svc, mock, root := newService(t)

	id := uuid.New()
	transformerID := uuid.New()
	thermal := filepath.Join(root, "inspections", "AZ-1", id.String()+".jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(thermal), 0o755))
	require.NoError(t, os.WriteFile(thermal, []byte("img"), 0o644))

	stored := "media/inspections/AZ-1/" + id.String() + ".jpg"
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, transformerID, "COMPLETED", stored))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE inspections").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM inspection_annotations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, transformerID, "IN_PROGRESS", nil))

	insp, err := svc.RemoveThermal(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, insp.Status)

	_, statErr := os.Stat(thermal)
	assert.True(t, os.IsNotExist(statErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Patch_IgnoresUnknownStatus(t *testing.T) {
	svc, mock, _ := newService(t)

	id := uuid.New()
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, uuid.New(), "IN_PROGRESS", nil))
	mock.ExpectExec("UPDATE inspections").
		WillReturnResult(sqlmock.NewResult(0, 1))

	bogus := "ARCHIVED"
	insp, err := svc.Patch(id, models.PatchInspectionRequest{Status: &bogus})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInProgress, insp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Patch_StatusCaseInsensitive(t *testing.T) {
	svc, mock, _ := newService(t)

	id := uuid.New()
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(inspectionRow(id, uuid.New(), "IN_PROGRESS", nil))
	mock.ExpectExec("UPDATE inspections").
		WillReturnResult(sqlmock.NewResult(0, 1))

	status := "needs_review"
	insp, err := svc.Patch(id, models.PatchInspectionRequest{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.StatusNeedsReview, insp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Patch_EmptyMaintenanceDateClears(t *testing.T) {
	svc, mock, _ := newService(t)

	id := uuid.New()
	rows := sqlmock.NewRows(inspectionColumns).AddRow(
		id, uuid.New(), "AZ-1", time.Now().UTC(), time.Now().UTC(),
		"COMPLETED", nil, false, nil, nil, nil,
	)
	mock.ExpectQuery("FROM inspections").WillReturnRows(rows)
	mock.ExpectExec("UPDATE inspections").
		WillReturnResult(sqlmock.NewResult(0, 1))

	empty := ""
	insp, err := svc.Patch(id, models.PatchInspectionRequest{MaintenanceDate: &empty})
	require.NoError(t, err)

	assert.False(t, insp.MaintenanceAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Patch_BadTimestampIgnored(t *testing.T) {
	svc, mock, _ := newService(t)

	id := uuid.New()
	inspectedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(inspectionColumns).AddRow(
		id, uuid.New(), "AZ-1", inspectedAt, nil,
		"IN_PROGRESS", nil, false, nil, nil, nil,
	)
	mock.ExpectQuery("FROM inspections").WillReturnRows(rows)
	mock.ExpectExec("UPDATE inspections").
		WillReturnResult(sqlmock.NewResult(0, 1))

	bad := "not-a-date"
	insp, err := svc.Patch(id, models.PatchInspectionRequest{InspectedAt: &bad})
	require.NoError(t, err)

	assert.Equal(t, inspectedAt, insp.InspectedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
