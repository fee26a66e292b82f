package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sti-backend/internal/database"
	"sti-backend/internal/handlers"
)

func errNoRows() error {
	return sql.ErrNoRows
}

var transformerColumns = []string{
	"id", "transformer_no", "pole_no", "region", "type", "capacity", "location_details",
	"baseline_image_path", "baseline_uploaded_at", "uploader_name", "starred", "created_at",
}

func transformerRow(id uuid.UUID, transformerNo string) *sqlmock.Rows {
	return sqlmock.NewRows(transformerColumns).AddRow(
		id, transformerNo, "P-7", "Colombo", "Distribution", "100kVA", nil,
		nil, nil, nil, false, time.Now().UTC(),
	)
}

func newTransformersRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := handlers.NewTransformersHandler(database.NewClientWithDB(db))
	router := gin.New()
	router.POST("/api/transformers", h.Create)
	router.GET("/api/transformers/:no", h.Get)
	router.DELETE("/api/transformers/:no", h.Delete)
	return router, mock
}

func TestTransformersHandler_Create_DuplicateNo(t *testing.T) {
	router, mock := newTransformersRouter(t)

	mock.ExpectQuery("FROM transformers").
		WithArgs("AZ-1").
		WillReturnRows(transformerRow(uuid.New(), "AZ-1"))

	body, _ := json.Marshal(map[string]any{"transformerNo": "AZ-1"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/transformers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransformersHandler_Create(t *testing.T) {
	router, mock := newTransformersRouter(t)

	mock.ExpectQuery("FROM transformers").
		WithArgs("AZ-9").
		WillReturnError(errNoRows())
	mock.ExpectQuery("INSERT INTO transformers").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	body, _ := json.Marshal(map[string]any{
		"transformerNo": "AZ-9",
		"region":        "Kandy",
		"starred":       true,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/transformers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AZ-9", resp["transformerNo"])
	assert.Equal(t, "Kandy", resp["region"])
	assert.Equal(t, true, resp["starred"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransformersHandler_Get_ByNumber(t *testing.T) {
	router, mock := newTransformersRouter(t)

	id := uuid.New()
	mock.ExpectQuery("FROM transformers").
		WithArgs("AZ-1").
		WillReturnRows(transformerRow(id, "AZ-1"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/transformers/AZ-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransformersHandler_Get_FallsBackToUUID(t *testing.T) {
	router, mock := newTransformersRouter(t)

	id := uuid.New()
	mock.ExpectQuery("FROM transformers").
		WithArgs(id.String()).
		WillReturnError(errNoRows())
	mock.ExpectQuery("FROM transformers").
		WithArgs(id).
		WillReturnRows(transformerRow(id, "AZ-1"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/transformers/"+id.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AZ-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransformersHandler_Get_NotFound(t *testing.T) {
	router, mock := newTransformersRouter(t)

	mock.ExpectQuery("FROM transformers").
		WithArgs("missing").
		WillReturnError(errNoRows())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/transformers/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "not found"}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransformersHandler_Delete(t *testing.T) {
	router, mock := newTransformersRouter(t)

	id := uuid.New()
	mock.ExpectQuery("FROM transformers").
		WithArgs("AZ-1").
		WillReturnRows(transformerRow(id, "AZ-1"))
	mock.ExpectExec("DELETE FROM transformers").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/api/transformers/AZ-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
