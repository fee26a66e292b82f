package detector_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sti-backend/internal/detector"
)

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thermal.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake-jpeg"), 0o644))
	return path
}

func TestClient_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("image")
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"class": "loose_joint_red", "confidence": 0.92,
			 "bounding_box": {"x": 10, "y": 20, "width": 30, "height": 40}},
			{"class": "point_overload_yellow", "confidence": 0.41,
			 "bounding_box": {"x": 1, "y": 2, "width": 3, "height": 4}}
		]`))
	}))
	defer server.Close()

	client := detector.NewClient(server.URL, 5*time.Second, zap.NewNop())
	detections, err := client.Detect(context.Background(), tempImage(t))
	require.NoError(t, err)

	require.Len(t, detections, 2)
	assert.Equal(t, "loose_joint_red", detections[0]["class"])
	assert.InDelta(t, 0.92, detections[0]["confidence"].(float64), 1e-9)
}

func TestClient_Detect_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := detector.NewClient(server.URL, 5*time.Second, zap.NewNop())
	_, err := client.Detect(context.Background(), tempImage(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Detect_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("DEBUG: loading model\n[]"))
	}))
	defer server.Close()

	client := detector.NewClient(server.URL, 5*time.Second, zap.NewNop())
	_, err := client.Detect(context.Background(), tempImage(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Retrain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retrain", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"queued": true}`))
	}))
	defer server.Close()

	client := detector.NewClient(server.URL, 5*time.Second, zap.NewNop())
	ack, err := client.Retrain(context.Background(), "/data/export")
	require.NoError(t, err)
	assert.Equal(t, true, ack["queued"])
}
