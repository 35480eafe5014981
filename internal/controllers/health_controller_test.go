package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuner/internal/models"
	"tuner/internal/testutil"
)

func TestHealth_ReportsCounts(t *testing.T) {
	svc := testutil.NewMockLibraryService()
	svc.Lock("abc", "Station", models.SourceYouTube)
	require.NoError(t, svc.AddStar("abc", 10))
	require.NoError(t, svc.AddStar("abc", 60))
	svc.RecordSession("abc", 120)

	hc := NewHealthController(svc)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(1), resp["frequencies"])
	assert.Equal(t, float64(2), resp["stars"])
	assert.Equal(t, float64(1), resp["sessions"])
	assert.NotEmpty(t, resp["uptime"])
	assert.GreaterOrEqual(t, resp["uptime_seconds"], float64(0))
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := NewHealthController(testutil.NewMockLibraryService())
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
