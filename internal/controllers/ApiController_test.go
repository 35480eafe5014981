package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuner/internal/models"
	"tuner/internal/ranking"
	"tuner/internal/testutil"
)

type controllerFixture struct {
	controller *ApiController
	service    *testutil.MockLibraryService
	cache      *testutil.MockCache
	scheduler  *testutil.MockScheduler
}

func newControllerFixture() *controllerFixture {
	svc := testutil.NewMockLibraryService()
	cache := testutil.NewMockCache()
	sched := &testutil.MockScheduler{}
	return &controllerFixture{
		controller: NewApiController(&testutil.MockLogger{}, svc, cache, sched),
		service:    svc,
		cache:      cache,
		scheduler:  sched,
	}
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func getPath(handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// --- Lock / Unlock ---

func TestLock_ValidPayload(t *testing.T) {
	fx := newControllerFixture()

	rr := postJSON(fx.controller.Lock, `{"sourceId":"abc","title":"Station","sourceKind":"youtube"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, fx.service.FrequencyCount())

	var freq models.Frequency
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &freq))
	assert.Equal(t, "abc", freq.SourceID)
	assert.Equal(t, models.SourceYouTube, freq.SourceKind)
}

func TestLock_Idempotent(t *testing.T) {
	fx := newControllerFixture()

	postJSON(fx.controller.Lock, `{"sourceId":"abc","title":"Station","sourceKind":"youtube"}`)
	rr := postJSON(fx.controller.Lock, `{"sourceId":"abc","title":"Station","sourceKind":"youtube"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, fx.service.FrequencyCount())
}

func TestLock_RejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing sourceId", `{"title":"Station","sourceKind":"youtube"}`},
		{"unknown sourceKind", `{"sourceId":"abc","sourceKind":"vinyl"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newControllerFixture()
			rr := postJSON(fx.controller.Lock, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, 0, fx.service.FrequencyCount())
		})
	}
}

func TestUnlock_RemovesFrequency(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)

	rr := postJSON(fx.controller.Unlock, `{"sourceId":"abc"}`)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, fx.service.FrequencyCount())
}

func TestUnlock_UnknownSourceStillNoContent(t *testing.T) {
	fx := newControllerFixture()

	rr := postJSON(fx.controller.Unlock, `{"sourceId":"missing"}`)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

// --- stars ---

func TestAddStar_Created(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)

	rr := postJSON(fx.controller.AddStar, `{"sourceId":"abc","timestamp":42.5}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	stars, err := fx.service.Stars("abc")
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.Equal(t, 42.5, stars[0].Timestamp)
}

func TestAddStar_UnknownSource(t *testing.T) {
	fx := newControllerFixture()

	rr := postJSON(fx.controller.AddStar, `{"sourceId":"missing","timestamp":42}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRemoveStar_NoContent(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)
	require.NoError(t, fx.service.AddStar("abc", 42))

	rr := postJSON(fx.controller.RemoveStar, `{"sourceId":"abc","timestamp":42}`)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	stars, err := fx.service.Stars("abc")
	require.NoError(t, err)
	assert.Empty(t, stars)
}

func TestRemoveStar_UnknownSource(t *testing.T) {
	fx := newControllerFixture()

	rr := postJSON(fx.controller.RemoveStar, `{"sourceId":"missing","timestamp":42}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- telemetry intakes ---

func TestRecordSession_Accepted(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)

	rr := postJSON(fx.controller.RecordSession, `{"sourceId":"abc","durationSeconds":120}`)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, fx.service.SessionCalls, 1)
	assert.Equal(t, float64(120), fx.service.SessionCalls[0].Duration)
}

func TestRecordSession_UnknownSourceStillAccepted(t *testing.T) {
	fx := newControllerFixture()

	rr := postJSON(fx.controller.RecordSession, `{"sourceId":"missing","durationSeconds":120}`)

	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestRecordSkip_Accepted(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)

	rr := postJSON(fx.controller.RecordSkip, `{"sourceId":"abc","position":1}`)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, fx.service.SkipCalls, 1)
	assert.Equal(t, 1, fx.service.SkipCalls[0].Position)
}

func TestRecordCompletion_Accepted(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)

	rr := postJSON(fx.controller.RecordCompletion, `{"sourceId":"abc"}`)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	f, _ := fx.service.Get("abc")
	assert.Equal(t, 1, f.CompletionCount)
}

func TestSetDuration_Accepted(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)

	rr := postJSON(fx.controller.SetDuration, `{"sourceId":"abc","seconds":3600}`)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	f, _ := fx.service.Get("abc")
	assert.Equal(t, float64(3600), f.TotalDuration)
}

func TestTelemetry_InvalidJSON(t *testing.T) {
	fx := newControllerFixture()

	for _, h := range []http.HandlerFunc{
		fx.controller.RecordSession,
		fx.controller.RecordSkip,
		fx.controller.RecordCompletion,
		fx.controller.SetDuration,
	} {
		rr := postJSON(h, `{broken`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}

// --- reads ---

func TestGetRanked_ReturnsEntries(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)
	require.NoError(t, fx.service.AddStar("abc", 10))

	rr := getPath(fx.controller.GetRanked, "/list")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var entries []ranking.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].Frequency.SourceID)
	assert.Greater(t, entries[0].Score, 0.0)
}

func TestGetRanked_CachesPerGeneration(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)

	getPath(fx.controller.GetRanked, "/list")
	assert.Len(t, fx.cache.Data, 1)

	// same generation hits the cache, no second entry
	getPath(fx.controller.GetRanked, "/list")
	assert.Len(t, fx.cache.Data, 1)

	// a mutation bumps the generation, so the next read computes fresh
	fx.service.Lock("def", "Other Station", models.SourceSoundCloud)
	rr := getPath(fx.controller.GetRanked, "/list")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, fx.cache.Data, 2)

	var entries []ranking.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestGetFrequencies_NewestFirst(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("first", "First", models.SourceYouTube)
	fx.service.Lock("second", "Second", models.SourceYouTube)

	rr := getPath(fx.controller.GetFrequencies, "/frequencies")

	assert.Equal(t, http.StatusOK, rr.Code)
	var freqs []*models.Frequency
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &freqs))
	require.Len(t, freqs, 2)
}

func TestGetStars_SerializesAsBookmarks(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)
	require.NoError(t, fx.service.AddStar("abc", 42))

	rr := getPath(fx.controller.GetStars, "/stars?id=abc")

	assert.Equal(t, http.StatusOK, rr.Code)
	var stars []models.Star
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stars))
	require.Len(t, stars, 1)
	assert.Equal(t, float64(42), stars[0].Timestamp)
}

func TestGetStars_UnknownSource(t *testing.T) {
	fx := newControllerFixture()

	rr := getPath(fx.controller.GetStars, "/stars?id=missing")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetPeaks_ClustersStars(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)
	for _, ts := range []float64{0, 5, 10, 100, 105} {
		require.NoError(t, fx.service.AddStar("abc", ts))
	}

	rr := getPath(fx.controller.GetPeaks, "/peaks?id=abc&gap=30")

	assert.Equal(t, http.StatusOK, rr.Code)
	var peaks []float64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &peaks))
	assert.Equal(t, []float64{5, 103}, peaks)
}

func TestGetPeaks_UnknownSource(t *testing.T) {
	fx := newControllerFixture()

	rr := getPath(fx.controller.GetPeaks, "/peaks?id=missing")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- peak navigation ---

func TestGetNextPeak(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)
	for _, ts := range []float64{10, 50, 90} {
		require.NoError(t, fx.service.AddStar("abc", ts))
	}

	rr := getPath(fx.controller.GetNextPeak, "/peaks/next?id=abc&pos=10")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp peakNavResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, float64(50), resp.Target)
}

func TestGetPrevPeak_Wraparound(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)
	for _, ts := range []float64{10, 50, 90} {
		require.NoError(t, fx.service.AddStar("abc", ts))
	}

	rr := getPath(fx.controller.GetPrevPeak, "/peaks/prev?id=abc&pos=5")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp peakNavResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, float64(90), resp.Target)
}

func TestPeakNav_UnknownSource(t *testing.T) {
	fx := newControllerFixture()

	rr := getPath(fx.controller.GetNextPeak, "/peaks/next?id=missing&pos=0")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- export / import ---

func TestExport_ReturnsSnapshot(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("abc", "Station", models.SourceYouTube)
	require.NoError(t, fx.service.AddStar("abc", 42))

	rr := getPath(fx.controller.Export, "/export")

	assert.Equal(t, http.StatusOK, rr.Code)
	var doc models.SnapshotDoc
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, models.SchemaVersion, doc.Version)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "abc", doc.Items[0].SourceID)
}

func TestImport_ReplacesAndPersists(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("old", "Old Station", models.SourceYouTube)

	body := `{"items":[{"sourceId":"new","title":"New Station","addedAt":1600000000000,"bookmarks":[]}],"version":1}`
	rr := postJSON(fx.controller.Import, body)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, fx.scheduler.PersistCalls)

	_, old := fx.service.Get("old")
	assert.False(t, old)
	f, ok := fx.service.Get("new")
	require.True(t, ok)
	assert.Equal(t, models.SourceYouTube, f.SourceKind)
}

func TestImport_InvalidSnapshotLeavesLibraryUntouched(t *testing.T) {
	fx := newControllerFixture()
	fx.service.Lock("old", "Old Station", models.SourceYouTube)

	body := `{"items":[{"title":"No Id","addedAt":1,"bookmarks":[]}],"version":1}`
	rr := postJSON(fx.controller.Import, body)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, 0, fx.scheduler.PersistCalls)
	_, ok := fx.service.Get("old")
	assert.True(t, ok)
}

func TestImport_NewerVersionRejected(t *testing.T) {
	fx := newControllerFixture()

	body := `{"items":[],"version":99}`
	rr := postJSON(fx.controller.Import, body)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestImport_PersistFailure(t *testing.T) {
	fx := newControllerFixture()
	fx.scheduler.PersistErr = assert.AnError

	body := `{"items":[],"version":5,"notes":{},"settings":{}}`
	rr := postJSON(fx.controller.Import, body)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
