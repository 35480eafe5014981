package controllers

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"tuner/internal/library/interfaces"
	"tuner/internal/models"
	"tuner/internal/providers"
	"tuner/internal/ranking"
	"tuner/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ApiController is the seam between the player UI and the library core.
// Mutations arrive as POSTed behavioral events; reads recompute rankings
// and peaks from the current snapshot, cached per store generation.
type ApiController struct {
	logger    providers.Logger
	service   services.LibraryServiceInterface
	cache     providers.CacheProviderInterface
	scheduler interfaces.SchedulerInterface
}

func NewApiController(logger providers.Logger, service services.LibraryServiceInterface, cache providers.CacheProviderInterface, scheduler interfaces.SchedulerInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		service:   service,
		cache:     cache,
		scheduler: scheduler,
	}
}

func (ac *ApiController) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) genKey(prefix string) string {
	return fmt.Sprintf("%s:g%d", prefix, ac.service.Generation())
}

// Lock starts tracking a frequency. Idempotent on sourceId.
func (ac *ApiController) Lock(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID   string            `json:"sourceId"`
		Title      string            `json:"title"`
		SourceKind models.SourceKind `json:"sourceKind"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	if payload.SourceID == "" || !payload.SourceKind.Valid() {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	freq := ac.service.Lock(payload.SourceID, payload.Title, payload.SourceKind)
	gson, err := json.Marshal(freq)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(gson)
}

func (ac *ApiController) Unlock(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID string `json:"sourceId"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	ac.service.Unlock(payload.SourceID)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) AddStar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID  string  `json:"sourceId"`
		Timestamp float64 `json:"timestamp"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	if err := ac.service.AddStar(payload.SourceID, payload.Timestamp); err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (ac *ApiController) RemoveStar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID  string  `json:"sourceId"`
		Timestamp float64 `json:"timestamp"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	if err := ac.service.RemoveStar(payload.SourceID, payload.Timestamp); err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordSession and the other telemetry intakes always answer 202: events
// for unknown or since-removed frequencies are dropped, not errors.
func (ac *ApiController) RecordSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID        string  `json:"sourceId"`
		DurationSeconds float64 `json:"durationSeconds"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	ac.service.RecordSession(payload.SourceID, payload.DurationSeconds)
	w.WriteHeader(http.StatusAccepted)
}

func (ac *ApiController) RecordSkip(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID string `json:"sourceId"`
		Position int    `json:"position"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	ac.service.RecordSkip(payload.SourceID, payload.Position)
	w.WriteHeader(http.StatusAccepted)
}

func (ac *ApiController) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID string `json:"sourceId"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	ac.service.RecordCompletion(payload.SourceID)
	w.WriteHeader(http.StatusAccepted)
}

func (ac *ApiController) SetDuration(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SourceID string  `json:"sourceId"`
		Seconds  float64 `json:"seconds"`
	}
	if !ac.decode(w, r, &payload) {
		return
	}
	ac.service.SetDuration(payload.SourceID, payload.Seconds)
	w.WriteHeader(http.StatusAccepted)
}

// GetRanked serves the collection in engagement order.
func (ac *ApiController) GetRanked(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, ac.genKey("list"), func() (any, error) {
		return ac.service.Ranked(), nil
	})
}

// GetFrequencies serves the raw collection, newest first.
func (ac *ApiController) GetFrequencies(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, ac.genKey("freqs"), func() (any, error) {
		return ac.service.ListAll(), nil
	})
}

func (ac *ApiController) GetStars(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	ac.serveFromCacheOrCompute(w, ac.genKey("stars:"+id), func() (any, error) {
		return ac.service.Stars(id)
	})
}

func (ac *ApiController) GetPeaks(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	gap := cast.ToFloat64(r.URL.Query().Get("gap"))
	cacheKey := ac.genKey(fmt.Sprintf("peaks:%s:%v", id, gap))
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return ac.service.Peaks(id, gap)
	})
}

type peakNavResponse struct {
	Target float64 `json:"target"`
	Found  bool    `json:"found"`
}

func (ac *ApiController) peakNav(w http.ResponseWriter, r *http.Request, nav func(peaks []float64, pos float64) (float64, bool)) {
	id := r.URL.Query().Get("id")
	pos := cast.ToFloat64(r.URL.Query().Get("pos"))
	gap := cast.ToFloat64(r.URL.Query().Get("gap"))

	peaks, err := ac.service.Peaks(id, gap)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	target, found := nav(peaks, pos)
	gson, err := json.Marshal(peakNavResponse{Target: target, Found: found})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// Export serves the full snapshot document for user-initiated backup.
func (ac *ApiController) Export(w http.ResponseWriter, r *http.Request) {
	gson, err := json.Marshal(ac.service.Snapshot())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// Import replaces the library with an uploaded snapshot. All-or-nothing:
// older versions are migrated forward first, any validation failure leaves
// the library untouched. A successful import is persisted immediately.
func (ac *ApiController) Import(w http.ResponseWriter, r *http.Request) {
	var doc models.SnapshotDoc
	if !ac.decode(w, r, &doc) {
		return
	}

	if _, err := models.Migrate(&doc); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := ac.service.Restore(&doc); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := ac.scheduler.Persist(); err != nil {
		ac.logger.Errorf(providers.TypeApp, "Import persisted in memory only: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetNextPeak(w http.ResponseWriter, r *http.Request) {
	ac.peakNav(w, r, ranking.NextPeak)
}

func (ac *ApiController) GetPrevPeak(w http.ResponseWriter, r *http.Request) {
	ac.peakNav(w, r, ranking.PrevPeak)
}
