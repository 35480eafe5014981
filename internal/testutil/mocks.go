package testutil

import (
	"sync"
	"time"

	"tuner/internal/models"
	"tuner/internal/providers"
	"tuner/internal/ranking"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockLibraryService implements services.LibraryServiceInterface backed by
// a real Library, with call recording for the event intakes.
type MockLibraryService struct {
	mu           sync.Mutex
	Library      *models.Library
	SessionCalls []SessionCall
	SkipCalls    []SkipCall
	RestoreCalls int
	RestoreErr   error
	SeededCount  int
}

type SessionCall struct {
	SourceID string
	Duration float64
}

type SkipCall struct {
	SourceID string
	Position int
}

func NewMockLibraryService() *MockLibraryService {
	return &MockLibraryService{Library: models.NewLibrary()}
}

func (m *MockLibraryService) Lock(sourceID, title string, kind models.SourceKind) *models.Frequency {
	return m.Library.AddFrequency(sourceID, title, kind)
}

func (m *MockLibraryService) Unlock(sourceID string) {
	m.Library.RemoveFrequency(sourceID)
}

func (m *MockLibraryService) AddStar(sourceID string, timestamp float64) error {
	return m.Library.AddStar(sourceID, timestamp)
}

func (m *MockLibraryService) RemoveStar(sourceID string, timestamp float64) error {
	return m.Library.RemoveStar(sourceID, timestamp)
}

func (m *MockLibraryService) RecordSession(sourceID string, durationSeconds float64) {
	m.mu.Lock()
	m.SessionCalls = append(m.SessionCalls, SessionCall{SourceID: sourceID, Duration: durationSeconds})
	m.mu.Unlock()
	m.Library.RecordSession(sourceID, durationSeconds)
}

func (m *MockLibraryService) RecordSkip(sourceID string, position int) {
	m.mu.Lock()
	m.SkipCalls = append(m.SkipCalls, SkipCall{SourceID: sourceID, Position: position})
	m.mu.Unlock()
	m.Library.RecordSkip(sourceID, position)
}

func (m *MockLibraryService) RecordCompletion(sourceID string) {
	m.Library.RecordCompletion(sourceID)
}

func (m *MockLibraryService) SetDuration(sourceID string, seconds float64) {
	m.Library.SetDuration(sourceID, seconds)
}

func (m *MockLibraryService) Get(sourceID string) (*models.Frequency, bool) {
	return m.Library.Get(sourceID)
}

func (m *MockLibraryService) ListAll() []*models.Frequency {
	return m.Library.ListAll()
}

func (m *MockLibraryService) Ranked() []ranking.Entry {
	return ranking.Rank(m.Library.ListAll(), time.Now())
}

func (m *MockLibraryService) Stars(sourceID string) ([]models.Star, error) {
	stars, ok := m.Library.Stars(sourceID)
	if !ok {
		return nil, &models.NotFoundError{SourceID: sourceID}
	}
	return stars, nil
}

func (m *MockLibraryService) Peaks(sourceID string, gap float64) ([]float64, error) {
	stars, ok := m.Library.Stars(sourceID)
	if !ok {
		return nil, &models.NotFoundError{SourceID: sourceID}
	}
	return ranking.Peaks(stars, gap, 0), nil
}

func (m *MockLibraryService) Snapshot() *models.SnapshotDoc {
	return m.Library.Snapshot()
}

func (m *MockLibraryService) Restore(doc *models.SnapshotDoc) error {
	m.mu.Lock()
	m.RestoreCalls++
	restoreErr := m.RestoreErr
	m.mu.Unlock()
	if restoreErr != nil {
		return restoreErr
	}
	return m.Library.Restore(doc)
}

func (m *MockLibraryService) SeedIfEmpty() int {
	n := m.Library.SeedIfEmpty()
	m.mu.Lock()
	m.SeededCount += n
	m.mu.Unlock()
	return n
}

func (m *MockLibraryService) Generation() uint64  { return m.Library.Generation() }
func (m *MockLibraryService) FrequencyCount() int { return m.Library.Len() }
func (m *MockLibraryService) StarCount() int      { return m.Library.StarCount() }
func (m *MockLibraryService) SessionCount() int   { return m.Library.SessionCount() }

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockScheduler implements interfaces.SchedulerInterface.
type MockScheduler struct {
	mu           sync.Mutex
	PersistCalls int
	PersistErr   error
	RestoreCalls int
}

func (m *MockScheduler) Init() {}
func (m *MockScheduler) Stop() {}

func (m *MockScheduler) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RestoreCalls++
	return nil
}

func (m *MockScheduler) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistCalls++
	return m.PersistErr
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu               sync.Mutex
	RequestCalls     int
	DurationCalls    int
	CacheHits        int
	CacheMisses      int
	PersistenceCalls int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCalls++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DurationCalls++
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceCalls++
}
