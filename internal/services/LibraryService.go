package services

import (
	"time"

	"tuner/internal/models"
	"tuner/internal/ranking"
	"tuner/internal/structures"
)

type LibraryServiceInterface interface {
	Lock(sourceID, title string, kind models.SourceKind) *models.Frequency
	Unlock(sourceID string)
	AddStar(sourceID string, timestamp float64) error
	RemoveStar(sourceID string, timestamp float64) error
	RecordSession(sourceID string, durationSeconds float64)
	RecordSkip(sourceID string, position int)
	RecordCompletion(sourceID string)
	SetDuration(sourceID string, seconds float64)

	Get(sourceID string) (*models.Frequency, bool)
	ListAll() []*models.Frequency
	Ranked() []ranking.Entry
	Stars(sourceID string) ([]models.Star, error)
	Peaks(sourceID string, gap float64) ([]float64, error)

	Snapshot() *models.SnapshotDoc
	Restore(doc *models.SnapshotDoc) error
	SeedIfEmpty() int

	Generation() uint64
	FrequencyCount() int
	StarCount() int
	SessionCount() int
}

// LibraryService owns the single per-process Library instance and applies
// the behavioral events emitted by the player UI against it.
type LibraryService struct {
	library *models.Library
	conf    *structures.Config
}

func NewLibraryService(conf *structures.Config) LibraryServiceInterface {
	return &LibraryService{
		library: models.NewLibrary(),
		conf:    conf,
	}
}

// Lock tracks a new frequency. Idempotent on sourceID.
func (ls *LibraryService) Lock(sourceID, title string, kind models.SourceKind) *models.Frequency {
	return ls.library.AddFrequency(sourceID, title, kind)
}

// Unlock removes a tracked frequency.
func (ls *LibraryService) Unlock(sourceID string) {
	ls.library.RemoveFrequency(sourceID)
}

func (ls *LibraryService) AddStar(sourceID string, timestamp float64) error {
	return ls.library.AddStar(sourceID, timestamp)
}

func (ls *LibraryService) RemoveStar(sourceID string, timestamp float64) error {
	return ls.library.RemoveStar(sourceID, timestamp)
}

func (ls *LibraryService) RecordSession(sourceID string, durationSeconds float64) {
	ls.library.RecordSession(sourceID, durationSeconds)
}

func (ls *LibraryService) RecordSkip(sourceID string, position int) {
	ls.library.RecordSkip(sourceID, position)
}

func (ls *LibraryService) RecordCompletion(sourceID string) {
	ls.library.RecordCompletion(sourceID)
}

func (ls *LibraryService) SetDuration(sourceID string, seconds float64) {
	ls.library.SetDuration(sourceID, seconds)
}

func (ls *LibraryService) Get(sourceID string) (*models.Frequency, bool) {
	return ls.library.Get(sourceID)
}

func (ls *LibraryService) ListAll() []*models.Frequency {
	return ls.library.ListAll()
}

// Ranked recomputes the engagement ordering from the current snapshot.
func (ls *LibraryService) Ranked() []ranking.Entry {
	return ranking.Rank(ls.library.ListAll(), time.Now())
}

func (ls *LibraryService) Stars(sourceID string) ([]models.Star, error) {
	stars, ok := ls.library.Stars(sourceID)
	if !ok {
		return nil, &models.NotFoundError{SourceID: sourceID}
	}
	return stars, nil
}

// Peaks clusters one frequency's stars. gap <= 0 falls back to the
// configured cluster gap.
func (ls *LibraryService) Peaks(sourceID string, gap float64) ([]float64, error) {
	stars, ok := ls.library.Stars(sourceID)
	if !ok {
		return nil, &models.NotFoundError{SourceID: sourceID}
	}
	if gap <= 0 {
		gap = ls.conf.Ranking.ClusterGapSeconds
	}
	return ranking.Peaks(stars, gap, ls.conf.Ranking.MaxPeaks), nil
}

func (ls *LibraryService) Snapshot() *models.SnapshotDoc {
	return ls.library.Snapshot()
}

func (ls *LibraryService) Restore(doc *models.SnapshotDoc) error {
	return ls.library.Restore(doc)
}

func (ls *LibraryService) SeedIfEmpty() int {
	return ls.library.SeedIfEmpty()
}

func (ls *LibraryService) Generation() uint64 {
	return ls.library.Generation()
}

func (ls *LibraryService) FrequencyCount() int {
	return ls.library.Len()
}

func (ls *LibraryService) StarCount() int {
	return ls.library.StarCount()
}

func (ls *LibraryService) SessionCount() int {
	return ls.library.SessionCount()
}
