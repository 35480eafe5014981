package models

import (
	"sort"
	"sync"
	"time"
)

const (
	skipWeightTop    = 2.0
	skipWeightNormal = 1.0
	topRankedCutoff  = 3
)

// Library is the aggregate root holding every tracked frequency.
// One instance exists per process; all access goes through its lock.
// Mutations reassert the star invariants (sorted, tolerance-deduped)
// at the boundary rather than trusting callers.
type Library struct {
	mu         sync.RWMutex
	items      map[string]*Frequency
	order      []string
	notes      map[string]string
	settings   map[string]any
	generation uint64

	nowMillis func() int64
}

func NewLibrary() *Library {
	return &Library{
		items:     make(map[string]*Frequency),
		notes:     make(map[string]string),
		settings:  make(map[string]any),
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

// AddFrequency registers a new tracked source. Idempotent: when sourceID is
// already present the stored entry is returned unchanged.
func (l *Library) AddFrequency(sourceID, title string, kind SourceKind) *Frequency {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.items[sourceID]; ok {
		return f.Clone()
	}

	f := &Frequency{
		SourceID:   sourceID,
		SourceKind: kind,
		Title:      title,
		AddedAt:    l.nowMillis(),
		Stars:      []Star{},
		Sessions:   []Session{},
	}
	l.items[sourceID] = f
	l.order = append(l.order, sourceID)
	l.generation++
	return f.Clone()
}

// RemoveFrequency deletes a tracked source. No-op when absent.
func (l *Library) RemoveFrequency(sourceID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[sourceID]; !ok {
		return
	}
	delete(l.items, sourceID)
	for i, id := range l.order {
		if id == sourceID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.generation++
}

func (l *Library) AddStar(sourceID string, timestamp float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.items[sourceID]
	if !ok {
		return &NotFoundError{SourceID: sourceID}
	}
	if timestamp < 0 {
		timestamp = 0
	}
	if f.AddStar(timestamp, l.nowMillis()) {
		l.generation++
	}
	return nil
}

// RemoveStar drops every star within StarTolerance of timestamp.
func (l *Library) RemoveStar(sourceID string, timestamp float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.items[sourceID]
	if !ok {
		return &NotFoundError{SourceID: sourceID}
	}
	if f.RemoveStarsNear(timestamp) > 0 {
		l.generation++
	}
	return nil
}

// RecordSession appends one playback interval. Sessions shorter than
// MinSessionSeconds and sessions for unknown frequencies are dropped.
func (l *Library) RecordSession(sourceID string, durationSeconds float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.items[sourceID]
	if !ok || durationSeconds < MinSessionSeconds {
		return
	}
	startedAt := l.nowMillis() - int64(durationSeconds*1000)
	f.Sessions = append(f.Sessions, Session{
		StartedAt:       startedAt,
		DurationSeconds: durationSeconds,
	})
	f.LastPlayedAt = startedAt
	l.generation++
}

// RecordSkip accumulates skip weight. position is the 0-based rank the skip
// happened from; skipping a top-ranked entry counts double.
func (l *Library) RecordSkip(sourceID string, position int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.items[sourceID]
	if !ok {
		return
	}
	if position < topRankedCutoff {
		f.SkipCount += skipWeightTop
	} else {
		f.SkipCount += skipWeightNormal
	}
	l.generation++
}

func (l *Library) RecordCompletion(sourceID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.items[sourceID]
	if !ok {
		return
	}
	f.CompletionCount++
	l.generation++
}

func (l *Library) SetDuration(sourceID string, seconds float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.items[sourceID]
	if !ok {
		return
	}
	f.TotalDuration = seconds
	l.generation++
}

func (l *Library) Get(sourceID string) (*Frequency, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.items[sourceID]
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

// ListAll returns deep copies sorted by AddedAt descending; entries added
// the same millisecond keep insertion order.
func (l *Library) ListAll() []*Frequency {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Frequency, 0, len(l.order))
	for _, id := range l.order {
		result = append(result, l.items[id].Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].AddedAt > result[j].AddedAt
	})
	return result
}

func (l *Library) Stars(sourceID string) ([]Star, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.items[sourceID]
	if !ok {
		return nil, false
	}
	stars := make([]Star, len(f.Stars))
	copy(stars, f.Stars)
	return stars, true
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Library) StarCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, f := range l.items {
		total += len(f.Stars)
	}
	return total
}

func (l *Library) SessionCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, f := range l.items {
		total += len(f.Sessions)
	}
	return total
}

// Generation increments on every effective mutation. Read caches embed it
// in their keys so a stale ranking is never served after a mutation.
func (l *Library) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

func (l *Library) SetNote(sourceID, note string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes[sourceID] = note
	l.generation++
}

func (l *Library) Note(sourceID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.notes[sourceID]
	return n, ok
}
