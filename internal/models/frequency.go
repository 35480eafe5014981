package models

import (
	"math"
	"sort"
)

type SourceKind string

const (
	SourceYouTube    SourceKind = "youtube"
	SourceSoundCloud SourceKind = "soundcloud"
)

func (k SourceKind) Valid() bool {
	return k == SourceYouTube || k == SourceSoundCloud
}

const (
	// StarTolerance is the minimum distance in seconds between two stars
	// on the same frequency. Closer inserts are dropped as duplicates.
	StarTolerance = 1.0

	// MinSessionSeconds is the shortest playback interval worth recording.
	MinSessionSeconds = 10.0
)

// Star marks one instant within a frequency's timeline.
type Star struct {
	Timestamp float64 `json:"timestamp"`
	CreatedAt int64   `json:"createdAt"`
}

// Session is one contiguous playback interval.
type Session struct {
	StartedAt       int64   `json:"startedAt"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// Frequency is one tracked audio source together with its engagement history.
// SkipCount is a weighted accumulator, not an event tally: skips on
// top-ranked entries count double.
type Frequency struct {
	SourceID        string     `json:"sourceId"`
	SourceKind      SourceKind `json:"sourceKind"`
	Title           string     `json:"title"`
	AddedAt         int64      `json:"addedAt"`
	LastPlayedAt    int64      `json:"lastPlayedAt,omitempty"`
	Stars           []Star     `json:"bookmarks"`
	Sessions        []Session  `json:"sessions"`
	SkipCount       float64    `json:"skipCount"`
	CompletionCount int        `json:"completionCount"`
	TotalDuration   float64    `json:"totalDuration,omitempty"`
}

// AddStar inserts a star keeping Stars sorted ascending by timestamp.
// Returns false when another star already sits within StarTolerance.
func (f *Frequency) AddStar(timestamp float64, createdAt int64) bool {
	for _, s := range f.Stars {
		if math.Abs(s.Timestamp-timestamp) < StarTolerance {
			return false
		}
	}
	f.Stars = append(f.Stars, Star{Timestamp: timestamp, CreatedAt: createdAt})
	f.sortStars()
	return true
}

// RemoveStarsNear drops every star within StarTolerance of timestamp and
// returns how many were removed.
func (f *Frequency) RemoveStarsNear(timestamp float64) int {
	kept := f.Stars[:0]
	removed := 0
	for _, s := range f.Stars {
		if math.Abs(s.Timestamp-timestamp) < StarTolerance {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	f.Stars = kept
	return removed
}

func (f *Frequency) sortStars() {
	sort.Slice(f.Stars, func(i, j int) bool {
		return f.Stars[i].Timestamp < f.Stars[j].Timestamp
	})
}

// normalizeStars re-sorts and tolerance-dedups in one pass, used when stars
// arrive from outside a mutation boundary (snapshot restore).
func (f *Frequency) normalizeStars() {
	f.sortStars()
	kept := f.Stars[:0]
	for _, s := range f.Stars {
		if len(kept) > 0 && s.Timestamp-kept[len(kept)-1].Timestamp < StarTolerance {
			continue
		}
		kept = append(kept, s)
	}
	f.Stars = kept
}

// Clone returns a deep copy safe to hand outside the library lock.
func (f *Frequency) Clone() *Frequency {
	cp := *f
	cp.Stars = make([]Star, len(f.Stars))
	copy(cp.Stars, f.Stars)
	cp.Sessions = make([]Session, len(f.Sessions))
	copy(cp.Sessions, f.Sessions)
	return &cp
}
