package ranking

import (
	"sort"
	"time"

	"tuner/internal/models"
)

// Engagement scoring constants. The score blends a recency prior that
// decays over roughly a week with a behavioral-confidence signal
// normalized against the strongest entry in the collection.
const (
	starWeight       = 1.0
	skipPenalty      = 0.3
	completionWeight = 0.5
	confidenceGain   = 40.0
	recencyShare     = 0.3
	confidenceShare  = 0.7
	decayHours       = 168.0
)

// Confidence aggregates the raw behavioral signal of one frequency:
// stars count for it, accumulated skip weight against it, and the
// completion rate scaled by how often it was actually played.
func Confidence(f *models.Frequency) float64 {
	plays := float64(len(f.Sessions))
	completionRate := 0.0
	if plays > 0 {
		completionRate = float64(f.CompletionCount) / plays
	}
	raw := float64(len(f.Stars))*starWeight - f.SkipCount*skipPenalty + completionRate*completionWeight*plays
	if raw < 0 {
		raw = 0
	}
	return 1 + confidenceGain*raw
}

// Score computes the composite engagement score of one frequency.
// maxConfidence is the largest Confidence across the snapshot; values
// below 1 are clamped so an all-zero collection never divides by zero.
func Score(f *models.Frequency, maxConfidence float64, now time.Time) float64 {
	recencyHours := float64(now.UnixMilli()-f.AddedAt) / 3_600_000
	recency := 1 / (1 + recencyHours/decayHours)
	if maxConfidence < 1 {
		maxConfidence = 1
	}
	return recencyShare*recency + confidenceShare*(Confidence(f)/maxConfidence)
}

// Entry pairs a frequency with its score for a ranked listing.
type Entry struct {
	Frequency *models.Frequency `json:"frequency"`
	Score     float64           `json:"score"`
}

// Rank orders a snapshot by engagement score descending. The sort is
// stable: ties keep the input order. Scores are always recomputed from
// the given snapshot, never cached.
func Rank(items []*models.Frequency, now time.Time) []Entry {
	maxConfidence := 1.0
	for _, f := range items {
		if c := Confidence(f); c > maxConfidence {
			maxConfidence = c
		}
	}

	entries := make([]Entry, 0, len(items))
	for _, f := range items {
		entries = append(entries, Entry{
			Frequency: f,
			Score:     Score(f, maxConfidence, now),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
