package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuner/internal/models"
)

func freshFrequency(id string, now time.Time) *models.Frequency {
	return &models.Frequency{
		SourceID:   id,
		SourceKind: models.SourceYouTube,
		Title:      id,
		AddedAt:    now.UnixMilli(),
		Stars:      []models.Star{},
		Sessions:   []models.Session{},
	}
}

func TestConfidence_EmptyHistory(t *testing.T) {
	f := freshFrequency("a", time.Now())
	assert.Equal(t, 1.0, Confidence(f))
}

func TestConfidence_StarsRaiseIt(t *testing.T) {
	now := time.Now()
	f := freshFrequency("a", now)
	f.Stars = []models.Star{{Timestamp: 5}}
	// 1 + 40 * (1*1.0)
	assert.Equal(t, 41.0, Confidence(f))
}

func TestConfidence_SkipsLowerIt(t *testing.T) {
	now := time.Now()
	f := freshFrequency("a", now)
	f.Stars = []models.Star{{Timestamp: 5}}
	f.SkipCount = 2
	// 1 + 40 * (1 - 2*0.3)
	assert.InDelta(t, 17.0, Confidence(f), 1e-9)
}

func TestConfidence_NeverNegative(t *testing.T) {
	f := freshFrequency("a", time.Now())
	f.SkipCount = 100
	assert.Equal(t, 1.0, Confidence(f))
}

func TestConfidence_CompletionRateScalesWithPlays(t *testing.T) {
	now := time.Now()
	f := freshFrequency("a", now)
	f.Sessions = []models.Session{{DurationSeconds: 100}, {DurationSeconds: 100}}
	f.CompletionCount = 1
	// completionRate = 0.5, raw = 0.5*0.5*2 = 0.5, confidence = 21
	assert.InDelta(t, 21.0, Confidence(f), 1e-9)
}

func TestScore_EngagementBeatsSkips(t *testing.T) {
	now := time.Now()

	engaged := freshFrequency("engaged", now)
	engaged.Stars = []models.Star{{Timestamp: 5}}
	engaged.CompletionCount = 1
	engaged.Sessions = []models.Session{{DurationSeconds: 100}}

	skipped := freshFrequency("skipped", now)
	skipped.Stars = []models.Star{{Timestamp: 5}}
	skipped.SkipCount = 5
	skipped.Sessions = []models.Session{{DurationSeconds: 100}}

	ranked := Rank([]*models.Frequency{skipped, engaged}, now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "engaged", ranked[0].Frequency.SourceID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestScore_RecencyDecays(t *testing.T) {
	now := time.Now()
	fresh := freshFrequency("fresh", now)
	old := freshFrequency("old", now.Add(-14*24*time.Hour))

	sFresh := Score(fresh, 1, now)
	sOld := Score(old, 1, now)
	assert.Greater(t, sFresh, sOld)

	// two weeks = two half-life constants: recency = 1/(1+2) = 1/3
	assert.InDelta(t, 0.3/3+0.7, sOld, 1e-6)
}

func TestScore_MaxConfidenceClamped(t *testing.T) {
	now := time.Now()
	f := freshFrequency("a", now)

	// an all-zero collection must not divide by zero
	assert.InDelta(t, Score(f, 0, now), Score(f, 1, now), 1e-12)
	assert.InDelta(t, 1.0, Score(f, 1, now), 1e-9)
}

func TestRank_NormalizesAgainstStrongest(t *testing.T) {
	now := time.Now()

	strong := freshFrequency("strong", now)
	strong.Stars = []models.Star{{Timestamp: 1}, {Timestamp: 10}, {Timestamp: 20}}

	weak := freshFrequency("weak", now)
	weak.Stars = []models.Star{{Timestamp: 1}}

	ranked := Rank([]*models.Frequency{weak, strong}, now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "strong", ranked[0].Frequency.SourceID)
	// strongest entry has normalizedConfidence == 1
	assert.InDelta(t, 0.3+0.7, ranked[0].Score, 1e-9)
}

func TestRank_StableOnTies(t *testing.T) {
	now := time.Now()
	a := freshFrequency("a", now)
	b := freshFrequency("b", now)
	c := freshFrequency("c", now)

	ranked := Rank([]*models.Frequency{a, b, c}, now)
	require.Len(t, ranked, 3)
	assert.Equal(t, "a", ranked[0].Frequency.SourceID)
	assert.Equal(t, "b", ranked[1].Frequency.SourceID)
	assert.Equal(t, "c", ranked[2].Frequency.SourceID)
}

func TestRank_EmptyCollection(t *testing.T) {
	assert.Empty(t, Rank(nil, time.Now()))
}
