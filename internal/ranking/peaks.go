package ranking

import (
	"math"
	"sort"

	"tuner/internal/models"
)

const (
	// DefaultClusterGap is the maximum distance in seconds between two
	// stars that still belong to the same peak.
	DefaultClusterGap = 30.0

	// DefaultMaxPeaks caps how many peaks are kept for navigation.
	DefaultMaxPeaks = 10

	// peakGuard keeps Next/Prev from re-selecting the peak the playhead
	// is currently sitting on.
	peakGuard = 1.0
)

// Peaks clusters the stars of one frequency into navigable timeline peaks.
// Stars closer than gap extend the current cluster, a larger jump starts a
// new one. Each cluster is represented by the rounded mean of its members.
// The biggest limit clusters survive; the result is chronological.
// Two stars or fewer are returned as-is, unrounded.
func Peaks(stars []models.Star, gap float64, limit int) []float64 {
	if gap <= 0 {
		gap = DefaultClusterGap
	}
	if limit <= 0 {
		limit = DefaultMaxPeaks
	}
	if len(stars) == 0 {
		return nil
	}

	timestamps := make([]float64, 0, len(stars))
	for _, s := range stars {
		timestamps = append(timestamps, s.Timestamp)
	}
	sort.Float64s(timestamps)

	if len(timestamps) <= 2 {
		return timestamps
	}

	type cluster struct {
		sum  float64
		size int
	}
	clusters := []cluster{{sum: timestamps[0], size: 1}}
	for i := 1; i < len(timestamps); i++ {
		if timestamps[i]-timestamps[i-1] > gap {
			clusters = append(clusters, cluster{sum: timestamps[i], size: 1})
			continue
		}
		clusters[len(clusters)-1].sum += timestamps[i]
		clusters[len(clusters)-1].size++
	}

	type peak struct {
		center float64
		size   int
	}
	peaks := make([]peak, 0, len(clusters))
	for _, c := range clusters {
		peaks = append(peaks, peak{center: c.sum / float64(c.size), size: c.size})
	}
	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].size != peaks[j].size {
			return peaks[i].size > peaks[j].size
		}
		return peaks[i].center < peaks[j].center
	})
	if len(peaks) > limit {
		peaks = peaks[:limit]
	}

	centers := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		centers = append(centers, math.Round(p.center))
	}
	sort.Float64s(centers)
	return centers
}

// NextPeak returns the first peak strictly past the guard band after pos,
// wrapping to the first peak when the playhead is beyond the last one.
// ok is false when there are no peaks.
func NextPeak(peaks []float64, pos float64) (target float64, ok bool) {
	if len(peaks) == 0 {
		return 0, false
	}
	for _, p := range peaks {
		if p > pos+peakGuard {
			return p, true
		}
	}
	return peaks[0], true
}

// PrevPeak is the mirror of NextPeak, wrapping to the last peak.
func PrevPeak(peaks []float64, pos float64) (target float64, ok bool) {
	if len(peaks) == 0 {
		return 0, false
	}
	for i := len(peaks) - 1; i >= 0; i-- {
		if peaks[i] < pos-peakGuard {
			return peaks[i], true
		}
	}
	return peaks[len(peaks)-1], true
}
