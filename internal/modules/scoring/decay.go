package scoring

import (
	"math"
	"time"
)

// RecencyDecay returns a factor in [0,1] that reduces a signal's contribution
// as it ages. The decay is linear: 1.0 for a signal detected now, 0.0 once
// the signal is decayDays old or older.
func RecencyDecay(ageDays, decayDays float64) float64 {
	if decayDays <= 0 {
		return 1
	}
	if ageDays <= 0 {
		return 1
	}
	return math.Max(0, 1-ageDays/decayDays)
}

// FitMultiplier returns the score multiplier for an account's ICP fit band.
func FitMultiplier(fitScore float64, m FitMultipliers) float64 {
	switch {
	case fitScore >= 0.8:
		return m.ICPMatch
	case fitScore >= 0.5:
		return m.NearICP
	default:
		return m.PoorFit
	}
}

// Normalize maps an adjusted signal sum onto the configured scale. The sum is
// centered on the scale midpoint and clamped to the bounds, so a sum of zero
// lands exactly on the midpoint.
func Normalize(adjustedSum, scaleMin, scaleMax float64) float64 {
	mid := (scaleMin + scaleMax) / 2
	return math.Max(scaleMin, math.Min(scaleMax, mid+adjustedSum))
}

// AgeDays returns the age of a timestamp in fractional days relative to now.
func AgeDays(timestamp, now time.Time) float64 {
	return now.Sub(timestamp).Hours() / 24
}

// WithinMaxAge reports whether a signal timestamp passes the hard age cutoff.
// Signals older than maxAgeDays are invisible to scoring, not merely decayed.
func WithinMaxAge(timestamp, now time.Time, maxAgeDays float64) bool {
	return AgeDays(timestamp, now) <= maxAgeDays
}
