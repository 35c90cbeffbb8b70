package analytics

import (
	"fmt"
	"hash/fnv"
)

// DefaultConversionPeriods is the default curve horizon (P0..P12).
const DefaultConversionPeriods = 13

// ConversionCurves holds four parallel arrays of length Periods: per-period
// and cumulative conversion percentage for the signaled and comparison
// cohorts, indexed by month offset from the signal.
type ConversionCurves struct {
	SignalPeriod         []float64 `json:"signal_period"`
	SignalCumulative     []float64 `json:"signal_cumulative"`
	ComparisonPeriod     []float64 `json:"comparison_period"`
	ComparisonCumulative []float64 `json:"comparison_cumulative"`
}

// CurveInput carries the already-fetched arrays for curve computation.
type CurveInput struct {
	Signals     []SignalEvent
	Conversions []ConversionEvent
	Profiles    []UserProfile
	Periods     int // 0 means DefaultConversionPeriods
}

// ComputeConversionCurves distributes each signaled user's conversions into
// month-offset periods relative to their earliest signal, then normalizes by
// cohort size into percentages.
//
// The comparison cohort has no signal to anchor on, so its conversions are
// assigned a period pseudo-randomly (deterministically, from a hash of the
// conversion identity). That half of the curve is a recognized approximation
// with no statistical meaning; only its total mass is comparable.
func ComputeConversionCurves(in CurveInput) ConversionCurves {
	periods := in.Periods
	if periods <= 0 {
		periods = DefaultConversionPeriods
	}

	// Earliest signal per user defines the signal cohort and its anchors.
	anchors := make(map[string]SignalEvent)
	for _, sig := range in.Signals {
		if existing, ok := anchors[sig.UserID]; !ok || sig.Timestamp.Before(existing.Timestamp) {
			anchors[sig.UserID] = sig
		}
	}

	comparisonUsers := 0
	for _, profile := range in.Profiles {
		if _, signaled := anchors[profile.UserID]; !signaled {
			comparisonUsers++
		}
	}

	signalCounts := make([]float64, periods)
	comparisonCounts := make([]float64, periods)
	comparisonSeq := make(map[string]int)

	for _, conv := range in.Conversions {
		if anchor, signaled := anchors[conv.UserID]; signaled {
			period := monthDiff(anchor.Timestamp, conv.Timestamp)
			if period >= 0 && period < periods {
				signalCounts[period]++
			}
			continue
		}

		seq := comparisonSeq[conv.UserID]
		comparisonSeq[conv.UserID] = seq + 1
		comparisonCounts[pseudoRandomPeriod(conv.UserID, seq, periods)]++
	}

	curves := ConversionCurves{
		SignalPeriod:     normalizeCounts(signalCounts, len(anchors)),
		ComparisonPeriod: normalizeCounts(comparisonCounts, comparisonUsers),
	}
	curves.SignalCumulative = cumulative(curves.SignalPeriod)
	curves.ComparisonCumulative = cumulative(curves.ComparisonPeriod)
	return curves
}

// pseudoRandomPeriod hashes a conversion's identity into a period index.
// Deterministic so repeated runs over the same inputs agree.
func pseudoRandomPeriod(userID string, seq, periods int) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s:%d", userID, seq)
	return int(h.Sum32() % uint32(periods))
}

// normalizeCounts converts raw conversion counts into percentages of the
// cohort size. An empty cohort yields all zeros.
func normalizeCounts(counts []float64, cohortSize int) []float64 {
	out := make([]float64, len(counts))
	if cohortSize == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = c / float64(cohortSize) * 100
	}
	return out
}

// cumulative returns the running sum of a period series. Non-decreasing by
// construction.
func cumulative(period []float64) []float64 {
	out := make([]float64, len(period))
	running := 0.0
	for i, v := range period {
		running += v
		out[i] = running
	}
	return out
}
