package analytics

import (
	"sort"
	"time"

	"github.com/avelara/beacon/internal/modules/analytics/stats"
)

// ConversionWindows are the attribution windows evaluated for every monthly
// snapshot, in days. The nil entry is the unbounded window: any conversion
// after the signal counts.
var ConversionWindows = []*int{
	windowDays(7),
	windowDays(14),
	windowDays(30),
	windowDays(60),
	windowDays(90),
	nil,
}

func windowDays(d int) *int { return &d }

// MonthlySnapshot summarizes one calendar month for one conversion window.
//
// The signal cohort's conversions are counted relative to each user's first
// signal in the month (same-day conversions count). The comparison cohort has
// no signal anchor, so its conversions are counted within the calendar month
// itself. The asymmetry is deliberate and preserved.
type MonthlySnapshot struct {
	Month                   time.Time `json:"month"`
	WindowDays              *int      `json:"window_days"` // nil = unbounded
	AvgDealValue            *float64  `json:"avg_deal_value"`
	NonSignalAvgDealValue   *float64  `json:"non_signal_avg_deal_value"`
	SignalUserCount         int       `json:"signal_user_count"`
	ConvertedCount          int       `json:"converted_count"`
	SignalRevenue           float64   `json:"signal_revenue"`
	NonSignalUserCount      int       `json:"non_signal_user_count"`
	NonSignalConvertedCount int       `json:"non_signal_converted_count"`
	NonSignalRevenue        float64   `json:"non_signal_revenue"`
	OccurrenceCount         int       `json:"occurrence_count"`
	ConversionRate          float64   `json:"conversion_rate"`
	NonSignalConversionRate float64   `json:"non_signal_conversion_rate"`
	AdditionalNetRevenue    float64   `json:"additional_net_revenue"`
	ChiSquared              float64   `json:"chi_squared"`
	PValue                  float64   `json:"p_value"`
	Significance            float64   `json:"significance"`
}

// SnapshotInput carries the already-fetched event arrays for snapshot
// computation.
type SnapshotInput struct {
	Signals     []SignalEvent
	Conversions []ConversionEvent
	Profiles    []UserProfile
	Months      []time.Time
}

// ComputeSnapshots produces one snapshot per requested month per conversion
// window, ordered months-outer, windows-inner.
func ComputeSnapshots(in SnapshotInput) []MonthlySnapshot {
	conversionsByUser := make(map[string][]ConversionEvent)
	for _, conv := range in.Conversions {
		conversionsByUser[conv.UserID] = append(conversionsByUser[conv.UserID], conv)
	}
	for _, convs := range conversionsByUser {
		sort.Slice(convs, func(i, j int) bool { return convs[i].Timestamp.Before(convs[j].Timestamp) })
	}

	snapshots := make([]MonthlySnapshot, 0, len(in.Months)*len(ConversionWindows))
	for _, month := range in.Months {
		start := monthStart(month)
		end := start.AddDate(0, 1, 0)

		// Signal cohort: users with at least one signal event this month,
		// anchored to their earliest signal.
		anchors := make(map[string]time.Time)
		occurrences := 0
		for _, sig := range in.Signals {
			if sig.Timestamp.Before(start) || !sig.Timestamp.Before(end) {
				continue
			}
			occurrences++
			if existing, ok := anchors[sig.UserID]; !ok || sig.Timestamp.Before(existing) {
				anchors[sig.UserID] = sig.Timestamp
			}
		}

		// Comparison cohort: every known user who existed before month end
		// and had no signal this month. Their conversions are counted within
		// the calendar month.
		nonSignalUsers := 0
		nonSignalConverted := 0
		nonSignalRevenue := 0.0
		for _, profile := range in.Profiles {
			if !profile.FirstSeen.Before(end) {
				continue
			}
			if _, signaled := anchors[profile.UserID]; signaled {
				continue
			}
			nonSignalUsers++
			converted := false
			for _, conv := range conversionsByUser[profile.UserID] {
				if conv.Timestamp.Before(start) || !conv.Timestamp.Before(end) {
					continue
				}
				converted = true
				nonSignalRevenue += conv.Revenue
			}
			if converted {
				nonSignalConverted++
			}
		}

		for _, window := range ConversionWindows {
			converted := 0
			revenue := 0.0
			for userID, anchor := range anchors {
				userConverted := false
				for _, conv := range conversionsByUser[userID] {
					if conv.Timestamp.Before(anchor) {
						continue
					}
					if window != nil {
						deadline := anchor.AddDate(0, 0, *window)
						if conv.Timestamp.After(deadline) {
							continue
						}
					}
					userConverted = true
					revenue += conv.Revenue
				}
				if userConverted {
					converted++
				}
			}

			signalUsers := len(anchors)
			test := stats.ChiSquaredTest(
				converted, signalUsers-converted,
				nonSignalConverted, nonSignalUsers-nonSignalConverted,
			)

			snapshot := MonthlySnapshot{
				Month:                   start,
				WindowDays:              window,
				SignalUserCount:         signalUsers,
				ConvertedCount:          converted,
				SignalRevenue:           revenue,
				NonSignalUserCount:      nonSignalUsers,
				NonSignalConvertedCount: nonSignalConverted,
				NonSignalRevenue:        nonSignalRevenue,
				OccurrenceCount:         occurrences,
				ConversionRate:          rate(converted, signalUsers),
				NonSignalConversionRate: rate(nonSignalConverted, nonSignalUsers),
				AvgDealValue:            avgDeal(revenue, converted),
				NonSignalAvgDealValue:   avgDeal(nonSignalRevenue, nonSignalConverted),
				ChiSquared:              test.ChiSquared,
				PValue:                  test.PValue,
				Significance:            stats.Significance(test.PValue),
			}

			// What the signal cohort earned beyond an equivalently sized
			// slice of the comparison cohort.
			scale := float64(signalUsers) / float64(maxInt(nonSignalUsers, 1))
			snapshot.AdditionalNetRevenue = revenue - nonSignalRevenue*scale

			snapshots = append(snapshots, snapshot)
		}
	}

	return snapshots
}

func rate(converted, cohort int) float64 {
	if cohort == 0 {
		return 0
	}
	return float64(converted) / float64(cohort)
}

func avgDeal(revenue float64, converted int) *float64 {
	if converted == 0 {
		return nil
	}
	acv := revenue / float64(converted)
	return &acv
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
