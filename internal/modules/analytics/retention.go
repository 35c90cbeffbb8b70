package analytics

import (
	"sort"
	"time"
)

// DefaultRetentionMonths is the default retention horizon (M0..M8).
const DefaultRetentionMonths = 9

// RetentionTab selects the retention metric.
type RetentionTab string

const (
	TabUsers   RetentionTab = "users"
	TabEvents  RetentionTab = "events"
	TabRevenue RetentionTab = "revenue"
)

// StatMode selects the per-month aggregation. Mode is meaningless for the
// users tab, which is always reported as a total.
type StatMode string

const (
	ModeTotal  StatMode = "total"
	ModeAvg    StatMode = "avg"
	ModeMedian StatMode = "median"
)

// RetentionRow is one (tab x mode) retention series, normalized so that
// month offset 0 reads 100 for any cohort with M0 activity.
type RetentionRow struct {
	Tab        RetentionTab `json:"tab"`
	StatMode   StatMode     `json:"stat_mode"`
	Signal     []float64    `json:"signal"`
	Comparison []float64    `json:"comparison"`
}

// RetentionInput carries the cohort definitions and activity events.
type RetentionInput struct {
	CohortStart     time.Time
	Months          int // 0 means DefaultRetentionMonths
	Events          []RetentionEvent
	SignalUsers     []string
	ComparisonUsers []string
}

// ComputeRetention buckets every event by (user, month offset from cohort
// start), discards offsets outside [0, Months), and produces seven rows:
// users (total), events (total/avg/median), revenue (total/avg/median), each
// for both cohorts, normalized to the month-0 value.
func ComputeRetention(in RetentionInput) []RetentionRow {
	months := in.Months
	if months <= 0 {
		months = DefaultRetentionMonths
	}

	signal := newCohortActivity(in.SignalUsers, months)
	comparison := newCohortActivity(in.ComparisonUsers, months)

	cohortMonth := monthStart(in.CohortStart)
	for _, ev := range in.Events {
		offset := monthDiff(cohortMonth, ev.Timestamp)
		if offset < 0 || offset >= months {
			continue
		}
		signal.record(ev.UserID, offset, ev.Value)
		comparison.record(ev.UserID, offset, ev.Value)
	}

	rows := []RetentionRow{
		{Tab: TabUsers, StatMode: ModeTotal},
		{Tab: TabEvents, StatMode: ModeTotal},
		{Tab: TabEvents, StatMode: ModeAvg},
		{Tab: TabEvents, StatMode: ModeMedian},
		{Tab: TabRevenue, StatMode: ModeTotal},
		{Tab: TabRevenue, StatMode: ModeAvg},
		{Tab: TabRevenue, StatMode: ModeMedian},
	}
	for i := range rows {
		rows[i].Signal = normalizeToFirst(signal.series(rows[i].Tab, rows[i].StatMode))
		rows[i].Comparison = normalizeToFirst(comparison.series(rows[i].Tab, rows[i].StatMode))
	}
	return rows
}

// cohortActivity accumulates per-user, per-month event counts and values for
// one cohort.
type cohortActivity struct {
	members map[string]bool
	counts  []map[string]float64 // month offset -> user -> event count
	values  []map[string]float64 // month offset -> user -> summed value
}

func newCohortActivity(users []string, months int) *cohortActivity {
	c := &cohortActivity{
		members: make(map[string]bool, len(users)),
		counts:  make([]map[string]float64, months),
		values:  make([]map[string]float64, months),
	}
	for _, u := range users {
		c.members[u] = true
	}
	for i := 0; i < months; i++ {
		c.counts[i] = make(map[string]float64)
		c.values[i] = make(map[string]float64)
	}
	return c
}

func (c *cohortActivity) record(userID string, offset int, value float64) {
	if !c.members[userID] {
		return
	}
	c.counts[offset][userID]++
	c.values[offset][userID] += value
}

// series produces the raw (un-normalized) per-month values for a tab/mode.
func (c *cohortActivity) series(tab RetentionTab, mode StatMode) []float64 {
	out := make([]float64, len(c.counts))
	for offset := range c.counts {
		perUser := c.counts[offset]
		if tab == TabRevenue {
			perUser = c.values[offset]
		}

		switch {
		case tab == TabUsers:
			out[offset] = float64(len(c.counts[offset]))
		case mode == ModeTotal:
			out[offset] = sumValues(perUser)
		case mode == ModeAvg:
			if len(perUser) > 0 {
				out[offset] = sumValues(perUser) / float64(len(perUser))
			}
		case mode == ModeMedian:
			out[offset] = medianValues(perUser)
		}
	}
	return out
}

// normalizeToFirst rescales a series so the first element reads 100. A series
// with no month-0 activity comes back all zeros rather than dividing by zero.
func normalizeToFirst(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 || series[0] == 0 {
		return out
	}
	base := series[0]
	for i, v := range series {
		out[i] = v / base * 100
	}
	return out
}

func sumValues(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

func medianValues(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(m))
	for _, v := range m {
		vals = append(vals, v)
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
