package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retentionRow(t *testing.T, rows []RetentionRow, tab RetentionTab, mode StatMode) RetentionRow {
	t.Helper()
	for _, row := range rows {
		if row.Tab == tab && row.StatMode == mode {
			return row
		}
	}
	t.Fatalf("no row for tab=%s mode=%s", tab, mode)
	return RetentionRow{}
}

func TestComputeRetention_SevenRows(t *testing.T) {
	rows := ComputeRetention(RetentionInput{CohortStart: day(2026, time.January, 1)})
	require.Len(t, rows, 7)

	// users has no avg/median variants.
	usersRows := 0
	for _, row := range rows {
		if row.Tab == TabUsers {
			usersRows++
			assert.Equal(t, ModeTotal, row.StatMode)
		}
		assert.Len(t, row.Signal, DefaultRetentionMonths)
		assert.Len(t, row.Comparison, DefaultRetentionMonths)
	}
	assert.Equal(t, 1, usersRows)
}

func TestComputeRetention_MonthZeroNormalizesToExactly100(t *testing.T) {
	start := day(2026, time.January, 1)
	in := RetentionInput{
		CohortStart:     start,
		SignalUsers:     []string{"s1", "s2"},
		ComparisonUsers: []string{"c1"},
		Events: []RetentionEvent{
			{UserID: "s1", Timestamp: day(2026, time.January, 5), Value: 10},
			{UserID: "s2", Timestamp: day(2026, time.January, 9), Value: 30},
			{UserID: "s1", Timestamp: day(2026, time.February, 2), Value: 5},
			{UserID: "c1", Timestamp: day(2026, time.January, 20), Value: 8},
			{UserID: "c1", Timestamp: day(2026, time.March, 12), Value: 2},
		},
	}

	rows := ComputeRetention(in)
	for _, row := range rows {
		assert.Equal(t, 100.0, row.Signal[0], "signal M0 must be 100 for tab=%s mode=%s", row.Tab, row.StatMode)
		assert.Equal(t, 100.0, row.Comparison[0], "comparison M0 must be 100 for tab=%s mode=%s", row.Tab, row.StatMode)
	}
}

func TestComputeRetention_EmptyCohortIsAllZeros(t *testing.T) {
	rows := ComputeRetention(RetentionInput{
		CohortStart: day(2026, time.January, 1),
		SignalUsers: []string{"ghost"},
	})

	for _, row := range rows {
		for i, v := range row.Signal {
			assert.Equal(t, 0.0, v, "tab=%s mode=%s offset=%d", row.Tab, row.StatMode, i)
		}
	}
}

func TestComputeRetention_UsersDecline(t *testing.T) {
	start := day(2026, time.January, 1)
	in := RetentionInput{
		CohortStart: start,
		SignalUsers: []string{"a", "b", "c", "d"},
		Events: []RetentionEvent{
			{UserID: "a", Timestamp: day(2026, time.January, 2)},
			{UserID: "b", Timestamp: day(2026, time.January, 3)},
			{UserID: "c", Timestamp: day(2026, time.January, 4)},
			{UserID: "d", Timestamp: day(2026, time.January, 5)},
			{UserID: "a", Timestamp: day(2026, time.February, 2)},
			{UserID: "b", Timestamp: day(2026, time.February, 3)},
			{UserID: "a", Timestamp: day(2026, time.March, 2)},
		},
	}

	users := retentionRow(t, ComputeRetention(in), TabUsers, ModeTotal)
	assert.Equal(t, 100.0, users.Signal[0]) // 4 of 4
	assert.Equal(t, 50.0, users.Signal[1])  // 2 of 4
	assert.Equal(t, 25.0, users.Signal[2])  // 1 of 4
	assert.Equal(t, 0.0, users.Signal[3])
}

func TestComputeRetention_MedianAndAvg(t *testing.T) {
	start := day(2026, time.January, 1)
	in := RetentionInput{
		CohortStart: start,
		SignalUsers: []string{"a", "b", "c"},
		Events: []RetentionEvent{
			// M0: per-user counts are a=1, b=2, c=6 -> total 9, avg 3, median 2.
			{UserID: "a", Timestamp: day(2026, time.January, 2)},
			{UserID: "b", Timestamp: day(2026, time.January, 3)},
			{UserID: "b", Timestamp: day(2026, time.January, 4)},
			{UserID: "c", Timestamp: day(2026, time.January, 5)},
			{UserID: "c", Timestamp: day(2026, time.January, 6)},
			{UserID: "c", Timestamp: day(2026, time.January, 7)},
			{UserID: "c", Timestamp: day(2026, time.January, 8)},
			{UserID: "c", Timestamp: day(2026, time.January, 9)},
			{UserID: "c", Timestamp: day(2026, time.January, 10)},
			// M1: only b is active with 1 event -> total 1, avg 1, median 1.
			{UserID: "b", Timestamp: day(2026, time.February, 10)},
		},
	}

	rows := ComputeRetention(in)

	total := retentionRow(t, rows, TabEvents, ModeTotal)
	assert.InDelta(t, 100.0/9.0, total.Signal[1], 1e-9) // 1/9 of M0

	avg := retentionRow(t, rows, TabEvents, ModeAvg)
	assert.InDelta(t, 100.0/3.0, avg.Signal[1], 1e-9) // 1 vs M0 avg of 3

	median := retentionRow(t, rows, TabEvents, ModeMedian)
	assert.InDelta(t, 50.0, median.Signal[1], 1e-9) // 1 vs M0 median of 2
}

func TestComputeRetention_DiscardsOutOfRangeOffsets(t *testing.T) {
	start := day(2026, time.January, 1)
	in := RetentionInput{
		CohortStart: start,
		Months:      3,
		SignalUsers: []string{"a"},
		Events: []RetentionEvent{
			{UserID: "a", Timestamp: day(2026, time.January, 2)},
			{UserID: "a", Timestamp: day(2025, time.December, 20)}, // before cohort
			{UserID: "a", Timestamp: day(2026, time.June, 2)},      // past horizon
		},
	}

	users := retentionRow(t, ComputeRetention(in), TabUsers, ModeTotal)
	require.Len(t, users.Signal, 3)
	assert.Equal(t, []float64{100, 0, 0}, users.Signal)
}
