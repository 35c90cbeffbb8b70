// Package analytics measures whether a signal's presence predicts revenue
// conversion. It is pure computation over caller-supplied event arrays:
// monthly conversion snapshots, cohort retention, and time-to-conversion
// curves. No I/O happens here.
package analytics

import "time"

// SignalEvent is one signal occurrence attributed to a user.
type SignalEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
}

// ConversionEvent is a revenue conversion attributed to a user. Revenue may
// be zero when the conversion carries no known amount.
type ConversionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Revenue   float64   `json:"revenue"`
}

// UserProfile identifies a known user and when they were first seen.
type UserProfile struct {
	FirstSeen time.Time `json:"first_seen"`
	UserID    string    `json:"user_id"`
}

// RetentionEvent is an undifferentiated activity event used for cohort
// retention. Value carries revenue when the retention metric is monetary.
type RetentionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Value     float64   `json:"value"`
}

// monthStart truncates a time to the first instant of its calendar month, UTC.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthDiff returns the number of calendar months from a to b. Negative when
// b's month precedes a's.
func monthDiff(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// MonthsBetween lists the calendar months from the month containing `from`
// through the month containing `to`, inclusive.
func MonthsBetween(from, to time.Time) []time.Time {
	var months []time.Time
	for m := monthStart(from); !m.After(monthStart(to)); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}
