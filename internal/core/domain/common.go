package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// DateFormat is the ISO-8601 day format used wherever a date is rendered or
// compared as a string. Zero-padded, so lexicographic order equals
// chronological order.
const DateFormat = "2006-01-02"

// AmountEpsilon is the tolerance for monetary equality checks, e.g. deciding
// that a debt is fully paid. One cent in the base currency.
var AmountEpsilon = decimal.New(1, -2) // 0.01

// Day truncates t to day granularity at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths advances t by n calendar months, clamping the day of month to the
// last valid day of the target month: Jan 31 + 1 month = Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

// AddYears advances t by n calendar years with the same day clamping
// (Feb 29 + 1 year = Feb 28).
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// MonthWindow returns the half-open interval [first of month, first of next
// month) for the given year and month.
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
