// Package calendar computes leave spans in business days. Weekends are the
// only excluded days; no holiday calendar is consulted.
package calendar

import "time"

const DateLayout = "2006-01-02"

// ComputeEndDate returns the last day of a leave spanning businessDays
// weekdays starting at start. A weekend start is first advanced to the next
// weekday, which then counts as day 1 of the span. The zero time is returned
// when start is zero or businessDays is not positive.
func ComputeEndDate(start time.Time, businessDays int) time.Time {
	if start.IsZero() || businessDays <= 0 {
		return time.Time{}
	}

	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	for isWeekend(date) {
		date = date.AddDate(0, 0, 1)
	}

	remaining := businessDays
	for remaining > 1 {
		date = date.AddDate(0, 0, 1)
		if !isWeekend(date) {
			remaining--
		}
	}

	return date
}

// ComputeEndDateString is the string form used at the HTTP boundary; it
// returns "" for an empty start or a non-positive day count.
func ComputeEndDateString(start string, businessDays int) (string, error) {
	if start == "" || businessDays <= 0 {
		return "", nil
	}
	t, err := time.Parse(DateLayout, start)
	if err != nil {
		return "", err
	}
	return ComputeEndDate(t, businessDays).Format(DateLayout), nil
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
