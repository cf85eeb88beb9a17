package domain

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence is the cadence used to space generated schedule dates.
type Recurrence string

const (
	RecurrenceDaily    Recurrence = "DAILY"
	RecurrenceWeekly   Recurrence = "WEEKLY"
	RecurrenceBiweekly Recurrence = "BIWEEKLY"
	RecurrenceMonthly  Recurrence = "MONTHLY"
)

func (r Recurrence) String() string { return string(r) }

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}

func ParseRecurrenceFromString(s string) (Recurrence, error) {
	r := Recurrence(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: invalid recurrence %q", ErrValidation, s)
	}
	return r, nil
}

// RecurrenceDates returns quantity strictly increasing dates, the first equal
// to start. Monthly steps use calendar months with day-of-month clamping, so
// Jan 31 followed by one month lands on the last day of February.
func RecurrenceDates(start time.Time, quantity int, unit Recurrence) []time.Time {
	if quantity < 1 {
		return nil
	}

	dates := make([]time.Time, 0, quantity)
	for i := 0; i < quantity; i++ {
		switch unit {
		case RecurrenceWeekly:
			dates = append(dates, start.AddDate(0, 0, i*7))
		case RecurrenceBiweekly:
			dates = append(dates, start.AddDate(0, 0, i*14))
		case RecurrenceMonthly:
			dates = append(dates, addMonthsClamped(start, i))
		default:
			dates = append(dates, start.AddDate(0, 0, i))
		}
	}

	return dates
}

func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(
		t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location(),
	)

	day := t.Day()
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}

	return firstOfTarget.AddDate(0, 0, day-1)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
