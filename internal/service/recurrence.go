package service

import (
	"fmt"
	"time"
)

const (
	FrequencyDaily    = "diaria"
	FrequencyWeekly   = "semanal"
	FrequencyBiweekly = "quinzenal"
	FrequencyMonthly  = "mensal"
)

// expandDates returns the n dates of a series starting at first. Monthly
// series keep the day of month, clamped to the last day of shorter months.
func expandDates(first time.Time, frequency string, n int) ([]time.Time, error) {
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		switch frequency {
		case FrequencyDaily:
			dates = append(dates, first.AddDate(0, 0, i))
		case FrequencyWeekly:
			dates = append(dates, first.AddDate(0, 0, 7*i))
		case FrequencyBiweekly:
			dates = append(dates, first.AddDate(0, 0, 14*i))
		case FrequencyMonthly:
			dates = append(dates, addMonthsClamped(first, i))
		default:
			return nil, fmt.Errorf("unknown recurrence frequency %q", frequency)
		}
	}
	return dates, nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), 0, 0, t.Location())
}
