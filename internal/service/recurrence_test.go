package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/db"
)

func formatDates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(db.DateLayout)
	}
	return out
}

func TestExpandDates(t *testing.T) {
	first := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		frequency string
		n         int
		want      []string
	}{
		{FrequencyDaily, 3, []string{"2026-01-31", "2026-02-01", "2026-02-02"}},
		{FrequencyWeekly, 2, []string{"2026-01-31", "2026-02-07"}},
		{FrequencyBiweekly, 2, []string{"2026-01-31", "2026-02-14"}},
		{FrequencyMonthly, 4, []string{"2026-01-31", "2026-02-28", "2026-03-31", "2026-04-30"}},
		{FrequencyMonthly, 1, []string{"2026-01-31"}},
	}
	for _, tc := range cases {
		t.Run(tc.frequency, func(t *testing.T) {
			got, err := expandDates(first, tc.frequency, tc.n)
			require.NoError(t, err)
			assert.Equal(t, tc.want, formatDates(got))
		})
	}
}

func TestExpandDatesMonthlyAcrossYear(t *testing.T) {
	got, err := expandDates(time.Date(2027, time.November, 30, 0, 0, 0, 0, time.UTC), FrequencyMonthly, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"2027-11-30", "2027-12-30", "2028-01-30", "2028-02-29"}, formatDates(got))
}

func TestExpandDatesUnknownFrequency(t *testing.T) {
	_, err := expandDates(time.Now(), "anual", 2)
	assert.Error(t, err)
}
