package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		eligible  int
		want      float64
	}{
		{"three of seven rounds half up", 3, 7, 42.9},
		{"one of three", 1, 3, 33.3},
		{"two of three", 2, 3, 66.7},
		{"all", 7, 7, 100},
		{"over-complete clamps", 9, 7, 100},
		{"none", 0, 7, 0},
		{"zero eligible", 3, 0, 0},
		{"half tick rounds up", 1, 16, 6.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rate(tt.completed, tt.eligible))
		})
	}
}

func TestCompletionRate_Daily(t *testing.T) {
	w := Trailing(day("2024-01-14"), 7)
	records := append(completed("2024-01-08", "2024-01-10", "2024-01-14", "2024-01-01"),
		HabitRecord{Date: day("2024-01-12"), IsCompleted: false})

	assert.Equal(t, 42.9, CompletionRate(records, w, FrequencyDaily))
}

func TestCompletionRate_DuplicatesCountOnce(t *testing.T) {
	w := Trailing(day("2024-01-14"), 7)
	records := completed("2024-01-14", "2024-01-14", "2024-01-14")

	assert.Equal(t, 14.3, CompletionRate(records, w, FrequencyDaily))
}

func TestCompletionRate_Weekly(t *testing.T) {
	// 2024-01-01..2024-01-28 spans four ISO weeks.
	w, err := NewWindow(day("2024-01-01"), day("2024-01-28"))
	require.NoError(t, err)
	assert.Equal(t, 4, w.EligibleDays(FrequencyWeekly))
	assert.Equal(t, 28, w.EligibleDays(FrequencyDaily))

	records := completed("2024-01-02", "2024-01-03", "2024-01-17")
	assert.Equal(t, 2, CompletedIn(records, w, FrequencyWeekly))
	assert.Equal(t, 50.0, CompletionRate(records, w, FrequencyWeekly))
}

func TestWindow_PartialWeeks(t *testing.T) {
	// Wednesday to the following Tuesday touches two ISO weeks.
	w, err := NewWindow(day("2024-01-10"), day("2024-01-16"))
	require.NoError(t, err)
	assert.Equal(t, 2, w.EligibleDays(FrequencyWeekly))
}

func TestNewWindow_Empty(t *testing.T) {
	_, err := NewWindow(day("2024-01-15"), day("2024-01-14"))
	require.ErrorIs(t, err, ErrEmptyWindow)
	require.ErrorIs(t, err, ErrInvariant)
}

func TestTrailing(t *testing.T) {
	w := Trailing(day("2024-03-01"), 30)
	assert.Equal(t, day("2024-01-31"), w.Start)
	assert.Equal(t, 30, w.Days())
	assert.True(t, w.Contains(day("2024-02-29")))
	assert.False(t, w.Contains(day("2024-01-30")))
}

func TestPeriodDays(t *testing.T) {
	for period, want := range map[string]int{"week": 7, "month": 30, "quarter": 90, "year": 365} {
		got, err := PeriodDays(period)
		require.NoError(t, err)
		assert.Equal(t, want, got, period)
	}
	_, err := PeriodDays("fortnight")
	assert.Error(t, err)
}
