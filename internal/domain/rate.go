package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Period names map to trailing window lengths in days.
var periodDays = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
	"year":    365,
}

// PeriodDays returns the trailing length for a named period.
func PeriodDays(period string) (int, error) {
	n, ok := periodDays[period]
	if !ok {
		return 0, fmt.Errorf("unknown period %q: must be week, month, quarter or year", period)
	}
	return n, nil
}

// Window is an inclusive range of calendar days.
type Window struct {
	Start Day
	End   Day
}

// NewWindow validates start <= end.
func NewWindow(start, end Day) (Window, error) {
	if start.After(end) {
		return Window{}, fmt.Errorf("%w: %s is after %s", ErrEmptyWindow, start, end)
	}
	return Window{Start: start, End: end}, nil
}

// Trailing returns the n-day window ending at (and including) end.
func Trailing(end Day, n int) Window {
	if n < 1 {
		n = 1
	}
	return Window{Start: end.AddDays(-(n - 1)), End: end}
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Day) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of calendar days in the window, or 0 when degenerate.
func (w Window) Days() int {
	if w.Start.After(w.End) {
		return 0
	}
	return w.Start.DaysUntil(w.End) + 1
}

// Each calls fn for every day in the window in ascending order.
func (w Window) Each(fn func(Day)) {
	for d := w.Start; !d.After(w.End); d = d.AddDays(1) {
		fn(d)
	}
}

// weeks returns the distinct ISO weeks touched by the window.
func (w Window) weeks() map[Week]struct{} {
	weeks := make(map[Week]struct{})
	if w.Days() == 0 {
		return weeks
	}
	for d := w.Start.StartOfWeek(); !d.After(w.End); d = d.AddDays(7) {
		weeks[d.ISOWeek()] = struct{}{}
	}
	return weeks
}

// EligibleDays is the number of completion opportunities the window offers:
// one per day for daily habits, one per calendar week for weekly habits.
func (w Window) EligibleDays(freq Frequency) int {
	if freq == FrequencyWeekly {
		return len(w.weeks())
	}
	return w.Days()
}

// CompletedIn counts completion opportunities met inside the window: distinct
// completed days for daily habits, distinct completed weeks for weekly habits.
func CompletedIn(records []HabitRecord, w Window, freq Frequency) int {
	days := make(map[Day]struct{})
	weeks := make(map[Week]struct{})
	for d := range completedDays(records) {
		if !w.Contains(d) {
			continue
		}
		days[d] = struct{}{}
		weeks[d.ISOWeek()] = struct{}{}
	}
	if freq == FrequencyWeekly {
		return len(weeks)
	}
	return len(days)
}

// Rate is the single completion-rate formula: completed/eligible as a
// percentage, rounded half-up to one decimal place and clamped to [0, 100].
// An eligible count of zero yields 0.
func Rate(completed, eligible int) float64 {
	if eligible <= 0 || completed <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(completed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(eligible))).
		Round(1)

	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.InexactFloat64()
}

// CompletionRate is the rolling completion rate of records over w.
func CompletionRate(records []HabitRecord, w Window, freq Frequency) float64 {
	return Rate(CompletedIn(records, w, freq), w.EligibleDays(freq))
}

// CompletionRate is CompletionRate over the habit's own records and frequency.
func (h *Habit) CompletionRate(w Window) float64 {
	return CompletionRate(h.Records, w, h.Frequency)
}
