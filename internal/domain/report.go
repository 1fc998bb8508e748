package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DayStatus is the aggregate state of one habit on one day.
type DayStatus struct {
	Day       Day
	Completed bool
	Recorded  bool
}

// DayStatuses returns one status per day of w, ascending.
func DayStatuses(h *Habit, w Window) []DayStatus {
	out := make([]DayStatus, 0, w.Days())
	w.Each(func(d Day) {
		r, ok := h.RecordFor(d)
		out = append(out, DayStatus{
			Day:       d,
			Recorded:  ok,
			Completed: ok && r.IsCompleted,
		})
	})
	return out
}

// HabitRate is one leaderboard row.
type HabitRate struct {
	HabitID   string
	Name      string
	Category  string
	Completed int
	Eligible  int
	Rate      float64
}

// Leaderboard ranks habits by completion rate over w, best first.
// Ties break by name so output is stable.
func Leaderboard(habits []*Habit, w Window) []HabitRate {
	rows := make([]HabitRate, 0, len(habits))
	for _, h := range habits {
		completed := CompletedIn(h.Records, w, h.Frequency)
		eligible := w.EligibleDays(h.Frequency)
		rows = append(rows, HabitRate{
			HabitID:   h.ID,
			Name:      h.Name,
			Category:  h.Category,
			Completed: completed,
			Eligible:  eligible,
			Rate:      Rate(completed, eligible),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Rate != rows[j].Rate {
			return rows[i].Rate > rows[j].Rate
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	return rows
}

// CategoryRate aggregates a category's habits over a window.
type CategoryRate struct {
	Category  string
	Habits    int
	Completed int
	Eligible  int
	Rate      float64
}

// CategoryRollup sums completions and opportunities per category and applies
// the shared Rate formula to the totals.
func CategoryRollup(habits []*Habit, w Window) []CategoryRate {
	byCat := make(map[string]*CategoryRate)
	for _, h := range habits {
		c, ok := byCat[h.Category]
		if !ok {
			c = &CategoryRate{Category: h.Category}
			byCat[h.Category] = c
		}
		c.Habits++
		c.Completed += CompletedIn(h.Records, w, h.Frequency)
		c.Eligible += w.EligibleDays(h.Frequency)
	}

	out := make([]CategoryRate, 0, len(byCat))
	for _, c := range byCat {
		c.Rate = Rate(c.Completed, c.Eligible)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// TrendPoint is one day of a daily trend series.
type TrendPoint struct {
	Day       Day
	Completed int
	Eligible  int
	Rate      float64
}

// DailyTrend returns, for each day of w, how many daily habits that existed on
// that day were completed. Weekly habits are excluded: they have no per-day
// opportunity.
func DailyTrend(habits []*Habit, w Window, cal Calendar) []TrendPoint {
	points := make([]TrendPoint, 0, w.Days())
	w.Each(func(d Day) {
		p := TrendPoint{Day: d}
		for _, h := range habits {
			if h.Frequency == FrequencyWeekly {
				continue
			}
			if d.Before(cal.CreatedOn(h)) {
				continue
			}
			p.Eligible++
			if h.CompletedOn(d) {
				p.Completed++
			}
		}
		p.Rate = Rate(p.Completed, p.Eligible)
		points = append(points, p)
	})
	return points
}

// Summary is the per-habit status line shown by dashboards.
type Summary struct {
	Habit          *Habit
	CompletedToday bool
	CurrentStreak  int
	LongestStreak  int
	WeekStreak     int
	Rate7          float64
	Rate30         float64
}

// Summarize computes a Summary anchored at today.
func Summarize(h *Habit, today Day, cal Calendar) Summary {
	s := Summary{
		Habit:          h,
		CompletedToday: h.CompletedOn(today),
		CurrentStreak:  h.CurrentStreak(today, cal),
		LongestStreak:  h.LongestStreak(),
		Rate7:          h.CompletionRate(Trailing(today, 7)),
		Rate30:         h.CompletionRate(Trailing(today, 30)),
	}
	if h.Frequency == FrequencyWeekly {
		s.WeekStreak = h.WeekStreak(today, cal)
	}
	return s
}

// AtRisk reports whether a daily habit has a live streak through yesterday but
// no completion yet today. It returns the streak that would be lost.
func AtRisk(h *Habit, today Day, cal Calendar) (int, bool) {
	if !h.IsActive || h.Frequency != FrequencyDaily || h.CompletedOn(today) {
		return 0, false
	}
	streak := h.CurrentStreak(today.AddDays(-1), cal)
	return streak, streak > 0
}

// Report bundles the consistency views for one window.
type Report struct {
	Window      Window
	Leaderboard []HabitRate
	Categories  []CategoryRate
	Trend       []TrendPoint
}

// Alert flags a streak that will break unless the habit is completed today.
type Alert struct {
	HabitID string
	Name    string
	Streak  int
}

// Message is the human-readable alert text.
func (a Alert) Message() string {
	return fmt.Sprintf("Habit '%s' has a %d-day streak at risk!", a.Name, a.Streak)
}
