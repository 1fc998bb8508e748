package domain

import (
	"sort"
	"time"
)

// DefaultStreakLimit caps the backward walk of CurrentStreak.
const DefaultStreakLimit = 365

// StreakOptions anchors a current-streak computation.
type StreakOptions struct {
	// Reference is the day the streak must end on.
	Reference Day
	// CreatedOn, when non-zero, is the earliest day that may count.
	CreatedOn Day
	// Limit bounds the walk; zero means DefaultStreakLimit.
	Limit int
}

// Calendar fixes the zone creation times are read in and the streak walk
// limit. Streak figures shown anywhere go through one Calendar so every view
// agrees on the day a habit started.
type Calendar struct {
	Location    *time.Location
	StreakLimit int
}

// CreatedOn is the habit's creation day in c's zone.
func (c Calendar) CreatedOn(h *Habit) Day {
	return h.CreatedOn(c.Location)
}

// StreakOptions anchors a streak of h at ref.
func (c Calendar) StreakOptions(h *Habit, ref Day) StreakOptions {
	return StreakOptions{Reference: ref, CreatedOn: c.CreatedOn(h), Limit: c.StreakLimit}
}

func (o StreakOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultStreakLimit
	}
	return o.Limit
}

// completedDays collects the distinct completed days of records. When a day
// has several records the first one decides, as in Habit.RecordFor.
func completedDays(records []HabitRecord) map[Day]struct{} {
	seen := make(map[Day]struct{}, len(records))
	days := make(map[Day]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.Date]; dup {
			continue
		}
		seen[r.Date] = struct{}{}
		if r.IsCompleted {
			days[r.Date] = struct{}{}
		}
	}
	return days
}

// CurrentStreak counts consecutive completed days ending at opts.Reference.
// A missing or incomplete reference day yields zero regardless of earlier runs.
func CurrentStreak(records []HabitRecord, opts StreakOptions) int {
	limit := opts.limit()
	done := completedDays(records)
	streak := 0
	day := opts.Reference
	for i := 0; i < limit; i++ {
		if !opts.CreatedOn.IsZero() && day.Before(opts.CreatedOn) {
			break
		}
		if _, ok := done[day]; !ok {
			break
		}
		streak++
		day = day.AddDays(-1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive completed days anywhere
// in the history. Absent days break a run the same way incomplete ones do.
func LongestStreak(records []HabitRecord) int {
	days := sortedCompletedDays(records)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDays(1) == days[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func sortedCompletedDays(records []HabitRecord) []Day {
	set := completedDays(records)
	days := make([]Day, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// CurrentWeekStreak counts consecutive ISO weeks with at least one completion,
// ending at the week containing opts.Reference. The week holding CreatedOn is
// the earliest that may count; Limit is in days.
func CurrentWeekStreak(records []HabitRecord, opts StreakOptions) int {
	weeks := make(map[Week]struct{})
	for d := range completedDays(records) {
		weeks[d.ISOWeek()] = struct{}{}
	}

	streak := 0
	monday := opts.Reference.StartOfWeek()
	floor := Day{}
	if !opts.CreatedOn.IsZero() {
		floor = opts.CreatedOn.StartOfWeek()
	}
	for i := 0; i < opts.limit()/7+1; i++ {
		if !floor.IsZero() && monday.Before(floor) {
			break
		}
		if _, ok := weeks[monday.ISOWeek()]; !ok {
			break
		}
		streak++
		monday = monday.AddDays(-7)
	}
	return streak
}

// CurrentStreak is CurrentStreak anchored at ref and bounded by the habit's
// creation day in cal.
func (h *Habit) CurrentStreak(ref Day, cal Calendar) int {
	return CurrentStreak(h.Records, cal.StreakOptions(h, ref))
}

// WeekStreak is CurrentWeekStreak for the habit.
func (h *Habit) WeekStreak(ref Day, cal Calendar) int {
	return CurrentWeekStreak(h.Records, cal.StreakOptions(h, ref))
}

// LongestStreak is LongestStreak over the habit's records.
func (h *Habit) LongestStreak() int {
	return LongestStreak(h.Records)
}
