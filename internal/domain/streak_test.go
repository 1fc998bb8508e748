package domain

import (
	"testing"
	"time"
)

func day(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func completed(days ...string) []HabitRecord {
	records := make([]HabitRecord, 0, len(days))
	for _, s := range days {
		records = append(records, HabitRecord{Date: day(s), IsCompleted: true})
	}
	return records
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []HabitRecord
		opts    StreakOptions
		want    int
	}{
		{
			name:    "no records",
			records: nil,
			opts:    StreakOptions{Reference: day("2024-01-14")},
			want:    0,
		},
		{
			name:    "reference day not completed",
			records: completed("2024-01-12", "2024-01-13"),
			opts:    StreakOptions{Reference: day("2024-01-14")},
			want:    0,
		},
		{
			name:    "three consecutive days",
			records: completed("2024-01-12", "2024-01-13", "2024-01-14"),
			opts:    StreakOptions{Reference: day("2024-01-14")},
			want:    3,
		},
		{
			name:    "gap breaks the walk",
			records: completed("2024-01-10", "2024-01-11", "2024-01-12", "2024-01-14"),
			opts:    StreakOptions{Reference: day("2024-01-14")},
			want:    1,
		},
		{
			name:    "unordered input",
			records: completed("2024-01-14", "2024-01-12", "2024-01-13"),
			opts:    StreakOptions{Reference: day("2024-01-14")},
			want:    3,
		},
		{
			name: "incomplete record counts as gap",
			records: append(completed("2024-01-12", "2024-01-14"),
				HabitRecord{Date: day("2024-01-13"), IsCompleted: false}),
			opts: StreakOptions{Reference: day("2024-01-14")},
			want: 1,
		},
		{
			name:    "stops before creation day",
			records: completed("2024-01-09", "2024-01-10", "2024-01-11"),
			opts:    StreakOptions{Reference: day("2024-01-11"), CreatedOn: day("2024-01-10")},
			want:    2,
		},
		{
			name:    "bounded by limit",
			records: completed("2024-01-10", "2024-01-11", "2024-01-12", "2024-01-13"),
			opts:    StreakOptions{Reference: day("2024-01-13"), Limit: 2},
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentStreak(tt.records, tt.opts); got != tt.want {
				t.Errorf("CurrentStreak() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrentStreak_DefaultLimit(t *testing.T) {
	ref := day("2024-12-31")
	var records []HabitRecord
	for i := 0; i < 400; i++ {
		records = append(records, HabitRecord{Date: ref.AddDays(-i), IsCompleted: true})
	}
	if got := CurrentStreak(records, StreakOptions{Reference: ref}); got != DefaultStreakLimit {
		t.Errorf("CurrentStreak() = %v, want %v", got, DefaultStreakLimit)
	}
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []HabitRecord
		want    int
	}{
		{"empty", nil, 0},
		{"single", completed("2024-01-10"), 1},
		{"run of three then one", completed("2024-01-10", "2024-01-11", "2024-01-12", "2024-01-14"), 3},
		{"reverse order", completed("2024-01-14", "2024-01-12", "2024-01-11", "2024-01-10"), 3},
		{"month boundary", completed("2024-01-30", "2024-01-31", "2024-02-01"), 3},
		{"duplicates collapse", completed("2024-01-10", "2024-01-10", "2024-01-11"), 2},
		{"incomplete ignored", []HabitRecord{{Date: day("2024-01-10")}, {Date: day("2024-01-11")}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LongestStreak(tt.records); got != tt.want {
				t.Errorf("LongestStreak() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHabit_StreakScenario(t *testing.T) {
	h := &Habit{
		ID:        "h1",
		Name:      "Read",
		Frequency: FrequencyDaily,
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Records:   completed("2024-01-10", "2024-01-11", "2024-01-12", "2024-01-14"),
	}

	if got := h.CurrentStreak(day("2024-01-14"), Calendar{Location: time.UTC}); got != 1 {
		t.Errorf("CurrentStreak() = %v, want 1", got)
	}
	if got := h.LongestStreak(); got != 3 {
		t.Errorf("LongestStreak() = %v, want 3", got)
	}
}

func TestCurrentWeekStreak(t *testing.T) {
	// Weeks starting 2024-01-01, 01-08 and 01-15 each carry one completion.
	records := completed("2024-01-03", "2024-01-08", "2024-01-20")

	if got := CurrentWeekStreak(records, StreakOptions{Reference: day("2024-01-21")}); got != 3 {
		t.Errorf("CurrentWeekStreak() = %v, want 3", got)
	}
	if got := CurrentWeekStreak(records, StreakOptions{Reference: day("2024-01-28")}); got != 0 {
		t.Errorf("CurrentWeekStreak() = %v, want 0", got)
	}
	if got := CurrentWeekStreak(records, StreakOptions{Reference: day("2024-01-21"), CreatedOn: day("2024-01-09")}); got != 2 {
		t.Errorf("CurrentWeekStreak() with creation floor = %v, want 2", got)
	}
}

func TestCurrentWeekStreak_Limit(t *testing.T) {
	records := completed("2024-01-03", "2024-01-08", "2024-01-20")
	// 7 days allow the reference week and one more.
	if got := CurrentWeekStreak(records, StreakOptions{Reference: day("2024-01-21"), Limit: 7}); got != 2 {
		t.Errorf("CurrentWeekStreak() with limit = %v, want 2", got)
	}
}

func TestCalendar_CreationDayInZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 20:00 UTC on the 13th is already the 14th in Tokyo.
	h := &Habit{
		ID:        "h1",
		Frequency: FrequencyDaily,
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 13, 20, 0, 0, 0, time.UTC),
		Records:   completed("2024-01-13", "2024-01-14"),
	}

	tests := []struct {
		name string
		cal  Calendar
		want int
	}{
		{name: "utc", cal: Calendar{Location: time.UTC}, want: 2},
		{name: "tokyo", cal: Calendar{Location: tokyo}, want: 1},
		{name: "limit", cal: Calendar{Location: time.UTC, StreakLimit: 1}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.CurrentStreak(day("2024-01-14"), tt.cal); got != tt.want {
				t.Errorf("CurrentStreak() = %v, want %v", got, tt.want)
			}
			if got := Summarize(h, day("2024-01-14"), tt.cal).CurrentStreak; got != tt.want {
				t.Errorf("Summarize().CurrentStreak = %v, want %v", got, tt.want)
			}
		})
	}
}
