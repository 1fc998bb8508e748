package domain

import (
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"utc morning", time.Date(2024, 1, 14, 8, 0, 0, 0, time.UTC), "2024-01-14"},
		{"late evening stays local", time.Date(2024, 1, 14, 23, 59, 0, 0, tokyo), "2024-01-14"},
		{"just after midnight", time.Date(2024, 1, 15, 0, 0, 1, 0, tokyo), "2024-01-15"},
		{"zero padded", time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayOf(tt.t).String(); got != tt.want {
				t.Errorf("DayOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayOf_SameDayInstantsCollide(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	a := DayOf(time.Date(2024, 6, 1, 0, 0, 0, 0, loc))
	b := DayOf(time.Date(2024, 6, 1, 23, 59, 59, 0, loc))
	if a != b {
		t.Errorf("instants on the same local day produced %v and %v", a, b)
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDay() unexpected error = %v", err)
	}
	if d != NewDay(2024, time.February, 29) {
		t.Errorf("ParseDay() = %v", d)
	}

	if _, err := ParseDay("2024/02/29"); err == nil {
		t.Error("ParseDay() expected error for malformed input")
	}
}

func TestDay_Arithmetic(t *testing.T) {
	d := NewDay(2024, time.December, 31)

	if got := d.AddDays(1); got != NewDay(2025, time.January, 1) {
		t.Errorf("AddDays(1) = %v", got)
	}
	if got := d.AddDays(-366); got != NewDay(2023, time.December, 31) {
		t.Errorf("AddDays(-366) = %v", got)
	}
	if got := NewDay(2024, time.March, 1).DaysUntil(NewDay(2024, time.February, 28)); got != -2 {
		t.Errorf("DaysUntil() = %d, want -2", got)
	}
	if !NewDay(2024, time.January, 9).Before(NewDay(2024, time.January, 10)) {
		t.Error("Before() = false, want true")
	}
}

func TestDay_AddDaysAcrossDST(t *testing.T) {
	// 2024-03-10 is the US spring-forward day.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database unavailable")
	}
	d := DayOf(time.Date(2024, 3, 9, 23, 30, 0, 0, ny))
	if got := d.AddDays(1).String(); got != "2024-03-10" {
		t.Errorf("AddDays across DST = %v", got)
	}
	if got := d.AddDays(2).String(); got != "2024-03-11" {
		t.Errorf("AddDays across DST = %v", got)
	}
}

func TestDay_StartOfWeek(t *testing.T) {
	tests := []struct {
		day  Day
		want Day
	}{
		{NewDay(2024, time.January, 14), NewDay(2024, time.January, 8)},
		{NewDay(2024, time.January, 8), NewDay(2024, time.January, 8)},
		{NewDay(2024, time.January, 1), NewDay(2024, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.day.String(), func(t *testing.T) {
			if got := tt.day.StartOfWeek(); got != tt.want {
				t.Errorf("StartOfWeek() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDay_Scan(t *testing.T) {
	var d Day
	if err := d.Scan("2024-01-10"); err != nil {
		t.Fatalf("Scan(string) error = %v", err)
	}
	if d.String() != "2024-01-10" {
		t.Errorf("Scan(string) = %v", d)
	}
	if err := d.Scan(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan(time) error = %v", err)
	}
	if d.String() != "2024-01-11" {
		t.Errorf("Scan(time) = %v", d)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) expected error")
	}
}

func TestClock_Today(t *testing.T) {
	fixed := time.Date(2024, 1, 14, 23, 30, 0, 0, time.UTC)
	clock := Clock(func() time.Time { return fixed })

	if got := clock.Today(time.UTC).String(); got != "2024-01-14" {
		t.Errorf("Today(UTC) = %v", got)
	}
	if got := clock.Today(time.FixedZone("JST", 9*3600)).String(); got != "2024-01-15" {
		t.Errorf("Today(JST) = %v", got)
	}
}
