// Package domain contains the core entities of the habit tracker and the
// pure consistency math computed over them. Nothing in this package does I/O.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error kinds surfaced by the engine and its adapters.
var (
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
	ErrInvariant   = errors.New("invariant violation")

	ErrHabitNotFound   = fmt.Errorf("habit %w", ErrNotFound)
	ErrRecordNotFound  = fmt.Errorf("record %w", ErrNotFound)
	ErrDuplicateRecord = fmt.Errorf("%w: duplicate same-day record", ErrInvariant)
	ErrEmptyWindow     = fmt.Errorf("%w: window has no days", ErrInvariant)

	ErrEmptyHabitName   = errors.New("habit name cannot be empty")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrDuplicateHabit   = errors.New("habit with this name already exists")
	ErrAmbiguousHabit   = errors.New("habit reference is ambiguous")
)

// Frequency says how often a habit expects a completion.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency validates a frequency string. Empty means daily.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case "", FrequencyDaily:
		return FrequencyDaily, nil
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	default:
		return "", fmt.Errorf("%w %q: must be daily or weekly", ErrInvalidFrequency, s)
	}
}

// HabitRecord is the completion state of one habit on one calendar day.
type HabitRecord struct {
	ID          string
	HabitID     string
	Date        Day
	IsCompleted bool
	Notes       string
	UpdatedAt   time.Time
}

// Habit is a tracked behaviour and the records it owns.
// Records carry no ordering guarantee.
type Habit struct {
	ID        string
	Name      string
	Category  string
	Frequency Frequency
	Color     string
	IsActive  bool
	CreatedAt time.Time
	Records   []HabitRecord
}

// NewHabit creates an active habit.
func NewHabit(name, category string, freq Frequency) (*Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyHabitName
	}
	if freq == "" {
		freq = FrequencyDaily
	}
	if _, err := ParseFrequency(string(freq)); err != nil {
		return nil, err
	}
	if category == "" {
		category = "general"
	}

	return &Habit{
		ID:        generateID(),
		Name:      name,
		Category:  category,
		Frequency: freq,
		IsActive:  true,
		CreatedAt: time.Now(),
		Records:   []HabitRecord{},
	}, nil
}

// NewHabitRecord creates a record for habitID on day.
func NewHabitRecord(habitID string, day Day, completed bool, notes string) HabitRecord {
	return HabitRecord{
		ID:          generateID(),
		HabitID:     habitID,
		Date:        day,
		IsCompleted: completed,
		Notes:       notes,
		UpdatedAt:   time.Now(),
	}
}

// CreatedOn returns the calendar day the habit was created, in loc.
func (h *Habit) CreatedOn(loc *time.Location) Day {
	t := h.CreatedAt
	if loc != nil {
		t = t.In(loc)
	}
	return DayOf(t)
}

// RecordFor returns the first record for day. Duplicate same-day records are a
// data-integrity violation; the first one found wins.
func (h *Habit) RecordFor(day Day) (*HabitRecord, bool) {
	for i := range h.Records {
		if h.Records[i].Date == day {
			return &h.Records[i], true
		}
	}
	return nil, false
}

// CompletedOn reports whether the habit has a completed record for day.
func (h *Habit) CompletedOn(day Day) bool {
	r, ok := h.RecordFor(day)
	return ok && r.IsCompleted
}

// Archive deactivates the habit.
func (h *Habit) Archive() {
	h.IsActive = false
}

// Clone returns a deep copy whose Records can be modified freely.
func (h *Habit) Clone() *Habit {
	c := *h
	c.Records = make([]HabitRecord, len(h.Records))
	copy(c.Records, h.Records)
	return &c
}

// DuplicateDays returns every day that carries more than one record. Lookups,
// streaks and rates all read only the first record of such a day.
func DuplicateDays(records []HabitRecord) []Day {
	seen := make(map[Day]int, len(records))
	var dups []Day
	for _, r := range records {
		seen[r.Date]++
		if seen[r.Date] == 2 {
			dups = append(dups, r.Date)
		}
	}
	return dups
}

// ToggleError reports a failed toggle for one (habit, day) pair.
type ToggleError struct {
	HabitID   string
	HabitName string
	Day       Day
	Err       error
}

func (e *ToggleError) Error() string {
	name := e.HabitName
	if name == "" {
		name = e.HabitID
	}
	return fmt.Sprintf("toggle %s on %s: %v", name, e.Day, e.Err)
}

func (e *ToggleError) Unwrap() error {
	return e.Err
}

// ToggleResult is the final outcome of toggling one (habit, day) pair.
type ToggleResult struct {
	HabitID   string
	HabitName string
	Day       Day
	Value     bool
	Err       error
}

// OK reports whether the toggle persisted.
func (r ToggleResult) OK() bool {
	return r.Err == nil
}
