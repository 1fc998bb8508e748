package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DayLayout is the canonical text form of a calendar day.
const DayLayout = "2006-01-02"

// Day identifies a calendar day independent of time-of-day.
// It is comparable and safe to use as a map key.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

// DayOf normalizes t to its calendar day using t's own location fields.
// Two instants on the same local day always yield the same Day.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

// NewDay builds a Day, normalizing out-of-range values (e.g. Jan 32 -> Feb 1).
func NewDay(year int, month time.Month, dom int) Day {
	return DayOf(time.Date(year, month, dom, 0, 0, 0, 0, time.UTC))
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}

// anchor is the UTC midnight of d. Arithmetic goes through it so DST never moves a day.
func (d Day) anchor() time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, time.UTC)
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc)
}

// String returns the zero-padded YYYY-MM-DD key.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Dom)
}

// AddDays returns the day n calendar days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return DayOf(d.anchor().AddDate(0, 0, n))
}

// DaysUntil returns the number of calendar days from d to other.
func (d Day) DaysUntil(other Day) int {
	return int(other.anchor().Sub(d.anchor()).Hours() / 24)
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return d.Compare(other) > 0
}

// Compare returns -1, 0 or +1.
func (d Day) Compare(other Day) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Dom, other.Dom)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Weekday returns the day of the week.
func (d Day) Weekday() time.Weekday {
	return d.anchor().Weekday()
}

// Week identifies an ISO-8601 week.
type Week struct {
	Year int
	Num  int
}

// String returns the YYYY-Www form.
func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Num)
}

// ISOWeek returns the ISO week containing d.
func (d Day) ISOWeek() Week {
	y, n := d.anchor().ISOWeek()
	return Week{Year: y, Num: n}
}

// StartOfWeek returns the Monday of d's ISO week.
func (d Day) StartOfWeek() Day {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDays(-offset)
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; days are stored as YYYY-MM-DD text.
func (d Day) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = DayOf(v)
		return nil
	case nil:
		*d = Day{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Day", src)
	}
}

// Clock supplies the current instant; tests replace it.
type Clock func() time.Time

// Today returns the current calendar day, evaluated in loc when set.
func (c Clock) Today(loc *time.Location) Day {
	now := time.Now
	if c != nil {
		now = c
	}
	t := now()
	if loc != nil {
		t = t.In(loc)
	}
	return DayOf(t)
}
