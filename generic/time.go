package generic

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CALENDAR DATE - Whole-day time abstraction (no time zone, no time of day)
// =============================================================================

// DateLayout is the canonical text form of a CalendarDate.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// CalendarDate is an immutable calendar day stored as a day-number: the count
// of days since 1970-01-01 in the proleptic Gregorian calendar. Two dates are
// equal exactly when their day-numbers are equal, so == works.
type CalendarDate struct {
	day int64
}

// Constructors
func NewDate(year int, month time.Month, day int) CalendarDate {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func FromDayNumber(n int64) CalendarDate { return CalendarDate{day: n} }

// FromTime drops the time of day; the calendar day is read in t's own location.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
	return CalendarDate{day: floorDiv64(u, secondsPerDay)}
}

func Today() CalendarDate { return FromTime(time.Now()) }

// ParseDate reads the YYYY-MM-DD form.
func ParseDate(s string) (CalendarDate, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParseDate panics on malformed input. Use in tests and fixtures.
func MustParseDate(s string) CalendarDate {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Conversion
func (d CalendarDate) DayNumber() int64 { return d.day }
func (d CalendarDate) Time() time.Time  { return time.Unix(d.day*secondsPerDay, 0).UTC() }

// Comparison
func (d CalendarDate) Before(other CalendarDate) bool        { return d.day < other.day }
func (d CalendarDate) After(other CalendarDate) bool         { return d.day > other.day }
func (d CalendarDate) Equal(other CalendarDate) bool         { return d.day == other.day }
func (d CalendarDate) BeforeOrEqual(other CalendarDate) bool { return d.day <= other.day }
func (d CalendarDate) AfterOrEqual(other CalendarDate) bool  { return d.day >= other.day }

// Compare returns -1, 0 or +1.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.day < other.day:
		return -1
	case d.day > other.day:
		return 1
	default:
		return 0
	}
}

// Arithmetic. Month and year steps normalize like time.Date: Jan 31 + 1 month
// lands on Mar 3 (Mar 2 in leap years).
func (d CalendarDate) AddDays(n int) CalendarDate   { return CalendarDate{day: d.day + int64(n)} }
func (d CalendarDate) AddMonths(n int) CalendarDate { return FromTime(d.Time().AddDate(0, n, 0)) }
func (d CalendarDate) AddYears(n int) CalendarDate  { return FromTime(d.Time().AddDate(n, 0, 0)) }

// Properties
func (d CalendarDate) Year() int             { return d.Time().Year() }
func (d CalendarDate) Month() time.Month     { return d.Time().Month() }
func (d CalendarDate) Day() int              { return d.Time().Day() }
func (d CalendarDate) Weekday() time.Weekday { return d.Time().Weekday() }

// Fields returns year, month and day with a single conversion.
func (d CalendarDate) Fields() (int, time.Month, int) { return d.Time().Date() }

func (d CalendarDate) String() string { return d.Time().Format(DateLayout) }

// =============================================================================
// JSON - "YYYY-MM-DD" out; string or integer day-number in
// =============================================================================

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD or an integer day-number, got %s", raw)
	}
	*d = FromDayNumber(n)
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns to - from in whole days. Negative when to precedes from.
func DaysBetween(from, to CalendarDate) int { return int(to.day - from.day) }

func MinDate(a, b CalendarDate) CalendarDate {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b CalendarDate) CalendarDate {
	if a.After(b) {
		return a
	}
	return b
}

func StartOfYear(year int) CalendarDate                    { return NewDate(year, time.January, 1) }
func EndOfYear(year int) CalendarDate                      { return NewDate(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) CalendarDate { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) CalendarDate {
	return NewDate(year, month+1, 1).AddDays(-1)
}

func floorDiv64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
