package generic

import (
	"fmt"
	"strings"
)

// =============================================================================
// DATE RANGE - Inclusive [Start, End] window
// =============================================================================

// DateRange is an inclusive window of whole days. Both ends count.
//
// Examples:
//   - Budget year 2025: 2025-01-01 .. 2025-12-31
//   - Query window for a single day: Start == End
type DateRange struct {
	Start CalendarDate `json:"start"`
	End   CalendarDate `json:"end"`
}

// NewDateRange builds a validated range.
func NewDateRange(start, end CalendarDate) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects ranges whose End precedes Start.
func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return &RangeError{Begin: r.Start, End: r.End}
	}
	return nil
}

// Contains returns true if the date is within [Start, End].
func (r DateRange) Contains(d CalendarDate) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days returns the number of days in the range, both ends included.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

// Intersect returns the overlap of two ranges and whether there is one.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	out := DateRange{Start: MaxDate(r.Start, other.Start), End: MinDate(r.End, other.End)}
	if out.End.Before(out.Start) {
		return DateRange{}, false
	}
	return out, true
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// =============================================================================
// RECURRENCE PERIOD - Calendar unit a rule repeats on
// =============================================================================

// RecurrencePeriod is the calendar unit between two occurrences of a rule.
// Periods are not ordered; each one has its own counting formula.
type RecurrencePeriod string

const (
	PeriodDay   RecurrencePeriod = "day"
	PeriodWeek  RecurrencePeriod = "week"
	PeriodMonth RecurrencePeriod = "month"
	PeriodYear  RecurrencePeriod = "year"
)

// RecurrencePeriods lists every supported period.
var RecurrencePeriods = []RecurrencePeriod{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

func (p RecurrencePeriod) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	default:
		return false
	}
}

func (p RecurrencePeriod) String() string { return string(p) }

// ParseRecurrencePeriod accepts the period names case-insensitively.
func ParseRecurrencePeriod(s string) (RecurrencePeriod, error) {
	p := RecurrencePeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}
