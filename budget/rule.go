package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// CATEGORY RULE - One recurring spending event
// =============================================================================

// RuleValues is the mutable description a CategoryRule is built from.
// A nil Period means the rule fires once; RepeatN is ignored then.
type RuleValues struct {
	Amount    decimal.Decimal
	StartDate *generic.CalendarDate
	EndDate   *generic.CalendarDate
	RepeatN   int
	Period    *generic.RecurrencePeriod
}

// CategoryRule is an immutable recurrence rule: it fires on its start date
// (or on the first day of whatever window it is asked about) and then every
// RepeatN periods until its end date.
//
// Bounds are not required to be ordered here; an end before the start is a
// business-rule failure reported by Category.Validate.
type CategoryRule struct {
	amount    decimal.Decimal
	startDate *generic.CalendarDate
	endDate   *generic.CalendarDate
	repeatN   int
	period    *generic.RecurrencePeriod
}

// NewCategoryRule validates values and returns the rule.
// RepeatN == 0 defaults to 1.
func NewCategoryRule(v RuleValues) (CategoryRule, error) {
	repeatN := v.RepeatN
	if repeatN == 0 {
		repeatN = 1
	}
	if repeatN < 0 {
		return CategoryRule{}, generic.NewInvariantError("repeat_n", "must be a positive integer, got %d", v.RepeatN)
	}
	if v.Period != nil && !v.Period.Valid() {
		return CategoryRule{}, &generic.InvariantError{
			Field:  "period",
			Reason: fmt.Sprintf("%q is not one of day, week, month, year", string(*v.Period)),
			Err:    generic.ErrInvalidPeriod,
		}
	}
	return CategoryRule{
		amount:    v.Amount,
		startDate: copyDate(v.StartDate),
		endDate:   copyDate(v.EndDate),
		repeatN:   repeatN,
		period:    copyPeriod(v.Period),
	}, nil
}

// MustNewCategoryRule panics on invalid values. Use in tests and fixtures.
func MustNewCategoryRule(v RuleValues) CategoryRule {
	r, err := NewCategoryRule(v)
	if err != nil {
		panic(err)
	}
	return r
}

func copyDate(d *generic.CalendarDate) *generic.CalendarDate {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func copyPeriod(p *generic.RecurrencePeriod) *generic.RecurrencePeriod {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Accessors
func (r CategoryRule) Amount() decimal.Decimal { return r.amount }
func (r CategoryRule) RepeatN() int             { return r.repeatN }
func (r CategoryRule) IsRepeating() bool        { return r.period != nil }

func (r CategoryRule) StartDate() (generic.CalendarDate, bool) {
	if r.startDate == nil {
		return generic.CalendarDate{}, false
	}
	return *r.startDate, true
}

func (r CategoryRule) EndDate() (generic.CalendarDate, bool) {
	if r.endDate == nil {
		return generic.CalendarDate{}, false
	}
	return *r.endDate, true
}

func (r CategoryRule) Period() (generic.RecurrencePeriod, bool) {
	if r.period == nil {
		return "", false
	}
	return *r.period, true
}

// HasInvertedBounds reports an end date before the start date.
func (r CategoryRule) HasInvertedBounds() bool {
	return r.startDate != nil && r.endDate != nil && r.endDate.Before(*r.startDate)
}

// Values returns a detached copy of the rule's fields.
func (r CategoryRule) Values() RuleValues {
	repeatN := r.repeatN
	if repeatN == 0 {
		repeatN = 1
	}
	return RuleValues{
		Amount:    r.amount,
		StartDate: copyDate(r.startDate),
		EndDate:   copyDate(r.endDate),
		RepeatN:   repeatN,
		Period:    copyPeriod(r.period),
	}
}

// With returns a new rule with edit applied to a copy of the fields.
func (r CategoryRule) With(edit func(*RuleValues)) (CategoryRule, error) {
	v := r.Values()
	edit(&v)
	return NewCategoryRule(v)
}

// Equal compares rules structurally. Amounts compare by value, so 5 and 5.00 match.
func (r CategoryRule) Equal(other CategoryRule) bool {
	return r.amount.Equal(other.amount) &&
		datesEqual(r.startDate, other.startDate) &&
		datesEqual(r.endDate, other.endDate) &&
		r.effectiveRepeatN() == other.effectiveRepeatN() &&
		periodsEqual(r.period, other.period)
}

func datesEqual(a, b *generic.CalendarDate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func periodsEqual(a, b *generic.RecurrencePeriod) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// effectiveRepeatN guards the zero value CategoryRule{}.
func (r CategoryRule) effectiveRepeatN() int {
	if r.repeatN < 1 {
		return 1
	}
	return r.repeatN
}

func (r CategoryRule) String() string {
	var b strings.Builder
	b.WriteString(r.amount.String())
	if r.period == nil {
		b.WriteString(" once")
	} else if n := r.effectiveRepeatN(); n == 1 {
		fmt.Fprintf(&b, " every %s", *r.period)
	} else {
		fmt.Fprintf(&b, " every %d %ss", n, *r.period)
	}
	if r.startDate != nil {
		fmt.Fprintf(&b, " from %s", r.startDate)
	}
	if r.endDate != nil {
		fmt.Fprintf(&b, " until %s", r.endDate)
	}
	return b.String()
}

// =============================================================================
// OCCURRENCE COUNTING
// =============================================================================

// CountOccurrencesBetween returns how many times the rule fires in the
// inclusive range [begin, end].
//
// A repeating rule is anchored on its start date, or on begin when it has
// none, and fires every RepeatN periods from there. For a year period the
// stride is not applied: a yearly rule counts every anniversary whatever its
// RepeatN.
func (r CategoryRule) CountOccurrencesBetween(begin, end generic.CalendarDate) (int, error) {
	if end.Before(begin) {
		return 0, &generic.RangeError{Begin: begin, End: end}
	}

	// Active window and query window are disjoint.
	if r.startDate != nil && r.startDate.After(end) {
		return 0, nil
	}
	if r.endDate != nil && r.endDate.Before(begin) {
		return 0, nil
	}

	if r.period == nil {
		return 1, nil
	}

	firstDay := begin
	if r.startDate != nil {
		firstDay = *r.startDate
	}
	lastDay := end
	if r.endDate != nil && r.endDate.Before(end) {
		lastDay = *r.endDate
	}

	count, err := r.countFrom(firstDay, lastDay)
	if err != nil {
		return 0, err
	}

	// The closed form counts from the anchor. When the anchor precedes the
	// window, drop the occurrences in [firstDay, begin-1]. The anchor of that
	// inner range is firstDay itself, so one correction is always enough.
	if firstDay.Before(begin) {
		before, err := r.countBefore(firstDay, begin.AddDays(-1))
		if err != nil {
			return 0, err
		}
		count -= before
	}

	if count < 0 {
		return 0, fmt.Errorf("%w: %d for rule %s in %s..%s", generic.ErrNegativeOccurrences, count, r, begin, end)
	}
	return count, nil
}

// OccurrencesIn is CountOccurrencesBetween over a DateRange.
func (r CategoryRule) OccurrencesIn(window generic.DateRange) (int, error) {
	return r.CountOccurrencesBetween(window.Start, window.End)
}

// ProjectedAmount is the rule amount times its occurrences in [begin, end].
func (r CategoryRule) ProjectedAmount(begin, end generic.CalendarDate) (decimal.Decimal, error) {
	n, err := r.CountOccurrencesBetween(begin, end)
	if err != nil {
		return decimal.Zero, err
	}
	return r.amount.Mul(decimal.NewFromInt(int64(n))), nil
}

// countBefore counts occurrences in [anchor, until] where anchor is the rule
// start date, applying the same end-date short-circuit and clamp as the
// outer count.
func (r CategoryRule) countBefore(anchor, until generic.CalendarDate) (int, error) {
	if r.endDate != nil && r.endDate.Before(anchor) {
		return 0, nil
	}
	lastDay := until
	if r.endDate != nil && r.endDate.Before(until) {
		lastDay = *r.endDate
	}
	return r.countFrom(anchor, lastDay)
}

// countFrom applies the closed form for the rule's period, assuming an
// occurrence on firstDay.
func (r CategoryRule) countFrom(firstDay, lastDay generic.CalendarDate) (int, error) {
	// Day and week clamp a negative daysDiff at zero. Month and year get the
	// same collapse so an inverted rule counts its anchor once.
	if lastDay.Before(firstDay) {
		lastDay = firstDay
	}
	n := r.effectiveRepeatN()
	daysDiff := generic.DaysBetween(firstDay, lastDay)

	switch *r.period {
	case generic.PeriodDay:
		return daysDiff/n + 1, nil

	case generic.PeriodWeek:
		return daysDiff/(n*7) + 1, nil

	case generic.PeriodMonth:
		fy, fm, fd := firstDay.Fields()
		ly, lm, ld := lastDay.Fields()
		months := (ly-fy)*12 + int(lm-fm)
		if ld >= fd {
			months++
		}
		return floorDiv(months-1, n) + 1, nil

	case generic.PeriodYear:
		fy, fm, fd := firstDay.Fields()
		ly, lm, ld := lastDay.Fields()
		years := ly - fy
		if lm > fm || (lm == fm && ld >= fd) {
			years++
		}
		return years, nil

	default:
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidPeriod, string(*r.period))
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
