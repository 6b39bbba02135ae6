/*
rule_test.go - Tests for CategoryRule construction and occurrence counting

ORGANIZATION:
  1. Construction - defaults, invariant failures, copy-on-write
  2. Counting formulas - one table per period
  3. Boundary correction - rules anchored before the query window
  4. Properties - non-negativity, monotonicity, disjointness, stride
*/
package budget_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-rules/budget"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func date(s string) generic.CalendarDate { return generic.MustParseDate(s) }

func datePtr(s string) *generic.CalendarDate {
	if s == "" {
		return nil
	}
	d := date(s)
	return &d
}

func periodPtr(p generic.RecurrencePeriod) *generic.RecurrencePeriod {
	if p == "" {
		return nil
	}
	return &p
}

// rule builds a rule; "" leaves a bound or the period unset.
func rule(amount, start, end string, repeatN int, period generic.RecurrencePeriod) budget.CategoryRule {
	return budget.MustNewCategoryRule(budget.RuleValues{
		Amount:    decimal.RequireFromString(amount),
		StartDate: datePtr(start),
		EndDate:   datePtr(end),
		RepeatN:   repeatN,
		Period:    periodPtr(period),
	})
}

func count(t *testing.T, r budget.CategoryRule, begin, end string) int {
	t.Helper()
	n, err := r.CountOccurrencesBetween(date(begin), date(end))
	require.NoError(t, err)
	return n
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNewCategoryRule_DefaultsRepeatNToOne(t *testing.T) {
	// GIVEN: values without a stride
	r, err := budget.NewCategoryRule(budget.RuleValues{Period: periodPtr(generic.PeriodWeek)})

	// THEN: the stride is 1
	require.NoError(t, err)
	assert.Equal(t, 1, r.RepeatN())
	assert.True(t, r.IsRepeating())
}

func TestNewCategoryRule_RejectsNegativeRepeatN(t *testing.T) {
	_, err := budget.NewCategoryRule(budget.RuleValues{RepeatN: -2, Period: periodPtr(generic.PeriodDay)})

	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvariantViolation)
	var inv *generic.InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "repeat_n", inv.Field)
}

func TestNewCategoryRule_RejectsUnknownPeriod(t *testing.T) {
	_, err := budget.NewCategoryRule(budget.RuleValues{Period: periodPtr("fortnight")})

	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvariantViolation)
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestNewCategoryRule_CopiesInputPointers(t *testing.T) {
	// GIVEN: values whose start date pointer the caller keeps
	start := date("2024-01-01")
	r := budget.MustNewCategoryRule(budget.RuleValues{StartDate: &start})

	// WHEN: the caller mutates its date afterwards
	start = date("2030-01-01")

	// THEN: the rule is unaffected
	got, ok := r.StartDate()
	require.True(t, ok)
	assert.Equal(t, date("2024-01-01"), got)
}

func TestCategoryRule_WithLeavesOriginalUntouched(t *testing.T) {
	original := rule("10", "2024-01-01", "", 1, generic.PeriodMonth)

	edited, err := original.With(func(v *budget.RuleValues) { v.RepeatN = 3 })

	require.NoError(t, err)
	assert.Equal(t, 3, edited.RepeatN())
	assert.Equal(t, 1, original.RepeatN())
	assert.False(t, original.Equal(edited))
}

func TestCategoryRule_WithValidates(t *testing.T) {
	original := rule("10", "", "", 1, generic.PeriodMonth)

	_, err := original.With(func(v *budget.RuleValues) { v.RepeatN = -1 })

	assert.ErrorIs(t, err, generic.ErrInvariantViolation)
}

func TestCategoryRule_EqualComparesAmountsByValue(t *testing.T) {
	a := rule("5", "2024-01-01", "", 1, generic.PeriodDay)
	b := rule("5.00", "2024-01-01", "", 0, generic.PeriodDay)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(rule("5", "2024-01-02", "", 1, generic.PeriodDay)))
	assert.False(t, a.Equal(rule("5", "2024-01-01", "", 1, "")))
}

func TestCategoryRule_String(t *testing.T) {
	assert.Equal(t, "12.5 every 2 months from 2024-01-01 until 2024-12-31",
		rule("12.5", "2024-01-01", "2024-12-31", 2, generic.PeriodMonth).String())
	assert.Equal(t, "3 every day", rule("3", "", "", 1, generic.PeriodDay).String())
	assert.Equal(t, "40 once from 2024-05-01", rule("40", "2024-05-01", "", 1, "").String())
}

func TestCategoryRule_HasInvertedBounds(t *testing.T) {
	assert.True(t, rule("1", "2024-03-01", "2024-02-01", 1, generic.PeriodDay).HasInvertedBounds())
	assert.False(t, rule("1", "2024-03-01", "2024-03-01", 1, generic.PeriodDay).HasInvertedBounds())
	assert.False(t, rule("1", "", "2024-02-01", 1, generic.PeriodDay).HasInvertedBounds())
}

// =============================================================================
// COUNTING FORMULAS
// =============================================================================

func TestCountOccurrencesBetween_Formulas(t *testing.T) {
	tests := []struct {
		name       string
		rule       budget.CategoryRule
		begin, end string
		want       int
	}{
		{"once unbounded", rule("1", "", "", 1, ""), "2024-01-01", "2024-12-31", 1},
		{"once inside window", rule("1", "2024-06-01", "2024-06-01", 1, ""), "2024-01-01", "2024-12-31", 1},

		{"daily unbounded", rule("1", "", "", 1, generic.PeriodDay), "2024-01-01", "2024-01-10", 10},
		{"daily single day", rule("1", "", "", 1, generic.PeriodDay), "2024-01-01", "2024-01-01", 1},
		{"every other day", rule("1", "2024-01-01", "", 2, generic.PeriodDay), "2024-01-01", "2024-01-10", 5},
		{"daily clamped by end date", rule("1", "2024-01-01", "2024-01-05", 1, generic.PeriodDay), "2024-01-01", "2024-01-31", 5},
		{"daily starting mid-window", rule("1", "2024-01-21", "", 1, generic.PeriodDay), "2024-01-01", "2024-01-31", 11},

		{"weekly", rule("1", "2024-01-01", "", 1, generic.PeriodWeek), "2024-01-01", "2024-01-31", 5},
		{"fortnightly", rule("1", "2024-01-01", "", 2, generic.PeriodWeek), "2024-01-01", "2024-01-31", 3},
		{"weekly window shorter than a week", rule("1", "", "", 1, generic.PeriodWeek), "2024-01-01", "2024-01-06", 1},

		{"monthly full year", rule("1", "2024-01-01", "", 1, generic.PeriodMonth), "2024-01-01", "2024-12-31", 12},
		{"monthly on the 15th", rule("1", "2024-01-15", "", 1, generic.PeriodMonth), "2024-01-01", "2024-12-31", 12},
		{"monthly on the 15th, window stops the 14th", rule("1", "2024-01-15", "", 1, generic.PeriodMonth), "2024-01-01", "2024-03-14", 2},
		{"quarterly", rule("1", "2024-01-15", "", 3, generic.PeriodMonth), "2024-01-01", "2024-12-31", 4},
		{"monthly until june", rule("1", "2024-01-01", "2024-06-30", 1, generic.PeriodMonth), "2024-01-01", "2024-12-31", 6},

		{"yearly anniversary passed", rule("1", "2020-06-15", "", 1, generic.PeriodYear), "2020-01-01", "2023-12-31", 4},
		{"yearly anniversary not reached", rule("1", "2020-06-15", "", 1, generic.PeriodYear), "2020-01-01", "2023-06-14", 3},
		{"yearly on the anniversary", rule("1", "2020-06-15", "", 1, generic.PeriodYear), "2020-01-01", "2023-06-15", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, count(t, tt.rule, tt.begin, tt.end))
		})
	}
}

func TestCountOccurrencesBetween_MonthlyFrom2014(t *testing.T) {
	// GIVEN: a monthly rule started two years before the window
	r := rule("1", "2014-01-01", "", 1, generic.PeriodMonth)

	// WHEN: counting over 2016
	// THEN: only the twelve 2016 occurrences are counted
	assert.Equal(t, 12, count(t, r, "2016-01-01", "2016-12-31"))
}

func TestCountOccurrencesBetween_YearlyIgnoresRepeatN(t *testing.T) {
	// GIVEN: two yearly rules differing only in stride
	every := rule("1", "2020-01-01", "", 1, generic.PeriodYear)
	everyOther := rule("1", "2020-01-01", "", 2, generic.PeriodYear)

	// THEN: the stride has no effect on a yearly count
	assert.Equal(t, 4, count(t, every, "2020-01-01", "2023-12-31"))
	assert.Equal(t, 4, count(t, everyOther, "2020-01-01", "2023-12-31"))
}

func TestCountOccurrencesBetween_MonthEndAnchor(t *testing.T) {
	// GIVEN: a monthly rule anchored on January 31st
	r := rule("1", "2024-01-31", "", 1, generic.PeriodMonth)

	// THEN: February holds no day >= 31, so its anniversary is only counted
	// once the calendar passes into March
	assert.Equal(t, 1, count(t, r, "2024-01-31", "2024-02-29"))
	assert.Equal(t, 2, count(t, r, "2024-01-31", "2024-03-01"))
	assert.Equal(t, 2, count(t, r, "2024-01-31", "2024-03-30"))
	assert.Equal(t, 3, count(t, r, "2024-01-31", "2024-03-31"))
}

// =============================================================================
// BOUNDARY CORRECTION
// =============================================================================

func TestCountOccurrencesBetween_StrideKeepsPhaseAcrossWindow(t *testing.T) {
	// GIVEN: an every-other-day rule anchored on Jan 1 (fires 1, 3, 5, ...)
	r := rule("1", "2024-01-01", "", 2, generic.PeriodDay)

	// WHEN: the window starts on Jan 2
	// THEN: only 3, 5, 7, 9 are counted
	assert.Equal(t, 4, count(t, r, "2024-01-02", "2024-01-10"))
	// AND: a single off-phase day holds none
	assert.Equal(t, 0, count(t, r, "2024-01-02", "2024-01-02"))
}

func TestCountOccurrencesBetween_QuarterlyAnchoredLastYear(t *testing.T) {
	// GIVEN: a quarterly rule anchored on 2023-11-15 (Nov, Feb, May, Aug, Nov)
	r := rule("1", "2023-11-15", "", 3, generic.PeriodMonth)

	// THEN: 2024 holds Feb 15, May 15, Aug 15 and Nov 15
	assert.Equal(t, 4, count(t, r, "2024-01-01", "2024-12-31"))
}

func TestCountOccurrencesBetween_EndDateInsideCorrection(t *testing.T) {
	// GIVEN: a daily rule that stopped before the window
	r := rule("1", "2024-01-01", "2024-01-10", 1, generic.PeriodDay)

	// THEN: it is disjoint from the window
	assert.Equal(t, 0, count(t, r, "2024-01-11", "2024-01-31"))
	// AND: a window overlapping its tail counts just the tail
	assert.Equal(t, 3, count(t, r, "2024-01-08", "2024-01-31"))
}

// =============================================================================
// ERRORS AND DISJOINTNESS
// =============================================================================

func TestCountOccurrencesBetween_InvertedWindow(t *testing.T) {
	r := rule("1", "", "", 1, generic.PeriodDay)

	_, err := r.CountOccurrencesBetween(date("2024-02-01"), date("2024-01-01"))

	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvalidRange)
	var rangeErr *generic.RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, date("2024-02-01"), rangeErr.Begin)
}

func TestCountOccurrencesBetween_Disjoint(t *testing.T) {
	periods := []generic.RecurrencePeriod{"", generic.PeriodDay, generic.PeriodWeek, generic.PeriodMonth, generic.PeriodYear}
	for _, p := range periods {
		t.Run(string(p), func(t *testing.T) {
			ended := rule("1", "2023-01-01", "2023-12-31", 1, p)
			notYet := rule("1", "2025-01-01", "", 1, p)

			assert.Equal(t, 0, count(t, ended, "2024-01-01", "2024-12-31"))
			assert.Equal(t, 0, count(t, notYet, "2024-01-01", "2024-12-31"))
		})
	}
}

func TestCountOccurrencesBetween_InvertedRuleNeverNegative(t *testing.T) {
	for _, p := range []generic.RecurrencePeriod{generic.PeriodDay, generic.PeriodWeek, generic.PeriodMonth, generic.PeriodYear} {
		t.Run(string(p), func(t *testing.T) {
			// GIVEN: a rule whose end precedes its start
			r := rule("1", "2024-03-01", "2024-02-01", 1, p)

			// THEN: the count collapses to the anchor instead of going negative
			assert.Equal(t, 1, count(t, r, "2024-01-01", "2024-12-31"))
		})
	}
}

// =============================================================================
// PROPERTIES
// =============================================================================

func propertyRules() []budget.CategoryRule {
	var rules []budget.CategoryRule
	starts := []string{"", "2023-01-31", "2024-02-29", "2024-07-15"}
	ends := []string{"", "2024-03-31", "2025-06-30"}
	for _, p := range []generic.RecurrencePeriod{"", generic.PeriodDay, generic.PeriodWeek, generic.PeriodMonth, generic.PeriodYear} {
		for _, n := range []int{1, 2, 5} {
			for _, s := range starts {
				for _, e := range ends {
					if s != "" && e != "" && date(e).Before(date(s)) {
						continue
					}
					rules = append(rules, rule("1", s, e, n, p))
				}
			}
		}
	}
	return rules
}

func TestCountOccurrencesBetween_NonNegativeAndMonotonic(t *testing.T) {
	begins := []generic.CalendarDate{date("2022-12-01"), date("2024-01-01"), date("2024-03-01"), date("2024-08-20")}
	for _, r := range propertyRules() {
		for _, begin := range begins {
			prev := -1
			for k := 0; k <= 800; k += 17 {
				n, err := r.CountOccurrencesBetween(begin, begin.AddDays(k))
				require.NoError(t, err, "rule %s from %s", r, begin)
				require.GreaterOrEqual(t, n, 0, "rule %s from %s +%d", r, begin, k)
				require.GreaterOrEqual(t, n, prev, "rule %s from %s +%d shrank", r, begin, k)
				prev = n
			}
		}
	}
}

func TestCountOccurrencesBetween_OnceIsAlwaysOne(t *testing.T) {
	r := rule("1", "", "", 1, "")
	for k := 0; k < 1000; k += 37 {
		begin := date("2020-01-01").AddDays(k)
		assert.Equal(t, 1, count(t, r, begin.String(), begin.AddDays(k).String()))
	}
}

func TestCountOccurrencesBetween_DailyStride(t *testing.T) {
	start := date("2024-01-01")
	for _, n := range []int{1, 2, 3, 7, 30} {
		r := rule("1", start.String(), "", n, generic.PeriodDay)
		for k := 0; k < 40; k++ {
			got, err := r.CountOccurrencesBetween(start, start.AddDays(k*n))
			require.NoError(t, err)
			assert.Equal(t, k+1, got, "repeat_n=%d k=%d", n, k)
		}
	}
}

func TestCountOccurrencesBetween_MatchesDayByDayWalk(t *testing.T) {
	// GIVEN: day and week rules whose occurrences are easy to enumerate
	anchor := date("2024-01-03")
	for _, tc := range []struct {
		period generic.RecurrencePeriod
		days   int
	}{{generic.PeriodDay, 1}, {generic.PeriodWeek, 7}} {
		for _, n := range []int{1, 3} {
			r := rule("1", anchor.String(), "", n, tc.period)
			step := tc.days * n

			// WHEN: counting windows that start after the anchor
			for offset := 0; offset < 60; offset += 5 {
				begin := anchor.AddDays(offset)
				end := begin.AddDays(45)

				want := 0
				for d := anchor; !d.After(end); d = d.AddDays(step) {
					if !d.Before(begin) {
						want++
					}
				}

				// THEN: the closed form agrees with the walk
				assert.Equal(t, want, count(t, r, begin.String(), end.String()),
					"%s every %d, window %s..%s", tc.period, n, begin, end)
			}
		}
	}
}

func TestProjectedAmount(t *testing.T) {
	r := rule("950.50", "2024-01-01", "", 1, generic.PeriodMonth)

	got, err := r.ProjectedAmount(date("2024-01-01"), date("2024-06-30"))

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5703").Equal(got), "got %s", got)
}

func TestOccurrencesIn(t *testing.T) {
	r := rule("1", "", "", 1, generic.PeriodWeek)
	window := generic.DateRange{Start: generic.NewDate(2024, time.January, 1), End: generic.NewDate(2024, time.December, 29)}

	n, err := r.OccurrencesIn(window)

	require.NoError(t, err)
	assert.Equal(t, 52, n)
}
