/*
validate.go - Business-rule validation against an enclosing budget

PURPOSE:
  Structural invariants are enforced when values are constructed and abort
  immediately. Cross-entity rules need the enclosing budget and are checked
  on demand: they never fail fast, they collect every problem into a Report
  so a caller can show all of them at once.

CHECKS:
  Category.Validate:
    - group_id references a group of the budget
    - no rule ends before it starts
    - no two rules produce simultaneous occurrences (see overlap.go)
    - currency_code still resolves
  ValidateBudget:
    - every category, fields prefixed with categories[<id>]
    - category names are unique within a group

SEE ALSO:
  - overlap.go: FindOverlaps
  - budget.go: Budget, the usual ValidationContext
*/
package budget

import (
	"fmt"
	"strings"

	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// VALIDATION CONTEXT
// =============================================================================

// ValidationContext is what category validation needs from its budget.
type ValidationContext interface {
	HasGroup(id generic.GroupID) bool
	// Window is the fallback for rules with open start or end dates.
	Window() generic.DateRange
}

// =============================================================================
// REPORT - Accumulated, non-fatal validation errors
// =============================================================================

// ValidationError is one business-rule failure tagged with the field it concerns.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string { return e.Field + ": " + e.Message }

// Report collects validation errors. The zero value is ready to use.
type Report struct {
	errors []ValidationError
}

func (r *Report) AddError(field, message string) {
	r.errors = append(r.errors, ValidationError{Field: field, Message: message})
}

func (r *Report) AddErrorf(field, format string, args ...any) {
	r.AddError(field, fmt.Sprintf(format, args...))
}

// Merge appends other's errors with every field prefixed.
func (r *Report) Merge(prefix string, other Report) {
	for _, e := range other.errors {
		field := e.Field
		if prefix != "" {
			field = prefix + "." + field
		}
		r.AddError(field, e.Message)
	}
}

func (r Report) OK() bool { return len(r.errors) == 0 }

func (r Report) Errors() []ValidationError {
	return append([]ValidationError{}, r.errors...)
}

// ErrorsFor returns the errors recorded against one field.
func (r Report) ErrorsFor(field string) []ValidationError {
	var out []ValidationError
	for _, e := range r.errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// Error joins every message; empty when OK.
func (r Report) Error() string {
	parts := make([]string, len(r.errors))
	for i, e := range r.errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// =============================================================================
// CATEGORY VALIDATION
// =============================================================================

// Validate checks the category against its budget and records every failure
// in report. Counting errors (which mean a defect, not bad input) are
// recorded too rather than aborting the remaining checks.
func (c Category) Validate(ctx ValidationContext, report *Report) {
	if c.groupID.IsSet() && !ctx.HasGroup(c.groupID) {
		report.AddErrorf("group_id", "group %d does not exist in this budget", c.groupID)
	}

	if _, err := generic.LookupCurrency(c.currency.Code); err != nil {
		report.AddErrorf("currency_code", "currency %q is not known", c.currency.Code)
	}

	if c.IsAutomatic() {
		return
	}

	rules := c.rules.rules
	for i, rule := range rules {
		if rule.HasInvertedBounds() {
			start, _ := rule.StartDate()
			end, _ := rule.EndDate()
			report.AddErrorf("rules", "rule %d ends (%s) before it starts (%s)", i, end, start)
		}
	}

	overlaps, err := FindOverlaps(rules, ctx.Window())
	if err != nil {
		report.AddErrorf("rules", "overlap check failed: %v", err)
		return
	}
	for _, o := range overlaps {
		report.AddError("rules", o.String())
	}
}

// ValidateBudget validates every category of a budget. Field names are
// prefixed with categories[<id>], or categories[#<index>] for unsaved ones.
func ValidateBudget(b Budget, categories []Category) Report {
	var report Report

	type groupName struct {
		group generic.GroupID
		name  string
	}
	firstByName := make(map[groupName]string)

	for i, c := range categories {
		prefix := categoryPrefix(c, i)

		var sub Report
		c.Validate(b, &sub)
		report.Merge(prefix, sub)

		key := groupName{group: c.groupID, name: strings.ToLower(c.name)}
		if first, dup := firstByName[key]; dup {
			report.AddErrorf(prefix+".name", "duplicate category name %q (also %s)", c.name, first)
		} else {
			firstByName[key] = prefix
		}
	}
	return report
}

func categoryPrefix(c Category, index int) string {
	if c.id.IsSet() {
		return fmt.Sprintf("categories[%d]", c.id)
	}
	return fmt.Sprintf("categories[#%d]", index)
}
