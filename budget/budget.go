// Package budget implements budget categories driven by recurring spending rules.
// It builds on the generic calendar and currency types: a CategoryRule counts
// its occurrences in a date range, FindOverlaps uses that count to detect
// rules of one category firing together, and a Budget is the context
// categories are validated against.
package budget

import (
	"sort"
	"strings"

	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// BUDGET - Validation context for categories
// =============================================================================

// Budget owns a planning window and the groups its categories may reference.
type Budget struct {
	ID           generic.BudgetID
	Name         string
	Start        generic.CalendarDate
	End          generic.CalendarDate
	CurrencyCode string
	Groups       map[generic.GroupID]CategoryGroup
}

// NewBudget validates the window and the default currency. Group IDs must be
// distinct; at most one group may be unsaved (ID 0).
func NewBudget(id generic.BudgetID, name string, start, end generic.CalendarDate, currencyCode string, groups ...CategoryGroup) (Budget, error) {
	if id < 0 {
		return Budget{}, generic.NewInvariantError("id", "must be positive, got %d", id)
	}
	if end.Before(start) {
		return Budget{}, &generic.InvariantError{Field: "end_date", Reason: "before start_date", Err: &generic.RangeError{Begin: start, End: end}}
	}
	currency, err := generic.LookupCurrency(currencyCode)
	if err != nil {
		return Budget{}, &generic.InvariantError{Field: "currency_code", Reason: "does not resolve", Err: err}
	}
	b := Budget{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Start:        start,
		End:          end,
		CurrencyCode: currency.Code,
		Groups:       make(map[generic.GroupID]CategoryGroup, len(groups)),
	}
	for i, g := range groups {
		if prev, dup := b.Groups[g.ID]; dup {
			if !g.ID.IsSet() {
				return Budget{}, generic.NewInvariantError("groups", "groups[%d] %q and %q both lack an id", i, prev.Name, g.Name)
			}
			return Budget{}, generic.NewInvariantError("groups", "groups[%d] %q reuses id %d of %q", i, g.Name, g.ID, prev.Name)
		}
		b.Groups[g.ID] = g
	}
	return b, nil
}

func (b Budget) HasGroup(id generic.GroupID) bool {
	_, ok := b.Groups[id]
	return ok
}

func (b Budget) Window() generic.DateRange {
	return generic.DateRange{Start: b.Start, End: b.End}
}

// WithGroup returns a copy of the budget that also holds g.
func (b Budget) WithGroup(g CategoryGroup) Budget {
	groups := make(map[generic.GroupID]CategoryGroup, len(b.Groups)+1)
	for id, existing := range b.Groups {
		groups[id] = existing
	}
	groups[g.ID] = g
	b.Groups = groups
	return b
}

// SortedGroups returns the groups ordered by ID.
func (b Budget) SortedGroups() []CategoryGroup {
	out := make([]CategoryGroup, 0, len(b.Groups))
	for _, g := range b.Groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Compile-time check that Budget is a validation context
var _ ValidationContext = Budget{}
