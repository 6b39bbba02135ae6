package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// RULE SET - Automatic | RuleDriven(rules)
// =============================================================================

// RuleSet says where a category's amount comes from. An automatic category
// derives its amount from transactions elsewhere; a rule-driven category
// sums its rules (possibly none). The zero value is Automatic.
type RuleSet struct {
	driven bool
	rules  []CategoryRule
}

func Automatic() RuleSet { return RuleSet{} }

// RuleDriven keeps the rules in the given order.
func RuleDriven(rules ...CategoryRule) RuleSet {
	return RuleSet{driven: true, rules: append([]CategoryRule{}, rules...)}
}

func (s RuleSet) IsAutomatic() bool { return !s.driven }
func (s RuleSet) Len() int          { return len(s.rules) }

// Rules returns a copy of the rules; nil for an automatic set.
func (s RuleSet) Rules() []CategoryRule {
	if !s.driven {
		return nil
	}
	return append([]CategoryRule{}, s.rules...)
}

// Equal compares kind and rules position by position.
func (s RuleSet) Equal(other RuleSet) bool {
	if s.driven != other.driven || len(s.rules) != len(other.rules) {
		return false
	}
	for i := range s.rules {
		if !s.rules[i].Equal(other.rules[i]) {
			return false
		}
	}
	return true
}

// =============================================================================
// CATEGORY
// =============================================================================

// CategoryValues is the mutable description a Category is built from.
type CategoryValues struct {
	ID           generic.CategoryID
	Name         string
	Rules        RuleSet
	Notes        string
	CurrencyCode string
	GroupID      generic.GroupID
	Metadata     generic.Metadata
}

// Category is a named, currency-tagged container of rules.
type Category struct {
	id       generic.CategoryID
	name     string
	rules    RuleSet
	notes    string
	currency generic.Currency
	groupID  generic.GroupID
	metadata generic.Metadata
}

// NewCategory checks structural invariants and returns the category.
// The currency code must be registered; metadata is deep-copied.
func NewCategory(v CategoryValues) (Category, error) {
	if v.ID < 0 {
		return Category{}, generic.NewInvariantError("id", "must be positive, got %d", v.ID)
	}
	if v.GroupID < 0 {
		return Category{}, generic.NewInvariantError("group_id", "must be positive, got %d", v.GroupID)
	}
	currency, err := generic.LookupCurrency(v.CurrencyCode)
	if err != nil {
		return Category{}, &generic.InvariantError{Field: "currency_code", Reason: "does not resolve", Err: err}
	}
	if err := v.Metadata.Validate(); err != nil {
		return Category{}, err
	}
	metadata, err := v.Metadata.Clone()
	if err != nil {
		return Category{}, err
	}
	return Category{
		id:       v.ID,
		name:     strings.TrimSpace(v.Name),
		rules:    v.Rules,
		notes:    v.Notes,
		currency: currency,
		groupID:  v.GroupID,
		metadata: metadata,
	}, nil
}

// MustNewCategory panics on invalid values. Use in tests and fixtures.
func MustNewCategory(v CategoryValues) Category {
	c, err := NewCategory(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Accessors
func (c Category) ID() generic.CategoryID     { return c.id }
func (c Category) Name() string               { return c.name }
func (c Category) RuleSet() RuleSet           { return c.rules }
func (c Category) Rules() []CategoryRule      { return c.rules.Rules() }
func (c Category) Notes() string              { return c.notes }
func (c Category) Currency() generic.Currency { return c.currency }
func (c Category) CurrencyCode() string       { return c.currency.Code }
func (c Category) GroupID() generic.GroupID   { return c.groupID }
func (c Category) IsAutomatic() bool          { return c.rules.IsAutomatic() }

// Metadata returns a copy; the category's own map is never handed out.
func (c Category) Metadata() generic.Metadata {
	m, _ := c.metadata.Clone()
	return m
}

// Values returns a detached copy of the category's fields.
func (c Category) Values() CategoryValues {
	return CategoryValues{
		ID:           c.id,
		Name:         c.name,
		Rules:        c.rules,
		Notes:        c.notes,
		CurrencyCode: c.currency.Code,
		GroupID:      c.groupID,
		Metadata:     c.Metadata(),
	}
}

// With returns a new category with edit applied to a copy of the fields.
func (c Category) With(edit func(*CategoryValues)) (Category, error) {
	v := c.Values()
	edit(&v)
	return NewCategory(v)
}

// ProjectedAmount sums every rule's amount times its occurrences in [begin, end].
func (c Category) ProjectedAmount(begin, end generic.CalendarDate) (generic.Amount, error) {
	if c.IsAutomatic() {
		return generic.Amount{}, fmt.Errorf("project %q: %w", c.name, generic.ErrAutomaticCategory)
	}
	total := generic.NewAmount(decimal.Zero, c.currency.Code)
	for i, rule := range c.rules.rules {
		amount, err := rule.ProjectedAmount(begin, end)
		if err != nil {
			return generic.Amount{}, fmt.Errorf("project %q rule %d: %w", c.name, i, err)
		}
		total = total.Add(generic.NewAmount(amount, c.currency.Code))
	}
	return total, nil
}
