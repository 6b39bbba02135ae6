/*
Package factory converts loosely typed input into budget values and back.

PURPOSE:
  The budget package only ever handles typed, validated values. Everything
  that arrives from outside (HTTP bodies, JSON files, hand-built maps in
  scripts) goes through this package first. This is the "cleaning" step:
  raw numbers become CalendarDates, plain maps become Metadata, raw rule
  descriptors become CategoryRules.

ACCEPTED SHAPES:
  Rules:      budget.CategoryRule, budget.RuleValues, RuleJSON, map[string]any
  Categories: budget.Category, CategoryJSON, map[string]any
  Dates:      "YYYY-MM-DD" strings or integer day-numbers (days since 1970-01-01)

JSON SCHEMA:
  {
    "id": 12,
    "name": "Rent",
    "currency_code": "EUR",
    "group_id": 3,
    "notes": "",
    "metadata": {"color": "blue"},
    "rules": [
      {"amount": "950.00", "start_date": "2024-01-01", "period": "month", "repeat_n": 1}
    ]
  }

  "rules": null (or absent) makes the category automatic.

IDEMPOTENCE:
  Cleaning a value that is already clean returns an equal value:
  CleanCategory(CleanCategory(x)) == CleanCategory(x).

SEE ALSO:
  - budget/rule.go: CategoryRule invariants
  - budget/category.go: Category invariants
  - coerce.go: Per-field coercion
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/budget-rules/budget"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of a rule.
type RuleJSON struct {
	Amount    decimal.Decimal       `json:"amount"`
	StartDate *generic.CalendarDate `json:"start_date,omitempty"`
	EndDate   *generic.CalendarDate `json:"end_date,omitempty"`
	RepeatN   *int                  `json:"repeat_n,omitempty"`
	Period    *string               `json:"period,omitempty"`
}

// CategoryJSON is the JSON representation of a category. A nil Rules field
// means the category is automatic.
type CategoryJSON struct {
	ID           int64          `json:"id,omitempty"`
	Name         string         `json:"name"`
	Rules        *[]RuleJSON    `json:"rules"`
	Notes        string         `json:"notes,omitempty"`
	CurrencyCode string         `json:"currency_code"`
	GroupID      int64          `json:"group_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// rawRule and rawCategory receive map input before coercion.
type rawRule struct {
	Amount    any `json:"amount"`
	StartDate any `json:"start_date"`
	EndDate   any `json:"end_date"`
	RepeatN   any `json:"repeat_n"`
	Period    any `json:"period"`
}

type rawCategory struct {
	ID           any    `json:"id"`
	Name         string `json:"name"`
	Rules        any    `json:"rules"`
	Notes        string `json:"notes"`
	CurrencyCode string `json:"currency_code"`
	GroupID      any    `json:"group_id"`
	Metadata     any    `json:"metadata"`
}

// =============================================================================
// RULES
// =============================================================================

// CleanRule turns any accepted rule descriptor into a validated CategoryRule.
func CleanRule(raw any) (budget.CategoryRule, error) {
	switch v := raw.(type) {
	case budget.CategoryRule:
		return budget.NewCategoryRule(v.Values())
	case *budget.CategoryRule:
		if v == nil {
			return budget.CategoryRule{}, generic.NewInvariantError("rule", "is nil")
		}
		return budget.NewCategoryRule(v.Values())
	case budget.RuleValues:
		return budget.NewCategoryRule(v)
	case RuleJSON:
		return ruleFromJSON(v)
	case *RuleJSON:
		if v == nil {
			return budget.CategoryRule{}, generic.NewInvariantError("rule", "is nil")
		}
		return ruleFromJSON(*v)
	case map[string]any:
		return ruleFromMap(v)
	default:
		return budget.CategoryRule{}, generic.NewInvariantError("rule", "unsupported descriptor %T", raw)
	}
}

func ruleFromJSON(rj RuleJSON) (budget.CategoryRule, error) {
	var repeatN int
	if rj.RepeatN != nil {
		repeatN = *rj.RepeatN
		if repeatN <= 0 {
			return budget.CategoryRule{}, generic.NewInvariantError("repeat_n", "must be a positive integer, got %d", repeatN)
		}
	}
	var period any
	if rj.Period != nil {
		period = *rj.Period
	}
	p, err := coercePeriod("period", period)
	if err != nil {
		return budget.CategoryRule{}, err
	}
	return budget.NewCategoryRule(budget.RuleValues{
		Amount:    rj.Amount,
		StartDate: rj.StartDate,
		EndDate:   rj.EndDate,
		RepeatN:   repeatN,
		Period:    p,
	})
}

func ruleFromMap(m map[string]any) (budget.CategoryRule, error) {
	var rr rawRule
	if err := decodeMap("rule", m, &rr); err != nil {
		return budget.CategoryRule{}, err
	}

	amount, err := coerceDecimal("amount", rr.Amount)
	if err != nil {
		return budget.CategoryRule{}, err
	}
	start, err := coerceDate("start_date", rr.StartDate)
	if err != nil {
		return budget.CategoryRule{}, err
	}
	end, err := coerceDate("end_date", rr.EndDate)
	if err != nil {
		return budget.CategoryRule{}, err
	}
	var repeatN int64
	if rr.RepeatN != nil {
		if repeatN, err = coerceInt("repeat_n", rr.RepeatN); err != nil {
			return budget.CategoryRule{}, err
		}
		// Only an absent key defaults to 1.
		if repeatN <= 0 {
			return budget.CategoryRule{}, generic.NewInvariantError("repeat_n", "must be a positive integer, got %d", repeatN)
		}
	}
	period, err := coercePeriod("period", rr.Period)
	if err != nil {
		return budget.CategoryRule{}, err
	}

	return budget.NewCategoryRule(budget.RuleValues{
		Amount:    amount,
		StartDate: start,
		EndDate:   end,
		RepeatN:   int(repeatN),
		Period:    period,
	})
}

// ParseRule decodes a JSON rule.
func ParseRule(data []byte) (budget.CategoryRule, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return budget.CategoryRule{}, &generic.InvariantError{Field: "rule", Reason: "malformed JSON", Err: err}
	}
	return CleanRule(raw)
}

// RuleToJSON converts a rule to its JSON form.
func RuleToJSON(r budget.CategoryRule) RuleJSON {
	v := r.Values()
	repeatN := v.RepeatN
	rj := RuleJSON{
		Amount:    v.Amount,
		StartDate: v.StartDate,
		EndDate:   v.EndDate,
		RepeatN:   &repeatN,
	}
	if v.Period != nil {
		s := string(*v.Period)
		rj.Period = &s
	}
	return rj
}

// =============================================================================
// CATEGORIES
// =============================================================================

// CleanCategory turns any accepted category descriptor into a validated Category.
func CleanCategory(raw any) (budget.Category, error) {
	switch v := raw.(type) {
	case budget.Category:
		return budget.NewCategory(v.Values())
	case *budget.Category:
		if v == nil {
			return budget.Category{}, generic.NewInvariantError("category", "is nil")
		}
		return budget.NewCategory(v.Values())
	case CategoryJSON:
		return categoryFromJSON(v)
	case *CategoryJSON:
		if v == nil {
			return budget.Category{}, generic.NewInvariantError("category", "is nil")
		}
		return categoryFromJSON(*v)
	case map[string]any:
		return categoryFromMap(v)
	default:
		return budget.Category{}, generic.NewInvariantError("category", "unsupported descriptor %T", raw)
	}
}

func categoryFromJSON(cj CategoryJSON) (budget.Category, error) {
	rules := budget.Automatic()
	if cj.Rules != nil {
		cleaned := make([]budget.CategoryRule, 0, len(*cj.Rules))
		for i, rj := range *cj.Rules {
			r, err := ruleFromJSON(rj)
			if err != nil {
				return budget.Category{}, fmt.Errorf("rules[%d]: %w", i, err)
			}
			cleaned = append(cleaned, r)
		}
		rules = budget.RuleDriven(cleaned...)
	}
	return budget.NewCategory(budget.CategoryValues{
		ID:           generic.CategoryID(cj.ID),
		Name:         cj.Name,
		Rules:        rules,
		Notes:        cj.Notes,
		CurrencyCode: cj.CurrencyCode,
		GroupID:      generic.GroupID(cj.GroupID),
		Metadata:     generic.Metadata(cj.Metadata),
	})
}

func categoryFromMap(m map[string]any) (budget.Category, error) {
	var rc rawCategory
	if err := decodeMap("category", m, &rc); err != nil {
		return budget.Category{}, err
	}

	var id, groupID int64
	var err error
	if rc.ID != nil {
		if id, err = coerceInt("id", rc.ID); err != nil {
			return budget.Category{}, err
		}
	}
	if rc.GroupID != nil {
		if groupID, err = coerceInt("group_id", rc.GroupID); err != nil {
			return budget.Category{}, err
		}
	}
	rules, err := cleanRuleSet(rc.Rules)
	if err != nil {
		return budget.Category{}, err
	}
	metadata, err := coerceMetadata(rc.Metadata)
	if err != nil {
		return budget.Category{}, err
	}

	return budget.NewCategory(budget.CategoryValues{
		ID:           generic.CategoryID(id),
		Name:         rc.Name,
		Rules:        rules,
		Notes:        rc.Notes,
		CurrencyCode: rc.CurrencyCode,
		GroupID:      generic.GroupID(groupID),
		Metadata:     metadata,
	})
}

// cleanRuleSet maps nil to Automatic and any list of descriptors to RuleDriven.
func cleanRuleSet(raw any) (budget.RuleSet, error) {
	var items []any
	switch v := raw.(type) {
	case nil:
		return budget.Automatic(), nil
	case budget.RuleSet:
		return budget.RuleDriven(v.Rules()...), nil
	case []budget.CategoryRule:
		for _, r := range v {
			items = append(items, r)
		}
	case []map[string]any:
		for _, r := range v {
			items = append(items, r)
		}
	case []any:
		items = v
	default:
		return budget.RuleSet{}, generic.NewInvariantError("rules", "must be null or a list, got %T", raw)
	}

	rules := make([]budget.CategoryRule, 0, len(items))
	for i, item := range items {
		r, err := CleanRule(item)
		if err != nil {
			return budget.RuleSet{}, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, r)
	}
	return budget.RuleDriven(rules...), nil
}

// ParseCategory decodes a JSON category.
func ParseCategory(data []byte) (budget.Category, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return budget.Category{}, &generic.InvariantError{Field: "category", Reason: "malformed JSON", Err: err}
	}
	return CleanCategory(raw)
}

// CategoryToJSON converts a category to its JSON form.
func CategoryToJSON(c budget.Category) CategoryJSON {
	cj := CategoryJSON{
		ID:           int64(c.ID()),
		Name:         c.Name(),
		Notes:        c.Notes(),
		CurrencyCode: c.CurrencyCode(),
		GroupID:      int64(c.GroupID()),
		Metadata:     c.Metadata(),
	}
	if !c.IsAutomatic() {
		rules := make([]RuleJSON, 0, c.RuleSet().Len())
		for _, r := range c.Rules() {
			rules = append(rules, RuleToJSON(r))
		}
		cj.Rules = &rules
	}
	return cj
}
