package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/budget-rules/budget"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// BUDGET DOCUMENTS
// =============================================================================

// GroupJSON is the JSON representation of a category group.
type GroupJSON struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// BudgetJSON is a whole budget document: window, groups and categories.
// It is the format of the CLI validate command and of POST /api/budgets.
type BudgetJSON struct {
	ID           int64                `json:"id,omitempty"`
	Name         string               `json:"name"`
	StartDate    generic.CalendarDate `json:"start_date"`
	EndDate      generic.CalendarDate `json:"end_date"`
	CurrencyCode string               `json:"currency_code"`
	Groups       []GroupJSON          `json:"groups,omitempty"`
	Categories   []json.RawMessage    `json:"categories,omitempty"`
}

// CleanGroup builds a group from a GroupJSON, a CategoryGroup or a raw mapping.
func CleanGroup(raw any) (budget.CategoryGroup, error) {
	switch v := raw.(type) {
	case budget.CategoryGroup:
		return budget.NewCategoryGroup(v.ID, v.Name)
	case GroupJSON:
		return budget.NewCategoryGroup(generic.GroupID(v.ID), v.Name)
	case map[string]any:
		var g struct {
			ID   any    `json:"id"`
			Name string `json:"name"`
		}
		if err := decodeMap("group", v, &g); err != nil {
			return budget.CategoryGroup{}, err
		}
		var id int64
		if g.ID != nil {
			n, err := coerceInt("id", g.ID)
			if err != nil {
				return budget.CategoryGroup{}, err
			}
			id = n
		}
		return budget.NewCategoryGroup(generic.GroupID(id), g.Name)
	default:
		return budget.CategoryGroup{}, generic.NewInvariantError("group", "unsupported descriptor %T", raw)
	}
}

// CleanBudget builds the budget and its categories. Only structural
// invariants are checked here; run budget.ValidateBudget on the result for
// the business rules.
func CleanBudget(doc BudgetJSON) (budget.Budget, []budget.Category, error) {
	groups := make([]budget.CategoryGroup, 0, len(doc.Groups))
	for i, gj := range doc.Groups {
		g, err := CleanGroup(gj)
		if err != nil {
			return budget.Budget{}, nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		groups = append(groups, g)
	}

	b, err := budget.NewBudget(generic.BudgetID(doc.ID), doc.Name, doc.StartDate, doc.EndDate, doc.CurrencyCode, groups...)
	if err != nil {
		return budget.Budget{}, nil, err
	}

	categories := make([]budget.Category, 0, len(doc.Categories))
	for i, raw := range doc.Categories {
		c, err := ParseCategory(raw)
		if err != nil {
			return budget.Budget{}, nil, fmt.Errorf("categories[%d]: %w", i, err)
		}
		categories = append(categories, c)
	}
	return b, categories, nil
}

// ParseBudget decodes a budget document and cleans it.
func ParseBudget(data []byte) (budget.Budget, []budget.Category, error) {
	var doc BudgetJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return budget.Budget{}, nil, &generic.InvariantError{Field: "budget", Reason: "malformed JSON", Err: err}
	}
	return CleanBudget(doc)
}

// BudgetToJSON converts a budget and its categories back to a document.
func BudgetToJSON(b budget.Budget, categories []budget.Category) (BudgetJSON, error) {
	doc := BudgetJSON{
		ID:           int64(b.ID),
		Name:         b.Name,
		StartDate:    b.Start,
		EndDate:      b.End,
		CurrencyCode: b.CurrencyCode,
	}
	for _, g := range b.SortedGroups() {
		doc.Groups = append(doc.Groups, GroupJSON{ID: int64(g.ID), Name: g.Name})
	}
	for _, c := range categories {
		data, err := json.Marshal(CategoryToJSON(c))
		if err != nil {
			return BudgetJSON{}, fmt.Errorf("encode category %d: %w", c.ID(), err)
		}
		doc.Categories = append(doc.Categories, data)
	}
	return doc, nil
}
