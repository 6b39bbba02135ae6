// Package memory provides an in-memory budget.Store.
// Data lives as long as the process; nothing is written to disk.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/budget-rules/budget"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	budgets    map[generic.BudgetID]budget.Budget
	categories map[generic.CategoryID]entry

	nextBudget   generic.BudgetID
	nextGroup    generic.GroupID
	nextCategory generic.CategoryID
}

type entry struct {
	budgetID generic.BudgetID
	category budget.Category
}

func NewMemory() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

// Compile-time check that Memory implements budget.Store
var _ budget.Store = (*Memory)(nil)

func (m *Memory) resetLocked() {
	m.budgets = make(map[generic.BudgetID]budget.Budget)
	m.categories = make(map[generic.CategoryID]entry)
	m.nextBudget, m.nextGroup, m.nextCategory = 0, 0, 0
}

// Reset drops every budget, group and category and restarts ID assignment.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// BUDGETS
// =============================================================================

func (m *Memory) CreateBudget(_ context.Context, b budget.Budget) (budget.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !b.ID.IsSet() {
		m.nextBudget++
		b.ID = m.nextBudget
	} else if b.ID > m.nextBudget {
		m.nextBudget = b.ID
	}
	if _, exists := m.budgets[b.ID]; exists {
		return budget.Budget{}, fmt.Errorf("budget %d: %w", b.ID, generic.ErrAlreadyExists)
	}

	groups := make(map[generic.GroupID]budget.CategoryGroup, len(b.Groups))
	for _, g := range b.SortedGroups() {
		g = m.assignGroupIDLocked(g)
		groups[g.ID] = g
	}
	b.Groups = groups
	m.budgets[b.ID] = b
	return b, nil
}

func (m *Memory) GetBudget(_ context.Context, id generic.BudgetID) (budget.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.budgets[id]
	if !ok {
		return budget.Budget{}, fmt.Errorf("budget %d: %w", id, generic.ErrBudgetNotFound)
	}
	return b, nil
}

func (m *Memory) ListBudgets(_ context.Context) ([]budget.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]budget.Budget, 0, len(m.budgets))
	for _, b := range m.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteBudget(_ context.Context, id generic.BudgetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.budgets[id]; !ok {
		return fmt.Errorf("budget %d: %w", id, generic.ErrBudgetNotFound)
	}
	delete(m.budgets, id)
	for cid, e := range m.categories {
		if e.budgetID == id {
			delete(m.categories, cid)
		}
	}
	return nil
}

// =============================================================================
// GROUPS
// =============================================================================

func (m *Memory) CreateGroup(_ context.Context, budgetID generic.BudgetID, g budget.CategoryGroup) (budget.CategoryGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.budgets[budgetID]
	if !ok {
		return budget.CategoryGroup{}, fmt.Errorf("budget %d: %w", budgetID, generic.ErrBudgetNotFound)
	}
	g = m.assignGroupIDLocked(g)
	if b.HasGroup(g.ID) {
		return budget.CategoryGroup{}, fmt.Errorf("group %d in budget %d: %w", g.ID, budgetID, generic.ErrAlreadyExists)
	}
	m.budgets[budgetID] = b.WithGroup(g)
	return g, nil
}

// Auto-assigned group IDs are unique across budgets.
func (m *Memory) assignGroupIDLocked(g budget.CategoryGroup) budget.CategoryGroup {
	if !g.ID.IsSet() {
		m.nextGroup++
		g.ID = m.nextGroup
	} else if g.ID > m.nextGroup {
		m.nextGroup = g.ID
	}
	return g
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (m *Memory) CreateCategory(_ context.Context, budgetID generic.BudgetID, c budget.Category) (budget.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budgetID]; !ok {
		return budget.Category{}, fmt.Errorf("budget %d: %w", budgetID, generic.ErrBudgetNotFound)
	}

	id := c.ID()
	if !id.IsSet() {
		m.nextCategory++
		id = m.nextCategory
	} else if id > m.nextCategory {
		m.nextCategory = id
	}
	if _, exists := m.categories[id]; exists {
		return budget.Category{}, fmt.Errorf("category %d: %w", id, generic.ErrAlreadyExists)
	}

	stored, err := c.With(func(v *budget.CategoryValues) { v.ID = id })
	if err != nil {
		return budget.Category{}, err
	}
	m.categories[id] = entry{budgetID: budgetID, category: stored}
	return stored, nil
}

func (m *Memory) GetCategory(_ context.Context, id generic.CategoryID) (budget.Category, generic.BudgetID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.categories[id]
	if !ok {
		return budget.Category{}, 0, fmt.Errorf("category %d: %w", id, generic.ErrCategoryNotFound)
	}
	return e.category, e.budgetID, nil
}

func (m *Memory) UpdateCategory(_ context.Context, c budget.Category) (budget.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.categories[c.ID()]
	if !ok {
		return budget.Category{}, fmt.Errorf("category %d: %w", c.ID(), generic.ErrCategoryNotFound)
	}
	e.category = c
	m.categories[c.ID()] = e
	return c, nil
}

func (m *Memory) DeleteCategory(_ context.Context, id generic.CategoryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, generic.ErrCategoryNotFound)
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) ListCategories(_ context.Context, budgetID generic.BudgetID) ([]budget.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.budgets[budgetID]; !ok {
		return nil, fmt.Errorf("budget %d: %w", budgetID, generic.ErrBudgetNotFound)
	}
	var out []budget.Category
	for _, e := range m.categories {
		if e.budgetID == budgetID {
			out = append(out, e.category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}
