package budget

import (
	"context"

	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// STORE - Repository for budgets, groups and categories
// =============================================================================

// Store keeps budgets with their groups and categories. Values go in and come
// out immutable; an update replaces the stored value wholesale.
//
// Create* methods assign an ID when the value has none and return the stored
// value. Missing references fail with generic.ErrBudgetNotFound,
// generic.ErrGroupNotFound or generic.ErrCategoryNotFound.
type Store interface {
	CreateBudget(ctx context.Context, b Budget) (Budget, error)
	GetBudget(ctx context.Context, id generic.BudgetID) (Budget, error)
	ListBudgets(ctx context.Context) ([]Budget, error)

	// DeleteBudget removes a budget with its groups and categories.
	DeleteBudget(ctx context.Context, id generic.BudgetID) error

	// CreateGroup adds a group to a budget.
	CreateGroup(ctx context.Context, budgetID generic.BudgetID, g CategoryGroup) (CategoryGroup, error)

	CreateCategory(ctx context.Context, budgetID generic.BudgetID, c Category) (Category, error)
	GetCategory(ctx context.Context, id generic.CategoryID) (Category, generic.BudgetID, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id generic.CategoryID) error

	// ListCategories returns a budget's categories ordered by ID.
	ListCategories(ctx context.Context, budgetID generic.BudgetID) ([]Category, error)

	// Reset drops everything. Used by demo scenarios.
	Reset(ctx context.Context) error
}
