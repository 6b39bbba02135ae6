/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Category and rule
  bodies reuse the factory JSON schema so the API, the CLI and budget files
  share one format.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Budget:
    BudgetDTO, BudgetDetailDTO (request body: factory.BudgetJSON)

  Category:
    factory.CategoryJSON in both directions

  Validation:
    ValidationDTO

  Occurrences:
    OccurrencesDTO, RuleOccurrencesDTO, CountRequest, CountDTO

  Scenarios:
    ScenarioDTO

VALIDATION:
  Validation is done by the factory and budget packages, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/category.go: CategoryJSON, RuleJSON
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/budget-rules/budget"
	"github.com/warp/budget-rules/factory"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// BudgetDTO represents a budget in API responses.
type BudgetDTO struct {
	ID           generic.BudgetID       `json:"id"`
	Name         string                 `json:"name"`
	StartDate    generic.CalendarDate   `json:"start_date"`
	EndDate      generic.CalendarDate   `json:"end_date"`
	CurrencyCode string                 `json:"currency_code"`
	Groups       []budget.CategoryGroup `json:"groups"`
}

// BudgetDetailDTO is a budget with its categories.
type BudgetDetailDTO struct {
	BudgetDTO
	Categories []factory.CategoryJSON `json:"categories"`
}

// ValidationDTO is the business-rule report of a budget.
type ValidationDTO struct {
	Valid  bool                     `json:"valid"`
	Errors []budget.ValidationError `json:"errors"`
}

// RuleOccurrencesDTO is one rule's share of a category projection.
type RuleOccurrencesDTO struct {
	Index       int             `json:"index"`
	Rule        string          `json:"rule"`
	Occurrences int             `json:"occurrences"`
	Amount      decimal.Decimal `json:"amount"`
}

// OccurrencesDTO projects a category over a date range.
// Total is omitted for automatic categories.
type OccurrencesDTO struct {
	CategoryID   generic.CategoryID   `json:"category_id"`
	From         generic.CalendarDate `json:"from"`
	To           generic.CalendarDate `json:"to"`
	Automatic    bool                 `json:"automatic"`
	Rules        []RuleOccurrencesDTO `json:"rules"`
	Total        *decimal.Decimal     `json:"total,omitempty"`
	CurrencyCode string               `json:"currency_code"`
}

// CountRequest asks how often a rule fires, without storing anything.
type CountRequest struct {
	Rule map[string]any        `json:"rule"`
	From *generic.CalendarDate `json:"from"`
	To   *generic.CalendarDate `json:"to"`
}

// CountDTO answers a CountRequest.
type CountDTO struct {
	Rule        string          `json:"rule"`
	Occurrences int             `json:"occurrences"`
	Amount      decimal.Decimal `json:"amount"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toBudgetDTO(b budget.Budget) BudgetDTO {
	return BudgetDTO{
		ID:           b.ID,
		Name:         b.Name,
		StartDate:    b.Start,
		EndDate:      b.End,
		CurrencyCode: b.CurrencyCode,
		Groups:       b.SortedGroups(),
	}
}

func toBudgetDetailDTO(b budget.Budget, categories []budget.Category) BudgetDetailDTO {
	out := BudgetDetailDTO{BudgetDTO: toBudgetDTO(b), Categories: make([]factory.CategoryJSON, 0, len(categories))}
	for _, c := range categories {
		out.Categories = append(out.Categories, factory.CategoryToJSON(c))
	}
	return out
}

func toValidationDTO(report budget.Report) ValidationDTO {
	errs := report.Errors()
	if errs == nil {
		errs = []budget.ValidationError{}
	}
	return ValidationDTO{Valid: report.OK(), Errors: errs}
}
