/*
handlers.go - HTTP API handlers for budgets, groups and categories

PURPOSE:
  Exposes the budget rules engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Currencies:
    GET    /api/currencies                     Registered currencies

  Budgets:
    GET    /api/budgets                        List budgets
    POST   /api/budgets                        Create budget (+ groups, categories)
    GET    /api/budgets/{id}                   Budget with its categories
    DELETE /api/budgets/{id}                   Delete budget (+ groups, categories)
    GET    /api/budgets/{id}/validation        Business-rule report

  Groups:
    GET    /api/budgets/{id}/groups            List groups
    POST   /api/budgets/{id}/groups            Add group

  Categories:
    GET    /api/budgets/{id}/categories        List categories
    POST   /api/budgets/{id}/categories        Create category
    GET    /api/categories/{id}                Get category
    PUT    /api/categories/{id}                Replace category
    DELETE /api/categories/{id}                Delete category
    GET    /api/categories/{id}/occurrences    Projection over ?from=&to=

  Occurrences:
    POST   /api/occurrences                    Count a raw rule, nothing stored

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: budget.Store (in-memory by default)
  - logger: structured request-scoped logging

REQUEST FLOW:
  1. Parse HTTP request
  2. Clean input through the factory package
  3. Call domain logic (counting, validation)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invariant violations, invalid ranges, unknown currencies
  - 404: Budget, group or category not found
  - 409: Conflict (explicit ID already taken)
  - 500: Internal errors

  Business-rule failures (overlapping rules, missing groups) are not HTTP
  errors: they are reported by the validation endpoint.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/warp/budget-rules/budget"
	"github.com/warp/budget-rules/factory"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  budget.Store
	logger *slog.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store budget.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: store, logger: logger}
}

// =============================================================================
// CURRENCY HANDLERS
// =============================================================================

// ListCurrencies returns every registered currency.
func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, generic.ListCurrencies())
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// ListBudgets returns all budgets.
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.Store.ListBudgets(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list budgets", err)
		return
	}
	dtos := make([]BudgetDTO, len(budgets))
	for i, b := range budgets {
		dtos[i] = toBudgetDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBudget stores a whole budget document.
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var doc factory.BudgetJSON
	if err := decodeBody(r, &doc); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	b, categories, err := factory.CleanBudget(doc)
	if err != nil {
		h.fail(w, r, "Invalid budget", err)
		return
	}
	stored, storedCategories, err := h.createBudget(r.Context(), b, categories)
	if err != nil {
		h.fail(w, r, "Failed to create budget", err)
		return
	}
	h.logger.Info("budget created", "budget_id", stored.ID, "categories", len(storedCategories))
	writeJSON(w, http.StatusCreated, toBudgetDetailDTO(stored, storedCategories))
}

// createBudget stores a budget and then its categories. If any category
// fails, the budget is deleted again so nothing of the document remains.
func (h *Handler) createBudget(ctx context.Context, b budget.Budget, categories []budget.Category) (budget.Budget, []budget.Category, error) {
	stored, err := h.Store.CreateBudget(ctx, b)
	if err != nil {
		return budget.Budget{}, nil, err
	}
	out := make([]budget.Category, 0, len(categories))
	for i, c := range categories {
		sc, err := h.Store.CreateCategory(ctx, stored.ID, c)
		if err != nil {
			err = fmt.Errorf("categories[%d] %q: %w", i, c.Name(), err)
			if rbErr := h.Store.DeleteBudget(ctx, stored.ID); rbErr != nil {
				h.logger.Error("rollback failed", "budget_id", stored.ID, "error", rbErr)
				return budget.Budget{}, nil, errors.Join(err, rbErr)
			}
			return budget.Budget{}, nil, err
		}
		out = append(out, sc)
	}
	return stored, out, nil
}

// DeleteBudget removes a budget with its groups and categories.
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid budget ID", err)
		return
	}
	if err := h.Store.DeleteBudget(r.Context(), generic.BudgetID(id)); err != nil {
		h.fail(w, r, "Failed to delete budget", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBudget returns a budget and its categories.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	b, categories, ok := h.loadBudget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDetailDTO(b, categories))
}

// ValidateBudget runs every business rule over a stored budget.
func (h *Handler) ValidateBudget(w http.ResponseWriter, r *http.Request) {
	b, categories, ok := h.loadBudget(w, r)
	if !ok {
		return
	}
	report := budget.ValidateBudget(b, categories)
	if !report.OK() {
		h.logger.Debug("budget has validation errors", "budget_id", b.ID, "errors", len(report.Errors()))
	}
	writeJSON(w, http.StatusOK, toValidationDTO(report))
}

func (h *Handler) loadBudget(w http.ResponseWriter, r *http.Request) (budget.Budget, []budget.Category, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid budget ID", err)
		return budget.Budget{}, nil, false
	}
	b, err := h.Store.GetBudget(r.Context(), generic.BudgetID(id))
	if err != nil {
		h.fail(w, r, "Budget not found", err)
		return budget.Budget{}, nil, false
	}
	categories, err := h.Store.ListCategories(r.Context(), b.ID)
	if err != nil {
		h.fail(w, r, "Failed to list categories", err)
		return budget.Budget{}, nil, false
	}
	return b, categories, true
}

// =============================================================================
// GROUP HANDLERS
// =============================================================================

// ListGroups returns a budget's groups ordered by ID.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.loadBudget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.SortedGroups())
}

// CreateGroup adds a group to a budget.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid budget ID", err)
		return
	}
	var req factory.GroupJSON
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	g, err := factory.CleanGroup(req)
	if err != nil {
		h.fail(w, r, "Invalid group", err)
		return
	}
	stored, err := h.Store.CreateGroup(r.Context(), generic.BudgetID(id), g)
	if err != nil {
		h.fail(w, r, "Failed to create group", err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListCategories returns a budget's categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	_, categories, ok := h.loadBudget(w, r)
	if !ok {
		return
	}
	dtos := make([]factory.CategoryJSON, len(categories))
	for i, c := range categories {
		dtos[i] = factory.CategoryToJSON(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCategory cleans a category body and stores it under a budget.
// Business rules are not enforced here; see ValidateBudget.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid budget ID", err)
		return
	}
	c, err := parseCategoryBody(r)
	if err != nil {
		h.fail(w, r, "Invalid category", err)
		return
	}
	stored, err := h.Store.CreateCategory(r.Context(), generic.BudgetID(id), c)
	if err != nil {
		h.fail(w, r, "Failed to create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.CategoryToJSON(stored))
}

// GetCategory returns one category.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.loadCategory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, factory.CategoryToJSON(c))
}

// UpdateCategory replaces a category. The ID in the path wins over the body.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	existing, _, ok := h.loadCategory(w, r)
	if !ok {
		return
	}
	c, err := parseCategoryBody(r)
	if err != nil {
		h.fail(w, r, "Invalid category", err)
		return
	}
	c, err = c.With(func(v *budget.CategoryValues) { v.ID = existing.ID() })
	if err != nil {
		h.fail(w, r, "Invalid category", err)
		return
	}
	updated, err := h.Store.UpdateCategory(r.Context(), c)
	if err != nil {
		h.fail(w, r, "Failed to update category", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.CategoryToJSON(updated))
}

// DeleteCategory removes a category.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid category ID", err)
		return
	}
	if err := h.Store.DeleteCategory(r.Context(), generic.CategoryID(id)); err != nil {
		h.fail(w, r, "Failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CategoryOccurrences projects a category over ?from=&to=, which default
// to the owning budget's window.
func (h *Handler) CategoryOccurrences(w http.ResponseWriter, r *http.Request) {
	c, budgetID, ok := h.loadCategory(w, r)
	if !ok {
		return
	}
	b, err := h.Store.GetBudget(r.Context(), budgetID)
	if err != nil {
		h.fail(w, r, "Budget not found", err)
		return
	}
	from, err := queryDate(r, "from", b.Start)
	if err != nil {
		h.fail(w, r, "Invalid from date", err)
		return
	}
	to, err := queryDate(r, "to", b.End)
	if err != nil {
		h.fail(w, r, "Invalid to date", err)
		return
	}
	if err := (generic.DateRange{Start: from, End: to}).Validate(); err != nil {
		h.fail(w, r, "Invalid date range", err)
		return
	}

	dto := OccurrencesDTO{
		CategoryID:   c.ID(),
		From:         from,
		To:           to,
		Automatic:    c.IsAutomatic(),
		Rules:        []RuleOccurrencesDTO{},
		CurrencyCode: c.CurrencyCode(),
	}
	if !c.IsAutomatic() {
		total := decimal.Zero
		for i, rule := range c.Rules() {
			n, err := rule.CountOccurrencesBetween(from, to)
			if err != nil {
				h.fail(w, r, "Failed to count occurrences", err)
				return
			}
			amount := rule.Amount().Mul(decimal.NewFromInt(int64(n)))
			total = total.Add(amount)
			dto.Rules = append(dto.Rules, RuleOccurrencesDTO{Index: i, Rule: rule.String(), Occurrences: n, Amount: amount})
		}
		dto.Total = &total
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) loadCategory(w http.ResponseWriter, r *http.Request) (budget.Category, generic.BudgetID, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "Invalid category ID", err)
		return budget.Category{}, 0, false
	}
	c, budgetID, err := h.Store.GetCategory(r.Context(), generic.CategoryID(id))
	if err != nil {
		h.fail(w, r, "Category not found", err)
		return budget.Category{}, 0, false
	}
	return c, budgetID, true
}

// =============================================================================
// OCCURRENCE HANDLERS
// =============================================================================

// CountOccurrences counts a raw rule over a range without storing anything.
func (h *Handler) CountOccurrences(w http.ResponseWriter, r *http.Request) {
	var req CountRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	if req.Rule == nil {
		h.fail(w, r, "Invalid rule", generic.NewInvariantError("rule", "is required"))
		return
	}
	if req.From == nil || req.To == nil {
		h.fail(w, r, "Invalid date range", generic.NewInvariantError("range", "from and to are required"))
		return
	}
	rule, err := factory.CleanRule(req.Rule)
	if err != nil {
		h.fail(w, r, "Invalid rule", err)
		return
	}
	n, err := rule.CountOccurrencesBetween(*req.From, *req.To)
	if err != nil {
		h.fail(w, r, "Failed to count occurrences", err)
		return
	}
	writeJSON(w, http.StatusOK, CountDTO{
		Rule:        rule.String(),
		Occurrences: n,
		Amount:      rule.Amount().Mul(decimal.NewFromInt(int64(n))),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
		var inv *generic.InvariantError
		if errors.As(err, &inv) {
			resp.Field = inv.Field
		}
	}
	writeJSON(w, status, resp)
}

// fail maps err to a status, logs server-side failures and writes the error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message,
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrAlreadyExists):
		return http.StatusConflict
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// decodeBody decodes a JSON body. Malformed JSON is an invariant violation
// on the body so it maps to 400.
func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return &generic.InvariantError{Field: "body", Reason: "malformed JSON", Err: err}
	}
	return nil
}

func parseCategoryBody(r *http.Request) (budget.Category, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return budget.Category{}, err
	}
	return factory.ParseCategory(data)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, generic.NewInvariantError(name, "must be a positive integer, got %q", raw)
	}
	return id, nil
}

func queryDate(r *http.Request, name string, fallback generic.CalendarDate) (generic.CalendarDate, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := generic.ParseDate(raw)
	if err != nil {
		return generic.CalendarDate{}, &generic.InvariantError{Field: name, Reason: "not a YYYY-MM-DD date", Err: err}
	}
	return d, nil
}
