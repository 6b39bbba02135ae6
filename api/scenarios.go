/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built budgets that populate the store with realistic data
	for demos. Each scenario is a budget document in the same JSON format
	POST /api/budgets and the CLI validate command accept.

AVAILABLE SCENARIOS:

	household:   Monthly rent, weekly groceries, yearly insurance, automatic dining
	freelancer:  Quarterly taxes, fortnightly coworking, yearly software licences
	conflicts:   A budget with every kind of validation error, for the report view

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Parse the budget document via factory.ParseBudget
 3. Store the budget, its groups and its categories

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "household"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add its budget document to scenarioDocuments

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: createBudget
  - factory/budget.go: Budget document format
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/budget-rules/factory"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "household",
		Name:        "Household",
		Description: "Family budget with monthly, weekly and yearly rules and one automatic category",
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Quarterly tax prepayments, fortnightly coworking and yearly licences in USD",
	},
	{
		ID:          "conflicts",
		Name:        "Conflicts",
		Description: "Overlapping rules, an inverted rule, a missing group and a duplicate name",
	},
}

var scenarioDocuments = map[string]string{
	"household": `{
		"name": "Household 2025",
		"start_date": "2025-01-01",
		"end_date": "2025-12-31",
		"currency_code": "EUR",
		"groups": [
			{"id": 1, "name": "Housing"},
			{"id": 2, "name": "Food"},
			{"id": 3, "name": "Insurance"}
		],
		"categories": [
			{
				"name": "Rent",
				"currency_code": "EUR",
				"group_id": 1,
				"rules": [
					{"amount": "950.00", "start_date": "2024-09-01", "end_date": "2025-08-31", "period": "month"},
					{"amount": "985.00", "start_date": "2025-09-01", "period": "month"}
				]
			},
			{
				"name": "Internet",
				"currency_code": "EUR",
				"group_id": 1,
				"notes": "fibre contract, billed on the 12th",
				"rules": [{"amount": "39.90", "start_date": "2023-03-12", "period": "month"}]
			},
			{
				"name": "Groceries",
				"currency_code": "EUR",
				"group_id": 2,
				"metadata": {"color": "green"},
				"rules": [{"amount": "120", "period": "week"}]
			},
			{"name": "Dining out", "currency_code": "EUR", "group_id": 2, "rules": null},
			{
				"name": "Home insurance",
				"currency_code": "EUR",
				"group_id": 3,
				"rules": [{"amount": "310", "start_date": "2021-04-01", "period": "year"}]
			}
		]
	}`,
	"freelancer": `{
		"name": "Studio 2025",
		"start_date": "2025-01-01",
		"end_date": "2025-12-31",
		"currency_code": "USD",
		"groups": [
			{"id": 1, "name": "Taxes"},
			{"id": 2, "name": "Workspace"},
			{"id": 3, "name": "Tools"}
		],
		"categories": [
			{
				"name": "Estimated tax",
				"currency_code": "USD",
				"group_id": 1,
				"rules": [{"amount": "2400", "start_date": "2024-04-15", "repeat_n": 3, "period": "month"}]
			},
			{
				"name": "Coworking",
				"currency_code": "USD",
				"group_id": 2,
				"rules": [{"amount": "180", "start_date": "2025-01-06", "repeat_n": 2, "period": "week"}]
			},
			{
				"name": "Design suite",
				"currency_code": "USD",
				"group_id": 3,
				"rules": [{"amount": "659.88", "start_date": "2022-02-01", "period": "year"}]
			},
			{
				"name": "Conference",
				"currency_code": "USD",
				"group_id": 3,
				"rules": [{"amount": "1200", "start_date": "2025-10-08", "end_date": "2025-10-08"}]
			}
		]
	}`,
	"conflicts": `{
		"name": "Conflicts 2025",
		"start_date": "2025-01-01",
		"end_date": "2025-12-31",
		"currency_code": "EUR",
		"groups": [{"id": 1, "name": "Subscriptions"}],
		"categories": [
			{
				"name": "Streaming",
				"currency_code": "EUR",
				"group_id": 1,
				"rules": [
					{"amount": "12.99", "start_date": "2025-01-01", "period": "month"},
					{"amount": "15.99", "start_date": "2025-06-01", "period": "month"}
				]
			},
			{
				"name": "Gym",
				"currency_code": "EUR",
				"group_id": 1,
				"rules": [{"amount": "45", "start_date": "2025-07-01", "end_date": "2025-03-01", "period": "month"}]
			},
			{"name": "streaming", "currency_code": "EUR", "group_id": 1, "rules": []},
			{"name": "Travel", "currency_code": "EUR", "group_id": 9, "rules": null}
		]
	}`,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.LoadScenarioByID(r.Context(), req.ScenarioID); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario %q", req.ScenarioID), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// LoadScenarioByID resets the store and loads one scenario. Used by the
// HTTP handler and by the serve command at startup.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	doc, ok := scenarioDocuments[id]
	if !ok {
		return generic.NewInvariantError("scenario_id", "unknown scenario %q", id)
	}
	b, categories, err := factory.ParseBudget([]byte(doc))
	if err != nil {
		return fmt.Errorf("parse scenario %q: %w", id, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	h.currentScenario = ""

	stored, _, err := h.createBudget(ctx, b, categories)
	if err != nil {
		return err
	}

	h.currentScenario = id
	h.logger.Info("scenario loaded", "scenario", id, "budget_id", stored.ID, "categories", len(categories))
	return nil
}
