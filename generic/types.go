/*
Package generic provides the domain-agnostic building blocks of the rules engine.

PURPOSE:
  Calendar days, inclusive date ranges, recurrence periods, money amounts,
  currency lookup and the shared error taxonomy. Nothing here knows about
  budgets or categories; the budget package builds on these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A decimal quantity tagged with a currency code
  - CategoryID / GroupID / BudgetID: Type-safe integer identifiers
  - Metadata: Free-form key/value data attached to a category

DESIGN PRINCIPLES:
  1. Immutability: Values are never modified in place, only rebuilt
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Distinct ID types prevent mixing group and category IDs

USAGE:
  rent := generic.NewAmount(decimal.RequireFromString("1200.00"), "EUR")
  yearly := rent.Mul(decimal.NewFromInt(12))

SEE ALSO:
  - time.go: CalendarDate
  - period.go: DateRange and RecurrencePeriod
  - currency.go: Currency registry
*/
package generic

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Decimal quantity with currency
// =============================================================================

type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

func NewAmount(value decimal.Decimal, currency string) Amount {
	return Amount{Value: value, Currency: currency}
}

func NewAmountFromInt(value int64, currency string) Amount {
	return Amount{Value: decimal.NewFromInt(value), Currency: currency}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Currency: a.Currency} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Currency: a.Currency} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Currency: a.Currency} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Currency: a.Currency} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }

func (a Amount) String() string { return a.Value.String() + " " + a.Currency }

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Identifiers are positive integers. Zero means "not assigned yet".
type BudgetID int64
type GroupID int64
type CategoryID int64

func (id BudgetID) IsSet() bool   { return id > 0 }
func (id GroupID) IsSet() bool    { return id > 0 }
func (id CategoryID) IsSet() bool { return id > 0 }

// =============================================================================
// METADATA - Free-form key/value data
// =============================================================================

// Metadata holds arbitrary JSON-compatible values keyed by non-empty strings.
type Metadata map[string]any

// Validate checks that every key is non-empty and every value encodes as JSON.
func (m Metadata) Validate() error {
	for _, k := range m.Keys() {
		if k == "" {
			return NewInvariantError("metadata", "empty key")
		}
		if _, err := json.Marshal(m[k]); err != nil {
			return &InvariantError{Field: "metadata", Reason: fmt.Sprintf("value for %q is not JSON-compatible", k), Err: err}
		}
	}
	return nil
}

// Clone returns a deep copy through a JSON round trip so nested maps and
// slices are never shared between two values.
func (m Metadata) Clone() (Metadata, error) {
	if m == nil {
		return Metadata{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, &InvariantError{Field: "metadata", Reason: "not JSON-compatible", Err: err}
	}
	out := Metadata{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &InvariantError{Field: "metadata", Reason: "not JSON-compatible", Err: err}
	}
	return out, nil
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
