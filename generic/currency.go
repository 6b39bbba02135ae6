/*
currency.go - Currency registration and lookup

PURPOSE:
  Provides a registry of known currencies. A category is tagged with a
  currency code, and the code must resolve here before the category can
  be constructed. Conversion and formatting are out of scope; the registry
  only answers "is this a currency we know, and what are its properties".

HOW IT WORKS:
  1. Domain packages register currencies on init() or explicitly
  2. Constructors call LookupCurrency to resolve a code
  3. Unknown codes fail with ErrUnknownCurrency

USAGE:
  // In budget/currencies.go
  func init() {
      generic.RegisterCurrency(generic.Currency{Code: "EUR", Name: "Euro", Symbol: "€", Decimals: 2})
  }

  cur, err := generic.LookupCurrency("eur") // codes are case-insensitive

SEE ALSO:
  - budget/currencies.go: Default currency set
  - budget/category.go: Resolves Category.currencyCode
*/
package generic

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// CURRENCY
// =============================================================================

type Currency struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// =============================================================================
// CURRENCY REGISTRY
// =============================================================================

var (
	currencyRegistry = make(map[string]Currency)
	registryMu       sync.RWMutex
)

func normalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// RegisterCurrency adds or replaces a currency in the global registry.
func RegisterCurrency(c Currency) {
	registryMu.Lock()
	defer registryMu.Unlock()
	c.Code = normalizeCode(c.Code)
	currencyRegistry[c.Code] = c
}

// LookupCurrency resolves a currency code. Fails with ErrUnknownCurrency.
func LookupCurrency(code string) (Currency, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := currencyRegistry[normalizeCode(code)]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// MustLookupCurrency finds a registered currency or panics.
// Use in tests or when you're certain the currency exists.
func MustLookupCurrency(code string) Currency {
	c, err := LookupCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// ListCurrencies returns all registered currencies ordered by code.
func ListCurrencies() []Currency {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Currency, 0, len(currencyRegistry))
	for _, c := range currencyRegistry {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}
