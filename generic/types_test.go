package generic_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-rules/generic"
)

func TestAmount(t *testing.T) {
	a := generic.NewAmount(generic.MustParseDecimal("10.25"), "EUR")
	b := generic.NewAmountFromInt(3, "EUR")

	assert.Equal(t, "13.25 EUR", a.Add(b).String())
	assert.Equal(t, "7.25 EUR", a.Sub(b).String())
	assert.Equal(t, "30.75 EUR", a.Mul(decimal.NewFromInt(3)).String())
	assert.True(t, a.Neg().IsNegative())
	assert.True(t, a.Zero().IsZero())
	assert.Equal(t, "EUR", a.Zero().Currency)
}

func TestIDs(t *testing.T) {
	assert.False(t, generic.CategoryID(0).IsSet())
	assert.True(t, generic.CategoryID(1).IsSet())
	assert.False(t, generic.GroupID(-1).IsSet())
	assert.True(t, generic.BudgetID(12).IsSet())
}

func TestMetadata_CloneIsDeep(t *testing.T) {
	m := generic.Metadata{"list": []any{"a", "b"}, "n": 2}

	c, err := m.Clone()
	require.NoError(t, err)
	c["list"].([]any)[0] = "z"

	assert.Equal(t, "a", m["list"].([]any)[0])
	// numbers come back as JSON numbers
	assert.Equal(t, float64(2), c["n"])
}

func TestMetadata_NilClonesToEmpty(t *testing.T) {
	var m generic.Metadata

	c, err := m.Clone()

	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

func TestMetadata_Validate(t *testing.T) {
	assert.NoError(t, generic.Metadata{"b": 1, "a": "x"}.Validate())
	assert.ErrorIs(t, generic.Metadata{"": 1}.Validate(), generic.ErrInvariantViolation)
	assert.ErrorIs(t, generic.Metadata{"ch": make(chan int)}.Validate(), generic.ErrInvariantViolation)
	assert.Equal(t, []string{"a", "b"}, generic.Metadata{"b": 1, "a": "x"}.Keys())
}

func TestCurrencyRegistry(t *testing.T) {
	generic.RegisterCurrency(generic.Currency{Code: "tst", Name: "Test Credits", Symbol: "T", Decimals: 3})

	c, err := generic.LookupCurrency(" Tst")
	require.NoError(t, err)
	assert.Equal(t, "TST", c.Code)
	assert.Equal(t, 3, c.Decimals)

	codes := make([]string, 0)
	for _, cur := range generic.ListCurrencies() {
		codes = append(codes, cur.Code)
	}
	assert.Contains(t, codes, "TST")
	assert.IsIncreasing(t, codes)

	_, err = generic.LookupCurrency("NOPE")
	assert.ErrorIs(t, err, generic.ErrUnknownCurrency)
	assert.Panics(t, func() { generic.MustLookupCurrency("NOPE") })
}

func TestErrorClassification(t *testing.T) {
	inv := generic.NewInvariantError("repeat_n", "must be positive")
	assert.Equal(t, "invalid repeat_n: must be positive", inv.Error())
	assert.True(t, generic.IsClientError(fmt.Errorf("wrapped: %w", inv)))
	assert.False(t, generic.IsNotFound(inv))

	withCause := &generic.InvariantError{Field: "currency_code", Reason: "does not resolve", Err: generic.ErrUnknownCurrency}
	assert.ErrorIs(t, withCause, generic.ErrUnknownCurrency)
	assert.ErrorIs(t, withCause, generic.ErrInvariantViolation)

	notFound := fmt.Errorf("category 3: %w", generic.ErrCategoryNotFound)
	assert.True(t, generic.IsNotFound(notFound))
	assert.False(t, generic.IsClientError(notFound))

	assert.False(t, generic.IsClientError(errors.New("disk on fire")))
	assert.False(t, generic.IsClientError(fmt.Errorf("%w: -2", generic.ErrNegativeOccurrences)))
}
