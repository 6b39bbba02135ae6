package factory

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// COERCION HELPERS - loosely typed values to typed ones
// =============================================================================
//
// Raw input reaches the factory as decoded JSON (float64 numbers, strings,
// []any, map[string]any) or as Go values built by hand (ints, time.Time,
// generic types). Every helper accepts both and fails with an InvariantError
// naming the field.

// decodeMap copies a raw mapping onto a struct by its json tags. Unknown
// keys are rejected so a typo never silently drops a field.
func decodeMap(field string, raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "json",
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return &generic.InvariantError{Field: field, Reason: "malformed mapping", Err: err}
	}
	return nil
}

func coerceDecimal(field string, v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, generic.NewInvariantError(field, "must be a finite number")
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return parseDecimal(field, x.String())
	case string:
		return parseDecimal(field, x)
	default:
		return decimal.Zero, generic.NewInvariantError(field, "must be a number, got %T", v)
	}
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, &generic.InvariantError{Field: field, Reason: fmt.Sprintf("%q is not a number", s), Err: err}
	}
	return d, nil
}

// coerceDate accepts YYYY-MM-DD strings, integral day-numbers, time.Time and
// CalendarDate values. nil stays nil (an open bound).
func coerceDate(field string, v any) (*generic.CalendarDate, error) {
	var d generic.CalendarDate
	switch x := v.(type) {
	case nil:
		return nil, nil
	case generic.CalendarDate:
		d = x
	case *generic.CalendarDate:
		if x == nil {
			return nil, nil
		}
		d = *x
	case time.Time:
		d = generic.FromTime(x)
	case string:
		parsed, err := generic.ParseDate(x)
		if err != nil {
			return nil, &generic.InvariantError{Field: field, Reason: "not a YYYY-MM-DD date", Err: err}
		}
		d = parsed
	default:
		n, err := coerceInt(field, v)
		if err != nil {
			return nil, err
		}
		d = generic.FromDayNumber(n)
	}
	return &d, nil
}

// coerceInt accepts integers and integral floats only.
func coerceInt(field string, v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, generic.NewInvariantError(field, "must be an integer, got %v", x)
		}
		// float64(math.MaxInt64) rounds up to 2^63, itself out of range.
		if x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, generic.NewInvariantError(field, "%v is out of range", x)
		}
		return int64(x), nil
	case json.Number:
		n, err := strconv.ParseInt(x.String(), 10, 64)
		if err != nil {
			return 0, generic.NewInvariantError(field, "must be an integer, got %s", x)
		}
		return n, nil
	default:
		return 0, generic.NewInvariantError(field, "must be an integer, got %T", v)
	}
}

func coercePeriod(field string, v any) (*generic.RecurrencePeriod, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return nil, nil
	case generic.RecurrencePeriod:
		s = string(x)
	case *generic.RecurrencePeriod:
		if x == nil {
			return nil, nil
		}
		s = string(*x)
	case string:
		s = x
	default:
		return nil, generic.NewInvariantError(field, "must be a string, got %T", v)
	}
	p, err := generic.ParseRecurrencePeriod(s)
	if err != nil {
		return nil, &generic.InvariantError{Field: field, Reason: "unknown period", Err: err}
	}
	return &p, nil
}

func coerceMetadata(v any) (generic.Metadata, error) {
	switch x := v.(type) {
	case nil:
		return generic.Metadata{}, nil
	case generic.Metadata:
		return x, nil
	case map[string]any:
		return generic.Metadata(x), nil
	default:
		return nil, generic.NewInvariantError("metadata", "must be a mapping, got %T", v)
	}
}
