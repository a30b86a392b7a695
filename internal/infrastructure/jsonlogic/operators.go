package jsonlogic

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"
)

// Operator is a custom JsonLogic operator evaluated outside the library.
type Operator func(args ...any) any

// Operators returns the custom operators available to condition rules.
func Operators() map[string]Operator {
	return map[string]Operator{
		"round":    Round,
		"allocate": Allocate,
		"sum":      Sum,
	}
}

// Sum adds every argument, flattening lists: {"sum": [1, [2, 3]]} = 6.
func Sum(args ...any) any {
	total := decimal.Zero
	for _, a := range flatten(args) {
		total = total.Add(decimal.NewFromFloat(ToFloat64(a)))
	}
	return total.InexactFloat64()
}

// Round rounds half away from zero: {"round": [value, precision]}.
func Round(args ...any) any {
	if len(args) == 0 {
		return 0.0
	}
	var precision int32
	if len(args) > 1 {
		precision = int32(ToFloat64(args[1]))
	}
	return decimal.NewFromFloat(ToFloat64(args[0])).Round(precision).InexactFloat64()
}

// Allocate splits a total. With a number of parts it returns the share of
// one part; with a list of weights it returns one share per weight.
func Allocate(args ...any) any {
	if len(args) < 2 {
		return 0.0
	}
	total := decimal.NewFromFloat(ToFloat64(args[0]))

	wt := reflect.ValueOf(args[1])
	if wt.Kind() != reflect.Slice {
		parts := decimal.NewFromFloat(ToFloat64(args[1]))
		if parts.IsZero() {
			return 0.0
		}
		return total.Div(parts).InexactFloat64()
	}

	weights := make([]decimal.Decimal, wt.Len())
	sum := decimal.Zero
	for i := range weights {
		weights[i] = decimal.NewFromFloat(ToFloat64(wt.Index(i).Interface()))
		sum = sum.Add(weights[i])
	}
	shares := make([]any, len(weights))
	for i, w := range weights {
		if sum.IsZero() {
			shares[i] = 0.0
			continue
		}
		shares[i] = total.Mul(w).Div(sum).InexactFloat64()
	}
	return shares
}

func flatten(args []any) []any {
	var out []any
	for _, a := range args {
		rv := reflect.ValueOf(a)
		if a != nil && rv.Kind() == reflect.Slice {
			items := make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
			out = append(out, flatten(items)...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func ToFloat64(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case uint:
		return float64(val)
	case uint64:
		return float64(val)
	case uint32:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return 0
	}
}
