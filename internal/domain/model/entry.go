package model

import (
	"strconv"
)

// AmountEntry is a dataset row (shipment, payment, fulfillment) priced by a
// scope resolver.
type AmountEntry interface {
	BaseAmount() float64
}

type Entry struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	Amount float64 `json:"base_amount" yaml:"base_amount"`
}

func (e Entry) BaseAmount() float64 { return e.Amount }

// EntryFromMap adapts a loose record: base_amount, then amount, else 0.
func EntryFromMap(record map[string]any) Entry {
	e := Entry{}
	if id, ok := record["id"]; ok && id != nil {
		e.ID = toString(id)
	}
	for _, key := range []string{"base_amount", "amount"} {
		if v, ok := toFloat(record[key]); ok {
			e.Amount = v
			break
		}
	}
	return e
}

// Entries converts concrete entries to the resolver interface.
func Entries[E AmountEntry](entries []E) []AmountEntry {
	out := make([]AmountEntry, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}
