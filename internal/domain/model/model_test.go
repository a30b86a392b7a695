package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_ItemsSubtotal(t *testing.T) {
	c := Cart{Items: []Item{
		{SKU: "A", Price: 19.99, Quantity: 3},
		{SKU: "B", Price: 0.1, Quantity: 2},
	}}
	assert.Equal(t, 60.17, c.ItemsSubtotal())
	assert.Equal(t, 5, c.Quantity())
}

func TestCart_ToMap(t *testing.T) {
	c := Cart{ID: "c1", Currency: "EUR", Items: []Item{{SKU: "A", Price: 10, Quantity: 2}}}
	m := c.ToMap()

	assert.Equal(t, 20.0, m["subtotal"])
	assert.Equal(t, 1, m["item_count"])
	items := m["items"].([]any)
	assert.Equal(t, "A", items[0].(map[string]any)["sku"])
}

func TestEntryFromMap(t *testing.T) {
	tests := map[string]struct {
		record map[string]any
		want   float64
	}{
		"base_amount wins": {map[string]any{"base_amount": 10.0, "amount": 99.0}, 10},
		"amount fallback":  {map[string]any{"amount": 5}, 5},
		"string amount":    {map[string]any{"amount": "2.5"}, 2.5},
		"json number":      {map[string]any{"amount": json.Number("7")}, 7},
		"unresolvable":     {map[string]any{"price": 3.0}, 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, EntryFromMap(tt.record).BaseAmount())
		})
	}
}

func TestEntries(t *testing.T) {
	out := Entries([]Entry{{Amount: 1}, {Amount: 2}})
	assert.Len(t, out, 2)
	assert.Equal(t, 2.0, out[1].BaseAmount())
}
