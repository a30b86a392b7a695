package model

import (
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID           string  `json:"id" yaml:"id"`
	Currency     string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Items        []Item  `json:"items" yaml:"items"`
	Shipments    []Entry `json:"shipments,omitempty" yaml:"shipments,omitempty"`
	Payments     []Entry `json:"payments,omitempty" yaml:"payments,omitempty"`
	Fulfillments []Entry `json:"fulfillments,omitempty" yaml:"fulfillments,omitempty"`
}

type Item struct {
	SKU        string         `json:"sku" yaml:"sku"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Price      float64        `json:"price" yaml:"price"`
	Quantity   int            `json:"quantity" yaml:"quantity"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// RawSubtotal is price × quantity before any condition.
func (i Item) RawSubtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsSubtotal sums the raw subtotals of every line.
func (c Cart) ItemsSubtotal() float64 {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.RawSubtotal())
	}
	return total.InexactFloat64()
}

func (c Cart) Quantity() int {
	var q int
	for _, item := range c.Items {
		q += item.Quantity
	}
	return q
}

func (c Cart) ToMap() map[string]any {
	items := make([]any, len(c.Items))
	for i, item := range c.Items {
		m := map[string]any{
			"sku":      item.SKU,
			"name":     item.Name,
			"price":    item.Price,
			"quantity": item.Quantity,
			"subtotal": item.RawSubtotal().InexactFloat64(),
		}
		if len(item.Attributes) > 0 {
			m["attributes"] = item.Attributes
		}
		items[i] = m
	}
	return map[string]any{
		"id":         c.ID,
		"currency":   c.Currency,
		"subtotal":   c.ItemsSubtotal(),
		"quantity":   c.Quantity(),
		"item_count": len(c.Items),
		"items":      items,
	}
}
