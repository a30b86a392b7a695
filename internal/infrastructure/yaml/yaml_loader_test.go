package yaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
)

const pack = `
version: v1.2
description: default storefront pack
conditions:
  - name: summer-sale
    type: discount
    target: "items:attributes.category=apparel@item_discount/per-item"
    value: "-15%"
    order: 1
  - name: vat
    type: tax
    target_definition:
      scope: cart
      phase: tax
      application: aggregate
    value: "23%"
  - name: free-shipping-threshold
    type: shipping
    target: shipments@shipping/per-group
    value: "+4.99"
    rules:
      - "<": [{"var": "cart.subtotal"}, 50]
`

func TestLoadConditionPack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.2_conditions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pack), 0o644))

	p, err := LoadConditionPack(path)
	require.NoError(t, err)
	assert.Equal(t, "v1.2", p.Version)
	require.Len(t, p.Conditions, 3)

	c, err := condition.FromDefinitions(p.Conditions)
	require.NoError(t, err)
	vat, ok := c.Get("vat")
	require.True(t, ok)
	assert.Equal(t, "cart@tax/aggregate", vat.Target().DSL())

	sale, _ := c.Get("summer-sale")
	assert.Equal(t, "items:attributes.category=apparel@item_discount/per-item", sale.Target().DSL())
	assert.Equal(t, 1, c.Dynamic().Len())
}

func TestDecodeConditionPack_Invalid(t *testing.T) {
	_, err := DecodeConditionPack([]byte("conditions: [name: x"))
	assert.Error(t, err)

	_, err = DecodeConditionPack([]byte(`conditions: [{name: x, target_definition: "nope"}]`))
	assert.Error(t, err)
}

func TestLoadConditionPack_MissingFile(t *testing.T) {
	_, err := LoadConditionPack(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
