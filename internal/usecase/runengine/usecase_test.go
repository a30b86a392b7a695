package runengine_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure/diff"
	"github.com/Victor-armando18/cart-pricing/internal/usecase"
	"github.com/Victor-armando18/cart-pricing/internal/usecase/runengine"
)

func newUseCase() *runengine.UseCase {
	pricer := usecase.NewPricingService(nil, infrastructure.NewJsonLogicEvaluator(), usecase.WithLogger(zerolog.Nop()))
	return &runengine.UseCase{Pricer: pricer, Patcher: infrastructure.CartPatcher{}, Differ: &diff.Differ{}}
}

func request() domain.PricingRequest {
	return domain.PricingRequest{
		Cart: model.Cart{ID: "cart-1", Items: []model.Item{{SKU: "A", Name: "Widget", Price: 50, Quantity: 1}}},
		Conditions: []condition.Definition{
			{Name: "Tax", Type: "tax", Target: "cart@tax/aggregate", Value: "10%"},
		},
	}
}

func TestUseCase_Run(t *testing.T) {
	res, err := newUseCase().Run(context.Background(), request(),
		[]byte(`[{"op":"replace","path":"/items/0/quantity","value":2}]`))
	require.NoError(t, err)

	assert.InDelta(t, 55, res.Before.Total, 1e-9)
	assert.InDelta(t, 110, res.After.Total, 1e-9)
	assert.True(t, res.ServerDelta)

	require.NotEmpty(t, res.PhaseDelta)
	assert.Equal(t, "pre_item", res.PhaseDelta[0].Phase)
	assert.InDelta(t, 50, res.PhaseDelta[0].Change, 1e-9)
	last := res.PhaseDelta[len(res.PhaseDelta)-1]
	assert.Equal(t, "custom", last.Phase)
	assert.InDelta(t, 55, last.Change, 1e-9)

	var merge map[string]any
	require.NoError(t, json.Unmarshal(res.MergePatch, &merge))
	assert.Equal(t, 110.0, merge["total"])
	assert.NotContains(t, merge, "applied_conditions")
}

func TestUseCase_NoChange(t *testing.T) {
	patches := map[string]string{
		"replace name":    `[{"op":"replace","path":"/items/0/name","value":"Renamed"}]`,
		"add attributes":  `[{"op":"add","path":"/items/0/attributes","value":{"color":"red"}}]`,
		"empty patch set": `[]`,
	}
	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			res, err := newUseCase().Run(context.Background(), request(), []byte(patch))
			require.NoError(t, err)
			assert.Empty(t, res.PhaseDelta)
			assert.False(t, res.ServerDelta)
			assert.Equal(t, "{}", string(res.MergePatch))
		})
	}
}

func TestUseCase_InvalidPatch(t *testing.T) {
	_, err := newUseCase().Run(context.Background(), request(), []byte(`[{"op":"remove","path":"/nope"}]`))
	assert.ErrorIs(t, err, domain.ErrInvalidPatch)
}

func TestUseCase_PricingError(t *testing.T) {
	req := request()
	req.Conditions[0].Value = "ten"
	_, err := newUseCase().Run(context.Background(), req, []byte(`[]`))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
