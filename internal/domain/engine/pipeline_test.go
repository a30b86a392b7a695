package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

func cartOf(price float64, qty int) model.Cart {
	return model.Cart{ID: "test", Items: []model.Item{{SKU: "sku-1", Name: "Sample Item", Price: price, Quantity: qty}}}
}

func records(rows ...map[string]any) EntriesFunc {
	return func(context.Context) ([]model.AmountEntry, error) {
		out := make([]model.AmountEntry, len(rows))
		for i, r := range rows {
			out[i] = model.EntryFromMap(r)
		}
		return out, nil
	}
}

func TestPipeline_ShipmentsAggregate(t *testing.T) {
	conditions := condition.NewCollection(
		condition.MustNew("standard-shipping", "shipping", target.Shipments().ApplyAggregate().MustBuild(), "0"),
	)
	src := NewCartSource(cartOf(50, 2), conditions, WithShipmentsResolver(records(
		map[string]any{"id": "domestic", "base_amount": 10.0},
		map[string]any{"id": "express", "base_amount": 5.0},
	)))

	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(src))
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.InitialAmount)
	assert.Equal(t, 115.0, res.Total())
	assert.Equal(t, 115.0, res.FinalAmount)

	shipping, ok := res.Phase(target.PhaseShipping)
	require.True(t, ok)
	assert.Equal(t, 15.0, shipping.Adjustment)
	assert.Equal(t, 1, shipping.AppliedConditions)
}

func TestPipeline_PaymentSurchargePerPayment(t *testing.T) {
	tgt := target.Payments().Phase(target.PhasePayment).Apply(target.ApplicationPerPayment).MustBuild()
	conditions := condition.NewCollection(condition.MustNew("payment-surcharge", "fee", tgt, "+2%"))

	cart := cartOf(100, 1)
	cart.Payments = []model.Entry{{ID: "card", Amount: 100}, {ID: "gift-card", Amount: 25}}

	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(NewCartSource(cart, conditions)))
	require.NoError(t, err)
	assert.InDelta(t, 127.5, res.Total(), 1e-9)
}

func TestPipeline_AllPhasesInOrder(t *testing.T) {
	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(10, 3), nil)))
	require.NoError(t, err)

	phases := res.Phases()
	require.Len(t, phases, 10)
	for i, pr := range phases {
		assert.Equal(t, target.Phases()[i], pr.Phase)
		assert.Zero(t, pr.Adjustment)
		assert.Equal(t, pr.BaseAmount, pr.FinalAmount)
		assert.Zero(t, pr.AppliedConditions)
		if i > 0 {
			assert.Less(t, phases[i-1].Phase.Order(), pr.Phase.Order())
		}
	}
	assert.Equal(t, 30.0, res.FinalAmount)
	assert.Equal(t, 30.0, res.Subtotal())
}

func TestPipeline_PhasesThreadTheRunningAmount(t *testing.T) {
	conditions := condition.NewCollection(
		condition.MustNew("vat", "tax", target.CartTax(), "10%"),
		condition.MustNew("promo", "discount", target.CartSubtotal(), "-20"),
		condition.MustNew("item-promo", "discount", target.ItemsPerItem(), "-10%"),
	)

	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(50, 2), conditions)))
	require.NoError(t, err)

	// items: 100 * 0.9 = 90; subtotal: 90 - 20 = 70; tax: 70 * 1.1 = 77
	items, _ := res.Phase(target.PhaseItemDiscount)
	assert.InDelta(t, 90, items.FinalAmount, 1e-9)
	assert.InDelta(t, 70, res.Subtotal(), 1e-9)
	assert.InDelta(t, 77, res.Total(), 1e-9)

	tax, _ := res.Phase(target.PhaseTax)
	assert.InDelta(t, 70, tax.BaseAmount, 1e-9)
	assert.InDelta(t, 7, tax.Adjustment, 1e-9)
}

func TestPipeline_ScopesInDeclarationOrder(t *testing.T) {
	conditions := condition.NewCollection(
		condition.MustNew("custom-fee", "fee", target.MustParse("custom@shipping/aggregate"), "+5"),
		condition.MustNew("cart-fee", "fee", target.CartShipping(), "+10%"),
	)

	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(100, 1), conditions)))
	require.NoError(t, err)
	// cart before custom: 100 * 1.1 + 5
	assert.InDelta(t, 115, res.Total(), 1e-9)
}

func TestPipeline_EmptyDatasetFallsBackToAggregate(t *testing.T) {
	conditions := condition.NewCollection(
		condition.MustNew("per-shipment", "shipping", target.ShipmentsPerGroup(), "+5"),
		condition.MustNew("fulfillment", "shipping", target.FulfillmentsPerGroup(), "+10%"),
	)

	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(100, 1), conditions)))
	require.NoError(t, err)
	assert.InDelta(t, 115.5, res.Total(), 1e-9)
}

func TestPipeline_PerEntryAndAggregateSubsets(t *testing.T) {
	conditions := condition.NewCollection(
		condition.MustNew("handling", "shipping", target.Shipments().ApplyAggregate().MustBuild(), "+3"),
		condition.MustNew("insurance", "shipping", target.ShipmentsPerGroup(), "+10%"),
	)
	cart := cartOf(100, 1)
	cart.Shipments = []model.Entry{{ID: "a", Amount: 10}, {ID: "b", Amount: 20}}

	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(NewCartSource(cart, conditions)))
	require.NoError(t, err)
	// 100 + 30 initial, +3 aggregate, +1 and +2 per shipment
	assert.InDelta(t, 136, res.Total(), 1e-9)
}

func TestPipeline_InitialAmountOverride(t *testing.T) {
	conditions := condition.NewCollection(condition.MustNew("d", "discount", target.CartSubtotal(), "-10%"))
	pc := NewPipelineContext(NewCartSource(cartOf(100, 1), nil), WithConditions(conditions), WithInitialAmount(200))

	res, err := NewPipeline().Process(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, 200.0, res.InitialAmount)
	assert.InDelta(t, 180, res.Total(), 1e-9)
}

func TestPipeline_PhaseProcessorOverrides(t *testing.T) {
	var seen PhaseContext
	p := NewPipeline(WithPhaseProcessor(target.PhaseTax, func(_ context.Context, phase PhaseContext) (float64, error) {
		seen = phase
		return phase.BaseAmount + 42, nil
	}))
	conditions := condition.NewCollection(condition.MustNew("vat", "tax", target.CartTax(), "50%"))

	res, err := p.Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(100, 1), conditions)))
	require.NoError(t, err)
	assert.Equal(t, 142.0, res.Total())
	assert.Equal(t, target.PhaseTax, seen.Phase)
	assert.Equal(t, 1, seen.Conditions.Len())
}

func TestPipeline_ErrorsAbortTheRun(t *testing.T) {
	boom := errors.New("tax service unavailable")

	t.Run("processor", func(t *testing.T) {
		p := NewPipeline(WithPhaseProcessor(target.PhaseTax, func(context.Context, PhaseContext) (float64, error) {
			return 0, boom
		}))
		res, err := p.Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(1, 1), nil)))
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, ErrPipelineExecution))
		assert.True(t, errors.Is(err, boom))

		var execErr *ExecutionError
		require.True(t, errors.As(err, &execErr))
		assert.Equal(t, target.PhaseTax, execErr.Phase)
	})

	t.Run("dataset", func(t *testing.T) {
		conditions := condition.NewCollection(condition.MustNew("ship", "shipping", target.ShipmentsPerGroup(), "+1"))
		src := NewCartSource(cartOf(1, 1), conditions, WithShipmentsResolver(func(context.Context) ([]model.AmountEntry, error) {
			return nil, boom
		}))
		_, err := NewPipeline().Process(context.Background(), NewPipelineContext(src))
		var execErr *ExecutionError
		require.True(t, errors.As(err, &execErr))
		assert.Equal(t, target.ScopeShipments, execErr.Scope)
		assert.True(t, errors.Is(err, boom))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewPipeline().Process(ctx, NewPipelineContext(NewCartSource(cartOf(1, 1), nil)))
		assert.True(t, errors.Is(err, context.Canceled))
		assert.True(t, errors.Is(err, ErrPipelineExecution))
	})
}

type flatFeeResolver struct{ fee float64 }

func (r flatFeeResolver) Supports(target.Scope) bool { return true }

func (r flatFeeResolver) Resolve(_ context.Context, _ PhaseContext, _ target.Scope, _ *condition.Collection, current float64) (float64, error) {
	return current + r.fee, nil
}

func TestPipeline_CustomScopeResolver(t *testing.T) {
	conditions := condition.NewCollection(condition.MustNew("x", "fee", target.CustomAggregate(), "+1"))
	p := NewPipeline(WithScopeResolver(target.ScopeCustom, flatFeeResolver{fee: 7}))

	res, err := p.Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(10, 1), conditions)))
	require.NoError(t, err)
	assert.Equal(t, 17.0, res.Total())
}

func TestPipeline_ConcurrentProcess(t *testing.T) {
	p := NewPipeline()
	conditions := condition.NewCollection(
		condition.MustNew("promo", "discount", target.CartSubtotal(), "-10%"),
		condition.MustNew("custom", "fee", target.CustomAggregate(), "+1"),
		condition.MustNew("ship", "shipping", target.ShipmentsPerGroup(), "+2"),
	)

	var wg sync.WaitGroup
	totals := make([]float64, 32)
	for i := range totals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(float64(i+1)*10, 1), conditions)))
			if err == nil {
				totals[i] = res.FinalAmount
			}
		}(i)
	}
	wg.Wait()

	for i, total := range totals {
		base := float64(i+1) * 10
		assert.InDelta(t, base*0.9+2+1, total, 1e-9)
	}
}

func TestResult_JSONKeepsPhaseOrder(t *testing.T) {
	res, err := NewPipeline().Process(context.Background(), NewPipelineContext(NewCartSource(cartOf(10, 1), nil)))
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"phases":{"pre_item":{"phase":"pre_item"`)
	assert.Regexp(t, `"tax":.*"payment":.*"grand_total":.*"custom":`, string(raw))

	var back Result
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, res.Phases(), back.Phases())
	assert.Equal(t, res.FinalAmount, back.FinalAmount)
}

func TestPipelineContext_Capabilities(t *testing.T) {
	pc := NewPipelineContext(nil)
	assert.False(t, pc.HasShipmentsResolver())
	assert.False(t, pc.HasPaymentsResolver())
	assert.False(t, pc.HasFulfillmentsResolver())
	entries, err := pc.Payments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, pc.InitialAmount())
	assert.True(t, pc.Conditions().IsEmpty())

	cart := cartOf(5, 2)
	cart.Fulfillments = []model.Entry{{Amount: 3}}
	pc = NewPipelineContext(NewCartSource(cart, nil))
	assert.True(t, pc.HasFulfillmentsResolver())
	assert.False(t, pc.HasShipmentsResolver())
	assert.Equal(t, 10.0, pc.InitialAmount())
}
