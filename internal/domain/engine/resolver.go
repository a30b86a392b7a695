package engine

import (
	"context"
	"math"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// datasetResolver prices a scope backed by a list of entries. Aggregate
// conditions see the sum of entry amounts; the others see each entry alone.
// Only net deltas are added to the running amount.
type datasetResolver struct {
	scope   target.Scope
	dataset func(ctx context.Context, phase PhaseContext) ([]model.AmountEntry, error)
	initial func(current, sum float64) float64
}

func NewCartScopeResolver() ScopeResolver {
	return &datasetResolver{
		scope: target.ScopeCart,
		dataset: func(_ context.Context, phase PhaseContext) ([]model.AmountEntry, error) {
			return []model.AmountEntry{model.Entry{ID: "cart", Amount: phase.BaseAmount}}, nil
		},
		initial: func(current, _ float64) float64 { return current },
	}
}

func NewShipmentsScopeResolver() ScopeResolver {
	return &datasetResolver{
		scope: target.ScopeShipments,
		dataset: func(ctx context.Context, phase PhaseContext) ([]model.AmountEntry, error) {
			return phase.Pipeline.Shipments(ctx)
		},
		initial: func(current, sum float64) float64 { return current + sum },
	}
}

// NewPaymentsScopeResolver only adds the part of the payments that exceeds
// the running amount, so payments covering the cart are not counted twice.
func NewPaymentsScopeResolver() ScopeResolver {
	return &datasetResolver{
		scope: target.ScopePayments,
		dataset: func(ctx context.Context, phase PhaseContext) ([]model.AmountEntry, error) {
			return phase.Pipeline.Payments(ctx)
		},
		initial: func(current, sum float64) float64 { return current + math.Max(sum-current, 0) },
	}
}

func NewFulfillmentsScopeResolver() ScopeResolver {
	return &datasetResolver{
		scope: target.ScopeFulfillments,
		dataset: func(ctx context.Context, phase PhaseContext) ([]model.AmountEntry, error) {
			return phase.Pipeline.Fulfillments(ctx)
		},
		initial: func(current, sum float64) float64 { return current + sum },
	}
}

func (r *datasetResolver) Supports(scope target.Scope) bool { return scope == r.scope }

func (r *datasetResolver) Resolve(ctx context.Context, phase PhaseContext, _ target.Scope, conditions *condition.Collection, current float64) (float64, error) {
	entries, err := r.dataset(ctx, phase)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return current + (conditions.ApplyAll(current) - current), nil
	}

	aggregate := conditions.Filter(isAggregate)
	perEntry := conditions.Reject(isAggregate)

	var sum float64
	for _, e := range entries {
		sum += e.BaseAmount()
	}

	amount := r.initial(current, sum)
	if !aggregate.IsEmpty() {
		amount += aggregate.ApplyAll(sum) - sum
	}
	if !perEntry.IsEmpty() {
		for _, e := range entries {
			base := e.BaseAmount()
			amount += perEntry.ApplyAll(base) - base
		}
	}
	return amount, nil
}

func isAggregate(c *condition.Condition) bool {
	return c.Target().Application.IsAggregate()
}
