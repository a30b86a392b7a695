package runengine

import (
	"context"
	"fmt"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/engine"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
)

// UseCase reprices a cart after a client edit: it prices the cart as sent,
// applies the RFC 6902 patch, prices again and reports what moved.
type UseCase struct {
	Pricer  Pricer
	Patcher Patcher
	Differ  Differ
}

type Pricer interface {
	Price(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error)
}

type Patcher interface {
	Apply(cart model.Cart, patch []byte) (model.Cart, error)
	MergePatch(before, after any) ([]byte, error)
}

type Differ interface {
	Diff(before, after *engine.Result) []domain.PhaseDelta
}

func (u *UseCase) Run(ctx context.Context, req domain.PricingRequest, patch []byte) (*domain.RepriceResult, error) {
	before, err := u.Pricer.Price(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("price before patch: %w", err)
	}

	patched, err := u.Patcher.Apply(req.Cart, patch)
	if err != nil {
		return nil, err
	}

	next := req
	next.Cart = patched
	after, err := u.Pricer.Price(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("price after patch: %w", err)
	}

	merge, err := u.Patcher.MergePatch(fragment(before), fragment(after))
	if err != nil {
		return nil, err
	}

	return &domain.RepriceResult{
		Before:      before,
		After:       after,
		PhaseDelta:  u.Differ.Diff(before.Ledger, after.Ledger),
		MergePatch:  merge,
		ServerDelta: len(merge) > 2,
	}, nil
}

// fragment is the part of a result a client mirrors; run IDs and logs are
// left out so they never show up as changes.
func fragment(r *domain.PricingResult) map[string]any {
	return map[string]any{
		"subtotal":           r.Subtotal,
		"total":              r.Total,
		"ledger":             r.Ledger,
		"applied_conditions": r.AppliedConditions,
		"skipped_conditions": r.SkippedConditions,
	}
}
