package interfaces

import (
	"context"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure/diff"
	"github.com/Victor-armando18/cart-pricing/internal/usecase/runengine"
)

// NewRepricer wires the reprice use case with the JSON patcher and the
// per-phase ledger differ.
func NewRepricer(pricer PricingFacade) *runengine.UseCase {
	return &runengine.UseCase{
		Pricer:  pricer,
		Patcher: infrastructure.CartPatcher{},
		Differ:  &diff.Differ{},
	}
}

func Reprice(ctx context.Context, pricer PricingFacade, req domain.PricingRequest, patch []byte) (*domain.RepriceResult, error) {
	return NewRepricer(pricer).Run(ctx, req, patch)
}
