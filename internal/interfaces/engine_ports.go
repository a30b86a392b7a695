package interfaces

import (
	"context"
	"time"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
)

var ErrRuleExecutionFailed = domain.ErrRuleExecutionFailed

// ConditionPackLoader loads versioned condition packs (disk, network...).
// An empty version or "latest" selects the highest available version.
type ConditionPackLoader interface {
	Load(ctx context.Context, version string) (*domain.ConditionPack, error)
}

// RuleEvaluator runs a JsonLogic rule against a set of facts.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, rule map[string]any, facts map[string]any) (any, error)
	RegisterCustomOperator(name string, logic func(args ...any) any)
}

// ConditionStore keeps the conditions attached to a cart. Load returns an
// empty slice for an unknown cart.
type ConditionStore interface {
	Save(ctx context.Context, cartID string, conditions []condition.Definition) error
	Load(ctx context.Context, cartID string) ([]condition.Definition, error)
	Delete(ctx context.Context, cartID string) error
}

// PricingObserver is notified after every pricing run, failed or not.
type PricingObserver interface {
	ObservePricing(result *domain.PricingResult, elapsed time.Duration, err error)
}

// PricingFacade is the entry point exposed to the outside world.
type PricingFacade interface {
	Price(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error)
}
