package engine

import (
	"context"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// ScopeResolver turns the conditions of one scope into a new running amount.
type ScopeResolver interface {
	Supports(scope target.Scope) bool
	Resolve(ctx context.Context, phase PhaseContext, scope target.Scope, conditions *condition.Collection, current float64) (float64, error)
}

// DefaultScopeResolver folds the conditions over the running amount. It is
// used for scopes without an external dataset.
type DefaultScopeResolver struct {
	Scope target.Scope
}

func NewDefaultScopeResolver(scope target.Scope) DefaultScopeResolver {
	return DefaultScopeResolver{Scope: scope}
}

func (r DefaultScopeResolver) Supports(scope target.Scope) bool {
	return r.Scope == "" || r.Scope == scope
}

func (r DefaultScopeResolver) Resolve(_ context.Context, _ PhaseContext, _ target.Scope, conditions *condition.Collection, current float64) (float64, error) {
	return conditions.ApplyAll(current), nil
}
