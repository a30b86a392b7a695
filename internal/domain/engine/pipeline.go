package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// Pipeline runs every phase in ascending order. It is fully configured at
// construction and never mutated afterwards, so one instance can serve
// concurrent Process calls.
type Pipeline struct {
	phases     []target.Phase
	scopes     []target.Scope
	processors map[target.Phase]PhaseProcessor
	resolvers  map[target.Scope]ScopeResolver
	logger     zerolog.Logger
}

type Option func(*Pipeline)

func WithPhaseProcessor(phase target.Phase, processor PhaseProcessor) Option {
	return func(p *Pipeline) { p.processors[phase] = processor }
}

func WithScopeResolver(scope target.Scope, resolver ScopeResolver) Option {
	return func(p *Pipeline) { p.resolvers[scope] = resolver }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		phases:     target.Phases(),
		scopes:     target.Scopes(),
		processors: make(map[target.Phase]PhaseProcessor),
		resolvers: map[target.Scope]ScopeResolver{
			target.ScopeCart:         NewCartScopeResolver(),
			target.ScopeShipments:    NewShipmentsScopeResolver(),
			target.ScopePayments:     NewPaymentsScopeResolver(),
			target.ScopeFulfillments: NewFulfillmentsScopeResolver(),
		},
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, scope := range p.scopes {
		if _, ok := p.resolvers[scope]; !ok {
			p.resolvers[scope] = NewDefaultScopeResolver(scope)
		}
	}
	return p
}

// Process prices the context through all phases and returns the ledger.
func (p *Pipeline) Process(ctx context.Context, pc *PipelineContext) (*Result, error) {
	conditions := pc.Conditions()
	amount := pc.InitialAmount()
	initial := amount
	results := make([]PhaseResult, 0, len(p.phases))

	for _, phase := range p.phases {
		if err := ctx.Err(); err != nil {
			return nil, &ExecutionError{Phase: phase, Err: err}
		}

		phaseConditions := conditions.ByPhase(phase)
		phaseCtx := PhaseContext{
			Phase:      phase,
			BaseAmount: amount,
			Conditions: phaseConditions,
			Pipeline:   pc,
		}

		final, err := p.resolvePhase(ctx, phaseCtx)
		if err != nil {
			return nil, err
		}

		results = append(results, PhaseResult{
			Phase:             phase,
			BaseAmount:        amount,
			FinalAmount:       final,
			Adjustment:        final - amount,
			AppliedConditions: phaseConditions.Len(),
		})
		p.logger.Debug().
			Str("phase", string(phase)).
			Float64("base", amount).
			Float64("final", final).
			Int("conditions", phaseConditions.Len()).
			Msg("phase resolved")

		amount = final
	}

	return NewResult(initial, amount, results), nil
}

func (p *Pipeline) resolvePhase(ctx context.Context, phase PhaseContext) (float64, error) {
	if processor, ok := p.processors[phase.Phase]; ok {
		final, err := processor(ctx, phase)
		if err != nil {
			return 0, &ExecutionError{Phase: phase.Phase, Err: err}
		}
		return final, nil
	}
	if phase.IsEmpty() {
		return phase.BaseAmount, nil
	}
	return p.applyScopes(ctx, phase)
}

// applyScopes threads the running amount through each scope in declaration
// order.
func (p *Pipeline) applyScopes(ctx context.Context, phase PhaseContext) (float64, error) {
	groups := phase.Conditions.GroupByScope()
	amount := phase.BaseAmount

	for _, scope := range p.scopes {
		scoped, ok := groups.Get(string(scope))
		if !ok || scoped.IsEmpty() {
			continue
		}
		resolver := p.resolvers[scope]
		if !resolver.Supports(scope) {
			return 0, &ExecutionError{Phase: phase.Phase, Scope: scope, Err: fmt.Errorf("resolver %T does not support scope", resolver)}
		}
		next, err := resolver.Resolve(ctx, phase, scope, scoped, amount)
		if err != nil {
			return 0, &ExecutionError{Phase: phase.Phase, Scope: scope, Err: err}
		}
		amount = next
	}
	return amount, nil
}

// Price is a shortcut for Process with a fresh context over source.
func (p *Pipeline) Price(ctx context.Context, source DataSource, conditions *condition.Collection) (*Result, error) {
	var opts []ContextOption
	if conditions != nil {
		opts = append(opts, WithConditions(conditions))
	}
	return p.Process(ctx, NewPipelineContext(source, opts...))
}
