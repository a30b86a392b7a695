package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/engine"
	"github.com/Victor-armando18/cart-pricing/internal/interfaces"
)

// PricingService prices carts: pack conditions, then stored cart conditions,
// then request conditions, each layer winning by name over the previous one.
type PricingService struct {
	loader          interfaces.ConditionPackLoader
	dynamic         *DynamicConditionManager
	pipeline        *engine.Pipeline
	store           interfaces.ConditionStore
	observer        interfaces.PricingObserver
	logger          zerolog.Logger
	defaultVersion  string
	defaultCurrency string
}

type Option func(*PricingService)

func WithStore(store interfaces.ConditionStore) Option {
	return func(s *PricingService) { s.store = store }
}

func WithObserver(observer interfaces.PricingObserver) Option {
	return func(s *PricingService) { s.observer = observer }
}

func WithPipeline(pipeline *engine.Pipeline) Option {
	return func(s *PricingService) { s.pipeline = pipeline }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *PricingService) { s.logger = logger }
}

// WithDefaultVersion sets the pack version used when a request names none.
func WithDefaultVersion(version string) Option {
	return func(s *PricingService) { s.defaultVersion = version }
}

func WithDefaultCurrency(currency string) Option {
	return func(s *PricingService) { s.defaultCurrency = currency }
}

// NewPricingService builds the service. A nil loader prices with store and
// request conditions only.
func NewPricingService(loader interfaces.ConditionPackLoader, evaluator interfaces.RuleEvaluator, opts ...Option) *PricingService {
	s := &PricingService{
		loader:         loader,
		logger:         log.Logger,
		defaultVersion: "latest",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = engine.NewPipeline(engine.WithLogger(s.logger))
	}
	s.dynamic = NewDynamicConditionManager(evaluator, s.logger)
	return s
}

func (s *PricingService) Price(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error) {
	start := time.Now()
	result, err := s.price(ctx, req)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.ObservePricing(result, elapsed, err)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", req.Cart.ID).Msg("pricing failed")
		return nil, err
	}
	s.logger.Info().
		Str("run_id", result.RunID).
		Str("cart_id", result.CartID).
		Str("pack_version", result.PackVersion).
		Float64("total", result.Total).
		Dur("elapsed", elapsed).
		Msg("cart priced")
	return result, nil
}

func (s *PricingService) price(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error) {
	conditions, packVersion, err := s.collect(ctx, req)
	if err != nil {
		return nil, err
	}

	facts := map[string]any{"cart": req.Cart.ToMap()}
	active, skipped, err := s.dynamic.Filter(ctx, conditions, facts)
	if err != nil {
		return nil, err
	}

	var opts []engine.ContextOption
	if req.InitialAmount != nil {
		opts = append(opts, engine.WithInitialAmount(*req.InitialAmount))
	}
	pc := engine.NewPipelineContext(engine.NewCartSource(req.Cart, active), opts...)

	ledger, err := s.pipeline.Process(ctx, pc)
	if err != nil {
		return nil, err
	}

	currency := req.Cart.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	return &domain.PricingResult{
		RunID:             uuid.NewString(),
		CartID:            req.Cart.ID,
		Currency:          currency,
		PackVersion:       packVersion,
		Subtotal:          ledger.Subtotal(),
		Total:             ledger.Total(),
		Ledger:            ledger,
		AppliedConditions: active.Names(),
		SkippedConditions: skipped,
		Summary:           active.Summary(ledger.InitialAmount),
		ExecutionLog:      executionLog(ledger, active),
	}, nil
}

// collect layers pack, stored and request conditions.
func (s *PricingService) collect(ctx context.Context, req domain.PricingRequest) (*condition.Collection, string, error) {
	conditions := condition.NewCollection()
	var packVersion string

	if s.loader != nil {
		version := req.PackVersion
		if version == "" {
			version = s.defaultVersion
		}
		pack, err := s.loader.Load(ctx, version)
		if err != nil {
			return nil, "", fmt.Errorf("load condition pack: %w", err)
		}
		fromPack, err := condition.FromDefinitions(pack.Conditions)
		if err != nil {
			return nil, "", fmt.Errorf("condition pack %s: %w", pack.Version, err)
		}
		conditions = conditions.Merge(fromPack)
		packVersion = pack.Version
	}

	if s.store != nil && req.Cart.ID != "" {
		defs, err := s.store.Load(ctx, req.Cart.ID)
		if err != nil {
			return nil, "", fmt.Errorf("load cart conditions: %w", err)
		}
		stored, err := condition.FromDefinitions(defs)
		if err != nil {
			return nil, "", fmt.Errorf("cart %s conditions: %w", req.Cart.ID, err)
		}
		conditions = conditions.Merge(stored)
	}

	fromRequest, err := condition.FromDefinitions(req.Conditions)
	if err != nil {
		return nil, "", err
	}
	return conditions.Merge(fromRequest), packVersion, nil
}

func executionLog(ledger *engine.Result, active *condition.Collection) []domain.ExecutionStep {
	phases := ledger.Phases()
	steps := make([]domain.ExecutionStep, 0, len(phases))
	for _, pr := range phases {
		action := "apply"
		if pr.AppliedConditions == 0 {
			action = "skip"
		}
		steps = append(steps, domain.ExecutionStep{
			Phase:      string(pr.Phase),
			Conditions: active.ByPhase(pr.Phase).SortByOrder().Names(),
			Action:     action,
			Message:    fmt.Sprintf("%.2f -> %.2f", pr.BaseAmount, pr.FinalAmount),
		})
	}
	return steps
}
