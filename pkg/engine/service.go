package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Victor-armando18/cart-pricing/internal/config"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure/metrics"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure/redisstore"
	"github.com/Victor-armando18/cart-pricing/internal/interfaces"
	"github.com/Victor-armando18/cart-pricing/internal/usecase"
	"github.com/Victor-armando18/cart-pricing/internal/usecase/runengine"
)

var (
	_ interfaces.ConditionStore      = (*redisstore.RedisStore)(nil)
	_ interfaces.ConditionStore      = (*redisstore.MemoryStore)(nil)
	_ interfaces.ConditionPackLoader = (*infrastructure.FileConditionPackLoader)(nil)
	_ interfaces.RuleEvaluator       = (*infrastructure.JsonLogicEvaluator)(nil)
	_ interfaces.PricingObserver     = (*metrics.Observer)(nil)
	_ interfaces.PricingFacade       = (*usecase.PricingService)(nil)
)

// Service wires the pricing service from a Config.
type Service struct {
	pricing  *usecase.PricingService
	repricer *runengine.UseCase
	loader   *infrastructure.FileConditionPackLoader
	store    interfaces.ConditionStore
	observer *metrics.Observer
	closers  []func() error
}

type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger zerolog.Logger
	store  interfaces.ConditionStore
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithStore replaces the store chosen from the config.
func WithStore(store interfaces.ConditionStore) ServiceOption {
	return func(o *serviceOptions) { o.store = store }
}

// NewService builds the service: Redis store when an address is configured,
// in-memory store otherwise, Prometheus observer when metrics are enabled.
func NewService(cfg *config.Config, opts ...ServiceOption) *Service {
	o := serviceOptions{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{loader: infrastructure.NewFileConditionPackLoader(cfg.RulesDir)}

	switch {
	case o.store != nil:
		s.store = o.store
	case cfg.RedisAddr != "":
		kv := redisstore.NewGoRedisKV(cfg.RedisAddr)
		s.closers = append(s.closers, kv.Close)
		s.store = redisstore.NewRedisStore(kv, cfg.RedisTTL)
	default:
		s.store = redisstore.NewMemoryStore()
	}

	svcOpts := []usecase.Option{
		usecase.WithLogger(o.logger),
		usecase.WithStore(s.store),
		usecase.WithDefaultVersion(cfg.PackVersion),
		usecase.WithDefaultCurrency(cfg.Currency),
	}
	if cfg.Metrics {
		s.observer = metrics.NewObserver()
		svcOpts = append(svcOpts, usecase.WithObserver(s.observer))
	}

	s.pricing = usecase.NewPricingService(s.loader, infrastructure.NewJsonLogicEvaluator(), svcOpts...)
	s.repricer = interfaces.NewRepricer(s.pricing)
	return s
}

func (s *Service) Price(ctx context.Context, req Request) (*Result, error) {
	return s.pricing.Price(ctx, req)
}

// Reprice applies an RFC 6902 patch to the cart and prices both versions.
func (s *Service) Reprice(ctx context.Context, req Request, patch []byte) (*RepriceResult, error) {
	return s.repricer.Run(ctx, req, patch)
}

func (s *Service) LoadPack(ctx context.Context, version string) (*ConditionPack, error) {
	return s.loader.Load(ctx, version)
}

// PackVersions lists the packs on disk, highest first.
func (s *Service) PackVersions() ([]string, error) { return s.loader.Versions() }

func (s *Service) Store() interfaces.ConditionStore { return s.store }

// MetricsHandler is nil when metrics are disabled.
func (s *Service) MetricsHandler() http.Handler {
	if s.observer == nil {
		return nil
	}
	return s.observer.Handler()
}

func (s *Service) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PriceWithTimeout bounds one pricing run.
func (s *Service) PriceWithTimeout(ctx context.Context, req Request, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Price(ctx, req)
}
