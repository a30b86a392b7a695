// Package metrics exposes pricing runs to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// Observer records pricing runs on its own registry.
type Observer struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	duration   prometheus.Histogram
	adjustment *prometheus.CounterVec
	skipped    prometheus.Counter
}

func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_pricing_runs_total",
			Help: "Pricing runs by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cart_pricing_duration_seconds",
			Help:    "Time spent pricing one cart",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		adjustment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_pricing_phase_adjustments_total",
			Help: "Phases that changed the running amount",
		}, []string{"phase"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_pricing_skipped_conditions_total",
			Help: "Dynamic conditions left out because their rules did not hold",
		}),
	}
	o.registry.MustRegister(o.runs, o.duration, o.adjustment, o.skipped)
	return o
}

func (o *Observer) ObservePricing(result *domain.PricingResult, elapsed time.Duration, err error) {
	o.duration.Observe(elapsed.Seconds())
	if err != nil {
		o.runs.WithLabelValues(outcome(err)).Inc()
		return
	}
	o.runs.WithLabelValues("ok").Inc()
	if result == nil {
		return
	}
	o.skipped.Add(float64(len(result.SkippedConditions)))
	if result.Ledger == nil {
		return
	}
	for _, pr := range result.Ledger.Phases() {
		if pr.Adjustment != 0 {
			o.adjustment.WithLabelValues(string(pr.Phase)).Inc()
		}
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrPackNotFound):
		return "pack_not_found"
	case errors.Is(err, target.ErrParse), errors.Is(err, target.ErrConfiguration):
		return "invalid_condition"
	case errors.Is(err, domain.ErrPipelineExecution):
		return "pipeline_error"
	default:
		return "error"
	}
}

func (o *Observer) Registry() *prometheus.Registry { return o.registry }

// Handler serves the registry in the Prometheus text format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
