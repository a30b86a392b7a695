package engine

import (
	"context"
	"sync"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// DataSource is the cart-like input of a pipeline run.
type DataSource interface {
	Conditions() *condition.Collection
	ItemsSubtotal() float64
}

// ShipmentSource, PaymentSource and FulfillmentSource are optional
// capabilities of a DataSource.
type ShipmentSource interface {
	HasShipmentsResolver() bool
	Shipments(ctx context.Context) ([]model.AmountEntry, error)
}

type PaymentSource interface {
	HasPaymentsResolver() bool
	Payments(ctx context.Context) ([]model.AmountEntry, error)
}

type FulfillmentSource interface {
	HasFulfillmentsResolver() bool
	Fulfillments(ctx context.Context) ([]model.AmountEntry, error)
}

// PipelineContext binds one run to its data source. It is not shared
// between runs.
type PipelineContext struct {
	source     DataSource
	conditions *condition.Collection

	initialOnce     sync.Once
	initialOverride *float64
	initial         float64
}

type ContextOption func(*PipelineContext)

// WithConditions overrides the conditions of the data source.
func WithConditions(conditions *condition.Collection) ContextOption {
	return func(p *PipelineContext) { p.conditions = conditions }
}

// WithInitialAmount overrides the items subtotal as starting amount.
func WithInitialAmount(amount float64) ContextOption {
	return func(p *PipelineContext) { p.initialOverride = &amount }
}

func NewPipelineContext(source DataSource, opts ...ContextOption) *PipelineContext {
	p := &PipelineContext{source: source}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PipelineContext) Source() DataSource { return p.source }

func (p *PipelineContext) Conditions() *condition.Collection {
	if p.conditions != nil {
		return p.conditions
	}
	if p.source != nil {
		if c := p.source.Conditions(); c != nil {
			return c
		}
	}
	return condition.NewCollection()
}

// InitialAmount is computed once per context.
func (p *PipelineContext) InitialAmount() float64 {
	p.initialOnce.Do(func() {
		switch {
		case p.initialOverride != nil:
			p.initial = *p.initialOverride
		case p.source != nil:
			p.initial = p.source.ItemsSubtotal()
		}
	})
	return p.initial
}

func (p *PipelineContext) HasShipmentsResolver() bool {
	s, ok := p.source.(ShipmentSource)
	return ok && s.HasShipmentsResolver()
}

func (p *PipelineContext) Shipments(ctx context.Context) ([]model.AmountEntry, error) {
	if !p.HasShipmentsResolver() {
		return nil, nil
	}
	return p.source.(ShipmentSource).Shipments(ctx)
}

func (p *PipelineContext) HasPaymentsResolver() bool {
	s, ok := p.source.(PaymentSource)
	return ok && s.HasPaymentsResolver()
}

func (p *PipelineContext) Payments(ctx context.Context) ([]model.AmountEntry, error) {
	if !p.HasPaymentsResolver() {
		return nil, nil
	}
	return p.source.(PaymentSource).Payments(ctx)
}

func (p *PipelineContext) HasFulfillmentsResolver() bool {
	s, ok := p.source.(FulfillmentSource)
	return ok && s.HasFulfillmentsResolver()
}

func (p *PipelineContext) Fulfillments(ctx context.Context) ([]model.AmountEntry, error) {
	if !p.HasFulfillmentsResolver() {
		return nil, nil
	}
	return p.source.(FulfillmentSource).Fulfillments(ctx)
}

// PhaseContext is the read-only view of one phase.
type PhaseContext struct {
	Phase      target.Phase
	BaseAmount float64
	Conditions *condition.Collection
	Pipeline   *PipelineContext
}

func (p PhaseContext) IsEmpty() bool { return p.Conditions.IsEmpty() }
