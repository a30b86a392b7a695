package engine

import (
	"context"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
)

// EntriesFunc fetches a dataset on demand, e.g. from a shipping service.
type EntriesFunc func(ctx context.Context) ([]model.AmountEntry, error)

// CartSource adapts a model.Cart to a DataSource. Datasets stored on the
// cart, or registered with the With*Resolver options, are exposed to the
// matching scope resolvers.
type CartSource struct {
	cart         model.Cart
	conditions   *condition.Collection
	shipments    EntriesFunc
	payments     EntriesFunc
	fulfillments EntriesFunc
}

type CartSourceOption func(*CartSource)

func WithShipmentsResolver(fn EntriesFunc) CartSourceOption {
	return func(s *CartSource) { s.shipments = fn }
}

func WithPaymentsResolver(fn EntriesFunc) CartSourceOption {
	return func(s *CartSource) { s.payments = fn }
}

func WithFulfillmentsResolver(fn EntriesFunc) CartSourceOption {
	return func(s *CartSource) { s.fulfillments = fn }
}

func NewCartSource(cart model.Cart, conditions *condition.Collection, opts ...CartSourceOption) *CartSource {
	if conditions == nil {
		conditions = condition.NewCollection()
	}
	s := &CartSource{cart: cart, conditions: conditions}
	if len(cart.Shipments) > 0 {
		s.shipments = staticEntries(cart.Shipments)
	}
	if len(cart.Payments) > 0 {
		s.payments = staticEntries(cart.Payments)
	}
	if len(cart.Fulfillments) > 0 {
		s.fulfillments = staticEntries(cart.Fulfillments)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func staticEntries(entries []model.Entry) EntriesFunc {
	converted := model.Entries(entries)
	return func(context.Context) ([]model.AmountEntry, error) { return converted, nil }
}

func (s *CartSource) Cart() model.Cart                  { return s.cart }
func (s *CartSource) Conditions() *condition.Collection { return s.conditions }
func (s *CartSource) ItemsSubtotal() float64            { return s.cart.ItemsSubtotal() }

func (s *CartSource) HasShipmentsResolver() bool    { return s.shipments != nil }
func (s *CartSource) HasPaymentsResolver() bool     { return s.payments != nil }
func (s *CartSource) HasFulfillmentsResolver() bool { return s.fulfillments != nil }

func (s *CartSource) Shipments(ctx context.Context) ([]model.AmountEntry, error) {
	return fetch(ctx, s.shipments)
}

func (s *CartSource) Payments(ctx context.Context) ([]model.AmountEntry, error) {
	return fetch(ctx, s.payments)
}

func (s *CartSource) Fulfillments(ctx context.Context) ([]model.AmountEntry, error) {
	return fetch(ctx, s.fulfillments)
}

func fetch(ctx context.Context, fn EntriesFunc) ([]model.AmountEntry, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}
