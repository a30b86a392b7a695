package target

import "errors"

// Builder assembles a Target step by step. Errors from Where or GroupBy are
// collected and reported by Build.
type Builder struct {
	scope       Scope
	phase       Phase
	application Application
	filters     []Filter
	grouping    *Grouping
	meta        map[string]any
	errs        []error
}

func newBuilder(scope Scope, phase Phase, application Application) *Builder {
	return &Builder{scope: scope, phase: phase, application: application}
}

// Items starts an items@item_discount/per-item target.
func Items() *Builder { return newBuilder(ScopeItems, PhaseItemDiscount, ApplicationPerItem) }

// Cart starts a cart@cart_subtotal/aggregate target.
func Cart() *Builder { return newBuilder(ScopeCart, PhaseCartSubtotal, ApplicationAggregate) }

// Shipments starts a shipments@shipping/per-group target.
func Shipments() *Builder { return newBuilder(ScopeShipments, PhaseShipping, ApplicationPerGroup) }

// Payments starts a payments@payment/per-payment target.
func Payments() *Builder { return newBuilder(ScopePayments, PhasePayment, ApplicationPerPayment) }

// Fulfillments starts a fulfillments@shipping/per-group target.
func Fulfillments() *Builder {
	return newBuilder(ScopeFulfillments, PhaseShipping, ApplicationPerGroup)
}

// Custom starts a custom@custom/aggregate target.
func Custom() *Builder { return newBuilder(ScopeCustom, PhaseCustom, ApplicationAggregate) }

func (b *Builder) Phase(p Phase) *Builder {
	b.phase = p
	return b
}

func (b *Builder) Apply(a Application) *Builder {
	b.application = a
	return b
}

func (b *Builder) ApplyPerItem() *Builder    { return b.Apply(ApplicationPerItem) }
func (b *Builder) ApplyAggregate() *Builder  { return b.Apply(ApplicationAggregate) }
func (b *Builder) ApplyPerUnit() *Builder    { return b.Apply(ApplicationPerUnit) }
func (b *Builder) ApplyPerGroup() *Builder   { return b.Apply(ApplicationPerGroup) }
func (b *Builder) ApplyPerPayment() *Builder { return b.Apply(ApplicationPerPayment) }

// Where adds a filter. The operator may be a FilterOperator constant or any
// accepted token such as "eq" or "not_in".
func (b *Builder) Where(field string, operator FilterOperator, value any) *Builder {
	op, err := ParseFilterOperator(string(operator))
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	f, err := NewFilter(field, op, value)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.filters = append(b.filters, f)
	return b
}

// WhereAttribute filters on attributes.<name>.
func (b *Builder) WhereAttribute(attribute string, operator FilterOperator, value any) *Builder {
	return b.Where("attributes."+attribute, operator, value)
}

// GroupBy sets an explicit grouping; an empty field clears any grouping.
func (b *Builder) GroupBy(field, weightField string, limit int) *Builder {
	if field == "" {
		b.grouping = nil
		return b
	}
	g, err := NewGrouping(field, weightField, limit)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.grouping = g
	return b
}

func (b *Builder) GroupingPreset(preset string) *Builder {
	b.grouping = GroupingPreset(preset)
	return b
}

func (b *Builder) WithMeta(meta map[string]any) *Builder {
	if b.meta == nil {
		b.meta = make(map[string]any, len(meta))
	}
	for k, v := range meta {
		b.meta[k] = v
	}
	return b
}

// Build returns the immutable target. The builder may be reused afterwards.
func (b *Builder) Build() (Target, error) {
	if len(b.errs) > 0 {
		return Target{}, errors.Join(b.errs...)
	}
	t := Target{Scope: b.scope, Phase: b.phase, Application: b.application}
	if len(b.filters) > 0 || b.grouping != nil {
		sel := &Selector{Grouping: b.grouping}
		if len(b.filters) > 0 {
			sel.Filters = append([]Filter(nil), b.filters...)
		}
		t.Selector = sel
	}
	if len(b.meta) > 0 {
		t.Meta = make(map[string]any, len(b.meta))
		for k, v := range b.meta {
			t.Meta[k] = v
		}
	}
	return t, t.Validate()
}

// MustBuild is Build for static definitions; it panics on error.
func (b *Builder) MustBuild() Target {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
