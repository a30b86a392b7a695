package condition

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// Rule is a JsonLogic expression gating a dynamic condition.
type Rule = map[string]any

// Condition is a single pricing adjustment (discount, tax, fee, shipping...)
// addressed by a target. It is immutable once built.
type Condition struct {
	name       string
	typ        string
	target     target.Target
	value      Value
	attributes map[string]any
	order      int
	rules      []Rule
}

type Option func(*Condition)

func WithOrder(order int) Option {
	return func(c *Condition) { c.order = order }
}

func WithAttributes(attributes map[string]any) Option {
	return func(c *Condition) {
		if len(attributes) > 0 {
			c.attributes = maps.Clone(attributes)
		}
	}
}

// WithRules marks the condition as dynamic.
func WithRules(rules ...Rule) Option {
	return func(c *Condition) {
		if len(rules) > 0 {
			c.rules = append([]Rule(nil), rules...)
		}
	}
}

// New builds a condition. tgt accepts a target.Target, a DSL string or the
// structured map form.
func New(name, typ string, tgt any, value string, opts ...Option) (*Condition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &target.ConfigurationError{Reason: "condition name cannot be empty"}
	}
	t, err := target.From(tgt)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", name, err)
	}
	v, err := ParseValue(value)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", name, err)
	}

	c := &Condition{name: name, typ: typ, target: t, value: v}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func MustNew(name, typ string, tgt any, value string, opts ...Option) *Condition {
	c, err := New(name, typ, tgt, value, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Condition) Name() string          { return c.name }
func (c *Condition) Type() string          { return c.typ }
func (c *Condition) Target() target.Target { return c.target }
func (c *Condition) Value() string         { return c.value.Raw }
func (c *Condition) ParsedValue() Value    { return c.value }
func (c *Condition) Order() int            { return c.order }
func (c *Condition) Operator() string      { return c.value.Operator() }
func (c *Condition) IsDiscount() bool      { return c.value.IsDiscount() }
func (c *Condition) IsCharge() bool        { return c.value.IsCharge() }
func (c *Condition) IsPercentage() bool    { return c.value.IsPercentage() }
func (c *Condition) IsDynamic() bool       { return len(c.rules) > 0 }

func (c *Condition) Attributes() map[string]any { return maps.Clone(c.attributes) }

func (c *Condition) Attribute(key string) (any, bool) {
	v, ok := c.attributes[key]
	return v, ok
}

func (c *Condition) HasAttribute(key string) bool {
	_, ok := c.attributes[key]
	return ok
}

func (c *Condition) Rules() []Rule { return append([]Rule(nil), c.rules...) }

// Apply returns base adjusted by this condition.
func (c *Condition) Apply(base float64) float64 { return c.value.Apply(base) }

// CalculatedValue is the signed delta Apply adds to base.
func (c *Condition) CalculatedValue(base float64) float64 { return c.value.Delta(base) }

// Definition returns the persisted shape of the condition.
func (c *Condition) Definition() Definition {
	t := c.target
	return Definition{
		Name:             c.name,
		Type:             c.typ,
		Target:           t.DSL(),
		TargetDefinition: &t,
		Value:            c.value.Raw,
		Operator:         c.Operator(),
		IsCharge:         c.IsCharge(),
		IsDiscount:       c.IsDiscount(),
		IsPercentage:     c.IsPercentage(),
		IsDynamic:        c.IsDynamic(),
		ParsedValue:      c.value.Signed().InexactFloat64(),
		Order:            c.order,
		Attributes:       c.Attributes(),
		Rules:            c.Rules(),
	}
}

func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Definition())
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := FromDefinition(d)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

func (c *Condition) String() string {
	return fmt.Sprintf("%s(%s %s @ %s)", c.name, c.typ, c.value.Raw, c.target.DSL())
}
