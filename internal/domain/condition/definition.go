package condition

import (
	"fmt"

	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// Definition is the stored form of a condition. Target keeps the DSL string
// for search; TargetDefinition is the structured form used for execution.
type Definition struct {
	Name             string         `json:"name" yaml:"name"`
	Type             string         `json:"type" yaml:"type"`
	Target           string         `json:"target,omitempty" yaml:"target,omitempty"`
	TargetDefinition *target.Target `json:"target_definition,omitempty" yaml:"target_definition,omitempty"`
	Value            string         `json:"value" yaml:"value"`
	Operator         string         `json:"operator,omitempty" yaml:"operator,omitempty"`
	IsCharge         bool           `json:"is_charge" yaml:"is_charge"`
	IsDiscount       bool           `json:"is_discount" yaml:"is_discount"`
	IsPercentage     bool           `json:"is_percentage" yaml:"is_percentage"`
	IsDynamic        bool           `json:"is_dynamic" yaml:"is_dynamic"`
	ParsedValue      float64        `json:"parsed_value" yaml:"parsed_value"`
	Order            int            `json:"order" yaml:"order"`
	Attributes       map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Rules            []Rule         `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// FromDefinition rebuilds a condition. The structured target wins; when only
// the DSL is stored it is parsed, and when both are present they must agree.
// A stored DSL is only re-parsed when the structured target can round-trip
// through it.
// Derived flags in the definition are ignored and recomputed from Value.
func FromDefinition(d Definition) (*Condition, error) {
	var tgt target.Target
	switch {
	case d.TargetDefinition != nil:
		tgt = *d.TargetDefinition
		if err := tgt.Validate(); err != nil {
			return nil, fmt.Errorf("condition %q: %w", d.Name, err)
		}
		if d.Target != "" && !describes(d.Target, tgt) {
			return nil, &target.ConfigurationError{
				Reason: fmt.Sprintf("condition %q: target %q does not match target_definition %q", d.Name, d.Target, tgt.DSL()),
			}
		}
	case d.Target != "":
		parsed, err := target.Parse(d.Target)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", d.Name, err)
		}
		tgt = parsed
	default:
		return nil, &target.ConfigurationError{Reason: fmt.Sprintf("condition %q has no target", d.Name)}
	}

	return New(d.Name, d.Type, tgt, d.Value,
		WithOrder(d.Order),
		WithAttributes(d.Attributes),
		WithRules(d.Rules...),
	)
}

func describes(dsl string, tgt target.Target) bool {
	if dsl == tgt.DSL() {
		return true
	}
	if !tgt.IsDSLRepresentable() {
		return false
	}
	parsed, err := target.Parse(dsl)
	return err == nil && parsed.DSL() == tgt.DSL()
}
