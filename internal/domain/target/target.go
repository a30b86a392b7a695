package target

import (
	"fmt"
	"reflect"
	"strings"
)

// Target addresses where and how a condition applies. Its canonical text form is
//
//	scope[:filter1;filter2;...]@phase/application[#groupingPreset]
type Target struct {
	Scope       Scope
	Phase       Phase
	Application Application
	Selector    *Selector
	Meta        map[string]any
}

// DSL renders the canonical string. Explicit group-by groupings and meta are
// not part of the DSL; see IsDSLRepresentable.
func (t Target) DSL() string {
	var b strings.Builder
	b.WriteString(string(t.Scope))
	if filters := t.Selector.DSLFilters(); filters != "" {
		b.WriteByte(':')
		b.WriteString(filters)
	}
	b.WriteByte('@')
	b.WriteString(string(t.Phase))
	b.WriteByte('/')
	b.WriteString(string(t.Application))
	if t.Selector != nil && t.Selector.Grouping != nil && t.Selector.Grouping.Preset != "" {
		b.WriteByte('#')
		b.WriteString(t.Selector.Grouping.Preset)
	}
	return b.String()
}

func (t Target) String() string { return t.DSL() }

// IsDSLRepresentable reports whether Parse(t.DSL()) reproduces t exactly.
func (t Target) IsDSLRepresentable() bool {
	if len(t.Meta) > 0 {
		return false
	}
	if t.Selector == nil {
		return true
	}
	for _, f := range t.Selector.Filters {
		if !f.dslSafe() {
			return false
		}
	}
	return t.Selector.Grouping == nil || t.Selector.Grouping.IsPresetOnly()
}

// With returns a copy whose meta is merged with the given entries.
func (t Target) With(meta map[string]any) Target {
	merged := make(map[string]any, len(t.Meta)+len(meta))
	for k, v := range t.Meta {
		merged[k] = v
	}
	for k, v := range meta {
		merged[k] = v
	}
	t.Meta = merged
	return t
}

func (t Target) Equal(other Target) bool {
	return reflect.DeepEqual(t, other)
}

// Validate checks that every enum field holds a known value.
func (t Target) Validate() error {
	if !t.Scope.IsValid() {
		return parseErrorf(string(t.Scope), "unknown condition scope")
	}
	if !t.Phase.IsValid() {
		return parseErrorf(string(t.Phase), "unknown condition phase")
	}
	if !t.Application.IsValid() {
		return parseErrorf(string(t.Application), "unknown condition application")
	}
	return nil
}

// From normalizes the accepted target inputs: a Target, a *Target, a DSL
// string or a structured map.
func From(v any) (Target, error) {
	switch t := v.(type) {
	case Target:
		return t, t.Validate()
	case *Target:
		if t == nil {
			return Target{}, parseErrorf("", "target cannot be nil")
		}
		return *t, t.Validate()
	case string:
		return Parse(t)
	case map[string]any:
		return FromMap(t)
	}
	if m, ok := asMap(v); ok {
		return FromMap(m)
	}
	return Target{}, parseErrorf(fmt.Sprintf("%T", v), "unable to build condition target")
}

// FromMap reads the structured form {scope, phase, application, selector?, meta?}.
func FromMap(data map[string]any) (Target, error) {
	scopeRaw, phaseRaw, appRaw := data["scope"], data["phase"], data["application"]
	if scopeRaw == nil || phaseRaw == nil || appRaw == nil {
		return Target{}, parseErrorf("", "target requires scope, phase and application values")
	}

	var t Target
	var err error
	if t.Scope, err = ParseScope(fmt.Sprint(scopeRaw)); err != nil {
		return Target{}, err
	}
	if t.Phase, err = ParsePhase(fmt.Sprint(phaseRaw)); err != nil {
		return Target{}, err
	}
	if t.Application, err = ParseApplication(fmt.Sprint(appRaw)); err != nil {
		return Target{}, err
	}

	switch sel := data["selector"].(type) {
	case nil:
	case *Selector:
		t.Selector = sel
	case Selector:
		t.Selector = &sel
	default:
		m, ok := asMap(sel)
		if !ok {
			return Target{}, configErrorf("selector must be an object")
		}
		if t.Selector, err = SelectorFromMap(m); err != nil {
			return Target{}, err
		}
	}
	if t.Selector.IsEmpty() {
		t.Selector = nil
	}

	if meta, ok := asMap(data["meta"]); ok && len(meta) > 0 {
		t.Meta = meta
	}
	return t, nil
}

// ToMap returns the structured form used for storage and JSON.
func (t Target) ToMap() map[string]any {
	out := map[string]any{
		"scope":       string(t.Scope),
		"phase":       string(t.Phase),
		"application": string(t.Application),
	}
	if t.Selector != nil {
		out["selector"] = t.Selector.toMap()
	}
	if len(t.Meta) > 0 {
		out["meta"] = t.Meta
	}
	return out
}
