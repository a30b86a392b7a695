package target

import (
	"fmt"
	"strings"
)

// Selector refines a scope with ordered filters and an optional grouping.
type Selector struct {
	Filters  []Filter  `json:"filters" yaml:"filters"`
	Grouping *Grouping `json:"grouping,omitempty" yaml:"grouping,omitempty"`
}

// IsEmpty is true when the selector carries neither filters nor a grouping.
func (s *Selector) IsEmpty() bool {
	return s == nil || (len(s.Filters) == 0 && s.Grouping == nil)
}

// DSLFilters joins the filter tokens with ';'. It returns "" when there are no filters.
func (s *Selector) DSLFilters() string {
	if s == nil || len(s.Filters) == 0 {
		return ""
	}
	tokens := make([]string, len(s.Filters))
	for i, f := range s.Filters {
		tokens[i] = f.DSLToken()
	}
	return strings.Join(tokens, ";")
}

// SelectorFromMap reads {filters: [...], grouping: {...}}.
func SelectorFromMap(data map[string]any) (*Selector, error) {
	sel := &Selector{}
	if raw, ok := data["filters"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, configErrorf("selector filters must be a list")
		}
		for i, item := range list {
			m, ok := asMap(item)
			if !ok {
				return nil, configErrorf("selector filter %d must be an object", i)
			}
			f, err := FilterFromMap(m)
			if err != nil {
				return nil, fmt.Errorf("filter %d: %w", i, err)
			}
			sel.Filters = append(sel.Filters, f)
		}
	}
	if raw, ok := data["grouping"]; ok && raw != nil {
		m, ok := asMap(raw)
		if !ok {
			return nil, configErrorf("selector grouping must be an object")
		}
		g, err := GroupingFromMap(m)
		if err != nil {
			return nil, err
		}
		sel.Grouping = g
	}
	return sel, nil
}

func (s *Selector) toMap() map[string]any {
	filters := make([]any, len(s.Filters))
	for i, f := range s.Filters {
		filters[i] = f.toMap()
	}
	out := map[string]any{"filters": filters}
	if s.Grouping != nil {
		out["grouping"] = s.Grouping.toMap()
	}
	return out
}
