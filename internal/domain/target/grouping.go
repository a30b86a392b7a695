package target

import "strings"

// Grouping partitions a scope's entries before a per-group condition applies.
// Either GroupBy or Preset is normally set; only Preset survives the DSL.
type Grouping struct {
	GroupBy     string `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	WeightField string `json:"weight_field,omitempty" yaml:"weight_field,omitempty"`
	Limit       int    `json:"limit,omitempty" yaml:"limit,omitempty"`
	Preset      string `json:"preset,omitempty" yaml:"preset,omitempty"`
}

// NewGrouping builds an explicit group-by grouping. The field must not be blank.
func NewGrouping(groupBy, weightField string, limit int) (*Grouping, error) {
	if strings.TrimSpace(groupBy) == "" {
		return nil, configErrorf("grouping field cannot be empty")
	}
	return &Grouping{GroupBy: groupBy, WeightField: weightField, Limit: limit}, nil
}

// GroupingPreset builds a grouping that refers to a named preset (for example "seller").
func GroupingPreset(preset string) *Grouping {
	return &Grouping{Preset: preset}
}

// GroupingFromMap reads {group_by, weight_field, limit, preset}.
func GroupingFromMap(data map[string]any) (*Grouping, error) {
	g := &Grouping{}
	if v, ok := data["group_by"]; ok && v != nil {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, configErrorf("grouping field cannot be empty")
		}
		g.GroupBy = s
	}
	if v, ok := data["weight_field"].(string); ok {
		g.WeightField = v
	}
	if v, ok := data["preset"].(string); ok {
		g.Preset = v
	}
	switch v := data["limit"].(type) {
	case int:
		g.Limit = v
	case int64:
		g.Limit = int(v)
	case float64:
		g.Limit = int(v)
	}
	return g, nil
}

// IsPresetOnly reports whether the grouping can be written into a DSL string.
func (g *Grouping) IsPresetOnly() bool {
	return g != nil && g.Preset != "" && g.GroupBy == "" && g.WeightField == "" && g.Limit == 0
}

func (g *Grouping) toMap() map[string]any {
	out := map[string]any{}
	if g.GroupBy != "" {
		out["group_by"] = g.GroupBy
	}
	if g.WeightField != "" {
		out["weight_field"] = g.WeightField
	}
	if g.Limit != 0 {
		out["limit"] = g.Limit
	}
	if g.Preset != "" {
		out["preset"] = g.Preset
	}
	return out
}
