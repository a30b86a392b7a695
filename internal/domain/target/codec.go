package target

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalJSON writes the structured form; it is the authoritative representation.
func (t Target) MarshalJSON() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(t.ToMap())
}

// UnmarshalJSON accepts either a DSL string or the structured object.
func (t *Target) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var dsl string
		if err := json.Unmarshal(data, &dsl); err != nil {
			return err
		}
		parsed, err := Parse(dsl)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML writes the DSL string when it is lossless and the structured form otherwise.
func (t Target) MarshalYAML() (any, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.IsDSLRepresentable() {
		return t.DSL(), nil
	}
	return t.ToMap(), nil
}

func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := Parse(node.Value)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// decodeObject decodes a JSON object keeping integers as int.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Input: string(data), Reason: err.Error()}
	}
	normalized, _ := normalizeNumbers(raw).(map[string]any)
	return normalized, nil
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}
		return val
	}
	return v
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	}
	return nil, false
}
