package target

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Filter narrows a scope to entries whose Field compares to Value via Operator.
// Value is a scalar (string, bool, nil, int, float64) or, for in/not-in, a slice.
type Filter struct {
	Field    string         `json:"field" yaml:"field"`
	Operator FilterOperator `json:"operator" yaml:"operator"`
	Value    any            `json:"value" yaml:"value"`
}

// NewFilter validates the field and the value arity required by the operator.
func NewFilter(field string, op FilterOperator, value any) (Filter, error) {
	if strings.TrimSpace(field) == "" {
		return Filter{}, configErrorf("filter field cannot be empty")
	}
	if !op.IsValid() {
		return Filter{}, configErrorf("unknown filter operator %q", string(op))
	}
	if op.RequiresArray() && !isSlice(value) {
		return Filter{}, configErrorf("operator %s expects an array value", op)
	}
	return Filter{Field: field, Operator: op, Value: value}, nil
}

// FilterFromMap builds a filter from its structured form {field, operator, value}.
func FilterFromMap(data map[string]any) (Filter, error) {
	field, ok := data["field"].(string)
	if !ok {
		return Filter{}, configErrorf("filter field is required")
	}
	rawOp, ok := data["operator"]
	if !ok || rawOp == nil {
		return Filter{}, configErrorf("filter operator is required")
	}
	var op FilterOperator
	switch v := rawOp.(type) {
	case FilterOperator:
		op = v
	case string:
		parsed, err := ParseFilterOperator(v)
		if err != nil {
			return Filter{}, err
		}
		op = parsed
	default:
		return Filter{}, configErrorf("filter operator must be a string")
	}
	return NewFilter(field, op, data["value"])
}

// DSLToken renders the filter as field<op>value. A word operator is padded
// with spaces only when the compact token would read back with another field
// or operator: "skunot-in[a]" parses as field "skunot-" with "in".
func (f Filter) DSLToken() string {
	value := formatValue(f.Value)
	compact := f.Field + f.Operator.DSLToken() + value
	if !f.Operator.isWord() || f.readsBackFrom(compact) {
		return compact
	}
	return f.Field + " " + f.Operator.DSLToken() + " " + value
}

func (f Filter) readsBackFrom(token string) bool {
	parsed, err := parseFilterToken(token)
	return err == nil && parsed.Field == f.Field && parsed.Operator == f.Operator
}

// dslSafe reports whether the filter survives a trip through its DSL token.
// '@' and ';' split the target and filter list, ',' splits list values, and
// only the scalar kinds the parser produces read back unchanged.
func (f Filter) dslSafe() bool {
	if !fieldPattern.MatchString(f.Field) {
		return false
	}
	if !isSlice(f.Value) {
		return scalarDSLSafe(f.Value, "@;")
	}
	rv := reflect.ValueOf(f.Value)
	for i := 0; i < rv.Len(); i++ {
		if !scalarDSLSafe(rv.Index(i).Interface(), "@;,") {
			return false
		}
	}
	return true
}

func scalarDSLSafe(value any, delimiters string) bool {
	switch v := value.(type) {
	case nil, bool, int:
		return true
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case string:
		return !strings.ContainsAny(v, delimiters)
	}
	return false
}

func (f Filter) toMap() map[string]any {
	return map[string]any{
		"field":    f.Field,
		"operator": string(f.Operator),
		"value":    f.Value,
	}
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	parsed, err := FilterFromMap(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

var (
	fieldPattern     = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	bareValuePattern = regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`)
	numericPattern   = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

func formatValue(value any) string {
	if isSlice(value) {
		rv := reflect.ValueOf(value)
		items := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = formatScalar(rv.Index(i).Interface())
		}
		return "[" + strings.Join(items, ",") + "]"
	}
	return formatScalar(value)
}

func formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if v == "" {
			return "''"
		}
		// Strings that would be re-read as another type are quoted.
		if bareValuePattern.MatchString(v) && !castsToNonString(v) {
			return v
		}
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case json.Number:
		return v.String()
	}
	b, err := json.Marshal(value)
	if err != nil {
		return `""`
	}
	return string(b)
}

// formatFloat keeps a decimal point so the value is read back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func castsToNonString(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "null":
		return true
	}
	return numericPattern.MatchString(v)
}

// parseValueToken reads the value part of a filter token. List operators
// require a bracketed list; any other bracketed value is also read as a list.
func parseValueToken(raw string, op FilterOperator) (any, error) {
	raw = strings.TrimSpace(raw)
	bracketed := strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]")

	if op.RequiresArray() && !bracketed {
		return nil, parseErrorf(raw, "operator %s expects a bracketed list value", op)
	}
	if !bracketed {
		return castScalar(raw), nil
	}

	inner := strings.TrimSpace(strings.Trim(raw, "[]"))
	if inner == "" {
		return []any{}, nil
	}
	parts := strings.Split(inner, ",")
	values := make([]any, len(parts))
	for i, p := range parts {
		values[i] = castScalar(p)
	}
	return values, nil
}

func castScalar(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return unescape(value[1 : len(value)-1])
		}
	}

	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}

	if numericPattern.MatchString(value) {
		if !strings.Contains(value, ".") {
			if i, err := strconv.Atoi(value); err == nil {
				return i
			}
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
