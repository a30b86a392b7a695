package target

import "strings"

// FilterOperator compares a selector field against a value.
type FilterOperator string

const (
	OpEqual       FilterOperator = "="
	OpNotEqual    FilterOperator = "!="
	OpGreater     FilterOperator = ">"
	OpGreaterEq   FilterOperator = ">="
	OpLess        FilterOperator = "<"
	OpLessEq      FilterOperator = "<="
	OpIn          FilterOperator = "in"
	OpNotIn       FilterOperator = "not-in"
	OpContains    FilterOperator = "~"
	OpNotContains FilterOperator = "!~"
	OpStartsWith  FilterOperator = "starts_with"
	OpEndsWith    FilterOperator = "ends_with"
)

var operatorAliases = map[string]FilterOperator{
	"=":            OpEqual,
	"eq":           OpEqual,
	"!=":           OpNotEqual,
	"<>":           OpNotEqual,
	"neq":          OpNotEqual,
	">":            OpGreater,
	">=":           OpGreaterEq,
	"<":            OpLess,
	"<=":           OpLessEq,
	"in":           OpIn,
	"not-in":       OpNotIn,
	"~":            OpContains,
	"contains":     OpContains,
	"!~":           OpNotContains,
	"not-contains": OpNotContains,
	"starts-with":  OpStartsWith,
	"ends-with":    OpEndsWith,
}

// ParseFilterOperator resolves an operator token or one of its word aliases.
// Spaces, double underscores and underscores all fold to hyphens first.
func ParseFilterOperator(s string) (FilterOperator, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "-", "__", "-").Replace(normalized)
	normalized = strings.ReplaceAll(normalized, "_", "-")

	op, ok := operatorAliases[normalized]
	if !ok {
		return "", parseErrorf(s, "unknown filter operator")
	}
	return op, nil
}

// DSLToken is the spelling used when the operator is written into a target DSL string.
func (o FilterOperator) DSLToken() string { return string(o) }

// RequiresArray reports whether the operator expects a list value.
func (o FilterOperator) RequiresArray() bool {
	return o == OpIn || o == OpNotIn
}

func (o FilterOperator) isWord() bool {
	switch o {
	case OpIn, OpNotIn, OpStartsWith, OpEndsWith:
		return true
	}
	return false
}

func (o FilterOperator) IsValid() bool {
	for _, v := range operatorAliases {
		if v == o {
			return true
		}
	}
	return false
}

func (o FilterOperator) String() string { return string(o) }

func (o FilterOperator) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, configErrorf("cannot marshal unknown filter operator %q", string(o))
	}
	return []byte(o), nil
}

func (o *FilterOperator) UnmarshalText(text []byte) error {
	v, err := ParseFilterOperator(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
