package target

import (
	"regexp"
	"strings"
)

// Operator alternatives are ordered so that longer tokens win (">=" before ">",
// "not-in" before "in").
var filterTokenPattern = regexp.MustCompile(
	`(?i)^([A-Za-z0-9_.-]+)\s*(not-in|not_in|>=|<=|!=|=|>|<|in|!~|~|starts_with|ends_with)\s*(.+)$`,
)

// Parse reads a target DSL string. It never returns a partially parsed target.
func Parse(dsl string) (Target, error) {
	dsl = strings.TrimSpace(dsl)
	if dsl == "" {
		return Target{}, parseErrorf("", "target DSL cannot be empty")
	}

	scopeSegment, rest, err := splitOnce(dsl, "@")
	if err != nil {
		return Target{}, err
	}
	phaseToken, applicationSegment, err := splitOnce(rest, "/")
	if err != nil {
		return Target{}, err
	}

	scope, filters, err := parseScopeSegment(scopeSegment)
	if err != nil {
		return Target{}, err
	}

	applicationToken, preset, _ := strings.Cut(applicationSegment, "#")
	application, err := ParseApplication(applicationToken)
	if err != nil {
		return Target{}, err
	}
	phase, err := ParsePhase(phaseToken)
	if err != nil {
		return Target{}, err
	}

	t := Target{Scope: scope, Phase: phase, Application: application}
	if len(filters) > 0 || preset != "" {
		t.Selector = &Selector{Filters: filters}
		if preset != "" {
			t.Selector.Grouping = GroupingPreset(preset)
		}
	}
	return t, nil
}

// MustParse is Parse for package-level literals; it panics on error.
func MustParse(dsl string) Target {
	t, err := Parse(dsl)
	if err != nil {
		panic(err)
	}
	return t
}

func parseScopeSegment(segment string) (Scope, []Filter, error) {
	if segment == "" {
		return "", nil, parseErrorf(segment, "scope segment is required in target DSL")
	}
	name, filterSegment, hasFilters := strings.Cut(segment, ":")
	scope, err := ParseScope(name)
	if err != nil {
		return "", nil, err
	}
	if !hasFilters {
		return scope, nil, nil
	}
	filters, err := parseFilters(filterSegment)
	if err != nil {
		return "", nil, err
	}
	return scope, filters, nil
}

func parseFilters(segment string) ([]Filter, error) {
	var filters []Filter
	for _, token := range strings.Split(segment, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		f, err := parseFilterToken(token)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseFilterToken(token string) (Filter, error) {
	m := filterTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return Filter{}, parseErrorf(token, "unable to parse filter token")
	}
	op, err := ParseFilterOperator(m[2])
	if err != nil {
		return Filter{}, err
	}
	value, err := parseValueToken(m[3], op)
	if err != nil {
		return Filter{}, err
	}
	f, err := NewFilter(strings.TrimSpace(m[1]), op, value)
	if err != nil {
		return Filter{}, parseErrorf(token, "%v", err)
	}
	return f, nil
}

func splitOnce(value, sep string) (string, string, error) {
	before, after, found := strings.Cut(value, sep)
	if !found {
		return "", "", parseErrorf(value, "malformed target segment, missing %q", sep)
	}
	return before, after, nil
}
