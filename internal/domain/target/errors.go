package target

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks failures to read the target DSL or a structured target payload.
	ErrParse = errors.New("target parse error")
	// ErrConfiguration marks structurally invalid filters, groupings or condition values.
	ErrConfiguration = errors.New("invalid condition configuration")
)

// ParseError describes why an input could not be turned into a target component.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%v: %s", ErrParse, e.Reason)
	}
	return fmt.Sprintf("%v: %s [%s]", ErrParse, e.Reason, e.Input)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ConfigurationError is returned when a filter or grouping violates its invariants.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func parseErrorf(input, format string, args ...any) error {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
