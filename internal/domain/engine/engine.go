package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// ErrPipelineExecution wraps every failure raised while a pipeline runs.
var ErrPipelineExecution = errors.New("pipeline execution failed")

// PhaseProcessor replaces scope resolution for one phase. Its return value is
// taken verbatim as the phase's final amount.
type PhaseProcessor func(ctx context.Context, phase PhaseContext) (float64, error)

type ExecutionError struct {
	Phase target.Phase
	Scope target.Scope
	Err   error
}

func (e *ExecutionError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("%v: phase %s: %v", ErrPipelineExecution, e.Phase, e.Err)
	}
	return fmt.Sprintf("%v: phase %s, scope %s: %v", ErrPipelineExecution, e.Phase, e.Scope, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *ExecutionError) Unwrap() []error { return []error{ErrPipelineExecution, e.Err} }
