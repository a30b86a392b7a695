package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/interfaces"
)

// DynamicConditionManager decides which rule-gated conditions take part in a
// run. Static conditions always pass; a dynamic one passes only when every
// rule is truthy for the given facts.
type DynamicConditionManager struct {
	evaluator interfaces.RuleEvaluator
	logger    zerolog.Logger
}

func NewDynamicConditionManager(evaluator interfaces.RuleEvaluator, logger zerolog.Logger) *DynamicConditionManager {
	return &DynamicConditionManager{evaluator: evaluator, logger: logger}
}

// Filter splits conditions into the active collection and the names of the
// dynamic conditions left out. A rule that fails to evaluate skips its
// condition; only context cancellation aborts.
func (m *DynamicConditionManager) Filter(ctx context.Context, conditions *condition.Collection, facts map[string]any) (*condition.Collection, []string, error) {
	active := condition.NewCollection()
	var skipped []string

	for _, cond := range conditions.All() {
		if !cond.IsDynamic() {
			active.Add(cond)
			continue
		}
		ok, err := m.holds(ctx, cond, facts)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, nil, err
			}
			m.logger.Warn().Err(err).Str("condition", cond.Name()).Msg("dynamic condition rule failed, skipping")
			skipped = append(skipped, cond.Name())
			continue
		}
		if !ok {
			skipped = append(skipped, cond.Name())
			continue
		}
		active.Add(cond)
	}
	return active, skipped, nil
}

func (m *DynamicConditionManager) holds(ctx context.Context, cond *condition.Condition, facts map[string]any) (bool, error) {
	if m.evaluator == nil {
		return false, errors.New("no rule evaluator configured")
	}
	for _, rule := range cond.Rules() {
		out, err := m.evaluator.Evaluate(ctx, rule, facts)
		if err != nil {
			return false, err
		}
		if !truthy(out) {
			return false, nil
		}
	}
	return true, nil
}

// truthy follows JsonLogic: false, 0, "", null and [] are falsy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	default:
		return true
	}
}
