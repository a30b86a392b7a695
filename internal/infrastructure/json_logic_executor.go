package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/diegoholiveira/jsonlogic/v3"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	customops "github.com/Victor-armando18/cart-pricing/internal/infrastructure/jsonlogic"
)

// JsonLogicEvaluator evaluates condition rules. Custom operators are reduced
// first, anywhere in the rule tree; the rest is handed to the library.
type JsonLogicEvaluator struct {
	mu        sync.RWMutex
	customOps map[string]func(args ...any) any
}

func NewJsonLogicEvaluator() *JsonLogicEvaluator {
	j := &JsonLogicEvaluator{customOps: make(map[string]func(args ...any) any)}
	for name, op := range customops.Operators() {
		j.RegisterCustomOperator(name, op)
	}
	return j
}

func (j *JsonLogicEvaluator) RegisterCustomOperator(name string, logic func(args ...any) any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.customOps[name] = logic
}

func (j *JsonLogicEvaluator) Evaluate(ctx context.Context, rule map[string]any, facts map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reduced, err := j.reduce(ctx, rule, facts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRuleExecutionFailed, err)
	}
	if _, isRule := reduced.(map[string]any); !isRule {
		return reduced, nil
	}

	ruleJSON, err := json.Marshal(reduced)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRuleExecutionFailed, err)
	}
	dataJSON, err := json.Marshal(facts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRuleExecutionFailed, err)
	}

	var resultBuffer bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(ruleJSON), bytes.NewReader(dataJSON), &resultBuffer); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRuleExecutionFailed, err)
	}

	resultStr := strings.TrimSpace(resultBuffer.String())
	if resultStr == "" || resultStr == "null" {
		return nil, nil
	}

	var res any
	decoder := json.NewDecoder(strings.NewReader(resultStr))
	decoder.UseNumber()
	if err := decoder.Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRuleExecutionFailed, err)
	}
	return finalizeValue(res), nil
}

// reduce replaces every custom operator node with its value.
func (j *JsonLogicEvaluator) reduce(ctx context.Context, node any, facts map[string]any) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		if len(v) == 1 {
			for name, args := range v {
				if fn, ok := j.operator(name); ok {
					params, err := j.params(ctx, args, facts)
					if err != nil {
						return nil, err
					}
					return fn(params...), nil
				}
			}
		}
		out := make(map[string]any, len(v))
		for k, child := range v {
			r, err := j.reduce(ctx, child, facts)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			r, err := j.reduce(ctx, child, facts)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return node, nil
}

func (j *JsonLogicEvaluator) operator(name string) (func(args ...any) any, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	fn, ok := j.customOps[name]
	return fn, ok
}

// params resolves operator arguments: vars are read from facts, nested rules
// are evaluated.
func (j *JsonLogicEvaluator) params(ctx context.Context, args any, facts map[string]any) ([]any, error) {
	list, ok := args.([]any)
	if !ok {
		list = []any{args}
	}
	params := make([]any, 0, len(list))
	for _, item := range list {
		sub, isRule := item.(map[string]any)
		if !isRule {
			params = append(params, item)
			continue
		}
		if path, def, isVar := varRef(sub); isVar {
			params = append(params, resolveVar(facts, path, def))
			continue
		}
		res, err := j.Evaluate(ctx, sub, facts)
		if err != nil {
			return nil, err
		}
		params = append(params, res)
	}
	return params, nil
}

func varRef(m map[string]any) (string, any, bool) {
	if len(m) != 1 {
		return "", nil, false
	}
	switch ref := m["var"].(type) {
	case string:
		return ref, nil, true
	case []any:
		if len(ref) == 0 {
			return "", nil, true
		}
		path, _ := ref[0].(string)
		var def any
		if len(ref) > 1 {
			def = ref[1]
		}
		return path, def, true
	}
	return "", nil, false
}

// resolveVar walks a dotted path through maps and lists.
func resolveVar(facts map[string]any, path string, def any) any {
	if path == "" {
		return facts
	}
	var current any = facts
	for _, part := range strings.Split(path, ".") {
		switch c := current.(type) {
		case map[string]any:
			v, ok := c[part]
			if !ok {
				return def
			}
			current = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(c) {
				return def
			}
			current = c[i]
		default:
			return def
		}
	}
	if current == nil {
		return def
	}
	return finalizeValue(current)
}

func finalizeValue(val any) any {
	if n, ok := val.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return val
}
