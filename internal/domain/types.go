package domain

import (
	"encoding/json"
	"errors"

	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/engine"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// --- Input/output ---

// PricingRequest is one cart to price. Conditions are merged over the pack
// and the stored cart conditions; request conditions win by name.
type PricingRequest struct {
	Cart          model.Cart             `json:"cart" yaml:"cart"`
	Conditions    []condition.Definition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	PackVersion   string                 `json:"pack_version,omitempty" yaml:"pack_version,omitempty"`
	InitialAmount *float64               `json:"initial_amount,omitempty" yaml:"initial_amount,omitempty"`
}

type PricingResult struct {
	RunID             string            `json:"run_id"`
	CartID            string            `json:"cart_id"`
	Currency          string            `json:"currency,omitempty"`
	PackVersion       string            `json:"pack_version,omitempty"`
	Subtotal          float64           `json:"subtotal"`
	Total             float64           `json:"total"`
	Ledger            *engine.Result    `json:"ledger"`
	AppliedConditions []string          `json:"applied_conditions"`
	SkippedConditions []string          `json:"skipped_conditions,omitempty"`
	Summary           condition.Summary `json:"summary"`
	ExecutionLog      []ExecutionStep   `json:"execution_log"`
}

type ExecutionStep struct {
	Phase      string   `json:"phase"`
	Conditions []string `json:"conditions,omitempty"`
	Action     string   `json:"action"`
	Message    string   `json:"message"`
}

// ConditionPack is a versioned set of conditions loaded from disk.
type ConditionPack struct {
	Version     string                 `json:"version" yaml:"version"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Conditions  []condition.Definition `json:"conditions" yaml:"conditions"`
}

// PhaseDelta compares one phase across two pricing runs.
type PhaseDelta struct {
	Phase  string  `json:"phase"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Change float64 `json:"change"`
}

// RepriceResult carries both runs, the phases that moved and the RFC 7386
// merge patch a client applies to its copy of the previous result.
type RepriceResult struct {
	Before      *PricingResult  `json:"before"`
	After       *PricingResult  `json:"after"`
	PhaseDelta  []PhaseDelta    `json:"phase_delta"`
	MergePatch  json.RawMessage `json:"merge_patch"`
	ServerDelta bool            `json:"server_delta"`
}

// --- Errors ---
var (
	ErrParse               = target.ErrParse
	ErrConfiguration       = target.ErrConfiguration
	ErrPipelineExecution   = engine.ErrPipelineExecution
	ErrRuleExecutionFailed = errors.New("rule execution failed")
	ErrPackNotFound        = errors.New("condition pack not found")
	ErrInvalidPatch        = errors.New("invalid cart patch")
)
