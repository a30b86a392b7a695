// Package engine is the embeddable entry point of the cart pricing engine.
package engine

import (
	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/condition"
	"github.com/Victor-armando18/cart-pricing/internal/domain/engine"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

type (
	Cart          = model.Cart
	Item          = model.Item
	Entry         = model.Entry
	Target        = target.Target
	Condition     = condition.Condition
	Definition    = condition.Definition
	Collection    = condition.Collection
	Ledger        = engine.Result
	PhaseResult   = engine.PhaseResult
	ConditionPack = domain.ConditionPack
	Request       = domain.PricingRequest
	Result        = domain.PricingResult
	RepriceResult = domain.RepriceResult
	ExecutionStep = domain.ExecutionStep
)

var (
	ErrParse             = domain.ErrParse
	ErrConfiguration     = domain.ErrConfiguration
	ErrPipelineExecution = domain.ErrPipelineExecution
	ErrPackNotFound      = domain.ErrPackNotFound
	ErrInvalidPatch      = domain.ErrInvalidPatch
)

// ParseTarget parses a target DSL string.
func ParseTarget(dsl string) (Target, error) { return target.Parse(dsl) }
