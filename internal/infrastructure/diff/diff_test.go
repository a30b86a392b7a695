package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/engine"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

func ledger(amounts map[target.Phase]float64) *engine.Result {
	var phases []engine.PhaseResult
	base := 0.0
	for _, p := range target.Phases() {
		final, ok := amounts[p]
		if !ok {
			final = base
		}
		phases = append(phases, engine.PhaseResult{Phase: p, BaseAmount: base, FinalAmount: final, Adjustment: final - base})
		base = final
	}
	return engine.NewResult(0, base, phases)
}

func TestDiffer_Diff(t *testing.T) {
	before := ledger(map[target.Phase]float64{target.PhasePreItem: 100})
	after := ledger(map[target.Phase]float64{target.PhasePreItem: 100, target.PhaseTax: 108.1})

	deltas := (&Differ{}).Diff(before, after)

	want := []domain.PhaseDelta{
		{Phase: "tax", Before: 100, After: 108.1, Change: 8.1},
		{Phase: "payment", Before: 100, After: 108.1, Change: 8.1},
		{Phase: "grand_total", Before: 100, After: 108.1, Change: 8.1},
		{Phase: "custom", Before: 100, After: 108.1, Change: 8.1},
	}
	assert.Equal(t, want, deltas)
}

func TestDiffer_Identical(t *testing.T) {
	r := ledger(map[target.Phase]float64{target.PhasePreItem: 50})
	assert.Empty(t, (&Differ{}).Diff(r, r))
}

func TestDiffer_NilSide(t *testing.T) {
	after := ledger(map[target.Phase]float64{target.PhasePreItem: 10})
	deltas := (&Differ{}).Diff(nil, after)
	assert.Len(t, deltas, len(target.Phases()))
	assert.Equal(t, 10.0, deltas[0].Change)
}
