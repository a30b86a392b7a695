package diff

import (
	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/engine"
	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// Differ compares two ledgers phase by phase.
type Differ struct{}

// Diff returns one delta per phase whose final amount moved, in phase order.
// A phase missing from one side counts as zero there.
func (d *Differ) Diff(before, after *engine.Result) []domain.PhaseDelta {
	var deltas []domain.PhaseDelta
	for _, phase := range target.Phases() {
		b := finalAmount(before, phase)
		a := finalAmount(after, phase)
		change := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b))
		if change.IsZero() {
			continue
		}
		deltas = append(deltas, domain.PhaseDelta{
			Phase:  string(phase),
			Before: b,
			After:  a,
			Change: change.InexactFloat64(),
		})
	}
	return deltas
}

func finalAmount(r *engine.Result, phase target.Phase) float64 {
	if r == nil {
		return 0
	}
	pr, ok := r.Phase(phase)
	if !ok {
		return 0
	}
	return pr.FinalAmount
}
