package target

import (
	"sort"
	"strings"
)

// Phase is an ordered stage of the pricing pipeline.
type Phase string

const (
	PhasePreItem      Phase = "pre_item"
	PhaseItemDiscount Phase = "item_discount"
	PhaseItemPost     Phase = "item_post"
	PhaseCartSubtotal Phase = "cart_subtotal"
	PhaseShipping     Phase = "shipping"
	PhaseTaxable      Phase = "taxable"
	PhaseTax          Phase = "tax"
	PhasePayment      Phase = "payment"
	PhaseGrandTotal   Phase = "grand_total"
	PhaseCustom       Phase = "custom"
)

var phaseOrder = map[Phase]int{
	PhasePreItem:      10,
	PhaseItemDiscount: 20,
	PhaseItemPost:     30,
	PhaseCartSubtotal: 40,
	PhaseShipping:     50,
	PhaseTaxable:      60,
	PhaseTax:          70,
	PhasePayment:      80,
	PhaseGrandTotal:   90,
	PhaseCustom:       100,
}

// Phases returns all phases sorted by ascending Order.
func Phases() []Phase {
	out := make([]Phase, 0, len(phaseOrder))
	for p := range phaseOrder {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}

// ParsePhase resolves a phase token, ignoring case and surrounding whitespace.
func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := phaseOrder[p]; !ok {
		return "", parseErrorf(s, "unknown condition phase")
	}
	return p, nil
}

// Order is the fixed traversal position of the phase. Unknown phases report 0.
func (p Phase) Order() int { return phaseOrder[p] }

func (p Phase) String() string { return string(p) }

func (p Phase) IsValid() bool {
	_, ok := phaseOrder[p]
	return ok
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, configErrorf("cannot marshal unknown phase %q", string(p))
	}
	return []byte(p), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	v, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
