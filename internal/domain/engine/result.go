package engine

import (
	"bytes"
	"encoding/json"

	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

type PhaseResult struct {
	Phase             target.Phase `json:"phase"`
	BaseAmount        float64      `json:"base_amount"`
	FinalAmount       float64      `json:"final_amount"`
	Adjustment        float64      `json:"adjustment"`
	AppliedConditions int          `json:"applied_conditions"`
}

// Result is the ledger of a pipeline run, one PhaseResult per phase in
// ascending phase order.
type Result struct {
	InitialAmount float64
	FinalAmount   float64
	phases        []PhaseResult
}

func NewResult(initial, final float64, phases []PhaseResult) *Result {
	return &Result{InitialAmount: initial, FinalAmount: final, phases: append([]PhaseResult(nil), phases...)}
}

func (r *Result) Phases() []PhaseResult { return append([]PhaseResult(nil), r.phases...) }

func (r *Result) Phase(p target.Phase) (PhaseResult, bool) {
	for _, pr := range r.phases {
		if pr.Phase == p {
			return pr, true
		}
	}
	return PhaseResult{}, false
}

// Subtotal is the amount after the cart_subtotal phase.
func (r *Result) Subtotal() float64 {
	if pr, ok := r.Phase(target.PhaseCartSubtotal); ok {
		return pr.FinalAmount
	}
	return r.InitialAmount
}

// Total is the amount after the grand_total phase.
func (r *Result) Total() float64 {
	if pr, ok := r.Phase(target.PhaseGrandTotal); ok {
		return pr.FinalAmount
	}
	return r.FinalAmount
}

// MarshalJSON writes phases as an object keyed by phase name, in phase order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"initial_amount":`)
	if err := writeJSON(&buf, r.InitialAmount); err != nil {
		return nil, err
	}
	buf.WriteString(`,"final_amount":`)
	if err := writeJSON(&buf, r.FinalAmount); err != nil {
		return nil, err
	}
	buf.WriteString(`,"phases":{`)
	for i, pr := range r.phases {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, string(pr.Phase)); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, pr); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		InitialAmount float64                    `json:"initial_amount"`
		FinalAmount   float64                    `json:"final_amount"`
		Phases        map[string]json.RawMessage `json:"phases"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.InitialAmount, r.FinalAmount, r.phases = raw.InitialAmount, raw.FinalAmount, nil
	for _, p := range target.Phases() {
		msg, ok := raw.Phases[string(p)]
		if !ok {
			continue
		}
		var pr PhaseResult
		if err := json.Unmarshal(msg, &pr); err != nil {
			return err
		}
		r.phases = append(r.phases, pr)
	}
	return nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
