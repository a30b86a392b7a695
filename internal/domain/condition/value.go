package condition

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

type Sign string

const (
	SignCharge   Sign = "+"
	SignDiscount Sign = "-"
)

type Kind string

const (
	KindFixed      Kind = "fixed"
	KindPercentage Kind = "percentage"
)

var hundred = decimal.NewFromInt(100)

// Value is the parsed effect of a condition: "-10%", "+15", "8%", "2.50".
type Value struct {
	Raw       string
	Sign      Sign
	Kind      Kind
	Magnitude decimal.Decimal
}

// ParseValue reads a value expression. A trailing % makes it a percentage,
// a leading - makes it a discount; + or no sign is a charge.
func ParseValue(raw string) (Value, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return Value{}, &target.ConfigurationError{Reason: "condition value cannot be empty"}
	}

	v := Value{Raw: strings.TrimSpace(raw), Sign: SignCharge, Kind: KindFixed}
	if strings.HasSuffix(s, "%") {
		v.Kind = KindPercentage
		s = strings.TrimSuffix(s, "%")
	}
	switch {
	case strings.HasPrefix(s, "-"):
		v.Sign = SignDiscount
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	m, err := decimal.NewFromString(s)
	if err != nil || m.IsNegative() {
		return Value{}, &target.ConfigurationError{Reason: fmt.Sprintf("invalid condition value %q", raw)}
	}
	v.Magnitude = m
	return v, nil
}

func (v Value) IsDiscount() bool   { return v.Sign == SignDiscount }
func (v Value) IsCharge() bool     { return v.Sign == SignCharge }
func (v Value) IsPercentage() bool { return v.Kind == KindPercentage }

// Signed returns the magnitude with the sign applied, e.g. -10 for "-10%".
func (v Value) Signed() decimal.Decimal {
	if v.IsDiscount() {
		return v.Magnitude.Neg()
	}
	return v.Magnitude
}

// Operator reports +, -, +% or -%.
func (v Value) Operator() string {
	op := string(v.Sign)
	if v.IsPercentage() {
		op += "%"
	}
	return op
}

// Apply returns base adjusted by the value: base ± m, or base × (1 ± m/100).
func (v Value) Apply(base float64) float64 {
	b := decimal.NewFromFloat(base)
	if v.IsPercentage() {
		return b.Mul(decimal.NewFromInt(1).Add(v.Signed().Div(hundred))).InexactFloat64()
	}
	return b.Add(v.Signed()).InexactFloat64()
}

// Delta is the signed amount Apply adds to base.
func (v Value) Delta(base float64) float64 {
	b := decimal.NewFromFloat(base)
	if v.IsPercentage() {
		return b.Mul(v.Signed()).Div(hundred).InexactFloat64()
	}
	return v.Signed().InexactFloat64()
}

func (v Value) String() string { return v.Raw }
