package target

import "strings"

// Scope identifies the dataset a condition's base amount is drawn from.
type Scope string

const (
	ScopeCart         Scope = "cart"
	ScopeItems        Scope = "items"
	ScopeShipments    Scope = "shipments"
	ScopePayments     Scope = "payments"
	ScopeFulfillments Scope = "fulfillments"
	ScopeCustom       Scope = "custom"
)

var scopes = []Scope{ScopeCart, ScopeItems, ScopeShipments, ScopePayments, ScopeFulfillments, ScopeCustom}

// Scopes returns every scope in declaration order. The pipeline resolves
// scopes inside a phase in exactly this order.
func Scopes() []Scope {
	out := make([]Scope, len(scopes))
	copy(out, scopes)
	return out
}

// ParseScope resolves a scope token, ignoring case and surrounding whitespace.
func ParseScope(s string) (Scope, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, sc := range scopes {
		if string(sc) == normalized {
			return sc, nil
		}
	}
	return "", parseErrorf(s, "unknown condition scope")
}

func (s Scope) String() string { return string(s) }

func (s Scope) IsValid() bool {
	for _, v := range scopes {
		if v == s {
			return true
		}
	}
	return false
}

func (s Scope) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, configErrorf("cannot marshal unknown scope %q", string(s))
	}
	return []byte(s), nil
}

func (s *Scope) UnmarshalText(text []byte) error {
	v, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
