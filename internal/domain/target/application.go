package target

import "strings"

// Application tells whether a condition is computed once against a combined
// total or once per dataset entry.
type Application string

const (
	ApplicationAggregate  Application = "aggregate"
	ApplicationPerItem    Application = "per-item"
	ApplicationPerUnit    Application = "per-unit"
	ApplicationPerGroup   Application = "per-group"
	ApplicationPerPayment Application = "per-payment"
)

var applications = []Application{
	ApplicationAggregate,
	ApplicationPerItem,
	ApplicationPerUnit,
	ApplicationPerGroup,
	ApplicationPerPayment,
}

// ParseApplication accepts both hyphen and underscore spellings (per_item, per-item).
func ParseApplication(s string) (Application, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, a := range applications {
		if string(a) == normalized {
			return a, nil
		}
	}
	return "", parseErrorf(s, "unknown condition application")
}

func (a Application) String() string { return string(a) }

func (a Application) IsAggregate() bool { return a == ApplicationAggregate }

func (a Application) IsValid() bool {
	for _, v := range applications {
		if v == a {
			return true
		}
	}
	return false
}

func (a Application) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, configErrorf("cannot marshal unknown application %q", string(a))
	}
	return []byte(a), nil
}

func (a *Application) UnmarshalText(text []byte) error {
	v, err := ParseApplication(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
