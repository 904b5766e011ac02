package domain

import "fmt"

// Family groups strategies that share the same theoretical requirements.
// It is a closed enum: every stage switches exhaustively over it, so adding
// a family is a compile-visible change rather than a string-key lookup.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyDirectional
	FamilyVolatility
	FamilyIncome
)

// Families lists every known family in canonical order.
var Families = []Family{FamilyDirectional, FamilyVolatility, FamilyIncome}

func (f Family) String() string {
	switch f {
	case FamilyDirectional:
		return "Directional"
	case FamilyVolatility:
		return "Volatility"
	case FamilyIncome:
		return "Income"
	default:
		return "Unknown"
	}
}

// ParseFamily maps an upstream family label to the enum. Unrecognized labels
// come back as FamilyUnknown; the validator treats that as a schema error.
func ParseFamily(s string) Family {
	switch s {
	case "Directional", "directional":
		return FamilyDirectional
	case "Volatility", "volatility":
		return FamilyVolatility
	case "Income", "income":
		return FamilyIncome
	default:
		return FamilyUnknown
	}
}

// MarshalText encodes the family label for JSON/YAML output.
func (f Family) MarshalText() ([]byte, error) {
	if f == FamilyUnknown {
		return nil, fmt.Errorf("cannot marshal unknown family")
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes an upstream family label.
func (f *Family) UnmarshalText(data []byte) error {
	*f = ParseFamily(string(data))
	return nil
}
