package domain

// MagnitudeBand classifies the absolute IV-RV gap.
type MagnitudeBand string

const (
	BandNone     MagnitudeBand = ""
	BandModerate MagnitudeBand = "Moderate"
	BandElevated MagnitudeBand = "Elevated"
	BandHigh     MagnitudeBand = "High"
)

// GapDirection tags the sign of a material IV-RV gap.
type GapDirection string

const (
	DirectionNone  GapDirection = ""
	DirectionRich  GapDirection = "Rich"  // market pricing more volatility than realized
	DirectionCheap GapDirection = "Cheap" // market pricing less volatility than realized
)

// VolatilityDivergence is one tenor's IV-vs-RV divergence for one instrument.
// Produced exclusively by the regime classifier; immutable once written.
type VolatilityDivergence struct {
	Tenor       Tenor         `json:"tenor"`
	SignedGap   Float         `json:"signed_gap"`   // IV - RV, vol points
	AbsGap      Float         `json:"abs_gap"`      // |IV - RV|
	RelativeGap Float         `json:"relative_gap"` // gap / RV, null when RV below floor
	Band        MagnitudeBand `json:"band"`
	Direction   GapDirection  `json:"direction"`
}

// InstrumentRegime is the classifier's full output row for one instrument:
// per-tenor divergences plus the composite setup flags. It is strictly
// descriptive; it carries no strategy label and no pass/fail flag.
type InstrumentRegime struct {
	Instrument         string                 `json:"instrument"`
	Divergences        []VolatilityDivergence `json:"divergences"`
	MeanReversionSetup bool                   `json:"mean_reversion_setup"`
	ExpansionSetup     bool                   `json:"expansion_setup"`
}

// DivergenceAt returns the divergence row for tenor t, if present.
func (r InstrumentRegime) DivergenceAt(t Tenor) (VolatilityDivergence, bool) {
	for _, d := range r.Divergences {
		if d.Tenor == t {
			return d, true
		}
	}
	return VolatilityDivergence{}, false
}
