package domain

import "time"

// Tenor is a volatility horizon in calendar days.
type Tenor int

const (
	Tenor30  Tenor = 30
	Tenor60  Tenor = 60
	Tenor90  Tenor = 90
	Tenor180 Tenor = 180
	Tenor360 Tenor = 360
)

// Tenors lists the supported horizons in ascending order. Every per-tenor loop
// iterates this slice, never a map, so output ordering is stable.
var Tenors = []Tenor{Tenor30, Tenor60, Tenor90, Tenor180, Tenor360}

// TrendDirection is a descriptive trend tag for an IV or RV series.
type TrendDirection string

const (
	TrendUnknown TrendDirection = ""
	TrendRising  TrendDirection = "Rising"
	TrendStable  TrendDirection = "Stable"
	TrendFalling TrendDirection = "Falling"
)

// AuxSignals carries the auxiliary descriptive observations used by the
// composite setup flags. Each field is independently optional; a missing
// input forces the dependent flag to false, never to an inferred true.
type AuxSignals struct {
	IVPercentile Float          `json:"iv_percentile"` // recent-range percentile, 0-100
	IVTrend      TrendDirection `json:"iv_trend"`
	RVTrend      TrendDirection `json:"rv_trend"`
	TrendTag     string         `json:"trend_tag,omitempty"`
	MomentumTag  string         `json:"momentum_tag,omitempty"`
	PatternTag   string         `json:"pattern_tag,omitempty"`
}

// MarketObservation is one instrument at one snapshot time, as supplied by
// the upstream market-data collaborator. Read-only to this engine.
//
// IV and RV are keyed by tenor in volatility points (e.g. 32.5 = 32.5%).
// A nil map means the column itself is structurally absent (schema error);
// a missing tenor key is an ordinary null for that tenor.
type MarketObservation struct {
	Instrument string          `json:"instrument"`
	AsOf       time.Time       `json:"as_of"`
	LastPrice  Float           `json:"last_price"`
	IV         map[Tenor]Float `json:"iv"`
	RV         map[Tenor]Float `json:"rv"`
	Aux        AuxSignals      `json:"aux"`
}

// IVAt returns the implied vol at tenor t, missing when the tenor is absent.
func (o MarketObservation) IVAt(t Tenor) Float {
	if o.IV == nil {
		return MissingFloat()
	}
	return o.IV[t]
}

// RVAt returns the realized vol at tenor t, missing when the tenor is absent.
func (o MarketObservation) RVAt(t Tenor) Float {
	if o.RV == nil {
		return MissingFloat()
	}
	return o.RV[t]
}
