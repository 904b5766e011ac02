package domain

// Descriptive technical context supplied by the optional price/technical
// context provider. Every tag has an explicit Unknown zero value; an unknown
// tag is always a neutral contribution, never an unfavorable one.

// CompressionState tags price-range compression.
type CompressionState string

const (
	CompressionUnknown CompressionState = ""
	CompressionTight   CompressionState = "Tight"
	CompressionNormal  CompressionState = "Normal"
	CompressionWide    CompressionState = "Wide"
)

// GapState tags unfilled price gaps near the current level.
type GapState string

const (
	GapUnknown   GapState = ""
	GapNone      GapState = "None"
	GapAboveOpen GapState = "GapAboveOpen"
	GapBelowOpen GapState = "GapBelowOpen"
)

// RangePosition tags where price sits in its 52-week range.
type RangePosition string

const (
	RangeUnknown  RangePosition = ""
	RangeNearLow  RangePosition = "NearLow"
	RangeMiddle   RangePosition = "Middle"
	RangeNearHigh RangePosition = "NearHigh"
)

// MomentumState tags medium-term momentum.
type MomentumState string

const (
	MomentumUnknown   MomentumState = ""
	MomentumRising    MomentumState = "Rising"
	MomentumFlat      MomentumState = "Flat"
	MomentumFalling   MomentumState = "Falling"
	MomentumExhausted MomentumState = "Exhausted"
)

// EntryTiming tags short-horizon entry quality.
type EntryTiming string

const (
	TimingUnknown     EntryTiming = ""
	TimingConfirmed   EntryTiming = "Confirmed"
	TimingNeutral     EntryTiming = "Neutral"
	TimingContradicts EntryTiming = "Contradicts"
)

// InstrumentContext is the optional descriptive-context row for one
// instrument. A missing provider degrades to the zero value, which is
// entirely Unknown and therefore entirely neutral.
type InstrumentContext struct {
	Instrument  string           `json:"instrument"`
	Compression CompressionState `json:"compression"`
	Gap         GapState         `json:"gap"`
	Week52      RangePosition    `json:"week52"`
	Momentum    MomentumState    `json:"momentum"`
	Timing      EntryTiming      `json:"timing"`
}
