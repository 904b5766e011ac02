package domain

// StrategyBias is the directional requirement a strategy carries.
type StrategyBias string

const (
	BiasNone    StrategyBias = ""
	BiasBullish StrategyBias = "Bullish"
	BiasBearish StrategyBias = "Bearish"
	BiasNeutral StrategyBias = "Neutral"
)

// TermStructureShape describes the IV term-structure slope for the candidate's
// underlying, as tagged upstream.
type TermStructureShape string

const (
	TermUnknown       TermStructureShape = ""
	TermContango      TermStructureShape = "Contango"
	TermBackwardation TermStructureShape = "Backwardation"
	TermFlat          TermStructureShape = "Flat"
)

// StrategyCandidate is one (instrument, strategy) pair produced by the
// upstream candidate generator. The engine annotates it with a regime tag;
// it never mutates the upstream fields.
type StrategyCandidate struct {
	Instrument string       `json:"instrument"`
	Strategy   string       `json:"strategy"`
	Family     Family       `json:"family"`
	Bias       StrategyBias `json:"bias"`

	// Contract/liquidity fetcher output.
	ContractStatus ContractStatus `json:"contract_status"`
	MarketOpen     bool           `json:"market_open"`
	ContractNote   string         `json:"contract_note,omitempty"`

	// Structure of the located contract.
	DTE Float `json:"dte"` // days to expiration

	// Greeks.
	Delta Float `json:"delta"`
	Gamma Float `json:"gamma"`
	Vega  Float `json:"vega"`
	Theta Float `json:"theta"`

	// Family-specific inputs.
	Skew                 Float `json:"skew"`                   // put/call IV ratio at matched strikes
	IVPercentile         Float `json:"iv_percentile"`          // 0-100
	RealizedImpliedRatio Float `json:"realized_implied_ratio"` // RV / IV
	IVRVGap              Float `json:"iv_rv_gap"`              // IV - RV, vol points
	ProbabilityOfProfit  Float `json:"probability_of_profit"`  // 0-100
	VolOfVol             Float `json:"vol_of_vol"`             // VVIX-like measure
	VolSpikeWithin5d     Bool  `json:"vol_spike_within_5d"`
	CatalystWithinDays   Float `json:"catalyst_within_days"`

	// Secondary evidence for compliance scoring.
	TrendTag          string             `json:"trend_tag,omitempty"` // Uptrend/Downtrend/Sideways
	VolumeConfirmed   Bool               `json:"volume_confirmed"`
	PatternTag        string             `json:"pattern_tag,omitempty"`
	PatternConfidence Float              `json:"pattern_confidence"` // 0-100
	CandleConfirmed   Bool               `json:"candle_confirmed"`
	TermStructure     TermStructureShape `json:"term_structure"`

	// Regime annotation attached by the pipeline after classification.
	// Nil when the classifier saw no observation for the instrument.
	Regime *InstrumentRegime `json:"regime,omitempty"`
}
