package domain

// AcceptanceStatus is the acceptance engine's final per-candidate outcome.
type AcceptanceStatus string

const (
	DecisionReadyNow   AcceptanceStatus = "READY_NOW"
	DecisionWait       AcceptanceStatus = "WAIT"
	DecisionAvoid      AcceptanceStatus = "AVOID"
	DecisionIncomplete AcceptanceStatus = "INCOMPLETE"
)

// ConfidenceBand blends compliance score magnitude with context corroboration.
type ConfidenceBand string

const (
	ConfidenceHigh   ConfidenceBand = "HIGH"
	ConfidenceMedium ConfidenceBand = "MEDIUM"
	ConfidenceLow    ConfidenceBand = "LOW"
)

// SizeHint is the execution-size-adjustment hint passed to the sizing layer.
type SizeHint string

const (
	SizeFull    SizeHint = "FULL"
	SizeReduced SizeHint = "REDUCED"
	SizeMinimal SizeHint = "MINIMAL"
	SizeNone    SizeHint = "NONE"
)

// AcceptanceDecision is the acceptance engine's write-once output for one
// candidate, computed from the candidate's own fields plus the single stress
// snapshot captured at stage start.
type AcceptanceDecision struct {
	Instrument string           `json:"instrument"`
	Strategy   string           `json:"strategy"`
	Family     Family           `json:"family"`
	Status     AcceptanceStatus `json:"status"`
	Confidence ConfidenceBand   `json:"confidence"`

	DirectionalBias StrategyBias `json:"directional_bias"`
	StructuralBias  string       `json:"structural_bias"` // e.g. "LongVol", "ShortPremium", "Delta"

	SizeHint SizeHint `json:"size_hint"`

	// Corroboration counts known context signals for and against.
	FavorableSignals   int `json:"favorable_signals"`
	UnfavorableSignals int `json:"unfavorable_signals"`

	StressLevel StressLevel `json:"stress_level"`
	Reason      string      `json:"reason"`
}
