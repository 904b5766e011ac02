package domain

// ValidationStatus is the validator's per-candidate outcome. Exactly one
// value per candidate; every value is a normal business result, never an error.
type ValidationStatus string

const (
	StatusValid             ValidationStatus = "Valid"
	StatusWatch             ValidationStatus = "Watch"
	StatusReject            ValidationStatus = "Reject"
	StatusIncompleteData    ValidationStatus = "Incomplete_Data"
	StatusDeferredDTE       ValidationStatus = "Deferred_DTE"
	StatusDeferredLiquidity ValidationStatus = "Deferred_Liquidity"
	StatusPendingGreeks     ValidationStatus = "Pending_Greeks"
)

// Scored reports whether the candidate reached the scoring stage.
func (s ValidationStatus) Scored() bool {
	switch s {
	case StatusValid, StatusWatch:
		return true
	case StatusReject:
		// Rejects reached scoring unless a gate or the contract status fired
		// first; callers needing the distinction look at Score.Known().
		return true
	}
	return false
}

// ScoreAdjustment is one bonus or penalty applied during compliance scoring.
type ScoreAdjustment struct {
	Name  string  `json:"name"`
	Delta float64 `json:"delta"`
	Note  string  `json:"note,omitempty"`
}

// ValidationResult is the validator's write-once output for one candidate.
type ValidationResult struct {
	Instrument string           `json:"instrument"`
	Strategy   string           `json:"strategy"`
	Family     Family           `json:"family"`
	Status     ValidationStatus `json:"status"`

	// Completeness is fields-present over fields-required, 0-1.
	Completeness  float64  `json:"completeness"`
	MissingFields []string `json:"missing_fields,omitempty"`

	// Score is the 0-100 compliance score. Missing when the candidate never
	// reached scoring (contract gate, incomplete data, or a hard gate).
	Score        Float             `json:"score"`
	Adjustments  []ScoreAdjustment `json:"adjustments,omitempty"`
	GateFailures []string          `json:"gate_failures,omitempty"`

	// FamilyRank is the dense rank (1 = best) among same-family candidates
	// that survived to a score. Zero means unranked.
	FamilyRank int `json:"family_rank"`

	Rationale string `json:"rationale"`
}
