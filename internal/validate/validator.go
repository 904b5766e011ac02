package validate

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
	"github.com/voltlab/voltscan/internal/parmap"
)

// Validator applies the family-specific completeness checks, hard gates, and
// weighted compliance scoring, one candidate at a time. It never compares
// candidates across families and never drops a row: every candidate receives
// exactly one ValidationResult.
//
// Evaluation order per candidate is fixed for every family:
// contract-status gate, then completeness precheck, then hard gates, then
// scoring. A candidate's Reject/Watch/Incomplete outcome is a normal business
// result; only a structural contract violation aborts the batch.
type Validator struct {
	cfg     config.ValidatorConfig
	workers int
}

// NewValidator creates a validator with the given thresholds and weights.
func NewValidator(cfg config.ValidatorConfig) *Validator {
	return &Validator{cfg: cfg, workers: 1}
}

// WithWorkers distributes per-candidate evaluation across n goroutines.
// Results are written by row index and ranking stays a whole-batch step, so
// output is serial-equivalent.
func (v *Validator) WithWorkers(n int) *Validator {
	v.workers = n
	return v
}

// CheckSchema verifies the candidate-generator contract for the whole batch
// before any evaluation starts. Violations are schema errors, never
// per-candidate outcomes.
func (v *Validator) CheckSchema(batch []domain.StrategyCandidate) error {
	for i, c := range batch {
		if c.Instrument == "" {
			return domain.NewSchemaError("validator", "row %d: instrument identifier missing", i)
		}
		if c.Strategy == "" {
			return domain.NewSchemaError("validator", "row %d (%s): strategy name missing", i, c.Instrument)
		}
		if c.Family == domain.FamilyUnknown {
			return domain.NewSchemaError("validator", "row %d (%s): strategy family missing or unrecognized", i, c.Instrument)
		}
		if !c.ContractStatus.Known() {
			return domain.NewSchemaError("validator", "row %d (%s): contract status %q not in fetcher contract",
				i, c.Instrument, c.ContractStatus)
		}
	}
	return nil
}

// Validate evaluates the whole batch and returns one result per candidate,
// in input order, with family-local ranks assigned as a final whole-batch step.
func (v *Validator) Validate(batch []domain.StrategyCandidate) ([]domain.ValidationResult, error) {
	if err := v.CheckSchema(batch); err != nil {
		return nil, err
	}

	results := make([]domain.ValidationResult, len(batch))
	parmap.Run(v.workers, len(batch), func(i int) {
		results[i] = v.EvaluateOne(batch[i])
	})

	assignFamilyRanks(results)

	if len(results) != len(batch) {
		return nil, domain.RowCountError("validator", len(batch), len(results))
	}
	log.Debug().Int("rows", len(results)).Msg("validation complete")
	return results, nil
}

// EvaluateOne runs the fixed per-candidate rule sequence. It reads only the
// candidate's own fields; nothing here looks at another row.
func (v *Validator) EvaluateOne(c domain.StrategyCandidate) domain.ValidationResult {
	res := domain.ValidationResult{
		Instrument: c.Instrument,
		Strategy:   c.Strategy,
		Family:     c.Family,
	}

	// 1. Upstream contract-status gate.
	if status, rationale, fired := contractGate(c); fired {
		res.Status = status
		res.Rationale = rationale
		res.Completeness, res.MissingFields = checkCompleteness(c)
		return res
	}

	// 2. Completeness precheck. Missing required fields stop evaluation here;
	// they are never defaulted and scored.
	res.Completeness, res.MissingFields = checkCompleteness(c)
	if len(res.MissingFields) > 0 {
		res.Status = domain.StatusIncompleteData
		res.Rationale = fmt.Sprintf("missing required %s fields: %s",
			c.Family, strings.Join(res.MissingFields, ", "))
		return res
	}

	// 3. Hard gates: any fired gate is an unconditional reject.
	if fired := hardGates(c, v.cfg.Gates); len(fired) > 0 {
		res.Status = domain.StatusReject
		res.GateFailures = fired
		res.Rationale = "hard gate: " + strings.Join(fired, "; ")
		return res
	}

	// 4. Weighted compliance scoring.
	score, adjustments := complianceScore(c, v.cfg)
	res.Score = domain.F(score)
	res.Adjustments = adjustments
	res.Status = statusForScore(score, v.cfg)
	res.Rationale = rationaleForScore(res.Status, score, adjustments)
	return res
}

func rationaleForScore(status domain.ValidationStatus, score float64, adj []domain.ScoreAdjustment) string {
	if len(adj) == 0 {
		return fmt.Sprintf("%s: compliance %.0f with no adverse evidence", status, score)
	}
	notes := make([]string, 0, len(adj))
	for _, a := range adj {
		notes = append(notes, fmt.Sprintf("%s %+.1f", a.Name, a.Delta))
	}
	return fmt.Sprintf("%s: compliance %.0f (%s)", status, score, strings.Join(notes, ", "))
}
