package accept

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog/log"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
	"github.com/voltlab/voltscan/internal/parmap"
)

// Engine turns validator output into final execution-readiness decisions.
// Inputs per run: the validated batch, the optional descriptive context keyed
// by instrument, and a single stress snapshot captured once at stage start.
// The engine reads nothing else, so re-running it on the same inputs
// reproduces bit-identical decisions; Decide verifies that with an explicit
// self-check before the batch is accepted as final.
type Engine struct {
	cfg     config.AcceptConfig
	workers int
}

// NewEngine creates an acceptance engine.
func NewEngine(cfg config.AcceptConfig) *Engine {
	return &Engine{cfg: cfg, workers: 1}
}

// WithWorkers distributes per-candidate decisions across n goroutines; rows
// are written by index, so output is serial-equivalent.
func (e *Engine) WithWorkers(n int) *Engine {
	e.workers = n
	return e
}

// Decide computes one decision per candidate, in input order. candidates and
// results are parallel slices from the validator; ctx may be nil when the
// context provider is absent.
func (e *Engine) Decide(
	candidates []domain.StrategyCandidate,
	results []domain.ValidationResult,
	ctx map[string]domain.InstrumentContext,
	stress domain.StressSnapshot,
) ([]domain.AcceptanceDecision, error) {
	if len(candidates) != len(results) {
		return nil, domain.NewSchemaError("acceptance",
			"candidate/result row mismatch: %d candidates, %d results", len(candidates), len(results))
	}

	decisions := e.decideAll(candidates, results, ctx, stress)

	// Determinism self-check: re-execute on a copy and require equality.
	replay := e.decideAll(candidates, results, ctx, stress)
	if !reflect.DeepEqual(decisions, replay) {
		return nil, domain.NewSchemaError("acceptance", "determinism self-check failed: replay diverged")
	}

	if len(decisions) != len(candidates) {
		return nil, domain.RowCountError("acceptance", len(candidates), len(decisions))
	}
	log.Debug().Int("rows", len(decisions)).Str("stress", string(stress.Level)).Msg("acceptance complete")
	return decisions, nil
}

func (e *Engine) decideAll(
	candidates []domain.StrategyCandidate,
	results []domain.ValidationResult,
	ctx map[string]domain.InstrumentContext,
	stress domain.StressSnapshot,
) []domain.AcceptanceDecision {
	out := make([]domain.AcceptanceDecision, len(candidates))
	parmap.Run(e.workers, len(candidates), func(i int) {
		var ic domain.InstrumentContext
		if ctx != nil {
			ic = ctx[candidates[i].Instrument] // zero value = fully unknown = neutral
		}
		out[i] = e.DecideOne(candidates[i], results[i], ic, stress)
	})
	return out
}

// DecideOne computes the decision for a single candidate from that
// candidate's own fields and the shared snapshots only.
func (e *Engine) DecideOne(
	c domain.StrategyCandidate,
	r domain.ValidationResult,
	ctx domain.InstrumentContext,
	stress domain.StressSnapshot,
) domain.AcceptanceDecision {
	d := domain.AcceptanceDecision{
		Instrument:      c.Instrument,
		Strategy:        c.Strategy,
		Family:          c.Family,
		DirectionalBias: c.Bias,
		StructuralBias:  structuralBias(c),
		StressLevel:     stress.Level,
		SizeHint:        domain.SizeNone,
	}

	tally := tallyContext(c, ctx)
	d.FavorableSignals = tally.Favorable
	d.UnfavorableSignals = tally.Unfavorable

	// Global circuit breaker first: a halting stress reading overrides all
	// per-candidate logic.
	switch stress.Level {
	case domain.StressExtreme:
		d.Status = domain.DecisionAvoid
		d.Confidence = domain.ConfidenceHigh
		d.Reason = fmt.Sprintf("market stress EXTREME (basis %s): all entries halted", stress.Basis)
		return d
	case domain.StressSevere:
		d.Status = domain.DecisionWait
		d.Confidence = domain.ConfidenceHigh
		d.Reason = fmt.Sprintf("market stress SEVERE (basis %s): holding all entries", stress.Basis)
		return d
	}

	// Validation status is the required primary signal.
	switch r.Status {
	case domain.StatusValid:
		e.decideValid(&d, r, tally, stress)
	case domain.StatusWatch:
		d.Status = domain.DecisionWait
		d.Confidence = e.confidence(r, tally)
		d.Reason = fmt.Sprintf("validation Watch (compliance %s): monitor for improvement", r.Score)
	case domain.StatusReject:
		d.Status = domain.DecisionAvoid
		d.Confidence = domain.ConfidenceHigh
		d.Reason = "validation Reject: " + r.Rationale
	case domain.StatusIncompleteData:
		d.Status = domain.DecisionIncomplete
		d.Confidence = domain.ConfidenceLow
		d.Reason = "validation incomplete: " + r.Rationale
	case domain.StatusDeferredDTE, domain.StatusDeferredLiquidity, domain.StatusPendingGreeks:
		d.Status = domain.DecisionWait
		d.Confidence = domain.ConfidenceLow
		d.Reason = fmt.Sprintf("deferred upstream (%s): %s", r.Status, r.Rationale)
	default:
		// Unreachable given the validator's closed status set.
		d.Status = domain.DecisionIncomplete
		d.Confidence = domain.ConfidenceLow
		d.Reason = fmt.Sprintf("unrecognized validation status %q", r.Status)
	}
	return d
}

// decideValid handles the only path that can reach READY_NOW. Known
// unfavorable context may demote it; unknown context never does.
func (e *Engine) decideValid(d *domain.AcceptanceDecision, r domain.ValidationResult, tally contextTally, stress domain.StressSnapshot) {
	switch {
	case tally.Score() <= e.cfg.ContextAvoidAt:
		d.Status = domain.DecisionAvoid
		d.Confidence = domain.ConfidenceMedium
		d.Reason = fmt.Sprintf("valid setup but %d unfavorable context signals against %d favorable",
			tally.Unfavorable, tally.Favorable)
		return
	case tally.Score() <= e.cfg.ContextWaitAt:
		d.Status = domain.DecisionWait
		d.Confidence = e.confidence(r, tally)
		d.Reason = fmt.Sprintf("valid setup held back by context (%d for, %d against)",
			tally.Favorable, tally.Unfavorable)
		return
	}

	d.Status = domain.DecisionReadyNow
	d.Confidence = e.confidence(r, tally)
	d.SizeHint = domain.SizeFull
	if stress.Level == domain.StressElevated {
		d.SizeHint = domain.SizeReduced
	}
	if d.Confidence == domain.ConfidenceLow {
		d.SizeHint = domain.SizeMinimal
	}
	d.Reason = fmt.Sprintf("validation Valid (compliance %s), %d corroborating signals", r.Score, tally.Favorable)
}

// confidence blends compliance score magnitude with context corroboration.
func (e *Engine) confidence(r domain.ValidationResult, tally contextTally) domain.ConfidenceBand {
	if !r.Score.Known() {
		return domain.ConfidenceLow
	}
	score := r.Score.Value()
	switch {
	case score >= e.cfg.HighScoreMin && tally.Favorable >= e.cfg.HighCorroboration:
		return domain.ConfidenceHigh
	case score < e.cfg.LowScoreMax && tally.Favorable <= 1:
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceMedium
	}
}

// structuralBias labels what the position structurally is, for the sizing layer.
func structuralBias(c domain.StrategyCandidate) string {
	switch c.Family {
	case domain.FamilyVolatility:
		if c.Vega.Known() && c.Vega.Value() < 0 {
			return "ShortVol"
		}
		return "LongVol"
	case domain.FamilyIncome:
		return "ShortPremium"
	case domain.FamilyDirectional:
		return "Delta"
	default:
		return "Unknown"
	}
}
