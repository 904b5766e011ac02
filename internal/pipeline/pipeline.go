package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/voltlab/voltscan/internal/accept"
	"github.com/voltlab/voltscan/internal/audit"
	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
	"github.com/voltlab/voltscan/internal/metrics"
	"github.com/voltlab/voltscan/internal/providers/stress"
	"github.com/voltlab/voltscan/internal/providers/techctx"
	"github.com/voltlab/voltscan/internal/regime"
	"github.com/voltlab/voltscan/internal/validate"
)

// Runner wires the three stages in strict sequence: Classifier, Validator,
// Acceptance. No stage starts before the prior stage's whole batch is
// materialized, and each stage's output row count is asserted against its
// input. Cancellation is all-or-nothing per batch: the context is consulted
// between stages only; a stage that has begun runs to completion.
type Runner struct {
	cfg        *config.Config
	classifier *regime.Classifier
	validator  *validate.Validator
	engine     *accept.Engine
	stress     stress.Provider
	techctx    techctx.Provider
	sink       audit.Sink
	metrics    *metrics.Metrics
	clock      func() time.Time
}

// NewRunner builds a runner. stressProvider, ctxProvider, sink, and m may be
// nil; nil collaborators degrade to neutral/no-op behavior.
func NewRunner(
	cfg *config.Config,
	stressProvider stress.Provider,
	ctxProvider techctx.Provider,
	sink audit.Sink,
	m *metrics.Metrics,
) *Runner {
	if stressProvider == nil {
		stressProvider = stress.Disabled(time.Now)
	}
	if ctxProvider == nil {
		ctxProvider = techctx.None{}
	}
	if sink == nil {
		sink = audit.Nop{}
	}
	return &Runner{
		cfg:        cfg,
		classifier: regime.NewClassifier(cfg.Regime).WithWorkers(cfg.Workers),
		validator:  validate.NewValidator(cfg.Validator).WithWorkers(cfg.Workers),
		engine:     accept.NewEngine(cfg.Accept).WithWorkers(cfg.Workers),
		stress:     stressProvider,
		techctx:    ctxProvider,
		sink:       sink,
		metrics:    m,
		clock:      time.Now,
	}
}

// WithClock overrides the runner's clock; tests use it to pin timestamps.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// RunResult is one completed run's full output, one row per candidate per stage.
type RunResult struct {
	RunID      uuid.UUID                   `json:"run_id"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	Stress     domain.StressSnapshot       `json:"stress"`
	Regimes    []domain.InstrumentRegime   `json:"regimes"`
	Candidates []domain.StrategyCandidate  `json:"candidates"`
	Results    []domain.ValidationResult   `json:"results"`
	Decisions  []domain.AcceptanceDecision `json:"decisions"`
}

// Run executes one full batch. A returned error is always a schema/contract
// violation; every business outcome is data inside the RunResult.
func (r *Runner) Run(ctx context.Context, observations []domain.MarketObservation, candidates []domain.StrategyCandidate) (*RunResult, error) {
	res := &RunResult{RunID: uuid.New(), StartedAt: r.clock()}
	log.Info().Str("run_id", res.RunID.String()).
		Int("observations", len(observations)).
		Int("candidates", len(candidates)).
		Msg("pipeline run starting")

	// Stage 1: regime classification.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run aborted before classification: %w", err)
	}
	stageStart := r.clock()
	regimes, err := r.classifier.Classify(observations)
	if err != nil {
		r.metrics.CountSchemaError()
		return nil, err
	}
	if len(regimes) != len(observations) {
		r.metrics.CountSchemaError()
		return nil, domain.RowCountError("classifier", len(observations), len(regimes))
	}
	res.Regimes = regimes
	r.metrics.ObserveStage("classifier", len(regimes), r.clock().Sub(stageStart).Seconds())
	r.auditRegimes(res)

	// Annotate candidates with their instrument's regime. This is the only
	// mutation the engine performs on candidate rows.
	res.Candidates = attachRegimes(candidates, regimes)

	// Stage 2: independent validation.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run aborted before validation: %w", err)
	}
	stageStart = r.clock()
	results, err := r.validator.Validate(res.Candidates)
	if err != nil {
		r.metrics.CountSchemaError()
		return nil, err
	}
	if len(results) != len(res.Candidates) {
		r.metrics.CountSchemaError()
		return nil, domain.RowCountError("validator", len(res.Candidates), len(results))
	}
	res.Results = results
	r.metrics.ObserveStage("validator", len(results), r.clock().Sub(stageStart).Seconds())
	for i := range results {
		r.metrics.CountValidation(string(results[i].Status), results[i].Family.String())
	}
	r.auditResults(res)

	// Stage 3: acceptance. The stress reading and the context batch are
	// captured once here and held read-only for the whole stage.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run aborted before acceptance: %w", err)
	}
	stageStart = r.clock()
	snap, err := r.stress.Snapshot(ctx)
	if err != nil {
		// Stress is optional; an erroring monitor stays neutral.
		log.Warn().Err(err).Msg("stress snapshot failed; proceeding neutral")
		snap = domain.NeutralStress(r.clock())
	}
	res.Stress = snap

	ictx, err := r.techctx.Context(ctx, instruments(res.Candidates))
	if err != nil {
		log.Warn().Err(err).Msg("context provider failed; proceeding neutral")
		ictx = map[string]domain.InstrumentContext{}
	}

	decisions, err := r.engine.Decide(res.Candidates, results, ictx, snap)
	if err != nil {
		r.metrics.CountSchemaError()
		return nil, err
	}
	if len(decisions) != len(res.Candidates) {
		r.metrics.CountSchemaError()
		return nil, domain.RowCountError("acceptance", len(res.Candidates), len(decisions))
	}
	res.Decisions = decisions
	r.metrics.ObserveStage("acceptance", len(decisions), r.clock().Sub(stageStart).Seconds())
	for i := range decisions {
		r.metrics.CountDecision(string(decisions[i].Status))
	}
	r.auditDecisions(res)

	res.FinishedAt = r.clock()
	r.metrics.CountRun()
	log.Info().Str("run_id", res.RunID.String()).
		Int("ready_now", countStatus(decisions, domain.DecisionReadyNow)).
		Str("stress", string(snap.Level)).
		Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
		Msg("pipeline run complete")
	return res, nil
}

// ReadyForSizing returns the READY_NOW rows for the downstream sizing layer,
// after asserting the cross-stage invariant: every READY_NOW row must carry a
// Valid validation and a usable contract status.
func (res *RunResult) ReadyForSizing() ([]domain.AcceptanceDecision, error) {
	var ready []domain.AcceptanceDecision
	for i := range res.Decisions {
		if res.Decisions[i].Status != domain.DecisionReadyNow {
			continue
		}
		if res.Results[i].Status != domain.StatusValid {
			return nil, domain.NewSchemaError("handoff",
				"%s/%s READY_NOW with validation status %s",
				res.Decisions[i].Instrument, res.Decisions[i].Strategy, res.Results[i].Status)
		}
		if !res.Candidates[i].ContractStatus.Usable() {
			return nil, domain.NewSchemaError("handoff",
				"%s/%s READY_NOW with contract status %s",
				res.Decisions[i].Instrument, res.Decisions[i].Strategy, res.Candidates[i].ContractStatus)
		}
		ready = append(ready, res.Decisions[i])
	}
	return ready, nil
}

// StatusCounts summarizes acceptance outcomes for operators.
func (res *RunResult) StatusCounts() map[domain.AcceptanceStatus]int {
	counts := make(map[domain.AcceptanceStatus]int, 4)
	for i := range res.Decisions {
		counts[res.Decisions[i].Status]++
	}
	return counts
}

func attachRegimes(candidates []domain.StrategyCandidate, regimes []domain.InstrumentRegime) []domain.StrategyCandidate {
	byInstrument := make(map[string]*domain.InstrumentRegime, len(regimes))
	for i := range regimes {
		byInstrument[regimes[i].Instrument] = &regimes[i]
	}
	out := make([]domain.StrategyCandidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Regime = byInstrument[out[i].Instrument]
	}
	return out
}

func instruments(candidates []domain.StrategyCandidate) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for i := range candidates {
		if !seen[candidates[i].Instrument] {
			seen[candidates[i].Instrument] = true
			out = append(out, candidates[i].Instrument)
		}
	}
	return out
}

func countStatus(decisions []domain.AcceptanceDecision, s domain.AcceptanceStatus) int {
	n := 0
	for i := range decisions {
		if decisions[i].Status == s {
			n++
		}
	}
	return n
}

func (r *Runner) auditRegimes(res *RunResult) {
	rows := make([]audit.Row, len(res.Regimes))
	for i := range res.Regimes {
		rows[i] = audit.Row{
			RunID:      res.RunID,
			Stage:      "classifier",
			Instrument: res.Regimes[i].Instrument,
			RecordedAt: r.clock(),
			Payload:    res.Regimes[i],
		}
	}
	r.writeAudit("classifier", res.RunID, rows)
}

func (r *Runner) auditResults(res *RunResult) {
	rows := make([]audit.Row, len(res.Results))
	for i := range res.Results {
		rows[i] = audit.Row{
			RunID:      res.RunID,
			Stage:      "validator",
			Instrument: res.Results[i].Instrument,
			Strategy:   res.Results[i].Strategy,
			RecordedAt: r.clock(),
			Payload:    res.Results[i],
		}
	}
	r.writeAudit("validator", res.RunID, rows)
}

func (r *Runner) auditDecisions(res *RunResult) {
	rows := make([]audit.Row, len(res.Decisions))
	for i := range res.Decisions {
		rows[i] = audit.Row{
			RunID:      res.RunID,
			Stage:      "acceptance",
			Instrument: res.Decisions[i].Instrument,
			Strategy:   res.Decisions[i].Strategy,
			RecordedAt: r.clock(),
			Payload:    res.Decisions[i],
		}
	}
	r.writeAudit("acceptance", res.RunID, rows)
}

// writeAudit never fails the run: the audit trail is an offline surface, and
// a sink error must not break the row-count contract mid-batch.
func (r *Runner) writeAudit(stage string, runID uuid.UUID, rows []audit.Row) {
	if err := r.sink.WriteStage(runID, stage, rows); err != nil {
		log.Error().Err(err).Str("stage", stage).Msg("audit export failed")
	}
}
