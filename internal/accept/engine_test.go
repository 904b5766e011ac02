package accept

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
)

func testAcceptConfig(t *testing.T) config.AcceptConfig {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg.Accept
}

func bullishCandidate() domain.StrategyCandidate {
	return domain.StrategyCandidate{
		Instrument:     "AAPL",
		Strategy:       "Long Call",
		Family:         domain.FamilyDirectional,
		Bias:           domain.BiasBullish,
		ContractStatus: domain.ContractOK,
		MarketOpen:     true,
		Vega:           domain.F(0.18),
	}
}

func resultWith(status domain.ValidationStatus, score domain.Float) domain.ValidationResult {
	return domain.ValidationResult{
		Instrument: "AAPL",
		Strategy:   "Long Call",
		Family:     domain.FamilyDirectional,
		Status:     status,
		Score:      score,
		Rationale:  "test rationale",
	}
}

func normalStress() domain.StressSnapshot {
	return domain.StressSnapshot{
		Level:      domain.StressNormal,
		Basis:      domain.F(14.2),
		CapturedAt: time.Date(2026, 8, 20, 16, 0, 0, 0, time.UTC),
		Source:     "test",
	}
}

func stressAt(level domain.StressLevel) domain.StressSnapshot {
	s := normalStress()
	s.Level = level
	return s
}

func TestDecide_StatusMapping(t *testing.T) {
	e := NewEngine(testAcceptConfig(t))

	tests := []struct {
		status domain.ValidationStatus
		score  domain.Float
		want   domain.AcceptanceStatus
	}{
		{domain.StatusValid, domain.F(90), domain.DecisionReadyNow},
		{domain.StatusWatch, domain.F(60), domain.DecisionWait},
		{domain.StatusReject, domain.F(30), domain.DecisionAvoid},
		{domain.StatusIncompleteData, domain.MissingFloat(), domain.DecisionIncomplete},
		{domain.StatusDeferredDTE, domain.MissingFloat(), domain.DecisionWait},
		{domain.StatusDeferredLiquidity, domain.MissingFloat(), domain.DecisionWait},
		{domain.StatusPendingGreeks, domain.MissingFloat(), domain.DecisionWait},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			out, err := e.Decide(
				[]domain.StrategyCandidate{bullishCandidate()},
				[]domain.ValidationResult{resultWith(tt.status, tt.score)},
				nil, normalStress(),
			)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Status)
			assert.NotEmpty(t, out[0].Reason)
		})
	}
}

func TestDecide_StressCircuitBreaker(t *testing.T) {
	e := NewEngine(testAcceptConfig(t))
	valid := resultWith(domain.StatusValid, domain.F(92))

	t.Run("extreme halts even a valid setup", func(t *testing.T) {
		d := e.DecideOne(bullishCandidate(), valid, domain.InstrumentContext{}, stressAt(domain.StressExtreme))
		assert.Equal(t, domain.DecisionAvoid, d.Status)
		assert.Equal(t, domain.ConfidenceHigh, d.Confidence)
		assert.Equal(t, domain.SizeNone, d.SizeHint)
	})

	t.Run("severe holds even a valid setup", func(t *testing.T) {
		d := e.DecideOne(bullishCandidate(), valid, domain.InstrumentContext{}, stressAt(domain.StressSevere))
		assert.Equal(t, domain.DecisionWait, d.Status)
	})

	t.Run("elevated admits with reduced size", func(t *testing.T) {
		d := e.DecideOne(bullishCandidate(), valid, domain.InstrumentContext{}, stressAt(domain.StressElevated))
		assert.Equal(t, domain.DecisionReadyNow, d.Status)
		assert.Equal(t, domain.SizeReduced, d.SizeHint)
	})

	t.Run("unknown stress stays neutral", func(t *testing.T) {
		d := e.DecideOne(bullishCandidate(), valid, domain.InstrumentContext{}, domain.NeutralStress(time.Now()))
		assert.Equal(t, domain.DecisionReadyNow, d.Status)
		assert.Equal(t, domain.SizeFull, d.SizeHint)
	})
}

func TestDecide_UnknownContextIsNeutral(t *testing.T) {
	e := NewEngine(testAcceptConfig(t))
	c := bullishCandidate()
	r := resultWith(domain.StatusValid, domain.F(90))

	absent, err := e.Decide([]domain.StrategyCandidate{c}, []domain.ValidationResult{r}, nil, normalStress())
	require.NoError(t, err)

	unknown, err := e.Decide([]domain.StrategyCandidate{c}, []domain.ValidationResult{r},
		map[string]domain.InstrumentContext{"AAPL": {Instrument: "AAPL"}}, normalStress())
	require.NoError(t, err)

	assert.Equal(t, absent, unknown, "an absent provider and an all-unknown row must decide identically")
	assert.Equal(t, domain.DecisionReadyNow, absent[0].Status)
	assert.Zero(t, absent[0].UnfavorableSignals, "unknown tags must never count against a candidate")
}

func TestDecide_KnownUnfavorableContextDemotes(t *testing.T) {
	e := NewEngine(testAcceptConfig(t))
	c := bullishCandidate()
	r := resultWith(domain.StatusValid, domain.F(90))

	t.Run("mildly against holds the entry", func(t *testing.T) {
		ctx := domain.InstrumentContext{Instrument: "AAPL", Momentum: domain.MomentumExhausted}
		d := e.DecideOne(c, r, ctx, normalStress())
		assert.Equal(t, domain.DecisionWait, d.Status)
		assert.Equal(t, 1, d.UnfavorableSignals)
	})

	t.Run("strongly against avoids the entry", func(t *testing.T) {
		ctx := domain.InstrumentContext{
			Instrument: "AAPL",
			Gap:        domain.GapBelowOpen,
			Week52:     domain.RangeNearLow,
			Momentum:   domain.MomentumFalling,
		}
		d := e.DecideOne(c, r, ctx, normalStress())
		assert.Equal(t, domain.DecisionAvoid, d.Status)
		assert.Equal(t, 3, d.UnfavorableSignals)
	})

	t.Run("favorable offsets unfavorable", func(t *testing.T) {
		ctx := domain.InstrumentContext{
			Instrument: "AAPL",
			Gap:        domain.GapBelowOpen,
			Week52:     domain.RangeNearHigh,
		}
		d := e.DecideOne(c, r, ctx, normalStress())
		assert.Equal(t, domain.DecisionReadyNow, d.Status)
	})
}

func TestDecide_ConfidenceAndSizing(t *testing.T) {
	e := NewEngine(testAcceptConfig(t))
	c := bullishCandidate()

	t.Run("high score with corroboration", func(t *testing.T) {
		ctx := domain.InstrumentContext{
			Instrument:  "AAPL",
			Compression: domain.CompressionTight,
			Timing:      domain.TimingConfirmed,
		}
		d := e.DecideOne(c, resultWith(domain.StatusValid, domain.F(90)), ctx, normalStress())
		assert.Equal(t, domain.DecisionReadyNow, d.Status)
		assert.Equal(t, domain.ConfidenceHigh, d.Confidence)
		assert.Equal(t, domain.SizeFull, d.SizeHint)
		assert.Equal(t, 2, d.FavorableSignals)
	})

	t.Run("low score without corroboration sizes minimal", func(t *testing.T) {
		d := e.DecideOne(c, resultWith(domain.StatusValid, domain.F(72)), domain.InstrumentContext{}, normalStress())
		assert.Equal(t, domain.DecisionReadyNow, d.Status)
		assert.Equal(t, domain.ConfidenceLow, d.Confidence)
		assert.Equal(t, domain.SizeMinimal, d.SizeHint)
	})

	t.Run("middling score is medium", func(t *testing.T) {
		d := e.DecideOne(c, resultWith(domain.StatusValid, domain.F(80)), domain.InstrumentContext{}, normalStress())
		assert.Equal(t, domain.ConfidenceMedium, d.Confidence)
		assert.Equal(t, domain.SizeFull, d.SizeHint)
	})
}

func TestDecide_RowMismatchIsSchemaError(t *testing.T) {
	e := NewEngine(testAcceptConfig(t))
	_, err := e.Decide(
		[]domain.StrategyCandidate{bullishCandidate(), bullishCandidate()},
		[]domain.ValidationResult{resultWith(domain.StatusValid, domain.F(90))},
		nil, normalStress(),
	)
	require.Error(t, err)
	assert.True(t, domain.IsSchemaError(err))
}

func TestDecide_DeterministicAcrossRunsAndWorkers(t *testing.T) {
	cfg := testAcceptConfig(t)

	var candidates []domain.StrategyCandidate
	var results []domain.ValidationResult
	statuses := []domain.ValidationStatus{
		domain.StatusValid, domain.StatusWatch, domain.StatusReject,
		domain.StatusIncompleteData, domain.StatusDeferredDTE,
	}
	for i := 0; i < 40; i++ {
		candidates = append(candidates, bullishCandidate())
		score := domain.MissingFloat()
		if i%5 < 2 {
			score = domain.F(float64(50 + i))
		}
		results = append(results, resultWith(statuses[i%5], score))
	}
	ctx := map[string]domain.InstrumentContext{
		"AAPL": {Instrument: "AAPL", Momentum: domain.MomentumRising},
	}

	first, err := NewEngine(cfg).Decide(candidates, results, ctx, normalStress())
	require.NoError(t, err)
	second, err := NewEngine(cfg).Decide(candidates, results, ctx, normalStress())
	require.NoError(t, err)
	parallel, err := NewEngine(cfg).WithWorkers(8).Decide(candidates, results, ctx, normalStress())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, parallel)
}

func TestStructuralBias(t *testing.T) {
	long := bullishCandidate()
	assert.Equal(t, "Delta", structuralBias(long))

	vol := long
	vol.Family = domain.FamilyVolatility
	vol.Vega = domain.F(0.4)
	assert.Equal(t, "LongVol", structuralBias(vol))

	vol.Vega = domain.F(-0.4)
	assert.Equal(t, "ShortVol", structuralBias(vol))

	income := long
	income.Family = domain.FamilyIncome
	assert.Equal(t, "ShortPremium", structuralBias(income))
}
