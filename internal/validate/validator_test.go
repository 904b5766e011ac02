package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
)

func testConfig(t *testing.T) config.ValidatorConfig {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg.Validator
}

// directionalCandidate is a long-dated Long Call that passes every rule.
func directionalCandidate() domain.StrategyCandidate {
	return domain.StrategyCandidate{
		Instrument:     "AAPL",
		Strategy:       "Long Call",
		Family:         domain.FamilyDirectional,
		Bias:           domain.BiasBullish,
		ContractStatus: domain.ContractOK,
		MarketOpen:     true,
		DTE:            domain.F(120),
		Delta:          domain.F(0.62),
		Gamma:          domain.F(0.04),
		Vega:           domain.F(0.18),
		TrendTag:       "Uptrend",
	}
}

// volatilityCandidate is a Long Straddle that passes gates and scores Valid.
func volatilityCandidate() domain.StrategyCandidate {
	return domain.StrategyCandidate{
		Instrument:           "AAPL",
		Strategy:             "Long Straddle",
		Family:               domain.FamilyVolatility,
		Bias:                 domain.BiasNeutral,
		ContractStatus:       domain.ContractOK,
		MarketOpen:           true,
		DTE:                  domain.F(35),
		Delta:                domain.F(0.02),
		Vega:                 domain.F(0.40),
		Skew:                 domain.F(1.05),
		IVPercentile:         domain.F(35),
		RealizedImpliedRatio: domain.F(0.85),
		VolOfVol:             domain.F(92),
		VolSpikeWithin5d:     domain.B(false),
		CatalystWithinDays:   domain.F(12),
	}
}

// incomeCandidate is a Cash-Secured Put that passes gates and scores Valid.
func incomeCandidate() domain.StrategyCandidate {
	return domain.StrategyCandidate{
		Instrument:           "AAPL",
		Strategy:             "Cash-Secured Put",
		Family:               domain.FamilyIncome,
		Bias:                 domain.BiasNeutral,
		ContractStatus:       domain.ContractOK,
		MarketOpen:           true,
		DTE:                  domain.F(40),
		Theta:                domain.F(-0.05),
		Vega:                 domain.F(-0.12),
		IVRVGap:              domain.F(4.2),
		RealizedImpliedRatio: domain.F(1.08),
		ProbabilityOfProfit:  domain.F(78),
	}
}

func TestValidate_SchemaViolationsAbort(t *testing.T) {
	v := NewValidator(testConfig(t))

	tests := []struct {
		name   string
		mutate func(*domain.StrategyCandidate)
	}{
		{"missing instrument", func(c *domain.StrategyCandidate) { c.Instrument = "" }},
		{"missing strategy", func(c *domain.StrategyCandidate) { c.Strategy = "" }},
		{"unknown family", func(c *domain.StrategyCandidate) { c.Family = domain.FamilyUnknown }},
		{"foreign contract status", func(c *domain.StrategyCandidate) { c.ContractStatus = "SOMETHING_ELSE" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := directionalCandidate()
			tt.mutate(&c)
			_, err := v.Validate([]domain.StrategyCandidate{c})
			require.Error(t, err)
			assert.True(t, domain.IsSchemaError(err))
		})
	}
}

func TestValidate_ContractStatusGatePrecedence(t *testing.T) {
	v := NewValidator(testConfig(t))

	tests := []struct {
		status     domain.ContractStatus
		marketOpen bool
		want       domain.ValidationStatus
	}{
		{domain.ContractNoExpirations, true, domain.StatusDeferredDTE},
		{domain.ContractFailedLiquidity, false, domain.StatusDeferredLiquidity},
		{domain.ContractFailedLiquidity, true, domain.StatusReject},
		{domain.ContractFailedGreeks, true, domain.StatusPendingGreeks},
		{domain.ContractFailedIV, true, domain.StatusPendingGreeks},
		{domain.ContractNoChain, true, domain.StatusReject},
		{domain.ContractNoCalls, true, domain.StatusReject},
		{domain.ContractNoPuts, true, domain.StatusReject},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			// Deliberately strip every field the later rules need: the
			// contract gate must decide alone, skipping all further rules.
			c := domain.StrategyCandidate{
				Instrument:     "AAPL",
				Strategy:       "Long Call",
				Family:         domain.FamilyDirectional,
				ContractStatus: tt.status,
				MarketOpen:     tt.marketOpen,
			}
			res, err := v.Validate([]domain.StrategyCandidate{c})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res[0].Status)
			assert.NotEmpty(t, res[0].Rationale)
			assert.False(t, res[0].Score.Known(), "gated candidates must not be scored")
		})
	}
}

func TestValidate_LEAPFallbackIsNotGated(t *testing.T) {
	v := NewValidator(testConfig(t))

	c := directionalCandidate()
	c.ContractStatus = domain.ContractLEAPFallback
	res, err := v.Validate([]domain.StrategyCandidate{c})
	require.NoError(t, err)

	require.True(t, res[0].Score.Known(), "LEAP fallback must reach scoring")
	assert.InDelta(t, 97.0, res[0].Score.Value(), 1e-9) // 100 +5 trend -8 LEAP
	assert.Equal(t, domain.StatusValid, res[0].Status)
}

func TestValidate_CompletenessPerFamily(t *testing.T) {
	v := NewValidator(testConfig(t))

	t.Run("directional missing gamma", func(t *testing.T) {
		c := directionalCandidate()
		c.Gamma = domain.MissingFloat()
		res, err := v.Validate([]domain.StrategyCandidate{c})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusIncompleteData, res[0].Status)
		assert.InDelta(t, 2.0/3.0, res[0].Completeness, 1e-9)
		assert.Equal(t, []string{"gamma"}, res[0].MissingFields)
		assert.False(t, res[0].Score.Known(), "missing fields must never be defaulted and scored")
	})

	t.Run("volatility missing skew and percentile", func(t *testing.T) {
		c := volatilityCandidate()
		c.Skew = domain.MissingFloat()
		c.IVPercentile = domain.MissingFloat()
		res, err := v.Validate([]domain.StrategyCandidate{c})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusIncompleteData, res[0].Status)
		assert.InDelta(t, 0.5, res[0].Completeness, 1e-9)
		assert.ElementsMatch(t, []string{"skew", "iv_percentile"}, res[0].MissingFields)
	})

	t.Run("income missing gap", func(t *testing.T) {
		c := incomeCandidate()
		c.IVRVGap = domain.MissingFloat()
		res, err := v.Validate([]domain.StrategyCandidate{c})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusIncompleteData, res[0].Status)
		assert.InDelta(t, 2.0/3.0, res[0].Completeness, 1e-9)
	})

	t.Run("complete candidate reports full completeness", func(t *testing.T) {
		res, err := v.Validate([]domain.StrategyCandidate{incomeCandidate()})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, res[0].Completeness, 1e-9)
	})
}

func TestValidate_VolatilityHardGates(t *testing.T) {
	v := NewValidator(testConfig(t))

	tests := []struct {
		name   string
		mutate func(*domain.StrategyCandidate)
		detail string
	}{
		{"skew above ceiling", func(c *domain.StrategyCandidate) { c.Skew = domain.F(1.25) }, "skew"},
		{"no edge to buy vol", func(c *domain.StrategyCandidate) { c.RealizedImpliedRatio = domain.F(1.04) }, "realized/implied"},
		{"vol-of-vol ceiling", func(c *domain.StrategyCandidate) { c.VolOfVol = domain.F(125) }, "vol-of-vol"},
		{"recent vol spike", func(c *domain.StrategyCandidate) { c.VolSpikeWithin5d = domain.B(true) }, "spike"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := volatilityCandidate()
			tt.mutate(&c)
			res, err := v.Validate([]domain.StrategyCandidate{c})
			require.NoError(t, err)
			assert.Equal(t, domain.StatusReject, res[0].Status,
				"a fired hard gate must reject regardless of any other field")
			assert.NotEmpty(t, res[0].GateFailures)
			assert.Contains(t, res[0].Rationale, tt.detail)
			assert.False(t, res[0].Score.Known())
		})
	}
}

func TestValidate_IncomeHardGates(t *testing.T) {
	v := NewValidator(testConfig(t))

	t.Run("realized/implied below floor on covered call", func(t *testing.T) {
		c := incomeCandidate()
		c.Strategy = "Covered Call"
		c.RealizedImpliedRatio = domain.F(0.85)
		res, err := v.Validate([]domain.StrategyCandidate{c})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReject, res[0].Status)
		assert.Contains(t, res[0].Rationale, "wrong direction to sell premium")
	})

	t.Run("probability of profit below minimum", func(t *testing.T) {
		c := incomeCandidate()
		c.ProbabilityOfProfit = domain.F(60)
		res, err := v.Validate([]domain.StrategyCandidate{c})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReject, res[0].Status)
		assert.Contains(t, res[0].Rationale, "probability of profit")
	})

	t.Run("unknown optional inputs do not fire gates", func(t *testing.T) {
		c := incomeCandidate()
		c.RealizedImpliedRatio = domain.MissingFloat()
		c.ProbabilityOfProfit = domain.MissingFloat()
		res, err := v.Validate([]domain.StrategyCandidate{c})
		require.NoError(t, err)
		assert.NotEqual(t, domain.StatusReject, res[0].Status)
	})
}

func TestValidate_DirectionalHasNoHardGates(t *testing.T) {
	fired := hardGates(directionalCandidate(), testConfig(t).Gates)
	assert.Empty(t, fired)
}

func TestValidate_RowCountAndOrderPreserved(t *testing.T) {
	v := NewValidator(testConfig(t))

	batch := []domain.StrategyCandidate{directionalCandidate(), volatilityCandidate(), incomeCandidate()}
	res, err := v.Validate(batch)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "Long Call", res[0].Strategy)
	assert.Equal(t, "Long Straddle", res[1].Strategy)
	assert.Equal(t, "Cash-Secured Put", res[2].Strategy)
}

func TestValidate_ParallelMatchesSerial(t *testing.T) {
	cfg := testConfig(t)
	var batch []domain.StrategyCandidate
	for i := 0; i < 40; i++ {
		switch i % 3 {
		case 0:
			batch = append(batch, directionalCandidate())
		case 1:
			batch = append(batch, volatilityCandidate())
		default:
			batch = append(batch, incomeCandidate())
		}
	}
	serial, err := NewValidator(cfg).Validate(batch)
	require.NoError(t, err)
	parallel, err := NewValidator(cfg).WithWorkers(8).Validate(batch)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestValidate_EndToEndScenario(t *testing.T) {
	// The three-candidate scenario: one Incomplete, one Valid, one Reject.
	v := NewValidator(testConfig(t))

	longCall := directionalCandidate()
	longCall.Gamma = domain.MissingFloat()

	straddle := volatilityCandidate() // skew 1.05, realized/implied 0.85, no spike

	csp := incomeCandidate()
	csp.ProbabilityOfProfit = domain.F(60)

	res, err := v.Validate([]domain.StrategyCandidate{longCall, straddle, csp})
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, domain.StatusIncompleteData, res[0].Status)
	assert.InDelta(t, 2.0/3.0, res[0].Completeness, 1e-9)

	assert.Equal(t, domain.StatusValid, res[1].Status)
	require.True(t, res[1].Score.Known())
	assert.GreaterOrEqual(t, res[1].Score.Value(), 70.0)

	assert.Equal(t, domain.StatusReject, res[2].Status)
}
