package validate

import (
	"fmt"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
)

// complianceScore computes the weighted 0-100 score from secondary evidence.
// It starts at 100 and accumulates bonuses and penalties; unknown evidence is
// always neutral. Only reached once the contract gate, completeness precheck,
// and hard gates have all passed.
func complianceScore(c domain.StrategyCandidate, cfg config.ValidatorConfig) (float64, []domain.ScoreAdjustment) {
	w := cfg.Weights
	score := 100.0
	var adj []domain.ScoreAdjustment

	apply := func(name string, delta float64, note string) {
		if delta == 0 {
			return
		}
		score += delta
		adj = append(adj, domain.ScoreAdjustment{Name: name, Delta: delta, Note: note})
	}

	// Trend alignment with the strategy's directional requirement.
	switch alignment(c.Bias, c.TrendTag) {
	case alignedWith:
		apply("trend_alignment", w.TrendAligned, fmt.Sprintf("%s trend supports %s bias", c.TrendTag, c.Bias))
	case alignedAgainst:
		apply("trend_alignment", w.TrendMisaligned, fmt.Sprintf("%s trend opposes %s bias", c.TrendTag, c.Bias))
	}

	// Volume confirmation: a known lack of confirmation is penalized; an
	// unknown reading contributes nothing.
	if c.VolumeConfirmed.False() {
		apply("volume_confirmation", w.VolumeUnconfirmed, "move not confirmed by volume")
	}

	// Chart-pattern confidence, only when a recognized pattern exists.
	if c.PatternTag != "" && c.PatternConfidence.Known() {
		conf := c.PatternConfidence.Value()
		switch {
		case conf >= 60:
			apply("pattern_confidence", w.PatternBonusMax*conf/100,
				fmt.Sprintf("%s pattern at %.0f%% confidence", c.PatternTag, conf))
		case conf < 40:
			apply("pattern_confidence", w.PatternContradicts,
				fmt.Sprintf("%s pattern contradicted at %.0f%% confidence", c.PatternTag, conf))
		}
	}

	// Candlestick entry-timing confirmation: required only for short-dated
	// directional candidates; long-dated candidates are exempt.
	if c.Family == domain.FamilyDirectional && c.DTE.Known() && c.DTE.Value() <= cfg.ShortDatedDTEMax {
		if !c.CandleConfirmed.True() {
			apply("entry_timing", w.CandleUnconfirmed,
				fmt.Sprintf("short-dated (%.0f DTE) without candlestick confirmation", c.DTE.Value()))
		}
	}

	// Catalyst proximity: required for long-volatility strategies.
	if longVolatility(c) {
		if !c.CatalystWithinDays.Known() || c.CatalystWithinDays.Value() > cfg.CatalystWindowDays {
			apply("catalyst_proximity", w.CatalystAbsent,
				fmt.Sprintf("no catalyst within %.0f days for long volatility", cfg.CatalystWindowDays))
		}
	}

	// Term-structure shape, per family.
	if delta, note := termStructureAdjustment(c, w); delta != 0 {
		apply("term_structure", delta, note)
	}

	// Regime setup corroboration from the classifier.
	if c.Regime != nil {
		switch {
		case c.Family == domain.FamilyVolatility && c.Regime.ExpansionSetup:
			apply("regime_setup", w.RegimeSetupBonus, "expansion setup supports long volatility")
		case c.Family == domain.FamilyIncome && c.Regime.MeanReversionSetup:
			apply("regime_setup", w.RegimeSetupBonus, "mean-reversion setup supports premium selling")
		}
	}

	// LEAP fallback: structurally usable, penalized here rather than gated.
	if c.ContractStatus == domain.ContractLEAPFallback {
		apply("leap_fallback", w.LEAPFallback, "shorter-dated proxy in place of ideal long-dated contract")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score, adj
}

type trendAlignment int

const (
	alignedNeutral trendAlignment = iota
	alignedWith
	alignedAgainst
)

func alignment(bias domain.StrategyBias, trend string) trendAlignment {
	switch bias {
	case domain.BiasBullish:
		switch trend {
		case "Uptrend":
			return alignedWith
		case "Downtrend":
			return alignedAgainst
		}
	case domain.BiasBearish:
		switch trend {
		case "Downtrend":
			return alignedWith
		case "Uptrend":
			return alignedAgainst
		}
	case domain.BiasNeutral:
		if trend == "Sideways" {
			return alignedWith
		}
	}
	return alignedNeutral
}

// longVolatility reports whether the candidate is net-long vega, i.e. it
// profits from volatility expansion and therefore needs a catalyst.
func longVolatility(c domain.StrategyCandidate) bool {
	return c.Family == domain.FamilyVolatility && c.Vega.Known() && c.Vega.Value() > 0
}

func termStructureAdjustment(c domain.StrategyCandidate, w config.ScoringWeights) (float64, string) {
	if c.TermStructure == domain.TermUnknown {
		return 0, ""
	}
	switch c.Family {
	case domain.FamilyVolatility:
		// Backwardation means the front end is already bid; buying volatility
		// into it pays up for the event that already happened.
		if longVolatility(c) && c.TermStructure == domain.TermBackwardation {
			return w.TermUnfavorable, "backwardated term structure: front-end volatility already bid"
		}
	case domain.FamilyIncome:
		if c.TermStructure == domain.TermBackwardation {
			return w.TermUnfavorable, "backwardated term structure: stressed curve under short premium"
		}
	}
	return 0, ""
}

// statusForScore maps the final compliance score onto the status bands.
func statusForScore(score float64, cfg config.ValidatorConfig) domain.ValidationStatus {
	switch {
	case score >= cfg.ValidMin:
		return domain.StatusValid
	case score >= cfg.WatchMin:
		return domain.StatusWatch
	default:
		return domain.StatusReject
	}
}
