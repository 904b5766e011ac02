package validate

import (
	"fmt"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
)

// hardGates applies the family-specific reject gates. Any fired gate forces
// Reject regardless of every other field, including a compliance score that
// would otherwise clear the Valid band. Gates only fire on known values:
// a missing input belongs to the completeness precheck, not to a gate.
func hardGates(c domain.StrategyCandidate, g config.FamilyGates) []string {
	switch c.Family {
	case domain.FamilyVolatility:
		return volatilityGates(c, g)
	case domain.FamilyIncome:
		return incomeGates(c, g)
	case domain.FamilyDirectional:
		// Directional soundness is entirely score-driven; the family carries
		// no unconditional reject thresholds.
		return nil
	default:
		return nil
	}
}

func volatilityGates(c domain.StrategyCandidate, g config.FamilyGates) []string {
	var fired []string

	if c.Skew.Known() && c.Skew.Value() > g.SkewCeiling {
		fired = append(fired, fmt.Sprintf(
			"skew %.2f above ceiling %.2f: puts overpriced at matched strikes", c.Skew.Value(), g.SkewCeiling))
	}
	if c.RealizedImpliedRatio.Known() && c.RealizedImpliedRatio.Value() > g.RealizedImpliedCeiling {
		fired = append(fired, fmt.Sprintf(
			"realized/implied %.2f above %.2f: no statistical edge to buy volatility",
			c.RealizedImpliedRatio.Value(), g.RealizedImpliedCeiling))
	}
	if c.VolOfVol.Known() && c.VolOfVol.Value() > g.VolOfVolCeiling {
		fired = append(fired, fmt.Sprintf(
			"vol-of-vol %.1f above ceiling %.1f: regime too unstable", c.VolOfVol.Value(), g.VolOfVolCeiling))
	}
	if c.VolSpikeWithin5d.True() {
		fired = append(fired, "volatility spike within last 5 days: clustering risk")
	}
	return fired
}

func incomeGates(c domain.StrategyCandidate, g config.FamilyGates) []string {
	var fired []string

	if c.RealizedImpliedRatio.Known() && c.RealizedImpliedRatio.Value() < g.RealizedImpliedFloor {
		fired = append(fired, fmt.Sprintf(
			"realized/implied %.2f below %.2f: wrong direction to sell premium",
			c.RealizedImpliedRatio.Value(), g.RealizedImpliedFloor))
	}
	if c.ProbabilityOfProfit.Known() && c.ProbabilityOfProfit.Value() < g.POPMin {
		fired = append(fired, fmt.Sprintf(
			"probability of profit %.0f below minimum %.0f", c.ProbabilityOfProfit.Value(), g.POPMin))
	}
	return fired
}
