package validate

import "github.com/voltlab/voltscan/internal/domain"

// requiredField is one family-specific input the validator must see before
// it will score a candidate. A missing required field routes the candidate to
// Incomplete_Data; it is never defaulted to zero and scored anyway.
type requiredField struct {
	name    string
	present func(domain.StrategyCandidate) bool
}

func floatField(name string, get func(domain.StrategyCandidate) domain.Float) requiredField {
	return requiredField{name: name, present: func(c domain.StrategyCandidate) bool {
		return get(c).Known()
	}}
}

// requiredFields returns the completeness contract per family, exhaustive
// over the family enum.
func requiredFields(f domain.Family) []requiredField {
	switch f {
	case domain.FamilyDirectional:
		return []requiredField{
			floatField("delta", func(c domain.StrategyCandidate) domain.Float { return c.Delta }),
			floatField("gamma", func(c domain.StrategyCandidate) domain.Float { return c.Gamma }),
			floatField("vega", func(c domain.StrategyCandidate) domain.Float { return c.Vega }),
		}
	case domain.FamilyVolatility:
		return []requiredField{
			floatField("delta", func(c domain.StrategyCandidate) domain.Float { return c.Delta }),
			floatField("vega", func(c domain.StrategyCandidate) domain.Float { return c.Vega }),
			floatField("skew", func(c domain.StrategyCandidate) domain.Float { return c.Skew }),
			floatField("iv_percentile", func(c domain.StrategyCandidate) domain.Float { return c.IVPercentile }),
		}
	case domain.FamilyIncome:
		return []requiredField{
			floatField("theta", func(c domain.StrategyCandidate) domain.Float { return c.Theta }),
			floatField("vega", func(c domain.StrategyCandidate) domain.Float { return c.Vega }),
			floatField("iv_rv_gap", func(c domain.StrategyCandidate) domain.Float { return c.IVRVGap }),
		}
	default:
		return nil
	}
}

// checkCompleteness evaluates the family's completeness contract.
// completeness is fields-present over fields-required.
func checkCompleteness(c domain.StrategyCandidate) (completeness float64, missing []string) {
	fields := requiredFields(c.Family)
	if len(fields) == 0 {
		return 0, nil
	}
	present := 0
	for _, f := range fields {
		if f.present(c) {
			present++
		} else {
			missing = append(missing, f.name)
		}
	}
	return float64(present) / float64(len(fields)), missing
}
