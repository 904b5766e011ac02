package accept

import "github.com/voltlab/voltscan/internal/domain"

// contextTally counts known favorable and unfavorable context signals for a
// candidate. Unknown tags contribute to neither side: absence of the context
// provider must never push a decision toward AVOID on its own.
type contextTally struct {
	Favorable   int
	Unfavorable int
}

// Score is favorable minus unfavorable; zero for fully unknown context.
func (t contextTally) Score() int {
	return t.Favorable - t.Unfavorable
}

// tallyContext classifies each known tag against the candidate's bias.
func tallyContext(c domain.StrategyCandidate, ctx domain.InstrumentContext) contextTally {
	var t contextTally

	switch ctx.Compression {
	case domain.CompressionTight:
		// Compressed ranges precede expansion; favorable for anything long
		// movement, neutral otherwise.
		if c.Family == domain.FamilyVolatility || c.Family == domain.FamilyDirectional {
			t.Favorable++
		}
	case domain.CompressionWide:
		if c.Family == domain.FamilyVolatility {
			t.Unfavorable++
		}
	}

	switch ctx.Gap {
	case domain.GapAboveOpen:
		switch c.Bias {
		case domain.BiasBullish:
			t.Favorable++
		case domain.BiasBearish:
			t.Unfavorable++
		}
	case domain.GapBelowOpen:
		switch c.Bias {
		case domain.BiasBearish:
			t.Favorable++
		case domain.BiasBullish:
			t.Unfavorable++
		}
	}

	switch ctx.Week52 {
	case domain.RangeNearHigh:
		switch c.Bias {
		case domain.BiasBullish:
			t.Favorable++
		case domain.BiasBearish:
			t.Unfavorable++
		}
	case domain.RangeNearLow:
		switch c.Bias {
		case domain.BiasBearish:
			t.Favorable++
		case domain.BiasBullish:
			t.Unfavorable++
		}
	}

	switch ctx.Momentum {
	case domain.MomentumRising:
		switch c.Bias {
		case domain.BiasBullish:
			t.Favorable++
		case domain.BiasBearish:
			t.Unfavorable++
		}
	case domain.MomentumFalling:
		switch c.Bias {
		case domain.BiasBearish:
			t.Favorable++
		case domain.BiasBullish:
			t.Unfavorable++
		}
	case domain.MomentumExhausted:
		if c.Bias == domain.BiasBullish || c.Bias == domain.BiasBearish {
			t.Unfavorable++
		}
	}

	switch ctx.Timing {
	case domain.TimingConfirmed:
		t.Favorable++
	case domain.TimingContradicts:
		t.Unfavorable++
	}

	return t
}
