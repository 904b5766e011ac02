package regime

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
	"github.com/voltlab/voltscan/internal/parmap"
)

// Classifier tags each instrument with its implied-vs-realized volatility
// divergence state. It is strictly descriptive: it never drops or reorders
// rows, never assigns a strategy label, and never emits a pass/fail flag.
type Classifier struct {
	cfg     config.RegimeConfig
	workers int
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg config.RegimeConfig) *Classifier {
	return &Classifier{cfg: cfg, workers: 1}
}

// WithWorkers distributes per-row work across n goroutines. Output is
// serial-equivalent: rows are written by index, never streamed.
func (c *Classifier) WithWorkers(n int) *Classifier {
	c.workers = n
	return c
}

// Classify derives one InstrumentRegime per observation, in input order.
// A structurally absent column (nil IV or RV map, empty instrument) is a
// schema violation and aborts the whole batch; a missing value at one tenor
// is an ordinary null and only leaves that tenor's derived fields null.
func (c *Classifier) Classify(batch []domain.MarketObservation) ([]domain.InstrumentRegime, error) {
	// Schema check for the whole batch before any row is classified.
	for i, obs := range batch {
		if obs.Instrument == "" {
			return nil, domain.NewSchemaError("classifier", "row %d: instrument identifier missing", i)
		}
		if obs.IV == nil {
			return nil, domain.NewSchemaError("classifier", "row %d (%s): implied volatility column absent", i, obs.Instrument)
		}
		if obs.RV == nil {
			return nil, domain.NewSchemaError("classifier", "row %d (%s): realized volatility column absent", i, obs.Instrument)
		}
	}

	out := make([]domain.InstrumentRegime, len(batch))
	parmap.Run(c.workers, len(batch), func(i int) {
		out[i] = c.classifyOne(batch[i])
	})
	if len(out) != len(batch) {
		return nil, domain.RowCountError("classifier", len(batch), len(out))
	}
	log.Debug().Int("rows", len(out)).Msg("regime classification complete")
	return out, nil
}

func (c *Classifier) classifyOne(obs domain.MarketObservation) domain.InstrumentRegime {
	row := domain.InstrumentRegime{
		Instrument:  obs.Instrument,
		Divergences: make([]domain.VolatilityDivergence, 0, len(domain.Tenors)),
	}
	for _, t := range domain.Tenors {
		row.Divergences = append(row.Divergences, c.diverge(t, obs.IVAt(t), obs.RVAt(t)))
	}
	row.MeanReversionSetup = c.meanReversionSetup(obs.Aux)
	row.ExpansionSetup = c.expansionSetup(obs.Aux)
	return row
}

// diverge computes one tenor's divergence row. Nulls propagate: a missing IV
// or RV leaves every derived field null rather than inferring a value.
func (c *Classifier) diverge(t domain.Tenor, iv, rv domain.Float) domain.VolatilityDivergence {
	d := domain.VolatilityDivergence{Tenor: t}
	if !iv.Known() || !rv.Known() {
		return d
	}

	gap := iv.Value() - rv.Value()
	abs := math.Abs(gap)
	d.SignedGap = domain.F(gap)
	d.AbsGap = domain.F(abs)

	// Relative gap only when RV clears the floor; dividing by a near-zero RV
	// turns noise into an enormous ratio.
	if rv.Value() > c.cfg.RVFloor {
		d.RelativeGap = domain.F(gap / rv.Value())
	}

	switch {
	case abs >= c.cfg.HighMin:
		d.Band = domain.BandHigh
	case abs >= c.cfg.ElevatedMin:
		d.Band = domain.BandElevated
	case abs >= c.cfg.ModerateMin:
		d.Band = domain.BandModerate
	}

	switch {
	case gap >= c.cfg.RichMin:
		d.Direction = domain.DirectionRich
	case gap <= c.cfg.CheapMax:
		d.Direction = domain.DirectionCheap
	}
	return d
}

// meanReversionSetup requires all three auxiliary observations; any missing
// input forces false, never an inferred true.
func (c *Classifier) meanReversionSetup(aux domain.AuxSignals) bool {
	if !aux.IVPercentile.Known() || aux.IVTrend == domain.TrendUnknown || aux.RVTrend == domain.TrendUnknown {
		return false
	}
	return aux.IVPercentile.Value() > c.cfg.MeanReversionIVPctMin &&
		aux.IVTrend == domain.TrendRising &&
		(aux.RVTrend == domain.TrendStable || aux.RVTrend == domain.TrendFalling)
}

func (c *Classifier) expansionSetup(aux domain.AuxSignals) bool {
	if !aux.IVPercentile.Known() || aux.IVTrend == domain.TrendUnknown || aux.RVTrend == domain.TrendUnknown {
		return false
	}
	return aux.IVPercentile.Value() < c.cfg.ExpansionIVPctMax &&
		aux.RVTrend == domain.TrendRising &&
		(aux.IVTrend == domain.TrendStable || aux.IVTrend == domain.TrendFalling)
}
