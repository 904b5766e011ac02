package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration. Every threshold the rule engine
// uses lives here and is threaded through constructors; there are no ambient
// module-level toggles, so behavior is reproducible from inputs alone.
type Config struct {
	Regime    RegimeConfig    `yaml:"regime"`
	Validator ValidatorConfig `yaml:"validator"`
	Accept    AcceptConfig    `yaml:"accept"`
	Providers ProvidersConfig `yaml:"providers"`
	Audit     AuditConfig     `yaml:"audit"`
	Server    ServerConfig    `yaml:"server"`
	Workers   int             `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
}

// RegimeConfig holds the classifier thresholds.
type RegimeConfig struct {
	// RVFloor is the minimum realized vol (vol points) below which the
	// relative gap is left null instead of dividing by a near-zero RV.
	RVFloor float64 `yaml:"rv_floor" default:"0.5" validate:"gt=0"`

	// Magnitude bands on the absolute gap.
	ModerateMin float64 `yaml:"moderate_min" default:"2.0" validate:"gt=0"`
	ElevatedMin float64 `yaml:"elevated_min" default:"3.5" validate:"gt=0"`
	HighMin     float64 `yaml:"high_min" default:"5.0" validate:"gt=0"`

	// Directional tags on the signed gap.
	RichMin  float64 `yaml:"rich_min" default:"3.5" validate:"gt=0"`
	CheapMax float64 `yaml:"cheap_max" default:"-3.5" validate:"lt=0"`

	// Composite setup flags.
	MeanReversionIVPctMin float64 `yaml:"mean_reversion_iv_pct_min" default:"70" validate:"gte=0,lte=100"`
	ExpansionIVPctMax     float64 `yaml:"expansion_iv_pct_max" default:"30" validate:"gte=0,lte=100"`
}

// FamilyGates holds the hard-gate ceilings and floors for one family.
// A fired gate forces Reject regardless of any other field.
type FamilyGates struct {
	// Volatility family.
	SkewCeiling            float64 `yaml:"skew_ceiling" default:"1.20" validate:"gt=0"`
	RealizedImpliedCeiling float64 `yaml:"realized_implied_ceiling" default:"1.00" validate:"gt=0"`
	VolOfVolCeiling        float64 `yaml:"vol_of_vol_ceiling" default:"110" validate:"gt=0"`

	// Income family.
	RealizedImpliedFloor float64 `yaml:"realized_implied_floor" default:"0.90" validate:"gt=0"`
	POPMin               float64 `yaml:"pop_min" default:"65" validate:"gte=0,lte=100"`
}

// ScoringWeights holds the compliance-score bonuses and penalties. Scoring
// starts at 100 and accumulates these; the result is clamped to [0,100].
type ScoringWeights struct {
	TrendMisaligned    float64 `yaml:"trend_misaligned" default:"-25"`
	TrendAligned       float64 `yaml:"trend_aligned" default:"5"`
	VolumeUnconfirmed  float64 `yaml:"volume_unconfirmed" default:"-10"`
	PatternBonusMax    float64 `yaml:"pattern_bonus_max" default:"5" validate:"gte=0"`
	PatternContradicts float64 `yaml:"pattern_contradicts" default:"-10"`
	CandleUnconfirmed  float64 `yaml:"candle_unconfirmed" default:"-15"`
	CatalystAbsent     float64 `yaml:"catalyst_absent" default:"-20"`
	TermUnfavorable    float64 `yaml:"term_unfavorable" default:"-10"`
	RegimeSetupBonus   float64 `yaml:"regime_setup_bonus" default:"5" validate:"gte=0"`
	LEAPFallback       float64 `yaml:"leap_fallback" default:"-8"`
}

// ValidatorConfig holds gates, weights, and status bands for the validator.
type ValidatorConfig struct {
	Gates   FamilyGates    `yaml:"gates"`
	Weights ScoringWeights `yaml:"weights"`

	// Status bands on the final compliance score.
	ValidMin float64 `yaml:"valid_min" default:"70" validate:"gt=0,lte=100"`
	WatchMin float64 `yaml:"watch_min" default:"50" validate:"gt=0,lte=100"`

	// Directional candidates at or under this DTE require candlestick
	// entry-timing confirmation; longer-dated candidates are exempt.
	ShortDatedDTEMax float64 `yaml:"short_dated_dte_max" default:"45" validate:"gt=0"`

	// Long-volatility strategies need a catalyst within this window.
	CatalystWindowDays float64 `yaml:"catalyst_window_days" default:"30" validate:"gt=0"`
}

// AcceptConfig holds the acceptance engine thresholds.
type AcceptConfig struct {
	// Context score = favorable - unfavorable known signals.
	ContextWaitAt  int `yaml:"context_wait_at" default:"-1" validate:"lte=0"`
	ContextAvoidAt int `yaml:"context_avoid_at" default:"-3" validate:"lte=0"`

	// Confidence banding.
	HighScoreMin      float64 `yaml:"high_score_min" default:"85" validate:"gt=0,lte=100"`
	HighCorroboration int     `yaml:"high_corroboration" default:"2" validate:"gte=0"`
	LowScoreMax       float64 `yaml:"low_score_max" default:"75" validate:"gt=0,lte=100"`
}

// ProviderConfig is one upstream HTTP collaborator.
type ProviderConfig struct {
	Enabled     bool          `yaml:"enabled"`
	URL         string        `yaml:"url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" default:"5s"`
	RateLimit   float64       `yaml:"rate_limit" default:"4"` // requests/sec
	RateBurst   int           `yaml:"rate_burst" default:"2" validate:"gte=1"`
	BreakerName string        `yaml:"breaker_name"`
}

// ProvidersConfig wires the optional upstream collaborators.
type ProvidersConfig struct {
	Stress      ProviderConfig `yaml:"stress"`
	TechContext ProviderConfig `yaml:"tech_context"`
	Redis       struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		TTL      time.Duration `yaml:"ttl" default:"60s"`
	} `yaml:"redis"`
}

// AuditConfig selects the audit export sinks.
type AuditConfig struct {
	Dir      string `yaml:"dir" default:"artifacts/audit"`
	Postgres struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"postgres"`
}

// ServerConfig configures the read-only HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8087"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"5s"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() (*Config, error) {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a YAML config file, applies defaults to unset fields, and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks field constraints plus the cross-field band ordering the
// struct tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	r := c.Regime
	if !(r.ModerateMin < r.ElevatedMin && r.ElevatedMin < r.HighMin) {
		return fmt.Errorf("regime bands must be ordered: moderate %.2f < elevated %.2f < high %.2f",
			r.ModerateMin, r.ElevatedMin, r.HighMin)
	}
	if c.Validator.WatchMin >= c.Validator.ValidMin {
		return fmt.Errorf("watch_min %.1f must be below valid_min %.1f",
			c.Validator.WatchMin, c.Validator.ValidMin)
	}
	if c.Accept.ContextAvoidAt > c.Accept.ContextWaitAt {
		return fmt.Errorf("context_avoid_at %d must be at or below context_wait_at %d",
			c.Accept.ContextAvoidAt, c.Accept.ContextWaitAt)
	}
	return nil
}
