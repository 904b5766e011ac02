package stress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
)

// Provider yields the single market-stress reading captured once at the start
// of an acceptance run.
type Provider interface {
	Snapshot(ctx context.Context) (domain.StressSnapshot, error)
}

// Static always returns a fixed snapshot; used when no monitor is configured
// and in tests.
type Static struct {
	Reading domain.StressSnapshot
}

func (s Static) Snapshot(context.Context) (domain.StressSnapshot, error) {
	return s.Reading, nil
}

// Disabled returns the explicit neutral snapshot. An absent monitor never
// halts and never clears anything on its own.
func Disabled(clock func() time.Time) Provider {
	return Static{Reading: domain.NeutralStress(clock())}
}

// wire format of the upstream monitor.
type reading struct {
	Level string  `json:"level"`
	Basis float64 `json:"basis"`
}

// Monitor is the HTTP client for the upstream stress monitor. Requests go
// through a rate limiter and a circuit breaker; a fresh reading is cached in
// Redis so repeated runs within the TTL share one snapshot. Every failure
// path degrades to the neutral Unknown snapshot rather than erroring: stress
// is an optional collaborator.
type Monitor struct {
	cfg     config.ProviderConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *redis.Client
	ttl     time.Duration
	clock   func() time.Time
}

// NewMonitor builds the client. cache may be nil when Redis is disabled.
func NewMonitor(cfg config.ProviderConfig, cache *redis.Client, ttl time.Duration, clock func() time.Time) *Monitor {
	if clock == nil {
		clock = time.Now
	}
	name := cfg.BreakerName
	if name == "" {
		name = "stress-monitor"
	}
	return &Monitor{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
		}),
		cache: cache,
		ttl:   ttl,
		clock: clock,
	}
}

const cacheKey = "voltscan:stress:latest"

// Snapshot fetches the current reading, preferring the cache.
func (m *Monitor) Snapshot(ctx context.Context) (domain.StressSnapshot, error) {
	if snap, ok := m.fromCache(ctx); ok {
		return snap, nil
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return domain.NeutralStress(m.clock()), nil
	}

	raw, err := m.breaker.Execute(func() (interface{}, error) {
		return m.fetch(ctx)
	})
	if err != nil {
		log.Warn().Err(err).Msg("stress monitor unavailable; using neutral snapshot")
		return domain.NeutralStress(m.clock()), nil
	}

	snap := m.toSnapshot(raw.(reading))
	m.toCache(ctx, snap)
	return snap, nil
}

func (m *Monitor) fetch(ctx context.Context) (reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.URL, nil)
	if err != nil {
		return reading{}, fmt.Errorf("build stress request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return reading{}, fmt.Errorf("fetch stress reading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return reading{}, fmt.Errorf("stress monitor returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return reading{}, fmt.Errorf("read stress body: %w", err)
	}
	var r reading
	if err := json.Unmarshal(body, &r); err != nil {
		return reading{}, fmt.Errorf("parse stress reading: %w", err)
	}
	return r, nil
}

func (m *Monitor) toSnapshot(r reading) domain.StressSnapshot {
	level := domain.StressLevel(r.Level)
	switch level {
	case domain.StressNormal, domain.StressElevated, domain.StressSevere, domain.StressExtreme:
	default:
		level = domain.StressUnknown
	}
	return domain.StressSnapshot{
		Level:      level,
		Basis:      domain.F(r.Basis),
		CapturedAt: m.clock(),
		Source:     m.cfg.URL,
	}
}

func (m *Monitor) fromCache(ctx context.Context) (domain.StressSnapshot, bool) {
	if m.cache == nil {
		return domain.StressSnapshot{}, false
	}
	raw, err := m.cache.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		return domain.StressSnapshot{}, false
	}
	if err != nil {
		log.Warn().Err(err).Msg("stress cache read failed")
		return domain.StressSnapshot{}, false
	}
	var snap domain.StressSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return domain.StressSnapshot{}, false
	}
	return snap, true
}

func (m *Monitor) toCache(ctx context.Context, snap domain.StressSnapshot) {
	if m.cache == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, cacheKey, raw, m.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("stress cache write failed")
	}
}
