package techctx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
)

// Provider supplies descriptive technical context keyed by instrument.
// Absence of the collaborator degrades to neutral context, never to an error.
type Provider interface {
	Context(ctx context.Context, instruments []string) (map[string]domain.InstrumentContext, error)
}

// None is the provider used when no collaborator is configured: every
// instrument resolves to fully unknown, and therefore neutral, context.
type None struct{}

func (None) Context(context.Context, []string) (map[string]domain.InstrumentContext, error) {
	return map[string]domain.InstrumentContext{}, nil
}

// Static serves a fixed context map; used in tests.
type Static map[string]domain.InstrumentContext

func (s Static) Context(context.Context, []string) (map[string]domain.InstrumentContext, error) {
	return s, nil
}

// Client is the HTTP adapter for the upstream context provider, with the
// same breaker and rate-limit posture as the stress monitor.
type Client struct {
	cfg     config.ProviderConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient builds the HTTP context client.
func NewClient(cfg config.ProviderConfig) *Client {
	name := cfg.BreakerName
	if name == "" {
		name = "tech-context"
	}
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
		}),
	}
}

// Context fetches tags for the requested instruments. Any failure returns an
// empty map: unknown context is neutral by contract.
func (c *Client) Context(ctx context.Context, instruments []string) (map[string]domain.InstrumentContext, error) {
	if len(instruments) == 0 {
		return map[string]domain.InstrumentContext{}, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return map[string]domain.InstrumentContext{}, nil
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, instruments)
	})
	if err != nil {
		log.Warn().Err(err).Msg("context provider unavailable; degrading to neutral")
		return map[string]domain.InstrumentContext{}, nil
	}
	return raw.(map[string]domain.InstrumentContext), nil
}

func (c *Client) fetch(ctx context.Context, instruments []string) (map[string]domain.InstrumentContext, error) {
	url := fmt.Sprintf("%s?instruments=%s", c.cfg.URL, strings.Join(instruments, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build context request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch context: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("context provider returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read context body: %w", err)
	}

	var rows []domain.InstrumentContext
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parse context rows: %w", err)
	}
	out := make(map[string]domain.InstrumentContext, len(rows))
	for _, r := range rows {
		if r.Instrument != "" {
			out[r.Instrument] = r
		}
	}
	return out, nil
}
