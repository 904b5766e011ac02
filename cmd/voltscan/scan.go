package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voltlab/voltscan/internal/audit"
	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
	"github.com/voltlab/voltscan/internal/metrics"
	"github.com/voltlab/voltscan/internal/pipeline"
	"github.com/voltlab/voltscan/internal/providers/stress"
	"github.com/voltlab/voltscan/internal/providers/techctx"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one evaluation batch from observation and candidate files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			obsPath, _ := cmd.Flags().GetString("observations")
			candPath, _ := cmd.Flags().GetString("candidates")

			res, err := runScan(cmd.Context(), cfg, obsPath, candPath, nil)
			if err != nil {
				return err
			}
			printSummary(cmd, res)
			return nil
		},
	}
	cmd.Flags().String("config", "", "path to YAML config (built-in defaults when omitted)")
	cmd.Flags().String("observations", "", "JSON file of market observations")
	cmd.Flags().String("candidates", "", "JSON file of strategy candidates")
	_ = cmd.MarkFlagRequired("observations")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

// runScan assembles the collaborators from config and executes one batch.
// m may be nil (scan command); serve passes a registered collector set.
func runScan(ctx context.Context, cfg *config.Config, obsPath, candPath string, m *metrics.Metrics) (*pipeline.RunResult, error) {
	observations, err := loadJSON[domain.MarketObservation](obsPath)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	candidates, err := loadJSON[domain.StrategyCandidate](candPath)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	sink, err := buildAuditSink(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("audit sink close failed")
		}
	}()

	runner := pipeline.NewRunner(cfg, buildStressProvider(cfg), buildContextProvider(cfg), sink, m)
	res, err := runner.Run(ctx, observations, candidates)
	if err != nil {
		return nil, err
	}

	// Enforce the handoff invariant even when nothing consumes the rows here.
	if _, err := res.ReadyForSizing(); err != nil {
		return nil, err
	}
	return res, nil
}

func buildStressProvider(cfg *config.Config) stress.Provider {
	if !cfg.Providers.Stress.Enabled {
		return nil
	}
	var cache *redis.Client
	if cfg.Providers.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Providers.Redis.Addr,
			Password: cfg.Providers.Redis.Password,
			DB:       cfg.Providers.Redis.DB,
		})
	}
	return stress.NewMonitor(cfg.Providers.Stress, cache, cfg.Providers.Redis.TTL, nil)
}

func buildContextProvider(cfg *config.Config) techctx.Provider {
	if !cfg.Providers.TechContext.Enabled {
		return nil
	}
	return techctx.NewClient(cfg.Providers.TechContext)
}

func buildAuditSink(cfg *config.Config) (audit.Sink, error) {
	sinks := audit.Multi{}
	if cfg.Audit.Dir != "" {
		w, err := audit.NewJSONLWriter(cfg.Audit.Dir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}
	if cfg.Audit.Postgres.Enabled {
		pg, err := audit.NewPostgresSink(cfg.Audit.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pg)
	}
	if len(sinks) == 0 {
		return audit.Nop{}, nil
	}
	return sinks, nil
}

func loadJSON[T any](path string) ([]T, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

func printSummary(cmd *cobra.Command, res *pipeline.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d candidates, stress %s\n", res.RunID, len(res.Decisions), res.Stress.Level)
	for status, n := range res.StatusCounts() {
		fmt.Fprintf(out, "  %-12s %d\n", status, n)
	}
	for i := range res.Decisions {
		d := res.Decisions[i]
		if d.Status == domain.DecisionReadyNow {
			fmt.Fprintf(out, "  READY %s %s (%s, confidence %s, size %s)\n",
				d.Instrument, d.Strategy, d.Family, d.Confidence, d.SizeHint)
		}
	}
}

// metricsRegistry builds a fresh registry plus collectors for serve mode.
func metricsRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	return reg, metrics.New(reg)
}
