package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voltlab/voltscan/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a scan and serve the result over HTTP",
		Long: "Runs one evaluation batch, then exposes /health, /metrics, and\n" +
			"/v1/runs/latest until interrupted. Re-runs on the given interval.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			obsPath, _ := cmd.Flags().GetString("observations")
			candPath, _ := cmd.Flags().GetString("candidates")
			interval, _ := cmd.Flags().GetDuration("interval")

			reg, m := metricsRegistry()
			server := httpapi.NewServer(cfg.Server, reg)

			runOnce := func(ctx context.Context) {
				res, err := runScan(ctx, cfg, obsPath, candPath, m)
				if err != nil {
					log.Error().Err(err).Msg("scheduled scan failed")
					return
				}
				server.SetLatest(res)
			}
			runOnce(cmd.Context())

			errCh := make(chan error, 1)
			go func() {
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-cmd.Context().Done():
					return server.Shutdown(context.Background())
				case err := <-errCh:
					return err
				case <-ticker.C:
					runOnce(cmd.Context())
				}
			}
		},
	}
	cmd.Flags().String("config", "", "path to YAML config (built-in defaults when omitted)")
	cmd.Flags().String("observations", "", "JSON file of market observations")
	cmd.Flags().String("candidates", "", "JSON file of strategy candidates")
	cmd.Flags().Duration("interval", 5*time.Minute, "rescan interval")
	_ = cmd.MarkFlagRequired("observations")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}
