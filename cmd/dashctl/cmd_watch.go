package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ndasurveying/dashctl/cmd/dashctl/ui"
	"github.com/ndasurveying/dashctl/internal/cache"
	"github.com/ndasurveying/dashctl/internal/dashboard"
	"github.com/ndasurveying/dashctl/internal/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the live dashboard",
	Long: `Opens the interactive dashboard: portfolio overview, job list, per-job
financials and budget position, refreshed automatically. When the backend
is unreachable the last fetched snapshot is shown, marked as stale.

Set METRICS_ADDR to expose Prometheus metrics for the session.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	sess, err := requireRole()
	if err != nil {
		return err
	}

	var snapshots dashboard.Snapshots
	if cfg.CacheEnabled {
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			// The dashboard works without the offline fallback.
			logger.Warn("Snapshot cache unavailable", "path", cfg.CachePath, "error", err)
		} else {
			defer store.Close()
			snapshots = store
		}
	}

	orch, err := dashboard.New(dashboard.Config{
		API:       client,
		Snapshots: snapshots,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go metrics.Serve(cmd.Context(), cfg.MetricsAddr, logger)
	}

	program := tea.NewProgram(
		ui.NewApp(cmd.Context(), orch, sess),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard terminated: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
