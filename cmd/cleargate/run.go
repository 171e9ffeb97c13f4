package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/audit/retention"
	"cleargate-hq/cleargate/pkg/cli"
	"cleargate-hq/cleargate/pkg/permission"
	"cleargate-hq/cleargate/pkg/telemetry/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gate daemon",
	Long: `Run the long-lived gate process: watch the policy file for changes,
apply the audit retention schedule, and serve Prometheus metrics when
an endpoint is configured.

The daemon runs until SIGINT or SIGTERM.

Examples:
  cleargate run --config /etc/cleargate/config.yaml`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	policyStore, err := openPolicyStore(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer policyStore.Close()

	auditor, err := openAudit(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer auditor.Close()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	}

	manager := permission.NewManager(policyStore, auditor, permission.WithMetrics(collector))
	ctx := cli.SetupSignalHandler()

	if cfg.Audit.Retention.Schedule != "" {
		scheduler := retention.NewScheduler(retention.NewPruner(auditor, cfg.Audit.Retention))
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
	}

	if cfg.Permissions.WatchPolicyFile && cfg.Permissions.PolicyFile != "" {
		watcher, err := permission.NewPolicyFileWatcher(manager, cfg.Permissions.PolicyFile, cfg.Permissions.WatchDebounce, nil)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("policy watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	if collector != nil && cfg.Telemetry.Metrics.ListenAddress != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.Telemetry.Metrics.ListenAddress, nil); err != nil {
				slog.Error("metrics endpoint exited", "error", err)
			}
		}()
	}

	slog.Info("cleargate running", "version", Version)
	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}
