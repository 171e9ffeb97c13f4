package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/audit"
	"cleargate-hq/cleargate/pkg/config"
	"cleargate-hq/cleargate/pkg/permission"
	"cleargate-hq/cleargate/pkg/permission/store"
	"cleargate-hq/cleargate/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cleargate",
	Short: "Cleargate - local egress gate for LLM chat clients",
	Long: `Cleargate inspects content before it leaves the device for a cloud
model provider.

It provides:
  - Sensitive data detection (API keys, credentials, PII)
  - Prompt injection and invisible Unicode sanitization
  - Directory-scoped upload permission policies with user consent
  - An append-only audit trail of every permission decision`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the config file when one was given, the defaults
// otherwise, and installs the configured logger as the process default.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logCfg := cfg.Telemetry.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

// openAudit opens the configured audit backend.
func openAudit(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "memory":
		return audit.NewMemoryStorage(), nil
	case "sqlite", "":
		sqliteCfg := audit.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Audit.Path
		return audit.NewSQLiteStorage(sqliteCfg)
	}
	return nil, fmt.Errorf("unknown audit backend: %q", cfg.Audit.Backend)
}

// openPolicyStore opens the configured directory policy store.
func openPolicyStore(cfg *config.Config) (permission.PolicyStore, error) {
	switch cfg.Permissions.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite", "":
		return store.NewSQLiteStore(cfg.Permissions.StorePath)
	}
	return nil, fmt.Errorf("unknown policy store backend: %q", cfg.Permissions.StoreBackend)
}

// readInput reads the named file, or stdin when the argument is "-" or
// absent.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", args[0], err)
	}
	return string(data), nil
}
