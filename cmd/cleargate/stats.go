package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/cli"
	"cleargate-hq/cleargate/pkg/permission"
)

var statsFlags struct {
	format string
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show permission statistics",
	Long: `Show aggregate counters derived from the audit log: total requests,
decisions by outcome, destinations, and how often sensitive data was
involved.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsFlags.format, "format", "text", "output format: text, json")
}

func runStats(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(statsFlags.format)
	if err != nil {
		return cli.NewCommandError("stats", err)
	}
	return withManager(func(ctx context.Context, m *permission.Manager) error {
		stats, err := m.Statistics(ctx)
		if err != nil {
			return cli.NewCommandError("stats", err)
		}

		out := cmd.OutOrStdout()
		if format == cli.FormatJSON {
			return (&cli.JSONFormatter{Indent: true}).FormatTo(out, stats)
		}
		fmt.Fprintf(out, "Total requests:          %d\n", stats.TotalRequests)
		fmt.Fprintf(out, "Allowed:                 %d\n", stats.Allowed)
		fmt.Fprintf(out, "Denied:                  %d\n", stats.Denied)
		fmt.Fprintf(out, "Cloud uploads:           %d\n", stats.CloudUploads)
		fmt.Fprintf(out, "Local only:              %d\n", stats.LocalOnly)
		fmt.Fprintf(out, "Sensitive data detected: %d\n", stats.SensitiveDataDetected)
		return nil
	})
}
