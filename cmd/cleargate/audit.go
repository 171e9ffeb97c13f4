package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/audit"
	"cleargate-hq/cleargate/pkg/audit/export"
	"cleargate-hq/cleargate/pkg/audit/retention"
	"cleargate-hq/cleargate/pkg/cli"
)

var auditFlags struct {
	fileID      string
	dirID       string
	destination string
	decision    string
	limit       int
	offset      int
	format      string
	output      string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the permission audit log",
	Long: `Query and export the append-only audit log of permission decisions.

Subcommands:
  query  - query entries with filters
  prune  - apply the retention policy once

Examples:
  # All denied cloud uploads
  cleargate audit query --decision denied --destination cloud

  # Export a directory's history as CSV
  cleargate audit query --dir-id d1 --format csv --output history.csv`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit entries",
	Long: `Query audit entries with filters. All given filters must match.
Entries are returned in the order the decisions were made.`,
	RunE: runAuditQuery,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Delete audit entries that fall outside the configured retention
window (maximum age and maximum entry count).`,
	RunE: runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditPruneCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.fileID, "file-id", "", "filter by file identity")
	auditQueryCmd.Flags().StringVar(&auditFlags.dirID, "dir-id", "", "filter by directory identity")
	auditQueryCmd.Flags().StringVar(&auditFlags.destination, "destination", "", "filter by destination (local, cloud)")
	auditQueryCmd.Flags().StringVar(&auditFlags.decision, "decision", "", "filter by decision (allowed, denied, pending)")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}
	format, err := cli.ParseFormat(auditFlags.format)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	auditor, err := openAudit(cfg)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}
	defer auditor.Close()

	entries, err := auditor.Query(context.Background(), audit.Filter{
		FileID:      auditFlags.fileID,
		DirectoryID: auditFlags.dirID,
		Destination: auditFlags.destination,
		Decision:    auditFlags.decision,
		Limit:       auditFlags.limit,
		Offset:      auditFlags.offset,
	})
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	out := cmd.OutOrStdout()
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return cli.NewCommandError("audit query", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case cli.FormatJSON:
		return export.NewJSONExporter(true).Export(context.Background(), entries, out)
	case cli.FormatCSV:
		return export.NewCSVExporter().Export(context.Background(), entries, out)
	default:
		printAuditEntries(out, entries)
		return nil
	}
}

func printAuditEntries(w io.Writer, entries []*audit.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching audit entries.")
		return
	}
	for _, entry := range entries {
		fmt.Fprintf(w, "%s  %-8s %-5s %-30s %s\n",
			entry.Timestamp.Format(time.RFC3339),
			entry.Decision,
			entry.Destination,
			entry.FileID,
			entry.Reason)
	}
	fmt.Fprintf(w, "%d entries.\n", len(entries))
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	auditor, err := openAudit(cfg)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	defer auditor.Close()

	deleted, err := retention.NewPruner(auditor, cfg.Audit.Retention).PruneOnce(context.Background())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d audit entries.\n", deleted)
	return nil
}
