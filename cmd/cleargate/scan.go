package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/cli"
	"cleargate-hq/cleargate/pkg/detector"
)

var scanFlags struct {
	format string
}

var scanCmd = &cobra.Command{
	Use:   "scan [file|-]",
	Short: "Scan content for sensitive data",
	Long: `Scan content for API keys, credentials, and personally identifiable
information. Reads from the named file, or stdin when the argument is
"-" or absent.

Matched values are always redacted in the output; the full value never
leaves the detector.

Exit codes:
  0  no sensitive data, or recommendation is allow/warn
  2  recommendation is block

Examples:
  # Scan a file
  cleargate scan notes.txt

  # Scan stdin as JSON
  cat draft.md | cleargate scan --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanFlags.format, "format", "text", "output format: text, json")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("scan", err)
	}
	text, err := readInput(args)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}

	format, err := cli.ParseFormat(scanFlags.format)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}

	result := detector.NewDetector(&cfg.Detector).Scan(text)

	switch format {
	case cli.FormatJSON:
		if err := (&cli.JSONFormatter{Indent: true}).FormatTo(cmd.OutOrStdout(), result); err != nil {
			return cli.NewCommandError("scan", err)
		}
	default:
		printScanResult(cmd, &result)
	}

	if result.Recommendation == detector.RecommendBlock {
		os.Exit(2)
	}
	return nil
}

func printScanResult(cmd *cobra.Command, result *detector.ScanResult) {
	out := cmd.OutOrStdout()
	if !result.HasSensitiveData {
		fmt.Fprintln(out, "No sensitive data detected.")
		return
	}
	fmt.Fprintf(out, "Sensitive data detected (%d matches, overall risk: %s, recommendation: %s)\n",
		len(result.Matches), result.OverallRiskLevel, result.Recommendation)
	for _, match := range result.Matches {
		fmt.Fprintf(out, "  [%s] %s at offset %d: %s\n",
			match.RiskLevel, match.Type, match.Offset, match.Value)
	}
}
