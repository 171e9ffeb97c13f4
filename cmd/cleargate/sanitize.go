package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/cli"
	"cleargate-hq/cleargate/pkg/sanitizer"
)

var sanitizeFlags struct {
	format string
	rag    bool
}

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file|-]",
	Short: "Sanitize untrusted input",
	Long: `Run untrusted input through the layered sanitizer: length limits,
invisible Unicode stripping, and prompt injection pattern matching.

With --rag the input is treated as retrieved document context instead:
invisible characters are stripped and role markers and template
delimiters are neutralized, and the cleaned text is printed as-is.

Exit codes:
  0  input is safe
  2  risk score crossed the unsafe threshold

Examples:
  # Sanitize a pasted snippet
  cleargate sanitize pasted.txt

  # Neutralize retrieved context before it reaches the prompt
  cleargate sanitize --rag retrieved.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSanitize,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
	sanitizeCmd.Flags().StringVar(&sanitizeFlags.format, "format", "text", "output format: text, json")
	sanitizeCmd.Flags().BoolVar(&sanitizeFlags.rag, "rag", false, "treat input as retrieved document context")
}

func runSanitize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("sanitize", err)
	}
	text, err := readInput(args)
	if err != nil {
		return cli.NewCommandError("sanitize", err)
	}

	s := sanitizer.NewSanitizer(&cfg.Sanitizer)
	out := cmd.OutOrStdout()

	if sanitizeFlags.rag {
		fmt.Fprint(out, s.SanitizeRAGContext(text))
		return nil
	}

	format, err := cli.ParseFormat(sanitizeFlags.format)
	if err != nil {
		return cli.NewCommandError("sanitize", err)
	}

	result := s.Sanitize(text)
	switch format {
	case cli.FormatJSON:
		if err := (&cli.JSONFormatter{Indent: true}).FormatTo(out, result); err != nil {
			return cli.NewCommandError("sanitize", err)
		}
	default:
		if result.Safe {
			fmt.Fprintf(out, "Input is safe (risk score %d).\n", result.RiskScore)
		} else {
			fmt.Fprintf(out, "Input is UNSAFE (risk score %d).\n", result.RiskScore)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "  [%s] %s: %s\n", warning.Severity, warning.Type, warning.Description)
		}
	}

	if !result.Safe {
		os.Exit(2)
	}
	return nil
}
