package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/cli"
	"cleargate-hq/cleargate/pkg/detector"
	"cleargate-hq/cleargate/pkg/permission"
)

var checkFlags struct {
	fileID      string
	dirID       string
	destination string
	provider    string
	format      string
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run a full upload permission check",
	Long: `Scan a file for sensitive data and run the result through the
permission manager: directory policies, the session cache, and the
risk-based decision, with the outcome recorded in the audit log.

When --file-id or --dir-id are omitted they are derived from the file
path.

Examples:
  # Check a report before a cloud upload
  cleargate check --destination cloud --provider openai report.txt

  # Local inference is always allowed
  cleargate check --destination local notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkFlags.fileID, "file-id", "", "file identity (default: the file path)")
	checkCmd.Flags().StringVar(&checkFlags.dirID, "dir-id", "", "directory identity (default: the parent directory)")
	checkCmd.Flags().StringVar(&checkFlags.destination, "destination", "cloud", "destination: local, cloud")
	checkCmd.Flags().StringVar(&checkFlags.provider, "provider", "", "model provider name")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	destination := permission.Destination(checkFlags.destination)
	if destination != permission.DestinationLocal && destination != permission.DestinationCloud {
		return cli.NewCommandError("check", fmt.Errorf("invalid destination: %q", checkFlags.destination))
	}

	text, err := readInput(args)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	filePath, err := filepath.Abs(args[0])
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	fileID := checkFlags.fileID
	if fileID == "" {
		fileID = filePath
	}
	dirID := checkFlags.dirID
	if dirID == "" {
		dirID = filepath.Dir(filePath)
	}

	policyStore, err := openPolicyStore(cfg)
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	defer policyStore.Close()

	auditor, err := openAudit(cfg)
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	defer auditor.Close()

	manager := permission.NewManager(policyStore, auditor)
	scan := detector.NewDetector(&cfg.Detector).Scan(text)

	resp, err := manager.CheckUploadPermission(context.Background(), &permission.UploadPermissionRequest{
		FileID:      fileID,
		FilePath:    filePath,
		DirectoryID: dirID,
		Destination: destination,
		Provider:    checkFlags.provider,
		ScanResult:  scan,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		return (&cli.JSONFormatter{Indent: true}).FormatTo(out, resp)
	}
	fmt.Fprintf(out, "Decision: %s\n", resp.Decision)
	fmt.Fprintf(out, "Reason:   %s\n", resp.Reason)
	if resp.Policy != "" {
		fmt.Fprintf(out, "Policy:   %s\n", resp.Policy)
	}
	if resp.RequiresUserConsent {
		fmt.Fprintln(out, "User consent required before uploading.")
	}
	return nil
}
