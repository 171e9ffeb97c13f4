package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cleargate-hq/cleargate/pkg/cli"
	"cleargate-hq/cleargate/pkg/permission"
)

var policyFlags struct {
	dirID   string
	dirPath string
	format  string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage directory upload policies",
	Long: `Manage directory-scoped upload policies.

A policy sets the default decision for every file in a directory:
  always-allow    uploads proceed without prompting
  always-block    uploads are denied without prompting
  ask-each-time   every upload is decided by its scan result

Examples:
  cleargate policy list
  cleargate policy set --dir-id d1 --path /home/user/docs always-allow
  cleargate policy remove --dir-id d1`,
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List directory policies",
	RunE:  runPolicyList,
}

var policySetCmd = &cobra.Command{
	Use:   "set <mode>",
	Short: "Set a directory policy",
	Long: `Set the policy for a directory. Mode is one of always-allow,
always-block, or ask-each-time.`,
	Args: cobra.ExactArgs(1),
	RunE: runPolicySet,
}

var policyRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a directory policy",
	RunE:  runPolicyRemove,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyListCmd, policySetCmd, policyRemoveCmd)

	policyListCmd.Flags().StringVar(&policyFlags.format, "format", "text", "output format: text, json")

	policySetCmd.Flags().StringVar(&policyFlags.dirID, "dir-id", "", "directory identity (required)")
	policySetCmd.Flags().StringVar(&policyFlags.dirPath, "path", "", "directory path")
	policySetCmd.MarkFlagRequired("dir-id")

	policyRemoveCmd.Flags().StringVar(&policyFlags.dirID, "dir-id", "", "directory identity (required)")
	policyRemoveCmd.MarkFlagRequired("dir-id")
}

func withManager(fn func(ctx context.Context, m *permission.Manager) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policyStore, err := openPolicyStore(cfg)
	if err != nil {
		return err
	}
	defer policyStore.Close()

	auditor, err := openAudit(cfg)
	if err != nil {
		return err
	}
	defer auditor.Close()

	return fn(context.Background(), permission.NewManager(policyStore, auditor))
}

func runPolicyList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(policyFlags.format)
	if err != nil {
		return cli.NewCommandError("policy list", err)
	}
	return withManager(func(ctx context.Context, m *permission.Manager) error {
		policies, err := m.ListDirectoryPolicies(ctx)
		if err != nil {
			return cli.NewCommandError("policy list", err)
		}

		out := cmd.OutOrStdout()
		if format == cli.FormatJSON {
			return (&cli.JSONFormatter{Indent: true}).FormatTo(out, policies)
		}
		if len(policies) == 0 {
			fmt.Fprintln(out, "No directory policies set.")
			return nil
		}
		for _, policy := range policies {
			fmt.Fprintf(out, "%-30s %-15s %s\n", policy.DirectoryID, policy.Policy, policy.DirectoryPath)
		}
		return nil
	})
}

func runPolicySet(cmd *cobra.Command, args []string) error {
	mode := permission.PolicyMode(args[0])
	return withManager(func(ctx context.Context, m *permission.Manager) error {
		if err := m.SetDirectoryPolicy(ctx, policyFlags.dirID, policyFlags.dirPath, mode); err != nil {
			return cli.NewCommandError("policy set", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Policy for %s set to %s.\n", policyFlags.dirID, mode)
		return nil
	})
}

func runPolicyRemove(cmd *cobra.Command, args []string) error {
	return withManager(func(ctx context.Context, m *permission.Manager) error {
		removed, err := m.RemoveDirectoryPolicy(ctx, policyFlags.dirID)
		if err != nil {
			return cli.NewCommandError("policy remove", err)
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "No policy set for %s.\n", policyFlags.dirID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Policy for %s removed.\n", policyFlags.dirID)
		return nil
	})
}
