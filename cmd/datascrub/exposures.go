package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewExposuresCmd creates the exposures command group.
func NewExposuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exposures",
		Short: "List and manage discovered exposures",
		Long: `Exposures lists everything scans discovered about a user, with the
confidence verdict and remediation state of each finding.`,
	}

	cmd.AddCommand(newExposuresListCmd())
	cmd.AddCommand(newExposuresWhitelistCmd())

	return cmd
}

// newExposuresListCmd creates the exposures list subcommand.
func newExposuresListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's exposures",
		Long: `List prints every recorded exposure for a user.

Examples:
  # All exposures, newest first
  datascrub exposures list --user jane

  # Only exposures still needing attention
  datascrub exposures list --user jane --active`,
		RunE: runExposuresListCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	cmd.Flags().BoolP("active", "a", false,
		"Show only exposures that are ACTIVE or in remediation")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(err)
	}

	return cmd
}

// runExposuresListCmd executes the exposures list subcommand.
func runExposuresListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cfg.Verbose)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	userID, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}
	activeOnly, err := cmd.Flags().GetBool("active")
	if err != nil {
		return err
	}

	load := store.ExposuresByUser
	if activeOnly {
		load = store.ActiveExposuresByUser
	}
	exposures, err := load(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to load exposures: %w", err)
	}

	if len(exposures) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No exposures recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tDATA\tSEVERITY\tSCORE\tSTATUS\tMANUAL")
	for _, e := range exposures {
		manual := ""
		if e.RequiresManualAction {
			manual = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f\t%s\t%s\n",
			e.ID, e.SourceName, e.DataType, e.Severity,
			e.Confidence.Score, e.Status, manual)
	}
	return w.Flush()
}

// newExposuresWhitelistCmd creates the exposures whitelist subcommand.
func newExposuresWhitelistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Whitelist an exposure as intentionally public",
		Long: `Whitelist marks an exposure as intentionally public. Any active removal
request for it is cancelled, and future scans refresh it without alerting
or opening new removals.

Examples:
  datascrub exposures whitelist --id 42`,
		RunE: runExposuresWhitelistCmd,
	}

	cmd.Flags().Int64("id", 0, "Exposure ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}

	return cmd
}

// runExposuresWhitelistCmd executes the exposures whitelist subcommand.
func runExposuresWhitelistCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	directory, err := buildDirectory(cfg)
	if err != nil {
		return fmt.Errorf("broker directory error: %w", err)
	}

	exposureID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	removals := newRemovalService(store, directory, cfg, logger)
	if err := removals.Whitelist(cmd.Context(), exposureID); err != nil {
		return fmt.Errorf("failed to whitelist exposure: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exposure %d whitelisted\n", exposureID)
	return nil
}
