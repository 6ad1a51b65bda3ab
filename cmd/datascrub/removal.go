package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Rank127/datascrub-pro-sub004/internal/broker"
	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/database"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
	"github.com/Rank127/datascrub-pro-sub004/internal/notify"
	"github.com/Rank127/datascrub-pro-sub004/internal/removal"
)

// NewRemovalCmd creates the removal command group.
func NewRemovalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "removal",
		Short: "Manage removal requests",
		Long: `Removal drives opt-out requests against the sources listing a user's
data. Requests targeting brokers in the same corporate family are
consolidated into one request against the parent broker.`,
	}

	cmd.AddCommand(newRemovalListCmd())
	cmd.AddCommand(newRemovalCreateCmd())
	cmd.AddCommand(newRemovalBulkCmd())
	cmd.AddCommand(newRemovalSubmitCmd())
	cmd.AddCommand(newRemovalAdvanceCmd())
	cmd.AddCommand(newRemovalCancelCmd())

	return cmd
}

// newRemovalService wires the removal service with a log notifier.
func newRemovalService(store *database.Store, directory *broker.Directory, cfg *config.Config, logger *slog.Logger) *removal.Service {
	dispatcher := notify.NewDispatcher(
		[]notify.Notifier{notify.NewLogNotifier(logger)},
		notify.WithLogger(logger),
	)
	return removal.NewService(store, directory, cfg,
		removal.WithLogger(logger),
		removal.WithDispatcher(dispatcher),
	)
}

// removalDeps opens everything a removal subcommand needs. The caller must
// close the returned store.
func removalDeps(cmd *cobra.Command) (*database.Store, *removal.Service, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := setupLogger(cfg.Verbose)

	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	directory, err := buildDirectory(cfg)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("broker directory error: %w", err)
	}

	return store, newRemovalService(store, directory, cfg, logger), nil
}

// newRemovalListCmd creates the removal list subcommand.
func newRemovalListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's removal requests",
		RunE:  runRemovalListCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(err)
	}

	return cmd
}

// runRemovalListCmd executes the removal list subcommand.
func runRemovalListCmd(cmd *cobra.Command, _ []string) error {
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

	requests, err := store.RemovalRequestsByUser(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to load removal requests: %w", err)
	}
	if len(requests) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No removal requests.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEXPOSURE\tSOURCE\tMETHOD\tSTATUS\tPROACTIVE\tCREATED")
	for _, r := range requests {
		proactive := ""
		if r.IsProactive {
			proactive = "yes"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.ExposureID, r.Source, r.Method, r.Status,
			proactive, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// newRemovalCreateCmd creates the removal create subcommand.
func newRemovalCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a removal request for one exposure",
		Long: `Create opens a removal request for a single exposure. When the exposure's
source belongs to a broker family, the request targets the family parent
and its completion resolves every family exposure in remediation.

Examples:
  datascrub removal create --exposure 42`,
		RunE: runRemovalCreateCmd,
	}

	cmd.Flags().Int64("exposure", 0, "Exposure ID (required)")
	if err := cmd.MarkFlagRequired("exposure"); err != nil {
		panic(err)
	}

	return cmd
}

// runRemovalCreateCmd executes the removal create subcommand.
func runRemovalCreateCmd(cmd *cobra.Command, _ []string) error {
	store, removals, err := removalDeps(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	exposureID, err := cmd.Flags().GetInt64("exposure")
	if err != nil {
		return err
	}

	request, err := removals.Create(cmd.Context(), exposureID, false)
	if err != nil {
		return fmt.Errorf("failed to create removal request: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removal request %d created against %s (%s)\n",
		request.ID, request.Source, request.Method)
	return nil
}

// newRemovalBulkCmd creates the removal bulk subcommand.
func newRemovalBulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Create consolidated removal requests for all active exposures",
		Long: `Bulk plans removal for every active exposure a user has. Exposures on
brokers in the same corporate family collapse into a single request
against the family parent.

Examples:
  datascrub removal bulk --user jane`,
		RunE: runRemovalBulkCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User ID (required)")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(err)
	}

	return cmd
}

// runRemovalBulkCmd executes the removal bulk subcommand.
func runRemovalBulkCmd(cmd *cobra.Command, _ []string) error {
	store, removals, err := removalDeps(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	userID, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}

	requests, err := removals.CreateBulk(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to create bulk removal: %w", err)
	}
	if len(requests) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No active exposures to remove.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %d removal request(s):\n", len(requests))
	for _, r := range requests {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d: %s (%s)\n", r.ID, r.Source, r.Method)
	}
	return nil
}

// newRemovalSubmitCmd creates the removal submit subcommand.
func newRemovalSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a pending removal request to its source",
		Long: `Submit sends a pending request to its source. Submission is refused when
the source's daily cap is already exhausted; the request stays pending
and can be submitted again the next day.`,
		RunE: runRemovalSubmitCmd,
	}

	cmd.Flags().Int64("id", 0, "Removal request ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}

	return cmd
}

// runRemovalSubmitCmd executes the removal submit subcommand.
func runRemovalSubmitCmd(cmd *cobra.Command, _ []string) error {
	store, removals, err := removalDeps(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	requestID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	if err := removals.Submit(cmd.Context(), requestID); err != nil {
		return fmt.Errorf("failed to submit removal request: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removal request %d submitted\n", requestID)
	return nil
}

// newRemovalAdvanceCmd creates the removal advance subcommand.
func newRemovalAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Record a source response on a removal request",
		Long: `Advance records the source's response by moving a request through its
lifecycle: SUBMITTED to IN_PROGRESS when the source acknowledges, then
COMPLETED or FAILED. Completing a consolidated request resolves every
family exposure it covers.

Examples:
  datascrub removal advance --id 7 --to IN_PROGRESS
  datascrub removal advance --id 7 --to COMPLETED --note "confirmation email received"
  datascrub removal advance --id 7 --to FAILED --note "opt-out form rejected"`,
		RunE: runRemovalAdvanceCmd,
	}

	cmd.Flags().Int64("id", 0, "Removal request ID (required)")
	cmd.Flags().String("to", "", "Target status: IN_PROGRESS, COMPLETED, or FAILED (required)")
	cmd.Flags().String("note", "", "Progress note to append")
	for _, name := range []string{"id", "to"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}

// runRemovalAdvanceCmd executes the removal advance subcommand.
func runRemovalAdvanceCmd(cmd *cobra.Command, _ []string) error {
	store, removals, err := removalDeps(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	requestID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return err
	}
	note, err := cmd.Flags().GetString("note")
	if err != nil {
		return err
	}

	if err := removals.Advance(cmd.Context(), requestID, model.RemovalStatus(to), note); err != nil {
		return fmt.Errorf("failed to advance removal request: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removal request %d moved to %s\n", requestID, to)
	return nil
}

// newRemovalCancelCmd creates the removal cancel subcommand.
func newRemovalCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a removal request",
		RunE:  runRemovalCancelCmd,
	}

	cmd.Flags().Int64("id", 0, "Removal request ID (required)")
	cmd.Flags().String("note", "", "Reason for the cancellation")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}

	return cmd
}

// runRemovalCancelCmd executes the removal cancel subcommand.
func runRemovalCancelCmd(cmd *cobra.Command, _ []string) error {
	store, removals, err := removalDeps(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	requestID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	note, err := cmd.Flags().GetString("note")
	if err != nil {
		return err
	}

	if err := removals.Cancel(cmd.Context(), requestID, note); err != nil {
		return fmt.Errorf("failed to cancel removal request: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removal request %d cancelled\n", requestID)
	return nil
}
