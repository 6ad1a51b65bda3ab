package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewRecoverCmd creates the recover command.
func NewRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover stuck scans and removal requests",
		Long: `Recover sweeps the store for work that stopped making progress.

Scans still marked RUNNING past the staleness window are failed so the
user's scan slot frees up. Stale removal requests are escalated: unsent
requests are cancelled, and submitted requests with no source response
are failed so their exposures surface as needing attention again.

Run it periodically, e.g. from cron.`,
		RunE: runRecoverCmd,
	}

	return cmd
}

// runRecoverCmd executes the recover command.
func runRecoverCmd(cmd *cobra.Command, _ []string) error {
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

	ctx := cmd.Context()

	// Stale scans first so a freed slot is visible before new scans run.
	cutoff := time.Now().UTC().Add(-cfg.ScanStaleAfter)
	failedScans, err := store.FailStaleScanRuns(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to recover stale scans: %w", err)
	}

	removals := newRemovalService(store, directory, cfg, logger)
	recovered, err := removals.RecoverStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover stale removal requests: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recovered %d stale scan(s) and %d stale removal request(s)\n",
		failedScans, recovered)
	return nil
}
