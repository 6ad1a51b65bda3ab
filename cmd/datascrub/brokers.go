package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewBrokersCmd creates the brokers command.
func NewBrokersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brokers",
		Short: "List the data source directory",
		Long: `Brokers prints every source in the directory with its corporate family,
removal difficulty, and the removal method that would be chosen for it.

The built-in directory can be extended or overridden through the brokers
section of the config file.`,
		RunE: runBrokersCmd,
	}

	return cmd
}

// runBrokersCmd executes the brokers command.
func runBrokersCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cfg.Verbose)

	directory, err := buildDirectory(cfg)
	if err != nil {
		return fmt.Errorf("broker directory error: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tNAME\tPARENT\tSCANNER\tDIFFICULTY\tDAYS\tMETHOD")
	for _, source := range directory.Sources() {
		entry, ok := directory.Info(source)
		if !ok {
			continue
		}

		parent := entry.Parent
		if entry.IsParent() {
			parent = fmt.Sprintf("(%d subsidiaries)", len(entry.Subsidiaries))
		}
		days := ""
		if entry.ProcessingDays > 0 {
			days = fmt.Sprintf("%d", entry.ProcessingDays)
		}
		choice := directory.BestAutomationMethod(source)

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			source, entry.DisplayName, parent, entry.ScannerKind,
			entry.Difficulty, days, choice.Method)
	}
	return w.Flush()
}
