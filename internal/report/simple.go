package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *ScanSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeSeveritySummary(&sb, summary)
	w.writeExposures(&sb, summary)
	w.writeScannerHealth(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *ScanSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      DATASCRUB PRO SCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Scan Type:       %s\n", summary.ScanType))
	sb.WriteString(fmt.Sprintf("Scan Date:       %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Sources Checked: %d\n", summary.SourcesChecked))
	sb.WriteString(fmt.Sprintf("New Exposures:   %d\n", summary.NewExposures))
	sb.WriteString(fmt.Sprintf("Status:          %s\n", summary.Status))
	if summary.Duration > 0 {
		sb.WriteString(fmt.Sprintf("Duration:        %s\n", summary.Duration.Round(10*time.Millisecond)))
	}
	sb.WriteString("\n")
}

// writeSeveritySummary writes the severity breakdown section.
func (w *SimpleWriter) writeSeveritySummary(sb *strings.Builder, summary *ScanSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", summary.CriticalCount))
	sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", summary.HighCount))
	sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", summary.MediumCount))
	sb.WriteString(fmt.Sprintf("  LOW:      %d\n", summary.LowCount))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", summary.InfoCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d exposures\n", summary.TotalExposures()))
	sb.WriteString("\n")
}

// writeExposures writes the exposures grouped by consolidation parent.
func (w *SimpleWriter) writeExposures(sb *strings.Builder, summary *ScanSummary) {
	if len(summary.Groups) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EXPOSURES BY BROKER FAMILY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Groups) == 0 {
		sb.WriteString("  No exposures found\n\n")
		return
	}

	for _, group := range summary.Groups {
		sb.WriteString(fmt.Sprintf("[%s] %d listing(s)\n", group.DisplayName, len(group.Exposures)))
		for _, e := range group.Exposures {
			marker := " "
			if e.ManualAction {
				marker = "!"
			}
			sb.WriteString(fmt.Sprintf("  %s %-8s %-20s %s\n", marker, e.Severity, e.SourceName, e.DataPreview))
			if w.verbose {
				sb.WriteString(fmt.Sprintf("    Status: %s  Confidence: %.0f\n", e.Status, e.Score))
				if e.Recommendation != "" {
					sb.WriteString(fmt.Sprintf("    Recommendation: %s\n", e.Recommendation))
				}
			}
		}
		sb.WriteString("\n")
	}
}

// writeScannerHealth writes the per-scanner outcome table.
func (w *SimpleWriter) writeScannerHealth(sb *strings.Builder, summary *ScanSummary) {
	if len(summary.Scanners) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SCANNER HEALTH\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Scanners) == 0 {
		sb.WriteString("  No scanners executed\n\n")
		return
	}

	for _, sc := range summary.Scanners {
		detail := ""
		if sc.ErrorDetail != "" {
			detail = " (" + sc.ErrorDetail + ")"
		}
		sb.WriteString(fmt.Sprintf("  %-20s %-8s %4d hit(s)  %8s%s\n",
			sc.Name, sc.Status, sc.ResultCount, sc.ResponseTime.Round(10*time.Millisecond), detail))
	}
	if failed := summary.FailedScanners(); failed > 0 {
		sb.WriteString(fmt.Sprintf("\n  %d scanner(s) failed; their sources were not fully checked.\n", failed))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by DataScrub Pro\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
