package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *ScanSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSeveritySummary(md, summary)
	w.writeExposures(md, summary)
	w.writeScannerHealth(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *ScanSummary) {
	md.H1("DataScrub Pro Scan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan Type", string(summary.ScanType)},
			{"Scan Date", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Sources Checked", strconv.Itoa(summary.SourcesChecked)},
			{"New Exposures", strconv.Itoa(summary.NewExposures)},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text for the header table.
func (w *MarkdownWriter) getStatusText(summary *ScanSummary) string {
	switch {
	case summary.Status != model.ScanCompleted:
		return "❌ " + string(summary.Status)
	case summary.FailedScanners() > 0:
		return "⚠️ Complete (" + strconv.Itoa(summary.FailedScanners()) + " scanner(s) failed)"
	default:
		return "✅ Complete"
	}
}

// writeSeveritySummary writes the severity breakdown section.
func (w *MarkdownWriter) writeSeveritySummary(md *markdown.Markdown, summary *ScanSummary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(summary.CriticalCount)},
			{"🟠 High", strconv.Itoa(summary.HighCount)},
			{"🟡 Medium", strconv.Itoa(summary.MediumCount)},
			{"🔵 Low", strconv.Itoa(summary.LowCount)},
			{"⚪ Info", strconv.Itoa(summary.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalExposures()) + "**"},
		},
	})
	md.PlainText("")

	if summary.HasExposures() {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *ScanSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Exposure Severity Distribution"),
		piechart.WithShowData(true),
	)

	if summary.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(summary.CriticalCount))
	}
	if summary.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(summary.HighCount))
	}
	if summary.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(summary.MediumCount))
	}
	if summary.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(summary.LowCount))
	}
	if summary.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(summary.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *ScanSummary) {
	switch {
	case summary.CriticalCount > 0:
		md.Cautionf(
			"Critical exposures detected! %d listing(s) expose data enabling identity theft.",
			summary.CriticalCount,
		)
	case summary.HighCount > 0:
		md.Warningf(
			"High severity exposures detected. %d listing(s) should be removed promptly.",
			summary.HighCount,
		)
	case summary.MediumCount > 0:
		md.Importantf(
			"Medium severity exposures found. %d listing(s) expose contact data.",
			summary.MediumCount,
		)
	case summary.HasExposures():
		md.Note("Only low severity and informational exposures found.")
	default:
		md.Tip("No exposures found at the checked sources.")
	}
	md.PlainText("")
}

// writeExposures writes the exposures grouped by consolidation parent.
func (w *MarkdownWriter) writeExposures(md *markdown.Markdown, summary *ScanSummary) {
	md.H2("Exposures by Broker Family")
	md.PlainText("")

	if len(summary.Groups) == 0 {
		md.PlainText("No exposures on record.")
		md.PlainText("")
		return
	}

	for _, group := range summary.Groups {
		md.H3(group.DisplayName)
		md.PlainText("")
		w.writeGroupTable(md, group)
	}
}

// writeGroupTable writes one consolidation family's exposure table.
func (w *MarkdownWriter) writeGroupTable(md *markdown.Markdown, group ExposureGroup) {
	rows := make([][]string, len(group.Exposures))
	for i, e := range group.Exposures {
		action := "automated"
		if e.ManualAction {
			action = "manual"
		}
		rows[i] = []string{
			e.SourceName,
			truncateString(e.DataPreview, 50),
			e.Severity.String(),
			string(e.Status),
			strconv.FormatFloat(e.Score, 'f', 0, 64),
			action,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Preview", "Severity", "Status", "Confidence", "Action"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeScannerHealth writes the per-scanner outcome table.
func (w *MarkdownWriter) writeScannerHealth(md *markdown.Markdown, summary *ScanSummary) {
	md.H2("Scanner Health")
	md.PlainText("")

	if len(summary.Scanners) == 0 {
		md.PlainText("No scanners executed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Scanners))
	for i, sc := range summary.Scanners {
		detail := sc.ErrorDetail
		if detail == "" {
			detail = "-"
		}
		rows[i] = []string{
			sc.Name,
			string(sc.Type),
			string(sc.Status),
			strconv.Itoa(sc.ResultCount),
			sc.ResponseTime.String(),
			detail,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Scanner", "Type", "Outcome", "Hits", "Latency", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by DataScrub Pro*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
