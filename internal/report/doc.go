// Package report renders scan summaries for the user.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for sharing and documentation
//
// Writers consume a ScanSummary built from a finalized scan run, the user's
// exposures, and the run's scanner outcome records. Building the summary is
// separate from rendering it, so every writer shows the same numbers.
package report
