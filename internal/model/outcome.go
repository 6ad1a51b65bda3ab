package model

import "time"

// ScannerType categorizes source scanners so the orchestrator can apply
// per-type policies: dynamic scanners are skipped on QUICK scans, dark-web
// scanners are excluded for FREE plans, and timeout budgets differ per type.
type ScannerType string

const (
	// ScannerStaticBroker queries a people-search broker with a plain
	// HTTP search endpoint.
	ScannerStaticBroker ScannerType = "STATIC_BROKER"

	// ScannerDynamicBroker drives a browser or API flow that is too slow
	// for interactive quick scans.
	ScannerDynamicBroker ScannerType = "DYNAMIC_BROKER"

	// ScannerBreachDB queries a breach corpus for the user's emails.
	ScannerBreachDB ScannerType = "BREACH_DB"

	// ScannerDarkWeb queries onion-hosted paste and market indexes
	// through Tor.
	ScannerDarkWeb ScannerType = "DARK_WEB"
)

// OutcomeStatus classifies a single scanner invocation. Ordinary failure
// modes are statuses, never propagated errors, so one scanner cannot abort
// the run.
type OutcomeStatus string

const (
	// OutcomeSuccess means the source responded and at least one hit was
	// returned.
	OutcomeSuccess OutcomeStatus = "SUCCESS"

	// OutcomeEmpty means the source responded with no hits. This is a
	// healthy result, not a failure.
	OutcomeEmpty OutcomeStatus = "EMPTY"

	// OutcomeBlocked means the source returned a block or captcha page.
	OutcomeBlocked OutcomeStatus = "BLOCKED"

	// OutcomeError means the invocation failed: network error, timeout,
	// malformed response, or a recovered panic.
	OutcomeError OutcomeStatus = "ERROR"
)

// Failed reports whether the status counts toward the run's failed-scanner
// metric.
func (s OutcomeStatus) Failed() bool {
	return s == OutcomeBlocked || s == OutcomeError
}

// ScannerOutcome is the per-scanner-per-run result record. It is immutable
// once recorded and persisted for operational trend analysis.
type ScannerOutcome struct {
	// ScannerName is the source identifier (e.g., "spokeo").
	ScannerName string `json:"scanner_name"`

	// ScannerType is the declared type of the scanner.
	ScannerType ScannerType `json:"scanner_type"`

	// Status classifies the invocation result.
	Status OutcomeStatus `json:"status"`

	// ResponseTime is how long the invocation took, reported regardless
	// of outcome.
	ResponseTime time.Duration `json:"response_time_ms"`

	// ResultCount is the number of raw hits returned.
	ResultCount int `json:"result_count"`

	// HTTPStatus is the upstream HTTP status code when applicable.
	HTTPStatus int `json:"http_status,omitempty"`

	// ErrorDetail is a short error classification for ERROR outcomes.
	// It must never contain identity data.
	ErrorDetail string `json:"error_detail,omitempty"`
}
