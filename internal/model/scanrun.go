package model

import "time"

// ScanType identifies the kind of scan being run. The scanner registry uses
// it together with the plan tier to resolve the scanner set.
type ScanType string

const (
	// ScanTypeFull runs every scanner the plan allows, including slow
	// dynamic scanners.
	ScanTypeFull ScanType = "FULL"

	// ScanTypeQuick excludes slow or browser-driven scanners so results
	// arrive within an interactive wait.
	ScanTypeQuick ScanType = "QUICK"

	// ScanTypeMonitoring re-checks only sources that previously matched
	// the user. Used by the scheduled re-scan job.
	ScanTypeMonitoring ScanType = "MONITORING"
)

// Valid reports whether t is a known scan type.
func (t ScanType) Valid() bool {
	switch t {
	case ScanTypeFull, ScanTypeQuick, ScanTypeMonitoring:
		return true
	default:
		return false
	}
}

// PlanTier is the user's subscription tier. The core only consumes it as an
// input; billing state lives with an external collaborator.
type PlanTier string

const (
	// PlanFree gets the static free-tier source list but no dark-web sources.
	PlanFree PlanTier = "FREE"

	// PlanPro gets all static and dynamic sources plus breach databases.
	PlanPro PlanTier = "PRO"

	// PlanPremium additionally gets dark-web sources.
	PlanPremium PlanTier = "PREMIUM"
)

// Valid reports whether p is a known plan tier.
func (p PlanTier) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanPremium:
		return true
	default:
		return false
	}
}

// ScanStatus is the lifecycle state of a ScanRun.
type ScanStatus string

const (
	// ScanInProgress means the run was created and scanners are executing.
	ScanInProgress ScanStatus = "IN_PROGRESS"

	// ScanCompleted means the run finished and counts were finalized.
	ScanCompleted ScanStatus = "COMPLETED"

	// ScanFailed means the run aborted or was force-failed by staleness
	// recovery. Individual scanner failures do not cause this status.
	ScanFailed ScanStatus = "FAILED"
)

// Terminal reports whether the status is final.
func (s ScanStatus) Terminal() bool {
	return s == ScanCompleted || s == ScanFailed
}

// ScanRun records one scan invocation for one user. It is created before
// fan-out and finalized after aggregation. At most one non-terminal ScanRun
// may exist per user; the store enforces this with a partial unique index.
type ScanRun struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// Type is the scan type requested.
	Type ScanType `json:"type"`

	// Plan is the user's plan tier at scan time.
	Plan PlanTier `json:"plan"`

	// Status is the run lifecycle state.
	Status ScanStatus `json:"status"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run reached a terminal status. Zero while
	// the run is in progress.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// SourcesChecked is the number of scanners that actually executed.
	SourcesChecked int `json:"sources_checked"`

	// ExposuresFound is the number of new exposures created by this run.
	ExposuresFound int `json:"exposures_found"`
}

// NewScanRun creates an in-progress run for the given user and inputs.
func NewScanRun(userID string, scanType ScanType, plan PlanTier) *ScanRun {
	return &ScanRun{
		UserID:    userID,
		Type:      scanType,
		Plan:      plan,
		Status:    ScanInProgress,
		StartedAt: time.Now().UTC(),
	}
}
