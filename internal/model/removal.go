package model

import "time"

// RemovalMethod is the automation method used to get a source to delete a
// listing, chosen per source from the broker capability table.
type RemovalMethod string

const (
	// MethodAutoForm submits the source's structured opt-out web form.
	MethodAutoForm RemovalMethod = "AUTO_FORM"

	// MethodAutoEmail sends a templated removal request to the source's
	// privacy contact.
	MethodAutoEmail RemovalMethod = "AUTO_EMAIL"

	// MethodManualGuide gives the user step-by-step instructions because
	// no automatable flow exists.
	MethodManualGuide RemovalMethod = "MANUAL_GUIDE"
)

// RemovalStatus is the lifecycle state of a RemovalRequest.
type RemovalStatus string

const (
	// RemovalPending means the request exists but has not been submitted.
	RemovalPending RemovalStatus = "PENDING"

	// RemovalSubmitted means the request was sent to the source.
	RemovalSubmitted RemovalStatus = "SUBMITTED"

	// RemovalInProgress means the source acknowledged the request.
	RemovalInProgress RemovalStatus = "IN_PROGRESS"

	// RemovalCompleted means the source confirmed deletion. Terminal.
	RemovalCompleted RemovalStatus = "COMPLETED"

	// RemovalFailed means the request terminally failed after retries.
	RemovalFailed RemovalStatus = "FAILED"

	// RemovalCancelled means the user or system cancelled the request
	// before completion. Terminal.
	RemovalCancelled RemovalStatus = "CANCELLED"
)

// Terminal reports whether the status is final. The one-active-request-per-
// exposure invariant counts only non-terminal requests.
func (s RemovalStatus) Terminal() bool {
	switch s {
	case RemovalCompleted, RemovalFailed, RemovalCancelled:
		return true
	default:
		return false
	}
}

// ExposureStatusFor maps a removal status to the exposure status it implies.
// Keeping this mapping in one place is what keeps the two records consistent.
func (s RemovalStatus) ExposureStatusFor() ExposureStatus {
	switch s {
	case RemovalPending, RemovalSubmitted:
		return ExposureRemovalPending
	case RemovalInProgress:
		return ExposureRemovalInProgress
	case RemovalCompleted:
		return ExposureRemoved
	default:
		// FAILED and CANCELLED revert the exposure so it can be retried
		// or re-evaluated on the next scan.
		return ExposureActive
	}
}

// RemovalRequest is one tracked removal attempt, tied 1:1 to an Exposure.
// At most one non-terminal request may exist per exposure at a time.
type RemovalRequest struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// ExposureID is the exposure this request remediates.
	ExposureID int64 `json:"exposure_id"`

	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// Source is the source the request targets. For consolidated bulk
	// removals this is the parent broker, and the request covers the
	// parent's subsidiaries too.
	Source string `json:"source"`

	// Method is the automation method chosen for this source.
	Method RemovalMethod `json:"method"`

	// Status is the request lifecycle state.
	Status RemovalStatus `json:"status"`

	// IsProactive marks requests created automatically by the orchestrator
	// for high-confidence manual-check hits, without per-item user
	// confirmation. Proactive requests follow the same state machine.
	IsProactive bool `json:"is_proactive"`

	// CreatedAt is when the request was created.
	CreatedAt time.Time `json:"created_at"`

	// SubmittedAt is when the request was sent to the source.
	SubmittedAt time.Time `json:"submitted_at,omitempty"`

	// CompletedAt is when the request reached a terminal status.
	CompletedAt time.Time `json:"completed_at,omitempty"`

	// Notes holds operator-facing progress notes (escalations, source
	// responses). Never identity data.
	Notes string `json:"notes,omitempty"`
}

// NewRemovalRequest creates a pending request for an exposure. Creation
// always starts at PENDING; proactive creation differs only in policy, not
// in state handling.
func NewRemovalRequest(exposureID int64, userID, source string, method RemovalMethod, proactive bool) *RemovalRequest {
	return &RemovalRequest{
		ExposureID:  exposureID,
		UserID:      userID,
		Source:      source,
		Method:      method,
		Status:      RemovalPending,
		IsProactive: proactive,
		CreatedAt:   time.Now().UTC(),
	}
}
