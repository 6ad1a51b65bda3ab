package model

import "time"

// ExposureStatus is the lifecycle state of an Exposure. Status advances only
// through the removal state machine or explicit user action (whitelist);
// exposures are never deleted.
type ExposureStatus string

const (
	// ExposureActive means the listing is live and no removal is underway.
	ExposureActive ExposureStatus = "ACTIVE"

	// ExposureRemovalPending means a removal request exists but has not
	// been submitted to the source yet.
	ExposureRemovalPending ExposureStatus = "REMOVAL_PENDING"

	// ExposureRemovalInProgress means the source acknowledged the request
	// and is processing it.
	ExposureRemovalInProgress ExposureStatus = "REMOVAL_IN_PROGRESS"

	// ExposureRemoved means the source confirmed deletion.
	ExposureRemoved ExposureStatus = "REMOVED"

	// ExposureWhitelisted means the user explicitly chose to keep the
	// listing. Whitelisted exposures are refresh-only at dedup time.
	ExposureWhitelisted ExposureStatus = "WHITELISTED"
)

// InRemediation reports whether the status means a removal already covers
// this exposure. The deduplicator skips hits matching such exposures rather
// than resurrecting them.
func (s ExposureStatus) InRemediation() bool {
	switch s {
	case ExposureRemovalPending, ExposureRemovalInProgress, ExposureRemoved:
		return true
	default:
		return false
	}
}

// Exposure is the durable record of a user's data appearing at a source.
// It is created on first sighting and only ever status-transitioned.
type Exposure struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// Source is the source identifier (e.g., "spokeo").
	Source string `json:"source"`

	// SourceName is the human-readable source name.
	SourceName string `json:"source_name"`

	// URL points at the listing when known.
	URL string `json:"url,omitempty"`

	// DataType is the kind of personal data listed.
	DataType DataType `json:"data_type"`

	// DataPreview is the short excerpt used for display and dedup.
	DataPreview string `json:"data_preview"`

	// Severity is how damaging the listed data is.
	Severity Severity `json:"severity"`

	// Status is the exposure lifecycle state.
	Status ExposureStatus `json:"status"`

	// RequiresManualAction is set when automated remediation is gated:
	// either the match confidence was too low or the source needs a
	// manual opt-out flow.
	RequiresManualAction bool `json:"requires_manual_action"`

	// Confidence is the scoring verdict from the sighting that created
	// this exposure.
	Confidence ConfidenceResult `json:"confidence"`

	// FirstSeenAt is when the exposure was first recorded.
	FirstSeenAt time.Time `json:"first_seen_at"`

	// LastSeenAt is updated on every scan that finds the listing again.
	LastSeenAt time.Time `json:"last_seen_at"`
}

// DedupKey returns the exposure's identity for matching against new hits.
// It must mirror RawHit.DedupKey exactly.
func (e Exposure) DedupKey() string {
	return e.Source + "\x1f" + e.SourceName + "\x1f" + e.DataPreview
}

// NewExposure promotes a scored raw hit to a durable exposure record.
// The reject invariant is enforced here: a reject-classified exposure is
// never created without RequiresManualAction.
func NewExposure(userID string, hit RawHit, confidence ConfidenceResult) *Exposure {
	now := time.Now().UTC()
	manual := hit.ManualCheckRequired
	if confidence.Classification != ClassificationAutoProceed {
		manual = true
	}
	return &Exposure{
		UserID:               userID,
		Source:               hit.Source,
		SourceName:           hit.SourceName,
		URL:                  hit.URL,
		DataType:             hit.DataType,
		DataPreview:          hit.DataPreview,
		Severity:             hit.Severity,
		Status:               ExposureActive,
		RequiresManualAction: manual,
		Confidence:           confidence,
		FirstSeenAt:          now,
		LastSeenAt:           now,
	}
}
