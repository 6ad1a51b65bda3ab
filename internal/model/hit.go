package model

// RawHit is a candidate exposure returned by one scanner. It is transient:
// scoring and deduplication either discard it or promote it to an Exposure.
type RawHit struct {
	// Source is the source identifier the hit came from (e.g., "spokeo").
	Source string `json:"source"`

	// SourceName is the human-readable source name (e.g., "Spokeo").
	SourceName string `json:"source_name"`

	// URL points at the listing when the source exposes one.
	URL string `json:"url,omitempty"`

	// Contact is the source's removal contact when known (email or form URL).
	Contact string `json:"contact,omitempty"`

	// DataType is the kind of personal data found (see DataType constants).
	DataType DataType `json:"data_type"`

	// DataPreview is a short, already-public excerpt of the listed data.
	// It is part of the dedup key, so scanners must produce it
	// deterministically for the same listing.
	DataPreview string `json:"data_preview"`

	// Severity is the scanner's estimate of how damaging the listed data is.
	Severity Severity `json:"severity"`

	// MatchedFields names the identity fields the scanner saw in the
	// listing (e.g., "email", "name", "city"). The confidence scorer uses
	// these as factor inputs.
	MatchedFields map[string]string `json:"matched_fields,omitempty"`

	// ManualCheckRequired is set by scanners that cannot verify the match
	// themselves. High-confidence manual-check hits are eligible for a
	// proactive removal request.
	ManualCheckRequired bool `json:"manual_check_required,omitempty"`
}

// DedupKey is the stable identity of a hit for deduplication against the
// user's exposure history.
func (h RawHit) DedupKey() string {
	return h.Source + "\x1f" + h.SourceName + "\x1f" + h.DataPreview
}
