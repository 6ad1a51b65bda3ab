package model

// Difficulty estimates how hard a source is to get a removal out of.
type Difficulty string

const (
	// DifficultyEasy sources honor structured opt-outs within days.
	DifficultyEasy Difficulty = "EASY"

	// DifficultyModerate sources require email exchanges or identity
	// verification.
	DifficultyModerate Difficulty = "MODERATE"

	// DifficultyHard sources require notarized requests, ignore first
	// attempts, or relist aggressively.
	DifficultyHard Difficulty = "HARD"
)

// BrokerEntry is a static directory record for one data source. The entries
// are read-only reference data, not user-scoped.
type BrokerEntry struct {
	// Source is the source identifier (e.g., "spokeo").
	Source string `yaml:"source" json:"source"`

	// DisplayName is the human-readable name (e.g., "Spokeo").
	DisplayName string `yaml:"displayName" json:"display_name"`

	// Parent is the source id of the operating parent brand, empty for
	// standalone sources and parents themselves. One removal action at
	// the parent covers the subsidiaries.
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`

	// Subsidiaries lists source ids consolidated under this entry.
	// Only populated on parent entries.
	Subsidiaries []string `yaml:"subsidiaries,omitempty" json:"subsidiaries,omitempty"`

	// Difficulty estimates removal effort.
	Difficulty Difficulty `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`

	// ProcessingDays is the source's typical removal turnaround.
	ProcessingDays int `yaml:"processingDays,omitempty" json:"processing_days,omitempty"`

	// OptOutForm is the structured opt-out form URL, when one exists.
	OptOutForm string `yaml:"optOutForm,omitempty" json:"opt_out_form,omitempty"`

	// PrivacyEmail is the removal contact address, when one exists.
	PrivacyEmail string `yaml:"privacyEmail,omitempty" json:"privacy_email,omitempty"`

	// ScannerKind is the scanner family that checks this source. Empty
	// means the source is directory-only: it appears in consolidation
	// and removal planning but no scanner queries it directly.
	ScannerKind ScannerType `yaml:"scannerKind,omitempty" json:"scanner_kind,omitempty"`

	// SearchEndpoint is the default search endpoint for the scanner.
	// Per-source config file overrides take precedence.
	SearchEndpoint string `yaml:"searchEndpoint,omitempty" json:"search_endpoint,omitempty"`
}

// IsParent reports whether this entry consolidates subsidiary sources.
func (b BrokerEntry) IsParent() bool {
	return len(b.Subsidiaries) > 0
}
