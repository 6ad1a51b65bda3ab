package model

import "time"

// Classification is the three-way decision derived from a confidence score.
//
// Design decision: We use iota-based constants so classifications have a
// total order (reject < needs-review < auto-proceed). The classification
// monotonicity property depends on this ordering.
type Classification int

const (
	// ClassificationReject means the hit is unlikely to belong to the
	// user. The exposure is still recorded, but always with
	// RequiresManualAction set.
	ClassificationReject Classification = iota

	// ClassificationNeedsReview means the hit plausibly belongs to the
	// user but requires manual confirmation before remediation.
	ClassificationNeedsReview

	// ClassificationAutoProceed means the hit confidently belongs to the
	// user and is eligible for automated remediation.
	ClassificationAutoProceed
)

// String returns the stored representation of the classification.
func (c Classification) String() string {
	switch c {
	case ClassificationAutoProceed:
		return "auto-proceed"
	case ClassificationNeedsReview:
		return "needs-review"
	default:
		return "reject"
	}
}

// ParseClassification converts a stored classification string back to a
// Classification. Unknown strings map to reject, the safe default.
func ParseClassification(s string) Classification {
	switch s {
	case "auto-proceed":
		return ClassificationAutoProceed
	case "needs-review":
		return ClassificationNeedsReview
	default:
		return ClassificationReject
	}
}

// FactorScore is one field-level component of a confidence result. The
// breakdown is shown to the user, so Detail must be human-readable and must
// reference only data the user already provided.
type FactorScore struct {
	// Factor names the matched dimension: "name", "email", "phone",
	// "locality".
	Factor string `json:"factor"`

	// Score is the factor's contribution in [0,100] before weighting.
	Score float64 `json:"score"`

	// Weight is the weight applied when combining factors.
	Weight float64 `json:"weight"`

	// Detail explains the comparison result field by field.
	Detail string `json:"detail"`
}

// ConfidenceResult is the scorer's verdict for one raw hit. It is attached
// 1:1 to the exposure the hit produces.
type ConfidenceResult struct {
	// Score is the combined confidence in [0,100].
	Score float64 `json:"score"`

	// Classification is derived from Score via the shared thresholds.
	Classification Classification `json:"classification"`

	// Factors is the field-by-field breakdown behind the score.
	Factors []FactorScore `json:"factors"`

	// Reasoning is a short prose summary assembled from the factors.
	Reasoning string `json:"reasoning"`

	// ValidatedAt is when the score was computed.
	ValidatedAt time.Time `json:"validated_at"`
}
