package model

import (
	"testing"
	"time"
)

// TestClassificationOrdering verifies the total order reject < needs-review
// < auto-proceed that classification monotonicity depends on.
func TestClassificationOrdering(t *testing.T) {
	t.Parallel()

	if !(ClassificationReject < ClassificationNeedsReview &&
		ClassificationNeedsReview < ClassificationAutoProceed) {
		t.Error("classification constants are not in ascending order")
	}
}

// TestParseClassification tests round-tripping and the safe default.
func TestParseClassification(t *testing.T) {
	t.Parallel()

	for _, c := range []Classification{ClassificationReject, ClassificationNeedsReview, ClassificationAutoProceed} {
		if got := ParseClassification(c.String()); got != c {
			t.Errorf("ParseClassification(%q) = %v, want %v", c.String(), got, c)
		}
	}

	if got := ParseClassification("nonsense"); got != ClassificationReject {
		t.Errorf("ParseClassification(nonsense) = %v, want reject", got)
	}
}

// TestDedupKeyAgreement verifies RawHit and Exposure derive identical keys
// from the same (source, sourceName, dataPreview) triple.
func TestDedupKeyAgreement(t *testing.T) {
	t.Parallel()

	hit := RawHit{Source: "spokeo", SourceName: "Spokeo", DataPreview: "J. Doe, Austin TX"}
	exp := Exposure{Source: "spokeo", SourceName: "Spokeo", DataPreview: "J. Doe, Austin TX"}

	if hit.DedupKey() != exp.DedupKey() {
		t.Errorf("keys disagree: hit=%q exposure=%q", hit.DedupKey(), exp.DedupKey())
	}

	other := RawHit{Source: "spokeo", SourceName: "Spokeo", DataPreview: "different preview"}
	if hit.DedupKey() == other.DedupKey() {
		t.Error("distinct previews produced the same dedup key")
	}
}

// TestNewExposureRejectInvariant verifies a reject-classified hit always
// produces an exposure gated behind manual action.
func TestNewExposureRejectInvariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		classification Classification
		manualCheck    bool
		wantManual     bool
	}{
		{name: "reject forces manual", classification: ClassificationReject, manualCheck: false, wantManual: true},
		{name: "needs-review forces manual", classification: ClassificationNeedsReview, manualCheck: false, wantManual: true},
		{name: "auto-proceed keeps scanner flag set", classification: ClassificationAutoProceed, manualCheck: true, wantManual: true},
		{name: "auto-proceed keeps scanner flag clear", classification: ClassificationAutoProceed, manualCheck: false, wantManual: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hit := RawHit{
				Source:              "spokeo",
				SourceName:          "Spokeo",
				DataPreview:         "preview",
				ManualCheckRequired: tt.manualCheck,
			}
			exp := NewExposure("user-1", hit, ConfidenceResult{
				Score:          50,
				Classification: tt.classification,
				ValidatedAt:    time.Now(),
			})

			if exp.RequiresManualAction != tt.wantManual {
				t.Errorf("RequiresManualAction = %v, want %v", exp.RequiresManualAction, tt.wantManual)
			}
			if exp.Status != ExposureActive {
				t.Errorf("new exposure status = %v, want ACTIVE", exp.Status)
			}
		})
	}
}

// TestRemovalStatusExposureMapping verifies the status derivation the state
// machine relies on to keep exposures consistent with their requests.
func TestRemovalStatusExposureMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		removal RemovalStatus
		want    ExposureStatus
	}{
		{removal: RemovalPending, want: ExposureRemovalPending},
		{removal: RemovalSubmitted, want: ExposureRemovalPending},
		{removal: RemovalInProgress, want: ExposureRemovalInProgress},
		{removal: RemovalCompleted, want: ExposureRemoved},
		{removal: RemovalFailed, want: ExposureActive},
		{removal: RemovalCancelled, want: ExposureActive},
	}

	for _, tt := range tests {
		t.Run(string(tt.removal), func(t *testing.T) {
			t.Parallel()

			if got := tt.removal.ExposureStatusFor(); got != tt.want {
				t.Errorf("ExposureStatusFor(%s) = %v, want %v", tt.removal, got, tt.want)
			}
		})
	}
}

// TestRemovalStatusTerminal tests terminal status detection.
func TestRemovalStatusTerminal(t *testing.T) {
	t.Parallel()

	terminal := []RemovalStatus{RemovalCompleted, RemovalFailed, RemovalCancelled}
	active := []RemovalStatus{RemovalPending, RemovalSubmitted, RemovalInProgress}

	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

// TestExposureStatusInRemediation tests the skip set used by deduplication.
func TestExposureStatusInRemediation(t *testing.T) {
	t.Parallel()

	inRemediation := []ExposureStatus{ExposureRemovalPending, ExposureRemovalInProgress, ExposureRemoved}
	notIn := []ExposureStatus{ExposureActive, ExposureWhitelisted}

	for _, s := range inRemediation {
		if !s.InRemediation() {
			t.Errorf("%s should be in remediation", s)
		}
	}
	for _, s := range notIn {
		if s.InRemediation() {
			t.Errorf("%s should not be in remediation", s)
		}
	}
}

// TestIdentityProfileNames tests alias collection with blanks skipped.
func TestIdentityProfileNames(t *testing.T) {
	t.Parallel()

	p := IdentityProfile{
		FullName: "Jane Doe",
		Aliases:  []string{"Jane Smith", "  ", ""},
	}

	names := p.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d: %v", len(names), names)
	}
	if names[0] != "Jane Doe" || names[1] != "Jane Smith" {
		t.Errorf("unexpected names: %v", names)
	}
}

// TestIdentityProfileIsEmpty tests the empty-profile guard.
func TestIdentityProfileIsEmpty(t *testing.T) {
	t.Parallel()

	if !(IdentityProfile{}).IsEmpty() {
		t.Error("zero profile should be empty")
	}
	if (IdentityProfile{Emails: []string{"jane@example.com"}}).IsEmpty() {
		t.Error("profile with an email should not be empty")
	}
	if (IdentityProfile{FullName: "   "}).IsEmpty() {
		t.Error("whitespace-only name should still count as empty")
	}
}

// TestScanTypeAndPlanValidation tests enum validation.
func TestScanTypeAndPlanValidation(t *testing.T) {
	t.Parallel()

	for _, st := range []ScanType{ScanTypeFull, ScanTypeQuick, ScanTypeMonitoring} {
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if ScanType("TURBO").Valid() {
		t.Error("unknown scan type should be invalid")
	}

	for _, p := range []PlanTier{PlanFree, PlanPro, PlanPremium} {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if PlanTier("PLATINUM").Valid() {
		t.Error("unknown plan should be invalid")
	}
}
