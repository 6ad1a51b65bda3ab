package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/identity"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRun(userID string) *model.ScanRun {
	return model.NewScanRun(userID, model.ScanTypeFull, model.PlanPro)
}

func newTestExposure(userID, source, preview string) *model.Exposure {
	hit := model.RawHit{
		Source:      source,
		SourceName:  source,
		DataType:    model.DataTypeProfile,
		DataPreview: preview,
		Severity:    model.SeverityMedium,
	}
	confidence := model.ConfidenceResult{
		Score:          92,
		Classification: model.ClassificationAutoProceed,
		Reasoning:      "strong name and locality match",
	}
	return model.NewExposure(userID, hit, confidence)
}

// TestOpenOptions tests database creation behavior.
func TestOpenOptions(t *testing.T) {
	t.Parallel()

	t.Run("refuses missing database without create", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("creates and reopens", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		s.Close()

		s, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		s.Close()
	})
}

// TestScanRunExclusivity tests the one-active-run-per-user invariant.
func TestScanRunExclusivity(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.CreateScanRun(ctx, newTestRun("user-1"))
	if err != nil {
		t.Fatalf("CreateScanRun() error = %v", err)
	}
	if first.ID == 0 {
		t.Error("expected assigned ID")
	}

	// Second active run for the same user must be rejected by the store.
	if _, err := s.CreateScanRun(ctx, newTestRun("user-1")); !errors.Is(err, ErrActiveScanExists) {
		t.Errorf("expected ErrActiveScanExists, got %v", err)
	}

	// A different user is unaffected.
	if _, err := s.CreateScanRun(ctx, newTestRun("user-2")); err != nil {
		t.Errorf("other user's run should succeed, got %v", err)
	}

	// Finalizing frees the slot.
	if err := s.FinalizeScanRun(ctx, first.ID, model.ScanCompleted, 5, 2); err != nil {
		t.Fatalf("FinalizeScanRun() error = %v", err)
	}
	if _, err := s.CreateScanRun(ctx, newTestRun("user-1")); err != nil {
		t.Errorf("run after finalize should succeed, got %v", err)
	}

	done, err := s.GetScanRun(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetScanRun() error = %v", err)
	}
	if done.Status != model.ScanCompleted || done.SourcesChecked != 5 || done.ExposuresFound != 2 {
		t.Errorf("finalized run = %+v", done)
	}
	if done.FinishedAt.IsZero() {
		t.Error("expected finished_at set")
	}
}

// TestScanRunQueries tests counting and staleness recovery.
func TestScanRunQueries(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.CreateScanRun(ctx, newTestRun("user-1"))
	if err != nil {
		t.Fatalf("CreateScanRun() error = %v", err)
	}

	t.Run("ActiveScanRun finds the run", func(t *testing.T) {
		active, err := s.ActiveScanRun(ctx, "user-1")
		if err != nil {
			t.Fatalf("ActiveScanRun() error = %v", err)
		}
		if active.ID != run.ID {
			t.Errorf("active run ID = %d, want %d", active.ID, run.ID)
		}
		if _, err := s.ActiveScanRun(ctx, "user-2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for idle user, got %v", err)
		}
	})

	t.Run("CountScanRunsSince respects the cutoff", func(t *testing.T) {
		count, err := s.CountScanRunsSince(ctx, "user-1", time.Now().Add(-time.Hour))
		if err != nil || count != 1 {
			t.Errorf("count = %d, err = %v, want 1", count, err)
		}
		count, err = s.CountScanRunsSince(ctx, "user-1", time.Now().Add(time.Hour))
		if err != nil || count != 0 {
			t.Errorf("count = %d, err = %v, want 0", count, err)
		}
	})

	t.Run("FailStaleScanRuns frees a stuck run", func(t *testing.T) {
		// Cutoff in the future makes the just-created run "stale".
		failed, err := s.FailStaleScanRuns(ctx, time.Now().Add(time.Minute))
		if err != nil {
			t.Fatalf("FailStaleScanRuns() error = %v", err)
		}
		if failed != 1 {
			t.Errorf("failed %d runs, want 1", failed)
		}

		recovered, err := s.GetScanRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("GetScanRun() error = %v", err)
		}
		if recovered.Status != model.ScanFailed {
			t.Errorf("stale run status = %q, want FAILED", recovered.Status)
		}

		// The slot is free again.
		if _, err := s.CreateScanRun(ctx, newTestRun("user-1")); err != nil {
			t.Errorf("run after recovery should succeed, got %v", err)
		}
	})
}

// TestExposureRoundTrip tests exposure persistence including the embedded
// confidence verdict.
func TestExposureRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	e := newTestExposure("user-1", "spokeo", "Jane Doe, Portland, OR")
	e.Confidence.Factors = []model.FactorScore{
		{Factor: "name", Score: 100, Weight: 0.35, Detail: "exact name match"},
	}

	created, err := s.InsertExposure(ctx, e)
	if err != nil {
		t.Fatalf("InsertExposure() error = %v", err)
	}

	got, err := s.GetExposure(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExposure() error = %v", err)
	}
	if got.Source != "spokeo" || got.DataPreview != "Jane Doe, Portland, OR" {
		t.Errorf("exposure = %+v", got)
	}
	if got.Status != model.ExposureActive {
		t.Errorf("status = %q, want ACTIVE", got.Status)
	}
	if got.Severity != model.SeverityMedium {
		t.Errorf("severity = %v, want Medium", got.Severity)
	}
	if got.Confidence.Score != 92 || len(got.Confidence.Factors) != 1 {
		t.Errorf("confidence did not survive round trip: %+v", got.Confidence)
	}
	if got.FirstSeenAt.IsZero() || got.LastSeenAt.IsZero() {
		t.Error("expected timestamps set")
	}

	t.Run("status transition persists", func(t *testing.T) {
		if err := s.UpdateExposureStatus(ctx, created.ID, model.ExposureRemovalPending); err != nil {
			t.Fatalf("UpdateExposureStatus() error = %v", err)
		}
		got, err := s.GetExposure(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetExposure() error = %v", err)
		}
		if got.Status != model.ExposureRemovalPending {
			t.Errorf("status = %q, want REMOVAL_PENDING", got.Status)
		}
	})

	t.Run("touch refreshes last seen", func(t *testing.T) {
		seenAt := time.Now().Add(time.Hour)
		if err := s.TouchExposures(ctx, []int64{created.ID}, seenAt); err != nil {
			t.Fatalf("TouchExposures() error = %v", err)
		}
		got, err := s.GetExposure(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetExposure() error = %v", err)
		}
		if !got.LastSeenAt.After(got.FirstSeenAt) {
			t.Errorf("last seen %v not after first seen %v", got.LastSeenAt, got.FirstSeenAt)
		}
	})
}

// TestExposureQueries tests user-scoped listing, matched sources, and
// status grouping.
func TestExposureQueries(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for _, e := range []*model.Exposure{
		newTestExposure("user-1", "spokeo", "Jane Doe, Portland"),
		newTestExposure("user-1", "truthfinder", "Jane Doe, Salem"),
		newTestExposure("user-2", "spokeo", "Someone Else"),
	} {
		if _, err := s.InsertExposure(ctx, e); err != nil {
			t.Fatalf("InsertExposure() error = %v", err)
		}
	}

	exposures, err := s.ExposuresByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ExposuresByUser() error = %v", err)
	}
	if len(exposures) != 2 {
		t.Errorf("expected 2 exposures, got %d", len(exposures))
	}

	sources, err := s.MatchedSources(ctx, "user-1")
	if err != nil {
		t.Fatalf("MatchedSources() error = %v", err)
	}
	if len(sources) != 2 || sources[0] != "spokeo" || sources[1] != "truthfinder" {
		t.Errorf("matched sources = %v", sources)
	}

	counts, err := s.CountExposuresByStatus(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountExposuresByStatus() error = %v", err)
	}
	if counts[model.ExposureActive] != 2 {
		t.Errorf("active count = %d, want 2", counts[model.ExposureActive])
	}

	active, err := s.ActiveExposuresByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ActiveExposuresByUser() error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active exposures, got %d", len(active))
	}
}

// TestRemovalRequestExclusivity tests the one-active-request-per-exposure
// invariant.
func TestRemovalRequestExclusivity(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	exposure, err := s.InsertExposure(ctx, newTestExposure("user-1", "spokeo", "Jane Doe"))
	if err != nil {
		t.Fatalf("InsertExposure() error = %v", err)
	}

	first, err := s.CreateRemovalRequest(ctx,
		model.NewRemovalRequest(exposure.ID, "user-1", "spokeo", model.MethodAutoForm, false),
	)
	if err != nil {
		t.Fatalf("CreateRemovalRequest() error = %v", err)
	}

	// Second active request for the same exposure must be rejected.
	_, err = s.CreateRemovalRequest(ctx,
		model.NewRemovalRequest(exposure.ID, "user-1", "spokeo", model.MethodAutoForm, false),
	)
	if !errors.Is(err, ErrActiveRemovalExists) {
		t.Errorf("expected ErrActiveRemovalExists, got %v", err)
	}

	// Completing the request frees the slot.
	first.Status = model.RemovalCompleted
	first.CompletedAt = time.Now()
	if err := s.UpdateRemovalRequest(ctx, first); err != nil {
		t.Fatalf("UpdateRemovalRequest() error = %v", err)
	}
	if _, err := s.CreateRemovalRequest(ctx,
		model.NewRemovalRequest(exposure.ID, "user-1", "spokeo", model.MethodAutoForm, false),
	); err != nil {
		t.Errorf("request after completion should succeed, got %v", err)
	}
}

// TestRemovalRequestQueries tests lookups, submission counting, and
// staleness listing.
func TestRemovalRequestQueries(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	exposure, err := s.InsertExposure(ctx, newTestExposure("user-1", "spokeo", "Jane Doe"))
	if err != nil {
		t.Fatalf("InsertExposure() error = %v", err)
	}

	req, err := s.CreateRemovalRequest(ctx,
		model.NewRemovalRequest(exposure.ID, "user-1", "spokeo", model.MethodAutoForm, true),
	)
	if err != nil {
		t.Fatalf("CreateRemovalRequest() error = %v", err)
	}

	active, err := s.ActiveRemovalForExposure(ctx, exposure.ID)
	if err != nil {
		t.Fatalf("ActiveRemovalForExposure() error = %v", err)
	}
	if active.ID != req.ID || !active.IsProactive {
		t.Errorf("active request = %+v", active)
	}

	t.Run("submission counting", func(t *testing.T) {
		count, err := s.CountSubmissionsSince(ctx, "spokeo", time.Now().Add(-24*time.Hour))
		if err != nil || count != 0 {
			t.Errorf("unsubmitted request counted: %d, err %v", count, err)
		}

		req.Status = model.RemovalSubmitted
		req.SubmittedAt = time.Now()
		if err := s.UpdateRemovalRequest(ctx, req); err != nil {
			t.Fatalf("UpdateRemovalRequest() error = %v", err)
		}

		count, err = s.CountSubmissionsSince(ctx, "spokeo", time.Now().Add(-24*time.Hour))
		if err != nil || count != 1 {
			t.Errorf("submission count = %d, err %v, want 1", count, err)
		}
	})

	t.Run("staleness listing", func(t *testing.T) {
		stale, err := s.StaleRemovalRequests(ctx, time.Now().Add(time.Minute))
		if err != nil {
			t.Fatalf("StaleRemovalRequests() error = %v", err)
		}
		if len(stale) != 1 || stale[0].ID != req.ID {
			t.Errorf("stale requests = %+v", stale)
		}

		stale, err = s.StaleRemovalRequests(ctx, time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("StaleRemovalRequests() error = %v", err)
		}
		if len(stale) != 0 {
			t.Errorf("expected no stale requests before cutoff, got %d", len(stale))
		}
	})
}

// TestOutcomePersistence tests the scanner outcome log and failure rate.
func TestOutcomePersistence(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.CreateScanRun(ctx, newTestRun("user-1"))
	if err != nil {
		t.Fatalf("CreateScanRun() error = %v", err)
	}

	outcomes := []model.ScannerOutcome{
		{ScannerName: "spokeo", ScannerType: model.ScannerStaticBroker, Status: model.OutcomeSuccess, ResponseTime: 1200 * time.Millisecond, ResultCount: 2, HTTPStatus: 200},
		{ScannerName: "spokeo", ScannerType: model.ScannerStaticBroker, Status: model.OutcomeBlocked, ResponseTime: 300 * time.Millisecond, HTTPStatus: 429},
		{ScannerName: "breachindex", ScannerType: model.ScannerBreachDB, Status: model.OutcomeEmpty, ResponseTime: 800 * time.Millisecond},
	}
	if err := s.RecordOutcomes(ctx, run.ID, outcomes); err != nil {
		t.Fatalf("RecordOutcomes() error = %v", err)
	}

	got, err := s.OutcomesForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("OutcomesForRun() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	if got[0].ScannerName != "spokeo" || got[0].ResponseTime != 1200*time.Millisecond {
		t.Errorf("first outcome = %+v", got[0])
	}
	if got[1].Status != model.OutcomeBlocked || got[1].HTTPStatus != 429 {
		t.Errorf("blocked outcome = %+v", got[1])
	}

	rate, err := s.FailureRate(ctx, "spokeo", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("FailureRate() error = %v", err)
	}
	if rate != 0.5 {
		t.Errorf("spokeo failure rate = %v, want 0.5", rate)
	}

	rate, err = s.FailureRate(ctx, "never-ran", time.Now().Add(-time.Hour))
	if err != nil || rate != 0 {
		t.Errorf("unknown scanner rate = %v, err %v, want 0", rate, err)
	}
}

// TestProfilePersistence tests encrypted profile round trips.
func TestProfilePersistence(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	stored := identity.StoredProfile{
		UserID:   "user-1",
		FullName: []byte{0x01, 0x02, 0x03},
		Emails:   [][]byte{{0x04, 0x05}},
	}
	if err := s.SaveProfile(ctx, stored); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := s.LoadProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if string(got.FullName) != string(stored.FullName) || len(got.Emails) != 1 {
		t.Errorf("profile = %+v", got)
	}

	// Upsert replaces.
	stored.FullName = []byte{0x09}
	if err := s.SaveProfile(ctx, stored); err != nil {
		t.Fatalf("SaveProfile() upsert error = %v", err)
	}
	got, err = s.LoadProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if string(got.FullName) != "\x09" {
		t.Errorf("upsert did not replace profile")
	}

	if _, err := s.LoadProfile(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
