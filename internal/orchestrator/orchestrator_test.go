package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
	"github.com/Rank127/datascrub-pro-sub004/internal/scanner"
)

type fakeScanner struct {
	name string
	typ  model.ScannerType
	hits []model.RawHit
	out  model.ScannerOutcome
	hang bool
}

func (f *fakeScanner) Name() string            { return f.name }
func (f *fakeScanner) Type() model.ScannerType { return f.typ }

func (f *fakeScanner) Search(ctx context.Context, _ model.IdentityProfile) ([]model.RawHit, model.ScannerOutcome) {
	if f.hang {
		<-ctx.Done()
		return nil, model.ScannerOutcome{Status: model.OutcomeEmpty}
	}
	return f.hits, f.out
}

func successScanner(name string, hitCount int) *fakeScanner {
	hits := make([]model.RawHit, hitCount)
	for i := range hits {
		hits[i] = model.RawHit{
			Source:      name,
			SourceName:  name,
			DataType:    model.DataTypeProfile,
			DataPreview: name + " listing",
			Severity:    model.SeverityMedium,
		}
	}
	return &fakeScanner{
		name: name,
		typ:  model.ScannerStaticBroker,
		hits: hits,
		out:  model.ScannerOutcome{Status: model.OutcomeSuccess, ResultCount: hitCount},
	}
}

func testOrchestrator(t *testing.T, cfg *config.Config, scanners ...scanner.Scanner) *Orchestrator {
	t.Helper()

	registry, err := scanner.NewRegistry(scanners...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return New(registry, scanner.Selection{
		ScanType: model.ScanTypeFull,
		Plan:     model.PlanPro,
	}, cfg)
}

// TestRunScanAggregation tests hit and outcome aggregation across scanners.
func TestRunScanAggregation(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	o := testOrchestrator(t, cfg,
		successScanner("spokeo", 2),
		successScanner("radaris", 1),
		&fakeScanner{
			name: "mylife",
			typ:  model.ScannerStaticBroker,
			out:  model.ScannerOutcome{Status: model.OutcomeBlocked, HTTPStatus: 429},
		},
	)

	if o.ScannerCount() != 3 {
		t.Fatalf("ScannerCount() = %d, want 3", o.ScannerCount())
	}

	result := o.RunScan(context.Background(), model.IdentityProfile{FullName: "Jane Doe"})

	if len(result.Hits) != 3 {
		t.Errorf("len(Hits) = %d, want 3", len(result.Hits))
	}
	if result.SourcesChecked() != 3 {
		t.Errorf("SourcesChecked() = %d, want 3", result.SourcesChecked())
	}
	if result.FailedCount() != 1 {
		t.Errorf("FailedCount() = %d, want 1", result.FailedCount())
	}

	// Outcomes line up with the sorted scanner order and every record is
	// stamped with its scanner's name.
	names := o.ScannerNames()
	for i, out := range result.Outcomes {
		if out.ScannerName != names[i] {
			t.Errorf("Outcomes[%d].ScannerName = %q, want %q", i, out.ScannerName, names[i])
		}
	}
}

// TestRunScanHangingScanner tests that one hanging scanner cannot stall the
// run past its own timeout while the others finish normally.
func TestRunScanHangingScanner(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.StaticTimeout = 150 * time.Millisecond

	o := testOrchestrator(t, cfg,
		successScanner("spokeo", 1),
		successScanner("radaris", 1),
		successScanner("whitepages", 1),
		successScanner("beenverified", 1),
		&fakeScanner{name: "stuck", typ: model.ScannerStaticBroker, hang: true},
	)

	start := time.Now()
	result := o.RunScan(context.Background(), model.IdentityProfile{FullName: "Jane Doe"})
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("run took %v, want bounded by the scanner timeout", elapsed)
	}

	success, failed := 0, 0
	for _, out := range result.Outcomes {
		switch {
		case out.Status == model.OutcomeSuccess:
			success++
		case out.Status.Failed():
			failed++
			if out.ScannerName != "stuck" {
				t.Errorf("failed scanner = %q, want stuck", out.ScannerName)
			}
			if out.ErrorDetail != "timeout" {
				t.Errorf("ErrorDetail = %q, want timeout", out.ErrorDetail)
			}
		}
	}
	if success != 4 || failed != 1 {
		t.Errorf("outcomes = %d success / %d failed, want 4/1", success, failed)
	}
}

// TestRunScanEmptySet tests a selection that resolves no scanners.
func TestRunScanEmptySet(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t, config.NewConfig())
	result := o.RunScan(context.Background(), model.IdentityProfile{FullName: "Jane Doe"})

	if len(result.Hits) != 0 || len(result.Outcomes) != 0 {
		t.Errorf("empty set produced %d hits, %d outcomes", len(result.Hits), len(result.Outcomes))
	}
}
