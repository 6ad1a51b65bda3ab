package orchestrator

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
	"github.com/Rank127/datascrub-pro-sub004/internal/scanner"
)

// Orchestrator executes a fixed scanner set concurrently. The set is
// resolved once at construction and never changes, so concurrent runs over
// the same Orchestrator see the same scanners in the same order.
type Orchestrator struct {
	scanners []scanner.Scanner
	cfg      *config.Config
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New resolves the scanner set for the given selection and returns an
// Orchestrator over it.
func New(registry *scanner.Registry, sel scanner.Selection, cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scanners: registry.Select(sel),
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ScannerCount returns the size of the resolved scanner set.
func (o *Orchestrator) ScannerCount() int {
	return len(o.scanners)
}

// ScannerNames returns the resolved scanner names in execution order.
func (o *Orchestrator) ScannerNames() []string {
	names := make([]string, len(o.scanners))
	for i, s := range o.scanners {
		names[i] = s.Name()
	}
	return names
}

// RunResult aggregates one fan-out: every raw hit found plus one outcome
// record per scanner, successful or not.
type RunResult struct {
	// Hits holds all raw hits in scanner order. Hits from one scanner
	// keep the order that scanner returned them in.
	Hits []model.RawHit

	// Outcomes holds exactly one record per executed scanner, in the
	// same order as ScannerNames.
	Outcomes []model.ScannerOutcome
}

// FailedCount returns how many scanners ended BLOCKED or ERROR.
func (r RunResult) FailedCount() int {
	failed := 0
	for _, out := range r.Outcomes {
		if out.Status.Failed() {
			failed++
		}
	}
	return failed
}

// SourcesChecked returns how many scanners executed.
func (r RunResult) SourcesChecked() int {
	return len(r.Outcomes)
}

// RunScan executes every scanner against the identity.
//
// Each scanner runs in its own goroutine under the configured concurrency
// limit, with its own per-type timeout. One scanner hanging, failing, or
// panicking never affects the others: the wall clock is bounded by the
// slowest scanner's timeout, and a failure surfaces only as that scanner's
// outcome record.
func (o *Orchestrator) RunScan(ctx context.Context, identity model.IdentityProfile) RunResult {
	hits := make([][]model.RawHit, len(o.scanners))
	outcomes := make([]model.ScannerOutcome, len(o.scanners))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i, s := range o.scanners {
		g.Go(func() error {
			hits[i], outcomes[i] = scanner.Execute(ctx, s, identity, o.cfg.TimeoutFor(s.Type()), o.logger)
			return nil
		})
	}
	// Goroutines never return errors; failures live in the outcomes.
	_ = g.Wait()

	result := RunResult{Outcomes: outcomes}
	for _, batch := range hits {
		result.Hits = append(result.Hits, batch...)
	}

	o.logger.Info("scan fan-out finished",
		"scanners", len(o.scanners),
		"hits", len(result.Hits),
		"failed", result.FailedCount(),
	)
	return result
}
