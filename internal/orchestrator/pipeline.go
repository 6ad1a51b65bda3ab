package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/broker"
	"github.com/Rank127/datascrub-pro-sub004/internal/confidence"
	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/database"
	"github.com/Rank127/datascrub-pro-sub004/internal/dedup"
	"github.com/Rank127/datascrub-pro-sub004/internal/identity"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
	"github.com/Rank127/datascrub-pro-sub004/internal/notify"
	"github.com/Rank127/datascrub-pro-sub004/internal/removal"
	"github.com/Rank127/datascrub-pro-sub004/internal/scanner"
)

// Pipeline errors.
var (
	// ErrScanAlreadyRunning is returned when the user already has an
	// IN_PROGRESS scan run.
	ErrScanAlreadyRunning = errors.New("a scan is already running for this user")

	// ErrMonthlyCapReached is returned when the plan's monthly scan
	// allowance is exhausted.
	ErrMonthlyCapReached = errors.New("monthly scan cap reached for plan")

	// ErrScanTypeNotAllowed is returned when the plan does not include
	// the requested scan type.
	ErrScanTypeNotAllowed = errors.New("plan does not allow this scan type")

	// ErrNoProfile is returned when the user has no stored identity
	// profile to scan for.
	ErrNoProfile = errors.New("no identity profile stored for user")
)

// Pipeline runs complete scans: plan checks, fan-out, scoring, exposure
// bookkeeping, and finalization. Safe for concurrent use; the store's
// uniqueness rules arbitrate racing runs for the same user.
type Pipeline struct {
	store      *database.Store
	registry   *scanner.Registry
	accessor   *identity.Accessor
	scorer     *confidence.Scorer
	directory  *broker.Directory
	removals   *removal.Service
	cfg        *config.Config
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a custom logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithDispatcher sets the notification dispatcher.
func WithDispatcher(d *notify.Dispatcher) PipelineOption {
	return func(p *Pipeline) {
		p.dispatcher = d
	}
}

// WithClock overrides the time source. Tests use it for cap windows.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline wires a scan pipeline.
func NewPipeline(
	store *database.Store,
	registry *scanner.Registry,
	accessor *identity.Accessor,
	directory *broker.Directory,
	removals *removal.Service,
	cfg *config.Config,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		store:      store,
		registry:   registry,
		accessor:   accessor,
		scorer:     confidence.NewScorer(),
		directory:  directory,
		removals:   removals,
		cfg:        cfg,
		dispatcher: notify.NewDispatcher(nil),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ScanRequest is one scan invocation for one user.
type ScanRequest struct {
	UserID string
	Type   model.ScanType
	Plan   model.PlanTier
}

// ScanResult is what Run hands back after finalization.
type ScanResult struct {
	// Run is the finalized scan run record.
	Run *model.ScanRun

	// Outcomes holds one record per executed scanner.
	Outcomes []model.ScannerOutcome

	// NewExposures are the exposures this run created, in hit order.
	NewExposures []*model.Exposure

	// RefreshedCount is how many existing exposures were sighted again.
	RefreshedCount int

	// SkippedCount is how many hits matched exposures already in
	// remediation and were dropped.
	SkippedCount int
}

// Run executes one complete scan.
//
// The run record is created before fan-out so the user's exclusivity slot
// is held for the whole scan, and finalized on every path out: COMPLETED
// after aggregation, FAILED when a pipeline stage errors mid-run. Scanner
// failures are not pipeline errors; they finalize as COMPLETED with failed
// outcome records.
func (p *Pipeline) Run(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if req.UserID == "" || !req.Type.Valid() || !req.Plan.Valid() {
		return nil, fmt.Errorf("invalid scan request: user %q, type %q, plan %q", req.UserID, req.Type, req.Plan)
	}
	if !config.AllowsScanType(req.Plan, req.Type) {
		return nil, fmt.Errorf("%w: %s on %s", ErrScanTypeNotAllowed, req.Type, req.Plan)
	}

	monthStart := p.monthStart()
	used, err := p.store.CountScanRunsSince(ctx, req.UserID, monthStart)
	if err != nil {
		return nil, err
	}
	if limit := config.MonthlyScanCap(req.Plan); used >= limit {
		return nil, fmt.Errorf("%w: %d of %d used", ErrMonthlyCapReached, used, limit)
	}

	profile, err := p.loadProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	matched, err := p.store.MatchedSources(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	run, err := p.store.CreateScanRun(ctx, model.NewScanRun(req.UserID, req.Type, req.Plan))
	if err != nil {
		if errors.Is(err, database.ErrActiveScanExists) {
			return nil, ErrScanAlreadyRunning
		}
		return nil, err
	}

	orch := New(p.registry, scanner.Selection{
		ScanType:          req.Type,
		Plan:              req.Plan,
		PreviouslyMatched: matched,
	}, p.cfg, WithLogger(p.logger))

	p.logger.Info("scan started",
		"run_id", run.ID,
		"type", string(req.Type),
		"plan", string(req.Plan),
		"scanners", orch.ScannerCount(),
	)

	fanout := orch.RunScan(ctx, profile)

	result, err := p.aggregate(ctx, run, profile, fanout)
	if err != nil {
		p.fail(ctx, run.ID, fanout)
		return nil, err
	}

	p.dispatcher.Dispatch(notify.Event{
		Type:   notify.EventScanCompleted,
		UserID: req.UserID,
		Detail: fmt.Sprintf("%d new exposures across %d sources", len(result.NewExposures), fanout.SourcesChecked()),
	})
	return result, nil
}

// aggregate turns raw hits into exposure bookkeeping and finalizes the run.
func (p *Pipeline) aggregate(ctx context.Context, run *model.ScanRun, profile model.IdentityProfile, fanout RunResult) (*ScanResult, error) {
	history, err := p.store.ExposuresByUser(ctx, run.UserID)
	if err != nil {
		return nil, err
	}
	split := dedup.New(history).Split(fanout.Hits)

	result := &ScanResult{
		Outcomes:       fanout.Outcomes,
		RefreshedCount: len(split.Refreshed),
		SkippedCount:   len(split.Skipped),
	}

	for _, hit := range split.New {
		scored := p.scorer.Score(hit, profile)
		exposure, err := p.store.InsertExposure(ctx, model.NewExposure(run.UserID, hit, scored))
		if err != nil {
			return nil, err
		}
		result.NewExposures = append(result.NewExposures, exposure)

		p.dispatcher.Dispatch(notify.Event{
			Type:       notify.EventExposureFound,
			UserID:     run.UserID,
			SourceName: p.directory.DisplayName(exposure.Source),
			Detail:     exposure.Severity.String(),
		})

		p.maybeOpenRemoval(ctx, exposure)
	}

	if len(split.Refreshed) > 0 {
		ids := make([]int64, len(split.Refreshed))
		for i, e := range split.Refreshed {
			ids[i] = e.ID
		}
		if err := p.store.TouchExposures(ctx, ids, p.now().UTC()); err != nil {
			return nil, err
		}
	}

	if err := p.store.RecordOutcomes(ctx, run.ID, fanout.Outcomes); err != nil {
		return nil, err
	}
	if err := p.store.FinalizeScanRun(ctx, run.ID, model.ScanCompleted, fanout.SourcesChecked(), len(result.NewExposures)); err != nil {
		return nil, err
	}

	finalized, err := p.store.GetScanRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	result.Run = finalized

	p.logger.Info("scan completed",
		"run_id", run.ID,
		"new", len(result.NewExposures),
		"refreshed", result.RefreshedCount,
		"skipped", result.SkippedCount,
		"failed_scanners", fanout.FailedCount(),
	)
	return result, nil
}

// maybeOpenRemoval opens a proactive removal request for exposures the
// scorer cleared for automation. Manual-check hits are included: a
// high-confidence listing on a source that wants manual verification still
// gets its request opened now, and the manual flag rides along on the
// exposure for the user to act on. Failures are logged, not propagated: a
// removal that could not be opened at scan time is still available to the
// user afterwards.
func (p *Pipeline) maybeOpenRemoval(ctx context.Context, exposure *model.Exposure) {
	if exposure.Confidence.Classification != model.ClassificationAutoProceed {
		return
	}
	if _, err := p.removals.Create(ctx, exposure.ID, true); err != nil {
		p.logger.Warn("proactive removal not opened",
			"exposure_id", exposure.ID,
			"error", err,
		)
	}
}

// fail finalizes the run as FAILED after a mid-run pipeline error, keeping
// whatever outcome records we have for the health surface.
func (p *Pipeline) fail(ctx context.Context, runID int64, fanout RunResult) {
	if err := p.store.RecordOutcomes(ctx, runID, fanout.Outcomes); err != nil {
		p.logger.Error("outcome records lost for failed run", "run_id", runID, "error", err)
	}
	if err := p.store.FinalizeScanRun(ctx, runID, model.ScanFailed, fanout.SourcesChecked(), 0); err != nil {
		p.logger.Error("failed run not finalized", "run_id", runID, "error", err)
	}
}

// loadProfile loads and decrypts the user's stored identity profile.
func (p *Pipeline) loadProfile(ctx context.Context, userID string) (model.IdentityProfile, error) {
	stored, err := p.store.LoadProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.IdentityProfile{}, fmt.Errorf("%w: %s", ErrNoProfile, userID)
		}
		return model.IdentityProfile{}, err
	}
	return p.accessor.Snapshot(stored)
}

// RecoverStaleScans force-fails scan runs stuck IN_PROGRESS past the
// staleness window, freeing their users' exclusivity slots. Returns how
// many runs were failed.
func (p *Pipeline) RecoverStaleScans(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.cfg.ScanStaleAfter)
	failed, err := p.store.FailStaleScanRuns(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if failed > 0 {
		p.logger.Info("stale scan runs failed", "count", failed)
	}
	return failed, nil
}

func (p *Pipeline) monthStart() time.Time {
	now := p.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
