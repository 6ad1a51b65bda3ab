package removal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/broker"
	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/database"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
	"github.com/Rank127/datascrub-pro-sub004/internal/notify"
)

// Service errors.
var (
	// ErrExposureNotActionable is returned when creating a request for an
	// exposure that is whitelisted or already covered by a removal.
	ErrExposureNotActionable = errors.New("exposure is not actionable for removal")

	// ErrDailyCapReached is returned when a source's daily submission cap
	// is exhausted. The request stays PENDING for tomorrow's batch.
	ErrDailyCapReached = errors.New("daily submission cap reached for source")
)

// Store is the persistence surface the service needs. *database.Store
// satisfies it; tests substitute an in-memory fake only where sqlite is
// not warranted.
type Store interface {
	GetExposure(ctx context.Context, id int64) (*model.Exposure, error)
	UpdateExposureStatus(ctx context.Context, id int64, status model.ExposureStatus) error
	ActiveExposuresByUser(ctx context.Context, userID string) ([]*model.Exposure, error)
	ExposuresByUser(ctx context.Context, userID string) ([]*model.Exposure, error)

	CreateRemovalRequest(ctx context.Context, r *model.RemovalRequest) (*model.RemovalRequest, error)
	UpdateRemovalRequest(ctx context.Context, r *model.RemovalRequest) error
	GetRemovalRequest(ctx context.Context, id int64) (*model.RemovalRequest, error)
	ActiveRemovalForExposure(ctx context.Context, exposureID int64) (*model.RemovalRequest, error)
	CountSubmissionsSince(ctx context.Context, source string, since time.Time) (int, error)
	StaleRemovalRequests(ctx context.Context, olderThan time.Time) ([]*model.RemovalRequest, error)
}

// Service owns removal request lifecycle operations.
type Service struct {
	store      Store
	directory  *broker.Directory
	cfg        *config.Config
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDispatcher sets the notification dispatcher.
func WithDispatcher(d *notify.Dispatcher) ServiceOption {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithClock overrides the time source. Tests use it for staleness windows.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a removal service.
func NewService(store Store, directory *broker.Directory, cfg *config.Config, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		directory:  directory,
		cfg:        cfg,
		dispatcher: notify.NewDispatcher(nil),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a removal request for one exposure, choosing the most
// automatable method its consolidation parent supports. The exposure moves
// to REMOVAL_PENDING.
//
// The final authority on "no duplicate active request" is the store's
// unique index, not the status check here: two concurrent Create calls for
// the same exposure both pass the read, and the second insert fails with
// ErrActiveRemovalExists.
func (s *Service) Create(ctx context.Context, exposureID int64, proactive bool) (*model.RemovalRequest, error) {
	exposure, err := s.store.GetExposure(ctx, exposureID)
	if err != nil {
		return nil, err
	}
	if exposure.Status != model.ExposureActive {
		return nil, fmt.Errorf("%w: status %s", ErrExposureNotActionable, exposure.Status)
	}

	target := s.directory.UltimateParent(exposure.Source)
	choice := s.directory.BestAutomationMethod(exposure.Source)

	request, err := s.store.CreateRemovalRequest(ctx,
		model.NewRemovalRequest(exposure.ID, exposure.UserID, target, choice.Method, proactive),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateExposureStatus(ctx, exposure.ID, model.ExposureRemovalPending); err != nil {
		return nil, fmt.Errorf("request %d created but exposure update failed: %w", request.ID, err)
	}

	s.logger.Info("removal request created",
		"request_id", request.ID,
		"source", target,
		"method", string(choice.Method),
		"proactive", proactive,
	)
	return request, nil
}

// CreateBulk plans the minimal parent-level action set over the user's
// ACTIVE exposures and opens one request per action: exposures at
// subsidiaries of one parent share a single request against the parent.
// Exposures whose request could not be created (racing scan, store error)
// are skipped and logged; the rest proceed.
func (s *Service) CreateBulk(ctx context.Context, userID string) ([]*model.RemovalRequest, error) {
	exposures, err := s.store.ActiveExposuresByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	actions := s.directory.PlanBulkRemoval(exposures)

	var requests []*model.RemovalRequest
	for _, action := range actions {
		choice := s.directory.BestAutomationMethod(action.Source)

		// The request record anchors on one covered exposure; status
		// derivation fans back out to the whole consolidation family.
		request, err := s.store.CreateRemovalRequest(ctx,
			model.NewRemovalRequest(action.ExposureIDs[0], userID, action.Source, choice.Method, false),
		)
		if err != nil {
			s.logger.Warn("bulk removal action skipped",
				"source", action.Source,
				"error", err,
			)
			continue
		}

		for _, id := range action.ExposureIDs {
			if err := s.store.UpdateExposureStatus(ctx, id, model.ExposureRemovalPending); err != nil {
				return nil, fmt.Errorf("request %d created but exposure %d update failed: %w", request.ID, id, err)
			}
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// Submit sends a PENDING request to its source, subject to the source's
// daily submission cap. A capped request stays PENDING and is retried by
// the next submission batch.
func (s *Service) Submit(ctx context.Context, requestID int64) error {
	request, err := s.store.GetRemovalRequest(ctx, requestID)
	if err != nil {
		return err
	}

	limit := s.cfg.SubmissionCapFor(request.Source)
	dayStart := s.now().UTC().Truncate(24 * time.Hour)
	submitted, err := s.store.CountSubmissionsSince(ctx, request.Source, dayStart)
	if err != nil {
		return err
	}
	if submitted >= limit {
		return fmt.Errorf("%w: %s (%d today)", ErrDailyCapReached, request.Source, submitted)
	}

	if err := s.advance(ctx, request, model.RemovalSubmitted, ""); err != nil {
		return err
	}

	s.dispatcher.Dispatch(notify.Event{
		Type:       notify.EventRemovalSubmitted,
		UserID:     request.UserID,
		SourceName: s.directory.DisplayName(request.Source),
	})
	return nil
}

// Advance applies a status transition reported by the submission layer or
// an operator (source acknowledged, confirmed deletion, refused).
func (s *Service) Advance(ctx context.Context, requestID int64, to model.RemovalStatus, note string) error {
	request, err := s.store.GetRemovalRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.advance(ctx, request, to, note); err != nil {
		return err
	}

	switch to {
	case model.RemovalCompleted:
		s.dispatcher.Dispatch(notify.Event{
			Type:       notify.EventRemovalCompleted,
			UserID:     request.UserID,
			SourceName: s.directory.DisplayName(request.Source),
		})
	case model.RemovalFailed:
		s.dispatcher.Dispatch(notify.Event{
			Type:       notify.EventRemovalFailed,
			UserID:     request.UserID,
			SourceName: s.directory.DisplayName(request.Source),
			Detail:     note,
		})
	}
	return nil
}

// Cancel cancels a non-terminal request. The covered exposures revert to
// ACTIVE for the next scan to re-evaluate.
func (s *Service) Cancel(ctx context.Context, requestID int64, note string) error {
	request, err := s.store.GetRemovalRequest(ctx, requestID)
	if err != nil {
		return err
	}
	return s.advance(ctx, request, model.RemovalCancelled, note)
}

// Whitelist marks an exposure as deliberately kept. An active removal
// request anchored on it is cancelled first, then the exposure is pinned
// WHITELISTED so future scans only refresh it.
func (s *Service) Whitelist(ctx context.Context, exposureID int64) error {
	exposure, err := s.store.GetExposure(ctx, exposureID)
	if err != nil {
		return err
	}
	if exposure.Status == model.ExposureWhitelisted {
		return nil
	}

	request, err := s.store.ActiveRemovalForExposure(ctx, exposure.ID)
	switch {
	case err == nil:
		if err := s.advance(ctx, request, model.RemovalCancelled, "exposure whitelisted by user"); err != nil {
			return err
		}
	case errors.Is(err, database.ErrNotFound):
		// No request to cancel.
	default:
		return err
	}

	return s.store.UpdateExposureStatus(ctx, exposure.ID, model.ExposureWhitelisted)
}

// RecoverStale terminates requests stuck non-terminal past the staleness
// window: PENDING requests are cancelled (they were never sent), the rest
// are failed so the user sees the source did not respond. Returns how many
// requests were recovered.
func (s *Service) RecoverStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.RemovalStaleAfter)
	stale, err := s.store.StaleRemovalRequests(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, request := range stale {
		to := model.RemovalFailed
		if request.Status == model.RemovalPending {
			to = model.RemovalCancelled
		}
		if err := s.advance(ctx, request, to, "no source response within the staleness window"); err != nil {
			s.logger.Warn("stale request recovery failed",
				"request_id", request.ID,
				"error", err,
			)
			continue
		}
		recovered++
	}

	if recovered > 0 {
		s.logger.Info("stale removal requests recovered", "count", recovered)
	}
	return recovered, nil
}

// advance applies and persists one transition, then derives exposure
// status for every exposure the request covers.
func (s *Service) advance(ctx context.Context, request *model.RemovalRequest, to model.RemovalStatus, note string) error {
	if err := Transition(request, to, s.now); err != nil {
		return err
	}
	if note != "" {
		if request.Notes != "" {
			request.Notes += "\n"
		}
		request.Notes += note
	}
	if err := s.store.UpdateRemovalRequest(ctx, request); err != nil {
		return err
	}
	return s.applyExposureStatus(ctx, request, to.ExposureStatusFor())
}

// applyExposureStatus fans a request's derived status out to the exposures
// it covers. For a parent-level request that is every awaiting-removal
// exposure of the user whose consolidation root is the request's source;
// for a standalone request it degenerates to the single anchored exposure.
//
// Only exposures still awaiting a removal outcome (REMOVAL_PENDING or
// REMOVAL_IN_PROGRESS) are touched. Two requests can target the same
// parent; once the first one's completion marks an exposure REMOVED, the
// second request's outcome must not flip it back.
func (s *Service) applyExposureStatus(ctx context.Context, request *model.RemovalRequest, status model.ExposureStatus) error {
	exposures, err := s.store.ExposuresByUser(ctx, request.UserID)
	if err != nil {
		return err
	}

	for _, e := range exposures {
		awaiting := e.Status == model.ExposureRemovalPending || e.Status == model.ExposureRemovalInProgress
		covered := e.ID == request.ExposureID || s.directory.UltimateParent(e.Source) == request.Source
		if !awaiting || !covered {
			continue
		}
		if e.Status == status {
			continue
		}
		if err := s.store.UpdateExposureStatus(ctx, e.ID, status); err != nil {
			return fmt.Errorf("exposure %d status update failed: %w", e.ID, err)
		}
	}
	return nil
}
