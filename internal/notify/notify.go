// Package notify delivers user-facing event notifications from the scan
// pipeline. Delivery is fire-and-forget: the pipeline's outcome never
// depends on a notification provider being up, so failures are logged and
// swallowed.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventType identifies what happened.
type EventType string

const (
	// EventScanCompleted fires when a scan run reaches a terminal status.
	EventScanCompleted EventType = "scan_completed"

	// EventExposureFound fires for each new exposure a scan creates.
	EventExposureFound EventType = "exposure_found"

	// EventRemovalSubmitted fires when a removal request is sent to a
	// source.
	EventRemovalSubmitted EventType = "removal_submitted"

	// EventRemovalCompleted fires when a source confirms deletion.
	EventRemovalCompleted EventType = "removal_completed"

	// EventRemovalFailed fires when a removal request terminally fails
	// and needs user attention.
	EventRemovalFailed EventType = "removal_failed"
)

// Event is one notification. Fields carry identifiers and display names
// only, never identity data: the notification channel (email, push) is
// outside the encryption boundary.
type Event struct {
	Type       EventType
	UserID     string
	SourceName string
	Detail     string
}

// Notifier delivers events to one channel (email, push, webhook).
type Notifier interface {
	// Notify delivers one event. Implementations own their retry policy;
	// the dispatcher treats any error as final for that event.
	Notify(ctx context.Context, event Event) error
}

// dispatchTimeout bounds one background delivery attempt.
const dispatchTimeout = 10 * time.Second

// Dispatcher fans events out to every registered notifier asynchronously.
//
// Design decision: Dispatch never blocks the pipeline and never propagates
// provider errors. A notification is an optional courtesy; a scan that
// found exposures must finalize even when the mail provider is down.
type Dispatcher struct {
	notifiers []Notifier
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets a custom logger for delivery failures.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher over the given notifiers. A dispatcher
// with no notifiers is valid and drops every event.
func NewDispatcher(notifiers []Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifiers: notifiers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the event to every notifier in the background and returns
// immediately. Failures are logged with the event type and user id only.
func (d *Dispatcher) Dispatch(event Event) {
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			defer cancel()

			if err := n.Notify(ctx, event); err != nil {
				d.logger.Warn("notification delivery failed",
					"event", string(event.Type),
					"user_id", event.UserID,
					"error", err,
				)
			}
		}(n)
	}
}

// Wait blocks until all in-flight deliveries finish. Tests and graceful
// shutdown use it; the pipeline never does.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogNotifier writes events to the structured log. It is the default
// channel in deployments with no external provider configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.logger.Info("user notification",
		"event", string(event.Type),
		"user_id", event.UserID,
		"source", event.SourceName,
		"detail", event.Detail,
	)
	return nil
}
