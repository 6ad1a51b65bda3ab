package scanner

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// Scanner is the uniform capability contract every source scanner
// implements.
//
// Design decision: We use an interface with a closed set of concrete
// implementations selected by the Registry, rather than reflection-based
// plugin loading, because:
//  1. The source list is a curated directory, not an open plugin surface
//  2. An explicit lookup table is testable and greppable
//  3. The orchestrator can treat all sources uniformly
type Scanner interface {
	// Search queries the source for listings matching the identity and
	// returns raw hits plus the invocation outcome. Ordinary failures
	// (network error, block page, empty result) are outcome statuses,
	// never returned as errors; Search has no error return at all.
	//
	// Implementations must respect context cancellation: an expired
	// context is reported as an ERROR outcome.
	Search(ctx context.Context, identity model.IdentityProfile) ([]model.RawHit, model.ScannerOutcome)

	// Name returns the source identifier (e.g., "spokeo").
	Name() string

	// Type returns the declared scanner type, which the orchestrator
	// uses for per-type timeout budgets and plan gating.
	Type() model.ScannerType
}

// errUnexpectedStatus marks an upstream HTTP status that is neither
// success, not-found, nor a recognized block response.
var errUnexpectedStatus = errors.New("unexpected response status")

// errorDetail classifies an error into a short, identity-free label for
// ScannerOutcome.ErrorDetail. Raw error strings are never recorded: an
// upstream error message could echo query parameters built from identity
// fields.
func errorDetail(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, errUnexpectedStatus):
		return "unexpected_status"
	default:
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}

	// url.Error wraps dial and DNS failures without implementing
	// net.Error in all cases.
	if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "no such host") {
		return "network"
	}
	return "request_failed"
}

// outcome builds the common outcome skeleton for a scanner. Status,
// ResultCount, HTTPStatus, and ErrorDetail are filled by the caller;
// ScannerName/ScannerType and ResponseTime are stamped by Execute.
func outcome(status model.OutcomeStatus, resultCount int) model.ScannerOutcome {
	return model.ScannerOutcome{
		Status:      status,
		ResultCount: resultCount,
	}
}

// blockedStatus reports whether an upstream HTTP status code means the
// source is refusing to serve us rather than failing.
func blockedStatus(code int) bool {
	switch code {
	case 403, 406, 418, 429, 503:
		return true
	default:
		return false
	}
}
