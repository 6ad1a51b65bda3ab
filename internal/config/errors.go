package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). This allows callers to use errors.Is()
// for programmatic handling while still providing human-readable messages.
var (
	// ErrInvalidTimeout is returned when any scanner timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid scanner timeout: must be positive")

	// ErrInvalidConcurrency is returned when the fan-out limit is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidStaleness is returned when a staleness window is not positive.
	// Zero would force-fail every in-progress record immediately.
	ErrInvalidStaleness = errors.New("invalid staleness window: must be positive")

	// ErrInvalidSubmissionCap is returned when the daily submission cap is
	// not positive. Zero would silently disable all removal submissions.
	ErrInvalidSubmissionCap = errors.New("invalid daily submission cap: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
