// Package removal implements the removal request lifecycle: creation with
// store-enforced exclusivity, the submission path with per-source daily
// caps, the state machine advancing requests to a terminal status, and the
// staleness recovery job.
//
// The state machine is:
//
//	PENDING -> SUBMITTED -> IN_PROGRESS -> COMPLETED
//	                                    -> FAILED
//	any non-terminal state -> CANCELLED
//
// Every transition also derives the owning exposure's status, so the two
// records can never disagree: a COMPLETED request means a REMOVED exposure,
// and FAILED or CANCELLED reverts the exposure to ACTIVE for the next scan
// to re-evaluate.
package removal
