// Package database provides SQLite-based storage for scan runs, exposures,
// removal requests, scanner outcomes, and encrypted identity profiles.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a
// server database because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for per-user scan workloads
//  4. WAL mode provides good concurrent read performance
//
// # Exclusivity invariants
//
// Two invariants are enforced at the store, not in application memory,
// because concurrent requests for the same user can race a check-then-act
// done purely in process:
//
//   - At most one non-terminal ScanRun per user (partial unique index on
//     scan_runs(user_id) WHERE status = 'IN_PROGRESS').
//   - At most one non-terminal RemovalRequest per exposure (partial unique
//     index on removal_requests(exposure_id) over the non-terminal
//     statuses).
//
// Violations surface as ErrActiveScanExists / ErrActiveRemovalExists, which
// callers treat as "someone else got there first", not as conditions to
// retry.
package database
