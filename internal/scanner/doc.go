// Package scanner provides source scanners that query external data sources
// for a user's personal information.
//
// # Architecture
//
// Each external source (people-search broker, breach corpus, dark-web index)
// is wrapped in a type implementing the Scanner interface, so the
// orchestrator can run every source uniformly.
//
// Design decision: Each source category is implemented as a separate scanner
// type rather than one generic scanner because:
//  1. Query mechanics differ per category (HTML listing pages, async JSON
//     jobs, per-email breach lookups, Tor-routed index queries)
//  2. Type safety - each scanner carries category-specific configuration
//  3. Easier testing - each category is tested in isolation against
//     httptest servers
//  4. Per-type policy (timeouts, plan gating) keys off a declared type
//
// # Failure contract
//
// Ordinary failures never cross a scanner's boundary as errors. A network
// error, block page, or empty result set is reported through the returned
// ScannerOutcome status (SUCCESS/EMPTY/BLOCKED/ERROR), so one misbehaving
// source cannot abort a run. Execute adds the per-invocation timeout and
// panic recovery on top of that contract.
//
// # Scanner selection
//
// The Registry resolves the scanner set for a (scan type, plan tier) pair:
// FREE plans never get dark-web sources, QUICK scans exclude slow dynamic
// scanners, and MONITORING scans run only sources that previously matched
// the user.
package scanner
