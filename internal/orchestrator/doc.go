// Package orchestrator fans a scan out across the resolved scanner set and
// runs the full scan pipeline around it.
//
// The package has two layers. Orchestrator is the narrow one: given an
// immutable scanner set it executes every scanner concurrently, bounded by
// the configured concurrency limit and per-type timeouts, and aggregates
// hits and outcome records. It touches no storage.
//
// Pipeline is the wide one: plan checks, scan run creation, identity
// snapshot, fan-out, deduplication, confidence scoring, exposure creation,
// proactive removals, outcome persistence, and finalization. One Pipeline
// serves all users; all per-run state lives on the stack of Run.
package orchestrator
