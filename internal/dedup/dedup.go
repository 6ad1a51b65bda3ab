// Package dedup compares newly found raw hits against a user's stored
// exposure history, splitting every hit into exactly one of three buckets:
// new, refreshed, or skipped.
package dedup

import (
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// Result is the outcome of deduplicating one batch of hits. The split is
// exhaustive and mutually exclusive: every input hit lands in exactly one
// bucket, and Total() always reconciles with the input count.
type Result struct {
	// New holds hits with no matching exposure: candidates for creation.
	New []model.RawHit

	// Refreshed holds exposures whose listing was sighted again. Only
	// LastSeenAt changes; no new exposure or removal request is created.
	// This includes ACTIVE and WHITELISTED exposures.
	Refreshed []*model.Exposure

	// Skipped holds hits matching exposures already in remediation
	// (REMOVAL_PENDING, REMOVAL_IN_PROGRESS, REMOVED). They are neither
	// resurrected nor duplicated.
	Skipped []model.RawHit
}

// Total returns the number of hits accounted for across the three buckets.
func (r Result) Total() int {
	return len(r.New) + len(r.Refreshed) + len(r.Skipped)
}

// Deduplicator matches hits against one user's exposure history, loaded
// once per run.
type Deduplicator struct {
	// byKey indexes the user's exposures by dedup key. When history
	// contains duplicates for a key (should not happen, but old data may),
	// the first wins deterministically.
	byKey map[string]*model.Exposure
}

// New creates a Deduplicator over the user's existing exposures.
func New(history []*model.Exposure) *Deduplicator {
	byKey := make(map[string]*model.Exposure, len(history))
	for _, e := range history {
		key := e.DedupKey()
		if _, exists := byKey[key]; !exists {
			byKey[key] = e
		}
	}
	return &Deduplicator{byKey: byKey}
}

// Split assigns every hit to exactly one bucket.
//
// Hits that collide with each other inside the same batch (same dedup key
// from two scanners) are collapsed: the first occurrence decides the bucket
// and later duplicates are skipped, so one scan can never create duplicate
// exposures for one listing.
func (d *Deduplicator) Split(hits []model.RawHit) Result {
	var result Result
	seen := make(map[string]bool, len(hits))

	for _, hit := range hits {
		key := hit.DedupKey()

		if seen[key] {
			result.Skipped = append(result.Skipped, hit)
			continue
		}
		seen[key] = true

		existing, ok := d.byKey[key]
		switch {
		case !ok:
			result.New = append(result.New, hit)
		case existing.Status.InRemediation():
			result.Skipped = append(result.Skipped, hit)
		default:
			result.Refreshed = append(result.Refreshed, existing)
		}
	}

	return result
}
