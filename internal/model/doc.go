// Package model defines the domain records shared across the scan
// orchestration and exposure resolution pipeline: identity snapshots,
// scan runs, scanner outcomes, raw hits, exposures, removal requests,
// and broker directory entries.
package model
