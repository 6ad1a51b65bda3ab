// Package broker holds the static data-broker directory: which legal
// entities operate which sources, how sources consolidate under parent
// brands, and which removal method each source supports. The directory is
// read-only reference data used for dashboard grouping, bulk removal
// planning, and removal method selection.
package broker
