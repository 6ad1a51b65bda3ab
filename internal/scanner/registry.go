package scanner

import (
	"fmt"
	"sort"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// Registry holds every constructed scanner and resolves the subset to run
// for a given scan.
//
// Design decision: The registry is populated explicitly at startup and
// immutable afterwards. There is no module-level scanner list: concurrent
// scans for different users share one registry value without shared
// mutable state.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry creates a registry from the given scanners. Duplicate source
// names are a wiring bug and fail construction.
func NewRegistry(scanners ...Scanner) (*Registry, error) {
	byName := make(map[string]Scanner, len(scanners))
	for _, s := range scanners {
		if _, exists := byName[s.Name()]; exists {
			return nil, fmt.Errorf("duplicate scanner registered: %s", s.Name())
		}
		byName[s.Name()] = s
	}
	return &Registry{scanners: byName}, nil
}

// Selection bundles the inputs that determine which scanners run.
type Selection struct {
	// ScanType is the requested scan type.
	ScanType model.ScanType

	// Plan is the user's plan tier.
	Plan model.PlanTier

	// PreviouslyMatched lists sources with existing exposures for the
	// user. Only consulted for MONITORING scans.
	PreviouslyMatched []string
}

// Select resolves the scanner set for a scan:
//   - FREE plans never get dark-web sources.
//   - QUICK scans exclude dynamic scanners; they are too slow for an
//     interactive result.
//   - MONITORING scans re-check only sources that previously matched.
//
// The result is sorted by name so runs over the same inputs select the
// same set in the same order.
func (r *Registry) Select(sel Selection) []Scanner {
	var matched map[string]bool
	if sel.ScanType == model.ScanTypeMonitoring {
		matched = make(map[string]bool, len(sel.PreviouslyMatched))
		for _, source := range sel.PreviouslyMatched {
			matched[source] = true
		}
	}

	out := make([]Scanner, 0, len(r.scanners))
	for name, s := range r.scanners {
		if s.Type() == model.ScannerDarkWeb && sel.Plan == model.PlanFree {
			continue
		}
		if s.Type() == model.ScannerDynamicBroker && sel.ScanType == model.ScanTypeQuick {
			continue
		}
		if matched != nil && !matched[name] {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns all registered source names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered scanners.
func (r *Registry) Len() int {
	return len(r.scanners)
}
