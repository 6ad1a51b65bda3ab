package broker

import (
	"sort"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// RemovalAction is one planned parent-level removal covering one or more
// exposures. For a consolidated family, Source is the parent broker and
// Covers lists every source the action resolves.
type RemovalAction struct {
	// Source is the source the removal request targets.
	Source string

	// Covers lists the sources resolved by this action, including Source
	// itself.
	Covers []string

	// ExposureIDs are the exposures this action remediates.
	ExposureIDs []int64
}

// PlanBulkRemoval computes the minimal set of parent-level removal actions
// covering all given exposures: exposures at subsidiaries of one parent
// collapse into a single action against the parent, standalone sources get
// one action each.
//
// Callers pass only actionable exposures (ACTIVE, not whitelisted, not
// already in remediation); the planner does not re-check status. Actions
// are returned in deterministic source order for stable output and tests.
func (d *Directory) PlanBulkRemoval(exposures []*model.Exposure) []RemovalAction {
	byRoot := make(map[string]*RemovalAction)

	for _, e := range exposures {
		root := d.UltimateParent(e.Source)

		action, ok := byRoot[root]
		if !ok {
			action = &RemovalAction{Source: root}
			byRoot[root] = action
		}
		action.ExposureIDs = append(action.ExposureIDs, e.ID)
		action.Covers = appendUnique(action.Covers, e.Source)
	}

	actions := make([]RemovalAction, 0, len(byRoot))
	for _, action := range byRoot {
		sort.Strings(action.Covers)
		actions = append(actions, *action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].Source < actions[j].Source })
	return actions
}

// GroupByParent groups exposures by their ultimate consolidation parent for
// dashboard aggregation: "12 exposures, 4 actionable removals".
func (d *Directory) GroupByParent(exposures []*model.Exposure) map[string][]*model.Exposure {
	groups := make(map[string][]*model.Exposure)
	for _, e := range exposures {
		root := d.UltimateParent(e.Source)
		groups[root] = append(groups[root], e)
	}
	return groups
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
