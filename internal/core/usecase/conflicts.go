package usecase

import (
	"sort"
	"strings"

	"github.com/govreg/doccompass/internal/core/domain"
)

// DetectConflicts groups the full result set by normalized title and reports
// every group with more than one member. A group spanning departments is a
// cross-department collision; otherwise it is a within-department duplicate.
// Pure function of the result set: output is identical regardless of input
// order.
func DetectConflicts(results []domain.MatchResult) []domain.Conflict {
	groups := make(map[string][]domain.MatchResult)
	for _, r := range results {
		key := strings.TrimSpace(strings.ToLower(r.Title))
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], r)
	}

	var conflicts []domain.Conflict
	for title, members := range groups {
		if len(members) < 2 {
			continue
		}

		ids := make([]string, 0, len(members))
		versions := make([]string, 0, len(members))
		deptSet := make(map[string]struct{})
		for _, m := range members {
			ids = append(ids, m.DocumentID)
			if m.Version != "" {
				versions = append(versions, m.Version)
			}
			deptSet[m.Owner] = struct{}{}
		}
		depts := make([]string, 0, len(deptSet))
		for d := range deptSet {
			depts = append(depts, d)
		}
		sort.Strings(ids)
		sort.Strings(versions)
		sort.Strings(depts)

		reason := domain.ReasonWithinDepartment
		if len(depts) > 1 {
			reason = domain.ReasonCrossDepartment
		}
		conflicts = append(conflicts, domain.Conflict{
			Title:       title,
			DocumentIDs: ids,
			Departments: depts,
			Versions:    versions,
			Reason:      reason,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Title < conflicts[j].Title })
	return conflicts
}
