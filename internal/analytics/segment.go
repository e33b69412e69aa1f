package analytics

import (
	"sort"
	"strconv"

	"github.com/samber/lo"

	"retailsmart/pkg/contracts/domain"
)

// SegmentCounts counts customers per cluster label, sorted by label
func SegmentCounts(assignments []domain.ClusterAssignment) []domain.ClusterSummary {
	counts := lo.CountValuesBy(assignments, func(a domain.ClusterAssignment) string { return a.Cluster })

	segments := make([]domain.ClusterSummary, 0, len(counts))
	for label, n := range counts {
		segments = append(segments, domain.ClusterSummary{Cluster: label, CustomerCount: n})
	}
	sortSegments(segments)
	return segments
}

// SegmentSummary prefers the upstream cluster summary and derives counts
// from the assignments when the summary has no count column
func SegmentSummary(summary []domain.ClusterSummary, hasCounts bool, assignments []domain.ClusterAssignment) []domain.ClusterSummary {
	if !hasCounts {
		return SegmentCounts(assignments)
	}
	segments := make([]domain.ClusterSummary, len(summary))
	copy(segments, summary)
	sortSegments(segments)
	return segments
}

// sortSegments orders labels numerically when both are numbers
func sortSegments(segments []domain.ClusterSummary) {
	sort.SliceStable(segments, func(i, j int) bool {
		return labelLess(segments[i].Cluster, segments[j].Cluster)
	})
}

func labelLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return fa < fb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
