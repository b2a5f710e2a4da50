package graph

import (
	"sort"

	"github.com/pkg/errors"
)

// PageCountPercentile computes the p-th percentile (0-100) of the
// PageCount attribute over all current nodes, interpolating linearly
// between order statistics. Unannotated nodes count as zero. Returns
// ErrEmptyGraph when the graph has no nodes.
func (g *Graph) PageCountPercentile(p float64) (float64, error) {
	if len(g.nodes) == 0 {
		return 0, errors.Wrap(ErrEmptyGraph, "page count percentile")
	}
	if p < 0 || p > 100 {
		return 0, errors.Errorf("percentile out of range: %g", p)
	}

	counts := make([]int, 0, len(g.nodes))
	for _, attrs := range g.nodes {
		if attrs == nil {
			counts = append(counts, 0)
			continue
		}
		counts = append(counts, attrs.PageCount)
	}
	sort.Ints(counts)

	rank := p / 100 * float64(len(counts)-1)
	lower := int(rank)
	if lower >= len(counts)-1 {
		return float64(counts[len(counts)-1]), nil
	}
	frac := rank - float64(lower)
	return float64(counts[lower]) + frac*float64(counts[lower+1]-counts[lower]), nil
}
