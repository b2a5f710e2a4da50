package graph

import "github.com/pkg/errors"

// weakComponents computes weakly-connected components over sorted node ids.
// Edge direction is ignored for connectivity only.
func (g *Graph) weakComponents() *UnionFind {
	uf := NewUnionFind(g.NodeIDs())
	for parent, set := range g.succ {
		for child := range set {
			uf.Union(parent, child)
		}
	}
	return uf
}

// ComponentCount returns the number of weakly-connected components.
func (g *Graph) ComponentCount() int {
	return len(g.weakComponents().Components())
}

// KeepLargestComponent deletes every node outside the largest
// weakly-connected component, plus their incident edges. Ties are broken
// by the component holding the smallest node id, which makes the result
// deterministic. Returns ErrEmptyGraph on a graph with zero nodes.
func (g *Graph) KeepLargestComponent() error {
	if len(g.nodes) == 0 {
		return errors.Wrap(ErrEmptyGraph, "keep largest component")
	}

	uf := g.weakComponents()

	// The first id of each component in sorted order is its smallest
	// member, so strict > keeps ties on the component with the
	// smallest member regardless of which node union-find rooted it.
	seen := make(map[int64]struct{})
	var largestRoot int64
	largestSize := -1
	for _, id := range g.NodeIDs() {
		root := uf.Find(id)
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		if size := uf.size[root]; size > largestSize {
			largestSize = size
			largestRoot = root
		}
	}

	for _, id := range g.NodeIDs() {
		if uf.Find(id) != largestRoot {
			g.RemoveNode(id)
		}
	}
	return nil
}
