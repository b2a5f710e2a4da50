package graph

// RemoveNodeReconstruct deletes a node while preserving two-hop paths
// through it: every direct predecessor is connected to every direct
// successor before the node and its incident edges are removed. The
// predecessor and successor sets are snapshotted before any edge is
// touched. Self-loops arising from the bypass (a node that was both
// parent and child of the removed node) are kept unless DropSelfLoops
// is set.
func (g *Graph) RemoveNodeReconstruct(id int64) {
	if _, ok := g.nodes[id]; !ok {
		return
	}

	preds := make([]int64, 0, len(g.pred[id]))
	for p := range g.pred[id] {
		if p != id {
			preds = append(preds, p)
		}
	}
	succs := make([]int64, 0, len(g.succ[id]))
	for s := range g.succ[id] {
		if s != id {
			succs = append(succs, s)
		}
	}

	g.RemoveNode(id)

	for _, p := range preds {
		for _, s := range succs {
			if g.DropSelfLoops && p == s {
				continue
			}
			g.AddEdge(p, s)
		}
	}
}

// RemoveByCondition removes every node for which cond returns true.
// The condition is evaluated against a snapshot of the node set taken
// before any removal, so results are unaffected by mutations made
// mid-pass. If reconstruct is set, each removal inserts bypass edges
// between the removed node's predecessors and successors; otherwise
// incident edges are simply dropped. Returns the number of nodes removed.
func (g *Graph) RemoveByCondition(cond func(id int64, attrs *Attributes) bool, reconstruct bool) int {
	matched := make([]int64, 0)
	for _, id := range g.NodeIDs() {
		if cond(id, g.nodes[id]) {
			matched = append(matched, id)
		}
	}

	for _, id := range matched {
		if reconstruct {
			g.RemoveNodeReconstruct(id)
		} else {
			g.RemoveNode(id)
		}
	}
	return len(matched)
}

// RemovePastDepth deletes every node not reachable from root via directed
// edges within depth hops. The root itself is always retained.
func (g *Graph) RemovePastDepth(root int64, depth int) error {
	if _, ok := g.nodes[root]; !ok {
		return ErrNodeNotFound
	}

	reachable := map[int64]struct{}{root: {}}
	frontier := []int64{root}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []int64
		for _, id := range frontier {
			for s := range g.succ[id] {
				if _, seen := reachable[s]; seen {
					continue
				}
				reachable[s] = struct{}{}
				next = append(next, s)
			}
		}
		frontier = next
	}

	for _, id := range g.NodeIDs() {
		if _, ok := reachable[id]; !ok {
			g.RemoveNode(id)
		}
	}
	return nil
}

// RenameNodes rewrites the Name attribute of every annotated node through
// fn. Purely an attribute rewrite; the structure is untouched.
func (g *Graph) RenameNodes(fn func(string) string) {
	for _, attrs := range g.nodes {
		if attrs != nil {
			attrs.Name = fn(attrs.Name)
		}
	}
}
