package graph

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrEmptyGraph is returned by queries that are meaningless on a graph
// with zero nodes.
var ErrEmptyGraph = errors.New("graph has no nodes")

// ErrNodeNotFound is returned when an operation references a node id
// that is not present in the graph.
var ErrNodeNotFound = errors.New("node not found")

// Attributes holds the per-category annotation attached to a node.
type Attributes struct {
	Name      string
	PageCount int
}

// Graph is a directed graph of categories. Node identity is the wiki page id.
// Forward and reverse adjacency sets are kept consistent by every mutation;
// edges are a set, never a multiset.
type Graph struct {
	// DropSelfLoops controls whether bypass edges p -> p created by
	// reconstructive removal are filtered instead of inserted.
	DropSelfLoops bool

	nodes map[int64]*Attributes
	succ  map[int64]map[int64]struct{}
	pred  map[int64]map[int64]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int64]*Attributes),
		succ:  make(map[int64]map[int64]struct{}),
		pred:  make(map[int64]map[int64]struct{}),
	}
}

// AddNode inserts a node without attributes. Inserting an existing node is a no-op.
func (g *Graph) AddNode(id int64) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = nil
	g.succ[id] = make(map[int64]struct{})
	g.pred[id] = make(map[int64]struct{})
}

// SetAttrs attaches attributes to an existing node.
func (g *Graph) SetAttrs(id int64, attrs Attributes) error {
	if _, ok := g.nodes[id]; !ok {
		return errors.Wrapf(ErrNodeNotFound, "id %d", id)
	}
	g.nodes[id] = &attrs
	return nil
}

// Attrs returns the attributes of a node, or nil if the node is
// unannotated. The second return reports whether the node exists.
func (g *Graph) Attrs(id int64) (*Attributes, bool) {
	attrs, ok := g.nodes[id]
	return attrs, ok
}

// HasNode reports whether id is a node in the graph.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge inserts the directed edge parent -> child. Both endpoints must
// already be nodes; edges to unknown nodes are dropped, reported by the
// false return. Duplicate insertions are idempotent.
func (g *Graph) AddEdge(parent, child int64) bool {
	if _, ok := g.nodes[parent]; !ok {
		return false
	}
	if _, ok := g.nodes[child]; !ok {
		return false
	}
	g.succ[parent][child] = struct{}{}
	g.pred[child][parent] = struct{}{}
	return true
}

// HasEdge reports whether the edge parent -> child exists.
func (g *Graph) HasEdge(parent, child int64) bool {
	set, ok := g.succ[parent]
	if !ok {
		return false
	}
	_, ok = set[child]
	return ok
}

// RemoveNode deletes a node and all its incident edges. No bypass edges
// are created. Removing an absent node is a no-op.
func (g *Graph) RemoveNode(id int64) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for s := range g.succ[id] {
		delete(g.pred[s], id)
	}
	for p := range g.pred[id] {
		delete(g.succ[p], id)
	}
	delete(g.succ, id)
	delete(g.pred, id)
	delete(g.nodes, id)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, set := range g.succ {
		count += len(set)
	}
	return count
}

// NodeIDs returns a sorted list of all node ids (for deterministic output)
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Successors returns the children of id, sorted.
func (g *Graph) Successors(id int64) []int64 {
	return sortedSet(g.succ[id])
}

// Predecessors returns the parents of id, sorted.
func (g *Graph) Predecessors(id int64) []int64 {
	return sortedSet(g.pred[id])
}

// IDForName returns the id of the node whose Name attribute matches name.
func (g *Graph) IDForName(name string) (int64, bool) {
	for id, attrs := range g.nodes {
		if attrs != nil && attrs.Name == name {
			return id, true
		}
	}
	return 0, false
}

func sortedSet(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
