package graph

// Document is the per-node export shape consumed by the document store.
type Document struct {
	ID           int64   `bson:"id" json:"id"`
	Name         string  `bson:"name" json:"name"`
	Successors   []int64 `bson:"successors" json:"successors"`
	Predecessors []int64 `bson:"predecessors" json:"predecessors"`
}

// Documents returns one Document per node, ordered by id. Unannotated
// nodes export an empty name; the build pass excises them, so they only
// appear here for graphs that skipped annotation entirely.
func (g *Graph) Documents() []Document {
	ids := g.NodeIDs()
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc := Document{
			ID:           id,
			Successors:   g.Successors(id),
			Predecessors: g.Predecessors(id),
		}
		if attrs := g.nodes[id]; attrs != nil {
			doc.Name = attrs.Name
		}
		docs = append(docs, doc)
	}
	return docs
}
