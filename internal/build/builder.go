package build

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/aimless-wiki/db/internal/dump"
	"github.com/aimless-wiki/db/internal/graph"
	"github.com/aimless-wiki/db/internal/staging"
)

// Batch size for staged SQLite inserts.
const batchSize = 50000

// Tables bundles the record streams for one wiki snapshot. Categories is
// optional: when nil, page counts are derived relationally from the
// staging database instead of the aggregate category table.
type Tables struct {
	Pages      *dump.PageTable
	Links      *dump.CategoryLinksTable
	Categories *dump.CategoryTable
}

// Builder turns the three record streams into an annotated category graph.
// Article ids and article->category edges go through the staging database;
// only categories live in memory.
type Builder struct {
	Staging *staging.DB
	Log     logrus.FieldLogger
}

// Build runs the full single-pass construction: pages, then links, then
// page-count annotation, then excision of nodes that ended the pass
// without attributes.
func (b *Builder) Build(tables Tables) (*graph.Graph, error) {
	log := b.Log.WithField("action", "build_graph")

	idToName, err := b.loadPages(tables.Pages)
	if err != nil {
		return nil, errors.Wrap(err, "loading pages")
	}
	log.WithField("categories", len(idToName)).Info("page pass complete")

	nameToID := make(map[string]int64, len(idToName))
	for id, name := range idToName {
		nameToID[name] = id
	}

	g := graph.New()
	categoryIDs := make([]int64, 0, len(idToName))
	for id := range idToName {
		g.AddNode(id)
		categoryIDs = append(categoryIDs, id)
	}
	if err := b.Staging.InsertSelfLinks(categoryIDs); err != nil {
		return nil, errors.Wrap(err, "staging self links")
	}

	if err := b.loadLinks(tables.Links, nameToID, g); err != nil {
		return nil, errors.Wrap(err, "loading category links")
	}
	if err := b.Staging.CreateIndices(); err != nil {
		return nil, errors.Wrap(err, "indexing staging database")
	}
	log.WithField("edges", g.EdgeCount()).Info("link pass complete")

	if err := b.annotate(tables.Categories, idToName, nameToID, g); err != nil {
		return nil, errors.Wrap(err, "annotating page counts")
	}

	b.exciseUnannotated(g)

	return g, nil
}

func (b *Builder) loadPages(pages *dump.PageTable) (map[int64]string, error) {
	idToName := make(map[int64]string)
	articles := make([]int64, 0, batchSize)

	flush := func() error {
		if len(articles) == 0 {
			return nil
		}
		if err := b.Staging.InsertArticles(articles); err != nil {
			return err
		}
		articles = articles[:0]
		return nil
	}

	err := pages.Each(func(r dump.PageRecord) error {
		if r.IsArticle {
			articles = append(articles, r.PageID)
			if len(articles) >= batchSize {
				return flush()
			}
			return nil
		}
		idToName[r.PageID] = r.Title
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idToName, flush()
}

func (b *Builder) loadLinks(links *dump.CategoryLinksTable, nameToID map[string]int64, g *graph.Graph) error {
	articleEdges := make([][2]int64, 0, batchSize)
	unresolved := 0
	dropped := 0

	flush := func() error {
		if len(articleEdges) == 0 {
			return nil
		}
		if err := b.Staging.InsertArticleEdges(articleEdges); err != nil {
			return err
		}
		articleEdges = articleEdges[:0]
		return nil
	}

	err := links.Each(func(r dump.CategoryLinkRecord) error {
		parentID, ok := nameToID[r.ToName]
		if !ok {
			unresolved++
			return nil
		}

		if r.IsArticle {
			isArticle, err := b.Staging.Contains(r.FromID)
			if err != nil {
				return err
			}
			if !isArticle {
				dropped++
				return nil
			}
			articleEdges = append(articleEdges, [2]int64{r.FromID, parentID})
			if len(articleEdges) >= batchSize {
				return flush()
			}
			return nil
		}

		if !g.AddEdge(parentID, r.FromID) {
			dropped++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	if unresolved > 0 || dropped > 0 {
		b.Log.WithFields(logrus.Fields{
			"action":           "build_graph",
			"unresolved_links": unresolved,
			"dropped_links":    dropped,
		}).Warn("skipped category links with unknown endpoints")
	}
	return nil
}

// annotate attaches {name, page_count} to every resolvable node. With an
// aggregate category table the count is pages minus subcategories; nodes
// whose name has no aggregate record stay unannotated. Without the table
// the count comes from the staged article edges.
func (b *Builder) annotate(categories *dump.CategoryTable, idToName map[int64]string, nameToID map[string]int64, g *graph.Graph) error {
	if categories == nil {
		for id, name := range idToName {
			count, err := b.Staging.ArticleCount(id)
			if err != nil {
				return err
			}
			if err := g.SetAttrs(id, graph.Attributes{Name: name, PageCount: count}); err != nil {
				return err
			}
		}
		return nil
	}

	return categories.Each(func(r dump.CategoryRecord) error {
		id, ok := nameToID[r.Name]
		if !ok {
			return nil
		}
		count := r.Pages - r.Subcats
		if count < 0 {
			count = 0
		}
		return g.SetAttrs(id, graph.Attributes{Name: r.Name, PageCount: count})
	})
}

// exciseUnannotated removes, with bypass edges, every node that ended the
// build without attributes. A bare deletion here could sever the graph.
func (b *Builder) exciseUnannotated(g *graph.Graph) {
	removed := g.RemoveByCondition(func(id int64, attrs *graph.Attributes) bool {
		if attrs == nil {
			b.Log.WithFields(logrus.Fields{
				"action": "build_graph",
				"id":     id,
			}).Warn("excising category without attributes")
			return true
		}
		return false
	}, true)

	if removed > 0 {
		b.Log.WithFields(logrus.Fields{
			"action":  "build_graph",
			"excised": removed,
		}).Warn("removed categories lacking attributes")
	}
}
