package build

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/aimless-wiki/db/internal/dump"
	"github.com/aimless-wiki/db/internal/staging"
)

func gzFixture(t *testing.T, name, content string) *dump.LocalSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return &dump.LocalSource{Path: path}
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	db, err := staging.Open(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return &Builder{Staging: db, Log: quietLogger()}
}

const pagesFixture = `INSERT INTO page VALUES ` +
	`(1,14,'A',0,0,0.5,'t','u',3,100,'wikitext',NULL),` +
	`(2,14,'B',0,0,0.5,'t','u',3,100,'wikitext',NULL),` +
	`(10,0,'Some_article',0,0,0.5,'t','u',3,100,'wikitext',NULL);`

const linksFixture = `INSERT INTO categorylinks VALUES ` +
	`(2,'A',0,0,0,0,'subcat'),` +
	`(10,'A',0,0,0,0,'page'),` +
	`(10,'Missing_category',0,0,0,0,'page'),` +
	`(99,'A',0,0,0,0,'page'),` +
	`(50,'B',0,0,0,0,'subcat');`

func fixtureTables(t *testing.T) Tables {
	t.Helper()
	return Tables{
		Pages: &dump.PageTable{Source: gzFixture(t, "page.sql.gz", pagesFixture)},
		Links: &dump.CategoryLinksTable{Source: gzFixture(t, "links.sql.gz", linksFixture)},
	}
}

func TestBuild_RelationalCounts(t *testing.T) {
	b := testBuilder(t)
	g, err := b.Build(fixtureTables(t))
	if err != nil {
		t.Fatal(err)
	}

	if g.NodeCount() != 2 {
		t.Fatalf("expected categories A and B, got %d nodes", g.NodeCount())
	}
	if !g.HasEdge(1, 2) {
		t.Error("subcat link B under A should yield edge (1,2)")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("links to unknown endpoints must be dropped, got %d edges", g.EdgeCount())
	}

	attrsA, _ := g.Attrs(1)
	if attrsA == nil || attrsA.Name != "A" || attrsA.PageCount != 1 {
		t.Errorf("category A: %+v", attrsA)
	}
	attrsB, _ := g.Attrs(2)
	if attrsB == nil || attrsB.PageCount != 0 {
		t.Errorf("category B should have a zero page count, got %+v", attrsB)
	}
}

func TestBuild_ArticleEdgesStaged(t *testing.T) {
	b := testBuilder(t)
	if _, err := b.Build(fixtureTables(t)); err != nil {
		t.Fatal(err)
	}

	// Article 10 in category A, plus one self link per category.
	count, err := b.Staging.ArticleCount(1)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("category A should have 1 staged article, got %d", count)
	}

	total, err := b.Staging.EdgeTotal()
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("expected 2 self links + 1 article edge, got %d", total)
	}
}

func TestBuild_AggregateCounts(t *testing.T) {
	tables := fixtureTables(t)
	tables.Categories = &dump.CategoryTable{Source: gzFixture(t, "category.sql.gz",
		`INSERT INTO category VALUES (1,'A',5,1,0);`)}

	b := testBuilder(t)
	g, err := b.Build(tables)
	if err != nil {
		t.Fatal(err)
	}

	attrsA, ok := g.Attrs(1)
	if !ok || attrsA == nil {
		t.Fatal("category A missing or unannotated")
	}
	if attrsA.PageCount != 4 {
		t.Errorf("page count should be pages minus subcats, got %d", attrsA.PageCount)
	}

	// B has no aggregate record: ends unannotated and is excised.
	if g.HasNode(2) {
		t.Error("category without aggregate record should be excised")
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected only category A, got %d nodes", g.NodeCount())
	}
}

func TestBuild_ExcisionPreservesConnectivity(t *testing.T) {
	// C(3) sits between A(1) and B(2); only A and B get aggregate
	// records, so C is excised and the bypass edge A -> B must appear.
	pages := `INSERT INTO page VALUES ` +
		`(1,14,'A',0,0,0.5,'t','u',3,1,'w',NULL),` +
		`(2,14,'B',0,0,0.5,'t','u',3,1,'w',NULL),` +
		`(3,14,'C',0,0,0.5,'t','u',3,1,'w',NULL);`
	links := `INSERT INTO categorylinks VALUES ` +
		`(3,'A',0,0,0,0,'subcat'),` +
		`(2,'C',0,0,0,0,'subcat');`
	cats := `INSERT INTO category VALUES (1,'A',3,1,0),(2,'B',2,0,0);`

	b := testBuilder(t)
	g, err := b.Build(Tables{
		Pages:      &dump.PageTable{Source: gzFixture(t, "page.sql.gz", pages)},
		Links:      &dump.CategoryLinksTable{Source: gzFixture(t, "links.sql.gz", links)},
		Categories: &dump.CategoryTable{Source: gzFixture(t, "category.sql.gz", cats)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if g.HasNode(3) {
		t.Error("unannotated middle category should be excised")
	}
	if !g.HasEdge(1, 2) {
		t.Error("excision should bypass A -> C -> B into A -> B")
	}
}
