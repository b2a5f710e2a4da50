package staging

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestInsertArticles_Contains(t *testing.T) {
	d := openTemp(t)
	if err := d.InsertArticles([]int64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	for _, id := range []int64{1, 2, 3} {
		ok, err := d.Contains(id)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("article %d should be staged", id)
		}
	}
	ok, err := d.Contains(99)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("article 99 was never staged")
	}
}

func TestInsertArticles_DuplicatesIgnored(t *testing.T) {
	d := openTemp(t)
	if err := d.InsertArticles([]int64{7, 7, 7}); err != nil {
		t.Fatal(err)
	}
	total, err := d.ArticleTotal()
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("expected 1 article, got %d", total)
	}
}

func TestArticleCount_ExcludesSelfLink(t *testing.T) {
	d := openTemp(t)
	if err := d.InsertSelfLinks([]int64{100}); err != nil {
		t.Fatal(err)
	}
	if err := d.InsertArticleEdges([][2]int64{{1, 100}, {2, 100}, {3, 200}}); err != nil {
		t.Fatal(err)
	}
	if err := d.CreateIndices(); err != nil {
		t.Fatal(err)
	}

	count, err := d.ArticleCount(100)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("category 100: expected 2 articles excluding self link, got %d", count)
	}

	count, err = d.ArticleCount(200)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("category 200: expected 1 article, got %d", count)
	}

	count, err = d.ArticleCount(300)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unknown category: expected 0, got %d", count)
	}
}

func TestEdgeTotal(t *testing.T) {
	d := openTemp(t)
	if err := d.InsertArticleEdges([][2]int64{{1, 10}, {1, 10}, {2, 10}}); err != nil {
		t.Fatal(err)
	}
	total, err := d.EdgeTotal()
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("duplicate edge should collapse, got %d", total)
	}
}
