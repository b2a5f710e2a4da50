package assets

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLatestURL(t *testing.T) {
	got := LatestURL("en", TableCategoryLinks)
	want := "https://dumps.wikimedia.org/enwiki/latest/enwiki-latest-categorylinks.sql.gz"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLocal_OptionalCategories(t *testing.T) {
	loc := Local("page.sql.gz", "links.sql.gz", "", false)
	if loc.Pages == nil || loc.Links == nil {
		t.Fatal("pages and links must always be set")
	}
	if loc.Categories != nil {
		t.Error("categories should be nil when no path is given")
	}

	loc = Local("page.sql.gz", "links.sql.gz", "category.sql.gz", false)
	if loc.Categories == nil {
		t.Error("categories should be set when a path is given")
	}
}

func TestLastModified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Last-Modified", "Wed, 01 May 2024 03:14:00 GMT")
	}))
	defer server.Close()

	got, err := LastModified(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Wed, 01 May 2024 03:14:00 GMT" {
		t.Errorf("got %q", got)
	}
}

func TestLastModified_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := LastModified(server.URL); err == nil {
		t.Error("expected error for non-200 status")
	}
}
