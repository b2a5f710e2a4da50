package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aimless-wiki/db/internal/graph"
)

func TestParseExclusions(t *testing.T) {
	input := strings.NewReader(`
# maintenance categories
Hidden_categories

  Stub_categories

# trailing comment`)
	names := parseExclusions(input)
	want := []string{"Hidden_categories", "Stub_categories"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d: %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseExclusions_Empty(t *testing.T) {
	if names := parseExclusions(strings.NewReader("# only comments\n\n")); len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}
}

func TestExcludedIDs_ResolvesAgainstGraph(t *testing.T) {
	g := graph.New()
	g.AddNode(1)
	if err := g.SetAttrs(1, graph.Attributes{Name: "Hidden_categories"}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "excluded.txt")
	if err := os.WriteFile(path, []byte("Hidden_categories\nNot_a_category\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	excluded, err := excludedIDs(path, g)
	if err != nil {
		t.Fatal(err)
	}
	if len(excluded) != 1 {
		t.Fatalf("expected 1 excluded id, got %d", len(excluded))
	}
	if _, ok := excluded[1]; !ok {
		t.Error("Hidden_categories should resolve to id 1")
	}
}

func TestExcludedIDs_NoFile(t *testing.T) {
	excluded, err := excludedIDs("", graph.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(excluded) != 0 {
		t.Errorf("expected empty set, got %v", excluded)
	}
}
