package match

import (
	"testing"

	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

func TestNeighborIndexSearch(t *testing.T) {
	identities := []registry.Identity{
		ident("near", 0.1, 0, 0),
		ident("mid", 0.5, 0, 0),
		ident("far", 2, 0, 0),
	}

	ix := NewNeighborIndex()
	ix.Build(identities)

	if ix.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ix.Len())
	}

	matches, err := ix.Search(embedding.Vector{0, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Search() returned %d matches, want 2", len(matches))
	}
	if matches[0].Identity.Name != "near" {
		t.Errorf("nearest = %q, want near", matches[0].Identity.Name)
	}
	if matches[1].Identity.Name != "mid" {
		t.Errorf("second = %q, want mid", matches[1].Identity.Name)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Errorf("matches not ordered by distance: %v", matches)
	}
}

func TestNeighborIndexEmpty(t *testing.T) {
	ix := NewNeighborIndex()

	matches, err := ix.Search(embedding.Vector{0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if matches != nil {
		t.Errorf("Search() on empty index = %v, want nil", matches)
	}

	ix.Build(nil)
	if ix.Len() != 0 {
		t.Errorf("Len() = %d after empty build", ix.Len())
	}
}

func TestNeighborIndexRebuild(t *testing.T) {
	ix := NewNeighborIndex()
	ix.Build([]registry.Identity{ident("alice", 0.1, 0, 0)})
	ix.Build([]registry.Identity{ident("bob", 0.2, 0, 0)})

	matches, err := ix.Search(embedding.Vector{0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Identity.Name != "bob" {
		t.Errorf("rebuild did not replace contents: %v", matches)
	}
}

func TestNeighborIndexSkipsEmptyEmbeddings(t *testing.T) {
	ix := NewNeighborIndex()
	ix.Build([]registry.Identity{
		ident("alice", 0.1, 0, 0),
		{Name: "broken"},
	})

	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (empty embedding skipped)", ix.Len())
	}
}
