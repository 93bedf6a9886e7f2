package match

import (
	"errors"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// sliceRegistry serves a fixed identity list in a fixed order.
type sliceRegistry []registry.Identity

func (s sliceRegistry) All() []registry.Identity { return s }

func ident(name string, emb ...float64) registry.Identity {
	return registry.Identity{Name: name, Embedding: embedding.Vector(emb)}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name      string
		enrolled  sliceRegistry
		query     embedding.Vector
		wantName  string // "" means no match
		wantDist  float64
	}{
		{
			name:     "empty registry yields no match",
			enrolled: sliceRegistry{},
			query:    embedding.Vector{0, 0},
			wantName: "",
		},
		{
			name: "exact match",
			enrolled: sliceRegistry{
				ident("alice", 0.1, 0.2),
			},
			query:    embedding.Vector{0.1, 0.2},
			wantName: "alice",
			wantDist: 0,
		},
		{
			name: "global minimum wins over earlier candidate",
			enrolled: sliceRegistry{
				ident("far", 0.4, 0), // distance 0.4, below threshold
				ident("near", 0.1, 0), // distance 0.1, nearer
			},
			query:    embedding.Vector{0, 0},
			wantName: "near",
			wantDist: 0.1,
		},
		{
			name: "distance exactly at threshold is rejected",
			enrolled: sliceRegistry{
				ident("edge", 0.5, 0),
			},
			query:    embedding.Vector{0, 0},
			wantName: "",
		},
		{
			name: "all beyond threshold yields no match",
			enrolled: sliceRegistry{
				ident("a", 1, 0),
				ident("b", 0, 1),
			},
			query:    embedding.Vector{0, 0},
			wantName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Best(tt.enrolled, tt.query, DefaultThreshold)
			if err != nil {
				t.Fatalf("Best() error = %v", err)
			}
			if tt.wantName == "" {
				if got != nil {
					t.Fatalf("Best() = %+v, want no match", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Best() = nil, want %q", tt.wantName)
			}
			if got.Identity.Name != tt.wantName {
				t.Errorf("Best().Identity.Name = %q, want %q", got.Identity.Name, tt.wantName)
			}
			if diff := got.Distance - tt.wantDist; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Best().Distance = %v, want %v", got.Distance, tt.wantDist)
			}
		})
	}
}

func TestFindDuplicate(t *testing.T) {
	tests := []struct {
		name     string
		enrolled sliceRegistry
		query    embedding.Vector
		wantDup  bool
	}{
		{
			name:     "empty registry has no duplicates",
			enrolled: sliceRegistry{},
			query:    embedding.Vector{0, 0},
			wantDup:  false,
		},
		{
			name: "identity within threshold conflicts",
			enrolled: sliceRegistry{
				ident("alice", 0.3, 0),
			},
			query:   embedding.Vector{0, 0},
			wantDup: true,
		},
		{
			name: "identity at threshold does not conflict",
			enrolled: sliceRegistry{
				ident("alice", 0.5, 0),
			},
			query:   embedding.Vector{0, 0},
			wantDup: false,
		},
		{
			name: "any identity below threshold conflicts",
			enrolled: sliceRegistry{
				ident("far", 2, 0),
				ident("near", 0.1, 0),
			},
			query:   embedding.Vector{0, 0},
			wantDup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindDuplicate(tt.enrolled, tt.query, DefaultThreshold)
			if err != nil {
				t.Fatalf("FindDuplicate() error = %v", err)
			}
			if (got != nil) != tt.wantDup {
				t.Errorf("FindDuplicate() = %+v, wantDup %v", got, tt.wantDup)
			}
		})
	}
}

func TestFindDuplicateReportsFirstInOrder(t *testing.T) {
	enrolled := sliceRegistry{
		ident("first", 0.1, 0),
		ident("second", 0.05, 0),
	}

	got, err := FindDuplicate(enrolled, embedding.Vector{0, 0}, DefaultThreshold)
	if err != nil {
		t.Fatalf("FindDuplicate() error = %v", err)
	}
	if got == nil || got.Identity.Name != "first" {
		t.Errorf("FindDuplicate() = %+v, want first identity in iteration order", got)
	}
}

func TestDimensionMismatchIsFatalToTheCall(t *testing.T) {
	enrolled := sliceRegistry{
		ident("alice", 0.1, 0.2, 0.3),
	}
	query := embedding.Vector{0.1, 0.2}

	if _, err := Best(enrolled, query, DefaultThreshold); !errors.Is(err, embedding.ErrDimensionMismatch) {
		t.Errorf("Best() error = %v, want ErrDimensionMismatch", err)
	}
	if _, err := FindDuplicate(enrolled, query, DefaultThreshold); !errors.Is(err, embedding.ErrDimensionMismatch) {
		t.Errorf("FindDuplicate() error = %v, want ErrDimensionMismatch", err)
	}
}
