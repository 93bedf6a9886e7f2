// Package match decides which enrolled identity, if any, a query embedding
// belongs to. Two query semantics exist: the duplicate check used during
// enrollment (any identity closer than the threshold is a conflict) and the
// best match used during recognition and deletion (global minimum distance
// strictly below the threshold).
package match

import (
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// DefaultThreshold is the maximum Euclidean distance at which two
// embeddings are considered the same person.
const DefaultThreshold = 0.5

// Registry is the read-only view the matcher needs.
type Registry interface {
	All() []registry.Identity
}

// Match is one identity paired with its distance to the query.
type Match struct {
	Identity registry.Identity
	Distance float64
}

// FindDuplicate scans all enrolled identities and reports the first one
// whose distance to query is strictly below threshold, or nil if none is.
// Iteration order is unspecified; a conflict means "same person", so no
// tie-break is needed.
func FindDuplicate(reg Registry, query embedding.Vector, threshold float64) (*Match, error) {
	for _, id := range reg.All() {
		d, err := embedding.EuclideanDistance(id.Embedding, query)
		if err != nil {
			return nil, fmt.Errorf("comparing against %q: %w", id.Name, err)
		}
		if d < threshold {
			return &Match{Identity: id, Distance: d}, nil
		}
	}
	return nil, nil
}

// Best scans all enrolled identities and returns the one with the globally
// minimum distance to query, provided that distance is strictly below
// threshold. The running best is seeded at threshold, so no identity at
// distance >= threshold can ever be selected. An empty registry yields nil,
// not an error.
func Best(reg Registry, query embedding.Vector, threshold float64) (*Match, error) {
	var best *Match
	min := threshold

	for _, id := range reg.All() {
		d, err := embedding.EuclideanDistance(id.Embedding, query)
		if err != nil {
			return nil, fmt.Errorf("comparing against %q: %w", id.Name, err)
		}
		if d < min {
			min = d
			best = &Match{Identity: id, Distance: d}
		}
	}

	return best, nil
}
