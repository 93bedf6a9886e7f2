package match

import (
	"sort"
	"sync"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// NeighborIndex wraps an HNSW graph over enrolled identities for
// approximate k-nearest-neighbor listings. It backs diagnostic queries
// ("which enrolled people look like this embedding"); the exact linear-scan
// matcher remains authoritative for enroll/recognize/delete decisions.
type NeighborIndex struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[string]
	identities map[string]registry.Identity
}

// HNSW graph parameters, matching the library's recommended defaults for
// small to medium collections.
const indexMaxNeighbors = 16

// NewNeighborIndex creates an empty index.
func NewNeighborIndex() *NeighborIndex {
	return &NeighborIndex{
		identities: make(map[string]registry.Identity),
	}
}

// Build replaces the index contents with the given identities.
func (ix *NeighborIndex) Build(identities []registry.Identity) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(identities) == 0 {
		ix.graph = nil
		ix.identities = make(map[string]registry.Identity)
		return
	}

	g := hnsw.NewGraph[string]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	ix.identities = make(map[string]registry.Identity, len(identities))
	for _, id := range identities {
		if len(id.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(id.Name, id.Embedding.Float32()))
		ix.identities[id.Name] = id
	}

	ix.graph = g
}

// Len returns the number of indexed identities.
func (ix *NeighborIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.identities)
}

// Search returns up to k enrolled identities nearest to the query, ordered
// by ascending distance. Distances are recomputed in full float64 precision
// against the stored embeddings, so reported values are exact even though
// the graph search itself runs on float32.
func (ix *NeighborIndex) Search(query embedding.Vector, k int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil || k <= 0 {
		return nil, nil
	}

	neighbors := ix.graph.Search(query.Float32(), k)

	matches := make([]Match, 0, len(neighbors))
	for _, n := range neighbors {
		id, ok := ix.identities[n.Key]
		if !ok {
			continue
		}
		d, err := embedding.EuclideanDistance(id.Embedding, query)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Identity: id, Distance: d})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	return matches, nil
}
