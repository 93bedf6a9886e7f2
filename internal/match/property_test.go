package match

import (
	"testing"

	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/registry"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propDim = 8

func genVector() gopter.Gen {
	return gen.SliceOfN(propDim, gen.Float64Range(-1, 1)).Map(func(xs []float64) embedding.Vector {
		return embedding.Vector(xs)
	})
}

func distance(a, b embedding.Vector) float64 {
	d, _ := embedding.EuclideanDistance(a, b)
	return d
}

// Embeddings closer than the threshold always collide in the duplicate
// check; embeddings at or beyond it never do.
func TestPropertyDuplicateCheckMatchesThreshold(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("duplicate found exactly when distance < threshold", prop.ForAll(
		func(a, b embedding.Vector) bool {
			reg := sliceRegistry{{Name: "enrolled", Embedding: a}}
			dup, err := FindDuplicate(reg, b, DefaultThreshold)
			if err != nil {
				return false
			}
			if distance(a, b) < DefaultThreshold {
				return dup != nil
			}
			return dup == nil
		},
		genVector(),
		genVector(),
	))

	properties.TestingRun(t)
}

// The best match is always the enrolled identity at globally minimum
// distance, and only when that distance is strictly below the threshold.
func TestPropertyBestMatchIsGlobalMinimum(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("best match is the global minimum below threshold", prop.ForAll(
		func(vectors []embedding.Vector, query embedding.Vector) bool {
			reg := make(sliceRegistry, len(vectors))
			for i, v := range vectors {
				reg[i] = registry.Identity{Name: string(rune('a' + i)), Embedding: v}
			}

			best, err := Best(reg, query, DefaultThreshold)
			if err != nil {
				return false
			}

			minDist := DefaultThreshold
			minName := ""
			for _, id := range reg {
				if d := distance(id.Embedding, query); d < minDist {
					minDist = d
					minName = id.Name
				}
			}

			if minName == "" {
				return best == nil
			}
			return best != nil && best.Identity.Name == minName && best.Distance == minDist
		},
		gen.SliceOfN(5, genVector()),
		genVector(),
	))

	properties.TestingRun(t)
}
