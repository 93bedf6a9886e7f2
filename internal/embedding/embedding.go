package embedding

import (
	"errors"
	"math"
)

// DefaultDim is the dimensionality produced by the external extraction
// stage (dlib-style 128-float face encodings).
const DefaultDim = 128

// ErrDimensionMismatch is returned when two vectors of different lengths
// are compared. All vectors in one registry must share the same dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Vector is a fixed-length face embedding. It is pure data: the extraction
// stage produces it, the matcher compares it, the registry stores it.
type Vector []float64

// Dim returns the vector dimensionality.
func (v Vector) Dim() int {
	return len(v)
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Float32 converts the vector to float32 precision for index structures
// that operate on float32 slices.
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// EuclideanDistance computes the L2 distance between two vectors of equal
// dimensionality.
func EuclideanDistance(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum), nil
}
