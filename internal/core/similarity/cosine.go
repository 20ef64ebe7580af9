package similarity

import (
	"fmt"
	"math"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// The computation runs in float64 and the result is clamped to [-1, 1].
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vector", domain.ErrDegenerateVector)
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("%w: zero magnitude", domain.ErrDegenerateVector)
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return 0, fmt.Errorf("%w: non-finite score", domain.ErrDegenerateVector)
	}
	return math.Max(-1, math.Min(1, score)), nil
}
