package knowledge

import "math"

// CosineSimilarity computes the cosine similarity of two embedding vectors:
// the dot product divided by the product of magnitudes. Mismatched lengths
// or a zero-magnitude vector score 0 by policy rather than erroring, so a
// degenerate embedding ranks last instead of poisoning a whole search.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
