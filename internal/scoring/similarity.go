package scoring

import (
	"math"
	"strings"
)

// CosineSimilarity returns the cosine similarity of two vectors rescaled from
// [-1,1] into [0,1]. Mismatched lengths or a zero-magnitude vector yield 0.0
// rather than an error so that degenerate inputs degrade to the lowest score.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cos) {
		return 0.0
	}

	// Rescale so every exposed similarity lives on the same [0,1] scale
	return clamp01((cos + 1) / 2)
}

// WordOverlapSimilarity is a lexical approximation of semantic similarity:
// the Jaccard index over the lowercase word sets of both texts. It serves as
// a fallback when no embedding provider is available.
func WordOverlapSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}

	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}
