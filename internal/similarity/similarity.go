// Package similarity implements the scoring kernel of the
// nearest-neighbor phase: sorted-vector cosine, category Jaccard derived
// from the intersection size, and the weighted combination of the three.
package similarity

import (
	"github.com/krauseamir/wikigir/internal/registry"
	"github.com/krauseamir/wikigir/internal/vectors"
)

// Cosine walks two id-sorted vectors with two indices, advancing the
// smaller id side and accumulating the score product on id equality. For
// L2-normalised inputs the result is within [0,1].
func Cosine(ids1 []int32, scores1 []float32, ids2 []int32, scores2 []float32) float64 {
	var result float64
	i, j := 0, 0
	for i < len(ids1) && j < len(ids2) {
		switch {
		case ids1[i] < ids2[j]:
			i++
		case ids1[i] > ids2[j]:
			j++
		default:
			result += float64(scores1[i]) * float64(scores2[j])
			i++
			j++
		}
	}
	return result
}

// CosineVectors is Cosine over two ScoresVector values.
func CosineVectors(a, b vectors.ScoresVector) float64 {
	return Cosine(a.IDs, a.Scores, b.IDs, b.Scores)
}

// CategoriesJaccard computes the Jaccard similarity of two sorted category
// id sets. With all scores fixed at 1, the cosine walk yields exactly the
// intersection size.
func CategoriesJaccard(a, b []int32) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	ones := func(n int) []float32 {
		s := make([]float32, n)
		for i := range s {
			s[i] = 1
		}
		return s
	}
	intersection := Cosine(a, ones(len(a)), b, ones(len(b)))
	union := float64(len(a)) + float64(len(b)) - intersection
	if union == 0 {
		return 0
	}
	return intersection / union
}

// Weights is the (alpha, beta, gamma) triple of the combined score; the
// three must sum to 1.
type Weights struct {
	TFIDF          float64
	NamedLocations float64
	Categories     float64
}

// Calculate combines text cosine, named-location cosine, and category
// Jaccard with the given weights. A component with weight 0 is not
// computed at all.
func Calculate(a1, a2 *registry.Article, w Weights) float64 {
	var score float64
	if w.TFIDF > 0 {
		score += w.TFIDF * CosineVectors(a1.WordsVector, a2.WordsVector)
	}
	if w.NamedLocations > 0 {
		score += w.NamedLocations * CosineVectors(a1.NamedLocationsVector, a2.NamedLocationsVector)
	}
	if w.Categories > 0 {
		score += w.Categories * CategoriesJaccard(a1.CategoryIDs, a2.CategoryIDs)
	}
	return score
}
