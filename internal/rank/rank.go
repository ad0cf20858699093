// Package rank scores collected sources against the query embedding and
// selects the top-K to ground generation.
package rank

import (
	"math"
	"sort"

	"github.com/hyperifyio/goanswer/internal/source"
)

// Ranked pairs a source with its similarity to the query.
type Ranked struct {
	source.Source
	Similarity float64
}

// Cosine returns the cosine similarity of a and b: dot product over the
// product of magnitudes. Mismatched lengths, empty vectors, and zero
// magnitudes all score 0 — this is what makes sources with failed embeddings
// sink to the bottom instead of breaking the sort.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// TopK scores every source against the query embedding and returns at most k
// results ordered by similarity descending. Ties keep the original collection
// order (stable sort), so equal-scoring sources surface in the order the
// collector accepted them.
func TopK(query []float64, sources []source.Source, k int) []Ranked {
	if k <= 0 || len(sources) == 0 {
		return nil
	}
	ranked := make([]Ranked, 0, len(sources))
	for _, s := range sources {
		ranked = append(ranked, Ranked{Source: s, Similarity: Cosine(query, s.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
