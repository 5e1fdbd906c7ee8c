// Package vectors defines the sparse id/score vector representation used
// for tf-idf terms and named locations, its builders, and the shared
// vector-file codec.
package vectors

import (
	"math"
	"sort"

	"github.com/krauseamir/wikigir/pkg/binio"
)

// ScoresVector stores ids mapped to scores as two parallel arrays. Ids are
// sorted ascending and the scores are L2-normalised, which makes the
// dot-product walk in the similarity kernel possible.
type ScoresVector struct {
	IDs    []int32
	Scores []float32
}

// Empty reports an all-empty vector.
func (v ScoresVector) Empty() bool { return len(v.IDs) == 0 }

type scoredID struct {
	id    int32
	score float32
}

// build takes (id, score) pairs in appearance order, keeps the maxElements
// best scores (stable on ties, so earlier appearance wins), sorts by id
// and L2-normalises.
func build(pairs []scoredID, maxElements int) ScoresVector {
	if len(pairs) > maxElements {
		sort.SliceStable(pairs, func(i, j int) bool {
			return pairs[i].score > pairs[j].score
		})
		pairs = pairs[:maxElements]
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].id < pairs[j].id
	})

	v := ScoresVector{
		IDs:    make([]int32, len(pairs)),
		Scores: make([]float32, len(pairs)),
	}
	for i, p := range pairs {
		v.IDs[i] = p.id
		v.Scores[i] = p.score
	}
	normalize(v.Scores)
	return v
}

// normalize scales the scores to unit L2 norm in place.
func normalize(scores []float32) {
	var norm float64
	for _, s := range scores {
		norm += float64(s) * float64(s)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range scores {
		scores[i] = float32(float64(scores[i]) / norm)
	}
}

// TermCounts accumulates per-article term frequencies while preserving the
// order in which term ids first appeared; that order breaks score ties in
// the top-k cut.
type TermCounts struct {
	counts map[int32]int
	order  []int32
}

func NewTermCounts() *TermCounts {
	return &TermCounts{counts: make(map[int32]int)}
}

// Add counts one occurrence of the term id.
func (tc *TermCounts) Add(id int32) {
	if _, seen := tc.counts[id]; !seen {
		tc.order = append(tc.order, id)
	}
	tc.counts[id]++
}

// Len returns the number of distinct term ids counted.
func (tc *TermCounts) Len() int { return len(tc.order) }

// BuildTFIDF computes score = log10(1+tf) * logIdf(id) for every counted
// term, keeps the maxElements highest-scoring ones, sorts by id ascending
// and L2-normalises. Articles with no eligible terms produce an empty
// vector.
func BuildTFIDF(tc *TermCounts, logIdf func(int32) float64, maxElements int) ScoresVector {
	pairs := make([]scoredID, 0, len(tc.order))
	for _, id := range tc.order {
		tf := tc.counts[id]
		score := float32(math.Log10(1+float64(tf)) * logIdf(id))
		pairs = append(pairs, scoredID{id: id, score: score})
	}
	return build(pairs, maxElements)
}

// IDCount is a named-location occurrence count, keyed by title id.
type IDCount struct {
	ID    int32
	Count int
}

// BuildNamedLocations converts (location-id, count) pairs into a scores
// vector with score = sqrt(count/totalCount), truncated to the maxElements
// highest, L2-normalised and sorted by id ascending.
func BuildNamedLocations(locations []IDCount, maxElements int) ScoresVector {
	total := 0
	for _, l := range locations {
		total += l.Count
	}
	if total == 0 {
		return ScoresVector{}
	}

	pairs := make([]scoredID, 0, len(locations))
	for _, l := range locations {
		score := float32(math.Sqrt(float64(l.Count) / float64(total)))
		pairs = append(pairs, scoredID{id: l.ID, score: score})
	}
	return build(pairs, maxElements)
}

// SaveVectorsFile persists a title-to-vector map in the shared vector-file
// layout: N, then per article the title, the id array, and the score
// array, each length-prefixed.
func SaveVectorsFile(path string, vectors map[string]ScoresVector) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(vectors))
		for title, v := range vectors {
			w.WriteString(title)
			w.WriteInt(len(v.IDs))
			for _, id := range v.IDs {
				w.WriteInt32(id)
			}
			w.WriteInt(len(v.Scores))
			for _, s := range v.Scores {
				w.WriteFloat32(s)
			}
		}
		return w.Err()
	})
}

// LoadVectorsFile reads a file written by SaveVectorsFile.
func LoadVectorsFile(path string) (map[string]ScoresVector, error) {
	vectors := make(map[string]ScoresVector)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		for i := 0; i < n; i++ {
			title := r.ReadString()
			ids := make([]int32, r.ReadInt())
			for j := range ids {
				ids[j] = r.ReadInt32()
			}
			scores := make([]float32, r.ReadInt())
			for j := range scores {
				scores[j] = r.ReadFloat32()
			}
			if err := r.Err(); err != nil {
				return err
			}
			vectors[title] = ScoresVector{IDs: ids, Scores: scores}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
