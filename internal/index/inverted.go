// Package index builds the six typed inverted indices and the quick
// pruning routine that intersects their posting lists. Physically an index
// is a flat slice keyed by id, whose cells are either nil or a posting
// list; absent cells keep O(1) id-indexed lookup while dense ids keep the
// memory flat.
package index

import (
	"fmt"
	"sync"

	"github.com/krauseamir/wikigir/internal/registry"
	"github.com/krauseamir/wikigir/pkg/binio"
	"golang.org/x/sync/errgroup"
)

// Posting is one (article-id, quantised-score) entry. Scores are stored as
// round(score*1e6) for on-disk and in-memory compactness.
type Posting struct {
	ArticleID int32
	Score     int32
}

// Type selects one of the six index families.
type Type int

const (
	WordsToArticles Type = iota
	WordsToArticlesWithCoordinates
	CategoriesToArticles
	CategoriesToArticlesWithCoordinates
	NamedLocationsToArticles
	NamedLocationsToArticlesWithCoordinates
)

func (t Type) String() string {
	switch t {
	case WordsToArticles:
		return "words"
	case WordsToArticlesWithCoordinates:
		return "words-with-coordinates"
	case CategoriesToArticles:
		return "categories"
	case CategoriesToArticlesWithCoordinates:
		return "categories-with-coordinates"
	case NamedLocationsToArticles:
		return "named-locations"
	case NamedLocationsToArticlesWithCoordinates:
		return "named-locations-with-coordinates"
	}
	return "unknown"
}

// withCoordinatesOnly reports whether the family indexes only articles
// that carry coordinates.
func (t Type) withCoordinatesOnly() bool {
	switch t {
	case WordsToArticlesWithCoordinates, CategoriesToArticlesWithCoordinates,
		NamedLocationsToArticlesWithCoordinates:
		return true
	}
	return false
}

// InvertedIndex maps term/category/location ids to posting lists.
type InvertedIndex struct {
	typ Type

	mu    sync.Mutex
	lists [][]Posting
}

// New creates an empty index of the given family.
func New(typ Type) *InvertedIndex {
	return &InvertedIndex{typ: typ, lists: make([][]Posting, 1)}
}

// Type returns the index family.
func (ix *InvertedIndex) Type() Type { return ix.typ }

// Len returns the length of the id-indexed array (after trimming, the
// largest populated id plus one).
func (ix *InvertedIndex) Len() int { return len(ix.lists) }

// Postings returns the posting list for an id, or nil when the cell is
// absent or out of range.
func (ix *InvertedIndex) Postings(id int32) []Posting {
	if id < 0 || int(id) >= len(ix.lists) {
		return nil
	}
	return ix.lists[id]
}

// Build constructs the index from the article registry. The per-article
// key extraction depends on the family: tf-idf term ids with their scores,
// category ids with score 1.0, or named-location ids with their scores.
func Build(typ Type, articles *registry.Articles, workers int) (*InvertedIndex, error) {
	ix := New(typ)

	working := make(map[int32][]Posting)
	for title, a := range articles.ByTitle {
		if typ.withCoordinatesOnly() && !a.HasCoordinates() {
			continue
		}
		titleID, ok := articles.TitleIDs.ID(title)
		if !ok {
			// Integrity violation: skip the article, never corrupt the
			// index.
			continue
		}

		ids, scores := articleKeys(typ, a)
		for i, id := range ids {
			working[id] = append(working[id], Posting{
				ArticleID: titleID,
				Score:     binio.QuantiseScore(scores[i]),
			})
		}
	}

	// Install the lists concurrently; the slice growth is the only shared
	// mutation and happens under the index mutex.
	var g errgroup.Group
	g.SetLimit(workers)
	for id, list := range working {
		id, list := id, list
		g.Go(func() error {
			ix.install(id, list)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix.trim()
	return ix, nil
}

func articleKeys(typ Type, a *registry.Article) ([]int32, []float32) {
	switch typ {
	case WordsToArticles, WordsToArticlesWithCoordinates:
		return a.WordsVector.IDs, a.WordsVector.Scores
	case CategoriesToArticles, CategoriesToArticlesWithCoordinates:
		scores := make([]float32, len(a.CategoryIDs))
		for i := range scores {
			scores[i] = 1
		}
		return a.CategoryIDs, scores
	case NamedLocationsToArticles, NamedLocationsToArticlesWithCoordinates:
		return a.NamedLocationsVector.IDs, a.NamedLocationsVector.Scores
	}
	return nil, nil
}

// install places one posting list at its id, growing the array with an
// amortised doubling rule: capacity becomes max(2*len, id+1) on demand.
func (ix *InvertedIndex) install(id int32, list []Posting) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if int(id) >= len(ix.lists) {
		newLen := 2 * len(ix.lists)
		if int(id)+1 > newLen {
			newLen = int(id) + 1
		}
		grown := make([][]Posting, newLen)
		copy(grown, ix.lists)
		ix.lists = grown
	}
	ix.lists[id] = list
}

// trim drops trailing absent cells so the array ends at the last
// populated id.
func (ix *InvertedIndex) trim() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	end := len(ix.lists)
	for ; end > 0; end-- {
		if ix.lists[end-1] != nil {
			break
		}
	}
	ix.lists = ix.lists[:end]
}

// Prune returns the article ids appearing in at least minCollisions of the
// posting lists selected by the given key ids, excluding selfID. A
// threshold of 1 is a plain union; thresholds of 2 and above go through
// the quick pruner.
func (ix *InvertedIndex) Prune(ids []int32, pruner *QuickPruner, minCollisions int, selfID int32) ([]int32, error) {
	if minCollisions < 1 {
		return nil, fmt.Errorf("pruning threshold must be strictly positive, got %d", minCollisions)
	}

	var lists [][]Posting
	for _, id := range ids {
		// Partial ("with coordinates") indices may not cover every id.
		if int(id) >= len(ix.lists) || id < 0 {
			continue
		}
		if ix.lists[id] != nil {
			lists = append(lists, ix.lists[id])
		}
	}

	var result []int32
	if minCollisions == 1 {
		seen := make(map[int32]struct{})
		for _, list := range lists {
			for _, p := range list {
				seen[p.ArticleID] = struct{}{}
			}
		}
		for id := range seen {
			if id != selfID {
				result = append(result, id)
			}
		}
		return result, nil
	}

	counts := pruner.Prune(lists)
	for id, count := range counts {
		if count >= minCollisions && id != selfID {
			result = append(result, id)
		}
	}
	return result, nil
}

// Save writes the index: the array length, then per cell the list length
// followed by (article-id, quantised-score) pairs. Absent cells write a
// zero length.
func (ix *InvertedIndex) Save(path string) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(len(ix.lists))
		for _, list := range ix.lists {
			w.WriteInt(len(list))
			for _, p := range list {
				w.WriteInt32(p.ArticleID)
				w.WriteInt32(p.Score)
			}
		}
		return w.Err()
	})
}

// Load reads an index persisted by Save.
func Load(typ Type, path string) (*InvertedIndex, error) {
	ix := New(typ)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		n := r.ReadInt()
		if err := r.Err(); err != nil {
			return err
		}
		ix.lists = make([][]Posting, n)
		for i := 0; i < n; i++ {
			k := r.ReadInt()
			if err := r.Err(); err != nil {
				return err
			}
			if k == 0 {
				continue
			}
			list := make([]Posting, k)
			for j := 0; j < k; j++ {
				list[j] = Posting{ArticleID: r.ReadInt32(), Score: r.ReadInt32()}
			}
			ix.lists[i] = list
		}
		return r.Err()
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}
