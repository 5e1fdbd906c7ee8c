// Package dictionary maps every corpus term to an integer id and tracks
// per-term document frequencies, total documents, and total words. Term
// ids start at 1 and are assigned in arrival order during a single build
// pass; the mapping is stable once persisted.
package dictionary

import (
	"math"
	"sync"

	"github.com/krauseamir/wikigir/internal/registry"
	"github.com/krauseamir/wikigir/pkg/binio"
)

// Dictionary is the corpus vocabulary with document frequencies.
type Dictionary struct {
	mu    sync.Mutex
	words *registry.StringIDs
	df    map[int32]int32

	totalDocuments int
	totalWords     int64
}

func New() *Dictionary {
	return &Dictionary{
		words: registry.NewStringIDs(1),
		df:    make(map[int32]int32),
	}
}

// AddDocument folds one article's filtered token list into the
// dictionary: id assignment for unseen tokens, +1 document frequency per
// distinct token, and the totals. The whole update is serialised under
// one mutex; callers tokenize outside it.
func (d *Dictionary) AddDocument(words []string) {
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.totalDocuments++
	d.totalWords += int64(len(words))

	for w := range unique {
		id := d.words.GetOrAdd(w)
		d.df[id]++
	}
}

// WordID returns the term id, if the word is known.
func (d *Dictionary) WordID(word string) (int32, bool) {
	return d.words.ID(word)
}

// Word returns the term string for an id.
func (d *Dictionary) Word(id int32) (string, bool) {
	return d.words.String(id)
}

// LogIdf returns log10(totalDocuments/df) for the id; for an unknown id
// the df is taken as 1, giving log10(totalDocuments).
func (d *Dictionary) LogIdf(id int32) float64 {
	df, ok := d.df[id]
	if !ok || df == 0 {
		return math.Log10(float64(d.totalDocuments))
	}
	return math.Log10(float64(d.totalDocuments) / float64(df))
}

// Size returns the vocabulary size.
func (d *Dictionary) Size() int { return d.words.Size() }

// TotalDocuments returns the number of documents folded in.
func (d *Dictionary) TotalDocuments() int { return d.totalDocuments }

// TotalWords returns the total (non-distinct) word count.
func (d *Dictionary) TotalWords() int64 { return d.totalWords }

// MaxID returns the largest assigned term id.
func (d *Dictionary) MaxID() int32 { return d.words.MaxID() }

// Save writes the dictionary: totals, the word-id pairs, then the
// document frequencies.
func (d *Dictionary) Save(path string) error {
	return binio.SaveFile(path, func(w *binio.Writer) error {
		w.WriteInt(d.totalDocuments)
		w.WriteInt64(d.totalWords)

		w.WriteInt(d.words.Size())
		for id := int32(1); id <= d.words.MaxID(); id++ {
			word, _ := d.words.String(id)
			w.WriteString(word)
			w.WriteInt32(id)
		}

		w.WriteInt(len(d.df))
		for id, df := range d.df {
			w.WriteInt32(id)
			w.WriteInt32(df)
		}
		return w.Err()
	})
}

// Load reads a dictionary persisted by Save.
func Load(path string) (*Dictionary, error) {
	d := New()
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		d.totalDocuments = r.ReadInt()
		d.totalWords = r.ReadInt64()

		m := r.ReadInt()
		pairs := make(map[int32]string, m)
		for i := 0; i < m; i++ {
			word := r.ReadString()
			id := r.ReadInt32()
			pairs[id] = word
		}
		// Re-add in id order so arrival order and ids agree.
		for id := int32(1); id <= int32(m); id++ {
			d.words.GetOrAdd(pairs[id])
		}

		n := r.ReadInt()
		for i := 0; i < n; i++ {
			id := r.ReadInt32()
			df := r.ReadInt32()
			d.df[id] = df
		}
		return r.Err()
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
