// Package neighbors computes, for every article, its nearest neighbors
// among the coordinated articles: candidates come from the
// "with coordinates" inverted indices through the quick pruner, scores
// from the weighted similarity kernel, and the results stream to an
// append-only binary file.
package neighbors

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/krauseamir/wikigir/internal/index"
	"github.com/krauseamir/wikigir/internal/registry"
	"github.com/krauseamir/wikigir/internal/similarity"
	"github.com/krauseamir/wikigir/pkg/binio"
	pkgerrors "github.com/krauseamir/wikigir/pkg/errors"
	"github.com/krauseamir/wikigir/pkg/metrics"
)

// Params bundles everything the engine needs beyond the data structures.
type Params struct {
	Workers int

	TFIDFPruningThreshold          int
	NamedLocationsPruningThreshold int
	CategoriesPruningThreshold     int

	MinSimilarity float64
	MaxNeighbors  int

	Weights similarity.Weights

	PrunerMemorySize   int
	PrunerMaxIteration int

	TerminationWait time.Duration
}

// Engine computes the nearest-neighbor file. It holds read-only references
// to the article registry and the three "with coordinates" indices.
type Engine struct {
	articles *registry.Articles
	words    *index.InvertedIndex
	cats     *index.InvertedIndex
	nls      *index.InvertedIndex
	params   Params
	metrics  *metrics.Metrics
	log      *slog.Logger

	outMu sync.Mutex
	out   *binio.Writer
}

// Neighbor is one scored neighbor in an output record.
type Neighbor struct {
	ID    int32
	Score float32
}

// Record is one source article's neighbor list, as stored on disk.
type Record struct {
	SourceID  int32
	Neighbors []Neighbor
}

// New validates the input invariant (all three with-coordinates indices
// present) and returns an engine.
func New(articles *registry.Articles, words, cats, nls *index.InvertedIndex,
	params Params, m *metrics.Metrics) (*Engine, error) {

	if words == nil || cats == nil || nls == nil {
		return nil, fmt.Errorf("all three with-coordinates inverted indices must be built first")
	}
	if words.Type() != index.WordsToArticlesWithCoordinates ||
		cats.Type() != index.CategoriesToArticlesWithCoordinates ||
		nls.Type() != index.NamedLocationsToArticlesWithCoordinates {
		return nil, fmt.Errorf("nearest neighbors requires the with-coordinates index variants")
	}

	return &Engine{
		articles: articles,
		words:    words,
		cats:     cats,
		nls:      nls,
		params:   params,
		metrics:  m,
		log:      slog.Default().With("component", "nearest-neighbors"),
	}, nil
}

// Run computes neighbors for every article and streams the records to
// path. The workload is split into one contiguous chunk per worker; each
// worker owns its pruner. Output writes serialise behind a mutex and the
// file is append-only.
func (e *Engine) Run(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "creating output directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "creating %s: %v", path, err)
	}
	e.out = binio.NewWriter(f)

	titles := make([]string, 0, len(e.articles.ByTitle))
	for title := range e.articles.ByTitle {
		titles = append(titles, title)
	}

	workers := e.params.Workers
	chunkSize := (len(titles) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= len(titles) {
			break
		}
		end := start + chunkSize
		if end > len(titles) {
			end = len(titles)
		}
		chunk := titles[start:end]

		wg.Add(1)
		go func() {
			defer wg.Done()
			pruner := index.NewQuickPruner(e.params.PrunerMemorySize, e.params.PrunerMaxIteration)
			for _, title := range chunk {
				e.processArticle(title, pruner)
			}
		}()
	}

	// Orderly shutdown: drain within the configured wait or abandon the
	// pool and fail the phase.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(e.params.TerminationWait):
		f.Close()
		return pkgerrors.Wrap(pkgerrors.ErrShutdown,
			"nearest-neighbor workers did not drain within %s", e.params.TerminationWait)
	}

	if err := e.out.Flush(); err != nil {
		f.Close()
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "writing %s: %v", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "syncing %s: %v", path, err)
	}
	return f.Close()
}

// processArticle walks one source article through the candidate, scoring,
// top-k, and emit steps. Early termination at any step still emits (with
// an empty list) unless the source has no registered id.
func (e *Engine) processArticle(title string, pruner *index.QuickPruner) {
	a := e.articles.ByTitle[title]

	sourceID, ok := e.articles.TitleIDs.ID(title)
	if !ok {
		// Integrity violation: the article cannot be addressed in the
		// output file.
		if e.metrics != nil {
			e.metrics.ParseFailures.WithLabelValues("nearest-neighbors").Inc()
		}
		return
	}

	candidates := e.prunedCandidates(a, sourceID, pruner)
	if e.metrics != nil {
		e.metrics.CandidatesPruned.Observe(float64(len(candidates)))
	}

	scored := make([]Neighbor, 0, len(candidates))
	for _, candidateID := range candidates {
		candidateTitle, ok := e.articles.TitleIDs.String(candidateID)
		if !ok {
			continue
		}
		candidate, ok := e.articles.ByTitle[candidateTitle]
		if !ok || !candidate.HasCoordinates() {
			continue
		}
		// Self-hits are filtered defensively even though pruning already
		// removed the source id.
		if candidateID == sourceID {
			continue
		}

		score := similarity.Calculate(a, candidate, e.params.Weights)
		if score >= e.params.MinSimilarity {
			scored = append(scored, Neighbor{ID: candidateID, Score: float32(score)})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > e.params.MaxNeighbors {
		scored = scored[:e.params.MaxNeighbors]
	}

	e.write(Record{SourceID: sourceID, Neighbors: scored})
}

// prunedCandidates unions the per-component candidate sets. A component is
// only consulted when its weight is positive; each uses its own threshold.
func (e *Engine) prunedCandidates(a *registry.Article, sourceID int32, pruner *index.QuickPruner) []int32 {
	union := make(map[int32]struct{})

	add := func(ids []int32, err error) {
		if err != nil {
			e.log.Error("pruning failed", "article", a.Title, "error", err)
			return
		}
		for _, id := range ids {
			union[id] = struct{}{}
		}
	}

	w := e.params.Weights
	if w.TFIDF > 0 {
		add(e.words.Prune(a.WordsVector.IDs, pruner, e.params.TFIDFPruningThreshold, sourceID))
	}
	if w.NamedLocations > 0 {
		add(e.nls.Prune(a.NamedLocationsVector.IDs, pruner, e.params.NamedLocationsPruningThreshold, sourceID))
	}
	if w.Categories > 0 {
		add(e.cats.Prune(a.CategoryIDs, pruner, e.params.CategoriesPruningThreshold, sourceID))
	}

	result := make([]int32, 0, len(union))
	for id := range union {
		result = append(result, id)
	}
	return result
}

func (e *Engine) write(rec Record) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	e.out.WriteInt32(rec.SourceID)
	e.out.WriteInt(len(rec.Neighbors))
	for _, n := range rec.Neighbors {
		e.out.WriteInt32(n.ID)
		e.out.WriteFloat32(n.Score)
	}
	if e.metrics != nil {
		e.metrics.NeighborsWritten.Inc()
	}
}

// ReadAll loads a neighbors file into memory, keyed by source id. The file
// is a stream of records in no particular order; consumers index by the
// embedded source id.
func ReadAll(path string) (map[int32][]Neighbor, error) {
	result := make(map[int32][]Neighbor)
	err := binio.LoadFile(path, func(r *binio.Reader) error {
		for {
			sourceID := r.ReadInt32()
			if r.Err() != nil {
				return nil // EOF between records ends the stream.
			}
			k := r.ReadInt()
			neighbors := make([]Neighbor, 0, k)
			for i := 0; i < k; i++ {
				neighbors = append(neighbors, Neighbor{ID: r.ReadInt32(), Score: r.ReadFloat32()})
			}
			if err := r.Err(); err != nil {
				return err
			}
			result[sourceID] = neighbors
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
