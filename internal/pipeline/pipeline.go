// Package pipeline sequences the build phases: extraction passes over the
// dump, the per-article artifact files, the inverted indices, and finally
// the nearest-neighbor file. Every phase recognises an already-present
// output file and loads it instead of rebuilding, so reruns are idempotent
// and a crashed build resumes at the first missing artifact.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/krauseamir/wikigir/internal/extractor"
	"github.com/krauseamir/wikigir/pkg/config"
	pkgerrors "github.com/krauseamir/wikigir/pkg/errors"
	"github.com/krauseamir/wikigir/pkg/metrics"
	"github.com/krauseamir/wikigir/pkg/progress"
)

// Pipeline drives the phases against one configuration.
type Pipeline struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	log     *slog.Logger

	// parseWorkers sizes the pools of the extraction phases; the NN phase
	// uses its own configured worker count.
	parseWorkers int
}

func New(cfg *config.Config, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		metrics:      m,
		log:          slog.Default().With("component", "pipeline"),
		parseWorkers: runtime.NumCPU(),
	}
}

// Run executes every phase in dependency order.
func (p *Pipeline) Run() error {
	titleIDs, err := p.TitleRegistry()
	if err != nil {
		return err
	}
	dict, err := p.Dictionary()
	if err != nil {
		return err
	}
	coords, err := p.Coordinates()
	if err != nil {
		return err
	}
	redirects, err := p.Redirects()
	if err != nil {
		return err
	}
	categories, categoryIDs, err := p.Categories(titleIDs)
	if err != nil {
		return err
	}
	wordsVectors, err := p.TFIDFVectors(dict)
	if err != nil {
		return err
	}
	nlVectors, err := p.NamedLocationVectors(titleIDs, coords, redirects)
	if err != nil {
		return err
	}
	types, err := p.ArticleTypes(categories, categoryIDs)
	if err != nil {
		return err
	}
	locatedAt, err := p.LocatedAt(coords, types, redirects)
	if err != nil {
		return err
	}
	isAIn, err := p.IsAIn(coords, redirects)
	if err != nil {
		return err
	}

	articles := p.BuildArticles(ArticleInputs{
		TitleIDs:             titleIDs,
		CategoryIDs:          categoryIDs,
		Coordinates:          coords,
		Categories:           categories,
		Types:                types,
		WordsVectors:         wordsVectors,
		NamedLocationVectors: nlVectors,
		LocatedAt:            locatedAt,
		IsAIn:                isAIn,
	})

	indices, err := p.InvertedIndices(articles)
	if err != nil {
		return err
	}
	return p.NearestNeighbors(articles, indices)
}

// phase wraps one build step with its banner, skip-if-present check, and
// wall-time report.
func (p *Pipeline) phase(name, outPath string, load, build func() error) error {
	fmt.Printf("\n==== %s ====\n", name)
	start := time.Now()

	var err error
	if fileExists(outPath) {
		p.log.Info("phase output present, loading", "phase", name, "path", outPath)
		err = load()
	} else {
		p.log.Info("phase starting", "phase", name)
		err = build()
	}
	if err != nil {
		return fmt.Errorf("phase %s: %w", name, err)
	}

	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.PhaseDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	}
	p.log.Info("phase complete", "phase", name, "elapsed", elapsed.String())
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// parseAll streams the dump through the extractor and fans each record out
// to a fixed worker pool. The extractor is the producer and blocks when
// every worker slot is busy; that backpressure is the pool's queue bound.
// A panic inside one record's handler is absorbed and counted, matching
// the skip-with-counter rule for malformed records.
func (p *Pipeline) parseAll(phaseName string, opts extractor.Options, handle func(extractor.Page)) error {
	f, err := os.Open(p.cfg.Paths.WikiXMLPath())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "opening dump: %v", err)
	}
	defer f.Close()

	bar := progress.New(p.cfg.ExpectedArticles)

	var g errgroup.Group
	g.SetLimit(p.parseWorkers)

	err = extractor.Extract(f, opts, func(page extractor.Page) error {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					if p.metrics != nil {
						p.metrics.RecordsSkipped.WithLabelValues(phaseName).Inc()
					}
					p.log.Debug("record skipped", "phase", phaseName, "title", page.Title, "panic", r)
				}
			}()
			if p.metrics != nil {
				p.metrics.PagesExtracted.WithLabelValues(phaseName).Inc()
			}
			bar.Mark()
			handle(page)
			return nil
		})
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "extracting %s: %v", phaseName, err)
	}

	return p.waitBounded(&g)
}

// parseSequential runs the extractor without a worker pool, for phases
// whose output depends on document order.
func (p *Pipeline) parseSequential(phaseName string, opts extractor.Options, handle func(extractor.Page)) error {
	f, err := os.Open(p.cfg.Paths.WikiXMLPath())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "opening dump: %v", err)
	}
	defer f.Close()

	bar := progress.New(p.cfg.ExpectedArticles)
	err = extractor.Extract(f, opts, func(page extractor.Page) error {
		if p.metrics != nil {
			p.metrics.PagesExtracted.WithLabelValues(phaseName).Inc()
		}
		bar.Mark()
		handle(page)
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrBulkIO, "extracting %s: %v", phaseName, err)
	}
	return nil
}

// waitBounded joins the pool within the configured termination wait; a
// pool that fails to drain fails the phase.
func (p *Pipeline) waitBounded(g *errgroup.Group) error {
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	wait := time.Duration(p.cfg.Executor.TerminationWaitMillis) * time.Millisecond
	select {
	case err := <-done:
		return err
	case <-time.After(wait):
		return pkgerrors.Wrap(pkgerrors.ErrShutdown, "workers did not drain within %s", wait)
	}
}
