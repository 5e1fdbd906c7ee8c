package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/krauseamir/wikigir/internal/articletype"
	"github.com/krauseamir/wikigir/internal/dictionary"
	"github.com/krauseamir/wikigir/internal/extractor"
	"github.com/krauseamir/wikigir/internal/geo"
	"github.com/krauseamir/wikigir/internal/index"
	"github.com/krauseamir/wikigir/internal/neighbors"
	"github.com/krauseamir/wikigir/internal/registry"
	"github.com/krauseamir/wikigir/internal/similarity"
	"github.com/krauseamir/wikigir/internal/tokenizer"
	"github.com/krauseamir/wikigir/internal/vectors"
	"github.com/krauseamir/wikigir/internal/wikitext"
)

// TitleRegistry builds (or loads) the title-id bijection. Ids are assigned
// in document order by a sequential scan, so the mapping is reproducible
// from the same dump; once persisted it is carried over between runs.
func (p *Pipeline) TitleRegistry() (*registry.StringIDs, error) {
	path := p.cfg.Paths.TitleIDsPath()
	var titleIDs *registry.StringIDs

	err := p.phase("title registry", path,
		func() error {
			var err error
			titleIDs, err = registry.LoadStringIDs(path, 0)
			return err
		},
		func() error {
			titleIDs = registry.NewStringIDs(0)
			// Sequential on purpose: id assignment follows document order.
			err := p.parseSequential("title-registry", extractor.Options{}, func(page extractor.Page) {
				titleIDs.GetOrAdd(page.Title)
			})
			if err != nil {
				return err
			}
			return titleIDs.Save(path)
		})
	return titleIDs, err
}

// Dictionary builds (or loads) the term dictionary with document
// frequencies over the clean text of every article.
func (p *Pipeline) Dictionary() (*dictionary.Dictionary, error) {
	path := p.cfg.Paths.DictionaryPath()
	var dict *dictionary.Dictionary

	err := p.phase("dictionary", path,
		func() error {
			var err error
			dict, err = dictionary.Load(path)
			return err
		},
		func() error {
			dict = dictionary.New()
			err := p.parseAll("dictionary", extractor.Options{}, func(page extractor.Page) {
				words := tokenizer.Tokenize(wikitext.CleanText(page.Title, page.Text), true)
				words = tokenizer.FilterStopWords(words)
				dict.AddDocument(words)
			})
			if err != nil {
				return err
			}
			return dict.Save(path)
		})
	return dict, err
}

// Coordinates builds (or loads) the title-to-coordinates table.
func (p *Pipeline) Coordinates() (map[string]geo.Coordinates, error) {
	path := p.cfg.Paths.CoordinatesPath()
	var coords map[string]geo.Coordinates

	err := p.phase("coordinates", path,
		func() error {
			var err error
			coords, err = loadCoordinates(path)
			return err
		},
		func() error {
			coords = make(map[string]geo.Coordinates)
			var mu sync.Mutex
			err := p.parseAll("coordinates", extractor.Options{}, func(page extractor.Page) {
				if c, ok := wikitext.ParseCoordinates(page.Text); ok {
					mu.Lock()
					coords[page.Title] = c
					mu.Unlock()
				}
			})
			if err != nil {
				return err
			}
			return saveCoordinates(path, coords)
		})
	return coords, err
}

// Redirects builds (or loads) the redirect table from a redirects-only
// extraction pass.
func (p *Pipeline) Redirects() (map[string]string, error) {
	path := p.cfg.Paths.RedirectsPath()
	var redirects map[string]string

	err := p.phase("redirects", path,
		func() error {
			var err error
			redirects, err = loadStringMap(path)
			return err
		},
		func() error {
			redirects = make(map[string]string)
			var mu sync.Mutex
			err := p.parseAll("redirects", extractor.Options{Redirects: true}, func(page extractor.Page) {
				if target, ok := wikitext.ParseRedirect(page.Text); ok {
					mu.Lock()
					redirects[page.Title] = target
					mu.Unlock()
				}
			})
			if err != nil {
				return err
			}
			return saveStringMap(path, redirects)
		})
	return redirects, err
}

// Categories builds (or loads) both the article-to-category-ids mapping
// and the category-id registry. Category strings are collected in
// parallel; id assignment happens afterwards in title-id order so the ids
// are reproducible given the title registry.
func (p *Pipeline) Categories(titleIDs *registry.StringIDs) (map[string][]int32, *registry.StringIDs, error) {
	catsPath := p.cfg.Paths.CategoriesPath()
	idsPath := p.cfg.Paths.CategoryIDsPath()

	var byTitle map[string][]int32
	var categoryIDs *registry.StringIDs

	err := p.phase("categories", catsPath,
		func() error {
			var err error
			if byTitle, err = loadCategories(catsPath); err != nil {
				return err
			}
			categoryIDs, err = registry.LoadStringIDs(idsPath, 0)
			return err
		},
		func() error {
			raw := make(map[string][]string)
			var mu sync.Mutex
			err := p.parseAll("categories", extractor.Options{}, func(page extractor.Page) {
				cats := wikitext.ParseCategories(page.Text)
				mu.Lock()
				raw[page.Title] = cats
				mu.Unlock()
			})
			if err != nil {
				return err
			}

			categoryIDs = registry.NewStringIDs(0)
			byTitle = make(map[string][]int32, len(raw))
			for _, title := range titlesInIDOrder(titleIDs) {
				cats, ok := raw[title]
				if !ok {
					continue
				}
				unique := make(map[int32]struct{}, len(cats))
				ids := make([]int32, 0, len(cats))
				for _, cat := range cats {
					id := categoryIDs.GetOrAdd(cat)
					if _, dup := unique[id]; dup {
						continue
					}
					unique[id] = struct{}{}
					ids = append(ids, id)
				}
				sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
				byTitle[title] = ids
			}

			if err := categoryIDs.Save(idsPath); err != nil {
				return err
			}
			return saveCategories(catsPath, byTitle)
		})
	return byTitle, categoryIDs, err
}

// TFIDFVectors builds (or loads) the per-article tf-idf top-k vectors.
func (p *Pipeline) TFIDFVectors(dict *dictionary.Dictionary) (map[string]vectors.ScoresVector, error) {
	path := p.cfg.Paths.TFIDFVectorsPath()
	var byTitle map[string]vectors.ScoresVector

	err := p.phase("tf-idf vectors", path,
		func() error {
			var err error
			byTitle, err = vectors.LoadVectorsFile(path)
			return err
		},
		func() error {
			byTitle = make(map[string]vectors.ScoresVector)
			var mu sync.Mutex
			err := p.parseAll("tf-idf", extractor.Options{}, func(page extractor.Page) {
				words := tokenizer.Tokenize(wikitext.CleanText(page.Title, page.Text), true)
				words = tokenizer.FilterStopWords(words)

				counts := vectors.NewTermCounts()
				for _, w := range words {
					// Unknown words are skipped; every corpus word should
					// have an id from the dictionary pass.
					if id, ok := dict.WordID(w); ok {
						counts.Add(id)
					}
				}
				v := vectors.BuildTFIDF(counts, dict.LogIdf, p.cfg.Limits.MaxVectorElements)

				mu.Lock()
				byTitle[page.Title] = v
				mu.Unlock()
			})
			if err != nil {
				return err
			}
			return vectors.SaveVectorsFile(path, byTitle)
		})
	return byTitle, err
}

// NamedLocationVectors builds (or loads) the per-article named-location
// vectors: contained link entities resolved to coordinated articles
// (directly or via redirect), counted in the clean text, filtered, scored
// by sqrt(count/total), and truncated.
func (p *Pipeline) NamedLocationVectors(titleIDs *registry.StringIDs, coords map[string]geo.Coordinates,
	redirects map[string]string) (map[string]vectors.ScoresVector, error) {

	path := p.cfg.Paths.NamedLocationVectorsPath()
	var byTitle map[string]vectors.ScoresVector

	limits := wikitext.EntityLimits{
		MaxIndexForTitleRemoval:  p.cfg.Limits.MaxIndexForTitleRemoval,
		MaxTitleLengthForRemoval: p.cfg.Limits.MaxTitleLengthForRemoval,
	}

	err := p.phase("named-location vectors", path,
		func() error {
			var err error
			byTitle, err = vectors.LoadVectorsFile(path)
			return err
		},
		func() error {
			byTitle = make(map[string]vectors.ScoresVector)
			var mu sync.Mutex
			err := p.parseAll("named-locations", extractor.Options{}, func(page extractor.Page) {
				parsed := wikitext.ParseContainedEntities(page.Title, page.Text, limits)
				located := p.resolveNamedLocations(parsed, titleIDs, coords, redirects)
				v := vectors.BuildNamedLocations(located, p.cfg.Limits.MaxNamedLocationsPerArticle)

				mu.Lock()
				byTitle[page.Title] = v
				mu.Unlock()
			})
			if err != nil {
				return err
			}
			return vectors.SaveVectorsFile(path, byTitle)
		})
	return byTitle, err
}

type namedLocation struct {
	titleID        int32
	firstWordIndex int
	count          int
}

// resolveNamedLocations keeps only entities whose resolved title has
// coordinates, counts their variant occurrences in the clean text, drops
// zero counts and too-late first appearances, and converts to title ids.
// The redirect-resolved title is the stored key.
func (p *Pipeline) resolveNamedLocations(parsed wikitext.ContainedEntities, titleIDs *registry.StringIDs,
	coords map[string]geo.Coordinates, redirects map[string]string) []vectors.IDCount {

	var located []namedLocation
	for official, entity := range parsed.Entities {
		normalized := extractor.CanonicalTitle(official)
		if _, ok := coords[normalized]; !ok {
			redirect, hasRedirect := redirects[normalized]
			if !hasRedirect {
				continue
			}
			normalized = extractor.CanonicalTitle(redirect)
			if _, ok := coords[normalized]; !ok {
				continue
			}
		}

		toSearch := wikitext.SearchableVariants(entity.Variants)
		count := wikitext.CountVariantOccurrences(toSearch, parsed.CleanText)
		if count == 0 || entity.FirstWordIndex > p.cfg.Limits.MaxWordIndex {
			continue
		}

		id, ok := titleIDs.ID(normalized)
		if !ok {
			// The location names an article outside the registry; skip it
			// rather than fabricate an id.
			if p.metrics != nil {
				p.metrics.ParseFailures.WithLabelValues("named-locations").Inc()
			}
			continue
		}
		located = append(located, namedLocation{titleID: id, firstWordIndex: entity.FirstWordIndex, count: count})
	}

	sort.SliceStable(located, func(i, j int) bool {
		return located[i].firstWordIndex < located[j].firstWordIndex
	})

	result := make([]vectors.IDCount, 0, len(located))
	for _, l := range located {
		result = append(result, vectors.IDCount{ID: l.titleID, Count: l.count})
	}
	return result
}

// ArticleTypes builds (or loads) the per-article type labels.
func (p *Pipeline) ArticleTypes(categories map[string][]int32,
	categoryIDs *registry.StringIDs) (map[string]articletype.Type, error) {

	path := p.cfg.Paths.ArticleTypesPath()
	var byTitle map[string]articletype.Type

	err := p.phase("article types", path,
		func() error {
			var err error
			byTitle, err = loadArticleTypes(path)
			return err
		},
		func() error {
			byTitle = make(map[string]articletype.Type)
			var mu sync.Mutex
			err := p.parseAll("article-types", extractor.Options{}, func(page extractor.Page) {
				var cats []string
				for _, id := range categories[page.Title] {
					if s, ok := categoryIDs.String(id); ok {
						cats = append(cats, s)
					}
				}

				// Stopwords are kept: detecting "is a city in" needs them.
				words := tokenizer.Tokenize(wikitext.CleanText(page.Title, page.Text), false)

				t := articletype.Detect(page.Title, page.Text, cats, words)
				if t == articletype.None {
					return
				}
				mu.Lock()
				byTitle[page.Title] = t
				mu.Unlock()
			})
			if err != nil {
				return err
			}
			return saveArticleTypes(path, byTitle)
		})
	return byTitle, err
}

// LocatedAt builds (or loads) the explicit located-at table.
func (p *Pipeline) LocatedAt(coords map[string]geo.Coordinates, types map[string]articletype.Type,
	redirects map[string]string) (map[string]string, error) {

	path := p.cfg.Paths.LocatedAtPath()
	var byTitle map[string]string

	parser := &wikitext.LocatedAtParser{
		Coordinates:  coords,
		ArticleTypes: types,
		Redirects:    redirects,
		Limits: wikitext.LocatedAtLimits{
			MaxWordsTillPhrase:      p.cfg.Limits.MaxWordsTillPhrase,
			MaxCharactersPostPhrase: p.cfg.Limits.MaxCharactersPostPhrase,
			MaxEntitiesDiameterKm:   p.cfg.Limits.MaxEntitiesDiameterKm,
		},
	}

	err := p.phase("located-at", path,
		func() error {
			var err error
			byTitle, err = loadStringMap(path)
			return err
		},
		func() error {
			byTitle = make(map[string]string)
			var mu sync.Mutex
			err := p.parseAll("located-at", extractor.Options{}, func(page extractor.Page) {
				if target := parser.Parse(page.Title, page.Text); target != "" {
					mu.Lock()
					byTitle[page.Title] = target
					mu.Unlock()
				}
			})
			if err != nil {
				return err
			}
			return saveStringMap(path, byTitle)
		})
	return byTitle, err
}

// IsAIn builds (or loads) the "is a ___ in ___" table.
func (p *Pipeline) IsAIn(coords map[string]geo.Coordinates, redirects map[string]string) (map[string][]string, error) {
	path := p.cfg.Paths.IsAInPath()
	var byTitle map[string][]string

	parser := &wikitext.IsAInParser{
		Coordinates: coords,
		Redirects:   redirects,
		Limits: wikitext.IsAInLimits{
			MaxWordsTillVerb:      p.cfg.Limits.MaxWordsTillVerb,
			SegmentCharactersSize: p.cfg.Limits.SegmentCharactersSize,
		},
	}

	err := p.phase("is-a-in", path,
		func() error {
			var err error
			byTitle, err = loadStringLists(path)
			return err
		},
		func() error {
			byTitle = make(map[string][]string)
			var mu sync.Mutex
			err := p.parseAll("is-a-in", extractor.Options{}, func(page extractor.Page) {
				if locations := parser.Parse(page.Title, page.Text); len(locations) > 0 {
					mu.Lock()
					byTitle[page.Title] = locations
					mu.Unlock()
				}
			})
			if err != nil {
				return err
			}
			return saveStringLists(path, byTitle)
		})
	return byTitle, err
}

// ArticleInputs aliases the registry join inputs.
type ArticleInputs = registry.BuildInputs

// BuildArticles joins all per-article artifacts into the in-memory record
// set. No file of its own: the artifacts are the persisted form.
func (p *Pipeline) BuildArticles(in ArticleInputs) *registry.Articles {
	return registry.Build(in)
}

// IndexSet holds the six inverted indices.
type IndexSet struct {
	Words               *index.InvertedIndex
	WordsWithCoords     *index.InvertedIndex
	Categories          *index.InvertedIndex
	CategoriesWithCoords *index.InvertedIndex
	NamedLocations      *index.InvertedIndex
	NamedLocationsWithCoords *index.InvertedIndex
}

// InvertedIndices builds (or loads) all six indices.
func (p *Pipeline) InvertedIndices(articles *registry.Articles) (*IndexSet, error) {
	set := &IndexSet{}
	files := []struct {
		typ  index.Type
		file string
		dst  **index.InvertedIndex
	}{
		{index.WordsToArticles, p.cfg.Paths.WordsIndexFile, &set.Words},
		{index.WordsToArticlesWithCoordinates, p.cfg.Paths.WordsWithCoordsIndexFile, &set.WordsWithCoords},
		{index.CategoriesToArticles, p.cfg.Paths.CategoriesIndexFile, &set.Categories},
		{index.CategoriesToArticlesWithCoordinates, p.cfg.Paths.CategoriesWithCoordsIndexFile, &set.CategoriesWithCoords},
		{index.NamedLocationsToArticles, p.cfg.Paths.NamedLocationsIndexFile, &set.NamedLocations},
		{index.NamedLocationsToArticlesWithCoordinates, p.cfg.Paths.NamedLocationsWithCoordsIndexFile, &set.NamedLocationsWithCoords},
	}

	for _, entry := range files {
		entry := entry
		path := p.cfg.Paths.IndexPath(entry.file)
		err := p.phase("inverted index: "+entry.typ.String(), path,
			func() error {
				ix, err := index.Load(entry.typ, path)
				if err != nil {
					return err
				}
				*entry.dst = ix
				return nil
			},
			func() error {
				ix, err := index.Build(entry.typ, articles, p.parseWorkers)
				if err != nil {
					return err
				}
				if err := ix.Save(path); err != nil {
					return err
				}
				*entry.dst = ix
				return nil
			})
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

// NearestNeighbors computes (or skips) the nearest-neighbor file.
func (p *Pipeline) NearestNeighbors(articles *registry.Articles, indices *IndexSet) error {
	path := p.cfg.Paths.NeighborsPath()
	return p.phase("nearest neighbors", path,
		func() error {
			// The file is the final artifact; nothing to load back.
			return nil
		},
		func() error {
			w := p.cfg.Neighbors.ParsedWeights()
			engine, err := neighbors.New(articles,
				indices.WordsWithCoords, indices.CategoriesWithCoords, indices.NamedLocationsWithCoords,
				neighbors.Params{
					Workers:                        p.cfg.Neighbors.Workers,
					TFIDFPruningThreshold:          p.cfg.Neighbors.TFIDFPruningThreshold,
					NamedLocationsPruningThreshold: p.cfg.Neighbors.NamedLocationsPruningThreshold,
					CategoriesPruningThreshold:     p.cfg.Neighbors.CategoriesPruningThreshold,
					MinSimilarity:                  p.cfg.Neighbors.MinSimilarity,
					MaxNeighbors:                   p.cfg.Neighbors.MaxNeighbors,
					Weights: similarity.Weights{
						TFIDF:          w.TFIDF,
						NamedLocations: w.NamedLocations,
						Categories:     w.Categories,
					},
					PrunerMemorySize:   p.cfg.Pruner.MemorySize,
					PrunerMaxIteration: p.cfg.Pruner.MaxIteration,
					TerminationWait:    time.Duration(p.cfg.Executor.TerminationWaitMillis) * time.Millisecond,
				}, p.metrics)
			if err != nil {
				return err
			}
			return engine.Run(path)
		})
}

func titlesInIDOrder(titleIDs *registry.StringIDs) []string {
	titles := make([]string, 0, titleIDs.Size())
	for id := int32(0); id <= titleIDs.MaxID(); id++ {
		if title, ok := titleIDs.String(id); ok {
			titles = append(titles, title)
		}
	}
	return titles
}
