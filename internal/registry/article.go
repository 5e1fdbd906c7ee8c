package registry

import (
	"log/slog"

	"github.com/krauseamir/wikigir/internal/articletype"
	"github.com/krauseamir/wikigir/internal/geo"
	"github.com/krauseamir/wikigir/internal/vectors"
)

// Article is the joined per-article record. It is created exactly once per
// title after all field parsers have produced their outputs, and is
// immutable afterwards.
type Article struct {
	Title       string
	Type        articletype.Type
	Coordinates *geo.Coordinates

	// CategoryIDs is sorted ascending with duplicates removed.
	CategoryIDs []int32

	// WordsVector is the tf-idf top-k vector; NamedLocationsVector scores
	// the coordinated link entities. Both are id-sorted and L2-normalised.
	WordsVector          vectors.ScoresVector
	NamedLocationsVector vectors.ScoresVector

	// LocatedAt is the explicit "located in ..." target, when detected.
	LocatedAt string

	// IsAIn holds the "is a ___ in ___" targets, possibly empty.
	IsAIn []string
}

// HasCoordinates reports whether the article was title-tagged with Earth
// coordinates.
func (a *Article) HasCoordinates() bool { return a.Coordinates != nil }

// Articles is the finalised article registry: every record plus the title
// and category id mappings. It is read-only after Build.
type Articles struct {
	ByTitle   map[string]*Article
	TitleIDs  *StringIDs
	CategoryIDs *StringIDs
}

// BuildInputs carries the per-field maps produced by the parser phases.
type BuildInputs struct {
	TitleIDs             *StringIDs
	CategoryIDs          *StringIDs
	Coordinates          map[string]geo.Coordinates
	Categories           map[string][]int32
	Types                map[string]articletype.Type
	WordsVectors         map[string]vectors.ScoresVector
	NamedLocationVectors map[string]vectors.ScoresVector
	LocatedAt            map[string]string
	IsAIn                map[string][]string
}

// Build joins the per-field outputs into one record per registered title.
// A title present in a field map but absent from the title registry is an
// integrity violation: the item is skipped and logged, never propagated.
func Build(in BuildInputs) *Articles {
	log := slog.Default().With("component", "article-registry")

	result := &Articles{
		ByTitle:     make(map[string]*Article, in.TitleIDs.Size()),
		TitleIDs:    in.TitleIDs,
		CategoryIDs: in.CategoryIDs,
	}

	skipped := 0
	for title := range in.WordsVectors {
		if _, ok := in.TitleIDs.ID(title); !ok {
			skipped++
			continue
		}

		a := &Article{
			Title:       title,
			Type:        articletype.None,
			CategoryIDs: in.Categories[title],
			WordsVector: in.WordsVectors[title],
			LocatedAt:   in.LocatedAt[title],
			IsAIn:       in.IsAIn[title],
		}
		if c, ok := in.Coordinates[title]; ok {
			coords := c
			a.Coordinates = &coords
		}
		if t, ok := in.Types[title]; ok {
			a.Type = t
		}
		if v, ok := in.NamedLocationVectors[title]; ok {
			a.NamedLocationsVector = v
		}
		result.ByTitle[title] = a
	}

	if skipped > 0 {
		log.Warn("skipped articles missing from the title registry", "count", skipped)
	}
	log.Info("article registry built", "articles", len(result.ByTitle))
	return result
}

// WithCoordinates returns the subset of records that have coordinates.
func (as *Articles) WithCoordinates() map[string]*Article {
	subset := make(map[string]*Article)
	for title, a := range as.ByTitle {
		if a.HasCoordinates() {
			subset[title] = a
		}
	}
	return subset
}
