package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krauseamir/wikigir/internal/articletype"
	"github.com/krauseamir/wikigir/internal/geo"
)

func newLocatedAtParser(coords map[string]geo.Coordinates, types map[string]articletype.Type,
	redirects map[string]string) *LocatedAtParser {
	return &LocatedAtParser{
		Coordinates:  coords,
		ArticleTypes: types,
		Redirects:    redirects,
		Limits: LocatedAtLimits{
			MaxWordsTillPhrase:      50,
			MaxCharactersPostPhrase: 150,
			MaxEntitiesDiameterKm:   400,
		},
	}
}

func TestLocatedAtBasic(t *testing.T) {
	coords := map[string]geo.Coordinates{"Bavaria": {Lat: 48.7, Lon: 11.4}}
	p := newLocatedAtParser(coords, nil, nil)

	raw := wrapArticle("'''Test''' is a castle located in [[Bavaria]] among hills.")
	assert.Equal(t, "Bavaria", p.Parse("Test", raw))
}

func TestLocatedAtRejectedByDistance(t *testing.T) {
	coords := map[string]geo.Coordinates{"X": {Lat: 10, Lon: 10}}
	p := newLocatedAtParser(coords, nil, nil)

	// No recognised phrase at all.
	raw := wrapArticle("'''Test''' is located 600 miles south of [[X]] somewhere.")
	assert.Equal(t, "", p.Parse("Test", raw))

	// Recognised phrase, but the sentence measures a distance.
	raw = wrapArticle("'''Test''' is located near [[X]], 600 miles south of it.")
	assert.Equal(t, "", p.Parse("Test", raw))
}

func TestLocatedAtRejectedByConvertTemplate(t *testing.T) {
	coords := map[string]geo.Coordinates{"Bavaria": {Lat: 48.7, Lon: 11.4}}
	p := newLocatedAtParser(coords, nil, nil)

	raw := wrapArticle("'''Test''' is located in [[Bavaria]] {{convert|600|mi}} away.")
	assert.Equal(t, "", p.Parse("Test", raw))
}

func TestLocatedAtMultiWordSequence(t *testing.T) {
	coords := map[string]geo.Coordinates{"Paris,_Texas": {Lat: 33.6, Lon: -95.5}}
	p := newLocatedAtParser(coords, nil, nil)

	raw := wrapArticle("'''Test''' is a museum located in [[Paris, Texas]] downtown.")
	assert.Equal(t, "Paris,_Texas", p.Parse("Test", raw))
}

func TestLocatedAtLongerEntityWithoutCoordinatesDiscardsShorter(t *testing.T) {
	// "Paris, Texas" is linked but has no coordinates; plain "Paris" has.
	// Emitting "Paris" would place the article on the wrong continent. The
	// [[Paris]] link sits in a citation: it makes "Paris" a linked entity in
	// the raw window but is dropped from the clean text, so no later word
	// starts a "Paris" sequence of its own.
	coords := map[string]geo.Coordinates{"Paris": {Lat: 48.85, Lon: 2.35}}
	p := newLocatedAtParser(coords, nil, nil)

	raw := wrapArticle("'''Test''' is a museum located in [[Paris, Texas]] downtown.{{cite news|publisher=[[Paris]]}}")
	assert.Equal(t, "", p.Parse("Test", raw))
}

func TestLocatedAtNewPrefixSkipsWord(t *testing.T) {
	coords := map[string]geo.Coordinates{"York": {Lat: 53.96, Lon: -1.08}}
	p := newLocatedAtParser(coords, nil, nil)

	raw := wrapArticle("'''Test''' is a tower located in new [[York]] state somewhere.")
	assert.Equal(t, "", p.Parse("Test", raw))
}

func TestLocatedAtScatteredEntitiesRejected(t *testing.T) {
	coords := map[string]geo.Coordinates{
		"Sydney": {Lat: -33.87, Lon: 151.21},
		"Lima":   {Lat: -12.05, Lon: -77.04},
	}
	types := map[string]articletype.Type{
		"Sydney": articletype.Settlement,
		"Lima":   articletype.Settlement,
	}
	p := newLocatedAtParser(coords, types, nil)

	raw := wrapArticle("'''Test''' is located in [[Sydney]] and [[Lima]] somehow.")
	assert.Equal(t, "", p.Parse("Test", raw))
}

func TestLocatedAtRedirectResolution(t *testing.T) {
	coords := map[string]geo.Coordinates{"Neverland_City": {Lat: 1, Lon: 2}}
	redirects := map[string]string{"Neverland": "Neverland_City"}
	p := newLocatedAtParser(coords, nil, redirects)

	raw := wrapArticle("'''Test''' is a castle located in [[Neverland]] forever.")
	assert.Equal(t, "Neverland_City", p.Parse("Test", raw))
}

func TestLocatedAtPhraseMustBeInFirstSentence(t *testing.T) {
	coords := map[string]geo.Coordinates{"Bavaria": {Lat: 48.7, Lon: 11.4}}
	p := newLocatedAtParser(coords, nil, nil)

	raw := wrapArticle("'''Test''' is a person. The castle is located in [[Bavaria]] there.")
	assert.Equal(t, "", p.Parse("Test", raw))
}
