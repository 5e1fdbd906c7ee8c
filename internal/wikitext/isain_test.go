package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krauseamir/wikigir/internal/geo"
)

// wrapArticle keeps the closing </text> tag on its own line so sentence
// periods stay word-final, as they are in the real dump.
func wrapArticle(body string) string {
	return "<title>Test</title>\n<text xml:space=\"preserve\">" + body + "\nA second sentence follows.\n</text>"
}

func newIsAInParser(coords map[string]geo.Coordinates, redirects map[string]string) *IsAInParser {
	return &IsAInParser{
		Coordinates: coords,
		Redirects:   redirects,
		Limits:      IsAInLimits{MaxWordsTillVerb: 20, SegmentCharactersSize: 1500},
	}
}

func TestIsAInBasic(t *testing.T) {
	coords := map[string]geo.Coordinates{
		"Foo":       {Lat: 1, Lon: 1},
		"Neverland": {Lat: 2, Lon: 2},
	}
	p := newIsAInParser(coords, nil)

	raw := wrapArticle("'''Foo''' is a small village in [[Neverland]], near the coast.")
	locations := p.Parse("Foo", raw)
	assert.Equal(t, []string{"Neverland"}, locations)
}

func TestIsAInRequiresArticleCoordinates(t *testing.T) {
	coords := map[string]geo.Coordinates{"Neverland": {Lat: 2, Lon: 2}}
	p := newIsAInParser(coords, nil)

	raw := wrapArticle("'''Foo''' is a small village in [[Neverland]].")
	assert.Empty(t, p.Parse("Foo", raw))
}

func TestIsAInRejectsDistancePhrases(t *testing.T) {
	coords := map[string]geo.Coordinates{
		"Foo":       {Lat: 1, Lon: 1},
		"Neverland": {Lat: 2, Lon: 2},
	}
	p := newIsAInParser(coords, nil)

	raw := wrapArticle("'''Foo''' is a village 120 km from [[Neverland]] in [[Neverland]].")
	assert.Empty(t, p.Parse("Foo", raw))
}

func TestIsAInResolvesRedirects(t *testing.T) {
	coords := map[string]geo.Coordinates{
		"Foo":            {Lat: 1, Lon: 1},
		"Neverland_City": {Lat: 2, Lon: 2},
	}
	redirects := map[string]string{"Neverland": "Neverland_City"}
	p := newIsAInParser(coords, redirects)

	raw := wrapArticle("'''Foo''' is a town in [[Neverland]].")
	assert.Equal(t, []string{"Neverland_City"}, p.Parse("Foo", raw))
}

func TestIsAInRequiresVerbNearStart(t *testing.T) {
	coords := map[string]geo.Coordinates{
		"Foo":       {Lat: 1, Lon: 1},
		"Neverland": {Lat: 2, Lon: 2},
	}
	p := &IsAInParser{
		Coordinates: coords,
		Limits:      IsAInLimits{MaxWordsTillVerb: 3, SegmentCharactersSize: 1500},
	}

	raw := wrapArticle("'''Foo''' one two three four five is a town in [[Neverland]].")
	assert.Empty(t, p.Parse("Foo", raw))
}

func TestIsAInTargetsWithoutCoordinatesDropped(t *testing.T) {
	coords := map[string]geo.Coordinates{"Foo": {Lat: 1, Lon: 1}}
	p := newIsAInParser(coords, nil)

	raw := wrapArticle("'''Foo''' is a town in [[Nowhere]].")
	assert.Empty(t, p.Parse("Foo", raw))
}
