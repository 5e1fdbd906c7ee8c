package articletype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationPriorities(t *testing.T) {
	assert.Equal(t, -1, None.LocationPriority())
	assert.Equal(t, -1, Ship.LocationPriority())
	assert.Equal(t, -1, Person.LocationPriority())
	assert.Equal(t, 0, Land.LocationPriority())
	assert.Equal(t, 1, Country.LocationPriority())
	assert.Equal(t, 2, State.LocationPriority())
	assert.Equal(t, 3, Autonomous.LocationPriority())
	assert.Equal(t, 4, Region.LocationPriority())
	assert.Equal(t, 4, Nature.LocationPriority())
	assert.Equal(t, 5, Settlement.LocationPriority())
	assert.Equal(t, 6, Spot.LocationPriority())
}

func TestParseRoundTrip(t *testing.T) {
	for _, at := range All() {
		assert.Equal(t, at, Parse(at.String()))
	}
	assert.Equal(t, None, Parse("BOGUS"))
}

func TestFromCategoriesPluralConventions(t *testing.T) {
	tests := []struct {
		cats []string
		want Type
	}{
		{[]string{"Cities_in_France"}, Settlement},
		{[]string{"Rivers_of_Europe"}, Nature},
		{[]string{"Countries_in_Asia"}, Country},
		{[]string{"1919_ships"}, Ship},
		{[]string{"Islands_of_Greece"}, Land},
	}
	for _, tt := range tests {
		got, ok := FromCategories(tt.cats)
		assert.True(t, ok, "cats %v", tt.cats)
		assert.Equal(t, tt.want, got, "cats %v", tt.cats)
	}
}

func TestFromCategoriesBareVariant(t *testing.T) {
	got, ok := FromCategories([]string{"Villages"})
	assert.True(t, ok)
	assert.Equal(t, Settlement, got)
}

func TestFromCategoriesPerson(t *testing.T) {
	for _, cats := range [][]string{
		{"1905_births"},
		{"1990s_deaths"},
		{"People_from_Boston"},
		{"Living_people"},
		{"Harvard_University_alumni"},
	} {
		got, ok := FromCategories(cats)
		assert.True(t, ok, "cats %v", cats)
		assert.Equal(t, Person, got, "cats %v", cats)
	}
}

func TestFromCategoriesNoMatch(t *testing.T) {
	_, ok := FromCategories([]string{"Things_named_after_physicists"})
	assert.False(t, ok)
}

func TestFromInfobox(t *testing.T) {
	raw := "blah\n| settlement_type = [[City]]\nmore"
	got, ok := FromInfobox(raw)
	assert.True(t, ok)
	assert.Equal(t, Settlement, got)
}

func TestFromInfoboxHighestPriorityWins(t *testing.T) {
	raw := "| settlement_type = [[Province|village]]\n"
	got, ok := FromInfobox(raw)
	assert.True(t, ok)
	// "province" matches Region(4), "village" matches Settlement(5): the
	// more specific type wins.
	assert.Equal(t, Settlement, got)
}

func TestFromInfoboxAbsent(t *testing.T) {
	_, ok := FromInfobox("no infobox here")
	assert.False(t, ok)
}

func TestFromTextBasic(t *testing.T) {
	words := []string{"foo", "is", "a", "village", "in", "france"}
	got, ok := FromText(words, nil)
	assert.True(t, ok)
	assert.Equal(t, Settlement, got)
}

func TestFromTextStopWordEndsSearch(t *testing.T) {
	// "in" arrives before any variant word within the window.
	words := []string{"foo", "is", "found", "in", "the", "village"}
	_, ok := FromText(words, nil)
	assert.False(t, ok)
}

func TestFromTextCountryNeedsCategoryCorroboration(t *testing.T) {
	words := []string{"foo", "is", "a", "country", "club"}
	_, ok := FromText(words, nil)
	assert.False(t, ok)

	got, ok := FromText(words, []string{"countries_in_Europe"})
	assert.True(t, ok)
	assert.Equal(t, Country, got)
}

func TestFromTextPrefersFollowingHigherPriority(t *testing.T) {
	// "island country" should stay Country-ish only when corroborated;
	// "state capital" prefers the settlement.
	words := []string{"foo", "is", "a", "state", "capital"}
	got, ok := FromText(words, []string{"states_of_the_USA"})
	assert.True(t, ok)
	assert.Equal(t, Settlement, got)
}

func TestFromTextUnitedStatesGuard(t *testing.T) {
	words := []string{"foo", "is", "band", "united", "states"}
	_, ok := FromText(words, []string{"states_of_the_USA"})
	assert.False(t, ok)
}

func TestDetectShipTitleFallback(t *testing.T) {
	got := Detect("HMS_Foo_(battleship)", "", nil, nil)
	assert.Equal(t, Ship, got)

	got = Detect("Rhodes_(scholarship)", "", nil, nil)
	assert.Equal(t, None, got)
}
