// Package articletype assigns each article a heuristic type label
// (settlement, country, ship, person, ...) with a location priority:
// lower priority means broader geographic extent, -1 means the article is
// not a location at all. The variant word lists are the evidence the
// heuristics look for in categories, infoboxes, and first sentences; they
// were tuned on real articles and must stay as they are.
package articletype

// Type is the closed article-type enumeration.
type Type int

const (
	None Type = iota
	Ship
	Person
	Land
	Sea
	Country
	State
	Autonomous
	Region
	Nature
	Settlement
	Spot
)

var names = map[Type]string{
	None: "NONE", Ship: "SHIP", Person: "PERSON", Land: "LAND", Sea: "SEA",
	Country: "COUNTRY", State: "STATE", Autonomous: "AUTONOMOUS",
	Region: "REGION", Nature: "NATURE", Settlement: "SETTLEMENT", Spot: "SPOT",
}

var priorities = map[Type]int{
	None: -1, Ship: -1, Person: -1, Land: 0, Sea: 0, Country: 1, State: 2,
	Autonomous: 3, Region: 4, Nature: 4, Settlement: 5, Spot: 6,
}

var variants = map[Type][]string{
	None:   {},
	Person: {},
	// Ships are recognised separately since they are very hard to locate.
	Ship: {"ship", "ships", "warship", "warships", "frigate", "frigates", "submarine",
		"submarines", "aircraft carrier", "aircraft carriers", "freighter", "freighter",
		"caravel", "caravels", "galleon", "galleons", "galley", "galleys", "ironclad",
		"ironclads", "battleship", "battleships", "cruiser", "cruisers", "destroyer",
		"destroyers", "steamship", "steamships", "fleet", "fleets"},
	Land:    {"island", "islands", "peninsula", "archipelago", "massif"},
	Sea:     {"ocean", "oceans", "sea", "seas"},
	Country: {"country", "countries", "kingdom", "empire", "monarchy", "republic"},
	State:   {"state", "states"},
	Autonomous: {"autonomy", "autonomies", "microstate", "microstates", "canton", "cantons"},
	Region: {"region", "regions", "province", "provinces", "area", "areas", "county",
		"counties", "territory", "territories", "sites", "sites"},
	Nature: {"lake", "lakes", "swamp", "swamps", "ridge", "ridges", "mountain", "mountains",
		"river", "rivers", "stream", "streams", "affluent", "affluents", "creek", "creeks",
		"hill", "hills", "valley", "valleys", "coral", "corals", "reef", "glen", "glens"},
	Settlement: {"city", "cities", "capital", "capitals", "town", "towns", "village", "villages",
		"commune", "communes", "port", "ports", "settlement", "settlements", "municipal",
		"municipality", "colony", "colonies", "hamlet", "hamlets", "borough", "boroughs",
		"suburb", "suburbs", "metropolis", "neighborhood", "neighborhoods"},
	// No plural variants here: precision over recall for landmark words.
	Spot: {"house", "museum", "stadium", "statue", "monument", "sculpture", "building", "tower",
		"castle", "farm", "square", "fort", "citadel", "hotel", "motel", "memorial",
		"landmark", "garden", "factory", "university", "college", "theater", "theatre",
		"apartment", "palace", "temple", "cathedral", "mosque", "synagogue", "bridge",
		"fountain", "tomb", "church", "chapel", "campus", "plantation", "hospital", "estate",
		"shipyard", "station", "airport", "cemetery", "graveyard", "residence", "mall",
		"observatory", "street", "avenue", "zoo"},
}

// All lists every type, in declaration order.
func All() []Type {
	return []Type{None, Ship, Person, Land, Sea, Country, State, Autonomous,
		Region, Nature, Settlement, Spot}
}

func (t Type) String() string { return names[t] }

// LocationPriority places the type in the geographic hierarchy; -1 means
// not a location article.
func (t Type) LocationPriority() int { return priorities[t] }

// Variants returns the singular and plural evidence words for the type.
func (t Type) Variants() []string { return variants[t] }

// Parse resolves a serialised type name. Unknown names map to None.
func Parse(name string) Type {
	for t, n := range names {
		if n == name {
			return t
		}
	}
	return None
}
