package articletype

import (
	"regexp"
	"sort"
	"strings"
)

var (
	birthsCategoryRegexp = regexp.MustCompile(`\d+s?_births`)
	deathsCategoryRegexp = regexp.MustCompile(`\d+s?_deaths`)
	peopleCategoryRegexp = regexp.MustCompile(`People_((from)|(in)|(of))`)

	settlementTypeRegexp = regexp.MustCompile(`\| *settlement_type *=(.*?)(\r\n|\r|\n)`)
)

// Detect runs the full heuristic cascade for one article: categories
// first, then the infobox settlement hint, then the first-sentence text
// heuristic, and finally the "... (something-ship)" title fallback.
// words must be the tokenized clean text WITH stopwords retained.
func Detect(title, raw string, categories []string, words []string) Type {
	if t, ok := FromCategories(categories); ok {
		return t
	}
	if t, ok := FromInfobox(raw); ok {
		return t
	}
	if t, ok := FromText(words, categories); ok {
		return t
	}
	if t, ok := fromTitleSuffix(title); ok {
		return t
	}
	return None
}

// FromCategories matches category strings against the plural variant
// lists ("Cities in France", "1919 ships"), then falls back to person
// markers (births/deaths years, "People from ...", "Living people",
// "... alumni").
func FromCategories(categories []string) (Type, bool) {
	for _, at := range All() {
		for _, variant := range at.Variants() {
			// Only plural variants appear in category conventions.
			if !strings.HasSuffix(variant, "s") {
				continue
			}
			for _, cat := range categories {
				cat = trimCategoryYears(cat)
				cat = strings.TrimSpace(strings.ToLower(cat))
				if cat == variant {
					return at, true
				}
				if strings.HasPrefix(cat, variant) &&
					(strings.Contains(cat, "_in_") || strings.Contains(cat, "_of_")) {
					return at, true
				}
			}
		}
	}

	for _, cat := range categories {
		if birthsCategoryRegexp.MatchString(cat) || deathsCategoryRegexp.MatchString(cat) ||
			peopleCategoryRegexp.MatchString(cat) || strings.Contains(cat, "Living_people") ||
			strings.HasSuffix(cat, "_alumni") {
			return Person, true
		}
	}

	return None, false
}

// trimCategoryYears strips leading year markings ("1919_ships",
// "1939-1945_..."), common in categories.
func trimCategoryYears(cat string) string {
	for len(cat) > 0 {
		c := cat[0]
		if (c >= '0' && c <= '9') || c == '-' || c == '_' {
			cat = cat[1:]
			continue
		}
		break
	}
	return cat
}

// FromInfobox looks for the "| settlement_type = [[...]]" infobox line.
// When present, each pipe-delimited part is matched against the variant
// lists and the highest-priority (most specific) match wins.
func FromInfobox(raw string) (Type, bool) {
	m := settlementTypeRegexp.FindStringSubmatch(raw)
	if m == nil {
		return None, false
	}

	data := strings.TrimSpace(m[1])
	data = strings.TrimPrefix(data, "[[")
	data = strings.TrimSuffix(data, "]]")

	var matched []Type
	for _, part := range strings.Split(data, "|") {
		part = strings.TrimSpace(strings.ToLower(part))
		part = strings.TrimPrefix(part, "list of ")

		// "state capital" and friends.
		if strings.Contains(part, " capital") {
			matched = append(matched, Settlement)
			continue
		}

		for _, at := range All() {
			for _, variant := range at.Variants() {
				if strings.HasPrefix(part, variant) {
					matched = append(matched, at)
					break
				}
			}
		}
	}

	if len(matched) == 0 {
		return None, false
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LocationPriority() > matched[j].LocationPriority()
	})
	return matched[0], true
}

// The maximal number of words (from the beginning) to search for an
// "is a X in Y" structure, and the window after the verb.
const (
	maxInitialWords = 50
	verbProximity   = 5
)

var (
	textVerbs  = []string{"is", "are", "was", "were"}
	textStopAt = []string{"in", "of", "that", "at", "on"}
)

// FromText runs the first-sentence heuristic over the tokenized clean
// text (stopwords retained): find the first is/are/was/were, then look for
// a variant match within the next few words, preferring a directly
// following higher-priority variant ("island country", "state capital").
// Country and state matches additionally require category corroboration.
func FromText(words []string, categories []string) (Type, bool) {
	if len(words) > maxInitialWords {
		words = words[:maxInitialWords]
	}

	verbIndex := -1
	for i, w := range words {
		if verbIndex >= 0 {
			break
		}
		for _, verb := range textVerbs {
			if w == verb {
				verbIndex = i
				break
			}
		}
	}
	if verbIndex < 0 {
		return None, false
	}

	end := verbIndex + verbProximity
	if end > len(words) {
		end = len(words)
	}
	for i := verbIndex; i < end; i++ {
		for _, sa := range textStopAt {
			if words[i] == sa {
				return None, false
			}
		}
		if strings.HasSuffix(strings.TrimSpace(words[i]), ".") {
			return None, false
		}

		locType, ok := variantType(words[i])
		if !ok {
			continue
		}

		// "united states" inside a sentence would wrongly mark anything
		// as a state.
		if i > 0 && words[i] == "states" && words[i-1] == "united" {
			continue
		}

		if i < len(words)-1 {
			if next, ok := variantType(words[i+1]); ok &&
				next.LocationPriority() > locType.LocationPriority() &&
				corroboratedByCategories(next, categories) {
				return next, true
			}
		}

		if corroboratedByCategories(locType, categories) {
			return locType, true
		}
	}

	return None, false
}

func variantType(word string) (Type, bool) {
	for _, at := range All() {
		for _, variant := range at.Variants() {
			if word == variant {
				return at, true
			}
		}
	}
	return None, false
}

// corroboratedByCategories guards the ambiguous country/state words
// ("country club", "state house") behind a category check.
func corroboratedByCategories(found Type, categories []string) bool {
	var prefix string
	switch found {
	case Country:
		prefix = "countries"
	case State:
		prefix = "states"
	default:
		return true
	}
	for _, cat := range categories {
		if strings.HasPrefix(cat, prefix) &&
			(strings.Contains(cat, "_in_") || strings.Contains(cat, "_of_")) {
			return true
		}
	}
	return false
}

// fromTitleSuffix marks "...ship)" titles as ships, excluding the handful
// of non-vessel "-ship" words.
func fromTitleSuffix(title string) (Type, bool) {
	lower := strings.ToLower(title)
	if !strings.HasSuffix(lower, "ship)") {
		return None, false
	}
	for _, excluded := range []string{"scholarship)", "fellowship)", "ownership)", "membership)"} {
		if strings.HasSuffix(lower, excluded) {
			return None, false
		}
	}
	return Ship, true
}
