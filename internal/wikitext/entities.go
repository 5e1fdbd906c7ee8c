package wikitext

import (
	"regexp"
	"strings"
)

var wikiEntityRegexp = regexp.MustCompile(`\[\[ *(.*?) *]]`)

// Entity is one link target found in a page: the word index of its first
// appearance in the clean text (-1 when it never appears there) and the
// set of lowercased naming variants Wikipedia editors gave it.
type Entity struct {
	FirstWordIndex int
	Variants       map[string]struct{}
}

// ContainedEntities is the parse result for one page: the entity map keyed
// by the official (first-variant) name, plus the lowercased clean text the
// word indices were computed against. The same text is reused downstream
// to count variant occurrences.
type ContainedEntities struct {
	Entities  map[string]*Entity
	CleanText string
}

// EntityLimits bounds the title-removal step preceding word-index
// computation.
type EntityLimits struct {
	MaxIndexForTitleRemoval  int
	MaxTitleLengthForRemoval int
}

// ParseContainedEntities finds every [[X]] / [[X|a|b]] reference in a
// page. Entities with ":" in the name (files, categories) are dropped, as
// is a self-reference to the page itself. The official variant is the
// substring up to the first "|"; all pipe-delimited alternates are stored
// lowercased.
func ParseContainedEntities(title, raw string, limits EntityLimits) ContainedEntities {
	text := strings.ToLower(CleanText(title, raw))
	text = removeLeadingTitle(text, limits)

	result := ContainedEntities{
		Entities:  make(map[string]*Entity),
		CleanText: text,
	}

	lowerTitle := strings.ToLower(title)

	for _, m := range wikiEntityRegexp.FindAllStringSubmatch(raw, -1) {
		entity := m[1]

		// Stuff like "Category:..." and "File:...".
		if strings.Contains(entity, ":") {
			continue
		}

		variants := strings.Split(entity, "|")
		official := variants[0]
		if official == "" {
			continue
		}

		// Rare, but the link can point at the page itself.
		if strings.ToLower(official) == lowerTitle {
			continue
		}

		e, seen := result.Entities[official]
		if !seen {
			e = &Entity{
				FirstWordIndex: firstWordIndex(text, strings.ToLower(official)),
				Variants:       make(map[string]struct{}),
			}
			result.Entities[official] = e
		}
		for _, v := range variants {
			e.Variants[strings.ToLower(v)] = struct{}{}
		}
	}

	return result
}

// removeLeadingTitle cuts the '''title''' prefix off the clean text, so
// word indices start at the article's real first word.
func removeLeadingTitle(text string, limits EntityLimits) string {
	index := strings.Index(text, "'''")
	if index < 0 || index > limits.MaxIndexForTitleRemoval {
		return text
	}
	text = text[index+len("'''"):]

	index = strings.Index(text, "'''")
	if index < 0 || index > limits.MaxTitleLengthForRemoval {
		return text
	}
	return text[index+len("'''"):]
}

// firstWordIndex returns the number of words before the first occurrence
// of the official variant in the clean text, or -1 if it never appears.
// Occurrences directly preceded by " new " do not count: "York" inside
// "New York" names a different place entirely.
func firstWordIndex(text, officialVariant string) int {
	index := strings.Index(text, officialVariant)
	for index >= 0 {
		if index >= len(" new ") && text[index-len(" new "):index] == " new " {
			next := strings.Index(text[index+len(officialVariant):], officialVariant)
			if next < 0 {
				return -1
			}
			index += len(officialVariant) + next
			continue
		}
		return len(strings.Fields(text[:index]))
	}
	return -1
}

// Word-boundary delimiter sets for variant counting. A variant occurrence
// only counts when fenced by these on both sides: "abc" must not be found
// inside "aabcd".
var (
	variantPrefixDelims = map[byte]struct{}{
		' ': {}, '\n': {}, '[': {}, '{': {}, '(': {}, '-': {}, '_': {}, '"': {}, '\'': {}, '|': {},
	}
	variantSuffixDelims = map[byte]struct{}{
		',': {}, '.': {}, ' ': {}, '?': {}, '!': {}, ']': {}, '}': {}, ')': {},
		'-': {}, '_': {}, '"': {}, '\'': {}, '|': {}, '\n': {},
	}
)

// CountVariantOccurrences counts delimiter-bounded, non-overlapping
// occurrences of each search variant in the clean text. The scan advances
// by the variant's length after a match.
func CountVariantOccurrences(variants []string, text string) int {
	total := 0
	for _, term := range variants {
		if len(term) < 1 {
			continue
		}
		from := 0
		for {
			i := strings.Index(text[from:], term)
			if i < 0 {
				break
			}
			pos := from + i
			if boundedOccurrence(text, pos, len(term)) {
				total++
				from = pos + len(term)
			} else {
				from = pos + 1
			}
		}
	}
	return total
}

func boundedOccurrence(text string, pos, length int) bool {
	if pos == 0 || pos+length >= len(text) {
		return false
	}
	if _, ok := variantPrefixDelims[text[pos-1]]; !ok {
		return false
	}
	_, ok := variantSuffixDelims[text[pos+length]]
	return ok
}

// SearchableVariants drops variants that are substrings of another variant
// of the same entity; counting the longer form already covers them.
func SearchableVariants(variants map[string]struct{}) []string {
	var toSearch []string
	for v1 := range variants {
		redundant := false
		for v2 := range variants {
			if v1 == v2 {
				continue
			}
			if strings.Contains(v2, v1) {
				redundant = true
				break
			}
		}
		if !redundant {
			toSearch = append(toSearch, v1)
		}
	}
	return toSearch
}
