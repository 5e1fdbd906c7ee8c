package wikitext

import (
	"regexp"
	"strings"

	"github.com/krauseamir/wikigir/internal/articletype"
	"github.com/krauseamir/wikigir/internal/geo"
)

// Distance phrasings: one pattern for the clean line, one for the raw
// {{convert|600|mi}} form. Either disqualifies the sentence.
var (
	distanceInSentenceRegexp = regexp.MustCompile(`\d{2,}\s+(nautical\s+)?(km|kilomet|mile)`)
	distanceConversionRegexp = regexp.MustCompile(`\{\{convert\|\d{2,}\|`)

	locatedAtEntityRegexp = regexp.MustCompile(`\[\[(.*?)(\||(]]))`)

	// The clean text has ==titles== removed, so a section break shows up
	// as a blank-ish line; the title pattern stays for robustness.
	sectionTitleRegexp = regexp.MustCompile(`(\n\s+\n)|(==.*?==)`)
)

// The phrase list is fixed; note the trailing spaces.
var locatedAtPhrases = []string{
	"located in ", "located at ", "located outside ", "located inside ", "located east ",
	"located west ", "located north ", "located south ", "located near ", "headquartered in ",
	"headquartered at ", "found in ",
}

// LocatedAtLimits bounds the explicit located-at search.
type LocatedAtLimits struct {
	MaxWordsTillPhrase      int
	MaxCharactersPostPhrase int
	MaxEntitiesDiameterKm   float64
}

// LocatedAtParser finds an explicit "located in [[X]]" style location in
// an article's opening sentence. Candidate word sequences are grown one
// word at a time and accepted only when they name a link entity of the
// raw text that has coordinates (directly or via redirect).
type LocatedAtParser struct {
	Coordinates  map[string]geo.Coordinates
	ArticleTypes map[string]articletype.Type
	Redirects    map[string]string
	Limits       LocatedAtLimits
}

type sequenceResult int

const (
	foundLocation sequenceResult = iota
	notLocation
	discardPrevious
)

// Parse returns the located-at target title, or "" when none qualifies.
// raw is the full page text; the clean text is derived here.
func (p *LocatedAtParser) Parse(title, raw string) string {
	cleanText := CleanText(title, raw)
	if cleanText == "" {
		return ""
	}

	best := ""
	bestIndex := -1
	for _, phrase := range locatedAtPhrases {
		index := strings.Index(cleanText, phrase)
		if index < 0 || (bestIndex >= 0 && index >= bestIndex) {
			continue
		}

		// The phrase must sit inside the first sentence and close to the
		// article's start.
		firstPeriod := strings.Index(cleanText, ".")
		wordsToPhrase := len(whitespaceRegexp.Split(cleanText[:index], -1))
		if firstPeriod <= index || wordsToPhrase >= p.Limits.MaxWordsTillPhrase {
			continue
		}

		if location := p.extractLocation(cleanText, raw, phrase, index); location != "" {
			best = location
			bestIndex = index
		}
	}
	return best
}

// extractLocation scans the bounded post-phrase window word by word. Each
// word starts a candidate sequence which grows by appending subsequent
// words; the first starting word that yields a location wins, and for that
// word the longest valid sequence wins.
func (p *LocatedAtParser) extractLocation(cleanText, fullText, phrase string, index int) string {
	endIndex := index + len(phrase) + p.Limits.MaxCharactersPostPhrase
	if endIndex > len(cleanText) {
		endIndex = len(cleanText)
	}
	line := cleanText[index+len(phrase) : endIndex]

	// Stop at a section break captured inside the window.
	if m := sectionTitleRegexp.FindStringIndex(line); m != nil {
		line = line[:m[0]]
	}

	relevantFullText := p.relevantFullText(fullText, phrase)

	// Several real locations in the window, spread too wide apart: the
	// sentence is not pinpointing a single place.
	if p.scatteredEntities(relevantFullText) {
		return ""
	}

	relevantFullText = strings.ToLower(relevantFullText)

	// "located 600 miles south of..." gives direction, not containment.
	if p.distanceInSentence(relevantFullText, line) {
		return ""
	}

	words := whitespaceRegexp.Split(line, -1)

	var bestFound string
	for i := 0; i < len(words); i++ {
		if strings.TrimSpace(words[i]) == "" {
			continue
		}

		// A location preceded by a bare "new" could miss by a lot:
		// detecting "York" where the text means "New York".
		if i > 0 && strings.ToLower(strings.TrimSpace(words[i-1])) == "new" {
			continue
		}

		bestFound = ""
		for j := i; j < len(words); j++ {
			candidate, result := p.trySequence(relevantFullText, words[i:j+1])
			switch result {
			case foundLocation:
				bestFound = candidate
			case discardPrevious:
				// A longer entity without coordinates was found; keeping
				// the shorter hit would turn "Paris, Texas" into "Paris".
				bestFound = ""
			}
		}

		if bestFound != "" {
			return bestFound
		}
	}

	return ""
}

func (p *LocatedAtParser) trySequence(relevantFullText string, words []string) (string, sequenceResult) {
	tested := strings.TrimSpace(strings.Join(words, "_"))

	// One trailing punctuation character is never part of a title.
	if len(tested) > 0 && strings.ContainsRune(",.;?!-%#", rune(tested[len(tested)-1])) {
		tested = tested[:len(tested)-1]
	}
	if tested == "" {
		return "", notLocation
	}

	// Titles start with a capital letter; running text may not.
	if tested[0] >= 'a' && tested[0] <= 'z' {
		tested = strings.ToUpper(tested[:1]) + tested[1:]
	}

	possibleRedirect, hasRedirect := p.Redirects[tested]
	if p.notEntity(relevantFullText, tested) &&
		(!hasRedirect || p.notEntity(relevantFullText, possibleRedirect)) {
		return "", notLocation
	}

	if _, ok := p.Coordinates[tested]; ok {
		return tested, foundLocation
	}
	if hasRedirect {
		redirectTitle := canonicalFreeText(possibleRedirect)
		if _, ok := p.Coordinates[redirectTitle]; ok {
			return redirectTitle, foundLocation
		}
	}

	// The sequence is an entity, but not one with coordinates.
	return "", discardPrevious
}

// notEntity checks whether the candidate fails to appear as a link target
// in the raw text. Only the "official" variant forms ([[x]] and [[x|...)
// are accepted, to keep false positives down.
func (p *LocatedAtParser) notEntity(relevantFullText, toCheck string) bool {
	if toCheck == "" {
		return true
	}
	s := strings.ToLower(strings.ReplaceAll(toCheck, "_", " "))
	return !strings.Contains(relevantFullText, "[["+s+"|") &&
		!strings.Contains(relevantFullText, "[["+s+"]]")
}

// relevantFullText returns the raw-text window following the phrase, twice
// as wide as the clean window to survive markup inflation.
func (p *LocatedAtParser) relevantFullText(fullText, phrase string) string {
	index := strings.Index(strings.ToLower(fullText), phrase)
	if index < 0 {
		return ""
	}
	end := index + p.Limits.MaxCharactersPostPhrase*2
	if end > len(fullText) {
		end = len(fullText)
	}
	return fullText[index:end]
}

func (p *LocatedAtParser) distanceInSentence(relevantFullText, line string) bool {
	if distanceInSentenceRegexp.MatchString(strings.ToLower(line)) {
		return true
	}
	return distanceConversionRegexp.MatchString(relevantFullText)
}

// scatteredEntities measures the diameter (largest pairwise haversine
// distance) over the coordinates of link entities in the window whose type
// priority is at least 3, i.e. more specific than states.
func (p *LocatedAtParser) scatteredEntities(text string) bool {
	var entities []string
	for _, m := range locatedAtEntityRegexp.FindAllStringSubmatch(text, -1) {
		entities = append(entities, canonicalFreeText(m[1]))
	}

	var resolved []string
	for _, entity := range entities {
		if redirect, ok := p.Redirects[entity]; ok {
			resolved = append(resolved, canonicalFreeText(redirect))
		}
	}
	entities = append(entities, resolved...)

	var coords []geo.Coordinates
	for _, entity := range entities {
		if t, ok := p.ArticleTypes[entity]; !ok || t.LocationPriority() < 3 {
			continue
		}
		if c, ok := p.Coordinates[entity]; ok {
			coords = append(coords, c)
		}
	}

	for i := 0; i < len(coords); i++ {
		for j := i + 1; j < len(coords); j++ {
			if geo.Dist(coords[i], coords[j]) > p.Limits.MaxEntitiesDiameterKm {
				return true
			}
		}
	}
	return false
}
