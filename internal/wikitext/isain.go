package wikitext

import (
	"regexp"
	"strings"

	"github.com/krauseamir/wikigir/internal/geo"
)

var (
	// A wikipedia entity reference inside the collected sentence portion.
	isAInEntityRegexp = regexp.MustCompile(`\[\[(.*?)(\||(]]))`)

	// "100 km east of..." phrasings disqualify the page; the structure is
	// no longer direct containment evidence.
	isAInDistanceRegexp = regexp.MustCompile(`\d{2,}\s*(km|kilometer|mile|mi)`)

	convertMarkerRegexp   = regexp.MustCompile(`\{\{[Cc]onvert.*?\d{2,}.*?((km)|(mi)).*?}}`)
	curlyPairRegexp       = regexp.MustCompile(`\{\s*\{.*?}\s*}`)
	angleEntityRegexp     = regexp.MustCompile(`(&lt;)|(&gt;)`)
	refNameRegexp         = regexp.MustCompile(`ref name.*?=.*?/ref`)
	htmlEscapeRegexp      = regexp.MustCompile(`&.{1,4};`)
	strayPunctuationRegexp = regexp.MustCompile(`\s+[,;|?]+\s+`)
	emptyParensRegexp     = regexp.MustCompile(`\(\s*\)`)
)

const distanceDeleteMarker = "---LOCATION DELETE---"

var (
	isAInVerbs        = []string{"is", "was", "are", "were"}
	isAInPrepositions = []string{"in", "on", "at"}
)

// IsAInLimits bounds the "is a ___ in ___" structure search.
type IsAInLimits struct {
	MaxWordsTillVerb      int
	SegmentCharactersSize int
}

// IsAInParser extracts containing locations from first sentences of the
// form "X is a <something> in [[Y]]". Only articles that themselves have
// coordinates are considered, and only link targets that resolve (directly
// or via redirect) to coordinated articles are emitted.
type IsAInParser struct {
	Coordinates map[string]geo.Coordinates
	Redirects   map[string]string
	Limits      IsAInLimits
}

// Parse returns the resolved containing-location titles, in order of
// appearance, de-duplicated. The list is empty when the structure is
// absent or disqualified.
func (p *IsAInParser) Parse(title, raw string) []string {
	if _, ok := p.Coordinates[title]; !ok {
		return nil
	}

	titlePattern, err := regexp.Compile(`'''\s*?` + regexp.QuoteMeta(strings.ReplaceAll(title, "_", " ")) + `\s*?'''`)
	if err != nil {
		return nil
	}
	loc := titlePattern.FindStringIndex(raw)
	if loc == nil {
		return nil
	}

	text := p.relevantTextPortion(raw, loc[1])

	if isAInDistanceRegexp.MatchString(text) || strings.Contains(text, distanceDeleteMarker) {
		return nil
	}

	tokens := splitWhitespaceKeepEmpty(text)

	verbIndex := p.firstVerbIndex(tokens)
	if verbIndex < 0 {
		return nil
	}

	prepositionIndex := firstPrepositionIndex(tokens, verbIndex)
	if prepositionIndex < 0 {
		return nil
	}

	foundPeriod := false
	var portion []string
	for i := prepositionIndex + 1; i < len(tokens); i++ {
		portion = append(portion, tokens[i])
		if endsSentence(tokens[i]) {
			foundPeriod = true
			break
		}
	}
	if !foundPeriod {
		return nil
	}

	var locations []string
	seen := make(map[string]struct{})
	for _, m := range isAInEntityRegexp.FindAllStringSubmatch(strings.Join(portion, " "), -1) {
		wikiTitle := canonicalFreeText(m[1])
		if redirect, ok := p.Redirects[wikiTitle]; ok {
			wikiTitle = redirect
		}
		if _, ok := p.Coordinates[wikiTitle]; !ok {
			continue
		}
		if _, dup := seen[wikiTitle]; dup {
			continue
		}
		seen[wikiTitle] = struct{}{}
		locations = append(locations, wikiTitle)
	}
	return locations
}

// relevantTextPortion trims the raw text right after the title anchor,
// scrubs markup that would confuse tokenisation, and bounds the segment.
func (p *IsAInParser) relevantTextPortion(raw string, titleEnd int) string {
	text := raw[titleEnd:]
	text = convertMarkerRegexp.ReplaceAllString(text, distanceDeleteMarker)
	text = curlyPairRegexp.ReplaceAllString(text, "")
	text = angleEntityRegexp.ReplaceAllString(text, " ")
	text = refNameRegexp.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "nbsp;", " ")
	text = htmlEscapeRegexp.ReplaceAllString(text, " ")
	text = strayPunctuationRegexp.ReplaceAllString(text, " ")
	text = emptyParensRegexp.ReplaceAllString(text, "")
	if len(text) > p.Limits.SegmentCharactersSize {
		text = text[:p.Limits.SegmentCharactersSize]
	}
	return text
}

func (p *IsAInParser) firstVerbIndex(tokens []string) int {
	for i, token := range tokens {
		if len(token) <= 1 {
			continue
		}
		// Too far from the title to be a good indicator.
		if i >= p.Limits.MaxWordsTillVerb {
			return -1
		}
		// Found a period too soon.
		if endsSentence(token) {
			return -1
		}
		lower := strings.ToLower(strings.TrimSpace(token))
		for _, verb := range isAInVerbs {
			if lower == verb {
				return i
			}
		}
	}
	return -1
}

func firstPrepositionIndex(tokens []string, verbIndex int) int {
	for i := verbIndex + 1; i < len(tokens); i++ {
		if endsSentence(tokens[i]) {
			return -1
		}
		lower := strings.ToLower(strings.TrimSpace(tokens[i]))
		for _, prep := range isAInPrepositions {
			if lower == prep {
				return i
			}
		}
	}
	return -1
}

// endsSentence reports a sentence-ending period: "]]." always ends one,
// while a bare trailing "." does not when the token is an opening link
// (the period belongs to a piped link label, not the sentence).
func endsSentence(token string) bool {
	if strings.HasSuffix(token, "]].") {
		return true
	}
	return strings.HasSuffix(token, ".") && !strings.HasPrefix(strings.ToLower(token), "[[")
}

var whitespaceRegexp = regexp.MustCompile(`\s`)

func splitWhitespaceKeepEmpty(text string) []string {
	return whitespaceRegexp.Split(text, -1)
}

// canonicalFreeText normalises a free-text entity reference to canonical
// title form.
func canonicalFreeText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
