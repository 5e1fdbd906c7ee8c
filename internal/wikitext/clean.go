// Package wikitext holds the per-record field parsers. Every parser reads
// a single extracted page (raw text plus canonical title), is side-effect
// free, and produces one typed output: clean prose, coordinates, redirect
// target, categories, contained entities, is-a-in evidence, or an explicit
// located-at target.
package wikitext

import (
	"regexp"
	"strings"
)

// Nested wiki markup ([[..[[..]]..]]) is peeled one level per pass; three
// passes cover everything seen in practice.
const nestedBracketsRemovalIterations = 3

// The farthest position (from text start) at which the '''title''' anchor
// may appear for the prefix before it to be trimmed away.
const maxDistanceForTitleInText = 250

var (
	textPartRegexp = regexp.MustCompile(`(?s)<text xml.*?>(.*?)</text>`)

	// A "clean" double-square-bracket construct: one that contains no
	// further "[" inside, so iterating removes nesting inside-out.
	squareBracketsRegexp = regexp.MustCompile(`(?s)\[\[([^\[]*?)]]`)

	// Same idea for {{...}} citations and {...} tables.
	citationRegexp = regexp.MustCompile(`(?s)\{\{[^{]*?}}`)
	tableRegexp    = regexp.MustCompile(`(?s)\{[^{]*?}`)

	otherRegexps = []*regexp.Regexp{
		regexp.MustCompile(`(?s)&lt;.*?&gt;`),
		regexp.MustCompile(`={1,3}.*=`),
		regexp.MustCompile(`(&quot;)|(&amp;)|(nbsp;)|(wikt:)`),
	}
)

// CleanText turns a raw page into readable prose: the <text> section with
// wiki links collapsed, citations and tables removed, markup and headings
// stripped, metadata lines dropped, and any preamble before the
// '''title''' anchor trimmed.
func CleanText(title, raw string) string {
	m := textPartRegexp.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	text := m[1]

	text = removeNestedBrackets(text)

	for _, re := range otherRegexps {
		text = re.ReplaceAllString(text, " ")
	}

	text = removeLinesWithIllegalBeginnings(text)

	return startWithTitle(title, text)
}

func removeNestedBrackets(text string) string {
	// Square brackets are either file references (dropped entirely), links
	// with display alternates (keep the first "|" part, with two
	// context-sensitive overrides), or plain [[link]]s (keep the text).
	for i := 0; i < nestedBracketsRemovalIterations; i++ {
		text = squareBracketsRegexp.ReplaceAllStringFunc(text, func(match string) string {
			part := match[2 : len(match)-2]
			if strings.Contains(part, "File:") {
				return ""
			}
			if strings.Contains(part, "|") {
				lower := strings.ToLower(part)
				switch {
				// Keeping "sculpture" for a human sculptor would derail
				// spot-location detection later.
				case strings.Contains(lower, "sculpture") && strings.Contains(lower, "sculptor"):
					part = "sculptor"
				case strings.Contains(lower, "musical theatre") && strings.Contains(lower, "musical"):
					part = "musical"
				default:
					part = part[:strings.Index(part, "|")]
				}
			}
			return part
		})
	}

	for i := 0; i < nestedBracketsRemovalIterations; i++ {
		text = citationRegexp.ReplaceAllString(text, "")
	}

	for i := 0; i < nestedBracketsRemovalIterations; i++ {
		text = tableRegexp.ReplaceAllString(text, "")
	}

	return text
}

func removeLinesWithIllegalBeginnings(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Category:") || strings.HasPrefix(line, "|") ||
			strings.HasPrefix(line, "!") || strings.HasPrefix(line, "*") ||
			strings.HasPrefix(line, "#") || strings.HasPrefix(line, "Image:") {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// startWithTitle removes anything before the '''<title>''' mark, dropping
// disambiguation preambles that would otherwise pollute word counts.
func startWithTitle(title, text string) string {
	if i := strings.Index(title, ","); i >= 0 {
		title = title[:i]
	}
	if i := strings.Index(title, "("); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))

	index := strings.Index(text, "'''"+title)
	if index < 0 {
		title = strings.TrimSpace(strings.ReplaceAll(title, "-", " "))
		index = strings.Index(text, "'''"+title)
	}

	// Straying too far from the beginning would lose real text.
	if index >= maxDistanceForTitleInText {
		return text
	}
	if index >= 0 {
		return text[index:]
	}
	return text
}
