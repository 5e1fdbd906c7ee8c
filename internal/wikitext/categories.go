package wikitext

import (
	"regexp"
	"strings"
)

// The category name may carry a "|" sort key, which is not part of the
// name; group only up to the pipe.
var categoryRegexp = regexp.MustCompile(`\[\[[Cc]ategory *: *(.*?)(\||]])`)

// ParseCategories returns the page's category strings in source order,
// duplicates preserved. Names are normalised to link form (spaces to
// underscores) with any "#" fragment stripped; de-duplication happens when
// ids are assigned.
func ParseCategories(raw string) []string {
	var cats []string
	for _, m := range categoryRegexp.FindAllStringSubmatch(raw, -1) {
		category := strings.ReplaceAll(m[1], " ", "_")
		if i := strings.Index(category, "#"); i >= 0 {
			category = category[:i]
		}
		cats = append(cats, category)
	}
	return cats
}
