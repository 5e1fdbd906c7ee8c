package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(title string, body ...string) string {
	var sb strings.Builder
	sb.WriteString("  <page>\n")
	sb.WriteString("    <title>" + title + "</title>\n")
	for _, line := range body {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("  </page>\n")
	return sb.String()
}

func extractAll(t *testing.T, dump string, opts Options) []Page {
	t.Helper()
	var pages []Page
	require.NoError(t, Extract(strings.NewReader(dump), opts, func(p Page) error {
		pages = append(pages, p)
		return nil
	}))
	return pages
}

func TestExtractBasic(t *testing.T) {
	dump := "<mediawiki>\n" +
		page("Berlin", "<text xml:space=\"preserve\">Berlin is a city.</text>") +
		page("Paris", "<text xml:space=\"preserve\">Paris is a city.</text>") +
		"</mediawiki>\n"

	pages := extractAll(t, dump, Options{})
	require.Len(t, pages, 2)
	assert.Equal(t, "Berlin", pages[0].Title)
	assert.Equal(t, "Paris", pages[1].Title)
	assert.Contains(t, pages[0].Text, "<title>Berlin</title>")
	assert.Contains(t, pages[0].Text, "Berlin is a city.")
}

func TestExtractFiltersInternalNamespaces(t *testing.T) {
	dump := page("Wikipedia:About", "x") +
		page("File:Photo.jpg", "x") +
		page("Portal:Science", "x") +
		page("Template:Infobox", "x") +
		page("Category:Cities", "x") +
		page("Kept_Article", "x")

	pages := extractAll(t, dump, Options{})
	require.Len(t, pages, 1)
	assert.Equal(t, "Kept_Article", pages[0].Title)
}

func TestExtractCategoriesMode(t *testing.T) {
	dump := page("Category:Cities", "x") + page("Kept", "x")
	pages := extractAll(t, dump, Options{Categories: true})
	assert.Len(t, pages, 2)
}

func TestExtractFiltersDisambiguationAndLists(t *testing.T) {
	dump := page("Mercury (disambiguation)", "x") +
		page("List of rivers", "x") +
		page("Kept", "x")

	pages := extractAll(t, dump, Options{})
	require.Len(t, pages, 1)
	assert.Equal(t, "Kept", pages[0].Title)
}

func TestExtractRedirectModes(t *testing.T) {
	dump := page("Alias", `    <redirect title="Target" />`) + page("Plain", "x")

	// Default mode drops redirects.
	pages := extractAll(t, dump, Options{})
	require.Len(t, pages, 1)
	assert.Equal(t, "Plain", pages[0].Title)

	// Redirects mode yields ONLY redirects.
	pages = extractAll(t, dump, Options{Redirects: true})
	require.Len(t, pages, 1)
	assert.Equal(t, "Alias", pages[0].Title)
}

func TestExtractLimit(t *testing.T) {
	dump := page("A", "x") + page("B", "x") + page("C", "x")
	pages := extractAll(t, dump, Options{Limit: 2})
	assert.Len(t, pages, 2)

	pages = extractAll(t, dump, Options{Limit: 0})
	assert.Len(t, pages, 3)
}

func TestExtractStripsEmptyLines(t *testing.T) {
	dump := page("A", "first", "", "second")
	pages := extractAll(t, dump, Options{})
	require.Len(t, pages, 1)
	assert.NotContains(t, pages[0].Text, "\n\n")
}

func TestCanonicalTitle(t *testing.T) {
	assert.Equal(t, "United_States", CanonicalTitle(" United States "))
	assert.Equal(t, `"Heroes"`, CanonicalTitle("&quot;Heroes&quot;"))
	assert.Equal(t, "AT&T", CanonicalTitle("AT&amp;T"))
}

func TestExtractStop(t *testing.T) {
	dump := page("A", "x") + page("B", "x")
	count := 0
	err := Extract(strings.NewReader(dump), Options{}, func(Page) error {
		count++
		return ErrStop
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
