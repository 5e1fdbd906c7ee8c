package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func wrapText(body string) string {
	return "<title>Test</title>\n<text xml:space=\"preserve\">" + body + "</text>"
}

func TestCleanTextCollapsesLinks(t *testing.T) {
	clean := CleanText("Test", wrapText("Born in [[Paris]] near [[River Seine|the Seine]]."))
	assert.Contains(t, clean, "Born in Paris near River Seine.")
}

func TestCleanTextDropsFileLinks(t *testing.T) {
	clean := CleanText("Test", wrapText("Intro [[File:Photo.jpg|thumb|A photo]] outro"))
	assert.NotContains(t, clean, "Photo.jpg")
	assert.Contains(t, clean, "Intro")
	assert.Contains(t, clean, "outro")
}

func TestCleanTextRemovesCitationsAndTables(t *testing.T) {
	clean := CleanText("Test", wrapText("Before {{cite web|url=x}} middle {k=v} after"))
	assert.NotContains(t, clean, "cite web")
	assert.NotContains(t, clean, "k=v")
	assert.Contains(t, clean, "Before")
	assert.Contains(t, clean, "middle")
	assert.Contains(t, clean, "after")
}

func TestCleanTextRemovesNestedMarkup(t *testing.T) {
	clean := CleanText("Test", wrapText("A {{outer {{inner}} tail}} B [[x|[[y]] z]] C"))
	assert.NotContains(t, clean, "inner")
	assert.NotContains(t, clean, "outer")
	assert.Contains(t, clean, "A")
	assert.Contains(t, clean, "C")
}

func TestCleanTextRemovesHeadingsAndTags(t *testing.T) {
	clean := CleanText("Test", wrapText("intro\n==History==\nbody &lt;ref&gt;x&lt;/ref&gt; end"))
	assert.NotContains(t, clean, "History")
	assert.NotContains(t, clean, "ref")
	assert.Contains(t, clean, "intro")
}

func TestCleanTextDropsIllegalLines(t *testing.T) {
	body := "keep me\n|table row\n!header\n*bullet\n#numbered\nCategory:Things\nImage:x.png\nalso kept"
	clean := CleanText("Test", wrapText(body))
	assert.Contains(t, clean, "keep me")
	assert.Contains(t, clean, "also kept")
	assert.NotContains(t, clean, "table row")
	assert.NotContains(t, clean, "bullet")
	assert.NotContains(t, clean, "numbered")
	assert.NotContains(t, clean, "Category:Things")
}

func TestCleanTextStartsWithTitle(t *testing.T) {
	body := "For other uses see elsewhere. '''Test''' is the subject."
	clean := CleanText("Test", wrapText(body))
	assert.NotContains(t, clean, "other uses")
	assert.Contains(t, clean, "'''Test''' is the subject.")
}

func TestCleanTextTitleTooFarIsKept(t *testing.T) {
	prefix := ""
	for i := 0; i < 30; i++ {
		prefix += "padding p "
	}
	body := prefix + "'''Test''' is the subject."
	clean := CleanText("Test", wrapText(body))
	assert.Contains(t, clean, "padding")
}

func TestCleanTextNoTextSection(t *testing.T) {
	assert.Equal(t, "", CleanText("Test", "<title>Test</title>"))
}

func TestCleanTextSculptorOverride(t *testing.T) {
	clean := CleanText("Test", wrapText("He was a [[sculpture|sculptor]] of note."))
	assert.Contains(t, clean, "sculptor")
	assert.NotContains(t, clean, "sculpture")
}
