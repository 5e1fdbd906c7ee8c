package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = EntityLimits{MaxIndexForTitleRemoval: 250, MaxTitleLengthForRemoval: 100}

func TestParseContainedEntitiesBasic(t *testing.T) {
	raw := wrapText("'''A''' mentions [[Paris]] and [[Lyon|the city of Lyon]].")
	parsed := ParseContainedEntities("A", raw, testLimits)

	require.Contains(t, parsed.Entities, "Paris")
	require.Contains(t, parsed.Entities, "Lyon")

	lyon := parsed.Entities["Lyon"]
	assert.Contains(t, lyon.Variants, "lyon")
	assert.Contains(t, lyon.Variants, "the city of lyon")
}

func TestParseContainedEntitiesDropsNamespacedAndSelf(t *testing.T) {
	raw := wrapText("'''A''' has [[File:x.jpg]] and [[Category:Y]] and [[A]] and [[B]].")
	parsed := ParseContainedEntities("A", raw, testLimits)

	assert.NotContains(t, parsed.Entities, "File:x.jpg")
	assert.NotContains(t, parsed.Entities, "Category:Y")
	assert.NotContains(t, parsed.Entities, "A")
	assert.Contains(t, parsed.Entities, "B")
}

func TestParseContainedEntitiesWordIndex(t *testing.T) {
	raw := wrapText("'''A''' one two three [[Paris]] follows.")
	parsed := ParseContainedEntities("A", raw, testLimits)

	require.Contains(t, parsed.Entities, "Paris")
	// Clean text after title removal: "one two three paris follows." -
	// three words precede "paris".
	assert.Equal(t, 3, parsed.Entities["Paris"].FirstWordIndex)
}

func TestParseContainedEntitiesNewPrefixSkipsOccurrence(t *testing.T) {
	raw := wrapText("'''A''' went to new [[York]] then plain York again.")
	parsed := ParseContainedEntities("A", raw, testLimits)

	require.Contains(t, parsed.Entities, "York")
	// The first "york" is preceded by " new " and does not count; the
	// second occurrence does.
	idx := parsed.Entities["York"].FirstWordIndex
	assert.Greater(t, idx, 3)
}

func TestCountVariantOccurrences(t *testing.T) {
	text := "in paris, near paris and [paris] but not comparison"
	count := CountVariantOccurrences([]string{"paris"}, text)
	assert.Equal(t, 3, count)
}

func TestCountVariantOccurrencesRequiresDelimiters(t *testing.T) {
	assert.Equal(t, 0, CountVariantOccurrences([]string{"abc"}, "xaabcdx"))
	assert.Equal(t, 1, CountVariantOccurrences([]string{"abc"}, "a, abc, def"))
}

func TestCountVariantOccurrencesNonOverlapping(t *testing.T) {
	assert.Equal(t, 2, CountVariantOccurrences([]string{"aa"}, " aa aa "))
}

func TestSearchableVariantsDropsSubstrings(t *testing.T) {
	variants := map[string]struct{}{
		"york":          {},
		"new york":      {},
		"new york city": {},
		"nyc":           {},
	}
	kept := SearchableVariants(variants)
	assert.ElementsMatch(t, []string{"new york city", "nyc"}, kept)
}
