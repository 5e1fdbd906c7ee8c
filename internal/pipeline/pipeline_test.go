package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krauseamir/wikigir/internal/neighbors"
	"github.com/krauseamir/wikigir/pkg/config"
)

const testDump = `<mediawiki>
  <page>
    <title>Alpha</title>
    <text xml:space="preserve">'''Alpha''' is an ancient harbour city near [[Beta]] island with a famous granite lighthouse and shipwrights.
{{coord|10|30|N|20|0|E|display=title}}
The harbour city keeps its granite lighthouse lit.
[[Category:Harbour towns]]
[[Category:Lighthouses]]
</text>
  </page>
  <page>
    <title>Beta</title>
    <text xml:space="preserve">'''Beta''' is an ancient harbour town with a famous granite lighthouse and shipwrights.
{{coord|10|31|N|20|1|E|display=title}}
The harbour town keeps its granite lighthouse lit.
[[Category:Harbour towns]]
</text>
  </page>
  <page>
    <title>Gamma</title>
    <text xml:space="preserve">'''Gamma''' is a biography of a composer entirely unrelated to the sea.
[[Category:1901 births]]
</text>
  </page>
  <page>
    <title>Delta</title>
    <redirect title="Beta" />
    <text xml:space="preserve">redirect body</text>
  </page>
</mediawiki>
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "enwiki.xml"), []byte(testDump), 0o644))

	cfg := &config.Config{
		Paths: config.PathsConfig{
			BasePath:    base,
			WikiXMLFile: "enwiki.xml",

			ArticlesFolder:   "articles",
			DictionaryFolder: "dictionary",
			IndexFolder:      "idx",
			NeighborsFolder:  "nn",

			TitleIDsFile:             "title_ids.bin",
			CategoryIDsFile:          "category_ids.bin",
			DictionaryFile:           "dictionary.bin",
			TFIDFVectorsFile:         "tf_idf.bin",
			NamedLocationVectorsFile: "named_locations.bin",
			CoordinatesFile:          "coordinates.bin",
			RedirectsFile:            "redirects.bin",
			CategoriesFile:           "categories.bin",
			ArticleTypesFile:         "article_types.bin",
			LocatedAtFile:            "located_at.bin",
			IsAInFile:                "is_a_in.bin",

			WordsIndexFile:                    "words.bin",
			WordsWithCoordsIndexFile:          "words_coords.bin",
			CategoriesIndexFile:               "cats.bin",
			CategoriesWithCoordsIndexFile:     "cats_coords.bin",
			NamedLocationsIndexFile:           "nl.bin",
			NamedLocationsWithCoordsIndexFile: "nl_coords.bin",

			NeighborsFile: "neighbors.bin",
		},
		Limits: config.LimitsConfig{
			MaxVectorElements:           100,
			MaxNamedLocationsPerArticle: 30,
			MaxWordIndex:                500,
			MaxWordsTillVerb:            20,
			MaxWordsTillPhrase:          50,
			MaxCharactersPostPhrase:     150,
			MaxEntitiesDiameterKm:       400,
			MaxIndexForTitleRemoval:     250,
			MaxTitleLengthForRemoval:    100,
			SegmentCharactersSize:       1500,
		},
		Pruner: config.PrunerConfig{MemorySize: 10000, MaxIteration: 1000},
		Neighbors: config.NeighborsConfig{
			Workers:                        2,
			TFIDFPruningThreshold:          1,
			NamedLocationsPruningThreshold: 1,
			CategoriesPruningThreshold:     1,
			MinSimilarity:                  0.01,
			MaxNeighbors:                   10,
			Weights:                        "1/2,1/4,1/4",
		},
		Executor: config.ExecutorConfig{TerminationWaitMillis: 60000},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil)
	require.NoError(t, p.Run())

	// Every artifact file exists.
	for _, path := range []string{
		cfg.Paths.TitleIDsPath(),
		cfg.Paths.CategoryIDsPath(),
		cfg.Paths.DictionaryPath(),
		cfg.Paths.TFIDFVectorsPath(),
		cfg.Paths.NamedLocationVectorsPath(),
		cfg.Paths.CoordinatesPath(),
		cfg.Paths.RedirectsPath(),
		cfg.Paths.CategoriesPath(),
		cfg.Paths.ArticleTypesPath(),
		cfg.Paths.LocatedAtPath(),
		cfg.Paths.IsAInPath(),
		cfg.Paths.IndexPath(cfg.Paths.WordsIndexFile),
		cfg.Paths.IndexPath(cfg.Paths.WordsWithCoordsIndexFile),
		cfg.Paths.NeighborsPath(),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, "artifact %s", path)
	}

	// The redirect page produced a table entry but no article.
	redirects, err := loadStringMap(cfg.Paths.RedirectsPath())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Delta": "Beta"}, redirects)

	coords, err := loadCoordinates(cfg.Paths.CoordinatesPath())
	require.NoError(t, err)
	assert.Contains(t, coords, "Alpha")
	assert.Contains(t, coords, "Beta")
	assert.NotContains(t, coords, "Gamma")

	// Alpha (document order id 0) neighbors Beta (id 1): shared prose,
	// shared category, and coordinates on both sides.
	records, err := neighbors.ReadAll(cfg.Paths.NeighborsPath())
	require.NoError(t, err)
	require.Contains(t, records, int32(0))
	ids := make([]int32, 0)
	for _, n := range records[0] {
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, int32(1))

	// Gamma was typed as a person from its births category.
	types, err := loadArticleTypes(cfg.Paths.ArticleTypesPath())
	require.NoError(t, err)
	assert.Equal(t, "PERSON", types["Gamma"].String())
}

func TestPipelineRerunLoadsFromDisk(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, New(cfg, nil).Run())

	before, err := os.ReadFile(cfg.Paths.NeighborsPath())
	require.NoError(t, err)

	// Second run must load every phase from disk and leave outputs
	// untouched.
	require.NoError(t, New(cfg, nil).Run())
	after, err := os.ReadFile(cfg.Paths.NeighborsPath())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
