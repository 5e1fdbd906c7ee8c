// Package config loads and validates the builder configuration from a YAML
// file. Every persisted structure's location, every parser limit, and the
// nearest-neighbor parameters live here; a missing or empty required value
// is a fatal configuration error at phase start, never a silent default.
package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level builder configuration.
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Limits    LimitsConfig    `yaml:"limits"`
	Pruner    PrunerConfig    `yaml:"pruner"`
	Neighbors NeighborsConfig `yaml:"neighbors"`
	Executor  ExecutorConfig  `yaml:"executor"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// ExpectedArticles feeds the progress bar only. 0 disables the bar; no
	// progress is printed then.
	ExpectedArticles int `yaml:"expectedArticles"`
}

// PathsConfig names every on-disk input and output of the pipeline. All
// entries are relative to BasePath except WikiXMLFile, which is joined too.
type PathsConfig struct {
	BasePath    string `yaml:"basePath"`
	WikiXMLFile string `yaml:"wikiXmlFile"`

	ArticlesFolder  string `yaml:"articlesFolder"`
	DictionaryFolder string `yaml:"dictionaryFolder"`
	IndexFolder     string `yaml:"indexFolder"`
	NeighborsFolder string `yaml:"neighborsFolder"`

	TitleIDsFile             string `yaml:"titleIdsFile"`
	CategoryIDsFile          string `yaml:"categoryIdsFile"`
	DictionaryFile           string `yaml:"dictionaryFile"`
	TFIDFVectorsFile         string `yaml:"tfIdfVectorsFile"`
	NamedLocationVectorsFile string `yaml:"namedLocationVectorsFile"`
	CoordinatesFile          string `yaml:"coordinatesFile"`
	RedirectsFile            string `yaml:"redirectsFile"`
	CategoriesFile           string `yaml:"categoriesFile"`
	ArticleTypesFile         string `yaml:"articleTypesFile"`
	LocatedAtFile            string `yaml:"locatedAtFile"`
	IsAInFile                string `yaml:"isAInFile"`

	WordsIndexFile                     string `yaml:"wordsIndexFile"`
	WordsWithCoordsIndexFile           string `yaml:"wordsWithCoordinatesIndexFile"`
	CategoriesIndexFile                string `yaml:"categoriesIndexFile"`
	CategoriesWithCoordsIndexFile      string `yaml:"categoriesWithCoordinatesIndexFile"`
	NamedLocationsIndexFile            string `yaml:"namedLocationsIndexFile"`
	NamedLocationsWithCoordsIndexFile  string `yaml:"namedLocationsWithCoordinatesIndexFile"`

	NeighborsFile string `yaml:"neighborsFile"`
}

// LimitsConfig holds the parser and vector-builder bounds.
type LimitsConfig struct {
	MaxVectorElements           int     `yaml:"maxVectorElements"`
	MaxNamedLocationsPerArticle int     `yaml:"maxNamedLocationsPerArticle"`
	MaxWordIndex                int     `yaml:"maxWordIndex"`
	MaxWordsTillVerb            int     `yaml:"maxWordsTillVerb"`
	MaxWordsTillPhrase          int     `yaml:"maxWordsTillPhrase"`
	MaxCharactersPostPhrase     int     `yaml:"maxCharactersPostPhrase"`
	MaxEntitiesDiameterKm       float64 `yaml:"maxEntitiesDiameterKm"`
	MaxIndexForTitleRemoval     int     `yaml:"maxIndexForTitleRemoval"`
	MaxTitleLengthForRemoval    int     `yaml:"maxTitleLengthForRemoval"`
	SegmentCharactersSize       int     `yaml:"segmentCharactersSize"`
}

// PrunerConfig sizes the quick pruner's scratch memory. MemorySize must
// exceed the largest id in any posting list (articles, terms, categories).
type PrunerConfig struct {
	MemorySize   int `yaml:"memorySize"`
	MaxIteration int `yaml:"maxIteration"`
}

// NeighborsConfig controls the nearest-neighbor phase.
type NeighborsConfig struct {
	Workers                        int     `yaml:"workers"`
	TFIDFPruningThreshold          int     `yaml:"tfIdfPruningThreshold"`
	NamedLocationsPruningThreshold int     `yaml:"namedLocationsPruningThreshold"`
	CategoriesPruningThreshold     int     `yaml:"categoriesPruningThreshold"`
	MinSimilarity                  float64 `yaml:"minSimilarity"`
	MaxNeighbors                   int     `yaml:"maxNeighbors"`

	// Weights is the "tf-idf,named-locations,categories" triple. Each entry
	// is a decimal or a p/q literal; the three must sum to exactly 1.
	Weights string `yaml:"weights"`

	parsed Weights
}

// Weights is the parsed similarity weight triple.
type Weights struct {
	TFIDF          float64
	NamedLocations float64
	Categories     float64
}

// ExecutorConfig bounds the shutdown drain of the worker pools.
type ExecutorConfig struct {
	TerminationWaitMillis int `yaml:"terminationWaitMillis"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus scrape server that runs for the
// lifetime of the batch.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads the YAML config file and validates it. There are no defaults
// for paths or limits; logging, metrics, and worker count fall back to
// sensible values when omitted.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg := &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.Neighbors.Workers == 0 {
		cfg.Neighbors.Workers = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every required value and parses the weight triple.
func (c *Config) Validate() error {
	required := map[string]string{
		"paths.basePath":                    c.Paths.BasePath,
		"paths.wikiXmlFile":                 c.Paths.WikiXMLFile,
		"paths.articlesFolder":              c.Paths.ArticlesFolder,
		"paths.dictionaryFolder":            c.Paths.DictionaryFolder,
		"paths.indexFolder":                 c.Paths.IndexFolder,
		"paths.neighborsFolder":             c.Paths.NeighborsFolder,
		"paths.titleIdsFile":                c.Paths.TitleIDsFile,
		"paths.categoryIdsFile":             c.Paths.CategoryIDsFile,
		"paths.dictionaryFile":              c.Paths.DictionaryFile,
		"paths.tfIdfVectorsFile":            c.Paths.TFIDFVectorsFile,
		"paths.namedLocationVectorsFile":    c.Paths.NamedLocationVectorsFile,
		"paths.coordinatesFile":             c.Paths.CoordinatesFile,
		"paths.redirectsFile":               c.Paths.RedirectsFile,
		"paths.categoriesFile":              c.Paths.CategoriesFile,
		"paths.articleTypesFile":            c.Paths.ArticleTypesFile,
		"paths.locatedAtFile":               c.Paths.LocatedAtFile,
		"paths.isAInFile":                   c.Paths.IsAInFile,
		"paths.wordsIndexFile":              c.Paths.WordsIndexFile,
		"paths.wordsWithCoordinatesIndexFile":          c.Paths.WordsWithCoordsIndexFile,
		"paths.categoriesIndexFile":                    c.Paths.CategoriesIndexFile,
		"paths.categoriesWithCoordinatesIndexFile":     c.Paths.CategoriesWithCoordsIndexFile,
		"paths.namedLocationsIndexFile":                c.Paths.NamedLocationsIndexFile,
		"paths.namedLocationsWithCoordinatesIndexFile": c.Paths.NamedLocationsWithCoordsIndexFile,
		"paths.neighborsFile":               c.Paths.NeighborsFile,
		"neighbors.weights":                 c.Neighbors.Weights,
	}
	for key, val := range required {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("configuration error: %s is missing or empty", key)
		}
	}

	positive := map[string]int{
		"limits.maxVectorElements":           c.Limits.MaxVectorElements,
		"limits.maxNamedLocationsPerArticle": c.Limits.MaxNamedLocationsPerArticle,
		"limits.maxWordIndex":                c.Limits.MaxWordIndex,
		"limits.maxWordsTillVerb":            c.Limits.MaxWordsTillVerb,
		"limits.maxWordsTillPhrase":          c.Limits.MaxWordsTillPhrase,
		"limits.maxCharactersPostPhrase":     c.Limits.MaxCharactersPostPhrase,
		"limits.maxIndexForTitleRemoval":     c.Limits.MaxIndexForTitleRemoval,
		"limits.maxTitleLengthForRemoval":    c.Limits.MaxTitleLengthForRemoval,
		"limits.segmentCharactersSize":       c.Limits.SegmentCharactersSize,
		"pruner.memorySize":                  c.Pruner.MemorySize,
		"pruner.maxIteration":                c.Pruner.MaxIteration,
		"neighbors.workers":                  c.Neighbors.Workers,
		"neighbors.tfIdfPruningThreshold":    c.Neighbors.TFIDFPruningThreshold,
		"neighbors.namedLocationsPruningThreshold": c.Neighbors.NamedLocationsPruningThreshold,
		"neighbors.categoriesPruningThreshold":     c.Neighbors.CategoriesPruningThreshold,
		"neighbors.maxNeighbors":             c.Neighbors.MaxNeighbors,
		"executor.terminationWaitMillis":     c.Executor.TerminationWaitMillis,
	}
	for key, val := range positive {
		if val <= 0 {
			return fmt.Errorf("configuration error: %s must be a positive integer", key)
		}
	}
	if c.Limits.MaxEntitiesDiameterKm <= 0 {
		return fmt.Errorf("configuration error: limits.maxEntitiesDiameterKm must be positive")
	}
	if c.Neighbors.MinSimilarity < 0 || c.Neighbors.MinSimilarity > 1 {
		return fmt.Errorf("configuration error: neighbors.minSimilarity must be within [0,1]")
	}

	w, err := ParseWeights(c.Neighbors.Weights)
	if err != nil {
		return err
	}
	c.Neighbors.parsed = w
	return nil
}

// ParsedWeights returns the validated weight triple.
func (c *NeighborsConfig) ParsedWeights() Weights { return c.parsed }

// ParseWeights parses the "tf-idf,named-locations,categories" triple. Both
// decimal literals ("0.25") and fraction literals ("1/3") are accepted; the
// sum is checked with exact rational arithmetic so that 1/3+1/3+1/3 passes
// while 0.3+0.3+0.3 is rejected.
func ParseWeights(s string) (Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Weights{}, fmt.Errorf("configuration error: weights %q must have exactly three entries", s)
	}

	sum := new(big.Rat)
	vals := make([]float64, 3)
	for i, part := range parts {
		r, err := parseRat(strings.TrimSpace(part))
		if err != nil {
			return Weights{}, fmt.Errorf("configuration error: weight %q: %w", part, err)
		}
		if r.Sign() < 0 {
			return Weights{}, fmt.Errorf("configuration error: weight %q is negative", part)
		}
		sum.Add(sum, r)
		vals[i], _ = r.Float64()
	}
	if sum.Cmp(big.NewRat(1, 1)) != 0 {
		return Weights{}, fmt.Errorf("configuration error: weights %q must sum to exactly 1, got %s", s, sum.RatString())
	}
	return Weights{TFIDF: vals[0], NamedLocations: vals[1], Categories: vals[2]}, nil
}

func parseRat(s string) (*big.Rat, error) {
	if s == "" {
		return nil, fmt.Errorf("empty weight")
	}
	r := new(big.Rat)
	if _, ok := r.SetString(s); !ok {
		return nil, fmt.Errorf("not a decimal or p/q literal")
	}
	return r, nil
}

// File-path helpers. Each returns the absolute location of one persisted
// structure.

func (p PathsConfig) WikiXMLPath() string   { return filepath.Join(p.BasePath, p.WikiXMLFile) }
func (p PathsConfig) TitleIDsPath() string  { return filepath.Join(p.BasePath, p.ArticlesFolder, p.TitleIDsFile) }
func (p PathsConfig) CategoryIDsPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.CategoryIDsFile)
}
func (p PathsConfig) DictionaryPath() string {
	return filepath.Join(p.BasePath, p.DictionaryFolder, p.DictionaryFile)
}
func (p PathsConfig) TFIDFVectorsPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.TFIDFVectorsFile)
}
func (p PathsConfig) NamedLocationVectorsPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.NamedLocationVectorsFile)
}
func (p PathsConfig) CoordinatesPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.CoordinatesFile)
}
func (p PathsConfig) RedirectsPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.RedirectsFile)
}
func (p PathsConfig) CategoriesPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.CategoriesFile)
}
func (p PathsConfig) ArticleTypesPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.ArticleTypesFile)
}
func (p PathsConfig) LocatedAtPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.LocatedAtFile)
}
func (p PathsConfig) IsAInPath() string {
	return filepath.Join(p.BasePath, p.ArticlesFolder, p.IsAInFile)
}
func (p PathsConfig) NeighborsPath() string {
	return filepath.Join(p.BasePath, p.NeighborsFolder, p.NeighborsFile)
}

// IndexPath returns the location of one of the six inverted-index files by
// its configured file name.
func (p PathsConfig) IndexPath(fileName string) string {
	return filepath.Join(p.BasePath, p.IndexFolder, fileName)
}
