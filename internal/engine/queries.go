package engine

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"outreach_backend/platform/apperr"
)

// defaultQuery is used when no queries file is configured or a region
// has no entry of its own.
const defaultQuery = "dental clinic in {region}, USA"

// QueryBook holds the discovery query phrasings per region. Multiple
// phrasings per region improve recall; the dedup index absorbs the
// overlap between them.
type QueryBook struct {
	defaults []string
	regions  map[string][]string
}

type queryFile struct {
	Default []string            `yaml:"default"`
	Regions map[string][]string `yaml:"regions"`
}

// LoadQueries reads a query book from a yaml file. An empty path yields
// a book that serves only the built-in default query.
func LoadQueries(path string) (*QueryBook, error) {
	book := &QueryBook{regions: map[string][]string{}}
	if path == "" {
		return book, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "read queries file", err)
	}

	var parsed queryFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "parse queries file", err)
	}

	book.defaults = parsed.Default
	for region, queries := range parsed.Regions {
		book.regions[strings.ToUpper(strings.TrimSpace(region))] = queries
	}
	return book, nil
}

// For returns the expanded queries to run for a region: the region's own
// entries when present, else the file's defaults, else the built-in
// query. The {region} placeholder expands to the region code.
func (b *QueryBook) For(region string) []string {
	region = strings.ToUpper(strings.TrimSpace(region))

	templates := b.regions[region]
	if len(templates) == 0 {
		templates = b.defaults
	}
	if len(templates) == 0 {
		templates = []string{defaultQuery}
	}

	out := make([]string, 0, len(templates))
	for _, t := range templates {
		out = append(out, strings.ReplaceAll(t, "{region}", region))
	}
	return out
}
