package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeySeparator joins report and page names into a lookup key. It must never
// appear inside a name, otherwise two different pairs could share a key.
const KeySeparator = "|||"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// ErrEmpty is returned when a catalog declares no reports.
var ErrEmpty = errors.New("catalog has no reports")

type Page struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Report struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Pages []Page `yaml:"pages" json:"pages"`
}

// Catalog is the immutable list of reports and their pages. Iteration order
// (reports, then pages within a report) is the order used everywhere rows are
// produced from it.
type Catalog struct {
	Version int      `yaml:"version" json:"version"`
	Reports []Report `yaml:"reports" json:"reports"`

	index map[string]struct{}
}

// Key builds the natural key of a (report, page) pair.
func Key(report, page string) string {
	return report + KeySeparator + page
}

// New validates reports and returns an indexed catalog.
func New(reports []Report) (*Catalog, error) {
	c := &Catalog{Version: 1, Reports: reports}
	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func (c *Catalog) build() error {
	if len(c.Reports) == 0 {
		return ErrEmpty
	}
	index := make(map[string]struct{}, 64)
	reportNames := make(map[string]struct{}, len(c.Reports))
	for _, r := range c.Reports {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("catalog: report %q has no name", r.ID)
		}
		if strings.Contains(r.Name, KeySeparator) {
			return fmt.Errorf("catalog: report name %q contains %q", r.Name, KeySeparator)
		}
		if _, dup := reportNames[r.Name]; dup {
			return fmt.Errorf("catalog: duplicate report %q", r.Name)
		}
		reportNames[r.Name] = struct{}{}
		for _, p := range r.Pages {
			if strings.TrimSpace(p.Name) == "" {
				return fmt.Errorf("catalog: page %q in report %q has no name", p.ID, r.Name)
			}
			if strings.Contains(p.Name, KeySeparator) {
				return fmt.Errorf("catalog: page name %q contains %q", p.Name, KeySeparator)
			}
			k := Key(r.Name, p.Name)
			if _, dup := index[k]; dup {
				return fmt.Errorf("catalog: duplicate page %q in report %q", p.Name, r.Name)
			}
			index[k] = struct{}{}
		}
	}
	c.index = index
	return nil
}

// PageCount returns the number of (report, page) pairs.
func (c *Catalog) PageCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, r := range c.Reports {
		n += len(r.Pages)
	}
	return n
}

// Has reports whether the pair exists in the catalog.
func (c *Catalog) Has(report, page string) bool {
	if c == nil {
		return false
	}
	if c.index != nil {
		_, ok := c.index[Key(report, page)]
		return ok
	}
	for _, r := range c.Reports {
		if r.Name != report {
			continue
		}
		for _, p := range r.Pages {
			if p.Name == page {
				return true
			}
		}
	}
	return false
}

// Report looks a report up by name.
func (c *Catalog) Report(name string) (Report, bool) {
	if c == nil {
		return Report{}, false
	}
	for _, r := range c.Reports {
		if r.Name == name {
			return r, true
		}
	}
	return Report{}, false
}
