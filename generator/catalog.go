package generator

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Category is one entry of the closed category catalog.
type Category struct {
	Name   string   `yaml:"name" json:"name"`
	Topics []string `yaml:"topics" json:"topics"`
}

// Catalog is the ordered list of categories a post may belong to.
type Catalog []Category

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// ParseCatalog decodes a YAML catalog and rejects empty or duplicate names.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(c) == 0 {
		return nil, errors.New("catalog has no categories")
	}
	seen := make(map[string]bool, len(c))
	for i, cat := range c {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		key := normalizeLabel(name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate catalog category %q", name)
		}
		seen[key] = true
	}
	return c, nil
}

// Names lists category names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// Resolve maps a free-text model answer onto a catalog name. It tries an
// exact (case-insensitive) match, then the longest name contained in the
// answer, then the first name containing the answer, and finally falls back
// to the first category. The second result reports whether a match was found.
func (c Catalog) Resolve(answer string) (string, bool) {
	if len(c) == 0 {
		return "", false
	}
	a := normalizeLabel(answer)
	if a == "" {
		return c[0].Name, false
	}
	for _, cat := range c {
		if normalizeLabel(cat.Name) == a {
			return cat.Name, true
		}
	}
	best := -1
	for i, cat := range c {
		n := normalizeLabel(cat.Name)
		if strings.Contains(a, n) && (best < 0 || len(n) > len(normalizeLabel(c[best].Name))) {
			best = i
		}
	}
	if best >= 0 {
		return c[best].Name, true
	}
	if len(a) >= 4 {
		for _, cat := range c {
			if strings.Contains(normalizeLabel(cat.Name), a) {
				return cat.Name, true
			}
		}
	}
	return c[0].Name, false
}

func normalizeLabel(s string) string {
	s = strings.ToLower(stripWrapping(firstLine(s)))
	s = strings.Trim(s, wordTrimCutset)
	return strings.Join(strings.Fields(s), " ")
}
