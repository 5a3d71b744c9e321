// Package catalog holds the static template assets (base outlines, parts and
// material references) and the rules for recognising base templates.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Kind groups catalog items by the panel that offers them.
type Kind string

const (
	KindBase      Kind = "base"
	KindStrap     Kind = "strap"
	KindAccessory Kind = "accessory"
	KindPattern   Kind = "pattern"
	KindLeather   Kind = "leather"
)

// IsReference reports whether items of this kind are sent to the model as a
// material reference rather than placed on the canvas.
func (k Kind) IsReference() bool {
	return k == KindPattern || k == KindLeather
}

func (k Kind) valid() bool {
	switch k {
	case KindBase, KindStrap, KindAccessory, KindPattern, KindLeather:
		return true
	}
	return false
}

// Item is one addressable template image.
type Item struct {
	ID   string `yaml:"id" json:"id"`
	Kind Kind   `yaml:"kind" json:"kind"`
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// RecognitionRules configures base-template recognition.
type RecognitionRules struct {
	TemplateFolders []string `yaml:"template_folders"`
	TemplateNames   []string `yaml:"template_names"`
}

func (r RecognitionRules) empty() bool {
	return len(r.TemplateFolders) == 0 && len(r.TemplateNames) == 0
}

// defaultRules returns the built-in recognition rules, used when a catalog
// file has none.
func defaultRules() (RecognitionRules, error) {
	var f catalogFile
	if err := yaml.Unmarshal(defaultCatalog, &f); err != nil {
		return RecognitionRules{}, fmt.Errorf("parse built-in catalog: %w", err)
	}
	return f.Recognition, nil
}

// Catalog is an immutable set of items.
type Catalog struct {
	items []Item
	byID  map[string]Item
	rules RecognitionRules
}

type catalogFile struct {
	Recognition RecognitionRules `yaml:"recognition"`
	Items       []Item           `yaml:"items"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	rules := f.Recognition
	if rules.empty() {
		var err error
		if rules, err = defaultRules(); err != nil {
			return nil, err
		}
	}

	c := &Catalog{
		items: make([]Item, 0, len(f.Items)),
		byID:  make(map[string]Item, len(f.Items)),
		rules: rules,
	}
	for i, it := range f.Items {
		if it.ID == "" || it.Path == "" {
			return nil, fmt.Errorf("catalog item %d: id and path are required", i)
		}
		if !it.Kind.valid() {
			return nil, fmt.Errorf("catalog item %q: unknown kind %q", it.ID, it.Kind)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("catalog item %q: duplicate id", it.ID)
		}
		if !strings.HasPrefix(it.Path, "/") {
			it.Path = "/" + it.Path
		}
		c.items = append(c.items, it)
		c.byID[it.ID] = it
	}
	return c, nil
}

// Items returns all items of the given kind, or every item for an empty kind,
// in file order.
func (c *Catalog) Items(kind Kind) []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if kind == "" || it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// Item looks up an item by id.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Rules returns the recognition rules in effect.
func (c *Catalog) Rules() RecognitionRules {
	return c.rules
}
