// internal/catalog/catalog.go
//
// Content catalogs for the mini-games.
//
// Responsibilities:
//   - Parse the YAML catalog document (one section per game).
//   - Validate identities (non-empty, unique per game) and poem structure.
//   - Serve read-only snapshots through the Provider interface.
//
// Loading (Load):
//  1. If a path is given (CATALOG_FILE), read that file.
//  2. Otherwise fall back to the catalog embedded in the assets package.
//
// A Catalog is immutable after construction and safe to share between
// goroutines; every accessor hands out copies.

package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Caliovent/korean-party-functions/assets"
)

// Provider is the read side of the content store.
type Provider interface {
	MarketItems() []MarketItem
	FoodItems() []FoodItem
	Colors() []Color
	Poems() []Poem

	FoodItem(id string) (FoodItem, bool)
	Poem(id string) (Poem, bool)
}

// document mirrors the on-disk YAML layout.
type document struct {
	Market []MarketItem `yaml:"market"`
	Food   []FoodItem   `yaml:"food"`
	Colors []Color      `yaml:"colors"`
	Poems  []Poem       `yaml:"poems"`
}

// Catalog holds every game's content.
type Catalog struct {
	market []MarketItem
	food   []FoodItem
	colors []Color
	poems  []Poem

	foodByID map[string]int
	poemByID map[string]int
}

// New builds a catalog from in-memory records. Slices are copied.
func New(market []MarketItem, food []FoodItem, colors []Color, poems []Poem) (*Catalog, error) {
	c := &Catalog{
		market:   append([]MarketItem(nil), market...),
		food:     append([]FoodItem(nil), food...),
		colors:   append([]Color(nil), colors...),
		poems:    make([]Poem, 0, len(poems)),
		foodByID: make(map[string]int, len(food)),
		poemByID: make(map[string]int, len(poems)),
	}
	for _, p := range poems {
		c.poems = append(c.poems, copyPoem(p))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for i, f := range c.food {
		c.foodByID[f.ID] = i
	}
	for i, p := range c.poems {
		c.poemByID[p.ID] = i
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(b []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(doc.Market, doc.Food, doc.Colors, doc.Poems)
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	b, err := assets.Catalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: embedded: %w", err)
	}
	return Parse(b)
}

// Load reads path when set, otherwise the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Validate checks identities and poem structure.
func (c *Catalog) Validate() error {
	if err := uniqueIDs("market", len(c.market), func(i int) string { return c.market[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("food", len(c.food), func(i int) string { return c.food[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("colors", len(c.colors), func(i int) string { return c.colors[i].ID }); err != nil {
		return err
	}
	if err := uniqueIDs("poems", len(c.poems), func(i int) string { return c.poems[i].ID }); err != nil {
		return err
	}
	for _, p := range c.poems {
		if p.Blanks() != len(p.Solutions) {
			return fmt.Errorf("catalog: poem %q has %d blanks but %d solutions", p.ID, p.Blanks(), len(p.Solutions))
		}
	}
	return nil
}

func uniqueIDs(section string, n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			return fmt.Errorf("catalog: %s[%d]: %w", section, i, errEmptyID)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("catalog: %s: duplicate id %q", section, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

var errEmptyID = errors.New("empty id")

// MarketItems returns a copy of the market catalog.
func (c *Catalog) MarketItems() []MarketItem { return append([]MarketItem(nil), c.market...) }

// FoodItems returns a copy of the food catalog.
func (c *Catalog) FoodItems() []FoodItem { return append([]FoodItem(nil), c.food...) }

// Colors returns a copy of the color catalog.
func (c *Catalog) Colors() []Color { return append([]Color(nil), c.colors...) }

// Poems returns deep copies of every poem.
func (c *Catalog) Poems() []Poem {
	out := make([]Poem, len(c.poems))
	for i, p := range c.poems {
		out[i] = copyPoem(p)
	}
	return out
}

// FoodItem looks up a food item by id.
func (c *Catalog) FoodItem(id string) (FoodItem, bool) {
	i, ok := c.foodByID[id]
	if !ok {
		return FoodItem{}, false
	}
	return c.food[i], true
}

// Poem looks up a poem by id.
func (c *Catalog) Poem(id string) (Poem, bool) {
	i, ok := c.poemByID[id]
	if !ok {
		return Poem{}, false
	}
	return copyPoem(c.poems[i]), true
}

// Stats returns per-game record counts.
func (c *Catalog) Stats() map[string]int {
	return map[string]int{
		"market": len(c.market),
		"food":   len(c.food),
		"colors": len(c.colors),
		"poems":  len(c.poems),
	}
}

func copyPoem(p Poem) Poem {
	out := p
	out.Text = make([]*string, len(p.Text))
	for i, s := range p.Text {
		if s != nil {
			v := *s
			out.Text[i] = &v
		}
	}
	out.Solutions = make(map[string]string, len(p.Solutions))
	for k, v := range p.Solutions {
		out.Solutions[k] = v
	}
	out.Choices = append([]string(nil), p.Choices...)
	return out
}
