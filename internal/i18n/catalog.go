package i18n

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed catalog/catalog.json
var catalogJSON []byte

// Table is the translated text of one screen in one language.
type Table struct {
	Strings map[string]string   `json:"strings"`
	Lists   map[string][]string `json:"lists"`
}

// Catalog maps (screen, language) to a Table. It is immutable once parsed.
type Catalog struct {
	screens map[string]map[Tag]Table
}

// ParseCatalog decodes a catalog document. Every screen must carry an English table.
func ParseCatalog(data []byte) (*Catalog, error) {
	var screens map[string]map[Tag]Table
	if err := json.Unmarshal(data, &screens); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for screen, tables := range screens {
		if _, ok := tables[Default]; !ok {
			return nil, fmt.Errorf("screen %q has no %q table", screen, Default)
		}
	}
	return &Catalog{screens: screens}, nil
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return ParseCatalog(catalogJSON)
})

// DefaultCatalog returns the embedded catalog. It panics if the embedded
// document does not parse.
func DefaultCatalog() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic("i18n: embedded catalog: " + err.Error())
	}
	return c
}

// Screens returns the screen keys in sorted order.
func (c *Catalog) Screens() []string {
	out := make([]string, 0, len(c.screens))
	for screen := range c.screens {
		out = append(out, screen)
	}
	sort.Strings(out)
	return out
}

// HasScreen reports whether the catalog knows screen.
func (c *Catalog) HasScreen(screen string) bool {
	_, ok := c.screens[screen]
	return ok
}

// Lookup returns the text for key on screen in the resolved language.
// Missing keys fall back to English, then to the key itself.
func (c *Catalog) Lookup(screen, key, lang string) string {
	tables, ok := c.screens[screen]
	if !ok {
		return key
	}
	if s, ok := tables[Resolve(lang)].Strings[key]; ok {
		return s
	}
	if s, ok := tables[Default].Strings[key]; ok {
		return s
	}
	return key
}

// List returns a copy of the list for key on screen in the resolved language.
func (c *Catalog) List(screen, key, lang string) []string {
	tables, ok := c.screens[screen]
	if !ok {
		return nil
	}
	list, ok := tables[Resolve(lang)].Lists[key]
	if !ok {
		list = tables[Default].Lists[key]
	}
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Table returns a merged copy of the screen table: English entries overlaid
// with the resolved language.
func (c *Catalog) Table(screen, lang string) (Table, bool) {
	tables, ok := c.screens[screen]
	if !ok {
		return Table{}, false
	}
	out := Table{
		Strings: make(map[string]string),
		Lists:   make(map[string][]string),
	}
	merge := func(t Table) {
		for k, v := range t.Strings {
			out.Strings[k] = v
		}
		for k, v := range t.Lists {
			l := make([]string, len(v))
			copy(l, v)
			out.Lists[k] = l
		}
	}
	merge(tables[Default])
	if tag := Resolve(lang); tag != Default {
		merge(tables[tag])
	}
	return out, true
}
