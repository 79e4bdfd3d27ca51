package domain

import (
	"sort"
	"strings"
)

// Catalog is the static price list, loaded from config at startup.
// Keys are lowercase item names, prices are whole rupees.
type Catalog struct {
	prices map[string]int64
	keys   []string // sorted; gives Resolve a deterministic first-match order
}

func NewCatalog(prices map[string]int64) Catalog {
	c := Catalog{prices: make(map[string]int64, len(prices))}
	for name, price := range prices {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || price <= 0 {
			continue
		}
		c.prices[key] = price
		c.keys = append(c.keys, key)
	}
	sort.Strings(c.keys)
	return c
}

func (c Catalog) Len() int { return len(c.keys) }

// Resolve prices a free-text item name: the first catalog key (in sorted
// order) that is a case-insensitive substring of the name wins.
func (c Catalog) Resolve(name string) (int64, bool) {
	lower := strings.ToLower(name)
	for _, key := range c.keys {
		if strings.Contains(lower, key) {
			return c.prices[key], true
		}
	}
	return 0, false
}

type CatalogEntry struct {
	Name      string
	UnitPrice int64
}

// Entries lists the catalog in sorted order for menu rendering.
func (c Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, CatalogEntry{Name: key, UnitPrice: c.prices[key]})
	}
	return out
}
