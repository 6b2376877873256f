package places

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one memoized places lookup result.
type Entry struct {
	PlaceID          string `json:"place_id"`
	Website          string `json:"website"`
	FormattedAddress string `json:"formatted_address"`
}

// Cache memoizes place lookups by a name|address|city key so paid lookups
// happen at most once per competitor. Loaded whole at process start and
// written whole at the end of a run.
type Cache struct {
	path    string
	entries map[string]Entry
}

// CacheKey builds the composite lookup key for a competitor.
func CacheKey(name, address, city string) string {
	return strings.Join([]string{name, address, city}, "|")
}

// LoadCache reads the cache file. A missing or malformed file yields an
// empty cache rather than an error.
func LoadCache(path string) *Cache {
	cache := &Cache{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		return cache
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return cache
	}
	cache.entries = entries
	return cache
}

// Get returns the memoized entry for a key.
func (c *Cache) Get(key string) (Entry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Put stores an entry. It does not write the file; call Save at run end.
func (c *Cache) Put(key string, entry Entry) {
	c.entries[key] = entry
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Save writes the whole cache back to its file.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal places cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write places cache: %w", err)
	}
	return nil
}
