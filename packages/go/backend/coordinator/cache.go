package coordinator

import "lenslation/packages/go/backend/translation"

// CacheKey identifies a translation independent of where the text was seen.
type CacheKey struct {
	Text string
	Pair translation.LanguagePair
}

// Cache maps keys to translated text. It is owned by a single Coordinator
// and is not safe for concurrent use.
type Cache struct {
	entries map[CacheKey]string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]string)}
}

func (c *Cache) Get(key CacheKey) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put stores or overwrites the entry for key.
func (c *Cache) Put(key CacheKey, translated string) {
	c.entries[key] = translated
}

// Clear drops every entry at once.
func (c *Cache) Clear() {
	clear(c.entries)
}

func (c *Cache) Len() int {
	return len(c.entries)
}
