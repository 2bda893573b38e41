package engine

import (
	"log/slog"
	"sync"
)

// Cache memoizes rendered results by spec key for the lifetime of one page.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Result
	hits    int
	misses  int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Result)}
}

// Get returns the cached result for key.
func (c *Cache) Get(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

// Put stores a result.
func (c *Cache) Put(key string, r *Result) {
	c.mu.Lock()
	c.entries[key] = r
	c.mu.Unlock()
}

// Clear drops every entry. Called when the page is torn down.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Result)
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Pages hands out one engine per page and tears it down with the page.
type Pages struct {
	mu     sync.Mutex
	pages  map[string]*Engine
	opts   Options
	logger *slog.Logger
}

// NewPages creates an empty registry. Every engine it creates uses opts.
func NewPages(opts Options) *Pages {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pages{pages: make(map[string]*Engine), opts: opts, logger: logger}
}

// For returns the engine for a page, creating it on first use.
func (p *Pages) For(pageID string) *Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.pages[pageID]
	if !ok {
		e = New(p.opts)
		p.pages[pageID] = e
	}
	return e
}

// Lookup returns a page's engine without creating one.
func (p *Pages) Lookup(pageID string) (*Engine, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.pages[pageID]
	return e, ok
}

// Teardown drops a page's engine and its cache.
func (p *Pages) Teardown(pageID string) {
	p.mu.Lock()
	e, ok := p.pages[pageID]
	delete(p.pages, pageID)
	p.mu.Unlock()
	if ok {
		stats := e.cache.Stats()
		e.cache.Clear()
		p.logger.Debug("page torn down", "page", pageID, "entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)
	}
}

// TeardownAll drops every page.
func (p *Pages) TeardownAll() {
	p.mu.Lock()
	ids := make([]string, 0, len(p.pages))
	for id := range p.pages {
		ids = append(ids, id)
	}
	p.mu.Unlock()
	for _, id := range ids {
		p.Teardown(id)
	}
}

// Len returns the number of live pages.
func (p *Pages) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}
