package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

// Cache is a time- and capacity-bounded map with two physically separate
// namespaces: document metadata, mirrored to a JSON file on every mutation,
// and transient entries that live only in memory. Keeping the namespaces as
// separate maps removes any need for key-prefix conventions.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	mirrorPath string
	logger     logger.Logger

	docs      map[string]docEntry
	transient map[string]transientEntry
}

type docEntry struct {
	info       models.DocumentInfo
	insertedAt time.Time
}

type transientEntry struct {
	value      interface{}
	insertedAt time.Time
}

// Config 缓存配置
type Config struct {
	TTL        time.Duration
	MaxEntries int
	MirrorPath string
}

func New(cfg Config, logger logger.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100
	}
	return &Cache{
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		mirrorPath: cfg.MirrorPath,
		logger:     logger,
		docs:       make(map[string]docEntry),
		transient:  make(map[string]transientEntry),
	}
}

// LoadMirror populates the document namespace from the mirror file, if one
// exists. The caller is expected to follow up with a disk reconciliation;
// the mirror can lag behind out-of-band changes.
func (c *Cache) LoadMirror() error {
	data, err := os.ReadFile(c.mirrorPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache mirror: %w", err)
	}

	var entries map[string]models.DocumentInfo
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode cache mirror: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for id, info := range entries {
		c.docs[id] = docEntry{info: info, insertedAt: now}
	}

	c.logger.Info("Loaded entries from cache mirror",
		logger.Int("count", len(entries)),
	)
	return nil
}

// GetDocument returns the cached record for a document id.
func (c *Cache) GetDocument(id string) (models.DocumentInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.docs[id]
	if !ok {
		return models.DocumentInfo{}, false
	}
	if time.Since(e.insertedAt) > c.ttl {
		// Expiry is passive and does not rewrite the mirror; the next
		// mutation or reconciliation settles it.
		delete(c.docs, id)
		return models.DocumentInfo{}, false
	}
	return e.info, true
}

// SetDocument stores a document record and rewrites the mirror.
func (c *Cache) SetDocument(id string, info models.DocumentInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs[id] = docEntry{info: info, insertedAt: time.Now()}
	c.evictLocked()
	return c.saveMirrorLocked()
}

// DeleteDocument removes a document record, rewriting the mirror when the
// record existed.
func (c *Cache) DeleteDocument(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	return c.saveMirrorLocked()
}

// Documents returns a snapshot of all non-expired document records.
func (c *Cache) Documents() map[string]models.DocumentInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]models.DocumentInfo, len(c.docs))
	for id, e := range c.docs {
		if time.Since(e.insertedAt) > c.ttl {
			delete(c.docs, id)
			continue
		}
		out[id] = e.info
	}
	return out
}

// Get returns a transient entry.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.transient[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.insertedAt) > c.ttl {
		delete(c.transient, key)
		return nil, false
	}
	return e.value, true
}

// Set stores a transient entry. Transient entries are never persisted and
// are lost on restart by design. Eviction can still hit the document
// namespace, which must then be re-mirrored.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transient[key] = transientEntry{value: value, insertedAt: time.Now()}
	if c.evictLocked() {
		if err := c.saveMirrorLocked(); err != nil {
			c.logger.Error("Failed to rewrite cache mirror after eviction",
				logger.Error(err),
			)
		}
	}
}

// Delete removes a transient entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.transient, key)
}

// Clear empties both namespaces and removes the mirror file. Index
// directories on disk are untouched; deleting those is the document store's
// job.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = make(map[string]docEntry)
	c.transient = make(map[string]transientEntry)

	if err := os.Remove(c.mirrorPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache mirror: %w", err)
	}
	return nil
}

// Len returns the combined entry count across both namespaces.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs) + len(c.transient)
}

// evictLocked drops least-recently-inserted entries until the combined
// count fits the capacity bound. It reports whether a document entry was
// evicted, so callers know the mirror has gone stale.
func (c *Cache) evictLocked() bool {
	docEvicted := false
	for len(c.docs)+len(c.transient) > c.maxEntries {
		var (
			oldestDoc, oldestTransient string
			docAt, transientAt         time.Time
		)
		for id, e := range c.docs {
			if oldestDoc == "" || e.insertedAt.Before(docAt) {
				oldestDoc, docAt = id, e.insertedAt
			}
		}
		for key, e := range c.transient {
			if oldestTransient == "" || e.insertedAt.Before(transientAt) {
				oldestTransient, transientAt = key, e.insertedAt
			}
		}

		switch {
		case oldestTransient != "" && (oldestDoc == "" || transientAt.Before(docAt)):
			delete(c.transient, oldestTransient)
		case oldestDoc != "":
			delete(c.docs, oldestDoc)
			docEvicted = true
		default:
			return docEvicted
		}
	}
	return docEvicted
}

// saveMirrorLocked rewrites the mirror atomically: write a temp file, then
// replace. Concurrent readers never observe a torn mirror.
func (c *Cache) saveMirrorLocked() error {
	entries := make(map[string]models.DocumentInfo, len(c.docs))
	for id, e := range c.docs {
		entries[id] = e.info
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache mirror: %w", err)
	}

	tmp := c.mirrorPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache mirror: %w", err)
	}
	if err := os.Rename(tmp, c.mirrorPath); err != nil {
		return fmt.Errorf("failed to replace cache mirror: %w", err)
	}
	return nil
}
