package lsp

import (
	"crypto/sha256"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// diagnosticsKey addresses a cache entry by document content.
type diagnosticsKey [sha256.Size]byte

func keyFor(content string) diagnosticsKey {
	return sha256.Sum256([]byte(content))
}

// diagnosticsCache is a count-bounded LRU of analysis results keyed by
// content hash, so editors that republish unchanged documents skip the
// re-parse. A doubly-linked list tracks recency; head is most recent.
type diagnosticsCache struct {
	mu      sync.Mutex
	entries map[diagnosticsKey]*cacheEntry
	head    *cacheEntry
	tail    *cacheEntry
	maxSize int
}

type cacheEntry struct {
	key         diagnosticsKey
	diagnostics []protocol.Diagnostic
	prev        *cacheEntry
	next        *cacheEntry
}

func newDiagnosticsCache(maxSize int) *diagnosticsCache {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}

	return &diagnosticsCache{
		entries: make(map[diagnosticsKey]*cacheEntry),
		maxSize: maxSize,
	}
}

func (c *diagnosticsCache) get(key diagnosticsKey) ([]protocol.Diagnostic, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	c.moveToFront(entry)

	return entry.diagnostics, true
}

func (c *diagnosticsCache) put(key diagnosticsKey, diagnostics []protocol.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.diagnostics = diagnostics
		c.moveToFront(entry)

		return
	}

	entry := &cacheEntry{key: key, diagnostics: diagnostics}
	c.entries[key] = entry
	c.pushFront(entry)

	for len(c.entries) > c.maxSize {
		c.evictTail()
	}
}

func (c *diagnosticsCache) pushFront(entry *cacheEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *diagnosticsCache) unlink(entry *cacheEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}

	entry.prev = nil
	entry.next = nil
}

func (c *diagnosticsCache) moveToFront(entry *cacheEntry) {
	if c.head == entry {
		return
	}

	c.unlink(entry)
	c.pushFront(entry)
}

func (c *diagnosticsCache) evictTail() {
	if c.tail == nil {
		return
	}

	victim := c.tail
	c.unlink(victim)
	delete(c.entries, victim.key)
}
