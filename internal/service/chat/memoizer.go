package chat

import (
	"sort"
	"strings"
	"sync"

	"github.com/nitinog10/Campus-mitra/internal/models"
)

// Memoizer maps (normalized query, document scope) to a previously generated
// result. Entries have no TTL; growth is bounded by a wholesale clear once
// the entry count crosses the threshold; memoized answers are cheap to
// regenerate, so individual eviction isn't worth the bookkeeping.
type Memoizer struct {
	mu        sync.Mutex
	entries   map[string]models.ChatResult
	threshold int
}

func NewMemoizer() *Memoizer {
	return &Memoizer{
		entries:   make(map[string]models.ChatResult),
		threshold: 100,
	}
}

// Key builds a memoization key. Document ids are sorted so that scope order
// never changes cache hits; the query is whitespace-normalized.
func (m *Memoizer) Key(query string, docIDs []string) string {
	ids := make([]string, len(docIDs))
	copy(ids, docIDs)
	sort.Strings(ids)

	normalized := strings.Join(strings.Fields(query), " ")
	return strings.Join(ids, ",") + "|" + normalized
}

func (m *Memoizer) Get(key string) (models.ChatResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.entries[key]
	return result, ok
}

func (m *Memoizer) Put(key string, result models.ChatResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.threshold {
		m.entries = make(map[string]models.ChatResult)
	}
	m.entries[key] = result
}

// Reset clears all memoized responses.
func (m *Memoizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]models.ChatResult)
}

// Len returns the current entry count.
func (m *Memoizer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
