package chat

import (
	"strings"
	"sync"
)

// noContextSentinel is the value History returns for unknown or empty
// sessions.
const noContextSentinel = "No previous conversation context."

// Memory keeps a bounded per-session history of question/answer pairs.
// Storage across sessions is unbounded; each session keeps only the most
// recent exchanges.
type Memory struct {
	mu           sync.Mutex
	sessions     map[string][]string
	maxExchanges int
}

func NewMemory() *Memory {
	return &Memory{
		sessions:     make(map[string][]string),
		maxExchanges: 10,
	}
}

// Append records the latest exchange for a session, dropping the oldest
// entries once the per-session bound is exceeded.
func (m *Memory) Append(sessionID, question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID], question, answer)
	if limit := m.maxExchanges * 2; len(history) > limit {
		history = history[len(history)-limit:]
	}
	m.sessions[sessionID] = history
}

// History formats the most recent maxTurns exchanges as a transcript.
func (m *Memory) History(sessionID string, maxTurns int) string {
	if maxTurns <= 0 {
		maxTurns = 3
	}

	m.mu.Lock()
	history := m.sessions[sessionID]
	if n := maxTurns * 2; len(history) > n {
		history = history[len(history)-n:]
	}
	recent := make([]string, len(history))
	copy(recent, history)
	m.mu.Unlock()

	if len(recent) == 0 {
		return noContextSentinel
	}

	var lines []string
	for i := 0; i+1 < len(recent); i += 2 {
		lines = append(lines, "Previous Question: "+recent[i])
		lines = append(lines, "Previous Answer: "+recent[i+1])
	}
	if len(lines) == 0 {
		return noContextSentinel
	}
	return strings.Join(lines, "\n")
}
