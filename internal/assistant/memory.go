package assistant

import (
	"fmt"
	"sync"
	"time"
)

// ConversationTurn is a single exchange in the conversation history.
type ConversationTurn struct {
	UserQuery     string        `json:"user_query"`
	Response      string        `json:"response"`
	QueryType     string        `json:"query_type,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	ExecutionTime time.Duration `json:"execution_time,omitempty"`
}

// ConversationMemory keeps a sliding window of conversation turns per
// user. Safe for concurrent use.
type ConversationMemory struct {
	mutex   sync.RWMutex
	history map[string][]ConversationTurn
	maxSize int
}

// NewConversationMemory creates a memory with the given window size.
func NewConversationMemory(maxSize int) *ConversationMemory {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &ConversationMemory{
		history: make(map[string][]ConversationTurn),
		maxSize: maxSize,
	}
}

// Record appends a turn for the user, trimming the oldest entries
// beyond the window.
func (cm *ConversationMemory) Record(userID string, turn ConversationTurn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	turns := append(cm.history[userID], turn)
	if len(turns) > cm.maxSize {
		turns = turns[len(turns)-cm.maxSize:]
	}
	cm.history[userID] = turns
}

// Recent returns the last n turns for the user, oldest first.
func (cm *ConversationMemory) Recent(userID string, n int) []ConversationTurn {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	turns := cm.history[userID]
	if n <= 0 || len(turns) == 0 {
		return nil
	}
	start := len(turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]ConversationTurn, len(turns[start:]))
	copy(out, turns[start:])
	return out
}

// Clear drops the user's history.
func (cm *ConversationMemory) Clear(userID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.history, userID)
}

// Formatted renders the user's recent history for display.
func (cm *ConversationMemory) Formatted(userID string, n int) string {
	turns := cm.Recent(userID, n)
	if len(turns) == 0 {
		return ""
	}
	var out string
	for i, turn := range turns {
		if i > 0 {
			out += "\n\n"
		}
		out += fmt.Sprintf("Human: %s\nAssistant: %s", turn.UserQuery, turn.Response)
	}
	return out
}
