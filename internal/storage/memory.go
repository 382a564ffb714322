package storage

import (
	"context"
	"sync"

	"sales-engine/pkg"
)

// MemoryHistory is an in-process conversation store used when Redis is not
// configured. Histories live for the lifetime of the process.
type MemoryHistory struct {
	mu            sync.RWMutex
	conversations map[string][]pkg.ConversationMessage
}

// NewMemoryHistory creates an empty in-memory store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{conversations: make(map[string][]pkg.ConversationMessage)}
}

// GetHistory returns a copy of the stored turns, oldest first.
func (m *MemoryHistory) GetHistory(_ context.Context, dealershipID int64, conversationID string) ([]pkg.ConversationMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.conversations[historyKey(dealershipID, conversationID)]
	if len(stored) == 0 {
		return nil, nil
	}
	history := make([]pkg.ConversationMessage, len(stored))
	copy(history, stored)
	return history, nil
}

// AppendMessage adds one turn to the conversation.
func (m *MemoryHistory) AppendMessage(_ context.Context, dealershipID int64, conversationID string, msg pkg.ConversationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := historyKey(dealershipID, conversationID)
	m.conversations[key] = append(m.conversations[key], msg)
	return nil
}
