package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

// InMemory is a process-local Store. Entries expire after the TTL measured
// from their last update; expired entries are dropped lazily or by Sweep.
type InMemory struct {
	mu            sync.Mutex
	conversations map[string]model.Conversation
	ttl           time.Duration
	now           func() time.Time
}

func New(ttl time.Duration) *InMemory {
	return &InMemory{
		conversations: make(map[string]model.Conversation),
		ttl:           ttl,
		now:           time.Now,
	}
}

func (m *InMemory) Get(_ context.Context, userID string) (model.Conversation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.lookup(userID)
	if !ok {
		return model.Conversation{}, false, nil
	}
	return clone(conv), true, nil
}

func (m *InMemory) Update(_ context.Context, userID string, patch Patch) (model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.lookup(userID)
	if !ok {
		conv = model.Conversation{UserID: userID}
	}
	conv = Apply(conv, patch, m.now())
	m.conversations[userID] = conv
	return clone(conv), nil
}

func (m *InMemory) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, userID)
	return nil
}

// Sweep removes every expired conversation and returns how many were dropped.
func (m *InMemory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for id, conv := range m.conversations {
		if expired(conv, m.ttl, now) {
			delete(m.conversations, id)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of live entries, expired ones included until swept.
func (m *InMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

// RunSweeper calls Sweep on every tick until ctx is done. A non-positive
// interval sweeps once per TTL; without a TTL there is nothing to sweep.
func (m *InMemory) RunSweeper(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = m.ttl
	}
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *InMemory) lookup(userID string) (model.Conversation, bool) {
	conv, ok := m.conversations[userID]
	if !ok {
		return model.Conversation{}, false
	}
	if expired(conv, m.ttl, m.now()) {
		delete(m.conversations, userID)
		return model.Conversation{}, false
	}
	return conv, true
}

func clone(conv model.Conversation) model.Conversation {
	if conv.LastIntent != nil {
		intent := *conv.LastIntent
		conv.LastIntent = &intent
	}
	conv.History = append([]model.HistoryEntry{}, conv.History...)
	return conv
}
