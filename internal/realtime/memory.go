package realtime

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Channel. Publish delivers synchronously to every
// subscriber in subscription order, on the publisher's goroutine, which
// makes multi-session tests deterministic: when Publish returns, every
// subscriber has seen the envelope.
type Memory struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]Handler
}

// NewMemory returns an empty in-memory channel.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[int]Handler)}
}

// Publish delivers env to all current subscribers of draftID, including
// the publisher's own subscription (consumers dedupe by envelope id).
func (m *Memory) Publish(_ context.Context, draftID string, env Envelope) error {
	m.mu.Lock()
	var handlers []Handler
	ids := make([]int, 0, len(m.subs[draftID]))
	for id := range m.subs[draftID] {
		ids = append(ids, id)
	}
	// map iteration order is random; deliver in subscription order
	sort.Ints(ids)
	for _, id := range ids {
		handlers = append(handlers, m.subs[draftID][id])
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(env)
	}
	return nil
}

// Subscribe registers h for draftID and returns its cancel function.
func (m *Memory) Subscribe(_ context.Context, draftID string, h Handler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	if m.subs[draftID] == nil {
		m.subs[draftID] = make(map[int]Handler)
	}
	m.subs[draftID][id] = h

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[draftID], id)
	}, nil
}
