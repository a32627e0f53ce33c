package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mparedes/draftroom/internal/domain"
	"github.com/mparedes/draftroom/internal/realtime"
)

// Store is the durable snapshot persistence a Manager uses to resume
// drafts across restarts. Defined here, in the consumer package, so the
// manager can be unit-tested with a hand-written double.
type Store interface {
	// Save upserts the draft snapshot.
	Save(ctx context.Context, d domain.Draft) error

	// Load returns the stored snapshot for id.
	// Returns domain.ErrNotFound when none exists.
	Load(ctx context.Context, id string) (domain.Draft, error)

	// Delete removes the stored snapshot for id.
	// Returns domain.ErrNotFound when none exists.
	Delete(ctx context.Context, id string) error
}

// Manager is the in-process registry of live sessions, one per draft id.
// Opening a draft loads its stored snapshot when one exists; otherwise the
// session starts from an empty draft.
type Manager struct {
	channel realtime.Channel
	store   Store
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs a Manager. store may be nil, in which case drafts
// live only in memory for the process lifetime.
func NewManager(channel realtime.Channel, store Store, log *slog.Logger) *Manager {
	return &Manager{
		channel:  channel,
		store:    store,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Open returns the live session for draftID, starting one if needed.
func (m *Manager) Open(ctx context.Context, draftID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[draftID]; ok {
		return s, nil
	}

	d := domain.NewDraft(draftID)
	if m.store != nil {
		stored, err := m.store.Load(ctx, draftID)
		switch {
		case err == nil:
			d = &stored
		case errors.Is(err, domain.ErrNotFound):
			// fresh draft
		default:
			return nil, fmt.Errorf("session.Manager.Open: %w", err)
		}
	}

	s, err := New(ctx, d, m.channel, m.log)
	if err != nil {
		return nil, fmt.Errorf("session.Manager.Open: %w", err)
	}
	m.sessions[draftID] = s
	return s, nil
}

// Get returns the live session for draftID without starting one.
func (m *Manager) Get(draftID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[draftID]
	return s, ok
}

// Save persists the current snapshot of a live session.
// Returns domain.ErrNotFound when the session is not open.
func (m *Manager) Save(ctx context.Context, draftID string) error {
	if m.store == nil {
		return nil
	}
	s, ok := m.Get(draftID)
	if !ok {
		return fmt.Errorf("session.Manager.Save: %w: draft %q", domain.ErrNotFound, draftID)
	}
	if err := m.store.Save(ctx, s.Draft()); err != nil {
		return fmt.Errorf("session.Manager.Save: %w", err)
	}
	return nil
}

// Drop closes the live session (if any) and removes the stored snapshot.
// Used when a planning session is abandoned.
func (m *Manager) Drop(ctx context.Context, draftID string) error {
	m.mu.Lock()
	if s, ok := m.sessions[draftID]; ok {
		s.Close()
		delete(m.sessions, draftID)
	}
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	if err := m.store.Delete(ctx, draftID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("session.Manager.Drop: %w", err)
	}
	return nil
}

// Close shuts down every live session. Snapshots are saved first when a
// store is configured, so an orderly shutdown loses nothing.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if m.store != nil {
			if err := m.store.Save(ctx, s.Draft()); err != nil {
				m.log.Warn("saving draft on shutdown", "draft_id", s.ID(), "error", err)
			}
		}
		s.Close()
	}
}
