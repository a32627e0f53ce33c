// Package session hosts live planning sessions. A Session owns one draft
// aggregate and is the only writer to it: local commands and remote
// envelopes both funnel through the draft engine's apply pipeline, so a
// remote mutation can never produce a state a local one could not.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mparedes/draftroom/internal/domain"
	"github.com/mparedes/draftroom/internal/draft"
	"github.com/mparedes/draftroom/internal/realtime"
)

// deletedStop is the undo snapshot captured when a stop is removed.
type deletedStop struct {
	stop  domain.Stop
	order int
}

// Session is one live planning session for a draft. All methods are safe
// for concurrent use; mutations are applied atomically under the session
// mutex (local-first), then published on the channel. Remote envelopes are
// deduplicated by envelope id, so at-least-once delivery cannot corrupt
// the stop order invariant.
type Session struct {
	channel realtime.Channel
	log     *slog.Logger

	mu      sync.Mutex
	state   *domain.Draft
	seen    map[uuid.UUID]struct{}
	deleted map[string]deletedStop // last deletion per user, for undo

	hmu      sync.Mutex
	nextSub  int
	handlers map[int]func(domain.Event)

	unsubscribe func()
}

// New starts a session for the given draft and subscribes it to the
// channel. Callers own the draft value after this call returns an error,
// and must not touch it afterwards on success.
func New(ctx context.Context, d *domain.Draft, channel realtime.Channel, log *slog.Logger) (*Session, error) {
	s := &Session{
		channel:  channel,
		log:      log.With("draft_id", d.ID),
		state:    d,
		seen:     make(map[uuid.UUID]struct{}),
		deleted:  make(map[string]deletedStop),
		handlers: make(map[int]func(domain.Event)),
	}
	unsub, err := channel.Subscribe(ctx, d.ID, s.handleRemote)
	if err != nil {
		return nil, err
	}
	s.unsubscribe = unsub
	return s, nil
}

// Close cancels the channel subscription. The session must not be used
// after Close.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// ID returns the draft id this session serves.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ID
}

// Draft returns a deep copy of the current aggregate.
func (s *Session) Draft() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// OnEvent registers a handler for outbound events (toasts, websocket
// streams) and returns its cancel function. Handlers run on the mutating
// goroutine after the draft lock is released, in registration order.
func (s *Session) OnEvent(fn func(domain.Event)) func() {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.handlers[id] = fn
	return func() {
		s.hmu.Lock()
		defer s.hmu.Unlock()
		delete(s.handlers, id)
	}
}

func (s *Session) emit(ev domain.Event) {
	if ev.Kind == "" {
		return
	}
	s.hmu.Lock()
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domain.Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.handlers[id])
	}
	s.hmu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// do applies a mutation locally, then broadcasts it. before, when set,
// runs under the draft lock ahead of the apply — used to capture undo
// snapshots atomically with the deletion they belong to.
func (s *Session) do(ctx context.Context, origin string, m domain.Mutation, before func(*domain.Draft)) error {
	s.mu.Lock()
	if before != nil {
		before(s.state)
	}
	ev, err := draft.Apply(s.state, m)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	var env *realtime.Envelope
	if ev.Kind != "" {
		payload, merr := domain.MarshalMutation(m)
		if merr != nil {
			// Local state is already updated and stays authoritative; the
			// mutation just cannot be broadcast.
			s.log.Error("marshal mutation", "op", m.Op(), "error", merr)
		} else {
			e := realtime.Envelope{
				ID:       uuid.New(),
				DraftID:  s.state.ID,
				Origin:   origin,
				SentAt:   time.Now().UTC(),
				Mutation: payload,
			}
			s.seen[e.ID] = struct{}{}
			env = &e
		}
	}
	draftID := s.state.ID
	s.mu.Unlock()

	s.emit(ev)

	if env != nil {
		if err := s.channel.Publish(ctx, draftID, *env); err != nil {
			// Local-first: a transport failure never rolls back local state.
			s.log.Warn("publish failed", "op", m.Op(), "error", err)
		}
	}
	return nil
}

// handleRemote applies an envelope received from the channel through the
// same pipeline as local commands, skipping envelopes this session has
// already seen (its own publishes, or transport redelivery).
func (s *Session) handleRemote(env realtime.Envelope) {
	s.mu.Lock()
	if _, ok := s.seen[env.ID]; ok {
		s.mu.Unlock()
		return
	}
	s.seen[env.ID] = struct{}{}

	m, err := domain.UnmarshalMutation(env.Mutation)
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("dropping undecodable remote mutation", "origin", env.Origin, "error", err)
		return
	}
	ev, err := draft.Apply(s.state, m)
	s.mu.Unlock()
	if err != nil {
		// Remote mutations race local ones; a remote edit of a stop that
		// was deleted here is expected, not a fault.
		s.log.Debug("remote mutation rejected", "op", m.Op(), "origin", env.Origin, "error", err)
		return
	}

	s.emit(ev)
	s.emit(domain.Event{Kind: domain.EventRemoteUpdate, Actor: env.Origin, Remote: true})
}

// ---- inbound commands ------------------------------------------------------

// Join adds or reactivates a participant.
func (s *Session) Join(ctx context.Context, p domain.Presence) error {
	return s.do(ctx, p.UserID, domain.Join{Participant: p}, nil)
}

// SetEditing records userID's advisory claim on one stop field.
func (s *Session) SetEditing(ctx context.Context, userID string, stopID uuid.UUID, field string) error {
	return s.do(ctx, userID, domain.SetEditing{UserID: userID, StopID: stopID, Field: field}, nil)
}

// ClearEditing removes userID's advisory claim.
func (s *Session) ClearEditing(ctx context.Context, userID string) error {
	return s.do(ctx, userID, domain.ClearEditing{UserID: userID}, nil)
}

// MarkInactive flags userID as away without removing their presence.
func (s *Session) MarkInactive(ctx context.Context, userID string) error {
	return s.do(ctx, userID, domain.MarkInactive{UserID: userID}, nil)
}

// ToggleLock flips the draft-wide lock.
func (s *Session) ToggleLock(ctx context.Context, userID string) error {
	return s.do(ctx, userID, domain.ToggleLock{UserID: userID, At: time.Now().UTC()}, nil)
}

// AddStop appends a blank stop and returns its id.
func (s *Session) AddStop(ctx context.Context, userID string) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.do(ctx, userID, domain.AddStop{UserID: userID, Stop: domain.Stop{ID: id}}, nil); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// AddVenueStop appends a stop prefilled from a venue record and returns
// the new stop's id.
func (s *Session) AddVenueStop(ctx context.Context, userID string, venue domain.Venue) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.do(ctx, userID, domain.AddVenueStop{UserID: userID, StopID: id, Venue: venue}, nil); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// UpdateStopField replaces one field on the target stop.
func (s *Session) UpdateStopField(ctx context.Context, userID string, stopID uuid.UUID, field domain.StopField) error {
	return s.do(ctx, userID, domain.UpdateStopField{UserID: userID, StopID: stopID, Field: field}, nil)
}

// DeleteStop removes a stop, keeping a per-user snapshot so UndoDelete can
// re-insert it at its original order.
func (s *Session) DeleteStop(ctx context.Context, userID string, stopID uuid.UUID) error {
	var snap *deletedStop
	err := s.do(ctx, userID, domain.DeleteStop{UserID: userID, StopID: stopID}, func(d *domain.Draft) {
		if st := d.StopByID(stopID); st != nil {
			snap = &deletedStop{stop: *st, order: st.Order}
		}
	})
	if err != nil || snap == nil {
		return err
	}
	s.mu.Lock()
	s.deleted[userID] = *snap
	s.mu.Unlock()
	return nil
}

// UndoDelete re-inserts userID's most recently deleted stop at its
// original order. Returns domain.ErrNotFound when there is nothing to
// undo. The undo window (how long the snapshot is offered) belongs to the
// caller; the session keeps only the latest snapshot per user.
func (s *Session) UndoDelete(ctx context.Context, userID string) error {
	s.mu.Lock()
	snap, ok := s.deleted[userID]
	if ok {
		delete(s.deleted, userID)
	}
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	return s.RestoreStop(ctx, userID, snap.stop, snap.order)
}

// RestoreStop re-applies a previously captured stop snapshot.
func (s *Session) RestoreStop(ctx context.Context, userID string, stop domain.Stop, order int) error {
	return s.do(ctx, userID, domain.RestoreStop{UserID: userID, Stop: stop, Order: order}, nil)
}

// ReorderStops moves the dragged stop to the target stop's position.
func (s *Session) ReorderStops(ctx context.Context, userID string, draggedID, targetID uuid.UUID) error {
	return s.do(ctx, userID, domain.ReorderStops{UserID: userID, DraggedID: draggedID, TargetID: targetID}, nil)
}

// ProposeVote opens a consensus proposal and returns the vote id.
func (s *Session) ProposeVote(ctx context.Context, userID string, t domain.VoteType, stopID uuid.UUID, description string) (uuid.UUID, error) {
	id := uuid.New()
	m := domain.ProposeVote{UserID: userID, VoteID: id, Type: t, StopID: stopID, Description: description}
	if err := s.do(ctx, userID, m, nil); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// CastVote adds userID to the vote's affirmation set. Idempotent.
func (s *Session) CastVote(ctx context.Context, userID string, voteID uuid.UUID) error {
	return s.do(ctx, userID, domain.CastVote{UserID: userID, VoteID: voteID}, nil)
}

// DismissVote removes the vote outright.
func (s *Session) DismissVote(ctx context.Context, userID string, voteID uuid.UUID) error {
	return s.do(ctx, userID, domain.DismissVote{UserID: userID, VoteID: voteID}, nil)
}
