package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/mparedes/draftroom/internal/domain"
)

// Presence operations are not gated by the draft lock: joining, claiming,
// and going inactive are visibility signals, not itinerary mutations.
//
// Editing claims are advisory only. The stop editor never hard-blocks a
// field another participant is "editing"; two participants writing the
// same field concurrently resolve by last write wins. If stronger
// guarantees are ever needed the claim would become a lease (claim + TTL +
// renewal) here, not a distributed lock elsewhere.

// applyJoin adds a presence entry, or reactivates the existing one.
// Idempotent per user id; name, avatar, and role are fixed on first join.
func applyJoin(d *domain.Draft, m domain.Join) (domain.Event, error) {
	in := m.Participant
	if strings.TrimSpace(in.UserID) == "" {
		return domain.Event{}, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	if in.Role == "" {
		in.Role = domain.RoleGuest
	}
	if !in.Role.Valid() {
		return domain.Event{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, in.Role)
	}

	if p := d.PresenceByUser(in.UserID); p != nil {
		touch(p)
		return domain.Event{Kind: domain.EventParticipantJoined, Actor: in.UserID}, nil
	}

	in.IsActive = true
	in.LastSeen = time.Now().UTC()
	in.ClearClaim()
	d.Presence = append(d.Presence, in)
	return domain.Event{Kind: domain.EventParticipantJoined, Actor: in.UserID}, nil
}

// applySetEditing records an advisory claim on one (stop, field) pair,
// replacing any prior claim held by the same participant.
func applySetEditing(d *domain.Draft, m domain.SetEditing) (domain.Event, error) {
	p := d.PresenceByUser(m.UserID)
	if p == nil {
		return domain.Event{}, fmt.Errorf("%w: participant %q", domain.ErrNotFound, m.UserID)
	}
	stop := d.StopByID(m.StopID)
	if stop == nil {
		return domain.Event{}, fmt.Errorf("%w: stop %s", domain.ErrNotFound, m.StopID)
	}
	switch m.Field {
	case domain.FieldVenue, domain.FieldTime, domain.FieldDuration, domain.FieldNotes:
	default:
		return domain.Event{}, fmt.Errorf("%w: unknown stop field %q", domain.ErrValidation, m.Field)
	}

	stopID := m.StopID
	p.EditingField = m.Field
	p.EditingStopID = &stopID
	touch(p)
	return domain.Event{Kind: domain.EventEditingClaimed, Actor: m.UserID, StopID: m.StopID}, nil
}

// applyClearEditing removes the participant's claim. Clearing when no
// claim is held is a no-op.
func applyClearEditing(d *domain.Draft, m domain.ClearEditing) (domain.Event, error) {
	p := d.PresenceByUser(m.UserID)
	if p == nil {
		return domain.Event{}, fmt.Errorf("%w: participant %q", domain.ErrNotFound, m.UserID)
	}
	if p.EditingField == "" && p.EditingStopID == nil {
		touch(p)
		return domain.Event{}, nil
	}
	p.ClearClaim()
	touch(p)
	return domain.Event{Kind: domain.EventEditingCleared, Actor: m.UserID}, nil
}

// applyMarkInactive flags the participant as away. Entries are never
// deleted once known — only marked inactive — so rejoining keeps identity.
func applyMarkInactive(d *domain.Draft, m domain.MarkInactive) (domain.Event, error) {
	p := d.PresenceByUser(m.UserID)
	if p == nil {
		return domain.Event{}, fmt.Errorf("%w: participant %q", domain.ErrNotFound, m.UserID)
	}
	if !p.IsActive {
		return domain.Event{}, nil
	}
	p.IsActive = false
	p.ClearClaim()
	p.LastSeen = time.Now().UTC()
	return domain.Event{Kind: domain.EventParticipantInactive, Actor: m.UserID}, nil
}
