// Package draft implements the mutation engine for a planning draft.
// Every transition — local or remote — enters through Apply, which
// dispatches to the lock controller, presence tracker, stop editor, or
// voting engine. Functions here are pure and synchronous: they validate,
// mutate the aggregate in place, and return the outbound event. On any
// error the draft is left exactly as it was.
package draft

import (
	"fmt"
	"time"

	"github.com/mparedes/draftroom/internal/domain"
)

// Apply executes one mutation against the draft and returns the event to
// announce. A zero event with a nil error means the mutation was a valid
// no-op (e.g. reordering a stop onto itself) and nothing should be
// broadcast. Business-rule rejections come back as wrapped sentinel errors
// (domain.ErrLocked, domain.ErrPermission, ...) and never change state.
func Apply(d *domain.Draft, m domain.Mutation) (domain.Event, error) {
	ev, err := apply(d, m)
	if err != nil {
		return domain.Event{}, fmt.Errorf("draft.Apply: %s: %w", m.Op(), err)
	}
	return ev, nil
}

func apply(d *domain.Draft, m domain.Mutation) (domain.Event, error) {
	switch m := m.(type) {
	case domain.Join:
		return applyJoin(d, m)
	case domain.SetEditing:
		return applySetEditing(d, m)
	case domain.ClearEditing:
		return applyClearEditing(d, m)
	case domain.MarkInactive:
		return applyMarkInactive(d, m)
	case domain.ToggleLock:
		return applyToggleLock(d, m)
	case domain.AddStop:
		return applyAddStop(d, m)
	case domain.AddVenueStop:
		return applyAddVenueStop(d, m)
	case domain.UpdateStopField:
		return applyUpdateStopField(d, m)
	case domain.DeleteStop:
		return applyDeleteStop(d, m)
	case domain.RestoreStop:
		return applyRestoreStop(d, m)
	case domain.ReorderStops:
		return applyReorderStops(d, m)
	case domain.ProposeVote:
		return applyProposeVote(d, m)
	case domain.CastVote:
		return applyCastVote(d, m)
	case domain.DismissVote:
		return applyDismissVote(d, m)
	}
	return domain.Event{}, fmt.Errorf("%w: unhandled mutation type %T", domain.ErrValidation, m)
}

// participant resolves the acting participant or rejects the mutation.
// Acting on a draft you never joined is a permission error, not a lookup
// miss: the actor is asserting authority it was never granted.
func participant(d *domain.Draft, userID string) (*domain.Presence, error) {
	p := d.PresenceByUser(userID)
	if p == nil {
		return nil, fmt.Errorf("%w: unknown participant %q", domain.ErrPermission, userID)
	}
	return p, nil
}

// editor resolves the acting participant and requires direct edit
// authority (host or co-planner). Guests may only suggest via votes.
func editor(d *domain.Draft, userID string) (*domain.Presence, error) {
	p, err := participant(d, userID)
	if err != nil {
		return nil, err
	}
	if !p.Role.CanEdit() {
		return nil, fmt.Errorf("%w: role %q cannot edit", domain.ErrPermission, p.Role)
	}
	return p, nil
}

// unlocked rejects stop editor and voting engine mutations while the draft
// is locked. ToggleLock itself and presence operations bypass this gate.
func unlocked(d *domain.Draft) error {
	if d.IsLocked {
		return domain.ErrLocked
	}
	return nil
}

// touch records observed activity for the participant.
func touch(p *domain.Presence) {
	p.IsActive = true
	p.LastSeen = time.Now().UTC()
}
