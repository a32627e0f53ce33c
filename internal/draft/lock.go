package draft

import (
	"github.com/mparedes/draftroom/internal/domain"
)

// applyToggleLock flips the draft-wide lock. Two states, Unlocked and
// Locked, each reachable only through this transition; there is no
// terminal state. LockedBy/LockedAt are stamped together on lock and
// cleared together on unlock.
func applyToggleLock(d *domain.Draft, m domain.ToggleLock) (domain.Event, error) {
	p, err := editor(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}

	if d.IsLocked {
		d.IsLocked = false
		d.LockedBy = ""
		d.LockedAt = nil
		touch(p)
		return domain.Event{Kind: domain.EventPlanUnlocked, Actor: m.UserID}, nil
	}

	if len(d.Stops) == 0 {
		return domain.Event{}, domain.ErrEmptyDraft
	}

	at := m.At.UTC()
	d.IsLocked = true
	d.LockedBy = m.UserID
	d.LockedAt = &at
	touch(p)
	return domain.Event{Kind: domain.EventPlanLocked, Actor: m.UserID}, nil
}
