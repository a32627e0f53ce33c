// Package domain contains the core data types for the Draftroom planning
// service. This package has zero internal dependencies and is imported by
// every other internal package (draft, session, repo, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Draft is the root aggregate for one planning session: the shared
// itinerary-in-progress plus everything participants layer on top of it
// (presence, edit claims, proposal votes, the draft-wide lock).
//
// Invariants held after every completed mutation:
//   - Stops[i].Order == i for all i (dense 0..n-1 ranking, slice order is
//     the itinerary order).
//   - LockedBy and LockedAt are set together when IsLocked is true and
//     cleared together when it is false.
//   - Each participant appears at most once in Presence; entries are never
//     removed, only marked inactive.
type Draft struct {
	ID       string     `json:"id"`
	IsLocked bool       `json:"isLocked"`
	LockedBy string     `json:"lockedBy,omitempty"`
	LockedAt *time.Time `json:"lockedAt,omitempty"`
	Stops    []Stop     `json:"stops"`
	Votes    []Vote     `json:"votes"`
	Presence []Presence `json:"presence"`
}

// NewDraft returns an empty, unlocked draft for the given session id.
func NewDraft(id string) *Draft {
	return &Draft{
		ID:       id,
		Stops:    []Stop{},
		Votes:    []Vote{},
		Presence: []Presence{},
	}
}

// StopIndex returns the slice index of the stop with the given id, or -1.
func (d *Draft) StopIndex(id uuid.UUID) int {
	for i := range d.Stops {
		if d.Stops[i].ID == id {
			return i
		}
	}
	return -1
}

// StopByID returns the stop with the given id, or nil if absent.
func (d *Draft) StopByID(id uuid.UUID) *Stop {
	if i := d.StopIndex(id); i >= 0 {
		return &d.Stops[i]
	}
	return nil
}

// VoteIndex returns the slice index of the vote with the given id, or -1.
func (d *Draft) VoteIndex(id uuid.UUID) int {
	for i := range d.Votes {
		if d.Votes[i].ID == id {
			return i
		}
	}
	return -1
}

// PresenceByUser returns the presence entry for userID, or nil if the
// participant has never joined this draft.
func (d *Draft) PresenceByUser(userID string) *Presence {
	for i := range d.Presence {
		if d.Presence[i].UserID == userID {
			return &d.Presence[i]
		}
	}
	return nil
}

// ActiveParticipants counts presence entries with IsActive set. Used as the
// denominator snapshot when a vote is proposed.
func (d *Draft) ActiveParticipants() int {
	n := 0
	for i := range d.Presence {
		if d.Presence[i].IsActive {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the draft. Sessions hand copies to callers so
// the aggregate is only ever mutated through the apply pipeline.
func (d *Draft) Clone() Draft {
	out := *d
	out.Stops = append([]Stop(nil), d.Stops...)
	out.Presence = append([]Presence(nil), d.Presence...)
	out.Votes = make([]Vote, len(d.Votes))
	for i, v := range d.Votes {
		out.Votes[i] = v
		out.Votes[i].Votes = append([]string(nil), v.Votes...)
	}
	if d.LockedAt != nil {
		at := *d.LockedAt
		out.LockedAt = &at
	}
	return out
}
