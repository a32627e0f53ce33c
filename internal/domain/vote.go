package domain

import "github.com/google/uuid"

// VoteType identifies which kind of itinerary change a vote proposes.
type VoteType string

const (
	VoteMoveStop   VoteType = "move_stop"
	VoteAddStop    VoteType = "add_stop"
	VoteRemoveStop VoteType = "remove_stop"
)

// Valid reports whether t is one of the known vote types.
func (t VoteType) Valid() bool {
	switch t {
	case VoteMoveStop, VoteAddStop, VoteRemoveStop:
		return true
	}
	return false
}

// Vote is one proposed itinerary change and its affirmation tally.
// Votes holds the user ids that have affirmed, in cast order, each at most
// once. TotalParticipants is a snapshot of the active presence count at
// proposal time and is the denominator for "N of M votes" displays.
//
// Reaching quorum does not apply the underlying stop mutation; voting is
// advisory and a host still performs the actual change through the stop
// editor. Callers that want auto-apply can watch EventVoteCast and compare
// Affirmed against TotalParticipants.
type Vote struct {
	ID                uuid.UUID `json:"id"`
	Type              VoteType  `json:"type"`
	ProposedBy        string    `json:"proposedBy"`
	StopID            uuid.UUID `json:"stopId"`
	Votes             []string  `json:"votes"`
	TotalParticipants int       `json:"totalParticipants"`
	Description       string    `json:"description,omitempty"`
}

// HasVoted reports whether userID has already affirmed this vote.
func (v *Vote) HasVoted(userID string) bool {
	for _, u := range v.Votes {
		if u == userID {
			return true
		}
	}
	return false
}

// Affirmed returns the number of affirmations cast so far.
func (v *Vote) Affirmed() int { return len(v.Votes) }

// Quorum reports whether every snapshotted participant has affirmed.
func (v *Vote) Quorum() bool {
	return v.TotalParticipants > 0 && len(v.Votes) >= v.TotalParticipants
}
