package domain

import "github.com/google/uuid"

// EventKind names an outbound signal consumed by UI/toast collaborators.
type EventKind string

const (
	EventStopAdded           EventKind = "stop_added"
	EventStopUpdated         EventKind = "stop_updated"
	EventStopDeleted         EventKind = "stop_deleted"
	EventStopRestored        EventKind = "stop_restored"
	EventStopsReordered      EventKind = "stops_reordered"
	EventPlanLocked          EventKind = "plan_locked"
	EventPlanUnlocked        EventKind = "plan_unlocked"
	EventParticipantJoined   EventKind = "participant_joined"
	EventParticipantInactive EventKind = "participant_inactive"
	EventEditingClaimed      EventKind = "editing_claimed"
	EventEditingCleared      EventKind = "editing_cleared"
	EventVoteProposed        EventKind = "vote_proposed"
	EventVoteCast            EventKind = "vote_cast"
	EventVoteDismissed       EventKind = "vote_dismissed"
	EventRemoteUpdate        EventKind = "remote_update"
)

// Event is an outbound signal describing a completed draft transition.
// Events never alter state; they feed toasts, presence indicators, and the
// websocket stream. A zero Event (empty Kind) means the mutation was a
// no-op and nothing should be announced or broadcast.
type Event struct {
	Kind     EventKind `json:"kind"`
	Actor    string    `json:"actor,omitempty"`
	StopID   uuid.UUID `json:"stopId"`
	VoteID   uuid.UUID `json:"voteId"`
	Affirmed int       `json:"affirmed,omitempty"` // vote_cast: affirmations so far
	Total    int       `json:"total,omitempty"`    // vote_cast: snapshot denominator
	Remote   bool      `json:"remote,omitempty"`   // true when applied from a remote envelope
}
