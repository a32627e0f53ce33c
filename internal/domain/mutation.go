package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mutation is the tagged union of every valid draft transition. Local user
// commands and remote envelopes both decode to a Mutation and flow through
// the same apply pipeline, so there is exactly one code path that can
// produce a draft state change regardless of origin.
//
// Mutations carry every non-deterministic input (generated ids, timestamps)
// so that applying the same mutation on two replicas yields the same state.
type Mutation interface {
	// Op returns the mutation's wire tag.
	Op() string
}

// Wire tags, one per mutation.
const (
	OpJoin            = "join"
	OpSetEditing      = "set_editing"
	OpClearEditing    = "clear_editing"
	OpMarkInactive    = "mark_inactive"
	OpToggleLock      = "toggle_lock"
	OpAddStop         = "add_stop"
	OpAddVenueStop    = "add_venue_stop"
	OpUpdateStopField = "update_stop_field"
	OpDeleteStop      = "delete_stop"
	OpRestoreStop     = "restore_stop"
	OpReorderStops    = "reorder_stops"
	OpProposeVote     = "propose_vote"
	OpCastVote        = "cast_vote"
	OpDismissVote     = "dismiss_vote"
)

// Join adds or reactivates a participant's presence entry.
type Join struct {
	Participant Presence `json:"participant"`
}

func (Join) Op() string { return OpJoin }

// SetEditing records a participant's advisory claim on one stop field,
// replacing any prior claim by the same participant.
type SetEditing struct {
	UserID string    `json:"userId"`
	StopID uuid.UUID `json:"stopId"`
	Field  string    `json:"field"`
}

func (SetEditing) Op() string { return OpSetEditing }

// ClearEditing removes the participant's advisory claim.
type ClearEditing struct {
	UserID string `json:"userId"`
}

func (ClearEditing) Op() string { return OpClearEditing }

// MarkInactive flags a participant as away without removing their entry.
type MarkInactive struct {
	UserID string `json:"userId"`
}

func (MarkInactive) Op() string { return OpMarkInactive }

// ToggleLock flips the draft-wide lock. At is stamped by the issuing
// session so all replicas record the same LockedAt.
type ToggleLock struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

func (ToggleLock) Op() string { return OpToggleLock }

// AddStop appends a stop to the itinerary. The stop id is assigned by the
// issuing session; Order is ignored and recomputed on apply.
type AddStop struct {
	UserID string `json:"userId"`
	Stop   Stop   `json:"stop"`
}

func (AddStop) Op() string { return OpAddStop }

// AddVenueStop appends a stop prefilled from a resolved venue record.
type AddVenueStop struct {
	UserID string    `json:"userId"`
	StopID uuid.UUID `json:"stopId"`
	Venue  Venue     `json:"venue"`
}

func (AddVenueStop) Op() string { return OpAddVenueStop }

// UpdateStopField replaces a single field on the target stop.
type UpdateStopField struct {
	UserID string
	StopID uuid.UUID
	Field  StopField
}

func (UpdateStopField) Op() string { return OpUpdateStopField }

// DeleteStop removes a stop; remaining stops are renumbered densely.
type DeleteStop struct {
	UserID string    `json:"userId"`
	StopID uuid.UUID `json:"stopId"`
}

func (DeleteStop) Op() string { return OpDeleteStop }

// RestoreStop re-inserts a previously deleted stop snapshot at its original
// order. The undo timer belongs to the caller; this just re-applies.
type RestoreStop struct {
	UserID string `json:"userId"`
	Stop   Stop   `json:"stop"`
	Order  int    `json:"order"`
}

func (RestoreStop) Op() string { return OpRestoreStop }

// ReorderStops moves the dragged stop to the target stop's position.
// Dragged == target is a no-op.
type ReorderStops struct {
	UserID    string    `json:"userId"`
	DraggedID uuid.UUID `json:"draggedId"`
	TargetID  uuid.UUID `json:"targetId"`
}

func (ReorderStops) Op() string { return OpReorderStops }

// ProposeVote opens a consensus proposal on one stop. The vote id is
// assigned by the issuing session.
type ProposeVote struct {
	UserID      string    `json:"userId"`
	VoteID      uuid.UUID `json:"voteId"`
	Type        VoteType  `json:"type"`
	StopID      uuid.UUID `json:"stopId"`
	Description string    `json:"description,omitempty"`
}

func (ProposeVote) Op() string { return OpProposeVote }

// CastVote adds the participant to a vote's affirmation set. Idempotent.
type CastVote struct {
	UserID string    `json:"userId"`
	VoteID uuid.UUID `json:"voteId"`
}

func (CastVote) Op() string { return OpCastVote }

// DismissVote removes a vote outright. Allowed for the proposer or for any
// participant who has already cast on it.
type DismissVote struct {
	UserID string    `json:"userId"`
	VoteID uuid.UUID `json:"voteId"`
}

func (DismissVote) Op() string { return OpDismissVote }

// MarshalJSON encodes the field union as {"field": name, "value": v},
// matching the command endpoint's field/value shape.
func (m UpdateStopField) MarshalJSON() ([]byte, error) {
	if m.Field == nil {
		return nil, fmt.Errorf("domain.UpdateStopField: nil field")
	}
	var value any
	switch f := m.Field.(type) {
	case VenueField:
		value = string(f)
	case TimeField:
		value = string(f)
	case NotesField:
		value = string(f)
	case DurationField:
		value = int(f)
	default:
		return nil, fmt.Errorf("domain.UpdateStopField: unsupported field type %T", m.Field)
	}
	return json.Marshal(struct {
		UserID string    `json:"userId"`
		StopID uuid.UUID `json:"stopId"`
		Field  string    `json:"field"`
		Value  any       `json:"value"`
	}{m.UserID, m.StopID, m.Field.Name(), value})
}

// UnmarshalJSON decodes the field union, tolerating string-typed durations
// from loosely typed clients (coerced per ParseDurationMinutes).
func (m *UpdateStopField) UnmarshalJSON(b []byte) error {
	var raw struct {
		UserID string          `json:"userId"`
		StopID uuid.UUID       `json:"stopId"`
		Field  string          `json:"field"`
		Value  json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("domain.UpdateStopField: %w", err)
	}
	m.UserID = raw.UserID
	m.StopID = raw.StopID

	switch raw.Field {
	case FieldDuration:
		var n int
		if err := json.Unmarshal(raw.Value, &n); err != nil {
			var s string
			if err := json.Unmarshal(raw.Value, &s); err != nil {
				n = 0
			} else {
				n = ParseDurationMinutes(s)
			}
		}
		if n < 0 {
			n = 0
		}
		m.Field = DurationField(n)
	case FieldVenue, FieldTime, FieldNotes:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return fmt.Errorf("domain.UpdateStopField: field %q: %w", raw.Field, err)
		}
		f, err := ParseStopField(raw.Field, s)
		if err != nil {
			return err
		}
		m.Field = f
	default:
		return fmt.Errorf("%w: unknown stop field %q", ErrValidation, raw.Field)
	}
	return nil
}

// wireMutation is the transport framing: the op tag plus the op's payload.
type wireMutation struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

// MarshalMutation encodes a mutation with its op tag for transport.
func MarshalMutation(m Mutation) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("domain.MarshalMutation: %s: %w", m.Op(), err)
	}
	return json.Marshal(wireMutation{Op: m.Op(), Data: data})
}

// UnmarshalMutation decodes a transport payload back into its concrete
// mutation. Returns ErrValidation for an unknown op tag.
func UnmarshalMutation(b []byte) (Mutation, error) {
	var w wireMutation
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("domain.UnmarshalMutation: %w", err)
	}
	switch w.Op {
	case OpJoin:
		return decodeMutation[Join](w.Data)
	case OpSetEditing:
		return decodeMutation[SetEditing](w.Data)
	case OpClearEditing:
		return decodeMutation[ClearEditing](w.Data)
	case OpMarkInactive:
		return decodeMutation[MarkInactive](w.Data)
	case OpToggleLock:
		return decodeMutation[ToggleLock](w.Data)
	case OpAddStop:
		return decodeMutation[AddStop](w.Data)
	case OpAddVenueStop:
		return decodeMutation[AddVenueStop](w.Data)
	case OpUpdateStopField:
		return decodeMutation[UpdateStopField](w.Data)
	case OpDeleteStop:
		return decodeMutation[DeleteStop](w.Data)
	case OpRestoreStop:
		return decodeMutation[RestoreStop](w.Data)
	case OpReorderStops:
		return decodeMutation[ReorderStops](w.Data)
	case OpProposeVote:
		return decodeMutation[ProposeVote](w.Data)
	case OpCastVote:
		return decodeMutation[CastVote](w.Data)
	case OpDismissVote:
		return decodeMutation[DismissVote](w.Data)
	}
	return nil, fmt.Errorf("%w: unknown mutation op %q", ErrValidation, w.Op)
}

func decodeMutation[M Mutation](data json.RawMessage) (Mutation, error) {
	var m M
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("domain.UnmarshalMutation: %w", err)
	}
	return m, nil
}
