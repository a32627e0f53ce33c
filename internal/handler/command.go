package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mparedes/draftroom/internal/domain"
	"github.com/mparedes/draftroom/internal/session"
)

// commandRequest is the wire shape of POST /drafts/{draftID}/commands.
// Op selects the operation; the other fields are read per-op. Unknown or
// missing required fields are validation errors, never panics.
type commandRequest struct {
	Op          string           `json:"op"`
	UserID      string           `json:"userId"`
	StopID      *uuid.UUID       `json:"stopId,omitempty"`
	TargetID    *uuid.UUID       `json:"targetId,omitempty"`
	Field       string           `json:"field,omitempty"`
	Value       json.RawMessage  `json:"value,omitempty"`
	VoteID      *uuid.UUID       `json:"voteId,omitempty"`
	Type        string           `json:"type,omitempty"`
	Description string           `json:"description,omitempty"`
	Venue       *domain.Venue    `json:"venue,omitempty"`
	Participant *domain.Presence `json:"participant,omitempty"`
	Stop        *domain.Stop     `json:"stop,omitempty"`
	Order       *int             `json:"order,omitempty"`
}

// commandResponse returns the post-mutation snapshot plus any id the
// operation generated.
type commandResponse struct {
	Draft  domain.Draft `json:"draft"`
	StopID *uuid.UUID   `json:"stopId,omitempty"`
	VoteID *uuid.UUID   `json:"voteId,omitempty"`
}

// command handles POST /drafts/{draftID}/commands.
func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	sess, err := s.manager.Open(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp, err := dispatch(r, sess, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// dispatch maps one command request onto the session's typed surface.
func dispatch(r *http.Request, sess *session.Session, req commandRequest) (commandResponse, error) {
	ctx := r.Context()
	var out commandResponse

	switch req.Op {
	case domain.OpJoin:
		if req.Participant == nil {
			return out, fmt.Errorf("%w: participant is required", domain.ErrValidation)
		}
		if err := sess.Join(ctx, *req.Participant); err != nil {
			return out, err
		}

	case domain.OpSetEditing:
		stopID, err := requireStop(req)
		if err != nil {
			return out, err
		}
		if err := sess.SetEditing(ctx, req.UserID, stopID, req.Field); err != nil {
			return out, err
		}

	case domain.OpClearEditing:
		if err := sess.ClearEditing(ctx, req.UserID); err != nil {
			return out, err
		}

	case domain.OpMarkInactive:
		if err := sess.MarkInactive(ctx, req.UserID); err != nil {
			return out, err
		}

	case domain.OpToggleLock:
		if err := sess.ToggleLock(ctx, req.UserID); err != nil {
			return out, err
		}

	case domain.OpAddStop:
		id, err := sess.AddStop(ctx, req.UserID)
		if err != nil {
			return out, err
		}
		out.StopID = &id

	case domain.OpAddVenueStop:
		if req.Venue == nil {
			return out, fmt.Errorf("%w: venue is required", domain.ErrValidation)
		}
		id, err := sess.AddVenueStop(ctx, req.UserID, *req.Venue)
		if err != nil {
			return out, err
		}
		out.StopID = &id

	case domain.OpUpdateStopField:
		stopID, err := requireStop(req)
		if err != nil {
			return out, err
		}
		field, err := parseFieldValue(req.Field, req.Value)
		if err != nil {
			return out, err
		}
		if err := sess.UpdateStopField(ctx, req.UserID, stopID, field); err != nil {
			return out, err
		}

	case domain.OpDeleteStop:
		stopID, err := requireStop(req)
		if err != nil {
			return out, err
		}
		if err := sess.DeleteStop(ctx, req.UserID, stopID); err != nil {
			return out, err
		}

	case "undo_delete":
		if err := sess.UndoDelete(ctx, req.UserID); err != nil {
			return out, err
		}

	case domain.OpRestoreStop:
		if req.Stop == nil || req.Order == nil {
			return out, fmt.Errorf("%w: stop and order are required", domain.ErrValidation)
		}
		if err := sess.RestoreStop(ctx, req.UserID, *req.Stop, *req.Order); err != nil {
			return out, err
		}

	case domain.OpReorderStops:
		stopID, err := requireStop(req)
		if err != nil {
			return out, err
		}
		if req.TargetID == nil {
			return out, fmt.Errorf("%w: targetId is required", domain.ErrValidation)
		}
		if err := sess.ReorderStops(ctx, req.UserID, stopID, *req.TargetID); err != nil {
			return out, err
		}

	case domain.OpProposeVote:
		stopID, err := requireStop(req)
		if err != nil {
			return out, err
		}
		id, err := sess.ProposeVote(ctx, req.UserID, domain.VoteType(req.Type), stopID, req.Description)
		if err != nil {
			return out, err
		}
		out.VoteID = &id

	case domain.OpCastVote:
		voteID, err := requireVote(req)
		if err != nil {
			return out, err
		}
		if err := sess.CastVote(ctx, req.UserID, voteID); err != nil {
			return out, err
		}

	case domain.OpDismissVote:
		voteID, err := requireVote(req)
		if err != nil {
			return out, err
		}
		if err := sess.DismissVote(ctx, req.UserID, voteID); err != nil {
			return out, err
		}

	default:
		return out, fmt.Errorf("%w: unknown op %q", domain.ErrValidation, req.Op)
	}

	out.Draft = sess.Draft()
	return out, nil
}

func requireStop(req commandRequest) (uuid.UUID, error) {
	if req.StopID == nil {
		return uuid.Nil, fmt.Errorf("%w: stopId is required", domain.ErrValidation)
	}
	return *req.StopID, nil
}

func requireVote(req commandRequest) (uuid.UUID, error) {
	if req.VoteID == nil {
		return uuid.Nil, fmt.Errorf("%w: voteId is required", domain.ErrValidation)
	}
	return *req.VoteID, nil
}

// parseFieldValue decodes the loosely typed field/value pair into the stop
// field union. Durations accept a JSON number or a numeric string and are
// coerced to non-negative minutes.
func parseFieldValue(field string, value json.RawMessage) (domain.StopField, error) {
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: value is required", domain.ErrValidation)
	}
	if field == domain.FieldDuration {
		var n int
		if err := json.Unmarshal(value, &n); err == nil {
			if n < 0 {
				n = 0
			}
			return domain.DurationField(n), nil
		}
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, fmt.Errorf("%w: field %q value must be a string", domain.ErrValidation, field)
	}
	return domain.ParseStopField(field, s)
}
