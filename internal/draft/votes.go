package draft

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/mparedes/draftroom/internal/domain"
)

// Voting is advisory: a vote surfaces a consensus indicator ("3 of 5") but
// never gates or triggers the underlying stop mutation. Reaching quorum is
// reported through the vote_cast event counts; whoever listens may choose
// to act on it. Any participant — guests included — may propose and cast.

// applyProposeVote creates a vote with the affirmation set empty and the
// denominator snapshotted from the current active presence count.
func applyProposeVote(d *domain.Draft, m domain.ProposeVote) (domain.Event, error) {
	p, err := participant(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	if m.VoteID == uuid.Nil {
		return domain.Event{}, fmt.Errorf("%w: vote id is required", domain.ErrValidation)
	}
	if d.VoteIndex(m.VoteID) >= 0 {
		return domain.Event{}, fmt.Errorf("%w: vote %s already exists", domain.ErrValidation, m.VoteID)
	}
	if !m.Type.Valid() {
		return domain.Event{}, fmt.Errorf("%w: unknown vote type %q", domain.ErrValidation, m.Type)
	}
	if d.StopByID(m.StopID) == nil {
		return domain.Event{}, fmt.Errorf("%w: stop %s", domain.ErrNotFound, m.StopID)
	}

	d.Votes = append(d.Votes, domain.Vote{
		ID:                m.VoteID,
		Type:              m.Type,
		ProposedBy:        m.UserID,
		StopID:            m.StopID,
		Votes:             []string{},
		TotalParticipants: d.ActiveParticipants(),
		Description:       m.Description,
	})
	touch(p)
	return domain.Event{Kind: domain.EventVoteProposed, Actor: m.UserID, VoteID: m.VoteID, StopID: m.StopID}, nil
}

// applyCastVote adds the participant to the affirmation set. Re-casting by
// the same participant is a no-op, not an error.
func applyCastVote(d *domain.Draft, m domain.CastVote) (domain.Event, error) {
	p, err := participant(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	idx := d.VoteIndex(m.VoteID)
	if idx < 0 {
		return domain.Event{}, fmt.Errorf("%w: vote %s", domain.ErrNotFound, m.VoteID)
	}

	v := &d.Votes[idx]
	if v.HasVoted(m.UserID) {
		touch(p)
		return domain.Event{}, nil
	}
	v.Votes = append(v.Votes, m.UserID)
	touch(p)
	return domain.Event{
		Kind:     domain.EventVoteCast,
		Actor:    m.UserID,
		VoteID:   v.ID,
		StopID:   v.StopID,
		Affirmed: v.Affirmed(),
		Total:    v.TotalParticipants,
	}, nil
}

// applyDismissVote removes the vote outright. The proposer may withdraw at
// any point; anyone else must have cast on it first.
func applyDismissVote(d *domain.Draft, m domain.DismissVote) (domain.Event, error) {
	p, err := participant(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	idx := d.VoteIndex(m.VoteID)
	if idx < 0 {
		return domain.Event{}, fmt.Errorf("%w: vote %s", domain.ErrNotFound, m.VoteID)
	}

	v := d.Votes[idx]
	if v.ProposedBy != m.UserID && !v.HasVoted(m.UserID) {
		return domain.Event{}, fmt.Errorf("%w: only the proposer or a voter may dismiss", domain.ErrPermission)
	}
	d.Votes = slices.Delete(d.Votes, idx, idx+1)
	touch(p)
	return domain.Event{Kind: domain.EventVoteDismissed, Actor: m.UserID, VoteID: m.VoteID, StopID: v.StopID}, nil
}
