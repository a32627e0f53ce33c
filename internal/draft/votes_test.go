package draft_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mparedes/draftroom/internal/domain"
	"github.com/mparedes/draftroom/internal/draft"
)

// proposeVote opens a move_stop vote on stopID as userID and returns its id.
func proposeVote(t *testing.T, d *domain.Draft, userID string, stopID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := draft.Apply(d, domain.ProposeVote{
		UserID: userID,
		VoteID: id,
		Type:   domain.VoteMoveStop,
		StopID: stopID,
	})
	require.NoError(t, err)
	return id
}

// ---- proposing -------------------------------------------------------------

func TestApply_ProposeVote_snapshotsActiveCount(t *testing.T) {
	d := newDraft(t, host("u1"), coplanner("u2"), guest("g1"))
	stopID := addStop(t, d, "u1")
	_, err := draft.Apply(d, domain.MarkInactive{UserID: "u2"})
	require.NoError(t, err)

	voteID := proposeVote(t, d, "g1", stopID)

	require.Len(t, d.Votes, 1)
	v := d.Votes[0]
	assert.Equal(t, voteID, v.ID)
	assert.Equal(t, "g1", v.ProposedBy)
	assert.Equal(t, 2, v.TotalParticipants)
	assert.Empty(t, v.Votes)
}

func TestApply_ProposeVote_denominatorFixedAfterJoin(t *testing.T) {
	// New participants arriving later must not move an open vote's total.
	d := newDraft(t, host("u1"))
	stopID := addStop(t, d, "u1")
	proposeVote(t, d, "u1", stopID)

	_, err := draft.Apply(d, domain.Join{Participant: guest("g1")})
	require.NoError(t, err)

	assert.Equal(t, 1, d.Votes[0].TotalParticipants)
}

func TestApply_ProposeVote_guestAllowed(t *testing.T) {
	d := newDraft(t, host("u1"), guest("g1"))
	stopID := addStop(t, d, "u1")

	proposeVote(t, d, "g1", stopID)
	require.Len(t, d.Votes, 1)
}

func TestApply_ProposeVote_rejectsUnknownType(t *testing.T) {
	d := newDraft(t, host("u1"))
	stopID := addStop(t, d, "u1")

	_, err := draft.Apply(d, domain.ProposeVote{
		UserID: "u1", VoteID: uuid.New(), Type: "veto_stop", StopID: stopID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApply_ProposeVote_rejectsUnknownStop(t *testing.T) {
	d := newDraft(t, host("u1"))

	_, err := draft.Apply(d, domain.ProposeVote{
		UserID: "u1", VoteID: uuid.New(), Type: domain.VoteRemoveStop, StopID: uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- casting ---------------------------------------------------------------

func TestApply_CastVote_countsEachParticipantOnce(t *testing.T) {
	d := newDraft(t, host("u1"), guest("g1"))
	stopID := addStop(t, d, "u1")
	voteID := proposeVote(t, d, "u1", stopID)

	ev, err := draft.Apply(d, domain.CastVote{UserID: "g1", VoteID: voteID})
	require.NoError(t, err)
	assert.Equal(t, domain.EventVoteCast, ev.Kind)
	assert.Equal(t, 1, ev.Affirmed)
	assert.Equal(t, 2, ev.Total)

	// Re-casting is silently absorbed, not an error.
	ev, err = draft.Apply(d, domain.CastVote{UserID: "g1", VoteID: voteID})
	require.NoError(t, err)
	assert.Empty(t, ev.Kind)
	assert.Equal(t, []string{"g1"}, d.Votes[0].Votes)
}

func TestApply_CastVote_reachesQuorum(t *testing.T) {
	d := newDraft(t, host("u1"), coplanner("u2"), guest("g1"))
	stopID := addStop(t, d, "u1")
	voteID := proposeVote(t, d, "u1", stopID)

	for _, u := range []string{"u1", "u2"} {
		_, err := draft.Apply(d, domain.CastVote{UserID: u, VoteID: voteID})
		require.NoError(t, err)
	}
	assert.False(t, d.Votes[0].Quorum())

	_, err := draft.Apply(d, domain.CastVote{UserID: "g1", VoteID: voteID})
	require.NoError(t, err)
	assert.True(t, d.Votes[0].Quorum())
}

func TestApply_CastVote_unknownVote(t *testing.T) {
	d := newDraft(t, host("u1"))

	_, err := draft.Apply(d, domain.CastVote{UserID: "u1", VoteID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- dismissing ------------------------------------------------------------

func TestApply_DismissVote_proposerMayWithdraw(t *testing.T) {
	d := newDraft(t, host("u1"), guest("g1"))
	stopID := addStop(t, d, "u1")
	voteID := proposeVote(t, d, "g1", stopID)

	ev, err := draft.Apply(d, domain.DismissVote{UserID: "g1", VoteID: voteID})
	require.NoError(t, err)

	assert.Equal(t, domain.EventVoteDismissed, ev.Kind)
	assert.Empty(t, d.Votes)
}

func TestApply_DismissVote_voterMayDismiss(t *testing.T) {
	d := newDraft(t, host("u1"), guest("g1"))
	stopID := addStop(t, d, "u1")
	voteID := proposeVote(t, d, "u1", stopID)

	_, err := draft.Apply(d, domain.CastVote{UserID: "g1", VoteID: voteID})
	require.NoError(t, err)

	_, err = draft.Apply(d, domain.DismissVote{UserID: "g1", VoteID: voteID})
	require.NoError(t, err)
	assert.Empty(t, d.Votes)
}

func TestApply_DismissVote_bystanderRejected(t *testing.T) {
	d := newDraft(t, host("u1"), guest("g1"))
	stopID := addStop(t, d, "u1")
	voteID := proposeVote(t, d, "u1", stopID)

	_, err := draft.Apply(d, domain.DismissVote{UserID: "g1", VoteID: voteID})
	assert.ErrorIs(t, err, domain.ErrPermission)
	require.Len(t, d.Votes, 1)
}

// ---- interaction with stop deletion ----------------------------------------

func TestApply_DeleteStop_keepsVotesOnStop(t *testing.T) {
	// Votes survive the stop's deletion so an undo restores the full state.
	d := newDraft(t, host("u1"))
	stopID := addStop(t, d, "u1")
	proposeVote(t, d, "u1", stopID)

	_, err := draft.Apply(d, domain.DeleteStop{UserID: "u1", StopID: stopID})
	require.NoError(t, err)

	require.Len(t, d.Votes, 1)
	assert.Equal(t, stopID, d.Votes[0].StopID)
}
