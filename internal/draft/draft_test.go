package draft_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mparedes/draftroom/internal/domain"
	"github.com/mparedes/draftroom/internal/draft"
)

// ---- shared helpers --------------------------------------------------------

func host(id string) domain.Presence {
	return domain.Presence{UserID: id, Name: "Host " + id, Role: domain.RoleHost}
}

func coplanner(id string) domain.Presence {
	return domain.Presence{UserID: id, Name: "Planner " + id, Role: domain.RoleCoPlanner}
}

func guest(id string) domain.Presence {
	return domain.Presence{UserID: id, Name: "Guest " + id, Role: domain.RoleGuest}
}

// newDraft builds a draft with the given participants already joined.
func newDraft(t *testing.T, participants ...domain.Presence) *domain.Draft {
	t.Helper()
	d := domain.NewDraft("draft-1")
	for _, p := range participants {
		_, err := draft.Apply(d, domain.Join{Participant: p})
		require.NoError(t, err)
	}
	return d
}

// addStop appends a blank stop as userID and returns its id.
func addStop(t *testing.T, d *domain.Draft, userID string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := draft.Apply(d, domain.AddStop{UserID: userID, Stop: domain.Stop{ID: id}})
	require.NoError(t, err)
	return id
}

// assertDenseOrder checks the core invariant: for n stops, the order values
// are exactly {0..n-1} in slice order.
func assertDenseOrder(t *testing.T, stops []domain.Stop) {
	t.Helper()
	for i, s := range stops {
		assert.Equal(t, i, s.Order, "stop at index %d has order %d", i, s.Order)
	}
}
