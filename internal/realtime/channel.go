// Package realtime defines the synchronization channel through which draft
// mutations are broadcast between planning sessions. Two implementations
// are provided: a Redis pub/sub transport for production and an in-memory
// channel with deterministic synchronous delivery for tests and
// single-process deployments.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope frames one mutation for transport. ID is unique per send so
// consumers can de-duplicate under at-least-once delivery; Origin is the
// user id of the participant whose action produced the mutation.
type Envelope struct {
	ID       uuid.UUID       `json:"id"`
	DraftID  string          `json:"draftId"`
	Origin   string          `json:"origin"`
	SentAt   time.Time       `json:"sentAt"`
	Mutation json.RawMessage `json:"mutation"`
}

// Handler consumes envelopes delivered for a subscribed draft.
type Handler func(Envelope)

// Channel is the transport abstraction between sessions editing the same
// draft. Sessions apply mutations locally first and publish after — never
// broadcast-then-wait. Delivery order across participants is not globally
// causal; concurrent writes resolve by last write wins at the consumer.
type Channel interface {
	// Publish broadcasts an envelope to every subscriber of the draft,
	// which may include the publisher itself.
	Publish(ctx context.Context, draftID string, env Envelope) error

	// Subscribe registers a handler for the draft's envelopes and returns
	// a function that cancels the subscription.
	Subscribe(ctx context.Context, draftID string, h Handler) (func(), error)
}
