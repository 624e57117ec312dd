// Package event fans typed engine events out to subscribers via the abstract
// messaging queue, so observability layers can follow proposal and mission
// activity without polling the stores.
package event

import (
	"time"

	"github.com/gatekit/gatekit/internal/clock"
)

// Context carries the correlation identifiers of an emitted event.
type Context struct {
	ProposalID string `json:"proposalId,omitempty"`
	RunID      string `json:"runId,omitempty"`
	Checkpoint string `json:"checkpoint,omitempty"`
	EventType  string `json:"eventType"`
}

// Event is the generic envelope published on event queues.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event envelope for the supplied payload.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
