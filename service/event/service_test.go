package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gatekit/gatekit/model/proposal"
)

func TestService_typedPublishAndListen(t *testing.T) {
	svc, err := New("memory")
	assert.NoError(t, err)

	var mu sync.Mutex
	var received []*Event[proposal.Event]
	err = SetListenerOf[proposal.Event](svc, func(e *Event[proposal.Event]) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})
	assert.NoError(t, err)

	publisher, err := PublisherOf[proposal.Event](svc)
	assert.NoError(t, err)

	payload := proposal.Event{Kind: proposal.EventApproved, ProposalID: "p1"}
	err = publisher.Publish(context.Background(), NewEvent(&Context{ProposalID: "p1", EventType: string(proposal.EventApproved)}, payload))
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "p1", received[0].Data.ProposalID)
	assert.Equal(t, proposal.EventApproved, received[0].Data.Kind)
	mu.Unlock()
}

func TestService_catchAllMirror(t *testing.T) {
	svc, err := New("memory")
	assert.NoError(t, err)

	var mu sync.Mutex
	var seen int
	svc.SetListener(func(*Event[any]) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	publisher, err := PublisherOf[proposal.Event](svc)
	assert.NoError(t, err)
	err = publisher.Publish(context.Background(), NewEvent(&Context{EventType: "x"}, proposal.Event{}))
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen == 1
	}, time.Second, 5*time.Millisecond)
}

func TestNew_rejectsUnknownVendor(t *testing.T) {
	_, err := New("carrier-pigeon")
	assert.Error(t, err)
}
