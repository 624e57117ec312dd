package fs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type payload struct {
	ID string
}

func testConfig() QueueConfig {
	return QueueConfig{
		BaseURL:    fmt.Sprintf("mem://localhost/queue-%d", time.Now().UnixNano()),
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	}
}

func TestNewQueue_requiresBaseURL(t *testing.T) {
	_, err := NewQueue[payload](afs.New(), QueueConfig{})
	assert.Error(t, err)
}

func TestQueue_PublishConsume(t *testing.T) {
	ctx := context.Background()
	queue, err := NewQueue[payload](afs.New(), testConfig())
	assert.NoError(t, err)

	assert.NoError(t, queue.Publish(ctx, &payload{ID: "1"}))
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "2"}))

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "1", msg.T().ID)
	assert.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack())

	next, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "2", next.T().ID)
	assert.NoError(t, next.Ack())

	// Both spools drained.
	empty, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, empty)
}

func TestQueue_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	fsService := afs.New()
	config := testConfig()

	queue, err := NewQueue[payload](fsService, config)
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "1"}))

	reopened, err := NewQueue[payload](fsService, config)
	assert.NoError(t, err)
	msg, err := reopened.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "1", msg.T().ID)
	assert.NoError(t, msg.Ack())
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	queue, err := NewQueue[payload](afs.New(), testConfig())
	assert.NoError(t, err)
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "1"}))

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, msg.Nack(fmt.Errorf("transient")))

	// Failed messages are retried ahead of fresh ones.
	retry, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "1", retry.T().ID)
	claimed, ok := retry.(*Message[payload])
	assert.True(t, ok)
	assert.Equal(t, 1, claimed.Retries)

	// Exhausting the retry budget parks the message in the DLQ.
	assert.NoError(t, retry.Nack(fmt.Errorf("still failing")))
	gone, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, gone)
}
