package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	ID string
}

func TestQueue_PublishConsume(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[payload](DefaultConfig())

	assert.NoError(t, queue.Publish(ctx, &payload{ID: "1"}))
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "2"}))
	assert.Equal(t, 2, queue.Size())

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "1", msg.T().ID)
	assert.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack())
}

func TestQueue_ConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[payload](Config{
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		DeadLetter: true,
	})
	assert.NoError(t, queue.Publish(ctx, &payload{ID: "1"}))

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, msg.Nack(fmt.Errorf("transient")))

	// The retry shows up after the delay.
	retryCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	retry, err := queue.Consume(retryCtx)
	assert.NoError(t, err)
	assert.Equal(t, "1", retry.T().ID)

	// Exhausting retries moves the message to the dead letter queue.
	assert.NoError(t, retry.Nack(fmt.Errorf("still failing")))
	assert.Eventually(t, func() bool {
		return queue.DLQSize() == 1
	}, time.Second, 5*time.Millisecond)
}
