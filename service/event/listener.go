package event

import (
	"context"
	"log"
)

// Listener consumes events from a publisher's queue on a background goroutine
// and hands them to a handler function.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	cancel    context.CancelFunc
}

// NewListener creates a listener; call Start to begin consumption.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{publisher: publisher, handler: handler}
}

// Start begins consuming events until Stop is called.
func (l *Listener[T]) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go func() {
		for {
			event, err := l.publisher.Consume(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("error consuming event: %v", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}

// Stop terminates the consumption loop.
func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
