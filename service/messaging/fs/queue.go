// Package fs provides a filesystem-backed messaging.Queue built on viant/afs.
// Messages survive process restarts; the backing store may be a local
// directory or any storage scheme afs understands.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/service/messaging"
)

// MessageState tracks where a spooled message sits in its lifecycle.
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateFailed     MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue.
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the completed spool.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = clock.Now()
	return m.queue.settle(context.Background(), m, m.queue.completedDir)
}

// Nack records the failure and either respools the message for retry or
// parks it in the dead-letter spool once the retry budget is exhausted.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = clock.Now()
	dest := m.queue.failedDir
	if m.Retries > m.queue.config.MaxRetries {
		dest = m.queue.dlqDir
	}
	return m.queue.settle(context.Background(), m, dest)
}

// QueueConfig holds configuration for the filesystem queue.
type QueueConfig struct {
	BaseURL    string        // base location for queue spools
	MaxRetries int           // maximum number of retry attempts
	RetryDelay time.Duration // delay between retries
}

// DefaultConfig returns a default queue configuration.
func DefaultConfig() QueueConfig {
	return QueueConfig{
		BaseURL:    "/tmp/gatekit/queue",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Queue implements a filesystem-based messaging.Queue.
type Queue[T any] struct {
	fs            afs.Service
	config        QueueConfig
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a filesystem-backed queue rooted at config.BaseURL.
func NewQueue[T any](fs afs.Service, config QueueConfig) (*Queue[T], error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    url.Join(config.BaseURL, "pending"),
		processingDir: url.Join(config.BaseURL, "processing"),
		completedDir:  url.Join(config.BaseURL, "completed"),
		failedDir:     url.Join(config.BaseURL, "failed"),
		dlqDir:        url.Join(config.BaseURL, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.failedDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish spools a new message into the pending directory. Filenames carry a
// nanosecond timestamp prefix so lexical listing order equals arrival order.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := clock.Now()
	message := &Message[T]{
		ID:        fmt.Sprintf("%020d-%s", now.UnixNano(), uuid.New().String()),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
		queue:     q,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return q.upload(ctx, url.Join(q.pendingDir, message.ID+".json"), data)
}

// Consume retrieves the oldest message, preferring failed messages that are
// eligible for retry. It returns (nil, nil) when both spools are empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	if msg, err := q.takeOldest(ctx, q.failedDir); err != nil || msg != nil {
		return orNil(msg, err)
	}
	msg, err := q.takeOldest(ctx, q.pendingDir)
	return orNil(msg, err)
}

// orNil keeps a typed-nil *Message from leaking into the interface value.
func orNil[T any](msg *Message[T], err error) (messaging.Message[T], error) {
	if err != nil || msg == nil {
		return nil, err
	}
	return msg, nil
}

// takeOldest claims the oldest message in dir by moving it into the
// processing spool.
func (q *Queue[T]) takeOldest(ctx context.Context, dir string) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var candidate storage.Object
	for _, obj := range objects {
		if obj.IsDir() || !strings.HasSuffix(obj.Name(), ".json") {
			continue
		}
		if candidate == nil || obj.Name() < candidate.Name() {
			candidate = obj
		}
	}
	if candidate == nil {
		return nil, nil
	}

	message, err := q.read(ctx, candidate.URL())
	if err != nil {
		// Quarantine an undecodable message so it cannot wedge the queue.
		_ = q.fs.Move(ctx, candidate.URL(), url.Join(q.dlqDir, "invalid-"+candidate.Name()))
		return nil, err
	}
	if dir == q.failedDir && message.Retries > q.config.MaxRetries {
		if err := q.fs.Move(ctx, candidate.URL(), url.Join(q.dlqDir, candidate.Name())); err != nil {
			return nil, fmt.Errorf("failed to move message to DLQ: %w", err)
		}
		return nil, nil
	}

	message.State = MessageStateProcessing
	message.UpdatedAt = clock.Now()
	message.queue = q

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claimed message: %w", err)
	}
	if err := q.upload(ctx, url.Join(q.processingDir, candidate.Name()), data); err != nil {
		return nil, fmt.Errorf("failed to move message to processing: %w", err)
	}
	if err := q.fs.Delete(ctx, candidate.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete claimed message: %w", err)
	}
	return message, nil
}

// settle writes the message into dest and removes it from the processing
// spool.
func (q *Queue[T]) settle(ctx context.Context, m *Message[T], dest string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	name := m.ID + ".json"
	if err := q.upload(ctx, url.Join(dest, name), data); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", dest, err)
	}
	processing := url.Join(q.processingDir, name)
	if exists, _ := q.fs.Exists(ctx, processing); exists {
		if err := q.fs.Delete(ctx, processing); err != nil {
			return fmt.Errorf("failed to delete message from processing: %w", err)
		}
	}
	return nil
}

func (q *Queue[T]) upload(ctx context.Context, location string, data []byte) error {
	return q.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) read(ctx context.Context, url string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", url, err)
	}
	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", url, err)
	}
	return &message, nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
