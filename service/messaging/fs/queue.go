package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/toolgate/internal/clock"
	"github.com/viant/toolgate/internal/idgen"
	"github.com/viant/toolgate/service/messaging"
)

// MessageState tracks a message through the pending/processing/failed
// directories that back the queue.
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
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

// Ack removes the message from the processing directory. Successfully
// processed messages leave no trace - the task/approval stores are the
// durable record, not the queue.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return m.queue.remove(context.Background(), m.ID)
}

// Nack records the failure and either schedules a retry or parks the message
// in the dead-letter directory once the retry budget is spent.
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
	return m.queue.fail(context.Background(), m)
}

// Config holds filesystem queue settings.
type Config struct {
	BasePath   string        // base directory for queue documents
	MaxRetries int           // retry budget before dead-lettering
	RetryDelay time.Duration // minimum delay between retries
}

// DefaultConfig returns the standard filesystem queue configuration.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/toolgate/queue",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Queue implements messaging.Queue on top of an afs location, so a queue can
// live on a local filesystem or any afs-supported backend and survive process
// restarts.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a filesystem-backed queue rooted at config.BasePath.
func NewQueue[T any](fService afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fService,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.failedDir, q.dlqDir} {
		if exists, _ := fService.Exists(ctx, dir); !exists {
			if err := fService.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish adds a new message to the pending directory.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := clock.Now()
	message := &Message[T]{
		ID:        idgen.New(),
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
	return q.upload(ctx, path.Join(q.pendingDir, q.filename(message.ID)), data)
}

// Consume retrieves a single message, preferring failed messages eligible for
// retry, then the oldest pending one. It returns (nil, nil) when the queue is
// empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	retried, err := q.takeFrom(ctx, q.failedDir, true)
	if err != nil {
		return nil, err
	}
	if retried != nil {
		return retried, nil
	}
	message, err := q.takeFrom(ctx, q.pendingDir, false)
	if err != nil || message == nil {
		// return an untyped nil so callers can compare against nil
		return nil, err
	}
	return message, nil
}

// takeFrom claims the oldest message of a directory by moving it into the
// processing directory. Claiming happens under the queue lock so concurrent
// consumers never take the same document.
func (q *Queue[T]) takeFrom(ctx context.Context, dir string, retrying bool) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var candidates []storage.Object
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			candidates = append(candidates, object)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	object := candidates[0]

	message, err := q.read(ctx, object.URL())
	if err != nil {
		_ = q.fs.Move(ctx, object.URL(), path.Join(q.dlqDir, fmt.Sprintf("invalid-%s", object.Name())))
		return nil, err
	}
	if retrying {
		if message.Retries > q.config.MaxRetries {
			if err := q.fs.Move(ctx, object.URL(), path.Join(q.dlqDir, object.Name())); err != nil {
				return nil, fmt.Errorf("failed to dead-letter message: %w", err)
			}
			return nil, nil
		}
		if clock.Now().Sub(message.UpdatedAt) < q.config.RetryDelay {
			return nil, nil
		}
	}

	message.State = MessageStateProcessing
	message.UpdatedAt = clock.Now()
	message.queue = q
	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := q.upload(ctx, path.Join(q.processingDir, object.Name()), data); err != nil {
		return nil, fmt.Errorf("failed to claim message: %w", err)
	}
	if err := q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete claimed message: %w", err)
	}
	return message, nil
}

// fail moves a message from processing back to failed, or to the dead-letter
// directory when the retry budget is spent.
func (q *Queue[T]) fail(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal failed message: %w", err)
	}
	destDir := q.failedDir
	if m.Retries > q.config.MaxRetries {
		destDir = q.dlqDir
	}
	if err := q.upload(ctx, path.Join(destDir, q.filename(m.ID)), data); err != nil {
		return fmt.Errorf("failed to park message: %w", err)
	}
	return q.removeLocked(ctx, m.ID)
}

// remove deletes a message from the processing directory.
func (q *Queue[T]) remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(ctx, id)
}

func (q *Queue[T]) removeLocked(ctx context.Context, id string) error {
	location := path.Join(q.processingDir, q.filename(id))
	if exists, _ := q.fs.Exists(ctx, location); exists {
		if err := q.fs.Delete(ctx, location); err != nil {
			return fmt.Errorf("failed to delete message from processing: %w", err)
		}
	}
	return nil
}

func (q *Queue[T]) filename(id string) string {
	return fmt.Sprintf("%s.json", id)
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

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
