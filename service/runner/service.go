// Package runner implements the execution runtime: a worker pool that takes
// queued tasks, runs their code through a registered engine with the
// capability object as the only effectful surface, enforces the wall-clock
// timeout and classifies the outcome into a terminal task status.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/messaging"
	taskpkg "github.com/viant/toolgate/service/task"
	"github.com/viant/toolgate/tracing"
)

// Config represents runner service configuration.
type Config struct {
	// WorkerCount is the number of workers executing tasks.
	WorkerCount int
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{WorkerCount: 5}
}

// Service executes tasks consumed from the queue.
type Service struct {
	config  Config
	tasks   *taskpkg.Service
	adapter Adapter
	engines *Engines
	queue   messaging.Queue[mtask.Task]

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a runner service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		engines:    NewEngines(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}
	if s.adapter == nil {
		return nil, fmt.Errorf("adapter is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	return s, nil
}

// Engines returns the engine registry so callers can add runtimes.
func (s *Service) Engines() *Engines {
	return s.engines
}

// Start begins the task execution workers.
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// run processes messages from the queue.
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			// fs-backed queues poll; avoid spinning on an empty queue.
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(20 * time.Millisecond):
			}
			continue
		}
		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("worker %d: failed to process message: %v", w.id, pErr)
		}
	}
}

// processMessage executes a single queued task.
func (s *Service) processMessage(ctx context.Context, message messaging.Message[mtask.Task]) error {
	queued := message.T()
	if queued == nil {
		return message.Ack()
	}

	// Reload the record; the queue payload may be stale under redelivery.
	aTask, err := s.tasks.Task(ctx, queued.ID)
	if err != nil {
		return message.Nack(err)
	}
	if aTask.Status.IsTerminal() {
		return message.Ack()
	}
	if aTask, err = s.tasks.MarkRunning(ctx, aTask.ID); err != nil {
		return message.Nack(err)
	}

	s.execute(ctx, aTask)
	return message.Ack()
}

// Execute runs one task to a terminal status in the calling goroutine. It is
// also the entry point for ad-hoc execution without queue delivery.
func (s *Service) Execute(ctx context.Context, aTask *mtask.Task) {
	s.execute(ctx, aTask)
}

func (s *Service) execute(ctx context.Context, aTask *mtask.Task) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("runner.execute %s", aTask.ID), "INTERNAL")
	span.WithAttributes(map[string]string{
		"task.id":      aTask.ID,
		"task.runtime": aTask.RuntimeID,
		"task.timeout": strconv.Itoa(aTask.TimeoutMs),
	})

	value, err := s.run(ctx, aTask)
	status, errMsg := Classify(err, aTask.TimeoutMs)
	tracing.EndSpan(span, err)

	if status == mtask.StatusCompleted && value != nil {
		if _, sErr := s.tasks.SetResult(ctx, aTask.ID, Sanitize(value)); sErr != nil {
			log.Printf("failed to store result for task %v: %v", aTask.ID, sErr)
		}
	}
	exitCode := exitCodeFor(status)
	if _, fErr := s.tasks.MarkFinished(ctx, aTask.ID, status, exitCode, errMsg); fErr != nil {
		log.Printf("failed to finish task %v: %v", aTask.ID, fErr)
	}
}

// run races the engine against the task deadline. The loser is abandoned, not
// killed: a tool call already in flight when the deadline fires may still
// mutate external state after the task is marked timed out.
func (s *Service) run(ctx context.Context, aTask *mtask.Task) (interface{}, error) {
	engine := s.engines.Lookup(aTask.RuntimeID)
	if engine == nil {
		return nil, fmt.Errorf("no engine registered for runtime %q", aTask.RuntimeID)
	}

	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value interface{}
		err   error
	}
	done := make(chan outcome, 1)
	tools := NewCapability(s.adapter, aTask.ID)
	go func() {
		value, err := engine.Execute(execCtx, aTask, tools)
		done <- outcome{value: value, err: err}
	}()

	timer := time.NewTimer(aTask.Timeout())
	defer timer.Stop()
	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C:
		cancel()
		return nil, &TimeoutError{TimeoutMs: aTask.TimeoutMs}
	}
}

// Shutdown stops the runner workers.
func (s *Service) Shutdown() {
	close(s.shutdownCh)
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}

func exitCodeFor(status mtask.Status) *int {
	var code int
	switch status {
	case mtask.StatusCompleted:
		code = 0
	default:
		code = 1
	}
	return &code
}
