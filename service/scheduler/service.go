// Package scheduler dispatches queued tasks to the runner queue. It polls the
// task store on a short interval, so restarting the process re-dispatches any
// task that was queued but never reached a worker.
package scheduler

import (
	"context"
	"log"
	"time"

	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/messaging"
	taskpkg "github.com/viant/toolgate/service/task"
)

// Config represents scheduler configuration.
type Config struct {
	// PollingInterval is how often the scheduler checks for queued tasks.
	PollingInterval time.Duration
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		PollingInterval: 20 * time.Millisecond,
	}
}

// Service moves queued tasks onto the runner queue.
type Service struct {
	config     Config
	tasks      *taskpkg.Service
	queue      messaging.Queue[mtask.Task]
	dispatched map[string]bool
	shutdownCh chan struct{}
}

// New creates a scheduler service.
func New(tasks *taskpkg.Service, queue messaging.Queue[mtask.Task], config Config) *Service {
	if config.PollingInterval <= 0 {
		config.PollingInterval = DefaultConfig().PollingInterval
	}
	return &Service{
		config:     config,
		tasks:      tasks,
		queue:      queue,
		dispatched: map[string]bool{},
		shutdownCh: make(chan struct{}),
	}
}

// Start begins the dispatch loop.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			if err := s.dispatchTasks(ctx); err != nil {
				log.Printf("failed to dispatch tasks: %v", err)
			}
		}
	}
}

// dispatchTasks publishes every queued task that has not been dispatched
// already. Tasks remain queued until a worker marks them running, so the
// dispatched set keeps one poll cycle from re-publishing the previous one.
func (s *Service) dispatchTasks(ctx context.Context) error {
	queued, err := s.tasks.Tasks(ctx, dao.NewParameter("Status", string(mtask.StatusQueued)))
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(queued))
	for _, aTask := range queued {
		seen[aTask.ID] = true
		if s.dispatched[aTask.ID] {
			continue
		}
		if err := s.queue.Publish(ctx, aTask); err != nil {
			return err
		}
		s.dispatched[aTask.ID] = true
	}
	for id := range s.dispatched {
		if !seen[id] {
			delete(s.dispatched, id)
		}
	}
	return nil
}

// Shutdown stops the dispatch loop.
func (s *Service) Shutdown() {
	close(s.shutdownCh)
}
