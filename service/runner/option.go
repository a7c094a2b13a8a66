package runner

import (
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/messaging"
	taskpkg "github.com/viant/toolgate/service/task"
)

type Option func(*Service)

// WithTaskService sets the task state machine.
func WithTaskService(tasks *taskpkg.Service) Option {
	return func(s *Service) {
		s.tasks = tasks
	}
}

// WithAdapter sets the tool invocation adapter.
func WithAdapter(adapter Adapter) Option {
	return func(s *Service) {
		s.adapter = adapter
	}
}

// WithMessageQueue sets the task queue implementation.
func WithMessageQueue(queue messaging.Queue[mtask.Task]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithEngine registers an engine under a runtime identifier.
func WithEngine(runtimeID string, engine Engine) Option {
	return func(s *Service) {
		s.engines.Register(runtimeID, engine)
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
