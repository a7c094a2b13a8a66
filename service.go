package toolgate

import (
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/model/types"
	"github.com/viant/toolgate/service/approval"
	amemory "github.com/viant/toolgate/service/approval/memory"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/dao/store"
	"github.com/viant/toolgate/service/event"
	"github.com/viant/toolgate/service/gate"
	"github.com/viant/toolgate/service/messaging"
	mmemory "github.com/viant/toolgate/service/messaging/memory"
	spolicy "github.com/viant/toolgate/service/policy"
	"github.com/viant/toolgate/service/runner"
	"github.com/viant/toolgate/service/runner/gofunc"
	"github.com/viant/toolgate/service/runner/script"
	"github.com/viant/toolgate/service/scheduler"
	taskpkg "github.com/viant/toolgate/service/task"
	"github.com/viant/toolgate/service/tool/nop"
	"github.com/viant/toolgate/service/tool/printer"
	aexec "github.com/viant/toolgate/service/tool/system/exec"
	astorage "github.com/viant/toolgate/service/tool/system/storage"

	"github.com/viant/x"
)

// Service is the toolgate façade. It wires stores, event queues, the policy
// graph, approvals, the gate adapter and both execution engines into a
// runnable Runtime.
type Service struct {
	runtime *Runtime
	config  *Config

	taskStore     dao.Service[string, mtask.Task]
	callStore     dao.Service[string, mtask.ToolCall]
	approvalStore dao.Service[string, approval.Approval]

	eventService    *event.Service
	approvalService approval.Service
	queue           messaging.Queue[mtask.Task]
	registry        *gate.Registry

	extensionTypes    []*x.Type
	extensionServices []types.Service
	retryAfterMs      *int
}

// New creates a toolgate service. Omitted collaborators default to in-memory
// implementations.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}, config: DefaultConfig()}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	s.runtime.tasks = taskpkg.New(
		taskpkg.WithTaskStore(s.taskStore),
		taskpkg.WithToolCallStore(s.callStore),
		taskpkg.WithEvents(s.eventService))

	if s.approvalService == nil {
		s.approvalService = amemory.New(
			amemory.WithTaskStore(s.taskStore),
			amemory.WithApprovalStore(s.approvalStore),
			amemory.WithEvents(s.eventService))
	}
	s.runtime.approvals = s.approvalService
	s.runtime.policies = spolicy.New()

	s.registry = gate.NewRegistry(s.extensionTypes...)
	s.registry.Register(nop.New())
	s.registry.Register(printer.New())
	s.registry.Register(aexec.New())
	s.registry.Register(astorage.New())
	for _, service := range s.extensionServices {
		s.registry.Register(service)
	}

	var gateOptions []gate.Option
	if s.retryAfterMs != nil {
		gateOptions = append(gateOptions, gate.WithRetryAfterMs(*s.retryAfterMs))
	}
	s.runtime.gate = gate.New(s.runtime.tasks, s.runtime.policies, s.approvalService, s.registry, gateOptions...)

	s.runtime.gofunc = gofunc.New()
	s.runtime.runner, _ = runner.New(
		runner.WithTaskService(s.runtime.tasks),
		runner.WithAdapter(s.runtime.gate),
		runner.WithMessageQueue(s.queue),
		runner.WithEngine(script.RuntimeID, script.New()),
		runner.WithEngine(gofunc.RuntimeID, s.runtime.gofunc),
		runner.WithWorkers(s.config.Runner.WorkerCount))

	s.runtime.scheduler = scheduler.New(s.runtime.tasks, s.queue,
		scheduler.Config{PollingInterval: s.config.Scheduler.PollingInterval})
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.taskStore == nil {
		s.taskStore = store.NewMemoryStoreWithStatus[string, mtask.Task](
			func(t *mtask.Task) string { return t.ID },
			func(t *mtask.Task) string { return string(t.Status) }).
			WithCloner((*mtask.Task).Clone)
	}
	if s.callStore == nil {
		s.callStore = store.NewMemoryStoreWithStatus[string, mtask.ToolCall](
			func(c *mtask.ToolCall) string { return c.Key() },
			func(c *mtask.ToolCall) string { return string(c.Status) }).
			WithCloner((*mtask.ToolCall).Clone)
	}
	if s.approvalStore == nil {
		s.approvalStore = store.NewMemoryStoreWithStatus[string, approval.Approval](
			func(a *approval.Approval) string { return a.ID },
			func(a *approval.Approval) string { return string(a.Status) }).
			WithCloner((*approval.Approval).Clone)
	}
	if s.eventService == nil {
		s.eventService, _ = event.New(messaging.VendorMemory,
			event.WithNewMemoryQueueConfig(func(name string) mmemory.Config {
				return mmemory.DefaultConfig()
			}))
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[mtask.Task](mmemory.DefaultConfig())
	}
}

// RegisterExtensionTypes registers additional Go types with the tool registry.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.registry.Types().Register(types[i])
	}
}

// RegisterExtensionServices registers additional tool services.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.registry.Register(services[i])
	}
}

// Runtime returns the wired runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Events returns the lifecycle event service.
func (s *Service) Events() *event.Service {
	return s.eventService
}
