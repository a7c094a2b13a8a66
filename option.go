package toolgate

import (
	"github.com/viant/toolgate/model/types"
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/approval"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/event"
	"github.com/viant/toolgate/service/messaging"
	"github.com/viant/toolgate/tracing"
	"github.com/viant/x"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the toolgate service.
type Option func(s *Service)

// WithApprovalService sets the approval service
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvalService = svc }
}

// WithEventService sets the lifecycle event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithExtensionTypes sets additional types registered with the tool registry
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}

// WithExtensionServices sets additional tool services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithQueue sets the runner task queue
func WithQueue(queue messaging.Queue[mtask.Task]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithTaskStore sets the task record store
func WithTaskStore(store dao.Service[string, mtask.Task]) Option {
	return func(s *Service) {
		s.taskStore = store
	}
}

// WithToolCallStore sets the tool-call record store
func WithToolCallStore(store dao.Service[string, mtask.ToolCall]) Option {
	return func(s *Service) {
		s.callStore = store
	}
}

// WithApprovalStore sets the approval record store
func WithApprovalStore(store dao.Service[string, approval.Approval]) Option {
	return func(s *Service) {
		s.approvalStore = store
	}
}

// WithRunnerWorkers sets the runner worker count
func WithRunnerWorkers(count int) Option {
	return func(s *Service) {
		s.config.Runner.WorkerCount = count
	}
}

// WithRetryAfterMs sets the backoff hint attached to pending tool calls
func WithRetryAfterMs(ms int) Option {
	return func(s *Service) {
		s.retryAfterMs = &ms
	}
}

// WithConfig sets the engine configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times - the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
