package gatekit

import (
	"github.com/viant/x"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	mpolicy "github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/model/types"
	"github.com/gatekit/gatekit/service/approval"
	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
	"github.com/gatekit/gatekit/service/event"
	"github.com/gatekit/gatekit/service/executor"
	"github.com/gatekit/gatekit/service/meta"
	"github.com/gatekit/gatekit/tracing"
)

// Option customises the engine facade.
type Option func(s *Service)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithAuditLog sets the audit log backend.
func WithAuditLog(log audit.Log) Option {
	return func(s *Service) { s.auditLog = log }
}

// WithBlueprintDAO sets the blueprint store.
func WithBlueprintDAO(store dao.Service[string, mpolicy.Blueprint]) Option {
	return func(s *Service) { s.blueprintDAO = store }
}

// WithProposalDAO sets the proposal store.
func WithProposalDAO(store dao.Service[string, proposal.Proposal]) Option {
	return func(s *Service) { s.proposalDAO = store }
}

// WithApprovalService sets the attestation tracker.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvalService = svc }
}

// WithEventService sets the event fan-out service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.eventService = service }
}

// WithMetaService sets the metadata loader.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) { s.metaService = service }
}

// WithMetaBaseURL sets the base location mission definitions load from.
func WithMetaBaseURL(url string) Option {
	return func(s *Service) { s.metaBaseURL = url }
}

// WithExtensionTypes seeds the handler data-type registry.
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) { s.extensionTypes = types }
}

// WithExtensionServices registers handler services.
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) { s.extensionServices = services }
}

// WithExecutorOptions passes options to the action executor, for example a
// custom invocation listener.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry with the stdout exporter; an empty
// outputFile writes to standard output. The first successful initialisation
// wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry with a custom exporter (OTLP,
// Jaeger, Zipkin, …). The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
