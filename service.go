package gatekit

import (
	"context"

	"github.com/viant/afs"
	"github.com/viant/x"

	"github.com/gatekit/gatekit/extension"
	mpolicy "github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/model/types"
	"github.com/gatekit/gatekit/service/action/nop"
	"github.com/gatekit/gatekit/service/action/printer"
	"github.com/gatekit/gatekit/service/approval"
	amemory "github.com/gatekit/gatekit/service/approval/memory"
	"github.com/gatekit/gatekit/service/audit"
	auditfs "github.com/gatekit/gatekit/service/audit/fs"
	auditmemory "github.com/gatekit/gatekit/service/audit/memory"
	"github.com/gatekit/gatekit/service/dao"
	bdao "github.com/gatekit/gatekit/service/dao/blueprint"
	mdao "github.com/gatekit/gatekit/service/dao/mission"
	pdao "github.com/gatekit/gatekit/service/dao/proposal"
	"github.com/gatekit/gatekit/service/dao/store"
	"github.com/gatekit/gatekit/service/event"
	"github.com/gatekit/gatekit/service/executor"
	"github.com/gatekit/gatekit/service/gate"
	"github.com/gatekit/gatekit/service/messaging"
	"github.com/gatekit/gatekit/service/meta"
	smission "github.com/gatekit/gatekit/service/mission"
	spolicy "github.com/gatekit/gatekit/service/policy"
	"github.com/gatekit/gatekit/service/registry"
)

// Service is the engine facade: it wires the stores, the audit log, the
// event fan-out and every operation service, and exposes them to embedding
// applications.
type Service struct {
	config      *Config
	metaService *meta.Service
	metaBaseURL string

	auditLog     audit.Log
	blueprintDAO dao.Service[string, mpolicy.Blueprint]
	proposalDAO  dao.Service[string, proposal.Proposal]
	missionDAO   *mdao.Service

	eventService *event.Service
	events       *event.Publisher[proposal.Event]
	locks        *store.KeyedMutex

	policyService   *spolicy.Service
	registryService *registry.Service
	approvalService approval.Service
	gateService     *gate.Service
	executorService executor.Service
	missionService  *smission.Service

	actions           *extension.Actions
	extensionTypes    []*x.Type
	extensionServices []types.Service
	executorOptions   []executor.Option
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	s.actions = extension.NewActions(s.extensionTypes...)
	s.actions.Register(nop.New())
	s.actions.Register(printer.New())
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	s.executorService = executor.New(s.actions, s.executorOptions...)

	s.policyService = spolicy.New(s.blueprintDAO, s.auditLog)
	s.registryService = registry.New(s.blueprintDAO, s.proposalDAO, s.auditLog, s.events, s.locks)
	if s.approvalService == nil {
		s.approvalService = amemory.New(s.blueprintDAO, s.proposalDAO, s.auditLog, s.events, s.locks)
	}
	s.gateService = gate.New(s.proposalDAO, s.registryService, s.auditLog, s.events, s.locks)
	s.missionService = smission.New(s.registryService, s.gateService, s.executorService)
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL)
	}
	if s.missionDAO == nil {
		s.missionDAO = mdao.New(s.metaService)
	}
	if s.auditLog == nil {
		if s.config.Audit.BaseURL != "" {
			log, err := auditfs.New(afs.New(), auditfs.Config{BaseURL: s.config.Audit.BaseURL})
			if err != nil {
				return err
			}
			s.auditLog = log
		} else {
			s.auditLog = auditmemory.New()
		}
	}
	if s.blueprintDAO == nil {
		s.blueprintDAO = bdao.New()
	}
	if s.proposalDAO == nil {
		s.proposalDAO = pdao.New()
	}
	if s.locks == nil {
		s.locks = store.NewKeyedMutex()
	}
	if s.eventService == nil {
		vendor := s.config.Events.Vendor
		if vendor == "" {
			vendor = "memory"
		}
		eventService, err := event.New(messaging.Vendor(vendor))
		if err != nil {
			return err
		}
		s.eventService = eventService
	}
	if s.events == nil {
		publisher, err := event.PublisherOf[proposal.Event](s.eventService)
		if err != nil {
			return err
		}
		s.events = publisher
	}
	return nil
}

// Policy returns the blueprint service.
func (s *Service) Policy() *spolicy.Service {
	return s.policyService
}

// Registry returns the proposal admission service.
func (s *Service) Registry() *registry.Service {
	return s.registryService
}

// Approvals returns the attestation tracker.
func (s *Service) Approvals() approval.Service {
	return s.approvalService
}

// Gate returns the execution gate.
func (s *Service) Gate() *gate.Service {
	return s.gateService
}

// Missions returns the mission runtime.
func (s *Service) Missions() *smission.Service {
	return s.missionService
}

// MissionDAO returns the mission definition loader.
func (s *Service) MissionDAO() *mdao.Service {
	return s.missionDAO
}

// Executor returns the action executor.
func (s *Service) Executor() executor.Service {
	return s.executorService
}

// Events returns the event fan-out service.
func (s *Service) Events() *event.Service {
	return s.eventService
}

// Actions returns the handler registry.
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// RegisterExtensionTypes adds data types to the handler type registry.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

// RegisterExtensionServices adds handler services.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Blueprint returns a blueprint by identity.
func (s *Service) Blueprint(ctx context.Context, id string) (*mpolicy.Blueprint, error) {
	return s.policyService.Get(ctx, id)
}

// Proposal returns a proposal by identity.
func (s *Service) Proposal(ctx context.Context, id string) (*proposal.Proposal, error) {
	return s.registryService.Get(ctx, id)
}

// AuditTrail returns the audit entries for one proposal in append order; an
// empty id returns the full log.
func (s *Service) AuditTrail(ctx context.Context, proposalID string) ([]*audit.Entry, error) {
	return s.auditLog.Entries(ctx, proposalID)
}

// New creates an engine with the supplied options.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
