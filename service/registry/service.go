// Package registry admits proposals: it derives the proposal identity from
// (blueprint, payload digest), enforces the blueprint's action-type whitelist
// and keeps admission idempotent.
package registry

import (
	"context"

	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/model/fault"
	"github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
	"github.com/gatekit/gatekit/service/dao/store"
	"github.com/gatekit/gatekit/service/event"
	"github.com/gatekit/gatekit/tracing"
)

// Service admits proposals against stored blueprints.
type Service struct {
	blueprints dao.Service[string, policy.Blueprint]
	proposals  dao.Service[string, proposal.Proposal]
	auditLog   audit.Log
	events     *event.Publisher[proposal.Event]
	locks      *store.KeyedMutex
}

// New creates a proposal registry. The keyed mutex must be the same instance
// the tracker and the gate use so operations on one proposal are serialized.
func New(blueprints dao.Service[string, policy.Blueprint], proposals dao.Service[string, proposal.Proposal], auditLog audit.Log, events *event.Publisher[proposal.Event], locks *store.KeyedMutex) *Service {
	return &Service{
		blueprints: blueprints,
		proposals:  proposals,
		auditLog:   auditLog,
		events:     events,
		locks:      locks,
	}
}

// Propose admits an action proposal under the given blueprint. Proposing the
// same (blueprint, digest) pair again returns the existing proposal
// unchanged; identity derivation makes duplicates structurally impossible.
func (s *Service) Propose(ctx context.Context, blueprintID, actionType string, digest proposal.Digest, proposer string) (*proposal.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "registry.Propose", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	id := proposal.ID(blueprintID, digest)
	unlock := s.locks.Lock(id)
	defer unlock()

	blueprint, err := s.blueprints.Load(ctx, blueprintID)
	if err != nil {
		return nil, err
	}
	if blueprint == nil {
		err = fault.New(fault.KindNotFound, fault.CodeUnknownBlueprint, "blueprint %s not found", blueprintID)
		s.rejected(ctx, id, proposer, err)
		return nil, err
	}
	if !blueprint.AllowsActionType(actionType) {
		err = fault.New(fault.KindPolicy, fault.CodeDisallowedActionType,
			"action type %q is not allowed by blueprint %s", actionType, blueprintID)
		s.rejected(ctx, id, proposer, err)
		return nil, err
	}
	if digest.IsZero() {
		err = fault.New(fault.KindIntegrity, fault.CodeDigestMismatch,
			"payload digest is zero, the payload was never hashed")
		s.rejected(ctx, id, proposer, err)
		return nil, err
	}
	existing, err := s.proposals.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	admitted := proposal.New(blueprintID, proposer, actionType, digest, clock.Now())
	if err = s.proposals.Save(ctx, admitted); err != nil {
		return nil, err
	}
	created := proposal.Event{
		Kind:       proposal.EventProposed,
		ProposalID: admitted.ID,
		Actor:      proposer,
		Detail:     actionType,
		At:         admitted.CreatedAt,
	}
	if err = s.auditLog.Append(ctx, audit.FromEvent(created)); err != nil {
		return nil, err
	}
	s.publish(ctx, created)
	return admitted, nil
}

// Get returns a proposal by identity.
func (s *Service) Get(ctx context.Context, id string) (*proposal.Proposal, error) {
	p, err := s.proposals.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fault.New(fault.KindNotFound, fault.CodeUnknownProposal, "proposal %s not found", id)
	}
	return p, nil
}

// List returns proposals matching the optional status filter.
func (s *Service) List(ctx context.Context, statuses ...proposal.Status) ([]*proposal.Proposal, error) {
	if len(statuses) == 0 {
		return s.proposals.List(ctx)
	}
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	return s.proposals.List(ctx, dao.NewParameter("Status", values...))
}

func (s *Service) publish(ctx context.Context, e proposal.Event) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, event.NewEvent(&event.Context{ProposalID: e.ProposalID, EventType: string(e.Kind)}, e))
}

func (s *Service) rejected(ctx context.Context, proposalID, actor string, opErr error) {
	if fault.CodeOf(opErr) == "" {
		return
	}
	_ = s.auditLog.Append(ctx, &audit.Entry{
		ProposalID: proposalID,
		Kind:       audit.KindOperationRejected,
		Actor:      actor,
		Detail:     opErr.Error(),
		CreatedAt:  clock.Now(),
	})
}
