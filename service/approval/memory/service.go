// Package memory implements the attestation tracker over the in-memory
// stores.
package memory

import (
	"context"
	"fmt"

	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/model/fault"
	"github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/service/approval"
	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
	"github.com/gatekit/gatekit/service/dao/store"
	"github.com/gatekit/gatekit/service/event"
	"github.com/gatekit/gatekit/tracing"
)

// Service applies attestations to stored proposals.
type Service struct {
	blueprints dao.Service[string, policy.Blueprint]
	proposals  dao.Service[string, proposal.Proposal]
	auditLog   audit.Log
	events     *event.Publisher[proposal.Event]
	locks      *store.KeyedMutex
}

// New creates an attestation tracker sharing its keyed mutex with the
// registry and the gate.
func New(blueprints dao.Service[string, policy.Blueprint], proposals dao.Service[string, proposal.Proposal], auditLog audit.Log, events *event.Publisher[proposal.Event], locks *store.KeyedMutex) *Service {
	return &Service{
		blueprints: blueprints,
		proposals:  proposals,
		auditLog:   auditLog,
		events:     events,
		locks:      locks,
	}
}

// Attest records the approver's decision and advances the proposal when the
// threshold outcome is decided.
func (s *Service) Attest(ctx context.Context, proposalID, approver string, decision proposal.Decision, attested proposal.Digest) (*proposal.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.Attest", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	unlock := s.locks.Lock(proposalID)
	defer unlock()

	snapshot, err := s.proposals.Load(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		err = fault.New(fault.KindNotFound, fault.CodeUnknownProposal, "proposal %s not found", proposalID)
		s.rejected(ctx, proposalID, approver, err)
		return nil, err
	}
	blueprint, err := s.blueprints.Load(ctx, snapshot.BlueprintID)
	if err != nil {
		return nil, err
	}
	if blueprint == nil {
		return nil, fmt.Errorf("proposal %s references missing blueprint %s", proposalID, snapshot.BlueprintID)
	}

	next, events, err := proposal.Attest(blueprint, snapshot, approver, decision, attested, clock.Now())
	if err != nil {
		s.rejected(ctx, proposalID, approver, err)
		return nil, err
	}
	if err = s.proposals.Save(ctx, next); err != nil {
		return nil, err
	}
	for _, e := range events {
		if err = s.auditLog.Append(ctx, audit.FromEvent(e)); err != nil {
			return nil, err
		}
		s.publish(ctx, e)
	}
	return next, nil
}

// ListPending returns the proposals still collecting attestations.
func (s *Service) ListPending(ctx context.Context) ([]*proposal.Proposal, error) {
	return s.proposals.List(ctx, dao.NewParameter("Status", string(proposal.StatusPending)))
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

var _ approval.Service = (*Service)(nil)
