// Package gate applies the terminal proposal operations: at-most-once
// execution of approved proposals, escalation of stalled ones and
// supersession of dead ones. An optional context guard can veto execution
// even after the threshold was met.
package gate

import (
	"context"

	"github.com/gatekit/gatekit/guard"
	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/model/fault"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
	"github.com/gatekit/gatekit/service/dao/store"
	"github.com/gatekit/gatekit/service/event"
	"github.com/gatekit/gatekit/service/registry"
	"github.com/gatekit/gatekit/tracing"
)

// Service is the execution gate.
type Service struct {
	proposals dao.Service[string, proposal.Proposal]
	registry  *registry.Service
	auditLog  audit.Log
	events    *event.Publisher[proposal.Event]
	locks     *store.KeyedMutex
}

// New creates an execution gate sharing its keyed mutex with the registry
// and the tracker.
func New(proposals dao.Service[string, proposal.Proposal], reg *registry.Service, auditLog audit.Log, events *event.Publisher[proposal.Event], locks *store.KeyedMutex) *Service {
	return &Service{
		proposals: proposals,
		registry:  reg,
		auditLog:  auditLog,
		events:    events,
		locks:     locks,
	}
}

// Execute marks an approved proposal executed. Execution happens at most
// once; a second attempt fails with AlreadyExecuted. A guard carried by ctx
// may refuse the execution regardless of approval state.
func (s *Service) Execute(ctx context.Context, proposalID, executor string) (*proposal.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "gate.Execute", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	unlock := s.locks.Lock(proposalID)
	defer unlock()

	snapshot, err := s.load(ctx, proposalID, executor)
	if err != nil {
		return nil, err
	}
	if g := guard.FromContext(ctx); !g.Admits(ctx, snapshot.ActionType) {
		err = fault.New(fault.KindAuthorization, fault.CodeExecutionDenied,
			"execution of %s refused by guard", proposalID)
		s.rejected(ctx, proposalID, executor, err)
		return nil, err
	}
	next, events, err := proposal.Execute(snapshot, executor, clock.Now())
	if err != nil {
		s.rejected(ctx, proposalID, executor, err)
		return nil, err
	}
	return s.commit(ctx, next, events)
}

// Escalate hands a pending proposal to out-of-band resolution.
func (s *Service) Escalate(ctx context.Context, proposalID, reason string) (*proposal.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "gate.Escalate", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	unlock := s.locks.Lock(proposalID)
	defer unlock()

	snapshot, err := s.load(ctx, proposalID, "")
	if err != nil {
		return nil, err
	}
	next, events, err := proposal.Escalate(snapshot, reason, clock.Now())
	if err != nil {
		s.rejected(ctx, proposalID, "", err)
		return nil, err
	}
	return s.commit(ctx, next, events)
}

// Supersede replaces a blocked or escalated proposal with a fresh one over a
// revised payload digest. The successor starts an empty attestation round;
// predecessor and successor are linked in both directions.
func (s *Service) Supersede(ctx context.Context, proposalID string, revised proposal.Digest, proposer string) (*proposal.Proposal, error) {
	ctx, span := tracing.StartSpan(ctx, "gate.Supersede", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	unlock := s.locks.Lock(proposalID)
	defer unlock()

	snapshot, err := s.load(ctx, proposalID, proposer)
	if err != nil {
		return nil, err
	}
	if revised == snapshot.PayloadDigest {
		err = fault.New(fault.KindState, fault.CodeNotSupersedable,
			"revised digest matches proposal %s", proposalID)
		s.rejected(ctx, proposalID, proposer, err)
		return nil, err
	}
	successorID := proposal.ID(snapshot.BlueprintID, revised)
	next, events, err := proposal.MarkSuperseded(snapshot, successorID, clock.Now())
	if err != nil {
		s.rejected(ctx, proposalID, proposer, err)
		return nil, err
	}
	successor, err := s.registry.Propose(ctx, snapshot.BlueprintID, snapshot.ActionType, revised, proposer)
	if err != nil {
		return nil, err
	}
	if _, err = s.commit(ctx, next, events); err != nil {
		return nil, err
	}
	if successor.Supersedes == "" {
		linked := successor.Clone()
		linked.Supersedes = snapshot.ID
		if err = s.proposals.Save(ctx, linked); err != nil {
			return nil, err
		}
		successor = linked
	}
	return successor, nil
}

func (s *Service) load(ctx context.Context, proposalID, actor string) (*proposal.Proposal, error) {
	snapshot, err := s.proposals.Load(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		err = fault.New(fault.KindNotFound, fault.CodeUnknownProposal, "proposal %s not found", proposalID)
		s.rejected(ctx, proposalID, actor, err)
		return nil, err
	}
	return snapshot, nil
}

func (s *Service) commit(ctx context.Context, next *proposal.Proposal, events []proposal.Event) (*proposal.Proposal, error) {
	if err := s.proposals.Save(ctx, next); err != nil {
		return nil, err
	}
	for _, e := range events {
		if err := s.auditLog.Append(ctx, audit.FromEvent(e)); err != nil {
			return nil, err
		}
		s.publish(ctx, e)
	}
	return next, nil
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
