package proposal

import (
	"time"

	"github.com/gatekit/gatekit/model/fault"
	"github.com/gatekit/gatekit/model/policy"
)

// EventKind classifies an event emitted by an accepted transition.
type EventKind string

const (
	EventProposed   EventKind = "proposal.created"
	EventAttested   EventKind = "attestation.recorded"
	EventDrifted    EventKind = "attestation.drift"
	EventApproved   EventKind = "proposal.approved"
	EventBlocked    EventKind = "proposal.blocked"
	EventExecuted   EventKind = "proposal.executed"
	EventEscalated  EventKind = "proposal.escalated"
	EventSuperseded EventKind = "proposal.superseded"
)

// Event describes a state change produced by a transition. Events drive the
// audit log and the external observer queue; replaying them against an empty
// snapshot reconstructs why a proposal reached its terminal state.
type Event struct {
	Kind       EventKind `json:"kind"`
	ProposalID string    `json:"proposalId"`
	Actor      string    `json:"actor,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// Attest applies one attestation to a pending snapshot and returns the new
// snapshot plus emitted events. The input snapshot is never mutated.
//
// Eligibility failures (unknown approver, duplicate attestation, terminal
// status) reject the operation outright. An accepted attestation is always
// recorded – including FAIL decisions and drifted digests – but only PASS
// decisions over the proposal's current digest count toward the threshold.
func Attest(blueprint *policy.Blueprint, snapshot *Proposal, approver string, decision Decision, attested Digest, at time.Time) (*Proposal, []Event, error) {
	if snapshot.Status != StatusPending {
		return nil, nil, fault.New(fault.KindState, fault.CodeProposalNotPending,
			"proposal %s is %s", snapshot.ID, snapshot.Status)
	}
	if !blueprint.IsApprover(approver) {
		return nil, nil, fault.New(fault.KindAuthorization, fault.CodeNotAnApprover,
			"%s is not an approver of blueprint %s", approver, blueprint.ID)
	}
	if snapshot.HasAttested(approver) {
		return nil, nil, fault.New(fault.KindState, fault.CodeAlreadyAttested,
			"%s already attested on proposal %s", approver, snapshot.ID)
	}

	next := snapshot.Clone()
	next.Attestations = append(next.Attestations, Attestation{
		Approver:  approver,
		Role:      blueprint.ApproverRole(approver),
		Decision:  decision,
		Digest:    attested,
		CreatedAt: at,
	})

	events := []Event{{
		Kind:       EventAttested,
		ProposalID: next.ID,
		Actor:      approver,
		Detail:     string(decision),
		At:         at,
	}}
	if attested != next.PayloadDigest {
		// Drift: matching identity but stale digest. Recorded, surfaced, never
		// counted. The detail carries the integrity code so audit consumers can
		// classify the mismatch without string matching.
		drift := fault.New(fault.KindIntegrity, fault.CodeDigestMismatch,
			"attested %s, current %s", attested, next.PayloadDigest)
		events = append(events, Event{
			Kind:       EventDrifted,
			ProposalID: next.ID,
			Actor:      approver,
			Detail:     drift.Error(),
			At:         at,
		})
	}

	switch {
	case next.MatchingPassCount() >= blueprint.Threshold:
		next.Status = StatusApproved
		events = append(events, Event{Kind: EventApproved, ProposalID: next.ID, At: at})
	case thresholdUnreachable(blueprint, next):
		next.Status = StatusBlocked
		events = append(events, Event{Kind: EventBlocked, ProposalID: next.ID, At: at})
	}
	return next, events, nil
}

// thresholdUnreachable reports whether the remaining un-attested approvers can
// no longer lift the matching-PASS count to the threshold.
func thresholdUnreachable(blueprint *policy.Blueprint, p *Proposal) bool {
	remaining := 0
	for i := range blueprint.Approvers {
		if !p.HasAttested(blueprint.Approvers[i].Identity) {
			remaining++
		}
	}
	return p.MatchingPassCount()+remaining < blueprint.Threshold
}

// Execute marks an approved snapshot as executed. Execution is at-most-once:
// with operations applied serially, any retry observes the terminal status
// and fails deterministically instead of re-running side effects.
func Execute(snapshot *Proposal, executor string, at time.Time) (*Proposal, []Event, error) {
	if snapshot.Status == StatusExecuted {
		return nil, nil, fault.New(fault.KindState, fault.CodeAlreadyExecuted,
			"proposal %s already executed", snapshot.ID)
	}
	if snapshot.Status != StatusApproved {
		return nil, nil, fault.New(fault.KindState, fault.CodeProposalNotApproved,
			"proposal %s is %s", snapshot.ID, snapshot.Status)
	}
	next := snapshot.Clone()
	next.Status = StatusExecuted
	executedAt := at
	next.ExecutedAt = &executedAt
	next.ExecutedBy = executor
	return next, []Event{{Kind: EventExecuted, ProposalID: next.ID, Actor: executor, At: at}}, nil
}

// Escalate hands a pending snapshot to out-of-band resolution. It is invoked
// by the workflow layer when a branch condition (round limit, wait limit) is
// met; the core itself has no timers.
func Escalate(snapshot *Proposal, reason string, at time.Time) (*Proposal, []Event, error) {
	if snapshot.Status != StatusPending {
		return nil, nil, fault.New(fault.KindState, fault.CodeProposalNotPending,
			"proposal %s is %s", snapshot.ID, snapshot.Status)
	}
	next := snapshot.Clone()
	next.Status = StatusEscalated
	next.EscalationReason = reason
	return next, []Event{{Kind: EventEscalated, ProposalID: next.ID, Detail: reason, At: at}}, nil
}

// MarkSuperseded links a blocked or escalated snapshot to the fresh proposal
// that replaces it. Attestations collected on the predecessor are not reused;
// the successor starts a fresh attestation round. The predecessor's terminal
// status is left untouched.
func MarkSuperseded(snapshot *Proposal, successorID string, at time.Time) (*Proposal, []Event, error) {
	if snapshot.Status != StatusBlocked && snapshot.Status != StatusEscalated {
		return nil, nil, fault.New(fault.KindState, fault.CodeNotSupersedable,
			"proposal %s is %s, only blocked or escalated proposals can be superseded", snapshot.ID, snapshot.Status)
	}
	if snapshot.SupersededBy != "" {
		return nil, nil, fault.New(fault.KindState, fault.CodeNotSupersedable,
			"proposal %s already superseded by %s", snapshot.ID, snapshot.SupersededBy)
	}
	next := snapshot.Clone()
	next.SupersededBy = successorID
	return next, []Event{{Kind: EventSuperseded, ProposalID: next.ID, Detail: successorID, At: at}}, nil
}
