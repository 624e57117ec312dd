// Package audit defines the append-only operation record every gatekit layer
// writes to. The log is the canonical trail an operator replays to
// reconstruct why a proposal reached its terminal state; entries are never
// edited or removed, and rejected attempts are recorded next to accepted
// operations.
package audit

import (
	"context"
	"time"
)

// Kind classifies an audit entry.
type Kind string

const (
	KindBlueprintCreated    Kind = "blueprint.created"
	KindProposalCreated     Kind = "proposal.created"
	KindAttestationRecorded Kind = "attestation.recorded"
	KindAttestationDrift    Kind = "attestation.drift"
	KindProposalApproved    Kind = "proposal.approved"
	KindProposalBlocked     Kind = "proposal.blocked"
	KindProposalExecuted    Kind = "proposal.executed"
	KindProposalEscalated   Kind = "proposal.escalated"
	KindProposalSuperseded  Kind = "proposal.superseded"

	// KindOperationRejected records an attempted-and-refused operation; the
	// detail carries the failure code.
	KindOperationRejected Kind = "operation.rejected"
)

// Entry is one strictly ordered audit record.
type Entry struct {
	Seq        uint64    `json:"seq"`
	ProposalID string    `json:"proposalId,omitempty"`
	Kind       Kind      `json:"kind"`
	Actor      string    `json:"actor,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Log is the append-only audit store. Append assigns the next sequence
// number; Entries is side-effect free and exposed to external observers.
type Log interface {
	Append(ctx context.Context, entry *Entry) error

	// Entries returns entries for one proposal in sequence order; an empty
	// proposalID returns the full log.
	Entries(ctx context.Context, proposalID string) ([]*Entry, error)
}
