package approval

import (
	"context"

	"github.com/gatekit/gatekit/model/proposal"
)

// Service collects attestations against pending proposals and applies the
// blueprint threshold.
type Service interface {
	// Attest records one approver's decision over the digest they reviewed
	// and returns the resulting proposal snapshot.
	Attest(ctx context.Context, proposalID, approver string, decision proposal.Decision, attested proposal.Digest) (*proposal.Proposal, error)

	// ListPending returns the proposals still collecting attestations.
	ListPending(ctx context.Context) ([]*proposal.Proposal, error)
}
