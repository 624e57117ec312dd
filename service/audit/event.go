package audit

import (
	"github.com/gatekit/gatekit/model/proposal"
)

// FromEvent converts a transition event into an audit entry; the kinds share
// the same wire codes.
func FromEvent(e proposal.Event) *Entry {
	return &Entry{
		ProposalID: e.ProposalID,
		Kind:       Kind(e.Kind),
		Actor:      e.Actor,
		Detail:     e.Detail,
		CreatedAt:  e.At,
	}
}
