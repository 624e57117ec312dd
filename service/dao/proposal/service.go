// Package proposal provides the proposal store.
package proposal

import (
	"context"

	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/service/dao"
	"github.com/gatekit/gatekit/service/dao/criteria"
	"github.com/gatekit/gatekit/service/dao/store"
)

// Service stores proposals keyed by their derived ID.
type Service struct {
	*store.MemoryStore[string, proposal.Proposal]
}

// New creates an in-memory proposal store.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, proposal.Proposal](func(p *proposal.Proposal) string {
			return p.ID
		}),
	}
}

// List returns proposals matching the optional Status filter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*proposal.Proposal, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*proposal.Proposal, 0, len(all))
	for _, p := range all {
		if criteria.FilterByStatus(string(p.Status), parameters) {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ dao.Service[string, proposal.Proposal] = (*Service)(nil)
