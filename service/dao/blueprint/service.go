// Package blueprint provides the blueprint store.
package blueprint

import (
	"github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/service/dao"
	"github.com/gatekit/gatekit/service/dao/store"
)

// Service stores blueprints keyed by their derived ID.
type Service struct {
	*store.MemoryStore[string, policy.Blueprint]
}

// New creates an in-memory blueprint store.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, policy.Blueprint](func(b *policy.Blueprint) string {
			return b.ID
		}),
	}
}

var _ dao.Service[string, policy.Blueprint] = (*Service)(nil)
