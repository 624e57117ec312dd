// Package memory provides the default in-process audit log.
package memory

import (
	"context"
	"sync"

	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
)

// Log is an in-memory append-only audit log.
type Log struct {
	mu      sync.RWMutex
	entries []*audit.Entry
	nextSeq uint64
}

// New creates an empty log. Sequence numbers start at 1.
func New() *Log {
	return &Log{nextSeq: 1}
}

// Append assigns the next sequence number and stores the entry.
func (l *Log) Append(_ context.Context, entry *audit.Entry) error {
	if entry == nil {
		return dao.ErrNilEntity
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.Seq = l.nextSeq
	l.nextSeq++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = clock.Now()
	}
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of the matching entries in sequence order.
func (l *Log) Entries(_ context.Context, proposalID string) ([]*audit.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*audit.Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		if proposalID == "" || entry.ProposalID == proposalID {
			out = append(out, entry)
		}
	}
	return out, nil
}

var _ audit.Log = (*Log)(nil)
