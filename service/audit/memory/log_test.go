package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
)

func TestLog_AppendAssignsSequence(t *testing.T) {
	ctx := context.Background()
	log := New()

	assert.ErrorIs(t, log.Append(ctx, nil), dao.ErrNilEntity)

	entries := []*audit.Entry{
		{ProposalID: "p1", Kind: audit.KindProposalCreated},
		{ProposalID: "p2", Kind: audit.KindProposalCreated},
		{ProposalID: "p1", Kind: audit.KindAttestationRecorded},
	}
	for _, entry := range entries {
		assert.NoError(t, log.Append(ctx, entry))
	}
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, uint64(3), entries[2].Seq)
	assert.False(t, entries[0].CreatedAt.IsZero())

	all, err := log.Entries(ctx, "")
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	p1, err := log.Entries(ctx, "p1")
	assert.NoError(t, err)
	assert.Len(t, p1, 2)
	assert.Equal(t, audit.KindAttestationRecorded, p1[1].Kind)
}
