package fs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"

	"github.com/gatekit/gatekit/service/audit"
)

func TestLog_AppendAndRecover(t *testing.T) {
	ctx := context.Background()
	fsService := afs.New()
	baseURL := fmt.Sprintf("mem://localhost/audit-%d", time.Now().UnixNano())

	log, err := New(fsService, Config{BaseURL: baseURL})
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		entry := &audit.Entry{ProposalID: "p1", Kind: audit.KindAttestationRecorded}
		assert.NoError(t, log.Append(ctx, entry))
		assert.Equal(t, uint64(i+1), entry.Seq)
	}

	entries, err := log.Entries(ctx, "p1")
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, uint64(i+1), entry.Seq)
	}

	// A reopened log resumes the sequence instead of rewriting history.
	reopened, err := New(fsService, Config{BaseURL: baseURL})
	assert.NoError(t, err)
	entry := &audit.Entry{ProposalID: "p2", Kind: audit.KindProposalCreated}
	assert.NoError(t, reopened.Append(ctx, entry))
	assert.Equal(t, uint64(4), entry.Seq)

	all, err := reopened.Entries(ctx, "")
	assert.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestNew_requiresBaseURL(t *testing.T) {
	_, err := New(afs.New(), Config{})
	assert.Error(t, err)
}
