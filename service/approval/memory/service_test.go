package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gatekit/gatekit/model/fault"
	"github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/service/audit"
	auditmemory "github.com/gatekit/gatekit/service/audit/memory"
	bdao "github.com/gatekit/gatekit/service/dao/blueprint"
	pdao "github.com/gatekit/gatekit/service/dao/proposal"
	"github.com/gatekit/gatekit/service/dao/store"
	"github.com/gatekit/gatekit/service/approval/memory"
	"github.com/gatekit/gatekit/service/registry"
)

type fixture struct {
	tracker  *memory.Service
	registry *registry.Service
	log      *auditmemory.Log
	bp       *policy.Blueprint
}

func newFixture(t *testing.T, threshold int) *fixture {
	ctx := context.Background()
	blueprints := bdao.New()
	proposals := pdao.New()
	log := auditmemory.New()
	locks := store.NewKeyedMutex()

	blueprint, err := policy.New("authority", []policy.Approver{
		{Identity: "alice"}, {Identity: "bob"}, {Identity: "carol"},
	}, threshold, []string{"deploy"}, time.Now())
	assert.NoError(t, err)
	assert.NoError(t, blueprints.Save(ctx, blueprint))

	return &fixture{
		tracker:  memory.New(blueprints, proposals, log, nil, locks),
		registry: registry.New(blueprints, proposals, log, nil, locks),
		log:      log,
		bp:       blueprint,
	}
}

func (f *fixture) propose(t *testing.T, payload string) *proposal.Proposal {
	p, err := f.registry.Propose(context.Background(), f.bp.ID, "deploy", proposal.ComputeDigest([]byte(payload)), "proposer")
	assert.NoError(t, err)
	return p
}

func TestService_Attest_approves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	admitted := f.propose(t, "payload")

	next, err := f.tracker.Attest(ctx, admitted.ID, "alice", proposal.DecisionPass, admitted.PayloadDigest)
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusPending, next.Status)

	next, err = f.tracker.Attest(ctx, admitted.ID, "bob", proposal.DecisionPass, admitted.PayloadDigest)
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusApproved, next.Status)

	entries, err := f.log.Entries(ctx, admitted.ID)
	assert.NoError(t, err)
	kinds := make([]audit.Kind, 0, len(entries))
	for _, entry := range entries {
		kinds = append(kinds, entry.Kind)
	}
	assert.Equal(t, []audit.Kind{
		audit.KindProposalCreated,
		audit.KindAttestationRecorded,
		audit.KindAttestationRecorded,
		audit.KindProposalApproved,
	}, kinds)
}

func TestService_Attest_driftIsSurfaced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	admitted := f.propose(t, "payload")
	stale := proposal.ComputeDigest([]byte("older payload"))

	next, err := f.tracker.Attest(ctx, admitted.ID, "alice", proposal.DecisionPass, stale)
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusPending, next.Status)
	assert.Equal(t, 0, next.MatchingPassCount())

	entries, err := f.log.Entries(ctx, admitted.ID)
	assert.NoError(t, err)
	assert.Equal(t, audit.KindAttestationDrift, entries[len(entries)-1].Kind)
}

func TestService_Attest_rejectionsAudited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	admitted := f.propose(t, "payload")

	_, err := f.tracker.Attest(ctx, "missing", "alice", proposal.DecisionPass, admitted.PayloadDigest)
	assert.Equal(t, fault.CodeUnknownProposal, fault.CodeOf(err))

	_, err = f.tracker.Attest(ctx, admitted.ID, "mallory", proposal.DecisionPass, admitted.PayloadDigest)
	assert.Equal(t, fault.CodeNotAnApprover, fault.CodeOf(err))

	entries, err := f.log.Entries(ctx, "")
	assert.NoError(t, err)
	var rejected int
	for _, entry := range entries {
		if entry.Kind == audit.KindOperationRejected {
			rejected++
		}
	}
	assert.Equal(t, 2, rejected)
}

func TestService_ListPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	admitted := f.propose(t, "payload")

	pending, err := f.tracker.ListPending(ctx)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.tracker.Attest(ctx, admitted.ID, "alice", proposal.DecisionPass, admitted.PayloadDigest)
	assert.NoError(t, err)

	pending, err = f.tracker.ListPending(ctx)
	assert.NoError(t, err)
	assert.Empty(t, pending)
}
