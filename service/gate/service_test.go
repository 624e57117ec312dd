package gate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gatekit/gatekit/guard"
	"github.com/gatekit/gatekit/model/fault"
	"github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/model/proposal"
	"github.com/gatekit/gatekit/service/approval/memory"
	"github.com/gatekit/gatekit/service/audit"
	auditmemory "github.com/gatekit/gatekit/service/audit/memory"
	bdao "github.com/gatekit/gatekit/service/dao/blueprint"
	pdao "github.com/gatekit/gatekit/service/dao/proposal"
	"github.com/gatekit/gatekit/service/dao/store"
	"github.com/gatekit/gatekit/service/gate"
	"github.com/gatekit/gatekit/service/registry"
)

type fixture struct {
	gate     *gate.Service
	tracker  *memory.Service
	registry *registry.Service
	log      *auditmemory.Log
	bp       *policy.Blueprint
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	blueprints := bdao.New()
	proposals := pdao.New()
	log := auditmemory.New()
	locks := store.NewKeyedMutex()

	blueprint, err := policy.New("authority", []policy.Approver{
		{Identity: "alice"}, {Identity: "bob"},
	}, 1, []string{"deploy"}, time.Now())
	assert.NoError(t, err)
	assert.NoError(t, blueprints.Save(ctx, blueprint))

	reg := registry.New(blueprints, proposals, log, nil, locks)
	return &fixture{
		gate:     gate.New(proposals, reg, log, nil, locks),
		tracker:  memory.New(blueprints, proposals, log, nil, locks),
		registry: reg,
		log:      log,
		bp:       blueprint,
	}
}

func (f *fixture) approved(t *testing.T, payload string) *proposal.Proposal {
	ctx := context.Background()
	admitted, err := f.registry.Propose(ctx, f.bp.ID, "deploy", proposal.ComputeDigest([]byte(payload)), "proposer")
	assert.NoError(t, err)
	next, err := f.tracker.Attest(ctx, admitted.ID, "alice", proposal.DecisionPass, admitted.PayloadDigest)
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusApproved, next.Status)
	return next
}

func TestService_Execute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	approved := f.approved(t, "payload")

	executed, err := f.gate.Execute(ctx, approved.ID, "runner")
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusExecuted, executed.Status)
	assert.Equal(t, "runner", executed.ExecutedBy)

	// At-most-once: the retry fails and is audited as a rejection.
	_, err = f.gate.Execute(ctx, approved.ID, "runner")
	assert.Equal(t, fault.CodeAlreadyExecuted, fault.CodeOf(err))

	entries, err := f.log.Entries(ctx, approved.ID)
	assert.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, audit.KindOperationRejected, last.Kind)
}

func TestService_Execute_notApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admitted, err := f.registry.Propose(ctx, f.bp.ID, "deploy", proposal.ComputeDigest([]byte("pending")), "proposer")
	assert.NoError(t, err)

	_, err = f.gate.Execute(ctx, admitted.ID, "runner")
	assert.Equal(t, fault.CodeProposalNotApproved, fault.CodeOf(err))
}

func TestService_Execute_guardDenies(t *testing.T) {
	f := newFixture(t)
	approved := f.approved(t, "payload")

	denied := guard.WithGuard(context.Background(), &guard.Guard{Mode: guard.ModeDeny})
	_, err := f.gate.Execute(denied, approved.ID, "runner")
	assert.Equal(t, fault.CodeExecutionDenied, fault.CodeOf(err))
	assert.Equal(t, fault.KindAuthorization, fault.KindOf(err))

	blocked := guard.WithGuard(context.Background(), &guard.Guard{BlockList: []string{"deploy"}})
	_, err = f.gate.Execute(blocked, approved.ID, "runner")
	assert.Equal(t, fault.CodeExecutionDenied, fault.CodeOf(err))

	// The proposal is still approved and executable once the guard allows.
	executed, err := f.gate.Execute(context.Background(), approved.ID, "runner")
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusExecuted, executed.Status)
}

func TestService_EscalateAndSupersede(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admitted, err := f.registry.Propose(ctx, f.bp.ID, "deploy", proposal.ComputeDigest([]byte("v1")), "proposer")
	assert.NoError(t, err)

	escalated, err := f.gate.Escalate(ctx, admitted.ID, "window expired")
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusEscalated, escalated.Status)

	revised := proposal.ComputeDigest([]byte("v2"))
	successor, err := f.gate.Supersede(ctx, admitted.ID, revised, "proposer")
	assert.NoError(t, err)
	assert.Equal(t, proposal.StatusPending, successor.Status)
	assert.Empty(t, successor.Attestations)
	assert.Equal(t, admitted.ID, successor.Supersedes)

	predecessor, err := f.registry.Get(ctx, admitted.ID)
	assert.NoError(t, err)
	assert.Equal(t, successor.ID, predecessor.SupersededBy)
	assert.Equal(t, proposal.StatusEscalated, predecessor.Status)

	// A proposal can be superseded once.
	_, err = f.gate.Supersede(ctx, admitted.ID, proposal.ComputeDigest([]byte("v3")), "proposer")
	assert.Equal(t, fault.CodeNotSupersedable, fault.CodeOf(err))
}

func TestService_Supersede_requiresTerminalStall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admitted, err := f.registry.Propose(ctx, f.bp.ID, "deploy", proposal.ComputeDigest([]byte("v1")), "proposer")
	assert.NoError(t, err)

	_, err = f.gate.Supersede(ctx, admitted.ID, proposal.ComputeDigest([]byte("v2")), "proposer")
	assert.Equal(t, fault.CodeNotSupersedable, fault.CodeOf(err))

	_, err = f.gate.Supersede(ctx, admitted.ID, admitted.PayloadDigest, "proposer")
	assert.Equal(t, fault.CodeNotSupersedable, fault.CodeOf(err))
}
