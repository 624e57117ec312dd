package registry_test

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
	"github.com/gatekit/gatekit/service/registry"
)

func newTestRegistry(t *testing.T) (*registry.Service, *policy.Blueprint, audit.Log) {
	blueprints := bdao.New()
	blueprint, err := policy.New("authority", []policy.Approver{{Identity: "alice"}}, 1, []string{"deploy"}, time.Now())
	assert.NoError(t, err)
	assert.NoError(t, blueprints.Save(context.Background(), blueprint))
	log := auditmemory.New()
	svc := registry.New(blueprints, pdao.New(), log, nil, store.NewKeyedMutex())
	return svc, blueprint, log
}

func TestService_Propose(t *testing.T) {
	ctx := context.Background()
	svc, blueprint, log := newTestRegistry(t)
	digest := proposal.ComputeDigest([]byte(`{"version":"1.4.2"}`))

	admitted, err := svc.Propose(ctx, blueprint.ID, "deploy", digest, "proposer")
	assert.NoError(t, err)
	assert.Equal(t, proposal.ID(blueprint.ID, digest), admitted.ID)
	assert.Equal(t, proposal.StatusPending, admitted.Status)

	// Idempotent: same pair yields the same record, no duplicate audit entry.
	again, err := svc.Propose(ctx, blueprint.ID, "deploy", digest, "proposer")
	assert.NoError(t, err)
	assert.Equal(t, admitted.ID, again.ID)

	entries, err := log.Entries(ctx, admitted.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, audit.KindProposalCreated, entries[0].Kind)
}

func TestService_Propose_rejections(t *testing.T) {
	ctx := context.Background()
	svc, blueprint, log := newTestRegistry(t)
	digest := proposal.ComputeDigest([]byte("payload"))

	_, err := svc.Propose(ctx, "missing", "deploy", digest, "proposer")
	assert.Equal(t, fault.CodeUnknownBlueprint, fault.CodeOf(err))

	_, err = svc.Propose(ctx, blueprint.ID, "delete", digest, "proposer")
	assert.Equal(t, fault.CodeDisallowedActionType, fault.CodeOf(err))

	// A zero digest means the payload was never hashed.
	_, err = svc.Propose(ctx, blueprint.ID, "deploy", proposal.Digest{}, "proposer")
	assert.Equal(t, fault.CodeDigestMismatch, fault.CodeOf(err))
	assert.Equal(t, fault.KindIntegrity, fault.KindOf(err))

	entries, err := log.Entries(ctx, "")
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, audit.KindOperationRejected, entry.Kind)
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc, blueprint, _ := newTestRegistry(t)
	for _, payload := range []string{"a", "b", "c"} {
		_, err := svc.Propose(ctx, blueprint.ID, "deploy", proposal.ComputeDigest([]byte(payload)), "proposer")
		assert.NoError(t, err)
	}
	pending, err := svc.List(ctx, proposal.StatusPending)
	assert.NoError(t, err)
	assert.Len(t, pending, 3)

	executed, err := svc.List(ctx, proposal.StatusExecuted)
	assert.NoError(t, err)
	assert.Empty(t, executed)

	_, err = svc.Get(ctx, "unknown")
	assert.Equal(t, fault.CodeUnknownProposal, fault.CodeOf(err))
}
