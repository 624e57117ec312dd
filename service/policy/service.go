// Package policy manages blueprint lifecycle: validated creation and lookup.
package policy

import (
	"context"
	"fmt"

	"github.com/gatekit/gatekit/internal/clock"
	"github.com/gatekit/gatekit/model/fault"
	mpolicy "github.com/gatekit/gatekit/model/policy"
	"github.com/gatekit/gatekit/service/audit"
	"github.com/gatekit/gatekit/service/dao"
	"github.com/gatekit/gatekit/tracing"
)

// Service is the blueprint store facade.
type Service struct {
	blueprints dao.Service[string, mpolicy.Blueprint]
	auditLog   audit.Log
}

// New creates a policy service.
func New(blueprints dao.Service[string, mpolicy.Blueprint], auditLog audit.Log) *Service {
	return &Service{blueprints: blueprints, auditLog: auditLog}
}

// Create validates and stores a blueprint for the authority. The blueprint
// identity is derived from the authority, so one authority owns at most one
// blueprint; creating a second is rejected.
func (s *Service) Create(ctx context.Context, authority string, approvers []mpolicy.Approver, threshold int, allowedActionTypes []string) (*mpolicy.Blueprint, error) {
	ctx, span := tracing.StartSpan(ctx, "policy.Create", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	existing, err := s.blueprints.Load(ctx, mpolicy.ID(authority))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		err = fault.New(fault.KindPolicy, fault.CodeInvalidPolicy,
			"blueprint for authority %s already exists", authority)
		s.rejected(ctx, "", authority, err)
		return nil, err
	}
	blueprint, err := mpolicy.New(authority, approvers, threshold, allowedActionTypes, clock.Now())
	if err != nil {
		s.rejected(ctx, "", authority, err)
		return nil, err
	}
	if err = s.blueprints.Save(ctx, blueprint); err != nil {
		return nil, err
	}
	err = s.auditLog.Append(ctx, &audit.Entry{
		Kind:      audit.KindBlueprintCreated,
		Actor:     authority,
		Detail:    fmt.Sprintf("blueprint %s: threshold %d of %d approvers", blueprint.ID, blueprint.Threshold, len(blueprint.Approvers)),
		CreatedAt: clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	return blueprint, nil
}

// Get returns the blueprint with the given identity.
func (s *Service) Get(ctx context.Context, id string) (*mpolicy.Blueprint, error) {
	blueprint, err := s.blueprints.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if blueprint == nil {
		return nil, fault.New(fault.KindNotFound, fault.CodeUnknownBlueprint, "blueprint %s not found", id)
	}
	return blueprint, nil
}

// GetByAuthority returns the authority's blueprint via the derived identity.
func (s *Service) GetByAuthority(ctx context.Context, authority string) (*mpolicy.Blueprint, error) {
	return s.Get(ctx, mpolicy.ID(authority))
}

func (s *Service) rejected(ctx context.Context, proposalID, actor string, opErr error) {
	if fault.CodeOf(opErr) == "" {
		return
	}
	_ = s.auditLog.Append(ctx, &audit.Entry{
		ProposalID: proposalID,
		Kind:       audit.KindOperationRejected,
		Actor:      actor,
		Detail:     opErr.Error(),
		CreatedAt:  clock.Now(),
	})
}
