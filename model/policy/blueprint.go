// Package policy holds the immutable Blueprint – the approval policy template
// every proposal is gated by. A blueprint is never updated after creation so
// in-flight proposals cannot have their gating rules changed underneath them.
package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gatekit/gatekit/model/fault"
)

// blueprintTag is the fixed domain tag mixed into blueprint identity
// derivation so blueprint IDs never collide with proposal IDs.
const blueprintTag = "blueprint"

// Approver is a role-tagged approver identity. Identity values are opaque,
// already-verified strings supplied by the identity collaborator.
type Approver struct {
	Identity string `json:"identity" yaml:"identity"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Blueprint defines who may attest, how many matching attestations are
// required and which action types may be proposed at all.
type Blueprint struct {
	ID                 string     `json:"id"`
	Authority          string     `json:"authority"`
	Approvers          []Approver `json:"approvers"`
	Threshold          int        `json:"threshold"`
	AllowedActionTypes []string   `json:"allowedActionTypes,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// New validates the configuration and returns an immutable blueprint.
// Validation failures carry fault.CodeInvalidPolicy.
func New(authority string, approvers []Approver, threshold int, allowedActionTypes []string, createdAt time.Time) (*Blueprint, error) {
	if authority == "" {
		return nil, fault.New(fault.KindPolicy, fault.CodeInvalidPolicy, "authority is empty")
	}
	if len(approvers) == 0 {
		return nil, fault.New(fault.KindPolicy, fault.CodeInvalidPolicy, "approver set is empty")
	}
	seen := make(map[string]bool, len(approvers))
	for _, approver := range approvers {
		if approver.Identity == "" {
			return nil, fault.New(fault.KindPolicy, fault.CodeInvalidPolicy, "approver identity is empty")
		}
		if seen[approver.Identity] {
			return nil, fault.New(fault.KindPolicy, fault.CodeInvalidPolicy, "duplicate approver %s", approver.Identity)
		}
		seen[approver.Identity] = true
	}
	if threshold < 1 || threshold > len(approvers) {
		return nil, fault.New(fault.KindPolicy, fault.CodeInvalidPolicy,
			"threshold %d outside 1..%d", threshold, len(approvers))
	}
	return &Blueprint{
		ID:                 ID(authority),
		Authority:          authority,
		Approvers:          append([]Approver(nil), approvers...),
		Threshold:          threshold,
		AllowedActionTypes: append([]string(nil), allowedActionTypes...),
		CreatedAt:          createdAt,
	}, nil
}

// ID derives the blueprint identity from (domain tag, authority). The
// derivation is deterministic so a blueprint can be located without an
// auxiliary index.
func ID(authority string) string {
	sum := sha256.Sum256([]byte(blueprintTag + "|" + authority))
	return hex.EncodeToString(sum[:])
}

// IsApprover reports whether identity belongs to the approver set.
func (b *Blueprint) IsApprover(identity string) bool {
	for i := range b.Approvers {
		if b.Approvers[i].Identity == identity {
			return true
		}
	}
	return false
}

// ApproverRole returns the role tag recorded for identity, or "".
func (b *Blueprint) ApproverRole(identity string) string {
	for i := range b.Approvers {
		if b.Approvers[i].Identity == identity {
			return b.Approvers[i].Role
		}
	}
	return ""
}

// AllowsActionType reports whether the action type code is whitelisted. An
// empty whitelist allows nothing – blueprints gate high-stakes actions, so
// the permissive default would be the wrong one.
func (b *Blueprint) AllowsActionType(code string) bool {
	for _, allowed := range b.AllowedActionTypes {
		if allowed == code {
			return true
		}
	}
	return false
}
