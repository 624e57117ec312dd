// Package proposal holds the core action-instance model: a Proposal created
// against a Blueprint, the Attestations recorded on it and the pure transition
// functions that move it through its status machine.
//
// Transitions are side-effect free functions of (snapshot, operation) that
// return a new snapshot plus emitted events. The hosting service is expected
// to apply operations against one proposal serially, in a single total order.
package proposal

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// proposalTag is the fixed domain tag mixed into proposal identity derivation.
const proposalTag = "proposal"

// Decision is an approver's verdict on a proposal digest.
type Decision string

const (
	DecisionPass Decision = "pass"
	DecisionFail Decision = "fail"
)

// Attestation records one approver's decision about a specific payload
// digest. Attestations are stored even when they can never count toward the
// threshold (FAIL decisions, drifted digests) – the audit trail must include
// them.
type Attestation struct {
	Approver  string    `json:"approver"`
	Role      string    `json:"role,omitempty"`
	Decision  Decision  `json:"decision"`
	Digest    Digest    `json:"digest"`
	CreatedAt time.Time `json:"createdAt"`
}

// Proposal is a single requested action awaiting approval, keyed
// deterministically by (blueprint identity, payload digest) so re-submitting
// an identical payload resolves to the same proposal.
type Proposal struct {
	ID            string        `json:"id"`
	BlueprintID   string        `json:"blueprintId"`
	Proposer      string        `json:"proposer,omitempty"`
	ActionType    string        `json:"actionType"`
	PayloadDigest Digest        `json:"payloadDigest"`
	Status        Status        `json:"status"`
	Attestations  []Attestation `json:"attestations,omitempty"`

	// Supersede linkage – set when a blocked or escalated proposal is resolved
	// by resubmission. The link is metadata only; it never reopens a terminal
	// status.
	Supersedes   string `json:"supersedes,omitempty"`
	SupersededBy string `json:"supersededBy,omitempty"`

	CreatedAt        time.Time  `json:"createdAt"`
	ExecutedAt       *time.Time `json:"executedAt,omitempty"`
	ExecutedBy       string     `json:"executedBy,omitempty"`
	EscalationReason string     `json:"escalationReason,omitempty"`
}

// ID derives the proposal identity from (domain tag, blueprint identity,
// payload digest).
func ID(blueprintID string, digest Digest) string {
	h := sha256.New()
	h.Write([]byte(proposalTag))
	h.Write([]byte("|"))
	h.Write([]byte(blueprintID))
	h.Write([]byte("|"))
	h.Write(digest[:])
	return hex.EncodeToString(h.Sum(nil))
}

// New creates a pending proposal.
func New(blueprintID, proposer, actionType string, digest Digest, createdAt time.Time) *Proposal {
	return &Proposal{
		ID:            ID(blueprintID, digest),
		BlueprintID:   blueprintID,
		Proposer:      proposer,
		ActionType:    actionType,
		PayloadDigest: digest,
		Status:        StatusPending,
		CreatedAt:     createdAt,
	}
}

// Clone returns a deep copy so transitions can operate copy-on-write without
// mutating the stored snapshot.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Attestations != nil {
		clone.Attestations = append([]Attestation(nil), p.Attestations...)
	}
	if p.ExecutedAt != nil {
		t := *p.ExecutedAt
		clone.ExecutedAt = &t
	}
	return &clone
}

// HasAttested reports whether identity already recorded an attestation.
func (p *Proposal) HasAttested(identity string) bool {
	for i := range p.Attestations {
		if p.Attestations[i].Approver == identity {
			return true
		}
	}
	return false
}

// MatchingPassCount counts attestations that are eligible to satisfy the
// threshold: decision PASS and digest equal to the proposal's payload digest.
func (p *Proposal) MatchingPassCount() int {
	count := 0
	for i := range p.Attestations {
		att := &p.Attestations[i]
		if att.Decision == DecisionPass && att.Digest == p.PayloadDigest {
			count++
		}
	}
	return count
}
