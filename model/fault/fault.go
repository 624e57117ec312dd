// Package fault defines the error taxonomy shared by every gatekit service.
// Faults carry a coarse Kind (policy, notFound, authorization, state,
// integrity) plus a stable Code so that callers and the audit log can classify
// a rejection via errors.As instead of string matching.
package fault

import (
	"errors"
	"fmt"
)

// Kind groups related failure codes.
type Kind string

const (
	// KindPolicy indicates a malformed blueprint configuration.
	KindPolicy Kind = "policy"

	// KindNotFound indicates an unknown blueprint or proposal.
	KindNotFound Kind = "notFound"

	// KindAuthorization indicates the caller is not an eligible approver or
	// executor for the targeted proposal.
	KindAuthorization Kind = "authorization"

	// KindState indicates the operation is invalid for the proposal's current
	// status.
	KindState Kind = "state"

	// KindIntegrity indicates a digest mismatch between the caller supplied
	// value and the proposal's recorded payload digest.
	KindIntegrity Kind = "integrity"
)

// Stable failure codes. The code is part of the public contract – audit
// entries persist it verbatim.
const (
	CodeInvalidPolicy        = "InvalidPolicy"
	CodeUnknownBlueprint     = "UnknownBlueprint"
	CodeUnknownProposal      = "UnknownProposal"
	CodeDisallowedActionType = "DisallowedActionType"
	CodeNotAnApprover        = "NotAnApprover"
	CodeAlreadyAttested      = "AlreadyAttested"
	CodeProposalNotPending   = "ProposalNotPending"
	CodeProposalNotApproved  = "ProposalNotApproved"
	CodeAlreadyExecuted      = "AlreadyExecuted"
	CodeDigestMismatch       = "DigestMismatch"
	CodeNotSupersedable      = "NotSupersedable"
	CodeExecutionDenied      = "ExecutionDenied"
)

// Fault is the concrete error value returned by core operations.
type Fault struct {
	Kind    Kind
	Code    string
	Message string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// New creates a fault with the supplied kind and code.
func New(kind Kind, code string, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the failure code carried by err, or "" when err is not a
// *Fault.
func CodeOf(err error) string {
	if f, ok := asFault(err); ok {
		return f.Code
	}
	return ""
}

// KindOf returns the failure kind carried by err, or "" when err is not a
// *Fault.
func KindOf(err error) Kind {
	if f, ok := asFault(err); ok {
		return f.Kind
	}
	return ""
}

// HasCode reports whether err is a *Fault carrying the supplied code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}

func asFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
