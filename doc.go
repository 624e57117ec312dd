// Package gatekit provides an embeddable approval and execution policy
// engine.
//
// An authority publishes a blueprint – an approver set, an approval
// threshold and an action-type whitelist. Callers admit action proposals
// against a blueprint; approvers attest over the exact payload digest they
// reviewed, and only matching PASS attestations count toward the threshold.
// Approved proposals pass the execution gate at most once; stalled ones are
// escalated or superseded. Every accepted operation and every rejected
// attempt lands in an append-only audit log.
//
// A mission layer drives multi-step workflows over these primitives:
//
//	srv, _ := gatekit.New()
//	bp, _ := srv.Policy().Create(ctx, "authority", approvers, 2, []string{"deploy"})
//	m, _ := srv.MissionDAO().Load(ctx, "mission.yaml")
//	run, _ := srv.Missions().Start(ctx, m, nil)
//
// For details see the individual sub-packages.
package gatekit
