// Package approval defines the attestation tracker contract. Attestations
// are append-only: FAIL decisions and stale-digest attestations are recorded
// like any other, but only PASS decisions over the proposal's current digest
// count toward the blueprint threshold.
package approval
