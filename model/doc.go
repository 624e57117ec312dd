// Package model aggregates the in-memory representation of approval policies,
// proposals and mission definitions used by the gatekit engine.
//
// The `policy` and `proposal` sub-packages form the deterministic core: pure
// transition functions over immutable snapshots. The `mission` and `state`
// sub-packages describe the declarative workflow layer loaded from YAML, and
// `types` defines the contract for pluggable action handlers.
package model
