// Package mission contains the in-memory representation of mission
// definitions – the caller-facing workflow layer built on top of the
// blueprint/proposal primitives. A mission is an ordered sequence of named
// checkpoints, each tagged with the gating mode that decides how the runtime
// passes through it.
package mission

import (
	"fmt"
	"time"

	"github.com/gatekit/gatekit/model/state"
)

// GateMode tags a checkpoint with its gating behaviour.
type GateMode string

const (
	// GateEnforced runs a registered deterministic action handler.
	GateEnforced GateMode = "enforced"

	// GateAttestation proposes an action and waits until the blueprint's
	// approval threshold is met before the action may execute.
	GateAttestation GateMode = "attestation"

	// GateBranch evaluates an explicit limit policy (rounds, wait) against a
	// watched attestation checkpoint and escalates when the limit is hit.
	GateBranch GateMode = "branch"
)

// Action identifies a registered handler invocation: service, method and a
// declarative input that is expanded against the run variables.
type Action struct {
	Service string      `json:"service,omitempty" yaml:"service,omitempty"`
	Method  string      `json:"method,omitempty" yaml:"method,omitempty"`
	Input   interface{} `json:"input,omitempty" yaml:"input,omitempty"`
}

// Checkpoint is one named step of a mission.
type Checkpoint struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Mode        GateMode `json:"mode" yaml:"mode"`

	// Init parameters merged into the run variables before the checkpoint
	// executes.
	Init state.Parameters `json:"init,omitempty" yaml:"init,omitempty"`

	// Action invoked by enforced checkpoints, and by attestation checkpoints
	// once their proposal has been approved and executed.
	Action *Action `json:"action,omitempty" yaml:"action,omitempty"`

	// Attestation gating – which blueprint gates the action, the whitelisted
	// action-type code and the payload template the digest is computed over.
	BlueprintID string      `json:"blueprintId,omitempty" yaml:"blueprintId,omitempty"`
	ActionType  string      `json:"actionType,omitempty" yaml:"actionType,omitempty"`
	Payload     interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`

	// Branch policy – explicit limits instead of hardcoded scenario logic.
	Watch     string `json:"watch,omitempty" yaml:"watch,omitempty"`
	MaxRounds int    `json:"maxRounds,omitempty" yaml:"maxRounds,omitempty"`
	MaxWait   string `json:"maxWait,omitempty" yaml:"maxWait,omitempty"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Export parameters copied from the checkpoint output into the run
	// variables after completion.
	Export state.Parameters `json:"export,omitempty" yaml:"export,omitempty"`
}

// MaxWaitDuration parses the MaxWait limit; zero means no wait limit.
func (c *Checkpoint) MaxWaitDuration() (time.Duration, error) {
	if c.MaxWait == "" {
		return 0, nil
	}
	return time.ParseDuration(c.MaxWait)
}

// Source records where a mission definition was loaded from.
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Mission is a workflow definition: an ordered checkpoint sequence plus the
// initial variable set every run starts from.
type Mission struct {
	Source      *Source          `json:"source,omitempty" yaml:"source,omitempty"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string           `json:"version,omitempty" yaml:"version,omitempty"`
	Init        state.Parameters `json:"init,omitempty" yaml:"init,omitempty"`
	Checkpoints []*Checkpoint    `json:"checkpoints" yaml:"checkpoints"`
}

// Lookup returns the checkpoint with the given name, or nil.
func (m *Mission) Lookup(name string) *Checkpoint {
	for _, cp := range m.Checkpoints {
		if cp.Name == name {
			return cp
		}
	}
	return nil
}

// Validate performs a structural validation of the mission definition. The
// returned slice is empty when the definition is sound.
func (m *Mission) Validate() []error {
	var issues []error
	if len(m.Checkpoints) == 0 {
		issues = append(issues, fmt.Errorf("mission %s has no checkpoints", m.Name))
		return issues
	}
	seen := map[string]bool{}
	for _, cp := range m.Checkpoints {
		if cp.Name == "" {
			issues = append(issues, fmt.Errorf("mission %s has an unnamed checkpoint", m.Name))
			continue
		}
		if seen[cp.Name] {
			issues = append(issues, fmt.Errorf("duplicate checkpoint name %s", cp.Name))
		}
		seen[cp.Name] = true
		switch cp.Mode {
		case GateEnforced:
			if cp.Action == nil {
				issues = append(issues, fmt.Errorf("enforced checkpoint %s has no action", cp.Name))
			}
		case GateAttestation:
			if cp.BlueprintID == "" {
				issues = append(issues, fmt.Errorf("attestation checkpoint %s has no blueprintId", cp.Name))
			}
			if cp.ActionType == "" {
				issues = append(issues, fmt.Errorf("attestation checkpoint %s has no actionType", cp.Name))
			}
		case GateBranch:
			if cp.Watch == "" {
				issues = append(issues, fmt.Errorf("branch checkpoint %s watches nothing", cp.Name))
			}
			if cp.MaxRounds <= 0 && cp.MaxWait == "" {
				issues = append(issues, fmt.Errorf("branch checkpoint %s has neither maxRounds nor maxWait", cp.Name))
			}
			if _, err := cp.MaxWaitDuration(); err != nil {
				issues = append(issues, fmt.Errorf("branch checkpoint %s maxWait: %w", cp.Name, err))
			}
		default:
			issues = append(issues, fmt.Errorf("checkpoint %s has unknown mode %q", cp.Name, cp.Mode))
		}
	}
	for _, cp := range m.Checkpoints {
		if cp.Mode == GateBranch && cp.Watch != "" {
			watched := m.Lookup(cp.Watch)
			if watched == nil {
				issues = append(issues, fmt.Errorf("branch checkpoint %s watches unknown checkpoint %s", cp.Name, cp.Watch))
			} else if watched.Mode != GateAttestation {
				issues = append(issues, fmt.Errorf("branch checkpoint %s must watch an attestation checkpoint", cp.Name))
			}
		}
	}
	return issues
}
