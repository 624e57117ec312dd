// Package guard provides an optional per-execution veto layer attached to a
// context. It is decoupled from the approval pipeline: a proposal that met
// its threshold can still be refused at execution time by the guard carried
// in the caller's context. A nil *Guard allows everything.
package guard

import (
	"context"
	"strings"
)

// Execution modes recognised by the gate.
const (
	ModeAuto = "auto" // execute approved proposals (default)
	ModeHold = "hold" // consult the Hold callback before executing
	ModeDeny = "deny" // refuse every execution
)

// HoldFunc is invoked when Mode==hold. Returning true releases the
// execution, false refuses it.
type HoldFunc func(ctx context.Context, actionType string, g *Guard) bool

// Guard carries the execution-time veto settings for one caller.
//
//   - Mode controls the high-level behaviour (auto / hold / deny).
//   - AllowList and BlockList filter by action-type code regardless of Mode.
type Guard struct {
	Mode      string
	AllowList []string
	BlockList []string
	Hold      HoldFunc
}

// Config is the declarative, serialisable subset of a Guard.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// FromConfig converts a stored Config into a runtime Guard (without a
// HoldFunc).
func FromConfig(c *Config) *Guard {
	if c == nil {
		return nil
	}
	return &Guard{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// ToConfig converts a runtime Guard into a persistable Config.
func ToConfig(g *Guard) *Config {
	if g == nil {
		return nil
	}
	return &Config{
		Mode:      g.Mode,
		AllowList: append([]string(nil), g.AllowList...),
		BlockList: append([]string(nil), g.BlockList...),
	}
}

// IsAllowed evaluates the lists for an action-type code, case-insensitively.
// The block list wins; an empty allow list allows everything.
func (g *Guard) IsAllowed(actionType string) bool {
	if g == nil {
		return true
	}
	normalized := strings.ToLower(actionType)
	for _, b := range g.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}
	if len(g.AllowList) == 0 {
		return true
	}
	for _, a := range g.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// Admits applies the full guard decision for one execution attempt.
func (g *Guard) Admits(ctx context.Context, actionType string) bool {
	if g == nil {
		return true
	}
	if !g.IsAllowed(actionType) {
		return false
	}
	switch g.Mode {
	case ModeDeny:
		return false
	case ModeHold:
		if g.Hold == nil {
			return false
		}
		return g.Hold(ctx, actionType, g)
	}
	return true
}

type ctxKeyT struct{}

var ctxKey = ctxKeyT{}

// WithGuard attaches a guard to the context.
func WithGuard(ctx context.Context, g *Guard) context.Context {
	if g == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey, g)
}

// FromContext returns the guard carried by ctx, or nil.
func FromContext(ctx context.Context) *Guard {
	if ctx == nil {
		return nil
	}
	if g, ok := ctx.Value(ctxKey).(*Guard); ok {
		return g
	}
	return nil
}
