package gatekit

import "fmt"

// Config is a serialisable representation of the engine configuration. The
// zero value is useful – nested fields inherit their package defaults.
type Config struct {
	Events EventsConfig `json:"events" yaml:"events"`
	Audit  AuditConfig  `json:"audit" yaml:"audit"`
}

// EventsConfig selects the queue vendor event fan-out runs on.
type EventsConfig struct {
	Vendor string `json:"vendor" yaml:"vendor"`
}

// AuditConfig selects the audit log backend; an empty BaseURL keeps the
// in-memory log, any other value enables the durable afs-backed log rooted
// there.
type AuditConfig struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

// DefaultConfig returns the defaults the constructors previously hard-coded.
func DefaultConfig() *Config {
	return &Config{
		Events: EventsConfig{Vendor: "memory"},
	}
}

// Validate returns an error describing invalid settings, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Events.Vendor {
	case "", "memory", "fs":
	default:
		return fmt.Errorf("events.vendor must be memory or fs, got %q", c.Events.Vendor)
	}
	return nil
}
