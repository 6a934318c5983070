package config

import (
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Defaults holds the system-wide timing and capacity defaults for the
// collaboration protocol: phase/call/session deadlines and resource caps.
type Defaults struct {
	// PhaseDeadline bounds how long the Engine waits at a phase barrier before
	// force-cancelling any slot still Running.
	PhaseDeadline time.Duration `yaml:"phase_deadline,omitempty"`

	// CallDeadline is the default per-LLM-call timeout applied when the
	// caller's context carries no earlier deadline.
	CallDeadline time.Duration `yaml:"call_deadline,omitempty"`

	// SessionDeadline is the hard overall deadline for one RunSession call.
	SessionDeadline time.Duration `yaml:"session_deadline,omitempty"`

	// MaxConcurrentSessions bounds how many sessions the Session Registry
	// will admit at once; creation beyond the cap returns a busy error.
	MaxConcurrentSessions int `yaml:"max_concurrent_sessions,omitempty" validate:"omitempty,min=1"`

	// MaxConcurrentCallsPerSlot bounds in-flight LLM calls for a single slot.
	MaxConcurrentCallsPerSlot int `yaml:"max_concurrent_calls_per_slot,omitempty" validate:"omitempty,min=1"`

	// EventBusSubscriberCapacity is the bounded channel size given to each
	// Event Bus subscriber.
	EventBusSubscriberCapacity int `yaml:"event_bus_subscriber_capacity,omitempty" validate:"omitempty,min=1"`

	// MaxEventBusSubscribers bounds concurrently live Event Bus subscriptions.
	MaxEventBusSubscribers int `yaml:"max_event_bus_subscribers,omitempty" validate:"omitempty,min=1"`

	// MaxEventsPerLog bounds how many SlotEvents a single slot's in-memory log
	// retains before the oldest are dropped with a log.truncated marker. The
	// count covers every session's events in that slot together; it is not
	// kept per (slot, session).
	MaxEventsPerLog int `yaml:"max_events_per_log,omitempty" validate:"omitempty,min=1"`

	// Sandbox holds the default Sandbox Runner resource limits.
	Sandbox SandboxDefaults `yaml:"sandbox,omitempty"`
}

// SandboxDefaults are the per-installation Sandbox Runner limits. The
// stdout cap applies per installation, not per skill.
type SandboxDefaults struct {
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	MemoryLimitMB int           `yaml:"memory_limit_mb,omitempty" validate:"omitempty,min=1"`
	StdoutCapKB   int           `yaml:"stdout_cap_kb,omitempty" validate:"omitempty,min=1"`
}

// DefaultDefaults returns the built-in values used when no override is set.
func DefaultDefaults() *Defaults {
	return &Defaults{
		PhaseDeadline:              90 * time.Second,
		CallDeadline:               120 * time.Second,
		SessionDeadline:            600 * time.Second,
		MaxConcurrentSessions:      32,
		MaxConcurrentCallsPerSlot:  4,
		EventBusSubscriberCapacity: 1024,
		MaxEventBusSubscribers:     64,
		MaxEventsPerLog:            1024,
		Sandbox: SandboxDefaults{
			Timeout:       10 * time.Second,
			MemoryLimitMB: 256,
			StdoutCapKB:   1024,
		},
	}
}

// applyZeroes fills any zero-valued field of d with the built-in default, so
// a partial YAML `defaults:` block only needs to override what it changes.
// Mirrors a queue-config resolution pattern ("merge user-provided config
// into defaults (non-zero values override)", pkg/config/loader.go).
func (d *Defaults) applyZeroes() error {
	base := DefaultDefaults()
	if err := mergo.Merge(base, d, mergo.WithOverride); err != nil {
		return fmt.Errorf("merging defaults: %w", err)
	}
	*d = *base
	return nil
}
