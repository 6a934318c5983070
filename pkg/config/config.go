package config

import "sync/atomic"

// Config is the umbrella configuration object: the slot registry, the vote
// weights, and the system-wide timing/capacity defaults. Hot reload (PUT
// /config) replaces the whole struct atomically via Holder, so in-flight
// sessions keep the config they started with.
type Config struct {
	configDir string

	Defaults    *Defaults
	VoteWeights VoteWeights
	Slots       *SlotRegistry
}

// ConfigDir returns the directory the team file was loaded from, if any.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ConfigStats summarizes loaded configuration for startup logging and /health.
type ConfigStats struct {
	Slots        int
	EnabledSlots int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		Slots:        c.Slots.Len(),
		EnabledSlots: len(c.Slots.Enabled()),
	}
}

// GetSlot retrieves a slot configuration by name.
func (c *Config) GetSlot(name string) (*SlotConfig, error) {
	s, ok := c.Slots.Get(name)
	if !ok {
		return nil, ErrSlotNotFound
	}
	return s, nil
}

// WeightFor returns the voting weight for a slot name, defaulting to 1.0 for
// names absent from VoteWeights.
func (c *Config) WeightFor(slot string) float64 {
	if w, ok := c.VoteWeights[slot]; ok {
		return w
	}
	return 1.0
}

// Holder is an atomically-swappable pointer to the current Config: hot
// reload replaces the whole config struct atomically.
type Holder struct {
	v atomic.Pointer[Config]
}

// NewHolder wraps an initial Config in a Holder.
func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	h.v.Store(cfg)
	return h
}

// Load returns the current Config snapshot.
func (h *Holder) Load() *Config {
	return h.v.Load()
}

// Store atomically replaces the current Config snapshot.
func (h *Holder) Store(cfg *Config) {
	h.v.Store(cfg)
}
