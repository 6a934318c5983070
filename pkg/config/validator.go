package config

import (
	"fmt"
	"log/slog"
	"net/url"
)

// Validator validates configuration comprehensively with clear, field-qualified
// error messages, mirroring a struct-tag validator's error shape.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at first error).
func (v *Validator) ValidateAll() error {
	if err := v.validateSlots(); err != nil {
		return fmt.Errorf("slot validation failed: %w", err)
	}

	if err := v.validateDexterRequired(); err != nil {
		return err
	}

	if err := v.validateVoteWeights(); err != nil {
		return fmt.Errorf("vote weight validation failed: %w", err)
	}

	if err := v.validateDefaults(); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateSlots() error {
	if v.cfg.Slots == nil || v.cfg.Slots.Len() == 0 {
		return NewValidationError("slots", "", "", fmt.Errorf("at least one slot must be configured"))
	}

	seen := make(map[string]bool)
	for _, slot := range v.cfg.Slots.All() {
		if slot.Name == "" {
			return NewValidationError("slot", "", "name", ErrMissingRequiredField)
		}
		if seen[slot.Name] {
			return NewValidationError("slot", slot.Name, "name", fmt.Errorf("duplicate slot name"))
		}
		seen[slot.Name] = true

		if !slot.Provider.IsValid() {
			return NewValidationError("slot", slot.Name, "provider", fmt.Errorf("invalid provider: %s", slot.Provider))
		}

		if slot.Endpoint == "" {
			return NewValidationError("slot", slot.Name, "endpoint", ErrMissingRequiredField)
		}
		u, err := url.Parse(slot.Endpoint)
		if err != nil || !u.IsAbs() {
			return NewValidationError("slot", slot.Name, "endpoint", fmt.Errorf("must be an absolute URL"))
		}

		if slot.Model == "" {
			return NewValidationError("slot", slot.Name, "model", ErrMissingRequiredField)
		}

		if !slot.LocalModel && slot.Enabled && slot.CollaborationEnabled && slot.APIKeyEnv == "" && slot.Provider != ProviderOllama {
			return NewValidationError("slot", slot.Name, "api_key_env", fmt.Errorf("required unless local_model is set"))
		}

		if err := v.validateParams(slot.Name, slot.Params); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) validateParams(slotName string, p SlotParams) error {
	if p.Temperature < 0 || p.Temperature > 2 {
		return NewValidationError("slot", slotName, "params.temperature", fmt.Errorf("must be in [0,2], got %v", p.Temperature))
	}
	if p.TopP < 0 || p.TopP > 1 {
		return NewValidationError("slot", slotName, "params.top_p", fmt.Errorf("must be in [0,1], got %v", p.TopP))
	}
	if p.MaxTokens < 1 {
		return NewValidationError("slot", slotName, "params.max_tokens", fmt.Errorf("must be positive, got %d", p.MaxTokens))
	}
	if p.FrequencyPenalty < -2 || p.FrequencyPenalty > 2 {
		return NewValidationError("slot", slotName, "params.frequency_penalty", fmt.Errorf("must be in [-2,2], got %v", p.FrequencyPenalty))
	}
	if p.PresencePenalty < -2 || p.PresencePenalty > 2 {
		return NewValidationError("slot", slotName, "params.presence_penalty", fmt.Errorf("must be in [-2,2], got %v", p.PresencePenalty))
	}
	if p.ContextLength != 0 && p.ContextLength < 1 {
		return NewValidationError("slot", slotName, "params.context_length", fmt.Errorf("must be positive, got %d", p.ContextLength))
	}
	return nil
}

// validateDexterRequired enforces the invariant that a slot named "dexter"
// must always exist and be enabled for a session to proceed.
func (v *Validator) validateDexterRequired() error {
	dexter, ok := v.cfg.Slots.Get(DexterSlotName)
	if !ok || !dexter.Enabled {
		return ErrDexterRequired
	}
	return nil
}

// validateVoteWeights rejects negative weights; unknown slot names are
// logged as a warning, not a validation failure.
func (v *Validator) validateVoteWeights() error {
	for name, weight := range v.cfg.VoteWeights {
		if weight < 0 {
			return NewValidationError("vote_weights", name, "", fmt.Errorf("must be nonnegative, got %v", weight))
		}
		if _, ok := v.cfg.Slots.Get(name); !ok {
			slog.Warn("vote weight names an unknown slot; ignored", "slot", name)
		}
	}
	return nil
}

func (v *Validator) validateDefaults() error {
	d := v.cfg.Defaults
	if d == nil {
		return fmt.Errorf("defaults must not be nil")
	}
	if d.PhaseDeadline <= 0 {
		return fmt.Errorf("phase_deadline must be positive, got %v", d.PhaseDeadline)
	}
	if d.CallDeadline <= 0 {
		return fmt.Errorf("call_deadline must be positive, got %v", d.CallDeadline)
	}
	if d.SessionDeadline <= 0 {
		return fmt.Errorf("session_deadline must be positive, got %v", d.SessionDeadline)
	}
	if d.MaxConcurrentSessions < 1 {
		return fmt.Errorf("max_concurrent_sessions must be at least 1, got %d", d.MaxConcurrentSessions)
	}
	if d.MaxConcurrentCallsPerSlot < 1 {
		return fmt.Errorf("max_concurrent_calls_per_slot must be at least 1, got %d", d.MaxConcurrentCallsPerSlot)
	}
	if d.EventBusSubscriberCapacity < 1 {
		return fmt.Errorf("event_bus_subscriber_capacity must be at least 1, got %d", d.EventBusSubscriberCapacity)
	}
	if d.MaxEventBusSubscribers < 1 {
		return fmt.Errorf("max_event_bus_subscribers must be at least 1, got %d", d.MaxEventBusSubscribers)
	}
	if d.MaxEventsPerLog < 1 {
		return fmt.Errorf("max_events_per_log must be at least 1, got %d", d.MaxEventsPerLog)
	}
	if d.Sandbox.Timeout <= 0 {
		return fmt.Errorf("sandbox.timeout must be positive, got %v", d.Sandbox.Timeout)
	}
	if d.Sandbox.MemoryLimitMB < 1 {
		return fmt.Errorf("sandbox.memory_limit_mb must be at least 1, got %d", d.Sandbox.MemoryLimitMB)
	}
	if d.Sandbox.StdoutCapKB < 1 {
		return fmt.Errorf("sandbox.stdout_cap_kb must be at least 1, got %d", d.Sandbox.StdoutCapKB)
	}
	return nil
}
