package config

// Provider identifies the wire shape a slot's LLM Client backend speaks.
type Provider string

const (
	ProviderOpenAICompatible       Provider = "openai-compatible"
	ProviderCustomOpenAICompatible Provider = "custom-openai-compatible"
	ProviderAnthropic              Provider = "anthropic"
	ProviderOllama                 Provider = "ollama"
)

// IsValid reports whether p is one of the recognized provider wire shapes.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAICompatible, ProviderCustomOpenAICompatible, ProviderAnthropic, ProviderOllama:
		return true
	default:
		return false
	}
}

// DexterSlotName is the reserved name of the chief orchestrator slot.
const DexterSlotName = "dexter"

// SessionSlotName is the virtual slot name reserved for orchestrator meta-events
// (vote.tally, log.truncated, hot-reload warnings) — it is never a dispatched slot.
const SessionSlotName = "session"

// SlotParams are the sampling knobs passed through to the LLM Client on every call.
type SlotParams struct {
	Temperature      float64 `yaml:"temperature" validate:"min=0,max=2"`
	TopP             float64 `yaml:"top_p" validate:"min=0,max=1"`
	MaxTokens        int     `yaml:"max_tokens" validate:"min=1"`
	FrequencyPenalty float64 `yaml:"frequency_penalty,omitempty" validate:"min=-2,max=2"`
	PresencePenalty  float64 `yaml:"presence_penalty,omitempty" validate:"min=-2,max=2"`
	ContextLength    int     `yaml:"context_length,omitempty" validate:"min=1"`
}

// SlotConfig is the declarative configuration of one team member.
type SlotConfig struct {
	Name        string   `yaml:"name" validate:"required"`
	Enabled     bool     `yaml:"enabled"`
	Provider    Provider `yaml:"provider" validate:"required"`
	Endpoint    string   `yaml:"endpoint" validate:"required"`
	Model       string   `yaml:"model" validate:"required"`
	APIKeyEnv   string   `yaml:"api_key_env,omitempty"`
	LocalModel  bool     `yaml:"local_model,omitempty"`
	Identity    string   `yaml:"identity,omitempty"`
	Role        string   `yaml:"role,omitempty"`
	Prompt      string   `yaml:"prompt,omitempty"`
	Params      SlotParams `yaml:"params"`

	CollaborationEnabled   bool   `yaml:"collaboration_enabled"`
	CollaborationDirectory string `yaml:"collaboration_directory,omitempty"`
}

// IsDexter reports whether this slot is the reserved chief-orchestrator slot.
func (s SlotConfig) IsDexter() bool {
	return s.Name == DexterSlotName
}

// VoteWeights maps slot name to a nonnegative voting weight. Slots absent from
// the map default to 1.0 (see Config.WeightFor).
type VoteWeights map[string]float64

// TeamConfig is the top-level YAML document shape for the team file.
type TeamConfig struct {
	Slots       []SlotConfig `yaml:"slots"`
	VoteWeights VoteWeights  `yaml:"vote_weights,omitempty"`
}
