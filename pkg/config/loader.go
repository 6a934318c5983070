package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// defaultParams is merged into every slot's Params for any field the YAML
// left at its zero value, mirroring a mergo-based queue-config
// resolution in loader.go.
var defaultParams = SlotParams{
	Temperature:   0.7,
	TopP:          1.0,
	MaxTokens:     1024,
	ContextLength: 8192,
}

// teamYAMLConfig is the top-level team.yaml document, plus an optional
// defaults block (phase/call/session deadlines, caps).
type teamYAMLConfig struct {
	Slots       []SlotConfig `yaml:"slots"`
	VoteWeights VoteWeights  `yaml:"vote_weights,omitempty"`
	Defaults    *Defaults    `yaml:"defaults,omitempty"`
}

// Initialize loads, validates, and returns ready-to-use configuration. This
// is the primary entry point, invoked once from cmd/orchestratord/main.go.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"slots", stats.Slots,
		"enabled_slots", stats.EnabledSlots)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	team, err := loader.loadTeamYAML()
	if err != nil {
		return nil, NewLoadError("team.yaml", err)
	}

	for i := range team.Slots {
		if err := applyParamDefaults(&team.Slots[i].Params); err != nil {
			return nil, fmt.Errorf("applying defaults for slot %q: %w", team.Slots[i].Name, err)
		}
	}

	defaults := team.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if err := defaults.applyZeroes(); err != nil {
		return nil, fmt.Errorf("applying system defaults: %w", err)
	}

	voteWeights := team.VoteWeights
	if voteWeights == nil {
		voteWeights = VoteWeights{}
	}

	return &Config{
		configDir:   configDir,
		Defaults:    defaults,
		VoteWeights: voteWeights,
		Slots:       NewSlotRegistry(team.Slots),
	}, nil
}

// applyParamDefaults fills any zero-valued SlotParams field from
// defaultParams, the per-slot analogue of the top-level mergo.Merge call
// over QueueConfig.
func applyParamDefaults(p *SlotParams) error {
	base := defaultParams
	if err := mergo.Merge(&base, p, mergo.WithOverride); err != nil {
		return fmt.Errorf("merging slot params: %w", err)
	}
	*p = base
	return nil
}

// Validate runs the Validator over cfg. Exposed standalone so hot-reload
// handlers can validate a candidate config before swapping it in.
func Validate(cfg *Config) error {
	return NewValidator(cfg).ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadTeamYAML() (*teamYAMLConfig, error) {
	var team teamYAMLConfig
	team.VoteWeights = make(VoteWeights)

	if err := l.loadYAML("team.yaml", &team); err != nil {
		return nil, err
	}

	return &team, nil
}

// ParseTeamYAML parses a team.yaml document from raw bytes, applying the same
// env-expansion and defaulting the file loader uses. Used by the PUT /config
// hot-reload handler, which receives a document body rather than a path.
func ParseTeamYAML(data []byte) (*Config, error) {
	var team teamYAMLConfig
	team.VoteWeights = make(VoteWeights)

	data = ExpandEnv(data)
	if err := yaml.Unmarshal(data, &team); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	for i := range team.Slots {
		if err := applyParamDefaults(&team.Slots[i].Params); err != nil {
			return nil, fmt.Errorf("applying defaults for slot %q: %w", team.Slots[i].Name, err)
		}
	}

	defaults := team.Defaults
	if defaults == nil {
		defaults = DefaultDefaults()
	} else if err := defaults.applyZeroes(); err != nil {
		return nil, fmt.Errorf("applying system defaults: %w", err)
	}

	cfg := &Config{
		Defaults:    defaults,
		VoteWeights: team.VoteWeights,
		Slots:       NewSlotRegistry(team.Slots),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
