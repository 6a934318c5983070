// Package llmclient implements the provider-agnostic LLM Client: a
// single-shot chat call dispatched by SlotConfig.Provider across the
// openai-compatible, custom-openai-compatible, anthropic, and ollama wire
// shapes, the way a per-provider registry dispatches by provider
// type.
package llmclient

import (
	"context"
	"fmt"
	"os"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
)

// Client performs a single-shot chat completion against one slot's backend.
type Client interface {
	// Complete sends systemPrompt/userPrompt to slot's configured provider
	// and returns the model's reply text.
	Complete(ctx context.Context, slot *config.SlotConfig, systemPrompt, userPrompt string) (string, error)
}

// backend is implemented by each provider-specific wire-shape adapter.
type backend interface {
	complete(ctx context.Context, slot *config.SlotConfig, apiKey, systemPrompt, userPrompt string) (string, error)
}

// Dispatcher routes a completion request to the backend matching
// SlotConfig.Provider, retrying transient failures per retry.go.
type Dispatcher struct {
	openai    backend
	anthropic backend
	ollama    backend
	retry     RetryPolicy
}

// NewDispatcher builds a Dispatcher with the default backends and retry
// policy (500ms·2^k + jitter∈[0,250ms], max 3 retries).
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		openai:    &openAIBackend{},
		anthropic: &anthropicBackend{},
		ollama:    &ollamaBackend{},
		retry:     DefaultRetryPolicy(),
	}
}

var _ Client = (*Dispatcher)(nil)

// Complete dispatches to the backend for slot.Provider, resolving the API
// key from slot.APIKeyEnv unless slot.LocalModel is set, and retries
// retryable ClassifiedErrors per d.retry.
func (d *Dispatcher) Complete(ctx context.Context, slot *config.SlotConfig, systemPrompt, userPrompt string) (string, error) {
	if slot == nil {
		return "", apperr.New(apperr.ClassInternal, "", "slot config is nil")
	}

	var b backend
	switch slot.Provider {
	case config.ProviderOpenAICompatible, config.ProviderCustomOpenAICompatible:
		b = d.openai
	case config.ProviderAnthropic:
		b = d.anthropic
	case config.ProviderOllama:
		b = d.ollama
	default:
		return "", apperr.New(apperr.ClassConfig, slot.Name, fmt.Sprintf("unknown provider %q", slot.Provider))
	}

	apiKey := ""
	if !slot.LocalModel && slot.APIKeyEnv != "" {
		apiKey = os.Getenv(slot.APIKeyEnv)
		if apiKey == "" {
			return "", apperr.New(apperr.ClassConfig, slot.Name, fmt.Sprintf("environment variable %q is not set", slot.APIKeyEnv))
		}
	}

	for attempt := 0; ; attempt++ {
		text, err := b.complete(ctx, slot, apiKey, systemPrompt, userPrompt)
		if err == nil {
			return text, nil
		}

		if ctx.Err() != nil {
			return "", classifyContextErr(ctx, slot.Name)
		}
		if !apperr.IsRetryable(err) || attempt >= d.retry.MaxRetries {
			return "", err
		}
		if werr := d.retry.Wait(ctx, attempt); werr != nil {
			return "", classifyContextErr(ctx, slot.Name)
		}
	}
}

func classifyContextErr(ctx context.Context, slot string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return apperr.Wrap(apperr.ClassTimeout, slot, ctx.Err())
	}
	return apperr.Wrap(apperr.ClassCanceled, slot, ctx.Err())
}
