package llmclient

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
)

// openAIBackend speaks the openai-compatible and custom-openai-compatible
// wire shape: POST {endpoint}/chat/completions with a Bearer token, using
// go-openai's typed request/response structs so the client never
// hand-rolls that JSON.
type openAIBackend struct{}

func (b *openAIBackend) complete(ctx context.Context, slot *config.SlotConfig, apiKey, systemPrompt, userPrompt string) (string, error) {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = slot.Endpoint

	client := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model: slot.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:      float32(slot.Params.Temperature),
		TopP:             float32(slot.Params.TopP),
		MaxTokens:        slot.Params.MaxTokens,
		FrequencyPenalty: float32(slot.Params.FrequencyPenalty),
		PresencePenalty:  float32(slot.Params.PresencePenalty),
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIErr(slot.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.ClassDecode, slot.Name, "response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIErr(slot string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperr.Wrap(apperr.ClassTransport, slot, err).WithStatus(apiErr.HTTPStatusCode)
	}
	return apperr.Wrap(apperr.ClassTransport, slot, err)
}
