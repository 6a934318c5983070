package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
)

// anthropicAPIVersion is the pinned Anthropic Messages API version sent as
// the anthropic-version header on every request.
const anthropicAPIVersion = "2023-06-01"

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	TopP        float64            `json:"top_p,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Error   *anthropicErrorBody     `json:"error,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// anthropicBackend speaks the anthropic wire shape: POST {endpoint}/messages
// with x-api-key and a pinned anthropic-version header, hand-rolled
// because the SDK would not expose these exact field names.
type anthropicBackend struct {
	httpClient *http.Client
}

func (b *anthropicBackend) client() *http.Client {
	if b.httpClient != nil {
		return b.httpClient
	}
	return http.DefaultClient
}

func (b *anthropicBackend) complete(ctx context.Context, slot *config.SlotConfig, apiKey, systemPrompt, userPrompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:       slot.Model,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: userPrompt}},
		MaxTokens:   slot.Params.MaxTokens,
		Temperature: slot.Params.Temperature,
		TopP:        slot.Params.TopP,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperr.Wrap(apperr.ClassInternal, slot.Name, fmt.Errorf("marshal anthropic request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, slot.Endpoint+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", apperr.Wrap(apperr.ClassInternal, slot.Name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)
	if apiKey != "" {
		httpReq.Header.Set("x-api-key", apiKey)
	}

	resp, err := b.client().Do(httpReq)
	if err != nil {
		return "", apperr.Wrap(apperr.ClassTransport, slot.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperr.Wrap(apperr.ClassTransport, slot.Name, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody anthropicResponse
		msg := string(body)
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != nil && errBody.Error.Message != "" {
			msg = errBody.Error.Message
		}
		return "", apperr.New(apperr.ClassProvider4x, slot.Name, msg).WithStatus(resp.StatusCode)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperr.Wrap(apperr.ClassDecode, slot.Name, fmt.Errorf("decode anthropic response: %w", err))
	}
	if len(parsed.Content) == 0 {
		return "", apperr.New(apperr.ClassDecode, slot.Name, "response contained no content blocks")
	}
	return parsed.Content[0].Text, nil
}
