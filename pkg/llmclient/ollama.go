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

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumCtx      int     `json:"num_ctx,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Message *ollamaMessage `json:"message"`
	Error   string         `json:"error"`
}

// ollamaBackend speaks the ollama wire shape: POST {endpoint}/api/chat with
// stream:false, no auth required when local.
type ollamaBackend struct {
	httpClient *http.Client
}

func (b *ollamaBackend) client() *http.Client {
	if b.httpClient != nil {
		return b.httpClient
	}
	return http.DefaultClient
}

func (b *ollamaBackend) complete(ctx context.Context, slot *config.SlotConfig, _, systemPrompt, userPrompt string) (string, error) {
	reqBody := ollamaRequest{
		Model: slot.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: slot.Params.Temperature,
			TopP:        slot.Params.TopP,
			NumCtx:      slot.Params.ContextLength,
			NumPredict:  slot.Params.MaxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperr.Wrap(apperr.ClassInternal, slot.Name, fmt.Errorf("marshal ollama request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, slot.Endpoint+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", apperr.Wrap(apperr.ClassInternal, slot.Name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
		return "", apperr.New(apperr.ClassProvider4x, slot.Name, string(body)).WithStatus(resp.StatusCode)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperr.Wrap(apperr.ClassDecode, slot.Name, fmt.Errorf("decode ollama response: %w", err))
	}
	if parsed.Error != "" {
		return "", apperr.New(apperr.ClassProvider5x, slot.Name, parsed.Error)
	}
	if parsed.Message == nil {
		return "", apperr.New(apperr.ClassDecode, slot.Name, "response contained no message field")
	}
	return parsed.Message.Content, nil
}
