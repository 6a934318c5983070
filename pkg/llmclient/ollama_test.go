package llmclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/orchestratord/pkg/config"
)

func TestOllamaBackend_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.False(t, body.Stream)
		assert.Equal(t, "system", body.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Message: &ollamaMessage{Role: "assistant", Content: "hello from ollama"},
		})
	}))
	defer srv.Close()

	b := &ollamaBackend{}
	text, err := b.complete(t.Context(), testSlot(srv.URL, config.ProviderOllama), "", "sys", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello from ollama", text)
}

func TestOllamaBackend_EmptyTextIsNotADecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Message: &ollamaMessage{Role: "assistant", Content: ""},
		})
	}))
	defer srv.Close()

	b := &ollamaBackend{}
	text, err := b.complete(t.Context(), testSlot(srv.URL, config.ProviderOllama), "", "sys", "hi")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestOllamaBackend_InlineErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Error: "model not found"})
	}))
	defer srv.Close()

	b := &ollamaBackend{}
	_, err := b.complete(t.Context(), testSlot(srv.URL, config.ProviderOllama), "", "sys", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}
