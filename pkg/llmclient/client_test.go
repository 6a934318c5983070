package llmclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
)

type stubBackend struct {
	calls   int
	results []struct {
		text string
		err  error
	}
}

func (s *stubBackend) complete(ctx context.Context, slot *config.SlotConfig, apiKey, systemPrompt, userPrompt string) (string, error) {
	r := s.results[s.calls]
	s.calls++
	return r.text, r.err
}

func TestDispatcher_RetriesRetryableErrorThenSucceeds(t *testing.T) {
	stub := &stubBackend{results: []struct {
		text string
		err  error
	}{
		{err: apperr.New(apperr.ClassProvider5x, "analyst", "boom")},
		{text: "recovered"},
	}}

	d := &Dispatcher{openai: stub, retry: RetryPolicy{BaseDelay: time.Millisecond, MaxJitter: 0, MaxRetries: 3}}
	text, err := d.Complete(context.Background(), testSlot("http://example.invalid", config.ProviderOpenAICompatible), "sys", "hi")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, stub.calls)
}

func TestDispatcher_DoesNotRetryNonRetryableError(t *testing.T) {
	stub := &stubBackend{results: []struct {
		text string
		err  error
	}{
		{err: apperr.New(apperr.ClassProvider4x, "analyst", "bad request")},
	}}

	d := &Dispatcher{openai: stub, retry: RetryPolicy{BaseDelay: time.Millisecond, MaxJitter: 0, MaxRetries: 3}}
	_, err := d.Complete(context.Background(), testSlot("http://example.invalid", config.ProviderOpenAICompatible), "sys", "hi")
	require.Error(t, err)
	assert.Equal(t, 1, stub.calls)
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	stub := &stubBackend{results: []struct {
		text string
		err  error
	}{
		{err: apperr.New(apperr.ClassTimeout, "analyst", "slow")},
		{err: apperr.New(apperr.ClassTimeout, "analyst", "slow")},
		{err: apperr.New(apperr.ClassTimeout, "analyst", "slow")},
		{err: apperr.New(apperr.ClassTimeout, "analyst", "slow")},
	}}

	d := &Dispatcher{openai: stub, retry: RetryPolicy{BaseDelay: time.Millisecond, MaxJitter: 0, MaxRetries: 3}}
	_, err := d.Complete(context.Background(), testSlot("http://example.invalid", config.ProviderOpenAICompatible), "sys", "hi")
	require.Error(t, err)
	assert.Equal(t, 4, stub.calls)
}

func TestDispatcher_UnknownProviderIsConfigError(t *testing.T) {
	d := NewDispatcher()
	slot := testSlot("http://example.invalid", config.Provider("carrier-pigeon"))
	_, err := d.Complete(context.Background(), slot, "sys", "hi")
	require.Error(t, err)
	ce, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ClassConfig, ce.Class)
}

func TestDispatcher_MissingAPIKeyEnvIsConfigError(t *testing.T) {
	d := NewDispatcher()
	slot := testSlot("http://example.invalid", config.ProviderOpenAICompatible)
	slot.APIKeyEnv = "ORCHESTRATORD_TEST_UNSET_KEY_XYZ"
	_, err := d.Complete(context.Background(), slot, "sys", "hi")
	require.Error(t, err)
	ce, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ClassConfig, ce.Class)
}
