package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGetConfigHandler(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.getConfigHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Slots []struct {
			Name string `yaml:"name"`
		} `yaml:"slots"`
	}
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Slots, 1)
	assert.Equal(t, "dexter", doc.Slots[0].Name)
}

func TestPutConfigHandler_HotReload(t *testing.T) {
	s := newTestServer(t, "")

	newTeam := []byte(`
slots:
  - name: dexter
    enabled: true
    collaboration_enabled: true
    provider: ollama
    endpoint: http://localhost:11434
    model: test-model
    local_model: true
  - name: helper
    enabled: true
    collaboration_enabled: true
    provider: ollama
    endpoint: http://localhost:11434
    model: test-model-2
    local_model: true
`)

	req := httptest.NewRequest(http.MethodPut, "/config", bytes.NewBuffer(newTeam))
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.putConfigHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, s.cfg.Load().Slots.Len())
}

func TestPutConfigHandler_InvalidYAML(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPut, "/config", bytes.NewBufferString("not: valid: yaml: ["))
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.putConfigHandler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchSlotConfigHandler(t *testing.T) {
	s := newTestServer(t, "")

	body := []byte("temperature: 1.1\ntop_p: 0.9\nmax_tokens: 512\n")
	req := httptest.NewRequest(http.MethodPost, "/models/dexter/config", bytes.NewBuffer(body))
	req.Header.Set(echo.HeaderContentType, "application/yaml")
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.SetPathValues(echo.PathValues{{Name: "slot", Value: "dexter"}})

	require.NoError(t, s.patchSlotConfigHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	updated, ok := s.cfg.Load().Slots.Get("dexter")
	require.True(t, ok)
	assert.Equal(t, 1.1, updated.Params.Temperature)
	assert.Equal(t, 512, updated.Params.MaxTokens)
}
