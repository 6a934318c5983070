package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/orchestratord/pkg/collab"
)

func TestCollaborationHeadHandler(t *testing.T) {
	s := newTestServer(t, "")
	require.NoError(t, s.store.Append("dexter", collab.SlotEvent{
		Session: "sess-1",
		Phase:   collab.PhaseProposal,
		Event:   collab.EventProposalOK,
		Text:    "first",
	}))
	require.NoError(t, s.store.Append("dexter", collab.SlotEvent{
		Session: "sess-1",
		Phase:   collab.PhaseRefinement,
		Event:   collab.EventRefineOK,
		Text:    "second",
	}))

	req := httptest.NewRequest(http.MethodGet, "/collaboration/head?slot=dexter&n=1", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.collaborationHeadHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp CollaborationHeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "second", resp.Items[0].Text)
}

func TestCollaborationHeadHandler_MissingSlot(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/collaboration/head", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	err := s.collaborationHeadHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCollaborationInputHandler(t *testing.T) {
	s := newTestServer(t, "")

	rec := doJSON(t, s, http.MethodPost, "/collaboration/input/dexter", CollaborationInputRequest{Message: "hi"},
		func(c *echo.Context) error {
			c.SetPathValues(echo.PathValues{{Name: "slot", Value: "dexter"}})
			return s.collaborationInputHandler(c)
		})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	items := s.store.Head("dexter", 10)
	require.Len(t, items, 1)
	assert.Equal(t, collab.EventInputReceived, items[0].Event)
	assert.Equal(t, "hi", items[0].Text)
}

func TestCollaborationInputHandler_UnknownSlot(t *testing.T) {
	s := newTestServer(t, "")

	rec := doJSON(t, s, http.MethodPost, "/collaboration/input/nope", CollaborationInputRequest{Message: "hi"},
		func(c *echo.Context) error {
			c.SetPathValues(echo.PathValues{{Name: "slot", Value: "nope"}})
			err := s.collaborationInputHandler(c)
			if err != nil {
				return c.JSON(err.(*echo.HTTPError).Code, nil)
			}
			return nil
		})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
