package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withParam(c *echo.Context, name, value string) *echo.Context {
	c.SetPathValues(echo.PathValues{{Name: name, Value: value}})
	return c
}

func TestSkillLifecycle_TestPromoteExecute(t *testing.T) {
	s := newTestServer(t, "")
	candidate := s.skills.Create("greeter", "print('hi')")

	// test
	rec := doJSON(t, s, http.MethodPost, "/skills/"+candidate.ID+"/test", SkillTestRequest{InputMessage: "hi"},
		func(c *echo.Context) error { return s.skillTestHandler(withParam(c, "id", candidate.ID)) })
	assert.Equal(t, http.StatusOK, rec.Code)

	var testResp SkillActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &testResp))
	assert.True(t, testResp.OK)

	// promote
	rec = doJSON(t, s, http.MethodPost, "/skills/"+candidate.ID+"/promote", nil,
		func(c *echo.Context) error { return s.skillPromoteHandler(withParam(c, "id", candidate.ID)) })
	assert.Equal(t, http.StatusOK, rec.Code)

	var promoteResp SkillActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &promoteResp))
	assert.True(t, promoteResp.Promoted)
	assert.Equal(t, "active", promoteResp.State)

	// execute
	rec = doJSON(t, s, http.MethodPost, "/skills/"+candidate.ID+"/execute", SkillTestRequest{InputMessage: "again"},
		func(c *echo.Context) error { return s.skillExecuteHandler(withParam(c, "id", candidate.ID)) })
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSkillPromoteHandler_WithoutPassingTestFails(t *testing.T) {
	s := newTestServer(t, "")
	candidate := s.skills.Create("untested", "print('hi')")

	rec := doJSON(t, s, http.MethodPost, "/skills/"+candidate.ID+"/promote", nil,
		func(c *echo.Context) error { return s.skillPromoteHandler(withParam(c, "id", candidate.ID)) })
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSkillExecuteHandler_NotActiveFails(t *testing.T) {
	s := newTestServer(t, "")
	candidate := s.skills.Create("fresh", "print('hi')")

	rec := doJSON(t, s, http.MethodPost, "/skills/"+candidate.ID+"/execute", SkillTestRequest{InputMessage: "x"},
		func(c *echo.Context) error { return s.skillExecuteHandler(withParam(c, "id", candidate.ID)) })
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSkillTestHandler_UnknownSkill(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/skills/nope/test", nil)
	rec := httptest.NewRecorder()
	c := withParam(s.echo.NewContext(req, rec), "id", "nope")

	err := s.skillTestHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
