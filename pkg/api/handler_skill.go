package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/orchestratord/pkg/skill"
)

// skillTestHandler handles POST /skills/{id}/test: runs a
// Candidate Skill through the Sandbox Runner with a caller-supplied input
// message and records the pass/fail result on the skill record.
func (s *Server) skillTestHandler(c *echo.Context) error {
	id := c.Param("id")
	if _, ok := s.skills.Get(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown skill: "+id)
	}

	var req SkillTestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cfg := s.cfg.Load()
	result, err := s.skills.Test(c.Request().Context(), s.sandbox, id, req.InputMessage, sandboxLimitsFrom(cfg))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorBody{Class: "internal", Message: err.Error()})
	}

	return c.JSON(http.StatusOK, SkillActionResponse{
		OK:         result.OK,
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitCode:   result.ExitCode,
		DurationMs: result.DurationMs,
	})
}

// skillPromoteHandler handles POST /skills/{id}/promote:
// moves a Candidate Skill from draft to active, gated on a passing sandbox
// test already having been recorded. Idempotent on an already-active skill.
func (s *Server) skillPromoteHandler(c *echo.Context) error {
	id := c.Param("id")

	promoted, err := s.skills.Promote(id)
	if err != nil {
		return c.JSON(http.StatusConflict, ErrorBody{Class: "internal", Message: err.Error()})
	}

	return c.JSON(http.StatusOK, SkillActionResponse{
		OK:       true,
		Promoted: true,
		State:    string(promoted.State),
	})
}

// skillExecuteHandler handles POST /skills/{id}/execute: runs
// an already-active skill against a caller-supplied input message through
// the Sandbox Runner, the same isolation contract used for testing.
func (s *Server) skillExecuteHandler(c *echo.Context) error {
	id := c.Param("id")
	sk, ok := s.skills.Get(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown skill: "+id)
	}
	if sk.State != skill.StateActive {
		return c.JSON(http.StatusConflict, ErrorBody{Class: "internal", Message: "skill is not active"})
	}

	var req SkillTestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cfg := s.cfg.Load()
	result, err := s.sandbox.Run(c.Request().Context(), sk.Source, sk.EntryName, req.InputMessage, sandboxLimitsFrom(cfg))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorBody{Class: "internal", Message: err.Error()})
	}

	return c.JSON(http.StatusOK, SkillActionResponse{
		OK:         result.OK,
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitCode:   result.ExitCode,
		DurationMs: result.DurationMs,
	})
}
