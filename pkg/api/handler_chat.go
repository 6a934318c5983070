package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/session"
	"github.com/codeready-toolchain/orchestratord/pkg/skill"
)

// chatHandler handles POST /chat. It blocks until the session
// reaches Done or Failed or the overall session deadline elapses.
func (s *Server) chatHandler(c *echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	handle, err := s.engine.RunSession(c.Request().Context(), req.CampaignID, req.Message)
	if err != nil {
		body := errorBodyFor(err)
		return c.JSON(classToStatus(apperr.ClassOf(err)), ChatResponse{Error: &body})
	}

	snap := handle.Snapshot()
	resp := ChatResponse{
		SessionID:            snap.ID,
		CollaborationSession: snap.ID,
	}

	switch snap.Phase {
	case session.PhaseDone:
		resp.Reply = snap.Final
		resp.Executed = s.maybePromoteSkill(c, snap.Final)
		return c.JSON(http.StatusOK, resp)
	case session.PhaseFailed:
		class := snap.Class
		if class == "" {
			class = apperr.ClassInternal
		}
		resp.Error = &ErrorBody{Class: string(class), Message: snap.Error}
		return c.JSON(classToStatus(class), resp)
	default:
		resp.Error = &ErrorBody{Class: string(apperr.ClassInternal), Message: "session did not reach a terminal phase"}
		return c.JSON(http.StatusInternalServerError, resp)
	}
}

// maybePromoteSkill extracts a promotable skill from the final answer: if it
// contains a fenced code block tagged "skill", extract it, run the Sandbox
// Runner against it with a canned smoke-test input, and promote on success.
func (s *Server) maybePromoteSkill(c *echo.Context, finalAnswer string) *Executed {
	source, ok := skill.ExtractCandidate(finalAnswer)
	if !ok {
		return nil
	}

	cfg := s.cfg.Load()
	candidate := s.skills.Create("skill-"+candidateSuffix(), source)

	result, err := s.skills.Test(c.Request().Context(), s.sandbox, candidate.ID, "hello world", sandboxLimitsFrom(cfg))
	if err != nil {
		return &Executed{OK: false, SkillName: candidate.Name, Promoted: false}
	}

	exec := &Executed{OK: result.OK, SkillName: candidate.Name}
	if result.OK {
		if _, perr := s.skills.Promote(candidate.ID); perr == nil {
			exec.Promoted = true
		}
	}
	return exec
}

func candidateSuffix() string {
	return uuidShort()
}
