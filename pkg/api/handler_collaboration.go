package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/orchestratord/pkg/collab"
)

// defaultHeadCount is how many events collaborationHeadHandler returns when
// the caller supplies no "n" query parameter.
const defaultHeadCount = 50

// collaborationHeadHandler handles GET /collaboration/head:
// returns the newest n events for a slot's Collaboration Store log.
func (s *Server) collaborationHeadHandler(c *echo.Context) error {
	slotName := c.QueryParam("slot")
	if slotName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "slot query parameter is required")
	}

	n := defaultHeadCount
	if raw := c.QueryParam("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "n must be a nonnegative integer")
		}
		n = parsed
	}

	items := s.store.Head(slotName, n)
	return c.JSON(http.StatusOK, CollaborationHeadResponse{Items: items})
}

// collaborationInputHandler handles POST /collaboration/input/{slot}
// records an out-of-band human message into a slot's
// Collaboration Store log as an input.received event, visible to every
// Event Bus subscriber and to that slot on its next peer-context assembly.
func (s *Server) collaborationInputHandler(c *echo.Context) error {
	slotName := c.Param("slot")
	if slotName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "slot path parameter is required")
	}
	if _, ok := s.cfg.Load().Slots.Get(slotName); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown slot: "+slotName)
	}

	var req CollaborationInputRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	event := collab.SlotEvent{
		Slot:  slotName,
		Phase: collab.PhaseMeta,
		Event: collab.EventInputReceived,
		Text:  req.Message,
	}
	if err := s.store.Append(slotName, event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusAccepted)
}
