package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/orchestratord/pkg/collab"
)

// eventsHandler handles GET /events: an SSE stream of every
// SlotEvent published to the Event Bus, optionally filtered by the "slot"
// and "session" query parameters. Grounded on intelligencedev-manifold's
// internal/agents/stream.go SSE handler shape (headers, Flusher, write-loop),
// with the agent-step payload replaced by collab.SlotEvent JSON frames.
func (s *Server) eventsHandler(c *echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	flusher, ok := c.Response().(http.Flusher)
	if !ok {
		return c.String(http.StatusInternalServerError, "streaming unsupported")
	}

	events, cancel, ok := s.bus.Subscribe()
	if !ok {
		return c.JSON(http.StatusServiceUnavailable, ErrorBody{
			Class:   "busy",
			Message: "max concurrent event subscribers reached",
		})
	}
	defer cancel()

	slotFilter := c.QueryParam("slot")
	sessionFilter := c.QueryParam("session")

	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := c.Request().Context()
	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepAlive.C:
			fmt.Fprint(c.Response(), ": keep-alive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return nil
			}
			if slotFilter != "" && ev.Slot != slotFilter {
				continue
			}
			if sessionFilter != "" && ev.Session != sessionFilter {
				continue
			}
			if err := writeSSEEvent(c.Response(), ev); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w io.Writer, ev collab.SlotEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
