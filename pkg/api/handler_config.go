package api

import (
	"io"
	"net/http"

	echo "github.com/labstack/echo/v5"
	"gopkg.in/yaml.v3"

	"github.com/codeready-toolchain/orchestratord/pkg/collab"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
)

// getConfigHandler handles GET /config: returns the currently
// loaded team configuration as YAML, the same document shape PUT /config
// accepts, so a caller can round-trip GET → edit → PUT.
func (s *Server) getConfigHandler(c *echo.Context) error {
	cfg := s.cfg.Load()

	doc := struct {
		Slots       []config.SlotConfig `yaml:"slots"`
		VoteWeights config.VoteWeights  `yaml:"vote_weights,omitempty"`
		Defaults    *config.Defaults    `yaml:"defaults,omitempty"`
	}{
		Slots:       cfg.Slots.All(),
		VoteWeights: cfg.VoteWeights,
		Defaults:    cfg.Defaults,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "application/yaml", data)
}

// putConfigHandler handles PUT /config: hot-reloads the
// team configuration by validating the request body as a whole new team.yaml
// document, then atomically swapping it into the Holder. In-flight sessions
// keep running against the Config snapshot they started with; only sessions
// created after the swap observe the new configuration.
func (s *Server) putConfigHandler(c *echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	newCfg, err := config.ParseTeamYAML(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{Class: "config", Message: err.Error()})
	}

	s.cfg.Store(newCfg)

	s.store.Append(collab.SessionSlotName, collab.SlotEvent{
		Slot:  collab.SessionSlotName,
		Phase: collab.PhaseMeta,
		Event: collab.EventConfigReloaded,
	})

	stats := newCfg.Stats()
	return c.JSON(http.StatusOK, ConfigurationStats{
		Slots:        stats.Slots,
		EnabledSlots: stats.EnabledSlots,
	})
}

// patchSlotConfigHandler handles POST /models/{slot}/config: a
// narrower hot-reload for a single slot's sampling parameters, without
// requiring a full team.yaml round-trip.
func (s *Server) patchSlotConfigHandler(c *echo.Context) error {
	slotName := c.Param("slot")

	cfg := s.cfg.Load()
	existing, ok := cfg.Slots.Get(slotName)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown slot: "+slotName)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := existing.Params
	if err := yaml.Unmarshal(body, &params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid params document: "+err.Error())
	}

	updated := *existing
	updated.Params = params

	slots := cfg.Slots.All()
	for i := range slots {
		if slots[i].Name == slotName {
			slots[i] = updated
		}
	}

	nextCfg := &config.Config{
		Defaults:    cfg.Defaults,
		VoteWeights: cfg.VoteWeights,
		Slots:       config.NewSlotRegistry(slots),
	}
	if err := config.Validate(nextCfg); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{Class: "config", Message: err.Error()})
	}

	s.cfg.Store(nextCfg)
	return c.JSON(http.StatusOK, updated)
}
