package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/orchestratord/pkg/config"
	"github.com/codeready-toolchain/orchestratord/pkg/sandbox"
)

// uuidShort returns the first 8 hex characters of a fresh UUIDv4, used to
// disambiguate generated names (e.g. candidate skill names) without
// leaking a full UUID into user-facing text.
func uuidShort() string {
	return uuid.New().String()[:8]
}

// sandboxLimitsFrom converts the installation-wide Sandbox Runner defaults
// (the stdout cap is per installation, not per skill) into the
// sandbox.Limits shape the Runner takes.
func sandboxLimitsFrom(cfg *config.Config) sandbox.Limits {
	return sandbox.Limits{
		Timeout:       cfg.Defaults.Sandbox.Timeout,
		MemoryLimitMB: cfg.Defaults.Sandbox.MemoryLimitMB,
		StdoutCap:     cfg.Defaults.Sandbox.StdoutCapKB * 1024,
	}
}

// defaultSandboxTimeout is a 10s sandbox timeout constant; no handler
// references it, since skill actions take their timeout from the
// configured sandbox defaults above.
const defaultSandboxTimeout = 10 * time.Second
