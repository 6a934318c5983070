package api

import "github.com/codeready-toolchain/orchestratord/pkg/collab"

// ChatResponse is the HTTP response for POST /chat.
type ChatResponse struct {
	SessionID            string     `json:"session_id"`
	Reply                string     `json:"reply"`
	Executed             *Executed  `json:"executed,omitempty"`
	CollaborationSession string     `json:"collaboration_session"`
	Error                *ErrorBody `json:"error,omitempty"`
}

// Executed describes a skill promotion attempt following a winning answer
// flagged as "build a skill".
type Executed struct {
	OK        bool   `json:"ok"`
	SkillName string `json:"skill_name,omitempty"`
	Promoted  bool   `json:"promoted"`
}

// ErrorBody is the failure payload every /chat response carries instead of
// reply on failure: the response is always well-formed JSON, and on
// failure it contains {error:{class, message}}.
type ErrorBody struct {
	Class   string `json:"class"`
	Message string `json:"message"`
}

// HealthResponse is the HTTP response for GET /health, adapted
// from a HealthResponse shape with active-session count and Bus
// drop count in place of database/worker-pool checks.
type HealthResponse struct {
	OK             bool               `json:"ok"`
	Version        string             `json:"version"`
	Configuration  ConfigurationStats `json:"configuration"`
	ActiveSessions int                `json:"active_sessions"`
	BusDrops       int64              `json:"bus_drops"`
	BusSubscribers int                `json:"bus_subscribers"`
}

// ConfigurationStats summarizes loaded configuration for /health.
type ConfigurationStats struct {
	Slots        int `json:"slots"`
	EnabledSlots int `json:"enabled_slots"`
}

// CollaborationHeadResponse is the HTTP response for GET /collaboration/head
// newest-first SlotEvents.
type CollaborationHeadResponse struct {
	Items []collab.SlotEvent `json:"items"`
}

// SkillActionResponse is the HTTP response for the sandbox lifecycle
// endpoints: POST /skills/{id}/test|promote|execute.
type SkillActionResponse struct {
	OK         bool   `json:"ok"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`
	Promoted   bool   `json:"promoted,omitempty"`
	State      string `json:"state,omitempty"`
}
