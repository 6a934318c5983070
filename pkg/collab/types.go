// Package collab implements the Event Bus and the Collaboration Store: the
// append-only per-(slot, session) log every participant reads and writes,
// and the in-process fan-out used for live streaming, a broadcast to live
// subscribers with no WebSocket or database transport.
package collab

// Phase tags which stage of the protocol an event belongs to, or "meta" for
// events appended to the reserved session virtual-slot log.
type Phase string

const (
	PhaseProposal   Phase = "proposal"
	PhaseRefinement Phase = "refinement"
	PhaseVote       Phase = "vote"
	PhaseMeta       Phase = "meta"
)

// SessionSlotName is the virtual slot name reserved for orchestrator
// meta-events: vote.tally, log.truncated, hot-reload warnings.
const SessionSlotName = "session"

// SlotEvent is one immutable record appended to a slot's log.
type SlotEvent struct {
	TS      int64             `json:"ts"`
	Slot    string            `json:"slot"`
	Session string            `json:"session"`
	Phase   Phase             `json:"phase"`
	Event   string            `json:"event"`
	Text    string            `json:"text"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Well-known event tags.
const (
	EventProposalOK       = "proposal.ok"
	EventProposalError    = "proposal.error"
	EventProposalCanceled = "proposal.canceled"
	EventRefineOK         = "refinement.ok"
	EventRefineError      = "refinement.error"
	EventRefineCanceled   = "refinement.canceled"
	EventVoteOK           = "vote.ok"
	EventVoteError        = "vote.error"
	EventVoteCanceled     = "vote.canceled"
	EventVoteTally        = "vote.tally"
	EventLogTruncated     = "log.truncated"
	EventInputReceived    = "input.received"
	EventConfigReloaded   = "config.reloaded"
	EventChatOK           = "chat.ok"
)
