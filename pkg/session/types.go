package session

import (
	"context"
	"sync"
	"time"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
)

// Phase is the ordered, forward-only enum a session moves through.
type Phase string

const (
	PhaseProposal   Phase = "proposal"
	PhaseRefinement Phase = "refinement"
	PhaseVote       Phase = "vote"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// VoteTally maps slot name to accumulated vote weight for one session.
type VoteTally map[string]float64

// Handle is the live state of one request:
// session id, start time, current phase, cancellation signal, per-slot
// latest proposal/refined text, vote tally, final answer, final status.
type Handle struct {
	ID           string
	CampaignID   string
	UserMessage  string
	StartedAt    time.Time
	UpdatedAt    time.Time
	Phase        Phase
	Error        string
	Class        apperr.Class

	Proposals VoteTexts
	Refined   VoteTexts
	Tally     VoteTally
	Winner    string
	Final     string

	mu         sync.RWMutex
	cancelFunc context.CancelFunc
}

// VoteTexts maps slot name to its latest text for a phase.
type VoteTexts map[string]string

// NewHandle creates a fresh Handle for id, in the Proposal phase.
func NewHandle(id, campaignID, userMessage string) *Handle {
	now := time.Now()
	return &Handle{
		ID:          id,
		CampaignID:  campaignID,
		UserMessage: userMessage,
		StartedAt:   now,
		UpdatedAt:   now,
		Phase:       PhaseProposal,
		Proposals:   make(VoteTexts),
		Refined:     make(VoteTexts),
		Tally:       make(VoteTally),
	}
}

// SetCancelFunc stores the cancellation function for this session (thread-safe).
func (h *Handle) SetCancelFunc(cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelFunc = cancel
}

// Cancel invokes the stored cancellation function and marks the session Failed.
// Returns false if no cancel function has been registered yet.
func (h *Handle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelFunc == nil {
		return false
	}
	h.cancelFunc()
	h.Phase = PhaseFailed
	h.Class = apperr.ClassCanceled
	if h.Error == "" {
		h.Error = "canceled"
	}
	h.UpdatedAt = time.Now()
	return true
}

// SetPhase advances the session's current phase (thread-safe).
func (h *Handle) SetPhase(p Phase) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Phase = p
	h.UpdatedAt = time.Now()
}

// SetProposal records slot's Phase-1 text (thread-safe).
func (h *Handle) SetProposal(slot, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Proposals[slot] = text
	h.UpdatedAt = time.Now()
}

// SetRefined records slot's Phase-2 text (thread-safe).
func (h *Handle) SetRefined(slot, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Refined[slot] = text
	h.UpdatedAt = time.Now()
}

// AddVote accumulates weight for the named slot (thread-safe).
func (h *Handle) AddVote(votedFor string, weight float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Tally[votedFor] += weight
	h.UpdatedAt = time.Now()
}

// Finish marks the session Done with the given winner/final answer.
func (h *Handle) Finish(winner, final string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Winner = winner
	h.Final = final
	h.Phase = PhaseDone
	h.UpdatedAt = time.Now()
}

// Fail marks the session Failed with the given error message and
// apperr.ClassInternal.
func (h *Handle) Fail(errMsg string) {
	h.FailClass(apperr.ClassInternal, errMsg)
}

// FailClass marks the session Failed with the given error message, tagged
// with an explicit apperr.Class so callers (e.g. the Public Surface) can
// distinguish a timeout from an ordinary internal failure without parsing
// the message text.
func (h *Handle) FailClass(class apperr.Class, errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Error = errMsg
	h.Class = class
	h.Phase = PhaseFailed
	h.UpdatedAt = time.Now()
}

// IsTerminal reports whether the session has reached Done or Failed.
func (h *Handle) IsTerminal() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.Phase == PhaseDone || h.Phase == PhaseFailed
}

// Snapshot is a safe, immutable copy of a Handle's current state, returned by
// Get/List so callers never race with in-flight mutation.
type Snapshot struct {
	ID          string
	CampaignID  string
	UserMessage string
	StartedAt   time.Time
	UpdatedAt   time.Time
	Phase       Phase
	Error       string
	Class       apperr.Class
	Proposals   VoteTexts
	Refined     VoteTexts
	Tally       VoteTally
	Winner      string
	Final       string
}

// Snapshot returns a safe copy of h for reading.
func (h *Handle) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	proposals := make(VoteTexts, len(h.Proposals))
	for k, v := range h.Proposals {
		proposals[k] = v
	}
	refined := make(VoteTexts, len(h.Refined))
	for k, v := range h.Refined {
		refined[k] = v
	}
	tally := make(VoteTally, len(h.Tally))
	for k, v := range h.Tally {
		tally[k] = v
	}

	return Snapshot{
		ID:          h.ID,
		CampaignID:  h.CampaignID,
		UserMessage: h.UserMessage,
		StartedAt:   h.StartedAt,
		UpdatedAt:   h.UpdatedAt,
		Phase:       h.Phase,
		Error:       h.Error,
		Class:       h.Class,
		Proposals:   proposals,
		Refined:     refined,
		Tally:       tally,
		Winner:      h.Winner,
		Final:       h.Final,
	}
}
