package slot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/collab"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
	"github.com/codeready-toolchain/orchestratord/pkg/llmclient"
)

// eventTags names the <phase>.ok/error/canceled triad for one phase.
type eventTags struct {
	phase    collab.Phase
	ok       string
	failed   string
	canceled string
}

var (
	proposalTags   = eventTags{collab.PhaseProposal, collab.EventProposalOK, collab.EventProposalError, collab.EventProposalCanceled}
	refinementTags = eventTags{collab.PhaseRefinement, collab.EventRefineOK, collab.EventRefineError, collab.EventRefineCanceled}
	voteTags       = eventTags{collab.PhaseVote, collab.EventVoteOK, collab.EventVoteError, collab.EventVoteCanceled}
)

// Runtime drives one slot's per-session state machine. The
// Engine owns phase sequencing; the Runtime never self-advances.
type Runtime struct {
	cfg    *config.SlotConfig
	client llmclient.Client
	store  *collab.Store

	mu          sync.Mutex
	state       State
	cancel      context.CancelFunc
	lastInputTS int64
}

// New creates a Runtime for cfg, dispatching LLM calls through client and
// recording every transition to store.
func New(cfg *config.SlotConfig, client llmclient.Client, store *collab.Store) *Runtime {
	return &Runtime{cfg: cfg, client: client, store: store, state: StateIdle}
}

// Name returns the underlying slot's name.
func (r *Runtime) Name() string {
	return r.cfg.Name
}

// State returns the current state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cancel aborts any in-flight LLM Call and marks the runtime Canceled. It is
// a no-op if nothing is in flight; the in-flight call's own Dispatch will
// still append the <phase>.canceled event once ctx.Err() surfaces.
func (r *Runtime) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Runtime) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Proposal dispatches Phase 1.
func (r *Runtime) Proposal(ctx context.Context, session string, callDeadline time.Duration, peerNames []string, userMessage string) Result {
	prompt := ProposalPrompt(peerNames, r.cfg.Role, userMessage)
	prompt = WithPendingInput(prompt, r.drainPendingInput(session))
	return r.dispatch(ctx, session, proposalTags, StateRunningProposal, StateDoneProposal, callDeadline, prompt)
}

// Refinement dispatches Phase 2.
func (r *Runtime) Refinement(ctx context.Context, session string, callDeadline time.Duration, ownProposal, peerContext string) Result {
	prompt := RefinementPrompt(ownProposal, peerContext)
	prompt = WithPendingInput(prompt, r.drainPendingInput(session))
	return r.dispatch(ctx, session, refinementTags, StateRunningRefinement, StateDoneRefinement, callDeadline, prompt)
}

// Vote dispatches Phase 3. The returned text is the raw vote response;
// parsing/validation is the Engine's responsibility.
func (r *Runtime) Vote(ctx context.Context, session string, callDeadline time.Duration, labeledRefinedAnswers string) Result {
	prompt := VotePrompt(labeledRefinedAnswers)
	prompt = WithPendingInput(prompt, r.drainPendingInput(session))
	return r.dispatch(ctx, session, voteTags, StateRunningVote, StateDoneVote, callDeadline, prompt)
}

// drainPendingInput reads every input.received event appended to this
// slot's log for session since the last dispatch, so the slot's next
// phase-appropriate prompt includes it. Out-of-band input augments the
// next prompt only — it never constitutes a vote or proposal of its own.
// Advances the consumed watermark so the same input is not folded into a
// later prompt again.
func (r *Runtime) drainPendingInput(session string) string {
	r.mu.Lock()
	since := r.lastInputTS
	r.mu.Unlock()

	events := r.store.TailSince(r.cfg.Name, since)
	maxTS := since
	var texts []string
	for _, e := range events {
		if e.TS > maxTS {
			maxTS = e.TS
		}
		if e.Session != session || e.Event != collab.EventInputReceived {
			continue
		}
		texts = append(texts, e.Text)
	}

	r.mu.Lock()
	if maxTS > r.lastInputTS {
		r.lastInputTS = maxTS
	}
	r.mu.Unlock()

	return strings.Join(texts, "\n")
}

func (r *Runtime) dispatch(ctx context.Context, session string, tags eventTags, running, done State, callDeadline time.Duration, userPrompt string) Result {
	callCtx, cancel := context.WithTimeout(ctx, callDeadline)
	r.mu.Lock()
	r.state = running
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	start := time.Now()
	text, err := r.client.Complete(callCtx, r.cfg, r.cfg.Prompt, userPrompt)
	elapsed := time.Since(start)

	if err != nil {
		if apperr.ClassOf(err) == apperr.ClassCanceled || callCtx.Err() != nil {
			r.setState(StateCanceled)
			r.appendEvent(session, tags.phase, tags.canceled, "", map[string]string{
				"duration_ms": fmt.Sprintf("%d", elapsed.Milliseconds()),
			})
			return Result{State: StateCanceled, Err: err}
		}

		r.setState(StateFailed)
		class := apperr.ClassOf(err)
		r.appendEvent(session, tags.phase, tags.failed, err.Error(), map[string]string{
			"class":       string(class),
			"duration_ms": fmt.Sprintf("%d", elapsed.Milliseconds()),
		})
		return Result{State: StateFailed, Err: err}
	}

	r.setState(done)
	r.appendEvent(session, tags.phase, tags.ok, text, map[string]string{
		"duration_ms": fmt.Sprintf("%d", elapsed.Milliseconds()),
		"model":       r.cfg.Model,
	})
	return Result{State: done, Text: text}
}

func (r *Runtime) appendEvent(session string, phase collab.Phase, eventTag, text string, meta map[string]string) {
	_ = r.store.Append(r.cfg.Name, collab.SlotEvent{
		Session: session,
		Phase:   phase,
		Event:   eventTag,
		Text:    text,
		Meta:    meta,
	})
}
