// Package engine implements the Collaboration Engine: it drives every
// enabled slot through the three-phase Proposal/Refinement/Vote protocol
// and composes the final answer under the dexter-never-wins rule.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
	"github.com/codeready-toolchain/orchestratord/pkg/collab"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
	"github.com/codeready-toolchain/orchestratord/pkg/llmclient"
	"github.com/codeready-toolchain/orchestratord/pkg/session"
	"github.com/codeready-toolchain/orchestratord/pkg/slot"
)

// Engine owns one RunSession invocation at a time per session, wiring the
// Session Registry, Collaboration Store, and LLM Client dispatcher together.
type Engine struct {
	cfg      *config.Holder
	sessions *session.Manager
	store    *collab.Store
	client   llmclient.Client
}

// New builds an Engine over the given config holder, session registry,
// collaboration store, and LLM Client.
func New(cfg *config.Holder, sessions *session.Manager, store *collab.Store, client llmclient.Client) *Engine {
	return &Engine{cfg: cfg, sessions: sessions, store: store, client: client}
}

// RunSession drives one full three-phase collaboration for userMessage and
// returns the session's Handle once it reaches Done or Failed.
func (e *Engine) RunSession(ctx context.Context, campaignID, userMessage string) (*session.Handle, error) {
	cfg := e.cfg.Load()

	handle, err := e.sessions.Create(campaignID, userMessage)
	if err != nil {
		return nil, err
	}
	defer e.sessions.Delete(handle.ID)

	sessionCtx, cancel := context.WithTimeout(ctx, cfg.Defaults.SessionDeadline)
	handle.SetCancelFunc(cancel)
	defer cancel()

	slots := cfg.Slots.Enabled()
	if len(slots) == 0 {
		handle.Fail("no enabled slots configured")
		return handle, nil
	}

	runtimes := make(map[string]*slot.Runtime, len(slots))
	for i := range slots {
		s := slots[i]
		runtimes[s.Name] = slot.New(&s, e.client, e.store)
	}

	// Phase 1: Proposal, every enabled slot in parallel.
	handle.SetPhase(session.PhaseProposal)
	proposalResults := runPhaseBarrier(sessionCtx, cfg.Defaults.PhaseDeadline, slots, func(phaseCtx context.Context, s config.SlotConfig) slot.Result {
		peers := otherNames(slots, s.Name)
		return runtimes[s.Name].Proposal(phaseCtx, handle.ID, cfg.Defaults.CallDeadline, peers, userMessage)
	})

	proposals := survivorTexts(proposalResults)
	for name, text := range proposals {
		handle.SetProposal(name, text)
	}
	survivors := survivorSlots(slots, proposalResults)
	if len(survivors) == 0 {
		handle.Fail("every slot abstained during the proposal phase")
		return handle, nil
	}

	// Phase 2: Refinement, restricted to Phase-1 survivors.
	handle.SetPhase(session.PhaseRefinement)
	refinementResults := runPhaseBarrier(sessionCtx, cfg.Defaults.PhaseDeadline, survivors, func(phaseCtx context.Context, s config.SlotConfig) slot.Result {
		peerContext := assemblePeerContext(survivors, proposals, s.Name)
		return runtimes[s.Name].Refinement(phaseCtx, handle.ID, cfg.Defaults.CallDeadline, proposals[s.Name], peerContext)
	})

	refined := survivorTexts(refinementResults)
	for name, text := range refined {
		handle.SetRefined(name, text)
	}
	survivors = survivorSlots(survivors, refinementResults)

	allWeights := make(map[string]float64, len(slots))
	for _, s := range slots {
		allWeights[s.Name] = cfg.WeightFor(s.Name)
	}

	if len(survivors) == 0 {
		if failSessionOnDeadline(handle, sessionCtx) {
			return handle, nil
		}
		final, winner, ferr := fallbackFromProposals(slots, proposals, allWeights)
		if ferr != nil {
			handle.Fail(ferr.Error())
			return handle, nil
		}
		handle.Finish(winner, final)
		return handle, nil
	}

	// Phase 3: Vote, restricted to Phase-2 survivors.
	handle.SetPhase(session.PhaseVote)
	ballot := assembleBallot(survivors, refined)
	validNames := make(map[string]struct{}, len(survivors))
	for _, s := range survivors {
		validNames[s.Name] = struct{}{}
	}

	voteResults := runPhaseBarrier(sessionCtx, cfg.Defaults.PhaseDeadline, survivors, func(phaseCtx context.Context, s config.SlotConfig) slot.Result {
		return runtimes[s.Name].Vote(phaseCtx, handle.ID, cfg.Defaults.CallDeadline, ballot)
	})

	tally := make(map[string]float64)
	weights := make(map[string]float64, len(survivors))
	for _, s := range survivors {
		weights[s.Name] = cfg.WeightFor(s.Name)
	}
	for name, res := range voteResults {
		if res.Abstained() {
			continue
		}
		votedFor, ok := ParseVote(res.Text, validNames)
		if !ok {
			continue
		}
		weight := weights[name]
		tally[votedFor] += weight
		handle.AddVote(votedFor, weight)
	}

	final, winner, peerWinner := compose(slots, refined, proposals, tally, weights, survivors, allWeights)
	if peerWinner != "" {
		e.emitVoteTally(handle.ID, tally, peerWinner)
	}
	if failSessionOnDeadline(handle, sessionCtx) {
		return handle, nil
	}
	if winner == "" {
		handle.Fail("no slot produced a usable answer")
		return handle, nil
	}
	handle.Finish(winner, final)
	return handle, nil
}

// failSessionOnDeadline forces handle into PhaseFailed, classed as a timeout
// or a cancellation, when sessionCtx has already expired by the time the
// Engine reaches a would-be Done outcome. Without this check a session whose
// overall deadline elapsed mid-vote could still compose a usable answer from
// whatever survived and return Done, masking the deadline breach. Returns
// whether it marked the session Failed.
func failSessionOnDeadline(handle *session.Handle, sessionCtx context.Context) bool {
	switch sessionCtx.Err() {
	case context.DeadlineExceeded:
		handle.FailClass(apperr.ClassTimeout, "session deadline exceeded")
		return true
	case context.Canceled:
		handle.FailClass(apperr.ClassCanceled, "session canceled")
		return true
	default:
		return false
	}
}

// emitVoteTally records the Phase-3 outcome on the reserved session log: the
// peer the vote actually chose (dexter is never a candidate here), alongside
// every candidate's accumulated weight, so a reader of /events or
// /collaboration/head can see who the team ranked first even when dexter's
// own refinement is what gets returned to the user.
func (e *Engine) emitVoteTally(sessionID string, tally map[string]float64, peerWinner string) {
	meta := map[string]string{"winner": peerWinner}
	for name, weight := range tally {
		meta["weight."+name] = strconv.FormatFloat(weight, 'g', -1, 64)
	}
	_ = e.store.Append(collab.SessionSlotName, collab.SlotEvent{
		Session: sessionID,
		Phase:   collab.PhaseMeta,
		Event:   collab.EventVoteTally,
		Text:    peerWinner,
		Meta:    meta,
	})
}

// compose applies the dexter-never-wins rule: dexter's refined text wins
// whenever dexter survived Phase 2 with a refinement (even an empty one);
// otherwise the highest-voted peer refinement wins; absent any vote winner,
// falls back to the best Phase-1 proposal. The peer winner is computed and
// returned regardless of whether dexter's text short-circuits the final
// answer, since the vote's purpose is to rank peer proposals for dexter to
// have composed with, not merely to pick a winner when dexter is silent.
func compose(slots []config.SlotConfig, refined, proposals map[string]string, tally, weights map[string]float64, survivors []config.SlotConfig, allWeights map[string]float64) (final, winner, peerWinner string) {
	candidates := make([]string, 0, len(survivors))
	for _, s := range survivors {
		if s.IsDexter() {
			continue
		}
		if _, ok := refined[s.Name]; ok {
			candidates = append(candidates, s.Name)
		}
	}
	if len(candidates) > 0 {
		peerWinner = TieBreak(tally, weights, candidates)
	}

	if text, ok := refined[config.DexterSlotName]; ok {
		return text, config.DexterSlotName, peerWinner
	}

	if peerWinner == "" {
		final, winner, _ = fallbackFromProposals(slots, proposals, allWeights)
		return final, winner, peerWinner
	}

	return refined[peerWinner], peerWinner, peerWinner
}

// fallbackFromProposals picks the best Phase-1 proposal (by vote weight,
// lexicographic tie-break) when nothing survived to Phase 2. Dexter is
// excluded from winning against peer candidates per the vote rule, but a
// dexter failure in Phase 2 falls back to dexter's own Phase-1 proposal as
// the last-resort candidate when no peer produced one (e.g. a dexter-only
// team) rather than an outright failure.
func fallbackFromProposals(slots []config.SlotConfig, proposals map[string]string, weights map[string]float64) (string, string, error) {
	candidates := make([]string, 0, len(proposals))
	for _, s := range slots {
		if s.IsDexter() {
			continue
		}
		if _, ok := proposals[s.Name]; ok {
			candidates = append(candidates, s.Name)
		}
	}
	if len(candidates) == 0 {
		if text, ok := proposals[config.DexterSlotName]; ok {
			return text, config.DexterSlotName, nil
		}
		return "", "", fmt.Errorf("no slot produced a phase-1 proposal")
	}
	sort.Strings(candidates)
	winner := TieBreak(map[string]float64{}, weights, candidates)
	return proposals[winner], winner, nil
}

func survivorTexts(results map[string]slot.Result) map[string]string {
	out := make(map[string]string, len(results))
	for name, res := range results {
		if !res.Abstained() {
			out[name] = res.Text
		}
	}
	return out
}

func survivorSlots(slots []config.SlotConfig, results map[string]slot.Result) []config.SlotConfig {
	out := make([]config.SlotConfig, 0, len(slots))
	for _, s := range slots {
		if res, ok := results[s.Name]; ok && !res.Abstained() {
			out = append(out, s)
		}
	}
	return out
}
