package slot

import (
	"fmt"
	"strings"
)

// ProposalPrompt builds the Phase-1 user prompt.
func ProposalPrompt(peerNames []string, role, userMessage string) string {
	return fmt.Sprintf(
		"You are participating in a team with peers %s. The user request follows. Produce your best solution/answer as %s. User: %s",
		strings.Join(peerNames, ", "), role, userMessage,
	)
}

// RefinementPrompt builds the Phase-2 user prompt. peerContext
// is the Engine-assembled concatenation of every other slot's Phase-1 text.
func RefinementPrompt(ownProposal, peerContext string) string {
	return fmt.Sprintf(
		"Your previous proposal was: %s. Your peers proposed: %s. Revise your proposal, integrating peer insights where they improve correctness and clarity. Return only the refined answer.",
		ownProposal, peerContext,
	)
}

// VotePrompt builds the Phase-3 user prompt.
func VotePrompt(labeledRefinedAnswers string) string {
	return fmt.Sprintf(
		"Each team member's refined answer follows: %s. Choose the best answer by returning exactly the name of one slot, and nothing else.",
		labeledRefinedAnswers,
	)
}

// PeerLabel formats one peer's contribution for inclusion in peer context or
// the vote ballot, e.g. "analyst (researcher): some text".
func PeerLabel(name, role, text string) string {
	if role == "" {
		return fmt.Sprintf("%s: %s", name, text)
	}
	return fmt.Sprintf("%s (%s): %s", name, role, text)
}

// WithPendingInput folds out-of-band operator input (from
// POST /collaboration/input/{slot}) into prompt, augmenting the
// phase-appropriate prompt without constituting a vote or a proposal of
// its own. A no-op when pending is empty.
func WithPendingInput(prompt, pending string) string {
	if pending == "" {
		return prompt
	}
	return fmt.Sprintf("%s Additional input received from an operator: %s", prompt, pending)
}
