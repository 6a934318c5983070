// Package slot implements the Slot Runtime: a per-slot state machine whose
// phase dispatch runs synchronously on the caller's goroutine (the Engine's
// phase barrier starts one goroutine per slot), with a stored cancel func so
// the Engine can abort mid-flight.
package slot

// State is this slot's position in the per-session state machine.
type State string

const (
	StateIdle              State = "idle"
	StateRunningProposal    State = "running_proposal"
	StateDoneProposal       State = "done_proposal"
	StateRunningRefinement  State = "running_refinement"
	StateDoneRefinement     State = "done_refinement"
	StateRunningVote        State = "running_vote"
	StateDoneVote           State = "done_vote"
	StateFailed             State = "failed"
	StateCanceled           State = "canceled"
)

// Result is what one phase dispatch produced.
type Result struct {
	Text  string
	State State
	Err   error
}

// Abstained reports whether this slot should be excluded from the next
// phase's dispatch set: a failed or canceled slot does not block the phase
// barrier.
func (r Result) Abstained() bool {
	return r.State == StateFailed || r.State == StateCanceled
}
