package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/orchestratord/pkg/config"
	"github.com/codeready-toolchain/orchestratord/pkg/slot"
)

// runPhaseBarrier dispatches every slot in slots concurrently via dispatch
// and waits for all of them, bounded by phaseDeadline: the barrier holds
// until every dispatched slot is Done, Failed, or Canceled, or until the
// phase deadline elapses. Slots still running at the deadline observe a
// canceled context and abstain. Modeled on a counting-latch
// barrier, restated with errgroup.Group — dispatch never returns a non-nil
// error, so no goroutine's failure cancels its peers.
func runPhaseBarrier(ctx context.Context, phaseDeadline time.Duration, slots []config.SlotConfig, dispatch func(context.Context, config.SlotConfig) slot.Result) map[string]slot.Result {
	phaseCtx, cancel := context.WithTimeout(ctx, phaseDeadline)
	defer cancel()

	var mu sync.Mutex
	results := make(map[string]slot.Result, len(slots))

	g := new(errgroup.Group)
	for _, s := range slots {
		s := s
		g.Go(func() error {
			res := dispatch(phaseCtx, s)
			mu.Lock()
			results[s.Name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
