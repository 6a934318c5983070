package llmclient

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/codeready-toolchain/orchestratord/pkg/config"
)

// ConcurrencyLimiter wraps a Client and bounds how many calls may be
// in flight for a single slot at once, across every session sharing this
// Dispatcher. Each slot gets its own weighted semaphore, created lazily on
// first use and held for the process lifetime.
type ConcurrencyLimiter struct {
	next  Client
	limit int64

	mu    sync.Mutex
	slots map[string]*semaphore.Weighted
}

// NewConcurrencyLimiter returns a ConcurrencyLimiter delegating to next,
// admitting at most perSlot concurrent calls for any one slot name. A
// non-positive perSlot disables limiting and next is returned unwrapped.
func NewConcurrencyLimiter(next Client, perSlot int) Client {
	if perSlot <= 0 {
		return next
	}
	return &ConcurrencyLimiter{
		next:  next,
		limit: int64(perSlot),
		slots: make(map[string]*semaphore.Weighted),
	}
}

var _ Client = (*ConcurrencyLimiter)(nil)

// Complete acquires slot's semaphore before delegating to the wrapped
// Client, releasing it once the call returns. Blocking on the semaphore
// respects ctx: a canceled or expired ctx aborts the wait without ever
// dispatching the call.
func (c *ConcurrencyLimiter) Complete(ctx context.Context, slot *config.SlotConfig, systemPrompt, userPrompt string) (string, error) {
	if slot == nil {
		return c.next.Complete(ctx, slot, systemPrompt, userPrompt)
	}

	sem := c.semaphoreFor(slot.Name)
	if err := sem.Acquire(ctx, 1); err != nil {
		return "", classifyContextErr(ctx, slot.Name)
	}
	defer sem.Release(1)

	if ctx.Err() != nil {
		return "", classifyContextErr(ctx, slot.Name)
	}

	text, err := c.next.Complete(ctx, slot, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *ConcurrencyLimiter) semaphoreFor(slotName string) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()
	sem, ok := c.slots[slotName]
	if !ok {
		sem = semaphore.NewWeighted(c.limit)
		c.slots[slotName] = sem
	}
	return sem
}
