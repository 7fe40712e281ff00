package services

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doeshing/reachout/internal/ports"
)

// Governor enforces the per-run action ceiling, the randomized inter-action
// delay, and the pooled pacing used by the full-parallel strategy. It also
// carries the process-wide halted flag raised on platform pushback: once
// halted it never admits another action until the process restarts.
type Governor struct {
	ceiling  int64
	minDelay time.Duration
	maxDelay time.Duration
	log      ports.Logger

	consumed atomic.Int64
	halted   atomic.Bool

	rngMu sync.Mutex
	rng   *rand.Rand

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewGovernor builds a governor with the given budget and delay window.
func NewGovernor(ceiling int, minDelay, maxDelay time.Duration, log ports.Logger) *Governor {
	return &Governor{
		ceiling:  int64(ceiling),
		minDelay: minDelay,
		maxDelay: maxDelay,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Permit gates one sequential action: it blocks for a uniformly-random
// duration in [minDelay, maxDelay], then reserves one slot of the budget.
// It returns false when the governor is halted or the budget is exhausted;
// the caller must then stop issuing new actions for the rest of the run.
func (g *Governor) Permit(ctx context.Context) bool {
	if g.halted.Load() || ctx.Err() != nil {
		return false
	}
	delay := g.randomDelay()
	if delay > 0 {
		g.log.Debug("waiting before next action", map[string]interface{}{"delay": delay.String()})
		g.sleep(ctx, delay)
	}
	if g.halted.Load() || ctx.Err() != nil {
		return false
	}
	return g.reserve()
}

// reserve atomically claims one budget slot.
func (g *Governor) reserve() bool {
	for {
		n := g.consumed.Load()
		if n >= g.ceiling {
			return false
		}
		if g.consumed.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (g *Governor) randomDelay() time.Duration {
	if g.maxDelay <= g.minDelay {
		return g.minDelay
	}
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return g.minDelay + time.Duration(g.rng.Int63n(int64(g.maxDelay-g.minDelay)))
}

// RunPooled executes actions on up to workers concurrent goroutines, pacing
// admissions by pace. Admission stops as soon as the budget is exhausted or
// the governor halts; in-flight actions drain before RunPooled returns.
func (g *Governor) RunPooled(ctx context.Context, actions []func(context.Context), workers int, pace time.Duration) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, action := range actions {
		// The slot is taken before halt/budget are checked: a worker that
		// signals a block is then guaranteed to be seen by the admission
		// that would otherwise have reused its slot.
		sem <- struct{}{}
		if g.halted.Load() || ctx.Err() != nil {
			<-sem
			break
		}
		if !g.reserve() {
			<-sem
			g.log.Warn("action budget exhausted, deferring remaining targets", map[string]interface{}{
				"deferred": len(actions) - i,
			})
			break
		}
		if i > 0 {
			g.sleep(ctx, pace)
		}
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			defer func() { <-sem }()
			run(ctx)
		}(action)
	}
	wg.Wait()
}

// SignalBlock raises the process-wide halt. Idempotent.
func (g *Governor) SignalBlock() {
	if g.halted.CompareAndSwap(false, true) {
		g.log.Error("platform block detected, halting all further actions", nil, nil)
	}
}

// Halted reports whether a platform block has been signalled.
func (g *Governor) Halted() bool { return g.halted.Load() }

// Consumed returns how many budget slots this run has claimed.
func (g *Governor) Consumed() int { return int(g.consumed.Load()) }

// Remaining returns the unclaimed budget.
func (g *Governor) Remaining() int {
	left := g.ceiling - g.consumed.Load()
	if left < 0 {
		return 0
	}
	return int(left)
}

// ResetBudget zeroes the consumed counter at the start of a new pass. The
// halted flag deliberately survives: a platform block is fatal to all
// future passes.
func (g *Governor) ResetBudget() {
	g.consumed.Store(0)
}
