package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/reachout/internal/pkg/logger"
)

func newTestGovernor(ceiling int) *Governor {
	g := NewGovernor(ceiling, 0, 0, logger.Nop())
	g.sleep = func(context.Context, time.Duration) {}
	return g
}

func TestPermitEnforcesCeiling(t *testing.T) {
	g := newTestGovernor(2)
	ctx := context.Background()

	assert.True(t, g.Permit(ctx))
	assert.True(t, g.Permit(ctx))
	assert.False(t, g.Permit(ctx), "third permit must be denied")
	assert.Equal(t, 2, g.Consumed())
}

func TestPermitAfterBlockAlwaysFalse(t *testing.T) {
	g := newTestGovernor(10)
	g.SignalBlock()
	assert.False(t, g.Permit(context.Background()))
	assert.True(t, g.Halted())
}

func TestResetBudgetKeepsHalt(t *testing.T) {
	g := newTestGovernor(1)
	require.True(t, g.Permit(context.Background()))
	g.SignalBlock()

	g.ResetBudget()
	assert.Equal(t, 0, g.Consumed())
	assert.False(t, g.Permit(context.Background()), "halt must survive a budget reset")
}

func TestPermitRespectsCanceledContext(t *testing.T) {
	g := newTestGovernor(5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, g.Permit(ctx))
}

func TestRunPooledStopsAtBudget(t *testing.T) {
	g := newTestGovernor(3)
	var executed atomic.Int64
	actions := make([]func(context.Context), 10)
	for i := range actions {
		actions[i] = func(context.Context) { executed.Add(1) }
	}

	g.RunPooled(context.Background(), actions, 2, 0)
	assert.Equal(t, int64(3), executed.Load())
	assert.Equal(t, 0, g.Remaining())
}

func TestRunPooledStopsAdmissionOnBlock(t *testing.T) {
	g := newTestGovernor(100)
	var executed atomic.Int64
	actions := make([]func(context.Context), 10)
	for i := range actions {
		n := i
		actions[i] = func(context.Context) {
			executed.Add(1)
			if n == 2 {
				g.SignalBlock()
			}
		}
	}

	// One worker serializes execution, so the block lands before the
	// fourth admission.
	g.RunPooled(context.Background(), actions, 1, 0)
	assert.Equal(t, int64(3), executed.Load())
	assert.True(t, g.Halted())
}

func TestRandomDelayStaysInWindow(t *testing.T) {
	g := NewGovernor(1, 10*time.Millisecond, 50*time.Millisecond, logger.Nop())
	for i := 0; i < 100; i++ {
		d := g.randomDelay()
		require.GreaterOrEqual(t, d, 10*time.Millisecond)
		require.Less(t, d, 50*time.Millisecond)
	}
}
