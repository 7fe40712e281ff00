package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/pkg/logger"
	"github.com/doeshing/reachout/internal/ports"
)

type stubSession struct {
	client ports.PlatformClient
	err    error
}

func (s *stubSession) Acquire(context.Context) (ports.PlatformClient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.client, nil
}

func (s *stubSession) Invalidate() error { return nil }

func coordinatorConfig() domain.Config {
	return domain.Config{
		Posts: fixturePosts(),
		Settings: domain.Settings{
			CheckIntervalSeconds: 3600,
			MaxActionsPerSession: 100,
		},
	}
}

func newTestCoordinator(t *testing.T, session ports.SessionProvider, ceiling int) (*Coordinator, *Governor) {
	t.Helper()
	log := logger.Nop()
	governor := NewGovernor(ceiling, 0, 0, log)
	governor.sleep = func(context.Context, time.Duration) {}
	store := newTestLedger(t)
	return NewCoordinator(coordinatorConfig(), session, store, governor, log), governor
}

func TestCoordinatorAuthFailureAbortsBeforeAnyPass(t *testing.T) {
	client := fixtureClient()
	session := &stubSession{err: domain.ErrAuthentication}
	coordinator, _ := newTestCoordinator(t, session, 100)

	err := coordinator.Run(context.Background(), RunOptions{Kind: KindSequential})
	require.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Zero(t, client.attempts, "no message may be attempted without a session")
}

func TestCoordinatorWrapsOtherSessionErrors(t *testing.T) {
	session := &stubSession{err: errors.New("cache unreadable")}
	coordinator, _ := newTestCoordinator(t, session, 100)

	err := coordinator.Run(context.Background(), RunOptions{Kind: KindSequential})
	require.ErrorIs(t, err, domain.ErrAuthentication)
}

func TestCoordinatorSinglePass(t *testing.T) {
	client := fixtureClient()
	coordinator, governor := newTestCoordinator(t, &stubSession{client: client}, 100)

	err := coordinator.Run(context.Background(), RunOptions{Kind: KindSequential})
	require.NoError(t, err)
	assert.Len(t, client.sentTo(), 2)
	assert.False(t, governor.Halted())
}

func TestCoordinatorContinuousStopsPermanentlyOnBlock(t *testing.T) {
	client := fixtureClient()
	client.blockOnAttempt = 1
	coordinator, governor := newTestCoordinator(t, &stubSession{client: client}, 100)

	// The hour-long check interval makes the test hang if the loop
	// wrongly schedules a second pass after the block.
	done := make(chan error, 1)
	go func() {
		done <- coordinator.Run(context.Background(), RunOptions{Kind: KindSequential, Continuous: true})
	}()
	select {
	case err := <-done:
		require.ErrorIs(t, err, domain.ErrHalted)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not terminate after a platform block")
	}
	assert.True(t, governor.Halted())
}

func TestCoordinatorContinuousStopsOnCancel(t *testing.T) {
	client := fixtureClient()
	coordinator, _ := newTestCoordinator(t, &stubSession{client: client}, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := coordinator.Run(ctx, RunOptions{Kind: KindSequential, Continuous: true})
	require.NoError(t, err, "an operator stop is a clean exit")
}
