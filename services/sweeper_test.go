package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	links := newFakeLinkRepo()
	timers := newFakeTimerRepo()
	roles := &fakeTransport{}
	svc := NewEntitlementService(links, timers, roles, []string{"Teamherz"}, 7*24*time.Hour)

	require.NoError(t, timers.Touch(context.Background(), "alice",
		time.Now().Add(-30*24*time.Hour)))
	require.NoError(t, links.Upsert(context.Background(), "alice", "U1"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	sweeper := NewSweeper(svc, time.Hour)
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	// The startup pass should expire the stale timer without waiting for
	// the first tick.
	assert.Eventually(t, func() bool {
		exists, err := timers.Exists(context.Background(), "alice")
		return err == nil && !exists
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}

	require.Len(t, roles.revokes, 1)
	assert.Equal(t, roleCall{"U1", ReasonExpired}, roles.revokes[0])
}
