package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSupervisorRepairsStuckGuard(t *testing.T) {
	clock := newFakeClock()
	g := New(Config{MaxHold: 10 * time.Millisecond, Clock: clock})
	require.True(t, g.TryAcquire(LockTransitioning))

	s := NewSupervisor(5*time.Millisecond, clock, nil)
	s.Watch(g)
	s.Start()
	defer s.Stop()

	clock.Advance(time.Second)

	require.Eventually(t, func() bool {
		return g.State() == StateIdle
	}, time.Second, 5*time.Millisecond, "supervisor should sweep the stuck guard back to idle")
}

func TestSupervisorLeavesHealthyGuardsAlone(t *testing.T) {
	clock := newFakeClock()
	g := New(Config{MaxHold: time.Hour, Clock: clock})
	require.True(t, g.TryAcquire(LockSelecting))

	s := NewSupervisor(time.Millisecond, clock, nil)
	s.Watch(g)
	s.Start()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.Equal(t, StateSelecting, g.State(), "a held lock within its deadline is untouched")
}

func TestSupervisorStartStopIdempotent(t *testing.T) {
	s := NewSupervisor(time.Millisecond, nil, nil)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSupervisorWatchWhileRunning(t *testing.T) {
	clock := newFakeClock()
	s := NewSupervisor(time.Millisecond, clock, nil)
	s.Start()
	defer s.Stop()

	g := New(Config{MaxHold: time.Millisecond, Clock: clock})
	require.True(t, g.TryAcquire(LockAnimating))
	s.Watch(g)
	clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		return g.State() == StateIdle
	}, time.Second, time.Millisecond)
}
