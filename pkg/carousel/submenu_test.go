package carousel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitmenu/orbit/pkg/guard"
	"github.com/orbitmenu/orbit/pkg/math3d"
)

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func newTestSubmenu(t *testing.T, e *env, n int, cfg Config) *Submenu {
	t.Helper()
	parent := e.world
	sub, err := NewSubmenu(e.eng, parent, descriptors(n), cfg)
	require.NoError(t, err)
	e.world.Add(sub.Node())
	return sub
}

func TestNewSubmenuEmptyItems(t *testing.T) {
	e := newEnv(t)
	_, err := NewSubmenu(e.eng, e.world, nil, e.config())
	assert.ErrorIs(t, err, ErrEmptyItems)
}

func TestNewSubmenuStartsHiddenAndFrontFacing(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())

	assert.Equal(t, 0.0, sub.Node().Scale)
	assert.Equal(t, 0, sub.CurrentIndex())
	assert.InDelta(t, math3d.FrontRotation(0), sub.Node().Rotation.Y, 1e-9)
	assert.True(t, closed(sub.Ready()), "no loader means immediately ready")
}

func TestReadinessWaitsForAssetLoads(t *testing.T) {
	e := newEnv(t)
	loader := &fakeLoader{manual: true}
	cfg := e.config()
	cfg.Loader = loader
	sub := newTestSubmenu(t, e, 3, cfg)

	assert.False(t, sub.Initialized())
	assert.Equal(t, 6, loader.pendingCount(), "label and icon per item")

	loader.resolveAll()
	assert.True(t, sub.Initialized())
	assert.True(t, closed(sub.Ready()))
	assert.False(t, sub.InitDegraded())
}

func TestFailedAssetLoadDegradesNotFails(t *testing.T) {
	e := newEnv(t)
	loader := &fakeLoader{fail: map[string]bool{"icon:icon/beta": true}}
	cfg := e.config()
	cfg.Loader = loader
	sub := newTestSubmenu(t, e, 3, cfg)

	assert.True(t, sub.Initialized(), "failed loads still settle readiness")
	assert.True(t, sub.InitDegraded())
}

func TestSelectItemValidatesBeforeMutating(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())
	before := sub.TargetRotation()

	for _, idx := range []int{-1, 5, 100} {
		fut, err := sub.SelectItem(idx, true, false)
		assert.Nil(t, fut)
		assert.ErrorIs(t, err, ErrInvalidIndex)

		var ie *IndexError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, idx, ie.Index)
		assert.Equal(t, 5, ie.Count)
	}

	assert.Equal(t, 0, sub.CurrentIndex())
	assert.Equal(t, before, sub.TargetRotation())
	assert.True(t, sub.Guard().Idle(), "no lock leaks from rejected input")
}

func TestSelectItemSnapRotation(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())

	fut, err := sub.SelectItem(2, false, false)
	require.NoError(t, err)
	assert.True(t, fut.Settled())
	assert.NoError(t, fut.Err())

	want := -(2 * math3d.TwoPi / 5) + math3d.FrontAngle
	assert.InDelta(t, want, sub.Node().Rotation.Y, 1e-9)
	assert.Equal(t, 2, sub.CurrentIndex())
	assert.True(t, sub.Guard().Idle())
}

func TestReselectSameIndexKeepsRotation(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())

	_, err := sub.SelectItem(3, false, false)
	require.NoError(t, err)
	rot := sub.Node().Rotation.Y

	fut, err := sub.SelectItem(3, false, false)
	require.NoError(t, err)
	assert.True(t, fut.Settled())
	assert.Equal(t, rot, sub.Node().Rotation.Y)
	assert.Equal(t, rot, sub.TargetRotation())
}

func TestSelectItemAnimatedCompletes(t *testing.T) {
	e := newEnv(t)
	var selected []int
	cfg := e.config()
	cfg.Events.ItemSelected = func(i int, id string) {
		selected = append(selected, i)
		assert.Equal(t, "id-gamma", id)
	}
	sub := newTestSubmenu(t, e, 5, cfg)

	fut, err := sub.SelectItem(2, true, true)
	require.NoError(t, err)
	assert.False(t, fut.Settled())
	assert.Equal(t, guard.StateSelecting, sub.Guard().State())

	e.run(40, sub.Update)

	assert.True(t, fut.Settled())
	assert.False(t, fut.Degraded())
	assert.Equal(t, 2, sub.CurrentIndex())
	assert.Equal(t, []int{2}, selected)
	assert.True(t, sub.Guard().Idle())

	require.NotNil(t, sub.Preview())
	assert.Equal(t, 2, sub.Preview().Index())
}

func TestSelectionMutualExclusion(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())

	_, err := sub.SelectItem(1, true, false)
	require.NoError(t, err)

	fut, err := sub.SelectItem(2, true, false)
	assert.Nil(t, fut)
	assert.ErrorIs(t, err, guard.ErrBusy)

	e.run(40, sub.Update)
	assert.Equal(t, 1, sub.CurrentIndex(), "loser must not disturb the winner")

	_, err = sub.SelectItem(2, true, false)
	assert.NoError(t, err, "ring is free again after the winner lands")
}

func TestSelectionInterruptsScroll(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())

	require.NoError(t, sub.Scroll(1))
	e.run(3, sub.Update)

	fut, err := sub.SelectItem(2, true, false)
	require.NoError(t, err, "a click takes the ring over from a passive scroll")

	e.run(40, sub.Update)
	assert.True(t, fut.Settled())
	assert.Equal(t, 2, sub.CurrentIndex())
	want := sub.Node().Rotation.Y
	assert.InDelta(t, want, sub.TargetRotation(), 1e-9)
}

func TestScrollRejectedDuringSelection(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())

	_, err := sub.SelectItem(2, true, false)
	require.NoError(t, err)

	assert.ErrorIs(t, sub.Scroll(1), guard.ErrBusy)
}

func TestScrollRetargetsInFlight(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())
	start := sub.TargetRotation()
	step := math3d.TwoPi / 5

	require.NoError(t, sub.Scroll(1))
	e.run(3, sub.Update)
	require.NoError(t, sub.Scroll(1), "second wheel tick retargets, not rejects")

	assert.InDelta(t, start+2*step, sub.TargetRotation(), 1e-9)

	e.run(40, sub.Update)
	assert.InDelta(t, sub.TargetRotation(), sub.Node().Rotation.Y, 1e-9)
	assert.True(t, sub.Guard().Idle())
	assert.Equal(t, math3d.NearestIndex(sub.Node().Rotation.Y, 5), sub.CurrentIndex())
}

func TestShowHideRoundTrip(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 4, e.config())

	show := sub.Show()
	busy := sub.Show()
	assert.True(t, busy.Settled())
	assert.ErrorIs(t, busy.Err(), guard.ErrBusy)

	e.run(25, sub.Update)
	assert.True(t, show.Settled())
	assert.NoError(t, show.Err())
	assert.InDelta(t, 1.0, sub.Node().Scale, 1e-9)

	hide := sub.Hide()
	e.run(25, sub.Update)
	assert.True(t, hide.Settled())
	assert.InDelta(t, 0.0, sub.Node().Scale, 1e-9)
	assert.True(t, sub.Guard().Idle())
}

func TestStalledShowResolvesDegraded(t *testing.T) {
	e := newEnv(t)
	cfg := e.config()
	cfg.TransitionTimeout = 200 * time.Millisecond
	sub := newTestSubmenu(t, e, 4, cfg)

	fut := sub.Show()

	// Starve the tween engine: only the clock and the submenu tick.
	for i := 0; i < 20 && !fut.Settled(); i++ {
		e.clock.Advance(frame)
		sub.Update(e.clock.Now())
	}

	assert.True(t, fut.Settled(), "a stalled driver must not wedge the future")
	assert.True(t, fut.Degraded())
	assert.NoError(t, fut.Err())
	assert.True(t, sub.Guard().Idle(), "timeout path releases the transition lock")
}

func TestStalledSelectionReleasesLocks(t *testing.T) {
	e := newEnv(t)
	cfg := e.config()
	cfg.TransitionTimeout = 200 * time.Millisecond
	sub := newTestSubmenu(t, e, 5, cfg)

	fut, err := sub.SelectItem(2, true, false)
	require.NoError(t, err)

	for i := 0; i < 20 && !fut.Settled(); i++ {
		e.clock.Advance(frame)
		sub.Update(e.clock.Now())
	}

	assert.True(t, fut.Settled())
	assert.True(t, fut.Degraded())
	assert.True(t, sub.Guard().Idle())
	_, ok := sub.Guard().PinnedIndex()
	assert.False(t, ok, "pin released with the lock")
	assert.False(t, sub.Guard().RotationLocked())
}

func TestStaleTransitionCompletionKeepsNewLock(t *testing.T) {
	e := newEnv(t)
	cfg := e.config()
	cfg.TransitionTimeout = 100 * time.Millisecond
	sub := newTestSubmenu(t, e, 3, cfg)

	first := sub.Show()
	e.run(5, sub.Update)
	require.False(t, first.Settled())

	// The driver stalls past the deadline; the show resolves degraded
	// and the transition lock is freed.
	e.clock.Advance(100 * time.Millisecond)
	sub.Update(e.clock.Now())
	require.True(t, first.Settled())
	require.True(t, first.Degraded())
	require.True(t, sub.Guard().Idle())

	second := sub.Hide()
	require.Equal(t, guard.StateTransitioning, sub.Guard().State())

	// The driver recovers and finishes the abandoned show tween while
	// the hide is still in flight. Its completion callback must not
	// release the lock the hide now holds.
	for i := 0; i < 15; i++ {
		e.eng.Update(frame)
	}
	assert.Equal(t, guard.StateTransitioning, sub.Guard().State(),
		"stale completion released a lock it no longer owns")
	assert.False(t, second.Settled())

	for i := 0; i < 6; i++ {
		e.eng.Update(frame)
	}
	assert.True(t, second.Settled())
	assert.NoError(t, second.Err())
	assert.False(t, second.Degraded())
	assert.True(t, sub.Guard().Idle())
}

func TestSustainedScrollSurvivesWatchdog(t *testing.T) {
	e := newEnv(t)
	cfg := e.config()
	cfg.MaxHold = 500 * time.Millisecond
	sub := newTestSubmenu(t, e, 5, cfg)

	// Keep retargeting well past the watchdog deadline. Each wheel tick
	// refreshes the hold, so the sustained scroll is never mistaken for
	// a stuck callback.
	for i := 0; i < 60; i++ {
		require.NoError(t, sub.Scroll(0.2))
		e.step(sub.Update)
		require.Equal(t, guard.StateAnimating, sub.Guard().State(), "frame %d", i)
	}

	e.run(30, sub.Update)
	assert.True(t, sub.Guard().Idle())
	assert.Equal(t, sub.HighlightedIndex(), sub.CurrentIndex())
}

func TestDisposeFreesAssetsOnce(t *testing.T) {
	e := newEnv(t)
	loader := &fakeLoader{}
	cfg := e.config()
	cfg.Loader = loader
	sub := newTestSubmenu(t, e, 5, cfg)
	require.Len(t, loader.loaded, 10)

	sub.Dispose()
	sub.Dispose()

	for _, g := range loader.loaded {
		assert.Equal(t, 1, g.disposed, "%s freed exactly once", g.ref)
	}
	assert.True(t, sub.Disposed())
	assert.Nil(t, sub.Node().Parent())
}

func TestDisposedSubmenuRejectsOperations(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())
	sub.Dispose()

	_, err := sub.SelectItem(1, true, false)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, sub.Scroll(1), ErrDisposed)
	assert.ErrorIs(t, sub.Show().Err(), ErrDisposed)
}

func TestDisposeMidAnimationKillsTweensAndResolves(t *testing.T) {
	e := newEnv(t)
	sub := newTestSubmenu(t, e, 5, e.config())

	fut, err := sub.SelectItem(2, true, true)
	require.NoError(t, err)
	e.run(3, sub.Update)

	sub.Dispose()

	assert.True(t, fut.Settled())
	assert.ErrorIs(t, fut.Err(), ErrDisposed)
	assert.Equal(t, 0, e.eng.Active(), "teardown kills the ring's tweens")
	assert.Equal(t, 0, sub.CurrentIndex(), "interrupted selection never lands")
}

func TestLateAssetAfterDisposeIsFreed(t *testing.T) {
	e := newEnv(t)
	loader := &fakeLoader{manual: true}
	cfg := e.config()
	cfg.Loader = loader
	sub := newTestSubmenu(t, e, 2, cfg)

	sub.Dispose()
	loader.resolveAll()

	for _, g := range loader.loaded {
		assert.Equal(t, 1, g.disposed, "late-arriving asset must not leak")
	}
	assert.True(t, errors.Is(sub.Show().Err(), ErrDisposed))
}
