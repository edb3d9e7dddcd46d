package carousel

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/scene"
	"github.com/orbitmenu/orbit/pkg/tween"
)

const frame = 16 * time.Millisecond

var errLoadFailed = errors.New("load failed")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeGeometry struct {
	ref      string
	disposed int
}

func (g *fakeGeometry) Dispose() error {
	g.disposed++
	return nil
}

// fakeLoader hands out fakeGeometry. In manual mode loads stay pending
// until the test resolves them, mimicking slow asset fetches.
type fakeLoader struct {
	mu      sync.Mutex
	manual  bool
	fail    map[string]bool
	pending []func(scene.Geometry, error)
	loaded  []*fakeGeometry
}

func (l *fakeLoader) LoadLabel(text string, done func(scene.Geometry, error)) {
	l.load("label:"+text, done)
}

func (l *fakeLoader) LoadIcon(ref string, done func(scene.Geometry, error)) {
	l.load("icon:"+ref, done)
}

func (l *fakeLoader) load(ref string, done func(scene.Geometry, error)) {
	l.mu.Lock()
	if l.manual {
		l.pending = append(l.pending, done)
		l.mu.Unlock()
		return
	}
	if l.fail[ref] {
		l.mu.Unlock()
		done(nil, errLoadFailed)
		return
	}
	g := &fakeGeometry{ref: ref}
	l.loaded = append(l.loaded, g)
	l.mu.Unlock()
	done(g, nil)
}

func (l *fakeLoader) resolveAll() {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()
	for _, done := range pending {
		g := &fakeGeometry{}
		l.mu.Lock()
		l.loaded = append(l.loaded, g)
		l.mu.Unlock()
		done(g, nil)
	}
}

func (l *fakeLoader) pendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// env bundles the pieces a ring needs and a frame-stepping driver.
type env struct {
	t     *testing.T
	clock *fakeClock
	eng   *tween.Engine
	world *scene.Node
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		t:     t,
		clock: newFakeClock(),
		eng:   tween.NewEngine(zap.NewNop()),
		world: scene.NewNode("world"),
	}
}

func (e *env) config() Config {
	return Config{Clock: e.clock, Logger: zap.NewNop()}
}

// step advances one frame: clock, tween engine, then the given ticker.
func (e *env) step(tick func(now time.Time)) {
	e.clock.Advance(frame)
	e.eng.Update(frame)
	if tick != nil {
		tick(e.clock.Now())
	}
}

// run steps n frames.
func (e *env) run(n int, tick func(now time.Time)) {
	for i := 0; i < n; i++ {
		e.step(tick)
	}
}

func descriptors(n int) []ItemDescriptor {
	labels := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	out := make([]ItemDescriptor, n)
	for i := 0; i < n; i++ {
		out[i] = ItemDescriptor{
			Label:    labels[i%len(labels)],
			IconRef:  "icon/" + labels[i%len(labels)],
			LinkedID: "id-" + labels[i%len(labels)],
		}
	}
	return out
}
