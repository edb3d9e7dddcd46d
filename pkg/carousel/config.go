// Package carousel implements the ring-menu interaction engine: a
// primary ring of selectable items, at most one submenu ring spawned
// from it, and the manager that serializes every transition between
// them. The engine mutates a scene graph and schedules tweens; the host
// drives it from its animation-frame loop and supplies rendering,
// raycasting and asset loading.
package carousel

import (
	"time"

	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/guard"
	"github.com/orbitmenu/orbit/pkg/scene"
	"github.com/orbitmenu/orbit/pkg/tween"
)

// ItemDescriptor describes one ring item. The engine treats the linked
// id as opaque data for the surrounding application.
type ItemDescriptor struct {
	Label    string
	IconRef  string
	LinkedID string
}

// AssetLoader supplies label and icon geometry for ring items. Load
// calls may invoke done synchronously, or later from another goroutine;
// until then the item renders as a placeholder.
type AssetLoader interface {
	LoadLabel(text string, done func(scene.Geometry, error))
	LoadIcon(ref string, done func(scene.Geometry, error))
}

// Events are the upward notifications the engine emits. All fields are
// optional.
type Events struct {
	SubmenuOpened func(*Submenu)
	SubmenuClosed func(parentItem *scene.Node)
	ItemSelected  func(index int, linkedID string)
}

func (e Events) submenuOpened(s *Submenu) {
	if e.SubmenuOpened != nil {
		e.SubmenuOpened(s)
	}
}

func (e Events) submenuClosed(parent *scene.Node) {
	if e.SubmenuClosed != nil {
		e.SubmenuClosed(parent)
	}
}

func (e Events) itemSelected(index int, linkedID string) {
	if e.ItemSelected != nil {
		e.ItemSelected(index, linkedID)
	}
}

// Config tunes a ring. The zero value is usable; defaults are applied
// on construction.
type Config struct {
	// Radius of the ring in scene units.
	Radius float64
	// ShowDuration is the show/hide scale+opacity tween length.
	ShowDuration time.Duration
	// SelectDuration is the selection rotation tween length.
	SelectDuration time.Duration
	// Ease shapes selection and show/hide tweens.
	Ease tween.Ease
	// TransitionTimeout bounds how long a show/hide/select future may
	// stay pending before it resolves degraded.
	TransitionTimeout time.Duration
	// InitTimeout bounds how long an open waits for submenu readiness.
	InitTimeout time.Duration
	// MaxHold is the guard watchdog deadline.
	MaxHold time.Duration
	// FPS tunes spring physics for momentum and preview motion.
	FPS int

	Loader AssetLoader
	Events Events
	Clock  guard.Clock
	Logger *zap.Logger
}

const (
	defaultRadius            = 3.0
	defaultShowDuration      = 300 * time.Millisecond
	defaultSelectDuration    = 400 * time.Millisecond
	defaultTransitionTimeout = 3 * time.Second
	defaultInitTimeout       = 3 * time.Second
	defaultFPS               = 60
)

func (c Config) withDefaults() Config {
	if c.Radius <= 0 {
		c.Radius = defaultRadius
	}
	if c.ShowDuration <= 0 {
		c.ShowDuration = defaultShowDuration
	}
	if c.SelectDuration <= 0 {
		c.SelectDuration = defaultSelectDuration
	}
	if c.Ease == nil {
		c.Ease = tween.CubicOut
	}
	if c.TransitionTimeout <= 0 {
		c.TransitionTimeout = defaultTransitionTimeout
	}
	if c.InitTimeout <= 0 {
		c.InitTimeout = defaultInitTimeout
	}
	if c.MaxHold <= 0 {
		c.MaxHold = guard.DefaultMaxHold
	}
	if c.FPS <= 0 {
		c.FPS = defaultFPS
	}
	if c.Clock == nil {
		c.Clock = guard.SystemClock
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
