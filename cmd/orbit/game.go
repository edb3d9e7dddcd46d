package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/carousel"
	"github.com/orbitmenu/orbit/pkg/guard"
	"github.com/orbitmenu/orbit/pkg/scene"
	"github.com/orbitmenu/orbit/pkg/tween"
)

// Game hosts the ring engine in an ebiten window: it owns the frame
// loop, input routing, and the painter's-order projection of the scene.
type Game struct {
	log   *zap.Logger
	title string
	fps   int

	eng    *tween.Engine
	world  *scene.Node
	mgr    *carousel.Manager
	ring   *carousel.Carousel
	sup    *guard.Supervisor
	assets *meshAssets

	cam           *camera
	width, height int
	last          time.Time
}

func newGame(menu *MenuConfig, fps int, log *zap.Logger) (*Game, error) {
	eng := tween.NewEngine(log)
	world := scene.NewNode("world")
	loader := newMeshAssets(log)

	cfg := carousel.Config{
		Radius: menu.Radius,
		FPS:    fps,
		Loader: loader,
		Logger: log,
		Events: carousel.Events{
			ItemSelected: func(index int, linkedID string) {
				log.Info("selected", zap.Int("index", index), zap.String("id", linkedID))
			},
			SubmenuOpened: func(s *carousel.Submenu) {
				log.Info("submenu opened", zap.Int("items", s.Len()))
			},
			SubmenuClosed: func(*scene.Node) {
				log.Info("submenu closed")
			},
		},
	}

	mgr := carousel.NewManager(eng, world, cfg)
	sup := guard.NewSupervisor(guard.DefaultRepairInterval, guard.SystemClock, log)
	mgr.AttachSupervisor(sup)
	sup.Start()

	ring, err := carousel.New(eng, world, mgr, menuEntries(menu.Items), cfg)
	if err != nil {
		sup.Stop()
		return nil, err
	}
	sup.Watch(ring.Guard())

	return &Game{
		log:    log,
		title:  menu.Title,
		fps:    fps,
		eng:    eng,
		world:  world,
		mgr:    mgr,
		ring:   ring,
		sup:    sup,
		assets: loader,
		cam:    newCamera(),
		last:   time.Now(),
	}, nil
}

// menuEntries maps the yaml menu tree onto ring entries.
func menuEntries(items []MenuItem) []carousel.Entry {
	entries := make([]carousel.Entry, 0, len(items))
	for _, item := range items {
		e := carousel.Entry{ItemDescriptor: descriptorFor(item)}
		for _, child := range item.Children {
			e.Submenu = append(e.Submenu, descriptorFor(child))
		}
		entries = append(entries, e)
	}
	return entries
}

func descriptorFor(item MenuItem) carousel.ItemDescriptor {
	icon := item.Icon
	if item.Model != "" {
		icon = item.Model
	}
	return carousel.ItemDescriptor{
		Label:    item.Label,
		IconRef:  icon,
		LinkedID: item.ID,
	}
}

// Update implements ebiten.Game. Input first, then one engine tick.
func (g *Game) Update() error {
	now := time.Now()
	dt := now.Sub(g.last)
	g.last = now
	if dt > 100*time.Millisecond {
		dt = 100 * time.Millisecond
	}

	if err := g.handleInput(); err != nil {
		return err
	}

	g.eng.Update(dt)
	g.ring.Update(now)
	g.mgr.Update(now)
	return nil
}

func (g *Game) handleInput() error {
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.scroll(dy)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		hits := g.raycast(float64(x), float64(y))
		g.ring.HandleClick(hits)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.ring.SelectNext()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.ring.SelectPrev()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.selectHighlighted()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if g.mgr.Active() != nil || g.mgr.Transitioning() {
			g.mgr.CloseActiveSubmenu()
			return nil
		}
		return ebiten.Termination
	}
	return nil
}

// scroll sends wheel ticks to the active submenu when one is open,
// otherwise to the primary ring.
func (g *Game) scroll(dy float64) {
	if sub := g.mgr.Active(); sub != nil {
		if err := sub.Scroll(dy); err != nil {
			g.log.Debug("submenu scroll dropped", zap.Error(err))
		}
		return
	}
	if err := g.ring.Scroll(dy); err != nil {
		g.log.Debug("scroll dropped", zap.Error(err))
	}
}

func (g *Game) selectHighlighted() {
	if sub := g.mgr.Active(); sub != nil {
		sub.HandleItemClick(sub.HighlightedIndex())
		return
	}
	if _, err := g.ring.SelectItem(g.ring.HighlightedIndex(), true); err != nil {
		g.log.Debug("select dropped", zap.Error(err))
	}
}

// raycast projects every interactive node to the screen and returns the
// ones within hit range of (x, y), nearest first.
func (g *Game) raycast(x, y float64) []scene.Hit {
	var hits []scene.Hit
	g.world.Walk(func(n *scene.Node) {
		m := n.Markers
		if !m.SubmenuItem && !m.CarouselItem && !m.CloseButton {
			return
		}
		if n.Disposed() {
			return
		}
		sx, sy, depth, ok := g.cam.project(n.WorldPosition(), g.width, g.height)
		if !ok {
			return
		}
		r := g.cam.hitRadius(worldScale(n), depth)
		dx, dy := x-sx, y-sy
		if dx*dx+dy*dy <= r*r {
			hits = append(hits, scene.Hit{Object: n, Distance: depth})
		}
	})
	sortHits(hits)
	return hits
}

func sortHits(hits []scene.Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Distance < hits[j-1].Distance; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// worldScale accumulates uniform scale up the parent chain.
func worldScale(n *scene.Node) float64 {
	s := 1.0
	for cur := n; cur != nil; cur = cur.Parent() {
		s *= cur.Scale
	}
	return s
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// shutdown stops the supervisor and tears the scene down.
func (g *Game) shutdown() {
	g.sup.Stop()
	g.ring.Dispose()
}
