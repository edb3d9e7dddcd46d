package main

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/orbitmenu/orbit/pkg/math3d"
	"github.com/orbitmenu/orbit/pkg/models"
	"github.com/orbitmenu/orbit/pkg/scene"
)

// camera is a fixed perspective viewpoint above and in front of the
// rings, looking slightly down at the origin.
type camera struct {
	eye   math3d.Vec3
	pitch float64
	focal float64
}

func newCamera() *camera {
	return &camera{
		eye:   math3d.V3(0, 2.2, 9),
		pitch: 0.22,
		focal: 420,
	}
}

// project maps a world position to screen coordinates and view depth.
// Points behind the near plane report ok=false.
func (c *camera) project(p math3d.Vec3, w, h int) (sx, sy, depth float64, ok bool) {
	v := p.Sub(c.eye).RotatedX(c.pitch)
	depth = -v.Z
	if depth < 0.1 {
		return 0, 0, 0, false
	}
	sx = float64(w)/2 + v.X*c.focal/depth
	sy = float64(h)/2 - v.Y*c.focal/depth
	return sx, sy, depth, true
}

// hitRadius is the clickable screen radius of an item at the given
// world scale and depth.
func (c *camera) hitRadius(scale, depth float64) float64 {
	return 0.55 * scale * c.focal / depth
}

type drawCall struct {
	depth float64
	fn    func(*ebiten.Image)
}

// Draw implements ebiten.Game: depth-sorted painter's rendering of the
// scene graph.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 14, G: 16, B: 24, A: 255})

	var calls []drawCall
	g.world.Walk(func(n *scene.Node) {
		if n.Disposed() {
			return
		}
		if call, ok := g.drawCallFor(n); ok {
			calls = append(calls, call)
		}
	})
	sort.Slice(calls, func(i, j int) bool { return calls[i].depth > calls[j].depth })
	for _, c := range calls {
		c.fn(screen)
	}

	g.drawHUD(screen)
}

// drawCallFor builds the deferred draw for one node, keyed off its
// geometry and markers.
func (g *Game) drawCallFor(n *scene.Node) (drawCall, bool) {
	alpha := worldOpacity(n)
	if alpha <= 0.01 {
		return drawCall{}, false
	}
	pos := n.WorldPosition()
	sx, sy, depth, ok := g.cam.project(pos, g.width, g.height)
	if !ok {
		return drawCall{}, false
	}
	ws := worldScale(n)

	if ref, isPreview := strings.CutPrefix(n.Name, "preview:"); isPreview {
		if isMeshRef(ref) {
			if mesh, err := g.assets.loadMesh(ref); err == nil {
				rotY := spinOf(n)
				return drawCall{depth, func(screen *ebiten.Image) {
					g.drawWireframe(screen, mesh, pos, rotY, 0.7*ws, fade(color.RGBA{R: 200, G: 230, B: 255, A: 255}, alpha))
				}}, true
			}
		}
		tint := tintFor(ref)
		r := float32(0.4 * ws * g.cam.focal / depth)
		return drawCall{depth, func(screen *ebiten.Image) {
			vector.DrawFilledCircle(screen, float32(sx), float32(sy), r, fade(tint, alpha), true)
			vector.StrokeCircle(screen, float32(sx), float32(sy), r+3, 1.5, fade(color.RGBA{R: 230, G: 230, B: 240, A: 255}, alpha), true)
		}}, true
	}

	switch geo := n.Geometry.(type) {
	case *iconGeometry:
		if geo.mesh != nil {
			mesh, rotY := geo.mesh, spinOf(n)
			return drawCall{depth, func(screen *ebiten.Image) {
				g.drawWireframe(screen, mesh, pos, rotY, 0.5*ws, fade(color.RGBA{R: 120, G: 220, B: 170, A: 255}, alpha))
			}}, true
		}
		tint := geo.tint
		r := float32(0.3 * ws * g.cam.focal / depth)
		return drawCall{depth, func(screen *ebiten.Image) {
			vector.DrawFilledCircle(screen, float32(sx), float32(sy), r, fade(tint, alpha), true)
		}}, true

	case *labelGeometry:
		text := geo.text
		return drawCall{depth, func(screen *ebiten.Image) {
			ebitenutil.DebugPrintAt(screen, text, int(sx)-3*len(text), int(sy))
		}}, true
	}

	switch {
	case n.Markers.CloseButton:
		r := float32(0.18 * ws * g.cam.focal / depth)
		return drawCall{depth, func(screen *ebiten.Image) {
			vector.DrawFilledCircle(screen, float32(sx), float32(sy), r, fade(color.RGBA{R: 200, G: 80, B: 80, A: 255}, alpha), true)
			ebitenutil.DebugPrintAt(screen, "x", int(sx)-3, int(sy)-8)
		}}, true
	case n.Markers.SubmenuItem || n.Markers.CarouselItem:
		r := float32(g.cam.hitRadius(ws, depth))
		return drawCall{depth, func(screen *ebiten.Image) {
			vector.StrokeCircle(screen, float32(sx), float32(sy), r, 1.5, fade(color.RGBA{R: 70, G: 80, B: 110, A: 255}, alpha), true)
		}}, true
	}
	return drawCall{}, false
}

// drawWireframe projects a normalized mesh at the node's position and
// spin, drawing its deduplicated edges.
func (g *Game) drawWireframe(screen *ebiten.Image, mesh *models.Mesh, pos math3d.Vec3, rotY, scale float64, clr color.Color) {
	for _, e := range mesh.Edges() {
		a := mesh.Positions[e[0]].RotatedY(rotY).Scale(scale).Add(pos)
		b := mesh.Positions[e[1]].RotatedY(rotY).Scale(scale).Add(pos)
		ax, ay, _, okA := g.cam.project(a, g.width, g.height)
		bx, by, _, okB := g.cam.project(b, g.width, g.height)
		if !okA || !okB {
			continue
		}
		vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 1, clr, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	status := fmt.Sprintf("%s  |  %.0f fps  |  item %d/%d",
		g.title, ebiten.ActualFPS(), g.ring.HighlightedIndex()+1, g.ring.Len())
	if sub := g.mgr.Active(); sub != nil {
		status += fmt.Sprintf("  |  submenu %d/%d", sub.HighlightedIndex()+1, sub.Len())
	}
	ebitenutil.DebugPrint(screen, status)
}

// spinOf returns the node's accumulated Y rotation, so previews carry
// both their own spin and the ring's.
func spinOf(n *scene.Node) float64 {
	rot := 0.0
	for cur := n; cur != nil; cur = cur.Parent() {
		rot += cur.Rotation.Y
	}
	return rot
}

// worldOpacity multiplies opacity down the parent chain.
func worldOpacity(n *scene.Node) float64 {
	a := 1.0
	for cur := n; cur != nil; cur = cur.Parent() {
		a *= cur.Opacity()
	}
	return a
}

func fade(c color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(255 * alpha),
	}
}
