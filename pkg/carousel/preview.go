package carousel

import (
	"github.com/orbitmenu/orbit/pkg/math3d"
	"github.com/orbitmenu/orbit/pkg/scene"
	"github.com/orbitmenu/orbit/pkg/tween"
)

// FloatingPreview is the transient object shown floating above the
// selected item. Its lifecycle is strictly nested inside the owning
// submenu: it is replaced on every selection change and torn down with
// the submenu.
type FloatingPreview struct {
	itemIndex int
	linkedID  string
	node      *scene.Node
	pop       *tween.SpringValue
	eng       *tween.Engine
	disposed  bool
}

const previewHeight = 1.4

// newFloatingPreview builds a preview node above the given item and
// attaches it to the ring so it follows the ring's rotation. The
// pop-in scale is driven by an underdamped spring for a bouncy settle.
func newFloatingPreview(eng *tween.Engine, ring *scene.Node, item *Item, fps int) *FloatingPreview {
	node := scene.NewNode("preview:" + item.IconRef)
	node.Position = item.Node.Position.Add(math3d.V3(0, previewHeight, 0))
	node.Scale = 0
	ring.Add(node)

	pop := tween.NewSpringValue(fps, 5.0, 0.55, 0)
	pop.Target = 1

	return &FloatingPreview{
		itemIndex: item.Index,
		linkedID:  item.LinkedID,
		node:      node,
		pop:       pop,
		eng:       eng,
	}
}

// Index returns the item index the preview belongs to.
func (p *FloatingPreview) Index() int { return p.itemIndex }

// LinkedID returns the previewed item's linked content id.
func (p *FloatingPreview) LinkedID() string { return p.linkedID }

// Node returns the preview's scene node.
func (p *FloatingPreview) Node() *scene.Node { return p.node }

// Update advances the pop-in spring and the idle spin one frame.
func (p *FloatingPreview) Update() {
	if p.disposed {
		return
	}
	p.node.Scale = p.pop.Update()
	p.node.Rotation.Y += 0.02
}

// Dispose tears the preview node down. Idempotent.
func (p *FloatingPreview) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	_ = scene.DisposeSubtree(p.eng, p.node)
	p.node = nil
}

// Disposed reports whether the preview has been torn down.
func (p *FloatingPreview) Disposed() bool { return p.disposed }
