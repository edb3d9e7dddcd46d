// Package scene provides the retained object graph the ring engine
// mutates: nodes with transforms and opacity, disposable geometry and
// material handles supplied by the render host, raycast hit types, and
// the structured teardown of a node subtree.
package scene

import (
	"github.com/orbitmenu/orbit/pkg/math3d"
)

// Geometry is a host-owned renderable shape. Dispose frees any backing
// resources (e.g. GPU buffers); after Dispose the handle must not be
// used again.
type Geometry interface {
	Dispose() error
}

// Material is a host-owned surface description with adjustable opacity.
type Material interface {
	Opacity() float64
	SetOpacity(float64)
	Dispose() error
}

// Markers tag a node for interaction routing.
type Markers struct {
	SubmenuItem  bool
	CarouselItem bool
	CloseButton  bool
	ItemIndex    int
}

// Node is one element of the scene graph. A node owns its geometry and
// materials; parent/child links are non-owning except through disposal,
// which tears down whole subtrees.
type Node struct {
	Name     string
	Position math3d.Vec3
	Rotation math3d.Vec3 // Euler angles, radians
	Scale    float64     // uniform scale
	opacity  float64

	Geometry  Geometry
	Materials []Material
	Markers   Markers

	parent   *Node
	children []*Node
	disposed bool
}

// NewNode creates a node with identity transform and full opacity.
func NewNode(name string) *Node {
	return &Node{Name: name, Scale: 1, opacity: 1}
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children. The returned slice is shared;
// callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Disposed reports whether the node has been torn down.
func (n *Node) Disposed() bool { return n.disposed }

// Add attaches child to n, detaching it from any previous parent first.
// Adding to or adding a disposed node is a no-op.
func (n *Node) Add(child *Node) {
	if child == nil || child == n || n.disposed || child.disposed {
		return
	}
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n if it is currently a child.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Detach removes the node from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// Walk visits n and every descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Opacity returns the node's opacity.
func (n *Node) Opacity() float64 { return n.opacity }

// SetOpacity sets the node's opacity and pushes it to all materials.
func (n *Node) SetOpacity(v float64) {
	n.opacity = v
	for _, m := range n.Materials {
		m.SetOpacity(v)
	}
}

// ResetTransform restores the identity transform. Leaving stale cached
// transforms behind on disposed nodes corrupts later reuse of pooled
// host objects, so disposal resets every node it visits.
func (n *Node) ResetTransform() {
	n.Position = math3d.Zero3()
	n.Rotation = math3d.Zero3()
	n.Scale = 1
}

// WorldPosition returns the node's position in world space, applying
// ancestor rotations (Y, then X, then Z), scales and translations.
func (n *Node) WorldPosition() math3d.Vec3 {
	pos := math3d.Zero3()
	for cur := n; cur != nil; cur = cur.parent {
		pos = pos.Scale(cur.Scale).
			RotatedY(cur.Rotation.Y).
			RotatedX(cur.Rotation.X).
			RotatedZ(cur.Rotation.Z).
			Add(cur.Position)
	}
	return pos
}

// Prop implements tween.Animatable.
func (n *Node) Prop(name string) (float64, bool) {
	switch name {
	case "position.x":
		return n.Position.X, true
	case "position.y":
		return n.Position.Y, true
	case "position.z":
		return n.Position.Z, true
	case "rotation.x":
		return n.Rotation.X, true
	case "rotation.y":
		return n.Rotation.Y, true
	case "rotation.z":
		return n.Rotation.Z, true
	case "scale":
		return n.Scale, true
	case "opacity":
		return n.opacity, true
	}
	return 0, false
}

// SetProp implements tween.Animatable. Mutation of disposed nodes is
// dropped: a tween completing late must not resurrect freed state.
func (n *Node) SetProp(name string, v float64) {
	if n.disposed {
		return
	}
	switch name {
	case "position.x":
		n.Position.X = v
	case "position.y":
		n.Position.Y = v
	case "position.z":
		n.Position.Z = v
	case "rotation.x":
		n.Rotation.X = v
	case "rotation.y":
		n.Rotation.Y = v
	case "rotation.z":
		n.Rotation.Z = v
	case "scale":
		n.Scale = v
	case "opacity":
		n.SetOpacity(v)
	}
}
