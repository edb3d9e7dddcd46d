package scene

import (
	"errors"

	"github.com/orbitmenu/orbit/pkg/tween"
)

// DisposeSubtree tears down root and every descendant. The phase order
// is load-bearing and enforced here rather than left to callers:
//
//  1. kill every tween targeting a node in the subtree; a tween
//     mutating freed geometry is a use-after-free in the render host
//  2. free geometry and every material, including each element of a
//     multi-material array
//  3. detach the root from its parent
//  4. reset all transforms to identity
//  5. break parent/child references and mark every node disposed
//
// Disposal never stops early: errors from geometry/material handles are
// collected and returned joined, and already-disposed nodes are skipped,
// so calling DisposeSubtree twice is a no-op.
func DisposeSubtree(eng *tween.Engine, root *Node) error {
	if root == nil || root.disposed {
		return nil
	}

	if eng != nil {
		root.Walk(func(n *Node) {
			eng.KillTweensOf(n)
		})
	}

	var errs []error
	root.Walk(func(n *Node) {
		if n.disposed {
			return
		}
		if n.Geometry != nil {
			if err := n.Geometry.Dispose(); err != nil {
				errs = append(errs, err)
			}
		}
		for _, m := range n.Materials {
			if m == nil {
				continue
			}
			if err := m.Dispose(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	root.Detach()

	root.Walk(func(n *Node) {
		n.ResetTransform()
	})

	var release func(n *Node)
	release = func(n *Node) {
		children := n.children
		n.children = nil
		n.parent = nil
		n.Geometry = nil
		n.Materials = nil
		n.disposed = true
		for _, c := range children {
			release(c)
		}
	}
	release(root)

	return errors.Join(errs...)
}
