package scene

// Hit is one raycast intersection, nearest-first when returned in a
// slice from a Raycaster.
type Hit struct {
	Object   *Node
	Distance float64
}

// Raycaster is the host-side hit-test primitive. Coordinates are
// normalized to [0,1] across the viewport.
type Raycaster interface {
	Raycast(x, y float64) []Hit
}

// FindAncestor walks from n up through its parents and returns the
// first node (including n itself) for which pred is true, or nil.
func FindAncestor(n *Node, pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if pred(cur) {
			return cur
		}
	}
	return nil
}
