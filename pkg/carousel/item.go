package carousel

import (
	"fmt"

	"github.com/orbitmenu/orbit/pkg/math3d"
	"github.com/orbitmenu/orbit/pkg/scene"
)

// Item is one selectable element of a ring: a group node holding the
// hit target and, once loaded, label and icon geometry.
type Item struct {
	Index    int
	Label    string
	IconRef  string
	LinkedID string
	// Angle is the item's placement angle on the ring.
	Angle float64

	Node  *scene.Node
	hit   *scene.Node
	label *scene.Node
	icon  *scene.Node
}

// buildItem creates the node group for item i of n on a ring of the
// given radius. The group starts with placeholder visuals (no
// geometry); label and icon geometry arrive asynchronously.
func buildItem(desc ItemDescriptor, i, n int, radius float64, submenu bool) *Item {
	angle := math3d.RingAngle(i, n)

	group := scene.NewNode(fmt.Sprintf("item-%d", i))
	group.Position = math3d.RingPosition(angle, radius)

	hit := scene.NewNode("hit")
	hit.Markers = scene.Markers{
		SubmenuItem:  submenu,
		CarouselItem: !submenu,
		ItemIndex:    i,
	}
	group.Add(hit)

	label := scene.NewNode("label")
	label.Position = math3d.V3(0, -0.4, 0)
	group.Add(label)

	icon := scene.NewNode("icon")
	icon.Position = math3d.V3(0, 0.25, 0)
	group.Add(icon)

	return &Item{
		Index:    i,
		Label:    desc.Label,
		IconRef:  desc.IconRef,
		LinkedID: desc.LinkedID,
		Angle:    angle,
		Node:     group,
		hit:      hit,
		label:    label,
		icon:     icon,
	}
}
