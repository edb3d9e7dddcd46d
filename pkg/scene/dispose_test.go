package scene

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitmenu/orbit/pkg/math3d"
	"github.com/orbitmenu/orbit/pkg/tween"
)

type fakeGeometry struct {
	disposed int
	err      error
}

func (g *fakeGeometry) Dispose() error {
	g.disposed++
	return g.err
}

type fakeMaterial struct {
	opacity  float64
	disposed int
	err      error
}

func (m *fakeMaterial) Opacity() float64     { return m.opacity }
func (m *fakeMaterial) SetOpacity(v float64) { m.opacity = v }
func (m *fakeMaterial) Dispose() error {
	m.disposed++
	return m.err
}

func buildRing(items int, materialsPerItem int) (*Node, []*fakeGeometry, []*fakeMaterial) {
	root := NewNode("ring")
	var geoms []*fakeGeometry
	var mats []*fakeMaterial
	for i := 0; i < items; i++ {
		item := NewNode("item")
		g := &fakeGeometry{}
		item.Geometry = g
		geoms = append(geoms, g)
		for j := 0; j < materialsPerItem; j++ {
			m := &fakeMaterial{opacity: 1}
			item.Materials = append(item.Materials, m)
			mats = append(mats, m)
		}
		root.Add(item)
	}
	return root, geoms, mats
}

func TestDisposeSubtreeFreesEverything(t *testing.T) {
	scene := NewNode("scene")
	// 10 items with array-valued materials, per the submenu shape.
	root, geoms, mats := buildRing(10, 3)
	scene.Add(root)

	require.NoError(t, DisposeSubtree(nil, root))

	for _, g := range geoms {
		assert.Equal(t, 1, g.disposed)
	}
	for _, m := range mats {
		assert.Equal(t, 1, m.disposed, "every element of a material array is freed")
	}
	assert.Empty(t, scene.Children(), "root detached from scene")
	assert.True(t, root.Disposed())
}

func TestDisposeSubtreeIdempotent(t *testing.T) {
	root, geoms, mats := buildRing(4, 2)

	require.NoError(t, DisposeSubtree(nil, root))
	require.NoError(t, DisposeSubtree(nil, root), "second dispose is a no-op")

	for _, g := range geoms {
		assert.Equal(t, 1, g.disposed, "no double-free")
	}
	for _, m := range mats {
		assert.Equal(t, 1, m.disposed, "no double-free")
	}
}

func TestDisposeSubtreeKillsTweens(t *testing.T) {
	eng := tween.NewEngine(nil)
	root, _, _ := buildRing(3, 1)
	item := root.Children()[0]

	completed := false
	eng.Animate(item, tween.Values{"rotation.y": 1}, tween.Config{
		Duration:   time.Second,
		OnComplete: func() { completed = true },
	})
	eng.Animate(root, tween.Values{"opacity": 0}, tween.Config{Duration: time.Second})

	require.NoError(t, DisposeSubtree(eng, root))
	assert.Equal(t, 0, eng.Active(), "all tweens on the subtree are killed")

	for i := 0; i < 120; i++ {
		eng.Update(time.Second / 60)
	}
	assert.False(t, completed, "killed tweens never complete")
}

func TestDisposeSubtreeCollectsErrors(t *testing.T) {
	root, geoms, mats := buildRing(3, 2)
	wantGeom := errors.New("geometry busy")
	wantMat := errors.New("material busy")
	geoms[1].err = wantGeom
	mats[0].err = wantMat

	err := DisposeSubtree(nil, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantGeom)
	assert.ErrorIs(t, err, wantMat)

	// Errors do not abort the teardown.
	for _, g := range geoms {
		assert.Equal(t, 1, g.disposed)
	}
	assert.True(t, root.Disposed())
}

func TestDisposeSubtreeResetsTransforms(t *testing.T) {
	root, _, _ := buildRing(2, 1)
	root.Position = math3d.V3(1, 2, 3)
	root.Rotation.Y = 1.5
	root.Scale = 4
	item := root.Children()[0]
	item.Position = math3d.V3(9, 9, 9)

	require.NoError(t, DisposeSubtree(nil, root))

	assert.Equal(t, math3d.Zero3(), root.Position)
	assert.Equal(t, math3d.Zero3(), root.Rotation)
	assert.InDelta(t, 1, root.Scale, 1e-9)
	assert.Equal(t, math3d.Zero3(), item.Position)
}

func TestDisposedNodeRejectsMutation(t *testing.T) {
	root, _, _ := buildRing(1, 1)
	require.NoError(t, DisposeSubtree(nil, root))

	root.SetProp("rotation.y", 2)
	assert.InDelta(t, 0, root.Rotation.Y, 1e-9, "disposed nodes ignore SetProp")

	child := NewNode("late")
	root.Add(child)
	assert.Empty(t, root.Children(), "disposed nodes accept no children")
}
