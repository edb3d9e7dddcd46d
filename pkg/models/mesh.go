// Package models loads 3D meshes used as item preview shapes. Only the
// geometry the wireframe preview needs is kept: positions, triangle
// faces and bounds.
package models

import (
	"github.com/orbitmenu/orbit/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Faces     [][3]int

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Faces) }

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}
	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Normalize recenters the mesh on the origin and scales it to fit in a
// unit sphere, so previews of arbitrary models render at a uniform size.
func (m *Mesh) Normalize() {
	m.CalculateBounds()
	center := m.Center()
	size := m.Size()
	maxDim := size.X
	if size.Y > maxDim {
		maxDim = size.Y
	}
	if size.Z > maxDim {
		maxDim = size.Z
	}
	scale := 1.0
	if maxDim > 0 {
		scale = 2.0 / maxDim
	}
	for i, p := range m.Positions {
		m.Positions[i] = p.Sub(center).Scale(scale)
	}
	m.CalculateBounds()
}

// Edges returns the deduplicated edge list, for wireframe drawing.
func (m *Mesh) Edges() [][2]int {
	type key struct{ a, b int }
	seen := make(map[key]bool, len(m.Faces)*3)
	var edges [][2]int
	add := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		k := key{a, b}
		if seen[k] {
			return
		}
		seen[k] = true
		edges = append(edges, [2]int{a, b})
	}
	for _, f := range m.Faces {
		add(f[0], f[1])
		add(f[1], f[2])
		add(f[2], f[0])
	}
	return edges
}
