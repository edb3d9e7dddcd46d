package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/models"
	"github.com/orbitmenu/orbit/pkg/scene"
)

// labelGeometry is the host-side handle for rendered item text.
type labelGeometry struct {
	text     string
	disposed bool
}

func (g *labelGeometry) Dispose() error {
	if g.disposed {
		return fmt.Errorf("label %q disposed twice", g.text)
	}
	g.disposed = true
	return nil
}

// iconGeometry is the host-side handle for an item icon. Built-in icons
// are flat shapes keyed by ref; file-backed icons carry a wireframe
// mesh.
type iconGeometry struct {
	ref      string
	mesh     *models.Mesh
	tint     color.RGBA
	disposed bool
}

func (g *iconGeometry) Dispose() error {
	if g.disposed {
		return fmt.Errorf("icon %q disposed twice", g.ref)
	}
	g.disposed = true
	g.mesh = nil
	return nil
}

// flatMaterial is a solid color with adjustable opacity.
type flatMaterial struct {
	tint     color.RGBA
	opacity  float64
	disposed bool
}

func (m *flatMaterial) Opacity() float64     { return m.opacity }
func (m *flatMaterial) SetOpacity(v float64) { m.opacity = v }

func (m *flatMaterial) Dispose() error {
	if m.disposed {
		return fmt.Errorf("material disposed twice")
	}
	m.disposed = true
	return nil
}

// meshAssets loads item icons and labels for the ring engine. Mesh
// files (.glb/.obj/.stl) load once and are cached; plain refs become
// procedurally tinted flat icons. Loads complete synchronously, the
// done-callback contract still holds.
type meshAssets struct {
	log *zap.Logger

	mu    sync.Mutex
	cache map[string]*models.Mesh
}

func newMeshAssets(log *zap.Logger) *meshAssets {
	return &meshAssets{log: log, cache: make(map[string]*models.Mesh)}
}

func (a *meshAssets) LoadLabel(text string, done func(scene.Geometry, error)) {
	done(&labelGeometry{text: text}, nil)
}

func (a *meshAssets) LoadIcon(ref string, done func(scene.Geometry, error)) {
	if !isMeshRef(ref) {
		done(&iconGeometry{ref: ref, tint: tintFor(ref)}, nil)
		return
	}
	mesh, err := a.loadMesh(ref)
	if err != nil {
		a.log.Warn("asset: mesh icon failed", zap.String("ref", ref), zap.Error(err))
		done(nil, err)
		return
	}
	done(&iconGeometry{ref: ref, mesh: mesh, tint: tintFor(ref)}, nil)
}

func (a *meshAssets) loadMesh(ref string) (*models.Mesh, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m, ok := a.cache[ref]; ok {
		return m, nil
	}

	var (
		mesh *models.Mesh
		err  error
	)
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".glb", ".gltf":
		mesh, err = models.LoadGLB(ref)
	case ".obj":
		mesh, err = models.LoadOBJ(ref)
	case ".stl":
		mesh, err = models.LoadSTL(ref)
	default:
		err = fmt.Errorf("unsupported mesh format %q", ref)
	}
	if err != nil {
		return nil, err
	}
	mesh.Normalize()
	a.cache[ref] = mesh
	return mesh, nil
}

func isMeshRef(ref string) bool {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".glb", ".gltf", ".obj", ".stl":
		return true
	}
	return false
}

// tintFor hashes a ref into a stable pastel color.
func tintFor(ref string) color.RGBA {
	var h uint32 = 2166136261
	for i := 0; i < len(ref); i++ {
		h ^= uint32(ref[i])
		h *= 16777619
	}
	return color.RGBA{
		R: 120 + uint8(h%120),
		G: 120 + uint8((h>>8)%120),
		B: 120 + uint8((h>>16)%120),
		A: 255,
	}
}
