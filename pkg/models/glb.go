package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/orbitmenu/orbit/pkg/math3d"
)

// LoadGLB loads a GLTF or binary GLB file and flattens every triangle
// primitive into one mesh. Node transforms are not applied; preview
// models are expected to be single baked meshes.
func LoadGLB(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))

	for _, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("read positions: %w", err)
			}

			baseVertex := len(mesh.Positions)
			for _, p := range positions {
				mesh.Positions = append(mesh.Positions,
					math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))
			}

			if prim.Indices != nil {
				indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("read indices: %w", err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					mesh.Faces = append(mesh.Faces, [3]int{
						baseVertex + int(indices[i]),
						baseVertex + int(indices[i+1]),
						baseVertex + int(indices[i+2]),
					})
				}
			} else {
				// No indices, assume sequential triangles.
				for i := 0; i+2 < len(positions); i += 3 {
					mesh.Faces = append(mesh.Faces, [3]int{
						baseVertex + i,
						baseVertex + i + 1,
						baseVertex + i + 2,
					})
				}
			}
		}
	}

	if len(mesh.Positions) == 0 {
		return nil, fmt.Errorf("no triangle geometry in %s", path)
	}

	mesh.CalculateBounds()
	return mesh, nil
}
