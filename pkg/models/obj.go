package models

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/orbitmenu/orbit/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file. Only vertex positions and faces
// are read; texture coordinates, normals and materials are skipped.
// Polygons with more than three vertices are fan-triangulated.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh := NewMesh(path)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs x y z", lineNum)
			}
			var coords [3]float64
			for i := range coords {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad vertex coordinate: %w", lineNum, err)
				}
				coords[i] = v
			}
			mesh.Positions = append(mesh.Positions, math3d.V3(coords[0], coords[1], coords[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, spec := range fields[1:] {
				i, err := objVertexIndex(spec, len(mesh.Positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				idx = append(idx, i)
			}
			for i := 1; i < len(idx)-1; i++ {
				mesh.Faces = append(mesh.Faces, [3]int{idx[0], idx[i], idx[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// objVertexIndex parses one "v", "v/vt", or "v/vt/vn" face component.
// OBJ indices are 1-based; negative values count back from the end.
func objVertexIndex(spec string, nVerts int) (int, error) {
	s := spec
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", spec, err)
	}
	switch {
	case v > 0 && v <= nVerts:
		return v - 1, nil
	case v < 0 && -v <= nVerts:
		return nVerts + v, nil
	default:
		return 0, fmt.Errorf("face index %d out of range (%d vertices)", v, nVerts)
	}
}
