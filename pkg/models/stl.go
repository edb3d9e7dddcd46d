package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/orbitmenu/orbit/pkg/math3d"
)

// mergeTolerance quantizes vertex positions for deduplication. STL
// repeats every vertex per facet, so identical corners must merge for
// the wireframe edge list to come out connected.
const mergeTolerance = 1e-9

type quantizedKey struct {
	x, y, z int64
}

func quantize(p math3d.Vec3) quantizedKey {
	const scale = 1.0 / mergeTolerance
	return quantizedKey{
		x: int64(math.Round(p.X * scale)),
		y: int64(math.Round(p.Y * scale)),
		z: int64(math.Round(p.Z * scale)),
	}
}

// LoadSTL loads an STL file, binary or ASCII, deduplicating shared
// vertices.
func LoadSTL(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	return ParseSTL(data, path)
}

// ParseSTL parses STL data in either format.
func ParseSTL(data []byte, name string) (*Mesh, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data, name)
	}
	return parseASCIISTL(data, name)
}

// isBinarySTL distinguishes the formats. Binary is an 80-byte header
// plus a 4-byte triangle count; ASCII starts with "solid", but a binary
// header may too, so the declared size is the tiebreaker.
func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) {
		triCount := binary.LittleEndian.Uint32(data[80:84])
		return uint32(len(data)) == 84+triCount*50
	}
	return true
}

func parseBinarySTL(data []byte, name string) (*Mesh, error) {
	triCount := binary.LittleEndian.Uint32(data[80:84])
	if want := 84 + triCount*50; uint32(len(data)) < want {
		return nil, fmt.Errorf("binary stl truncated: want %d bytes, got %d", want, len(data))
	}

	mesh := NewMesh(name)
	verts := make(map[quantizedKey]int)

	offset := 84
	for range triCount {
		offset += 12 // facet normal, unused for wireframes

		var face [3]int
		for v := range 3 {
			pos := math3d.V3(
				float64(float32LE(data[offset:])),
				float64(float32LE(data[offset+4:])),
				float64(float32LE(data[offset+8:])),
			)
			offset += 12
			face[v] = mesh.internVertex(verts, pos)
		}
		offset += 2 // attribute byte count

		mesh.Faces = append(mesh.Faces, face)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func float32LE(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

func parseASCIISTL(data []byte, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	verts := make(map[quantizedKey]int)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	var face []int
	inFacet := false

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}
		case "facet":
			inFacet = true
			face = nil
		case "vertex":
			if !inFacet {
				return nil, fmt.Errorf("line %d: vertex outside facet", lineNum)
			}
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
			face = append(face, mesh.internVertex(verts, math3d.V3(coords[0], coords[1], coords[2])))
		case "endfacet":
			if len(face) >= 3 {
				mesh.Faces = append(mesh.Faces, [3]int{face[0], face[1], face[2]})
			}
			inFacet = false
			face = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ascii stl: %w", err)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// internVertex returns the index for pos, reusing an existing vertex
// within merge tolerance.
func (m *Mesh) internVertex(verts map[quantizedKey]int, pos math3d.Vec3) int {
	key := quantize(pos)
	if idx, ok := verts[key]; ok {
		return idx
	}
	idx := len(m.Positions)
	m.Positions = append(m.Positions, pos)
	verts[key] = idx
	return idx
}
