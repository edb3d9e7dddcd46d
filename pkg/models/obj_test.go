package models

import (
	"os"
	"path/filepath"
	"testing"
)

const objQuad = `# a unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func writeOBJ(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.obj")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOBJTriangulatesPolygons(t *testing.T) {
	mesh, err := LoadOBJ(writeOBJ(t, objQuad))
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if got := mesh.VertexCount(); got != 4 {
		t.Errorf("vertex count = %d, want 4", got)
	}
	if got := mesh.TriangleCount(); got != 2 {
		t.Errorf("triangle count = %d, want 2 (quad fan-triangulated)", got)
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}}
	for i, f := range mesh.Faces {
		if f != want[i] {
			t.Errorf("face %d = %v, want %v", i, f, want[i])
		}
	}
}

func TestLoadOBJSlashIndices(t *testing.T) {
	mesh, err := LoadOBJ(writeOBJ(t, `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1
`))
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("triangle count = %d, want 1", mesh.TriangleCount())
	}
}

func TestLoadOBJNegativeIndices(t *testing.T) {
	mesh, err := LoadOBJ(writeOBJ(t, `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`))
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if mesh.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want [0 1 2]", mesh.Faces[0])
	}
}

func TestLoadOBJIndexOutOfRange(t *testing.T) {
	_, err := LoadOBJ(writeOBJ(t, `v 0 0 0
f 1 2 3
`))
	if err == nil {
		t.Error("out-of-range face index should fail")
	}
}
