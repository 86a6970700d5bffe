package model3d

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeBinarySTL builds a binary STL file. Each entry holds the facet
// normal followed by the three corner positions.
func makeBinarySTL(triangles [][4][3]float32) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80)) // header
	binary.Write(&buf, binary.LittleEndian, uint32(len(triangles)))
	for _, tri := range triangles {
		for _, vec := range tri {
			for _, f := range vec {
				binary.Write(&buf, binary.LittleEndian, f)
			}
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // attribute bytes
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadSTL_Binary(t *testing.T) {
	// Unit quad in the XY plane, normal +Z
	data := makeBinarySTL([][4][3]float32{
		{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		{{0, 0, 1}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	})
	path := writeFile(t, t.TempDir(), "quad.stl", data)

	model, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if model.Format != FormatSTL {
		t.Errorf("Format = %v, want %v", model.Format, FormatSTL)
	}
	if len(model.Meshes) != 1 {
		t.Fatalf("mesh count = %d, want 1", len(model.Meshes))
	}
	if len(model.Materials) != 0 {
		t.Errorf("material count = %d, want 0", len(model.Materials))
	}

	mesh := &model.Meshes[0]
	if mesh.Mode != Triangles {
		t.Errorf("Mode = %v, want Triangles", mesh.Mode)
	}
	if mesh.Indices != nil {
		t.Error("expected no index buffer for triangle soup")
	}
	if len(mesh.Vertices) != 6 {
		t.Fatalf("vertex count = %d, want 6", len(mesh.Vertices))
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", mesh.TriangleCount())
	}

	// Every vertex carries its facet's normal, nothing else
	for i, v := range mesh.Vertices {
		if v.Normal == nil {
			t.Fatalf("vertex %d: missing normal", i)
		}
		if *v.Normal != [3]float32{0, 0, 1} {
			t.Errorf("vertex %d: normal = %v, want [0 0 1]", i, *v.Normal)
		}
		if v.TexCoord != nil {
			t.Errorf("vertex %d: unexpected texture coordinates", i)
		}
		if v.Color != nil {
			t.Errorf("vertex %d: unexpected color", i)
		}
	}

	if mesh.Vertices[0].Position != [3]float32{0, 0, 0} {
		t.Errorf("vertex 0 position = %v, want [0 0 0]", mesh.Vertices[0].Position)
	}
	if mesh.Vertices[4].Position != [3]float32{1, 1, 0} {
		t.Errorf("vertex 4 position = %v, want [1 1 0]", mesh.Vertices[4].Position)
	}

	b, ok := mesh.Bounds()
	if !ok {
		t.Fatal("mesh reported no bounds")
	}
	if b.Min != [3]float32{0, 0, 0} || b.Max != [3]float32{1, 1, 0} {
		t.Errorf("bounds = %v/%v, want [0 0 0]/[1 1 0]", b.Min, b.Max)
	}
}

func TestLoadSTL_ASCII(t *testing.T) {
	data := `solid widget
  facet normal 0 1 0
    outer loop
      vertex 0 2 0
      vertex 1 2 0
      vertex 0 2 1
    endloop
  endfacet
endsolid widget
`
	path := writeFile(t, t.TempDir(), "widget.stl", []byte(data))

	model, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(model.Meshes) != 1 {
		t.Fatalf("mesh count = %d, want 1", len(model.Meshes))
	}
	mesh := &model.Meshes[0]

	if mesh.Name != "widget" {
		t.Errorf("Name = %q, want %q", mesh.Name, "widget")
	}
	if len(mesh.Vertices) != 3 {
		t.Fatalf("vertex count = %d, want 3", len(mesh.Vertices))
	}
	for i, v := range mesh.Vertices {
		if v.Normal == nil || *v.Normal != [3]float32{0, 1, 0} {
			t.Errorf("vertex %d: normal = %v, want [0 1 0]", i, v.Normal)
		}
	}
	if mesh.Vertices[1].Position != [3]float32{1, 2, 0} {
		t.Errorf("vertex 1 position = %v, want [1 2 0]", mesh.Vertices[1].Position)
	}
}

func TestLoadSTL_Truncated(t *testing.T) {
	// Binary header declaring more triangles than the payload holds
	data := makeBinarySTL([][4][3]float32{
		{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
	})
	binary.LittleEndian.PutUint32(data[80:], 50)
	path := writeFile(t, t.TempDir(), "broken.stl", data)

	_, err := Load(path)
	if !errors.Is(err, ErrModelParsing) {
		t.Errorf("got error %v, want ErrModelParsing", err)
	}
}

func TestLoadSTL_EmptySolid(t *testing.T) {
	data := makeBinarySTL(nil)
	path := writeFile(t, t.TempDir(), "empty.stl", data)

	model, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(model.Meshes) != 1 {
		t.Fatalf("mesh count = %d, want 1", len(model.Meshes))
	}
	if got := model.VertexCount(); got != 0 {
		t.Errorf("VertexCount() = %d, want 0", got)
	}
}
