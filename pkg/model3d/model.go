// Package model3d loads 3D model files in multiple formats into one
// canonical in-memory representation.
//
// Supported formats: Wavefront OBJ (with companion MTL material
// libraries), glTF 2.0 (plain .gltf and binary .glb containers),
// Stanford PLY and STL. Loading normalizes every source into the same
// Model type: a flat list of meshes plus a flat list of materials.
// Optional vertex attributes are preserved only when the source file
// actually carries them; absence is never zero-filled.
//
// A Model is built once by Load or LoadFormat and returned as an
// immutable snapshot. There is no streaming and no partial recovery:
// if any mesh or material fails to convert, the whole load fails.
package model3d

import "fmt"

// Model is the canonical representation of a loaded 3D model file.
type Model struct {
	Meshes    []Mesh
	Materials []Material
	Format    Format
}

// Mesh holds one draw batch: a vertex array, an optional index
// buffer, a topology mode and an optional material assignment.
type Mesh struct {
	Vertices []Vertex
	// Indices is nil when the source provides pre-expanded vertices.
	Indices *Indices
	Mode    RenderMode
	// MaterialIndex points into Model.Materials, nil when the mesh
	// has no material assigned.
	MaterialIndex *int
	// Name is empty when the source format does not name meshes.
	Name string
}

// Vertex is a single mesh vertex. Position is always present; the
// remaining attributes are nil when the source does not carry them.
type Vertex struct {
	Position [3]float32
	Color    *[4]float32
	TexCoord *[2]float32
	Normal   *[3]float32
}

// RenderMode is the primitive topology of a mesh.
type RenderMode uint8

// Topology constants.
const (
	Points RenderMode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

// String returns a human-readable topology name.
func (m RenderMode) String() string {
	switch m {
	case Points:
		return "Points"
	case Lines:
		return "Lines"
	case LineLoop:
		return "LineLoop"
	case LineStrip:
		return "LineStrip"
	case Triangles:
		return "Triangles"
	case TriangleStrip:
		return "TriangleStrip"
	case TriangleFan:
		return "TriangleFan"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// merge grows the box to include the given point.
func (b *Bounds) merge(p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles the mesh draws.
// Indexed meshes count index triples, non-indexed meshes count
// vertex triples. Non-triangle topologies report zero.
func (m *Mesh) TriangleCount() int {
	if m.Mode != Triangles {
		return 0
	}
	if m.Indices != nil {
		return m.Indices.Len() / 3
	}
	return len(m.Vertices) / 3
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
// The second return value is false when the mesh has no vertices.
func (m *Mesh) Bounds() (Bounds, bool) {
	if len(m.Vertices) == 0 {
		return Bounds{}, false
	}
	b := Bounds{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		b.merge(v.Position)
	}
	return b, true
}

// VertexCount returns the total vertex count across all meshes.
func (m *Model) VertexCount() int {
	total := 0
	for i := range m.Meshes {
		total += len(m.Meshes[i].Vertices)
	}
	return total
}

// TriangleCount returns the total triangle count across all meshes.
func (m *Model) TriangleCount() int {
	total := 0
	for i := range m.Meshes {
		total += m.Meshes[i].TriangleCount()
	}
	return total
}

// Bounds returns the bounding box enclosing every mesh of the model.
// The second return value is false when the model has no geometry.
func (m *Model) Bounds() (Bounds, bool) {
	var out Bounds
	found := false
	for i := range m.Meshes {
		b, ok := m.Meshes[i].Bounds()
		if !ok {
			continue
		}
		if !found {
			out = b
			found = true
			continue
		}
		out.merge(b.Min)
		out.merge(b.Max)
	}
	return out, found
}

// Validate checks the structural invariants of the model: every index
// buffer entry must address an existing vertex of its mesh, every
// material index must address an existing material, and every index
// buffer must carry exactly one backing slice matching its width.
func (m *Model) Validate() error {
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		if mesh.MaterialIndex != nil {
			if mi := *mesh.MaterialIndex; mi < 0 || mi >= len(m.Materials) {
				return fmt.Errorf("mesh %d: material index %d out of range (%d materials)", i, mi, len(m.Materials))
			}
		}
		if mesh.Indices == nil {
			continue
		}
		if err := mesh.Indices.check(); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		for j := 0; j < mesh.Indices.Len(); j++ {
			if v := mesh.Indices.At(j); v >= uint32(len(mesh.Vertices)) {
				return fmt.Errorf("mesh %d: index %d references vertex %d of %d", i, j, v, len(mesh.Vertices))
			}
		}
	}
	return nil
}
