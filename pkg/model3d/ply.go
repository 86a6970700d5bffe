package model3d

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/ventengine/Modelz/pkg/ply"
	"go.uber.org/zap"
)

func init() {
	Register(FormatPLY, loadPLY)
}

// plyRecognizedVertexProps is the vertex property vocabulary the
// adapter understands: positions, normals, and the texture
// coordinate alias spellings used by common exporters. Anything else
// is reported and skipped.
var plyRecognizedVertexProps = map[string]bool{
	"x": true, "y": true, "z": true,
	"nx": true, "ny": true, "nz": true,
	"u": true, "s": true, "tx": true, "texture_u": true,
	"v": true, "t": true, "ty": true, "texture_v": true,
}

// loadPLY loads a Stanford PLY file, ASCII or binary. Vertex and
// face elements feed the mesh; every other element is skipped. Faces
// are resolved only after the whole file is read, so files that
// declare faces ahead of vertices still load. The result is a single
// unnamed mesh with vertices duplicated per face corner and no index
// buffer.
func loadPLY(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFile, err)
	}
	defer f.Close()

	r, err := ply.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelParsing, err)
	}

	hdr := r.Header()
	var vertices []Vertex
	var faces [][3]int

	for i := range hdr.Elements {
		el := &hdr.Elements[i]
		switch el.Name {
		case "vertex":
			verts, err := readPLYVertices(r, i, el)
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, verts...)
		case "face":
			read, err := readPLYFaces(r, i, el)
			if err != nil {
				return nil, err
			}
			faces = append(faces, read...)
		default:
			log.Warn("skipping unknown ply element",
				zap.String("element", el.Name),
				zap.Int("rows", el.Count),
			)
			if err := r.ReadElement(i, nil); err != nil {
				return nil, plyParseErr(err)
			}
		}
	}

	mesh := Mesh{
		Vertices: make([]Vertex, 0, len(faces)*3),
		Mode:     Triangles,
	}
	for fi, face := range faces {
		for _, vi := range face {
			if vi >= len(vertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrModelParsing, fi, vi, len(vertices))
			}
			mesh.Vertices = append(mesh.Vertices, vertices[vi])
		}
	}

	return &Model{Meshes: []Mesh{mesh}}, nil
}

// plyParseErr wraps reader errors as ErrModelParsing while passing
// through row callback errors that already carry the kind.
func plyParseErr(err error) error {
	if errors.Is(err, ErrModelParsing) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrModelParsing, err)
}

// plyScalarColumn resolves the first present alias to a property
// index, requiring a scalar property.
func plyScalarColumn(el *ply.Element, aliases ...string) (int, error) {
	for _, name := range aliases {
		if i := el.PropertyIndex(name); i >= 0 {
			if el.Properties[i].List {
				return -1, fmt.Errorf("%w: vertex property %q must be scalar", ErrModelParsing, name)
			}
			return i, nil
		}
	}
	return -1, nil
}

// readPLYVertices decodes the vertex element. Positions are
// mandatory. A normal is only present when nx, ny and nz all exist;
// a texture coordinate only when both axes exist under any alias.
// Partial attribute triples stay absent rather than zero-filled.
func readPLYVertices(r *ply.Reader, index int, el *ply.Element) ([]Vertex, error) {
	x, err := plyScalarColumn(el, "x")
	if err != nil {
		return nil, err
	}
	y, err := plyScalarColumn(el, "y")
	if err != nil {
		return nil, err
	}
	z, err := plyScalarColumn(el, "z")
	if err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || z < 0 {
		return nil, fmt.Errorf("%w: vertex element lacks x/y/z properties", ErrModelParsing)
	}

	nx, err := plyScalarColumn(el, "nx")
	if err != nil {
		return nil, err
	}
	ny, err := plyScalarColumn(el, "ny")
	if err != nil {
		return nil, err
	}
	nz, err := plyScalarColumn(el, "nz")
	if err != nil {
		return nil, err
	}
	hasNormal := nx >= 0 && ny >= 0 && nz >= 0

	u, err := plyScalarColumn(el, "u", "s", "tx", "texture_u")
	if err != nil {
		return nil, err
	}
	v, err := plyScalarColumn(el, "v", "t", "ty", "texture_v")
	if err != nil {
		return nil, err
	}
	hasTexCoord := u >= 0 && v >= 0

	for i := range el.Properties {
		if !plyRecognizedVertexProps[el.Properties[i].Name] {
			log.Warn("ignoring unknown ply vertex property",
				zap.String("property", el.Properties[i].Name),
			)
		}
	}

	verts := make([]Vertex, 0, el.Count)
	err = r.ReadElement(index, func(values []ply.Value) error {
		vert := Vertex{Position: [3]float32{
			float32(values[x].Scalar),
			float32(values[y].Scalar),
			float32(values[z].Scalar),
		}}
		if hasNormal {
			n := [3]float32{
				float32(values[nx].Scalar),
				float32(values[ny].Scalar),
				float32(values[nz].Scalar),
			}
			vert.Normal = &n
		}
		if hasTexCoord {
			tc := [2]float32{
				float32(values[u].Scalar),
				float32(values[v].Scalar),
			}
			vert.TexCoord = &tc
		}
		verts = append(verts, vert)
		return nil
	})
	if err != nil {
		return nil, plyParseErr(err)
	}
	return verts, nil
}

// readPLYFaces decodes the face element. Each face must list at
// least three vertex indices; only the first three are consumed, the
// loader does not fan-triangulate larger polygons.
func readPLYFaces(r *ply.Reader, index int, el *ply.Element) ([][3]int, error) {
	col := el.PropertyIndex("vertex_indices")
	if col < 0 {
		col = el.PropertyIndex("vertex_index")
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: face element lacks a vertex index list", ErrModelParsing)
	}
	if !el.Properties[col].List {
		return nil, fmt.Errorf("%w: face property %q is not a list", ErrModelParsing, el.Properties[col].Name)
	}
	for i := range el.Properties {
		if i != col {
			log.Warn("ignoring unknown ply face property",
				zap.String("property", el.Properties[i].Name),
			)
		}
	}

	faces := make([][3]int, 0, el.Count)
	err := r.ReadElement(index, func(values []ply.Value) error {
		list := values[col].List
		if len(list) < 3 {
			return fmt.Errorf("%w: face %d has %d indices, need at least 3", ErrModelParsing, len(faces), len(list))
		}
		var face [3]int
		for k := 0; k < 3; k++ {
			idx := list[k]
			if idx < 0 || idx != math.Trunc(idx) {
				return fmt.Errorf("%w: face %d has invalid vertex index %v", ErrModelParsing, len(faces), idx)
			}
			face[k] = int(idx)
		}
		faces = append(faces, face)
		return nil
	})
	if err != nil {
		return nil, plyParseErr(err)
	}
	return faces, nil
}
