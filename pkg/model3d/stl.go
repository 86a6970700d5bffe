package model3d

import (
	"fmt"
	"os"

	stl "github.com/flywave/go-stl"
	"go.uber.org/zap"
)

func init() {
	Register(FormatSTL, loadSTL)
}

// loadSTL loads an STL file, binary or ASCII. STL is a bare triangle
// soup: each triangle becomes three expanded vertices carrying the
// triangle's declared normal, and the whole file becomes one mesh
// with no index buffer and no materials.
func loadSTL(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFile, err)
	}
	defer f.Close()

	solid, err := stl.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelParsing, err)
	}

	log.Debug("read stl solid",
		zap.String("name", solid.Name),
		zap.Int("triangles", len(solid.Triangles)),
	)

	mesh := Mesh{
		Vertices: make([]Vertex, 0, len(solid.Triangles)*3),
		Mode:     Triangles,
		Name:     solid.Name,
	}
	for ti := range solid.Triangles {
		tri := &solid.Triangles[ti]
		normal := [3]float32{tri.Normal[0], tri.Normal[1], tri.Normal[2]}
		for _, v := range tri.Vertices {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{v[0], v[1], v[2]},
				Normal:   &normal,
			})
		}
	}

	return &Model{Meshes: []Mesh{mesh}}, nil
}
