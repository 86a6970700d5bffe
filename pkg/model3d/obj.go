package model3d

import (
	"fmt"
	"path/filepath"

	"github.com/udhos/gwob"
	"go.uber.org/zap"
)

func init() {
	Register(FormatOBJ, loadOBJ)
}

// loadOBJ loads a Wavefront OBJ file. Geometry failures are
// ErrModelParsing; failures resolving the companion MTL library are
// ErrMaterialLoad, so callers can tell the two apart. Each OBJ group
// becomes one canonical mesh, and materials enter the model's list
// in first-use order.
func loadOBJ(path string) (*Model, error) {
	opts := &gwob.ObjParserOptions{
		Logger: func(msg string) {
			log.Debug("obj parser", zap.String("msg", msg))
		},
	}

	o, err := gwob.NewObjFromFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelParsing, err)
	}

	dir := filepath.Dir(path)

	// Material library, resolved relative to the OBJ's directory.
	var lib gwob.MaterialLib
	if o.Mtllib != "" {
		mtlPath := filepath.Join(dir, o.Mtllib)
		lib, err = gwob.ReadMaterialLibFromFile(mtlPath, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMaterialLoad, o.Mtllib, err)
		}
	}

	model := &Model{}
	matIndex := make(map[string]int)

	for _, group := range o.Groups {
		if group.IndexCount == 0 {
			continue
		}
		mesh, err := convertOBJGroup(o, group)
		if err != nil {
			return nil, err
		}

		if group.Usemtl != "" {
			if mtl, ok := lib.Lib[group.Usemtl]; ok {
				idx, seen := matIndex[group.Usemtl]
				if !seen {
					idx = len(model.Materials)
					model.Materials = append(model.Materials, convertOBJMaterial(mtl, dir))
					matIndex[group.Usemtl] = idx
				}
				mi := idx
				mesh.MaterialIndex = &mi
			} else {
				log.Debug("obj group uses undefined material",
					zap.String("group", group.Name),
					zap.String("material", group.Usemtl),
				)
			}
		}

		model.Meshes = append(model.Meshes, mesh)
	}

	return model, nil
}

// convertOBJGroup re-bases one group's slice of the shared index
// stream onto a compact per-mesh vertex array. The emitted index
// buffer is always 32-bit.
func convertOBJGroup(o *gwob.Obj, group *gwob.Group) (Mesh, error) {
	strideFloats := o.StrideSize / 4
	if strideFloats <= 0 {
		return Mesh{}, fmt.Errorf("%w: group %q has invalid vertex stride %d", ErrModelParsing, group.Name, o.StrideSize)
	}
	vertexCount := len(o.Coord) / strideFloats
	posOff := o.StrideOffsetPosition / 4
	texOff := o.StrideOffsetTexture / 4
	normOff := o.StrideOffsetNormal / 4

	end := group.IndexBegin + group.IndexCount
	if group.IndexBegin < 0 || end > len(o.Indices) {
		return Mesh{}, fmt.Errorf("%w: group %q index range [%d:%d) exceeds %d indices", ErrModelParsing, group.Name, group.IndexBegin, end, len(o.Indices))
	}

	mesh := Mesh{
		Mode: Triangles,
		Name: group.Name,
	}
	local := make(map[int]uint32)
	indices := make([]uint32, 0, group.IndexCount)

	for _, global := range o.Indices[group.IndexBegin:end] {
		if global < 0 || global >= vertexCount {
			return Mesh{}, fmt.Errorf("%w: group %q references vertex %d of %d", ErrModelParsing, group.Name, global, vertexCount)
		}
		idx, ok := local[global]
		if !ok {
			idx = uint32(len(mesh.Vertices))
			mesh.Vertices = append(mesh.Vertices, objVertex(o, global*strideFloats, posOff, texOff, normOff))
			local[global] = idx
		}
		indices = append(indices, idx)
	}

	if len(indices) > 0 {
		mesh.Indices = NewIndicesU32(indices)
	}
	return mesh, nil
}

// objVertex builds one vertex from the interleaved coordinate array.
// Texture and normal coordinates exist per file, not per vertex: the
// parser flags whether the stride carries them at all.
func objVertex(o *gwob.Obj, base, posOff, texOff, normOff int) Vertex {
	v := Vertex{Position: [3]float32{
		o.Coord[base+posOff],
		o.Coord[base+posOff+1],
		o.Coord[base+posOff+2],
	}}
	if o.TextCoordFound {
		tc := [2]float32{
			o.Coord[base+texOff],
			o.Coord[base+texOff+1],
		}
		v.TexCoord = &tc
	}
	if o.NormCoordFound {
		n := [3]float32{
			o.Coord[base+normOff],
			o.Coord[base+normOff+1],
			o.Coord[base+normOff+2],
		}
		v.Normal = &n
	}
	return v
}

// convertOBJMaterial maps an MTL entry onto the canonical material.
// OBJ materials are always opaque; the dissolve value, when set,
// becomes the alpha cutoff. The diffuse map path is joined to the
// OBJ's directory and left undecoded.
func convertOBJMaterial(mtl *gwob.Material, dir string) Material {
	base := [4]float32{
		float32(mtl.Kd[0]),
		float32(mtl.Kd[1]),
		float32(mtl.Kd[2]),
		1.0,
	}
	out := Material{
		Name:      mtl.Name,
		AlphaMode: AlphaOpaque,
		BaseColor: &base,
	}
	if cutoff := float32(mtl.D); cutoff > 0 {
		out.AlphaCutoff = &cutoff
	}
	if mtl.MapKd != "" {
		out.DiffuseTexture = &Texture{
			Image: Image{Path: filepath.Join(dir, mtl.MapKd)},
			Name:  mtl.MapKd,
		}
	}
	return out
}
