package model3d

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

func init() {
	Register(FormatGLTF, loadGLTF)
}

// loadGLTF loads a glTF 2.0 document, plain .gltf or binary .glb.
// The document reader resolves every referenced binary buffer
// (external files, data URIs, the GLB blob) into memory before any
// mesh or material is converted. Materials are converted first so
// primitive material indices point into the finished material list.
func loadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("%w: %v", ErrOpenFile, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrModelParsing, err)
	}

	dir := filepath.Dir(path)
	model := &Model{}

	for i, mat := range doc.Materials {
		converted, err := convertGLTFMaterial(doc, mat, dir)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		model.Materials = append(model.Materials, converted)
	}

	for _, mesh := range doc.Meshes {
		log.Debug("converting gltf mesh",
			zap.String("name", mesh.Name),
			zap.Int("primitives", len(mesh.Primitives)),
		)
		for pi, prim := range mesh.Primitives {
			converted, err := convertGLTFPrimitive(doc, mesh.Name, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, pi, err)
			}
			model.Meshes = append(model.Meshes, converted)
		}
	}

	return model, nil
}

// gltfAccessor resolves an accessor index against the document.
func gltfAccessor(doc *gltf.Document, index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor index %d out of range", ErrModelParsing, index)
	}
	return doc.Accessors[index], nil
}

// convertGLTFPrimitive converts one primitive into a canonical Mesh.
// POSITION is mandatory; NORMAL, TEXCOORD_0 and COLOR_0 are read
// when declared and must match the position count.
func convertGLTFPrimitive(doc *gltf.Document, name string, prim *gltf.Primitive) (Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return Mesh{}, fmt.Errorf("%w: primitive has no POSITION attribute", ErrModelParsing)
	}
	posAcc, err := gltfAccessor(doc, posIdx)
	if err != nil {
		return Mesh{}, err
	}
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return Mesh{}, fmt.Errorf("%w: reading POSITION: %v", ErrModelParsing, err)
	}

	mesh := Mesh{
		Vertices: make([]Vertex, len(positions)),
		Mode:     convertGLTFMode(prim.Mode),
		Name:     name,
	}
	for i := range positions {
		mesh.Vertices[i].Position = positions[i]
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return Mesh{}, err
		}
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return Mesh{}, fmt.Errorf("%w: reading NORMAL: %v", ErrModelParsing, err)
		}
		if len(normals) != len(positions) {
			return Mesh{}, fmt.Errorf("%w: NORMAL count %d does not match POSITION count %d", ErrModelParsing, len(normals), len(positions))
		}
		for i := range normals {
			mesh.Vertices[i].Normal = &normals[i]
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return Mesh{}, err
		}
		coords, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return Mesh{}, fmt.Errorf("%w: reading TEXCOORD_0: %v", ErrModelParsing, err)
		}
		if len(coords) != len(positions) {
			return Mesh{}, fmt.Errorf("%w: TEXCOORD_0 count %d does not match POSITION count %d", ErrModelParsing, len(coords), len(positions))
		}
		for i := range coords {
			mesh.Vertices[i].TexCoord = &coords[i]
		}
	}

	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		acc, err := gltfAccessor(doc, idx)
		if err != nil {
			return Mesh{}, err
		}
		colors, err := modeler.ReadColor(doc, acc, nil)
		if err != nil {
			return Mesh{}, fmt.Errorf("%w: reading COLOR_0: %v", ErrModelParsing, err)
		}
		if len(colors) != len(positions) {
			return Mesh{}, fmt.Errorf("%w: COLOR_0 count %d does not match POSITION count %d", ErrModelParsing, len(colors), len(positions))
		}
		for i, c := range colors {
			rgba := [4]float32{
				float32(c[0]) / 255,
				float32(c[1]) / 255,
				float32(c[2]) / 255,
				float32(c[3]) / 255,
			}
			mesh.Vertices[i].Color = &rgba
		}
	}

	if prim.Indices != nil {
		acc, err := gltfAccessor(doc, *prim.Indices)
		if err != nil {
			return Mesh{}, err
		}
		raw, err := modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return Mesh{}, fmt.Errorf("%w: reading indices: %v", ErrModelParsing, err)
		}
		mesh.Indices, err = narrowGLTFIndices(acc.ComponentType, raw)
		if err != nil {
			return Mesh{}, err
		}
	}

	if prim.Material != nil {
		mi := *prim.Material
		if mi < 0 || mi >= len(doc.Materials) {
			return Mesh{}, fmt.Errorf("%w: material index %d out of range", ErrModelParsing, mi)
		}
		mesh.MaterialIndex = &mi
	}

	return mesh, nil
}

// narrowGLTFIndices re-narrows the widened index values so the
// canonical buffer keeps the width the accessor declared.
func narrowGLTFIndices(ct gltf.ComponentType, raw []uint32) (*Indices, error) {
	switch ct {
	case gltf.ComponentUbyte:
		out := make([]uint8, len(raw))
		for i, v := range raw {
			out[i] = uint8(v)
		}
		return NewIndicesU8(out), nil
	case gltf.ComponentUshort:
		out := make([]uint16, len(raw))
		for i, v := range raw {
			out[i] = uint16(v)
		}
		return NewIndicesU16(out), nil
	case gltf.ComponentUint:
		return NewIndicesU32(raw), nil
	default:
		return nil, fmt.Errorf("%w: invalid index component type %v", ErrModelParsing, ct)
	}
}

// convertGLTFMaterial converts one glTF material. The base color
// factor is always recorded; the glTF default is white when the PBR
// block or the factor is absent.
func convertGLTFMaterial(doc *gltf.Document, mat *gltf.Material, dir string) (Material, error) {
	out := Material{
		Name:        mat.Name,
		AlphaMode:   convertGLTFAlphaMode(mat.AlphaMode),
		DoubleSided: mat.DoubleSided,
	}
	if mat.AlphaCutoff != nil {
		cutoff := float32(*mat.AlphaCutoff)
		out.AlphaCutoff = &cutoff
	}

	base := [4]float32{1, 1, 1, 1}
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := *pbr.BaseColorFactor
			base = [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
		}
		if pbr.BaseColorTexture != nil {
			tex, err := convertGLTFTexture(doc, pbr.BaseColorTexture.Index, dir)
			if err != nil {
				return Material{}, err
			}
			out.DiffuseTexture = tex
		}
	}
	out.BaseColor = &base

	return out, nil
}

// convertGLTFTexture resolves a texture's image source. Embedded
// images stay in memory as encoded blobs; external URIs become paths
// joined to the model's directory. Pixels are never decoded here.
func convertGLTFTexture(doc *gltf.Document, index int, dir string) (*Texture, error) {
	if index < 0 || index >= len(doc.Textures) {
		return nil, fmt.Errorf("%w: texture index %d out of range", ErrModelParsing, index)
	}
	tex := doc.Textures[index]

	out := &Texture{Name: tex.Name}
	if tex.Sampler != nil {
		si := *tex.Sampler
		if si < 0 || si >= len(doc.Samplers) {
			return nil, fmt.Errorf("%w: sampler index %d out of range", ErrModelParsing, si)
		}
		out.Sampler = convertGLTFSampler(doc.Samplers[si])
	}

	if tex.Source == nil {
		return nil, fmt.Errorf("%w: texture %d has no image source", ErrModelParsing, index)
	}
	src := *tex.Source
	if src < 0 || src >= len(doc.Images) {
		return nil, fmt.Errorf("%w: image index %d out of range", ErrModelParsing, src)
	}
	img := doc.Images[src]

	switch {
	case img.BufferView != nil:
		data, err := readGLTFBufferView(doc, *img.BufferView)
		if err != nil {
			return nil, err
		}
		out.Image = Image{Data: data, MIME: img.MimeType}
	case strings.HasPrefix(img.URI, "data:"):
		data, mime, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, err
		}
		out.Image = Image{Data: data, MIME: mime}
	case img.URI != "":
		out.Image = Image{Path: filepath.Join(dir, img.URI), MIME: img.MimeType}
	default:
		return nil, fmt.Errorf("%w: image %d has neither buffer view nor URI", ErrModelParsing, src)
	}

	return out, nil
}

// readGLTFBufferView copies the byte range a buffer view describes,
// so the returned model does not alias the document's buffers.
func readGLTFBufferView(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%w: buffer view index %d out of range", ErrModelParsing, index)
	}
	bv := doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("%w: buffer index %d out of range", ErrModelParsing, bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(buf.Data) {
		return nil, fmt.Errorf("%w: buffer view %d exceeds buffer size %d", ErrModelParsing, index, len(buf.Data))
	}
	data := make([]byte, bv.ByteLength)
	copy(data, buf.Data[bv.ByteOffset:end])
	return data, nil
}

// decodeDataURI decodes an RFC 2397 data URI into its payload and
// media type.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed data URI", ErrModelParsing)
	}
	mime := strings.TrimPrefix(header, "data:")
	if enc, found := strings.CutSuffix(mime, ";base64"); found {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: decoding data URI: %v", ErrModelParsing, err)
		}
		return data, enc, nil
	}
	return []byte(payload), mime, nil
}

func convertGLTFMode(mode gltf.PrimitiveMode) RenderMode {
	switch mode {
	case gltf.PrimitivePoints:
		return Points
	case gltf.PrimitiveLines:
		return Lines
	case gltf.PrimitiveLineLoop:
		return LineLoop
	case gltf.PrimitiveLineStrip:
		return LineStrip
	case gltf.PrimitiveTriangleStrip:
		return TriangleStrip
	case gltf.PrimitiveTriangleFan:
		return TriangleFan
	default:
		return Triangles
	}
}

func convertGLTFAlphaMode(mode gltf.AlphaMode) AlphaMode {
	switch mode {
	case gltf.AlphaMask:
		return AlphaMask
	case gltf.AlphaBlend:
		return AlphaBlend
	default:
		return AlphaOpaque
	}
}

func convertGLTFSampler(s *gltf.Sampler) Sampler {
	out := Sampler{Name: s.Name}
	switch s.MagFilter {
	case gltf.MagNearest:
		out.MagFilter = MagNearest
	case gltf.MagLinear:
		out.MagFilter = MagLinear
	}
	switch s.MinFilter {
	case gltf.MinNearest:
		out.MinFilter = MinNearest
	case gltf.MinLinear:
		out.MinFilter = MinLinear
	case gltf.MinNearestMipMapNearest:
		out.MinFilter = MinNearestMipmapNearest
	case gltf.MinLinearMipMapNearest:
		out.MinFilter = MinLinearMipmapNearest
	case gltf.MinNearestMipMapLinear:
		out.MinFilter = MinNearestMipmapLinear
	case gltf.MinLinearMipMapLinear:
		out.MinFilter = MinLinearMipmapLinear
	}
	out.WrapS = convertGLTFWrap(s.WrapS)
	out.WrapT = convertGLTFWrap(s.WrapT)
	return out
}

func convertGLTFWrap(w gltf.WrappingMode) WrappingMode {
	switch w {
	case gltf.WrapClampToEdge:
		return WrapClampToEdge
	case gltf.WrapMirroredRepeat:
		return WrapMirroredRepeat
	default:
		return WrapRepeat
	}
}
