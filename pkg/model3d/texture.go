package model3d

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders for Image.Decode. GIF is intentionally left out; glTF
	// and MTL textures are PNG or JPEG in practice.
	_ "image/jpeg"
	_ "image/png"

	"github.com/ventengine/Modelz/pkg/tga"
)

// Texture pairs an image source with its sampling parameters.
type Texture struct {
	Image   Image
	Sampler Sampler
	// Name is empty when the source does not name textures.
	Name string
}

// Image is an undecoded texture image reference: either an encoded
// blob read from the model container, or a path next to the model
// file. Loading never decodes pixels; call Decode when pixel data is
// needed.
type Image struct {
	// Data holds the encoded image bytes for embedded images.
	Data []byte
	// Path points at an external image file, relative paths already
	// joined to the model's directory.
	Path string
	// MIME is the declared media type, empty when the source does
	// not state one.
	MIME string
}

// InMemory reports whether the image is an embedded encoded blob.
func (im Image) InMemory() bool {
	return im.Data != nil
}

// OnDisk reports whether the image references an external file.
func (im Image) OnDisk() bool {
	return im.Path != ""
}

// Decode decodes the referenced image into pixels, reading the
// external file for on-disk references. TGA carries no magic bytes
// for the stdlib sniffer, so it is routed by MIME type or extension.
func (im Image) Decode() (image.Image, error) {
	data := im.Data
	if data == nil {
		if im.Path == "" {
			return nil, fmt.Errorf("image has no data and no path")
		}
		var err error
		data, err = os.ReadFile(im.Path)
		if err != nil {
			return nil, fmt.Errorf("reading image file: %w", err)
		}
	}
	if im.isTGA() {
		img, err := tga.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func (im Image) isTGA() bool {
	switch strings.ToLower(im.MIME) {
	case "image/x-tga", "image/x-targa", "image/tga":
		return true
	}
	return strings.EqualFold(filepath.Ext(im.Path), ".tga")
}

// MagFilter is the texture magnification filter.
type MagFilter uint8

// Magnification filter constants. MagUndefined means the source did
// not declare a filter.
const (
	MagUndefined MagFilter = iota
	MagNearest
	MagLinear
)

// String returns a human-readable filter name.
func (f MagFilter) String() string {
	switch f {
	case MagUndefined:
		return "Undefined"
	case MagNearest:
		return "Nearest"
	case MagLinear:
		return "Linear"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// MinFilter is the texture minification filter, including the mipmap
// variants.
type MinFilter uint8

// Minification filter constants. MinUndefined means the source did
// not declare a filter.
const (
	MinUndefined MinFilter = iota
	MinNearest
	MinLinear
	MinNearestMipmapNearest
	MinLinearMipmapNearest
	MinNearestMipmapLinear
	MinLinearMipmapLinear
)

// String returns a human-readable filter name.
func (f MinFilter) String() string {
	switch f {
	case MinUndefined:
		return "Undefined"
	case MinNearest:
		return "Nearest"
	case MinLinear:
		return "Linear"
	case MinNearestMipmapNearest:
		return "NearestMipmapNearest"
	case MinLinearMipmapNearest:
		return "LinearMipmapNearest"
	case MinNearestMipmapLinear:
		return "NearestMipmapLinear"
	case MinLinearMipmapLinear:
		return "LinearMipmapLinear"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// WrappingMode is the texture addressing mode for one axis.
type WrappingMode uint8

// Wrapping mode constants. WrapRepeat is the default for every
// format that does not declare wrapping.
const (
	WrapRepeat WrappingMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// String returns a human-readable wrapping mode name.
func (w WrappingMode) String() string {
	switch w {
	case WrapRepeat:
		return "Repeat"
	case WrapClampToEdge:
		return "ClampToEdge"
	case WrapMirroredRepeat:
		return "MirroredRepeat"
	default:
		return fmt.Sprintf("Unknown(%d)", w)
	}
}

// Sampler describes how a texture is filtered and addressed. The
// zero value is a valid sampler: undefined filters, repeat wrapping.
type Sampler struct {
	MagFilter MagFilter
	MinFilter MinFilter
	WrapS     WrappingMode
	WrapT     WrappingMode
	// Name is empty when the source does not name samplers.
	Name string
}
