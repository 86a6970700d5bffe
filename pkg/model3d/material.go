package model3d

import "fmt"

// AlphaMode tells a renderer how to interpret material alpha.
type AlphaMode uint8

// Alpha mode constants. AlphaOpaque is the default.
const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// String returns a human-readable alpha mode name.
func (a AlphaMode) String() string {
	switch a {
	case AlphaOpaque:
		return "Opaque"
	case AlphaMask:
		return "Mask"
	case AlphaBlend:
		return "Blend"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// Material is the canonical surface description shared by all
// formats. Fields the source format cannot express stay at their
// zero value (nil for the optional ones).
type Material struct {
	// Name is empty when the source does not name materials.
	Name string
	// DiffuseTexture is the base color texture, nil when untextured.
	DiffuseTexture *Texture
	AlphaMode      AlphaMode
	// AlphaCutoff is the mask threshold, nil when the source does
	// not declare one.
	AlphaCutoff *float32
	DoubleSided bool
	// BaseColor is the RGBA base color factor, nil when the source
	// does not declare one.
	BaseColor *[4]float32
}
