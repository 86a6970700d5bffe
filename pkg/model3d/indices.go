package model3d

import (
	"errors"
	"fmt"
)

// IndexWidth identifies the storage width of an index buffer.
type IndexWidth uint8

// Index width constants.
const (
	IndexU8 IndexWidth = iota + 1
	IndexU16
	IndexU32
)

// String returns a human-readable width name.
func (w IndexWidth) String() string {
	switch w {
	case IndexU8:
		return "u8"
	case IndexU16:
		return "u16"
	case IndexU32:
		return "u32"
	default:
		return fmt.Sprintf("Unknown(%d)", w)
	}
}

// Indices is a mesh index buffer kept at the width the source file
// declared. Exactly one of U8, U16 and U32 is non-nil, matching
// Width. Use the constructors to keep the pairing consistent.
type Indices struct {
	Width IndexWidth
	U8    []uint8
	U16   []uint16
	U32   []uint32
}

// NewIndicesU8 wraps an 8-bit index buffer.
func NewIndicesU8(values []uint8) *Indices {
	return &Indices{Width: IndexU8, U8: values}
}

// NewIndicesU16 wraps a 16-bit index buffer.
func NewIndicesU16(values []uint16) *Indices {
	return &Indices{Width: IndexU16, U16: values}
}

// NewIndicesU32 wraps a 32-bit index buffer.
func NewIndicesU32(values []uint32) *Indices {
	return &Indices{Width: IndexU32, U32: values}
}

// Len returns the number of indices in the buffer.
func (ix *Indices) Len() int {
	switch ix.Width {
	case IndexU8:
		return len(ix.U8)
	case IndexU16:
		return len(ix.U16)
	case IndexU32:
		return len(ix.U32)
	default:
		return 0
	}
}

// At returns the index at position i widened to 32 bits.
func (ix *Indices) At(i int) uint32 {
	switch ix.Width {
	case IndexU8:
		return uint32(ix.U8[i])
	case IndexU16:
		return uint32(ix.U16[i])
	default:
		return ix.U32[i]
	}
}

// check verifies that exactly one backing slice is set and that it
// matches the declared width.
func (ix *Indices) check() error {
	set := 0
	if ix.U8 != nil {
		set++
		if ix.Width != IndexU8 {
			return fmt.Errorf("index buffer width %s does not match u8 storage", ix.Width)
		}
	}
	if ix.U16 != nil {
		set++
		if ix.Width != IndexU16 {
			return fmt.Errorf("index buffer width %s does not match u16 storage", ix.Width)
		}
	}
	if ix.U32 != nil {
		set++
		if ix.Width != IndexU32 {
			return fmt.Errorf("index buffer width %s does not match u32 storage", ix.Width)
		}
	}
	if set != 1 {
		return errors.New("index buffer must carry exactly one storage slice")
	}
	return nil
}
