// Package tga decodes Truevision TGA images. Material libraries and
// older asset pipelines still reference TGA texture maps, and the
// format carries no magic bytes, so it cannot register with the
// stdlib image sniffer and is decoded explicitly instead.
//
// Supported: uncompressed and RLE-compressed true-color images
// (types 2 and 10) at 24 or 32 bits per pixel, either vertical
// origin. Color-mapped and grayscale images are not.
package tga

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

var (
	// ErrTruncated indicates the data ends before header or pixels do.
	ErrTruncated = errors.New("tga: truncated data")
	// ErrUnsupported indicates a valid TGA variant outside the
	// supported true-color subset.
	ErrUnsupported = errors.New("tga: unsupported image")
)

// Image type field values.
const (
	typeTrueColor    = 2
	typeTrueColorRLE = 10
)

const headerSize = 18

// header is the fixed-size TGA file header.
type header struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	depth        int
	descriptor   byte
}

func parseHeader(data []byte) (header, error) {
	if len(data) < headerSize {
		return header{}, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	return header{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		depth:        int(data[16]),
		descriptor:   data[17],
	}, nil
}

// topToBottom reports whether rows are stored top row first.
// Bit 5 of the descriptor; the TGA default is bottom-up.
func (h header) topToBottom() bool {
	return h.descriptor&0x20 != 0
}

// Decode reads a TGA image from r and returns it as an *image.NRGBA
// (TGA alpha is straight, not premultiplied).
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tga: reading data: %w", err)
	}

	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrUnsupported)
	}
	if h.imageType != typeTrueColor && h.imageType != typeTrueColorRLE {
		return nil, fmt.Errorf("%w: image type %d", ErrUnsupported, h.imageType)
	}
	if h.depth != 24 && h.depth != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.depth)
	}

	offset := headerSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: id field", ErrTruncated)
	}
	pixels := data[offset:]

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	if h.imageType == typeTrueColor {
		err = decodeRaw(img, h, pixels)
	} else {
		err = decodeRLE(img, h, pixels)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// setPixel writes pixel i of the stored stream into the image,
// flipping rows for bottom-up files.
func setPixel(img *image.NRGBA, h header, i int, c color.NRGBA) {
	x := i % h.width
	y := i / h.width
	if !h.topToBottom() {
		y = h.height - 1 - y
	}
	img.SetNRGBA(x, y, c)
}

// readPixel decodes one BGR(A) pixel at data[i:].
func readPixel(data []byte, i, size int) color.NRGBA {
	c := color.NRGBA{B: data[i], G: data[i+1], R: data[i+2], A: 255}
	if size == 4 {
		c.A = data[i+3]
	}
	return c
}

func decodeRaw(img *image.NRGBA, h header, data []byte) error {
	size := h.depth / 8
	count := h.width * h.height
	if len(data) < count*size {
		return fmt.Errorf("%w: pixel data", ErrTruncated)
	}
	for i := 0; i < count; i++ {
		setPixel(img, h, i, readPixel(data, i*size, size))
	}
	return nil
}

func decodeRLE(img *image.NRGBA, h header, data []byte) error {
	size := h.depth / 8
	total := h.width * h.height

	pixel := 0
	pos := 0
	for pixel < total {
		if pos >= len(data) {
			return fmt.Errorf("%w: RLE stream", ErrTruncated)
		}
		packet := data[pos]
		pos++
		n := int(packet&0x7F) + 1
		if pixel+n > total {
			n = total - pixel
		}

		if packet&0x80 != 0 {
			// Run packet: one pixel value repeated n times
			if pos+size > len(data) {
				return fmt.Errorf("%w: RLE run", ErrTruncated)
			}
			c := readPixel(data, pos, size)
			pos += size
			for i := 0; i < n; i++ {
				setPixel(img, h, pixel, c)
				pixel++
			}
		} else {
			// Literal packet: n distinct pixels
			if pos+n*size > len(data) {
				return fmt.Errorf("%w: RLE literal", ErrTruncated)
			}
			for i := 0; i < n; i++ {
				setPixel(img, h, pixel, readPixel(data, pos, size))
				pos += size
				pixel++
			}
		}
	}
	return nil
}
