// Package ply reads the Stanford PLY polygon format.
//
// PLY files declare their layout in a textual header: a list of
// elements ("vertex", "face", ...), each with a row count and a list
// of typed properties. The payload that follows stores the rows of
// every element back to back, in header order, encoded as ASCII text
// or as little- or big-endian binary.
//
// The Reader exposes the declared schema and decodes one element at
// a time through a row callback, leaving the interpretation of
// property names entirely to the caller.
package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PLY format errors.
var (
	ErrInvalidMagic  = errors.New("invalid PLY magic: expected 'ply'")
	ErrInvalidHeader = errors.New("invalid PLY header")
	ErrUnknownType   = errors.New("unknown PLY property type")
	ErrTruncatedData = errors.New("truncated PLY data")
	ErrInvalidData   = errors.New("malformed PLY data")
)

// Format is the payload encoding declared in the header.
type Format uint8

// Payload encodings.
const (
	ASCII Format = iota + 1
	BinaryLittleEndian
	BinaryBigEndian
)

// String returns the header spelling of the format.
func (f Format) String() string {
	switch f {
	case ASCII:
		return "ascii"
	case BinaryLittleEndian:
		return "binary_little_endian"
	case BinaryBigEndian:
		return "binary_big_endian"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// ScalarType is a PLY property value type.
type ScalarType uint8

// Scalar types. PLY has no integer type wider than 32 bits, so every
// value fits a float64 exactly.
const (
	Int8 ScalarType = iota + 1
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float32
	Float64
)

// String returns the modern sized spelling of the type.
func (t ScalarType) String() string {
	switch t {
	case Int8:
		return "int8"
	case UInt8:
		return "uint8"
	case Int16:
		return "int16"
	case UInt16:
		return "uint16"
	case Int32:
		return "int32"
	case UInt32:
		return "uint32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// parseScalarType accepts both the classic spellings (char, uchar,
// short, ushort, int, uint, float, double) and the sized ones
// (int8 ... float64).
func parseScalarType(word string) (ScalarType, error) {
	switch word {
	case "char", "int8":
		return Int8, nil
	case "uchar", "uint8":
		return UInt8, nil
	case "short", "int16":
		return Int16, nil
	case "ushort", "uint16":
		return UInt16, nil
	case "int", "int32":
		return Int32, nil
	case "uint", "uint32":
		return UInt32, nil
	case "float", "float32":
		return Float32, nil
	case "double", "float64":
		return Float64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, word)
	}
}

// Property is one declared property of an element.
type Property struct {
	Name string
	// List marks a variable-length list property.
	List bool
	// CountType is the list length type, set only for lists.
	CountType ScalarType
	// Type is the value type; for lists, the payload element type.
	Type ScalarType
}

// Element is one declared element with its row count.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// PropertyIndex returns the position of the named property, or -1.
func (e *Element) PropertyIndex(name string) int {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return i
		}
	}
	return -1
}

// Header is the parsed PLY header.
type Header struct {
	Format   Format
	Version  string
	Comments []string
	Elements []Element
}

// Value is one decoded property value. Scalar numerics are widened
// to float64; list payloads are widened element-wise.
type Value struct {
	Scalar float64
	// List is nil for scalar properties. The backing array is reused
	// between rows; callers must copy values they keep.
	List []float64
}

// RowFunc receives one decoded element row. The values slice is
// aligned with the element's Properties and is reused between rows.
// A non-nil error aborts the element read and is returned verbatim.
type RowFunc func(values []Value) error

// Reader decodes a PLY stream. Elements must be read in file order;
// payloads are stored back to back with no markers between them.
type Reader struct {
	hdr     Header
	br      *bufio.Reader
	scanner *bufio.Scanner // word scanner, ASCII payloads only
	order   binary.ByteOrder
	next    int // index of the next unread element
}

// NewReader parses the PLY header and prepares payload decoding.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	magic, err := readHeaderLine(br)
	if err != nil {
		return nil, err
	}
	if magic != "ply" {
		return nil, ErrInvalidMagic
	}

	rd := &Reader{br: br}
	if err := rd.parseHeader(); err != nil {
		return nil, err
	}

	switch rd.hdr.Format {
	case ASCII:
		rd.scanner = bufio.NewScanner(br)
		rd.scanner.Split(bufio.ScanWords)
	case BinaryLittleEndian:
		rd.order = binary.LittleEndian
	case BinaryBigEndian:
		rd.order = binary.BigEndian
	}
	return rd, nil
}

// Header returns the parsed header. The returned pointer stays valid
// for the life of the Reader; callers must not modify it.
func (r *Reader) Header() *Header {
	return &r.hdr
}

// readHeaderLine reads one header line, tolerating CRLF endings.
func readHeaderLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("%w: header ends before end_header", ErrTruncatedData)
		}
		return "", fmt.Errorf("%w: %v", ErrTruncatedData, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Reader) parseHeader() error {
	seenFormat := false
	for {
		line, err := readHeaderLine(r.br)
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "end_header":
			if !seenFormat {
				return fmt.Errorf("%w: missing format declaration", ErrInvalidHeader)
			}
			return nil

		case "format":
			if len(fields) != 3 {
				return fmt.Errorf("%w: format line %q", ErrInvalidHeader, line)
			}
			switch fields[1] {
			case "ascii":
				r.hdr.Format = ASCII
			case "binary_little_endian":
				r.hdr.Format = BinaryLittleEndian
			case "binary_big_endian":
				r.hdr.Format = BinaryBigEndian
			default:
				return fmt.Errorf("%w: unknown format %q", ErrInvalidHeader, fields[1])
			}
			r.hdr.Version = fields[2]
			seenFormat = true

		case "comment", "obj_info":
			r.hdr.Comments = append(r.hdr.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))

		case "element":
			if len(fields) != 3 {
				return fmt.Errorf("%w: element line %q", ErrInvalidHeader, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return fmt.Errorf("%w: element count %q", ErrInvalidHeader, fields[2])
			}
			r.hdr.Elements = append(r.hdr.Elements, Element{Name: fields[1], Count: count})

		case "property":
			if len(r.hdr.Elements) == 0 {
				return fmt.Errorf("%w: property before any element", ErrInvalidHeader)
			}
			prop, err := parseProperty(fields)
			if err != nil {
				return err
			}
			el := &r.hdr.Elements[len(r.hdr.Elements)-1]
			el.Properties = append(el.Properties, prop)

		default:
			return fmt.Errorf("%w: unknown keyword %q", ErrInvalidHeader, fields[0])
		}
	}
}

func parseProperty(fields []string) (Property, error) {
	if len(fields) >= 2 && fields[1] == "list" {
		if len(fields) != 5 {
			return Property{}, fmt.Errorf("%w: list property %q", ErrInvalidHeader, strings.Join(fields, " "))
		}
		countType, err := parseScalarType(fields[2])
		if err != nil {
			return Property{}, err
		}
		valueType, err := parseScalarType(fields[3])
		if err != nil {
			return Property{}, err
		}
		return Property{Name: fields[4], List: true, CountType: countType, Type: valueType}, nil
	}
	if len(fields) != 3 {
		return Property{}, fmt.Errorf("%w: property %q", ErrInvalidHeader, strings.Join(fields, " "))
	}
	valueType, err := parseScalarType(fields[1])
	if err != nil {
		return Property{}, err
	}
	return Property{Name: fields[2], Type: valueType}, nil
}

// ReadElement decodes the payload rows of the element at index i,
// invoking row once per row. Elements must be consumed strictly in
// header order; a nil row discards the rows after decoding them,
// which is how callers skip elements they do not understand.
func (r *Reader) ReadElement(i int, row RowFunc) error {
	if r.next >= len(r.hdr.Elements) {
		return fmt.Errorf("%w: all elements already read", ErrInvalidData)
	}
	if i != r.next {
		return fmt.Errorf("%w: element %d read out of order, next is %d", ErrInvalidData, i, r.next)
	}
	el := &r.hdr.Elements[i]

	values := make([]Value, len(el.Properties))
	for n := 0; n < el.Count; n++ {
		for j := range el.Properties {
			p := &el.Properties[j]
			if p.List {
				cnt, err := r.readScalar(p.CountType)
				if err != nil {
					return err
				}
				c := int(cnt)
				if c < 0 || float64(c) != cnt {
					return fmt.Errorf("%w: list count %v in element %q row %d", ErrInvalidData, cnt, el.Name, n)
				}
				list := values[j].List[:0]
				for k := 0; k < c; k++ {
					v, err := r.readScalar(p.Type)
					if err != nil {
						return err
					}
					list = append(list, v)
				}
				values[j].List = list
			} else {
				v, err := r.readScalar(p.Type)
				if err != nil {
					return err
				}
				values[j].Scalar = v
			}
		}
		if row != nil {
			if err := row(values); err != nil {
				return err
			}
		}
	}

	r.next++
	return nil
}

func (r *Reader) readScalar(t ScalarType) (float64, error) {
	if r.hdr.Format == ASCII {
		return r.readASCIIScalar()
	}
	return r.readBinaryScalar(t)
}

func (r *Reader) readASCIIScalar() (float64, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return 0, fmt.Errorf("%w: unexpected end of data", ErrTruncatedData)
	}
	v, err := strconv.ParseFloat(r.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q", ErrInvalidData, r.scanner.Text())
	}
	return v, nil
}

func (r *Reader) readBinaryScalar(t ScalarType) (float64, error) {
	switch t {
	case Int8:
		var v int8
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return float64(v), nil
	case UInt8:
		var v uint8
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return float64(v), nil
	case Int16:
		var v int16
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return float64(v), nil
	case UInt16:
		var v uint16
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return float64(v), nil
	case Int32:
		var v int32
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return float64(v), nil
	case UInt32:
		var v uint32
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return float64(v), nil
	case Float32:
		var v float32
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return float64(v), nil
	case Float64:
		var v float64
		if err := binary.Read(r.br, r.order, &v); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncatedData, err)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}
