package model3d

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Format identifies a supported model file format.
type Format uint8

// Format constants.
const (
	FormatOBJ Format = iota + 1
	FormatGLTF
	FormatSTL
	FormatPLY
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "OBJ"
	case FormatGLTF:
		return "glTF"
	case FormatSTL:
		return "STL"
	case FormatPLY:
		return "PLY"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// LoaderFunc parses the model file at path into a canonical Model.
// The dispatcher has already verified that the path exists.
type LoaderFunc func(path string) (*Model, error)

// loaders maps each format to its registered loader. Adapters
// register themselves in init, so the dispatcher never names them.
var loaders = map[Format]LoaderFunc{}

// Register installs the loader for a format, replacing any previous
// registration. Not safe for concurrent use with Load; register
// custom loaders during program startup.
func Register(f Format, fn LoaderFunc) {
	loaders[f] = fn
}

// extensions maps a file extension, without the dot and matched
// case-sensitively, to its format.
var extensions = map[string]Format{
	"obj":  FormatOBJ,
	"gltf": FormatGLTF,
	"glb":  FormatGLTF,
	"stl":  FormatSTL,
	"ply":  FormatPLY,
}

// checkExists verifies that the path names an existing file.
func checkExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotExists, path)
		}
		return fmt.Errorf("%w: %v", ErrOpenFile, err)
	}
	return nil
}

// DetectFormat determines a file's format from its extension. The
// extension is matched case-sensitively ("cube.OBJ" is unknown). A
// missing file is reported as ErrFileNotExists before the extension
// is inspected.
func DetectFormat(path string) (Format, error) {
	if err := checkExists(path); err != nil {
		return 0, err
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	f, ok := extensions[ext]
	if !ok {
		return 0, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
	}
	return f, nil
}

// Load reads the model file at path, detecting its format from the
// file extension.
func Load(path string) (*Model, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return dispatch(path, f)
}

// LoadFormat reads the model file at path as the given format,
// bypassing extension detection. The existence check still runs
// first: a missing path returns ErrFileNotExists for every format.
func LoadFormat(path string, f Format) (*Model, error) {
	if err := checkExists(path); err != nil {
		return nil, err
	}
	return dispatch(path, f)
}

func dispatch(path string, f Format) (*Model, error) {
	fn, ok := loaders[f]
	if !ok {
		return nil, fmt.Errorf("%w: no loader registered for %s", ErrUnknownFormat, f)
	}

	log.Debug("loading model",
		zap.String("path", path),
		zap.Stringer("format", f),
	)

	model, err := fn(path)
	if err != nil {
		return nil, err
	}
	model.Format = f

	log.Debug("model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(model.Meshes)),
		zap.Int("materials", len(model.Materials)),
		zap.Int("vertices", model.VertexCount()),
	)
	return model, nil
}
