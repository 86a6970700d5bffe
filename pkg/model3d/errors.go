package model3d

import "errors"

// Load error kinds. Every error returned by Load, LoadFormat and
// DetectFormat wraps exactly one of these, so callers can classify
// failures with errors.Is while the message keeps the underlying
// detail.
var (
	// ErrUnknownFormat marks an unrecognized file extension or a
	// format with no registered loader.
	ErrUnknownFormat = errors.New("unknown model format")
	// ErrFileNotExists marks a path that is absent on disk. It is
	// returned before any format-specific parsing starts.
	ErrFileNotExists = errors.New("model file does not exist")
	// ErrOpenFile marks a file that exists but cannot be opened or
	// read; it wraps the operating system error text.
	ErrOpenFile = errors.New("opening model file")
	// ErrModelParsing marks malformed geometry or container data.
	ErrModelParsing = errors.New("parsing model")
	// ErrMaterialLoad marks a failure resolving material data. It is
	// kept distinct from ErrModelParsing so callers can tell a broken
	// material library from broken geometry.
	ErrMaterialLoad = errors.New("loading material")
)
