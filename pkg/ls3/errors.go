// Package ls3 implements export and import of scenes to the Zusi
// landscape format: an XML metadata file (.ls3) paired with a binary
// vertex/face stream (.lsb), split into a forest of interlinked files
// along animation boundaries.
package ls3

import (
	"errors"
	"fmt"
)

// Format and pipeline errors.
var (
	ErrTruncatedStream  = errors.New("truncated binary stream")
	ErrMissingResource  = errors.New("missing resource")
	ErrInvalidScope     = errors.New("invalid export scope")
	ErrInvalidTolerance = errors.New("tolerance must not be negative")
	ErrIndexOverflow    = errors.New("subset exceeds 16-bit vertex index range")
	ErrNoOutputPath     = errors.New("no output path configured")
)

// Warning is a non-fatal problem collected during an export or import
// run and reported to the caller at the end.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

// WarningList aggregates warnings across a run.
type WarningList []Warning

// Addf appends a formatted warning.
func (l *WarningList) Addf(path, format string, args ...any) {
	*l = append(*l, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}
