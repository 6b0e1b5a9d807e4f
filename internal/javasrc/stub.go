//go:build !cgo

package javasrc

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when the binary was built without cgo, which the
// tree-sitter Java grammar requires.
var ErrNoCGO = errors.New("java parsing requires a cgo-enabled build")

// ParseFile is unavailable without cgo.
func ParseFile(ctx context.Context, path string) (*File, error) {
	return nil, ErrNoCGO
}

// ParseSource is unavailable without cgo.
func ParseSource(ctx context.Context, path string, source []byte) (*File, error) {
	return nil, ErrNoCGO
}

// IsAvailable reports whether Java parsing is available in this build.
func IsAvailable() bool {
	return false
}
