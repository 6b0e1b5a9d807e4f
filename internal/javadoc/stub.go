//go:build !cgo

package javadoc

import (
	"context"
	"log/slog"

	"restdoc/internal/javasrc"
)

// Extract is unavailable without cgo.
func Extract(ctx context.Context, roots []string, logger *slog.Logger) (map[string]*ClassDocumentation, error) {
	return nil, javasrc.ErrNoCGO
}
