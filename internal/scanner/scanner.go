// Package scanner discovers resource types under the configured search roots
// and collects their tags into one library.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	rderrors "restdoc/internal/errors"
	"restdoc/internal/filter"
	"restdoc/internal/introspect"
	"restdoc/internal/model"
)

// Analyser builds the tag of one resource type.
type Analyser interface {
	Analyse(t *introspect.TypeDecl) (*model.Tag, bool)
	Registry() *model.Registry
}

// Config selects the resource types of one API.
type Config struct {
	Locations  []string // package prefixes
	TagMarkers []string
	WhiteList  []string
	BlackList  []string
}

// Scanner runs one scan. It is not safe for concurrent use.
type Scanner struct {
	provider introspect.Provider
	analyser Analyser
	cfg      Config
	logger   *slog.Logger
}

// New creates a scanner.
func New(provider introspect.Provider, analyser Analyser, cfg Config, logger *slog.Logger) *Scanner {
	return &Scanner{provider: provider, analyser: analyser, cfg: cfg, logger: logger}
}

// Scan walks the locations in configuration order and returns the merged tag
// library. Tags sharing a name are merged by appending endpoints.
func (s *Scanner) Scan(ctx context.Context) (*model.TagLibrary, error) {
	if len(s.cfg.Locations) == 0 {
		return nil, rderrors.NewConfigurationError("no search root configured", nil)
	}
	if len(s.cfg.TagMarkers) == 0 {
		return nil, rderrors.NewConfigurationError("no tag annotation configured", nil)
	}
	names, err := filter.New(s.cfg.WhiteList, s.cfg.BlackList)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("run", uuid.NewString())
	lib := model.NewTagLibrary(s.analyser.Registry())

	for _, root := range s.cfg.Locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("Scanning", "root", root)

		var candidates []*introspect.TypeDecl
		for _, t := range s.provider.TypesUnder(root) {
			if introspect.HasMarker(s.provider, t, s.cfg.TagMarkers) {
				candidates = append(candidates, t)
			}
		}
		logger.Info(fmt.Sprintf("Found %d annotated classes with [ %s ]", len(candidates), strings.Join(s.cfg.TagMarkers, ", ")),
			"root", root)

		for _, t := range candidates {
			if !names.Accepts(t.QualifiedName) {
				logger.Debug("Filtered out", "type", t.QualifiedName)
				continue
			}
			if tag, ok := s.analyser.Analyse(t); ok {
				lib.AddTag(tag)
			}
		}
	}
	return lib, nil
}
