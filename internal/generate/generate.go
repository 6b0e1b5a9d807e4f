// Package generate runs the whole pipeline: it loads the Java sources and
// their documentation once, then scans, documents, renders and writes one
// OpenAPI document per configured API.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"restdoc/internal/analyser"
	"restdoc/internal/config"
	rderrors "restdoc/internal/errors"
	"restdoc/internal/introspect"
	"restdoc/internal/javadoc"
	"restdoc/internal/javasrc"
	"restdoc/internal/merge"
	"restdoc/internal/model"
	"restdoc/internal/openapi"
	"restdoc/internal/scanner"
	"restdoc/internal/schema"
	"restdoc/internal/version"
)

// Report summarizes one generation.
type Report struct {
	ID        string           `json:"id"`
	Generator string           `json:"generator"`
	Documents []DocumentReport `json:"documents"`
}

// DocumentReport describes one written document.
type DocumentReport struct {
	Filename   string             `json:"filename"`
	Path       string             `json:"path"`
	Tags       int                `json:"tags"`
	Operations int                `json:"operations"`
	Schemas    int                `json:"schemas"`
	Documented merge.Stats        `json:"documented"`
	Warnings   []rderrors.Warning `json:"warnings,omitempty"`
}

// Warnings returns the number of warnings across all documents.
func (r *Report) Warnings() int {
	n := 0
	for _, d := range r.Documents {
		n += len(d.Warnings)
	}
	return n
}

// Generator holds a validated configuration and its marker libraries.
type Generator struct {
	cfg     *config.Config
	catalog *analyser.Catalog
	logger  *slog.Logger
}

// New loads the marker libraries and validates cfg against them.
func New(cfg *config.Config, logger *slog.Logger) (*Generator, error) {
	catalog := analyser.NewCatalog()
	if cfg.LibraryFile != "" {
		file, err := config.LoadLibraryFile(cfg.LibraryFile)
		if err != nil {
			return nil, err
		}
		for _, def := range file.Libraries {
			if err := catalog.Define(definition(def)); err != nil {
				return nil, rderrors.NewConfigurationError("invalid library in "+cfg.LibraryFile, err)
			}
			logger.Debug("Defined marker library", "name", def.Name, "extends", def.Extends)
		}
	}
	if err := cfg.Validate(catalog.Names()...); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, catalog: catalog, logger: logger}, nil
}

// Run is New followed by Generator.Run.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Report, error) {
	g, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return g.Run(ctx)
}

// Run loads the configured source roots and generates every document.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	universe, err := javasrc.Load(ctx, g.cfg.SourceRoots, g.logger)
	if err != nil {
		return nil, err
	}

	var docs map[string]*javadoc.ClassDocumentation
	if g.cfg.Javadoc.Enabled {
		roots := append(append([]string(nil), g.cfg.SourceRoots...), g.cfg.Javadoc.ExtraRoots...)
		docs, err = javadoc.Extract(ctx, roots, g.logger)
		if err != nil {
			return nil, err
		}
	}
	return g.Generate(ctx, universe, docs)
}

// Generate writes one document per API from an already loaded provider and
// documentation table. The first failing API aborts the generation.
func (g *Generator) Generate(ctx context.Context, provider introspect.Provider, docs map[string]*javadoc.ClassDocumentation) (*Report, error) {
	report := &Report{ID: uuid.NewString(), Generator: version.GeneratorName()}
	logger := g.logger.With("generation", report.ID)

	for _, api := range g.cfg.APIs {
		doc, err := g.generate(ctx, provider, docs, api, logger)
		if err != nil {
			return nil, err
		}
		report.Documents = append(report.Documents, *doc)
	}
	return report, nil
}

func (g *Generator) generate(ctx context.Context, provider introspect.Provider, docs map[string]*javadoc.ClassDocumentation,
	api config.APIConfig, logger *slog.Logger) (*DocumentReport, error) {
	lib, ok := g.catalog.Get(api.Library)
	if !ok {
		return nil, rderrors.NewConfigurationError("unknown library "+api.Library, nil)
	}
	logger = logger.With("api", api.Filename)

	resolver := schema.NewResolver(provider, model.NewRegistry(), logger)
	an := analyser.New(provider, lib, api.TagAnnotations, resolver, logger)
	sc := scanner.New(provider, an, scanner.Config{
		Locations:  api.Locations,
		TagMarkers: an.TagMarkers(),
		WhiteList:  api.WhiteList,
		BlackList:  api.BlackList,
	}, logger)

	tags, err := sc.Scan(ctx)
	if err != nil {
		return nil, err
	}
	stats := merge.Apply(tags, docs)

	doc := openapi.Build(tags, openapi.Options{
		Info: openapi.Info{
			Title:       api.Info.Title,
			Version:     api.Info.Version,
			Description: api.Info.Description,
		},
		Servers: servers(api.Servers),
	})
	data, err := openapi.Encode(doc, api.Format)
	if err != nil {
		return nil, rderrors.New(rderrors.InternalError, "cannot encode "+api.Filename, err)
	}

	path := filepath.Join(g.cfg.OutputDir, api.Filename+openapi.Extension(api.Format))
	if api.Compress {
		path += ".gz"
	}
	if err := writeFile(path, data, api.Compress); err != nil {
		return nil, err
	}

	operations := 0
	for _, item := range doc.Paths {
		operations += len(item.Operations())
	}
	logger.Info(fmt.Sprintf("%s : %d tags and %d operations generated.", api.Filename, len(doc.Tags), operations), "path", path)

	return &DocumentReport{
		Filename:   api.Filename,
		Path:       path,
		Tags:       len(doc.Tags),
		Operations: operations,
		Schemas:    tags.Registry.Len(),
		Documented: stats,
		Warnings:   resolver.Warnings(),
	}, nil
}

func servers(in []config.ServerConfig) []openapi.Server {
	var out []openapi.Server
	for _, s := range in {
		out = append(out, openapi.Server{URL: s.URL, Description: s.Description})
	}
	return out
}

// writeFile writes data through a temporary file so that a failed run never
// leaves a truncated document behind.
func writeFile(path string, data []byte, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return rderrors.NewOutputError(path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return rderrors.NewOutputError(path, err)
	}
	defer os.Remove(tmp.Name())

	if compress {
		zw := gzip.NewWriter(tmp)
		zw.Name = strings.TrimSuffix(filepath.Base(path), ".gz")
		if _, err = zw.Write(data); err == nil {
			err = zw.Close()
		}
	} else {
		_, err = tmp.Write(data)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		return rderrors.NewOutputError(path, err)
	}
	return nil
}

func definition(d config.LibraryDef) analyser.Definition {
	return analyser.Definition{
		Name:             d.Name,
		Extends:          d.Extends,
		TagMarkers:       d.TagMarkers,
		ClassPathMarkers: d.ClassPathMarkers,
		PathMarkers:      d.PathMarkers,
		ProducesMarkers:  d.Produces,
		ConsumesMarkers:  d.Consumes,
		Operations:       d.Operations,
		Parameters:       d.Parameters,
		IgnoredMarkers:   d.IgnoredMarkers,
		OptionalMarkers:  d.OptionalMarkers,
		Unannotated:      d.Unannotated,
	}
}
