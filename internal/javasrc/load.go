package javasrc

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"restdoc/internal/introspect"
)

// Load parses every .java file below roots and links them into one universe.
// A root that does not exist is skipped with a warning. The first file that
// fails to parse aborts the load.
func Load(ctx context.Context, roots []string, logger *slog.Logger) (*introspect.Universe, error) {
	paths, err := SourceFiles(roots, logger)
	if err != nil {
		return nil, err
	}

	files := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := ParseFile(gctx, path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	u := Link(files)
	logger.Debug("Loaded Java sources", "files", len(files), "types", u.Len())
	return u, nil
}

// SourceFiles returns the .java files below roots in lexical order. A root
// that does not exist or is not a directory is skipped with a warning.
func SourceFiles(roots []string, logger *slog.Logger) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			logger.Warn("Source root not found, skipping", "root", root)
			continue
		}
		if !info.IsDir() {
			logger.Warn("Source root is not a directory, skipping", "root", root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".java") && !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}
