package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	rderrors "restdoc/internal/errors"
)

// LibraryFile is the TOML file declaring additional marker libraries.
type LibraryFile struct {
	Libraries []LibraryDef `toml:"library"`
}

// LibraryDef declares one marker library. Tables are merged over the base
// library named by Extends; lists replace the base lists.
type LibraryDef struct {
	Name             string            `toml:"name"`
	Extends          string            `toml:"extends"`
	TagMarkers       []string          `toml:"tag_markers"`
	ClassPathMarkers []string          `toml:"class_path_markers"`
	PathMarkers      []string          `toml:"path_markers"`
	Produces         map[string]string `toml:"produces"`
	Consumes         map[string]string `toml:"consumes"`
	Operations       map[string]string `toml:"operations"`
	Parameters       map[string]string `toml:"parameters"`
	IgnoredMarkers   []string          `toml:"ignored_markers"`
	OptionalMarkers  []string          `toml:"optional_markers"`
	Unannotated      string            `toml:"unannotated"`
}

// LoadLibraryFile reads a marker library file.
func LoadLibraryFile(path string) (*LibraryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rderrors.NewConfigurationError("cannot read library file "+path, err)
	}

	var file LibraryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, rderrors.NewConfigurationError("cannot parse library file "+path, err)
	}
	for i, lib := range file.Libraries {
		if lib.Name == "" {
			return nil, rderrors.NewConfigurationError(fmt.Sprintf("library file %s: library #%d has no name", path, i+1), nil)
		}
	}
	return &file, nil
}
