package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	rderrors "restdoc/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputDir != "target/openapi" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "target/openapi")
	}
	if diff := cmp.Diff([]string{"src/main/java"}, cfg.SourceRoots); diff != "" {
		t.Errorf("SourceRoots mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Javadoc.Enabled {
		t.Error("Javadoc extraction should be enabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if len(cfg.APIs) != 0 {
		t.Errorf("DefaultConfig() declares %d apis, want none", len(cfg.APIs))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{"sample is valid", func(*Config) {}, nil},
		{"no apis", func(c *Config) { c.APIs = nil }, []string{"apis"}},
		{"no source roots", func(c *Config) { c.SourceRoots = nil }, []string{"sourceRoots"}},
		{"no locations", func(c *Config) { c.APIs[0].Locations = nil }, []string{"apis[0].locations"}},
		{"unknown library", func(c *Config) { c.APIs[0].Library = "grpc" }, []string{"apis[0].library"}},
		{"unknown format", func(c *Config) { c.APIs[0].Format = "xml" }, []string{"apis[0].format"}},
		{"bad pattern", func(c *Config) { c.APIs[0].BlackList = []string{"("} }, []string{"apis[0]"}},
		{"duplicate filename", func(c *Config) { c.APIs = append(c.APIs, c.APIs[0]) }, []string{"apis[1].filename"}},
		{"every problem at once", func(c *Config) {
			c.SourceRoots = nil
			c.APIs[0].Filename = ""
			c.APIs[0].Format = "xml"
		}, []string{"sourceRoots", "apis[0].filename", "apis[0].format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SampleConfig()
			tt.mutate(cfg)

			err := cfg.Validate("jaxrs", "spring")
			if len(tt.fields) == 0 {
				if err != nil {
					t.Errorf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			if rderrors.CodeOf(err) != rderrors.ConfigurationError {
				t.Fatalf("Validate() error = %v, want a configuration error", err)
			}
			for _, f := range tt.fields {
				if !strings.Contains(err.Error(), "'"+f+"'") {
					t.Errorf("Validate() error %q does not mention %s", err, f)
				}
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "apis[0].format", Message: "unsupported format xml"}

	got := err.Error()
	want := "config error in field 'apis[0].format': unsupported format xml"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig("", tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputDir != "target/openapi" || !cfg.Javadoc.Enabled {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "restdoc.yaml", `
outputDir: build/docs
sourceRoots: [src/main/java, src/gen/java]
javadoc:
  enabled: false
apis:
  - filename: shop
    library: jaxrs
    locations: [com.shop.api]
    whiteList: ['com\.shop\.api\..*']
    format: json
    compress: true
    info:
      title: Shop
    servers:
      - url: https://shop.example.com
`},
		{"json", "restdoc.json", `{
  "outputDir": "build/docs",
  "sourceRoots": ["src/main/java", "src/gen/java"],
  "javadoc": {"enabled": false},
  "apis": [{
    "filename": "shop",
    "library": "jaxrs",
    "locations": ["com.shop.api"],
    "whiteList": ["com\\.shop\\.api\\..*"],
    "format": "json",
    "compress": true,
    "info": {"title": "Shop"},
    "servers": [{"url": "https://shop.example.com"}]
  }]
}`},
		{"toml", "restdoc.toml", `
outputDir = "build/docs"
sourceRoots = ["src/main/java", "src/gen/java"]

[javadoc]
enabled = false

[[apis]]
filename = "shop"
library = "jaxrs"
locations = ["com.shop.api"]
whiteList = ['com\.shop\.api\..*']
format = "json"
compress = true

[apis.info]
title = "Shop"

[[apis.servers]]
url = "https://shop.example.com"
`},
	}

	want := []APIConfig{{
		Filename:  "shop",
		Library:   "jaxrs",
		Locations: []string{"com.shop.api"},
		WhiteList: []string{`com\.shop\.api\..*`},
		Format:    "json",
		Compress:  true,
		Info:      InfoConfig{Title: "Shop", Version: "1.0.0"},
		Servers:   []ServerConfig{{URL: "https://shop.example.com"}},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, tt.file), []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}

			cfg, err := LoadConfig("", tmpDir)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.OutputDir != "build/docs" || len(cfg.SourceRoots) != 2 || cfg.Javadoc.Enabled {
				t.Errorf("top level = %q %v %v", cfg.OutputDir, cfg.SourceRoots, cfg.Javadoc.Enabled)
			}
			if cfg.Logging.Level != "info" {
				t.Errorf("Logging.Level = %q, want the default", cfg.Logging.Level)
			}
			if diff := cmp.Diff(want, cfg.APIs); diff != "" {
				t.Errorf("apis mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(path, []byte("outputDir: from-file\nlogging:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESTDOC_OUTPUTDIR", "from-env")
	t.Setenv("RESTDOC_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(path, "")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputDir != "from-env" || cfg.Logging.Level != "debug" {
		t.Errorf("OutputDir = %q, Logging.Level = %q, want environment values", cfg.OutputDir, cfg.Logging.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	bad := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("apis: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{bad, filepath.Join(tmpDir, "missing.yaml")} {
		_, err := LoadConfig(path, "")
		if rderrors.CodeOf(err) != rderrors.ConfigurationError {
			t.Errorf("LoadConfig(%s) error = %v, want a configuration error", filepath.Base(path), err)
		}
	}
}

func TestWriteSample(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "restdoc.toml")

	if err := WriteSample(path, false); err != nil {
		t.Fatalf("WriteSample() error = %v", err)
	}

	cfg, err := LoadConfig("", tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if err := cfg.Validate("spring"); err != nil {
		t.Errorf("sample configuration is invalid: %v", err)
	}
	if diff := cmp.Diff(SampleConfig().APIs, cfg.APIs); diff != "" {
		t.Errorf("apis mismatch (-want +got):\n%s", diff)
	}

	err = WriteSample(path, false)
	var rdErr *rderrors.Error
	if !errors.As(err, &rdErr) || rdErr.Code != rderrors.ConfigurationError {
		t.Errorf("WriteSample() over an existing file = %v, want a configuration error", err)
	}
	if err := WriteSample(path, true); err != nil {
		t.Errorf("WriteSample(force) error = %v", err)
	}
}

func TestLoadLibraryFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "libraries.toml")
	content := `
[[library]]
name = "micronaut"
extends = "jaxrs"
tag_markers = ["Controller"]
class_path_markers = ["Controller"]
unannotated = "body"

[library.operations]
Get = "GET"
Post = "POST"

[library.parameters]
PathVariable = "path"
QueryValue = "query"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	file, err := LoadLibraryFile(path)
	if err != nil {
		t.Fatalf("LoadLibraryFile() error = %v", err)
	}
	want := []LibraryDef{{
		Name:             "micronaut",
		Extends:          "jaxrs",
		TagMarkers:       []string{"Controller"},
		ClassPathMarkers: []string{"Controller"},
		Operations:       map[string]string{"Get": "GET", "Post": "POST"},
		Parameters:       map[string]string{"PathVariable": "path", "QueryValue": "query"},
		Unannotated:      "body",
	}}
	if diff := cmp.Diff(want, file.Libraries); diff != "" {
		t.Errorf("libraries mismatch (-want +got):\n%s", diff)
	}

	unnamed := filepath.Join(tmpDir, "unnamed.toml")
	if err := os.WriteFile(unnamed, []byte("[[library]]\nextends = \"spring\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLibraryFile(unnamed); rderrors.CodeOf(err) != rderrors.ConfigurationError {
		t.Errorf("LoadLibraryFile(unnamed) error = %v, want a configuration error", err)
	}
}
