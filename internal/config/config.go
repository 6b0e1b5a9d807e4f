package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	rderrors "restdoc/internal/errors"
	"restdoc/internal/filter"
)

// FileName is the base name of the configuration file looked up in the
// working directory.
const FileName = "restdoc"

// Config represents the complete restdoc configuration
type Config struct {
	OutputDir   string        `json:"outputDir" mapstructure:"outputDir" toml:"outputDir"`
	SourceRoots []string      `json:"sourceRoots" mapstructure:"sourceRoots" toml:"sourceRoots"`
	LibraryFile string        `json:"libraryFile,omitempty" mapstructure:"libraryFile" toml:"libraryFile,omitempty"`
	Javadoc     JavadocConfig `json:"javadoc" mapstructure:"javadoc" toml:"javadoc"`
	Logging     LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging"`
	APIs        []APIConfig   `json:"apis" mapstructure:"apis" toml:"apis"`
}

// JavadocConfig controls documentation extraction
type JavadocConfig struct {
	Enabled    bool     `json:"enabled" mapstructure:"enabled" toml:"enabled"`
	ExtraRoots []string `json:"extraRoots,omitempty" mapstructure:"extraRoots" toml:"extraRoots,omitempty"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level" toml:"level"`
	File       string `json:"file,omitempty" mapstructure:"file" toml:"file,omitempty"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize" toml:"maxSize,omitempty"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups" toml:"maxBackups,omitempty"`
}

// APIConfig describes one generated document
type APIConfig struct {
	Filename       string         `json:"filename" mapstructure:"filename" toml:"filename"`
	Library        string         `json:"library" mapstructure:"library" toml:"library"`
	Locations      []string       `json:"locations" mapstructure:"locations" toml:"locations"`
	TagAnnotations []string       `json:"tagAnnotations,omitempty" mapstructure:"tagAnnotations" toml:"tagAnnotations,omitempty"`
	WhiteList      []string       `json:"whiteList,omitempty" mapstructure:"whiteList" toml:"whiteList,omitempty"`
	BlackList      []string       `json:"blackList,omitempty" mapstructure:"blackList" toml:"blackList,omitempty"`
	Format         string         `json:"format" mapstructure:"format" toml:"format"`
	Compress       bool           `json:"compress,omitempty" mapstructure:"compress" toml:"compress,omitempty"`
	Info           InfoConfig     `json:"info" mapstructure:"info" toml:"info"`
	Servers        []ServerConfig `json:"servers,omitempty" mapstructure:"servers" toml:"servers,omitempty"`
}

// InfoConfig is the info section of a generated document
type InfoConfig struct {
	Title       string `json:"title,omitempty" mapstructure:"title" toml:"title,omitempty"`
	Version     string `json:"version" mapstructure:"version" toml:"version"`
	Description string `json:"description,omitempty" mapstructure:"description" toml:"description,omitempty"`
}

// ServerConfig is one entry of the servers section
type ServerConfig struct {
	URL         string `json:"url" mapstructure:"url" toml:"url"`
	Description string `json:"description,omitempty" mapstructure:"description" toml:"description,omitempty"`
}

const (
	defaultLibrary = "spring"
	defaultFormat  = "yaml"
	defaultVersion = "1.0.0"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		OutputDir:   "target/openapi",
		SourceRoots: []string{"src/main/java"},
		Javadoc: JavadocConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxBackups: 3,
		},
	}
}

// SampleConfig returns the configuration written by "config init"
func SampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.APIs = []APIConfig{{
		Filename:  "api",
		Library:   defaultLibrary,
		Locations: []string{"com.example.api"},
		Format:    defaultFormat,
		Info:      InfoConfig{Title: "Example API", Version: defaultVersion},
	}}
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("outputDir", d.OutputDir)
	v.SetDefault("sourceRoots", d.SourceRoots)
	v.SetDefault("libraryFile", "")
	v.SetDefault("javadoc.enabled", d.Javadoc.Enabled)
	v.SetDefault("javadoc.extraRoots", []string{})
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.maxSize", "")
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads the configuration from path, or from restdoc.{yaml,yml,
// json,toml} in dir when path is empty. A missing implicit file yields the
// defaults. RESTDOC_* environment variables override file values.
func LoadConfig(path, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESTDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, rderrors.NewConfigurationError("cannot read configuration", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, rderrors.NewConfigurationError("cannot decode configuration", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills the per-API defaults viper cannot express for list items.
func (c *Config) applyDefaults() {
	for i := range c.APIs {
		api := &c.APIs[i]
		if api.Library == "" {
			api.Library = defaultLibrary
		}
		if api.Format == "" {
			api.Format = defaultFormat
		}
		if api.Info.Version == "" {
			api.Info.Version = defaultVersion
		}
		if api.Info.Title == "" {
			api.Info.Title = api.Filename
		}
	}
}

// Validate checks the configuration and reports every problem at once.
// When libraries is not empty, each API must name one of them.
func (c *Config) Validate(libraries ...string) error {
	var errs error
	if len(c.SourceRoots) == 0 {
		errs = multierr.Append(errs, &ConfigError{Field: "sourceRoots", Message: "at least one source root is required"})
	}
	if c.OutputDir == "" {
		errs = multierr.Append(errs, &ConfigError{Field: "outputDir", Message: "must not be empty"})
	}
	if len(c.APIs) == 0 {
		errs = multierr.Append(errs, &ConfigError{Field: "apis", Message: "at least one api is required"})
	}

	filenames := map[string]bool{}
	for i, api := range c.APIs {
		field := fmt.Sprintf("apis[%d]", i)
		if api.Filename == "" {
			errs = multierr.Append(errs, &ConfigError{Field: field + ".filename", Message: "must not be empty"})
		} else if filenames[api.Filename] {
			errs = multierr.Append(errs, &ConfigError{Field: field + ".filename", Message: "duplicate filename " + api.Filename})
		}
		filenames[api.Filename] = true

		if len(api.Locations) == 0 {
			errs = multierr.Append(errs, &ConfigError{Field: field + ".locations", Message: "at least one location is required"})
		}
		if len(libraries) > 0 && !lo.Contains(libraries, api.Library) {
			errs = multierr.Append(errs, &ConfigError{Field: field + ".library",
				Message: fmt.Sprintf("unknown library %q (known: %s)", api.Library, strings.Join(libraries, ", "))})
		}
		switch strings.ToLower(api.Format) {
		case "yaml", "yml", "json":
		default:
			errs = multierr.Append(errs, &ConfigError{Field: field + ".format", Message: "unsupported format " + api.Format})
		}
		if _, err := filter.New(api.WhiteList, api.BlackList); err != nil {
			errs = multierr.Append(errs, &ConfigError{Field: field, Message: err.Error()})
		}
	}

	if errs != nil {
		return rderrors.NewConfigurationError("invalid configuration", errs)
	}
	return nil
}

// WriteSample writes the sample configuration as TOML. An existing file is
// only replaced when force is set.
func WriteSample(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return rderrors.NewConfigurationError(path+" already exists (use --force to overwrite)", err)
		}
		return rderrors.NewOutputError(path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(SampleConfig()); err != nil {
		return rderrors.NewOutputError(path, fmt.Errorf("failed to encode config: %w", err))
	}
	return nil
}

// JSON returns the configuration as indented JSON
func (c *Config) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
