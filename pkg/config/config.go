package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/hashdoc/pkg/binding"
	"github.com/jlrickert/hashdoc/pkg/log"
	"github.com/jlrickert/hashdoc/pkg/manifest"
	"github.com/jlrickert/hashdoc/pkg/resolver"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no explicit
// path is given.
const DefaultConfigFile = ".hashdoc.yaml"

const DefaultServeAddr = "127.0.0.1:8040"

// ErrInvalidConfig indicates the configuration is invalid or fails validation.
var ErrInvalidConfig = errors.New("hashdoc: invalid config")

// InvalidConfigError represents a validation or parse failure for a config
// file.
type InvalidConfigError struct {
	Msg string
}

func (e *InvalidConfigError) Error() string {
	if e.Msg == "" {
		return "invalid hashdoc config"
	}
	return fmt.Sprintf("invalid hashdoc config: %s", e.Msg)
}

func (e *InvalidConfigError) Is(target error) bool { return target == ErrInvalidConfig }

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Attributes names the two declarative attributes that mark a binding
// target.
type Attributes struct {
	Manifest string `yaml:"manifest,omitempty"`
	Key      string `yaml:"key,omitempty"`
}

type Serve struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config is the structure for .hashdoc.yaml.
type Config struct {
	// Channel is the top-level manifest table lookups are made against.
	Channel     string     `yaml:"channel,omitempty"`
	Placeholder string     `yaml:"placeholder,omitempty"`
	Attributes  Attributes `yaml:"attributes,omitempty"`

	// Concurrency bounds in-flight resolutions per document. Zero means
	// unbounded.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Extensions lists the document file extensions walked in directories.
	Extensions []string `yaml:"extensions,omitempty"`

	Serve Serve `yaml:"serve,omitempty"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Channel == "" {
		c.Channel = manifest.DefaultChannel
	}
	if c.Placeholder == "" {
		c.Placeholder = resolver.DefaultPlaceholder
	}
	if c.Attributes.Manifest == "" {
		c.Attributes.Manifest = binding.DefaultManifestAttr
	}
	if c.Attributes.Key == "" {
		c.Attributes.Key = binding.DefaultKeyAttr
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".html", ".htm", ".md"}
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultServeAddr
	}
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return &InvalidConfigError{Msg: "concurrency must not be negative"}
	}
	if c.Attributes.Manifest == c.Attributes.Key {
		return &InvalidConfigError{Msg: "manifest and key attributes must differ"}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return &InvalidConfigError{Msg: fmt.Sprintf("extension %q must start with a dot", ext)}
		}
	}
	return nil
}

// HasExtension reports whether path has one of the configured document
// extensions.
func (c *Config) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// ResolverOptions maps the config onto resolver options.
func (c *Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		Channel:     c.Channel,
		Placeholder: c.Placeholder,
	}
}

// ParseConfig parses raw YAML and applies defaults.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, &InvalidConfigError{Msg: err.Error()}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// UserConfigFile returns the per-user config path,
// $XDG_CONFIG_HOME/hashdoc/config.yaml on Unix-like systems.
func UserConfigFile(rt *toolkit.Runtime) (string, error) {
	dir, err := toolkit.UserConfigPath(rt)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hashdoc", "config.yaml"), nil
}

// ReadConfig reads and parses a config file through rt. An empty path tries
// DefaultConfigFile in the working directory, then UserConfigFile, and
// falls back to defaults when neither exists.
func ReadConfig(ctx context.Context, rt *toolkit.Runtime, path string) (*Config, error) {
	lg := log.FromContext(ctx)
	if path == "" {
		candidates := []string{DefaultConfigFile}
		if user, err := UserConfigFile(rt); err == nil {
			candidates = append(candidates, user)
		}
		for _, c := range candidates {
			if _, err := rt.Stat(c, true); err == nil {
				path = c
				break
			}
		}
		if path == "" {
			lg.Debug("no config file, using defaults", "tried", candidates)
			return Default(), nil
		}
	}

	b, err := rt.ReadFile(path)
	if err != nil {
		lg.Debug("failed to read config", "path", path, "err", err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	c, err := ParseConfig(b)
	if err != nil {
		lg.Error("failed to parse config", "path", path, "err", err)
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	lg.Debug("config read", "path", path, "config", c)
	return c, nil
}

// String renders the config as YAML.
func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(b)
}
