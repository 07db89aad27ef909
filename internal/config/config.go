// Package config loads command-line settings for epubtext from an optional
// YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v3"

	"github.com/simp-lee/epubtext"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel     = "EPUBTEXT_LOG_LEVEL"
	EnvKeepGoing    = "EPUBTEXT_KEEP_GOING"
	EnvHTMLEntities = "EPUBTEXT_HTML_ENTITIES"
	EnvMaxEntrySize = "EPUBTEXT_MAX_ENTRY_SIZE"
	EnvDetectDRM    = "EPUBTEXT_DETECT_DRM"
)

// Config is the file/env configuration schema. Zero values mean "not set".
type Config struct {
	LogLevel     string `yaml:"logLevel"`
	KeepGoing    bool   `yaml:"keepGoing"`
	HTMLEntities bool   `yaml:"htmlEntities"`
	MaxEntrySize int64  `yaml:"maxEntrySize"`
	DetectDRM    bool   `yaml:"detectDRM"`
}

// Load reads a YAML config file. Unknown keys are rejected. An empty file
// yields the zero Config.
func Load(path string) (Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	return c, nil
}

// ApplyEnv overlays values from the environment onto c. Set variables take
// precedence over values loaded from a file. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvKeepGoing)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvKeepGoing, err)
		}
		c.KeepGoing = b
	}
	if v := strings.TrimSpace(getenv(EnvHTMLEntities)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTMLEntities, err)
		}
		c.HTMLEntities = b
	}
	if v := strings.TrimSpace(getenv(EnvDetectDRM)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDetectDRM, err)
		}
		c.DetectDRM = b
	}
	if v := strings.TrimSpace(getenv(EnvMaxEntrySize)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxEntrySize, err)
		}
		c.MaxEntrySize = n
	}
	return nil
}

// Level parses LogLevel, defaulting to info when unset.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// Options converts c into extraction options using logger for progress.
func (c Config) Options(logger *zerolog.Logger) epubtext.Options {
	return epubtext.Options{
		Logger:       logger,
		KeepGoing:    c.KeepGoing,
		HTMLEntities: c.HTMLEntities,
		MaxEntrySize: c.MaxEntrySize,
		DetectDRM:    c.DetectDRM,
	}
}
