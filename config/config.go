// Package config loads, validates and watches the forcegraph configuration.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/TFMV/forcegraph/camera"
	"github.com/TFMV/forcegraph/frame"
	"github.com/TFMV/forcegraph/graph"
	"github.com/TFMV/forcegraph/logging"
)

var (
	// ErrUnsupportedFormat is returned for config files that are not YAML,
	// TOML or JSON.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid config")
)

var validate = validator.New()

// Config is the complete configuration of the engine and its hosts.
type Config struct {
	Physics graph.Options  `json:"physics" yaml:"physics" toml:"physics"`
	Backend string         `json:"backend" yaml:"backend" toml:"backend" validate:"oneof=grid quadtree barnes-hut"`
	Seed    SeedConfig     `json:"seed" yaml:"seed" toml:"seed"`
	Layout  LayoutConfig   `json:"layout" yaml:"layout" toml:"layout"`
	Camera  camera.Config  `json:"camera" yaml:"camera" toml:"camera"`
	Frame   frame.Config   `json:"frame" yaml:"frame" toml:"frame"`
	Server  ServerConfig   `json:"server" yaml:"server" toml:"server"`
	Log     logging.Config `json:"log" yaml:"log" toml:"log"`
}

// SeedConfig picks the initial placement.
type SeedConfig struct {
	Policy string `json:"policy" yaml:"policy" toml:"policy" validate:"oneof=spread random smart noise none"`
	Value  int64  `json:"value" yaml:"value" toml:"value"`
}

// LayoutConfig controls batch layouts.
type LayoutConfig struct {
	MaxTicks int `json:"max_ticks" yaml:"max_ticks" toml:"max_ticks" validate:"gt=0"`
	Width    int `json:"width" yaml:"width" toml:"width" validate:"gt=0"`
	Height   int `json:"height" yaml:"height" toml:"height" validate:"gt=0"`
	// Scale is the camera zoom used for rendered output.
	Scale float64 `json:"scale" yaml:"scale" toml:"scale" validate:"gte=1"`
}

// ServerConfig controls the HTTP viewer.
type ServerConfig struct {
	Addr         string        `json:"addr" yaml:"addr" toml:"addr" validate:"required"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout" validate:"gte=0"`
	MaxSessions  int           `json:"max_sessions" yaml:"max_sessions" toml:"max_sessions" validate:"gte=1"`
	// Tick is the period of the server's frame loop.
	Tick time.Duration `json:"tick" yaml:"tick" toml:"tick" validate:"gt=0"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Physics: graph.DefaultOptions(),
		Backend: "grid",
		Seed:    SeedConfig{Policy: "smart"},
		Layout:  LayoutConfig{MaxTicks: 5000, Width: 800, Height: 800, Scale: 1},
		Camera:  camera.DefaultConfig(),
		Frame:   frame.DefaultConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxSessions:  64,
			Tick:         time.Second / 60,
		},
		Log: logging.DefaultConfig(),
	}
}

// Validate checks every struct tag rule.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// RestartRequired reports whether moving from c to next changes settings
// that only apply to a fresh graph.
func (c *Config) RestartRequired(next *Config) bool {
	return c.Physics != next.Physics || c.Backend != next.Backend || c.Seed != next.Seed
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path in the format implied by its extension.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	switch format(path) {
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	}
	return ""
}

func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch format(path) {
	case "yaml":
		err = yaml.Unmarshal(data, cfg)
	case "toml":
		_, err = toml.Decode(string(data), cfg)
	case "json":
		err = json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrInvalid, field))
		case "oneof":
			errs = append(errs, fmt.Errorf("%w: %s must be one of [%s], got %v", ErrInvalid, field, e.Param(), e.Value()))
		case "gtefield", "ltefield":
			errs = append(errs, fmt.Errorf("%w: %s must be %s %s", ErrInvalid, field, e.Tag()[:3], e.Param()))
		default:
			errs = append(errs, fmt.Errorf("%w: %s fails %s=%s (got %v)", ErrInvalid, field, e.Tag(), e.Param(), e.Value()))
		}
	}
	return errors.Join(errs...)
}
