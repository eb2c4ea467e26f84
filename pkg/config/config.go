// Package config loads arborist's TOML configuration file.
//
// The file is optional. Every section falls back to the built-in defaults,
// and a section that is present only overrides the keys it names:
//
//	[geometry]
//	radius = 24
//
//	[defaults]
//	depth = 5
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/params"
	"github.com/matzehuels/arborist/pkg/render"
	"github.com/matzehuels/arborist/pkg/render/layout"
	"github.com/matzehuels/arborist/pkg/tree"
)

const (
	appName  = "arborist"
	fileName = "config.toml"
)

// Config is the full configuration.
type Config struct {
	Geometry layout.Geometry `toml:"geometry"`
	Style    render.Style    `toml:"style"`
	Defaults params.Params   `toml:"defaults"`
	Server   Server          `toml:"server"`
}

// Server configures `arborist serve`.
type Server struct {
	Addr string `toml:"addr"`
	// RedisAddr enables the shared Redis cache. Empty disables caching.
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	KeyPrefix     string   `toml:"key_prefix"`
	CacheTTL      Duration `toml:"cache_ttl"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Geometry: layout.DefaultGeometry(),
		Style:    render.DefaultStyle(),
		Defaults: params.Default(),
		Server: Server{
			Addr:      ":8080",
			KeyPrefix: appName + ":",
			CacheTTL:  Duration{time.Hour},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/arborist/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config at path over the defaults. An empty path means
// [DefaultPath], which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return Parse(string(data))
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []error{
		c.Geometry.Validate(),
		c.Style.Validate(),
		errors.ValidateLevels(c.Defaults.Depth, tree.MaxLevels),
		errors.ValidateProbability("defaults.left_prob", c.Defaults.LeftProb),
		errors.ValidateProbability("defaults.right_prob", c.Defaults.RightProb),
	}
	if c.Server.CacheTTL.Duration < 0 {
		checks = append(checks, errors.New(errors.ErrCodeInvalidParameter, "server.cache_ttl must not be negative"))
	}
	for _, err := range checks {
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
		}
	}
	return nil
}

// Resolver returns a params resolver whose fallbacks are the configured
// defaults.
func (c Config) Resolver() params.Resolver {
	return params.NewResolver(c.Defaults)
}
