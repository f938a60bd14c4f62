// Package config loads the symbol configuration file.
//
// The file is TOML, read from --config or from
// $XDG_CONFIG_HOME/symbol/config.toml (~/.config/symbol/config.toml when
// XDG_CONFIG_HOME is unset). A missing default file means all defaults.
//
//	format = "yaml"
//
//	[traverse]
//	mode = "breadth_first"
//	family = "children_first"
//
//	[index]
//	strategy = "color"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/index"
	"github.com/matzehuels/symbol/pkg/walk"
)

const appName = "symbol"

// Config is the complete configuration.
type Config struct {
	Format   string   `toml:"format" validate:"oneof=json yaml toml"`
	Traverse Traverse `toml:"traverse"`
	Index    Index    `toml:"index"`
	Cache    Cache    `toml:"cache"`
	Mongo    Mongo    `toml:"mongo"`
	Server   Server   `toml:"server"`
}

// Traverse holds the default walk options.
type Traverse struct {
	Mode   string `toml:"mode" validate:"oneof=depth_first breadth_first"`
	Family string `toml:"family" validate:"oneof=children_first parents_first"`
}

// Index holds the index balancing strategy.
type Index struct {
	Strategy string `toml:"strategy" validate:"oneof=weight height color hybrid"`
}

// Cache selects the snapshot cache backend.
type Cache struct {
	Backend   string        `toml:"backend" validate:"oneof=file null redis badger"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr" validate:"required_if=Backend redis,omitempty,hostname_port"`
	TTL       time.Duration `toml:"ttl" validate:"gte=0"`
}

// Mongo configures the MongoDB snapshot store. An empty URI disables it.
type Mongo struct {
	URI      string `toml:"uri" validate:"omitempty,uri"`
	Database string `toml:"database" validate:"required_with=URI"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format:   string(codec.FormatJSON),
		Traverse: Traverse{Mode: string(walk.DepthFirst), Family: string(walk.ChildrenFirst)},
		Index:    Index{Strategy: string(index.StrategyHeight)},
		Cache:    Cache{Backend: "file"},
		Mongo:    Mongo{Database: appName},
		Server:   Server{Addr: "localhost:8080"},
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default file cache directory.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path over the defaults and validates the result.
// An empty path means DefaultPath, which may be absent; an explicit path
// must exist. Unknown keys and invalid values fail with INVALID_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.Validate()
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return cfg, cfg.Validate()
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldError(fe)
	}
	return errors.New(errors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "required", "required_if", "required_with":
		return field + " is required"
	}
	return field + " is not a valid " + fe.Tag()
}

// WalkOptions returns the configured walk mode and family.
func (c Config) WalkOptions() walk.Options {
	return walk.Options{Mode: walk.Mode(c.Traverse.Mode), Family: walk.Family(c.Traverse.Family)}
}

// Strategy returns the configured index strategy.
func (c Config) Strategy() index.Strategy { return index.Strategy(c.Index.Strategy) }

// CodecFormat returns the configured default document format.
func (c Config) CodecFormat() codec.Format { return codec.Format(c.Format) }
