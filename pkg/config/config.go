// Package config loads vrtour settings from a TOML file.
//
// Every field has a default, so an empty or missing file is valid:
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	v := viewer.New(viewer.Options{FOV: cfg.Viewer.FOVRadians()})
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/vrtour/pkg/errors"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.toml"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Duration is a time.Duration that decodes from TOML strings like "3.3s".
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
	return []byte(d.String()), nil
}

// Config is the whole configuration file.
type Config struct {
	Viewer   Viewer   `toml:"viewer"`
	Overlay  Overlay  `toml:"overlay"`
	Manifest Manifest `toml:"manifest"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
}

// Viewer configures the panorama camera.
type Viewer struct {
	FOV    float64 `toml:"fov"` // degrees
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
}

// FOVRadians returns FOV in radians.
func (v Viewer) FOVRadians() float64 { return v.FOV * math.Pi / 180 }

// Overlay configures marker dragging.
type Overlay struct {
	CanDrag        bool     `toml:"can_drag"`
	ClampDrag      bool     `toml:"clamp_drag"`
	EdgeThrottle   Duration `toml:"edge_throttle"`
	RotateSpeedRPM float64  `toml:"rotate_speed_rpm"`
}

// Manifest locates the house manifest.
type Manifest struct {
	Source   string   `toml:"source"` // file path or http(s) URL
	CacheTTL Duration `toml:"cache_ttl"`
}

// Cache selects where fetched manifests are cached.
type Cache struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// Store selects where hotspot edits are persisted.
type Store struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	HouseID       int    `toml:"house_id"`
}

// Server configures the edit server.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewer: Viewer{FOV: 65, Width: 800, Height: 600},
		Overlay: Overlay{
			EdgeThrottle:   Duration{3300 * time.Millisecond},
			RotateSpeedRPM: 3.3,
		},
		Manifest: Manifest{CacheTTL: Duration{24 * time.Hour}},
		Cache:    Cache{Backend: CacheFile},
		Store:    Store{Backend: StoreFile, MongoDatabase: "vrtour"},
		Server:   Server{Addr: "127.0.0.1:8080"},
	}
}

// DefaultPath returns the config file in the user config directory, or ""
// when the directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vrtour", FileName)
}

// Load reads path over the defaults and validates the result. An empty path
// or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks ranges and backend names.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Viewer.FOV < 30 || c.Viewer.FOV > 90 {
		add("viewer.fov must be between 30 and 90 degrees, got %g", c.Viewer.FOV)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		add("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Overlay.EdgeThrottle.Duration <= 0 {
		add("overlay.edge_throttle must be positive")
	}
	if c.Overlay.RotateSpeedRPM <= 0 {
		add("overlay.rotate_speed_rpm must be positive")
	}
	if c.Manifest.CacheTTL.Duration < 0 {
		add("manifest.cache_ttl must not be negative")
	}
	if c.Manifest.Source != "" {
		if err := errors.ValidateSource(c.Manifest.Source); err != nil {
			add("manifest.source: %s", errors.UserMessage(err))
		}
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			add("cache.redis_addr is required for the redis backend")
		}
	default:
		add("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			add("store.mongo_uri is required for the mongo backend")
		}
	default:
		add("store.backend must be file or mongo, got %q", c.Store.Backend)
	}

	if c.Server.Addr == "" {
		add("server.addr must not be empty")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}
