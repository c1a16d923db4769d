// Package config loads user settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/serenity/config.toml (falling back to
// ~/.config/serenity/config.toml). A missing file is not an error: every
// field has a default, and values present in the file override them.
//
//	[history]
//	max_depth = 50
//
//	[viewport]
//	min_zoom = 0.1
//	max_zoom = 4.0
//
//	[assets]
//	backend = "sqlite"   # sqlite | file | memory | redis | mongo
//
//	[assets.redis]
//	addr = "localhost:6379"
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/geometry"
	"github.com/iamvince24/serenity-canvas/pkg/history"
)

// appName names the config and data directories.
const appName = "serenity"

// Config is the complete user configuration.
type Config struct {
	// DataDir holds canvases and the default asset database.
	DataDir  string   `toml:"data_dir"`
	History  History  `toml:"history"`
	Viewport Viewport `toml:"viewport"`
	Labels   Labels   `toml:"labels"`
	Assets   Assets   `toml:"assets"`
}

type History struct {
	MaxDepth int `toml:"max_depth"`
}

type Viewport struct {
	MinZoom float64 `toml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom"`
}

type Labels struct {
	FontSize float64 `toml:"font_size"`
	MaxWidth float64 `toml:"max_width"`
}

type Assets struct {
	Backend string `toml:"backend"`
	// SQLitePath overrides <data_dir>/assets.db.
	SQLitePath string `toml:"sqlite_path"`
	// PreloadConcurrency bounds parallel image loads.
	PreloadConcurrency int   `toml:"preload_concurrency"`
	Redis              Redis `toml:"redis"`
	Mongo              Mongo `toml:"mongo"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the built-in configuration.
func Default() *Config {
	label := geometry.DefaultLabelOptions()
	return &Config{
		DataDir:  defaultDataDir(),
		History:  History{MaxDepth: history.DefaultMaxDepth},
		Viewport: Viewport{MinZoom: 0.1, MaxZoom: 4.0},
		Labels:   Labels{FontSize: label.FontSize, MaxWidth: label.MaxWidth},
		Assets: Assets{
			Backend:            assetstore.BackendSQLite,
			PreloadConcurrency: 4,
			Redis:              Redis{Addr: "localhost:6379", Prefix: assetstore.DefaultRedisPrefix},
			Mongo: Mongo{
				URI:        "mongodb://localhost:27017",
				Database:   assetstore.DefaultMongoDatabase,
				Collection: assetstore.DefaultMongoCollection,
			},
		},
	}
}

// Path returns the default config file location.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// Load reads path on top of the defaults. An empty path uses Path(). A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result. Keys the
// decoder does not recognize are rejected.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.History.MaxDepth < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "history.max_depth must be at least 1")
	}
	if c.Viewport.MinZoom <= 0 || c.Viewport.MaxZoom < c.Viewport.MinZoom {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport zoom bounds must satisfy 0 < min_zoom <= max_zoom")
	}
	if c.Labels.FontSize <= 0 || c.Labels.MaxWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "labels.font_size and labels.max_width must be positive")
	}
	switch c.Assets.Backend {
	case assetstore.BackendSQLite, assetstore.BackendFile, assetstore.BackendMemory:
	case assetstore.BackendRedis:
		if c.Assets.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "assets.redis.addr is required for the redis backend")
		}
	case assetstore.BackendMongo:
		if c.Assets.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "assets.mongo.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown assets.backend %q", c.Assets.Backend)
	}
	return nil
}

// LabelOptions returns the label layout options with configured overrides.
func (c *Config) LabelOptions() geometry.LabelOptions {
	opts := geometry.DefaultLabelOptions()
	opts.FontSize = c.Labels.FontSize
	opts.MaxWidth = c.Labels.MaxWidth
	return opts
}

// StoreOptions translates the asset settings for assetstore.Open.
func (c *Config) StoreOptions() assetstore.Options {
	return assetstore.Options{
		Backend:    c.Assets.Backend,
		DataDir:    c.DataDir,
		SQLitePath: c.Assets.SQLitePath,
		Redis: assetstore.RedisOptions{
			Addr:     c.Assets.Redis.Addr,
			Password: c.Assets.Redis.Password,
			DB:       c.Assets.Redis.DB,
			Prefix:   c.Assets.Redis.Prefix,
		},
		Mongo: assetstore.MongoOptions{
			URI:        c.Assets.Mongo.URI,
			Database:   c.Assets.Mongo.Database,
			Collection: c.Assets.Mongo.Collection,
		},
	}
}

// OpenStore opens the configured asset backend.
func (c *Config) OpenStore(ctx context.Context) (assetstore.Store, error) {
	return assetstore.Open(ctx, c.StoreOptions())
}

// CanvasDir is where named canvases are saved.
func (c *Config) CanvasDir() string {
	return filepath.Join(c.DataDir, "canvases")
}

// CacheDir is where rendered exports are cached.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}
