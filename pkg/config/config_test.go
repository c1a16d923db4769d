package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.History.MaxDepth != 50 {
		t.Errorf("MaxDepth = %d, want 50", cfg.History.MaxDepth)
	}
	if cfg.Assets.Backend != assetstore.BackendSQLite {
		t.Errorf("Backend = %q", cfg.Assets.Backend)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewport.MaxZoom != 4.0 {
		t.Errorf("MaxZoom = %v", cfg.Viewport.MaxZoom)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
data_dir = "/tmp/serenity"

[history]
max_depth = 10

[viewport]
max_zoom = 8.0

[assets]
backend = "redis"

[assets.redis]
addr = "cache:6379"
db = 2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/tmp/serenity" || cfg.History.MaxDepth != 10 || cfg.Viewport.MaxZoom != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	// Unset keys keep their defaults
	if cfg.Viewport.MinZoom != 0.1 || cfg.Assets.Redis.Prefix != assetstore.DefaultRedisPrefix {
		t.Errorf("defaults lost: %+v", cfg)
	}

	opts := cfg.StoreOptions()
	if opts.Backend != "redis" || opts.Redis.Addr != "cache:6379" || opts.Redis.DB != 2 || opts.DataDir != "/tmp/serenity" {
		t.Errorf("StoreOptions = %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `[history`},
		{"unknown key", "[history]\nmax_dept = 3"},
		{"zero depth", "[history]\nmax_depth = 0"},
		{"inverted zoom", "[viewport]\nmin_zoom = 2.0\nmax_zoom = 1.0"},
		{"bad backend", "[assets]\nbackend = \"floppy\""},
		{"redis without addr", "[assets]\nbackend = \"redis\"\n[assets.redis]\naddr = \"\""},
		{"negative font", "[labels]\nfont_size = -1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Parse([]byte(tt.data), Default())
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got, want := Path(), filepath.Join("/xdg", "serenity", "config.toml"); got != want {
		t.Errorf("Path() = %s, want %s", got, want)
	}
}

func TestLabelOptions(t *testing.T) {
	cfg := Default()
	cfg.Labels.FontSize = 20
	opts := cfg.LabelOptions()
	if opts.FontSize != 20 || opts.MaxWidth != 200 || opts.LineHeight != 1.4 {
		t.Errorf("LabelOptions = %+v", opts)
	}
}
