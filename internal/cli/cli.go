// Package cli implements the serenity command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iamvince24/serenity-canvas/pkg/assets"
	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/buildinfo"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/config"
	"github.com/iamvince24/serenity-canvas/pkg/snapshot"
	"github.com/iamvince24/serenity-canvas/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "serenity"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config flag. Empty uses config.Path().
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Serenity inspects, migrates and exports canvas documents",
		Long:         `Serenity is a CLI for serenity canvas documents: it migrates legacy snapshots, manages the image asset store, collects unreferenced assets, exports canvases as diagrams and opens them in a keyboard-driven terminal navigator.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := commandLogger(c.Logger, cmd.Name())
			installHooks(logger)
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	// Register all subcommands
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.gcCommand())
	root.AddCommand(c.assetsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Storage
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "data_dir", cfg.DataDir, "backend", cfg.Assets.Backend)
	return cfg, nil
}

// openAssets loads the config and opens its asset backend. The caller
// closes the returned store.
func (c *CLI) openAssets(ctx context.Context) (*config.Config, assetstore.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	backing, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, backing, nil
}

// newStore builds a canvas store wired to backing through a fresh cache.
func (c *CLI) newStore(cfg *config.Config, backing assetstore.Store) *store.Store {
	var cache *assets.Cache
	if backing != nil {
		cache = assets.NewCache(backing, assets.CacheOptions{
			Concurrency: cfg.Assets.PreloadConcurrency,
			Logger:      c.Logger,
		})
	}
	return store.New(store.Options{
		MaxDepth:           cfg.History.MaxDepth,
		MinZoom:            cfg.Viewport.MinZoom,
		MaxZoom:            cfg.Viewport.MaxZoom,
		Labels:             cfg.LabelOptions(),
		Cache:              cache,
		PreloadConcurrency: cfg.Assets.PreloadConcurrency,
		Logger:             c.Logger,
	})
}

// =============================================================================
// Canvas Loading
// =============================================================================

// canvasRef names a canvas either by file path or by saved name.
type canvasRef struct {
	Path string // set for files given on the command line
	Name string // set for canvases in the canvas directory
}

func (r canvasRef) String() string {
	if r.Path != "" {
		return r.Path
	}
	return r.Name
}

// parseCanvasRef treats arguments that look like paths as files.
func parseCanvasRef(arg string) canvasRef {
	if strings.HasSuffix(arg, ".json") || strings.ContainsAny(arg, `/\`) {
		return canvasRef{Path: arg}
	}
	return canvasRef{Name: arg}
}

// loadCanvas reads and migrates the canvas ref points to.
func loadCanvas(ctx context.Context, cfg *config.Config, ref canvasRef) (*canvas.State, *snapshot.Report, error) {
	if ref.Path != "" {
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", ref.Path, err)
		}
		return snapshot.Migrate(data)
	}
	fs, err := snapshot.NewFileStore(cfg.CanvasDir())
	if err != nil {
		return nil, nil, err
	}
	return fs.Load(ctx, ref.Name)
}

// completeCanvases offers the names of saved canvases for the first
// argument. File paths still complete through the shell default.
func (c *CLI) completeCanvases(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	fs, err := snapshot.NewFileStore(cfg.CanvasDir())
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	names, err := fs.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveDefault
}

// saveCanvas writes st back to where ref points.
func saveCanvas(ctx context.Context, cfg *config.Config, ref canvasRef, st *canvas.State) (string, error) {
	if ref.Path != "" {
		data, err := snapshot.Encode(st)
		if err != nil {
			return "", err
		}
		return ref.Path, os.WriteFile(ref.Path, data, 0600)
	}
	fs, err := snapshot.NewFileStore(cfg.CanvasDir())
	if err != nil {
		return "", err
	}
	return fs.Path(ref.Name), fs.Save(ctx, ref.Name, st)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}
