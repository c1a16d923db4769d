package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamvince24/serenity-canvas/pkg/cache"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/render"
	"github.com/iamvince24/serenity-canvas/pkg/render/nodelink"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output  string   // output file path (or base path for multiple formats)
	formats []string // output formats: "dot", "svg", "pdf", "png"
	pinned  bool     // keep canvas positions instead of letting graphviz lay out
	scale   float64  // PNG scale factor
	noCache bool     // render even when a cached artifact exists
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var formatsStr string
	opts := exportOpts{scale: 2.0}

	cmd := &cobra.Command{
		Use:   "export <canvas>",
		Short: "Export a canvas as a node-link diagram",
		Long: `Export a canvas as a node-link diagram.

Nodes are emitted in layer order and labelled with the first line of
their text. By default graphviz lays the graph out left to right; with
--pinned every node keeps its canvas position and size.

PDF and PNG output require rsvg-convert from librsvg.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeCanvases,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ref := parseCanvasRef(args[0])
			st, _, err := loadCanvas(ctx, cfg, ref)
			if err != nil {
				return err
			}
			var artifacts cache.Cache = cache.NewNullCache()
			if !opts.noCache {
				if artifacts, err = cache.NewFileCache(cfg.CacheDir()); err != nil {
					return err
				}
			}
			defer artifacts.Close()
			return runExport(ctx, st, ref, artifacts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "keep canvas positions")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "ignore previously rendered output")

	return cmd
}

// validateFormats checks that all requested formats are known.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(render.Formats, f) {
			return fmt.Errorf("invalid format: %s (must be one of %s)", f, strings.Join(render.Formats, ", "))
		}
	}
	return nil
}

// basePath derives the base output path. Without an output, it is the
// canvas file without its extension, or the canvas name.
func basePath(output string, ref canvasRef) string {
	if output == "" {
		if ref.Path != "" {
			return strings.TrimSuffix(ref.Path, filepath.Ext(ref.Path))
		}
		return ref.Name
	}
	ext := filepath.Ext(output)
	if slices.Contains(render.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where format is written. A single format honours
// an explicit output path verbatim.
func outputPath(opts *exportOpts, ref canvasRef, format string) string {
	if len(opts.formats) == 1 && opts.output != "" {
		return opts.output
	}
	return basePath(opts.output, ref) + "." + format
}

// runExport builds the DOT source once, renders SVG only if a format
// misses the cache, and writes each requested format.
func runExport(ctx context.Context, st *canvas.State, ref canvasRef, artifacts cache.Cache, opts *exportOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Exporting %s: %d nodes, %d edges", ref, len(st.Nodes), len(st.Edges))

	dot := nodelink.ToDOT(st, nodelink.Options{Pinned: opts.pinned})

	var svg []byte
	for _, format := range opts.formats {
		data, err := renderFormat(ctx, dot, format, opts.scale, artifacts, &svg)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		logger.Debugf("Generated %s: %d bytes", format, len(data))

		path := outputPath(opts, ref, format)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// renderFormat returns dot rendered as format. svg memoizes the SVG
// rendering across formats of one export.
func renderFormat(ctx context.Context, dot, format string, scale float64, artifacts cache.Cache, svg *[]byte) ([]byte, error) {
	if format == "dot" {
		return []byte(dot), nil
	}
	logger := loggerFromContext(ctx)
	key := cache.ArtifactKey(dot, format, scale)
	if data, ok, err := artifacts.Get(ctx, key); err != nil {
		logger.Warn("artifact cache read failed", "format", format, "err", err)
	} else if ok {
		logger.Debugf("Using cached %s", format)
		return data, nil
	}

	if *svg == nil {
		prog := newProgress(logger)
		out, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		*svg = out
		prog.done("Rendered SVG")
	}
	data, err := render.Convert(*svg, format, scale)
	if err != nil {
		return nil, err
	}
	if err := artifacts.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		logger.Warn("artifact cache write failed", "format", format, "err", err)
	}
	return data, nil
}
