package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iamvince24/serenity-canvas/pkg/assets"
	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

// assetsCommand creates the asset store management command.
func (c *CLI) assetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage the image asset store",
	}

	cmd.AddCommand(c.assetsPutCommand())
	cmd.AddCommand(c.assetsListCommand())
	cmd.AddCommand(c.assetsRemoveCommand())
	cmd.AddCommand(c.assetsPathCommand())

	return cmd
}

// assetsPutOpts holds "assets put" options.
type assetsPutOpts struct {
	id     string
	canvas string
	x, y   float64
}

// assetsPutCommand creates the "assets put" subcommand.
func (c *CLI) assetsPutCommand() *cobra.Command {
	opts := assetsPutOpts{}

	cmd := &cobra.Command{
		Use:   "put <image...>",
		Short: "Store images and optionally place them on a canvas",
		Long: `Store images in the asset store.

Each file is decoded to check its format and read its dimensions. With
--canvas the images are also added as image nodes, stacked downwards
from (--x, --y), and the canvas is saved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.id != "" && len(args) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--id needs exactly one image")
			}
			cfg, backing, err := c.openAssets(ctx)
			if err != nil {
				return err
			}
			defer backing.Close()

			s := c.newStore(cfg, backing)
			var ref canvasRef
			if opts.canvas != "" {
				ref = parseCanvasRef(opts.canvas)
				st, _, err := loadCanvas(ctx, cfg, ref)
				if err != nil {
					return err
				}
				if err := s.Load(st); err != nil {
					return err
				}
			}

			up := assets.NewUploader(backing, nil)
			y := opts.y
			for _, path := range args {
				blob, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				id := opts.id
				if id == "" {
					id = uuid.NewString()
				}
				file, err := up.IngestAs(ctx, id, blob)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printSuccess("%s %s", file.ID, StyleDim.Render(filepath.Base(path)))
				printDetail("%s · %d×%d · %s", file.MimeType, file.OriginalWidth, file.OriginalHeight, formatBytes(file.ByteSize))

				if opts.canvas != "" {
					nodeID, err := s.AddImageNode(opts.x, y, file, "")
					if err != nil {
						return err
					}
					if n, ok := s.Node(nodeID); ok {
						y += n.Height + 24
					}
				}
			}

			if opts.canvas != "" {
				path, err := saveCanvas(ctx, cfg, ref, s.Snapshot())
				if err != nil {
					return err
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "asset id (default: random)")
	cmd.Flags().StringVar(&opts.canvas, "canvas", "", "add the images to this canvas")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "canvas x of the first image")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "canvas y of the first image")

	return cmd
}

// assetsListCommand creates the "assets ls" subcommand.
func (c *CLI) assetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored assets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, backing, err := c.openAssets(ctx)
			if err != nil {
				return err
			}
			defer backing.Close()

			ids, err := backing.GetAllKeys(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				printInfo("No assets in the %s store", cfg.Assets.Backend)
				return nil
			}
			slices.Sort(ids)

			var rows [][]string
			var total int64
			for _, id := range ids {
				rec, err := backing.Get(ctx, id)
				if err != nil {
					rows = append(rows, []string{id, "?", "", "", StyleWarning.Render(err.Error())})
					continue
				}
				total += rec.ByteSize
				rows = append(rows, []string{
					id,
					rec.MimeType,
					fmt.Sprintf("%d×%d", rec.Width, rec.Height),
					formatBytes(rec.ByteSize),
					time.UnixMilli(rec.CreatedAt).Format("2006-01-02 15:04"),
				})
			}

			fmt.Fprintln(stdout, assetTable(rows).Render())
			printStats(len(ids), total)
			return nil
		},
	}
}

// assetsRemoveCommand creates the "assets rm" subcommand.
func (c *CLI) assetsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id...>",
		Aliases: []string{"remove"},
		Short:   "Delete assets from the store",
		Long: `Delete assets from the store.

Canvases that still reference a removed asset show a missing image; use
"gc" to remove only what no canvas references.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, backing, err := c.openAssets(ctx)
			if err != nil {
				return err
			}
			defer backing.Close()

			failed := &errors.MultiError{}
			for _, id := range args {
				if err := errors.ValidateAssetID(id); err != nil {
					failed.Add(id, err)
					continue
				}
				if err := backing.Delete(ctx, id); err != nil {
					failed.Add(id, err)
					continue
				}
				printSuccess("Removed %s", id)
			}
			for id, err := range failed.Failures {
				printError("%s: %v", id, err)
			}
			return failed.ErrOrNil()
		},
	}
}

// assetsPathCommand creates the "assets path" subcommand.
func (c *CLI) assetsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show where assets and canvases are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printKeyValue("Backend", cfg.Assets.Backend)
			printKeyValue("Assets", assetstore.Location(cfg.StoreOptions()))
			printKeyValue("Canvases", cfg.CanvasDir())
			return nil
		},
	}
}

// assetTable renders asset rows with the header dimmed and sizes right-aligned.
func assetTable(rows [][]string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Type", "Size", "Bytes", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Foreground(colorCyan)
			case 3:
				return base.Align(lipgloss.Right)
			case 4:
				return base.Foreground(colorDim)
			}
			return base
		})
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
