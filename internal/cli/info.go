package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iamvince24/serenity-canvas/pkg/assets"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <canvas>",
		Short: "Summarize a canvas",
		Long: `Summarize a canvas: node, edge and file counts, the viewport, and
assets that are referenced but missing from the asset store.

The argument is a saved canvas name or a path to a .json snapshot.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeCanvases,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, backing, err := c.openAssets(ctx)
			if err != nil {
				return err
			}
			defer backing.Close()

			ref := parseCanvasRef(args[0])
			st, report, err := loadCanvas(ctx, cfg, ref)
			if err != nil {
				return err
			}

			printSuccess("%s", StyleHighlight.Render(ref.String()))
			texts, images := len(st.IDsOfKind(canvas.KindText)), len(st.IDsOfKind(canvas.KindImage))
			printKeyValue("Nodes", fmt.Sprintf("%d (%d text, %d image)", len(st.Nodes), texts, images))
			printKeyValue("Edges", StyleNumber.Render(fmt.Sprint(len(st.Edges))))
			printKeyValue("Files", StyleNumber.Render(fmt.Sprint(len(st.Files))))
			printKeyValue("Viewport", fmt.Sprintf("(%.0f, %.0f) × %.2f", st.Viewport.X, st.Viewport.Y, st.Viewport.Zoom))
			if report.Changed() {
				printWarning("Snapshot needs migration: %s", report)
			}

			missing := 0
			for id := range assets.SnapshotOf(st).Referenced() {
				if _, err := backing.Get(ctx, id); err != nil {
					printDetail("missing asset %s", id)
					missing++
				}
			}
			if missing > 0 {
				printWarning("%d referenced assets are not in the %s store", missing, cfg.Assets.Backend)
			}
			return nil
		},
	}
}
