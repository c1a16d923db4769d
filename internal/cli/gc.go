package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// gcCommand creates the gc command.
func (c *CLI) gcCommand() *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "gc <canvas>",
		Short: "Delete assets the canvas no longer references",
		Long: `Delete assets the canvas no longer references.

File records without a referencing image node or asset:<id> link are
deleted from the asset store and dropped from the canvas, then every
stored asset with neither a file record nor a reference is deleted. The
canvas is saved afterwards unless --keep-canvas is given.

The asset store is shared: run gc only against the canvas that owns it.`,
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
			st, _, err := loadCanvas(ctx, cfg, ref)
			if err != nil {
				return err
			}
			s := c.newStore(cfg, backing)
			if err := s.Load(st); err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(ctx))
			spinner := newSpinnerWithContext(ctx, "Collecting unreferenced assets...")
			spinner.Start()
			report, err := s.CollectGarbage(ctx, s.Collector(backing))
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Collected %d assets", report.Total()))

			for _, id := range report.Removed {
				printDetail("removed %s (file record)", id)
			}
			for _, id := range report.Orphans {
				printDetail("removed %s (orphan)", id)
			}
			for id, err := range report.Failed.Failures {
				printError("%s: %v", id, err)
			}

			if len(report.Removed) > 0 && !keep {
				path, err := saveCanvas(ctx, cfg, ref, s.Snapshot())
				if err != nil {
					return err
				}
				printFile(path)
			}
			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&keep, "keep-canvas", false, "do not rewrite the canvas")

	return cmd
}
