package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iamvince24/serenity-canvas/pkg/snapshot"
)

// migrateOpts holds migrate command options.
type migrateOpts struct {
	output string // output path, "-" for stdout
	save   string // saved canvas name
}

// migrateCommand creates the migrate command.
func (c *CLI) migrateCommand() *cobra.Command {
	opts := migrateOpts{}

	cmd := &cobra.Command{
		Use:   "migrate <snapshot.json>",
		Short: "Upgrade a snapshot to the current format",
		Long: `Upgrade a snapshot to the current format.

Legacy content_markdown fields are renamed, inline image metadata becomes
file records, the node order is repaired and edges with missing endpoints
are dropped. The result is written to --output (stdout by default) or
saved as a named canvas with --save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			st, report, err := snapshot.Migrate(data)
			if err != nil {
				return err
			}
			logger.Debug("migrated", "report", report.String())

			if opts.save != "" {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				path, err := saveCanvas(ctx, cfg, canvasRef{Name: opts.save}, st)
				if err != nil {
					return err
				}
				printMigration(report)
				printFile(path)
				printNewline()
				printNextStep("Browse it", appName+" tui "+opts.save)
				return nil
			}

			out, err := snapshot.Encode(st)
			if err != nil {
				return err
			}
			if opts.output == "" || opts.output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}
			if err := os.WriteFile(opts.output, out, 0600); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printMigration(report)
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.save, "save", "", "save as a named canvas instead of writing a file")

	return cmd
}

func printMigration(r *snapshot.Report) {
	if !r.Changed() {
		printSuccess("Already current")
		return
	}
	printSuccess("Migrated from version %d", r.FromVersion)
	for _, line := range []struct {
		what string
		ids  []string
	}{
		{"legacy nodes", r.LegacyNodes},
		{"extracted files", r.ExtractedFiles},
		{"dropped order entries", r.DroppedOrder},
		{"appended order entries", r.AppendedOrder},
		{"dropped edges", r.DroppedEdges},
	} {
		if len(line.ids) > 0 {
			printDetail("%d %s", len(line.ids), line.what)
		}
	}
}
