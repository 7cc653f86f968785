package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turnstone-io/turnstone/internal/importer"
	"github.com/turnstone-io/turnstone/pkg/types"
)

const importTimeout = 30 * time.Minute

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	var opts importer.Options

	cmd := &cobra.Command{
		Use:   "import [save-dir]",
		Short: "Import save archives into the match database",
		Long: `Imports every .zip save archive in a directory. Each archive is read,
extracted, and loaded atomically; a bad archive is reported and skipped
without aborting the batch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			return runImport(dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-import matches that are already present")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Read and extract but write nothing")
	cmd.Flags().BoolVar(&opts.Verbose, "verbose", false, "Log per-archive row counts")
	return cmd
}

func runImport(dir string, opts importer.Options) error {
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	cfg, st, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if dir == "" {
		dir = cfg.Saves.Dir
	}

	imp := importer.New(st, logger)
	batch, err := imp.ImportDir(ctx, dir, opts)
	if err != nil {
		return fmt.Errorf("importing %s: %w", dir, err)
	}

	printBatch(batch, opts.DryRun)

	if len(batch.Results) > 0 && batch.Failed() == len(batch.Results) {
		return fmt.Errorf("all %d archives failed", batch.Failed())
	}
	return nil
}

func printBatch(batch *importer.BatchResult, dryRun bool) {
	if len(batch.Results) == 0 {
		fmt.Println("No save archives found.")
		return
	}

	for _, res := range batch.Results {
		switch res.Status {
		case types.ImportFailed:
			color.Red("  ✗ %s  failed at %s: %v", res.Archive, res.Stage, res.Err)
		case types.ImportSkipped:
			color.Yellow("  - %s  already imported (match %s)", res.Archive, res.MatchID)
		case types.ImportDryRun:
			color.Cyan("  ~ %s  would write %s (match %s)",
				res.Archive, plural(res.Counts.Total(), "row"), res.MatchID)
		default:
			color.Green("  ✓ %s  %s in %s (match %s)",
				res.Archive, plural(res.Counts.Total(), "row"),
				res.Duration.Round(time.Millisecond), res.MatchID)
		}
	}

	bold := color.New(color.Bold)
	if dryRun {
		_, _ = bold.Printf("\nDry run: %d extracted, %d failed\n", batch.Succeeded(), batch.Failed())
		return
	}
	_, _ = bold.Printf("\nImported %d, skipped %d, failed %d\n",
		batch.Succeeded(), batch.Skipped(), batch.Failed())
}
