package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turnstone-io/turnstone/pkg/types"
)

const statusTimeout = 10 * time.Second

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database contents and recent imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(recent)
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 10, "Number of recent import runs to show")
	return cmd
}

func runStatus(recent int) error {
	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	_, st, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.TableCounts(ctx)
	if err != nil {
		return fmt.Errorf("counting rows: %w", err)
	}

	bold := color.New(color.Bold)
	_, _ = bold.Println("Database contents:")
	for _, table := range []string{"matches", "players", "game_state", "events", "territories"} {
		fmt.Printf("  %-12s %d\n", table, counts[table])
	}

	runs, err := st.RecentImportRuns(ctx, recent)
	if err != nil {
		return fmt.Errorf("listing import runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("\nNo imports recorded.")
		return nil
	}

	_, _ = bold.Println("\nRecent imports:")
	for _, run := range runs {
		line := fmt.Sprintf("  %s  %-9s %-10s %s",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Status, run.Stage, run.Archive)
		switch run.Status {
		case types.ImportFailed:
			color.Red("%s  %s", line, run.Error)
		case types.ImportSkipped:
			color.Yellow("%s", line)
		default:
			fmt.Println(line)
		}
	}
	return nil
}
