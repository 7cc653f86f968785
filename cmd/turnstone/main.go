package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turnstone-io/turnstone/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "turnstone",
		Short: "Import and explore turn-based strategy game saves",
		Long: `Turnstone imports turn-based strategy save archives (zipped XML) into
Postgres and serves the queries a dashboard needs: territory maps per
turn, player progression timelines, and unified event streams.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewImportCmd(),
		commands.NewServeCmd(),
		commands.NewStatusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
