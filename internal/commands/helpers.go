// Package commands implements the CLI subcommands for the turnstone binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/turnstone-io/turnstone/internal/config"
	"github.com/turnstone-io/turnstone/internal/store"
)

// setup loads the project config and opens a migrated store. The caller
// must Close the store.
func setup(ctx context.Context) (*config.Config, *store.Store, *slog.Logger, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.Log.NewLogger()

	st, err := store.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, nil, fmt.Errorf("migrating schema: %w", err)
	}
	return cfg, st, logger, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
