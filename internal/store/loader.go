package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/turnstone-io/turnstone/pkg/types"
)

// deleteOrder removes a match's rows in dependency order: children first,
// players next, the match row last.
var deleteOrder = []string{"territories", "events", "game_state", "players", "matches"}

// LoadMatch persists one match's full record set inside a single
// transaction. If the match is already present it fails with
// ErrMatchExists unless force is set, in which case every existing row
// for the match is deleted before reinserting, so a re-import yields the
// same final state as a first import.
func (s *Store) LoadMatch(ctx context.Context, rec *types.MatchRecords, force bool) (types.RowCounts, error) {
	var counts types.RowCounts

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return counts, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	matchID := rec.Match.MatchID

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM matches WHERE match_id = $1)`, matchID).Scan(&exists); err != nil {
		return counts, fmt.Errorf("check match %s: %w", matchID, err)
	}
	if exists {
		if !force {
			return counts, fmt.Errorf("match %s: %w", matchID, ErrMatchExists)
		}
		for _, table := range deleteOrder {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE match_id = $1", matchID); err != nil {
				return counts, fmt.Errorf("delete %s for match %s: %w", table, matchID, err)
			}
		}
	}

	m := rec.Match
	if _, err := tx.Exec(ctx, `
		INSERT INTO matches (match_id, map_name, map_width, map_height, turns, started_at, finished_at, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.MatchID, m.MapName, m.MapWidth, m.MapHeight, m.Turns, m.StartedAt, m.FinishedAt, m.Outcome); err != nil {
		return counts, fmt.Errorf("insert match %s: %w", matchID, err)
	}

	for _, p := range rec.Players {
		if _, err := tx.Exec(ctx, `
			INSERT INTO players (match_id, match_order, source_id, name, nation, final_score, final_rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, matchID, p.Order, p.SourceID, p.Name, p.Nation, p.FinalScore, p.FinalRank); err != nil {
			return counts, fmt.Errorf("insert player %d for match %s: %w", p.Order, matchID, err)
		}
	}

	if err := copyGameState(ctx, tx, matchID, rec.States); err != nil {
		return counts, err
	}
	if err := copyEvents(ctx, tx, matchID, rec.Events); err != nil {
		return counts, err
	}
	if err := copyTerritories(ctx, tx, matchID, rec.Territories); err != nil {
		return counts, err
	}

	if err := tx.Commit(ctx); err != nil {
		return counts, fmt.Errorf("commit match %s: %w", matchID, err)
	}
	return rec.Counts(), nil
}

func copyGameState(ctx context.Context, tx pgx.Tx, matchID string, states []types.GameState) error {
	if len(states) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"game_state"},
		[]string{"match_id", "match_order", "turn", "money", "laws", "techs"},
		pgx.CopyFromSlice(len(states), func(i int) ([]any, error) {
			st := states[i]
			return []any{matchID, st.PlayerOrder, st.Turn, st.Money, st.Laws, st.Techs}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy game_state for match %s: %w", matchID, err)
	}
	return nil
}

func copyEvents(ctx context.Context, tx pgx.Tx, matchID string, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"events"},
		[]string{"match_id", "turn", "source", "kind", "player_order", "payload"},
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			ev := events[i]
			var payload []byte
			if len(ev.Payload) > 0 {
				var err error
				if payload, err = json.Marshal(ev.Payload); err != nil {
					return nil, fmt.Errorf("marshal event payload: %w", err)
				}
			}
			return []any{matchID, ev.Turn, string(ev.Source), ev.Kind, ev.PlayerOrder, payload}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy events for match %s: %w", matchID, err)
	}
	return nil
}

func copyTerritories(ctx context.Context, tx pgx.Tx, matchID string, snaps []types.TerritorySnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"territories"},
		[]string{"match_id", "x", "y", "turn", "terrain", "owner_order"},
		pgx.CopyFromSlice(len(snaps), func(i int) ([]any, error) {
			t := snaps[i]
			return []any{matchID, t.X, t.Y, t.Turn, t.Terrain, t.OwnerOrder}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy territories for match %s: %w", matchID, err)
	}
	return nil
}
