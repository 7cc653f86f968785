package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/turnstone-io/turnstone/pkg/types"
)

// All queries here are read-only, parameterized, and safe for concurrent
// callers. An unknown match id or out-of-range turn is a normal outcome
// for the dashboard and yields an empty result, never an error.

// MatchSummary is one row of the match list.
type MatchSummary struct {
	MatchID    string     `json:"matchId"`
	MapName    string     `json:"mapName"`
	MapWidth   int        `json:"mapWidth"`
	MapHeight  int        `json:"mapHeight"`
	Turns      int        `json:"turns"`
	Players    int        `json:"players"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Outcome    string     `json:"outcome,omitempty"`
	ImportedAt time.Time  `json:"importedAt"`
}

// TerritoryCell is one tile of a territory-at-turn result, with the
// owner resolved through the match-relative-order join. Owner fields are
// nil for unowned tiles.
type TerritoryCell struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Terrain    string  `json:"terrain"`
	OwnerOrder *int    `json:"ownerOrder,omitempty"`
	OwnerName  *string `json:"ownerName,omitempty"`
	Nation     *string `json:"nation,omitempty"`
}

// TurnRange bounds the turns present for a match.
type TurnRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ProgressionPoint is one (turn, player) sample of economic standing.
type ProgressionPoint struct {
	Turn        int    `json:"turn"`
	PlayerOrder int    `json:"playerOrder"`
	PlayerName  string `json:"playerName"`
	Nation      string `json:"nation"`
	Money       int64  `json:"money"`
	Laws        int    `json:"laws"`
	Techs       int    `json:"techs"`
}

// TerritoryCount is the number of tiles held by one owner at one turn.
// OwnerOrder nil aggregates the unowned tiles.
type TerritoryCount struct {
	Turn       int     `json:"turn"`
	OwnerOrder *int    `json:"ownerOrder,omitempty"`
	OwnerName  *string `json:"ownerName,omitempty"`
	Tiles      int     `json:"tiles"`
}

// TimelineEvent is one event of a match timeline in chronological order.
type TimelineEvent struct {
	Turn        int               `json:"turn"`
	Source      types.EventSource `json:"source"`
	Kind        string            `json:"kind"`
	PlayerOrder *int              `json:"playerOrder,omitempty"`
	PlayerName  *string           `json:"playerName,omitempty"`
	Payload     map[string]string `json:"payload,omitempty"`
}

// ListMatches returns summaries of every imported match, newest first.
func (s *Store) ListMatches(ctx context.Context) ([]MatchSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.match_id, m.map_name, m.map_width, m.map_height, m.turns,
			COUNT(p.match_order), m.started_at, m.finished_at, m.outcome, m.imported_at
		FROM matches m
		LEFT JOIN players p ON p.match_id = m.match_id
		GROUP BY m.match_id
		ORDER BY m.imported_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []MatchSummary
	for rows.Next() {
		var m MatchSummary
		if err := rows.Scan(&m.MatchID, &m.MapName, &m.MapWidth, &m.MapHeight, &m.Turns,
			&m.Players, &m.StartedAt, &m.FinishedAt, &m.Outcome, &m.ImportedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatch returns one match summary, or nil if the match is unknown.
func (s *Store) GetMatch(ctx context.Context, matchID string) (*MatchSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.match_id, m.map_name, m.map_width, m.map_height, m.turns,
			COUNT(p.match_order), m.started_at, m.finished_at, m.outcome, m.imported_at
		FROM matches m
		LEFT JOIN players p ON p.match_id = m.match_id
		WHERE m.match_id = $1
		GROUP BY m.match_id
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var m MatchSummary
	if err := rows.Scan(&m.MatchID, &m.MapName, &m.MapWidth, &m.MapHeight, &m.Turns,
		&m.Players, &m.StartedAt, &m.FinishedAt, &m.Outcome, &m.ImportedAt); err != nil {
		return nil, err
	}
	return &m, rows.Err()
}

// MatchPlayers returns a match's players ordered by match-relative order.
func (s *Store) MatchPlayers(ctx context.Context, matchID string) ([]types.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source_id, match_order, name, nation, final_score, final_rank
		FROM players
		WHERE match_id = $1
		ORDER BY match_order
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []types.Player
	for rows.Next() {
		var p types.Player
		if err := rows.Scan(&p.SourceID, &p.Order, &p.Name, &p.Nation, &p.FinalScore, &p.FinalRank); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// TurnRange returns the minimum and maximum turn present in game state
// for a match. ok is false when the match has no game state at all.
func (s *Store) TurnRange(ctx context.Context, matchID string) (TurnRange, bool, error) {
	var minTurn, maxTurn *int
	err := s.pool.QueryRow(ctx, `
		SELECT MIN(turn), MAX(turn) FROM game_state WHERE match_id = $1
	`, matchID).Scan(&minTurn, &maxTurn)
	if err != nil {
		return TurnRange{}, false, err
	}
	if minTurn == nil || maxTurn == nil {
		return TurnRange{}, false, nil
	}
	return TurnRange{Min: *minTurn, Max: *maxTurn}, true, nil
}

// TerritoryAtTurn returns every tile of a match at one turn with its
// resolved owner. The join against players is a LEFT JOIN so unowned
// tiles are still returned; omitting them would leave holes in the map.
func (s *Store) TerritoryAtTurn(ctx context.Context, matchID string, turn int) ([]TerritoryCell, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.x, t.y, t.terrain, t.owner_order, p.name, p.nation
		FROM territories t
		LEFT JOIN players p
			ON p.match_id = t.match_id AND p.match_order = t.owner_order
		WHERE t.match_id = $1 AND t.turn = $2
		ORDER BY t.y, t.x
	`, matchID, turn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []TerritoryCell
	for rows.Next() {
		var c TerritoryCell
		if err := rows.Scan(&c.X, &c.Y, &c.Terrain, &c.OwnerOrder, &c.OwnerName, &c.Nation); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// TerritoryCounts returns per-turn tile counts per owner, chronological,
// for stacked territory-over-time charts.
func (s *Store) TerritoryCounts(ctx context.Context, matchID string) ([]TerritoryCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.turn, t.owner_order, p.name, COUNT(*)
		FROM territories t
		LEFT JOIN players p
			ON p.match_id = t.match_id AND p.match_order = t.owner_order
		WHERE t.match_id = $1
		GROUP BY t.turn, t.owner_order, p.name
		ORDER BY t.turn, t.owner_order NULLS FIRST
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []TerritoryCount
	for rows.Next() {
		var c TerritoryCount
		if err := rows.Scan(&c.Turn, &c.OwnerOrder, &c.OwnerName, &c.Tiles); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ProgressionSeries returns each player's per-turn economic standing in
// chronological order, for law/tech/treasury timelines.
func (s *Store) ProgressionSeries(ctx context.Context, matchID string) ([]ProgressionPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT g.turn, g.match_order, p.name, p.nation, g.money, g.laws, g.techs
		FROM game_state g
		JOIN players p
			ON p.match_id = g.match_id AND p.match_order = g.match_order
		WHERE g.match_id = $1
		ORDER BY g.turn, g.match_order
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []ProgressionPoint
	for rows.Next() {
		var pt ProgressionPoint
		if err := rows.Scan(&pt.Turn, &pt.PlayerOrder, &pt.PlayerName, &pt.Nation,
			&pt.Money, &pt.Laws, &pt.Techs); err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

// EventTimeline returns a match's events in chronological order.
// source and kind are optional filters; empty means all.
func (s *Store) EventTimeline(ctx context.Context, matchID, source, kind string) ([]TimelineEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.turn, e.source, e.kind, e.player_order, p.name, e.payload
		FROM events e
		LEFT JOIN players p
			ON p.match_id = e.match_id AND p.match_order = e.player_order
		WHERE e.match_id = $1
			AND ($2 = '' OR e.source = $2)
			AND ($3 = '' OR e.kind = $3)
		ORDER BY e.turn, e.id
	`, matchID, source, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []TimelineEvent
	for rows.Next() {
		var ev TimelineEvent
		var payloadJSON []byte
		if err := rows.Scan(&ev.Turn, &ev.Source, &ev.Kind, &ev.PlayerOrder, &ev.PlayerName, &payloadJSON); err != nil {
			return nil, err
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &ev.Payload); err != nil {
				return nil, err
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
