package types

import "time"

// MatchMeta describes one played game instance.
type MatchMeta struct {
	MatchID    string     `json:"matchId"`
	MapName    string     `json:"mapName"`
	MapWidth   int        `json:"mapWidth"`
	MapHeight  int        `json:"mapHeight"`
	Turns      int        `json:"turns"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Outcome    string     `json:"outcome,omitempty"`
}

// Player is a participant within a match. Order is the 1-based
// match-relative rank derived from ascending source IDs; it, not SourceID,
// is the join key for everything that references a player.
type Player struct {
	SourceID   int    `json:"sourceId"`
	Order      int    `json:"order"`
	Name       string `json:"name"`
	Nation     string `json:"nation"`
	FinalScore int64  `json:"finalScore"`
	FinalRank  int    `json:"finalRank"`
}

// GameState is a per-turn summary of one player's standing.
type GameState struct {
	PlayerOrder int   `json:"playerOrder"`
	Turn        int   `json:"turn"`
	Money       int64 `json:"money"`
	Laws        int   `json:"laws"`
	Techs       int   `json:"techs"`
}

// Event is one occurrence from either save-file log, with its native
// type preserved as Kind and any type-specific attributes as Payload.
type Event struct {
	Turn        int               `json:"turn"`
	Source      EventSource       `json:"source"`
	Kind        string            `json:"kind"`
	PlayerOrder *int              `json:"playerOrder,omitempty"`
	Payload     map[string]string `json:"payload,omitempty"`
}

// TerritorySnapshot is the state of one map tile at one turn. Snapshot
// semantics: one row exists per (tile, turn) for every turn of the match,
// with OwnerOrder nil while the tile is unowned.
type TerritorySnapshot struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Turn       int    `json:"turn"`
	Terrain    string `json:"terrain"`
	OwnerOrder *int   `json:"ownerOrder,omitempty"`
}

// MatchRecords is the full extracted record set for one archive, the unit
// the bulk loader commits atomically.
type MatchRecords struct {
	Archive     string              `json:"archive"`
	Match       MatchMeta           `json:"match"`
	Players     []Player            `json:"players"`
	States      []GameState         `json:"states"`
	Events      []Event             `json:"events"`
	Territories []TerritorySnapshot `json:"territories"`
}

// Counts returns the row counts per record family.
func (r *MatchRecords) Counts() RowCounts {
	return RowCounts{
		Players:     len(r.Players),
		States:      len(r.States),
		Events:      len(r.Events),
		Territories: len(r.Territories),
	}
}

// RowCounts tallies rows per record family for reporting.
type RowCounts struct {
	Players     int `json:"players"`
	States      int `json:"states"`
	Events      int `json:"events"`
	Territories int `json:"territories"`
}

// Total returns the total number of rows across all families.
func (c RowCounts) Total() int {
	return c.Players + c.States + c.Events + c.Territories
}

// ImportRun is the audit record for one archive import attempt.
type ImportRun struct {
	ImportID    string       `json:"importId"`
	Archive     string       `json:"archive"`
	MatchID     string       `json:"matchId,omitempty"`
	Stage       ImportStage  `json:"stage"`
	Status      ImportStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	Counts      RowCounts    `json:"counts"`
	StartedAt   time.Time    `json:"startedAt"`
	CompletedAt time.Time    `json:"completedAt"`
}
