// Package store implements the Postgres-backed match store: schema
// management, the transactional bulk loader, and the read-only query
// layer consumed by the dashboard API.
package store

const schemaDDL = `
CREATE TABLE IF NOT EXISTS matches (
    match_id    TEXT PRIMARY KEY,
    map_name    TEXT NOT NULL DEFAULT '',
    map_width   INTEGER NOT NULL,
    map_height  INTEGER NOT NULL,
    turns       INTEGER NOT NULL,
    started_at  TIMESTAMPTZ,
    finished_at TIMESTAMPTZ,
    outcome     TEXT NOT NULL DEFAULT '',
    imported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS players (
    match_id    TEXT NOT NULL REFERENCES matches (match_id),
    match_order INTEGER NOT NULL,
    source_id   INTEGER NOT NULL,
    name        TEXT NOT NULL,
    nation      TEXT NOT NULL DEFAULT '',
    final_score BIGINT NOT NULL DEFAULT 0,
    final_rank  INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (match_id, match_order)
);

CREATE TABLE IF NOT EXISTS game_state (
    match_id    TEXT NOT NULL REFERENCES matches (match_id),
    match_order INTEGER NOT NULL,
    turn        INTEGER NOT NULL,
    money       BIGINT NOT NULL DEFAULT 0,
    laws        INTEGER NOT NULL DEFAULT 0,
    techs       INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (match_id, match_order, turn),
    FOREIGN KEY (match_id, match_order) REFERENCES players (match_id, match_order)
);
CREATE INDEX IF NOT EXISTS idx_game_state_match_turn ON game_state (match_id, turn);

CREATE TABLE IF NOT EXISTS events (
    id           BIGSERIAL PRIMARY KEY,
    match_id     TEXT NOT NULL REFERENCES matches (match_id),
    turn         INTEGER NOT NULL,
    source       TEXT NOT NULL CHECK (source IN ('memory', 'log')),
    kind         TEXT NOT NULL,
    player_order INTEGER,
    payload      JSONB,
    FOREIGN KEY (match_id, player_order) REFERENCES players (match_id, match_order)
);
CREATE INDEX IF NOT EXISTS idx_events_match_turn ON events (match_id, turn);
CREATE INDEX IF NOT EXISTS idx_events_match_kind ON events (match_id, source, kind);

CREATE TABLE IF NOT EXISTS territories (
    match_id    TEXT NOT NULL REFERENCES matches (match_id),
    x           INTEGER NOT NULL,
    y           INTEGER NOT NULL,
    turn        INTEGER NOT NULL,
    terrain     TEXT NOT NULL,
    owner_order INTEGER,
    PRIMARY KEY (match_id, x, y, turn),
    FOREIGN KEY (match_id, owner_order) REFERENCES players (match_id, match_order)
);
CREATE INDEX IF NOT EXISTS idx_territories_match_turn ON territories (match_id, turn);

CREATE TABLE IF NOT EXISTS import_runs (
    import_id    TEXT PRIMARY KEY,
    archive      TEXT NOT NULL,
    match_id     TEXT,
    stage        TEXT NOT NULL,
    status       TEXT NOT NULL,
    error        TEXT NOT NULL DEFAULT '',
    row_counts   JSONB,
    started_at   TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_import_runs_started ON import_runs (started_at);
`
