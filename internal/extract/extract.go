// Package extract transforms one save XML document into the typed record
// families the bulk loader persists: match, players, per-turn game state,
// events from both log sources, and dense per-turn territory snapshots.
//
// Extraction is deterministic and all-or-nothing: the first malformed
// required field aborts with a FieldError naming the archive and field,
// and no partial record set is ever returned.
package extract

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/turnstone-io/turnstone/pkg/types"
)

// FieldError reports a required field that is missing, unparseable, or
// out of valid range. It is fatal to the archive's extraction.
type FieldError struct {
	Archive string
	Field   string
	Reason  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("archive %s: field %s: %s", e.Archive, e.Field, e.Reason)
}

func fieldErrf(archive, field, format string, args ...any) *FieldError {
	return &FieldError{Archive: archive, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Extract parses the save document in data and produces the full record
// set for one match. archive is used only for error reporting.
func Extract(archive string, data []byte) (*types.MatchRecords, error) {
	var doc saveDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fieldErrf(archive, "GameSave", "unparseable document: %v", err)
	}

	meta, err := extractSettings(archive, doc.Settings)
	if err != nil {
		return nil, err
	}

	players, orderBySource, err := extractPlayers(archive, doc.Players)
	if err != nil {
		return nil, err
	}

	states, finalTurn, err := extractTurnStates(archive, doc.TurnStates, orderBySource)
	if err != nil {
		return nil, err
	}
	meta.Turns = finalTurn

	events, err := extractEvents(archive, doc.Memories, doc.Logs, orderBySource)
	if err != nil {
		return nil, err
	}

	territories, err := expandTerritories(archive, doc.Tiles, meta.MapWidth, meta.MapHeight, finalTurn, orderBySource)
	if err != nil {
		return nil, err
	}

	return &types.MatchRecords{
		Archive:     archive,
		Match:       meta,
		Players:     players,
		States:      states,
		Events:      events,
		Territories: territories,
	}, nil
}

func extractSettings(archive string, s settingsDoc) (types.MatchMeta, error) {
	var meta types.MatchMeta

	if s.MatchID == "" {
		return meta, fieldErrf(archive, "Settings.MatchID", "missing")
	}
	meta.MatchID = s.MatchID
	meta.MapName = s.MapName
	meta.Outcome = s.Outcome

	w, err := parsePositiveInt(s.MapWidth)
	if err != nil {
		return meta, fieldErrf(archive, "Settings.MapWidth", "%v", err)
	}
	h, err := parsePositiveInt(s.MapHeight)
	if err != nil {
		return meta, fieldErrf(archive, "Settings.MapHeight", "%v", err)
	}
	meta.MapWidth, meta.MapHeight = w, h

	if s.StartedAt != "" {
		ts, err := time.Parse(time.RFC3339, s.StartedAt)
		if err != nil {
			return meta, fieldErrf(archive, "Settings.StartedAt", "not RFC3339: %v", err)
		}
		meta.StartedAt = &ts
	}
	if s.FinishedAt != "" {
		ts, err := time.Parse(time.RFC3339, s.FinishedAt)
		if err != nil {
			return meta, fieldErrf(archive, "Settings.FinishedAt", "not RFC3339: %v", err)
		}
		meta.FinishedAt = &ts
	}

	return meta, nil
}

// extractPlayers remaps zero-based global source IDs to 1-based
// match-relative order by stable ascending sort of the observed IDs. The
// returned map resolves a source ID to its order.
func extractPlayers(archive string, docs []playerDoc) ([]types.Player, map[int]int, error) {
	players := make([]types.Player, 0, len(docs))
	seen := make(map[int]bool, len(docs))

	for i, d := range docs {
		id, err := strconv.Atoi(d.ID)
		if err != nil || id < 0 {
			return nil, nil, fieldErrf(archive, fmt.Sprintf("Players.Player[%d].ID", i), "invalid source id %q", d.ID)
		}
		if seen[id] {
			return nil, nil, fieldErrf(archive, fmt.Sprintf("Players.Player[%d].ID", i), "duplicate source id %d", id)
		}
		seen[id] = true
		if d.Name == "" {
			return nil, nil, fieldErrf(archive, fmt.Sprintf("Players.Player[%d].Name", i), "missing")
		}

		p := types.Player{SourceID: id, Name: d.Name, Nation: d.Nation}
		if d.FinalScore != "" {
			if p.FinalScore, err = strconv.ParseInt(d.FinalScore, 10, 64); err != nil {
				return nil, nil, fieldErrf(archive, fmt.Sprintf("Players.Player[%d].FinalScore", i), "%v", err)
			}
		}
		if d.FinalRank != "" {
			if p.FinalRank, err = strconv.Atoi(d.FinalRank); err != nil {
				return nil, nil, fieldErrf(archive, fmt.Sprintf("Players.Player[%d].FinalRank", i), "%v", err)
			}
		}
		players = append(players, p)
	}

	sort.Slice(players, func(i, j int) bool { return players[i].SourceID < players[j].SourceID })

	orderBySource := make(map[int]int, len(players))
	for i := range players {
		players[i].Order = i + 1
		orderBySource[players[i].SourceID] = players[i].Order
	}
	return players, orderBySource, nil
}

func extractTurnStates(archive string, docs []turnStateDoc, orderBySource map[int]int) ([]types.GameState, int, error) {
	states := make([]types.GameState, 0, len(docs))
	seen := make(map[[2]int]bool, len(docs))
	finalTurn := 0

	for i, d := range docs {
		field := func(name string) string { return fmt.Sprintf("TurnStates.TurnState[%d].%s", i, name) }

		srcID, err := strconv.Atoi(d.Player)
		if err != nil {
			return nil, 0, fieldErrf(archive, field("Player"), "invalid source id %q", d.Player)
		}
		order, ok := orderBySource[srcID]
		if !ok {
			return nil, 0, fieldErrf(archive, field("Player"), "unknown source id %d", srcID)
		}

		turn, err := parsePositiveInt(d.Turn)
		if err != nil {
			return nil, 0, fieldErrf(archive, field("Turn"), "%v", err)
		}
		key := [2]int{order, turn}
		if seen[key] {
			return nil, 0, fieldErrf(archive, field("Turn"), "duplicate state for player order %d turn %d", order, turn)
		}
		seen[key] = true
		if turn > finalTurn {
			finalTurn = turn
		}

		st := types.GameState{PlayerOrder: order, Turn: turn}
		if d.Money != "" {
			if st.Money, err = strconv.ParseInt(d.Money, 10, 64); err != nil {
				return nil, 0, fieldErrf(archive, field("Money"), "%v", err)
			}
		}
		if d.Laws != "" {
			if st.Laws, err = strconv.Atoi(d.Laws); err != nil {
				return nil, 0, fieldErrf(archive, field("Laws"), "%v", err)
			}
		}
		if d.Techs != "" {
			if st.Techs, err = strconv.Atoi(d.Techs); err != nil {
				return nil, 0, fieldErrf(archive, field("Techs"), "%v", err)
			}
		}
		states = append(states, st)
	}

	return states, finalTurn, nil
}

// extractEvents merges the memory and log vocabularies into one stream
// tagged by source. Each event keeps its native type as Kind and its
// type-specific attributes as an open payload.
func extractEvents(archive string, memories, logs []eventDoc, orderBySource map[int]int) ([]types.Event, error) {
	events := make([]types.Event, 0, len(memories)+len(logs))

	appendAll := func(docs []eventDoc, source types.EventSource, element string) error {
		for i, d := range docs {
			field := func(name string) string { return fmt.Sprintf("%s[%d].%s", element, i, name) }

			kind, _ := d.attr("Type")
			if kind == "" {
				return fieldErrf(archive, field("Type"), "missing")
			}
			turnStr, _ := d.attr("Turn")
			turn, err := parsePositiveInt(turnStr)
			if err != nil {
				return fieldErrf(archive, field("Turn"), "%v", err)
			}

			ev := types.Event{Turn: turn, Source: source, Kind: kind, Payload: d.payload()}
			if playerStr, ok := d.attr("Player"); ok && playerStr != "" {
				srcID, err := strconv.Atoi(playerStr)
				if err != nil {
					return fieldErrf(archive, field("Player"), "invalid source id %q", playerStr)
				}
				order, ok := orderBySource[srcID]
				if !ok {
					return fieldErrf(archive, field("Player"), "unknown source id %d", srcID)
				}
				ev.PlayerOrder = &order
			}
			events = append(events, ev)
		}
		return nil
	}

	if err := appendAll(memories, types.SourceMemory, "MemoryEvents.Memory"); err != nil {
		return nil, err
	}
	if err := appendAll(logs, types.SourceLog, "LogEvents.Log"); err != nil {
		return nil, err
	}
	return events, nil
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be >= 1, got %d", n)
	}
	return n, nil
}
