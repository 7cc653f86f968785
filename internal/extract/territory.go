package extract

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/turnstone-io/turnstone/pkg/types"
)

// ownerChange is one entry of a tile's sparse ownership history. A nil
// order means the tile became unowned at that turn.
type ownerChange struct {
	turn  int
	order *int
}

// expandTerritories expands each tile's sparse ownership-change history
// into one snapshot per turn from 1 through finalTurn, forward-filling
// the most recent owner. Tiles with no recorded change stay unowned for
// every turn.
func expandTerritories(archive string, tiles []tileDoc, mapWidth, mapHeight, finalTurn int, orderBySource map[int]int) ([]types.TerritorySnapshot, error) {
	if len(tiles) > 0 && finalTurn == 0 {
		return nil, fieldErrf(archive, "TurnStates", "no turn states to bound territory expansion")
	}

	snapshots := make([]types.TerritorySnapshot, 0, len(tiles)*finalTurn)
	seenTile := make(map[int]bool, len(tiles))

	for i, tile := range tiles {
		field := func(name string) string { return fmt.Sprintf("Tiles.Tile[%d].%s", i, name) }

		id, err := strconv.Atoi(tile.ID)
		if err != nil {
			return nil, fieldErrf(archive, field("ID"), "invalid tile id %q", tile.ID)
		}
		if id < 0 || id >= mapWidth*mapHeight {
			return nil, fieldErrf(archive, field("ID"), "tile id %d outside %dx%d map", id, mapWidth, mapHeight)
		}
		if seenTile[id] {
			return nil, fieldErrf(archive, field("ID"), "duplicate tile id %d", id)
		}
		seenTile[id] = true
		if tile.Terrain == "" {
			return nil, fieldErrf(archive, field("Terrain"), "missing")
		}

		x, y := id%mapWidth, id/mapWidth

		changes, err := tileChanges(archive, tile, i, finalTurn, orderBySource)
		if err != nil {
			return nil, err
		}

		// Forward-fill: walk turns in increasing order, advancing through
		// the sorted change list and carrying the current owner.
		var owner *int
		next := 0
		for turn := 1; turn <= finalTurn; turn++ {
			for next < len(changes) && changes[next].turn <= turn {
				owner = changes[next].order
				next++
			}
			snapshots = append(snapshots, types.TerritorySnapshot{
				X:          x,
				Y:          y,
				Turn:       turn,
				Terrain:    tile.Terrain,
				OwnerOrder: owner,
			})
		}
	}

	return snapshots, nil
}

func tileChanges(archive string, tile tileDoc, tileIdx, finalTurn int, orderBySource map[int]int) ([]ownerChange, error) {
	changes := make([]ownerChange, 0, len(tile.Owners))
	seenTurn := make(map[int]bool, len(tile.Owners))

	for j, o := range tile.Owners {
		field := func(name string) string {
			return fmt.Sprintf("Tiles.Tile[%d].Owner[%d].%s", tileIdx, j, name)
		}

		turn, err := parsePositiveInt(o.Turn)
		if err != nil {
			return nil, fieldErrf(archive, field("Turn"), "%v", err)
		}
		if turn > finalTurn {
			return nil, fieldErrf(archive, field("Turn"), "ownership change at turn %d beyond final turn %d", turn, finalTurn)
		}
		if seenTurn[turn] {
			return nil, fieldErrf(archive, field("Turn"), "duplicate ownership change at turn %d", turn)
		}
		seenTurn[turn] = true

		ch := ownerChange{turn: turn}
		if o.Player != "" {
			srcID, err := strconv.Atoi(o.Player)
			if err != nil {
				return nil, fieldErrf(archive, field("Player"), "invalid source id %q", o.Player)
			}
			order, ok := orderBySource[srcID]
			if !ok {
				return nil, fieldErrf(archive, field("Player"), "unknown source id %d", srcID)
			}
			ch.order = &order
		}
		changes = append(changes, ch)
	}

	sort.Slice(changes, func(a, b int) bool { return changes[a].turn < changes[b].turn })
	return changes, nil
}
