// Package testutil provides shared fixtures for turnstone tests.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteArchive creates a zip archive at dir/name containing the given
// entries and returns its path. Entries are written in sorted name order.
func WriteArchive(t *testing.T, dir, name string, entries map[string][]byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write(entries[n])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// SampleSaveXML returns a small but complete save document: a 10x4 map,
// two players with non-contiguous source IDs, events from both
// vocabularies, and a tile that changes hands mid-game.
func SampleSaveXML(matchID string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<GameSave>
  <Settings MatchID="` + matchID + `" MapName="Crossroads" MapWidth="10" MapHeight="4"
            StartedAt="2026-02-01T18:00:00Z" FinishedAt="2026-02-01T21:30:00Z" Outcome="CONQUEST"/>
  <Players>
    <Player ID="7" Name="Brennus" Nation="Gaul" FinalScore="1430" FinalRank="2"/>
    <Player ID="3" Name="Hatshepsut" Nation="Egypt" FinalScore="2210" FinalRank="1"/>
  </Players>
  <TurnStates>
    <TurnState Player="3" Turn="1" Money="50" Laws="1" Techs="0"/>
    <TurnState Player="3" Turn="5" Money="210" Laws="2" Techs="3"/>
    <TurnState Player="7" Turn="1" Money="50" Laws="1" Techs="0"/>
    <TurnState Player="7" Turn="5" Money="140" Laws="1" Techs="2"/>
  </TurnStates>
  <MemoryEvents>
    <Memory Type="CITY_FOUNDED" Turn="2" Player="3" City="Thebes" X="3" Y="2"/>
    <Memory Type="WAR_DECLARED" Turn="4" Player="7" Target="3"/>
  </MemoryEvents>
  <LogEvents>
    <Log Type="BATTLE" Turn="4" Player="7" Attacker="Warband" Defender="Slinger" Result="VICTORY"/>
    <Log Type="TURN_END" Turn="5"/>
  </LogEvents>
  <Tiles>
    <Tile ID="23" Terrain="GRASS">
      <Owner Turn="2" Player="7"/>
    </Tile>
    <Tile ID="0" Terrain="WATER"/>
  </Tiles>
</GameSave>
`)
}
