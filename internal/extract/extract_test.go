package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<GameSave>
  <Settings MatchID="m-42" MapName="Crossroads" MapWidth="10" MapHeight="4"
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
</GameSave>`

func TestExtractSampleDocument(t *testing.T) {
	rec, err := Extract("save.zip", []byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "m-42", rec.Match.MatchID)
	assert.Equal(t, "Crossroads", rec.Match.MapName)
	assert.Equal(t, 10, rec.Match.MapWidth)
	assert.Equal(t, 4, rec.Match.MapHeight)
	assert.Equal(t, 5, rec.Match.Turns)
	assert.Equal(t, "CONQUEST", rec.Match.Outcome)
	require.NotNil(t, rec.Match.StartedAt)
	assert.Equal(t, time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC), rec.Match.StartedAt.UTC())
	require.NotNil(t, rec.Match.FinishedAt)

	// Source IDs 3 and 7 remap to orders 1 and 2 regardless of document order.
	require.Len(t, rec.Players, 2)
	assert.Equal(t, 3, rec.Players[0].SourceID)
	assert.Equal(t, 1, rec.Players[0].Order)
	assert.Equal(t, "Hatshepsut", rec.Players[0].Name)
	assert.Equal(t, int64(2210), rec.Players[0].FinalScore)
	assert.Equal(t, 7, rec.Players[1].SourceID)
	assert.Equal(t, 2, rec.Players[1].Order)
	assert.Equal(t, "Brennus", rec.Players[1].Name)

	require.Len(t, rec.States, 4)
	assert.Equal(t, 1, rec.States[0].PlayerOrder)
	assert.Equal(t, int64(210), rec.States[1].Money)
	assert.Equal(t, 2, rec.States[2].PlayerOrder)

	require.Len(t, rec.Events, 4)
	// Tile 23 on a width-10 map is x=3, y=2; two tiles over five turns.
	assert.Len(t, rec.Territories, 10)
}

func TestExtractEventMerge(t *testing.T) {
	rec, err := Extract("save.zip", []byte(sampleDoc))
	require.NoError(t, err)

	founded := rec.Events[0]
	assert.Equal(t, "CITY_FOUNDED", founded.Kind)
	assert.Equal(t, "memory", string(founded.Source))
	assert.Equal(t, 2, founded.Turn)
	require.NotNil(t, founded.PlayerOrder)
	assert.Equal(t, 1, *founded.PlayerOrder)
	assert.Equal(t, map[string]string{"City": "Thebes", "X": "3", "Y": "2"}, founded.Payload)

	battle := rec.Events[2]
	assert.Equal(t, "log", string(battle.Source))
	require.NotNil(t, battle.PlayerOrder)
	assert.Equal(t, 2, *battle.PlayerOrder)
	assert.Equal(t, "VICTORY", battle.Payload["Result"])

	turnEnd := rec.Events[3]
	assert.Equal(t, "TURN_END", turnEnd.Kind)
	assert.Nil(t, turnEnd.PlayerOrder)
	assert.Nil(t, turnEnd.Payload)
}

func TestExtractTerritoryForwardFill(t *testing.T) {
	rec, err := Extract("save.zip", []byte(sampleDoc))
	require.NoError(t, err)

	byTurn := make(map[int]*int)
	for i, ts := range rec.Territories {
		if ts.X == 3 && ts.Y == 2 {
			assert.Equal(t, "GRASS", ts.Terrain)
			byTurn[ts.Turn] = rec.Territories[i].OwnerOrder
		}
	}
	require.Len(t, byTurn, 5)

	assert.Nil(t, byTurn[1])
	for turn := 2; turn <= 5; turn++ {
		require.NotNil(t, byTurn[turn], "turn %d", turn)
		assert.Equal(t, 2, *byTurn[turn], "turn %d", turn)
	}
}

func TestExtractDeterministic(t *testing.T) {
	first, err := Extract("save.zip", []byte(sampleDoc))
	require.NoError(t, err)
	second, err := Extract("save.zip", []byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractFieldErrors(t *testing.T) {
	const head = `<GameSave><Settings MatchID="m" MapWidth="4" MapHeight="4"/>` +
		`<Players><Player ID="3" Name="A"/></Players>` +
		`<TurnStates><TurnState Player="3" Turn="2"/></TurnStates>`

	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "missing match id",
			doc:   `<GameSave><Settings MapWidth="4" MapHeight="4"/></GameSave>`,
			field: "Settings.MatchID",
		},
		{
			name:  "non-numeric map width",
			doc:   `<GameSave><Settings MatchID="m" MapWidth="wide" MapHeight="4"/></GameSave>`,
			field: "Settings.MapWidth",
		},
		{
			name:  "bad start timestamp",
			doc:   `<GameSave><Settings MatchID="m" MapWidth="4" MapHeight="4" StartedAt="yesterday"/></GameSave>`,
			field: "Settings.StartedAt",
		},
		{
			name: "duplicate player source id",
			doc: `<GameSave><Settings MatchID="m" MapWidth="4" MapHeight="4"/>` +
				`<Players><Player ID="3" Name="A"/><Player ID="3" Name="B"/></Players></GameSave>`,
			field: "Players.Player[1].ID",
		},
		{
			name: "player missing name",
			doc: `<GameSave><Settings MatchID="m" MapWidth="4" MapHeight="4"/>` +
				`<Players><Player ID="3"/></Players></GameSave>`,
			field: "Players.Player[0].Name",
		},
		{
			name: "turn state for unknown player",
			doc: `<GameSave><Settings MatchID="m" MapWidth="4" MapHeight="4"/>` +
				`<Players><Player ID="3" Name="A"/></Players>` +
				`<TurnStates><TurnState Player="9" Turn="1"/></TurnStates></GameSave>`,
			field: "TurnStates.TurnState[0].Player",
		},
		{
			name: "duplicate turn state",
			doc: `<GameSave><Settings MatchID="m" MapWidth="4" MapHeight="4"/>` +
				`<Players><Player ID="3" Name="A"/></Players>` +
				`<TurnStates><TurnState Player="3" Turn="1"/><TurnState Player="3" Turn="1"/></TurnStates></GameSave>`,
			field: "TurnStates.TurnState[1].Turn",
		},
		{
			name:  "event missing type",
			doc:   head + `<MemoryEvents><Memory Turn="1"/></MemoryEvents></GameSave>`,
			field: "MemoryEvents.Memory[0].Type",
		},
		{
			name:  "event turn below one",
			doc:   head + `<LogEvents><Log Type="BATTLE" Turn="0"/></LogEvents></GameSave>`,
			field: "LogEvents.Log[0].Turn",
		},
		{
			name:  "event references unknown player",
			doc:   head + `<MemoryEvents><Memory Type="X" Turn="1" Player="8"/></MemoryEvents></GameSave>`,
			field: "MemoryEvents.Memory[0].Player",
		},
		{
			name:  "tile id outside map",
			doc:   head + `<Tiles><Tile ID="16" Terrain="GRASS"/></Tiles></GameSave>`,
			field: "Tiles.Tile[0].ID",
		},
		{
			name:  "tile missing terrain",
			doc:   head + `<Tiles><Tile ID="1"/></Tiles></GameSave>`,
			field: "Tiles.Tile[0].Terrain",
		},
		{
			name:  "duplicate tile",
			doc:   head + `<Tiles><Tile ID="1" Terrain="GRASS"/><Tile ID="1" Terrain="HILL"/></Tiles></GameSave>`,
			field: "Tiles.Tile[1].ID",
		},
		{
			name:  "ownership change beyond final turn",
			doc:   head + `<Tiles><Tile ID="1" Terrain="GRASS"><Owner Turn="9" Player="3"/></Tile></Tiles></GameSave>`,
			field: "Tiles.Tile[0].Owner[0].Turn",
		},
		{
			name:  "ownership change for unknown player",
			doc:   head + `<Tiles><Tile ID="1" Terrain="GRASS"><Owner Turn="1" Player="5"/></Tile></Tiles></GameSave>`,
			field: "Tiles.Tile[0].Owner[0].Player",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Extract("bad.zip", []byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, rec)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "bad.zip", fe.Archive)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestExtractUnparseableDocument(t *testing.T) {
	_, err := Extract("bad.zip", []byte("not xml at all"))
	require.Error(t, err)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "GameSave", fe.Field)
}

func TestExtractEmptyOptionalSections(t *testing.T) {
	doc := `<GameSave><Settings MatchID="m" MapWidth="4" MapHeight="4"/>` +
		`<Players><Player ID="0" Name="Solo"/></Players></GameSave>`

	rec, err := Extract("save.zip", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Match.Turns)
	assert.Empty(t, rec.States)
	assert.Empty(t, rec.Events)
	assert.Empty(t, rec.Territories)
}
