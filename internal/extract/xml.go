package extract

import "encoding/xml"

// Raw document shapes for the save XML. Numeric fields are decoded as
// strings so parse failures can be reported against a named field rather
// than as an opaque decoder error.

type saveDoc struct {
	XMLName    xml.Name       `xml:"GameSave"`
	Settings   settingsDoc    `xml:"Settings"`
	Players    []playerDoc    `xml:"Players>Player"`
	TurnStates []turnStateDoc `xml:"TurnStates>TurnState"`
	Memories   []eventDoc     `xml:"MemoryEvents>Memory"`
	Logs       []eventDoc     `xml:"LogEvents>Log"`
	Tiles      []tileDoc      `xml:"Tiles>Tile"`
}

type settingsDoc struct {
	MatchID    string `xml:"MatchID,attr"`
	MapName    string `xml:"MapName,attr"`
	MapWidth   string `xml:"MapWidth,attr"`
	MapHeight  string `xml:"MapHeight,attr"`
	StartedAt  string `xml:"StartedAt,attr"`
	FinishedAt string `xml:"FinishedAt,attr"`
	Outcome    string `xml:"Outcome,attr"`
}

type playerDoc struct {
	ID         string `xml:"ID,attr"`
	Name       string `xml:"Name,attr"`
	Nation     string `xml:"Nation,attr"`
	FinalScore string `xml:"FinalScore,attr"`
	FinalRank  string `xml:"FinalRank,attr"`
}

type turnStateDoc struct {
	Player string `xml:"Player,attr"`
	Turn   string `xml:"Turn,attr"`
	Money  string `xml:"Money,attr"`
	Laws   string `xml:"Laws,attr"`
	Techs  string `xml:"Techs,attr"`
}

// eventDoc captures every attribute of a Memory or Log element. The
// well-known attributes (Type, Turn, Player) are picked out in code and
// the remainder becomes the event's open payload.
type eventDoc struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

func (d eventDoc) attr(name string) (string, bool) {
	for _, a := range d.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (d eventDoc) payload() map[string]string {
	var p map[string]string
	for _, a := range d.Attrs {
		switch a.Name.Local {
		case "Type", "Turn", "Player":
			continue
		}
		if p == nil {
			p = make(map[string]string)
		}
		p[a.Name.Local] = a.Value
	}
	return p
}

type tileDoc struct {
	ID      string     `xml:"ID,attr"`
	Terrain string     `xml:"Terrain,attr"`
	Owners  []ownerDoc `xml:"Owner"`
}

// ownerDoc is one entry in a tile's sparse ownership-change history. An
// absent Player attribute means the tile became unowned at that turn.
type ownerDoc struct {
	Turn   string `xml:"Turn,attr"`
	Player string `xml:"Player,attr"`
}
