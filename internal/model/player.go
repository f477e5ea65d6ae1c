package model

// EnginePlayerID stands in for the engine in the players list.
const EnginePlayerID = "engine"

type ClientPlayer struct {
	ID     string `json:"name"`
	Color  Side   `json:"color"`
	Engine bool   `json:"engine"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

func (p *Players) seat(side Side) *ClientPlayer {
	if side == First {
		return &p.White
	}
	return &p.Black
}

// sideOf reports which side playerID holds.
func (p *Players) sideOf(playerID string) (Side, bool) {
	switch {
	case playerID == "":
		return First, false
	case p.White.ID == playerID:
		return First, true
	case p.Black.ID == playerID:
		return Second, true
	}
	return First, false
}

// MatchFoundEvent tells a queued player where their game is.
type MatchFoundEvent struct {
	GameID string `json:"game_id"`
	Color  Side   `json:"color"`
}
