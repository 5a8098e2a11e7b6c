package entity

// PlayerID identifies a participant for the whole session. It is assigned
// outside of the game core and used as the authorization key.
type PlayerID string

type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
)

// Palette is handed out in join order, so it also caps the lobby size.
var Palette = [...]Color{ColorRed, ColorBlue, ColorYellow}

const MaxPlayers = len(Palette)

type Player struct {
	ID    PlayerID `json:"id"`
	Color Color    `json:"color"`
}

// IndexOf returns the position of id in players, or -1.
func IndexOf(players []Player, id PlayerID) int {
	for i, player := range players {
		if player.ID == id {
			return i
		}
	}

	return -1
}
