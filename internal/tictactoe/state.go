package tictactoe

import "github.com/rocketscienceinc/cube-tictactoe/internal/entity"

// GameState is one of Lobby, Playing or Ended. The set is closed: the marker
// method is unexported, and Fold forces callers to handle every variant.
type GameState interface {
	isGameState()
}

// Base is shared by all variants.
type Base struct {
	Owner   entity.PlayerID
	Players []entity.Player
}

// Lobby accepts joins and a start request from the owner.
type Lobby struct {
	Base
}

type Playing struct {
	Base
	Board       entity.Board
	CurrentTurn entity.PlayerID
}

// Ended is terminal. A nil Winner is a tie; Line is set only for a win.
type Ended struct {
	Base
	Board  entity.Board
	Winner *entity.PlayerID
	Line   *entity.WinningLine
}

func (Lobby) isGameState()   {}
func (Playing) isGameState() {}
func (Ended) isGameState()   {}

func NewLobby(owner entity.PlayerID) Lobby {
	return Lobby{Base: Base{Owner: owner}}
}

// Fold dispatches on the variant of state. Adding a variant adds a parameter
// here, so every consumer stops compiling until it handles the new case.
func Fold[T any](state GameState, lobby func(Lobby) T, playing func(Playing) T, ended func(Ended) T) T {
	switch s := state.(type) {
	case Lobby:
		return lobby(s)
	case Playing:
		return playing(s)
	case Ended:
		return ended(s)
	default:
		panic("tictactoe: unreachable game state variant")
	}
}

func BaseOf(state GameState) Base {
	return Fold(state,
		func(s Lobby) Base { return s.Base },
		func(s Playing) Base { return s.Base },
		func(s Ended) Base { return s.Base },
	)
}

// BoardOf returns the board of a started game; a lobby has the empty board.
func BoardOf(state GameState) entity.Board {
	return Fold(state,
		func(Lobby) entity.Board { return entity.NewBoard() },
		func(s Playing) entity.Board { return s.Board },
		func(s Ended) entity.Board { return s.Board },
	)
}
