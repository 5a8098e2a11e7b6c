package tictactoe

import "github.com/rocketscienceinc/cube-tictactoe/internal/entity"

// Message is a host-bound intent: Join, Start or Move.
type Message interface {
	isMessage()
}

type Join struct {
	PlayerID entity.PlayerID
}

type Start struct{}

type Move struct {
	Path entity.Coord
}

func (Join) isMessage()  {}
func (Start) isMessage() {}
func (Move) isMessage()  {}

// FoldMessage is the Message counterpart of Fold.
func FoldMessage[T any](msg Message, join func(Join) T, start func(Start) T, move func(Move) T) T {
	switch m := msg.(type) {
	case Join:
		return join(m)
	case Start:
		return start(m)
	case Move:
		return move(m)
	default:
		panic("tictactoe: unreachable message variant")
	}
}
