package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/cube-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
)

const (
	TypeJoin  = "join"
	TypeStart = "start"
	TypeMove  = "move"
)

// Path is a coordinate on the wire: [x, y, z].
type Path [3]int

func pathOf(coord entity.Coord) Path {
	return Path{coord.X, coord.Y, coord.Z}
}

func (that Path) coord() entity.Coord {
	return entity.Coord{X: that[0], Y: that[1], Z: that[2]}
}

type wireMessage struct {
	Type     string          `json:"type"`
	PlayerID entity.PlayerID `json:"playerId,omitempty"`
	Path     *Path           `json:"path,omitempty"`
}

func EncodeMessage(msg tictactoe.Message) ([]byte, error) {
	wire := tictactoe.FoldMessage(msg,
		func(m tictactoe.Join) wireMessage { return wireMessage{Type: TypeJoin, PlayerID: m.PlayerID} },
		func(tictactoe.Start) wireMessage { return wireMessage{Type: TypeStart} },
		func(m tictactoe.Move) wireMessage {
			path := pathOf(m.Path)
			return wireMessage{Type: TypeMove, Path: &path}
		},
	)

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func DecodeMessage(data []byte) (tictactoe.Message, error) {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	switch wire.Type {
	case TypeJoin:
		if wire.PlayerID == "" {
			return nil, fmt.Errorf("%w: join without player id", apperror.ErrUnknownMessage)
		}
		return tictactoe.Join{PlayerID: wire.PlayerID}, nil
	case TypeStart:
		return tictactoe.Start{}, nil
	case TypeMove:
		if wire.Path == nil {
			return nil, fmt.Errorf("%w: move without path", apperror.ErrUnknownMessage)
		}
		return tictactoe.Move{Path: wire.Path.coord()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMessage, wire.Type)
	}
}
