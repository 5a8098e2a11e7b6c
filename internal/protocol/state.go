package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/cube-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
)

const (
	TypeLobby = "lobby"
	TypeGame  = "game"
	TypeEnd   = "end"

	cellEmpty    = "empty"
	cellOccupied = "occupied"
)

type wireCell struct {
	Type   string          `json:"type"`
	Player entity.PlayerID `json:"player,omitempty"`
}

type wireGrid [entity.Size][entity.Size][entity.Size]wireCell

// wireState is the full game state broadcast by the host after every
// accepted message.
type wireState struct {
	Type         string           `json:"type"`
	Owner        entity.PlayerID  `json:"owner"`
	Players      []entity.Player  `json:"players"`
	Grid         *wireGrid        `json:"grid,omitempty"`
	CurrentTurn  entity.PlayerID  `json:"currentTurn,omitempty"`
	Winner       *entity.PlayerID `json:"winner,omitempty"`
	WinningTiles *[3]Path         `json:"winningTiles,omitempty"`
}

func EncodeState(state tictactoe.GameState) ([]byte, error) {
	wire := tictactoe.Fold(state,
		func(tictactoe.Lobby) wireState {
			return wireState{Type: TypeLobby}
		},
		func(s tictactoe.Playing) wireState {
			return wireState{Type: TypeGame, Grid: encodeGrid(s.Board), CurrentTurn: s.CurrentTurn}
		},
		func(s tictactoe.Ended) wireState {
			wire := wireState{Type: TypeEnd, Grid: encodeGrid(s.Board), Winner: s.Winner}
			if s.Line != nil {
				tiles := [3]Path{pathOf(s.Line[0]), pathOf(s.Line[1]), pathOf(s.Line[2])}
				wire.WinningTiles = &tiles
			}
			return wire
		},
	)

	base := tictactoe.BaseOf(state)
	wire.Owner = base.Owner
	wire.Players = base.Players
	if wire.Players == nil {
		wire.Players = []entity.Player{}
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	return data, nil
}

func DecodeState(data []byte) (tictactoe.GameState, error) {
	var wire wireState
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	base := tictactoe.Base{Owner: wire.Owner, Players: wire.Players}
	if len(base.Players) == 0 {
		base.Players = nil
	}

	switch wire.Type {
	case TypeLobby:
		return tictactoe.Lobby{Base: base}, nil
	case TypeGame:
		board, err := decodeGrid(wire.Grid)
		if err != nil {
			return nil, err
		}
		return tictactoe.Playing{Base: base, Board: board, CurrentTurn: wire.CurrentTurn}, nil
	case TypeEnd:
		board, err := decodeGrid(wire.Grid)
		if err != nil {
			return nil, err
		}
		ended := tictactoe.Ended{Base: base, Board: board, Winner: wire.Winner}
		if wire.WinningTiles != nil {
			tiles := wire.WinningTiles
			line := entity.WinningLine{tiles[0].coord(), tiles[1].coord(), tiles[2].coord()}
			ended.Line = &line
		}
		return ended, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownState, wire.Type)
	}
}

func encodeGrid(board entity.Board) *wireGrid {
	var grid wireGrid
	for x := range board {
		for y := range board[x] {
			for z, cell := range board[x][y] {
				if cell.IsOccupied() {
					grid[x][y][z] = wireCell{Type: cellOccupied, Player: cell.Player}
				} else {
					grid[x][y][z] = wireCell{Type: cellEmpty}
				}
			}
		}
	}

	return &grid
}

func decodeGrid(grid *wireGrid) (entity.Board, error) {
	var board entity.Board
	if grid == nil {
		return board, fmt.Errorf("%w: missing grid", apperror.ErrUnknownState)
	}

	for x := range grid {
		for y := range grid[x] {
			for z, cell := range grid[x][y] {
				switch {
				case cell.Type == cellEmpty:
				case cell.Type == cellOccupied && cell.Player != "":
					board[x][y][z] = entity.Occupied(cell.Player)
				default:
					return board, fmt.Errorf("%w: cell %q at (%d,%d,%d)", apperror.ErrUnknownState, cell.Type, x, y, z)
				}
			}
		}
	}

	return board, nil
}
