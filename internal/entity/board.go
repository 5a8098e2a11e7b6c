package entity

import (
	"fmt"

	"github.com/rocketscienceinc/cube-tictactoe/internal/apperror"
)

const Size = 3

// Coord addresses a cell as Board[X][Y][Z].
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (that Coord) Valid() bool {
	return inRange(that.X) && inRange(that.Y) && inRange(that.Z)
}

func (that Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", that.X, that.Y, that.Z)
}

func inRange(v int) bool {
	return v >= 0 && v < Size
}

// Cell is empty when Player is "".
type Cell struct {
	Player PlayerID
}

func Occupied(player PlayerID) Cell {
	return Cell{Player: player}
}

func (that Cell) IsOccupied() bool {
	return that.Player != ""
}

// Board is a value type: assigning or passing it copies every cell, so a
// Board held by a state is never changed behind its back.
type Board [Size][Size][Size]Cell

func NewBoard() Board {
	return Board{}
}

func (that Board) Cell(coord Coord) Cell {
	return that[coord.X][coord.Y][coord.Z]
}

// Place returns a copy of the board with coord owned by player.
func (that Board) Place(coord Coord, player PlayerID) (Board, error) {
	if !coord.Valid() {
		return that, fmt.Errorf("%w: %s", apperror.ErrInvalidCell, coord)
	}

	if that.Cell(coord).IsOccupied() {
		return that, fmt.Errorf("%w: %s", apperror.ErrCellOccupied, coord)
	}

	that[coord.X][coord.Y][coord.Z] = Occupied(player)

	return that, nil
}

// FindWinningLine scans WinningLines in order and returns the first line
// whose three cells belong to the same player.
func (that Board) FindWinningLine() (WinningLine, bool) {
	for _, line := range WinningLines {
		if that.ownsLine(line) {
			return line, true
		}
	}

	return WinningLine{}, false
}

func (that Board) ownsLine(line WinningLine) bool {
	first := that.Cell(line[0])
	if !first.IsOccupied() {
		return false
	}

	return that.Cell(line[1]) == first && that.Cell(line[2]) == first
}

func (that Board) IsFull() bool {
	for x := range that {
		for y := range that[x] {
			for z := range that[x][y] {
				if !that[x][y][z].IsOccupied() {
					return false
				}
			}
		}
	}

	return true
}

// IsTied reports a full board on which nobody owns a line.
func (that Board) IsTied() bool {
	if !that.IsFull() {
		return false
	}

	_, won := that.FindWinningLine()

	return !won
}
