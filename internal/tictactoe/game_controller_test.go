package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/cube-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
)

const (
	playerA entity.PlayerID = "A"
	playerB entity.PlayerID = "B"
	playerC entity.PlayerID = "C"
	playerD entity.PlayerID = "D"
)

var threePlayers = []entity.Player{
	{ID: playerA, Color: entity.ColorRed},
	{ID: playerB, Color: entity.ColorBlue},
	{ID: playerC, Color: entity.ColorYellow},
}

// tiePattern is a full cube with nine cells each for A, B and C and no line
// owned by one player. Indexed as tiePattern[x][y][z].
var tiePattern = [entity.Size][entity.Size]string{
	{"AAB", "AAB", "BBC"},
	{"AAB", "ABA", "CBC"},
	{"BCC", "CBC", "CCA"},
}

func cellsOf(pattern [entity.Size][entity.Size]string, owner rune) []entity.Coord {
	var coords []entity.Coord
	for x := range pattern {
		for y := range pattern[x] {
			for z, cell := range pattern[x][y] {
				if cell == owner {
					coords = append(coords, entity.Coord{X: x, Y: y, Z: z})
				}
			}
		}
	}

	return coords
}

func mustApply(t *testing.T, state GameState, sender entity.PlayerID, msg Message) GameState {
	t.Helper()

	next, err := Apply(state, sender, msg)
	require.NoError(t, err)

	return next
}

func playingWith(board entity.Board, turn entity.PlayerID) Playing {
	return Playing{
		Base:        Base{Owner: playerA, Players: threePlayers},
		Board:       board,
		CurrentTurn: turn,
	}
}

func TestTransition_Lobby(t *testing.T) {
	t.Run("Join appends players with palette colors in order", func(t *testing.T) {
		// Given: an empty lobby owned by A
		var state GameState = NewLobby(playerA)

		// When: A, B and C join
		for _, id := range []entity.PlayerID{playerA, playerB, playerC} {
			state = mustApply(t, state, id, Join{PlayerID: id})
		}

		// Then: players are listed in join order with red, blue, yellow
		expected := Lobby{Base: Base{Owner: playerA, Players: threePlayers}}
		assert.Equal(t, expected, state)
	})

	t.Run("Join does not mutate the previous lobby", func(t *testing.T) {
		// Given: a lobby with spare capacity in its players slice
		players := make([]entity.Player, 1, 3)
		players[0] = threePlayers[0]
		lobby := Lobby{Base: Base{Owner: playerA, Players: players}}

		// When: two different players join from the same source state
		first, err := Transition(lobby, Join{PlayerID: playerB})
		require.NoError(t, err)
		second, err := Transition(lobby, Join{PlayerID: playerC})
		require.NoError(t, err)

		// Then: neither result sees the other join
		assert.Equal(t, playerB, first.(Lobby).Players[1].ID)
		assert.Equal(t, playerC, second.(Lobby).Players[1].ID)
		assert.Len(t, lobby.Players, 1)
	})

	t.Run("Duplicate join leaves the lobby unchanged", func(t *testing.T) {
		// Given: a lobby where A already joined
		lobby := Lobby{Base: Base{Owner: playerA, Players: threePlayers[:1]}}

		// When: A joins again
		next, err := Transition(lobby, Join{PlayerID: playerA})

		// Then: ErrAlreadyJoined and the same lobby
		require.ErrorIs(t, err, apperror.ErrAlreadyJoined)
		assert.Equal(t, lobby, next)
	})

	t.Run("Join beyond the palette is rejected", func(t *testing.T) {
		// Given: a full lobby
		lobby := Lobby{Base: Base{Owner: playerA, Players: threePlayers}}

		// When: a fourth player joins
		next, err := Transition(lobby, Join{PlayerID: playerD})

		// Then: ErrLobbyFull and the player count stays at the palette size
		require.ErrorIs(t, err, apperror.ErrLobbyFull)
		assert.Equal(t, lobby, next)
		assert.Len(t, BaseOf(next).Players, entity.MaxPlayers)
	})

	t.Run("Start moves to playing with an empty board and the first player's turn", func(t *testing.T) {
		// Given: a lobby with three players
		lobby := Lobby{Base: Base{Owner: playerA, Players: threePlayers}}

		// When: the owner starts
		next := mustApply(t, lobby, playerA, Start{})

		// Then: playing, empty board, A to move
		expected := Playing{Base: lobby.Base, Board: entity.NewBoard(), CurrentTurn: playerA}
		assert.Equal(t, expected, next)
	})

	t.Run("Start without players is rejected", func(t *testing.T) {
		lobby := NewLobby(playerA)

		next, err := Transition(lobby, Start{})

		require.ErrorIs(t, err, apperror.ErrNoPlayers)
		assert.Equal(t, lobby, next)
	})

	t.Run("Move in lobby is rejected", func(t *testing.T) {
		lobby := Lobby{Base: Base{Owner: playerA, Players: threePlayers}}

		next, err := Transition(lobby, Move{Path: entity.Coord{}})

		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
		assert.Equal(t, lobby, next)
	})
}

func TestTransition_Playing(t *testing.T) {
	t.Run("Turn rotation wraps around", func(t *testing.T) {
		// Given: A to move among A, B, C
		var state GameState = playingWith(entity.NewBoard(), playerA)

		// When: A moves
		state = mustApply(t, state, playerA, Move{Path: entity.Coord{X: 0, Y: 0, Z: 0}})

		// Then: B is next
		assert.Equal(t, playerB, state.(Playing).CurrentTurn)

		// When: B then C move
		state = mustApply(t, state, playerB, Move{Path: entity.Coord{X: 1, Y: 0, Z: 0}})
		assert.Equal(t, playerC, state.(Playing).CurrentTurn)
		state = mustApply(t, state, playerC, Move{Path: entity.Coord{X: 0, Y: 1, Z: 0}})

		// Then: it wraps back to A
		assert.Equal(t, playerA, state.(Playing).CurrentTurn)
	})

	t.Run("Move to an occupied cell is a no-op for every cell", func(t *testing.T) {
		// Given: a full board, so every coordinate is occupied
		var board entity.Board
		for _, owner := range []rune{'A', 'B', 'C'} {
			for _, coord := range cellsOf(tiePattern, owner) {
				board[coord.X][coord.Y][coord.Z] = entity.Occupied(entity.PlayerID(owner))
			}
		}
		game := playingWith(board, playerB)

		for x := 0; x < entity.Size; x++ {
			for y := 0; y < entity.Size; y++ {
				for z := 0; z < entity.Size; z++ {
					// When: B moves onto an occupied cell
					next, err := Transition(game, Move{Path: entity.Coord{X: x, Y: y, Z: z}})

					// Then: the state is equal to the input and B still moves
					require.ErrorIs(t, err, apperror.ErrCellOccupied)
					require.Equal(t, game, next)
				}
			}
		}
	})

	t.Run("Move outside the cube is rejected", func(t *testing.T) {
		game := playingWith(entity.NewBoard(), playerA)

		next, err := Transition(game, Move{Path: entity.Coord{X: 3, Y: 0, Z: 0}})

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Equal(t, game, next)
	})

	t.Run("Completing any cataloged line ends the game with the mover as winner", func(t *testing.T) {
		for _, line := range entity.WinningLines {
			// Given: A owns two cells of the line and is to move
			board := entity.NewBoard()
			for _, coord := range line[:2] {
				board[coord.X][coord.Y][coord.Z] = entity.Occupied(playerA)
			}
			game := playingWith(board, playerA)

			// When: A completes the line
			next, err := Transition(game, Move{Path: line[2]})
			require.NoError(t, err)

			// Then: the game ended with A as winner and the same three cells reported
			ended, ok := next.(Ended)
			require.True(t, ok, "line %v", line)
			require.NotNil(t, ended.Winner)
			assert.Equal(t, playerA, *ended.Winner)
			require.NotNil(t, ended.Line)
			assert.ElementsMatch(t, line[:], ended.Line[:], "line %v", line)
		}
	})

	t.Run("Full board without a line ends in a tie", func(t *testing.T) {
		// Given: a started game among A, B, C
		var state GameState = playingWith(entity.NewBoard(), playerA)
		cells := map[entity.PlayerID][]entity.Coord{
			playerA: cellsOf(tiePattern, 'A'),
			playerB: cellsOf(tiePattern, 'B'),
			playerC: cellsOf(tiePattern, 'C'),
		}

		// When: they fill the cube round-robin following the tie pattern
		for i := 0; i < 9; i++ {
			for _, id := range []entity.PlayerID{playerA, playerB, playerC} {
				_, playing := state.(Playing)
				require.True(t, playing, "game ended early at round %d", i)
				state = mustApply(t, state, id, Move{Path: cells[id][i]})
			}
		}

		// Then: ended without a winner
		ended, ok := state.(Ended)
		require.True(t, ok)
		assert.Nil(t, ended.Winner)
		assert.Nil(t, ended.Line)
		assert.True(t, ended.Board.IsFull())
	})

	t.Run("Winning move that fills the board is a win", func(t *testing.T) {
		// Given: the tie pattern with (0,0,2) left open and A to move
		var board entity.Board
		for _, owner := range []rune{'A', 'B', 'C'} {
			for _, coord := range cellsOf(tiePattern, owner) {
				board[coord.X][coord.Y][coord.Z] = entity.Occupied(entity.PlayerID(owner))
			}
		}
		last := entity.Coord{X: 0, Y: 0, Z: 2}
		board[last.X][last.Y][last.Z] = entity.Cell{}
		game := playingWith(board, playerA)

		// When: A takes the last cell, completing (0,0,*)
		next, err := Transition(game, Move{Path: last})
		require.NoError(t, err)

		// Then: A wins even though the board is full
		ended := next.(Ended)
		require.NotNil(t, ended.Winner)
		assert.Equal(t, playerA, *ended.Winner)
	})

	t.Run("Join and start are rejected once playing", func(t *testing.T) {
		game := playingWith(entity.NewBoard(), playerA)

		for _, msg := range []Message{Join{PlayerID: playerD}, Start{}} {
			next, err := Transition(game, msg)
			require.ErrorIs(t, err, apperror.ErrGameAlreadyStarted)
			assert.Equal(t, game, next)
		}
	})
}

func TestTransition_Ended(t *testing.T) {
	// Given: a finished game
	winner := playerA
	ended := Ended{Base: Base{Owner: playerA, Players: threePlayers}, Winner: &winner}

	for _, msg := range []Message{Join{PlayerID: playerD}, Start{}, Move{Path: entity.Coord{X: 1, Y: 1, Z: 1}}} {
		// When: any message arrives
		next, err := Transition(ended, msg)

		// Then: ErrGameFinished and nothing changes
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, ended, next)
	}
}

func TestAuthorize(t *testing.T) {
	t.Run("Move from anyone but the current player never changes state", func(t *testing.T) {
		states := []GameState{
			playingWith(entity.NewBoard(), playerA),
			playingWith(entity.NewBoard(), playerB),
			playingWith(entity.NewBoard(), playerC),
		}

		for _, state := range states {
			turn := state.(Playing).CurrentTurn
			for _, sender := range []entity.PlayerID{playerA, playerB, playerC, playerD} {
				if sender == turn {
					continue
				}
				for x := 0; x < entity.Size; x++ {
					for y := 0; y < entity.Size; y++ {
						for z := 0; z < entity.Size; z++ {
							next, err := Apply(state, sender, Move{Path: entity.Coord{X: x, Y: y, Z: z}})
							require.ErrorIs(t, err, apperror.ErrNotYourTurn)
							require.Equal(t, state, next)
						}
					}
				}
			}
		}
	})

	t.Run("Start only from the owner", func(t *testing.T) {
		lobby := Lobby{Base: Base{Owner: playerA, Players: threePlayers}}

		next, err := Apply(lobby, playerB, Start{})

		require.ErrorIs(t, err, apperror.ErrNotOwner)
		assert.Equal(t, lobby, next)
	})

	t.Run("Join only for the sender's own identity", func(t *testing.T) {
		lobby := NewLobby(playerA)

		next, err := Apply(lobby, playerB, Join{PlayerID: playerC})

		require.ErrorIs(t, err, apperror.ErrImpersonation)
		assert.Equal(t, lobby, next)
	})
}

func TestScenario_ThreePlayers(t *testing.T) {
	// Given: an empty lobby owned by A
	var state GameState = NewLobby(playerA)

	// When: A, B and C join and the owner starts
	for _, id := range []entity.PlayerID{playerA, playerB, playerC} {
		state = mustApply(t, state, id, Join{PlayerID: id})
	}
	state = mustApply(t, state, playerA, Start{})

	// Then: A to move on an empty board
	game, ok := state.(Playing)
	require.True(t, ok)
	assert.Equal(t, playerA, game.CurrentTurn)
	assert.Equal(t, entity.NewBoard(), game.Board)

	// When: A, B, C play the main diagonal
	state = mustApply(t, state, playerA, Move{Path: entity.Coord{X: 0, Y: 0, Z: 0}})
	state = mustApply(t, state, playerB, Move{Path: entity.Coord{X: 1, Y: 1, Z: 1}})
	state = mustApply(t, state, playerC, Move{Path: entity.Coord{X: 2, Y: 2, Z: 2}})

	// Then: the diagonal is split between three players, so A moves again
	game, ok = state.(Playing)
	require.True(t, ok)
	assert.Equal(t, playerA, game.CurrentTurn)

	// When: B re-sends C's last move out of turn
	next, err := Apply(state, playerB, Move{Path: entity.Coord{X: 2, Y: 2, Z: 2}})

	// Then: the state is unchanged
	require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	assert.Equal(t, state, next)
}
