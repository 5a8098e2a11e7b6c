package tictactoe

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/cube-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
)

type result struct {
	state GameState
	err   error
}

func accept(state GameState) result {
	return result{state: state}
}

func reject(state GameState, err error) result {
	return result{state: state, err: err}
}

// Transition applies msg to state. It never mutates its input: on success it
// returns a new state, on rejection it returns state itself with the reason.
// It does not know who sent msg; call Authorize first.
func Transition(state GameState, msg Message) (GameState, error) {
	res := Fold(state,
		func(s Lobby) result { return inLobby(s, msg) },
		func(s Playing) result { return inPlaying(s, msg) },
		func(s Ended) result { return reject(s, apperror.ErrGameFinished) },
	)

	return res.state, res.err
}

func inLobby(lobby Lobby, msg Message) result {
	return FoldMessage(msg,
		func(m Join) result { return join(lobby, m.PlayerID) },
		func(Start) result { return start(lobby) },
		func(Move) result { return reject(lobby, apperror.ErrGameIsNotStarted) },
	)
}

func inPlaying(game Playing, msg Message) result {
	return FoldMessage(msg,
		func(Join) result { return reject(game, apperror.ErrGameAlreadyStarted) },
		func(Start) result { return reject(game, apperror.ErrGameAlreadyStarted) },
		func(m Move) result { return move(game, m.Path) },
	)
}

func join(lobby Lobby, id entity.PlayerID) result {
	if entity.IndexOf(lobby.Players, id) >= 0 {
		return reject(lobby, fmt.Errorf("%w: %s", apperror.ErrAlreadyJoined, id))
	}

	if len(lobby.Players) >= entity.MaxPlayers {
		return reject(lobby, apperror.ErrLobbyFull)
	}

	players := append(slices.Clone(lobby.Players), entity.Player{
		ID:    id,
		Color: entity.Palette[len(lobby.Players)],
	})

	return accept(Lobby{Base: Base{Owner: lobby.Owner, Players: players}})
}

func start(lobby Lobby) result {
	if len(lobby.Players) == 0 {
		return reject(lobby, apperror.ErrNoPlayers)
	}

	return accept(Playing{
		Base:        lobby.Base,
		Board:       entity.NewBoard(),
		CurrentTurn: lobby.Players[0].ID,
	})
}

// move places for the current player. An occupied cell leaves the game as it
// was, with the same player still to move.
func move(game Playing, path entity.Coord) result {
	board, err := game.Board.Place(path, game.CurrentTurn)
	if err != nil {
		return reject(game, err)
	}

	if line, ok := board.FindWinningLine(); ok {
		winner := winnerOf(board, line, path, game.CurrentTurn)

		return accept(Ended{Base: game.Base, Board: board, Winner: &winner, Line: &line})
	}

	if board.IsTied() {
		return accept(Ended{Base: game.Base, Board: board})
	}

	return accept(Playing{
		Base:        game.Base,
		Board:       board,
		CurrentTurn: nextTurn(game.Players, game.CurrentTurn),
	})
}

// winnerOf checks that the line just completed belongs to the mover. Any
// other owner means the previous state already held a win, which Transition
// can never produce.
func winnerOf(board entity.Board, line entity.WinningLine, path entity.Coord, mover entity.PlayerID) entity.PlayerID {
	owner := board.Cell(line[0]).Player
	if owner != mover || board.Cell(path).Player != mover {
		panic(fmt.Sprintf("tictactoe: line %v owned by %q after a move by %q", line, owner, mover))
	}

	return mover
}

func nextTurn(players []entity.Player, current entity.PlayerID) entity.PlayerID {
	idx := entity.IndexOf(players, current)

	return players[(idx+1)%len(players)].ID
}
