package apperror

import "errors"

// Rejections of a message by the state machine. None of them change state.
var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrInvalidCell        = errors.New("invalid cell coordinate")
	ErrAlreadyJoined      = errors.New("player already joined")
	ErrLobbyFull          = errors.New("no colors left in the palette")
	ErrNoPlayers          = errors.New("game has no players")
)

// Authorization failures, decided against the identity bound to the channel.
var (
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrNotOwner      = errors.New("only the owner can start the game")
	ErrImpersonation = errors.New("player id does not match the sender")
)

// Wire errors.
var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrUnknownState   = errors.New("unknown state type")
)
