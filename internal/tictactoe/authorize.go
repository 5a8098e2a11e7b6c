package tictactoe

import (
	"github.com/rocketscienceinc/cube-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
)

// Authorize decides whether sender may submit msg in state. Only identity is
// checked here; whether msg fits the state is left to Transition.
func Authorize(state GameState, sender entity.PlayerID, msg Message) error {
	return FoldMessage(msg,
		func(m Join) error {
			if m.PlayerID != sender {
				return apperror.ErrImpersonation
			}
			return nil
		},
		func(Start) error {
			if BaseOf(state).Owner != sender {
				return apperror.ErrNotOwner
			}
			return nil
		},
		func(Move) error {
			game, ok := state.(Playing)
			if ok && game.CurrentTurn != sender {
				return apperror.ErrNotYourTurn
			}
			return nil
		},
	)
}

// Apply authorizes and transitions in one step.
func Apply(state GameState, sender entity.PlayerID, msg Message) (GameState, error) {
	if err := Authorize(state, sender, msg); err != nil {
		return state, err
	}

	return Transition(state, msg)
}
