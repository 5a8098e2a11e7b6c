package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/cube-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage: move <x> <y> <z>")
)

// Command is what the user typed. The set of commands is closed.
type Command interface{ isCommand() }

type StartCommand struct{}

type MoveCommand struct {
	Coord entity.Coord
}

type QuitCommand struct{}

type HelpCommand struct{}

func (StartCommand) isCommand() {}
func (MoveCommand) isCommand()  {}
func (QuitCommand) isCommand()  {}
func (HelpCommand) isCommand()  {}

const helpText = `commands:
  start          begin the game (owner only)
  move x y z     claim a cell, each coordinate 0..2
  help           show this text
  quit           leave`

// ParseCommand reads one line of input.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, ErrUnknownCommand
	}

	switch fields[0] {
	case "start", "s":
		return StartCommand{}, nil
	case "quit", "exit", "q":
		return QuitCommand{}, nil
	case "help", "h", "?":
		return HelpCommand{}, nil
	case "move", "m":
		return parseMove(fields[1:])
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

func parseMove(args []string) (Command, error) {
	if len(args) != 3 {
		return nil, ErrUsage
	}

	var xyz [3]int
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrUsage, arg)
		}
		xyz[i] = n
	}

	coord := entity.Coord{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	if !coord.Valid() {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidCell, coord)
	}

	return MoveCommand{Coord: coord}, nil
}
