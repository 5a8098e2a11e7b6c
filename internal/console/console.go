package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
)

// ErrQuit is returned by Run when the user asked to leave.
var ErrQuit = errors.New("quit requested")

// Player is the side of a participant the console drives.
type Player interface {
	Self() entity.PlayerID
	State() tictactoe.GameState
	Updates() <-chan struct{}
	IsOwner() bool
	IsMyTurn() bool
	Start(ctx context.Context) error
	Move(ctx context.Context, coord entity.Coord) error
}

type Console struct {
	logger *slog.Logger
	player Player
	in     io.Reader
	out    io.Writer
}

func New(logger *slog.Logger, player Player, in io.Reader, out io.Writer) *Console {
	return &Console{
		logger: logger.With("component", "console"),
		player: player,
		in:     in,
		out:    out,
	}
}

// Run redraws on every state change and executes commands read from the
// input until the user quits or ctx is canceled.
func (that *Console) Run(ctx context.Context) error {
	input := make(chan string)
	go that.scan(ctx, input)

	var lines <-chan string = input

	that.render()
	that.info(helpText)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-that.player.Updates():
			that.render()

		case line, ok := <-lines:
			// a closed input leaves the console as a passive display
			if !ok {
				lines = nil
				continue
			}

			if err := that.execute(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (that *Console) scan(ctx context.Context, lines chan<- string) {
	defer close(lines)

	scanner := bufio.NewScanner(that.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		that.logger.Warn("failed to read input", "error", err)
	}
}

func (that *Console) execute(ctx context.Context, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		that.warn(err.Error())
		return nil
	}

	switch cmd := cmd.(type) {
	case QuitCommand:
		return ErrQuit

	case HelpCommand:
		that.info(helpText)

	case StartCommand:
		if !that.player.IsOwner() {
			that.warn("only the owner can start the game")
			return nil
		}
		if err = that.player.Start(ctx); err != nil {
			return fmt.Errorf("failed to send start: %w", err)
		}

	case MoveCommand:
		if !that.player.IsMyTurn() {
			that.warn("it is not your turn")
			return nil
		}
		if err = that.player.Move(ctx, cmd.Coord); err != nil {
			return fmt.Errorf("failed to send move: %w", err)
		}
	}

	return nil
}

func (that *Console) render() {
	pterm.Fprintln(that.out, Render(that.player.State(), that.player.Self()))
}

func (that *Console) info(text string) {
	pterm.Info.WithWriter(that.out).Println(text)
}

func (that *Console) warn(text string) {
	pterm.Warning.WithWriter(that.out).Println(text)
}
