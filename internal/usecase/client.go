package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/protocol"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport"
)

type mirror struct {
	state tictactoe.GameState
}

// Client keeps a read-only copy of the host's state and forwards the user's
// intents to the host. It never runs a transition itself.
type Client struct {
	logger *slog.Logger
	self   entity.PlayerID
	ch     transport.Channel

	mirror  atomic.Pointer[mirror]
	updates chan struct{}
}

func NewClient(logger *slog.Logger, self entity.PlayerID, ch transport.Channel) *Client {
	that := &Client{
		logger:  logger.With("component", "client", "self", self),
		self:    self,
		ch:      ch,
		updates: make(chan struct{}, 1),
	}
	that.mirror.Store(&mirror{state: tictactoe.Lobby{}})

	return that
}

// Run joins the game and then mirrors every state the host broadcasts, until
// the channel closes or ctx is canceled.
func (that *Client) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	if err := that.send(ctx, tictactoe.Join{PlayerID: that.self}); err != nil {
		return fmt.Errorf("failed to join: %w", err)
	}

	for {
		data, err := that.ch.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to receive state: %w", err)
		}

		state, err := protocol.DecodeState(data)
		if err != nil {
			log.Warn("ignoring undecodable state", "error", err)
			continue
		}

		that.mirror.Store(&mirror{state: state})
		that.notify()
	}
}

func (that *Client) notify() {
	select {
	case that.updates <- struct{}{}:
	default:
	}
}

// Updates signals that State changed. Signals coalesce; read State for the
// latest value.
func (that *Client) Updates() <-chan struct{} {
	return that.updates
}

func (that *Client) State() tictactoe.GameState {
	return that.mirror.Load().state
}

func (that *Client) Self() entity.PlayerID {
	return that.self
}

func (that *Client) IsOwner() bool {
	return tictactoe.BaseOf(that.State()).Owner == that.self
}

func (that *Client) IsMyTurn() bool {
	game, ok := that.State().(tictactoe.Playing)
	return ok && game.CurrentTurn == that.self
}

// Start asks the host to start the game. There is no acknowledgement: the
// next broadcast shows whether it was accepted.
func (that *Client) Start(ctx context.Context) error {
	return that.send(ctx, tictactoe.Start{})
}

// Move asks the host to place at coord for this player.
func (that *Client) Move(ctx context.Context, coord entity.Coord) error {
	return that.send(ctx, tictactoe.Move{Path: coord})
}

func (that *Client) Close() error {
	return that.ch.Close()
}

func (that *Client) send(ctx context.Context, msg tictactoe.Message) error {
	data, err := protocol.EncodeMessage(msg)
	if err != nil {
		return err
	}

	if err = that.ch.Send(ctx, data); err != nil {
		return fmt.Errorf("failed to send %T: %w", msg, err)
	}

	return nil
}
