package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/protocol"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport"
)

func receiveMessage(t *testing.T, ctx context.Context, host transport.Channel) tictactoe.Message {
	t.Helper()

	data, err := host.Receive(ctx)
	require.NoError(t, err)
	msg, err := protocol.DecodeMessage(data)
	require.NoError(t, err)

	return msg
}

func sendState(t *testing.T, ctx context.Context, host transport.Channel, state tictactoe.GameState) {
	t.Helper()

	data, err := protocol.EncodeState(state)
	require.NoError(t, err)
	require.NoError(t, host.Send(ctx, data))
}

func TestClient(t *testing.T) {
	t.Run("Starts from an empty lobby and joins on connect", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		host, guest := transport.Pipe()

		// Given: a client before any broadcast
		client := NewClient(newLogger(), playerB, guest)

		// Then: its mirror is a lobby with nobody in it
		assert.Equal(t, tictactoe.Lobby{}, client.State())
		assert.False(t, client.IsMyTurn())

		// When: it runs
		go func() { _ = client.Run(ctx) }()

		// Then: the host receives its join
		assert.Equal(t, tictactoe.Join{PlayerID: playerB}, receiveMessage(t, ctx, host))
	})

	t.Run("Replaces the mirror with every broadcast", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		host, guest := transport.Pipe()
		client := NewClient(newLogger(), playerB, guest)
		go func() { _ = client.Run(ctx) }()
		receiveMessage(t, ctx, host)

		// When: the host broadcasts a game where it is B's turn
		game := tictactoe.Playing{
			Base: tictactoe.Base{Owner: playerA, Players: []entity.Player{
				{ID: playerA, Color: entity.ColorRed},
				{ID: playerB, Color: entity.ColorBlue},
			}},
			Board:       entity.NewBoard(),
			CurrentTurn: playerB,
		}
		sendState(t, ctx, host, game)

		// Then: the mirror is exactly that state and an update is signaled
		<-client.Updates()
		assert.Equal(t, game, client.State())
		assert.True(t, client.IsMyTurn())
		assert.False(t, client.IsOwner())
	})

	t.Run("Ignores frames that are not a state", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		host, guest := transport.Pipe()
		client := NewClient(newLogger(), playerA, guest)
		go func() { _ = client.Run(ctx) }()
		receiveMessage(t, ctx, host)

		// When: garbage arrives followed by a lobby owned by A
		require.NoError(t, host.Send(ctx, []byte(`{"type":"gibberish"}`)))
		lobby := tictactoe.NewLobby(playerA)
		sendState(t, ctx, host, lobby)

		// Then: only the lobby lands in the mirror
		waitState(t, client, func(s tictactoe.GameState) bool { return tictactoe.BaseOf(s).Owner == playerA })
		assert.Equal(t, lobby, client.State())
		assert.True(t, client.IsOwner())
	})

	t.Run("Forwards start and move without touching the mirror", func(t *testing.T) {
		ctx := context.Background()
		host, guest := transport.Pipe()
		client := NewClient(newLogger(), playerA, guest)

		// When: the user starts and moves
		require.NoError(t, client.Start(ctx))
		require.NoError(t, client.Move(ctx, entity.Coord{X: 2, Y: 1, Z: 0}))

		// Then: both intents reach the host in order and the mirror is unchanged
		assert.Equal(t, tictactoe.Start{}, receiveMessage(t, ctx, host))
		assert.Equal(t, tictactoe.Move{Path: entity.Coord{X: 2, Y: 1, Z: 0}}, receiveMessage(t, ctx, host))
		assert.Equal(t, tictactoe.Lobby{}, client.State())
	})

	t.Run("Run returns cleanly when the host goes away", func(t *testing.T) {
		ctx := context.Background()
		host, guest := transport.Pipe()
		client := NewClient(newLogger(), playerA, guest)

		done := make(chan error, 1)
		go func() { done <- client.Run(ctx) }()
		receiveMessage(t, ctx, host)

		require.NoError(t, host.Close())

		assert.NoError(t, <-done)
	})
}
