package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/protocol"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport/websocket"
	"github.com/rocketscienceinc/cube-tictactoe/internal/usecase"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func startHost(t *testing.T, owner entity.PlayerID) (context.Context, *usecase.Authority, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	authority := usecase.NewAuthority(newLogger(), owner)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = authority.Run(ctx)
	}()

	ts := httptest.NewServer(New(newLogger(), authority).Handler())

	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
	})

	return ctx, authority, ts
}

func hostAddr(ts *httptest.Server) string {
	return strings.TrimPrefix(ts.URL, "http://")
}

func TestServer_Ping(t *testing.T) {
	_, _, ts := startHost(t, "A")

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestServer_RejectsSocketWithoutPlayer(t *testing.T) {
	_, _, ts := startHost(t, "A")

	resp, err := http.Get(ts.URL + websocket.Path)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_GuestsPlayOverWebsocket(t *testing.T) {
	ctx, authority, ts := startHost(t, "A")

	// Given: the host's own participant on an in-memory channel
	hostEnd, localEnd := transport.Pipe()
	go func() { _ = authority.Attach(ctx, "A", hostEnd) }()
	host := usecase.NewClient(newLogger(), "A", localEnd)
	go func() { _ = host.Run(ctx) }()
	require.Eventually(t, func() bool { return len(tictactoe.BaseOf(host.State()).Players) == 1 }, waitFor, tick)

	// When: a guest dials in as B
	ch, err := websocket.Dial(ctx, hostAddr(ts), "B")
	require.NoError(t, err)
	guest := usecase.NewClient(newLogger(), "B", ch)
	go func() { _ = guest.Run(ctx) }()

	// Then: both mirrors list A and B
	for _, client := range []*usecase.Client{host, guest} {
		require.Eventually(t, func() bool {
			return len(tictactoe.BaseOf(client.State()).Players) == 2
		}, waitFor, tick)
	}

	// When: the host starts and A moves
	require.NoError(t, host.Start(ctx))
	require.Eventually(t, host.IsMyTurn, waitFor, tick)
	require.NoError(t, host.Move(ctx, entity.Coord{X: 1, Y: 1, Z: 1}))

	// Then: the guest sees the move and its own turn
	require.Eventually(t, guest.IsMyTurn, waitFor, tick)
	cell := tictactoe.BoardOf(guest.State()).Cell(entity.Coord{X: 1, Y: 1, Z: 1})
	assert.Equal(t, entity.PlayerID("A"), cell.Player)

	// And: /state serves the same snapshot
	resp, err := http.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	state, err := protocol.DecodeState(body)
	require.NoError(t, err)
	assert.Equal(t, guest.State(), state)
	assert.Equal(t, "4", resp.Header.Get("X-State-Version"))
}

func TestServer_RunStopsWithContext(t *testing.T) {
	authority := usecase.NewAuthority(newLogger(), "A")
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(newLogger(), authority).Run(ctx, listener) }()

	require.Eventually(t, func() bool {
		resp, getErr := http.Get("http://" + listener.Addr().String() + "/ping")
		if getErr != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, waitFor, tick)

	cancel()

	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("server did not stop")
	}
}

func TestServer_RefusesGuestClaimingAnAttachedPlayer(t *testing.T) {
	ctx, authority, ts := startHost(t, "A")

	// Given: the host's own participant holds the owner id
	hostEnd, localEnd := transport.Pipe()
	go func() { _ = authority.Attach(ctx, "A", hostEnd) }()
	host := usecase.NewClient(newLogger(), "A", localEnd)
	go func() { _ = host.Run(ctx) }()
	require.Eventually(t, func() bool { return len(tictactoe.BaseOf(host.State()).Players) == 1 }, waitFor, tick)

	// When: a guest dials in under the owner's id
	ch, err := websocket.Dial(ctx, hostAddr(ts), "A")
	require.NoError(t, err)

	// Then: the socket is closed as a policy violation without a snapshot
	_, err = ch.Receive(ctx)
	require.Error(t, err)
	assert.Equal(t, cws.StatusPolicyViolation, cws.CloseStatus(err))

	// And: only the host's channel is attached
	view, err := authority.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Peers)
}
