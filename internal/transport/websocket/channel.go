package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"

	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport"
)

const (
	// PlayerParam carries the identity a guest connects as.
	PlayerParam = "player"
	Path        = "/ws"

	writeTimeout = 5 * time.Second
	readLimit    = 64 << 10
)

var ErrMissingPlayer = errors.New("missing player id")

// Channel adapts a websocket connection to transport.Channel. Each frame is
// one text message.
type Channel struct {
	conn *websocket.Conn
}

func newChannel(conn *websocket.Conn) *Channel {
	conn.SetReadLimit(readLimit)

	return &Channel{conn: conn}
}

// Accept upgrades an HTTP request from a guest and returns the identity it
// connected as.
func Accept(writer http.ResponseWriter, req *http.Request) (*Channel, entity.PlayerID, error) {
	player := entity.PlayerID(req.URL.Query().Get(PlayerParam))
	if player == "" {
		http.Error(writer, ErrMissingPlayer.Error(), http.StatusBadRequest)
		return nil, "", ErrMissingPlayer
	}

	conn, err := websocket.Accept(writer, req, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to accept websocket: %w", err)
	}

	return newChannel(conn), player, nil
}

// Dial connects to the host at addr (host:port) as player.
func Dial(ctx context.Context, addr string, player entity.PlayerID) (*Channel, error) {
	target := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     Path,
		RawQuery: url.Values{PlayerParam: {string(player)}}.Encode(),
	}

	conn, _, err := websocket.Dial(ctx, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target.String(), err)
	}

	return newChannel(conn), nil
}

func (that *Channel) Send(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := that.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", closed(err))
	}

	return nil
}

func (that *Channel) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := that.conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", closed(err))
	}

	return data, nil
}

func (that *Channel) Close() error {
	if err := that.conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		return fmt.Errorf("failed to close websocket: %w", err)
	}

	return nil
}

// Reject closes a connection the host refuses to serve.
func (that *Channel) Reject(reason string) error {
	if err := that.conn.Close(websocket.StatusPolicyViolation, reason); err != nil {
		return fmt.Errorf("failed to reject websocket: %w", err)
	}

	return nil
}

// closed maps a clean close from the peer to transport.ErrClosed.
func closed(err error) error {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return transport.ErrClosed
	default:
		return err
	}
}
