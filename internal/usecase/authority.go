package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/cube-tictactoe/internal/entity"
	"github.com/rocketscienceinc/cube-tictactoe/internal/protocol"
	"github.com/rocketscienceinc/cube-tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/cube-tictactoe/internal/transport"
)

var (
	ErrAuthorityStopped = errors.New("authority is not running")
	ErrAlreadyAttached  = errors.New("player already has a live channel")
)

const (
	defaultOutboxSize = 8
	defaultRateLimit  = 20
	defaultRateBurst  = 40
)

// View is a read-only look at the authoritative state.
type View struct {
	Version int
	Peers   int
	State   tictactoe.GameState
}

type authorityMsg interface{ isAuthorityMsg() }

type attachPeer struct {
	peer  *peer
	reply chan error
}

type detachPeer struct{ peer *peer }

type inbound struct {
	sender entity.PlayerID
	msg    tictactoe.Message
}

type getView struct{ reply chan View }

func (attachPeer) isAuthorityMsg() {}
func (detachPeer) isAuthorityMsg() {}
func (inbound) isAuthorityMsg()    {}
func (getView) isAuthorityMsg()    {}

type peer struct {
	id     entity.PlayerID
	outbox chan []byte
}

type AuthorityOption func(*Authority)

// WithRateLimit throttles frames read from each channel.
func WithRateLimit(perSecond float64, burst int) AuthorityOption {
	return func(that *Authority) {
		that.limit = rate.Limit(perSecond)
		that.burst = burst
	}
}

// WithOutboxSize sets how many snapshots may queue for a slow peer before the
// oldest one is dropped.
func WithOutboxSize(size int) AuthorityOption {
	return func(that *Authority) {
		that.outboxSize = size
	}
}

// WithObserver is called from the apply loop after every accepted message.
func WithObserver(observer func(View)) AuthorityOption {
	return func(that *Authority) {
		that.observer = observer
	}
}

// Authority owns the only writable game state of a session. Messages from all
// channels are applied one at a time by Run, and each accepted transition is
// broadcast in full to every attached channel.
type Authority struct {
	logger *slog.Logger

	inbox chan authorityMsg
	done  chan struct{}

	limit      rate.Limit
	burst      int
	outboxSize int
	observer   func(View)

	// owned by Run
	state   tictactoe.GameState
	version int
	peers   map[*peer]struct{}
}

func NewAuthority(logger *slog.Logger, owner entity.PlayerID, opts ...AuthorityOption) *Authority {
	that := &Authority{
		logger: logger.With("component", "authority"),

		inbox: make(chan authorityMsg, 64),
		done:  make(chan struct{}),

		limit:      defaultRateLimit,
		burst:      defaultRateBurst,
		outboxSize: defaultOutboxSize,

		state: tictactoe.NewLobby(owner),
		peers: make(map[*peer]struct{}),
	}

	for _, opt := range opts {
		opt(that)
	}

	return that
}

// Run processes the inbox until ctx is canceled. It must be called once.
func (that *Authority) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")
	defer that.drain()
	defer close(that.done)
	defer that.shutdown()

	log.Info("authority started", "owner", tictactoe.BaseOf(that.state).Owner)

	for {
		select {
		case <-ctx.Done():
			log.Info("authority stopped")
			return nil

		case m := <-that.inbox:
			switch msg := m.(type) {
			case attachPeer:
				msg.reply <- that.attach(msg.peer)

			case detachPeer:
				if _, ok := that.peers[msg.peer]; ok {
					delete(that.peers, msg.peer)
					close(msg.peer.outbox)
				}

			case inbound:
				that.apply(msg.sender, msg.msg)

			case getView:
				msg.reply <- that.view()
			}
		}
	}
}

// attach admits p unless its player already has a live channel.
func (that *Authority) attach(p *peer) error {
	for other := range that.peers {
		if other.id == p.id {
			that.logger.Warn("refused second channel", "method", "attach", "peer", p.id)
			return ErrAlreadyAttached
		}
	}

	that.peers[p] = struct{}{}
	that.sendCurrent(p)

	return nil
}

func (that *Authority) apply(sender entity.PlayerID, msg tictactoe.Message) {
	log := that.logger.With("method", "apply", "sender", sender)

	next, err := tictactoe.Apply(that.state, sender, msg)
	if err != nil {
		log.Debug("message dropped", "message", fmt.Sprintf("%T", msg), "error", err)
		return
	}

	that.state = next
	that.version++

	if that.observer != nil {
		that.observer(that.view())
	}

	that.broadcast()
}

func (that *Authority) view() View {
	return View{Version: that.version, Peers: len(that.peers), State: that.state}
}

func (that *Authority) encodeState() ([]byte, bool) {
	frame, err := protocol.EncodeState(that.state)
	if err != nil {
		that.logger.Error("failed to encode state", "error", err)
		return nil, false
	}

	return frame, true
}

func (that *Authority) sendCurrent(p *peer) {
	if frame, ok := that.encodeState(); ok {
		that.enqueue(p, frame)
	}
}

func (that *Authority) broadcast() {
	frame, ok := that.encodeState()
	if !ok {
		return
	}

	for p := range that.peers {
		that.enqueue(p, frame)
	}
}

// enqueue never blocks the apply loop. A full outbox loses its oldest
// snapshot; the newest one always supersedes it.
func (that *Authority) enqueue(p *peer, frame []byte) {
	select {
	case p.outbox <- frame:
		return
	default:
	}

	that.logger.Warn("peer is slow, dropping stale snapshot", "peer", p.id)

	select {
	case <-p.outbox:
	default:
	}

	select {
	case p.outbox <- frame:
	default:
	}
}

func (that *Authority) shutdown() {
	for p := range that.peers {
		close(p.outbox)
		delete(that.peers, p)
	}
}

// drain answers attaches that were queued after the loop stopped.
func (that *Authority) drain() {
	for {
		select {
		case m := <-that.inbox:
			if msg, ok := m.(attachPeer); ok {
				msg.reply <- ErrAuthorityStopped
			}
		default:
			return
		}
	}
}

func (that *Authority) post(ctx context.Context, msg authorityMsg) error {
	select {
	case <-that.done:
		return ErrAuthorityStopped
	default:
	}

	select {
	case that.inbox <- msg:
		return nil
	case <-that.done:
		return ErrAuthorityStopped
	case <-ctx.Done():
		return fmt.Errorf("failed to post to authority: %w", ctx.Err())
	}
}

// View returns the current authoritative state.
func (that *Authority) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := that.post(ctx, getView{reply: reply}); err != nil {
		return View{}, err
	}

	select {
	case view := <-reply:
		return view, nil
	case <-that.done:
		return View{}, ErrAuthorityStopped
	case <-ctx.Done():
		return View{}, fmt.Errorf("failed to get view: %w", ctx.Err())
	}
}

// Session is a channel admitted by the authority and not yet served.
type Session struct {
	authority *Authority
	peer      *peer
	ch        transport.Channel
}

// Connect admits ch as the channel of player id. A player has at most one
// live channel; a second one is refused with ErrAlreadyAttached. On error ch
// is left open for the caller to close.
func (that *Authority) Connect(ctx context.Context, id entity.PlayerID, ch transport.Channel) (*Session, error) {
	p := &peer{id: id, outbox: make(chan []byte, that.outboxSize)}
	reply := make(chan error, 1)

	if err := that.post(ctx, attachPeer{peer: p, reply: reply}); err != nil {
		return nil, err
	}

	select {
	case err := <-reply:
		if err != nil {
			return nil, err
		}
	case <-that.done:
		return nil, ErrAuthorityStopped
	case <-ctx.Done():
		// the attach may have been applied already
		_ = that.post(context.Background(), detachPeer{peer: p})
		return nil, fmt.Errorf("failed to attach %s: %w", id, ctx.Err())
	}

	return &Session{authority: that, peer: p, ch: ch}, nil
}

// Attach connects ch as id and serves it. It closes ch before returning.
func (that *Authority) Attach(ctx context.Context, id entity.PlayerID, ch transport.Channel) error {
	session, err := that.Connect(ctx, id, ch)
	if err != nil {
		if closeErr := ch.Close(); closeErr != nil {
			that.logger.Debug("failed to close channel", "method", "Attach", "peer", id, "error", closeErr)
		}
		return err
	}

	return session.Serve(ctx)
}

// Serve relays the session until the channel fails, the peer disconnects or
// ctx is canceled. The peer first receives the current state, then every
// accepted transition. Serve closes the channel before returning. Leaving
// does not remove the player from the game.
func (that *Session) Serve(ctx context.Context) error {
	authority, p, ch := that.authority, that.peer, that.ch
	log := authority.logger.With("method", "Serve", "peer", p.id)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		if err := ch.Close(); err != nil {
			log.Debug("failed to close channel", "error", err)
		}
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		authority.write(ctx, cancel, p, ch)
	}()

	log.Info("peer attached")

	err := authority.read(ctx, p, ch)

	cancel()
	<-writerDone
	_ = authority.post(context.Background(), detachPeer{peer: p})

	log.Info("peer detached")

	return err
}

func (that *Authority) write(ctx context.Context, cancel context.CancelFunc, p *peer, ch transport.Channel) {
	log := that.logger.With("method", "write", "peer", p.id)

	for {
		select {
		case <-ctx.Done():
			return

		case frame, ok := <-p.outbox:
			// closed by the authority on shutdown
			if !ok {
				cancel()
				return
			}

			if err := ch.Send(ctx, frame); err != nil {
				if ctx.Err() == nil && !errors.Is(err, transport.ErrClosed) {
					log.Warn("failed to send snapshot", "error", err)
				}
				cancel()
				return
			}
		}
	}
}

func (that *Authority) read(ctx context.Context, p *peer, ch transport.Channel) error {
	log := that.logger.With("method", "read", "peer", p.id)
	limiter := rate.NewLimiter(that.limit, that.burst)

	for {
		data, err := ch.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to receive from %s: %w", p.id, err)
		}

		if !limiter.Allow() {
			log.Warn("rate limit exceeded, frame dropped")
			continue
		}

		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			log.Warn("malformed frame dropped", "error", err)
			continue
		}

		if err = that.post(ctx, inbound{sender: p.id, msg: msg}); err != nil {
			if errors.Is(err, ErrAuthorityStopped) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
