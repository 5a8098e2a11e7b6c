package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrClosed = errors.New("channel is closed")

// Channel is an ordered, reliable, bidirectional link between two endpoints.
// A Channel value is open once it exists. Receive blocks for the next frame;
// Send does not wait for the peer to process it.
type Channel interface {
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

const pipeBuffer = 16

type link struct {
	done chan struct{}
	once sync.Once
}

func (that *link) close() {
	that.once.Do(func() { close(that.done) })
}

type pipeEnd struct {
	link *link
	in   chan []byte
	out  chan []byte
}

// Pipe returns two connected in-memory endpoints. Closing either one closes
// both. The host uses it to play through the same path as remote guests.
func Pipe() (Channel, Channel) {
	shared := &link{done: make(chan struct{})}
	aToB := make(chan []byte, pipeBuffer)
	bToA := make(chan []byte, pipeBuffer)

	return &pipeEnd{link: shared, in: bToA, out: aToB}, &pipeEnd{link: shared, in: aToB, out: bToA}
}

func (that *pipeEnd) Send(ctx context.Context, data []byte) error {
	frame := append([]byte(nil), data...)

	select {
	case <-that.link.done:
		return ErrClosed
	default:
	}

	select {
	case that.out <- frame:
		return nil
	case <-that.link.done:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("failed to send frame: %w", ctx.Err())
	}
}

func (that *pipeEnd) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-that.in:
		return frame, nil
	case <-that.link.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to receive frame: %w", ctx.Err())
	}
}

func (that *pipeEnd) Close() error {
	that.link.close()
	return nil
}
