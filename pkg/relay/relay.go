// Package relay delivers the ordered outbound event stream of one chat
// request. A Relay accepts events from all producers of the request (the
// generation loop, the render runner) and preserves each producer's
// emission order. It performs no buffering, batching, or coalescing: each
// Publish hands exactly one discrete event to the sink.
//
// A terminal event (done or error) closes the relay; any later Publish
// fails with ErrClosed.
package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/scenesmith/scenesmith/pkg/api"
)

// ErrClosed is returned by Publish after a terminal event has been sent.
var ErrClosed = errors.New("relay: stream closed")

// Relay is the sink for one request's outbound event stream.
// Implementations must be safe for concurrent use; the serialization of
// concurrent publishers is the relay's only ordering responsibility.
type Relay interface {
	// Publish sends one event. Publishing a terminal event closes the
	// relay. Returns ErrClosed once the relay is closed.
	Publish(ctx context.Context, ev api.Event) error
}

// Sink receives serialized events from a sinkRelay. The typical
// implementation writes SSE frames to an HTTP response.
type Sink interface {
	Send(ctx context.Context, ev api.Event) error
}

// sinkRelay enforces the terminal-event discipline in front of a Sink.
type sinkRelay struct {
	sink Sink

	mu     sync.Mutex
	closed bool
}

// New wraps a Sink in a Relay that serializes publishers and rejects
// events after the terminal one.
func New(sink Sink) Relay {
	return &sinkRelay{sink: sink}
}

func (r *sinkRelay) Publish(ctx context.Context, ev api.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if err := r.sink.Send(ctx, ev); err != nil {
		return err
	}
	if ev.Name.IsTerminal() {
		r.closed = true
	}
	return nil
}

// Buffer is an in-memory Relay that records published events in order.
// Used in tests and anywhere a stream must be inspected after the fact.
type Buffer struct {
	mu     sync.Mutex
	events []api.Event
	closed bool
}

// NewBuffer creates an empty recording relay.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Publish appends the event, closing the buffer on a terminal event.
func (b *Buffer) Publish(_ context.Context, ev api.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.events = append(b.events, ev)
	if ev.Name.IsTerminal() {
		b.closed = true
	}
	return nil
}

// Events returns a copy of everything published so far.
func (b *Buffer) Events() []api.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]api.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Closed reports whether a terminal event has been published.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
