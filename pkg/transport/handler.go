package transport

import (
	"context"

	"github.com/scenesmith/scenesmith/pkg/api"
	"github.com/scenesmith/scenesmith/pkg/relay"
)

// StreamCreator runs one chat request, publishing events to the relay
// until a terminal event. The implementation must leave the relay in a
// terminal state on every path; the returned error is for transport
// logging only and is never sent to the client as a second terminal.
type StreamCreator interface {
	CreateStream(ctx context.Context, req *api.ChatRequest, rly relay.Relay) error
}

// StreamCreatorFunc is an adapter that allows using an ordinary function
// as a StreamCreator.
type StreamCreatorFunc func(ctx context.Context, req *api.ChatRequest, rly relay.Relay) error

// CreateStream calls f(ctx, req, rly).
func (f StreamCreatorFunc) CreateStream(ctx context.Context, req *api.ChatRequest, rly relay.Relay) error {
	return f(ctx, req, rly)
}
