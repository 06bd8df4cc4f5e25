package transport

import (
	"context"
	"fmt"

	"github.com/scenesmith/scenesmith/pkg/api"
	"github.com/scenesmith/scenesmith/pkg/relay"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to server errors. The server continues to accept new
// requests after a panic is recovered.
func Recovery() Middleware {
	return func(next StreamCreator) StreamCreator {
		return StreamCreatorFunc(func(ctx context.Context, req *api.ChatRequest, rly relay.Relay) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.CreateStream(ctx, req, rly)
		})
	}
}
