// Package api defines the public wire types of the scenesmith service:
// the chat request, the outbound event stream vocabulary, and the error
// envelope returned for rejected requests.
//
// The package has zero external dependencies (Go standard library only)
// and performs no I/O.
//
// Events are named SSE events with a JSON payload. A stream always ends
// with exactly one terminal event, either "done" or "error"; no event
// follows the terminal one.
package api
