package openaicompat

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/scenesmith/scenesmith/pkg/provider"
)

// ParseSSEStream reads an SSE stream of Chat Completions chunks from r and
// translates each into provider events sent on ch. Tool-call fragments are
// passed through untouched: the backend sets the call id and function name
// only on a call's first chunk, and downstream accumulation resolves
// continuations by index.
func ParseSSEStream(r io.Reader, ch chan<- provider.Event) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			ch <- provider.Event{Type: provider.EventDone}
			return
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks rather than aborting the stream.
			continue
		}

		for _, ev := range TranslateChunk(&chunk) {
			ch <- ev
		}
	}

	if err := scanner.Err(); err != nil {
		ch <- provider.Event{Type: provider.EventError, Err: err}
		return
	}

	// Stream ended without [DONE]. Treat as a normal completion so a
	// backend that closes the connection after the final chunk still
	// terminates the turn.
	ch <- provider.Event{Type: provider.EventDone}
}

// TranslateChunk converts a single Chat Completions chunk into zero or more
// provider events.
func TranslateChunk(chunk *ChatCompletionChunk) []provider.Event {
	var events []provider.Event

	for _, choice := range chunk.Choices {
		if choice.Delta.Content != nil && *choice.Delta.Content != "" {
			events = append(events, provider.Event{
				Type:  provider.EventTextDelta,
				Delta: *choice.Delta.Content,
			})
		}

		for _, tc := range choice.Delta.ToolCalls {
			events = append(events, provider.Event{
				Type:     provider.EventToolCallFragment,
				Index:    tc.Index,
				CallID:   tc.ID,
				CallName: tc.Function.Name,
				Delta:    tc.Function.Arguments,
			})
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			events = append(events, provider.Event{
				Type: provider.EventDone,
			})
		}
	}

	return events
}
