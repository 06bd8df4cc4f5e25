package openaicompat

import (
	"strings"
	"testing"

	"github.com/scenesmith/scenesmith/pkg/provider"
)

func collect(t *testing.T, input string) []provider.Event {
	t.Helper()
	ch := make(chan provider.Event, 64)
	go func() {
		defer close(ch)
		ParseSSEStream(strings.NewReader(input), ch)
	}()
	var events []provider.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestParseSSEStreamTextDeltas(t *testing.T) {
	input := `data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant","content":"Hello"},"finish_reason":null}]}

data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" world"},"finish_reason":null}]}

data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}

data: [DONE]

`
	events := collect(t, input)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != provider.EventTextDelta || events[0].Delta != "Hello" {
		t.Errorf("event 0: got %+v", events[0])
	}
	if events[1].Type != provider.EventTextDelta || events[1].Delta != " world" {
		t.Errorf("event 1: got %+v", events[1])
	}
	if events[2].Type != provider.EventDone {
		t.Errorf("event 2: expected done, got %+v", events[2])
	}
	if events[3].Type != provider.EventDone {
		t.Errorf("event 3: expected done from [DONE], got %+v", events[3])
	}
}

func TestParseSSEStreamToolCallFragments(t *testing.T) {
	input := `data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"generate_animation","arguments":""}}]},"finish_reason":null}]}

data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"co"}}]},"finish_reason":null}]}

data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"de\": \"x\"}"}}]},"finish_reason":null}]}

data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}

data: [DONE]

`
	events := collect(t, input)
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}

	first := events[0]
	if first.Type != provider.EventToolCallFragment {
		t.Fatalf("event 0: expected tool call fragment, got %+v", first)
	}
	if first.CallID != "call_1" || first.CallName != "generate_animation" {
		t.Errorf("first fragment should carry identity: %+v", first)
	}

	// Continuation fragments pass through without identity.
	for i, ev := range events[1:3] {
		if ev.Type != provider.EventToolCallFragment {
			t.Fatalf("event %d: expected fragment, got %+v", i+1, ev)
		}
		if ev.CallID != "" || ev.CallName != "" {
			t.Errorf("continuation fragment %d must not carry identity: %+v", i+1, ev)
		}
		if ev.Index != 0 {
			t.Errorf("fragment %d: expected index 0, got %d", i+1, ev.Index)
		}
	}
	if events[1].Delta != `{"co` {
		t.Errorf("fragment 1 delta: got %q", events[1].Delta)
	}
	if events[2].Delta != `de": "x"}` {
		t.Errorf("fragment 2 delta: got %q", events[2].Delta)
	}
}

func TestParseSSEStreamEOFWithoutDone(t *testing.T) {
	input := `data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"hi"},"finish_reason":null}]}

`
	events := collect(t, input)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Type != provider.EventDone {
		t.Errorf("stream ending without [DONE] should still emit done, got %+v", events[1])
	}
}

func TestParseSSEStreamSkipsMalformedChunks(t *testing.T) {
	input := `data: {not json}

data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"ok"},"finish_reason":null}]}

data: [DONE]

`
	events := collect(t, input)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != provider.EventTextDelta || events[0].Delta != "ok" {
		t.Errorf("event 0: got %+v", events[0])
	}
}

func TestTranslateToChat(t *testing.T) {
	req := &provider.Request{
		Model: "gpt-4o",
		Messages: []provider.Message{
			{Role: "system", Content: "You are helpful."},
			{Role: "user", Content: "animate a circle"},
			{Role: "assistant", ToolCalls: []provider.ToolCall{
				{ID: "call_1", Name: "generate_animation", Arguments: `{"code":"x"}`},
			}},
			{Role: "tool", Content: "done", ToolCallID: "call_1"},
		},
		Tools: []provider.Tool{
			{Name: "generate_animation", Description: "renders code"},
		},
	}

	chatReq := TranslateToChat(req)

	if !chatReq.Stream {
		t.Error("stream must be true")
	}
	if len(chatReq.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(chatReq.Messages))
	}

	assistant := chatReq.Messages[2]
	if assistant.Content != nil {
		t.Errorf("assistant tool-call message should have null content, got %q", *assistant.Content)
	}
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Type != "function" {
		t.Errorf("unexpected tool calls: %+v", assistant.ToolCalls)
	}

	toolMsg := chatReq.Messages[3]
	if toolMsg.ToolCallID != "call_1" {
		t.Errorf("tool message must reference the call id, got %q", toolMsg.ToolCallID)
	}
	if toolMsg.Content == nil || *toolMsg.Content != "done" {
		t.Errorf("tool message content: %+v", toolMsg.Content)
	}

	if len(chatReq.Tools) != 1 || chatReq.Tools[0].Function.Name != "generate_animation" {
		t.Errorf("unexpected tools: %+v", chatReq.Tools)
	}
}
