package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/scenesmith/scenesmith/pkg/api"
)

func TestRenderFlow(t *testing.T) {
	events := postChat(t, "Animate a circle morphing into a square")

	// Argument deltas stream before the turn's message event.
	var argDeltas []api.ToolCallArgDeltaPayload
	i := 0
	for ; i < len(events) && events[i].Name == string(api.EventToolCallArgDelta); i++ {
		var p api.ToolCallArgDeltaPayload
		decodePayload(t, events[i], &p)
		argDeltas = append(argDeltas, p)
	}
	if len(argDeltas) == 0 {
		t.Fatalf("no tool-call-arg-delta events, got %v", eventNames(events))
	}
	last := argDeltas[len(argDeltas)-1]
	if last.Value != sceneSource {
		t.Errorf("final arg delta = %q, want full scene source", last.Value)
	}
	if last.ToolCallID != "call_itest_0" || last.ToolName != "generate_animation" || last.ArgName != "code" {
		t.Errorf("arg delta identity = %+v", last)
	}

	rest := events[i:]
	if len(rest) < 7 {
		t.Fatalf("too few events after arg deltas: %v", eventNames(rest))
	}

	if rest[0].Name != string(api.EventMessage) {
		t.Fatalf("event after deltas = %s, want message", rest[0].Name)
	}
	var msg api.MessagePayload
	decodePayload(t, rest[0], &msg)
	if msg.Role != "assistant" || len(msg.ToolCalls) != 1 {
		t.Errorf("assistant message = %+v, want one tool call", msg)
	}

	if rest[1].Name != string(api.EventCode) {
		t.Fatalf("event = %s, want code", rest[1].Name)
	}
	var code api.CodePayload
	decodePayload(t, rest[1], &code)
	if code.Code != sceneSource || code.ToolCallID != "call_itest_0" {
		t.Errorf("code payload = %+v", code)
	}

	var statuses []api.NotificationStatus
	j := 2
	for ; j < len(rest) && rest[j].Name == string(api.EventNotification); j++ {
		var n api.NotificationPayload
		decodePayload(t, rest[j], &n)
		statuses = append(statuses, n.Status)
	}
	if len(statuses) < 2 || statuses[0] != api.StatusStarted || statuses[len(statuses)-1] != api.StatusCompleted {
		t.Errorf("notification statuses = %v, want started..completed", statuses)
	}

	if rest[j].Name != string(api.EventArtifactURL) {
		t.Fatalf("event = %s, want artifact-url", rest[j].Name)
	}
	var artifact api.ArtifactURLPayload
	decodePayload(t, rest[j], &artifact)
	if !strings.HasPrefix(artifact.URL, "/v1/videos/") || !strings.HasSuffix(artifact.URL, "/MockScene.mp4") {
		t.Errorf("artifact URL = %q", artifact.URL)
	}

	// Closing turn: streamed text, its message, then done.
	tail := rest[j+1:]
	names := eventNames(tail)
	if len(names) < 3 || names[0] != string(api.EventTextDelta) {
		t.Fatalf("closing turn events = %v", names)
	}
	if names[len(names)-2] != string(api.EventMessage) || names[len(names)-1] != string(api.EventDone) {
		t.Fatalf("stream tail = %v, want message, done", names)
	}
	var done api.DonePayload
	decodePayload(t, tail[len(tail)-1], &done)
	if done.Message != "The animation is ready." {
		t.Errorf("done message = %q", done.Message)
	}

	// The artifact URL must be servable.
	resp, err := http.Get(testEnv.Server.URL + artifact.URL)
	if err != nil {
		t.Fatalf("GET artifact: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("artifact status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("artifact Content-Type = %q, want video/mp4", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "not really a video" {
		t.Errorf("artifact body = %q", body)
	}
}

func TestRenderFailureFlow(t *testing.T) {
	testEnv.Renderer.fail.Store(true)
	defer testEnv.Renderer.fail.Store(false)

	events := postChat(t, "Animate something doomed")
	names := eventNames(events)

	for _, name := range names {
		if name == string(api.EventArtifactURL) {
			t.Fatalf("failed render produced artifact-url: %v", names)
		}
	}

	var failed bool
	for _, ev := range events {
		if ev.Name != string(api.EventNotification) {
			continue
		}
		var n api.NotificationPayload
		decodePayload(t, ev, &n)
		if n.Status == api.StatusFailed {
			failed = true
			if !strings.Contains(n.Content, "exited with status 1") {
				t.Errorf("failure notification = %q", n.Content)
			}
		}
	}
	if !failed {
		t.Fatalf("no failed notification in %v", names)
	}

	// The loop reports the failure back to the model and still closes
	// with the model's follow-up turn.
	if names[len(names)-1] != string(api.EventDone) {
		t.Errorf("stream tail = %v, want done", names)
	}
}

func TestTextOnlyFlow(t *testing.T) {
	events := postChat(t, "Reply in plain text, no animation")
	names := eventNames(events)

	want := []string{
		string(api.EventTextDelta),
		string(api.EventTextDelta),
		string(api.EventMessage),
		string(api.EventDone),
	}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("events = %v, want %v", names, want)
		}
	}

	var done api.DonePayload
	decodePayload(t, events[len(events)-1], &done)
	if done.Message != "Just words." {
		t.Errorf("done message = %q", done.Message)
	}
}
