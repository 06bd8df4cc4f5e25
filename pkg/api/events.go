package api

// EventName identifies the type of an outbound stream event.
type EventName string

// Delta events carry incremental content while a turn is in progress.
const (
	EventTextDelta        EventName = "text-delta"
	EventToolCallArgDelta EventName = "tool-call-arg-delta"
	EventCode             EventName = "code"
)

// Lifecycle events report on render execution and conversation progress.
const (
	EventNotification EventName = "notification"
	EventArtifactURL  EventName = "artifact-url"
	EventMessage      EventName = "message"
)

// Terminal events end the stream. Exactly one is emitted per stream.
const (
	EventDone  EventName = "done"
	EventError EventName = "error"
)

// IsTerminal reports whether the event name ends a stream.
func (n EventName) IsTerminal() bool {
	return n == EventDone || n == EventError
}

// Event is a single named item on the outbound stream. Payload holds one
// of the *Payload structs below and is serialized as the SSE data field.
type Event struct {
	Name    EventName `json:"name"`
	Payload any       `json:"payload"`
}

// NotificationStatus tracks the lifecycle of one render execution.
type NotificationStatus string

const (
	StatusStarted   NotificationStatus = "started"
	StatusRunning   NotificationStatus = "running"
	StatusCompleted NotificationStatus = "completed"
	StatusFailed    NotificationStatus = "failed"
)

// TextDeltaPayload carries one fragment of assistant text.
type TextDeltaPayload struct {
	Content string `json:"content"`
}

// ToolCallArgDeltaPayload carries one raw fragment of a tool call argument.
type ToolCallArgDeltaPayload struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName"`
	ArgName    string `json:"argName"`
	Value      string `json:"value"`
}

// CodePayload carries the current decoded source text for a tool call.
// Emitted only when the decoded value changed since the last emission.
type CodePayload struct {
	Code       string `json:"code"`
	ToolCallID string `json:"toolCallId"`
}

// NotificationPayload reports render execution lifecycle transitions.
type NotificationPayload struct {
	Content string             `json:"content"`
	ID      string             `json:"id"`
	Status  NotificationStatus `json:"status"`
}

// ArtifactURLPayload carries the retrieval URL of a produced artifact.
type ArtifactURLPayload struct {
	URL        string `json:"url"`
	ToolCallID string `json:"toolCallId"`
}

// ToolCallRef summarizes one completed tool call on a message event.
type ToolCallRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MessagePayload carries a complete conversation message.
type MessagePayload struct {
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	ToolCalls []ToolCallRef `json:"toolCalls,omitempty"`
}

// DonePayload ends a successful stream.
type DonePayload struct {
	Message string `json:"message"`
}

// ErrorPayload ends a failed stream.
type ErrorPayload struct {
	Error string `json:"error"`
}

// TextDelta builds a text-delta event.
func TextDelta(content string) Event {
	return Event{Name: EventTextDelta, Payload: TextDeltaPayload{Content: content}}
}

// ToolCallArgDelta builds a tool-call-arg-delta event.
func ToolCallArgDelta(callID, toolName, argName, value string) Event {
	return Event{Name: EventToolCallArgDelta, Payload: ToolCallArgDeltaPayload{
		ToolCallID: callID, ToolName: toolName, ArgName: argName, Value: value,
	}}
}

// Code builds a code event.
func Code(code, callID string) Event {
	return Event{Name: EventCode, Payload: CodePayload{Code: code, ToolCallID: callID}}
}

// Notification builds a notification event.
func Notification(content, id string, status NotificationStatus) Event {
	return Event{Name: EventNotification, Payload: NotificationPayload{
		Content: content, ID: id, Status: status,
	}}
}

// ArtifactURL builds an artifact-url event.
func ArtifactURL(url, callID string) Event {
	return Event{Name: EventArtifactURL, Payload: ArtifactURLPayload{URL: url, ToolCallID: callID}}
}

// Message builds a message event.
func Message(role, content string, toolCalls []ToolCallRef) Event {
	return Event{Name: EventMessage, Payload: MessagePayload{
		Role: role, Content: content, ToolCalls: toolCalls,
	}}
}

// Done builds the successful terminal event.
func Done(message string) Event {
	return Event{Name: EventDone, Payload: DonePayload{Message: message}}
}

// ErrorEvent builds the failure terminal event.
func ErrorEvent(message string) Event {
	return Event{Name: EventError, Payload: ErrorPayload{Error: message}}
}
