package engine

import (
	"fmt"
	"strings"

	"github.com/scenesmith/scenesmith/pkg/provider"
)

// Update is an emitted change to a call's decoded code value. Value is
// the full decoded string, not a suffix delta.
type Update struct {
	CallID   string
	CallName string
	Value    string
}

// Call is a reconstructed tool call at the end of a turn.
type Call struct {
	ID        string
	Name      string
	Arguments string
	Code      string
	// Complete reports whether the raw buffer parsed as a full JSON
	// document; when false, Code comes from tolerant extraction.
	Complete bool
}

type callState struct {
	id        string
	name      string
	buf       strings.Builder
	lastValue string
}

// Accumulator reconstructs tool-call arguments from raw streamed
// fragments. The backend supplies the call id and function name only on
// a call's first fragment; continuations resolve through the position
// index, falling back to a synthetic key. An Accumulator belongs to a
// single turn owned by a single goroutine and needs no locking.
type Accumulator struct {
	calls   map[string]*callState
	byIndex map[int]string
	order   []string
}

// NewAccumulator creates an empty accumulator for one backend turn.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		calls:   make(map[string]*callState),
		byIndex: make(map[int]string),
	}
}

// Accept appends a tool-call fragment and reports the call's decoded
// code value when it changed. Empty, unchanged, and shrinking candidates
// are suppressed: a tolerant decode may briefly regress when a fragment
// lands inside an escape sequence, so a shorter value passes only once
// the buffer parses strictly.
func (a *Accumulator) Accept(ev provider.Event) (Update, bool) {
	c := a.resolve(ev)
	c.buf.WriteString(ev.Delta)

	value, ok := DecodeCodeArgument(c.buf.String())
	if !ok || value == "" || value == c.lastValue {
		return Update{}, false
	}
	if len(value) < len(c.lastValue) {
		if _, strict := decodeStrict(c.buf.String()); !strict {
			return Update{}, false
		}
	}

	c.lastValue = value
	return Update{CallID: c.id, CallName: c.name, Value: value}, true
}

// resolve finds or creates the call a fragment belongs to. Explicit id
// wins, then the last id recorded for the fragment's index, then a
// synthetic per-index key.
func (a *Accumulator) resolve(ev provider.Event) *callState {
	key := ev.CallID
	if key == "" {
		if known, ok := a.byIndex[ev.Index]; ok {
			key = known
		} else {
			key = fmt.Sprintf("index:%d", ev.Index)
		}
	}
	a.byIndex[ev.Index] = key

	c, ok := a.calls[key]
	if !ok {
		c = &callState{id: key}
		a.calls[key] = c
		a.order = append(a.order, key)
	}
	if ev.CallName != "" {
		c.name = ev.CallName
	}
	return c
}

// Calls returns the reconstructed calls in first-seen order with their
// final decoded code values.
func (a *Accumulator) Calls() []Call {
	out := make([]Call, 0, len(a.order))
	for _, key := range a.order {
		c := a.calls[key]
		raw := c.buf.String()
		code, strict := decodeStrict(raw)
		if !strict {
			code, _ = DecodeCodeArgument(raw)
		}
		out = append(out, Call{
			ID:        c.id,
			Name:      c.name,
			Arguments: raw,
			Code:      code,
			Complete:  strict,
		})
	}
	return out
}
