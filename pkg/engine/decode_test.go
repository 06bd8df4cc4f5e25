package engine

import (
	"encoding/json"
	"testing"
)

func TestDecodeCodeArgumentStrict(t *testing.T) {
	original := "x = 1\nprint(\"done\")\npath = \"a\\\\b\"\n\tindented"
	buf, err := json.Marshal(map[string]string{"code": original})
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}

	got, ok := DecodeCodeArgument(string(buf))
	if !ok {
		t.Fatal("expected complete document to decode")
	}
	if got != original {
		t.Errorf("round trip mismatch:\ngot  %q\nwant %q", got, original)
	}
}

func TestDecodeCodeArgumentTolerantPrefix(t *testing.T) {
	cases := []struct {
		name string
		buf  string
		want string
		ok   bool
	}{
		{"empty", "", "", false},
		{"open brace", `{`, "", false},
		{"key split mid-way", `{"co`, "", false},
		{"key complete no colon", `{"code"`, "", false},
		{"no opening quote yet", `{"code":`, "", false},
		{"value open empty", `{"code": "`, "", true},
		{"bare value", `{"code": "x = 1`, "x = 1", true},
		{"escaped newline", `{"code": "x = 1\n`, "x = 1\n", true},
		{"escaped tab and return", `{"code": "a\tb\rc`, "a\tb\rc", true},
		{"escaped quote", `{"code": "say \"hi\"`, `say "hi"`, true},
		{"escaped backslash", `{"code": "a\\b`, `a\b`, true},
		{"escaped backslash before n", `{"code": "a\\nb`, `a\nb`, true},
		{"terminated value ignores tail", `{"code": "x = 1"`, "x = 1", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DecodeCodeArgument(tc.buf)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeCodeArgumentTrailingBackslash(t *testing.T) {
	// A fragment boundary can land between the backslash and its escape
	// character. The dangling backslash passes through untouched and is
	// resolved when the next fragment arrives.
	got, ok := DecodeCodeArgument(`{"code": "x = 1\`)
	if !ok {
		t.Fatal("expected tolerant decode")
	}
	if got != `x = 1\` {
		t.Errorf("got %q", got)
	}
}

func TestDecodeCodeArgumentNullAndWrongTypes(t *testing.T) {
	if _, ok := DecodeCodeArgument(`{"code": null}`); ok {
		t.Error("null code must not decode")
	}
	if v, ok := DecodeCodeArgument(`{"other": "x"}`); ok {
		t.Errorf("missing code field decoded to %q", v)
	}
}
