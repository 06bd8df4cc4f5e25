package api

import (
	"strings"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	err := NewInvalidRequestError("prompt", "prompt is required")
	if err.Type != ErrorTypeInvalidRequest {
		t.Errorf("type = %q, want %q", err.Type, ErrorTypeInvalidRequest)
	}
	msg := err.Error()
	if !strings.Contains(msg, "prompt is required") || !strings.Contains(msg, "param: prompt") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestAPIErrorWithoutParam(t *testing.T) {
	err := NewServerError("boom")
	if strings.Contains(err.Error(), "param") {
		t.Errorf("message should not mention param: %q", err.Error())
	}
}

func TestChatRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
		param   string
	}{
		{"valid", ChatRequest{Prompt: "draw a circle"}, false, ""},
		{"empty", ChatRequest{}, true, "prompt"},
		{"whitespace only", ChatRequest{Prompt: "   \n"}, true, "prompt"},
		{"too long", ChatRequest{Prompt: strings.Repeat("a", 17*1024)}, true, "prompt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil && err.Param != tt.param {
				t.Errorf("param = %q, want %q", err.Param, tt.param)
			}
		})
	}
}
