package engine

import (
	"encoding/json"
	"strings"
)

const codeField = "code"

var escapeReverser = strings.NewReplacer(
	`\n`, "\n",
	`\t`, "\t",
	`\r`, "\r",
	`\"`, `"`,
	`\\`, `\`,
)

// DecodeCodeArgument extracts the code string from a possibly truncated
// JSON argument buffer. A complete buffer decodes strictly; a mid-stream
// prefix falls back to tolerant extraction that accepts a missing
// closing quote and reverses the common escape sequences. Returns false
// when the buffer does not yet reach into the code value.
func DecodeCodeArgument(buf string) (string, bool) {
	if v, ok := decodeStrict(buf); ok {
		return v, true
	}
	return decodeTolerant(buf)
}

// decodeStrict parses the buffer as a complete {"code": "..."} document.
func decodeStrict(buf string) (string, bool) {
	var args struct {
		Code *string `json:"code"`
	}
	if err := json.Unmarshal([]byte(buf), &args); err != nil || args.Code == nil {
		return "", false
	}
	return *args.Code, true
}

// decodeTolerant locates the code field's opening quote and captures
// everything up to an unescaped closing quote or the end of the buffer.
func decodeTolerant(buf string) (string, bool) {
	i := strings.Index(buf, `"`+codeField+`"`)
	if i < 0 {
		return "", false
	}
	rest := buf[i+len(codeField)+2:]

	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", false
	}
	rest = rest[colon+1:]

	open := strings.IndexByte(rest, '"')
	if open < 0 {
		return "", false
	}
	rest = rest[open+1:]

	var raw strings.Builder
	escaped := false
	for j := 0; j < len(rest); j++ {
		c := rest[j]
		if escaped {
			raw.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' {
			raw.WriteByte(c)
			escaped = true
			continue
		}
		if c == '"' {
			break
		}
		raw.WriteByte(c)
	}

	return escapeReverser.Replace(raw.String()), true
}
