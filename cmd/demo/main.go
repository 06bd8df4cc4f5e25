// Command demo streams one animation request against a running
// scenesmith server and prints every event as it arrives.
//
// Usage:
//
//	demo -url http://localhost:8080 -prompt "a circle morphing into a square"
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/scenesmith/scenesmith/pkg/api"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "scenesmith server base URL")
	prompt := flag.String("prompt", "Animate a circle morphing into a square", "animation prompt")
	model := flag.String("model", "", "model override (server default if empty)")
	flag.Parse()

	if err := run(*url, *prompt, *model); err != nil {
		fmt.Fprintln(os.Stderr, "demo failed:", err)
		os.Exit(1)
	}
}

func run(baseURL, prompt, model string) error {
	body, err := json.Marshal(api.ChatRequest{Prompt: prompt, Model: model})
	if err != nil {
		return err
	}

	resp, err := http.Post(baseURL+"/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != nil {
			return fmt.Errorf("%s: %s", errResp.Error.Type, errResp.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	start := time.Now()
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var eventName string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventName = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				fmt.Printf("\n[%7.2fs] stream closed\n", time.Since(start).Seconds())
				return scanner.Err()
			}
			printEvent(start, eventName, data)
		}
	}
	return scanner.Err()
}

// printEvent renders the common event kinds compactly and dumps the
// rest as raw JSON.
func printEvent(start time.Time, name, data string) {
	elapsed := time.Since(start).Seconds()

	switch api.EventName(name) {
	case api.EventTextDelta:
		var p api.TextDeltaPayload
		if json.Unmarshal([]byte(data), &p) == nil {
			fmt.Print(p.Content)
			return
		}
	case api.EventCode:
		var p api.CodePayload
		if json.Unmarshal([]byte(data), &p) == nil {
			fmt.Printf("\n[%7.2fs] generated code (%d bytes, call %s)\n", elapsed, len(p.Code), p.ToolCallID)
			return
		}
	case api.EventNotification:
		var p api.NotificationPayload
		if json.Unmarshal([]byte(data), &p) == nil {
			fmt.Printf("\n[%7.2fs] %s: %s\n", elapsed, p.Status, p.Content)
			return
		}
	case api.EventArtifactURL:
		var p api.ArtifactURLPayload
		if json.Unmarshal([]byte(data), &p) == nil {
			fmt.Printf("\n[%7.2fs] artifact ready: %s\n", elapsed, p.URL)
			return
		}
	case api.EventError:
		var p api.ErrorPayload
		if json.Unmarshal([]byte(data), &p) == nil {
			fmt.Printf("\n[%7.2fs] error: %s\n", elapsed, p.Error)
			return
		}
	}

	fmt.Printf("\n[%7.2fs] %s %s\n", elapsed, name, data)
}
