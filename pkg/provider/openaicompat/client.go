package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scenesmith/scenesmith/pkg/debug"
	"github.com/scenesmith/scenesmith/pkg/provider"
)

// Client talks to an OpenAI-compatible Chat Completions backend.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client for the given base URL. The API key may be
// empty for backends that do not require authentication.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		// No overall timeout: streaming responses stay open for the
		// duration of the generation. Cancellation comes from the
		// request context.
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "openai-compatible"
}

// Stream sends a streaming chat completion request and returns a channel
// of provider events. The channel is closed when the stream ends. The
// first error encountered is delivered as an EventError on the channel.
func (c *Client) Stream(ctx context.Context, req *provider.Request) (<-chan provider.Event, error) {
	chatReq := TranslateToChat(req)

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	debug.Log("provider", "sending chat completion request",
		"url", httpReq.URL.String(), "model", chatReq.Model, "messages", len(chatReq.Messages))
	if debug.TraceIsEnabled("provider") {
		debug.Raw("provider", string(body))
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, MapHTTPError(resp)
	}

	ch := make(chan provider.Event, 16)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		ParseSSEStream(resp.Body, ch)
	}()

	return ch, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
