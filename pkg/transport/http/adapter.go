package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scenesmith/scenesmith/pkg/api"
	"github.com/scenesmith/scenesmith/pkg/observability"
	"github.com/scenesmith/scenesmith/pkg/relay"
	"github.com/scenesmith/scenesmith/pkg/transport"
)

// videoFilePattern restricts artifact filenames to a safe character set
// with the required extension. Checked before any filesystem access.
var videoFilePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+\.mp4$`)

// requestIDPattern matches the generated request ids used to namespace
// working areas.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Adapter serves the scenesmith API over HTTP. It routes requests,
// validates them, and bridges the SSE connection to the engine through a
// relay.
type Adapter struct {
	creator transport.StreamCreator
	mux     *http.ServeMux
	config  Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr        string
	MaxBodySize int64
	// MediaRoot is the host directory holding per-request working areas;
	// the videos route resolves artifacts beneath it.
	MediaRoot string
	// MetricsEnabled exposes /metrics when set.
	MetricsEnabled bool
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		MaxBodySize:    1 << 20, // 1 MB
		MediaRoot:      "./media",
		MetricsEnabled: true,
	}
}

// NewAdapter creates an HTTP adapter with the given StreamCreator.
// Middleware is applied to the creator in the given order.
func NewAdapter(creator transport.StreamCreator, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		creator = transport.Chain(middlewares...)(creator)
	}

	a := &Adapter{
		creator: creator,
		mux:     http.NewServeMux(),
		config:  cfg,
	}

	a.mux.HandleFunc("POST /v1/chat", a.handleChat)
	a.mux.HandleFunc("GET /v1/videos/{request_id}/{filename}", a.handleVideo)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	if cfg.MetricsEnabled {
		a.mux.Handle("GET /metrics", promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter. The returned
// handler includes HTTP-level middleware for request ID propagation and
// request metrics.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(observability.MetricsMiddleware(a.mux))
}

// handleChat handles POST /v1/chat. A valid request commits the
// connection to SSE; the engine then owns the stream until a terminal
// event.
func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return
	}

	if apiErr := req.Validate(); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	observability.StreamingConnections.Inc()
	defer observability.StreamingConnections.Dec()

	sink := newSSESink(w)
	rly := relay.New(sink)

	if err := a.creator.CreateStream(ctx, &req, rly); err != nil {
		a.writeHandlerError(w, sink, rly, err)
	}
}

// writeHandlerError reports a handler failure to the client. Before any
// SSE write the response is still plain JSON; afterwards the only channel
// left is a terminal error event, which a relay already closed by the
// handler rejects harmlessly.
func (a *Adapter) writeHandlerError(w http.ResponseWriter, sink *sseSink, rly relay.Relay, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		apiErr = api.NewServerError(err.Error())
	}

	if !sink.hasStartedStreaming() {
		transport.WriteAPIError(w, apiErr)
		return
	}

	// A failed publish means the relay was already terminal or the
	// client is gone; nothing left to do either way.
	_ = rly.Publish(context.Background(), api.ErrorEvent(apiErr.Message))
}

// handleVideo handles GET /v1/videos/{request_id}/{filename}. The
// filename and request id are validated against safe patterns before any
// filesystem access; the resolved path must stay inside the request's
// media subtree.
func (a *Adapter) handleVideo(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("request_id")
	filename := r.PathValue("filename")

	if !videoFilePattern.MatchString(filename) || strings.Contains(filename, "..") {
		transport.WriteAPIError(w, api.NewForbiddenError("invalid video filename"))
		return
	}
	if !requestIDPattern.MatchString(requestID) {
		transport.WriteAPIError(w, api.NewForbiddenError("invalid request id"))
		return
	}

	root, err := filepath.Abs(a.config.MediaRoot)
	if err != nil {
		transport.WriteAPIError(w, api.NewServerError("resolving media root"))
		return
	}
	subtree := filepath.Join(root, requestID)
	if !strings.HasPrefix(subtree, root+string(filepath.Separator)) {
		transport.WriteAPIError(w, api.NewForbiddenError("path escapes media root"))
		return
	}

	found := findFile(subtree, filename)
	if found == "" {
		transport.WriteAPIError(w, api.NewNotFoundError("video "+filename+" not found"))
		return
	}
	if !strings.HasPrefix(found, subtree+string(filepath.Separator)) {
		transport.WriteAPIError(w, api.NewForbiddenError("path escapes media root"))
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, found)
}

// findFile walks the subtree depth-first and returns the first file with
// the given name.
func findFile(root, name string) string {
	var found string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. If present in the request, it is forwarded into
// the context for the transport-level RequestID middleware and echoed on
// the response.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx := transport.ContextWithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
		}
		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

func (w *requestIDResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set("X-Request-ID", id)
	}
}
