// Package sandbox runs generated Manim code inside a disposable Docker
// container. Each execution gets a fresh working directory and a fresh
// container; nothing is pooled or reused. Execute never returns an
// error: every failure mode becomes a Result carrying a failure reason
// so the conversational loop can feed it back to the backend.
package sandbox
