// Package engine drives the conversational rendering loop. Each request
// runs a generate/dispatch cycle: stream one backend turn, reconstruct
// the generate_animation tool call from its raw argument fragments,
// render it in the sandbox, feed the outcome back as conversation
// context, and repeat until the backend requests no further execution.
package engine
