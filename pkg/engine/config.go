package engine

const defaultMaxTurns = 10

// Config holds the engine settings.
type Config struct {
	// Model is used when a request does not name one.
	Model string
	// MaxTurns bounds the generate/dispatch cycle as a safety valve
	// against a backend that keeps requesting renders.
	MaxTurns int
}

func (c Config) maxTurns() int {
	if c.MaxTurns > 0 {
		return c.MaxTurns
	}
	return defaultMaxTurns
}
