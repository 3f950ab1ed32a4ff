package demoserver

import "time"

// Mode selects how the demo backend answers /analyze.
type Mode string

const (
	// ModeOK returns a report computed from the submitted code.
	ModeOK Mode = "ok"
	// ModeError answers 500 with a JSON {"error": ...} body.
	ModeError Mode = "error"
	// ModeHTML answers 502 with an HTML error page.
	ModeHTML Mode = "html"
)

// Config holds configuration for the demo backend.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// RequireBypass serves a tunnel warning page to requests that lack the
	// ngrok-skip-browser-warning header, like a free ngrok tunnel does.
	RequireBypass bool

	// Latency is added before every /analyze answer.
	Latency time.Duration

	// InitialMode is the starting answer mode (default: ok).
	InitialMode Mode
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:          5000,
		RequireBypass: true,
		InitialMode:   ModeOK,
	}
}
