package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// Config is the minimal set of options required for constructing a WebClient.
// It is embedded in app.Config without creating an import cycle.
type Config struct {
	Client Client
	// Timeout bounds a whole request. Zero leaves net/http's default (none).
	Timeout time.Duration
}
