package server

import "github.com/raysh454/codeprobe/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the dashboard and API.
	ListenAddr string

	// ForceSecure treats every request as coming from a secure page, so
	// plain-http endpoints are refused even behind a TLS-terminating proxy
	// that does not set X-Forwarded-Proto.
	ForceSecure bool

	Logger logging.Logger
}
