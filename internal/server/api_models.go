package server

import (
	"github.com/raysh454/codeprobe/internal/analyzer"
)

// EndpointResponse describes the configured analysis backend.
type EndpointResponse struct {
	Endpoint string `json:"endpoint" example:"https://abcd-1-2.ngrok-free.app/analyze"`
	Origin   string `json:"origin" example:"https://abcd-1-2.ngrok-free.app"`
	Default  string `json:"default" example:"https://code-analyzer-1-ii0s.onrender.com/analyze"`
}

// SetEndpointRequest carries a URL or a pasted tunnel log line.
type SetEndpointRequest struct {
	Value string `json:"value" example:"Forwarding https://abcd-1-2.ngrok-free.app -> http://localhost:5000"`
}

// AnalyzeRequest is the JSON form of a submission. Files are sent as
// multipart/form-data with a part named "file".
type AnalyzeRequest struct {
	Code string `json:"code" example:"print('hello')"`
}

// AnalyzeErrorResponse is returned when a submission fails.
type AnalyzeErrorResponse struct {
	Error        string        `json:"error" example:"No input provided"`
	Kind         analyzer.Kind `json:"kind,omitempty" example:"invalid_input"`
	SettingsOpen bool          `json:"settings_open"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
