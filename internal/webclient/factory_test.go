package webclient_test

import (
	"testing"

	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/webclient"
)

// TestNewWebClient_DefaultBackend verifies that empty backend defaults to nethttp
func TestNewWebClient_DefaultBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{}, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Failed to create default client: %v", err)
	}
	if _, ok := client.(*webclient.NetHTTPClient); !ok {
		t.Fatalf("expected *NetHTTPClient, got %T", client)
	}
	defer client.Close()
}

// TestNewWebClient_UnknownBackend verifies that unknown backend returns error
func TestNewWebClient_UnknownBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: "unknown"}, logging.NewNopLogger())
	if err == nil {
		t.Fatal("Expected error for unknown backend, got nil")
	}
	if client != nil {
		t.Fatal("Expected nil client for unknown backend")
	}
}

func TestListBackends_IncludesNetHTTP(t *testing.T) {
	t.Parallel()
	found := false
	for _, b := range webclient.ListBackends() {
		if b == "nethttp" {
			found = true
		}
	}
	if !found {
		t.Fatal("nethttp backend not registered")
	}
}
