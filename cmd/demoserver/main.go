// Command demoserver starts a stand-in analysis backend for trying codeprobe
// without the real service.
// Usage: go run ./cmd/demoserver [port]
// Default port: 5000
package main

import (
	"log"
	"os"
	"strconv"

	"github.com/raysh454/codeprobe/internal/demoserver"
	"github.com/raysh454/codeprobe/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	server := demoserver.NewDemoServer(cfg, logging.NewStdoutLogger("demoserver"))
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
