package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

type Command string

const (
	CommandServe    Command = "serve"
	CommandAnalyze  Command = "analyze"
	CommandEndpoint Command = "endpoint"
)

type EndpointAction string

const (
	EndpointGet    EndpointAction = "get"
	EndpointSet    EndpointAction = "set"
	EndpointOrigin EndpointAction = "origin"
	EndpointVerify EndpointAction = "verify"
)

// ErrUsage is returned for a missing or unknown subcommand.
var ErrUsage = errors.New("usage: codeprobe [-config FILE] serve|analyze|endpoint [flags]")

// CLIArgs are the parsed command-line arguments of one invocation.
type CLIArgs struct {
	Command Command

	// ConfigPath points at a YAML config file; empty uses the search path.
	ConfigPath string

	// serve
	Addr string

	// analyze
	File     string
	Code     string
	UseStdin bool
	JSON     bool
	Endpoint string

	// endpoint
	Action  EndpointAction
	Value   string
	Open    bool
	Browser bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. The function is
// deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("codeprobe", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML config file")

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, ErrUsage
	}

	out := &CLIArgs{
		Command:    Command(fs.Arg(0)),
		ConfigPath: *configPath,
		RawArgs:    args,
	}
	rest := fs.Args()[1:]

	var err error
	switch out.Command {
	case CommandServe:
		err = parseServe(out, rest)
	case CommandAnalyze:
		err = parseAnalyze(out, rest)
	case CommandEndpoint:
		err = parseEndpoint(out, rest)
	default:
		return nil, fmt.Errorf("unknown command %q: %w", out.Command, ErrUsage)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseServe(out *CLIArgs, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "Listen address (overrides server.addr)")
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return err
	}
	out.Addr = *addr
	return nil
}

func parseAnalyze(out *CLIArgs, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	var (
		file     = fs.String("file", "", "Source file to upload")
		code     = fs.String("code", "", "Source text to submit")
		asJSON   = fs.Bool("json", false, "Print the raw report as JSON")
		endpoint = fs.String("endpoint", "", "Use this endpoint instead of the stored one")
	)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *file != "" && *code != "" {
		return fmt.Errorf("-file and -code are mutually exclusive")
	}

	out.File = *file
	out.Code = *code
	out.UseStdin = *file == "" && *code == ""
	out.JSON = *asJSON
	out.Endpoint = strings.TrimSpace(*endpoint)
	return nil
}

func parseEndpoint(out *CLIArgs, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing endpoint action (get|set|origin|verify)")
	}
	out.Action = EndpointAction(args[0])

	fs := flag.NewFlagSet("endpoint "+args[0], flag.ContinueOnError)
	open := fs.Bool("open", false, "Open the origin in a visible browser window")
	browser := fs.Bool("browser", false, "Probe the origin with headless Chrome")
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch out.Action {
	case EndpointGet, EndpointOrigin:
	case EndpointSet:
		// pasted tunnel logs contain spaces
		value := strings.Join(fs.Args(), " ")
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("missing value for endpoint set")
		}
		out.Value = value
	case EndpointVerify:
		out.Open = *open
		out.Browser = *browser
	default:
		return fmt.Errorf("unknown endpoint action %q", out.Action)
	}
	return nil
}
