package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/app"
	"github.com/raysh454/codeprobe/internal/browser"
	"github.com/raysh454/codeprobe/internal/cli"
	"github.com/raysh454/codeprobe/internal/endpoint"
	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/report"
	"github.com/raysh454/codeprobe/internal/server"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, cli.ErrUsage)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args *cli.CLIArgs) error {
	cfg, err := app.Load(args.ConfigPath)
	if err != nil {
		return err
	}

	// keep stdout for reports
	if args.Command != cli.CommandServe && cfg.LogCfg.Output == "stdout" {
		cfg.LogCfg.Output = "stderr"
	}

	var parts app.Parts
	if args.Command == cli.CommandAnalyze && args.Endpoint != "" {
		store := endpoint.NewMemoryStore()
		if err := store.Set(ctx, args.Endpoint); err != nil {
			return err
		}
		parts.Store = store
	}

	a, err := app.NewApplication(ctx, cfg, parts)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	switch args.Command {
	case cli.CommandServe:
		return serve(ctx, a, args)
	case cli.CommandAnalyze:
		return analyze(ctx, a, args)
	case cli.CommandEndpoint:
		return endpointCmd(ctx, a, args)
	}
	return cli.ErrUsage
}

func serve(ctx context.Context, a *app.Application, args *cli.CLIArgs) error {
	addr := a.Config.ServerAddr
	if args.Addr != "" {
		addr = args.Addr
	}

	s, err := server.NewServer(server.Config{
		ListenAddr:  addr,
		ForceSecure: a.Config.AnalyzerCfg.ForceSecure,
		Logger:      a.Logger,
	}, a.Orch)
	if err != nil {
		return err
	}

	httpSrv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", logging.Field{Key: "addr", Value: addr})
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func analyze(ctx context.Context, a *app.Application, args *cli.CLIArgs) error {
	var in analyzer.Input
	switch {
	case args.File != "":
		f, err := os.Open(args.File)
		if err != nil {
			return fmt.Errorf("opening source file: %w", err)
		}
		defer f.Close()
		in = analyzer.File(filepath.Base(args.File), f)
	case args.Code != "":
		in = analyzer.Text(args.Code)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		in = analyzer.Text(string(data))
	}

	res, err := a.Orch.Analyze(ctx, in)
	if err != nil {
		if errors.Is(err, app.ErrEndpointRequired) {
			return errors.New(app.EndpointRequiredMessage)
		}
		return err
	}

	if args.JSON {
		return report.JSON(os.Stdout, res.Result)
	}
	return report.Text(os.Stdout, res.Result)
}

func endpointCmd(ctx context.Context, a *app.Application, args *cli.CLIArgs) error {
	m := a.Orch.Endpoints()

	switch args.Action {
	case cli.EndpointGet:
		fmt.Println(m.Current())
	case cli.EndpointOrigin:
		fmt.Println(m.Origin())
	case cli.EndpointSet:
		stored, err := a.Orch.SetEndpoint(ctx, args.Value)
		if err != nil {
			return err
		}
		fmt.Println(stored)
	case cli.EndpointVerify:
		return verify(ctx, a, args)
	}
	return nil
}

func verify(ctx context.Context, a *app.Application, args *cli.CLIArgs) error {
	origin := a.Orch.Endpoints().Origin()
	if origin == "" {
		return errors.New(app.EndpointRequiredMessage)
	}

	switch {
	case args.Open:
		fmt.Printf("Opening %s; authorize the tunnel, then press Ctrl-C.\n", origin)
		return browser.Open(ctx, origin)
	case args.Browser:
		probe, err := browser.Verify(ctx, origin, browser.Options{Headless: true, Bypass: true}, a.Logger)
		if err != nil {
			return err
		}
		fmt.Printf("%s\ttitle=%q\tinterstitial=%t\n", probe.URL, probe.Title, probe.Interstitial)
	default:
		h, err := a.Orch.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s\tstatus=%d\tinterstitial=%t\n", h.Origin, h.StatusCode, h.Interstitial)
	}
	return nil
}
