package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/endpoint"
	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/session"
	"github.com/raysh454/codeprobe/internal/webclient"

	_ "modernc.org/sqlite" // SQLite driver
)

// DatabaseName is the settings database file under StorageRoot.
const DatabaseName = "codeprobe.db"

// Application is the runtime state container shared by the CLI commands and
// the HTTP server.
type Application struct {
	Config *Config
	Logger logging.Logger
	Orch   *Orchestrator

	db        *sql.DB
	logCloser io.Closer
}

// Parts lets callers (tests, mostly) inject a store, transport or logger.
// Nil fields are built from the Config.
type Parts struct {
	Store     endpoint.Store
	WebClient webclient.WebClient
	Logger    logging.Logger
}

// NewApplication builds the full component graph from cfg and loads the
// stored endpoint. An empty StorageRoot keeps the endpoint in memory.
func NewApplication(ctx context.Context, cfg *Config, parts Parts) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	a := &Application{Config: cfg}

	logger := parts.Logger
	if logger == nil {
		l, closer, err := logging.NewLogger(cfg.LogCfg, "codeprobe")
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		logger, a.logCloser = l, closer
	}
	a.Logger = logger

	store := parts.Store
	if store == nil {
		s, err := a.openStore(ctx)
		if err != nil {
			a.close()
			return nil, err
		}
		store = s
	}

	wc := parts.WebClient
	if wc == nil {
		c, err := webclient.NewWebClient(cfg.WebClientCfg, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("creating webclient: %w", err)
		}
		wc = c
	}

	client, err := analyzer.NewClient(wc, cfg.AnalyzerCfg, logger)
	if err != nil {
		_ = wc.Close()
		a.close()
		return nil, fmt.Errorf("creating analyzer client: %w", err)
	}

	endpoints := endpoint.NewManager(store, cfg.DefaultEndpoint, logger)
	if _, err := endpoints.Load(ctx); err != nil {
		_ = client.Close()
		a.close()
		return nil, err
	}

	a.Orch = NewOrchestrator(endpoints, client, session.NewTracker(cfg.SessionCfg, logger), logger)
	return a, nil
}

func (a *Application) openStore(ctx context.Context) (endpoint.Store, error) {
	if a.Config.StorageRoot == "" {
		return endpoint.NewMemoryStore(), nil
	}

	root, err := expandPath(a.Config.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("expanding storage root path: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(root, DatabaseName))
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening settings database: %w", err)
	}
	a.db = db

	store, err := endpoint.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("creating settings store: %w", err)
	}
	return store, nil
}

// Shutdown releases the transport, the database and the log output.
func (a *Application) Shutdown(_ context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	var errs []error
	if a.Orch != nil {
		if err := a.Orch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing orchestrator: %w", err))
		}
	}
	errs = append(errs, a.close())
	return errors.Join(errs...)
}

func (a *Application) close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
		a.logCloser = nil
	}
	return errors.Join(errs...)
}
