package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/endpoint"
	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/model"
	"github.com/raysh454/codeprobe/internal/session"
)

// EndpointRequiredMessage is shown when an analysis is requested with no
// backend endpoint stored.
const EndpointRequiredMessage = "Please configure your Backend API Endpoint first."

// ErrEndpointRequired is returned by Analyze when the stored endpoint is empty.
var ErrEndpointRequired = errors.New("backend endpoint not configured")

// Analysis describes one submission.
type Analysis struct {
	ID         string                `json:"id"`
	Token      uint64                `json:"token"`
	Endpoint   string                `json:"endpoint"`
	Result     *model.AnalysisResult `json:"result,omitempty"`
	Stale      bool                  `json:"stale"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
}

// Orchestrator ties the endpoint setting, the analysis client and the
// session state together.
type Orchestrator struct {
	endpoints *endpoint.Manager
	client    *analyzer.Client
	tracker   *session.Tracker
	logger    logging.Logger
}

// NewOrchestrator wires already constructed parts.
func NewOrchestrator(endpoints *endpoint.Manager, client *analyzer.Client, tracker *session.Tracker, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Orchestrator{
		endpoints: endpoints,
		client:    client,
		tracker:   tracker,
		logger:    logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
	}
}

// Endpoints returns the endpoint manager.
func (o *Orchestrator) Endpoints() *endpoint.Manager { return o.endpoints }

// Tracker returns the session tracker.
func (o *Orchestrator) Tracker() *session.Tracker { return o.tracker }

// Analyze submits in to the stored endpoint and settles the session with
// the outcome. The returned Analysis is non-nil whenever a token was
// issued, including on failure.
func (o *Orchestrator) Analyze(ctx context.Context, in analyzer.Input) (*Analysis, error) {
	ep := o.endpoints.Current()
	if strings.TrimSpace(ep) == "" {
		o.tracker.RequireSettings(EndpointRequiredMessage)
		o.logger.Warn("analysis requested without endpoint")
		return nil, ErrEndpointRequired
	}

	a := &Analysis{
		ID:        uuid.New().String(),
		Endpoint:  ep,
		StartedAt: time.Now().UTC(),
	}
	a.Token = o.tracker.Begin()

	logger := o.logger.With(
		logging.Field{Key: "analysis_id", Value: a.ID},
		logging.Field{Key: "token", Value: a.Token})
	logger.Info("analysis started", logging.Field{Key: "endpoint", Value: ep})

	res, err := o.client.Submit(ctx, ep, in)
	a.FinishedAt = time.Now().UTC()
	if err != nil {
		a.Stale = !o.tracker.Fail(a.Token, err)
		logger.Warn("analysis failed",
			logging.Field{Key: "error", Value: err.Error()},
			logging.Field{Key: "stale", Value: a.Stale})
		return a, err
	}

	a.Result = res
	a.Stale = !o.tracker.Succeed(a.Token, res)
	logger.Info("analysis finished",
		logging.Field{Key: "stale", Value: a.Stale},
		logging.Field{Key: "duration", Value: a.FinishedAt.Sub(a.StartedAt).String()})
	return a, nil
}

// SetEndpoint stores raw (or the URL pulled out of a pasted tunnel log)
// and closes the settings panel.
func (o *Orchestrator) SetEndpoint(ctx context.Context, raw string) (string, error) {
	stored, err := o.endpoints.Set(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("setting endpoint: %w", err)
	}
	o.tracker.SetSettingsOpen(false)
	return stored, nil
}

// Health probes the origin of the stored endpoint.
func (o *Orchestrator) Health(ctx context.Context) (*analyzer.Health, error) {
	ep := o.endpoints.Current()
	if strings.TrimSpace(ep) == "" {
		return nil, ErrEndpointRequired
	}
	return o.client.Health(ctx, ep)
}

// Reset returns the session to idle.
func (o *Orchestrator) Reset() {
	o.tracker.Reset()
}

// Close releases the analysis client's transport.
func (o *Orchestrator) Close() error {
	if o.client == nil {
		return nil
	}
	return o.client.Close()
}
