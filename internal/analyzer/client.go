package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/raysh454/codeprobe/internal/endpoint"
	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/model"
	"github.com/raysh454/codeprobe/internal/webclient"
)

// Config holds analyzer options. It is embedded in app.Config.
type Config struct {
	// ForceSecure treats every submission as coming from an HTTPS page.
	ForceSecure bool
}

type secureKey struct{}

// WithSecureContext marks ctx as originating from a page served over HTTPS.
func WithSecureContext(ctx context.Context, secure bool) context.Context {
	return context.WithValue(ctx, secureKey{}, secure)
}

func secureFrom(ctx context.Context) bool {
	v, _ := ctx.Value(secureKey{}).(bool)
	return v
}

// Client submits code to the remote analysis service.
type Client struct {
	wc     webclient.WebClient
	cfg    Config
	logger logging.Logger
}

// NewClient returns a Client posting through wc.
func NewClient(wc webclient.WebClient, cfg Config, logger logging.Logger) (*Client, error) {
	if wc == nil {
		return nil, fmt.Errorf("NewClient: nil webclient")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		wc:     wc,
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "analyzer"}),
	}, nil
}

// Submit sends in to the service behind endpoint and returns its report.
// Every failure is an *Error. Exactly one request is made, never retried.
func (c *Client) Submit(ctx context.Context, endpointURL string, in Input) (*model.AnalysisResult, error) {
	if !in.valid() {
		return nil, &Error{Kind: KindInvalidInput, Message: "No input provided"}
	}

	headers, body, err := buildBody(in)
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: err.Error(), Err: err}
	}

	target := NormalizeTarget(endpointURL)
	logger := c.logger.With(
		logging.Field{Key: "request_id", Value: uuid.NewString()},
		logging.Field{Key: "target", Value: target})

	if mixedContentBlocked(c.cfg.ForceSecure || secureFrom(ctx), target) {
		logger.Warn("blocked insecure backend from secure context")
		return nil, securityBlockError(target)
	}

	logger.Info("submitting analysis",
		logging.Field{Key: "mode", Value: inputMode(in)},
		logging.Field{Key: "bytes", Value: len(body)})

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     target,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		logger.Warn("analysis request failed", logging.Field{Key: "error", Value: err.Error()})
		if errors.Is(err, webclient.ErrTransport) {
			return nil, connectionFailedError(target, err)
		}
		return nil, withTarget(target, err)
	}

	if !resp.OK() {
		failure := classifyFailure(target, resp)
		logger.Warn("analysis service returned an error",
			logging.Field{Key: "status", Value: resp.StatusCode},
			logging.Field{Key: "kind", Value: string(failure.Kind)},
			logging.Field{Key: "page_title", Value: failure.PageTitle})
		return nil, failure
	}

	result, err := model.DecodeAnalysisResult(resp.Body)
	if err != nil {
		logger.Warn("decoding analysis result", logging.Field{Key: "error", Value: err.Error()})
		return nil, withTarget(target, fmt.Errorf("decode analysis result: %w", err))
	}

	logger.Info("analysis completed", logging.Field{Key: "status", Value: result.Status})
	return result, nil
}

// Health describes what the backend origin returned.
type Health struct {
	Origin       string `json:"origin"`
	StatusCode   int    `json:"status_code"`
	Reachable    bool   `json:"reachable"`
	Interstitial bool   `json:"interstitial"`
	Title        string `json:"title,omitempty"`
}

// Health issues a GET against the origin behind endpoint. A transport
// failure is returned as a ConnectionFailed *Error; any HTTP answer counts
// as reachable.
func (c *Client) Health(ctx context.Context, endpointURL string) (*Health, error) {
	origin := endpoint.DeriveOrigin(NormalizeTarget(endpointURL))

	headers := http.Header{}
	headers.Set(bypassHeader, bypassValue)

	resp, err := c.wc.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: origin, Headers: headers})
	if err != nil {
		if errors.Is(err, webclient.ErrTransport) {
			return nil, connectionFailedError(origin, err)
		}
		return nil, withTarget(origin, err)
	}

	title := pageTitle(resp.Body)
	h := &Health{
		Origin:       origin,
		StatusCode:   resp.StatusCode,
		Reachable:    true,
		Interstitial: LooksLikeInterstitial(title, resp.Body),
		Title:        title,
	}
	c.logger.Debug("health probe",
		logging.Field{Key: "origin", Value: origin},
		logging.Field{Key: "status", Value: resp.StatusCode})
	return h, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.wc.Close()
}

func inputMode(in Input) string {
	if in.hasFile() {
		return "file"
	}
	return "text"
}
