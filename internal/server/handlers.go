package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/app"
	"github.com/raysh454/codeprobe/internal/browser"
	"github.com/raysh454/codeprobe/internal/logging"
)

const (
	maxUploadSize = 32 << 20
	verifyTimeout = 30 * time.Second
)

// Endpoint setting

// handleGetEndpoint godoc
// @Summary Current analysis endpoint
// @Tags endpoint
// @Produce json
// @Success 200 {object} EndpointResponse
// @Router /api/endpoint [get]
func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.endpointResponse())
}

// handleSetEndpoint godoc
// @Summary Store the analysis endpoint
// @Description Accepts a URL or a pasted tunnel log line; the URL is extracted from the latter.
// @Tags endpoint
// @Accept json
// @Produce json
// @Param body body SetEndpointRequest true "endpoint value"
// @Success 200 {object} EndpointResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/endpoint [put]
func (s *Server) handleSetEndpoint(w http.ResponseWriter, r *http.Request) {
	var req SetEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := s.orchestrator.SetEndpoint(r.Context(), req.Value); err != nil {
		s.logger.Error("storing endpoint", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.endpointResponse())
}

func (s *Server) endpointResponse() EndpointResponse {
	m := s.orchestrator.Endpoints()
	return EndpointResponse{
		Endpoint: m.Current(),
		Origin:   m.Origin(),
		Default:  m.Default(),
	}
}

// Analysis

// handleAnalyze godoc
// @Summary Submit code for analysis
// @Description Send {"code": "..."} as JSON, or a multipart form with a "file" part.
// @Tags analysis
// @Accept json,mpfd
// @Produce json
// @Param body body AnalyzeRequest false "pasted code"
// @Param file formData file false "source file"
// @Success 200 {object} model.AnalysisResult
// @Failure 400 {object} AnalyzeErrorResponse
// @Failure 403 {object} AnalyzeErrorResponse
// @Failure 502 {object} AnalyzeErrorResponse
// @Router /api/analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := readInput(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, AnalyzeErrorResponse{Error: err.Error()})
		return
	}
	defer cleanup()

	ctx := analyzer.WithSecureContext(r.Context(), s.secureContext(r))
	a, err := s.orchestrator.Analyze(ctx, in)
	if a != nil {
		w.Header().Set("X-Analysis-ID", a.ID)
		if a.Stale {
			w.Header().Set("X-Analysis-Stale", "true")
		}
	}
	if err != nil {
		status, body := analyzeFailure(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, a.Result)
}

// readInput builds the analyzer input from a JSON or multipart request. An
// empty JSON body yields an empty Input, which the client rejects as
// InvalidInput.
func readInput(r *http.Request) (analyzer.Input, func(), error) {
	noop := func() {}
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return analyzer.Input{}, noop, errors.New("invalid multipart body")
		}
		cleanup := func() { _ = r.MultipartForm.RemoveAll() }

		file, hdr, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return analyzer.Input{Code: r.FormValue("code")}, cleanup, nil
		}
		if err != nil {
			cleanup()
			return analyzer.Input{}, noop, errors.New("invalid file part")
		}
		in := analyzer.File(hdr.Filename, file)
		if code := r.FormValue("code"); code != "" {
			in.Code = code
		}
		return in, func() { _ = file.Close(); cleanup() }, nil
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return analyzer.Input{}, noop, errors.New("invalid JSON body")
	}
	return analyzer.Text(req.Code), noop, nil
}

func analyzeFailure(err error) (int, AnalyzeErrorResponse) {
	if errors.Is(err, app.ErrEndpointRequired) {
		return http.StatusBadRequest, AnalyzeErrorResponse{
			Error:        app.EndpointRequiredMessage,
			SettingsOpen: true,
		}
	}

	var aerr *analyzer.Error
	if !errors.As(err, &aerr) {
		return http.StatusInternalServerError, AnalyzeErrorResponse{Error: err.Error(), Kind: analyzer.KindUnknown}
	}

	body := AnalyzeErrorResponse{Error: aerr.Error(), Kind: aerr.Kind, SettingsOpen: aerr.ReopensSettings()}
	switch aerr.Kind {
	case analyzer.KindInvalidInput:
		return http.StatusBadRequest, body
	case analyzer.KindSecurityBlock:
		return http.StatusForbidden, body
	case analyzer.KindServerError, analyzer.KindInterstitial, analyzer.KindConnectionFailed:
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}

// handleReset godoc
// @Summary Return the session to idle
// @Tags analysis
// @Produce json
// @Success 200 {object} session.Snapshot
// @Router /api/reset [post]
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.orchestrator.Reset()
	writeJSON(w, http.StatusOK, s.orchestrator.Tracker().Snapshot())
}

// handleState godoc
// @Summary Current session state
// @Tags analysis
// @Produce json
// @Success 200 {object} session.Snapshot
// @Router /api/state [get]
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Tracker().Snapshot())
}

// handleVerify godoc
// @Summary Probe the endpoint's origin
// @Description With browser=1 the origin is loaded in headless Chrome instead of a plain GET.
// @Tags endpoint
// @Produce json
// @Param browser query string false "set to 1 to use headless Chrome"
// @Success 200 {object} analyzer.Health
// @Failure 400 {object} AnalyzeErrorResponse
// @Failure 502 {object} AnalyzeErrorResponse
// @Router /api/verify [get]
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("browser") == "1" {
		origin := s.orchestrator.Endpoints().Origin()
		if origin == "" {
			status, body := analyzeFailure(app.ErrEndpointRequired)
			writeJSON(w, status, body)
			return
		}
		probe, err := browser.Verify(r.Context(), origin, browser.Options{
			Headless: true,
			Bypass:   true,
			Timeout:  verifyTimeout,
		}, s.logger)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, AnalyzeErrorResponse{Error: err.Error(), Kind: analyzer.KindConnectionFailed})
			return
		}
		writeJSON(w, http.StatusOK, probe)
		return
	}

	h, err := s.orchestrator.Health(r.Context())
	if err != nil {
		status, body := analyzeFailure(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// handleStateWS streams session snapshots until the client goes away.
func (s *Server) handleStateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	updates, cancel := s.orchestrator.Tracker().Subscribe()
	defer cancel()

	// reader detects the client closing the socket
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
