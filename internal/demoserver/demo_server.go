package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/codeprobe/internal/logging"
)

const (
	bypassHeader  = "ngrok-skip-browser-warning"
	maxUploadSize = 32 << 20
)

// DemoServer is a stand-in analysis backend for trying the dashboard
// without the real service.
type DemoServer struct {
	cfg    Config
	logger logging.Logger

	mu       sync.RWMutex
	mode     Mode
	requests int
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	if cfg.InitialMode == "" {
		cfg.InitialMode = ModeOK
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DemoServer{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		mode:   cfg.InitialMode,
	}
}

// Handler returns the demo routes.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/analyze", s.analyzeHandler)

	// Control panel for mode switching
	mux.HandleFunc("/demo/control", s.controlPanelHandler)
	mux.HandleFunc("/demo/mode", s.modeHandler)

	return s.cors(mux)
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("demo backend starting",
		logging.Field{Key: "analyze_url", Value: fmt.Sprintf("http://localhost%s/analyze", addr)},
		logging.Field{Key: "control_url", Value: fmt.Sprintf("http://localhost%s/demo/control", addr)})
	return http.ListenAndServe(addr, s.Handler())
}

// Mode returns the current answer mode.
func (s *DemoServer) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the answer mode. Unknown modes are rejected.
func (s *DemoServer) SetMode(m Mode) error {
	switch m {
	case ModeOK, ModeError, ModeHTML:
	default:
		return fmt.Errorf("unknown mode %q", m)
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	s.logger.Info("mode changed", logging.Field{Key: "mode", Value: string(m)})
	return nil
}

// Requests returns how many /analyze calls were answered.
func (s *DemoServer) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

func (s *DemoServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+bypassHeader)
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bypassed reports whether r may reach the backend. Otherwise the tunnel
// warning page has been written.
func (s *DemoServer) bypassed(w http.ResponseWriter, r *http.Request) bool {
	if !s.cfg.RequireBypass || r.Header.Get(bypassHeader) != "" {
		return true
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, interstitialHTML)
	return false
}

func (s *DemoServer) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !s.bypassed(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

func (s *DemoServer) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.bypassed(w, r) {
		return
	}

	if s.cfg.Latency > 0 {
		select {
		case <-time.After(s.cfg.Latency):
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	s.requests++
	mode := s.mode
	s.mu.Unlock()

	switch mode {
	case ModeError:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Analysis engine crashed"})
		return
	case ModeHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, badGatewayHTML)
		return
	}

	name, code, err := readSubmission(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res := Analyze(name, code)
	s.logger.Debug("analysed submission",
		logging.Field{Key: "file", Value: name},
		logging.Field{Key: "language", Value: res.Language})
	writeJSON(w, http.StatusOK, res)
}

func readSubmission(r *http.Request) (name, code string, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return "", "", fmt.Errorf("invalid upload")
		}
		defer r.MultipartForm.RemoveAll()

		file, hdr, err := r.FormFile("file")
		if err != nil {
			return "", "", fmt.Errorf("No file provided")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", "", fmt.Errorf("reading upload: %w", err)
		}
		return hdr.Filename, string(data), nil
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Code) == "" {
		return "", "", fmt.Errorf("No code provided")
	}
	return "", body.Code, nil
}

// controlPanelHandler serves the control panel for mode switching.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.New("control").Parse(controlPanelHTML))
	data := struct {
		Mode     Mode
		Modes    []Mode
		Requests int
		Port     int
	}{
		Mode:     s.Mode(),
		Modes:    []Mode{ModeOK, ModeError, ModeHTML},
		Requests: s.Requests(),
		Port:     s.cfg.Port,
	}
	w.Header().Set("Content-Type", "text/html")
	_ = tmpl.Execute(w, data)
}

// modeHandler reports the mode on GET and switches it on POST ?set=MODE.
func (s *DemoServer) modeHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := s.SetMode(Mode(r.FormValue("set"))); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":     s.Mode(),
		"requests": s.Requests(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
