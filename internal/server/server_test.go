package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/app"
	"github.com/raysh454/codeprobe/internal/endpoint"
	"github.com/raysh454/codeprobe/internal/server"
	"github.com/raysh454/codeprobe/internal/session"
	"github.com/raysh454/codeprobe/internal/testutil"
	"github.com/raysh454/codeprobe/internal/webclient"
)

func newTestServer(t *testing.T, store endpoint.Store, wc *testutil.DummyWebClient) *server.Server {
	t.Helper()

	logger := &testutil.DummyLogger{}
	cfg := app.DefaultConfig()
	cfg.StorageRoot = ""
	if store == nil {
		store = endpoint.NewMemoryStore()
	}
	if wc == nil {
		wc = &testutil.DummyWebClient{}
	}

	a, err := app.NewApplication(context.Background(), cfg, app.Parts{Store: store, WebClient: wc, Logger: logger})
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}

	s, err := server.NewServer(server.Config{ListenAddr: ":0", Logger: logger}, a.Orch)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
		_ = a.Shutdown(context.Background())
	})
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

func sampleReportClient() *testutil.DummyWebClient {
	return &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.JSONResponse(http.StatusOK, testutil.SampleReport)
		},
	}
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, "GET", "/api/endpoint", "")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_Preflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, "OPTIONS", "/api/endpoint", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, PUT" {
		t.Errorf("unexpected allow-methods %q", got)
	}
}

// ─── Endpoint ──────────────────────────────────────────────────────────

func TestServer_GetEndpoint_Default(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, "GET", "/api/endpoint", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp server.EndpointResponse
	decodeJSON(t, rec, &resp)
	if resp.Endpoint != endpoint.DefaultEndpoint || resp.Default != endpoint.DefaultEndpoint {
		t.Errorf("unexpected endpoint response %+v", resp)
	}
	if resp.Origin != "https://code-analyzer-1-ii0s.onrender.com" {
		t.Errorf("unexpected origin %q", resp.Origin)
	}
}

func TestServer_SetEndpoint_TunnelLog(t *testing.T) {
	t.Parallel()
	store := endpoint.NewMemoryStore()
	s := newTestServer(t, store, nil)

	body := `{"value":"Forwarding  https://abcd.ngrok-free.app -> http://localhost:5000"}`
	rec := doJSON(t, s, "PUT", "/api/endpoint", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp server.EndpointResponse
	decodeJSON(t, rec, &resp)
	if resp.Endpoint != "https://abcd.ngrok-free.app" {
		t.Errorf("unexpected endpoint %q", resp.Endpoint)
	}
	stored, _, _ := store.Get(context.Background())
	if stored != "https://abcd.ngrok-free.app" {
		t.Errorf("store holds %q", stored)
	}
}

func TestServer_SetEndpoint_InvalidJSON(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, "PUT", "/api/endpoint", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ─── Analyze ───────────────────────────────────────────────────────────

func TestServer_Analyze_JSON(t *testing.T) {
	t.Parallel()
	wc := sampleReportClient()
	s := newTestServer(t, nil, wc)

	rec := doJSON(t, s, "POST", "/api/analyze", `{"code":"print(1)"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Analysis-ID") == "" {
		t.Error("missing X-Analysis-ID header")
	}
	var got map[string]any
	decodeJSON(t, rec, &got)
	if got["framework"] != "Flask" {
		t.Errorf("unexpected body %v", got)
	}

	last := wc.Last()
	if last == nil || string(last.Body) != `{"code":"print(1)"}` {
		t.Fatalf("unexpected upstream request %+v", last)
	}
	if last.Headers.Get("ngrok-skip-browser-warning") != "true" {
		t.Error("bypass header not sent")
	}
}

func TestServer_Analyze_Multipart(t *testing.T) {
	t.Parallel()
	wc := sampleReportClient()
	s := newTestServer(t, nil, wc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "app.py")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write([]byte("print('hi')\n"))
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	last := wc.Last()
	if !strings.HasPrefix(last.Headers.Get("Content-Type"), "multipart/form-data") {
		t.Errorf("expected multipart upstream, got %q", last.Headers.Get("Content-Type"))
	}
	if !bytes.Contains(last.Body, []byte("print('hi')")) {
		t.Error("file content not forwarded")
	}
}

func TestServer_Analyze_NoInput(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	s := newTestServer(t, nil, wc)

	rec := doJSON(t, s, "POST", "/api/analyze", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp server.AnalyzeErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Kind != analyzer.KindInvalidInput || resp.Error != "No input provided" {
		t.Errorf("unexpected error response %+v", resp)
	}
	if wc.Calls() != 0 {
		t.Errorf("expected no upstream calls, got %d", wc.Calls())
	}
}

func TestServer_Analyze_EmptyEndpoint(t *testing.T) {
	t.Parallel()
	store := endpoint.NewMemoryStore()
	_ = store.Set(context.Background(), "")
	s := newTestServer(t, store, nil)

	rec := doJSON(t, s, "POST", "/api/analyze", `{"code":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp server.AnalyzeErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != app.EndpointRequiredMessage || !resp.SettingsOpen {
		t.Errorf("unexpected error response %+v", resp)
	}
}

func TestServer_Analyze_SecurityBlockBehindTLSProxy(t *testing.T) {
	t.Parallel()
	store := endpoint.NewMemoryStore()
	_ = store.Set(context.Background(), "http://203.0.113.7:5000/analyze")
	wc := &testutil.DummyWebClient{}
	s := newTestServer(t, store, wc)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{"code":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp server.AnalyzeErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Kind != analyzer.KindSecurityBlock || !resp.SettingsOpen {
		t.Errorf("unexpected error response %+v", resp)
	}
	if wc.Calls() != 0 {
		t.Errorf("expected no upstream calls, got %d", wc.Calls())
	}
}

func TestServer_Analyze_ConnectionFailed(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Err: &webclient.TransportError{URL: endpoint.DefaultEndpoint, Err: errors.New("refused")}}
	s := newTestServer(t, nil, wc)

	rec := doJSON(t, s, "POST", "/api/analyze", `{"code":"x"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var resp server.AnalyzeErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Kind != analyzer.KindConnectionFailed || !strings.Contains(resp.Error, endpoint.DefaultEndpoint) {
		t.Errorf("unexpected error response %+v", resp)
	}
}

// ─── State ─────────────────────────────────────────────────────────────

func TestServer_StateAndReset(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, sampleReportClient())

	doJSON(t, s, "POST", "/api/analyze", `{"code":"x"}`)

	var snap session.Snapshot
	rec := doJSON(t, s, "GET", "/api/state", "")
	decodeJSON(t, rec, &snap)
	if snap.Status != session.StatusSuccess || snap.Summary == nil || snap.Summary.SecurityIssues != 2 {
		t.Fatalf("unexpected state %+v", snap)
	}

	rec = doJSON(t, s, "POST", "/api/reset", "")
	decodeJSON(t, rec, &snap)
	if snap.Status != session.StatusIdle || snap.Result != nil {
		t.Fatalf("unexpected state after reset %+v", snap)
	}
}

func TestServer_Verify(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.HTMLResponse(http.StatusOK, `<html><head><title>ngrok</title></head><body>ERR_NGROK_6024</body></html>`)
		},
	}
	s := newTestServer(t, nil, wc)

	rec := doJSON(t, s, "GET", "/api/verify", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var h analyzer.Health
	decodeJSON(t, rec, &h)
	if !h.Interstitial || !h.Reachable {
		t.Errorf("unexpected health %+v", h)
	}
}

// ─── Dashboard & docs ──────────────────────────────────────────────────

func TestServer_Dashboard(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, sampleReportClient())
	doJSON(t, s, "POST", "/api/analyze", `{"code":"x"}`)

	rec := doJSON(t, s, "GET", "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Security Findings", "Similar Blocks", "90.0%", endpoint.DefaultEndpoint} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, "GET", "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/analyze") {
		t.Error("swagger doc missing /api/analyze")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────────

func TestServer_StateWebSocket(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil, sampleReportClient())
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/state", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var snap session.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if snap.Status != session.StatusIdle {
		t.Fatalf("expected idle, got %s", snap.Status)
	}

	resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(`{"code":"x"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	for snap.Status != session.StatusSuccess {
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read update: %v", err)
		}
	}
}
