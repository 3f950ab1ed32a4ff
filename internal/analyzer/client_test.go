package analyzer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/testutil"
	"github.com/raysh454/codeprobe/internal/webclient"
)

func newClient(t *testing.T, wc webclient.WebClient, cfg analyzer.Config) *analyzer.Client {
	t.Helper()
	c, err := analyzer.NewClient(wc, cfg, &testutil.DummyLogger{})
	require.NoError(t, err)
	return c
}

func asAnalyzerError(t *testing.T, err error) *analyzer.Error {
	t.Helper()
	var aerr *analyzer.Error
	require.True(t, errors.As(err, &aerr), "expected *analyzer.Error, got %T: %v", err, err)
	return aerr
}

func TestSubmit_NoInputFailsBeforeNetwork(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "myhost.example.com", analyzer.Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, analyzer.ErrInvalidInput)
	assert.Equal(t, "No input provided", err.Error())
	assert.Equal(t, 0, wc.Calls())
}

func TestSubmit_BothInputsRejected(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	c := newClient(t, wc, analyzer.Config{})

	in := analyzer.Input{Code: "x = 1", File: &analyzer.FileInput{Name: "a.py", Content: strings.NewReader("y")}}
	_, err := c.Submit(context.Background(), "myhost.example.com", in)
	assert.ErrorIs(t, err, analyzer.ErrInvalidInput)
	assert.Equal(t, 0, wc.Calls())
}

func TestSubmit_TextBuildsJSONRequest(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.JSONResponse(http.StatusOK, testutil.SampleReport)
		},
	}
	c := newClient(t, wc, analyzer.Config{})

	res, err := c.Submit(context.Background(), "myhost.example.com", analyzer.Text("print('hi')"))
	require.NoError(t, err)
	assert.Equal(t, "Python", res.Language)

	req := wc.Last()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://myhost.example.com/analyze", req.URL)
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Equal(t, "true", req.Headers.Get("ngrok-skip-browser-warning"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, map[string]string{"code": "print('hi')"}, body)
}

func TestSubmit_FileBuildsMultipartRequest(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "https://abc.ngrok.io/", analyzer.File("main.py", strings.NewReader("import os\n")))
	require.NoError(t, err)

	req := wc.Last()
	require.NotNil(t, req)
	assert.Equal(t, "https://abc.ngrok.io/analyze", req.URL)
	assert.Equal(t, "true", req.Headers.Get("ngrok-skip-browser-warning"))

	mediaType, params, err := mime.ParseMediaType(req.Headers.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	require.NotEmpty(t, params["boundary"])

	mr := multipart.NewReader(strings.NewReader(string(req.Body)), params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "main.py", part.FileName())
	content, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "import os\n", string(content))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSubmit_SecurityBlockFromSecureContext(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	c := newClient(t, wc, analyzer.Config{})
	ctx := analyzer.WithSecureContext(context.Background(), true)

	_, err := c.Submit(ctx, "http://remote.example.com", analyzer.Text("x"))
	require.Error(t, err)
	aerr := asAnalyzerError(t, err)
	assert.Equal(t, analyzer.KindSecurityBlock, aerr.Kind)
	assert.Contains(t, err.Error(), "http://remote.example.com")
	assert.True(t, aerr.ReopensSettings())
	assert.Equal(t, 0, wc.Calls())
}

func TestSubmit_SecurityBlockSkipsLoopback(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	c := newClient(t, wc, analyzer.Config{ForceSecure: true})

	for _, ep := range []string{"http://localhost:8080", "http://127.0.0.1:5000/analyze"} {
		_, err := c.Submit(context.Background(), ep, analyzer.Text("x"))
		require.NoError(t, err, ep)
	}
	assert.Equal(t, 2, wc.Calls())
}

func TestSubmit_InsecureContextAllowsHTTP(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "http://remote.example.com", analyzer.Text("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, wc.Calls())
}

func TestSubmit_ServerErrorUsesJSONErrorField(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.JSONResponse(http.StatusBadRequest, `{"error": "Unsupported file type"}`)
		},
	}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "myhost.example.com", analyzer.Text("x"))
	aerr := asAnalyzerError(t, err)
	assert.Equal(t, analyzer.KindServerError, aerr.Kind)
	assert.Equal(t, "Unsupported file type (Target: https://myhost.example.com/analyze)", aerr.Error())
	assert.Equal(t, http.StatusBadRequest, aerr.StatusCode)
	assert.False(t, aerr.ReopensSettings())
}

func TestSubmit_ServerErrorGenericMessage(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.JSONResponse(http.StatusInternalServerError, `{"detail": "boom"}`)
		},
	}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "myhost.example.com", analyzer.Text("x"))
	assert.ErrorIs(t, err, analyzer.ErrServerError)
	assert.Equal(t, "Server Error: 500 Internal Server Error (Target: https://myhost.example.com/analyze)", err.Error())
}

func TestSubmit_NonJSONFailureIsInterstitial(t *testing.T) {
	t.Parallel()
	page := `<html><head><title>ngrok - Visit Site</title></head><body>ERR_NGROK_6024</body></html>`
	wc := &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.HTMLResponse(http.StatusForbidden, page)
		},
	}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "abc.ngrok.io", analyzer.Text("x"))
	aerr := asAnalyzerError(t, err)
	assert.Equal(t, analyzer.KindInterstitial, aerr.Kind)
	assert.Contains(t, aerr.Error(), "Server returned status 403 (Forbidden)")
	assert.Contains(t, aerr.Error(), "warning page")
	assert.True(t, strings.HasSuffix(aerr.Error(), "retry. (Target: https://abc.ngrok.io/analyze)"), aerr.Error())
	assert.Equal(t, "ngrok - Visit Site", aerr.PageTitle)
}

func TestSubmit_TransportFailureNamesTarget(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Err: &webclient.TransportError{URL: "https://down.example.com/analyze", Err: errors.New("dial tcp: connection refused")},
	}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "down.example.com/", analyzer.Text("x"))
	aerr := asAnalyzerError(t, err)
	assert.Equal(t, analyzer.KindConnectionFailed, aerr.Kind)
	assert.Contains(t, aerr.Error(), "https://down.example.com/analyze")
	assert.Contains(t, aerr.Error(), "Troubleshooting")
	assert.True(t, aerr.ReopensSettings())
	assert.Equal(t, 1, wc.Calls())
}

func TestSubmit_RealRefusedConnection(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, nil)
	require.NoError(t, err)
	c := newClient(t, wc, analyzer.Config{})

	_, err = c.Submit(context.Background(), "http://"+addr, analyzer.Text("x"))
	assert.ErrorIs(t, err, analyzer.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "http://"+addr+"/analyze")
}

func TestSubmit_OtherErrorsGetTargetAppended(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Err: errors.New("something odd")}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "myhost.example.com", analyzer.Text("x"))
	aerr := asAnalyzerError(t, err)
	assert.Equal(t, analyzer.KindUnknown, aerr.Kind)
	assert.Equal(t, "something odd (Target: https://myhost.example.com/analyze)", aerr.Error())
}

func TestSubmit_SuccessToleratesMistypedFields(t *testing.T) {
	t.Parallel()
	bodies := []string{
		`{"language": 42, "framework": "Flask", "lint_issues": ["E501"]}`,
		`{"framework": "Flask", "lint_issues": ["E501"], "duplicate_code": {"similar_blocks": [{"similarity": "0.9", "block1": "a", "block2": "b"}]}}`,
		`{"framework": "Flask", "lint_issues": ["E501"], "open_passwords": {"password": "hunter2"}}`,
	}
	for _, body := range bodies {
		wc := &testutil.DummyWebClient{
			Respond: func(*webclient.Request) *webclient.Response {
				return testutil.JSONResponse(http.StatusOK, body)
			},
		}
		c := newClient(t, wc, analyzer.Config{})

		res, err := c.Submit(context.Background(), "myhost.example.com", analyzer.Text("x"))
		require.NoError(t, err, body)
		assert.Equal(t, "Flask", res.Framework)
		assert.Equal(t, []string{"E501"}, res.LintIssues)
		assert.JSONEq(t, body, string(res.Raw))
	}
}

func TestSubmit_SuccessWithNonJSONBody(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.HTMLResponse(http.StatusOK, "<html>hello</html>")
		},
	}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Submit(context.Background(), "myhost.example.com", analyzer.Text("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https://myhost.example.com/analyze")
}

func TestSubmit_EndToEndAgainstHTTPTest(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"No code provided"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, testutil.SampleReport)
	}))
	defer ts.Close()

	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, ts.Client())
	require.NoError(t, err)
	c := newClient(t, wc, analyzer.Config{})
	defer c.Close()

	res, err := c.Submit(context.Background(), ts.URL, analyzer.Text("print(1)"))
	require.NoError(t, err)
	assert.Equal(t, "Flask", res.Framework)
	assert.JSONEq(t, testutil.SampleReport, string(res.Raw))
}

func TestHealth_ReportsInterstitial(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Respond: func(*webclient.Request) *webclient.Response {
			return testutil.HTMLResponse(http.StatusOK, `<html><head><title>ngrok</title></head></html>`)
		},
	}
	c := newClient(t, wc, analyzer.Config{})

	h, err := c.Health(context.Background(), "abc.ngrok.io/analyze/")
	require.NoError(t, err)
	assert.Equal(t, "https://abc.ngrok.io", h.Origin)
	assert.True(t, h.Reachable)
	assert.True(t, h.Interstitial)
	assert.Equal(t, "https://abc.ngrok.io", wc.Last().URL)
	assert.Equal(t, http.MethodGet, wc.Last().Method)
}

func TestHealth_TransportFailure(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Err: &webclient.TransportError{URL: "x", Err: errors.New("no route")}}
	c := newClient(t, wc, analyzer.Config{})

	_, err := c.Health(context.Background(), "down.example.com")
	assert.ErrorIs(t, err, analyzer.ErrConnectionFailed)
}

func TestNewClient_NilWebClient(t *testing.T) {
	t.Parallel()
	_, err := analyzer.NewClient(nil, analyzer.Config{}, nil)
	require.Error(t, err)
}
