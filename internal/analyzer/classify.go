package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/codeprobe/internal/webclient"
)

func isJSON(resp *webclient.Response) bool {
	return strings.Contains(resp.Headers.Get("Content-Type"), "application/json")
}

// classifyFailure converts a non-2xx response into an *Error.
func classifyFailure(target string, resp *webclient.Response) *Error {
	if isJSON(resp) {
		var body struct {
			Error string `json:"error"`
		}
		msg := ""
		if err := json.Unmarshal(resp.Body, &body); err == nil {
			msg = body.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("Server Error: %d %s", resp.StatusCode, resp.Status)
		}
		return &Error{Kind: KindServerError, Message: appendTarget(target, msg), Target: target, StatusCode: resp.StatusCode}
	}
	e := interstitialError(target, resp.StatusCode, resp.Status, pageTitle(resp.Body))
	e.Message = appendTarget(target, e.Message)
	return e
}

// withTarget wraps err as an Unknown failure whose message names target.
func withTarget(target string, err error) *Error {
	return &Error{Kind: KindUnknown, Message: appendTarget(target, err.Error()), Target: target, Err: err}
}

// appendTarget adds " (Target: <url>)" to msg unless it already names target.
func appendTarget(target, msg string) string {
	if strings.Contains(msg, target) {
		return msg
	}
	return msg + fmt.Sprintf(" (Target: %s)", target)
}

// pageTitle returns the trimmed <title> of an HTML document, or "".
func pageTitle(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// LooksLikeInterstitial reports whether an HTML page is a tunnel provider's
// warning page rather than the analysis service.
func LooksLikeInterstitial(title string, body []byte) bool {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "ngrok") {
		return true
	}
	return bytes.Contains(body, []byte("ERR_NGROK"))
}
