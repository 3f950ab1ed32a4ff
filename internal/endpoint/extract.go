package endpoint

import (
	"regexp"
	"strings"
)

var (
	tunnelURLPattern = regexp.MustCompile(`https?://\S+`)
	analyzeSuffix    = regexp.MustCompile(`/analyze/?$`)
)

// trailingJunk is stripped from the end of a URL lifted out of a log line.
const trailingJunk = `'";>)`

// ExtractTunnelURL recognises a pasted tunnel log line such as
// "Forwarding https://abc.ngrok.io -> http://localhost:8080" and returns the
// first URL in it. isLogPaste is false when text does not look like a log
// line, in which case url is empty.
func ExtractTunnelURL(text string) (url string, isLogPaste bool) {
	if !strings.Contains(text, "->") && !strings.Contains(text, "Forwarding") {
		return "", false
	}
	match := tunnelURLPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimRight(match, trailingJunk), true
}

// DeriveOrigin strips a trailing /analyze (with optional slash) so the
// service's base URL can be opened directly.
func DeriveOrigin(endpoint string) string {
	return analyzeSuffix.ReplaceAllString(endpoint, "")
}
