package analyzer

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

const analyzePath = "/analyze"

// NormalizeTarget turns a stored endpoint into the URL requests are sent to:
// whitespace trimmed, https:// assumed when no scheme is given, trailing
// slashes removed and /analyze appended when missing. It is idempotent.
func NormalizeTarget(endpoint string) string {
	target := strings.TrimSpace(endpoint)
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}
	target = strings.TrimRight(target, "/")
	if !strings.HasSuffix(target, analyzePath) {
		target += analyzePath
	}
	return target
}

// isLoopbackHost reports whether host is localhost or 127.0.0.1. The host is
// compared in its lowercase ASCII form.
func isLoopbackHost(host string) bool {
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	host = strings.ToLower(host)
	return host == "localhost" || host == "127.0.0.1"
}

// mixedContentBlocked reports whether a page served over HTTPS would be
// refused a request to target.
func mixedContentBlocked(secureContext bool, target string) bool {
	if !secureContext || !strings.HasPrefix(target, "http://") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return true
	}
	return !isLoopbackHost(u.Hostname())
}
