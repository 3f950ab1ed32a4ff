package analyzer

import "fmt"

// Kind classifies a failed submission.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindSecurityBlock    Kind = "security_block"
	KindServerError      Kind = "server_error"
	KindInterstitial     Kind = "interstitial_or_unknown_response"
	KindConnectionFailed Kind = "connection_failed"
	KindUnknown          Kind = "unknown"
)

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrSecurityBlock    = &Error{Kind: KindSecurityBlock}
	ErrServerError      = &Error{Kind: KindServerError}
	ErrInterstitial     = &Error{Kind: KindInterstitial}
	ErrConnectionFailed = &Error{Kind: KindConnectionFailed}
)

// Error is the single user-facing failure type returned by Submit. Message
// is what gets shown to the user.
type Error struct {
	Kind    Kind
	Message string
	// Target is the normalized URL the request was (or would have been) sent to.
	Target string
	// StatusCode is set for ServerError and Interstitial.
	StatusCode int
	// PageTitle is the <title> of an HTML error page, when there was one.
	PageTitle string
	Err       error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ReopensSettings reports whether the failure points at a misconfigured
// endpoint rather than a backend problem.
func (e *Error) ReopensSettings() bool {
	return e.Kind == KindConnectionFailed || e.Kind == KindSecurityBlock
}

func securityBlockError(target string) *Error {
	return &Error{
		Kind:   KindSecurityBlock,
		Target: target,
		Message: fmt.Sprintf("Security Block: You are on a secure site (HTTPS) but trying to connect to an insecure backend (%s).\n\n"+
			"Browsers block this. Please use your HTTPS tunnel URL.", target),
	}
}

func connectionFailedError(target string, cause error) *Error {
	return &Error{
		Kind:   KindConnectionFailed,
		Target: target,
		Err:    cause,
		Message: fmt.Sprintf("Connection failed to: %q\n\nTroubleshooting:\n"+
			"1. Is the backend running?\n"+
			"2. Is the tunnel (ngrok) running?\n"+
			"3. Did you open the URL with \"Verify URL\" to bypass the tunnel warning page?", target),
	}
}

func interstitialError(target string, status int, statusText, title string) *Error {
	return &Error{
		Kind:       KindInterstitial,
		Target:     target,
		StatusCode: status,
		PageTitle:  title,
		Message: fmt.Sprintf("Server returned status %d (%s).\n\n"+
			"If you are using ngrok, this might be the \"Visit Site\" warning page. "+
			"Open the backend URL with \"Verify URL\" to authorize it, then retry.", status, statusText),
	}
}
