// Package browser drives a real Chrome instance to check that the analysis
// backend is reachable the way a user's browser would see it.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/logging"
)

// Options controls a Verify run.
type Options struct {
	// Headless hides the browser window.
	Headless bool
	// Bypass sends the tunnel bypass header, like the analysis client does.
	Bypass bool
	// Timeout bounds the page load. Zero means 30s.
	Timeout time.Duration
}

// Probe is what the browser saw at the origin.
type Probe struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Interstitial bool   `json:"interstitial"`
}

// Verify loads origin in Chrome and reports the page title and whether it
// is a tunnel warning page.
func Verify(ctx context.Context, origin string, opts Options, logger logging.Logger) (*Probe, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Field{Key: "component", Value: "browser"})

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	cctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	cctx, cancelTimeout := context.WithTimeout(cctx, timeout)
	defer cancelTimeout()

	actions := []chromedp.Action{network.Enable()}
	if opts.Bypass {
		actions = append(actions, network.SetExtraHTTPHeaders(network.Headers{"ngrok-skip-browser-warning": "true"}))
	}

	var title, html string
	actions = append(actions,
		chromedp.Navigate(origin),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)

	if err := chromedp.Run(cctx, actions...); err != nil {
		logger.Warn("browser verification failed",
			logging.Field{Key: "origin", Value: origin},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("verify %s: %w", origin, err)
	}

	probe := &Probe{
		URL:          origin,
		Title:        title,
		Interstitial: analyzer.LooksLikeInterstitial(title, []byte(html)),
	}
	logger.Info("browser verification finished",
		logging.Field{Key: "origin", Value: origin},
		logging.Field{Key: "title", Value: title},
		logging.Field{Key: "interstitial", Value: probe.Interstitial})
	return probe, nil
}

// Open shows origin in a visible browser window and blocks until ctx is
// done, so the user can click through a tunnel warning page.
func Open(ctx context.Context, origin string) error {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", false))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	cctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if err := chromedp.Run(cctx, chromedp.Navigate(origin)); err != nil {
		return fmt.Errorf("open %s: %w", origin, err)
	}
	<-ctx.Done()
	return nil
}
