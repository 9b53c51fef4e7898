// Package browser drives a headless Chrome through chromedp. One Session owns
// the Chrome process; every Page lives in its own browser context so cookies,
// cache and storage never leak between device profiles.
package browser

import (
	"context"
	"log/slog"
	"time"
)

// Response is a top-level document response seen by a Page.
type Response struct {
	URL    string
	Status int
}

// Page is a single tab configured for one device profile.
type Page interface {
	// ObserveResponses installs fn as the document response observer,
	// replacing any previous one. Redirect responses are reported too.
	ObserveResponses(fn func(Response))
	// Navigate loads url and returns once the DOM content is parsed.
	Navigate(ctx context.Context, url string) (*Response, error)
	URL(ctx context.Context) (string, error)
	// Text returns the rendered text content of the document body.
	Text(ctx context.Context) (string, error)
	// Links returns the resolved href of every anchor on the page.
	Links(ctx context.Context) ([]string, error)
	// Screenshot captures the viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Config controls how Chrome is launched and how pages are emulated.
type Config struct {
	ExecPath  string
	Headless  bool
	NoSandbox bool
	Locale    string
	// StartTimeout bounds the browser launch.
	StartTimeout time.Duration
	Logger       *slog.Logger
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{Headless: true, Locale: "en-US", StartTimeout: 30 * time.Second}
}
