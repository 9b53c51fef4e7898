// Package trace drives a single browser navigation and records every redirect
// it passes through.
package trace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/selimozcann/StoreHunter/internal/browser"
	"github.com/selimozcann/StoreHunter/internal/model"
)

// Config holds the per-navigation limits.
type Config struct {
	Timeout    time.Duration
	AbortGrace time.Duration
}

// DefaultConfig matches the limits used by the CLI and service.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second, AbortGrace: 2 * time.Second}
}

// Outcome describes how a navigation ended.
type Outcome struct {
	CurrentURL string
	HTTPStatus *int
	// Aborted is set when Chrome aborted the load, usually because a redirect
	// handed off to a native app scheme. AbortErr carries the details.
	Aborted  bool
	AbortErr *browser.NavigationAbortedError
}

// Tracker performs navigations on a page.
type Tracker struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Tracker. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Tracker {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.AbortGrace < 0 {
		cfg.AbortGrace = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{cfg: cfg, logger: logger}
}

// Navigate loads target on page, appending target and every 3xx hop to chain.
// An aborted load is reported through Outcome, not as an error.
func (t *Tracker) Navigate(ctx context.Context, page browser.Page, target string, chain *model.Chain) (Outcome, error) {
	chain.Add(target)

	var (
		mu   sync.Mutex
		hops []string
	)
	page.ObserveResponses(func(r browser.Response) {
		if r.Status < 300 || r.Status >= 400 {
			return
		}
		mu.Lock()
		hops = append(hops, r.URL)
		mu.Unlock()
	})
	defer page.ObserveResponses(nil)

	navCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	resp, err := page.Navigate(navCtx, target)
	deadline := errors.Is(navCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	cancel()

	mu.Lock()
	for _, h := range hops {
		if chain.Add(h) {
			t.logger.Debug("redirect", "url", h)
		}
	}
	mu.Unlock()

	out := Outcome{CurrentURL: target}
	if resp != nil {
		status := resp.Status
		out.HTTPStatus = &status
	}

	var aborted *browser.NavigationAbortedError
	if err != nil && !errors.As(err, &aborted) && browser.IsAbortReason(err.Error()) {
		aborted = &browser.NavigationAbortedError{Reason: err.Error()}
	}
	switch {
	case err == nil:
	case aborted != nil:
		t.logger.Debug("navigation aborted", "url", aborted.URL, "reason", aborted.Reason)
		out.Aborted = true
		out.AbortErr = aborted
		if werr := Sleep(ctx, t.cfg.AbortGrace); werr != nil {
			return out, werr
		}
	case deadline:
		return out, fmt.Errorf("%w of %dms exceeded", browser.ErrNavigationTimeout, t.cfg.Timeout.Milliseconds())
	default:
		return out, err
	}

	if u, uerr := page.URL(ctx); uerr == nil && u != "" {
		out.CurrentURL = u
	}
	return out, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
