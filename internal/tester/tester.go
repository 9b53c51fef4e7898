// Package tester runs one device profile against a URL and decides whether it
// reached the expected app store.
package tester

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/selimozcann/StoreHunter/internal/browser"
	"github.com/selimozcann/StoreHunter/internal/interstitial"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/trace"
	"github.com/selimozcann/StoreHunter/internal/util"
)

// Browser opens isolated pages. *browser.Session implements it.
type Browser interface {
	NewPage(ctx context.Context, profile model.DeviceProfile) (browser.Page, error)
}

// Config controls optional behaviour of a Tester.
type Config struct {
	CaptureScreenshots bool
	// SettleDelay is waited before the screenshot taken after a bypass.
	SettleDelay time.Duration
	// MaxScreenshots caps captures per test; zero means 3.
	MaxScreenshots int
}

// Tester runs the navigation, bypass and verdict pipeline for one profile.
type Tester struct {
	browser  Browser
	tracker  *trace.Tracker
	resolver *interstitial.Resolver
	cfg      Config
	logger   *slog.Logger
}

// New creates a Tester. A nil logger falls back to slog.Default.
func New(b Browser, tracker *trace.Tracker, resolver *interstitial.Resolver, cfg Config, logger *slog.Logger) *Tester {
	if cfg.MaxScreenshots <= 0 {
		cfg.MaxScreenshots = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tester{browser: b, tracker: tracker, resolver: resolver, cfg: cfg, logger: logger}
}

// WithScreenshots returns a copy of t with screenshot capture set to on.
func (t *Tester) WithScreenshots(on bool) *Tester {
	cp := *t
	cp.cfg.CaptureScreenshots = on
	return &cp
}

// TestDevice tests url with profile. It always returns a settled result; any
// failure is reported as an ERROR verdict.
func (t *Tester) TestDevice(ctx context.Context, url string, profile model.DeviceProfile) (res model.TestResult) {
	start := time.Now()
	res = model.NewResult(profile)
	chain := model.NewChain(url)
	logger := t.logger.With("device", profile.Name)

	var httpStatus *int
	defer func() {
		if r := recover(); r != nil {
			logger.Error("device test panicked", "panic", r)
			t.apply(&res, Decide(profile, url, chain, nil, fmt.Errorf("panic: %v", r)), httpStatus)
		}
		res.ResponseTime = time.Since(start).Milliseconds()
		logger.Debug("device tested", "status", res.Status, "store", res.Store(), "ms", res.ResponseTime)
	}()

	page, err := t.browser.NewPage(ctx, profile)
	if err != nil {
		t.apply(&res, Decide(profile, url, chain, nil, err), nil)
		return res
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			logger.Debug("close page", "error", cerr)
		}
	}()

	shots := &shooter{page: page, enabled: t.cfg.CaptureScreenshots, max: t.cfg.MaxScreenshots, start: start, logger: logger}

	out, err := t.tracker.Navigate(ctx, page, url, chain)
	httpStatus = out.HTTPStatus
	if err != nil {
		t.apply(&res, Decide(profile, url, chain, nil, err), httpStatus)
		return res
	}
	shots.capture(ctx)

	origin := url
	if !t.resolver.Applies(url) {
		origin = out.CurrentURL
	}
	if rs := t.resolver.MaybeResolve(ctx, page, origin, chain); rs.Bypassed {
		if rs.Outcome != nil {
			out = *rs.Outcome
			if out.HTTPStatus != nil {
				httpStatus = out.HTTPStatus
			}
		}
		if shots.enabled {
			_ = trace.Sleep(ctx, t.cfg.SettleDelay)
			shots.capture(ctx)
		}
	}
	shots.capture(ctx)
	res.Screenshots = shots.taken

	if cur, uerr := page.URL(ctx); uerr == nil && util.IsWebURL(cur) {
		chain.Add(cur)
	}

	var aborted error
	if out.Aborted && out.AbortErr != nil {
		aborted = out.AbortErr
	}
	t.apply(&res, Decide(profile, url, chain, aborted, nil), httpStatus)
	return res
}

func (t *Tester) apply(res *model.TestResult, v Verdict, httpStatus *int) {
	res.FinalURL = v.FinalURL
	res.RedirectChain = v.Chain
	if v.ActualStore != model.StoreNone {
		store := v.ActualStore
		res.ActualStore = &store
	}
	res.HTTPStatus = httpStatus
	res.Settle(v.Status, v.Success, v.Error)
}

type shooter struct {
	page    browser.Page
	enabled bool
	max     int
	start   time.Time
	logger  *slog.Logger
	taken   []model.Screenshot
}

// capture takes a best-effort screenshot; errors are logged and dropped.
func (s *shooter) capture(ctx context.Context) {
	if !s.enabled || len(s.taken) >= s.max {
		return
	}
	img, err := s.page.Screenshot(ctx)
	if err != nil {
		s.logger.Debug("screenshot failed", "error", err)
		return
	}
	u, _ := s.page.URL(ctx)
	s.taken = append(s.taken, model.Screenshot{
		Step:        len(s.taken) + 1,
		URL:         u,
		Image:       base64.StdEncoding.EncodeToString(img),
		TimestampMs: time.Since(s.start).Milliseconds(),
	})
}
