// Package engine wires the browser, tracker, resolver, tester and runner into
// one batch run. The CLI and the HTTP service both go through it.
package engine

import (
	"context"
	"log/slog"

	"github.com/selimozcann/StoreHunter/internal/browser"
	"github.com/selimozcann/StoreHunter/internal/config"
	"github.com/selimozcann/StoreHunter/internal/interstitial"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/runner"
	"github.com/selimozcann/StoreHunter/internal/tester"
	"github.com/selimozcann/StoreHunter/internal/trace"
)

// Session is a launched browser shared by one batch.
type Session interface {
	tester.Browser
	Close() error
}

// Launcher starts a browser.
type Launcher func(ctx context.Context, cfg browser.Config) (Session, error)

// Chrome launches a local Chrome through chromedp.
func Chrome(ctx context.Context, cfg browser.Config) (Session, error) {
	s, err := browser.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Config groups the settings of every stage.
type Config struct {
	Browser      browser.Config
	Trace        trace.Config
	Interstitial interstitial.Rules
	Tester       tester.Config
	Runner       runner.Config
}

// FromConfiguration maps loaded settings onto engine stages.
func FromConfiguration(c *config.Configuration) Config {
	bc := browser.DefaultConfig()
	bc.ExecPath = c.Browser.ExecPath
	bc.Headless = c.Browser.Headless
	bc.NoSandbox = c.Browser.NoSandbox
	if c.Browser.Locale != "" {
		bc.Locale = c.Browser.Locale
	}
	return Config{
		Browser: bc,
		Trace: trace.Config{
			Timeout:    c.Navigation.Timeout,
			AbortGrace: c.Navigation.AbortGrace,
		},
		Interstitial: interstitial.Rules{
			Domains: c.Interstitial.Domains,
			Phrases: c.Interstitial.Phrases,
		},
		Tester: tester.Config{SettleDelay: c.Navigation.SettleDelay},
		Runner: runner.Config{Rate: c.Batch.Rate, Burst: c.Batch.Burst},
	}
}

// Options vary per batch.
type Options struct {
	Screenshots bool
}

// Engine runs batches.
type Engine struct {
	cfg    Config
	launch Launcher
	logger *slog.Logger
}

// New creates an Engine. A nil launch uses Chrome; a nil logger falls back
// to slog.Default.
func New(cfg Config, launch Launcher, logger *slog.Logger) *Engine {
	if launch == nil {
		launch = Chrome
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Browser.Logger == nil {
		cfg.Browser.Logger = logger
	}
	return &Engine{cfg: cfg, launch: launch, logger: logger}
}

// Run opens one browser, tests url with every profile in order and closes
// the browser. A launch failure is returned before any profile runs.
func (e *Engine) Run(ctx context.Context, url string, profiles []model.DeviceProfile, opts Options, observers ...runner.Observer) ([]model.TestResult, error) {
	sess, err := e.launch(ctx, e.cfg.Browser)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			e.logger.Debug("close browser", "error", cerr)
		}
	}()

	tracker := trace.New(e.cfg.Trace, e.logger)
	resolver := interstitial.NewResolver(e.cfg.Interstitial, tracker, e.logger)
	tcfg := e.cfg.Tester
	tcfg.CaptureScreenshots = opts.Screenshots
	t := tester.New(sess, tracker, resolver, tcfg, e.logger)

	r, err := runner.New(e.cfg.Runner, t, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Info("batch started", "url", url, "devices", len(profiles), "screenshots", opts.Screenshots)
	return r.Run(ctx, url, profiles, observers...)
}
