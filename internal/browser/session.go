package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/selimozcann/StoreHunter/internal/model"
)

// Session owns one Chrome process shared by every page of a batch.
type Session struct {
	cfg    Config
	logger *slog.Logger

	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	closeOnce sync.Once
}

// Open launches Chrome. The returned error is a *LaunchError when the process
// cannot be started; nothing is left running in that case.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Locale == "" {
		cfg.Locale = "en-US"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("lang", cfg.Locale),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	chromeLog := func(format string, args ...any) {
		logger.Debug("chrome", "msg", fmt.Sprintf(format, args...))
	}
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(chromeLog),
		chromedp.WithErrorf(chromeLog),
	)

	s := &Session{
		cfg:           cfg,
		logger:        logger,
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}

	// The first Run must use the NewContext context itself; a derived
	// context would tie the browser's lifetime to it.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()
	timeout := cfg.StartTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	var err error
	select {
	case err = <-started:
	case <-timer.C:
		err = fmt.Errorf("no response after %s", timeout)
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		_ = s.Close()
		return nil, &LaunchError{Err: err}
	}
	logger.Debug("browser started", "headless", cfg.Headless)
	return s, nil
}

// NewPage opens an isolated browser context emulating profile. The caller
// must Close the page.
func (s *Session) NewPage(ctx context.Context, profile model.DeviceProfile) (Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx, chromedp.WithNewBrowserContext())
	p := newChromePage(tabCtx, cancelTab, s.logger.With("device", profile.Name))

	if err := ctx.Err(); err != nil {
		cancelTab()
		return nil, err
	}
	// First Run on tabCtx creates the target and its browser context.
	err := chromedp.Run(tabCtx,
		network.Enable(),
		page.Enable(),
		emulation.SetUserAgentOverride(profile.UserAgent).WithAcceptLanguage(s.cfg.Locale),
		emulation.SetDeviceMetricsOverride(int64(profile.Viewport.Width), int64(profile.Viewport.Height), profile.DeviceScaleFactor, profile.IsMobile),
		emulation.SetTouchEmulationEnabled(profile.HasTouch).WithMaxTouchPoints(5),
		emulation.SetLocaleOverride().WithLocale(s.cfg.Locale),
	)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("configure page for %s: %w", profile.Name, err)
	}
	return p, nil
}

// Close terminates Chrome and invalidates every page. It is safe to call more
// than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = chromedp.Cancel(s.browserCtx)
		s.cancelBrowser()
		s.cancelAlloc()
	})
	return err
}

// bindContext derives a context from the chromedp context base that is also
// cancelled when caller is done. A positive timeout adds a deadline.
func bindContext(base, caller context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(base)
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		prev := cancel
		cancel = func() { cancelTimeout(); prev() }
	}
	if caller == nil {
		return ctx, cancel
	}
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
