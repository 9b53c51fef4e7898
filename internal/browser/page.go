package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	bodyTextScript = `document.body ? document.body.innerText : ""`
	linksScript    = `Array.from(document.querySelectorAll("a[href]"), a => a.href)`
)

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	domReady chan struct{}

	mu         sync.Mutex
	observer   func(Response)
	mainFrame  cdp.FrameID
	lastStatus *Response
	attempted  string

	closeOnce sync.Once
}

func newChromePage(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) *chromePage {
	p := &chromePage{
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		domReady: make(chan struct{}, 1),
	}
	chromedp.ListenTarget(ctx, p.onEvent)
	return p
}

// onEvent runs on the chromedp event loop and must not block or issue
// commands.
func (p *chromePage) onEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Type != network.ResourceTypeDocument || !p.isMainFrame(e.FrameID) {
			return
		}
		if e.RedirectResponse != nil {
			p.record(e.RedirectResponse)
		}
		if e.Request != nil {
			p.setAttempted(e.Request.URL)
		}
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || !p.isMainFrame(e.FrameID) || e.Response == nil {
			return
		}
		p.record(e.Response)
	case *page.EventDomContentEventFired:
		select {
		case p.domReady <- struct{}{}:
		default:
		}
	}
}

// isMainFrame treats the frame of the first document request in this tab as
// the main frame.
func (p *chromePage) isMainFrame(id cdp.FrameID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mainFrame == "" {
		p.mainFrame = id
	}
	return p.mainFrame == id
}

func (p *chromePage) record(r *network.Response) {
	resp := Response{URL: r.URL, Status: int(r.Status)}
	p.mu.Lock()
	p.lastStatus = &resp
	fn := p.observer
	if resp.Status >= 300 && resp.Status < 400 {
		if loc := headerValue(r.Headers, "Location"); loc != "" {
			if next := resolve(r.URL, loc); isWeb(next) {
				p.attempted = next
			}
		}
	}
	p.mu.Unlock()
	if fn != nil {
		fn(resp)
	}
}

func (p *chromePage) setAttempted(u string) {
	if !isWeb(u) {
		return
	}
	p.mu.Lock()
	p.attempted = u
	p.mu.Unlock()
}

func (p *chromePage) ObserveResponses(fn func(Response)) {
	p.mu.Lock()
	p.observer = fn
	p.mu.Unlock()
}

func (p *chromePage) Navigate(ctx context.Context, target string) (*Response, error) {
	runCtx, cancel := bindContext(p.ctx, ctx, 0)
	defer cancel()

	p.mu.Lock()
	p.lastStatus = nil
	p.attempted = target
	p.mu.Unlock()
	select {
	case <-p.domReady:
	default:
	}

	var nav page.NavigateReturns
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return cdp.Execute(ctx, page.CommandNavigate, page.Navigate(target), &nav)
	}))
	if err != nil {
		return p.last(), p.contextError(ctx, err)
	}
	if nav.ErrorText != "" {
		if IsAbortReason(nav.ErrorText) {
			return p.last(), &NavigationAbortedError{Reason: "net::" + strings.TrimPrefix(nav.ErrorText, "net::"), URL: p.attemptedURL()}
		}
		return p.last(), fmt.Errorf("%s at %s", nav.ErrorText, target)
	}

	select {
	case <-p.domReady:
		return p.last(), nil
	case <-runCtx.Done():
		return p.last(), p.contextError(ctx, runCtx.Err())
	}
}

// contextError prefers the caller's context error so deadlines surface as
// context.DeadlineExceeded rather than the derived cancellation.
func (p *chromePage) contextError(caller context.Context, err error) error {
	if cerr := caller.Err(); cerr != nil {
		return cerr
	}
	if errors.Is(err, context.Canceled) && p.ctx.Err() != nil {
		return fmt.Errorf("page closed: %w", err)
	}
	return err
}

func (p *chromePage) last() *Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastStatus == nil {
		return nil
	}
	r := *p.lastStatus
	return &r
}

func (p *chromePage) attemptedURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempted
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var u string
	err := p.run(ctx, chromedp.Location(&u))
	return u, err
}

func (p *chromePage) Text(ctx context.Context) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Evaluate(bodyTextScript, &text))
	return text, err
}

func (p *chromePage) Links(ctx context.Context) ([]string, error) {
	var links []string
	err := p.run(ctx, chromedp.Evaluate(linksScript, &links))
	return links, err
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := bindContext(p.ctx, ctx, 0)
	defer cancel()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return p.contextError(ctx, err)
	}
	return nil
}

// Close disposes the tab and its browser context.
func (p *chromePage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = chromedp.Cancel(p.ctx)
		p.cancel()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})
	return err
}

func headerValue(h network.Headers, key string) string {
	for k, v := range h {
		if strings.EqualFold(k, key) {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func isWeb(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
