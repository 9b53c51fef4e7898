// Package testutil provides scripted browser fakes for engine tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/selimozcann/StoreHunter/internal/browser"
	"github.com/selimozcann/StoreHunter/internal/model"
)

// Step scripts what happens when a FakePage navigates to a URL.
type Step struct {
	// Redirects are reported to the response observer in order.
	Redirects []browser.Response
	// Status of the final document response; 0 means no response.
	Status int
	// FinalURL is the page URL afterwards; empty means the navigated URL.
	FinalURL string
	Text     string
	Links    []string
	// Err is returned from Navigate after redirects are reported.
	Err error
	// Block makes Navigate wait for the context to end.
	Block bool
}

// FakePage is a browser.Page driven by a route table.
type FakePage struct {
	Routes        map[string]Step
	TextErr       error
	ScreenshotErr error

	mu          sync.Mutex
	observer    func(browser.Response)
	step        Step
	current     string
	navigations []string
	closed      bool
}

// NewFakePage returns a page that starts at about:blank.
func NewFakePage(routes map[string]Step) *FakePage {
	return &FakePage{Routes: routes, current: "about:blank"}
}

func (p *FakePage) ObserveResponses(fn func(browser.Response)) {
	p.mu.Lock()
	p.observer = fn
	p.mu.Unlock()
}

func (p *FakePage) Navigate(ctx context.Context, url string) (*browser.Response, error) {
	p.mu.Lock()
	step, ok := p.Routes[url]
	if !ok {
		step = Step{Status: 200}
	}
	p.navigations = append(p.navigations, url)
	p.step = step
	fn := p.observer
	p.mu.Unlock()

	for _, r := range step.Redirects {
		if fn != nil {
			fn(r)
		}
	}
	if step.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	p.mu.Lock()
	if step.FinalURL != "" {
		p.current = step.FinalURL
	} else if step.Err == nil {
		p.current = url
	}
	current := p.current
	p.mu.Unlock()

	var resp *browser.Response
	if step.Status != 0 {
		resp = &browser.Response{URL: current, Status: step.Status}
	}
	return resp, step.Err
}

func (p *FakePage) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *FakePage) Text(ctx context.Context) (string, error) {
	if p.TextErr != nil {
		return "", p.TextErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step.Text, nil
}

func (p *FakePage) Links(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.step.Links...), nil
}

func (p *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return []byte("png"), nil
}

func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("page closed twice")
	}
	p.closed = true
	return nil
}

// Navigations lists the URLs navigated to, in order.
func (p *FakePage) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Closed reports whether Close was called.
func (p *FakePage) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// FakeBrowser hands out FakePages sharing one route table.
type FakeBrowser struct {
	Routes  map[string]Step
	OpenErr error

	mu     sync.Mutex
	pages  []*FakePage
	closes int
}

func (b *FakeBrowser) NewPage(ctx context.Context, profile model.DeviceProfile) (browser.Page, error) {
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	p := NewFakePage(b.Routes)
	b.mu.Lock()
	b.pages = append(b.pages, p)
	b.mu.Unlock()
	return p, nil
}

// Pages returns every page opened so far.
func (b *FakeBrowser) Pages() []*FakePage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*FakePage(nil), b.pages...)
}

// Close records that the browser was shut down.
func (b *FakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

// Closes reports how many times Close was called.
func (b *FakeBrowser) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}
