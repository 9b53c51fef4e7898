package interstitial_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/selimozcann/StoreHunter/internal/interstitial"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/testutil"
	"github.com/selimozcann/StoreHunter/internal/trace"
)

const (
	shortLink = "https://lnkd.in/gAbCdEf"
	playURL   = "https://play.google.com/store/apps/details?id=com.x"
	warning   = "This link will take you to a page that's not on LinkedIn. Because this is an external link, we're unable to verify it for safety."
)

func newResolver() *interstitial.Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return interstitial.NewResolver(interstitial.Rules{}, trace.New(trace.Config{Timeout: time.Second}, logger), logger)
}

func TestExtract(t *testing.T) {
	rules := interstitial.DefaultRules()
	tests := []struct {
		name  string
		links []string
		text  string
		want  string
	}{
		{
			name:  "anchor wins",
			links: []string{"https://www.linkedin.com/help", "javascript:void(0)", playURL},
			text:  "see https://example.com/other",
			want:  playURL,
		},
		{
			name: "text fallback",
			text: "Destination: https://apps.apple.com/us/app/x/id1. Continue?",
			want: "https://apps.apple.com/us/app/x/id1",
		},
		{
			name:  "only family links",
			links: []string{"https://www.linkedin.com/legal"},
			text:  "go back to https://lnkd.in/other",
			want:  "",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rules.Extract(tt.links, tt.text); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetection(t *testing.T) {
	rules := interstitial.DefaultRules()
	if !rules.Applies(shortLink) || !rules.Applies("https://www.linkedin.com/safety/go") {
		t.Fatalf("expected LinkedIn family to apply")
	}
	if rules.Applies("https://bit.ly/x") {
		t.Fatalf("unexpected match for other domain")
	}
	if !rules.IsWarning("You are LEAVING LINKEDIN") {
		t.Fatalf("phrase match must be case-insensitive")
	}
	if rules.IsWarning("Welcome to our app") {
		t.Fatalf("unexpected warning match")
	}
}

func TestMaybeResolveBypasses(t *testing.T) {
	page := testutil.NewFakePage(map[string]testutil.Step{
		shortLink: {Status: 200, Text: warning, Links: []string{"https://www.linkedin.com/help", playURL}},
		playURL:   {Status: 200},
	})
	ctx := context.Background()
	chain := model.NewChain(shortLink)
	if _, err := page.Navigate(ctx, shortLink); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	res := newResolver().MaybeResolve(ctx, page, shortLink, chain)
	if !res.Bypassed || res.Destination != playURL || res.Outcome == nil {
		t.Fatalf("expected bypass, got %+v", res)
	}
	got := chain.URLs()
	want := []string{shortLink, model.InterstitialMarker, playURL}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestMaybeResolveSkips(t *testing.T) {
	ctx := context.Background()

	t.Run("other domain", func(t *testing.T) {
		page := testutil.NewFakePage(map[string]testutil.Step{"https://bit.ly/x": {Status: 200, Text: warning, Links: []string{playURL}}})
		_, _ = page.Navigate(ctx, "https://bit.ly/x")
		chain := model.NewChain("https://bit.ly/x")
		if res := newResolver().MaybeResolve(ctx, page, "https://bit.ly/x", chain); res.Bypassed || chain.Len() != 1 {
			t.Fatalf("expected no bypass, got %+v %v", res, chain.URLs())
		}
	})

	t.Run("no destination", func(t *testing.T) {
		page := testutil.NewFakePage(map[string]testutil.Step{shortLink: {Status: 200, Text: warning}})
		_, _ = page.Navigate(ctx, shortLink)
		chain := model.NewChain(shortLink)
		if res := newResolver().MaybeResolve(ctx, page, shortLink, chain); res.Bypassed || chain.Len() != 1 {
			t.Fatalf("expected no bypass, got %+v %v", res, chain.URLs())
		}
	})

	t.Run("text error swallowed", func(t *testing.T) {
		page := testutil.NewFakePage(nil)
		page.TextErr = errors.New("target closed")
		chain := model.NewChain(shortLink)
		if res := newResolver().MaybeResolve(ctx, page, shortLink, chain); res.Bypassed {
			t.Fatalf("expected no bypass")
		}
	})

	t.Run("destination failure swallowed", func(t *testing.T) {
		page := testutil.NewFakePage(map[string]testutil.Step{
			shortLink: {Status: 200, Text: warning, Links: []string{playURL}},
			playURL:   {Err: errors.New("net::ERR_CONNECTION_RESET at " + playURL)},
		})
		_, _ = page.Navigate(ctx, shortLink)
		chain := model.NewChain(shortLink)
		res := newResolver().MaybeResolve(ctx, page, shortLink, chain)
		if !res.Bypassed || res.Outcome != nil {
			t.Fatalf("expected bypass without outcome, got %+v", res)
		}
		if !chain.Contains(model.InterstitialMarker) {
			t.Fatalf("marker missing from %v", chain.URLs())
		}
	})
}
