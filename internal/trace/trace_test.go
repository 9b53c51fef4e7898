package trace_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/selimozcann/StoreHunter/internal/browser"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/testutil"
	"github.com/selimozcann/StoreHunter/internal/trace"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNavigateRecordsRedirects(t *testing.T) {
	page := testutil.NewFakePage(map[string]testutil.Step{
		"https://short.example/a": {
			Redirects: []browser.Response{
				{URL: "https://short.example/a", Status: 301},
				{URL: "https://track.example/r", Status: 302},
				{URL: "https://track.example/r", Status: 302},
			},
			Status:   200,
			FinalURL: "https://apps.apple.com/us/app/x/id1",
		},
	})
	tr := trace.New(trace.Config{Timeout: time.Second}, quietLogger())
	chain := model.NewChain("https://short.example/a")

	out, err := tr.Navigate(context.Background(), page, "https://short.example/a", chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := chain.URLs()
	if len(got) != 2 || got[0] != "https://short.example/a" || got[1] != "https://track.example/r" {
		t.Fatalf("unexpected chain %v", got)
	}
	if out.HTTPStatus == nil || *out.HTTPStatus != 200 {
		t.Fatalf("expected status 200, got %v", out.HTTPStatus)
	}
	if out.CurrentURL != "https://apps.apple.com/us/app/x/id1" {
		t.Fatalf("unexpected current URL %s", out.CurrentURL)
	}
	if out.Aborted {
		t.Fatalf("expected clean completion")
	}
}

func TestNavigateIgnoresNonRedirectResponses(t *testing.T) {
	page := testutil.NewFakePage(map[string]testutil.Step{
		"https://a.example/": {Redirects: []browser.Response{{URL: "https://a.example/404", Status: 404}}, Status: 200},
	})
	tr := trace.New(trace.Config{Timeout: time.Second}, quietLogger())
	chain := model.NewChain("https://a.example/")
	if _, err := tr.Navigate(context.Background(), page, "https://a.example/", chain); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chain.Len() != 1 {
		t.Fatalf("expected only the input URL, got %v", chain.URLs())
	}
}

func TestNavigateAbortIsNotFatal(t *testing.T) {
	abort := &browser.NavigationAbortedError{Reason: "net::ERR_ABORTED", URL: "https://apps.apple.com/us/app/x/id1"}
	page := testutil.NewFakePage(map[string]testutil.Step{
		"https://short.example/a": {Err: abort},
	})
	tr := trace.New(trace.Config{Timeout: time.Second, AbortGrace: 10 * time.Millisecond}, quietLogger())
	chain := model.NewChain("https://short.example/a")

	start := time.Now()
	out, err := tr.Navigate(context.Background(), page, "https://short.example/a", chain)
	if err != nil {
		t.Fatalf("abort must not be an error, got %v", err)
	}
	if !out.Aborted || out.AbortErr == nil || out.AbortErr.URL != abort.URL {
		t.Fatalf("expected aborted outcome, got %+v", out)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected grace wait")
	}
}

func TestNavigateTimeout(t *testing.T) {
	page := testutil.NewFakePage(map[string]testutil.Step{
		"https://slow.example/": {Block: true},
	})
	tr := trace.New(trace.Config{Timeout: 20 * time.Millisecond}, quietLogger())
	_, err := tr.Navigate(context.Background(), page, "https://slow.example/", model.NewChain("https://slow.example/"))
	if !errors.Is(err, browser.ErrNavigationTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !strings.Contains(err.Error(), "20ms exceeded") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNavigateOtherErrorIsFatal(t *testing.T) {
	page := testutil.NewFakePage(map[string]testutil.Step{
		"https://dns.example/": {Err: errors.New("net::ERR_NAME_NOT_RESOLVED at https://dns.example/")},
	})
	tr := trace.New(trace.Config{Timeout: time.Second}, quietLogger())
	_, err := tr.Navigate(context.Background(), page, "https://dns.example/", model.NewChain("https://dns.example/"))
	if err == nil || !strings.Contains(err.Error(), "ERR_NAME_NOT_RESOLVED") {
		t.Fatalf("expected raw error, got %v", err)
	}
}

func TestNavigateCancelledDuringGrace(t *testing.T) {
	page := testutil.NewFakePage(map[string]testutil.Step{
		"https://short.example/a": {Err: &browser.NavigationAbortedError{Reason: "net::ERR_ABORTED"}},
	})
	tr := trace.New(trace.Config{Timeout: time.Second, AbortGrace: time.Hour}, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := tr.Navigate(ctx, page, "https://short.example/a", model.NewChain("https://short.example/a"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestNavigateUntypedAbortMessage(t *testing.T) {
	page := testutil.NewFakePage(map[string]testutil.Step{
		"https://short.example/a": {Err: errors.New("net::ERR_ABORTED at https://play.google.com/store/apps/details?id=com.x")},
	})
	tr := trace.New(trace.Config{Timeout: time.Second}, quietLogger())
	out, err := tr.Navigate(context.Background(), page, "https://short.example/a", model.NewChain("https://short.example/a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Aborted || !strings.Contains(out.AbortErr.Error(), "play.google.com") {
		t.Fatalf("expected abort carrying the message, got %+v", out)
	}
}
