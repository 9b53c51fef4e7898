package output_test

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/output"
	"github.com/selimozcann/StoreHunter/internal/runner"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func settled(device string, p model.Platform, status model.Status, store model.Store, chain ...string) model.TestResult {
	r := model.NewResult(model.DeviceProfile{Name: device, Platform: p})
	r.RedirectChain = chain
	if len(chain) > 0 {
		r.FinalURL = chain[len(chain)-1]
	}
	if store != model.StoreNone {
		r.ActualStore = &store
	}
	msg := ""
	if status == model.StatusFail {
		msg = "Expected " + r.ExpectedStore.String() + " redirect"
	}
	r.Settle(status, status == model.StatusPass, msg)
	return r
}

func sampleResults() []model.TestResult {
	long := "https://example.com/" + strings.Repeat("a", 100)
	return []model.TestResult{
		settled("iPhone A", model.PlatformIOS, model.StatusPass, model.StoreApple, "https://lnkd.in/x", "https://apps.apple.com/app/id1"),
		settled("iPhone B", model.PlatformIOS, model.StatusPass, model.StoreApple, "https://lnkd.in/x", "https://apps.apple.com/app/id1"),
		settled("Pixel A", model.PlatformAndroid, model.StatusFail, model.StoreApple, "https://lnkd.in/x", long, "https://apps.apple.com/app/id1"),
	}
}

func TestGroupPatterns(t *testing.T) {
	results := sampleResults()
	results = append(results,
		settled("iPhone C", model.PlatformIOS, model.StatusPass, model.StoreApple, "https://lnkd.in/x", "https://apps.apple.com/app/id1"),
		settled("iPhone D", model.PlatformIOS, model.StatusPass, model.StoreApple, "https://lnkd.in/x", "https://apps.apple.com/app/id1"),
		model.NewResult(model.DeviceProfile{Name: "empty", Platform: model.PlatformAndroid}),
	)
	patterns := output.GroupPatterns(results)
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	if patterns[0].Steps != 2 || len(patterns[0].Devices) != 4 || patterns[0].Store != model.StoreApple {
		t.Fatalf("unexpected first pattern %+v", patterns[0])
	}
	if patterns[1].Steps != 3 || patterns[1].Platforms[0] != model.PlatformAndroid {
		t.Fatalf("unexpected second pattern %+v", patterns[1])
	}

	var buf bytes.Buffer
	output.NewConsole(&buf).Patterns(results)
	if !strings.Contains(buf.String(), "Devices: iPhone A, iPhone B, iPhone C +1 more") {
		t.Fatalf("expected truncated device list, got:\n%s", buf.String())
	}
}

func TestConsoleReport(t *testing.T) {
	results := sampleResults()
	var buf bytes.Buffer
	output.NewConsole(&buf).Report("https://lnkd.in/x", results, runner.Summarize(results))
	out := buf.String()

	mustContain := []string{
		"TEST SUMMARY",
		"Success Rate: 67%",
		"iOS Devices: 2/2 (100%)",
		"Android Devices: 0/1 (0%)",
		"FAILED TESTS - ACTION REQUIRED",
		"1. Pixel A (Android)",
		"→ Start: https://lnkd.in/x",
		"→ End: https://apps.apple.com/app/id1",
		"Redirect chain (3 steps):",
		"RECOMMENDATION: Critical issues detected",
	}
	for _, sub := range mustContain {
		if !strings.Contains(out, sub) {
			t.Fatalf("expected report to contain %q\n%s", sub, out)
		}
	}
	if strings.Contains(out, strings.Repeat("a", 71)) {
		t.Fatalf("long chain URLs must be truncated")
	}
}

func TestRecommendationThresholds(t *testing.T) {
	tests := []struct {
		rate int
		want string
	}{
		{100, "working perfectly"},
		{80, "some devices need attention"},
		{79, "Critical issues detected"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		output.NewConsole(&buf).Recommendation(model.Summary{SuccessRate: tt.rate})
		if !strings.Contains(buf.String(), tt.want) {
			t.Fatalf("rate %d: expected %q, got %q", tt.rate, tt.want, buf.String())
		}
	}
}

func TestAllPassedMessage(t *testing.T) {
	var buf bytes.Buffer
	output.NewConsole(&buf).Failures(sampleResults()[:2])
	if !strings.Contains(buf.String(), "All tests passed") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := output.NewProgressBar(&buf)
	bar.Observe(runner.Progress{Current: 1, Total: 2, Device: "iPhone A"})
	first := buf.String()
	if !strings.HasPrefix(first, "\r") || !strings.Contains(first, "50% - iPhone A") {
		t.Fatalf("unexpected progress line %q", first)
	}
	if strings.Count(first, "█") != 25 || strings.Count(first, "░") != 25 {
		t.Fatalf("unexpected bar %q", first)
	}
	bar.Observe(runner.Progress{Current: 2, Total: 2, Device: "Pixel A"})
	if !strings.HasSuffix(buf.String(), "100% - Pixel A\n") {
		t.Fatalf("expected newline after last device, got %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := output.Truncate("short", 70); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := output.Truncate("abcdef", 3); got != "abc..." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestRenderHTML(t *testing.T) {
	baseTime := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	results := sampleResults()
	page := output.BuildPage("https://lnkd.in/x", results, runner.Summarize(results), map[string]string{
		"platform": "all",
		"devices":  "3",
	}, baseTime)

	var buf bytes.Buffer
	if err := output.RenderHTML(&buf, page); err != nil {
		t.Fatalf("RenderHTML error: %v", err)
	}
	html := buf.String()

	mustContain := []string{
		"StoreHunter Report",
		"https://lnkd.in/x",
		`data-filter="fail"`,
		`class="status-fail"`,
		"Pixel A",
		"2024-05-06T07:08:09Z",
	}
	for _, sub := range mustContain {
		if !strings.Contains(html, sub) {
			t.Fatalf("expected HTML to contain %q", sub)
		}
	}

	idxDevices := strings.Index(html, "<dt>devices</dt>")
	idxPlatform := strings.Index(html, "<dt>platform</dt>")
	if idxDevices == -1 || idxPlatform == -1 {
		t.Fatalf("expected parameters to render")
	}
	if idxDevices > idxPlatform {
		t.Fatalf("expected parameters to be sorted alphabetically")
	}
}

func TestBuildResultView(t *testing.T) {
	r := sampleResults()[2]
	status := 302
	r.HTTPStatus = &status
	v := output.BuildResultView(3, r)
	if v.Index != 3 || v.Actual != "App Store" || v.HTTPStatus != 302 || v.Error == "" || len(v.Chain) != 3 {
		t.Fatalf("unexpected view %+v", v)
	}
	v.Chain[0] = "mutated"
	if r.RedirectChain[0] == "mutated" {
		t.Fatalf("view must copy the chain")
	}
}
