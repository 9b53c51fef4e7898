// Package output renders batch results for people: the console report, the
// live progress bar and the HTML report.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/statuscolor"
)

const (
	ruleWidth    = 80
	maxURLLength = 70
	maxListed    = 3
)

var (
	bold    = color.New(color.Bold, color.FgWhite)
	heading = color.New(color.Bold, color.FgCyan)
	white   = color.New(color.FgWhite)
	gray    = color.New(color.FgHiBlack)
	greenC  = color.New(color.FgGreen)
	redC    = color.New(color.FgRed)
	yellowC = color.New(color.FgYellow)

	boldGreen  = color.New(color.Bold, color.FgGreen)
	boldYellow = color.New(color.Bold, color.FgYellow)
	boldRed    = color.New(color.Bold, color.FgRed)
	emphasis   = color.New(color.Bold)
)

// Console prints the full text report.
type Console struct {
	w   io.Writer
	now func() time.Time
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, now: time.Now}
}

// Report prints every section in order.
func (c *Console) Report(url string, results []model.TestResult, summary model.Summary) {
	fmt.Fprintln(c.w)
	c.rule()
	_, _ = heading.Fprintln(c.w, "           APP STORE REDIRECT TEST REPORT")
	c.rule()
	_, _ = white.Fprintf(c.w, "Tested URL: %s\n", color.New(color.Underline).Sprint(url))
	_, _ = gray.Fprintf(c.w, "Timestamp: %s\n", c.now().Format(time.RFC1123))
	c.rule()

	c.Summary(summary)
	c.Table(results)
	c.Failures(results)
	c.Patterns(results)
	c.Recommendation(summary)
}

func (c *Console) rule() {
	_, _ = bold.Fprintln(c.w, strings.Repeat("═", ruleWidth))
}

// Summary prints the counters and per-platform rates.
func (c *Console) Summary(s model.Summary) {
	sep := gray.Sprint("  │  ")
	fmt.Fprintln(c.w)
	c.rule()
	_, _ = heading.Fprintln(c.w, "                         TEST SUMMARY")
	c.rule()

	rate := emphasis.Sprint(statuscolor.ForRate(s.SuccessRate).Sprintf("%d%%", s.SuccessRate))
	fmt.Fprintf(c.w, "  Total Devices Tested: %d%sSuccess Rate: %s\n", s.Total, sep, rate)
	fmt.Fprintln(c.w,
		greenC.Sprintf("  ✓ Passed: %d", s.Passed)+sep+
			redC.Sprintf("✗ Failed: %d", s.Failed)+sep+
			yellowC.Sprintf("⚠ Warnings: %d", s.Warnings)+sep+
			gray.Sprintf("✕ Errors: %d", s.Errors))
	_, _ = white.Fprintln(c.w, strings.Repeat("─", ruleWidth))
	fmt.Fprintf(c.w, "  iOS Devices: %d/%d %s%sAndroid Devices: %d/%d %s\n",
		s.IOSSuccess, s.IOSDevices, statuscolor.ForRate(s.IOSSuccessRate).Sprintf("(%d%%)", s.IOSSuccessRate),
		sep,
		s.AndroidSuccess, s.AndroidDevices, statuscolor.ForRate(s.AndroidSuccessRate).Sprintf("(%d%%)", s.AndroidSuccessRate))
	fmt.Fprintf(c.w, "  Avg Response Time: %dms\n", s.AverageResponseTime)
	c.rule()
	fmt.Fprintln(c.w)
}

// Table prints one row per result.
func (c *Console) Table(results []model.TestResult) {
	_, _ = heading.Fprintln(c.w, "DETAILED TEST RESULTS")
	fmt.Fprintln(c.w)

	table := tablewriter.NewWriter(c.w)
	table.SetHeader([]string{"Device", "Platform", "Status", "Expected", "Actual", "Time"})
	table.SetAutoWrapText(true)
	table.SetColWidth(35)
	for _, r := range results {
		actual := statuscolor.Gray("N/A")
		if st := r.Store(); st != model.StoreNone {
			actual = st.String()
		}
		table.Append([]string{
			r.Device,
			statuscolor.Platform(r.Platform),
			statuscolor.Sprint(r.Status),
			r.ExpectedStore.String(),
			actual,
			strconv.FormatInt(r.ResponseTime, 10) + "ms",
		})
	}
	table.Render()
}

// Failures lists FAIL and ERROR results with their chains.
func (c *Console) Failures(results []model.TestResult) {
	var failures []model.TestResult
	for _, r := range results {
		if r.Status == model.StatusFail || r.Status == model.StatusError {
			failures = append(failures, r)
		}
	}
	if len(failures) == 0 {
		_, _ = greenC.Fprintln(c.w, "\n✓ All tests passed! Your redirects are working correctly.")
		fmt.Fprintln(c.w)
		return
	}

	_, _ = boldRed.Fprintln(c.w, "\n⚠ FAILED TESTS - ACTION REQUIRED")
	fmt.Fprintln(c.w)
	for i, f := range failures {
		_, _ = redC.Fprintf(c.w, "%d. %s (%s)\n", i+1, f.Device, f.Platform)
		_, _ = white.Fprintf(c.w, "   Expected: %s\n", f.ExpectedStore)
		actual := "No redirect detected"
		if st := f.Store(); st != model.StoreNone {
			actual = st.String()
		}
		_, _ = white.Fprintf(c.w, "   Actual: %s\n", actual)
		if msg := f.ErrorText(); msg != "" {
			_, _ = yellowC.Fprintf(c.w, "   Error: %s\n", msg)
		}
		if f.FinalURL != "" {
			_, _ = gray.Fprintf(c.w, "   Final URL: %s\n", f.FinalURL)
		}
		if n := len(f.RedirectChain); n > 0 {
			_, _ = gray.Fprintf(c.w, "   Redirect chain (%d steps):\n", n)
			for j, u := range f.RedirectChain {
				prefix := "   →"
				switch {
				case j == 0:
					prefix = "   → Start"
				case j == n-1:
					prefix = "   → End"
				}
				_, _ = gray.Fprintf(c.w, "   %s: %s\n", prefix, Truncate(u, maxURLLength))
			}
		}
		fmt.Fprintln(c.w)
	}
}

// Pattern groups results that share a chain length and destination store.
type Pattern struct {
	Platforms []model.Platform
	Devices   []string
	Store     model.Store
	Steps     int
}

// GroupPatterns groups results by chain length and store, in first-seen order.
// Results without a chain are skipped.
func GroupPatterns(results []model.TestResult) []Pattern {
	var patterns []Pattern
	index := map[string]int{}
	for _, r := range results {
		if len(r.RedirectChain) == 0 {
			continue
		}
		key := fmt.Sprintf("%d-%s", len(r.RedirectChain), r.Store())
		i, ok := index[key]
		if !ok {
			i = len(patterns)
			index[key] = i
			patterns = append(patterns, Pattern{Store: r.Store(), Steps: len(r.RedirectChain)})
		}
		p := &patterns[i]
		p.Devices = append(p.Devices, r.Device)
		if !containsPlatform(p.Platforms, r.Platform) {
			p.Platforms = append(p.Platforms, r.Platform)
		}
	}
	return patterns
}

func containsPlatform(ps []model.Platform, p model.Platform) bool {
	for _, x := range ps {
		if x == p {
			return true
		}
	}
	return false
}

// Patterns prints the redirect pattern analysis.
func (c *Console) Patterns(results []model.TestResult) {
	_, _ = heading.Fprintln(c.w, "\nREDIRECT CHAIN ANALYSIS")
	fmt.Fprintln(c.w)
	for _, p := range GroupPatterns(results) {
		names := make([]string, len(p.Platforms))
		for i, pl := range p.Platforms {
			names[i] = string(pl)
		}
		_, _ = white.Fprintf(c.w, "Pattern %s: %d devices\n", strings.Join(names, " & "), len(p.Devices))
		_, _ = gray.Fprintf(c.w, "  Final destination: %s\n", p.Store)
		_, _ = gray.Fprintf(c.w, "  Redirect steps: %d\n", p.Steps)
		_, _ = gray.Fprintf(c.w, "  Devices: %s\n\n", listDevices(p.Devices))
	}
}

func listDevices(devices []string) string {
	if len(devices) <= maxListed {
		return strings.Join(devices, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(devices[:maxListed], ", "), len(devices)-maxListed)
}

// Recommendation prints the closing advice for the success rate.
func (c *Console) Recommendation(s model.Summary) {
	switch {
	case s.SuccessRate == 100:
		_, _ = boldGreen.Fprintln(c.w, "✓ RECOMMENDATION: Your redirects are working perfectly across all devices!")
	case s.SuccessRate >= 80:
		_, _ = boldYellow.Fprintln(c.w, "⚠ RECOMMENDATION: Most redirects work, but some devices need attention.")
	default:
		_, _ = boldRed.Fprintln(c.w, "✗ RECOMMENDATION: Critical issues detected. Fix redirects before launching.")
	}
	fmt.Fprintln(c.w)
}

// Truncate shortens s to n runes followed by "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
