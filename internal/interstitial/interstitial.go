// Package interstitial recognises "you are leaving this site" warning pages
// shown by short-link and social networks, and follows them to the real
// destination.
package interstitial

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/selimozcann/StoreHunter/internal/browser"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/trace"
	"github.com/selimozcann/StoreHunter/internal/util"
)

// Rules decide when a page is an interstitial.
type Rules struct {
	// Domains is the short-link and social-network domain family.
	Domains []string
	// Phrases are matched case-insensitively against the page text.
	Phrases []string
}

// DefaultRules covers LinkedIn's lnkd.in and linkedin.com warnings.
func DefaultRules() Rules {
	return Rules{
		Domains: []string{"lnkd.in", "linkedin.com"},
		Phrases: []string{"external link", "not on LinkedIn", "verify it for safety", "leaving LinkedIn"},
	}
}

// urlToken finds URL-shaped tokens in visible text.
var urlToken = regexp.MustCompile(`https?://[^\s"'<>]+`)

// Applies reports whether origin belongs to the domain family.
func (r Rules) Applies(origin string) bool {
	return util.HostInFamily(origin, r.Domains)
}

// IsWarning reports whether text contains one of the warning phrases.
func (r Rules) IsWarning(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range r.Phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Extract picks the external destination from an interstitial, preferring
// anchors over URLs found in text. It returns "" when nothing qualifies.
func (r Rules) Extract(links []string, text string) string {
	for _, href := range links {
		href = strings.TrimSpace(href)
		if util.IsWebURL(href) && !util.HostInFamily(href, r.Domains) {
			return href
		}
	}
	for _, tok := range urlToken.FindAllString(text, -1) {
		tok = strings.TrimRight(tok, ".,;:!?)]}")
		if util.IsWebURL(tok) && !util.HostInFamily(tok, r.Domains) {
			return tok
		}
	}
	return ""
}

// Resolution reports what the resolver did.
type Resolution struct {
	Bypassed    bool
	Destination string
	// Outcome is the second navigation's result when Bypassed is set and it
	// did not fail outright.
	Outcome *trace.Outcome
}

// Resolver bypasses interstitials using a Tracker for the second navigation.
type Resolver struct {
	rules   Rules
	tracker *trace.Tracker
	logger  *slog.Logger
}

// NewResolver creates a Resolver. Empty rule lists fall back to DefaultRules.
func NewResolver(rules Rules, tracker *trace.Tracker, logger *slog.Logger) *Resolver {
	def := DefaultRules()
	if len(rules.Domains) == 0 {
		rules.Domains = def.Domains
	}
	if len(rules.Phrases) == 0 {
		rules.Phrases = def.Phrases
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{rules: rules, tracker: tracker, logger: logger}
}

// Applies reports whether u belongs to the configured domain family.
func (r *Resolver) Applies(u string) bool { return r.rules.Applies(u) }

// MaybeResolve follows an interstitial shown on page for originURL. Problems
// reading the page or loading the destination are logged and swallowed; the
// chain keeps whatever was recorded.
func (r *Resolver) MaybeResolve(ctx context.Context, page browser.Page, originURL string, chain *model.Chain) Resolution {
	if !r.rules.Applies(originURL) {
		return Resolution{}
	}
	text, err := page.Text(ctx)
	if err != nil {
		r.logger.Debug("interstitial text unavailable", "url", originURL, "error", err)
		return Resolution{}
	}
	if !r.rules.IsWarning(text) {
		return Resolution{}
	}
	links, err := page.Links(ctx)
	if err != nil {
		r.logger.Debug("interstitial links unavailable", "url", originURL, "error", err)
	}
	dest := r.rules.Extract(links, text)
	if dest == "" {
		r.logger.Info("interstitial detected but no destination found", "url", originURL)
		return Resolution{}
	}

	r.logger.Debug("bypassing interstitial", "url", originURL, "destination", dest)
	chain.Add(model.InterstitialMarker)
	res := Resolution{Bypassed: true, Destination: dest}
	out, err := r.tracker.Navigate(ctx, page, dest, chain)
	if err != nil {
		r.logger.Warn("interstitial destination failed", "destination", dest, "error", err)
		return res
	}
	res.Outcome = &out
	return res
}
