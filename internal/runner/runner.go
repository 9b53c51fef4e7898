// Package runner tests a URL across many device profiles, one at a time.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vnykmshr/goflow/pkg/ratelimit/bucket"

	"github.com/selimozcann/StoreHunter/internal/model"
)

// DeviceTester runs a single profile. *tester.Tester implements it.
type DeviceTester interface {
	TestDevice(ctx context.Context, url string, profile model.DeviceProfile) model.TestResult
}

// Progress is emitted after each profile completes.
type Progress struct {
	Current int              `json:"current"`
	Total   int              `json:"total"`
	Device  string           `json:"device"`
	Result  model.TestResult `json:"-"`
}

// Observer receives progress synchronously on the runner's goroutine.
type Observer func(Progress)

// Config holds settings for the runner.
type Config struct {
	// Rate limits profile starts per second; 0 disables pacing.
	Rate  float64
	Burst int
}

// Runner coordinates sequential device tests.
type Runner struct {
	tester  DeviceTester
	limiter bucket.Limiter
	logger  *slog.Logger
}

// New creates a Runner. A nil logger falls back to slog.Default.
func New(cfg Config, tester DeviceTester, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{tester: tester, logger: logger}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter, err := bucket.NewSafe(bucket.Limit(cfg.Rate), burst)
		if err != nil {
			return nil, fmt.Errorf("create rate limiter: %w", err)
		}
		r.limiter = limiter
	}
	return r, nil
}

// Run tests url with every profile in order. Cancellation is checked before
// each profile; on cancellation the results gathered so far are returned
// together with ctx.Err().
func (r *Runner) Run(ctx context.Context, url string, profiles []model.DeviceProfile, observers ...Observer) ([]model.TestResult, error) {
	results := make([]model.TestResult, 0, len(profiles))
	total := len(profiles)
	for i, profile := range profiles {
		if err := ctx.Err(); err != nil {
			r.logger.Info("batch cancelled", "completed", i, "total", total)
			return results, err
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return results, err
			}
		}
		r.logger.Debug("testing device", "device", profile.Name, "index", i+1, "total", total)
		res := r.tester.TestDevice(ctx, url, profile)
		results = append(results, res)

		p := Progress{Current: i + 1, Total: total, Device: profile.Name, Result: res}
		for _, obs := range observers {
			if obs != nil {
				obs(p)
			}
		}
	}
	return results, nil
}

// Failed reports whether any result is FAIL or ERROR.
func Failed(results []model.TestResult) bool {
	for _, r := range results {
		if r.Status == model.StatusFail || r.Status == model.StatusError {
			return true
		}
	}
	return false
}
