package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/selimozcann/StoreHunter/internal/devices"
	"github.com/selimozcann/StoreHunter/internal/engine"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/runner"
	"github.com/selimozcann/StoreHunter/internal/store"
	"github.com/selimozcann/StoreHunter/internal/util"
)

// TestState is the lifecycle of a background batch.
type TestState string

const (
	StateRunning   TestState = "running"
	StateCompleted TestState = "completed"
	StateCancelled TestState = "cancelled"
	StateError     TestState = "error"
)

// TestRecord is the pollable state of one batch. Times are Unix
// milliseconds.
type TestRecord struct {
	URL                string             `json:"url"`
	Status             TestState          `json:"status"`
	Progress           int                `json:"progress"`
	Results            []model.TestResult `json:"results"`
	StartTime          int64              `json:"startTime"`
	CaptureScreenshots bool               `json:"captureScreenshots"`
	DeviceIDs          []string           `json:"deviceIds"`
	CurrentDevice      string             `json:"currentDevice,omitempty"`
	Summary            *model.Summary     `json:"summary,omitempty"`
	CompletedTime      int64              `json:"completedTime,omitempty"`
	Duration           int64              `json:"duration,omitempty"`
	Error              string             `json:"error,omitempty"`
}

const (
	errInvalidURL     = "Invalid URL. Must start with http:// or https://"
	errPrivateTarget  = "Target host is not allowed"
	errNoDevices      = "No matching devices for deviceIds"
	errTestNotFound   = "Test not found"
	errDeviceNotFound = "Device not found"
	errMissingFields  = "Missing required fields: name, platform, userAgent"
)

type startTestRequest struct {
	URL                string   `json:"url"`
	CaptureScreenshots *bool    `json:"captureScreenshots"`
	DeviceIDs          []string `json:"deviceIds"`
}

func (s *Server) startTestHandler(c *gin.Context) {
	var req startTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	url := strings.TrimSpace(req.URL)
	if !util.IsWebURL(url) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidURL})
		return
	}
	if !s.opts.AllowPrivateTargets && util.IsInternalURL(url) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errPrivateTarget})
		return
	}

	profiles, err := s.resolveDevices(c.Request.Context(), req.DeviceIDs)
	if err != nil {
		s.logger.Error("resolve devices", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(profiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoDevices})
		return
	}

	screenshots := true
	if req.CaptureScreenshots != nil {
		screenshots = *req.CaptureScreenshots
	}
	ids := req.DeviceIDs
	if ids == nil {
		ids = []string{}
	}
	rec := TestRecord{
		URL:                url,
		Status:             StateRunning,
		Results:            []model.TestResult{},
		StartTime:          s.now().UnixMilli(),
		CaptureScreenshots: screenshots,
		DeviceIDs:          ids,
	}
	id := uuid.NewString()
	if err := s.tests.Set(c.Request.Context(), id, rec); err != nil {
		s.logger.Error("store test", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start test"})
		return
	}
	if s.metrics != nil {
		s.metrics.TestsStarted.Inc()
	}

	s.wg.Add(1)
	go s.runTest(id, rec, profiles)

	c.JSON(http.StatusOK, gin.H{"testId": id, "message": "Test started"})
}

func (s *Server) getTestHandler(c *gin.Context) {
	rec, err := s.tests.Get(c.Request.Context(), c.Param("testId"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errTestNotFound})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// resolveDevices maps ids to built-in or custom profiles; unknown ids are
// skipped. No ids selects every built-in profile.
func (s *Server) resolveDevices(ctx context.Context, ids []string) ([]model.DeviceProfile, error) {
	if len(ids) == 0 {
		return devices.All(), nil
	}
	var out []model.DeviceProfile
	for _, id := range ids {
		if p, ok := devices.Lookup(id); ok {
			out = append(out, p)
			continue
		}
		p, err := s.custom.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("unknown device id", "id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// runTest executes a batch in the background and keeps its record current.
func (s *Server) runTest(id string, rec TestRecord, profiles []model.DeviceProfile) {
	defer s.wg.Done()
	logger := s.logger.With("test_id", id)

	select {
	case s.sem <- struct{}{}:
	case <-s.ctx.Done():
		s.finish(logger, id, rec, nil, s.ctx.Err())
		return
	}
	defer func() { <-s.sem }()

	if s.metrics != nil {
		s.metrics.TestsInFlight.Inc()
		defer s.metrics.TestsInFlight.Dec()
	}

	observers := []runner.Observer{func(p runner.Progress) {
		rec.Results = append(rec.Results, p.Result)
		rec.Progress = p.Current * 100 / p.Total
		rec.CurrentDevice = p.Device
		s.save(logger, id, rec)
	}}
	if s.metrics != nil {
		observers = append(observers, s.metrics.Observe)
	}

	results, err := s.runner.Run(s.ctx, rec.URL, profiles, engine.Options{Screenshots: rec.CaptureScreenshots}, observers...)
	s.finish(logger, id, rec, results, err)
}

func (s *Server) finish(logger *slog.Logger, id string, rec TestRecord, results []model.TestResult, err error) {
	if results != nil {
		rec.Results = results
	}
	switch {
	case err == nil:
		rec.Status = StateCompleted
		rec.Progress = 100
	case errors.Is(err, context.Canceled):
		rec.Status = StateCancelled
	default:
		rec.Status = StateError
		rec.Error = err.Error()
	}
	if rec.Status != StateError {
		sum := runner.Summarize(rec.Results)
		rec.Summary = &sum
		if s.metrics != nil && rec.Status == StateCompleted {
			s.metrics.LastSuccessRate.Set(float64(sum.SuccessRate))
		}
	}
	rec.CompletedTime = s.now().UnixMilli()
	rec.Duration = rec.CompletedTime - rec.StartTime
	s.save(logger, id, rec)
	if s.metrics != nil {
		s.metrics.TestsFinished.WithLabelValues(string(rec.Status)).Inc()
	}
	logger.Info("test finished", "status", rec.Status, "results", len(rec.Results), "duration_ms", rec.Duration)
}

func (s *Server) save(logger *slog.Logger, id string, rec TestRecord) {
	results := make([]model.TestResult, len(rec.Results))
	copy(results, rec.Results)
	rec.Results = results
	if err := s.tests.Set(context.Background(), id, rec); err != nil {
		logger.Warn("update test record", "error", err)
	}
}
