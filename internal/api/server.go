// Package api serves the HTTP interface: start a batch in the background,
// poll its record, and manage custom device profiles.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/selimozcann/StoreHunter/internal/engine"
	"github.com/selimozcann/StoreHunter/internal/metrics"
	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/runner"
	"github.com/selimozcann/StoreHunter/internal/store"
)

// BatchRunner runs one batch. *engine.Engine implements it.
type BatchRunner interface {
	Run(ctx context.Context, url string, profiles []model.DeviceProfile, opts engine.Options, observers ...runner.Observer) ([]model.TestResult, error)
}

// Options configures a Server.
type Options struct {
	// MaxConcurrentTests caps batches running at once; zero means 2.
	MaxConcurrentTests  int
	AllowPrivateTargets bool
	// CORSOrigins lists origins allowed to call the API from a browser;
	// "*" allows any. Empty disables CORS headers.
	CORSOrigins []string
	Metrics     *metrics.Metrics
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server holds handler state.
type Server struct {
	runner  BatchRunner
	tests   store.Store[TestRecord]
	custom  store.Store[model.DeviceProfile]
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	sem    chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Server. Background batches stop when Shutdown is called.
func New(r BatchRunner, tests store.Store[TestRecord], custom store.Store[model.DeviceProfile], opts Options) *Server {
	if opts.MaxConcurrentTests <= 0 {
		opts.MaxConcurrentTests = 2
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		runner:  r,
		tests:   tests,
		custom:  custom,
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
		now:     time.Now,
		sem:     make(chan struct{}, opts.MaxConcurrentTests),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Handler returns the gin engine with every route registered, wrapped for
// CORS when origins are configured.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())
	s.RegisterRoutes(r)
	if len(s.opts.CORSOrigins) == 0 {
		return r
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"},
	})
	return c.Handler(r)
}

// RegisterRoutes sets up all routes on r.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", healthzHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.POST("/test", s.startTestHandler)
		api.GET("/test/:testId", s.getTestHandler)

		api.GET("/devices", s.listDevicesHandler)
		api.POST("/devices/custom", s.addCustomDeviceHandler)
		api.DELETE("/devices/custom/:deviceId", s.deleteCustomDeviceHandler)
	}
}

// Shutdown cancels running batches and waits for them to record their final
// state, or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every background batch has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

// observe records request metrics and logs each request at debug level.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
			s.metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}
		s.logger.Debug("http request", "method", c.Request.Method, "route", route, "status", c.Writer.Status(), "duration", elapsed)
	}
}

func healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
