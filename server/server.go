// Package server exposes the pipeline over HTTP: the single page, the
// analyze endpoint and the operational endpoints.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/neurovision/emotion-pipeline/config"
	"github.com/neurovision/emotion-pipeline/orchestrator"
)

const (
	EndPointIndex   = "/"
	EndPointAnalyze = "/api/analyze"
	EndPointHealth  = "/health"
	EndPointVersion = "/version"
	EndPointMetrics = "/metrics"
)

//go:embed web/index.html
var assets embed.FS

// Analyzer runs one pipeline over one input.
type Analyzer interface {
	Run(ctx context.Context, in orchestrator.Input) (*orchestrator.Report, error)
}

type Server struct {
	cfg      *config.Root
	analyzer Analyzer
	engine   *gin.Engine
}

func New(c *config.Root, a Analyzer) *Server {
	s := &Server{cfg: c, analyzer: a}

	r := gin.New()
	if err := r.SetTrustedProxies(c.Server.TrustedProxies); err != nil {
		log.WithError(err).Warn("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), requestLogger(), s.cors())
	r.MaxMultipartMemory = c.Server.MaxUploadMB << 20
	r.SetHTMLTemplate(template.Must(template.ParseFS(assets, "web/index.html")))

	r.GET(EndPointIndex, s.index)
	r.GET(EndPointHealth, s.health)
	r.GET(EndPointVersion, s.version)
	r.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	limiter := NewRateLimiter(c.Server.RatePerMinute, c.Server.RateBurst)
	r.POST(EndPointAnalyze, limiter.Middleware(), s.analyze)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) cors() gin.HandlerFunc {
	origins := strings.Join(s.cfg.Server.AllowedOrigins, ", ")
	return func(c *gin.Context) {
		if origins != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origins)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"duration":  time.Since(start),
			"client_ip": c.ClientIP(),
		}).Info("http.request")
	}
}
