// internal/httpserver/server.go
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cfg "github.com/tamzrod/flogmeter/internal/config"
)

// Server wraps gin behind a plain http.Server.
type Server struct {
	srv *http.Server
}

// Hooks are the session callbacks the routes read from.
type Hooks struct {
	Ready   func() bool // nil = always ready
	Status  func() any  // nil = /status not served
	Metrics http.Handler
}

// New registers /healthz, /readyz, /status and the metrics route.
func New(c cfg.HTTPConfig, metricsPath string, h Hooks) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(ctx *gin.Context) {
		if h.Ready == nil || h.Ready() {
			ctx.String(http.StatusOK, "ready")
			return
		}
		ctx.String(http.StatusServiceUnavailable, "not-ready")
	})
	if h.Status != nil {
		r.GET("/status", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, h.Status())
		})
	}
	if metricsPath == "" {
		metricsPath = cfg.DefaultMetricsPath
	}
	if h.Metrics != nil {
		r.GET(metricsPath, gin.WrapH(h.Metrics))
	}

	return &Server{srv: &http.Server{
		Addr:         c.Addr,
		Handler:      r,
		ReadTimeout:  time.Duration(c.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(c.WriteTimeoutMs) * time.Millisecond,
	}}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops the listener and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
