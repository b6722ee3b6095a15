// Package server exposes the analyses over an HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/debtlens/core"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// ActorHeader carries the authenticated actor of a request.
const ActorHeader = "X-Actor"

const shutdownTimeout = 10 * time.Second

type (
	snapshotFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repo string) (*schema.SnapshotReport, error)
	historyFunc  func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repo string, n int) (*schema.HistoryReport, error)
)

// Server serves snapshot, history, opinion and rollup requests.
type Server struct {
	cfg      *contract.Config
	mgr      contract.CacheManager
	opinion  contract.OpinionProvider
	metrics  *metrics
	registry *prometheus.Registry
	engine   *gin.Engine

	snapshot snapshotFunc
	history  historyFunc
}

// New creates a server. A nil opinion provider answers opinion requests as degraded.
// Requests may only name GitHub repositories, never directories of the host.
func New(cfg *contract.Config, mgr contract.CacheManager, opinion contract.OpinionProvider) *Server {
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	cfg = cfg.Clone()
	cfg.Source = schema.GitHubSource
	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		mgr:      mgr,
		opinion:  opinion,
		metrics:  newMetrics(registry),
		registry: registry,
		snapshot: core.GetSnapshotResults,
		history:  core.GetHistoryResults,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	api.POST("/snapshot", s.handleSnapshot)
	api.POST("/history", s.handleHistory)
	api.POST("/opinion", s.handleOpinion)
	api.GET("/rollups", requireActor(), s.handleRollups)
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		contract.LogInfo("HTTP server listening", logrus.Fields{"addr": s.cfg.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// requestLogger logs every request through logrus.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if err := c.Errors.Last(); err != nil {
			contract.LogWarn("Request failed", err.Err, fields)
			return
		}
		contract.LogInfo("Request served", fields)
	}
}

// requireActor rejects requests without an actor header and stores the actor in the context.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
				Error: "missing " + ActorHeader + " header",
				Code:  contract.CodeUnauthorized,
			})
			return
		}
		c.Request = c.Request.WithContext(core.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
