// Package api exposes the claim equity engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gaganv007/claimequity-ai/internal/bias"
	"github.com/gaganv007/claimequity-ai/internal/database"
	"github.com/gaganv007/claimequity-ai/internal/domain"
	"github.com/gaganv007/claimequity-ai/internal/middleware"
	"github.com/gaganv007/claimequity-ai/internal/outcome"
	"github.com/gaganv007/claimequity-ai/internal/predictor"
	"github.com/gaganv007/claimequity-ai/pkg/external"
)

// DBMonitor reports connection-pool health for the health endpoint. It is
// nil when the sqlite backend is in use.
type DBMonitor interface {
	Health(ctx context.Context) error
	PoolStats() database.PoolStats
}

// Server represents the HTTP server
type Server struct {
	config     *domain.Config
	store      outcome.Store
	biasSvc    *bias.Service
	scorer     *predictor.Service
	summarizer *external.SummarizerChain
	appeals    external.AppealWriter
	finance    external.FinanceClient
	analytics  external.Analytics
	db         DBMonitor
	log        *logrus.Logger

	router *gin.Engine
	server *http.Server
}

// Deps bundles the collaborators the server routes requests to.
type Deps struct {
	Config     *domain.Config
	Store      outcome.Store
	BiasSvc    *bias.Service
	Scorer     *predictor.Service
	Summarizer *external.SummarizerChain
	Appeals    external.AppealWriter
	Finance    external.FinanceClient
	Analytics  external.Analytics
	DB         DBMonitor
	Logger     *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(deps Deps) *Server {
	// Set Gin mode based on environment
	if deps.Config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(deps.Config.Server.RateLimit, deps.Config.Server.RateBurst))
	router.Use(corsMiddleware())

	server := &Server{
		config:     deps.Config,
		store:      deps.Store,
		biasSvc:    deps.BiasSvc,
		scorer:     deps.Scorer,
		summarizer: deps.Summarizer,
		appeals:    deps.Appeals,
		finance:    deps.Finance,
		analytics:  deps.Analytics,
		db:         deps.DB,
		log:        deps.Logger,
		router:     router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Router exposes the configured handler, used by tests and by Start.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/api/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/claims/features", s.handleClaimFeatures)
		v1.POST("/outcomes", s.handleShareOutcome)
		v1.POST("/bias/report", s.handleBiasReport)
		v1.GET("/bias/chart", s.handleBiasChart)
		v1.POST("/predictions", s.handlePrediction)
		v1.POST("/model/train", s.handleModelTrain)
		v1.POST("/summaries", s.handleSummary)
		v1.POST("/appeals", s.handleAppeal)
		v1.POST("/impact", s.handleImpact)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
