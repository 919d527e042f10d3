package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/logging"
	"github.com/danielpatrickdp/persona-fusion/internal/orchestrator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// #region interfaces

// Analyzer runs the analyze pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req orchestrator.AnalyzeRequest) (orchestrator.AnalyzeResponse, error)
}

// IntentRouter classifies chat messages.
type IntentRouter interface {
	RouteIntent(ctx context.Context, userID, text string) orchestrator.IntentClassification
}

// #endregion interfaces

// #region server

// Server is the persona HTTP API.
type Server struct {
	analyzer  Analyzer
	intents   IntentRouter
	envSource orchestrator.ContextSource
	logger    *zap.Logger
	router    *gin.Engine
}

// Deps wires a Server. A nil Context disables the context and
// recommendation routes; a nil Intents disables /v1/intent.
type Deps struct {
	Analyzer Analyzer
	Intents  IntentRouter
	Context  orchestrator.ContextSource
	Logger   *zap.Logger
}

// NewServer creates the API server and registers its routes.
func NewServer(d Deps) *Server {
	router := gin.New()
	s := &Server{
		analyzer:  d.Analyzer,
		intents:   d.Intents,
		envSource: d.Context,
		logger:    logging.OrNop(d.Logger).Named("api"),
		router:    router,
	}
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/v1")
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.POST("/intent", s.handleIntent)
		v1.GET("/context", s.handleContext)
		v1.GET("/recommendations", s.handleRecommendations)
		v1.GET("/archetypes", s.handleArchetypes)
	}
	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// #endregion server
