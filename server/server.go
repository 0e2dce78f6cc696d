// Package server exposes the single-post pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	ideas "github.com/vivaneiona/reddit-ideas"
)

const shutdownTimeout = 10 * time.Second

// Analyzer is the part of ideas.Analyzer the server needs.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, rawURL string, optFns ...func(*ideas.Options)) (*ideas.AnalysisResult, error)
}

// Server wraps an echo instance serving the analysis API.
type Server struct {
	e        *echo.Echo
	analyzer Analyzer
	log      *slog.Logger
}

type analyzeRequest struct {
	URL      string `json:"url"`
	Comments int    `json:"comments,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// New builds the router. gatherer backs GET /metrics; nil disables it.
func New(analyzer Analyzer, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))

	s := &Server{e: e, analyzer: analyzer, log: log}
	e.GET("/", s.root)
	e.GET("/health", s.health)
	e.POST("/analyze_post", s.analyzePost)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("Server running", "addr", addr)
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("Shutting down server")
		return s.e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Reddit Ideas API</title></head>
<body>
    <h1>Reddit Ideas Generator API</h1>
    <p>Status: Running</p>
    <p>Available endpoints:</p>
    <ul>
        <li>GET /health - Health check</li>
        <li>POST /analyze_post - Analyze Reddit posts</li>
        <li>GET /metrics - Prometheus metrics</li>
    </ul>
</body>
</html>
`

func (s *Server) root(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) analyzePost(c echo.Context) error {
	reqID := uuid.NewString()
	log := s.log.With("request_id", reqID)

	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", RequestID: reqID})
	}

	var opts []func(*ideas.Options)
	if req.Comments > 0 {
		opts = append(opts, ideas.WithMaxComments(req.Comments))
	}

	res, err := s.analyzer.AnalyzeURL(c.Request().Context(), req.URL, opts...)
	if err != nil {
		status := statusFor(err)
		log.Warn("Analysis failed", "url", req.URL, "status", status, "error", err)
		return c.JSON(status, errorResponse{Error: err.Error(), RequestID: reqID})
	}

	log.Info("Analysis complete", "url", res.URL, "ideas", len(res.Ideas))
	return c.JSON(http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ideas.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ideas.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
