// Package server exposes the pipeline over HTTP with the JSON contracts the
// browser client speaks.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/abhisek/studyquiz/internal/config"
	"github.com/abhisek/studyquiz/internal/extract"
	"github.com/abhisek/studyquiz/internal/grading"
	"github.com/abhisek/studyquiz/internal/quizgen"
	"github.com/abhisek/studyquiz/internal/store"
	"github.com/abhisek/studyquiz/internal/topics"
)

// Deps are the pipeline stages the handlers call. Results may be nil, in
// which case the persistence routes are not registered.
type Deps struct {
	Extractor *extract.Extractor
	Segmenter *topics.Segmenter
	Generator quizgen.Generator
	Verifier  grading.Verifier
	Results   store.ResultRepo
}

// MaxBodyBytes caps request bodies: a base64 encoded file at the extractor's
// size limit plus room for the JSON envelope and a data URL prefix.
var MaxBodyBytes = int64(base64.StdEncoding.EncodedLen(extract.MaxInputBytes) + 64<<10)

// Server owns the gin engine and the http.Server wrapping it.
type Server struct {
	cfg     *config.App
	deps    Deps
	logger  zerolog.Logger
	metrics *Metrics
	engine  *gin.Engine

	// timeout bounds text-only generative requests. Zero disables it.
	timeout time.Duration

	maxBody int64
}

// Option customizes a Server.
type Option func(*Server)

// WithTimeout bounds every text generative call made by a request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithMaxBodyBytes overrides MaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = NewMetrics(reg, gatherer) }
}

// New builds a Server with every route registered.
func New(cfg *config.App, logger zerolog.Logger, deps Deps, opts ...Option) *Server {
	s := &Server{cfg: cfg, deps: deps, logger: logger, maxBody: MaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = NewMetrics(reg, reg)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	if s.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(s.metrics.Middleware())
	r.Use(cors.New(corsConfig(s.cfg.CORS)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.gatherer, promhttp.HandlerOpts{})))

	fn := r.Group("/functions/v1", limitBody(s.maxBody))
	if s.cfg.RateLimit.Requests > 0 {
		fn.Use(newRateLimiter(s.cfg.RateLimit.Requests, s.cfg.RateLimit.Window).Middleware())
	}
	s.function(fn, "extract-content", s.extractContent)
	s.function(fn, "extract-topics", s.extractTopics)
	s.function(fn, "generate-quiz", s.generateQuiz)
	s.function(fn, "verify-answer", s.verifyAnswer)

	if s.deps.Results != nil {
		r.POST("/results", limitBody(s.maxBody), s.saveResult)
		r.GET("/results", s.listResults)
		r.GET("/results/stats", s.resultStats)
		r.GET("/results/:id", s.getResult)
		r.GET("/review", s.reviewDeck)
	}
	return r
}

func corsConfig(c config.CORS) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  c.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,

		OptionsResponseStatusCode: http.StatusOK,
	}
	if len(c.AllowedOrigins) == 0 || slices.Contains(c.AllowedOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

// function registers a POST handler and its preflight.
func (s *Server) function(g *gin.RouterGroup, name string, h gin.HandlerFunc) {
	g.POST("/"+name, h)
	g.OPTIONS("/"+name, func(c *gin.Context) { c.Status(http.StatusOK) })
}

// Run serves on cfg.HTTPAddr until ctx is cancelled, then shuts down
// within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
