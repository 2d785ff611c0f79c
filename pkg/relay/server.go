package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/engine"
	"github.com/germanamz/taskify/pkg/fallback"
	"github.com/germanamz/taskify/pkg/metrics"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// StatusMessage is reported by GET /.
const StatusMessage = "Taskify.ai relay is running"

// Relayer runs conversations through the fallback sequence.
type Relayer interface {
	Chat(ctx context.Context, turns []message.Message, log *slog.Logger, extra ...fallback.Observer) (fallback.Response, error)
	Candidates() []model.Candidate
}

var _ Relayer = (*engine.Engine)(nil)

// Options configures a Server.
type Options struct {
	StaticDir      string                 // Serve a single-page app from here when set.
	BodyLimit      int64                  // Bytes; zero disables the limit.
	CORSOrigins    []string               // Allowed origins; "*" allows any.
	RateLimit      engine.RateLimitConfig // Per-client bucket; zero RPS disables it.
	ExposeAttempts bool                   // Include per-candidate failures in error bodies.
	Logger         *slog.Logger
	Metrics        *metrics.Metrics // Optional; enables GET /metrics.
}

// OptionsFrom derives server options from an engine's configuration.
func OptionsFrom(e *engine.Engine) Options {
	cfg := e.Config()
	return Options{
		StaticDir:      cfg.StaticDir,
		BodyLimit:      cfg.HTTP.BodyLimit,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
		ExposeAttempts: cfg.ExposeAttempts,
		Logger:         e.Logger(),
		Metrics:        e.Metrics(),
	}
}

// Server is the relay HTTP surface.
type Server struct {
	relay  Relayer
	opts   Options
	log    *slog.Logger
	router *gin.Engine
}

// New builds the router for r.
func New(r Relayer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		relay:  r,
		opts:   opts,
		log:    opts.Logger,
		router: gin.New(),
	}
	s.routes()

	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(requestID(s.log), accessLog(s.log, s.opts.Metrics), recovery(s.log), cors(s.opts.CORSOrigins))
	if s.opts.RateLimit.RPS > 0 {
		r.Use(rateLimit(s.opts.RateLimit.RPS, s.opts.RateLimit.Burst))
	}

	r.GET("/", s.handleStatus)
	r.GET("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/models", s.handleModels)
	api.POST("/chat", bodyLimit(s.opts.BodyLimit), s.handleChat)
	api.GET("/chat/ws", s.handleChatWS)

	if s.opts.StaticDir != "" {
		r.NoRoute(spa(s.opts.StaticDir))
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on l until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()

	s.log.Info("relay listening", "addr", l.Addr().String())

	select {
	case err := <-errc:
		return fmt.Errorf("relay: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("relay: serve: %w", err)
	}

	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("relay: listen: %w", err)
	}
	return s.Serve(ctx, l)
}
