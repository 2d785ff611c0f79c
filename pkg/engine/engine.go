package engine

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/fallback"
	"github.com/germanamz/taskify/pkg/metrics"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// Engine assembles the relay components from configuration. It is safe for
// concurrent use; every call to Chat is an independent fallback run.
type Engine struct {
	cfg        Config
	log        *slog.Logger
	metrics    *metrics.Metrics
	candidates []model.Candidate
	seq        *fallback.Sequencer
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger *slog.Logger
	client *http.Client
}

// WithLogger sets the engine logger. The default discards records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient sets the client used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// New creates an Engine from the given configuration. It validates the
// config and creates the backend invokers.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	candidates, err := cfg.ModelCandidates()
	if err != nil {
		return nil, err
	}

	router, err := buildRouter(cfg, candidates, o.client)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		log:        o.logger,
		metrics:    metrics.New(),
		candidates: candidates,
		seq:        fallback.New(candidates, router),
	}, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config { return e.cfg }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.log }

// Metrics returns the engine collectors.
func (e *Engine) Metrics() *metrics.Metrics { return e.metrics }

// Candidates returns the candidate table in priority order.
func (e *Engine) Candidates() []model.Candidate { return slices.Clone(e.candidates) }

// Chat runs one fallback run over turns. Attempts are logged with log, or
// the engine logger when log is nil, and recorded in the metrics. Extra
// observers receive the same events.
func (e *Engine) Chat(ctx context.Context, turns []message.Message, log *slog.Logger, extra ...fallback.Observer) (fallback.Response, error) {
	if log == nil {
		log = e.log
	}

	obs := fallback.Observers{fallback.NewLogObserver(log), e.metrics.Observer()}
	obs = append(obs, extra...)

	return e.seq.Run(ctx, turns, obs)
}
