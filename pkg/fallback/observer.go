package fallback

import (
	"context"
	"log/slog"
)

// Observer receives the events of a single run. A fresh observer may be
// supplied for each run, for instance one carrying a request id.
type Observer interface {
	// Attempt is called once per tried candidate, in order.
	Attempt(ctx context.Context, o Outcome)
	// Finished is called once when the run reaches a terminal state.
	Finished(ctx context.Context, resp Response, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Attempt(context.Context, Outcome)           {}
func (NopObserver) Finished(context.Context, Response, error) {}

// Observers fans events out to each observer in order.
type Observers []Observer

func (obs Observers) Attempt(ctx context.Context, o Outcome) {
	for _, ob := range obs {
		ob.Attempt(ctx, o)
	}
}

func (obs Observers) Finished(ctx context.Context, resp Response, err error) {
	for _, ob := range obs {
		ob.Finished(ctx, resp, err)
	}
}

// LogObserver writes attempts and results to a structured logger. Failure
// details are logged here and nowhere else.
type LogObserver struct {
	Log *slog.Logger
}

// NewLogObserver creates a LogObserver. A nil logger uses slog.Default.
func NewLogObserver(log *slog.Logger) LogObserver {
	if log == nil {
		log = slog.Default()
	}
	return LogObserver{Log: log}
}

func (l LogObserver) Attempt(ctx context.Context, o Outcome) {
	if o.Succeeded {
		l.Log.InfoContext(ctx, "candidate answered",
			"candidate", o.Candidate.DisplayName,
			"model_id", o.Candidate.ID,
			"duration", o.Duration,
			"chars", len(o.Text),
		)
		return
	}

	l.Log.WarnContext(ctx, "candidate failed",
		"candidate", o.Candidate.DisplayName,
		"model_id", o.Candidate.ID,
		"kind", string(o.Kind),
		"duration", o.Duration,
		"error", o.Err,
	)
}

func (l LogObserver) Finished(ctx context.Context, resp Response, err error) {
	if err != nil {
		l.Log.ErrorContext(ctx, "relay failed", "error", err)
		return
	}

	l.Log.InfoContext(ctx, "relay answered", "model", resp.ModelUsed)
}
