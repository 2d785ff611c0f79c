package fallback

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/modeladapter"
	"github.com/germanamz/taskify/pkg/providers/huggingface"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// Phase is the state of a run.
type Phase int

const (
	// Pending means candidates remain to be tried.
	Pending Phase = iota
	// Succeeded means a candidate produced a usable response.
	Succeeded
	// Exhausted means no candidate produced a usable response.
	Exhausted
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is a snapshot of a run. Succeeded and Exhausted are terminal.
type State struct {
	Phase     Phase
	Remaining []model.Candidate
	Outcomes  []Outcome
	Response  Response // Set when Succeeded.
	Cause     error    // Set when the run stopped before trying every candidate.
}

// FormatFunc renders turns into the prompt text for a candidate.
type FormatFunc func(c model.Candidate, turns []message.Message) (string, error)

// NormalizeFunc extracts generated text from a raw backend payload.
type NormalizeFunc func(raw []byte) (string, error)

// Sequencer runs conversations against an ordered candidate list. It holds
// no per-run state and is safe for concurrent use once configured.
type Sequencer struct {
	Candidates []model.Candidate    // Priority order, first is tried first.
	Invoker    modeladapter.Invoker // Performs one backend call.
	Format     FormatFunc           // Defaults to the candidate's template.
	Normalize  NormalizeFunc        // Defaults to huggingface.Normalize.
}

// New creates a Sequencer with the default formatter and normalizer.
func New(candidates []model.Candidate, inv modeladapter.Invoker) *Sequencer {
	return &Sequencer{Candidates: slices.Clone(candidates), Invoker: inv}
}

// Start returns the initial state of a run.
func (s *Sequencer) Start() State {
	return State{Phase: Pending, Remaining: slices.Clone(s.Candidates)}
}

// Step advances a Pending state by trying its head candidate. Terminal
// states are returned unchanged.
func (s *Sequencer) Step(ctx context.Context, st State, turns []message.Message, obs Observer) State {
	if st.Phase != Pending {
		return st
	}

	if len(st.Remaining) == 0 {
		st.Phase = Exhausted
		return st
	}

	if err := ctx.Err(); err != nil {
		st.Phase = Exhausted
		st.Cause = err
		return st
	}

	c := st.Remaining[0]
	st.Remaining = st.Remaining[1:]

	o := s.attempt(ctx, c, turns)
	st.Outcomes = append(st.Outcomes, o)
	obs.Attempt(ctx, o)

	if o.Succeeded {
		st.Phase = Succeeded
		st.Response = Response{Text: o.Text, ModelUsed: c.DisplayName, ModelID: c.ID}
		return st
	}

	if len(st.Remaining) == 0 {
		st.Phase = Exhausted
	}

	return st
}

// Run drives a run to a terminal state. It returns the first usable
// response, or an *ExhaustedError matching ErrExhausted. A nil observer is
// allowed.
func (s *Sequencer) Run(ctx context.Context, turns []message.Message, obs Observer) (Response, error) {
	if obs == nil {
		obs = NopObserver{}
	}

	st := s.Start()
	for st.Phase == Pending {
		st = s.Step(ctx, st, turns, obs)
	}

	if st.Phase == Succeeded {
		obs.Finished(ctx, st.Response, nil)
		return st.Response, nil
	}

	err := &ExhaustedError{Outcomes: st.Outcomes, Cause: st.Cause}
	obs.Finished(ctx, Response{}, err)

	return Response{}, err
}

// attempt formats, invokes, and normalizes one candidate. Panics raised by
// the formatter, invoker, or normalizer become failed outcomes.
func (s *Sequencer) attempt(ctx context.Context, c model.Candidate, turns []message.Message) (o Outcome) {
	start := time.Now()
	o.Candidate = c

	defer func() {
		o.Duration = time.Since(start)
		if r := recover(); r != nil {
			o.Succeeded = false
			o.Text = ""
			o.Err = fmt.Errorf("candidate %s panicked: %v", c.ID, r)
			o.Kind = FailurePanic
		}
	}()

	fail := func(err error) Outcome {
		o.Err = err
		o.Kind = Classify(err)
		return o
	}

	text, err := s.format(c, turns)
	if err != nil {
		return fail(err)
	}

	raw, err := s.Invoker.Invoke(ctx, c, text)
	if err != nil {
		return fail(err)
	}

	out, err := s.normalize(raw)
	if err != nil {
		return fail(err)
	}
	if out == "" {
		return fail(fmt.Errorf("%w: empty text", modeladapter.ErrMalformedPayload))
	}

	o.Succeeded = true
	o.Text = out

	return o
}

func (s *Sequencer) format(c model.Candidate, turns []message.Message) (string, error) {
	if s.Format != nil {
		return s.Format(c, turns)
	}
	return c.Template.Format(turns)
}

func (s *Sequencer) normalize(raw []byte) (string, error) {
	if s.Normalize != nil {
		return s.Normalize(raw)
	}
	return huggingface.Normalize(raw)
}
