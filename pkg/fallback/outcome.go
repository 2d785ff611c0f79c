package fallback

import (
	"context"
	"errors"
	"time"

	"github.com/germanamz/taskify/pkg/modeladapter"
	"github.com/germanamz/taskify/pkg/prompt"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// FailureKind classifies why an attempt failed.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureFormat      FailureKind = "format"
	FailureUnavailable FailureKind = "unavailable"
	FailureTimeout     FailureKind = "timeout"
	FailureMalformed   FailureKind = "malformed"
	FailureCanceled    FailureKind = "canceled"
	FailurePanic       FailureKind = "panic"
)

// Classify maps an attempt error onto a FailureKind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, prompt.ErrFormat):
		return FailureFormat
	case errors.Is(err, modeladapter.ErrTimeout):
		return FailureTimeout
	case errors.Is(err, modeladapter.ErrMalformedPayload):
		return FailureMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	default:
		return FailureUnavailable
	}
}

// Outcome is the result of one attempt against one candidate. Outcomes live
// only as long as the run that produced them.
type Outcome struct {
	Candidate model.Candidate
	Succeeded bool
	Text      string        // Set when Succeeded.
	Err       error         // Set when not Succeeded.
	Kind      FailureKind   // FailureNone when Succeeded.
	Duration  time.Duration // Wall time of the attempt.
}

// Response is the single result of a successful run.
type Response struct {
	Text      string // Generated text, unmodified.
	ModelUsed string // Display name of the candidate that answered.
	ModelID   string // Identifier of the candidate that answered.
}
