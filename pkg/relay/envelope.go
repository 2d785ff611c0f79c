package relay

import (
	"errors"
	"fmt"

	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/chats/role"
	"github.com/germanamz/taskify/pkg/fallback"
)

// Error titles used in ErrorBody.Error.
const (
	ErrTitleRelay      = "Failed to process the request"
	ErrTitleBadRequest = "Invalid request"
	ErrTitleTooLarge   = "Request body too large"
	ErrTitleRateLimit  = "Too many requests"
	ErrTitleInternal   = "Internal server error"
)

// ChatRequest is the body of a chat call. A missing messages field is an
// empty conversation.
type ChatRequest struct {
	Messages []message.Message `json:"messages"`
}

// Envelope is the canonical success response.
type Envelope struct {
	Choices []Choice `json:"choices"`
	Model   string   `json:"model"`
}

// Choice holds one generated message.
type Choice struct {
	Message message.Message `json:"message"`
}

// NewEnvelope wraps a relay response.
func NewEnvelope(r fallback.Response) Envelope {
	return Envelope{
		Choices: []Choice{{Message: message.New(role.Assistant, r.Text)}},
		Model:   r.ModelUsed,
	}
}

// Text returns the content of the first choice.
func (e Envelope) Text() string {
	if len(e.Choices) == 0 {
		return ""
	}
	return e.Choices[0].Message.Content
}

// ErrorBody is the failure response.
type ErrorBody struct {
	Error    string    `json:"error"`
	Message  string    `json:"message"`
	Attempts []Attempt `json:"attempts,omitempty"`
}

// Attempt summarizes one failed candidate. It is only reported when the
// operator enables expose_attempts.
type Attempt struct {
	Model      string `json:"model"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}

func attemptsOf(err error) []Attempt {
	var ex *fallback.ExhaustedError
	if !errors.As(err, &ex) {
		return nil
	}

	out := make([]Attempt, 0, len(ex.Outcomes))
	for _, o := range ex.Outcomes {
		a := Attempt{
			Model:      o.Candidate.DisplayName,
			Kind:       string(o.Kind),
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			a.Error = o.Err.Error()
		}
		out = append(out, a)
	}
	return out
}

// ResponseError is returned by Client when the relay answers with an
// ErrorBody.
type ResponseError struct {
	StatusCode int
	Body       ErrorBody
}

func (e *ResponseError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("relay: status %d: %s: %s", e.StatusCode, e.Body.Error, e.Body.Message)
}
