// Package huggingface provides an Invoker for the Hugging Face hosted
// inference API and the normalizer for its text-generation payloads.
package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/germanamz/taskify/pkg/modeladapter"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// DefaultBaseURL is the hosted inference API root.
const DefaultBaseURL = "https://api-inference.huggingface.co"

var _ modeladapter.Invoker = (*Adapter)(nil)

// Adapter implements modeladapter.Invoker for the hosted inference API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter. An empty baseURL uses DefaultBaseURL and a zero
// timeout uses modeladapter.DefaultTimeout.
func New(baseURL, apiKey string, timeout time.Duration, client *http.Client) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	a := &Adapter{ModelAdapter: modeladapter.New(baseURL, modeladapter.Auth{Key: apiKey}, client)}
	a.Timeout = timeout

	return a
}

// Request is the text-generation request body.
type Request struct {
	Inputs     string           `json:"inputs"`
	Parameters model.Parameters `json:"parameters"`
}

// Invoke posts the prompt to the candidate's model endpoint once and
// returns the raw payload.
func (a *Adapter) Invoke(ctx context.Context, c model.Candidate, prompt string) ([]byte, error) {
	base := a.ModelAdapter
	if c.Endpoint != "" {
		base.BaseURL = c.Endpoint
	}

	body, err := base.PostRaw(ctx, "/models/"+c.ID, Request{Inputs: prompt, Parameters: c.Parameters})
	if err != nil {
		return nil, fmt.Errorf("huggingface: %s: %w", c.ID, err)
	}

	return body, nil
}
