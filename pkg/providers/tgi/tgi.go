// Package tgi provides an Invoker for self-hosted text-generation-inference
// servers. The payload shape matches the hosted API, so responses are
// normalized with huggingface.Normalize.
package tgi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/germanamz/taskify/pkg/modeladapter"
	"github.com/germanamz/taskify/pkg/providers/huggingface"
	"github.com/germanamz/taskify/pkg/providers/model"
)

const generatePath = "/generate"

var _ modeladapter.Invoker = (*Adapter)(nil)

// Adapter implements modeladapter.Invoker for a TGI server.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter. baseURL may be empty when every candidate sets its
// own endpoint.
func New(baseURL, apiKey string, timeout time.Duration, client *http.Client) *Adapter {
	a := &Adapter{ModelAdapter: modeladapter.New(baseURL, modeladapter.Auth{Key: apiKey}, client)}
	a.Timeout = timeout

	return a
}

// Invoke posts the prompt to the server's generate route once.
func (a *Adapter) Invoke(ctx context.Context, c model.Candidate, prompt string) ([]byte, error) {
	base := a.ModelAdapter
	if c.Endpoint != "" {
		base.BaseURL = c.Endpoint
	}
	if base.BaseURL == "" {
		return nil, fmt.Errorf("tgi: %s: %w", c.ID, errors.New("no endpoint configured"))
	}

	body, err := base.PostRaw(ctx, generatePath, huggingface.Request{Inputs: prompt, Parameters: c.Parameters})
	if err != nil {
		return nil, fmt.Errorf("tgi: %s: %w", c.ID, err)
	}

	return body, nil
}
