package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/germanamz/taskify/pkg/providers/model"
)

// DefaultTimeout bounds a single backend call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// maxBodySize caps how much of a backend response is read.
const maxBodySize = 16 << 20

// Invoker performs one bounded-time call to a single backend and returns the
// raw response payload. Implementations never retry.
type Invoker interface {
	Invoke(ctx context.Context, c model.Candidate, prompt string) ([]byte, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, c model.Candidate, prompt string) ([]byte, error)

// Invoke calls the underlying function.
func (f InvokerFunc) Invoke(ctx context.Context, c model.Candidate, prompt string) ([]byte, error) {
	return f(ctx, c, prompt)
}

// Auth holds authentication settings for a backend API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// ModelAdapter holds shared state for backend implementations. Embed it in
// concrete adapter structs to get HTTP helpers, auth, custom headers, and
// the per-call time bound.
type ModelAdapter struct {
	BaseURL string            // API base URL (no trailing slash).
	Auth    Auth              // Authentication settings.
	Client  *http.Client      // HTTP client; falls back to http.DefaultClient.
	Headers map[string]string // Extra headers applied to every request.
	Timeout time.Duration     // Upper bound per call; zero means DefaultTimeout.
}

// New creates a ModelAdapter with the given settings.
// A nil client falls back to http.DefaultClient at call time.
func New(baseURL string, auth Auth, client *http.Client) ModelAdapter {
	return ModelAdapter{
		Auth:    auth,
		BaseURL: baseURL,
		Client:  client,
	}
}

// httpClient returns the configured client or http.DefaultClient.
func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	return http.DefaultClient
}

// CallTimeout returns the effective per-call bound.
func (a *ModelAdapter) CallTimeout() time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return DefaultTimeout
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := a.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	// Apply auth.
	if a.Auth.Key != "" {
		header := a.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := a.Auth.Key
		if header == "Authorization" {
			scheme := a.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if a.Auth.Scheme != "" {
			value = a.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	// Apply custom headers.
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a *ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostRaw marshals payload as JSON, sends one POST to the given path within
// the adapter's time bound, and returns the raw 2xx response body.
//
// Failures are classified: exceeding the bound matches ErrTimeout, transport
// errors match ErrUnavailable, and non-2xx answers are *StatusError. A
// cancelled parent context is returned as is.
func (a *ModelAdapter) PostRaw(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	timeout := a.CallTimeout()
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := a.NewRequest(callCtx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Do(req)
	if err != nil {
		return nil, classify(ctx, err, timeout)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classify(ctx, err, timeout)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Code:       resp.StatusCode,
			Body:       string(respBody),
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return respBody, nil
}

// classify maps a transport error onto the failure taxonomy.
func classify(parent context.Context, err error, timeout time.Duration) error {
	if parent.Err() != nil {
		return parent.Err()
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
