// Package testbackend is a scripted Hugging Face inference server for tests.
package testbackend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

const hangLimit = 5 * time.Second

// Reply writes the response for one model path.
type Reply func(w http.ResponseWriter, r *http.Request)

// Text replies with the list-shaped payload carrying text.
func Text(text string) Reply {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": text}})
	}
}

// Status replies with a bare status code and body.
func Status(code int, body string) Reply {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}
}

// Hang blocks until the client gives up, or for at most hangLimit.
func Hang() Reply {
	return func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(hangLimit):
		}
	}
}

// Backend records requests and dispatches them by path. Paths without a
// reply answer 503.
type Backend struct {
	Server *httptest.Server

	replies map[string]Reply

	mu     sync.Mutex
	paths  []string
	auth   string
	inputs string
}

// New starts a Backend that is closed when the test ends.
func New(t *testing.T, replies map[string]Reply) *Backend {
	t.Helper()

	b := &Backend{replies: replies}
	b.Server = httptest.NewServer(b)
	t.Cleanup(b.Server.Close)

	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Inputs string `json:"inputs"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	// Reading to EOF lets the server notice a client that gives up.
	_, _ = io.Copy(io.Discard, r.Body)

	b.mu.Lock()
	b.paths = append(b.paths, r.URL.Path)
	b.auth = r.Header.Get("Authorization")
	b.inputs = body.Inputs
	b.mu.Unlock()

	if reply, ok := b.replies[r.URL.Path]; ok {
		reply(w, r)
		return
	}

	Status(http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`)(w, r)
}

// Paths returns the request paths in arrival order.
func (b *Backend) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.paths...)
}

// LastAuth returns the Authorization header of the latest request.
func (b *Backend) LastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth
}

// LastInputs returns the prompt of the latest request.
func (b *Backend) LastInputs() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inputs
}
