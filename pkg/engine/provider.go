package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/germanamz/taskify/pkg/modeladapter"
	"github.com/germanamz/taskify/pkg/providers/huggingface"
	"github.com/germanamz/taskify/pkg/providers/model"
	"github.com/germanamz/taskify/pkg/providers/tgi"
)

// BackendFactory creates an Invoker for one backend kind.
type BackendFactory func(cfg BackendConfig, timeout time.Duration, client *http.Client) (modeladapter.Invoker, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]BackendFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories[model.HuggingFace] = newHuggingFace
		factories[model.TGI] = newTGI
	})
}

// RegisterBackend registers a custom backend factory under the given kind.
// It can be called before New to extend the engine with additional backends.
func RegisterBackend(kind string, factory BackendFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (BackendFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

func newHuggingFace(cfg BackendConfig, timeout time.Duration, client *http.Client) (modeladapter.Invoker, error) {
	return huggingface.New(cfg.BaseURL, cfg.APIKey, timeout, client), nil
}

func newTGI(cfg BackendConfig, timeout time.Duration, client *http.Client) (modeladapter.Invoker, error) {
	return tgi.New(cfg.BaseURL, cfg.APIKey, timeout, client), nil
}

// Router dispatches each invocation to the invoker of the candidate's
// backend kind.
type Router map[string]modeladapter.Invoker

var _ modeladapter.Invoker = Router(nil)

// Invoke forwards to the invoker registered for c's backend kind.
func (r Router) Invoke(ctx context.Context, c model.Candidate, prompt string) ([]byte, error) {
	inv, ok := r[c.BackendKind()]
	if !ok {
		return nil, fmt.Errorf("engine: %w: no backend %q for candidate %s", modeladapter.ErrUnavailable, c.BackendKind(), c.ID)
	}
	return inv.Invoke(ctx, c, prompt)
}

// buildRouter creates one invoker per backend kind used by the candidates.
func buildRouter(cfg Config, candidates []model.Candidate, client *http.Client) (Router, error) {
	timeout, err := cfg.CallTimeout()
	if err != nil {
		return nil, err
	}

	r := Router{}
	for _, c := range candidates {
		kind := c.BackendKind()
		if _, done := r[kind]; done {
			continue
		}

		factory, ok := getFactory(kind)
		if !ok {
			return nil, fmt.Errorf("engine: unknown backend kind %q", kind)
		}

		inv, err := factory(cfg.Backends.Get(kind), timeout, client)
		if err != nil {
			return nil, fmt.Errorf("engine: backend %q: %w", kind, err)
		}
		r[kind] = inv
	}

	return r, nil
}
