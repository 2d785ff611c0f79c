// Package model describes the inference backends the relay can try: their
// identity, prompt layout, and generation parameters.
package model

import (
	"errors"
	"fmt"

	"github.com/germanamz/taskify/pkg/prompt"
)

// Parameters holds the generation options sent with every invocation. All
// fields are always sent; there is no notion of a partially filled set.
type Parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens" yaml:"max_new_tokens"`
	Temperature    float64 `json:"temperature" yaml:"temperature"`
	TopP           float64 `json:"top_p" yaml:"top_p"`
	DoSample       bool    `json:"do_sample" yaml:"do_sample"`
	ReturnFullText bool    `json:"return_full_text" yaml:"return_full_text"`
}

// Validate checks the parameter ranges.
func (p Parameters) Validate() error {
	if p.MaxNewTokens <= 0 {
		return fmt.Errorf("max_new_tokens must be positive, got %d", p.MaxNewTokens)
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g", p.Temperature)
	}
	if p.TopP <= 0 || p.TopP > 1 {
		return fmt.Errorf("top_p must be in (0, 1], got %g", p.TopP)
	}
	return nil
}

// Backend kinds.
const (
	HuggingFace = "huggingface"
	TGI         = "tgi"
)

// Candidate is one backend the relay may try. Candidates are immutable once
// the relay starts; their order in a list is their fallback priority.
type Candidate struct {
	ID          string          // Backend model identifier, e.g. "microsoft/phi-2".
	DisplayName string          // Human readable name reported as the model used.
	Backend     string          // Backend kind; empty means HuggingFace.
	Endpoint    string          // Optional base URL overriding the backend's default.
	Template    prompt.Template // Prompt layout and recency window.
	Parameters  Parameters      // Generation options.
}

// BackendKind returns the candidate's backend kind, defaulting to HuggingFace.
func (c Candidate) BackendKind() string {
	if c.Backend == "" {
		return HuggingFace
	}
	return c.Backend
}

// Validate checks that the candidate is complete.
func (c Candidate) Validate() error {
	if c.ID == "" {
		return errors.New("model: candidate id is required")
	}
	if c.DisplayName == "" {
		return fmt.Errorf("model: candidate %q: display name is required", c.ID)
	}
	if err := c.Template.Validate(); err != nil {
		return fmt.Errorf("model: candidate %q: %w", c.ID, err)
	}
	if err := c.Parameters.Validate(); err != nil {
		return fmt.Errorf("model: candidate %q: %w", c.ID, err)
	}
	return nil
}

// Defaults returns the built-in candidate table in priority order.
func Defaults() []Candidate {
	return []Candidate{
		{
			ID:          "mistralai/Mistral-7B-Instruct-v0.2",
			DisplayName: "Mistral 7B",
			Template:    prompt.Template{Kind: prompt.Mistral, Window: 10},
			Parameters: Parameters{
				MaxNewTokens: 800,
				Temperature:  0.7,
				TopP:         0.95,
				DoSample:     true,
			},
		},
		{
			ID:          "microsoft/phi-2",
			DisplayName: "Phi-2",
			Template: prompt.Template{
				Kind:     prompt.Dialogue,
				Window:   5,
				Preamble: "You are Taskify.ai, a helpful and friendly AI assistant. Answer the questions accurately and concisely.",
			},
			Parameters: Parameters{
				MaxNewTokens: 500,
				Temperature:  0.7,
				TopP:         0.9,
				DoSample:     true,
			},
		},
		{
			ID:          "Qwen/Qwen1.5-1.8B-Chat",
			DisplayName: "Qwen 1.8B Chat",
			Template: prompt.Template{
				Kind:     prompt.ChatML,
				Window:   6,
				Preamble: "You are a helpful assistant called Taskify.ai.",
			},
			Parameters: Parameters{
				MaxNewTokens: 512,
				Temperature:  0.7,
				TopP:         0.9,
				DoSample:     true,
			},
		},
	}
}
