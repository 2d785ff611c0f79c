// Package wizard is the interactive "taskify init" flow that writes a
// starter relay configuration.
package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/germanamz/taskify/pkg/engine"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// Answers are the choices collected by the form.
type Answers struct {
	Listen         string
	APIKeyRef      string //nolint:gosec // env var reference, not a secret
	LogFormat      string
	Models         []string // Candidate ids in fallback order.
	ExposeAttempts bool
	RateLimitRPS   string
	StaticDir      string
}

// Defaults returns answers matching the built-in configuration.
func Defaults() Answers {
	ids := make([]string, 0, 3)
	for _, c := range model.Defaults() {
		ids = append(ids, c.ID)
	}

	return Answers{
		Listen:       engine.DefaultListen,
		APIKeyRef:    "${HUGGINGFACE_API_KEY}",
		LogFormat:    "text",
		Models:       ids,
		RateLimitRPS: "0",
	}
}

// Run asks the questions on the terminal, starting from Defaults.
func Run() (Answers, error) {
	a := Defaults()

	opts := make([]huh.Option[string], 0, len(a.Models))
	for _, c := range model.Defaults() {
		opts = append(opts, huh.NewOption(c.DisplayName+" ("+c.ID+")", c.ID).Selected(true))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Listen address").Value(&a.Listen).Validate(required),
			huh.NewInput().Title("Hugging Face API key (env var reference)").Value(&a.APIKeyRef),
			huh.NewInput().Title("Static frontend directory (optional)").Value(&a.StaticDir),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Models, tried in this order").
				Options(opts...).
				Value(&a.Models).
				Validate(func(ids []string) error {
					if len(ids) == 0 {
						return errors.New("pick at least one model")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log format").
				Options(huh.NewOption("Text", "text"), huh.NewOption("JSON", "json")).
				Value(&a.LogFormat),
			huh.NewInput().Title("Requests per second per client (0 = no limit)").Value(&a.RateLimitRPS).Validate(nonNegative),
			huh.NewConfirm().Title("Include per-model failures in error responses?").Value(&a.ExposeAttempts),
		),
	)

	if err := form.Run(); err != nil {
		return Answers{}, err
	}

	return a, nil
}

// Render turns answers into configuration YAML.
func Render(a Answers) ([]byte, error) {
	rps, err := parseRPS(a.RateLimitRPS)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Candidate)
	for _, c := range model.Defaults() {
		byID[c.ID] = c
	}

	picked := make([]model.Candidate, 0, len(a.Models))
	for _, id := range a.Models {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("wizard: unknown model %q", id)
		}
		picked = append(picked, c)
	}
	if len(picked) == 0 {
		return nil, errors.New("wizard: no models selected")
	}

	cfg := engine.Config{
		Listen:         a.Listen,
		StaticDir:      a.StaticDir,
		Log:            engine.LogConfig{Level: "info", Format: a.LogFormat},
		ExposeAttempts: a.ExposeAttempts,
		Backends: engine.BackendsConfig{
			HuggingFace: engine.BackendConfig{APIKey: a.APIKeyRef},
		},
		Timeout:    engine.DefaultTimeout,
		Candidates: engine.CandidateConfigs(picked),
	}
	cfg.HTTP.RateLimit.RPS = rps

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("wizard: marshal config: %w", err)
	}

	return data, nil
}

func parseRPS(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("wizard: invalid rate limit %q", s)
	}
	return v, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func nonNegative(s string) error {
	_, err := parseRPS(s)
	return err
}
