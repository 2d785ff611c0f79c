package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/taskify/pkg/prompt"
	"github.com/germanamz/taskify/pkg/providers/model"
)

const sampleYAML = `
listen: ":8080"
static_dir: ./build
log:
  level: debug
  format: json
http:
  body_limit: 1024
  cors_origins: ["http://localhost:3000"]
  rate_limit:
    rps: 2.5
expose_attempts: true
backends:
  huggingface:
    api_key: hf-test
  tgi:
    base_url: http://tgi:8080
timeout: 5s
candidates:
  - id: org/local
    name: Local
    backend: tgi
    template: chatml
    window: 4
    preamble: Be brief.
    parameters:
      max_new_tokens: 64
      temperature: 0.2
      top_p: 0.8
      do_sample: false
      return_full_text: false
`

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("HUGGINGFACE_API_KEY", "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "./build", cfg.StaticDir)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, int64(1024), cfg.HTTP.BodyLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, RateLimitConfig{RPS: 2.5, Burst: 2}, cfg.HTTP.RateLimit)
	assert.True(t, cfg.ExposeAttempts)
	assert.Equal(t, "hf-test", cfg.Backends.HuggingFace.APIKey)
	assert.Equal(t, "http://tgi:8080", cfg.Backends.Get(model.TGI).BaseURL)

	timeout, err := cfg.CallTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)

	cs, err := cfg.ModelCandidates()
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, model.Candidate{
		ID:          "org/local",
		DisplayName: "Local",
		Backend:     model.TGI,
		Template:    prompt.Template{Kind: prompt.ChatML, Window: 4, Preamble: "Be brief."},
		Parameters:  model.Parameters{MaxNewTokens: 64, Temperature: 0.2, TopP: 0.8},
	}, cs[0])
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/no/such/file.yaml")
	assert.ErrorContains(t, err, "engine: load config")
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("listen: [unclosed"))
	assert.ErrorContains(t, err, "engine: parse config")
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKIFY_TEST_KEY", "hf-from-env")

	cfg, err := LoadConfig(writeConfig(t, "backends:\n  huggingface:\n    api_key: ${TASKIFY_TEST_KEY}\n"))
	require.NoError(t, err)

	assert.Equal(t, "hf-from-env", cfg.Backends.HuggingFace.APIKey)
}

func TestParseConfig_KeepsBareDollarSigns(t *testing.T) {
	clearEnv(t)
	t.Setenv("USD", "should-not-appear")
	t.Setenv("TASKIFY_TEST_KEY", "hf-from-env")

	yml := `
backends:
  huggingface:
    api_key: ${TASKIFY_TEST_KEY}
candidates:
  - id: org/pricing
    name: Pricing
    template: dialogue
    window: 3
    preamble: "Prices are in $USD, e.g. $5. Unset ${TASKIFY_UNSET_VAR}stays empty."
    parameters:
      max_new_tokens: 64
      temperature: 0.2
      top_p: 0.8
      do_sample: false
      return_full_text: false
`
	cfg, err := ParseConfig([]byte(yml))
	require.NoError(t, err)
	require.Len(t, cfg.Candidates, 1)

	assert.Equal(t, "Prices are in $USD, e.g. $5. Unset stays empty.", cfg.Candidates[0].Preamble)
	assert.Equal(t, "hf-from-env", cfg.Backends.HuggingFace.APIKey)
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, int64(DefaultBodyLimit), cfg.HTTP.BodyLimit)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Zero(t, cfg.HTTP.RateLimit.RPS)
	assert.False(t, cfg.ExposeAttempts)

	cs, err := cfg.ModelCandidates()
	require.NoError(t, err)
	assert.Equal(t, model.Defaults(), cs)
}

func TestDefaultConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("HUGGINGFACE_API_KEY", "hf-env")

	cfg := DefaultConfig()

	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "hf-env", cfg.Backends.HuggingFace.APIKey)
}

func TestConfig_Validate_MissingParameters(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseConfig([]byte(`
candidates:
  - id: org/a
    name: A
    template: mistral
    window: 10
    parameters:
      max_new_tokens: 100
      temperature: 0.7
`))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing parameters")
	assert.ErrorContains(t, err, "top_p")
	assert.ErrorContains(t, err, "do_sample")
	assert.ErrorContains(t, err, "return_full_text")
}

func TestConfig_Validate_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }, "invalid timeout"},
		{"zero timeout", func(c *Config) { c.Timeout = "0s" }, "timeout must be positive"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"negative body limit", func(c *Config) { c.HTTP.BodyLimit = -1 }, "body_limit"},
		{"negative rps", func(c *Config) { c.HTTP.RateLimit.RPS = -1 }, "rate_limit"},
		{"no candidates", func(c *Config) { c.Candidates = nil }, "at least one candidate"},
		{"duplicate id", func(c *Config) { c.Candidates = append(c.Candidates, c.Candidates[0]) }, "duplicate candidate id"},
		{"unknown backend", func(c *Config) { c.Candidates[0].Backend = "ollama" }, "unknown backend"},
		{"unknown template", func(c *Config) { c.Candidates[0].Template = "alpaca" }, "unknown kind"},
		{"zero window", func(c *Config) { c.Candidates[0].Window = 0 }, "window must be positive"},
		{"missing name", func(c *Config) { c.Candidates[0].Name = "" }, "display name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestCandidateConfigs_RoundTrip(t *testing.T) {
	var cs []model.Candidate
	for _, cc := range CandidateConfigs(model.Defaults()) {
		c, err := cc.Candidate()
		require.NoError(t, err)
		cs = append(cs, c)
	}

	assert.Equal(t, model.Defaults(), cs)
}
