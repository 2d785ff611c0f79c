package engine

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/germanamz/taskify/pkg/prompt"
	"github.com/germanamz/taskify/pkg/providers/model"
)

// Defaults applied when a key is absent.
const (
	DefaultListen    = ":5000"
	DefaultBodyLimit = 50 << 20
	DefaultTimeout   = "60s"
)

// Config is the top-level relay configuration.
type Config struct {
	Listen         string            `yaml:"listen"`
	StaticDir      string            `yaml:"static_dir"`
	Log            LogConfig         `yaml:"log"`
	HTTP           HTTPConfig        `yaml:"http"`
	ExposeAttempts bool              `yaml:"expose_attempts"`
	Backends       BackendsConfig    `yaml:"backends"`
	Timeout        string            `yaml:"timeout"` // Per-call bound as a duration string (e.g. "60s").
	Candidates     []CandidateConfig `yaml:"candidates"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error.
	Format string `yaml:"format"` // text or json.
}

// HTTPConfig holds relay server settings.
type HTTPConfig struct {
	BodyLimit   int64           `yaml:"body_limit"` // Bytes; zero means DefaultBodyLimit.
	CORSOrigins []string        `yaml:"cors_origins"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a per-client token bucket. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BackendsConfig holds per-kind backend settings.
type BackendsConfig struct {
	HuggingFace BackendConfig `yaml:"huggingface"`
	TGI         BackendConfig `yaml:"tgi"`
}

// Get returns the settings for a backend kind.
func (b BackendsConfig) Get(kind string) BackendConfig {
	switch kind {
	case model.TGI:
		return b.TGI
	default:
		return b.HuggingFace
	}
}

// BackendConfig describes how to reach one backend kind.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
}

// CandidateConfig describes one model candidate. Parameters must be given in
// full; a partial set is rejected.
type CandidateConfig struct {
	ID         string           `yaml:"id"`
	Name       string           `yaml:"name"`
	Backend    string           `yaml:"backend"`
	Endpoint   string           `yaml:"endpoint"`
	Template   string           `yaml:"template"`
	Window     int              `yaml:"window"`
	Preamble   string           `yaml:"preamble"`
	Parameters ParametersConfig `yaml:"parameters"`
}

// ParametersConfig mirrors model.Parameters with every field optional so
// that missing keys can be told apart from zero values.
type ParametersConfig struct {
	MaxNewTokens   *int     `yaml:"max_new_tokens"`
	Temperature    *float64 `yaml:"temperature"`
	TopP           *float64 `yaml:"top_p"`
	DoSample       *bool    `yaml:"do_sample"`
	ReturnFullText *bool    `yaml:"return_full_text"`
}

// LoadConfig reads a YAML file and returns a Config with defaults applied.
// Environment variables referenced as ${VAR} in the YAML are expanded
// before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes and applies defaults.
func ParseConfig(data []byte) (Config, error) {
	expanded := expandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	cfg.ApplyDefaults()

	return cfg, nil
}

// envRef matches ${VAR} references. Bare $VAR is left alone so that prose
// such as preambles can carry dollar signs.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces every ${VAR} with its value, or nothing when unset.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset keys. PORT and HUGGINGFACE_API_KEY are read from
// the environment when the file leaves listen and the Hugging Face key empty.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
		if port := os.Getenv("PORT"); port != "" {
			c.Listen = ":" + port
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.HTTP.BodyLimit == 0 {
		c.HTTP.BodyLimit = DefaultBodyLimit
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
	if c.HTTP.RateLimit.RPS > 0 && c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = max(1, int(c.HTTP.RateLimit.RPS))
	}
	if c.Backends.HuggingFace.APIKey == "" {
		c.Backends.HuggingFace.APIKey = os.Getenv("HUGGINGFACE_API_KEY")
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
	if len(c.Candidates) == 0 {
		c.Candidates = CandidateConfigs(model.Defaults())
	}
}

// CallTimeout parses the per-call backend bound.
func (c Config) CallTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("engine: config: invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("engine: config: timeout must be positive, got %s", d)
	}
	return d, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if _, err := c.CallTimeout(); err != nil {
		return err
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("engine: config: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("engine: config: log format must be text or json, got %q", c.Log.Format)
	}

	if c.HTTP.BodyLimit < 0 {
		return fmt.Errorf("engine: config: body_limit must not be negative")
	}
	if c.HTTP.RateLimit.RPS < 0 || c.HTTP.RateLimit.Burst < 0 {
		return fmt.Errorf("engine: config: rate_limit values must not be negative")
	}

	if _, err := c.ModelCandidates(); err != nil {
		return err
	}

	return nil
}

// ModelCandidates converts and validates the configured candidates.
func (c Config) ModelCandidates() ([]model.Candidate, error) {
	if len(c.Candidates) == 0 {
		return nil, errors.New("engine: config: at least one candidate is required")
	}

	out := make([]model.Candidate, 0, len(c.Candidates))
	ids := make(map[string]struct{}, len(c.Candidates))

	for i, cc := range c.Candidates {
		mc, err := cc.Candidate()
		if err != nil {
			return nil, fmt.Errorf("engine: config: candidates[%d]: %w", i, err)
		}
		if _, dup := ids[mc.ID]; dup {
			return nil, fmt.Errorf("engine: config: duplicate candidate id %q", mc.ID)
		}
		ids[mc.ID] = struct{}{}

		if _, ok := getFactory(mc.BackendKind()); !ok {
			return nil, fmt.Errorf("engine: config: candidate %q: unknown backend %q", mc.ID, mc.BackendKind())
		}

		out = append(out, mc)
	}

	return out, nil
}

// Candidate converts the entry into a validated model.Candidate.
func (cc CandidateConfig) Candidate() (model.Candidate, error) {
	params, err := cc.Parameters.resolve()
	if err != nil {
		return model.Candidate{}, fmt.Errorf("candidate %q: %w", cc.ID, err)
	}

	c := model.Candidate{
		ID:          cc.ID,
		DisplayName: cc.Name,
		Backend:     cc.Backend,
		Endpoint:    cc.Endpoint,
		Template: prompt.Template{
			Kind:     prompt.Kind(cc.Template),
			Window:   cc.Window,
			Preamble: cc.Preamble,
		},
		Parameters: params,
	}

	if err := c.Validate(); err != nil {
		return model.Candidate{}, err
	}

	return c, nil
}

func (p ParametersConfig) resolve() (model.Parameters, error) {
	var missing []string
	if p.MaxNewTokens == nil {
		missing = append(missing, "max_new_tokens")
	}
	if p.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if p.TopP == nil {
		missing = append(missing, "top_p")
	}
	if p.DoSample == nil {
		missing = append(missing, "do_sample")
	}
	if p.ReturnFullText == nil {
		missing = append(missing, "return_full_text")
	}
	if len(missing) > 0 {
		return model.Parameters{}, fmt.Errorf("missing parameters %v", missing)
	}

	return model.Parameters{
		MaxNewTokens:   *p.MaxNewTokens,
		Temperature:    *p.Temperature,
		TopP:           *p.TopP,
		DoSample:       *p.DoSample,
		ReturnFullText: *p.ReturnFullText,
	}, nil
}

// CandidateConfigs converts candidates back into their configuration form.
func CandidateConfigs(cs []model.Candidate) []CandidateConfig {
	out := make([]CandidateConfig, 0, len(cs))
	for _, c := range cs {
		p := c.Parameters
		out = append(out, CandidateConfig{
			ID:       c.ID,
			Name:     c.DisplayName,
			Backend:  c.Backend,
			Endpoint: c.Endpoint,
			Template: string(c.Template.Kind),
			Window:   c.Template.Window,
			Preamble: c.Template.Preamble,
			Parameters: ParametersConfig{
				MaxNewTokens:   &p.MaxNewTokens,
				Temperature:    &p.Temperature,
				TopP:           &p.TopP,
				DoSample:       &p.DoSample,
				ReturnFullText: &p.ReturnFullText,
			},
		})
	}
	return out
}
