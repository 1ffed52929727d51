package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ncecere/completions/transport"
)

// Settings holds the process configuration shared by the binaries.
type Settings struct {
	APIKey       string `envconfig:"OPENAI_API_KEY"`
	BaseURL      string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	Organization string `envconfig:"OPENAI_ORGANIZATION"`

	Timeout        time.Duration `envconfig:"COMPLETIONS_TIMEOUT" default:"60s"`
	MaxAttempts    int           `envconfig:"COMPLETIONS_MAX_ATTEMPTS" default:"3"`
	InitialBackoff time.Duration `envconfig:"COMPLETIONS_INITIAL_BACKOFF" default:"250ms"`
	MaxBackoff     time.Duration `envconfig:"COMPLETIONS_MAX_BACKOFF" default:"5s"`

	LogLevel string `envconfig:"COMPLETIONS_LOG_LEVEL" default:"info"`
	Addr     string `envconfig:"COMPLETIONS_ADDR" default:":8085"`

	// DefaultModel is registered under the "default" alias.
	DefaultModel string `envconfig:"COMPLETIONS_DEFAULT_MODEL" default:"gpt-3.5-turbo-instruct"`
	// Aliases are extra name:model pairs, e.g. "fast:babbage-002".
	Aliases map[string]string `envconfig:"COMPLETIONS_ALIASES"`
}

// Load reads configuration from environment variables.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &s, nil
}

// ClientOptions returns transport options derived from s.
func (s *Settings) ClientOptions() transport.ClientOptions {
	return transport.ClientOptions{
		BaseURL:      s.BaseURL,
		APIKey:       s.APIKey,
		Organization: s.Organization,
		HTTPClient:   transport.WithHTTPTimeout(s.Timeout),
	}
}

// ModelAliases returns the alias table, including "default".
func (s *Settings) ModelAliases() map[string]string {
	out := make(map[string]string, len(s.Aliases)+1)
	for k, v := range s.Aliases {
		out[k] = v
	}
	if s.DefaultModel != "" {
		out["default"] = s.DefaultModel
	}
	return out
}
