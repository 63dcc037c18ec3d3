package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewWithFile("")
}

// NewWithFile creates a configuration reading the given file, or searching
// the default locations when file is empty
func NewWithFile(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/lead-responder/")
		v.AddConfigPath("$HOME/.lead-responder")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("LEAD_RESPONDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Hosting platforms hand the listening port over as plain PORT
	if err := v.BindEnv("server.port", "LEAD_RESPONDER_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind port variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")

	// Poll cycle defaults
	v.SetDefault("poll.interval", "2m")
	v.SetDefault("poll.page_size", 10)
	v.SetDefault("poll.pacing", "1s")
	v.SetDefault("poll.query", "is:unread")
	v.SetDefault("poll.message_timeout", "2m")
	v.SetDefault("poll.run_on_start", false)

	// Lead defaults
	v.SetDefault("lead.internal_domains", []string{})

	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")

	v.SetDefault("classifier.temperature", 0.1)
	v.SetDefault("classifier.max_tokens", 300)
	v.SetDefault("drafter.temperature", 0.7)
	v.SetDefault("drafter.max_tokens", 500)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gmail defaults
	v.SetDefault("gmail.client_id", "")
	v.SetDefault("gmail.client_secret", "")
	v.SetDefault("gmail.refresh_token", "")
	v.SetDefault("gmail.user", "me")
	v.SetDefault("gmail.request_timeout", "30s")
	v.SetDefault("gmail.breaker.max_failures", 5)
	v.SetDefault("gmail.breaker.open_timeout", "30s")

	// Ledger defaults
	v.SetDefault("ledger.type", "memory")
	v.SetDefault("ledger.sqlite_dsn", "file:ledger?mode=memory&cache=shared")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.ring_size", 100)
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
