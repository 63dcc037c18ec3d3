package config

import (
	"fmt"
	"time"
)

// ServerConfig represents the HTTP control surface configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PollConfig represents the poll cycle configuration
type PollConfig struct {
	Interval       time.Duration
	PageSize       int
	Pacing         time.Duration
	Query          string
	MessageTimeout time.Duration
	RunOnStart     bool
}

// GenerationConfig represents sampling settings for one kind of prompt
type GenerationConfig struct {
	Temperature float32
	MaxTokens   int
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	BaseURL     string
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	TopP        float32
	MaxBodySize int
}

// GmailConfig represents the configuration for the Gmail mailbox
type GmailConfig struct {
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	User           string
	Query          string
	RequestTimeout time.Duration
	MaxFailures    int
	OpenTimeout    time.Duration
}

// LedgerConfig represents the configuration for the processing ledger
type LedgerConfig struct {
	Type      string
	SQLiteDSN string
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level    string
	Format   string
	RingSize int
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	read, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	write, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		Port:         c.GetInt("server.port"),
		ReadTimeout:  read,
		WriteTimeout: write,
	}, nil
}

// GetPoll returns the poll cycle configuration
func (c *Config) GetPoll() (PollConfig, error) {
	interval, err := c.GetDuration("poll.interval")
	if err != nil {
		return PollConfig{}, err
	}
	if interval <= 0 {
		return PollConfig{}, fmt.Errorf("poll.interval must be positive, got %s", interval)
	}
	pacing, err := c.GetDuration("poll.pacing")
	if err != nil {
		return PollConfig{}, err
	}
	timeout, err := c.GetDuration("poll.message_timeout")
	if err != nil {
		return PollConfig{}, err
	}
	return PollConfig{
		Interval:       interval,
		PageSize:       c.GetInt("poll.page_size"),
		Pacing:         pacing,
		Query:          c.GetString("poll.query"),
		MessageTimeout: timeout,
		RunOnStart:     c.GetBool("poll.run_on_start"),
	}, nil
}

// GetClassifier returns the sampling settings for classification
func (c *Config) GetClassifier() GenerationConfig {
	return GenerationConfig{
		Temperature: float32(c.GetFloat64("classifier.temperature")),
		MaxTokens:   c.GetInt("classifier.max_tokens"),
	}
}

// GetDrafter returns the sampling settings for reply generation
func (c *Config) GetDrafter() GenerationConfig {
	return GenerationConfig{
		Temperature: float32(c.GetFloat64("drafter.temperature")),
		MaxTokens:   c.GetInt("drafter.max_tokens"),
	}
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetMaxBodySize returns the body size limit of the active provider
func (c *Config) GetMaxBodySize() int {
	return c.GetInt(c.GetLLM().Provider + ".max_body_size")
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		BaseURL:     c.GetString("openai.base_url"),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() (GmailConfig, error) {
	timeout, err := c.GetDuration("gmail.request_timeout")
	if err != nil {
		return GmailConfig{}, err
	}
	openTimeout, err := c.GetDuration("gmail.breaker.open_timeout")
	if err != nil {
		return GmailConfig{}, err
	}
	return GmailConfig{
		ClientID:       c.GetString("gmail.client_id"),
		ClientSecret:   c.GetString("gmail.client_secret"),
		RefreshToken:   c.GetString("gmail.refresh_token"),
		User:           c.GetString("gmail.user"),
		Query:          c.GetString("poll.query"),
		RequestTimeout: timeout,
		MaxFailures:    c.GetInt("gmail.breaker.max_failures"),
		OpenTimeout:    openTimeout,
	}, nil
}

// GetLedger returns the ledger configuration
func (c *Config) GetLedger() LedgerConfig {
	return LedgerConfig{
		Type:      c.GetString("ledger.type"),
		SQLiteDSN: c.GetString("ledger.sqlite_dsn"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:    c.GetString("logging.level"),
		Format:   c.GetString("logging.format"),
		RingSize: c.GetInt("logging.ring_size"),
	}
}
