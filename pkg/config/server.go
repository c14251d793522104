// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"github.com/teradata-labs/arena/pkg/llm/factory"
)

// ServerConfig holds the full configuration for the arenas daemon.
// Resolution order: flags > config file > environment > keyring >
// defaults. Flags are layered on by the command; everything else is
// handled by LoadServerConfig.
type ServerConfig struct {
	// DataDir is resolved from ARENA_DATA_DIR / ~/.arena, never from
	// the config file itself.
	DataDir string `mapstructure:"-"`

	Server   HTTPConfig     `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Database DatabaseConfig `mapstructure:"database"`
	Sessions SessionConfig  `mapstructure:"sessions"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// viper instance kept for Watch; nil for hand-built configs.
	viper *viper.Viper
}

// HTTPConfig configures the REST/SSE listener.
type HTTPConfig struct {
	Host string     `mapstructure:"host"`
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig controls cross-origin access for browser clients.
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMConfig mirrors factory.FactoryConfig with mapstructure tags so the
// whole block can live under "llm:" in the config file.
type LLMConfig struct {
	DefaultProvider string `mapstructure:"default_provider"`
	DefaultModel    string `mapstructure:"default_model"`

	OpenAIAPIKey   string `mapstructure:"openai_api_key"`
	OpenAIModel    string `mapstructure:"openai_model"`
	OpenAIEndpoint string `mapstructure:"openai_endpoint"`

	DeepSeekAPIKey   string `mapstructure:"deepseek_api_key"`
	DeepSeekModel    string `mapstructure:"deepseek_model"`
	DeepSeekEndpoint string `mapstructure:"deepseek_endpoint"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	AnthropicAPIKey  string `mapstructure:"anthropic_api_key"`
	AnthropicModel   string `mapstructure:"anthropic_model"`
	AnthropicBaseURL string `mapstructure:"anthropic_base_url"`

	BedrockRegion          string `mapstructure:"bedrock_region"`
	BedrockAccessKeyID     string `mapstructure:"bedrock_access_key_id"`
	BedrockSecretAccessKey string `mapstructure:"bedrock_secret_access_key"`
	BedrockSessionToken    string `mapstructure:"bedrock_session_token"`
	BedrockProfile         string `mapstructure:"bedrock_profile"`
	BedrockModelID         string `mapstructure:"bedrock_model_id"`

	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	EnableRateLimit bool    `mapstructure:"enable_rate_limit"`
}

// DatabaseConfig selects the persistence backend. The driver is
// inferred from the DSN when left empty.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SessionConfig controls the in-memory session registry.
type SessionConfig struct {
	// TTLMinutes is how long a finished session stays queryable before
	// the sweeper purges it.
	TTLMinutes int `mapstructure:"ttl_minutes"`
	// SweepSchedule is a robfig/cron spec, e.g. "@every 5m".
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// LoggingConfig selects the zap logger shape.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadServerConfig loads configuration from file, environment, and
// keyring. cfgFile may be empty, in which case arenas.yaml is searched
// for in the data dir, the working directory, and /etc/arena/.
func LoadServerConfig(cfgFile string) (*ServerConfig, error) {
	v := viper.New()
	setServerDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(GetArenaDataDir())
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/arena/")
		v.SetConfigName("arenas")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// ARENA_SERVER_PORT -> server.port, ARENA_LLM_OPENAI_API_KEY ->
	// llm.openai_api_key, and so on.
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.DataDir = GetArenaDataDir()
	cfg.viper = v

	// Keyring is the lowest-priority source; it never overrides a key
	// already set by file or environment.
	loadSecretsFromKeyring(&cfg)

	return &cfg, nil
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors.enabled", true)
	v.SetDefault("server.cors.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
	})

	v.SetDefault("llm.default_provider", DefaultProvider)
	v.SetDefault("llm.default_model", DefaultModel)
	v.SetDefault("llm.temperature", DefaultTemperature)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("llm.enable_rate_limit", false)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", filepath.Join(GetArenaDataDir(), "arena.db"))

	v.SetDefault("sessions.ttl_minutes", 30)
	v.SetDefault("sessions.sweep_schedule", "@every 5m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SecretMapping links a keyring entry to its config field.
type SecretMapping struct {
	KeyringKey string
	Setter     func(string)
	IsSet      func() bool
}

// loadSecretsFromKeyring fills empty credential fields from the OS
// keyring. Failures are silently ignored: no keyring backend, no stored
// entry, and a locked keychain all leave the config as-is.
func loadSecretsFromKeyring(cfg *ServerConfig) {
	mappings := []SecretMapping{
		{
			KeyringKey: "openai_api_key",
			Setter:     func(s string) { cfg.LLM.OpenAIAPIKey = s },
			IsSet:      func() bool { return cfg.LLM.OpenAIAPIKey != "" },
		},
		{
			KeyringKey: "deepseek_api_key",
			Setter:     func(s string) { cfg.LLM.DeepSeekAPIKey = s },
			IsSet:      func() bool { return cfg.LLM.DeepSeekAPIKey != "" },
		},
		{
			KeyringKey: "gemini_api_key",
			Setter:     func(s string) { cfg.LLM.GeminiAPIKey = s },
			IsSet:      func() bool { return cfg.LLM.GeminiAPIKey != "" },
		},
		{
			KeyringKey: "anthropic_api_key",
			Setter:     func(s string) { cfg.LLM.AnthropicAPIKey = s },
			IsSet:      func() bool { return cfg.LLM.AnthropicAPIKey != "" },
		},
		{
			KeyringKey: "bedrock_access_key_id",
			Setter:     func(s string) { cfg.LLM.BedrockAccessKeyID = s },
			IsSet:      func() bool { return cfg.LLM.BedrockAccessKeyID != "" },
		},
		{
			KeyringKey: "bedrock_secret_access_key",
			Setter:     func(s string) { cfg.LLM.BedrockSecretAccessKey = s },
			IsSet:      func() bool { return cfg.LLM.BedrockSecretAccessKey != "" },
		},
		{
			KeyringKey: "bedrock_session_token",
			Setter:     func(s string) { cfg.LLM.BedrockSessionToken = s },
			IsSet:      func() bool { return cfg.LLM.BedrockSessionToken != "" },
		},
	}

	for _, m := range mappings {
		if m.IsSet() {
			continue
		}
		if value, err := keyring.Get(KeyringService, m.KeyringKey); err == nil && value != "" {
			m.Setter(value)
		}
	}
}

// Validate checks the configuration for problems that would only
// surface mid-request otherwise.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}

	provider := NormalizeProvider(c.LLM.DefaultProvider)
	if err := ValidateProvider(provider); err != nil {
		return fmt.Errorf("llm.default_provider: %w", err)
	}

	switch provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("openai is the default provider but no API key is configured " +
				"(set llm.openai_api_key, ARENA_LLM_OPENAI_API_KEY, or run 'arena keys set openai')")
		}
	case "deepseek":
		if c.LLM.DeepSeekAPIKey == "" {
			return fmt.Errorf("deepseek is the default provider but no API key is configured " +
				"(set llm.deepseek_api_key, ARENA_LLM_DEEPSEEK_API_KEY, or run 'arena keys set deepseek')")
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("gemini is the default provider but no API key is configured " +
				"(set llm.gemini_api_key, ARENA_LLM_GEMINI_API_KEY, or run 'arena keys set gemini')")
		}
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic is the default provider but no API key is configured " +
				"(set llm.anthropic_api_key, ARENA_LLM_ANTHROPIC_API_KEY, or run 'arena keys set anthropic')")
		}
	case "bedrock":
		// Bedrock falls back to the AWS credential chain (env, shared
		// config, IMDS), so only the region is required here.
		if c.LLM.BedrockRegion == "" {
			return fmt.Errorf("bedrock is the default provider but llm.bedrock_region is not set")
		}
	case "mock":
		// Nothing to validate.
	}

	switch c.Database.Driver {
	case "sqlite", "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %q (supported: sqlite3, mysql, postgres)", c.Database.Driver)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (valid: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Sessions.TTLMinutes < 1 {
		return fmt.Errorf("sessions.ttl_minutes must be positive, got %d", c.Sessions.TTLMinutes)
	}

	return nil
}

// FactoryConfig converts the llm block into the provider factory's
// configuration.
func (c *ServerConfig) FactoryConfig() factory.FactoryConfig {
	return factory.FactoryConfig{
		DefaultProvider: NormalizeProvider(c.LLM.DefaultProvider),
		DefaultModel:    c.LLM.DefaultModel,

		OpenAIAPIKey:   c.LLM.OpenAIAPIKey,
		OpenAIModel:    c.LLM.OpenAIModel,
		OpenAIEndpoint: c.LLM.OpenAIEndpoint,

		DeepSeekAPIKey:   c.LLM.DeepSeekAPIKey,
		DeepSeekModel:    c.LLM.DeepSeekModel,
		DeepSeekEndpoint: c.LLM.DeepSeekEndpoint,

		GeminiAPIKey: c.LLM.GeminiAPIKey,
		GeminiModel:  c.LLM.GeminiModel,

		AnthropicAPIKey:  c.LLM.AnthropicAPIKey,
		AnthropicModel:   c.LLM.AnthropicModel,
		AnthropicBaseURL: c.LLM.AnthropicBaseURL,

		BedrockRegion:          c.LLM.BedrockRegion,
		BedrockAccessKeyID:     c.LLM.BedrockAccessKeyID,
		BedrockSecretAccessKey: c.LLM.BedrockSecretAccessKey,
		BedrockSessionToken:    c.LLM.BedrockSessionToken,
		BedrockProfile:         c.LLM.BedrockProfile,
		BedrockModelID:         c.LLM.BedrockModelID,

		MaxTokens:       c.LLM.MaxTokens,
		Temperature:     c.LLM.Temperature,
		Timeout:         c.LLM.TimeoutSeconds,
		EnableRateLimit: c.LLM.EnableRateLimit,
	}
}

// Watch re-reads the config file on change and hands the re-unmarshaled
// result to onChange. Intended for cheap runtime adjustments such as
// log level; listeners must not assume structural settings (port, DSN)
// take effect without a restart. No-op for configs not built by
// LoadServerConfig.
func (c *ServerConfig) Watch(onChange func(*ServerConfig)) {
	if c.viper == nil {
		return
	}
	v := c.viper
	v.OnConfigChange(func(_ fsnotify.Event) {
		var next ServerConfig
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		next.DataDir = c.DataDir
		next.viper = v
		loadSecretsFromKeyring(&next)
		onChange(&next)
	})
	v.WatchConfig()
}

// GenerateExampleConfig returns a commented example arenas.yaml.
func GenerateExampleConfig() string {
	return `# Arena server configuration
# Place at ~/.arena/arenas.yaml or pass with --config.
# Every key can also be set via environment, e.g. ARENA_SERVER_PORT=8080.

server:
  host: 0.0.0.0
  port: 5000
  cors:
    enabled: true
    allowed_origins:
      - http://localhost:5173
      - http://localhost:3000

llm:
  default_provider: deepseek   # openai | deepseek | gemini | anthropic | bedrock | mock
  default_model: ""            # empty picks the provider's default model

  # API keys may also come from the environment (OPENAI_API_KEY, ...) or
  # the OS keyring ('arena keys set <provider>').
  # openai_api_key: sk-...
  # deepseek_api_key: sk-...
  # gemini_api_key: ...
  # anthropic_api_key: sk-ant-...

  # bedrock_region: us-west-2  # credentials come from the AWS chain

  temperature: 0.7
  max_tokens: 0                # 0 defers to each provider's default
  timeout_seconds: 60
  enable_rate_limit: false

database:
  driver: sqlite3              # sqlite3 | mysql | postgres
  dsn: ~/.arena/arena.db

sessions:
  ttl_minutes: 30              # finished sessions stay queryable this long
  sweep_schedule: "@every 5m"

logging:
  level: info                  # debug | info | warn | error
  format: text                 # text | json
`
}
