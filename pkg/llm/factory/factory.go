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
package factory

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/teradata-labs/arena/pkg/llm"
	"github.com/teradata-labs/arena/pkg/llm/anthropic"
	"github.com/teradata-labs/arena/pkg/llm/bedrock"
	"github.com/teradata-labs/arena/pkg/llm/deepseek"
	"github.com/teradata-labs/arena/pkg/llm/gemini"
	"github.com/teradata-labs/arena/pkg/llm/mock"
	"github.com/teradata-labs/arena/pkg/llm/openai"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
	"github.com/teradata-labs/arena/pkg/observability"
)

// ProviderFactory creates LLM providers based on configuration and pools
// the constructed clients so repeated lookups are idempotent.
type ProviderFactory struct {
	config FactoryConfig

	mu   sync.Mutex
	pool map[string]llmtypes.LLMProvider
}

// FactoryConfig holds configuration for creating LLM providers.
type FactoryConfig struct {
	// Default provider to use when the caller passes an empty provider
	DefaultProvider string
	DefaultModel    string

	// OpenAI configuration
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIEndpoint string

	// DeepSeek configuration
	DeepSeekAPIKey   string
	DeepSeekModel    string
	DeepSeekEndpoint string

	// Gemini configuration
	GeminiAPIKey string
	GeminiModel  string

	// Anthropic configuration
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	// Bedrock configuration
	BedrockRegion          string
	BedrockAccessKeyID     string
	BedrockSecretAccessKey string
	BedrockSessionToken    string
	BedrockProfile         string
	BedrockModelID         string

	// Common settings. Zero values defer to each provider's own defaults.
	MaxTokens   int
	Temperature float64
	Timeout     int // seconds

	// Seed makes mock runs reproducible; live providers take the seed
	// per call through ChatOptions instead.
	Seed int64

	// EnableRateLimit turns on the shared per-provider token-bucket
	// limiter with provider-appropriate defaults.
	EnableRateLimit bool

	// Tracer, when set, wraps every constructed provider so each LLM
	// call emits a span with latency, token usage, and cost attributes.
	Tracer observability.Tracer
}

// NewProviderFactory creates a new provider factory.
func NewProviderFactory(config FactoryConfig) *ProviderFactory {
	if config.Timeout == 0 {
		config.Timeout = 60
	}

	return &ProviderFactory{
		config: config,
		pool:   make(map[string]llmtypes.LLMProvider),
	}
}

// CreateProvider returns the provider for the given type and model,
// constructing it on first use. Clients bind their model, so the pool key
// carries the model alongside provider, key prefix, and base URL. When a
// Tracer is configured the returned provider is wrapped with per-call
// instrumentation.
func (f *ProviderFactory) CreateProvider(provider, model string) (llmtypes.LLMProvider, error) {
	if provider == "" {
		provider = f.config.DefaultProvider
	}
	if model == "" {
		model = f.config.DefaultModel
	}

	var (
		p   llmtypes.LLMProvider
		err error
	)
	switch provider {
	case "openai":
		p, err = f.createOpenAIProvider(model)
	case "deepseek":
		p, err = f.createDeepSeekProvider(model)
	case "gemini":
		p, err = f.createGeminiProvider(model)
	case "anthropic":
		p, err = f.createAnthropicProvider(model)
	case "bedrock":
		p, err = f.createBedrockProvider(model)
	case "mock":
		p, err = f.createMockProvider(model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	// The pool holds bare clients; the instrumentation wrapper is
	// stateless, so rebuilding it per lookup is fine.
	if f.config.Tracer != nil {
		return llm.NewInstrumentedProvider(p, f.config.Tracer), nil
	}
	return p, nil
}

// pooled returns the cached client for key, building and caching it when
// absent. Lookups after the first never reconstruct the client.
func (f *ProviderFactory) pooled(key string, build func() (llmtypes.LLMProvider, error)) (llmtypes.LLMProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.pool[key]; ok {
		return p, nil
	}
	p, err := build()
	if err != nil {
		return nil, err
	}
	f.pool[key] = p
	return p, nil
}

// poolKey identifies a client by provider, API-key prefix, base URL, and
// model. Only a short key prefix is kept so the pool never holds a whole
// secret.
func poolKey(provider, apiKey, baseURL, model string) string {
	prefix := apiKey
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return provider + "|" + prefix + "|" + baseURL + "|" + model
}

func (f *ProviderFactory) createOpenAIProvider(model string) (llmtypes.LLMProvider, error) {
	apiKey := f.config.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key not configured (set llm.openai_api_key or OPENAI_API_KEY)")
	}

	if model == "" {
		model = f.config.OpenAIModel
	}
	if model == "" {
		model = openai.DefaultOpenAIModel
	}

	return f.pooled(poolKey("openai", apiKey, f.config.OpenAIEndpoint, model), func() (llmtypes.LLMProvider, error) {
		return openai.NewClient(openai.Config{
			APIKey:            apiKey,
			Model:             model,
			Endpoint:          f.config.OpenAIEndpoint,
			MaxTokens:         f.config.MaxTokens,
			Temperature:       f.config.Temperature,
			Timeout:           time.Duration(f.config.Timeout) * time.Second,
			RateLimiterConfig: f.rateLimiterConfig(),
		}), nil
	})
}

func (f *ProviderFactory) createDeepSeekProvider(model string) (llmtypes.LLMProvider, error) {
	apiKey := f.config.DeepSeekAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek API key not configured (set llm.deepseek_api_key or DEEPSEEK_API_KEY)")
	}

	if model == "" {
		model = f.config.DeepSeekModel
	}
	if model == "" {
		model = deepseek.DefaultDeepSeekModel
	}

	return f.pooled(poolKey("deepseek", apiKey, f.config.DeepSeekEndpoint, model), func() (llmtypes.LLMProvider, error) {
		return deepseek.NewClient(deepseek.Config{
			APIKey:            apiKey,
			Model:             model,
			Endpoint:          f.config.DeepSeekEndpoint,
			MaxTokens:         f.config.MaxTokens,
			Temperature:       f.config.Temperature,
			Timeout:           time.Duration(f.config.Timeout) * time.Second,
			RateLimiterConfig: f.rateLimiterConfig(),
		}), nil
	})
}

func (f *ProviderFactory) createGeminiProvider(model string) (llmtypes.LLMProvider, error) {
	apiKey := f.config.GeminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured (set llm.gemini_api_key or GEMINI_API_KEY)")
	}

	if model == "" {
		model = f.config.GeminiModel
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return f.pooled(poolKey("gemini", apiKey, "", model), func() (llmtypes.LLMProvider, error) {
		return gemini.NewClient(gemini.Config{
			APIKey:            apiKey,
			Model:             model,
			MaxTokens:         f.config.MaxTokens,
			Temperature:       f.config.Temperature,
			Timeout:           time.Duration(f.config.Timeout) * time.Second,
			RateLimiterConfig: f.rateLimiterConfig(),
		}), nil
	})
}

func (f *ProviderFactory) createAnthropicProvider(model string) (llmtypes.LLMProvider, error) {
	apiKey := f.config.AnthropicAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured (set llm.anthropic_api_key or ANTHROPIC_API_KEY)")
	}

	if model == "" {
		model = f.config.AnthropicModel
	}
	if model == "" {
		model = anthropic.DefaultAnthropicModel
	}

	return f.pooled(poolKey("anthropic", apiKey, f.config.AnthropicBaseURL, model), func() (llmtypes.LLMProvider, error) {
		cfg := anthropic.Config{
			APIKey:      apiKey,
			Model:       model,
			BaseURL:     f.config.AnthropicBaseURL,
			MaxTokens:   f.config.MaxTokens,
			Temperature: f.config.Temperature,
			Timeout:     time.Duration(f.config.Timeout) * time.Second,
		}
		if f.config.EnableRateLimit {
			cfg.RateLimiterConfig = anthropic.DefaultAnthropicRateLimiterConfig()
		}
		return anthropic.NewClient(cfg), nil
	})
}

func (f *ProviderFactory) createBedrockProvider(model string) (llmtypes.LLMProvider, error) {
	if model == "" {
		model = f.config.BedrockModelID
	}
	if model == "" {
		model = bedrock.DefaultBedrockModelID
	}

	region := f.config.BedrockRegion
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = bedrock.DefaultBedrockRegion
	}

	return f.pooled(poolKey("bedrock", f.config.BedrockAccessKeyID, region, model), func() (llmtypes.LLMProvider, error) {
		cfg := bedrock.Config{
			Region:          region,
			AccessKeyID:     f.config.BedrockAccessKeyID,
			SecretAccessKey: f.config.BedrockSecretAccessKey,
			SessionToken:    f.config.BedrockSessionToken,
			Profile:         f.config.BedrockProfile,
			ModelID:         model,
			MaxTokens:       f.config.MaxTokens,
			Temperature:     f.config.Temperature,
		}
		if f.config.EnableRateLimit {
			cfg.RateLimiterConfig = anthropic.DefaultAnthropicRateLimiterConfig()
		}
		return bedrock.NewClient(cfg)
	})
}

func (f *ProviderFactory) createMockProvider(model string) (llmtypes.LLMProvider, error) {
	if model == "" {
		model = mock.DefaultMockModel
	}

	return f.pooled(poolKey("mock", "", "", model), func() (llmtypes.LLMProvider, error) {
		return mock.NewClient(mock.Config{
			Model:       model,
			Temperature: f.config.Temperature,
			Seed:        f.config.Seed,
		}), nil
	})
}

// rateLimiterConfig returns the shared limiter defaults for the
// OpenAI-protocol adapters, or a disabled config when rate limiting is off.
func (f *ProviderFactory) rateLimiterConfig() llm.RateLimiterConfig {
	if !f.config.EnableRateLimit {
		return llm.RateLimiterConfig{}
	}
	return llm.DefaultRateLimiterConfig()
}

// IsProviderAvailable checks if a provider is available (credentials/config present).
func (f *ProviderFactory) IsProviderAvailable(provider string) bool {
	_, err := f.CreateProvider(provider, "")
	return err == nil
}
