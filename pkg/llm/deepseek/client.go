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
package deepseek

import (
	"context"
	"fmt"
	"time"

	"github.com/teradata-labs/arena/pkg/llm"
	"github.com/teradata-labs/arena/pkg/llm/openai"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

// Client implements the LLMProvider interface for DeepSeek.
// DeepSeek uses an OpenAI-compatible API, so we wrap the OpenAI client.
type Client struct {
	openai *openai.Client
	model  string
}

// Config holds configuration for the DeepSeek client.
type Config struct {
	// Required: DeepSeek API key from https://platform.deepseek.com/
	APIKey string

	// Model to use (default: "deepseek-chat")
	// Available models:
	// - deepseek-chat: General chat model (DeepSeek-V3)
	// - deepseek-reasoner: Reasoning model (DeepSeek-R1)
	Model string

	// Optional configuration
	Endpoint          string        // Default: https://api.deepseek.com/v1/chat/completions
	MaxTokens         int           // Default: 2048
	Temperature       float64       // Default: 0.7
	Timeout           time.Duration // Default: 60s
	RateLimiterConfig llm.RateLimiterConfig
}

// Default DeepSeek configuration values.
const (
	DefaultDeepSeekModel    = "deepseek-chat"
	DefaultDeepSeekEndpoint = "https://api.deepseek.com/v1/chat/completions"
)

// NewClient creates a new DeepSeek client.
// DeepSeek uses an OpenAI-compatible API at https://api.deepseek.com/v1/chat/completions
func NewClient(config Config) *Client {
	// Set defaults
	if config.Model == "" {
		config.Model = DefaultDeepSeekModel
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultDeepSeekEndpoint
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2048
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	// Create OpenAI client with DeepSeek endpoint
	openaiClient := openai.NewClient(openai.Config{
		APIKey:            config.APIKey,
		Model:             config.Model,
		Endpoint:          config.Endpoint,
		MaxTokens:         config.MaxTokens,
		Temperature:       config.Temperature,
		Timeout:           config.Timeout,
		RateLimiterConfig: config.RateLimiterConfig,
	})

	return &Client{
		openai: openaiClient,
		model:  config.Model,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "deepseek"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat sends a conversation to DeepSeek and returns the response.
// This delegates to the OpenAI client since DeepSeek uses the same API format.
func (c *Client) Chat(ctx context.Context, messages []llmtypes.Message, opts *llmtypes.ChatOptions) (*llmtypes.LLMResponse, error) {
	// Delegate to OpenAI client (API-compatible)
	resp, err := c.openai.Chat(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	// Recalculate cost using DeepSeek pricing
	resp.Usage.CostUSD = c.calculateCost(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	// Update metadata to reflect DeepSeek provider
	if resp.Metadata == nil {
		resp.Metadata = make(map[string]interface{})
	}
	resp.Metadata["provider"] = "deepseek"

	return resp, nil
}

// calculateCost estimates the cost in USD based on token usage.
// Pricing as of 2025-06 (cache miss, per million tokens):
// - deepseek-chat: $0.27 / $1.10
// - deepseek-reasoner: $0.55 / $2.19
//
// Note: Prices may vary. Check https://api-docs.deepseek.com/quick_start/pricing
// for current rates.
func (c *Client) calculateCost(inputTokens, outputTokens int) float64 {
	var inputCostPerM, outputCostPerM float64

	switch c.model {
	case "deepseek-reasoner":
		inputCostPerM = 0.55
		outputCostPerM = 2.19
	default:
		// deepseek-chat and unknown models
		inputCostPerM = 0.27
		outputCostPerM = 1.10
	}

	inputCost := float64(inputTokens) * inputCostPerM / 1_000_000
	outputCost := float64(outputTokens) * outputCostPerM / 1_000_000
	return inputCost + outputCost
}

// ChatStream implements token-by-token streaming for DeepSeek.
// Since DeepSeek uses an OpenAI-compatible API, this delegates directly to the
// OpenAI client's ChatStream.
func (c *Client) ChatStream(ctx context.Context, messages []llmtypes.Message,
	opts *llmtypes.ChatOptions, tokenCallback llmtypes.TokenCallback) (*llmtypes.LLMResponse, error) {

	// Delegate to OpenAI client (API-compatible)
	// The OpenAI client implements StreamingLLMProvider
	streamProvider, ok := interface{}(c.openai).(llmtypes.StreamingLLMProvider)
	if !ok {
		return nil, fmt.Errorf("OpenAI client does not support streaming")
	}

	resp, err := streamProvider.ChatStream(ctx, messages, opts, tokenCallback)
	if err != nil {
		return nil, err
	}

	// Recalculate cost using DeepSeek pricing
	resp.Usage.CostUSD = c.calculateCost(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	// Update metadata to reflect DeepSeek provider
	if resp.Metadata == nil {
		resp.Metadata = make(map[string]interface{})
	}
	resp.Metadata["provider"] = "deepseek"

	return resp, nil
}

// Ensure Client implements LLMProvider interface.
var _ llmtypes.LLMProvider = (*Client)(nil)

// Ensure Client implements StreamingLLMProvider interface.
var _ llmtypes.StreamingLLMProvider = (*Client)(nil)
