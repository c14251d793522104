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
package anthropic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/teradata-labs/arena/pkg/llm"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

const (
	// DefaultAnthropicModel is the default Claude model
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	// DefaultMaxTokens is the default maximum tokens per request
	DefaultMaxTokens = 4096
	// DefaultTemperature is the default LLM temperature
	DefaultTemperature = 1.0
	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 60 * time.Second
)

// Global singleton rate limiter shared across all Anthropic clients
var (
	globalRateLimiter     *llm.RateLimiter
	globalRateLimiterOnce sync.Once
)

// DefaultAnthropicRateLimiterConfig returns safe defaults for Anthropic's API.
//
// Anthropic rate limits by tier (as of 2026):
//   - Free / Tier 1: 50 RPM, 30K–100K ITPM
//   - Tier 2:        1000 RPM, 2M ITPM
//   - Tier 3+:       5000+ RPM
//
// These defaults target Tier 1 (the most common). Users on higher tiers should
// increase requests_per_second and tokens_per_minute in arena.yaml.
func DefaultAnthropicRateLimiterConfig() llm.RateLimiterConfig {
	return llm.RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 0.7,                    // ~42 RPM — safely under Tier 1 50 RPM limit
		TokensPerMinute:   80000,                  // 80% of Tier 1 100K ITPM (30K on free)
		BurstCapacity:     3,                      // Conservative burst for multi-agent sessions
		MinDelay:          800 * time.Millisecond, // ~1.25 RPS ceiling; prevents burst overshoots
		MaxRetries:        5,
		RetryBackoff:      2 * time.Second, // Longer initial backoff for Anthropic 429s
		QueueTimeout:      5 * time.Minute,
	}
}

// Client implements the LLMProvider interface for Anthropic's Claude API
// using the official Anthropic SDK.
type Client struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	rateLimiter *llm.RateLimiter
}

// Config holds configuration for the Anthropic client.
type Config struct {
	APIKey            string
	Model             string // Default: claude-sonnet-4-5-20250929
	BaseURL           string // Default: the SDK's production endpoint
	Timeout           time.Duration
	MaxTokens         int     // Default: 4096
	Temperature       float64 // Default: 1.0
	RateLimiterConfig llm.RateLimiterConfig
}

// NewClient creates a new Anthropic client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		// Check environment variable first, then use default
		if envModel := os.Getenv("ANTHROPIC_DEFAULT_MODEL"); envModel != "" {
			config.Model = envModel
		} else {
			config.Model = DefaultAnthropicModel
		}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}

	// Initialize rate limiter if enabled
	var rateLimiter *llm.RateLimiter
	if config.RateLimiterConfig.Enabled {
		rateLimiter = getOrCreateGlobalRateLimiter(config.RateLimiterConfig)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Client{
		client:      anthropic.NewClient(opts...),
		model:       config.Model,
		maxTokens:   int64(config.MaxTokens),
		temperature: config.Temperature,
		rateLimiter: rateLimiter,
	}
}

// getOrCreateGlobalRateLimiter returns the global rate limiter, creating it if necessary.
// Caller-supplied non-zero fields override DefaultAnthropicRateLimiterConfig values.
func getOrCreateGlobalRateLimiter(config llm.RateLimiterConfig) *llm.RateLimiter {
	globalRateLimiterOnce.Do(func() {
		// Start from Anthropic-specific defaults, then apply caller overrides.
		// This ensures we don't blindly fall through to DefaultRateLimiterConfig()
		// (which is tuned for OpenAI-protocol backends and allows a higher RPS).
		merged := DefaultAnthropicRateLimiterConfig()
		merged.Enabled = config.Enabled
		if config.Logger != nil {
			merged.Logger = config.Logger
		}
		if config.RequestsPerSecond > 0 {
			merged.RequestsPerSecond = config.RequestsPerSecond
		}
		if config.TokensPerMinute > 0 {
			merged.TokensPerMinute = config.TokensPerMinute
		}
		if config.BurstCapacity > 0 {
			merged.BurstCapacity = config.BurstCapacity
		}
		if config.MinDelay > 0 {
			merged.MinDelay = config.MinDelay
		}
		if config.MaxRetries > 0 {
			merged.MaxRetries = config.MaxRetries
		}
		if config.RetryBackoff > 0 {
			merged.RetryBackoff = config.RetryBackoff
		}
		if config.QueueTimeout > 0 {
			merged.QueueTimeout = config.QueueTimeout
		}
		globalRateLimiter = llm.NewRateLimiter(merged)
	})
	return globalRateLimiter
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "anthropic"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat sends a conversation to Claude and returns the response.
func (c *Client) Chat(ctx context.Context, messages []llmtypes.Message, opts *llmtypes.ChatOptions) (*llmtypes.LLMResponse, error) {
	params, err := c.buildParams(messages, opts)
	if err != nil {
		return nil, err
	}

	// Call API with rate limiting if configured
	var message *anthropic.Message
	if c.rateLimiter != nil {
		result, err := c.rateLimiter.Do(ctx, func(ctx context.Context) (interface{}, error) {
			return c.client.Messages.New(ctx, params)
		})
		if err != nil {
			return nil, fmt.Errorf("anthropic invocation failed: %w", err)
		}
		message = result.(*anthropic.Message)
	} else {
		message, err = c.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("anthropic invocation failed: %w", err)
		}
	}

	// Convert response
	llmResp := c.convertResponse(message)

	// Record token usage for rate limiter metrics
	if c.rateLimiter != nil {
		c.rateLimiter.RecordTokenUsage(int64(llmResp.Usage.TotalTokens))
	}

	return llmResp, nil
}

// buildParams assembles the SDK request, applying per-call options.
// The Messages API has no sampling seed, so ChatOptions.Seed is ignored here.
func (c *Client) buildParams(messages []llmtypes.Message, opts *llmtypes.ChatOptions) (anthropic.MessageNewParams, error) {
	systemPrompt, sdkMessages := convertMessages(messages)

	if len(sdkMessages) == 0 {
		return anthropic.MessageNewParams{}, fmt.Errorf("no valid messages to send (messages may be empty)")
	}

	temperature := c.temperature
	maxTokens := c.maxTokens
	if opts != nil {
		if opts.Temperature >= 0 {
			temperature = opts.Temperature
		}
		if opts.MaxTokens > 0 {
			maxTokens = int64(opts.MaxTokens)
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		Messages:    sdkMessages,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}

	// Anthropic Messages API requires system prompts in a separate field
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	return params, nil
}

// convertMessages converts agent messages to Anthropic SDK format.
// Returns the combined system prompt and the API messages. System messages are
// extracted because the Messages API carries them in a separate field, not in
// the messages array.
func convertMessages(messages []llmtypes.Message) (string, []anthropic.MessageParam) {
	var systemPrompts []string
	var sdkMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if msg.Content != "" {
				systemPrompts = append(systemPrompts, msg.Content)
			}

		case "assistant":
			if msg.Content != "" {
				sdkMessages = append(sdkMessages, anthropic.NewAssistantMessage(
					anthropic.NewTextBlock(msg.Content),
				))
			}

		default:
			// "user" and unknown roles travel as user turns so no content is lost
			if msg.Content != "" {
				sdkMessages = append(sdkMessages, anthropic.NewUserMessage(
					anthropic.NewTextBlock(msg.Content),
				))
			}
		}
	}

	return strings.Join(systemPrompts, "\n\n"), sdkMessages
}

// convertResponse converts Anthropic SDK response to agent format.
func (c *Client) convertResponse(message *anthropic.Message) *llmtypes.LLMResponse {
	llmResp := &llmtypes.LLMResponse{
		StopReason: string(message.StopReason),
		Usage: llmtypes.Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
			CostUSD:      c.calculateCost(int(message.Usage.InputTokens), int(message.Usage.OutputTokens)),
		},
		Metadata: map[string]interface{}{
			"model":       c.model,
			"stop_reason": string(message.StopReason),
			"message_id":  message.ID,
		},
	}

	// Concatenate text blocks
	for _, block := range message.Content {
		if block.Type == "text" {
			llmResp.Content += block.Text
		}
	}

	return llmResp
}

// calculateCost estimates the cost in USD based on token usage.
// Pricing as of 2025-06 (per million tokens):
// - Claude Sonnet 4.x: $3 / $15
// - Claude Haiku 4.x: $0.80 / $4
// - Claude Opus 4.x: $15 / $75
func (c *Client) calculateCost(inputTokens, outputTokens int) float64 {
	var inputPricePerMillion, outputPricePerMillion float64

	switch {
	case strings.Contains(c.model, "claude-sonnet-4"):
		inputPricePerMillion = 3.0
		outputPricePerMillion = 15.0
	case strings.Contains(c.model, "claude-haiku-4"):
		inputPricePerMillion = 0.8
		outputPricePerMillion = 4.0
	case strings.Contains(c.model, "claude-opus-4"):
		inputPricePerMillion = 15.0
		outputPricePerMillion = 75.0
	default:
		inputPricePerMillion = 3.0
		outputPricePerMillion = 15.0
	}

	inputCost := float64(inputTokens) * inputPricePerMillion / 1_000_000
	outputCost := float64(outputTokens) * outputPricePerMillion / 1_000_000
	return inputCost + outputCost
}

// ChatStream implements token-by-token streaming for Anthropic.
// The tokenCallback is called for each text delta received.
func (c *Client) ChatStream(ctx context.Context, messages []llmtypes.Message,
	opts *llmtypes.ChatOptions, tokenCallback llmtypes.TokenCallback) (*llmtypes.LLMResponse, error) {

	params, err := c.buildParams(messages, opts)
	if err != nil {
		return nil, err
	}

	// Call streaming API (the stream is consumed synchronously, so the rate
	// limiter's request gate does not apply here)
	stream := c.client.Messages.NewStreaming(ctx, params)

	// Process stream events
	var contentBuffer strings.Builder
	var usage llmtypes.Usage
	var stopReason string
	var messageID string
	tokenCount := 0

	for stream.Next() {
		event := stream.Current()

		switch event.Type {
		case "message_start":
			// Initial event: capture message ID and input tokens
			messageID = event.Message.ID
			usage.InputTokens = int(event.Message.Usage.InputTokens)

		case "content_block_delta":
			if event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				token := event.Delta.Text
				contentBuffer.WriteString(token)
				tokenCount++

				// Call token callback (non-blocking)
				if tokenCallback != nil {
					tokenCallback(token)
				}
			}

		case "message_delta":
			if event.Delta.StopReason != "" {
				stopReason = string(event.Delta.StopReason)
			}
			if event.Usage.OutputTokens > 0 {
				usage.OutputTokens = int(event.Usage.OutputTokens)
			}
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	// Check for stream errors (EOF is normal at end of stream)
	if err := stream.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("stream error: %w", err)
	}

	// Build final response
	if usage.OutputTokens == 0 {
		usage.OutputTokens = tokenCount
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	usage.CostUSD = c.calculateCost(usage.InputTokens, usage.OutputTokens)

	// Record token usage for rate limiter metrics
	if c.rateLimiter != nil {
		c.rateLimiter.RecordTokenUsage(int64(usage.TotalTokens))
	}

	return &llmtypes.LLMResponse{
		Content:    contentBuffer.String(),
		StopReason: stopReason,
		Usage:      usage,
		Metadata: map[string]interface{}{
			"model":       c.model,
			"stop_reason": stopReason,
			"message_id":  messageID,
			"streaming":   true,
		},
	}, nil
}

// Ensure Client implements LLMProvider interface.
var _ llmtypes.LLMProvider = (*Client)(nil)

// Ensure Client implements StreamingLLMProvider interface.
var _ llmtypes.StreamingLLMProvider = (*Client)(nil)
