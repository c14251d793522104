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
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/teradata-labs/arena/pkg/llm"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
)

// Global singleton rate limiter shared across all Gemini clients
var (
	globalRateLimiter     *llm.RateLimiter
	globalRateLimiterOnce sync.Once
)

// Client implements the LLMProvider interface for Google Gemini.
type Client struct {
	apiKey      string
	model       string
	httpClient  *http.Client
	maxTokens   int
	temperature float64
	rateLimiter *llm.RateLimiter
}

// Config holds configuration for the Gemini client.
type Config struct {
	// Required: Gemini API key from https://makersuite.google.com/
	APIKey string

	// Model to use (default: "gemini-2.5-flash")
	// Available models:
	// - gemini-2.5-pro: Complex reasoning, $1.25-2.50/$10-15 per 1M tokens
	// - gemini-2.5-flash: Best price/performance, $0.30/$2.50 per 1M tokens
	// - gemini-2.5-flash-lite: Fastest/cheapest, similar to Flash pricing
	Model string

	// Optional configuration
	MaxTokens         int           // Default: 8192
	Temperature       float64       // Default: 1.0
	Timeout           time.Duration // Default: 60s
	RateLimiterConfig llm.RateLimiterConfig
}

// NewClient creates a new Google Gemini client.
func NewClient(config Config) *Client {
	// Set defaults
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 8192
	}
	if config.Temperature == 0 {
		config.Temperature = 1.0
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	// Initialize rate limiter if enabled
	var rateLimiter *llm.RateLimiter
	if config.RateLimiterConfig.Enabled {
		rateLimiter = getOrCreateGlobalRateLimiter(config.RateLimiterConfig)
	}

	return &Client{
		apiKey:      config.APIKey,
		model:       config.Model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		rateLimiter: rateLimiter,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// getOrCreateGlobalRateLimiter returns the global rate limiter, creating it if necessary.
func getOrCreateGlobalRateLimiter(config llm.RateLimiterConfig) *llm.RateLimiter {
	globalRateLimiterOnce.Do(func() {
		globalRateLimiter = llm.NewRateLimiter(config)
	})
	return globalRateLimiter
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "gemini"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat sends a conversation to Google Gemini and returns the response.
func (c *Client) Chat(ctx context.Context, messages []llmtypes.Message, opts *llmtypes.ChatOptions) (*llmtypes.LLMResponse, error) {
	// Build request
	req := c.buildRequest(messages, opts)

	// Call Gemini API
	resp, err := c.callAPI(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	// Convert response
	llmResp := c.convertResponse(resp)

	// Record token usage for rate limiter metrics
	if c.rateLimiter != nil {
		c.rateLimiter.RecordTokenUsage(int64(llmResp.Usage.TotalTokens))
	}

	return llmResp, nil
}

// buildRequest assembles the wire request, applying per-call options.
func (c *Client) buildRequest(messages []llmtypes.Message, opts *llmtypes.ChatOptions) *GenerateContentRequest {
	genConfig := GenerationConfig{
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxTokens,
	}

	if opts != nil {
		if opts.Temperature >= 0 {
			genConfig.Temperature = opts.Temperature
		}
		if opts.MaxTokens > 0 {
			genConfig.MaxOutputTokens = opts.MaxTokens
		}
		if opts.Seed != 0 {
			genConfig.Seed = opts.Seed
		}
	}

	return &GenerateContentRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: flattenMessages(messages)}},
			},
		},
		GenerationConfig: genConfig,
	}
}

// flattenMessages collapses a conversation into a single role-prefixed prompt.
// Gemini's multi-turn contents API distinguishes only user/model roles and has
// no system slot, so the conversation travels as one user turn with
// "System:" / "User:" / "Assistant:" line prefixes preserving attribution.
func flattenMessages(messages []llmtypes.Message) string {
	lines := make([]string, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			lines = append(lines, "System: "+msg.Content)
		case "assistant":
			lines = append(lines, "Assistant: "+msg.Content)
		default:
			lines = append(lines, "User: "+msg.Content)
		}
	}

	return strings.Join(lines, "\n")
}

// callAPI makes the HTTP request to Gemini's API.
func (c *Client) callAPI(ctx context.Context, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	// Build URL
	// Format: https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent?key={apiKey}
	apiURL := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		c.model,
		c.apiKey,
	)

	// Marshal request
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Create HTTP request
	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	httpReq.Header.Set("Content-Type", "application/json")

	// Send request with rate limiting if enabled
	var httpResp *http.Response
	if c.rateLimiter != nil {
		result, err := c.rateLimiter.Do(ctx, func(ctx context.Context) (interface{}, error) {
			return c.httpClient.Do(httpReq)
		})
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		httpResp = result.(*http.Response)
	} else {
		var err error
		httpResp, err = c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
	}
	defer httpResp.Body.Close()

	// Read response
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check status code
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	// Parse response
	var resp GenerateContentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// Check for API errors
	if resp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s (code: %d)", resp.Error.Message, resp.Error.Code)
	}

	return &resp, nil
}

// convertResponse converts Gemini response to agent format.
func (c *Client) convertResponse(resp *GenerateContentResponse) *llmtypes.LLMResponse {
	llmResp := &llmtypes.LLMResponse{
		Usage: llmtypes.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
			CostUSD:      c.calculateCost(resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount),
		},
		Metadata: map[string]interface{}{
			"provider": "gemini",
			"model":    c.model,
		},
	}

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		llmResp.StopReason = mapFinishReason(candidate.FinishReason)
		llmResp.Metadata["finish_reason"] = candidate.FinishReason

		// Concatenate text parts
		for _, part := range candidate.Content.Parts {
			llmResp.Content += part.Text
		}
	}

	return llmResp
}

// mapFinishReason maps Gemini finishReason to the provider-neutral stop_reason.
func mapFinishReason(finishReason string) string {
	switch finishReason {
	case "STOP":
		return "end_turn"
	case "MAX_TOKENS":
		return "max_tokens"
	case "SAFETY", "RECITATION":
		return "content_filter"
	default:
		return finishReason
	}
}

// calculateCost estimates the cost in USD based on token usage.
// Pricing as of 2025-06 (per million tokens):
//
// Gemini 2.5 Pro:
// - Input: $1.25-$2.50
// - Output: $10.00-$15.00
//
// Gemini 2.5 Flash:
// - Input: $0.30
// - Output: $2.50
//
// Gemini 2.5 Flash-Lite:
// - Input: ~$0.30
// - Output: ~$2.50
//
// Note: Prices may vary. Check https://ai.google.dev/pricing for current rates.
func (c *Client) calculateCost(inputTokens, outputTokens int) float64 {
	var inputCostPerM, outputCostPerM float64

	switch c.model {
	case "gemini-2.5-pro":
		// Use mid-range pricing
		inputCostPerM = 1.875
		outputCostPerM = 12.50

	case "gemini-2.5-flash":
		inputCostPerM = 0.30
		outputCostPerM = 2.50

	case "gemini-2.5-flash-lite":
		inputCostPerM = 0.30
		outputCostPerM = 2.50

	default:
		// Default to Flash pricing for unknown models
		inputCostPerM = 0.30
		outputCostPerM = 2.50
	}

	inputCost := float64(inputTokens) * inputCostPerM / 1_000_000
	outputCost := float64(outputTokens) * outputCostPerM / 1_000_000
	return inputCost + outputCost
}

// ChatStream implements token-by-token streaming for Google Gemini.
// This method uses Gemini's streamGenerateContent endpoint to stream tokens
// as they are generated. The tokenCallback is called for each token received.
func (c *Client) ChatStream(ctx context.Context, messages []llmtypes.Message,
	opts *llmtypes.ChatOptions, tokenCallback llmtypes.TokenCallback) (*llmtypes.LLMResponse, error) {

	// 1. Build request body (reuse non-streaming request assembly)
	req := c.buildRequest(messages, opts)

	// 2. Build streaming URL (uses :streamGenerateContent instead of :generateContent)
	apiURL := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:streamGenerateContent?key=%s&alt=sse",
		c.model,
		c.apiKey,
	)

	// Marshal request
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Create HTTP request
	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	httpReq.Header.Set("Content-Type", "application/json")

	// Send request with rate limiting if enabled
	var httpResp *http.Response
	if c.rateLimiter != nil {
		result, err := c.rateLimiter.Do(ctx, func(ctx context.Context) (interface{}, error) {
			return c.httpClient.Do(httpReq)
		})
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		httpResp = result.(*http.Response)
	} else {
		var err error
		httpResp, err = c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
	}
	defer httpResp.Body.Close()

	// Check status code before streaming
	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	// 3. Process Server-Sent Events stream
	var contentBuffer strings.Builder
	usage := llmtypes.Usage{}
	var finishReason string
	tokenCount := 0

	scanner := bufio.NewScanner(httpResp.Body)
	for scanner.Scan() {
		line := scanner.Text()

		// SSE format: "data: <json>"
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		// Extract JSON data after "data: "
		jsonData := strings.TrimPrefix(line, "data: ")

		// Parse streaming chunk
		var chunk GenerateContentResponse
		if err := json.Unmarshal([]byte(jsonData), &chunk); err != nil {
			// Skip malformed chunks but continue processing
			continue
		}

		// Check for API errors
		if chunk.Error != nil {
			return nil, fmt.Errorf("Gemini API error: %s (code: %d)", chunk.Error.Message, chunk.Error.Code)
		}

		if len(chunk.Candidates) > 0 {
			candidate := chunk.Candidates[0]

			// Extract text content from parts
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					token := part.Text
					contentBuffer.WriteString(token)
					tokenCount++

					// Call token callback (non-blocking)
					if tokenCallback != nil {
						tokenCallback(token)
					}
				}
			}

			// Extract finish reason
			if candidate.FinishReason != "" {
				finishReason = candidate.FinishReason
			}
		}

		// Extract usage metadata
		if chunk.UsageMetadata.TotalTokenCount > 0 {
			usage.InputTokens = chunk.UsageMetadata.PromptTokenCount
			usage.OutputTokens = chunk.UsageMetadata.CandidatesTokenCount
			usage.TotalTokens = chunk.UsageMetadata.TotalTokenCount
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading stream: %w", err)
	}

	// 4. Build final response
	if usage.TotalTokens == 0 {
		usage.OutputTokens = tokenCount
		usage.TotalTokens = tokenCount
	}
	usage.CostUSD = c.calculateCost(usage.InputTokens, usage.OutputTokens)

	// Record token usage for rate limiter metrics
	if c.rateLimiter != nil {
		totalTokens := int64(usage.InputTokens + usage.OutputTokens)
		c.rateLimiter.RecordTokenUsage(totalTokens)
	}

	return &llmtypes.LLMResponse{
		Content:    contentBuffer.String(),
		StopReason: mapFinishReason(finishReason),
		Usage:      usage,
		Metadata: map[string]interface{}{
			"provider":  "gemini",
			"model":     c.model,
			"streaming": true,
		},
	}, nil
}

// Ensure Client implements LLMProvider interface.
var _ llmtypes.LLMProvider = (*Client)(nil)

// Ensure Client implements StreamingLLMProvider interface.
var _ llmtypes.StreamingLLMProvider = (*Client)(nil)
