// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package types contains shared types used across the arena framework.
// This package breaks import cycles by providing common types that both
// pkg/agent and pkg/llm packages depend on.
package types

import (
	"context"
	"time"
)

// ============================================================================
// LLM Types
// ============================================================================

// Message represents a single message in a conversation with an LLM.
type Message struct {
	// ID is the unique message identifier (from database)
	ID string

	// Role is the message sender (system, user, assistant)
	Role string

	// Content is the message text
	Content string

	// AgentID identifies which agent created this message
	// Optional - may be empty for messages created outside an agent
	AgentID string

	// Timestamp when the message was created
	Timestamp time.Time

	// TokenCount for cost tracking
	TokenCount int

	// CostUSD for cost tracking
	CostUSD float64
}

// ChatOptions carries per-call generation parameters.
// A nil *ChatOptions means "use the provider's configured defaults".
type ChatOptions struct {
	// Temperature overrides the provider's sampling temperature when >= 0.
	// Use a negative value to keep the provider default.
	Temperature float64

	// MaxTokens overrides the provider's completion budget when > 0.
	MaxTokens int

	// Seed requests deterministic sampling where the backend supports it.
	// Zero means "no seed requested".
	Seed int64
}

// DefaultChatOptions returns options that defer everything to the provider.
func DefaultChatOptions() *ChatOptions {
	return &ChatOptions{Temperature: -1}
}

// Usage tracks LLM token usage and costs.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// LLMResponse represents a response from the LLM.
type LLMResponse struct {
	// Content is the text response
	Content string

	// StopReason indicates why the LLM stopped
	StopReason string

	// Usage tracks token usage
	Usage Usage

	// Metadata contains provider-specific metadata
	Metadata map[string]interface{}

	// Thinking contains the model's internal reasoning process
	// (for models that support extended thinking)
	Thinking string
}

// LLMProvider defines the interface for LLM providers.
// This allows pluggable LLM backends (OpenAI, DeepSeek, Gemini, Anthropic,
// Bedrock, mock).
//
// Note: The Chat method accepts context.Context (not agent.Context) to avoid
// import cycles. Agent-specific context (debate state, tracer, progress)
// should be handled at the agent layer, not in LLM providers.
type LLMProvider interface {
	// Chat sends a conversation to the LLM and returns the response.
	// opts may be nil; providers then use their configured defaults.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*LLMResponse, error)

	// Name returns the provider name
	Name() string

	// Model returns the model identifier
	Model() string
}

// TokenCallback is called for each token/chunk during streaming.
// Implementations should be lightweight and non-blocking.
type TokenCallback func(token string)

// StreamingLLMProvider extends LLMProvider with token streaming support.
// Providers implement this interface if they support real-time token streaming.
// Use the SupportsStreaming helper to check if a provider implements this interface.
type StreamingLLMProvider interface {
	LLMProvider

	// ChatStream streams tokens as they're generated from the LLM.
	// Returns the complete LLMResponse after the stream finishes.
	// Calls tokenCallback for each token/chunk received from the LLM.
	// The callback is called synchronously and should not block.
	ChatStream(ctx context.Context, messages []Message, opts *ChatOptions,
		tokenCallback TokenCallback) (*LLMResponse, error)
}

// SupportsStreaming checks if a provider supports token streaming.
// Returns true if the provider implements StreamingLLMProvider.
func SupportsStreaming(provider LLMProvider) bool {
	_, ok := provider.(StreamingLLMProvider)
	return ok
}
