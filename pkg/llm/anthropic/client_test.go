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
	"net/http"
	"net/http/httptest"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/arena/pkg/types"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name            string
		config          Config
		wantModel       string
		wantMaxTokens   int64
		wantTemperature float64
	}{
		{
			name:            "with defaults",
			config:          Config{APIKey: "test-key"},
			wantModel:       "claude-sonnet-4-5-20250929",
			wantMaxTokens:   4096,
			wantTemperature: 1.0,
		},
		{
			name: "with custom config",
			config: Config{
				APIKey:      "test-key",
				Model:       "claude-haiku-4-5",
				MaxTokens:   1024,
				Temperature: 0.5,
			},
			wantModel:       "claude-haiku-4-5",
			wantMaxTokens:   1024,
			wantTemperature: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)
			require.NotNil(t, client)
			assert.Equal(t, tt.wantModel, client.model)
			assert.Equal(t, tt.wantMaxTokens, client.maxTokens)
			assert.Equal(t, tt.wantTemperature, client.temperature)
		})
	}
}

func TestClient_Name(t *testing.T) {
	client := NewClient(Config{APIKey: "test"})
	assert.Equal(t, "anthropic", client.Name())
}

func TestClient_Model(t *testing.T) {
	client := NewClient(Config{APIKey: "test", Model: "claude-opus-4-1"})
	assert.Equal(t, "claude-opus-4-1", client.Model())
}

func TestConvertMessages(t *testing.T) {
	messages := []types.Message{
		{Role: "system", Content: "You are a debate judge"},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there!"},
		{Role: "user", Content: "Score the round"},
	}

	systemPrompt, apiMessages := convertMessages(messages)

	assert.Equal(t, "You are a debate judge", systemPrompt)
	require.Len(t, apiMessages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, apiMessages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, apiMessages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, apiMessages[2].Role)
}

func TestConvertMessages_MultipleSystemPrompts(t *testing.T) {
	messages := []types.Message{
		{Role: "system", Content: "First instruction"},
		{Role: "system", Content: "Second instruction"},
		{Role: "user", Content: "Go"},
	}

	systemPrompt, apiMessages := convertMessages(messages)

	assert.Equal(t, "First instruction\n\nSecond instruction", systemPrompt)
	require.Len(t, apiMessages, 1)
}

func TestConvertMessages_UnknownRoleDegradesToUser(t *testing.T) {
	messages := []types.Message{
		{Role: "observer", Content: "Note the fallacy"},
	}

	_, apiMessages := convertMessages(messages)

	require.Len(t, apiMessages, 1)
	assert.Equal(t, anthropic.MessageParamRoleUser, apiMessages[0].Role)
}

func TestClient_BuildParams(t *testing.T) {
	client := NewClient(Config{APIKey: "test"})

	t.Run("nil options use client defaults", func(t *testing.T) {
		params, err := client.buildParams([]types.Message{{Role: "user", Content: "hi"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, anthropic.Model("claude-sonnet-4-5-20250929"), params.Model)
		assert.Equal(t, int64(4096), params.MaxTokens)
		assert.Equal(t, 1.0, params.Temperature.Value)
	})

	t.Run("options override defaults", func(t *testing.T) {
		opts := &types.ChatOptions{Temperature: 0.2, MaxTokens: 512}
		params, err := client.buildParams([]types.Message{{Role: "user", Content: "hi"}}, opts)
		require.NoError(t, err)
		assert.Equal(t, int64(512), params.MaxTokens)
		assert.Equal(t, 0.2, params.Temperature.Value)
	})

	t.Run("empty messages rejected", func(t *testing.T) {
		_, err := client.buildParams(nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no valid messages")
	})
}

func TestClient_CalculateCost(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		wantMin      float64
		wantMax      float64
	}{
		{
			name:         "sonnet",
			model:        "claude-sonnet-4-5-20250929",
			inputTokens:  1000,
			outputTokens: 500,
			wantMin:      0.0104, // (1000 * 3 + 500 * 15) / 1M = 0.0105
			wantMax:      0.0106,
		},
		{
			name:         "haiku",
			model:        "claude-haiku-4-5",
			inputTokens:  1000,
			outputTokens: 500,
			wantMin:      0.0027, // (1000 * 0.8 + 500 * 4) / 1M = 0.0028
			wantMax:      0.0029,
		},
		{
			name:         "opus",
			model:        "claude-opus-4-1",
			inputTokens:  1000,
			outputTokens: 500,
			wantMin:      0.0524, // (1000 * 15 + 500 * 75) / 1M = 0.0525
			wantMax:      0.0526,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(Config{APIKey: "test", Model: tt.model})
			got := client.calculateCost(tt.inputTokens, tt.outputTokens)
			assert.GreaterOrEqual(t, got, tt.wantMin)
			assert.LessOrEqual(t, got, tt.wantMax)
		})
	}
}

func TestClient_Chat_Success(t *testing.T) {
	// Mock server speaking the Messages API wire format
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.URL.Path, "/v1/messages")
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "text", "text": "The motion carries."}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 12, "output_tokens": 4}
		}`)
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	resp, err := client.Chat(context.Background(),
		[]types.Message{{Role: "user", Content: "Deliver the verdict"}}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "The motion carries.", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 4, resp.Usage.OutputTokens)
	assert.Equal(t, 16, resp.Usage.TotalTokens)
	assert.Greater(t, resp.Usage.CostUSD, 0.0)
	assert.Equal(t, "msg_01", resp.Metadata["message_id"])
}

func TestDefaultAnthropicRateLimiterConfig(t *testing.T) {
	cfg := DefaultAnthropicRateLimiterConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 0.7, cfg.RequestsPerSecond)
	assert.Equal(t, int64(80000), cfg.TokensPerMinute)
	assert.Equal(t, 3, cfg.BurstCapacity)
	assert.Equal(t, 5, cfg.MaxRetries)
}
