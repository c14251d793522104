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
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/arena/pkg/llm/openai"
	"github.com/teradata-labs/arena/pkg/types"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string // expected model
	}{
		{
			name: "with defaults",
			config: Config{
				APIKey: "test-key",
			},
			want: "deepseek-chat",
		},
		{
			name: "with reasoner model",
			config: Config{
				APIKey: "test-key",
				Model:  "deepseek-reasoner",
			},
			want: "deepseek-reasoner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)
			assert.NotNil(t, client)
			assert.Equal(t, "deepseek", client.Name())
			assert.Equal(t, tt.want, client.Model())
		})
	}
}

func TestClient_Name(t *testing.T) {
	client := NewClient(Config{APIKey: "test"})
	assert.Equal(t, "deepseek", client.Name())
}

func TestClient_Model(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  string
	}{
		{"default model", "", "deepseek-chat"},
		{"reasoner model", "deepseek-reasoner", "deepseek-reasoner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(Config{
				APIKey: "test",
				Model:  tt.model,
			})
			assert.Equal(t, tt.want, client.Model())
		})
	}
}

func TestClient_Chat_Success(t *testing.T) {
	// Mock HTTP server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify DeepSeek endpoint is being used
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer test-key")

		// Parse request body
		var req openai.ChatCompletionRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)

		assert.Equal(t, "deepseek-chat", req.Model)
		assert.Greater(t, len(req.Messages), 0)

		// Send mock response
		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-deepseek-123",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   "deepseek-chat",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatMessage{
						Role:    "assistant",
						Content: "Hello from DeepSeek!",
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.ChatCompletionUsage{
				PromptTokens:     20,
				CompletionTokens: 10,
				TotalTokens:      30,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	// Create client pointed at the mock server
	client := NewClient(Config{
		APIKey:   "test-key",
		Model:    "deepseek-chat",
		Endpoint: server.URL,
	})

	// Test chat
	messages := []types.Message{
		{Role: "user", Content: "Hello"},
	}

	resp, err := client.Chat(context.Background(), messages, nil)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "Hello from DeepSeek!", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 20, resp.Usage.InputTokens)
	assert.Equal(t, 10, resp.Usage.OutputTokens)
	assert.Greater(t, resp.Usage.CostUSD, 0.0)

	// Verify DeepSeek provider metadata
	assert.Equal(t, "deepseek", resp.Metadata["provider"])
}

func TestClient_Chat_OptionsForwarded(t *testing.T) {
	var gotTemp float64
	var gotSeed int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTemp = req.Temperature
		gotSeed = req.Seed

		resp := openai.ChatCompletionResponse{
			Model: "deepseek-chat",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatMessage{Role: "assistant", Content: "ok"}, FinishReason: "stop"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", Endpoint: server.URL})

	_, err := client.Chat(context.Background(),
		[]types.Message{{Role: "user", Content: "Hello"}},
		&types.ChatOptions{Temperature: 0.3, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 0.3, gotTemp)
	assert.Equal(t, int64(42), gotSeed)
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
			name:         "deepseek-chat",
			model:        "deepseek-chat",
			inputTokens:  1000,
			outputTokens: 500,
			wantMin:      0.0008, // (1000 * 0.27 + 500 * 1.10) / 1M = 0.00082
			wantMax:      0.0009,
		},
		{
			name:         "deepseek-reasoner",
			model:        "deepseek-reasoner",
			inputTokens:  1000,
			outputTokens: 500,
			wantMin:      0.0016, // (1000 * 0.55 + 500 * 2.19) / 1M = 0.001645
			wantMax:      0.0017,
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

func TestClient_ChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		chunks := []openai.ChatCompletionStreamChunk{
			{Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatMessageDelta{Content: "你好"}}}},
			{Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatMessageDelta{Content: "！"}, FinishReason: "stop"}}},
			{Usage: &openai.ChatCompletionUsage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7}},
		}
		for _, chunk := range chunks {
			data, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", Endpoint: server.URL})

	var tokens []string
	resp, err := client.ChatStream(context.Background(),
		[]types.Message{{Role: "user", Content: "打个招呼"}}, nil,
		func(token string) { tokens = append(tokens, token) })

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, []string{"你好", "！"}, tokens)
	assert.Equal(t, "你好！", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, "deepseek", resp.Metadata["provider"])
	assert.Greater(t, resp.Usage.CostUSD, 0.0)
}
