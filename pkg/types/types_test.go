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

package types

import (
	"context"
	"testing"
)

type chatOnlyProvider struct{}

func (p *chatOnlyProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*LLMResponse, error) {
	return &LLMResponse{Content: "ok"}, nil
}
func (p *chatOnlyProvider) Name() string  { return "chat-only" }
func (p *chatOnlyProvider) Model() string { return "test" }

type streamingProvider struct {
	chatOnlyProvider
}

func (p *streamingProvider) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions, tokenCallback TokenCallback) (*LLMResponse, error) {
	tokenCallback("ok")
	return &LLMResponse{Content: "ok"}, nil
}

func TestSupportsStreaming(t *testing.T) {
	tests := []struct {
		name     string
		provider LLMProvider
		want     bool
	}{
		{
			name:     "chat-only provider",
			provider: &chatOnlyProvider{},
			want:     false,
		},
		{
			name:     "streaming provider",
			provider: &streamingProvider{},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SupportsStreaming(tt.provider); got != tt.want {
				t.Errorf("SupportsStreaming() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultChatOptions(t *testing.T) {
	opts := DefaultChatOptions()
	if opts.Temperature >= 0 {
		t.Errorf("Temperature = %v, want a sentinel below zero", opts.Temperature)
	}
	if opts.MaxTokens != 0 {
		t.Errorf("MaxTokens = %d, want 0 (provider default)", opts.MaxTokens)
	}
	if opts.Seed != 0 {
		t.Errorf("Seed = %d, want 0 (unseeded)", opts.Seed)
	}
}
