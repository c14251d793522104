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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/arena/pkg/llm"
	llmtypes "github.com/teradata-labs/arena/pkg/llm/types"
	"github.com/teradata-labs/arena/pkg/observability"
)

func TestCreateProvider_Mock(t *testing.T) {
	f := NewProviderFactory(FactoryConfig{Seed: 123})

	provider, err := f.CreateProvider("mock", "")
	require.NoError(t, err)
	assert.Equal(t, "mock", provider.Name())
	assert.Equal(t, "mock-v1", provider.Model())

	custom, err := f.CreateProvider("mock", "mock-debater")
	require.NoError(t, err)
	assert.Equal(t, "mock-debater", custom.Model())
}

func TestCreateProvider_DefaultProvider(t *testing.T) {
	f := NewProviderFactory(FactoryConfig{
		DefaultProvider: "mock",
		DefaultModel:    "mock-v1",
	})

	provider, err := f.CreateProvider("", "")
	require.NoError(t, err)
	assert.Equal(t, "mock", provider.Name())
}

func TestCreateProvider_Unsupported(t *testing.T) {
	f := NewProviderFactory(FactoryConfig{})

	_, err := f.CreateProvider("carrier-pigeon", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider: carrier-pigeon")
}

func TestCreateProvider_MissingKeys(t *testing.T) {
	tests := []struct {
		provider string
		envVar   string
		wantErr  string
	}{
		{"openai", "OPENAI_API_KEY", "openai API key not configured"},
		{"deepseek", "DEEPSEEK_API_KEY", "deepseek API key not configured"},
		{"gemini", "GEMINI_API_KEY", "gemini API key not configured"},
		{"anthropic", "ANTHROPIC_API_KEY", "anthropic API key not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			t.Setenv(tt.envVar, "")
			f := NewProviderFactory(FactoryConfig{})

			_, err := f.CreateProvider(tt.provider, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), tt.envVar)
		})
	}
}

func TestCreateProvider_ConfiguredKeys(t *testing.T) {
	f := NewProviderFactory(FactoryConfig{
		OpenAIAPIKey:   "sk-test-openai",
		DeepSeekAPIKey: "sk-test-deepseek",
	})

	openaiProvider, err := f.CreateProvider("openai", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", openaiProvider.Name())
	assert.Equal(t, "gpt-4o", openaiProvider.Model())

	deepseekProvider, err := f.CreateProvider("deepseek", "")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", deepseekProvider.Name())
	assert.Equal(t, "deepseek-chat", deepseekProvider.Model())
}

func TestCreateProvider_PoolReuse(t *testing.T) {
	f := NewProviderFactory(FactoryConfig{
		OpenAIAPIKey: "sk-test-openai",
		Seed:         42,
	})

	first, err := f.CreateProvider("mock", "mock-v1")
	require.NoError(t, err)
	second, err := f.CreateProvider("mock", "mock-v1")
	require.NoError(t, err)
	assert.Same(t, first, second, "same triple must return the pooled client")

	other, err := f.CreateProvider("mock", "mock-debater")
	require.NoError(t, err)
	assert.NotSame(t, first, other, "a different model gets its own client")

	openaiFirst, err := f.CreateProvider("openai", "gpt-4o")
	require.NoError(t, err)
	openaiSecond, err := f.CreateProvider("openai", "gpt-4o")
	require.NoError(t, err)
	assert.Same(t, openaiFirst, openaiSecond)
}

func TestCreateProvider_TracerWrapsProviders(t *testing.T) {
	tracer := observability.NewMockTracer()
	f := NewProviderFactory(FactoryConfig{Seed: 7, Tracer: tracer})

	provider, err := f.CreateProvider("mock", "")
	require.NoError(t, err)
	_, instrumented := provider.(*llm.InstrumentedProvider)
	require.True(t, instrumented, "a configured tracer must wrap the provider")
	assert.Equal(t, "mock", provider.Name())
	assert.Equal(t, "mock-v1", provider.Model())

	_, err = provider.Chat(context.Background(), []llmtypes.Message{
		{Role: "user", Content: "请就远程办公是否应成为默认方式发言"},
	}, nil)
	require.NoError(t, err)

	span := tracer.GetSpanByName(observability.SpanLLMChat)
	require.NotNil(t, span, "each call must produce a span")
	assert.Equal(t, "mock", span.Attributes[observability.AttrLLMProvider])
	assert.Len(t, tracer.GetSpans(), 1)

	bare, err := NewProviderFactory(FactoryConfig{Seed: 7}).CreateProvider("mock", "")
	require.NoError(t, err)
	_, instrumented = bare.(*llm.InstrumentedProvider)
	assert.False(t, instrumented, "no tracer, no wrapper")
}

func TestIsProviderAvailable(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	f := NewProviderFactory(FactoryConfig{})
	assert.True(t, f.IsProviderAvailable("mock"))
	assert.False(t, f.IsProviderAvailable("openai"))
	assert.False(t, f.IsProviderAvailable("carrier-pigeon"))

	configured := NewProviderFactory(FactoryConfig{OpenAIAPIKey: "sk-test"})
	assert.True(t, configured.IsProviderAvailable("openai"))
}
