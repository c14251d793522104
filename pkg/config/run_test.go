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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "远程办公应当成为默认工作方式"

func TestResolve_Defaults(t *testing.T) {
	spec, err := RunRequest{Topic: testTopic}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, testTopic, spec.Topic)
	assert.Equal(t, 3, spec.Rounds)
	assert.Equal(t, "deepseek", spec.Provider)
	assert.Equal(t, "deepseek-chat", spec.Model)
	assert.Equal(t, 0.7, spec.Temperature)
	assert.Zero(t, spec.Seed)
	assert.Empty(t, spec.Preset)
	assert.Equal(t, SideSpec{Provider: "deepseek", Model: "deepseek-chat"}, spec.Pro)
	assert.Equal(t, SideSpec{Provider: "deepseek", Model: "deepseek-chat"}, spec.Con)
}

func TestResolve_PresetCapsRounds(t *testing.T) {
	spec, err := RunRequest{Topic: testTopic, Rounds: 8, Preset: "quality"}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, 5, spec.Rounds)
	assert.Equal(t, 0.85, spec.Temperature)
	assert.EqualValues(t, 42, spec.Seed)
	assert.Equal(t, "quality", spec.Preset)
}

func TestResolve_PresetKeepsLowerRounds(t *testing.T) {
	spec, err := RunRequest{Topic: testTopic, Rounds: 2, Preset: "basic"}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, 2, spec.Rounds)
	assert.Equal(t, 0.6, spec.Temperature)
}

func TestResolve_ExplicitOverridesPreset(t *testing.T) {
	temperature := 0.95
	seed := int64(7)
	spec, err := RunRequest{
		Topic:       testTopic,
		Preset:      "budget",
		Temperature: &temperature,
		Seed:        &seed,
	}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, 0.95, spec.Temperature)
	assert.EqualValues(t, 7, spec.Seed)
	// Default 3 rounds still capped by the budget preset.
	assert.Equal(t, 2, spec.Rounds)
}

func TestResolve_UnknownPreset(t *testing.T) {
	_, err := RunRequest{Topic: testTopic, Preset: "qualty"}.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestResolve_TopicValidation(t *testing.T) {
	tests := []struct {
		name  string
		topic string
	}{
		{name: "empty", topic: ""},
		{name: "whitespace only", topic: "   \n\t "},
		{name: "too long", topic: strings.Repeat("题", MaxTopicRunes+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunRequest{Topic: tt.topic}.Resolve()
			assert.ErrorIs(t, err, ErrInvalidTopic)
		})
	}

	// Exactly at the limit is accepted; the limit counts runes, not bytes.
	spec, err := RunRequest{Topic: strings.Repeat("题", MaxTopicRunes)}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, MaxTopicRunes, len([]rune(spec.Topic)))
}

func TestResolve_RoundsValidation(t *testing.T) {
	_, err := RunRequest{Topic: testTopic, Rounds: 11}.Resolve()
	assert.ErrorIs(t, err, ErrInvalidRounds)

	_, err = RunRequest{Topic: testTopic, Rounds: -1}.Resolve()
	assert.ErrorIs(t, err, ErrInvalidRounds)

	spec, err := RunRequest{Topic: testTopic, Rounds: 10}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 10, spec.Rounds)
}

func TestResolve_ProviderSuggestion(t *testing.T) {
	_, err := RunRequest{Topic: testTopic, Provider: "deepsek"}.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), `did you mean "deepseek"?`)
}

func TestResolve_ClaudeAlias(t *testing.T) {
	spec, err := RunRequest{Topic: testTopic, Provider: "Claude"}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", spec.Provider)
	assert.Equal(t, "claude-sonnet-4-5-20250929", spec.Model)
}

func TestResolve_SideOverrides(t *testing.T) {
	spec, err := RunRequest{
		Topic: testTopic,
		Pro:   &SideOverride{Provider: "openai"},
		Con:   &SideOverride{Model: "deepseek-reasoner"},
	}.Resolve()
	require.NoError(t, err)

	// The session-wide provider stays the default.
	assert.Equal(t, "deepseek", spec.Provider)
	// Provider-only override picks up that provider's default model.
	assert.Equal(t, SideSpec{Provider: "openai", Model: "gpt-4o"}, spec.Pro)
	// Model-only override keeps the session provider.
	assert.Equal(t, SideSpec{Provider: "deepseek", Model: "deepseek-reasoner"}, spec.Con)
}

func TestResolve_SideOverrideProviderAndModel(t *testing.T) {
	spec, err := RunRequest{
		Topic: testTopic,
		Pro:   &SideOverride{Provider: "anthropic", Model: "claude-haiku-4-5"},
	}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, SideSpec{Provider: "anthropic", Model: "claude-haiku-4-5"}, spec.Pro)
}

func TestResolve_SideOverrideUnknownProvider(t *testing.T) {
	_, err := RunRequest{
		Topic: testTopic,
		Pro:   &SideOverride{Provider: "nope"},
	}.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "pro:")
	assert.Contains(t, err.Error(), "valid providers:")
}

func TestNormalizeProvider(t *testing.T) {
	assert.Equal(t, "anthropic", NormalizeProvider("claude"))
	assert.Equal(t, "anthropic", NormalizeProvider(" Claude "))
	assert.Equal(t, "openai", NormalizeProvider("OpenAI"))
	assert.Equal(t, "", NormalizeProvider(""))
}

func TestDefaultModelFor(t *testing.T) {
	assert.Equal(t, "gpt-4o", DefaultModelFor("openai"))
	assert.Equal(t, "claude-sonnet-4-5-20250929", DefaultModelFor("claude"))
	assert.Empty(t, DefaultModelFor("nope"))
}

func TestTraceRunConfig(t *testing.T) {
	spec, err := RunRequest{Topic: testTopic, Rounds: 8, Preset: "quality"}.Resolve()
	require.NoError(t, err)

	rc := spec.TraceRunConfig()
	assert.Equal(t, "deepseek", rc.Provider)
	assert.Equal(t, "deepseek-chat", rc.Model)
	assert.Equal(t, 0.85, rc.Temperature)
	assert.EqualValues(t, 42, rc.Seed)
	assert.Equal(t, 5, rc.MaxRounds)
	assert.Equal(t, "quality", rc.Preset)
}
