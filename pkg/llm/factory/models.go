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

import "sort"

// SupportedProviders lists every provider CreateProvider accepts, sorted.
// Validation layers use it for membership checks and typo suggestions.
var SupportedProviders = []string{
	"anthropic",
	"bedrock",
	"deepseek",
	"gemini",
	"mock",
	"openai",
}

// IsSupportedProvider reports whether name is a known provider.
func IsSupportedProvider(name string) bool {
	i := sort.SearchStrings(SupportedProviders, name)
	return i < len(SupportedProviders) && SupportedProviders[i] == name
}

// ModelInfo describes a known model for display and availability checks.
type ModelInfo struct {
	ID                 string
	Name               string
	Provider           string
	ContextWindow      int
	CostPer1MInputUSD  float64
	CostPer1MOutputUSD float64
	Available          bool
}

// ModelRegistry holds information about the supported models per provider.
type ModelRegistry struct {
	models map[string][]ModelInfo
}

// NewModelRegistry creates a registry with the well-known models.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		models: map[string][]ModelInfo{
			"openai": {
				{
					ID:                 "gpt-4o",
					Name:               "GPT-4o",
					Provider:           "openai",
					ContextWindow:      128000,
					CostPer1MInputUSD:  2.5,
					CostPer1MOutputUSD: 10.0,
				},
				{
					ID:                 "gpt-4o-mini",
					Name:               "GPT-4o Mini",
					Provider:           "openai",
					ContextWindow:      128000,
					CostPer1MInputUSD:  0.15,
					CostPer1MOutputUSD: 0.6,
				},
			},
			"deepseek": {
				{
					ID:                 "deepseek-chat",
					Name:               "DeepSeek V3",
					Provider:           "deepseek",
					ContextWindow:      64000,
					CostPer1MInputUSD:  0.27,
					CostPer1MOutputUSD: 1.10,
				},
				{
					ID:                 "deepseek-reasoner",
					Name:               "DeepSeek R1",
					Provider:           "deepseek",
					ContextWindow:      64000,
					CostPer1MInputUSD:  0.55,
					CostPer1MOutputUSD: 2.19,
				},
			},
			"gemini": {
				{
					ID:                 "gemini-2.5-flash",
					Name:               "Gemini 2.5 Flash",
					Provider:           "gemini",
					ContextWindow:      1000000,
					CostPer1MInputUSD:  0.30,
					CostPer1MOutputUSD: 2.50,
				},
				{
					ID:                 "gemini-2.5-pro",
					Name:               "Gemini 2.5 Pro",
					Provider:           "gemini",
					ContextWindow:      2000000,
					CostPer1MInputUSD:  1.875,
					CostPer1MOutputUSD: 12.50,
				},
			},
			"anthropic": {
				{
					ID:                 "claude-sonnet-4-5-20250929",
					Name:               "Claude Sonnet 4.5",
					Provider:           "anthropic",
					ContextWindow:      200000,
					CostPer1MInputUSD:  3.0,
					CostPer1MOutputUSD: 15.0,
				},
				{
					ID:                 "claude-haiku-4-5-20251001",
					Name:               "Claude Haiku 4.5",
					Provider:           "anthropic",
					ContextWindow:      200000,
					CostPer1MInputUSD:  0.8,
					CostPer1MOutputUSD: 4.0,
				},
			},
			"bedrock": {
				{
					ID:                 "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
					Name:               "Claude Sonnet 4.5 (Bedrock)",
					Provider:           "bedrock",
					ContextWindow:      200000,
					CostPer1MInputUSD:  3.0,
					CostPer1MOutputUSD: 15.0,
				},
			},
			"mock": {
				{
					ID:                 "mock-v1",
					Name:               "Deterministic Mock",
					Provider:           "mock",
					ContextWindow:      1000000,
					CostPer1MInputUSD:  0.0,
					CostPer1MOutputUSD: 0.0,
				},
			},
		},
	}
}

// GetModelsForProvider returns all models for a specific provider.
func (r *ModelRegistry) GetModelsForProvider(provider string) []ModelInfo {
	models := r.models[provider]
	if models == nil {
		return nil
	}

	// Return copies to prevent modification
	result := make([]ModelInfo, len(models))
	copy(result, models)
	return result
}

// GetAllModels returns all models from all providers, grouped by the
// sorted provider order.
func (r *ModelRegistry) GetAllModels() []ModelInfo {
	var all []ModelInfo
	for _, provider := range SupportedProviders {
		all = append(all, r.models[provider]...)
	}
	return all
}

// GetAvailableModels returns every known model with Available reflecting
// whether the factory holds working credentials for its provider.
func (r *ModelRegistry) GetAvailableModels(factory *ProviderFactory) []ModelInfo {
	var result []ModelInfo
	for _, provider := range SupportedProviders {
		available := factory.IsProviderAvailable(provider)
		for _, m := range r.models[provider] {
			m.Available = available
			result = append(result, m)
		}
	}
	return result
}
