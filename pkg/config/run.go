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
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/teradata-labs/arena/pkg/trace"
)

// Validation errors raised at ingress, before any session is created.
var (
	ErrInvalidTopic    = errors.New("invalid topic")
	ErrInvalidRounds   = errors.New("invalid rounds")
	ErrUnknownProvider = errors.New("unknown provider")
)

// Request defaults and limits.
const (
	DefaultProvider    = "deepseek"
	DefaultModel       = "deepseek-chat"
	DefaultTemperature = 0.7
	DefaultRounds      = 3

	MinRounds     = 1
	MaxRounds     = 10
	MaxTopicRunes = 500
)

// knownProviders lists the providers the factory can construct, with
// each provider's default model. The factory owns the authoritative
// fallback; the copy here lets a resolved spec record concrete names.
var knownProviders = map[string]string{
	"anthropic": "claude-sonnet-4-5-20250929",
	"bedrock":   "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
	"deepseek":  "deepseek-chat",
	"gemini":    "gemini-2.5-flash",
	"mock":      "mock-v1",
	"openai":    "gpt-4o",
}

// KnownProviders lists the supported provider names in sorted order.
func KnownProviders() []string {
	return []string{"anthropic", "bedrock", "deepseek", "gemini", "mock", "openai"}
}

// NormalizeProvider lowercases a provider name and resolves aliases.
// "claude" is accepted for the anthropic provider.
func NormalizeProvider(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "claude" {
		return "anthropic"
	}
	return normalized
}

// ValidateProvider rejects names outside the supported set, suggesting
// the closest known provider when the input resembles one.
func ValidateProvider(name string) error {
	normalized := NormalizeProvider(name)
	if _, ok := knownProviders[normalized]; ok {
		return nil
	}
	if s := suggest(normalized, KnownProviders()); s != "" {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownProvider, name, s)
	}
	return fmt.Errorf("%w: %q (valid providers: %s)", ErrUnknownProvider, name, strings.Join(KnownProviders(), ", "))
}

// DefaultModelFor returns the provider's default model, empty for
// unknown providers.
func DefaultModelFor(provider string) string {
	return knownProviders[NormalizeProvider(provider)]
}

// SideOverride selects a distinct provider and model for one side.
type SideOverride struct {
	Provider string `yaml:"provider" json:"provider,omitempty"`
	Model    string `yaml:"model" json:"model,omitempty"`
}

// RunRequest carries the raw parameters of one debate session as the
// caller supplied them. Nil Temperature and Seed mean "not given", so
// preset values can fill them.
type RunRequest struct {
	Topic       string        `yaml:"topic" json:"topic"`
	Rounds      int           `yaml:"rounds" json:"rounds"`
	Provider    string        `yaml:"provider" json:"provider"`
	Model       string        `yaml:"model" json:"model"`
	Temperature *float64      `yaml:"temperature" json:"temperature,omitempty"`
	Seed        *int64        `yaml:"seed" json:"seed,omitempty"`
	Preset      string        `yaml:"preset" json:"preset,omitempty"`
	Pro         *SideOverride `yaml:"pro" json:"pro,omitempty"`
	Con         *SideOverride `yaml:"con" json:"con,omitempty"`
}

// SideSpec is one side's resolved provider and model.
type SideSpec struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// RunSpec is the fully resolved configuration recorded on the session:
// defaults applied, preset folded in, every side bound to a concrete
// provider and model.
type RunSpec struct {
	Topic       string   `json:"topic"`
	Rounds      int      `json:"rounds"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature float64  `json:"temperature"`
	Seed        int64    `json:"seed"`
	Preset      string   `json:"preset,omitempty"`
	Pro         SideSpec `json:"pro"`
	Con         SideSpec `json:"con"`
}

// Resolve validates the request and folds in defaults and the preset.
// Explicit temperature and seed win over preset values; the preset's
// MaxRounds caps the requested rounds.
func (r RunRequest) Resolve() (RunSpec, error) {
	topic := strings.TrimSpace(r.Topic)
	topicLen := utf8.RuneCountInString(topic)
	if topicLen < 1 || topicLen > MaxTopicRunes {
		return RunSpec{}, fmt.Errorf("%w: topic must be 1 to %d characters, got %d", ErrInvalidTopic, MaxTopicRunes, topicLen)
	}

	rounds := r.Rounds
	if rounds == 0 {
		rounds = DefaultRounds
	}
	if rounds < MinRounds || rounds > MaxRounds {
		return RunSpec{}, fmt.Errorf("%w: rounds must be %d to %d, got %d", ErrInvalidRounds, MinRounds, MaxRounds, rounds)
	}

	provider := NormalizeProvider(r.Provider)
	if provider == "" {
		provider = DefaultProvider
	}
	if err := ValidateProvider(provider); err != nil {
		return RunSpec{}, err
	}

	model := r.Model
	if model == "" {
		model = DefaultModelFor(provider)
	}

	temperature := DefaultTemperature
	var seed int64
	if r.Preset != "" {
		preset, err := PresetByName(r.Preset)
		if err != nil {
			return RunSpec{}, err
		}
		temperature = preset.Temperature
		seed = preset.Seed
		if rounds > preset.MaxRounds {
			rounds = preset.MaxRounds
		}
	}
	if r.Temperature != nil {
		temperature = *r.Temperature
	}
	if r.Seed != nil {
		seed = *r.Seed
	}

	spec := RunSpec{
		Topic:       topic,
		Rounds:      rounds,
		Provider:    provider,
		Model:       model,
		Temperature: temperature,
		Seed:        seed,
		Preset:      r.Preset,
		Pro:         SideSpec{Provider: provider, Model: model},
		Con:         SideSpec{Provider: provider, Model: model},
	}

	var err error
	if spec.Pro, err = resolveSide(r.Pro, spec.Pro); err != nil {
		return RunSpec{}, fmt.Errorf("pro: %w", err)
	}
	if spec.Con, err = resolveSide(r.Con, spec.Con); err != nil {
		return RunSpec{}, fmt.Errorf("con: %w", err)
	}

	return spec, nil
}

// resolveSide applies one side's override on top of the session-wide
// provider and model.
func resolveSide(override *SideOverride, base SideSpec) (SideSpec, error) {
	if override == nil {
		return base, nil
	}
	side := base
	if override.Provider != "" {
		if err := ValidateProvider(override.Provider); err != nil {
			return SideSpec{}, err
		}
		side.Provider = NormalizeProvider(override.Provider)
		side.Model = DefaultModelFor(side.Provider)
	}
	if override.Model != "" {
		side.Model = override.Model
	}
	return side, nil
}

// TraceRunConfig renders the spec in the form traces record.
func (s RunSpec) TraceRunConfig() trace.RunConfig {
	return trace.RunConfig{
		Provider:    s.Provider,
		Model:       s.Model,
		Temperature: s.Temperature,
		Seed:        s.Seed,
		MaxRounds:   s.Rounds,
		Preset:      s.Preset,
	}
}
