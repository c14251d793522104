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
package dialectic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/agent"
	"github.com/teradata-labs/arena/pkg/types"
)

// Fallacy detection runs near-deterministic regardless of the agent
// temperature so labels stay stable across reruns.
const fallacyTemperature = 0.3

// fallbackSynthesis stands in when the model returns no usable
// synthesis for a round.
const fallbackSynthesis = "在正反张力中，需要在目标与边界之间取得动态平衡。"

// SynthesisResult is the observer's reconciliation of one round.
type SynthesisResult struct {
	Synthesis   string   `json:"synthesis"`
	KeyTensions []string `json:"key_tensions"`
	Confidence  float64  `json:"confidence"`
}

// Observer synthesizes each thesis/antithesis pair into the next
// thesis and flags logical fallacies in both arguments. It is not a
// debating agent: it never takes a turn of its own.
type Observer struct {
	*agent.BaseAgent

	temperature float64
	seed        int64
}

// NewObserver creates the synthesis and fallacy judge of a dialectic
// run.
func NewObserver(cfg AgentConfig) *Observer {
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultObserverTemperature
	}
	o := &Observer{
		BaseAgent:   agent.NewBase("观察者", "dialectic_observer", cfg.Provider, cfg.Logger),
		temperature: temperature,
		seed:        cfg.Seed,
	}
	o.AddGoal("提炼正反观点的张力与共识，生成更高层次的合题")
	o.AddGoal("检测并标注论证中的常见逻辑谬误")
	return o
}

// Synthesize reconciles a round's thesis and antithesis into a higher
// synthesis. It never fails: provider or parse trouble degrades to
// fallbackSynthesis with lowered confidence.
func (o *Observer) Synthesize(ctx context.Context, thesisText, antithesisText string, round int, history []agent.Exchange) SynthesisResult {
	messages := []types.Message{
		{Role: "system", Content: "你是具有哲学整合能力的观察者，擅长提出合题。"},
		{Role: "user", Content: fmt.Sprintf(synthesisTemplate, thesisText, antithesisText, round, synthesisHistory(history))},
	}
	resp, err := o.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: o.temperature,
		Seed:        o.seed,
	})
	if err != nil {
		o.Logger().Warn("synthesis failed",
			zap.Int("round", round),
			zap.Error(err))
		return SynthesisResult{
			Synthesis:   fallbackSynthesis,
			KeyTensions: []string{},
			Confidence:  0.4,
		}
	}

	parsed, _ := agent.ParseMap(resp.Content, map[string]interface{}{})
	result := SynthesisResult{
		KeyTensions: stringSlice(parsed["key_tensions"]),
		Confidence:  agent.Confidence(parsed),
	}
	if s, ok := parsed["synthesis"].(string); ok {
		result.Synthesis = s
	}
	if result.Synthesis == "" {
		result.Synthesis = fallbackSynthesis
	}
	return result
}

// DetectFallacies labels logical fallacies in both arguments of a
// round. Failures degrade to no findings.
func (o *Observer) DetectFallacies(ctx context.Context, thesisText, antithesisText string) []Fallacy {
	messages := []types.Message{
		{Role: "system", Content: "你是逻辑分析专家，擅长识别论证谬误。"},
		{Role: "user", Content: fmt.Sprintf(fallacyTemplate, thesisText, antithesisText)},
	}
	resp, err := o.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: fallacyTemperature,
		Seed:        o.seed,
	})
	if err != nil {
		o.Logger().Warn("fallacy detection failed", zap.Error(err))
		return []Fallacy{}
	}

	var fallacies []Fallacy
	if err := agent.Decode(resp.Content, &fallacies); err != nil || fallacies == nil {
		return []Fallacy{}
	}
	return fallacies
}

// stringSlice coerces a decoded JSON value into a string list,
// dropping non-string elements.
func stringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

var synthesisTemplate = `你是“观察者/记录员”，请综合正题与反题形成合题。

【正题】
%s

【反题】
%s

【轮次】
第 %d 轮

【历史合题摘要】
%s

请输出 JSON：
` + "```json" + `
{
  "synthesis": "融合正反双方、层次更高的新正题",
  "key_tensions": ["核心张力1","核心张力2"],
  "confidence": 0.7
}
` + "```"

var fallacyTemplate = `请检测以下两段论证中的逻辑谬误（如稻草人、滑坡、诉诸权威等）。

【正题论证】
%s

【反题论证】
%s

对每个谬误输出：
- type: 谬误类型
- quote: 触发谬误的片段（不超过30字）
- explanation: 简要解释（不超过40字）
- severity: "low" | "medium" | "high"
- side: "thesis" 或 "antithesis"

输出示例：
` + "```json" + `
[
  {"type": "稻草人", "quote": "……", "explanation": "……", "severity": "medium", "side": "antithesis"}
]
` + "```"
