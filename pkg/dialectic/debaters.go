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
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/agent"
	"github.com/teradata-labs/arena/pkg/types"
)

// Role default temperatures. The debating agents run warmer than the
// observer so positions stay sharp while syntheses stay stable.
const (
	defaultDebaterTemperature  = 0.7
	defaultObserverTemperature = 0.5
)

// History summaries quote the last few syntheses, truncated per entry.
const (
	historyWindow = 3
	historyRunes  = 80
)

// AgentConfig parameterises one dialectic agent.
type AgentConfig struct {
	// Provider is the LLM the agent speaks through.
	Provider types.LLMProvider

	// Temperature overrides the role default when positive.
	Temperature float64

	// Seed is forwarded to the provider for reproducible runs.
	Seed int64

	// Logger receives per-turn diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// ThesisAgent states and reinforces the current thesis with a
// two-phase turn: analyse the proposition, then argue for it.
type ThesisAgent struct {
	*agent.BaseAgent

	temperature float64
	seed        int64

	// turn is the context of the in-flight turn, stashed by Think for
	// the generation phase.
	turn agent.TurnContext
}

var _ agent.Agent = (*ThesisAgent)(nil)

// NewThesisAgent creates the thesis side of a dialectic run.
func NewThesisAgent(cfg AgentConfig) *ThesisAgent {
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultDebaterTemperature
	}
	t := &ThesisAgent{
		BaseAgent:   agent.NewBase("正题", "dialectic_thesis", cfg.Provider, cfg.Logger),
		temperature: temperature,
		seed:        cfg.Seed,
	}
	t.AddGoal("维护并强化当前正题")
	t.AddGoal("用清晰有力的论证阐明立场")
	return t
}

// Think analyses the current thesis. Provider failures are absorbed
// into a low-confidence result carrying the thesis unchanged.
func (t *ThesisAgent) Think(ctx context.Context, tctx agent.TurnContext) (*agent.ThinkResult, error) {
	t.turn = tctx

	messages := []types.Message{
		{Role: "system", Content: "你是一名思维严谨的哲学辩手，专注于阐明正题。"},
		{Role: "user", Content: t.analysisPrompt(tctx)},
	}
	resp, err := t.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: t.temperature,
		Seed:        t.seed,
	})
	if err != nil {
		t.Logger().Warn("thesis analysis failed",
			zap.Int("round", tctx.Round),
			zap.Error(err))
		return &agent.ThinkResult{
			Reasoning:  fmt.Sprintf("分析失败: %v", err),
			Analysis:   map[string]interface{}{"core_thesis": tctx.Thesis},
			NextAction: "generate_thesis",
			Confidence: 0.3,
		}, nil
	}

	analysis, _ := agent.ParseMap(resp.Content, map[string]interface{}{
		"core_thesis":       tctx.Thesis,
		"supporting_points": []interface{}{},
		"assumptions":       []interface{}{},
		"confidence":        0.5,
	})
	t.UpdateBelief("last_analysis", analysis)

	return &agent.ThinkResult{
		Reasoning:  resp.Content,
		Analysis:   analysis,
		NextAction: "generate_thesis",
		Confidence: agent.Confidence(analysis),
	}, nil
}

// Act argues for the thesis planned by Think. Provider failures degrade
// to a placeholder naming the failure.
func (t *ThesisAgent) Act(ctx context.Context, tr *agent.ThinkResult) (string, error) {
	messages := []types.Message{
		{Role: "system", Content: "你是一名擅长论证的哲学辩手，表达凝练有力。"},
		{Role: "user", Content: t.generationPrompt(tr.Analysis, t.turn)},
	}
	resp, err := t.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: t.temperature,
		Seed:        t.seed,
	})
	if err != nil {
		t.Logger().Warn("thesis generation failed",
			zap.Int("round", t.turn.Round),
			zap.Error(err))
		return fmt.Sprintf("[正题生成失败: %v]", err), nil
	}
	return strings.TrimSpace(resp.Content), nil
}

func (t *ThesisAgent) analysisPrompt(tctx agent.TurnContext) string {
	return fmt.Sprintf(thesisAnalysisTemplate, tctx.Thesis, tctx.Round, synthesisHistory(tctx.History))
}

func (t *ThesisAgent) generationPrompt(analysis map[string]interface{}, tctx agent.TurnContext) string {
	return fmt.Sprintf(thesisGenerationTemplate, tctx.Thesis, renderAnalysis(analysis))
}

// AntithesisAgent negates the current thesis: it analyses the thesis
// argument for weak points, then argues the opposing position.
type AntithesisAgent struct {
	*agent.BaseAgent

	temperature float64
	seed        int64

	turn agent.TurnContext
}

var _ agent.Agent = (*AntithesisAgent)(nil)

// NewAntithesisAgent creates the antithesis side of a dialectic run.
func NewAntithesisAgent(cfg AgentConfig) *AntithesisAgent {
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultDebaterTemperature
	}
	a := &AntithesisAgent{
		BaseAgent:   agent.NewBase("反题", "dialectic_antithesis", cfg.Provider, cfg.Logger),
		temperature: temperature,
		seed:        cfg.Seed,
	}
	a.AddGoal("提出明确的反题并构建否定性论证")
	a.AddGoal("指出正题的关键漏洞与隐含前提")
	return a
}

// Think analyses the thesis argument for attack points. Provider
// failures are absorbed into a low-confidence empty antithesis.
func (a *AntithesisAgent) Think(ctx context.Context, tctx agent.TurnContext) (*agent.ThinkResult, error) {
	a.turn = tctx
	if tctx.ThesisArgument != "" {
		a.Observe(tctx.ThesisArgument, SideThesis)
	}

	messages := []types.Message{
		{Role: "system", Content: "你是一名批判性极强的哲学辩手，专注于提出反题。"},
		{Role: "user", Content: a.analysisPrompt(tctx)},
	}
	resp, err := a.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: a.temperature,
		Seed:        a.seed,
	})
	if err != nil {
		a.Logger().Warn("antithesis analysis failed",
			zap.Int("round", tctx.Round),
			zap.Error(err))
		return &agent.ThinkResult{
			Reasoning:  fmt.Sprintf("分析失败: %v", err),
			Analysis:   map[string]interface{}{"antithesis": ""},
			NextAction: "generate_antithesis",
			Confidence: 0.3,
		}, nil
	}

	analysis, _ := agent.ParseMap(resp.Content, map[string]interface{}{
		"antithesis":         "",
		"attack_points":      []interface{}{},
		"hidden_assumptions": []interface{}{},
		"confidence":         0.5,
	})
	a.UpdateBelief("last_analysis", analysis)

	return &agent.ThinkResult{
		Reasoning:  resp.Content,
		Analysis:   analysis,
		NextAction: "generate_antithesis",
		Confidence: agent.Confidence(analysis),
	}, nil
}

// Act argues the antithesis planned by Think. Provider failures degrade
// to a placeholder naming the failure.
func (a *AntithesisAgent) Act(ctx context.Context, tr *agent.ThinkResult) (string, error) {
	messages := []types.Message{
		{Role: "system", Content: "你是一名善于反驳的哲学辩手，表达锋利、逻辑清晰。"},
		{Role: "user", Content: fmt.Sprintf(antithesisGenerationTemplate, renderAnalysis(tr.Analysis))},
	}
	resp, err := a.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: a.temperature,
		Seed:        a.seed,
	})
	if err != nil {
		a.Logger().Warn("antithesis generation failed",
			zap.Int("round", a.turn.Round),
			zap.Error(err))
		return fmt.Sprintf("[反题生成失败: %v]", err), nil
	}
	return strings.TrimSpace(resp.Content), nil
}

func (a *AntithesisAgent) analysisPrompt(tctx agent.TurnContext) string {
	return fmt.Sprintf(antithesisAnalysisTemplate, tctx.Thesis, tctx.ThesisArgument, tctx.Round)
}

// renderAnalysis embeds a parsed analysis into a generation prompt.
func renderAnalysis(analysis map[string]interface{}) string {
	rendered, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(rendered)
}

// synthesisHistory renders the most recent syntheses for a prompt.
func synthesisHistory(history []agent.Exchange) string {
	if len(history) == 0 {
		return "无"
	}
	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}
	lines := make([]string, 0, len(window))
	for _, e := range window {
		lines = append(lines, fmt.Sprintf("第%d轮合题: %s...", e.Round, truncateRunes(e.Content, historyRunes)))
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var thesisAnalysisTemplate = `你是“正题”辩手，任务是阐明并强化当前正题。

【当前正题】
%s

【轮次】
第 %d 轮

【历史合题摘要】
%s

请输出 JSON 分析：
` + "```json" + `
{
  "core_thesis": "正题的核心主张",
  "supporting_points": ["支持点1","支持点2","支持点3"],
  "assumptions": ["关键前提1","关键前提2"],
  "confidence": 0.7
}
` + "```"

var thesisGenerationTemplate = `你是“正题”辩手，请基于分析输出一段正题论证。

【当前正题】
%s

【分析】
%s

【要求】
- 200-300 字
- 逻辑清晰、论点聚焦
- 提出 2-3 个支撑论据
- 语言简洁有力

请直接输出正文，不要附加格式标记。`

var antithesisAnalysisTemplate = `你是“反题”辩手，任务是提出对当前正题的否定或对立立场。

【当前正题】
%s

【正题论证】
%s

【轮次】
第 %d 轮

请输出 JSON 分析：
` + "```json" + `
{
  "antithesis": "清晰的反题表述",
  "attack_points": ["攻击点1","攻击点2","攻击点3"],
  "hidden_assumptions": ["正题隐含前提1","前提2"],
  "confidence": 0.7
}
` + "```"

var antithesisGenerationTemplate = `你是“反题”辩手，请基于分析输出反题论证。

【分析】
%s

【要求】
- 200-300 字
- 明确提出反题
- 针对正题论证进行反驳
- 结构清晰、力度集中

请直接输出正文，不要附加格式标记。`
