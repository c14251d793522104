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
package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/agent"
	"github.com/teradata-labs/arena/pkg/types"
)

// Default phase temperatures. Analysis runs cooler than generation so
// strategy selection stays stable while delivery keeps variety.
const (
	defaultAnalysisTemperature   = 0.7
	defaultGenerationTemperature = 0.8
)

// strategies is the closed set of rebuttal strategies a debater may
// select. Order is fixed because the list is rendered into prompts.
var strategies = []struct {
	Name        string
	Description string
}{
	{"direct_refute", "直接反驳 - 针对对方论点的核心逻辑进行反驳"},
	{"evidence_attack", "证据攻击 - 质疑对方论据的可靠性或相关性"},
	{"reframe", "重新定义 - 从不同角度重新定义问题框架"},
	{"counter_example", "反例论证 - 提供反例来否定对方论点"},
	{"consequence", "后果推演 - 分析对方立场的负面后果"},
	{"strengthen", "强化己方 - 提出新论据加强己方立场"},
}

// DefaultStrategy is selected whenever an analysis does not name one.
const DefaultStrategy = "direct_refute"

// DebaterConfig parameterises one side of a debate.
type DebaterConfig struct {
	// Side is "pro" or "con".
	Side string

	// Topic is the debate topic.
	Topic string

	// Provider is the LLM the debater speaks through.
	Provider types.LLMProvider

	// Name overrides the display name derived from the side.
	Name string

	// Temperature overrides both phase temperatures when positive.
	Temperature float64

	// Seed is forwarded to the provider for reproducible runs.
	Seed int64

	// Logger receives per-turn diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// Debater argues one side of a debate with a two-phase turn: analyse
// the opponent's position, then generate an utterance from the
// resulting strategy.
type Debater struct {
	*agent.BaseAgent

	side      string
	sideLabel string
	topic     string

	analysisTemperature   float64
	generationTemperature float64
	seed                  int64

	arguments []string
	opponent  []string

	// turn is the context of the in-flight turn, stashed by Think for
	// the generation phase.
	turn agent.TurnContext
}

var _ agent.Agent = (*Debater)(nil)

// NewDebater creates a debater for one side of the topic.
func NewDebater(cfg DebaterConfig) *Debater {
	name := cfg.Name
	label := "正方（支持方）"
	if cfg.Side == SideCon {
		label = "反方（反对方）"
	}
	if name == "" {
		name = "正方"
		if cfg.Side == SideCon {
			name = "反方"
		}
	}

	analysisTemp := defaultAnalysisTemperature
	generationTemp := defaultGenerationTemperature
	if cfg.Temperature > 0 {
		analysisTemp = cfg.Temperature
		generationTemp = cfg.Temperature
	}

	d := &Debater{
		BaseAgent:             agent.NewBase(name, "debater_"+cfg.Side, cfg.Provider, cfg.Logger),
		side:                  cfg.Side,
		sideLabel:             label,
		topic:                 cfg.Topic,
		analysisTemperature:   analysisTemp,
		generationTemperature: generationTemp,
		seed:                  cfg.Seed,
	}

	d.AddGoal(fmt.Sprintf("作为%s赢得辩论", label))
	d.AddGoal("提出有力的论据支持己方立场")
	d.AddGoal("有效反驳对方论点")
	return d
}

// Side returns "pro" or "con".
func (d *Debater) Side() string { return d.side }

// Topic returns the debate topic.
func (d *Debater) Topic() string { return d.topic }

// Arguments returns a copy of the utterances made so far.
func (d *Debater) Arguments() []string {
	return append([]string(nil), d.arguments...)
}

// Think analyses the turn and selects a strategy. Provider failures are
// absorbed into a low-confidence result so the debate can continue.
func (d *Debater) Think(ctx context.Context, tctx agent.TurnContext) (*agent.ThinkResult, error) {
	d.turn = tctx
	if tctx.OpponentArgument != "" {
		d.Observe(tctx.OpponentArgument, "opponent")
		d.opponent = append(d.opponent, tctx.OpponentArgument)
	}

	messages := []types.Message{
		{Role: "system", Content: fmt.Sprintf("你是一个善于深度分析的辩论策略师，代表%s。", d.sideLabel)},
		{Role: "user", Content: d.analysisPrompt(tctx)},
	}

	resp, err := d.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: d.analysisTemperature,
		Seed:        d.seed,
	})
	if err != nil {
		d.Logger().Warn("analysis phase failed",
			zap.String("side", d.side),
			zap.Int("round", tctx.Round),
			zap.Error(err))
		return &agent.ThinkResult{
			Reasoning:  fmt.Sprintf("分析失败: %v", err),
			Analysis:   map[string]interface{}{},
			NextAction: "generate_argument",
			Confidence: 0.3,
		}, nil
	}

	analysis, parsed := agent.ParseMap(resp.Content, map[string]interface{}{
		"opponent_weaknesses": []interface{}{},
		"selected_strategy":   DefaultStrategy,
		"counter_points":      []interface{}{},
		"confidence":          0.5,
	})
	if !parsed {
		d.Logger().Debug("analysis did not parse, using fallback strategy",
			zap.String("side", d.side),
			zap.Int("round", tctx.Round))
	}

	strategy := DefaultStrategy
	if s, ok := analysis["selected_strategy"].(string); ok && s != "" {
		strategy = s
	}
	d.UpdateBelief("last_analysis", analysis)
	d.UpdateBelief("current_strategy", strategy)
	d.SetStrategy(strategy)

	if raw, err := json.Marshal(analysis); err == nil {
		d.Remember("analysis", "self", string(raw))
	}

	return &agent.ThinkResult{
		Reasoning:  resp.Content,
		Analysis:   analysis,
		NextAction: "generate_argument",
		Confidence: agent.Confidence(analysis),
	}, nil
}

// Act generates the utterance planned by Think. Provider failures
// degrade to a placeholder naming the agent.
func (d *Debater) Act(ctx context.Context, tr *agent.ThinkResult) (string, error) {
	resp, err := d.Provider().Chat(ctx, d.generationMessages(tr), &types.ChatOptions{
		Temperature: d.generationTemperature,
		Seed:        d.seed,
	})
	if err != nil {
		d.Logger().Warn("generation phase failed",
			zap.String("side", d.side),
			zap.Int("round", d.turn.Round),
			zap.Error(err))
		return fmt.Sprintf("[%s发言生成失败]", d.Name()), nil
	}

	content := stripFence(resp.Content)
	d.record(content)
	return content, nil
}

// ReactStream runs a full turn, emitting one thinking event, a growing
// sequence of argument events as chunks arrive, and one final
// argument_complete event. On a streaming failure it emits an error
// event and returns the error with empty content.
func (d *Debater) ReactStream(ctx context.Context, tctx agent.TurnContext, emit func(Event)) (string, error) {
	tr, err := d.Think(ctx, tctx)
	if err != nil {
		// Think absorbs provider errors; anything else is fatal.
		return "", err
	}

	emit(Event{
		Kind:       EventThinking,
		Side:       d.side,
		Name:       d.Name(),
		Analysis:   tr.Analysis,
		Confidence: tr.Confidence,
	})

	messages := d.generationMessages(tr)
	opts := &types.ChatOptions{
		Temperature: d.generationTemperature,
		Seed:        d.seed,
	}

	var content string
	if sp, ok := d.Provider().(types.StreamingLLMProvider); ok {
		var sb strings.Builder
		_, err = sp.ChatStream(ctx, messages, opts, func(chunk string) {
			sb.WriteString(chunk)
			emit(Event{
				Kind:    EventArgument,
				Side:    d.side,
				Name:    d.Name(),
				Content: sb.String(),
			})
		})
		content = sb.String()
	} else {
		var resp *types.LLMResponse
		resp, err = d.Provider().Chat(ctx, messages, opts)
		if err == nil {
			content = stripFence(resp.Content)
			emit(Event{
				Kind:    EventArgument,
				Side:    d.side,
				Name:    d.Name(),
				Content: content,
			})
		}
	}
	if err != nil {
		d.Logger().Warn("streaming generation failed",
			zap.String("side", d.side),
			zap.Int("round", tctx.Round),
			zap.Error(err))
		emit(Event{
			Kind:    EventError,
			Side:    d.side,
			Message: err.Error(),
		})
		return "", err
	}

	d.record(content)
	emit(Event{
		Kind:     EventArgumentComplete,
		Side:     d.side,
		Name:     d.Name(),
		Content:  content,
		Complete: true,
	})
	return content, nil
}

func (d *Debater) record(content string) {
	d.arguments = append(d.arguments, content)
	d.Remember("argument", "self", content)
}

func (d *Debater) generationMessages(tr *agent.ThinkResult) []types.Message {
	return []types.Message{
		{Role: "system", Content: fmt.Sprintf("你是一个口才出众的辩论选手，代表%s。", d.sideLabel)},
		{Role: "user", Content: d.generationPrompt(tr.Analysis, d.turn)},
	}
}

// analysisPrompt builds the opening or rebuttal analysis request.
func (d *Debater) analysisPrompt(tctx agent.TurnContext) string {
	if tctx.IsOpening {
		return fmt.Sprintf(openingAnalysisTemplate, d.sideLabel, d.topic)
	}

	historySummary := "无历史记录"
	if len(tctx.History) > 0 {
		window := tctx.History
		if len(window) > 4 {
			window = window[len(window)-4:]
		}
		lines := make([]string, 0, len(window))
		for _, e := range window {
			lines = append(lines, fmt.Sprintf("第%d轮 - %s: %s...", e.Round, e.Side, truncateRunes(e.Content, previewRunes)))
		}
		historySummary = strings.Join(lines, "\n")
	}

	var sb strings.Builder
	for _, s := range strategies {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", s.Name, s.Description))
	}
	strategyList := strings.TrimRight(sb.String(), "\n")

	return fmt.Sprintf(counterAnalysisTemplate,
		d.sideLabel, d.topic, tctx.Round, tctx.OpponentArgument, historySummary, strategyList)
}

// generationPrompt builds the utterance request from the analysis.
func (d *Debater) generationPrompt(analysis map[string]interface{}, tctx agent.TurnContext) string {
	rendered, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		rendered = []byte("{}")
	}
	if tctx.IsOpening {
		return fmt.Sprintf(openingGenerationTemplate, d.sideLabel, d.topic, rendered)
	}
	return fmt.Sprintf(counterGenerationTemplate, d.sideLabel, d.topic, tctx.Round, rendered)
}

// stripFence removes an accidental fenced wrapper around plain text.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = lines[1:]
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

var openingAnalysisTemplate = `你是一个专业辩论选手，代表%s。

【辩论主题】
%s

【任务】
这是辩论的开场。请分析这个辩题，制定你的开场策略。

请以 JSON 格式输出你的分析：
` + "```json" + `
{
    "topic_analysis": "对辩题的理解和分析",
    "core_stance": "你的核心立场",
    "opening_strategy": "开场策略",
    "key_arguments": ["准备的核心论点1", "核心论点2", "核心论点3"],
    "anticipated_opposition": ["预期对方可能的论点"],
    "confidence": 0.8
}
` + "```"

var counterAnalysisTemplate = `你是一个专业辩论选手，代表%s。

【辩论主题】
%s

【当前轮次】
第 %d 轮

【对手最新论点】
%s

【辩论历史摘要】
%s

【任务】
请分析对手的论点，找出薄弱环节，并制定反驳策略。

可选策略：
%s

请以 JSON 格式输出你的分析：
` + "```json" + `
{
    "opponent_main_points": ["对手的主要论点"],
    "opponent_weaknesses": ["对手论点的薄弱环节"],
    "selected_strategy": "选择的策略名称",
    "strategy_reason": "选择该策略的理由",
    "counter_points": ["准备的反驳要点"],
    "new_arguments": ["新的己方论点"],
    "confidence": 0.7
}
` + "```"

var openingGenerationTemplate = `你是一个专业辩论选手，代表%s。

【辩论主题】
%s

【你的分析】
%s

【任务】
基于以上分析，生成你的开场发言。

【要求】
- 开门见山，亮明立场
- 提出 2-3 个核心论点
- 使用有说服力的论据
- 语言简洁有力
- 控制在 300-400 字

请直接输出你的发言内容，不要包含任何格式标记。`

var counterGenerationTemplate = `你是一个专业辩论选手，代表%s。

【辩论主题】
%s

【当前轮次】
第 %d 轮

【你的策略分析】
%s

【任务】
基于以上分析，生成你的回应发言。

【要求】
- 首先直接回应对方的论点
- 指出对方论点的问题
- 提出自己的反驳论据
- 可以适当提出新论点
- 保持逻辑连贯
- 语言简洁有力
- 控制在 300-400 字

请直接输出你的发言内容，不要包含任何格式标记。`
