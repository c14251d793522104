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
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/agent"
	"github.com/teradata-labs/arena/pkg/types"
)

// defaultJuryTemperature keeps scoring cooler than the debaters'
// generation regardless of session settings.
const defaultJuryTemperature = 0.5

// scoringCriteria names the four dimensions in prompt order.
var scoringCriteria = []struct {
	Name        string
	Description string
}{
	{"logic", "逻辑性 - 论证是否清晰、有条理、无矛盾"},
	{"evidence", "论据质量 - 论据是否充分、可信、相关"},
	{"rhetoric", "修辞表达 - 语言是否有感染力、表达是否精准"},
	{"rebuttal", "反驳有效性 - 对对方论点的回应是否有力"},
}

// EvaluatorConfig parameterises the jury.
type EvaluatorConfig struct {
	// Topic is the debate topic.
	Topic string

	// Provider is the LLM the jury scores through.
	Provider types.LLMProvider

	// Temperature overrides the default jury temperature when positive.
	Temperature float64

	// Seed is forwarded to the provider for reproducible runs.
	Seed int64

	// Logger receives scoring diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// Evaluator is the independent jury: it scores each round on four
// dimensions and rules on the debate once all rounds are in. Totals in
// the verdict always come from its own recorded scores.
type Evaluator struct {
	*agent.BaseAgent

	topic       string
	temperature float64
	seed        int64

	evaluations []RoundEvaluation
}

// NewEvaluator creates the jury for a debate.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	temp := cfg.Temperature
	if temp <= 0 {
		temp = defaultJuryTemperature
	}
	e := &Evaluator{
		BaseAgent:   agent.NewBase("评审", "jury", cfg.Provider, cfg.Logger),
		topic:       cfg.Topic,
		temperature: temp,
		seed:        cfg.Seed,
	}
	e.AddGoal("公正客观地评估辩论")
	e.AddGoal("提供建设性的反馈")
	return e
}

// Think reports readiness; the jury's real work happens in
// EvaluateRound and FinalVerdict.
func (e *Evaluator) Think(ctx context.Context, tctx agent.TurnContext) (*agent.ThinkResult, error) {
	return &agent.ThinkResult{
		Reasoning:  "准备评估本轮辩论",
		Analysis:   map[string]interface{}{"round": tctx.Round},
		NextAction: "evaluate",
		Confidence: 0.9,
	}, nil
}

// Act is a no-op; scoring goes through the dedicated methods.
func (e *Evaluator) Act(ctx context.Context, tr *agent.ThinkResult) (string, error) {
	return "", nil
}

var _ agent.Agent = (*Evaluator)(nil)

// Evaluations returns a copy of the recorded round evaluations.
func (e *Evaluator) Evaluations() []RoundEvaluation {
	return append([]RoundEvaluation(nil), e.evaluations...)
}

// roundEvalWire is the shape the scoring prompt asks the model for.
// Pointer scorecards distinguish a missing side from a zero one.
type roundEvalWire struct {
	ProScore    *Scorecard          `json:"pro_score"`
	ConScore    *Scorecard          `json:"con_score"`
	RoundWinner string              `json:"round_winner"`
	Commentary  string              `json:"commentary"`
	Highlights  []string            `json:"highlights"`
	Suggestions map[string][]string `json:"suggestions"`
}

// EvaluateRound scores one round. Provider failures and non-conforming
// output degrade to a neutral all-5 tie with the failure recorded in
// the commentary; the debate always gets an evaluation.
func (e *Evaluator) EvaluateRound(ctx context.Context, proArgument, conArgument string, round int, history []RoundEvaluation) RoundEvaluation {
	messages := []types.Message{
		{Role: "system", Content: "你是一位公正、专业的辩论赛评审，擅长给出客观的评价。"},
		{Role: "user", Content: e.evaluationPrompt(proArgument, conArgument, round, history)},
	}

	eval := RoundEvaluation{Round: round}
	resp, err := e.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: e.temperature,
		Seed:        e.seed,
	})
	switch {
	case err != nil:
		e.Logger().Warn("round evaluation failed",
			zap.Int("round", round),
			zap.Error(err))
		eval = neutralEvaluation(round, fmt.Sprintf("评估过程出错: %v", err))
	default:
		var wire roundEvalWire
		decodeErr := agent.Decode(resp.Content, &wire)
		if decodeErr != nil || wire.ProScore == nil || wire.ConScore == nil {
			e.Logger().Debug("evaluation did not parse, falling back to neutral scores",
				zap.Int("round", round))
			eval = neutralEvaluation(round, "评估失败")
			break
		}
		eval.ProScore = wire.ProScore.Clamped()
		eval.ConScore = wire.ConScore.Clamped()
		eval.RoundWinner = wire.RoundWinner
		if !validWinner(eval.RoundWinner) {
			eval.RoundWinner = WinnerTie
		}
		eval.Commentary = wire.Commentary
		eval.Highlights = wire.Highlights
		eval.Suggestions = wire.Suggestions
	}

	e.evaluations = append(e.evaluations, eval)
	e.Remember("evaluation", "self", fmt.Sprintf("第%d轮: %s", round, eval.RoundWinner))
	return eval
}

// neutralEvaluation is the all-5 tie issued when scoring cannot
// proceed.
func neutralEvaluation(round int, commentary string) RoundEvaluation {
	return RoundEvaluation{
		Round:       round,
		ProScore:    neutralScorecard(),
		ConScore:    neutralScorecard(),
		RoundWinner: WinnerTie,
		Commentary:  commentary,
		Highlights:  []string{},
		Suggestions: map[string][]string{"pro": {}, "con": {}},
	}
}

// verdictWire is the shape the verdict prompt asks the model for.
// Totals are intentionally absent; they come from recorded scores.
type verdictWire struct {
	Winner           string   `json:"winner"`
	Margin           string   `json:"margin"`
	Summary          string   `json:"summary"`
	ProStrengths     []string `json:"pro_strengths"`
	ConStrengths     []string `json:"con_strengths"`
	KeyTurningPoints []string `json:"key_turning_points"`
}

// FinalVerdict rules on the whole debate. Cumulative totals always
// come from the recorded evaluations; a model verdict that contradicts
// the totals is overridden unless it declares a tie and the totals
// differ by under five percent.
func (e *Evaluator) FinalVerdict(ctx context.Context) FinalVerdict {
	if len(e.evaluations) == 0 {
		return FinalVerdict{
			Winner:           WinnerTie,
			Margin:           MarginMarginal,
			Summary:          "没有可用的评估记录",
			ProStrengths:     []string{},
			ConStrengths:     []string{},
			KeyTurningPoints: []string{},
		}
	}

	var proTotal, conTotal float64
	for _, ev := range e.evaluations {
		proTotal += ev.ProScore.Total()
		conTotal += ev.ConScore.Total()
	}

	messages := []types.Message{
		{Role: "system", Content: "你是辩论赛的终审评委，请给出公正的最终裁决。"},
		{Role: "user", Content: e.verdictPrompt(proTotal, conTotal)},
	}

	var wire verdictWire
	resp, err := e.Provider().Chat(ctx, messages, &types.ChatOptions{
		Temperature: e.temperature,
		Seed:        e.seed,
	})
	if err != nil {
		e.Logger().Warn("final verdict failed", zap.Error(err))
		wire = verdictWire{Summary: fmt.Sprintf("裁决过程出错: %v", err)}
	} else if decodeErr := agent.Decode(resp.Content, &wire); decodeErr != nil {
		e.Logger().Debug("verdict did not parse, ruling from totals")
		wire = verdictWire{}
	}

	verdict := FinalVerdict{
		Winner:           resolveWinner(wire.Winner, proTotal, conTotal),
		ProTotalScore:    proTotal,
		ConTotalScore:    conTotal,
		Margin:           wire.Margin,
		Summary:          wire.Summary,
		ProStrengths:     wire.ProStrengths,
		ConStrengths:     wire.ConStrengths,
		KeyTurningPoints: wire.KeyTurningPoints,
	}
	if !validMargin(verdict.Margin) {
		verdict.Margin = marginFor(proTotal, conTotal)
	}

	if raw, marshalErr := json.Marshal(verdict); marshalErr == nil {
		e.UpdateBelief("final_verdict", string(raw))
	}
	return verdict
}

// resolveWinner reconciles a model-declared winner with the recorded
// totals. The totals are authoritative; an explicit tie survives only
// when the totals are within five percent of each other.
func resolveWinner(declared string, proTotal, conTotal float64) string {
	fromTotals := leaderOf(proTotal, conTotal)
	if !validWinner(declared) {
		return fromTotals
	}
	if declared == fromTotals {
		return declared
	}
	if declared == WinnerTie && relativeGap(proTotal, conTotal) < 5 {
		return WinnerTie
	}
	return fromTotals
}

// CurrentStandings derives the score snapshot from recorded
// evaluations.
func (e *Evaluator) CurrentStandings() Standings {
	var proTotal, conTotal float64
	var proWins, conWins, ties int
	for _, ev := range e.evaluations {
		proTotal += ev.ProScore.Total()
		conTotal += ev.ConScore.Total()
		switch ev.RoundWinner {
		case WinnerPro:
			proWins++
		case WinnerCon:
			conWins++
		default:
			ties++
		}
	}
	return Standings{
		RoundsCompleted: len(e.evaluations),
		ProTotalScore:   proTotal,
		ConTotalScore:   conTotal,
		ProRoundWins:    proWins,
		ConRoundWins:    conWins,
		Ties:            ties,
		Leader:          leaderOf(proTotal, conTotal),
	}
}

// Reset clears the jury's recorded state for a new session.
func (e *Evaluator) Reset() {
	e.evaluations = nil
}

func (e *Evaluator) evaluationPrompt(proArgument, conArgument string, round int, history []RoundEvaluation) string {
	historyContext := ""
	if len(history) > 0 {
		window := history
		if len(window) > 2 {
			window = window[len(window)-2:]
		}
		var sb strings.Builder
		sb.WriteString("\n【历史表现】\n")
		for _, h := range window {
			sb.WriteString(fmt.Sprintf("- 第%d轮: %s获胜\n", h.Round, h.RoundWinner))
		}
		historyContext = sb.String()
	}

	var criteria strings.Builder
	for _, c := range scoringCriteria {
		criteria.WriteString(fmt.Sprintf("- %s: %s\n", c.Name, c.Description))
	}

	return fmt.Sprintf(evaluationTemplate,
		round, e.topic, proArgument, conArgument, historyContext,
		strings.TrimRight(criteria.String(), "\n"))
}

func (e *Evaluator) verdictPrompt(proTotal, conTotal float64) string {
	var summary strings.Builder
	for _, ev := range e.evaluations {
		summary.WriteString(fmt.Sprintf("第%d轮: 正方%d分 vs 反方%d分 (%s胜)\n",
			ev.Round, roundedInt(ev.ProScore.Total()), roundedInt(ev.ConScore.Total()), ev.RoundWinner))
	}

	detail, err := json.MarshalIndent(e.evaluations, "", "  ")
	if err != nil {
		detail = []byte("[]")
	}

	proInt := roundedInt(proTotal)
	conInt := roundedInt(conTotal)
	return fmt.Sprintf(verdictTemplate,
		e.topic, strings.TrimRight(summary.String(), "\n"),
		proInt, conInt, detail, proInt, conInt)
}

func roundedInt(v float64) int {
	return int(math.Round(v))
}

var evaluationTemplate = `你是一位经验丰富的辩论赛评审，请公正评估第 %d 轮辩论。

【辩论主题】
%s

【正方发言】
%s

【反方发言】
%s
%s
【评分标准说明】
%s

请根据以上标准，以 JSON 格式给出你的评估：
` + "```json" + `
{
    "pro_score": {
        "logic": 1-10,
        "evidence": 1-10,
        "rhetoric": 1-10,
        "rebuttal": 1-10
    },
    "con_score": {
        "logic": 1-10,
        "evidence": 1-10,
        "rhetoric": 1-10,
        "rebuttal": 1-10
    },
    "round_winner": "pro" 或 "con" 或 "tie",
    "commentary": "对本轮辩论的专业点评，100字以内",
    "highlights": ["本轮的精彩亮点，如有"],
    "suggestions": {
        "pro": ["给正方的建议"],
        "con": ["给反方的建议"]
    }
}
` + "```" + `

【重要公平性提示】
- 请确保评分公正客观，基于辩论表现而非个人立场
- 后发言者天然在反驳方面有信息优势，评分时应考虑这一因素
- 评估反驳有效性时，应同时考虑论点的原创性和建设性
- 避免系统性偏向任何一方，双方应有平等的获胜机会`

var verdictTemplate = `你是辩论赛的终审评委，请根据各轮评分给出最终裁决。

【辩论主题】
%s

【各轮比分】
%s

【累计得分】
正方总分: %d
反方总分: %d

【各轮详细评价】
%s

请给出你的最终裁决，以 JSON 格式：
` + "```json" + `
{
    "winner": "pro" 或 "con" 或 "tie",
    "pro_total_score": %d,
    "con_total_score": %d,
    "margin": "decisive"(压倒性胜利>15%%) 或 "close"(接近5-15%%) 或 "marginal"(微弱<5%%),
    "summary": "最终裁决理由，200字以内",
    "pro_strengths": ["正方的主要优势"],
    "con_strengths": ["反方的主要优势"],
    "key_turning_points": ["影响胜负的关键时刻"]
}
` + "```"
