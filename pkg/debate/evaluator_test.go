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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/arena/pkg/llm/mock"
	"github.com/teradata-labs/arena/pkg/types"
)

func newTestEvaluator(t *testing.T, provider types.LLMProvider) *Evaluator {
	t.Helper()
	return NewEvaluator(EvaluatorConfig{
		Topic:    "AI 将取代多数人类工作",
		Provider: provider,
		Seed:     123,
		Logger:   zaptest.NewLogger(t),
	})
}

func TestEvaluator_EvaluateRoundScoresBothSides(t *testing.T) {
	e := newTestEvaluator(t, mock.NewClient(mock.Config{Seed: 11}))

	eval := e.EvaluateRound(context.Background(), "正方的第一轮论证。", "反方的第一轮论证。", 1, nil)

	assert.Equal(t, 1, eval.Round)
	for _, score := range []float64{
		eval.ProScore.Logic, eval.ProScore.Evidence, eval.ProScore.Rhetoric, eval.ProScore.Rebuttal,
		eval.ConScore.Logic, eval.ConScore.Evidence, eval.ConScore.Rhetoric, eval.ConScore.Rebuttal,
	} {
		assert.GreaterOrEqual(t, score, 1.0)
		assert.LessOrEqual(t, score, 10.0)
	}
	assert.True(t, validWinner(eval.RoundWinner))
	assert.NotEmpty(t, eval.Commentary)
	require.Len(t, e.Evaluations(), 1)
}

func TestEvaluator_EvaluateRoundWinnerMatchesScores(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{
		"pro_score": {"logic": 9, "evidence": 8, "rhetoric": 8, "rebuttal": 9},
		"con_score": {"logic": 6, "evidence": 6, "rhetoric": 7, "rebuttal": 6},
		"round_winner": "pro",
		"commentary": "正方论证链条完整",
		"highlights": ["正方的数据引用"],
		"suggestions": {"pro": [], "con": ["补充论据"]}
	}`}}
	e := newTestEvaluator(t, p)

	eval := e.EvaluateRound(context.Background(), "正方论点", "反方论点", 1, nil)
	assert.Equal(t, WinnerPro, eval.RoundWinner)
	assert.Equal(t, 34.0, eval.ProScore.Total())
	assert.Equal(t, 25.0, eval.ConScore.Total())
	assert.Equal(t, "正方论证链条完整", eval.Commentary)
	assert.Equal(t, []string{"正方的数据引用"}, eval.Highlights)
}

func TestEvaluator_EvaluateRoundClampsAndNormalises(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{
		"pro_score": {"logic": 12, "evidence": 0, "rhetoric": 8, "rebuttal": 8},
		"con_score": 28,
		"round_winner": "双方平手",
		"commentary": "口径混乱的一轮"
	}`}}
	e := newTestEvaluator(t, p)

	eval := e.EvaluateRound(context.Background(), "正方论点", "反方论点", 2, nil)
	assert.Equal(t, Scorecard{Logic: 10, Evidence: 1, Rhetoric: 8, Rebuttal: 8}, eval.ProScore)
	assert.Equal(t, 28.0, eval.ConScore.Total(), "a scalar side score keeps its total")
	assert.Equal(t, WinnerTie, eval.RoundWinner, "unknown winner labels normalise to a tie")
}

func TestEvaluator_EvaluateRoundProviderErrorGoesNeutral(t *testing.T) {
	p := &scriptedProvider{err: errors.New("upstream down")}
	e := newTestEvaluator(t, p)

	eval := e.EvaluateRound(context.Background(), "正方论点", "反方论点", 1, nil)
	assert.Equal(t, neutralScorecard(), eval.ProScore)
	assert.Equal(t, neutralScorecard(), eval.ConScore)
	assert.Equal(t, WinnerTie, eval.RoundWinner)
	assert.True(t, strings.HasPrefix(eval.Commentary, "评估过程出错: "))
	require.Len(t, e.Evaluations(), 1, "failed rounds still leave an evaluation on record")
}

func TestEvaluator_EvaluateRoundUnparsableGoesNeutral(t *testing.T) {
	p := &scriptedProvider{responses: []string{"这不是 JSON。"}}
	e := newTestEvaluator(t, p)

	eval := e.EvaluateRound(context.Background(), "正方论点", "反方论点", 1, nil)
	assert.Equal(t, "评估失败", eval.Commentary)
	assert.Equal(t, neutralScorecard(), eval.ProScore)
	assert.Equal(t, WinnerTie, eval.RoundWinner)
}

func TestEvaluator_EvaluateRoundMissingSideGoesNeutral(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{"pro_score": {"logic": 8}, "round_winner": "pro"}`}}
	e := newTestEvaluator(t, p)

	eval := e.EvaluateRound(context.Background(), "正方论点", "反方论点", 1, nil)
	assert.Equal(t, "评估失败", eval.Commentary, "an evaluation without both scorecards is unusable")
	assert.Equal(t, WinnerTie, eval.RoundWinner)
}

func TestEvaluator_FinalVerdictWithoutEvaluations(t *testing.T) {
	e := newTestEvaluator(t, &scriptedProvider{err: errors.New("must not be called")})

	verdict := e.FinalVerdict(context.Background())
	assert.Equal(t, WinnerTie, verdict.Winner)
	assert.Equal(t, MarginMarginal, verdict.Margin)
	assert.Equal(t, "没有可用的评估记录", verdict.Summary)
	assert.Zero(t, verdict.ProTotalScore)
	assert.Zero(t, verdict.ConTotalScore)
}

func TestEvaluator_FinalVerdictTotalsAreAuthoritative(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{
		"winner": "pro",
		"margin": "decisive",
		"summary": "正方获胜"
	}`}}
	e := newTestEvaluator(t, p)
	e.evaluations = []RoundEvaluation{
		{Round: 1, ProScore: Scorecard{5, 5, 5, 5}, ConScore: Scorecard{8, 8, 8, 8}, RoundWinner: WinnerCon},
		{Round: 2, ProScore: Scorecard{5, 5, 5, 5}, ConScore: Scorecard{8, 8, 8, 8}, RoundWinner: WinnerCon},
	}

	verdict := e.FinalVerdict(context.Background())
	assert.Equal(t, WinnerCon, verdict.Winner, "the recorded totals override the declared winner")
	assert.Equal(t, 40.0, verdict.ProTotalScore)
	assert.Equal(t, 64.0, verdict.ConTotalScore)
	assert.Equal(t, MarginDecisive, verdict.Margin, "a declared margin is kept when it is a known label")
}

func TestEvaluator_FinalVerdictTieSurvivesNarrowGap(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{"winner": "tie", "summary": "势均力敌"}`}}
	e := newTestEvaluator(t, p)
	e.evaluations = []RoundEvaluation{
		{Round: 1, ProScore: Scorecard{8, 8, 8, 8}, ConScore: Scorecard{8, 8, 8, 7}, RoundWinner: WinnerPro},
	}

	verdict := e.FinalVerdict(context.Background())
	assert.Equal(t, WinnerTie, verdict.Winner, "a declared tie stands while the totals are within five percent")
	assert.Equal(t, MarginMarginal, verdict.Margin, "a missing margin is computed from the totals")
}

func TestEvaluator_FinalVerdictTieOverriddenOnWideGap(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{"winner": "tie", "summary": "势均力敌"}`}}
	e := newTestEvaluator(t, p)
	e.evaluations = []RoundEvaluation{
		{Round: 1, ProScore: Scorecard{9, 9, 9, 9}, ConScore: Scorecard{6, 6, 6, 6}, RoundWinner: WinnerPro},
	}

	verdict := e.FinalVerdict(context.Background())
	assert.Equal(t, WinnerPro, verdict.Winner)
	assert.Equal(t, MarginDecisive, verdict.Margin)
}

func TestEvaluator_FinalVerdictProviderError(t *testing.T) {
	e := newTestEvaluator(t, &scriptedProvider{err: errors.New("upstream down")})
	e.evaluations = []RoundEvaluation{
		{Round: 1, ProScore: Scorecard{8, 8, 8, 8}, ConScore: Scorecard{6, 6, 6, 6}, RoundWinner: WinnerPro},
	}

	verdict := e.FinalVerdict(context.Background())
	assert.Equal(t, WinnerPro, verdict.Winner, "totals still rule when the model is unreachable")
	assert.True(t, strings.HasPrefix(verdict.Summary, "裁决过程出错: "))
	assert.Equal(t, 32.0, verdict.ProTotalScore)
	assert.Equal(t, 24.0, verdict.ConTotalScore)
	assert.Equal(t, MarginDecisive, verdict.Margin)
}

func TestEvaluator_FinalVerdictWithMockIsConsistent(t *testing.T) {
	e := newTestEvaluator(t, mock.NewClient(mock.Config{Seed: 5}))

	e.EvaluateRound(context.Background(), "正方第一轮。", "反方第一轮。", 1, nil)
	e.EvaluateRound(context.Background(), "正方第二轮。", "反方第二轮。", 2, e.Evaluations())

	verdict := e.FinalVerdict(context.Background())
	standings := e.CurrentStandings()
	assert.Equal(t, standings.ProTotalScore, verdict.ProTotalScore)
	assert.Equal(t, standings.ConTotalScore, verdict.ConTotalScore)
	assert.Equal(t, leaderOf(verdict.ProTotalScore, verdict.ConTotalScore), verdict.Winner)
	assert.True(t, validMargin(verdict.Margin))
	assert.NotEmpty(t, verdict.Summary)
}

func TestEvaluator_EvaluationPromptWindowsHistory(t *testing.T) {
	e := newTestEvaluator(t, mock.NewClient(mock.Config{}))

	history := []RoundEvaluation{
		{Round: 1, RoundWinner: WinnerPro},
		{Round: 2, RoundWinner: WinnerCon},
		{Round: 3, RoundWinner: WinnerTie},
	}
	prompt := e.evaluationPrompt("正方论点", "反方论点", 4, history)

	assert.Contains(t, prompt, "请公正评估第 4 轮辩论")
	assert.Contains(t, prompt, "- 第2轮: con获胜")
	assert.Contains(t, prompt, "- 第3轮: tie获胜")
	assert.NotContains(t, prompt, "- 第1轮:", "only the two most recent rounds are summarised")
	for _, name := range []string{"logic", "evidence", "rhetoric", "rebuttal"} {
		assert.Contains(t, prompt, name)
	}
	assert.Contains(t, prompt, "【重要公平性提示】")
}

func TestEvaluator_VerdictPromptCarriesIntegerTotals(t *testing.T) {
	e := newTestEvaluator(t, mock.NewClient(mock.Config{}))
	e.evaluations = []RoundEvaluation{
		{Round: 1, ProScore: Scorecard{8, 8, 7, 8}, ConScore: Scorecard{7, 7, 7, 7}, RoundWinner: WinnerPro},
	}

	prompt := e.verdictPrompt(31.4, 27.6)
	assert.Contains(t, prompt, "正方总分: 31")
	assert.Contains(t, prompt, "反方总分: 28", "totals are rounded, not truncated")
	assert.Contains(t, prompt, "第1轮: 正方31分 vs 反方28分 (pro胜)")
	assert.Contains(t, prompt, "最终裁决")
}

func TestEvaluator_Reset(t *testing.T) {
	e := newTestEvaluator(t, mock.NewClient(mock.Config{}))
	e.evaluations = []RoundEvaluation{{Round: 1}}

	e.Reset()
	assert.Empty(t, e.Evaluations())
	assert.Zero(t, e.CurrentStandings().RoundsCompleted)
}
