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
package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/trace"
	"github.com/teradata-labs/arena/pkg/types"
)

// scriptedProvider replays canned responses in order and records the
// options and prompt of every call. A set err fails every call instead.
type scriptedProvider struct {
	responses []string
	err       error

	calls   []types.ChatOptions
	prompts []string
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []types.Message, opts *types.ChatOptions) (*types.LLMResponse, error) {
	if opts != nil {
		p.calls = append(p.calls, *opts)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			p.prompts = append(p.prompts, messages[i].Content)
			break
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	if len(p.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	content := p.responses[0]
	p.responses = p.responses[1:]
	return &types.LLMResponse{Content: content}, nil
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-v1" }

// heuristicTrace covers all three strength bands, both relation kinds,
// and a multi-sentence opening.
func heuristicTrace() *trace.DebateTrace {
	return &trace.DebateTrace{
		Topic: "AI 将取代多数人类工作",
		Turns: []trace.AgentTurn{
			{Round: 1, Side: debate.SidePro, Result: "AI可以全天候工作。AI不需要休息。AI学习速度快。AI成本更低。"},
			{Round: 1, Side: debate.SideCon, Result: strings.Repeat("人类的创造力和共情能力难以替代，", 30)},
			{Round: 2, Side: debate.SidePro, Result: strings.Repeat("新岗位会出现，", 20)},
			{Round: 2, Side: debate.SideCon, Result: "转型成本巨大。"},
			{Round: 2, Side: debate.SideCon, Result: "且分配不均。"},
		},
	}
}

func analyzerTrace() *trace.DebateTrace {
	return &trace.DebateTrace{
		Topic: "AI 将取代多数人类工作",
		Turns: []trace.AgentTurn{
			{Round: 1, Side: debate.SidePro, Result: "AI可以全天候工作。效率远超人类。"},
			{Round: 1, Side: debate.SideCon, Result: "人类创造力难以替代。共情无法复制。"},
			{Round: 2, Side: debate.SidePro, Result: "新岗位会出现。历史一再证明。"},
		},
	}
}

func TestFromTraceBuildsHeuristicGraph(t *testing.T) {
	g := FromTrace(heuristicTrace())
	require.NotNil(t, g)
	assert.Equal(t, "AI 将取代多数人类工作", g.Topic())

	nodes := g.Nodes()
	require.Len(t, nodes, 5)
	assert.Equal(t, "arg_1_pro_1", nodes[0].ID)
	assert.Equal(t, "arg_1_con_2", nodes[1].ID)
	assert.Equal(t, "arg_2_con_5", nodes[4].ID)

	// Strength follows content length: 33, 480, 140, 7, 6 runes.
	assert.Equal(t, StrengthWeak, nodes[0].Strength)
	assert.Equal(t, StrengthStrong, nodes[1].Strength)
	assert.Equal(t, StrengthModerate, nodes[2].Strength)
	assert.Equal(t, StrengthWeak, nodes[3].Strength)

	assert.Equal(t, []string{"AI可以全天候工作", "AI不需要休息", "AI学习速度快"}, nodes[0].KeyPoints)
	assert.Equal(t, []string{"转型成本巨大"}, nodes[3].KeyPoints)

	edges := g.Edges()
	require.Len(t, edges, 4)
	first := edges[0]
	assert.Equal(t, "edge_1", first.ID)
	assert.Equal(t, RelationAttacks, first.Relation)
	assert.Equal(t, 0.6, first.Strength)
	assert.Equal(t, "回应", first.Description)
	assert.Equal(t, nodes[1].ID, first.Source)
	assert.Equal(t, nodes[0].ID, first.Target)

	// The two consecutive con turns build on each other.
	last := edges[3]
	assert.Equal(t, RelationBuildsOn, last.Relation)
	assert.Equal(t, 0.5, last.Strength)
	assert.Equal(t, "延续", last.Description)
	assert.Equal(t, nodes[4].ID, last.Source)
	assert.Equal(t, nodes[3].ID, last.Target)

	assert.True(t, nodes[0].IsRebutted)
	assert.Equal(t, 1, nodes[4].SupportCount)
}

func TestFromTraceEmptyTrace(t *testing.T) {
	g := FromTrace(&trace.DebateTrace{Topic: "空转录"})
	require.NotNil(t, g)
	assert.Equal(t, "空转录", g.Topic())
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
	assert.Equal(t, "tie", g.CalculateDebateScore().Leader)
}

func TestBuildNormalizesSideAndRound(t *testing.T) {
	g := FromTrace(&trace.DebateTrace{
		Topic: "规范化",
		Turns: []trace.AgentTurn{{Round: 0, Side: "", Result: "没有标注立场的发言。"}},
	})

	nodes := g.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, debate.SideCon, nodes[0].Author)
	assert.Equal(t, 1, nodes[0].Round)
	assert.Equal(t, "arg_1_con_1", nodes[0].ID)
}

func TestContentStrengthBands(t *testing.T) {
	assert.Equal(t, StrengthWeak, contentStrength(""))
	assert.Equal(t, StrengthWeak, contentStrength(strings.Repeat("字", 99)))
	assert.Equal(t, StrengthModerate, contentStrength(strings.Repeat("字", 100)))
	assert.Equal(t, StrengthModerate, contentStrength(strings.Repeat("字", 400)))
	assert.Equal(t, StrengthStrong, contentStrength(strings.Repeat("字", 401)))
}

func TestSplitKeyPoints(t *testing.T) {
	assert.Equal(t, []string{"第一点", "第二点", "第三点"}, splitKeyPoints("第一点。第二点。第三点。第四点。"))
	assert.Equal(t, []string{"mixed", "sentence"}, splitKeyPoints("mixed. sentence."))
	assert.Equal(t, []string{"无句号的整段"}, splitKeyPoints("无句号的整段"))
	assert.Empty(t, splitKeyPoints("。。。"))
	assert.Empty(t, splitKeyPoints(""))
}

func TestBuilderWithAnalyzerUsesModelJudgments(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		`["效率优势"]`,
		`["创造力难以替代"]`,
		`["新岗位论"]`,
		`{"has_relation": true, "relation_type": "rebuts", "strength": 0.8, "description": "正面反驳"}`,
		`{"has_relation": false, "relation_type": "none", "strength": 0.1, "description": ""}`,
	}}
	b := NewBuilder(
		WithAnalyzer(NewAnalyzer(p, zaptest.NewLogger(t))),
		WithLogger(zaptest.NewLogger(t)),
	)

	g, err := b.Build(context.Background(), analyzerTrace())
	require.NoError(t, err)

	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"效率优势"}, nodes[0].KeyPoints)
	assert.Equal(t, []string{"新岗位论"}, nodes[2].KeyPoints)

	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, RelationRebuts, edges[0].Relation)
	assert.Equal(t, 0.8, edges[0].Strength)
	assert.Equal(t, "正面反驳", edges[0].Description)
	assert.Equal(t, nodes[1].ID, edges[0].Source)
	assert.Equal(t, nodes[0].ID, edges[0].Target)
	assert.True(t, nodes[0].IsRebutted)

	// Three key point calls, two relation calls, all cool.
	require.Len(t, p.calls, 5)
	for _, opts := range p.calls {
		assert.Equal(t, 0.3, opts.Temperature)
		assert.Zero(t, opts.Seed)
	}
	assert.Contains(t, p.prompts[3], "分析以下两个辩论论点之间的关系")
	assert.Contains(t, p.prompts[3], "【论点A】(con)")
	assert.Contains(t, p.prompts[3], "【论点B】(pro)")
}

func TestBuilderWithAnalyzerSkipsSameSidePairs(t *testing.T) {
	p := &scriptedProvider{responses: []string{`[]`, `[]`}}
	b := NewBuilder(WithAnalyzer(NewAnalyzer(p, nil)))

	g, err := b.Build(context.Background(), &trace.DebateTrace{
		Topic: "同侧",
		Turns: []trace.AgentTurn{
			{Round: 1, Side: debate.SidePro, Result: "第一点。"},
			{Round: 2, Side: debate.SidePro, Result: "第二点。"},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, g.Edges())
	// Key point calls only; same-side pairs are never analyzed. The
	// empty model answers fall back to sentence splitting.
	assert.Len(t, p.calls, 2)
	assert.Equal(t, []string{"第一点"}, g.Nodes()[0].KeyPoints)
}

func TestBuilderWithAnalyzerAbsorbsProviderErrors(t *testing.T) {
	p := &scriptedProvider{err: errors.New("provider down")}
	b := NewBuilder(WithAnalyzer(NewAnalyzer(p, zaptest.NewLogger(t))))

	g, err := b.Build(context.Background(), analyzerTrace())
	require.NoError(t, err)
	require.Len(t, g.Nodes(), 3)
	assert.Empty(t, g.Edges())
	assert.Equal(t, []string{"AI可以全天候工作", "效率远超人类"}, g.Nodes()[0].KeyPoints)
}

func TestBuildHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := NewBuilder().Build(ctx, heuristicTrace())
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, g)
}

func TestAnalyzerRelationValidation(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     InferredRelation
		ok       bool
	}{
		{
			name:     "model relation",
			response: `{"has_relation": true, "relation_type": "undermines", "strength": 0.9, "description": "削弱证据"}`,
			want:     InferredRelation{Relation: RelationUndermines, Strength: 0.9, Description: "削弱证据"},
			ok:       true,
		},
		{
			name:     "uppercase label",
			response: `{"has_relation": true, "relation_type": "ATTACKS", "strength": 0.7, "description": "攻击"}`,
			want:     InferredRelation{Relation: RelationAttacks, Strength: 0.7, Description: "攻击"},
			ok:       true,
		},
		{
			name:     "no relation",
			response: `{"has_relation": false, "relation_type": "attacks", "strength": 0.7, "description": ""}`,
		},
		{
			name:     "unknown label",
			response: `{"has_relation": true, "relation_type": "mocks", "strength": 0.7, "description": ""}`,
		},
		{
			name:     "missing strength defaults",
			response: `{"has_relation": true, "relation_type": "supports", "description": "支持"}`,
			want:     InferredRelation{Relation: RelationSupports, Strength: 0.5, Description: "支持"},
			ok:       true,
		},
		{
			name:     "out of range strength defaults",
			response: `{"has_relation": true, "relation_type": "supports", "strength": 1.5, "description": ""}`,
			want:     InferredRelation{Relation: RelationSupports, Strength: 0.5},
			ok:       true,
		},
		{
			name:     "garbage",
			response: "说不清楚这两个论点的关系",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &scriptedProvider{responses: []string{tc.response}}
			a := NewAnalyzer(p, zaptest.NewLogger(t))

			got, ok := a.AnalyzeRelation(context.Background(), "甲论点", "乙论点", "pro", "con")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAnalyzerPromptClipsArguments(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{"has_relation": false}`}}
	a := NewAnalyzer(p, nil)

	long := strings.Repeat("长", 301)
	_, ok := a.AnalyzeRelation(context.Background(), long, "目标论点", "con", "pro")
	assert.False(t, ok)

	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "分析以下两个辩论论点之间的关系")
	assert.Contains(t, p.prompts[0], "【论点A】(con)")
	assert.Contains(t, p.prompts[0], "【论点B】(pro)")
	assert.Contains(t, p.prompts[0], strings.Repeat("长", 300))
	assert.NotContains(t, p.prompts[0], strings.Repeat("长", 301))
}

func TestAnalyzerKeyPoints(t *testing.T) {
	p := &scriptedProvider{responses: []string{"```json\n[\"观点一\", \"观点二\"]\n```"}}
	a := NewAnalyzer(p, nil)

	points := a.ExtractKeyPoints(context.Background(), "论点原文")
	assert.Equal(t, []string{"观点一", "观点二"}, points)

	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "请从以下辩论论点中提取 2-4 个核心观点/论据")
	assert.Contains(t, p.prompts[0], "论点原文")
}

func TestAnalyzerKeyPointsAbsorbFailures(t *testing.T) {
	down := NewAnalyzer(&scriptedProvider{err: errors.New("provider down")}, zaptest.NewLogger(t))
	assert.Empty(t, down.ExtractKeyPoints(context.Background(), "论点"))

	prose := NewAnalyzer(&scriptedProvider{responses: []string{"这个论点讲得挺好"}}, nil)
	assert.Empty(t, prose.ExtractKeyPoints(context.Background(), "论点"))

	object := NewAnalyzer(&scriptedProvider{responses: []string{`{"points": []}`}}, nil)
	assert.Empty(t, object.ExtractKeyPoints(context.Background(), "论点"))
}
