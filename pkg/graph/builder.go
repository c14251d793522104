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
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/agent"
	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/trace"
	"github.com/teradata-labs/arena/pkg/types"
)

// Heuristic strength bands, in runes of content.
const (
	weakContentRunes   = 100
	strongContentRunes = 400
)

// maxKeyPoints caps sentence-split key point extraction.
const maxKeyPoints = 3

// Relation defaults for heuristically inferred edges.
const (
	attackEdgeStrength  = 0.6
	supportEdgeStrength = 0.5
)

// defaultRelationStrength replaces out-of-range analyzer strengths.
const defaultRelationStrength = 0.5

// analyzerTemperature keeps relation judgments near-deterministic.
const analyzerTemperature = 0.3

// relationExcerptRunes clips arguments quoted in the relation prompt.
const relationExcerptRunes = 300

// Builder assembles an argument graph from a debate trace. Without an
// analyzer every inference is heuristic: strength follows content
// length and every adjacent pair of utterances is related. With an
// analyzer, key points and cross-side relations come from the model.
type Builder struct {
	analyzer *Analyzer
	logger   *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithAnalyzer routes key point extraction and relation inference
// through a model instead of the adjacency heuristic.
func WithAnalyzer(analyzer *Analyzer) BuilderOption {
	return func(b *Builder) { b.analyzer = analyzer }
}

// WithLogger sets the builder's logger.
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a builder. All options are optional; the zero
// builder infers heuristically and logs nowhere.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// FromTrace builds a graph from a recorded debate using heuristic
// inference only.
func FromTrace(t *trace.DebateTrace) *ArgumentGraph {
	g, _ := NewBuilder().Build(context.Background(), t)
	return g
}

// Build adds one node per recorded turn, grades strength by content
// length, extracts key points, and infers relations between adjacent
// turns. The only error it returns is a canceled context.
func (b *Builder) Build(ctx context.Context, t *trace.DebateTrace) (*ArgumentGraph, error) {
	g := New(t.Topic)
	nodes := make([]*Node, 0, len(t.Turns))
	for _, turn := range t.Turns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := turn.Result
		keyPoints := splitKeyPoints(content)
		if b.analyzer != nil {
			if points := b.analyzer.ExtractKeyPoints(ctx, content); len(points) > 0 {
				keyPoints = points
			}
		}
		nodes = append(nodes, g.AddArgument(Argument{
			Content:   content,
			Author:    turnAuthor(turn.Side),
			Round:     turnRound(turn.Round),
			KeyPoints: keyPoints,
			Strength:  contentStrength(content),
		}))
	}

	if b.analyzer != nil {
		if err := b.analyzeRelations(ctx, g, nodes); err != nil {
			return nil, err
		}
		return g, nil
	}
	b.relateAdjacent(g, nodes)
	return g, nil
}

// relateAdjacent links every utterance to the one before it: a reply
// across sides attacks, a follow-up on the same side builds on.
func (b *Builder) relateAdjacent(g *ArgumentGraph, nodes []*Node) {
	for i := 1; i < len(nodes); i++ {
		current, prev := nodes[i], nodes[i-1]
		if current.Author != prev.Author {
			g.AddRelation(current.ID, prev.ID, RelationAttacks, attackEdgeStrength, "回应")
		} else {
			g.AddRelation(current.ID, prev.ID, RelationBuildsOn, supportEdgeStrength, "延续")
		}
	}
}

// analyzeRelations asks the model about each cross-side adjacent pair.
// Same-side pairs and pairs the model sees no relation in get no edge.
func (b *Builder) analyzeRelations(ctx context.Context, g *ArgumentGraph, nodes []*Node) error {
	for i := 1; i < len(nodes); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		current, prev := nodes[i], nodes[i-1]
		if current.Author == prev.Author {
			continue
		}
		inferred, ok := b.analyzer.AnalyzeRelation(ctx, current.Content, prev.Content, current.Author, prev.Author)
		if !ok {
			continue
		}
		g.AddRelation(current.ID, prev.ID, inferred.Relation, inferred.Strength, inferred.Description)
	}
	return nil
}

// turnAuthor normalizes a trace side onto the graph's two authors.
func turnAuthor(side string) string {
	if side == debate.SidePro {
		return debate.SidePro
	}
	return debate.SideCon
}

// turnRound defaults unnumbered turns to round one.
func turnRound(round int) int {
	if round < 1 {
		return 1
	}
	return round
}

// contentStrength grades an argument by sheer length: long arguments
// tend to carry developed reasoning, very short ones rarely do.
func contentStrength(content string) Strength {
	switch length := utf8.RuneCountInString(content); {
	case length > strongContentRunes:
		return StrengthStrong
	case length < weakContentRunes:
		return StrengthWeak
	default:
		return StrengthModerate
	}
}

// splitKeyPoints takes the leading sentences of an argument as its key
// points.
func splitKeyPoints(content string) []string {
	normalized := strings.ReplaceAll(content, "。", ".")
	points := make([]string, 0, maxKeyPoints)
	for _, sentence := range strings.Split(normalized, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		points = append(points, sentence)
		if len(points) == maxKeyPoints {
			break
		}
	}
	return points
}

// Analyzer infers argument relations and key points with a model.
// Failures never propagate: a bad or missing answer means no finding.
type Analyzer struct {
	provider types.LLMProvider
	logger   *zap.Logger
}

// NewAnalyzer creates an analyzer on a provider. A nil logger is
// replaced with a no-op one.
func NewAnalyzer(provider types.LLMProvider, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{provider: provider, logger: logger}
}

// InferredRelation is the analyzer's judgment on one pair of
// arguments.
type InferredRelation struct {
	Relation    RelationType
	Strength    float64
	Description string
}

// relationJudgment is the raw JSON shape the model answers with.
type relationJudgment struct {
	HasRelation  bool    `json:"has_relation"`
	RelationType string  `json:"relation_type"`
	Strength     float64 `json:"strength"`
	Description  string  `json:"description"`
}

// ExtractKeyPoints asks the model for the core points of one argument.
// An unusable answer yields an empty slice.
func (a *Analyzer) ExtractKeyPoints(ctx context.Context, argument string) []string {
	messages := []types.Message{
		{Role: "user", Content: fmt.Sprintf(keyPointsTemplate, argument)},
	}
	resp, err := a.provider.Chat(ctx, messages, &types.ChatOptions{Temperature: analyzerTemperature})
	if err != nil {
		a.logger.Warn("key point extraction failed", zap.Error(err))
		return []string{}
	}
	var points []string
	if err := agent.Decode(resp.Content, &points); err != nil || points == nil {
		return []string{}
	}
	return points
}

// AnalyzeRelation judges how the source argument bears on the target
// argument. It reports false when the model sees no relation or the
// answer fails validation.
func (a *Analyzer) AnalyzeRelation(ctx context.Context, sourceArg, targetArg, sourceAuthor, targetAuthor string) (InferredRelation, bool) {
	prompt := fmt.Sprintf(relationTemplate,
		sourceAuthor, firstRunes(sourceArg, relationExcerptRunes),
		targetAuthor, firstRunes(targetArg, relationExcerptRunes))
	messages := []types.Message{{Role: "user", Content: prompt}}
	resp, err := a.provider.Chat(ctx, messages, &types.ChatOptions{Temperature: analyzerTemperature})
	if err != nil {
		a.logger.Warn("relation analysis failed", zap.Error(err))
		return InferredRelation{}, false
	}

	var judgment relationJudgment
	if err := agent.Decode(resp.Content, &judgment); err != nil || !judgment.HasRelation {
		return InferredRelation{}, false
	}
	relation, ok := parseRelation(judgment.RelationType)
	if !ok {
		a.logger.Warn("unknown relation type", zap.String("relation", judgment.RelationType))
		return InferredRelation{}, false
	}
	strength := judgment.Strength
	if strength <= 0 || strength > 1 {
		strength = defaultRelationStrength
	}
	return InferredRelation{
		Relation:    relation,
		Strength:    strength,
		Description: judgment.Description,
	}, true
}

// parseRelation maps a model-emitted label onto the closed relation
// set.
func parseRelation(label string) (RelationType, bool) {
	switch relation := RelationType(strings.ToLower(strings.TrimSpace(label))); relation {
	case RelationSupports, RelationAttacks, RelationRebuts, RelationUndermines, RelationBuildsOn:
		return relation, true
	}
	return "", false
}

var keyPointsTemplate = `请从以下辩论论点中提取 2-4 个核心观点/论据，每个用一句话概括：

论点内容：
%s

请以 JSON 数组格式输出，例如：
["核心观点1", "核心观点2", "核心观点3"]`

var relationTemplate = `分析以下两个辩论论点之间的关系：

【论点A】(%s)
%s

【论点B】(%s)
%s

请判断论点A与论点B的关系，以 JSON 格式输出：
` + "```json" + `
{
    "has_relation": true/false,
    "relation_type": "attacks"/"rebuts"/"supports"/"undermines"/"builds_on"/"none",
    "strength": 0.1-1.0,
    "description": "关系描述，10字以内"
}
` + "```"
