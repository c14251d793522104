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

package evals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teradata-labs/arena/pkg/debate"
	"github.com/teradata-labs/arena/pkg/trace"
)

// juryTraceStrongerLogic mirrors juryTrace with two extra logic points
// for both sides in both rounds, lifting the logic mean to 9.0 and the
// overall to 7.38.
func juryTraceStrongerLogic() *trace.DebateTrace {
	tr := juryTrace()
	tr.TraceID = "trace-jury-logic"
	for i := range tr.Evaluations {
		tr.Evaluations[i].ProScore.Logic += 2
		tr.Evaluations[i].ConScore.Logic += 2
	}
	return tr
}

func TestCompareTracesJuryDelta(t *testing.T) {
	cmp := CompareTraces(juryTrace(), juryTraceStrongerLogic())

	assert.InDelta(t, 6.88, cmp.Left.Overall, 1e-9)
	assert.InDelta(t, 7.38, cmp.Right.Overall, 1e-9)

	assert.InDelta(t, 0.5, cmp.Delta.Overall, 1e-9)
	assert.InDelta(t, 2.0, cmp.Delta.Logic, 1e-9)
	assert.Zero(t, cmp.Delta.Evidence)
	assert.Zero(t, cmp.Delta.Rebuttal)
	assert.Zero(t, cmp.Delta.Clarity)

	// Raising every total by the same amount leaves the spread alone.
	assert.Zero(t, cmp.Delta.Consistency)

	assert.Equal(t, CompareRight, cmp.Winner)

	// Identical turn text: transcripts match even though scores moved.
	assert.InDelta(t, 1.0, cmp.TranscriptSimilarity, 1e-9)
	assert.Empty(t, cmp.TranscriptDiff)
}

func TestCompareTracesIdentical(t *testing.T) {
	cmp := CompareTraces(juryTrace(), juryTrace())

	assert.Equal(t, CompareTie, cmp.Winner)
	assert.Zero(t, cmp.Delta.Overall)
	assert.Zero(t, cmp.Delta.Logic)
	assert.Zero(t, cmp.Delta.Consistency)
	assert.InDelta(t, 1.0, cmp.TranscriptSimilarity, 1e-9)
	assert.Empty(t, cmp.TranscriptDiff)
}

func TestCompareTracesTranscriptDiff(t *testing.T) {
	left := &trace.DebateTrace{
		TraceID: "trace-left",
		Turns: []trace.AgentTurn{
			{Round: 1, Side: debate.SidePro, Result: "观点保持一致。"},
		},
	}
	right := &trace.DebateTrace{
		TraceID: "trace-right",
		Turns: []trace.AgentTurn{
			{Round: 1, Side: debate.SidePro, Result: "观点出现分歧。"},
		},
	}

	cmp := CompareTraces(left, right)

	assert.Greater(t, cmp.TranscriptSimilarity, 0.0)
	assert.Less(t, cmp.TranscriptSimilarity, 1.0)
	assert.Contains(t, cmp.TranscriptDiff, "--- left")
	assert.Contains(t, cmp.TranscriptDiff, "+++ right")
	assert.Contains(t, cmp.TranscriptDiff, "- ")
	assert.Contains(t, cmp.TranscriptDiff, "+ ")
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "论点成立", "论点成立", 1.0},
		{"whitespace only", "论点  成立", "论点 成立", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "论点成立", "", 0.0},
		{"half shared", "数据支持结论", "案例支持结论", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTranscriptDiffFoldsLongContext(t *testing.T) {
	left := "头部相同\n一\n二\n三\n四\n五\n左侧结尾"
	right := "头部相同\n一\n二\n三\n四\n五\n右侧结尾"

	diff := transcriptDiff(left, right)

	assert.Contains(t, diff, "--- left\n+++ right\n@@ Differences @@\n")
	assert.Contains(t, diff, "  头部相同\n")
	assert.Contains(t, diff, "  ...\n")
	assert.Contains(t, diff, "- 左")
	assert.Contains(t, diff, "+ 右")
}
