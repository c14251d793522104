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
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeByID(t *testing.T, tree Tree, id string) TreeNode {
	t.Helper()
	for _, n := range tree.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("tree has no node %q", id)
	return TreeNode{}
}

func edgeByID(tree Tree, id string) (TreeEdge, bool) {
	for _, e := range tree.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return TreeEdge{}, false
}

func TestMemoryRecordsRounds(t *testing.T) {
	m := NewMemory("学不可以已", 5)
	assert.Equal(t, "学不可以已", m.Topic())
	assert.Equal(t, 5, m.TotalRounds())
	assert.Empty(t, m.Rounds())

	rec := m.AddRound(1, "正题论证", "反题论证", "合题", nil)
	assert.Equal(t, 1, rec.Round)
	assert.Equal(t, "正题论证", rec.Thesis)
	assert.Equal(t, "反题论证", rec.Antithesis)
	assert.Equal(t, "合题", rec.Synthesis)
	require.NotNil(t, rec.Fallacies, "nil fallacies normalize to an empty list")
	assert.Empty(t, rec.Fallacies)
	assert.WithinDuration(t, time.Now(), rec.Timestamp, 2*time.Second)

	rounds := m.Rounds()
	require.Len(t, rounds, 1)
	rounds[0].Thesis = "被改写"
	assert.Equal(t, "正题论证", m.Rounds()[0].Thesis, "Rounds returns a copy")
}

func TestBuildTreeSingleRoundGeometry(t *testing.T) {
	m := NewMemory("t", 1)
	m.AddRound(1, "正", "反", "合", nil)

	tree := m.BuildTree()
	require.Len(t, tree.Nodes, 3)
	require.Len(t, tree.Edges, 3, "the last round has no ascent edge")

	thesis := nodeByID(t, tree, "t1")
	assert.Equal(t, "dialectic", thesis.Type)
	assert.Equal(t, Position{X: 0, Y: 0}, thesis.Position)
	assert.Equal(t, NodeData{Label: "正", Kind: SideThesis, Round: 1}, thesis.Data)

	antithesis := nodeByID(t, tree, "a1")
	assert.Equal(t, Position{X: 0, Y: 140}, antithesis.Position)
	assert.Equal(t, NodeData{Label: "反", Kind: SideAntithesis, Round: 1}, antithesis.Data)

	synthesis := nodeByID(t, tree, "s1")
	assert.Equal(t, Position{X: 0, Y: 280}, synthesis.Position)
	assert.Equal(t, NodeData{Label: "合", Kind: SideSynthesis, Round: 1}, synthesis.Data)

	opposition, ok := edgeByID(tree, "e_t1_a1")
	require.True(t, ok)
	assert.Equal(t, TreeEdge{
		ID:       "e_t1_a1",
		Source:   "t1",
		Target:   "a1",
		Label:    "反题",
		Type:     "smoothstep",
		Animated: true,
	}, opposition)

	left, ok := edgeByID(tree, "e_t1_s1")
	require.True(t, ok)
	assert.Equal(t, "合题", left.Label)
	assert.False(t, left.Animated, "only opposition edges animate")

	right, ok := edgeByID(tree, "e_a1_s1")
	require.True(t, ok)
	assert.Equal(t, "s1", right.Target)
}

func TestBuildTreeAscentPointsAtNextRound(t *testing.T) {
	m := NewMemory("t", 2)
	m.AddRound(1, "正1", "反1", "合1", nil)

	tree := m.BuildTree()
	require.Len(t, tree.Nodes, 3)
	require.Len(t, tree.Edges, 4)

	ascent, ok := edgeByID(tree, "e_s1_t2")
	require.True(t, ok, "the ascent edge is drawn before the next round exists")
	assert.Equal(t, "s1", ascent.Source)
	assert.Equal(t, "t2", ascent.Target)
	assert.Equal(t, "上升", ascent.Label)

	m.AddRound(2, "合1", "反2", "合2", nil)
	tree = m.BuildTree()
	assert.Len(t, tree.Nodes, 6)
	assert.Len(t, tree.Edges, 7)
	_, ok = edgeByID(tree, "e_s2_t3")
	assert.False(t, ok, "the final round does not ascend")
}

func TestBuildTreeFiveRounds(t *testing.T) {
	m := NewMemory("t", 5)
	for i := 1; i <= 5; i++ {
		m.AddRound(i, fmt.Sprintf("正%d", i), fmt.Sprintf("反%d", i), fmt.Sprintf("合%d", i), nil)
	}

	tree := m.BuildTree()
	assert.Len(t, tree.Nodes, 15)
	assert.Len(t, tree.Edges, 19)

	assert.Equal(t, Position{X: 520, Y: 0}, nodeByID(t, tree, "t3").Position)
	assert.Equal(t, Position{X: 520, Y: 140}, nodeByID(t, tree, "a3").Position)
	assert.Equal(t, Position{X: 520, Y: 280}, nodeByID(t, tree, "s3").Position)

	for i := 1; i < 5; i++ {
		_, ok := edgeByID(tree, fmt.Sprintf("e_s%d_t%d", i, i+1))
		assert.True(t, ok, "round %d ascends", i)
	}
	_, ok := edgeByID(tree, "e_s5_t6")
	assert.False(t, ok)
}

func TestBuildTreeEmptySerializesAsArrays(t *testing.T) {
	tree := NewMemory("t", 5).BuildTree()
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestBuildTreeGolden(t *testing.T) {
	m := NewMemory("学不可以已", 2)
	m.AddRound(1, "学不可以已", "学而不思则罔", "学思并进", nil)
	m.AddRound(2, "学思并进", "行胜于知", "知行合一", nil)

	data, err := json.MarshalIndent(m.BuildTree(), "", "  ")
	require.NoError(t, err)
	golden.RequireEqual(t, data)
}

func TestBuildTraceCarriesRounds(t *testing.T) {
	m := NewMemory("学不可以已", 5)
	m.AddRound(1, "正1", "反1", "合1", []Fallacy{{
		Type:        "滑坡谬误",
		Quote:       "一旦接受这一点",
		Explanation: "将单一让步推演为连锁灾难",
		Severity:    SeverityMedium,
		Side:        SideAntithesis,
	}})
	m.AddRound(2, "正2", "反2", "合2", nil)

	tr := m.BuildTrace()
	assert.Equal(t, "学不可以已", tr.Topic)
	assert.Equal(t, 5, tr.TotalRounds)
	require.Len(t, tr.Rounds, 2)
	assert.Equal(t, m.Rounds()[0].Timestamp, tr.CreatedAt, "the trace is created when its first round lands")
	assert.Equal(t, "滑坡谬误", tr.Rounds[0].Fallacies[0].Type)
	assert.Nil(t, tr.RunConfig, "the memory-level trace carries no run config")
	assert.Empty(t, tr.FinalThesis)
}

func TestBuildTraceEmptyMemory(t *testing.T) {
	tr := NewMemory("t", 5).BuildTrace()
	assert.True(t, tr.CreatedAt.IsZero())
	require.NotNil(t, tr.Rounds)
	assert.Empty(t, tr.Rounds)
}
