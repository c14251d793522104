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
	"fmt"
	"time"

	"github.com/teradata-labs/arena/pkg/trace"
)

// Sides of a dialectic round.
const (
	SideThesis     = "thesis"
	SideAntithesis = "antithesis"
	SideSynthesis  = "synthesis"
)

// Fallacy severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Fallacy is one detected reasoning flaw in a round's arguments.
type Fallacy struct {
	Type        string `json:"type"`
	Quote       string `json:"quote"`
	Explanation string `json:"explanation"`
	Severity    string `json:"severity"`
	Side        string `json:"side"`
}

// RoundRecord is one completed thesis-antithesis-synthesis round.
type RoundRecord struct {
	Round      int       `json:"round"`
	Thesis     string    `json:"thesis"`
	Antithesis string    `json:"antithesis"`
	Synthesis  string    `json:"synthesis"`
	Fallacies  []Fallacy `json:"fallacies"`
	Timestamp  time.Time `json:"timestamp"`
}

// Trace is the portable record of a dialectic run. The run
// configuration and final thesis are attached by the orchestrator;
// the memory-level trace carries the rounds only.
type Trace struct {
	Topic       string           `json:"topic"`
	TotalRounds int              `json:"total_rounds"`
	Rounds      []RoundRecord    `json:"rounds"`
	CreatedAt   time.Time        `json:"created_at"`
	RunConfig   *trace.RunConfig `json:"run_config,omitempty"`
	FinalThesis string           `json:"final_thesis,omitempty"`
}

// Tree layout. Rounds advance along the x axis; the three roles sit on
// fixed rows, in the coordinate space visual clients expect.
const (
	treeColumnGap  = 260
	thesisRowY     = 0
	antithesisRowY = 140
	synthesisRowY  = 280
)

const (
	nodeTypeDialectic  = "dialectic"
	edgeTypeSmoothstep = "smoothstep"
)

// TreeNode is one node of the evolution tree.
type TreeNode struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Position is a node's layout coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NodeData is the renderable payload of a tree node.
type NodeData struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Round int    `json:"round"`
}

// TreeEdge is one directed edge of the evolution tree.
type TreeEdge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Animated bool   `json:"animated,omitempty"`
}

// Tree is the full evolution tree of a run. Nodes and edges are never
// nil so an empty tree serializes as empty arrays.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
	Edges []TreeEdge `json:"edges"`
}

// Memory accumulates the rounds of one dialectic run. It is owned by
// exactly one orchestrator and is not safe for concurrent use.
type Memory struct {
	topic       string
	totalRounds int
	rounds      []RoundRecord
}

// NewMemory creates the round store for one dialectic run.
func NewMemory(topic string, totalRounds int) *Memory {
	return &Memory{topic: topic, totalRounds: totalRounds}
}

// Topic returns the run's topic.
func (m *Memory) Topic() string { return m.topic }

// TotalRounds returns the planned round count.
func (m *Memory) TotalRounds() int { return m.totalRounds }

// Rounds returns a copy of the recorded rounds in order.
func (m *Memory) Rounds() []RoundRecord {
	return append([]RoundRecord(nil), m.rounds...)
}

// AddRound records one completed round and returns the stored record.
func (m *Memory) AddRound(round int, thesis, antithesis, synthesis string, fallacies []Fallacy) RoundRecord {
	if fallacies == nil {
		fallacies = []Fallacy{}
	}
	record := RoundRecord{
		Round:      round,
		Thesis:     thesis,
		Antithesis: antithesis,
		Synthesis:  synthesis,
		Fallacies:  fallacies,
		Timestamp:  time.Now(),
	}
	m.rounds = append(m.rounds, record)
	return record
}

// BuildTree renders the recorded rounds as an evolution tree. Each
// round contributes a thesis, antithesis and synthesis node plus the
// edges between them; the synthesis ascends to the next round's thesis
// for every round but the last.
func (m *Memory) BuildTree() Tree {
	tree := Tree{Nodes: []TreeNode{}, Edges: []TreeEdge{}}

	for _, r := range m.rounds {
		x := (r.Round - 1) * treeColumnGap
		thesisID := fmt.Sprintf("t%d", r.Round)
		antithesisID := fmt.Sprintf("a%d", r.Round)
		synthesisID := fmt.Sprintf("s%d", r.Round)

		tree.Nodes = append(tree.Nodes,
			TreeNode{
				ID:       thesisID,
				Type:     nodeTypeDialectic,
				Position: Position{X: x, Y: thesisRowY},
				Data:     NodeData{Label: r.Thesis, Kind: SideThesis, Round: r.Round},
			},
			TreeNode{
				ID:       antithesisID,
				Type:     nodeTypeDialectic,
				Position: Position{X: x, Y: antithesisRowY},
				Data:     NodeData{Label: r.Antithesis, Kind: SideAntithesis, Round: r.Round},
			},
			TreeNode{
				ID:       synthesisID,
				Type:     nodeTypeDialectic,
				Position: Position{X: x, Y: synthesisRowY},
				Data:     NodeData{Label: r.Synthesis, Kind: SideSynthesis, Round: r.Round},
			},
		)

		tree.Edges = append(tree.Edges,
			TreeEdge{
				ID:       fmt.Sprintf("e_%s_%s", thesisID, antithesisID),
				Source:   thesisID,
				Target:   antithesisID,
				Label:    "反题",
				Type:     edgeTypeSmoothstep,
				Animated: true,
			},
			TreeEdge{
				ID:     fmt.Sprintf("e_%s_%s", thesisID, synthesisID),
				Source: thesisID,
				Target: synthesisID,
				Label:  "合题",
				Type:   edgeTypeSmoothstep,
			},
			TreeEdge{
				ID:     fmt.Sprintf("e_%s_%s", antithesisID, synthesisID),
				Source: antithesisID,
				Target: synthesisID,
				Label:  "合题",
				Type:   edgeTypeSmoothstep,
			},
		)

		if r.Round < m.totalRounds {
			nextThesisID := fmt.Sprintf("t%d", r.Round+1)
			tree.Edges = append(tree.Edges, TreeEdge{
				ID:     fmt.Sprintf("e_%s_%s", synthesisID, nextThesisID),
				Source: synthesisID,
				Target: nextThesisID,
				Label:  "上升",
				Type:   edgeTypeSmoothstep,
			})
		}
	}
	return tree
}

// BuildTrace returns the memory-level trace of the run. Rounds is
// never nil so an empty trace serializes with an empty list.
func (m *Memory) BuildTrace() Trace {
	t := Trace{
		Topic:       m.topic,
		TotalRounds: m.totalRounds,
		Rounds:      append([]RoundRecord{}, m.rounds...),
	}
	if len(m.rounds) > 0 {
		t.CreatedAt = m.rounds[0].Timestamp
	}
	return t
}
