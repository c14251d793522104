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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/teradata-labs/arena/pkg/debate"
)

const (
	// exportContentRunes clips node content in JSON exports.
	exportContentRunes = 200
	// mermaidLabelRunes clips node labels in the Mermaid rendering.
	mermaidLabelRunes = 30
	// summaryStrongest is how many top arguments per side the summary
	// carries.
	summaryStrongest = 2
)

// NodeView is the export shape of one argument. Content is clipped and
// timestamps are dropped.
type NodeView struct {
	ID            string   `json:"id"`
	Content       string   `json:"content"`
	Author        string   `json:"author"`
	Round         int      `json:"round"`
	Type          string   `json:"type"`
	Strength      string   `json:"strength"`
	IsRebutted    bool     `json:"is_rebutted"`
	RebuttalCount int      `json:"rebuttal_count"`
	SupportCount  int      `json:"support_count"`
	KeyPoints     []string `json:"key_points"`
}

// EdgeView is the export shape of one relation.
type EdgeView struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Relation    string  `json:"relation"`
	Strength    float64 `json:"strength"`
	Description string  `json:"description"`
}

// Summary condenses the graph for consumers that skip the full node
// list.
type Summary struct {
	Topic          string     `json:"topic"`
	Rounds         []int      `json:"rounds"`
	ProArguments   int        `json:"pro_arguments"`
	ConArguments   int        `json:"con_arguments"`
	TotalRelations int        `json:"total_relations"`
	Scores         Score      `json:"scores"`
	ProStrongest   []NodeView `json:"pro_strongest"`
	ConStrongest   []NodeView `json:"con_strongest"`
}

// Export is the full JSON form of a graph.
type Export struct {
	Topic   string     `json:"topic"`
	Nodes   []NodeView `json:"nodes"`
	Edges   []EdgeView `json:"edges"`
	Summary Summary    `json:"summary"`
}

// View renders the node for export.
func (n *Node) View() NodeView {
	return NodeView{
		ID:            n.ID,
		Content:       clipRunes(n.Content, exportContentRunes),
		Author:        n.Author,
		Round:         n.Round,
		Type:          n.Type,
		Strength:      n.Strength.String(),
		IsRebutted:    n.IsRebutted,
		RebuttalCount: n.RebuttalCount,
		SupportCount:  n.SupportCount,
		KeyPoints:     append([]string{}, n.KeyPoints...),
	}
}

// View renders the edge for export.
func (e *Edge) View() EdgeView {
	return EdgeView{
		ID:          e.ID,
		Source:      e.Source,
		Target:      e.Target,
		Relation:    string(e.Relation),
		Strength:    e.Strength,
		Description: e.Description,
	}
}

// Export renders the whole graph: every node and edge plus the
// summary, all in insertion order.
func (g *ArgumentGraph) Export() Export {
	nodes := make([]NodeView, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id].View())
	}
	edges := make([]EdgeView, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge.View())
	}
	return Export{
		Topic:   g.topic,
		Nodes:   nodes,
		Edges:   edges,
		Summary: g.Summary(),
	}
}

// Summary builds the condensed form with the top arguments per side.
func (g *ArgumentGraph) Summary() Summary {
	return Summary{
		Topic:          g.topic,
		Rounds:         append([]int{}, g.roundOrder...),
		ProArguments:   len(g.nodesByAuthor[debate.SidePro]),
		ConArguments:   len(g.nodesByAuthor[debate.SideCon]),
		TotalRelations: len(g.edges),
		Scores:         g.CalculateDebateScore(),
		ProStrongest:   nodeViews(g.StrongestArguments(debate.SidePro, summaryStrongest)),
		ConStrongest:   nodeViews(g.StrongestArguments(debate.SideCon, summaryStrongest)),
	}
}

func nodeViews(nodes []*Node) []NodeView {
	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, n.View())
	}
	return views
}

// Mermaid renders the graph as a Mermaid flowchart: stadium-shaped pro
// nodes, subroutine-shaped con nodes, dotted arrows for attacks.
func (g *ArgumentGraph) Mermaid() string {
	lines := make([]string, 0, len(g.order)+len(g.edges)+3)
	lines = append(lines, "graph TB")
	for _, id := range g.order {
		node := g.nodes[id]
		label := strings.ReplaceAll(firstRunes(node.Content, mermaidLabelRunes), `"`, "'") + "..."
		if node.Author == debate.SidePro {
			lines = append(lines, fmt.Sprintf(`    %s(["%s"]):::pro`, node.ID, label))
		} else {
			lines = append(lines, fmt.Sprintf(`    %s[["%s"]]:::con`, node.ID, label))
		}
	}
	for _, edge := range g.edges {
		arrow := "-.->|攻击|"
		if edge.Relation.IsSupport() {
			arrow = "-->"
		}
		lines = append(lines, fmt.Sprintf("    %s %s %s", edge.Source, arrow, edge.Target))
	}
	lines = append(lines, "    classDef pro fill:#3b82f6,color:#fff")
	lines = append(lines, "    classDef con fill:#f97316,color:#fff")
	return strings.Join(lines, "\n")
}

// firstRunes returns at most n leading runes of s.
func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// clipRunes shortens s to n runes with an ellipsis when it overflows.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return firstRunes(s, n) + "..."
}
