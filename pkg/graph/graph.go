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

// Package graph builds and scores argument graphs over debate
// transcripts. Every utterance becomes a node, relations between
// utterances become directed edges, and the derived score weighs
// strength, support, and rebuttal damage into a per-side standing.
// Nodes and edges reference each other by id, never by pointer.
package graph

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/teradata-labs/arena/pkg/debate"
)

// RelationType classifies how one argument bears on another.
type RelationType string

// The closed relation set. Attacks, rebuts, and undermines count
// against their target; supports and builds_on credit their source.
const (
	RelationSupports   RelationType = "supports"
	RelationAttacks    RelationType = "attacks"
	RelationRebuts     RelationType = "rebuts"
	RelationUndermines RelationType = "undermines"
	RelationBuildsOn   RelationType = "builds_on"
)

// IsAttack reports whether the relation counts against its target.
func (r RelationType) IsAttack() bool {
	return r == RelationAttacks || r == RelationRebuts || r == RelationUndermines
}

// IsSupport reports whether the relation credits its source.
func (r RelationType) IsSupport() bool {
	return r == RelationSupports || r == RelationBuildsOn
}

// Strength grades the force of an argument.
type Strength int

// Strength levels, weakest first. The numeric value feeds directly
// into scoring.
const (
	StrengthWeak Strength = iota + 1
	StrengthModerate
	StrengthStrong
	StrengthDecisive
)

// String returns the level name used in exports.
func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "WEAK"
	case StrengthStrong:
		return "STRONG"
	case StrengthDecisive:
		return "DECISIVE"
	default:
		return "MODERATE"
	}
}

// Node is one argument in the graph. Rebuttal and support counters are
// maintained by AddRelation.
type Node struct {
	ID            string
	Content       string
	Author        string // debate.SidePro or debate.SideCon
	Round         int
	Type          string // claim, evidence, rebuttal, example
	Strength      Strength
	IsRebutted    bool
	RebuttalCount int
	SupportCount  int
	KeyPoints     []string
	EvidenceRefs  []string
	Timestamp     time.Time
}

// Edge is one directed relation between two arguments.
type Edge struct {
	ID          string
	Source      string
	Target      string
	Relation    RelationType
	Strength    float64 // 0-1
	Description string
	Timestamp   time.Time
}

// ArgumentGraph holds every argument of one debate and the relations
// between them. Like the shared memory, one orchestrator owns it; it
// is not safe for concurrent use.
type ArgumentGraph struct {
	topic string

	nodes map[string]*Node
	order []string // node ids in insertion order
	edges []*Edge

	nodeCounter int
	edgeCounter int

	outgoing      map[string][]*Edge
	incoming      map[string][]*Edge
	nodesByAuthor map[string][]string
	nodesByRound  map[int][]string
	roundOrder    []int // rounds in first-seen order
}

// New creates an empty graph for a topic.
func New(topic string) *ArgumentGraph {
	return &ArgumentGraph{
		topic:         topic,
		nodes:         make(map[string]*Node),
		outgoing:      make(map[string][]*Edge),
		incoming:      make(map[string][]*Edge),
		nodesByAuthor: make(map[string][]string),
		nodesByRound:  make(map[int][]string),
	}
}

// Argument describes a node to insert. Type defaults to "claim" and
// Strength to moderate.
type Argument struct {
	Content      string
	Author       string
	Round        int
	Type         string
	KeyPoints    []string
	EvidenceRefs []string
	Strength     Strength
}

// AddArgument inserts one argument and returns its live node. Node ids
// encode round, author, and a graph-wide counter.
func (g *ArgumentGraph) AddArgument(arg Argument) *Node {
	g.nodeCounter++
	id := fmt.Sprintf("arg_%d_%s_%d", arg.Round, arg.Author, g.nodeCounter)

	argType := arg.Type
	if argType == "" {
		argType = "claim"
	}
	strength := arg.Strength
	if strength < StrengthWeak || strength > StrengthDecisive {
		strength = StrengthModerate
	}

	node := &Node{
		ID:           id,
		Content:      arg.Content,
		Author:       arg.Author,
		Round:        arg.Round,
		Type:         argType,
		Strength:     strength,
		KeyPoints:    append([]string{}, arg.KeyPoints...),
		EvidenceRefs: append([]string{}, arg.EvidenceRefs...),
		Timestamp:    time.Now(),
	}

	g.nodes[id] = node
	g.order = append(g.order, id)
	g.nodesByAuthor[arg.Author] = append(g.nodesByAuthor[arg.Author], id)
	if _, seen := g.nodesByRound[arg.Round]; !seen {
		g.roundOrder = append(g.roundOrder, arg.Round)
	}
	g.nodesByRound[arg.Round] = append(g.nodesByRound[arg.Round], id)
	return node
}

// AddRelation connects source to target and returns the new edge. It
// reports false when either id is unknown. An attack relation marks
// the target rebutted; a support relation credits the source.
func (g *ArgumentGraph) AddRelation(sourceID, targetID string, relation RelationType, strength float64, description string) (*Edge, bool) {
	source, ok := g.nodes[sourceID]
	if !ok {
		return nil, false
	}
	target, ok := g.nodes[targetID]
	if !ok {
		return nil, false
	}

	g.edgeCounter++
	edge := &Edge{
		ID:          fmt.Sprintf("edge_%d", g.edgeCounter),
		Source:      sourceID,
		Target:      targetID,
		Relation:    relation,
		Strength:    strength,
		Description: description,
		Timestamp:   time.Now(),
	}
	g.edges = append(g.edges, edge)
	g.outgoing[sourceID] = append(g.outgoing[sourceID], edge)
	g.incoming[targetID] = append(g.incoming[targetID], edge)

	switch {
	case relation.IsAttack():
		target.IsRebutted = true
		target.RebuttalCount++
	case relation.IsSupport():
		source.SupportCount++
	}
	return edge, true
}

// Topic returns the debate topic this graph was built for.
func (g *ArgumentGraph) Topic() string { return g.topic }

// Node looks up one argument by id.
func (g *ArgumentGraph) Node(id string) (*Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Nodes returns the live arguments in insertion order.
func (g *ArgumentGraph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns the live relations in insertion order.
func (g *ArgumentGraph) Edges() []*Edge {
	return append([]*Edge{}, g.edges...)
}

// RoundArguments returns the arguments recorded in one round.
func (g *ArgumentGraph) RoundArguments(round int) []*Node {
	ids := g.nodesByRound[round]
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// UnaddressedArguments returns the opponent's arguments the given side
// has not rebutted yet, in insertion order.
func (g *ArgumentGraph) UnaddressedArguments(side string) []*Node {
	opponent := debate.SidePro
	if side == debate.SidePro {
		opponent = debate.SideCon
	}
	unaddressed := make([]*Node, 0)
	for _, id := range g.nodesByAuthor[opponent] {
		if node := g.nodes[id]; !node.IsRebutted {
			unaddressed = append(unaddressed, node)
		}
	}
	return unaddressed
}

// StrongestArguments ranks a side's arguments by strength, support,
// and rebuttal damage, strongest first, and returns at most limit.
// Equally ranked arguments keep insertion order.
func (g *ArgumentGraph) StrongestArguments(side string, limit int) []*Node {
	ids := g.nodesByAuthor[side]
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, g.nodes[id])
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return argumentRank(nodes[i]) > argumentRank(nodes[j])
	})
	if limit >= 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}

// argumentRank orders nodes for StrongestArguments.
func argumentRank(n *Node) float64 {
	rank := float64(n.Strength)*10 + float64(n.SupportCount)*2
	if n.IsRebutted {
		rank -= float64(n.RebuttalCount) * 3
	}
	return rank
}

// AttackChains walks attack edges backwards from a node and returns
// every maximal chain of ids starting at the node itself. Chains of
// one (nothing attacked the node) are dropped; revisits are cut so
// cyclic relations terminate.
func (g *ArgumentGraph) AttackChains(nodeID string) [][]string {
	chains := [][]string{}
	var walk func(id string, chain []string)
	walk = func(id string, chain []string) {
		attackers := make([]*Edge, 0, 2)
		for _, e := range g.incoming[id] {
			if e.Relation.IsAttack() && !chainContains(chain, e.Source) {
				attackers = append(attackers, e)
			}
		}
		if len(attackers) == 0 {
			if len(chain) > 1 {
				chains = append(chains, append([]string(nil), chain...))
			}
			return
		}
		for _, e := range attackers {
			walk(e.Source, append(chain, e.Source))
		}
	}
	walk(nodeID, []string{nodeID})
	return chains
}

func chainContains(chain []string, id string) bool {
	for _, c := range chain {
		if c == id {
			return true
		}
	}
	return false
}

// Score is the derived standing of both sides.
type Score struct {
	ProScore       float64 `json:"pro_score"`
	ConScore       float64 `json:"con_score"`
	ProPercentage  float64 `json:"pro_percentage"`
	ConPercentage  float64 `json:"con_percentage"`
	Leader         string  `json:"leader"`
	ProUnaddressed int     `json:"pro_unaddressed"`
	ConUnaddressed int     `json:"con_unaddressed"`
	TotalArguments int     `json:"total_arguments"`
	TotalRelations int     `json:"total_relations"`
}

// CalculateDebateScore weighs every node and attack edge into a
// per-side total. A node earns strength·5, plus 10 while unrebutted or
// minus 3 per rebuttal once rebutted, plus 2 per argument it supports.
// Each attacks or rebuts edge credits the attacker's side with
// strength·5; undermines weakens its target without crediting anyone.
func (g *ArgumentGraph) CalculateDebateScore() Score {
	var pro, con float64
	for _, id := range g.order {
		node := g.nodes[id]
		base := float64(node.Strength) * 5
		if node.IsRebutted {
			base -= float64(node.RebuttalCount) * 3
		} else {
			base += 10
		}
		base += float64(node.SupportCount) * 2
		if node.Author == debate.SidePro {
			pro += base
		} else {
			con += base
		}
	}
	for _, edge := range g.edges {
		if edge.Relation != RelationAttacks && edge.Relation != RelationRebuts {
			continue
		}
		value := edge.Strength * 5
		if g.nodes[edge.Source].Author == debate.SidePro {
			pro += value
		} else {
			con += value
		}
	}

	proPct := 50.0
	if total := pro + con; total > 0 {
		proPct = pro / total * 100
	}
	leader := "tie"
	switch {
	case pro > con:
		leader = debate.SidePro
	case con > pro:
		leader = debate.SideCon
	}

	return Score{
		ProScore:       round1(pro),
		ConScore:       round1(con),
		ProPercentage:  round1(proPct),
		ConPercentage:  round1(100 - proPct),
		Leader:         leader,
		ProUnaddressed: len(g.UnaddressedArguments(debate.SideCon)),
		ConUnaddressed: len(g.UnaddressedArguments(debate.SidePro)),
		TotalArguments: len(g.nodes),
		TotalRelations: len(g.edges),
	}
}

// round1 rounds to one decimal for display.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
