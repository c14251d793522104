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

// Package trace assembles the portable record of a completed session:
// the run configuration, every agent turn in order, the recorded
// evaluations and verdict, and an optional cost estimate. A trace is
// the input to post-hoc evaluation and the unit the storage layer
// persists.
package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teradata-labs/arena/pkg/communication"
	"github.com/teradata-labs/arena/pkg/debate"
)

// RunConfig records the provider settings a session ran with.
type RunConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Seed        int64   `json:"seed,omitempty"`
	MaxRounds   int     `json:"max_rounds"`
	Preset      string  `json:"preset,omitempty"`
}

// CostEstimate is a coarse token and price summary for one run. Token
// counts are estimates, not billing data: completion tokens are counted
// from the recorded text, and prompt tokens are projected from that
// volume rather than measured per call.
type CostEstimate struct {
	PromptTokens         int     `json:"prompt_tokens"`
	CompletionTokens     int     `json:"completion_tokens"`
	TotalTokens          int     `json:"total_tokens"`
	EstimatedUSD         float64 `json:"estimated_usd"`
	PricePer1KPrompt     float64 `json:"price_per_1k_prompt"`
	PricePer1KCompletion float64 `json:"price_per_1k_completion"`
}

// AgentTurn is one utterance in a trace, flattened out of the session
// memory into the reason-act-result shape evaluators consume.
type AgentTurn struct {
	Round     int                    `json:"round"`
	Side      string                 `json:"side"`
	Role      string                 `json:"role"`
	Thought   map[string]interface{} `json:"thought,omitempty"`
	Action    string                 `json:"action"`
	Result    string                 `json:"result"`
	Score     map[string]float64     `json:"score,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// DebateTrace is the full portable record of one debate.
type DebateTrace struct {
	TraceID        string                       `json:"trace_id"`
	Topic          string                       `json:"topic"`
	CreatedAt      time.Time                    `json:"created_at"`
	RunConfig      RunConfig                    `json:"run_config"`
	Turns          []AgentTurn                  `json:"turns"`
	Evaluations    []debate.RoundEvaluation     `json:"evaluations,omitempty"`
	Verdict        *debate.FinalVerdict         `json:"verdict,omitempty"`
	Standings      *debate.Standings            `json:"standings,omitempty"`
	Cost           *CostEstimate                `json:"cost,omitempty"`
	MessageHistory []communication.AgentMessage `json:"message_history,omitempty"`
}

// FromDebate assembles the trace of a debate from its memory snapshot
// and bus history. Each recorded utterance becomes one turn; the side's
// scorecard for that round, when present, is attached to the turn.
func FromDebate(state debate.FullState, history []communication.AgentMessage, cfg RunConfig) *DebateTrace {
	t := &DebateTrace{
		TraceID:        uuid.New().String(),
		Topic:          state.Topic,
		CreatedAt:      time.Now(),
		RunConfig:      cfg,
		Turns:          make([]AgentTurn, 0, len(state.Arguments)),
		Evaluations:    append([]debate.RoundEvaluation(nil), state.Evaluations...),
		MessageHistory: append([]communication.AgentMessage(nil), history...),
	}
	if len(state.Arguments) > 0 {
		t.CreatedAt = state.Arguments[0].Timestamp
	}

	scores := scoreIndex(state.Evaluations)
	for _, u := range state.Arguments {
		t.Turns = append(t.Turns, AgentTurn{
			Round:     u.Round,
			Side:      u.Side,
			Role:      "debater",
			Thought:   u.Thinking,
			Action:    "argument",
			Result:    u.Content,
			Score:     scores[scoreKey{u.Round, u.Side}],
			Timestamp: u.Timestamp,
		})
	}

	standings := state.Standings
	t.Standings = &standings
	if state.Verdict != nil {
		v := *state.Verdict
		t.Verdict = &v
	}
	return t
}

// Parse decodes a trace from its JSON representation.
func Parse(data []byte) (*DebateTrace, error) {
	var t DebateTrace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse trace: %w", err)
	}
	return &t, nil
}

// JSON renders the trace as indented JSON.
func (t *DebateTrace) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode trace: %w", err)
	}
	return data, nil
}

// Transcript renders the turns as plain text, one utterance per block.
// Comparison tooling diffs this rendering rather than the raw JSON.
func (t *DebateTrace) Transcript() string {
	var sb strings.Builder
	for _, turn := range t.Turns {
		fmt.Fprintf(&sb, "第%d轮 %s:\n%s\n\n", turn.Round, turn.Side, turn.Result)
	}
	return strings.TrimRight(sb.String(), "\n")
}

type scoreKey struct {
	round int
	side  string
}

// scoreIndex flattens the per-round scorecards for turn attachment.
func scoreIndex(evaluations []debate.RoundEvaluation) map[scoreKey]map[string]float64 {
	index := make(map[scoreKey]map[string]float64, len(evaluations)*2)
	for _, ev := range evaluations {
		index[scoreKey{ev.Round, debate.SidePro}] = scoreMap(ev.ProScore)
		index[scoreKey{ev.Round, debate.SideCon}] = scoreMap(ev.ConScore)
	}
	return index
}

func scoreMap(s debate.Scorecard) map[string]float64 {
	return map[string]float64{
		"logic":    s.Logic,
		"evidence": s.Evidence,
		"rhetoric": s.Rhetoric,
		"rebuttal": s.Rebuttal,
		"total":    s.Total(),
	}
}
