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

// Package agent provides the reason-then-act runtime shared by every
// debate participant: identity state, a belief store, private memory,
// and tolerant extraction of JSON payloads from model output.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/types"
)

// Agent is implemented by every participant that reasons before it speaks.
type Agent interface {
	// Name returns the agent's display name.
	Name() string

	// Role returns the agent's role label (debater, jury, observer).
	Role() string

	// Think analyses the turn context and plans the next utterance.
	Think(ctx context.Context, tctx TurnContext) (*ThinkResult, error)

	// Act produces the utterance planned by a prior Think.
	Act(ctx context.Context, tr *ThinkResult) (string, error)
}

// TurnContext carries the per-turn inputs an orchestrator hands to an
// agent. Debate turns populate the opponent fields; dialectic turns
// populate the thesis fields.
type TurnContext struct {
	// Round is the 1-based round number.
	Round int

	// TotalRounds is the configured round count for the session.
	TotalRounds int

	// IsOpening marks a turn that should produce an opening statement.
	IsOpening bool

	// OpponentArgument is the opponent's most recent utterance, empty
	// on an opening turn.
	OpponentArgument string

	// History is a rolling window over the prior exchanges.
	History []Exchange

	// Thesis is the proposition under examination in a dialectic turn.
	Thesis string

	// ThesisArgument is the thesis agent's utterance this round, set
	// only for the antithesis turn.
	ThesisArgument string
}

// Exchange is one prior utterance visible in a turn context.
type Exchange struct {
	Round   int    `json:"round"`
	Side    string `json:"side"`
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}

// ThinkResult carries the outcome of an agent's reasoning phase.
type ThinkResult struct {
	// Reasoning is the free-text account of the analysis.
	Reasoning string

	// Analysis is the structured analysis object parsed from the model.
	Analysis map[string]interface{}

	// NextAction names what the agent intends to do with this result.
	NextAction string

	// Confidence is the agent's self-reported confidence in [0, 1].
	Confidence float64
}

// State holds an agent's identity and mutable reasoning state.
type State struct {
	Name            string
	Role            string
	Beliefs         map[string]interface{}
	Goals           []string
	CurrentStrategy string
	CreatedAt       time.Time
}

// MemoryEvent is one entry in an agent's private memory.
type MemoryEvent struct {
	Type      string
	Source    string
	Content   string
	Timestamp time.Time
}

// BaseAgent supplies the runtime concrete agents embed. It is not safe
// for concurrent use; an agent belongs to exactly one orchestrator.
type BaseAgent struct {
	state  State
	llm    types.LLMProvider
	logger *zap.Logger
	memory []MemoryEvent
}

// NewBase constructs the embedded runtime for a named agent. A nil
// logger is replaced with a no-op logger.
func NewBase(name, role string, provider types.LLMProvider, logger *zap.Logger) *BaseAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseAgent{
		state: State{
			Name:      name,
			Role:      role,
			Beliefs:   make(map[string]interface{}),
			CreatedAt: time.Now(),
		},
		llm:    provider,
		logger: logger,
	}
}

// Name returns the agent's display name.
func (a *BaseAgent) Name() string { return a.state.Name }

// Role returns the agent's role label.
func (a *BaseAgent) Role() string { return a.state.Role }

// Provider returns the LLM handle the agent speaks through.
func (a *BaseAgent) Provider() types.LLMProvider { return a.llm }

// Logger returns the agent's structured logger.
func (a *BaseAgent) Logger() *zap.Logger { return a.logger }

// UpdateBelief records or replaces a belief value.
func (a *BaseAgent) UpdateBelief(key string, value interface{}) {
	a.state.Beliefs[key] = value
}

// Belief returns a belief value and whether it is set.
func (a *BaseAgent) Belief(key string) (interface{}, bool) {
	v, ok := a.state.Beliefs[key]
	return v, ok
}

// AddGoal appends a goal unless it is already present.
func (a *BaseAgent) AddGoal(goal string) {
	for _, g := range a.state.Goals {
		if g == goal {
			return
		}
	}
	a.state.Goals = append(a.state.Goals, goal)
}

// Goals returns a copy of the agent's goal list.
func (a *BaseAgent) Goals() []string {
	out := make([]string, len(a.state.Goals))
	copy(out, a.state.Goals)
	return out
}

// SetStrategy records the strategy selected by the latest analysis.
func (a *BaseAgent) SetStrategy(strategy string) {
	a.state.CurrentStrategy = strategy
}

// Strategy returns the most recently selected strategy.
func (a *BaseAgent) Strategy() string { return a.state.CurrentStrategy }

// Observe appends an observation from the named source to memory.
func (a *BaseAgent) Observe(observation, source string) {
	a.Remember("observation", source, observation)
}

// Remember appends an event to the agent's private memory.
func (a *BaseAgent) Remember(eventType, source, content string) {
	a.memory = append(a.memory, MemoryEvent{
		Type:      eventType,
		Source:    source,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// RecentMemory returns a copy of the last n memory events, oldest first.
func (a *BaseAgent) RecentMemory(n int) []MemoryEvent {
	if n <= 0 || len(a.memory) == 0 {
		return nil
	}
	if n > len(a.memory) {
		n = len(a.memory)
	}
	out := make([]MemoryEvent, n)
	copy(out, a.memory[len(a.memory)-n:])
	return out
}

// React runs one full reason-then-act cycle for the agent and returns
// both phases' results. Errors the agent did not absorb at its own
// boundary propagate to the orchestrator.
func React(ctx context.Context, a Agent, tctx TurnContext) (*ThinkResult, string, error) {
	tr, err := a.Think(ctx, tctx)
	if err != nil {
		return nil, "", fmt.Errorf("%s think: %w", a.Name(), err)
	}
	out, err := a.Act(ctx, tr)
	if err != nil {
		return tr, "", fmt.Errorf("%s act: %w", a.Name(), err)
	}
	return tr, out, nil
}
