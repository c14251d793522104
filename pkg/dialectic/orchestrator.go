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

// Package dialectic runs Hegelian thesis/antithesis/synthesis sessions.
// Each round a thesis agent argues the current proposition, an
// antithesis agent argues against it, and an observer reconciles the
// two into a synthesis that becomes the next round's thesis. The
// observer also flags logical fallacies in both arguments, and the
// session memory grows a visual argument tree round by round.
//
// Unlike a debate there is no jury and no winner: the product of a run
// is the final synthesis plus the full trace and tree of how the
// proposition evolved.
package dialectic

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/agent"
	"github.com/teradata-labs/arena/pkg/observability"
	"github.com/teradata-labs/arena/pkg/trace"
	"github.com/teradata-labs/arena/pkg/types"
)

// Session limits. Round counts outside the window are clamped rather
// than rejected: dialectic progression needs several ascents to go
// anywhere, and past ten rounds syntheses stop moving.
const (
	MinRounds     = 5
	MaxRounds     = 10
	MaxTopicRunes = 500
)

// defaultTemperature applies when the setup leaves temperature unset.
const defaultTemperature = 0.7

// The observer runs cooler than the debating agents, down to a floor.
const (
	observerCooling = 0.2
	observerFloor   = 0.2
)

// eventBuffer sizes the streaming channel; the producer blocks once the
// consumer falls this far behind.
const eventBuffer = 64

// synthesisPlaceholder keeps a round's ascent moving when the observer
// produces only whitespace.
const synthesisPlaceholder = "合题暂未生成，保持当前正题继续推进。"

// State names a dialectic lifecycle stage.
type State string

// Lifecycle states, in order.
const (
	StateNotStarted State = "not_started"
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// SetupConfig carries the parameters for one dialectic session.
type SetupConfig struct {
	// Topic is the initial thesis, 1 to 500 characters.
	Topic string

	// TotalRounds is the requested round count, clamped to [5, 10].
	TotalRounds int

	// Temperature applies to the thesis and antithesis agents when
	// positive; the observer runs cooler by a fixed offset.
	Temperature float64

	// Seed is forwarded to every provider call for reproducible runs.
	Seed int64
}

// Orchestrator drives one dialectic session through its lifecycle:
// not_started, ready after Setup, in_progress while running, completed
// once the final synthesis is in. It owns the agents and the session
// memory; none of them are shared across sessions.
type Orchestrator struct {
	provider types.LLMProvider
	tracer   observability.Tracer
	logger   *zap.Logger

	thesis     *ThesisAgent
	antithesis *AntithesisAgent
	observer   *Observer

	memory *Memory

	state        State
	topic        string
	totalRounds  int
	currentRound int
	runConfig    trace.RunConfig
	history      []agent.Exchange
}

// NewOrchestrator creates a dialectic orchestrator with no-op
// observability.
func NewOrchestrator(provider types.LLMProvider) *Orchestrator {
	return NewOrchestratorWithObservability(provider, observability.NewNoOpTracer(), zap.NewNop())
}

// NewOrchestratorWithObservability creates a dialectic orchestrator
// with the given tracer and logger.
func NewOrchestratorWithObservability(provider types.LLMProvider, tracer observability.Tracer, logger *zap.Logger) *Orchestrator {
	if tracer == nil {
		tracer = observability.NewNoOpTracer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		provider: provider,
		tracer:   tracer,
		logger:   logger,
		state:    StateNotStarted,
	}
}

// Setup validates the session parameters, builds the agents and memory,
// and moves the orchestrator to ready.
func (o *Orchestrator) Setup(ctx context.Context, cfg SetupConfig) error {
	topicLen := utf8.RuneCountInString(cfg.Topic)
	if topicLen < 1 || topicLen > MaxTopicRunes {
		return fmt.Errorf("topic must be 1 to %d characters, got %d", MaxTopicRunes, topicLen)
	}
	if o.provider == nil {
		return fmt.Errorf("provider is required")
	}

	rounds := clampRounds(cfg.TotalRounds)
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	observerTemperature := temperature - observerCooling
	if observerTemperature < observerFloor {
		observerTemperature = observerFloor
	}

	o.topic = cfg.Topic
	o.totalRounds = rounds
	o.currentRound = 0
	o.history = nil
	o.runConfig = trace.RunConfig{
		Provider:    o.provider.Name(),
		Model:       o.provider.Model(),
		Temperature: temperature,
		Seed:        cfg.Seed,
		MaxRounds:   rounds,
	}

	o.memory = NewMemory(cfg.Topic, rounds)
	o.thesis = NewThesisAgent(AgentConfig{
		Provider:    o.provider,
		Temperature: temperature,
		Seed:        cfg.Seed,
		Logger:      o.logger,
	})
	o.antithesis = NewAntithesisAgent(AgentConfig{
		Provider:    o.provider,
		Temperature: temperature,
		Seed:        cfg.Seed,
		Logger:      o.logger,
	})
	o.observer = NewObserver(AgentConfig{
		Provider:    o.provider,
		Temperature: observerTemperature,
		Seed:        cfg.Seed,
		Logger:      o.logger,
	})

	o.state = StateReady
	o.logger.Info("dialectic ready",
		zap.String("topic", cfg.Topic),
		zap.Int("rounds", rounds))
	return nil
}

// State returns the lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Topic returns the initial thesis.
func (o *Orchestrator) Topic() string { return o.topic }

// TotalRounds returns the clamped round count.
func (o *Orchestrator) TotalRounds() int { return o.totalRounds }

// CurrentRound returns the round in progress, zero before the first.
func (o *Orchestrator) CurrentRound() int { return o.currentRound }

// Memory returns the session memory, nil before Setup.
func (o *Orchestrator) Memory() *Memory { return o.memory }

// BuildTrace exports the session so far, stamped with the run
// configuration and the latest synthesis.
func (o *Orchestrator) BuildTrace() Trace {
	t := o.memory.BuildTrace()
	cfg := o.runConfig
	t.RunConfig = &cfg
	if n := len(t.Rounds); n > 0 {
		t.FinalThesis = t.Rounds[n-1].Synthesis
	}
	return t
}

// Run executes the whole session synchronously and returns the ordered
// event stream it produced. Outside the ready state it emits a single
// error event and leaves the state unchanged.
func (o *Orchestrator) Run(ctx context.Context) ([]Event, error) {
	var events []Event
	err := o.run(ctx, func(ev Event) { events = append(events, ev) })
	return events, err
}

// RunStream executes the session in a producer goroutine and returns
// the event channel. The channel closes when the session ends or the
// context is cancelled.
func (o *Orchestrator) RunStream(ctx context.Context) <-chan Event {
	ch := make(chan Event, eventBuffer)
	go func() {
		defer close(ch)
		emit := func(ev Event) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}
		if err := o.run(ctx, emit); err != nil {
			o.logger.Warn("dialectic run ended early", zap.Error(err))
		}
	}()
	return ch
}

// run drives the protocol, stamping every event before emission.
func (o *Orchestrator) run(ctx context.Context, emit func(Event)) error {
	send := func(ev Event) {
		ev.Timestamp = time.Now()
		emit(ev)
	}

	if o.state != StateReady {
		send(errorEvent(0, "辩证法引擎未初始化，请先完成 Setup"))
		return fmt.Errorf("dialectic not ready: state is %s", o.state)
	}

	ctx, span := o.tracer.StartSpan(ctx, "workflow.dialectic",
		observability.WithSpanKind("dialectic"),
		observability.WithAttribute("dialectic.topic", o.topic),
		observability.WithAttribute("dialectic.rounds", o.totalRounds))
	defer o.tracer.EndSpan(span)

	o.state = StateInProgress
	o.logger.Info("dialectic started",
		zap.String("topic", o.topic),
		zap.Int("rounds", o.totalRounds))

	send(Event{
		Kind:        EventOpening,
		Topic:       o.topic,
		TotalRounds: o.totalRounds,
	})

	currentThesis := o.topic
	for round := 1; round <= o.totalRounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.currentRound = round

		roundCtx, roundSpan := o.tracer.StartSpan(ctx, fmt.Sprintf("dialectic.round.%d", round),
			observability.WithAttribute("round.number", round),
			observability.WithAttribute("round.total", o.totalRounds))
		synthesis, err := o.runRound(roundCtx, round, currentThesis, send)
		if roundSpan != nil {
			if err != nil {
				roundSpan.RecordError(err)
			} else {
				roundSpan.SetAttribute("round.status", "completed")
			}
		}
		o.tracer.EndSpan(roundSpan)
		if err != nil {
			send(errorEvent(round, err.Error()))
			return err
		}

		// The ascent: this round's synthesis is the next round's thesis.
		currentThesis = synthesis
	}

	o.state = StateCompleted
	o.logger.Info("dialectic completed",
		zap.Int("rounds", o.totalRounds),
		zap.String("final_thesis", truncateRunes(currentThesis, historyRunes)))

	finalTrace := o.BuildTrace()
	tree := o.memory.BuildTree()
	send(Event{
		Kind:        EventComplete,
		FinalThesis: currentThesis,
		Trace:       &finalTrace,
		Tree:        &tree,
	})
	return nil
}

// runRound executes one round of the protocol: thesis turn, antithesis
// turn, synthesis, fallacy scan, tree update. It returns the synthesis
// that becomes the next thesis.
func (o *Orchestrator) runRound(ctx context.Context, round int, currentThesis string, send func(Event)) (string, error) {
	send(Event{Kind: EventRoundStart, Round: round, Thesis: currentThesis})

	thesisResult, thesisText, err := o.react(ctx, o.thesis, agent.TurnContext{
		Round:       round,
		TotalRounds: o.totalRounds,
		Thesis:      currentThesis,
		History:     o.historyWindow(),
	})
	if err != nil {
		return "", err
	}
	send(Event{
		Kind:     EventThesis,
		Round:    round,
		Side:     SideThesis,
		Content:  thesisText,
		Thinking: thesisResult.Analysis,
	})

	antithesisResult, antithesisText, err := o.react(ctx, o.antithesis, agent.TurnContext{
		Round:          round,
		TotalRounds:    o.totalRounds,
		Thesis:         currentThesis,
		ThesisArgument: thesisText,
	})
	if err != nil {
		return "", err
	}
	send(Event{
		Kind:     EventAntithesis,
		Round:    round,
		Side:     SideAntithesis,
		Content:  antithesisText,
		Thinking: antithesisResult.Analysis,
	})

	synthesis := o.observer.Synthesize(ctx, thesisText, antithesisText, round, o.historyWindow())
	if err := ctx.Err(); err != nil {
		return "", err
	}
	synthesisText := strings.TrimSpace(synthesis.Synthesis)
	if synthesisText == "" {
		synthesisText = synthesisPlaceholder
	}
	send(Event{
		Kind:    EventSynthesis,
		Round:   round,
		Side:    SideSynthesis,
		Content: synthesisText,
		Thinking: map[string]interface{}{
			"key_tensions": synthesis.KeyTensions,
			"confidence":   synthesis.Confidence,
		},
	})

	fallacies := o.observer.DetectFallacies(ctx, thesisText, antithesisText)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	send(Event{Kind: EventFallacy, Round: round, Items: fallacies})

	o.memory.AddRound(round, thesisText, antithesisText, synthesisText, fallacies)
	tree := o.memory.BuildTree()
	send(Event{Kind: EventTreeUpdate, Round: round, Nodes: tree.Nodes, Edges: tree.Edges})

	o.history = append(o.history, agent.Exchange{
		Round:   round,
		Side:    SideSynthesis,
		Speaker: o.observer.Name(),
		Content: synthesisText,
	})

	o.logger.Info("round synthesized",
		zap.Int("round", round),
		zap.Int("fallacies", len(fallacies)))
	return synthesisText, nil
}

// react runs one agent's think/act turn under a span.
func (o *Orchestrator) react(ctx context.Context, a agent.Agent, tctx agent.TurnContext) (*agent.ThinkResult, string, error) {
	ctx, span := o.tracer.StartSpan(ctx, "dialectic.agent."+strings.TrimPrefix(a.Role(), "dialectic_"),
		observability.WithAttribute("agent.name", a.Name()),
		observability.WithAttribute("agent.round", tctx.Round))
	defer o.tracer.EndSpan(span)

	tr, out, err := agent.React(ctx, a, tctx)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return nil, "", err
	}
	return tr, out, nil
}

// historyWindow returns a copy of the synthesis history.
func (o *Orchestrator) historyWindow() []agent.Exchange {
	return append([]agent.Exchange(nil), o.history...)
}

func clampRounds(rounds int) int {
	if rounds < MinRounds {
		return MinRounds
	}
	if rounds > MaxRounds {
		return MaxRounds
	}
	return rounds
}
