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

// Package debate runs structured pro/con debates. Two debater agents
// argue a topic over a fixed number of rounds, an independent jury
// scores each round on four dimensions, and an orchestrator drives the
// protocol while emitting an ordered event stream and recording every
// exchange in an append-only shared memory.
//
// The per-round protocol is deterministic: round_start, then the pro
// side's thinking and argument, then the con side's, then the round
// evaluation and running standings. After the final round the jury
// issues a verdict and the stream terminates with a complete event
// carrying the full session state.
package debate

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/agent"
	"github.com/teradata-labs/arena/pkg/communication"
	"github.com/teradata-labs/arena/pkg/observability"
	"github.com/teradata-labs/arena/pkg/types"
)

// Session limits enforced at setup.
const (
	MinRounds     = 1
	MaxRounds     = 10
	MaxTopicRunes = 500
)

// eventBuffer sizes the streaming channel; the producer blocks once the
// consumer falls this far behind.
const eventBuffer = 64

// SetupConfig carries the parameters for one debate session.
type SetupConfig struct {
	// Topic is the debate topic, 1 to 500 characters.
	Topic string

	// TotalRounds is the round count, 1 to 10.
	TotalRounds int

	// Temperature overrides the debaters' phase temperatures when
	// positive. The jury keeps its own fixed temperature.
	Temperature float64

	// Seed is forwarded to every provider call for reproducible runs.
	Seed int64

	// Per-role provider overrides. Nil falls back to the orchestrator's
	// provider.
	ProProvider  types.LLMProvider
	ConProvider  types.LLMProvider
	JuryProvider types.LLMProvider
}

// Orchestrator drives one debate session through its lifecycle:
// not_started, ready after Setup, in_progress while running, completed
// once the verdict is in. It owns the agents, the shared memory, and
// the message bus; none of them are shared across sessions.
type Orchestrator struct {
	provider types.LLMProvider
	tracer   observability.Tracer
	logger   *zap.Logger

	pro  *Debater
	con  *Debater
	jury *Evaluator

	memory *SharedMemory
	bus    *communication.MessageBus

	state        State
	topic        string
	totalRounds  int
	currentRound int
	history      []agent.Exchange
}

// NewOrchestrator creates a debate orchestrator with no-op
// observability.
func NewOrchestrator(provider types.LLMProvider) *Orchestrator {
	return NewOrchestratorWithObservability(provider, observability.NewNoOpTracer(), zap.NewNop())
}

// NewOrchestratorWithObservability creates a debate orchestrator with
// the given tracer and logger.
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

// Setup validates the session parameters, builds the agents, memory and
// bus, and moves the orchestrator to ready. No event is emitted before
// validation passes.
func (o *Orchestrator) Setup(ctx context.Context, cfg SetupConfig) error {
	topicLen := utf8.RuneCountInString(cfg.Topic)
	if topicLen < 1 || topicLen > MaxTopicRunes {
		return fmt.Errorf("topic must be 1 to %d characters, got %d", MaxTopicRunes, topicLen)
	}
	if cfg.TotalRounds < MinRounds || cfg.TotalRounds > MaxRounds {
		return fmt.Errorf("rounds must be between %d and %d, got %d", MinRounds, MaxRounds, cfg.TotalRounds)
	}

	proProvider := cfg.ProProvider
	if proProvider == nil {
		proProvider = o.provider
	}
	conProvider := cfg.ConProvider
	if conProvider == nil {
		conProvider = o.provider
	}
	juryProvider := cfg.JuryProvider
	if juryProvider == nil {
		juryProvider = o.provider
	}
	if proProvider == nil || conProvider == nil || juryProvider == nil {
		return fmt.Errorf("provider is required")
	}

	o.topic = cfg.Topic
	o.totalRounds = cfg.TotalRounds
	o.currentRound = 0
	o.history = nil

	o.memory = NewSharedMemory(cfg.Topic, cfg.TotalRounds)
	o.bus = communication.NewMessageBus(o.tracer, o.logger)

	o.pro = NewDebater(DebaterConfig{
		Side:        SidePro,
		Topic:       cfg.Topic,
		Provider:    proProvider,
		Temperature: cfg.Temperature,
		Seed:        cfg.Seed,
		Logger:      o.logger,
	})
	o.con = NewDebater(DebaterConfig{
		Side:        SideCon,
		Topic:       cfg.Topic,
		Provider:    conProvider,
		Temperature: cfg.Temperature,
		Seed:        cfg.Seed,
		Logger:      o.logger,
	})
	o.jury = NewEvaluator(EvaluatorConfig{
		Topic:    cfg.Topic,
		Provider: juryProvider,
		Seed:     cfg.Seed,
		Logger:   o.logger,
	})

	for _, id := range []string{SidePro, SideCon, "jury", "orchestrator"} {
		id := id
		o.bus.Subscribe(id, func(msg *communication.AgentMessage) {
			o.logger.Debug("bus delivery",
				zap.String("to", id),
				zap.String("kind", string(msg.Kind)),
				zap.String("from", msg.Sender))
		})
	}
	o.publish(ctx, communication.StatusMessage("orchestrator", "debate_setup", map[string]interface{}{
		"topic":  cfg.Topic,
		"rounds": cfg.TotalRounds,
	}))

	o.state = StateReady
	o.logger.Info("debate ready",
		zap.String("topic", cfg.Topic),
		zap.Int("rounds", cfg.TotalRounds))
	return nil
}

// State returns the lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Topic returns the debate topic.
func (o *Orchestrator) Topic() string { return o.topic }

// TotalRounds returns the configured round count.
func (o *Orchestrator) TotalRounds() int { return o.totalRounds }

// CurrentRound returns the round in progress, zero before the first.
func (o *Orchestrator) CurrentRound() int { return o.currentRound }

// Memory returns the session's shared memory, nil before Setup.
func (o *Orchestrator) Memory() *SharedMemory { return o.memory }

// Bus returns the session's message bus, nil before Setup.
func (o *Orchestrator) Bus() *communication.MessageBus { return o.bus }

// Transcript renders the debate so far as Markdown.
func (o *Orchestrator) Transcript() string {
	if o.memory == nil {
		return ""
	}
	return o.memory.ExportTranscript()
}

// Run executes the whole debate synchronously and returns the ordered
// event stream it produced. Outside the ready state it emits a single
// error event and leaves the state unchanged.
func (o *Orchestrator) Run(ctx context.Context) ([]Event, error) {
	var events []Event
	err := o.run(ctx, func(ev Event) { events = append(events, ev) }, false)
	return events, err
}

// RunStream executes the debate in a producer goroutine and returns the
// event channel. Debater turns stream their utterances chunk by chunk.
// The channel closes when the session ends or the context is cancelled.
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
		if err := o.run(ctx, emit, true); err != nil {
			o.logger.Warn("debate run ended early", zap.Error(err))
		}
	}()
	return ch
}

// run drives the protocol, stamping every event before emission.
func (o *Orchestrator) run(ctx context.Context, emit func(Event), streaming bool) error {
	send := func(ev Event) {
		ev.Timestamp = time.Now()
		emit(ev)
	}

	if o.state != StateReady {
		send(errorEvent(0, "辩论未就绪，请先完成 Setup"))
		return fmt.Errorf("debate not ready: state is %s", o.state)
	}

	ctx, span := o.tracer.StartSpan(ctx, "workflow.debate",
		observability.WithSpanKind("debate"),
		observability.WithAttribute("debate.topic", o.topic),
		observability.WithAttribute("debate.rounds", o.totalRounds),
		observability.WithAttribute("debate.streaming", streaming))
	defer o.tracer.EndSpan(span)

	o.state = StateInProgress
	o.memory.StartDebate()
	o.logger.Info("debate started",
		zap.String("topic", o.topic),
		zap.Int("rounds", o.totalRounds))

	send(Event{
		Kind:        EventOpening,
		Topic:       o.topic,
		TotalRounds: o.totalRounds,
		Content:     fmt.Sprintf("欢迎来到本场辩论！今天的辩题是：**%s**", o.topic),
	})

	for round := 1; round <= o.totalRounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.currentRound = round
		o.memory.StartRound(round)

		roundCtx, roundSpan := o.tracer.StartSpan(ctx, fmt.Sprintf("debate.round.%d", round),
			observability.WithAttribute("round.number", round),
			observability.WithAttribute("round.total", o.totalRounds))
		err := o.runRound(roundCtx, round, send, streaming)
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
	}

	verdict := o.jury.FinalVerdict(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	o.memory.CompleteDebate(&verdict)
	o.publish(ctx, communication.VerdictMessage("jury", verdict.Winner,
		roundedInt(verdict.ProTotalScore), roundedInt(verdict.ConTotalScore), verdict.Summary))

	verdictCopy := verdict
	send(Event{Kind: EventVerdict, Verdict: &verdictCopy})

	o.state = StateCompleted
	o.logger.Info("debate completed",
		zap.String("winner", verdict.Winner),
		zap.Float64("pro_total", verdict.ProTotalScore),
		zap.Float64("con_total", verdict.ConTotalScore))

	finalState := o.memory.FullState()
	send(Event{
		Kind:           EventComplete,
		FinalState:     &finalState,
		MessageHistory: o.bus.ExportHistory(),
	})
	return nil
}

// runRound executes one round of the protocol: pro turn, con turn,
// evaluation, standings.
func (o *Orchestrator) runRound(ctx context.Context, round int, send func(Event), streaming bool) error {
	send(Event{Kind: EventRoundStart, Round: round, TotalRounds: o.totalRounds})

	opponentLast := ""
	if len(o.history) > 0 {
		opponentLast = o.history[len(o.history)-1].Content
	}
	proContent, err := o.turn(ctx, o.pro, agent.TurnContext{
		Round:            round,
		TotalRounds:      o.totalRounds,
		IsOpening:        round == 1 && len(o.history) == 0,
		OpponentArgument: opponentLast,
		History:          o.historyWindow(),
	}, send, streaming)
	if err != nil {
		return err
	}

	// Both sides deliver an opening statement in round one so neither
	// starts with a rebuttal advantage.
	conContent, err := o.turn(ctx, o.con, agent.TurnContext{
		Round:            round,
		TotalRounds:      o.totalRounds,
		IsOpening:        round == 1,
		OpponentArgument: proContent,
		History:          o.historyWindow(),
	}, send, streaming)
	if err != nil {
		return err
	}

	eval := o.jury.EvaluateRound(ctx, proContent, conContent, round, o.memory.Evaluations())
	if err := ctx.Err(); err != nil {
		return err
	}
	o.memory.AddEvaluation(eval)
	o.publish(ctx, communication.EvaluationMessage("jury", "", map[string]interface{}{
		"pro": eval.ProScore,
		"con": eval.ConScore,
	}, eval.Commentary, round))

	evalCopy := eval
	send(Event{Kind: EventEvaluation, Round: round, Evaluation: &evalCopy})

	o.memory.EndRound(round)
	standings := o.memory.CurrentStandings()
	send(Event{Kind: EventStandings, Round: round, Standings: &standings})

	o.logger.Info("round evaluated",
		zap.Int("round", round),
		zap.String("winner", eval.RoundWinner))
	return nil
}

// turn runs one debater's full turn and records the utterance. A failed
// streaming turn degrades to an empty utterance unless the context is
// gone; the debate itself continues.
func (o *Orchestrator) turn(ctx context.Context, d *Debater, tctx agent.TurnContext, send func(Event), streaming bool) (string, error) {
	ctx, span := o.tracer.StartSpan(ctx, "debate.agent."+d.Side(),
		observability.WithAttribute("agent.name", d.Name()),
		observability.WithAttribute("agent.round", tctx.Round))
	defer o.tracer.EndSpan(span)

	var content string
	var thinking map[string]interface{}

	if streaming {
		streamed, err := d.ReactStream(ctx, tctx, func(ev Event) {
			ev.Round = tctx.Round
			send(ev)
		})
		if err != nil {
			if span != nil {
				span.RecordError(err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			streamed = ""
		}
		content = streamed
		if v, ok := d.Belief("last_analysis"); ok {
			thinking, _ = v.(map[string]interface{})
		}
	} else {
		tr, out, err := agent.React(ctx, d, tctx)
		if err != nil {
			if span != nil {
				span.RecordError(err)
			}
			return "", err
		}
		send(Event{
			Kind:       EventThinking,
			Round:      tctx.Round,
			Side:       d.Side(),
			Name:       d.Name(),
			Analysis:   tr.Analysis,
			Confidence: tr.Confidence,
		})
		send(Event{
			Kind:    EventArgument,
			Round:   tctx.Round,
			Side:    d.Side(),
			Name:    d.Name(),
			Content: out,
		})
		content = out
		thinking = tr.Analysis
	}

	o.memory.AddArgument(d.Side(), d.Name(), content, thinking)
	o.publish(ctx, communication.ArgumentMessage(d.Side(), content, tctx.Round))
	o.history = append(o.history, agent.Exchange{
		Round:   tctx.Round,
		Side:    d.Side(),
		Speaker: d.Name(),
		Content: content,
	})
	return content, nil
}

// historyWindow returns a copy of the exchange history.
func (o *Orchestrator) historyWindow() []agent.Exchange {
	return append([]agent.Exchange(nil), o.history...)
}

func (o *Orchestrator) publish(ctx context.Context, msg *communication.AgentMessage) {
	if err := o.bus.Publish(ctx, msg); err != nil {
		o.logger.Warn("bus publish failed",
			zap.String("kind", string(msg.Kind)),
			zap.Error(err))
	}
}
